// Package identity maps Poker Now aliases and device fingerprints to the
// canonical player names used in hand histories.
package identity

import (
	"errors"
	"fmt"
	"slices"
	"sort"
	"sync"
)

var (
	// ErrUnknownIdentity is returned when an alias has no canonical name and
	// the active strategy may not invent one.
	ErrUnknownIdentity = errors.New("unknown identity")
	// ErrNoAnswer is returned by the batch strategy when its answers file
	// does not cover an alias.
	ErrNoAnswer = errors.New("no answer for identity")
)

// Entry is one canonical player in the name map.
type Entry struct {
	Nicknames []string `json:"nicknames"`
	Devices   []string `json:"devices"`
}

// Directory is the in-memory name map. Reads may run concurrently with each
// other; Assign takes the write lock.
type Directory struct {
	mu       sync.RWMutex
	entries  map[string]*Entry
	byAlias  map[string]string
	byDevice map[string]string
	dirty    bool
}

func NewDirectory(entries map[string]Entry) *Directory {
	d := &Directory{entries: make(map[string]*Entry, len(entries))}
	for name, e := range entries {
		d.entries[name] = &Entry{
			Nicknames: append([]string(nil), e.Nicknames...),
			Devices:   append([]string(nil), e.Devices...),
		}
	}
	d.reindex()
	return d
}

// reindex rebuilds both reverse indexes. Names are visited in sorted order
// so that an alias or device listed under two names always resolves to the
// same one.
func (d *Directory) reindex() {
	d.byAlias = make(map[string]string)
	d.byDevice = make(map[string]string)
	for _, name := range d.sortedNames() {
		e := d.entries[name]
		for _, n := range e.Nicknames {
			d.byAlias[n] = name
		}
		for _, dev := range e.Devices {
			d.byDevice[dev] = name
		}
	}
}

func (d *Directory) sortedNames() []string {
	names := make([]string, 0, len(d.entries))
	for name := range d.entries {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Resolve returns the canonical name for alias. The device is not consulted:
// a known device under a new alias still needs an operator decision, which
// the pre-pass makes before compiling starts.
func (d *Directory) Resolve(alias, device string) (string, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	if name, ok := d.byAlias[alias]; ok {
		return name, nil
	}
	return "", fmt.Errorf("%w: %q @ %q", ErrUnknownIdentity, alias, device)
}

// Lookup reports the canonical name for alias, if any, and the name that
// last used device.
func (d *Directory) Lookup(alias, device string) (name string, aliasKnown bool, deviceOwner string) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	name, aliasKnown = d.byAlias[alias]
	return name, aliasKnown, d.byDevice[device]
}

// Assign records alias and device under name, creating the entry when it
// does not exist. Empty values are skipped.
func (d *Directory) Assign(name, alias, device string) {
	d.mu.Lock()
	defer d.mu.Unlock()

	e, ok := d.entries[name]
	if !ok {
		e = &Entry{Nicknames: []string{}, Devices: []string{}}
		d.entries[name] = e
		d.dirty = true
	}
	if alias != "" && !slices.Contains(e.Nicknames, alias) {
		e.Nicknames = append(e.Nicknames, alias)
		d.byAlias[alias] = name
		d.dirty = true
	}
	if device != "" && !slices.Contains(e.Devices, device) {
		e.Devices = append(e.Devices, device)
		d.byDevice[device] = name
		d.dirty = true
	}
}

// Names lists the canonical names in sorted order.
func (d *Directory) Names() []string {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.sortedNames()
}

// Entries returns a copy of the name map.
func (d *Directory) Entries() map[string]Entry {
	d.mu.RLock()
	defer d.mu.RUnlock()
	out := make(map[string]Entry, len(d.entries))
	for name, e := range d.entries {
		out[name] = Entry{
			Nicknames: append([]string{}, e.Nicknames...),
			Devices:   append([]string{}, e.Devices...),
		}
	}
	return out
}

// Dirty reports whether Assign changed the map since it was loaded or last
// marked clean.
func (d *Directory) Dirty() bool {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.dirty
}

func (d *Directory) MarkClean() {
	d.mu.Lock()
	d.dirty = false
	d.mu.Unlock()
}
