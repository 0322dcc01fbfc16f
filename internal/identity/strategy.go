package identity

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/BurntSushi/toml"
)

// Question is one alias/device pair the directory could not place.
// DeviceOwner is set when the device is already known under another name.
type Question struct {
	Alias       string
	Device      string
	DeviceOwner string
}

// Strategy decides the canonical name for an unknown alias.
type Strategy interface {
	Resolve(ctx context.Context, q Question) (string, error)
}

// Strict refuses every unknown alias.
type Strict struct{}

func (Strict) Resolve(_ context.Context, q Question) (string, error) {
	return "", fmt.Errorf("%w: %q @ %q", ErrUnknownIdentity, q.Alias, q.Device)
}

// Batch answers from a prepared TOML file:
//
//	[aliases]
//	"Bobby" = "Bob"
//
//	[devices]
//	"x7Qp2" = "Bob"
//
// Alias answers win over device answers.
type Batch struct {
	Aliases map[string]string `toml:"aliases"`
	Devices map[string]string `toml:"devices"`
}

func LoadBatch(path string) (*Batch, error) {
	var b Batch
	if _, err := toml.DecodeFile(path, &b); err != nil {
		return nil, fmt.Errorf("load identity answers %s: %w", path, err)
	}
	return &b, nil
}

func DecodeBatch(r io.Reader) (*Batch, error) {
	var b Batch
	if _, err := toml.NewDecoder(r).Decode(&b); err != nil {
		return nil, fmt.Errorf("decode identity answers: %w", err)
	}
	return &b, nil
}

func (b *Batch) Resolve(_ context.Context, q Question) (string, error) {
	if name := strings.TrimSpace(b.Aliases[q.Alias]); name != "" {
		return name, nil
	}
	if name := strings.TrimSpace(b.Devices[q.Device]); name != "" {
		return name, nil
	}
	return "", fmt.Errorf("%w: %q @ %q", ErrNoAnswer, q.Alias, q.Device)
}

// Prompter is the operator conversation used by Interactive.
type Prompter interface {
	Ask(prompt, defaultValue string) (string, error)
	Confirm(prompt string) (bool, error)
	Warn(message string)
}

// Interactive asks an operator. When the device is already known the
// operator first confirms whether the alias belongs to the device's owner;
// declining raises a shared-device warning before a name is asked for.
type Interactive struct {
	Prompter Prompter
}

func (s Interactive) Resolve(ctx context.Context, q Question) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if q.DeviceOwner != "" {
		same, err := s.Prompter.Confirm(fmt.Sprintf(
			"The alias %q is new but device %q has been used by %s. Is %q %s?",
			q.Alias, q.Device, q.DeviceOwner, q.Alias, q.DeviceOwner))
		if err != nil {
			return "", fmt.Errorf("confirm %q: %w", q.Alias, err)
		}
		if same {
			return q.DeviceOwner, nil
		}
		s.Prompter.Warn(fmt.Sprintf(
			"Different players are using device %q. Sharing a device may indicate cheating.", q.Device))
	}

	name, err := s.Prompter.Ask(fmt.Sprintf(
		"The alias %q on device %q is not in the name map. Name to associate with it", q.Alias, q.Device), q.Alias)
	if err != nil {
		return "", fmt.Errorf("ask name for %q: %w", q.Alias, err)
	}
	if name = strings.TrimSpace(name); name == "" {
		name = q.Alias
	}
	return name, nil
}
