package identity

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDirectoryResolve(t *testing.T) {
	t.Parallel()

	dir := NewDirectory(map[string]Entry{
		"Robert": {Nicknames: []string{"Bob", "Bobby"}, Devices: []string{"dev2"}},
	})

	name, err := dir.Resolve("Bobby", "other-device")
	require.NoError(t, err)
	assert.Equal(t, "Robert", name)

	_, err = dir.Resolve("Stranger", "dev2")
	assert.True(t, errors.Is(err, ErrUnknownIdentity))
}

func TestDirectoryAssign(t *testing.T) {
	t.Parallel()

	dir := NewDirectory(nil)
	assert.False(t, dir.Dirty())

	dir.Assign("Alice", "Ali", "d1")
	dir.Assign("Alice", "Ali", "d1")
	dir.Assign("Alice", "", "d9")
	assert.True(t, dir.Dirty())

	got := dir.Entries()["Alice"]
	assert.Equal(t, []string{"Ali"}, got.Nicknames)
	assert.Equal(t, []string{"d1", "d9"}, got.Devices)

	name, known, owner := dir.Lookup("Ali", "d9")
	assert.True(t, known)
	assert.Equal(t, "Alice", name)
	assert.Equal(t, "Alice", owner)

	dir.MarkClean()
	assert.False(t, dir.Dirty())
}

func TestDirectoryEntriesAreCopies(t *testing.T) {
	t.Parallel()

	dir := NewDirectory(map[string]Entry{"A": {Nicknames: []string{"a"}, Devices: []string{"d"}}})
	snap := dir.Entries()
	snap["A"].Nicknames[0] = "mutated"

	name, err := dir.Resolve("a", "d")
	require.NoError(t, err)
	assert.Equal(t, "A", name)
	assert.Equal(t, []string{"A"}, dir.Names())
}

func TestDirectoryDuplicateAliasResolvesDeterministically(t *testing.T) {
	t.Parallel()

	for i := 0; i < 20; i++ {
		dir := NewDirectory(map[string]Entry{
			"Zed": {Nicknames: []string{"shared"}},
			"Amy": {Nicknames: []string{"shared"}},
		})
		name, err := dir.Resolve("shared", "")
		require.NoError(t, err)
		require.Equal(t, "Zed", name, "the later name in sorted order wins")
	}
}
