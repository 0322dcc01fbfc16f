package identity

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// scriptedPrompter replays canned answers and records what it was asked.
type scriptedPrompter struct {
	answers  []string
	confirms []bool
	asked    []string
	warnings []string
}

func (p *scriptedPrompter) Ask(prompt, defaultValue string) (string, error) {
	p.asked = append(p.asked, prompt)
	if len(p.answers) == 0 {
		return "", errors.New("no scripted answer")
	}
	a := p.answers[0]
	p.answers = p.answers[1:]
	return a, nil
}

func (p *scriptedPrompter) Confirm(prompt string) (bool, error) {
	p.asked = append(p.asked, prompt)
	if len(p.confirms) == 0 {
		return false, errors.New("no scripted confirmation")
	}
	c := p.confirms[0]
	p.confirms = p.confirms[1:]
	return c, nil
}

func (p *scriptedPrompter) Warn(message string) { p.warnings = append(p.warnings, message) }

func TestStrictRefuses(t *testing.T) {
	t.Parallel()

	_, err := Strict{}.Resolve(context.Background(), Question{Alias: "x", Device: "d"})
	assert.ErrorIs(t, err, ErrUnknownIdentity)
}

func TestBatchAnswers(t *testing.T) {
	t.Parallel()

	b, err := DecodeBatch(strings.NewReader(`
[aliases]
"Bobby" = "Robert"

[devices]
"dev2" = "Robert"
"dev3" = "Carol"
`))
	require.NoError(t, err)
	ctx := context.Background()

	name, err := b.Resolve(ctx, Question{Alias: "Bobby", Device: "dev3"})
	require.NoError(t, err)
	assert.Equal(t, "Robert", name, "alias answers win")

	name, err = b.Resolve(ctx, Question{Alias: "C", Device: "dev3"})
	require.NoError(t, err)
	assert.Equal(t, "Carol", name)

	_, err = b.Resolve(ctx, Question{Alias: "Nobody", Device: "dev9"})
	assert.ErrorIs(t, err, ErrNoAnswer)
}

func TestLoadBatchFile(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "answers.toml")
	require.NoError(t, os.WriteFile(path, []byte("[aliases]\nA = \"Alice\"\n"), 0o644))
	b, err := LoadBatch(path)
	require.NoError(t, err)
	assert.Equal(t, "Alice", b.Aliases["A"])

	_, err = LoadBatch(filepath.Join(t.TempDir(), "missing.toml"))
	assert.Error(t, err)
}

func TestInteractiveNewDevice(t *testing.T) {
	t.Parallel()

	p := &scriptedPrompter{answers: []string{"  Dana  "}}
	name, err := Interactive{Prompter: p}.Resolve(context.Background(), Question{Alias: "D", Device: "d4"})
	require.NoError(t, err)
	assert.Equal(t, "Dana", name)
	assert.Len(t, p.asked, 1)
	assert.Empty(t, p.warnings)
}

func TestInteractiveBlankAnswerKeepsAlias(t *testing.T) {
	t.Parallel()

	p := &scriptedPrompter{answers: []string{""}}
	name, err := Interactive{Prompter: p}.Resolve(context.Background(), Question{Alias: "D", Device: "d4"})
	require.NoError(t, err)
	assert.Equal(t, "D", name)
}

func TestInteractiveKnownDeviceConfirmed(t *testing.T) {
	t.Parallel()

	p := &scriptedPrompter{confirms: []bool{true}}
	name, err := Interactive{Prompter: p}.Resolve(context.Background(),
		Question{Alias: "Bobby", Device: "dev2", DeviceOwner: "Robert"})
	require.NoError(t, err)
	assert.Equal(t, "Robert", name)
	assert.Empty(t, p.warnings)
}

func TestInteractiveKnownDeviceDeclinedWarns(t *testing.T) {
	t.Parallel()

	p := &scriptedPrompter{confirms: []bool{false}, answers: []string{"Eve"}}
	name, err := Interactive{Prompter: p}.Resolve(context.Background(),
		Question{Alias: "E", Device: "dev2", DeviceOwner: "Robert"})
	require.NoError(t, err)
	assert.Equal(t, "Eve", name)
	require.Len(t, p.warnings, 1)
	assert.Contains(t, p.warnings[0], "cheating")
}

func TestInteractiveHonoursCancellation(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := Interactive{Prompter: &scriptedPrompter{}}.Resolve(ctx, Question{Alias: "x"})
	assert.ErrorIs(t, err, context.Canceled)
}
