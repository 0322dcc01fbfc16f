package identity

import (
	"github.com/pterm/pterm"
)

// TerminalPrompter talks to the operator through pterm's interactive
// widgets.
type TerminalPrompter struct{}

func (TerminalPrompter) Ask(prompt, defaultValue string) (string, error) {
	return pterm.DefaultInteractiveTextInput.
		WithDefaultText(prompt).
		WithDefaultValue(defaultValue).
		Show()
}

func (TerminalPrompter) Confirm(prompt string) (bool, error) {
	return pterm.DefaultInteractiveConfirm.
		WithDefaultText(prompt).
		WithDefaultValue(true).
		Show()
}

func (TerminalPrompter) Warn(message string) {
	pterm.Warning.Println(message)
}
