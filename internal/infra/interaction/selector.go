// Where: internal/infra/interaction/selector.go
// What: Interactive selection using the huh library.
// Why: Let a developer pick a command when em-commons is started without one.
package interaction

import (
	"fmt"

	"github.com/charmbracelet/huh"
)

var runSelectPrompt = func(title string, options []huh.Option[string], selected *string) error {
	return huh.NewSelect[string]().
		Title(title).
		Options(options...).
		Value(selected).
		Run()
}

// HuhPrompter implements the Prompter interface using the huh TUI library.
type HuhPrompter struct{}

func (p HuhPrompter) SelectValue(title string, options []SelectOption) (string, error) {
	if len(options) == 0 {
		return "", nil
	}

	huhOptions := make([]huh.Option[string], len(options))
	for i, opt := range options {
		huhOptions[i] = huh.NewOption(opt.Label, opt.Value)
	}

	var selected string
	err := runSelectPrompt(title, huhOptions, &selected)
	if err != nil {
		return "", fmt.Errorf("prompt select value: %w", err)
	}
	return selected, nil
}
