package policy

import (
	"fmt"
	"strconv"

	"github.com/pterm/pterm"
)

// PtermPrompter asks on the terminal through pterm's interactive widgets.
type PtermPrompter struct{}

func (PtermPrompter) Select(label string, options []string) (string, error) {
	pick, err := pterm.DefaultInteractiveSelect.
		WithDefaultText(label).
		WithOptions(options).
		Show()
	if err != nil {
		return "", err
	}
	return pick, nil
}

func (PtermPrompter) Int(label string, def int) (int, error) {
	raw, err := pterm.DefaultInteractiveTextInput.
		WithDefaultText(label).
		WithDefaultValue(strconv.Itoa(def)).
		Show()
	if err != nil {
		return 0, err
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("%q is not a number: %w", raw, err)
	}
	return v, nil
}
