package main

import (
	"os"

	"github.com/pterm/pterm"
	"golang.org/x/term"
)

// promptSecret asks for a value left empty on the command line, keeping it
// out of shell history. Without a terminal the value stays empty and
// validation reports it.
func promptSecret(value *string, label string) error {
	if *value != "" || !term.IsTerminal(int(os.Stdin.Fd())) {
		return nil
	}
	v, err := pterm.DefaultInteractiveTextInput.WithMask("*").Show(label)
	if err != nil {
		return err
	}
	*value = v
	return nil
}
