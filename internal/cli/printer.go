package cli

import (
	"github.com/pterm/pterm"
)

// Package-level printing helpers used by the commands for user-facing
// output. Structured logging goes through zap; these render the tables,
// headers, and status lines a human watches during a run.

// Header prints a prominent header block.
func Header(text string) {
	pterm.DefaultHeader.Println(text)
}

// Section prints a section divider.
func Section(text string) {
	pterm.DefaultSection.Println(text)
}

// Info prints an informational line.
func Info(text string) {
	pterm.Info.Println(text)
}

// Warn prints a warning line.
func Warn(text string) {
	pterm.Warning.Println(text)
}

// Error prints an error line.
func Error(text string) {
	pterm.Error.Println(text)
}

// Success prints a success line.
func Success(text string) {
	pterm.Success.Println(text)
}

// Table renders rows where the first row is the header. Empty data renders
// nothing.
func Table(data [][]string) {
	if len(data) == 0 {
		return
	}
	_ = pterm.DefaultTable.WithHasHeader().WithData(pterm.TableData(data)).Render()
}

// TableBoxed renders a boxed table where the first row is the header.
func TableBoxed(data [][]string) {
	if len(data) == 0 {
		return
	}
	_ = pterm.DefaultTable.WithHasHeader().WithBoxed().WithData(pterm.TableData(data)).Render()
}

// Color helpers for table cells and inline status words.
func Green(text string) string  { return pterm.Green(text) }
func Yellow(text string) string { return pterm.Yellow(text) }
func Red(text string) string    { return pterm.Red(text) }
func Cyan(text string) string   { return pterm.Cyan(text) }

// DefaultPrinter is the printer used by the commands.
var DefaultPrinter = &Printer{}

// Printer prints progress output. Quiet suppresses everything, for use in
// scripts and tests.
type Printer struct {
	Quiet bool
}

func (p *Printer) Section(text string) {
	if p.Quiet {
		return
	}
	Section(text)
}

func (p *Printer) Step(text string) {
	if p.Quiet {
		return
	}
	pterm.Println(pterm.Cyan("▸ ") + text)
}

func (p *Printer) Info(text string) {
	if p.Quiet {
		return
	}
	Info(text)
}

func (p *Printer) Println(args ...interface{}) {
	if p.Quiet {
		return
	}
	pterm.Println(args...)
}

func (p *Printer) Printf(format string, args ...interface{}) {
	if p.Quiet {
		return
	}
	pterm.Printf(format, args...)
}

// SpinnerStart starts a spinner and returns a stop function that resolves it
// as success or failure with a result message.
func (p *Printer) SpinnerStart(text string) func(success bool, result string) {
	if p.Quiet {
		return func(bool, string) {}
	}
	spinner, err := pterm.DefaultSpinner.Start(text)
	if err != nil {
		return func(bool, string) {}
	}
	return func(success bool, result string) {
		if success {
			spinner.Success(result)
		} else {
			spinner.Fail(result)
		}
	}
}
