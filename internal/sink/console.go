package sink

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/mattn/go-isatty"
)

// Console renders the two values as a pair of labels on a writer. On a
// terminal the line is rewritten in place; otherwise one line is printed per
// sample.
type Console struct {
	w       io.Writer
	inPlace bool
	wrote   bool
}

// NewConsole builds a console sink on w. Terminal detection only applies when
// w is an *os.File.
func NewConsole(w io.Writer) *Console {
	inPlace := false
	if f, ok := w.(*os.File); ok {
		inPlace = isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
	}
	return &Console{w: w, inPlace: inPlace}
}

func (c *Console) Name() string { return "console" }

func (c *Console) Report(_ context.Context, s Sample) error {
	line := FormatLabels(s)
	var err error
	if c.inPlace {
		_, err = fmt.Fprintf(c.w, "\r%s", line)
	} else {
		_, err = fmt.Fprintln(c.w, line)
	}
	if err == nil {
		c.wrote = true
	}
	return err
}

// Close terminates the in-place line so later output starts on a fresh one.
func (c *Console) Close() error {
	if c.inPlace && c.wrote {
		_, err := fmt.Fprintln(c.w)
		return err
	}
	return nil
}

// FormatLabels renders the data and update-count labels for one sample.
func FormatLabels(s Sample) string {
	return fmt.Sprintf("data: %d  updates: %d", s.Value, s.PollCount)
}
