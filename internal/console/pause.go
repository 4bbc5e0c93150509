package console

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"golang.org/x/term"
)

// PausePrompt matches the prompt of the Windows "pause" builtin.
const PausePrompt = "Press any key to continue . . . "

// KeyPauser prints PausePrompt and waits for a single keypress.
//
// When In is a terminal it is switched to raw mode so any key (not just
// Enter) continues. Otherwise one byte is read; EOF counts as a keypress so
// non-interactive runs never hang.
type KeyPauser struct {
	In  io.Reader
	Out io.Writer
}

// NewKeyPauser returns a pauser bound to the process's stdin and stdout.
func NewKeyPauser() *KeyPauser {
	return &KeyPauser{In: os.Stdin, Out: os.Stdout}
}

// Pause implements launcher.Pauser.
func (p *KeyPauser) Pause(ctx context.Context) error {
	in := p.In
	if in == nil {
		in = os.Stdin
	}
	out := p.Out
	if out == nil {
		out = io.Discard
	}

	if _, err := fmt.Fprint(out, PausePrompt); err != nil {
		return fmt.Errorf("write pause prompt: %w", err)
	}
	defer fmt.Fprintln(out)

	if file, ok := in.(*os.File); ok && term.IsTerminal(int(file.Fd())) {
		state, err := term.MakeRaw(int(file.Fd()))
		if err == nil {
			defer func() { _ = term.Restore(int(file.Fd()), state) }()
		}
	}

	done := make(chan error, 1)
	go func() {
		buf := make([]byte, 1)
		_, err := in.Read(buf)
		done <- err
	}()

	select {
	case err := <-done:
		if err != nil && !errors.Is(err, io.EOF) {
			return fmt.Errorf("read keypress: %w", err)
		}
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
