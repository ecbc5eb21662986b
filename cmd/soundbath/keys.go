package main

import (
	"os"

	"golang.org/x/term"
)

// readKeys streams single key presses from stdin. When stdin is not a
// terminal it returns a channel that never delivers.
func readKeys() (<-chan byte, func()) {
	keys := make(chan byte, 1)
	fd := int(os.Stdin.Fd())
	if !term.IsTerminal(fd) {
		return keys, func() {}
	}

	oldState, err := term.MakeRaw(fd)
	if err != nil {
		return keys, func() {}
	}

	// The reader goroutine stays blocked on stdin until the process exits.
	go func() {
		buf := make([]byte, 1)
		for {
			n, err := os.Stdin.Read(buf)
			if err != nil {
				return
			}
			if n == 1 {
				keys <- buf[0]
			}
		}
	}()

	return keys, func() { _ = term.Restore(fd, oldState) }
}
