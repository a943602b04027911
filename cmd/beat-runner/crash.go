package main

import (
	"fmt"
	"os"
	"runtime/debug"
	"sync/atomic"

	"github.com/gdamore/tcell/v2"
)

// crashScreen is finalized before a crash report so the stack lands on a sane terminal
var crashScreen atomic.Pointer[tcell.Screen]

func setCrashScreen(s tcell.Screen) {
	crashScreen.Store(&s)
}

// handleCrash restores the terminal, prints the panic with its stack and exits
func handleCrash(r any) {
	if r == nil {
		return
	}
	if s := crashScreen.Load(); s != nil {
		(*s).Fini()
	}

	fmt.Fprintf(os.Stderr, "\n\x1b[31mBEAT-RUNNER CRASHED: %v\x1b[0m\n", r)
	fmt.Fprintf(os.Stderr, "Stack Trace:\n%s\n", debug.Stack())
	os.Exit(1)
}

// goSafe runs fn in a new goroutine with panic recovery
// Use this instead of the 'go' keyword to ensure terminal cleanup on crash
func goSafe(fn func()) {
	go func() {
		defer func() {
			if r := recover(); r != nil {
				handleCrash(r)
			}
		}()
		fn()
	}()
}
