// Command farmctl manages a farm database from the command line.
package main

import (
	"fmt"
	"os"
)

// Exit codes.
const (
	exitSuccess   = 0
	exitUserError = 1
	exitSysError  = 2
)

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	if err := newApp().execute(args); err != nil {
		fmt.Fprintln(os.Stderr, "farmctl:", err)
		return exitCode(err)
	}
	return exitSuccess
}
