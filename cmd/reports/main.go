// Command reports builds the reports described in a YAML file: each report
// reads its input, applies its filter and map, then prints, exports or
// mails the result.
package main

import (
	"fmt"
	"io"
	"os"

	// Every backend is linked in; the YAML file picks which to use.
	_ "reports/internal/storage/all"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr))
}

// run executes the CLI and returns the process exit code.
func run(args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	rc := NewRootCommand(stdin, stdout, stderr)
	rc.SetArgs(args)
	if err := rc.Execute(); err != nil {
		fmt.Fprintf(stderr, "error: %v\n", err)
		return 1
	}
	return 0
}
