// Command lc32 reads a program in the dialect spec.md §2 describes from
// stdin and writes the equivalent x86 GNU-assembler text to stdout. It
// takes no flags (spec.md's non-goals rule out configurable behavior);
// every diagnostic is a compile error written to stderr, with a non-zero
// exit status. Grounded on the teacher's cmd/console/main.go entry point.
package main

import (
	"io"
	"log"
	"os"

	"lc32/pkg/driver"
)

func main() {
	log.SetFlags(0)

	src, err := io.ReadAll(os.Stdin)
	if err != nil {
		log.Fatalf("lc32: reading stdin: %v", err)
	}

	out, err := driver.Compile(string(src))
	if err != nil {
		log.Fatalf("lc32: %v", err)
	}

	if _, err := os.Stdout.WriteString(out); err != nil {
		log.Fatalf("lc32: writing output: %v", err)
	}
}
