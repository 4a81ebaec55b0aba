// Command fastfit fits bounding cylinders and cubes to scene objects, either
// from a scripted event sequence or interactively in the terminal.
package main

import (
	"context"
	"fmt"
	"os"
)

func main() {
	ctx := context.Background()
	root := newRootCmd(isVerbose())
	if err := root.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func isVerbose() bool {
	v := os.Getenv("FASTFIT_DEBUG")
	return v == "1" || v == "true"
}
