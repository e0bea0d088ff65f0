// Codex - generic fractal node store with ontological indexing.
//
// The codex seeds a canonical node set, expands it fractally across
// scientific, symbolic and water lenses, scores resonance, and serves
// it over a CLI and an MCP server.
package main

import (
	"fmt"
	"os"

	"github.com/living-codex/codex-go/cmd"
)

func main() {
	cli := cmd.NewCLI()

	if err := cli.Execute(os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
