// Command commandlogd runs the append-only, newline-delimited command log
// server described in SPEC_FULL.md.
package main

import "github.com/commandlogd/commandlogd/internal/cli"

func main() {
	cli.Execute()
}
