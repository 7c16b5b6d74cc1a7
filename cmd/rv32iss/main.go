// Command rv32iss runs an RV32IMAC ELF binary against the simulator core,
// either straight through (run) or under an interactive single-step
// debugger (debug).
package main

import (
	"fmt"
	"os"

	"github.com/urfave/cli/v2"
)

func main() {
	app := &cli.App{
		Name:  "rv32iss",
		Usage: "RV32IMAC instruction set simulator",
		Commands: []*cli.Command{
			runCommand,
			debugCommand,
		},
	}
	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}
