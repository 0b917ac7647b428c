// Package main is the CLI command itself.
package main

import (
	"os"

	goutils "go.viam.com/utils"

	"go.viam.com/mcp2515/cli"
	"go.viam.com/mcp2515/logging"
)

func main() {
	app := cli.NewApp(os.Stdout, os.Stderr)
	if err := app.Run(os.Args); err != nil {
		goutils.UncheckedErrorFunc(logging.Global().Sync)
		logging.Global().Fatal(err)
	}
}
