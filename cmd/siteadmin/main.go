package main

import (
	"os"

	"github.com/fatih/color"

	"github.com/batala/site-server-go/cmd/siteadmin/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		color.Red("Error: %v\n", err)
		os.Exit(1)
	}
}
