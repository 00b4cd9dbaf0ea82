// main is the entrypoint for the devinsight CLI.
package main

import (
	"github.com/devinsight/devinsight/cmd"
	"github.com/devinsight/devinsight/internal/contract"
)

func main() {
	if err := cmd.Execute(); err != nil {
		contract.LogFatal("Cannot execute command", err)
	}
}
