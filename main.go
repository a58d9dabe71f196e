// Package main is the entry point for the playmark CLI.
package main

import (
	"github.com/playmark/playmark/cmd"
	"github.com/playmark/playmark/config"
	"github.com/playmark/playmark/log"
	"github.com/samber/lo"
)

func main() {
	lo.Must0(config.Setup())
	lo.Must0(log.Setup())

	cmd.Execute()
}
