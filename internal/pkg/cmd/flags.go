// Package cmd holds flag structs and setup helpers shared by the
// command line tools in this repo.
package cmd

import (
	kingpin "gopkg.in/alecthomas/kingpin.v2" // Command line flag parsing.
)

// Flagger defines command line flags and args.
// Examples: kingpin.Application and kingpin.CmdClause.
type Flagger interface {
	Flag(name string, help string) *kingpin.FlagClause
	Arg(name string, help string) *kingpin.ArgClause
}

var (
	_ Flagger = (*kingpin.Application)(nil)
	_ Flagger = (*kingpin.CmdClause)(nil)
)
