// Command analyze runs portfolio risk analyses from the command line against
// the same databases as the server.
package main

import (
	"context"
	"flag"
	"os"
	"path"

	"github.com/google/subcommands"
)

func main() {
	commander := subcommands.NewCommander(flag.CommandLine, path.Base(os.Args[0]))
	commander.Register(commander.HelpCommand(), "")
	commander.Register(commander.FlagsCommand(), "")

	commander.Register(&runCmd{}, "")
	commander.Register(&seedCmd{}, "")
	commander.Register(&reportCmd{}, "")

	flag.Parse()
	os.Exit(int(commander.Execute(context.Background())))
}
