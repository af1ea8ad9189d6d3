// Command btcf collects a Bitvavo Bitcoin portfolio and displays it.
package main

import (
	"context"
	"flag"
	"os"
	"path"

	"github.com/etnz/btcfolio/cmd"
	"github.com/etnz/btcfolio/presenter"
	"github.com/google/subcommands"
	"github.com/posener/complete/v2"
	"github.com/posener/complete/v2/predict"
)

func main() {
	commander := subcommands.NewCommander(flag.CommandLine, path.Base(os.Args[0]))
	commander.Register(commander.HelpCommand(), "")
	commander.Register(commander.FlagsCommand(), "")
	commander.Register(commander.CommandsCommand(), "")
	cmd.Register(commander)

	// answers shell completion requests (COMP_LINE) and exits, otherwise returns.
	completion(commander).Complete("btcf")

	flag.Parse()
	os.Exit(int(commander.Execute(context.Background())))
}

// completion describes the subcommands and their flags.
func completion(commander *subcommands.Commander) *complete.Command {
	root := &complete.Command{
		Sub:   map[string]*complete.Command{},
		Flags: flags(flag.CommandLine),
	}
	commander.VisitCommands(func(_ *subcommands.CommandGroup, c subcommands.Command) {
		f := flag.NewFlagSet(c.Name(), flag.ContinueOnError)
		c.SetFlags(f)
		root.Sub[c.Name()] = &complete.Command{Flags: flags(f)}
	})
	return root
}

func flags(f *flag.FlagSet) map[string]complete.Predictor {
	predictors := map[string]complete.Predictor{}
	f.VisitAll(func(fl *flag.Flag) {
		switch fl.Name {
		case "order":
			predictors[fl.Name] = predict.Set{"asc", "desc"}
		case "sort":
			predictors[fl.Name] = predict.Set(presenter.Columns)
		case "style":
			predictors[fl.Name] = predict.Set{"auto", "dark", "light", "notty", "ascii", "dracula", "pink"}
		case "log-level":
			predictors[fl.Name] = predict.Set{"debug", "info", "warn", "error"}
		default:
			if b, ok := fl.Value.(interface{ IsBoolFlag() bool }); ok && b.IsBoolFlag() {
				predictors[fl.Name] = predict.Nothing
				return
			}
			predictors[fl.Name] = predict.Something
		}
	})
	return predictors
}
