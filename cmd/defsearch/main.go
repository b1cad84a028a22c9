// Command defsearch searches a catalog document from the terminal.
//
//	defsearch query -f export.json orders total
//	defsearch tree -f export.json
//	defsearch browse -f export.json
//
// browse is a line-driven rendition of the search dialog. ":k" opens it,
// ":up" ":down" ":enter" ":esc" navigate, ":q" quits and any other line
// replaces the query.
package main

import (
	"log"
	"os"

	"github.com/urfave/cli/v2"
)

func main() {
	if err := newApp().Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func newApp() *cli.App {
	fileFlag := &cli.StringFlag{
		Name:     "file",
		Aliases:  []string{"f"},
		Usage:    "Path to the catalog document (userCategories/userDefinitions export)",
		Required: true,
	}
	limitFlags := []cli.Flag{
		&cli.IntFlag{Name: "category-limit", Usage: "Maximum category results", Value: 5},
		&cli.IntFlag{Name: "definition-limit", Usage: "Maximum definition results", Value: 8},
		&cli.IntFlag{Name: "content-limit", Usage: "Maximum content results", Value: 10},
		&cli.IntFlag{Name: "snippet-length", Usage: "Maximum snippet length in characters", Value: 100},
	}

	return &cli.App{
		Name:  "defsearch",
		Usage: "Search user definitions, their categories and their code",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "log-level",
				Aliases: []string{"l"},
				Usage:   "Set logging level (debug, info, warn, error)",
				Value:   "warn",
			},
		},
		Before: setupLogger,
		Commands: []*cli.Command{
			{
				Name:      "query",
				Usage:     "Run one query and print the grouped results",
				ArgsUsage: "<terms...>",
				Action:    queryCommand,
				Flags: append([]cli.Flag{
					fileFlag,
					&cli.BoolFlag{Name: "json", Usage: "Print the response as JSON"},
				}, limitFlags...),
			},
			{
				Name:   "tree",
				Usage:  "Print the category tree",
				Action: treeCommand,
				Flags:  []cli.Flag{fileFlag},
			},
			{
				Name:   "browse",
				Usage:  "Drive the search dialog interactively from stdin",
				Action: browseCommand,
				Flags:  append([]cli.Flag{fileFlag}, limitFlags...),
			},
		},
	}
}
