package main

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/urfave/cli/v2"

	"github.com/Adithya-Monish-Kumar-K/userdef-search/internal/catalog"
	"github.com/Adithya-Monish-Kumar-K/userdef-search/internal/dialog"
	"github.com/Adithya-Monish-Kumar-K/userdef-search/internal/searcher/engine"
	"github.com/Adithya-Monish-Kumar-K/userdef-search/pkg/config"
	"github.com/Adithya-Monish-Kumar-K/userdef-search/pkg/logger"
)

func setupLogger(c *cli.Context) error {
	logger.SetupWriter(c.App.ErrWriter, c.String("log-level"), "text")
	return nil
}

func searchConfig(c *cli.Context) config.SearchConfig {
	return config.SearchConfig{
		CategoryLimit:   c.Int("category-limit"),
		DefinitionLimit: c.Int("definition-limit"),
		ContentLimit:    c.Int("content-limit"),
		SnippetMaxLen:   c.Int("snippet-length"),
	}.WithDefaults()
}

func queryCommand(c *cli.Context) error {
	snap, err := catalog.ParseFile(c.String("file"))
	if err != nil {
		return err
	}
	query := strings.Join(c.Args().Slice(), " ")
	resp := engine.New(searchConfig(c)).Search(snap, query)

	if c.Bool("json") {
		enc := json.NewEncoder(c.App.Writer)
		enc.SetIndent("", "  ")
		return enc.Encode(resp)
	}
	printResponse(c.App.Writer, snap, resp, -1)
	return nil
}

func treeCommand(c *cli.Context) error {
	snap, err := catalog.ParseFile(c.String("file"))
	if err != nil {
		return err
	}
	w := c.App.Writer
	for _, node := range snap.Tree() {
		fmt.Fprintf(w, "%s (%s)\n", node.Category.Label(), node.Category.CategoryID)
		for _, d := range node.Definitions {
			fmt.Fprintf(w, "  %s  %s\n", d.DefinitionID, d.DefinitionName)
		}
	}
	return nil
}

type staticSource struct {
	snap *catalog.Snapshot
}

func (s staticSource) Current() *catalog.Snapshot { return s.snap }

func browseCommand(c *cli.Context) error {
	snap, err := catalog.ParseFile(c.String("file"))
	if err != nil {
		return err
	}
	w := c.App.Writer
	eng := engine.New(searchConfig(c))
	d := dialog.New(dialog.NewActivation(), eng, staticSource{snap: snap},
		dialog.WithCommitHandler(func(sel dialog.Selection) {
			printSelection(w, snap, sel)
		}),
	)

	fmt.Fprintln(w, "type :k to open the search dialog, :q to quit")
	scanner := bufio.NewScanner(c.App.Reader)
	for scanner.Scan() {
		line := scanner.Text()
		if line == ":q" {
			return nil
		}
		if ev, ok := keyFor(line); ok {
			d.HandleKey(ev)
		} else if d.State() == dialog.StateClosed {
			fmt.Fprintln(w, "dialog is closed, type :k to open it")
			continue
		} else {
			d.SetQuery(line)
		}
		renderDialog(w, snap, d)
	}
	return scanner.Err()
}

func keyFor(line string) (dialog.KeyEvent, bool) {
	switch line {
	case ":k":
		return dialog.KeyEvent{Key: "k", Ctrl: true}, true
	case ":up":
		return dialog.KeyEvent{Key: dialog.KeyArrowUp}, true
	case ":down":
		return dialog.KeyEvent{Key: dialog.KeyArrowDown}, true
	case ":enter":
		return dialog.KeyEvent{Key: dialog.KeyEnter}, true
	case ":esc":
		return dialog.KeyEvent{Key: dialog.KeyEscape}, true
	}
	return dialog.KeyEvent{}, false
}

func renderDialog(w io.Writer, snap *catalog.Snapshot, d *dialog.Dialog) {
	if d.State() == dialog.StateClosed {
		fmt.Fprintln(w, "[closed]")
		return
	}
	fmt.Fprintf(w, "search: %q\n", d.Query())
	printResponse(w, snap, engine.Response{Query: d.Query(), Status: d.Status(), Results: d.Results()}, d.Cursor())
}

// printResponse writes results grouped by kind. The row at highlight is
// marked; pass -1 for none.
func printResponse(w io.Writer, snap *catalog.Snapshot, resp engine.Response, highlight int) {
	switch resp.Status {
	case engine.StatusPrompt:
		fmt.Fprintln(w, "Type to search categories, definitions and code.")
		return
	case engine.StatusNoMatches:
		fmt.Fprintln(w, "No results found.")
		return
	}
	var group engine.Kind
	for i, r := range resp.Results {
		if r.Kind != group {
			group = r.Kind
			fmt.Fprintf(w, "%s:\n", groupTitle(group))
		}
		marker := "  "
		if i == highlight {
			marker = "> "
		}
		switch r.Kind {
		case engine.KindCategory:
			label := r.DisplayName
			if label == "" {
				label = r.Name
			}
			fmt.Fprintf(w, "%s%s\n", marker, label)
		case engine.KindDefinition:
			fmt.Fprintf(w, "%s%s  [%s] %s\n", marker, r.Name, r.ID, snap.CategoryLabel(r.CategoryID))
		case engine.KindContent:
			fmt.Fprintf(w, "%s%s  [%s] %s\n", marker, r.Name, r.ID, r.Snippet)
		}
	}
}

func groupTitle(k engine.Kind) string {
	switch k {
	case engine.KindCategory:
		return "Categories"
	case engine.KindDefinition:
		return "Definitions"
	default:
		return "Content"
	}
}

func printSelection(w io.Writer, snap *catalog.Snapshot, sel dialog.Selection) {
	def, ok := dialog.Resolve(snap, sel)
	if !ok {
		fmt.Fprintf(w, "opened %s %s: nothing to show\n", sel.Kind, sel.ID)
		return
	}
	fmt.Fprintf(w, "opened %s (%s) in %s\n", def.DefinitionName, def.DefinitionID, snap.CategoryLabel(def.CategoryID))
	if entry, ok := snap.Content(def.DefinitionID); ok && entry.Code != "" {
		fmt.Fprintf(w, "--- %s ---\n%s\n", entry.Language, entry.Code)
	}
}
