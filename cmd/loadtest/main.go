// Command loadtest drives GET /api/v1/search with concurrent workers and
// reports latency percentiles and the distribution of response statuses.
//
// Queries come from -query flags or, with -file, from the category labels and
// definition names of a catalog document.
//
// Usage:
//
//	go run ./cmd/loadtest -url http://localhost:8080 -file export.json -duration 30s
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/Adithya-Monish-Kumar-K/userdef-search/internal/catalog"
)

type queryList []string

func (q *queryList) String() string { return strings.Join(*q, ",") }

func (q *queryList) Set(v string) error {
	*q = append(*q, v)
	return nil
}

func main() {
	baseURL := flag.String("url", "http://localhost:8080", "base URL of the search service")
	concurrency := flag.Int("concurrency", 10, "number of concurrent workers")
	duration := flag.Duration("duration", 30*time.Second, "test duration")
	file := flag.String("file", "", "catalog document to derive queries from")
	var queries queryList
	flag.Var(&queries, "query", "query to send (repeatable)")
	flag.Parse()

	if *file != "" {
		snap, err := catalog.ParseFile(*file)
		if err != nil {
			fmt.Fprintf(os.Stderr, "loading queries: %v\n", err)
			os.Exit(1)
		}
		queries = append(queries, queriesFrom(snap)...)
	}
	if len(queries) == 0 {
		queries = queryList{"orders", "customer", "select", "report", "total"}
	}

	cfg := Config{
		BaseURL:     strings.TrimRight(*baseURL, "/"),
		Concurrency: *concurrency,
		Duration:    *duration,
		Queries:     queries,
	}

	fmt.Println("=== Definition Search Load Test ===")
	fmt.Printf("Target:      %s\n", cfg.BaseURL)
	fmt.Printf("Concurrency: %d\n", cfg.Concurrency)
	fmt.Printf("Duration:    %s\n", cfg.Duration)
	fmt.Printf("Queries:     %d unique\n", len(cfg.Queries))
	fmt.Println()

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Duration)
	defer cancel()
	progress(ctx, os.Stdout)
	stats := Run(ctx, cfg)
	fmt.Println(" done!")
	fmt.Println()

	if !PrintReport(os.Stdout, stats, cfg.Duration) {
		fmt.Println()
		fmt.Println("WARNING: No requests completed. Is the service running?")
		os.Exit(1)
	}
}

// queriesFrom takes the distinct category labels and definition names of
// snap, lowercased.
func queriesFrom(snap *catalog.Snapshot) []string {
	seen := make(map[string]struct{})
	var out []string
	add := func(s string) {
		s = strings.ToLower(strings.TrimSpace(s))
		if s == "" {
			return
		}
		if _, dup := seen[s]; dup {
			return
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	for _, c := range snap.Categories() {
		add(c.Label())
	}
	for _, d := range snap.Definitions() {
		add(d.DefinitionName)
	}
	return out
}

func progress(ctx context.Context, w io.Writer) {
	fmt.Fprint(w, "Running")
	ticker := time.NewTicker(5 * time.Second)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				fmt.Fprint(w, ".")
			}
		}
	}()
}
