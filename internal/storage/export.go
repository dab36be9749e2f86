// Package storage writes one-shot result dumps. These files are plain
// serializations for the caller, not authoritative state.
package storage

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/deusflow/newsagent/internal/model"
)

type jsonDump struct {
	TotalResults int             `json:"total_results"`
	Timestamp    string          `json:"timestamp"`
	Articles     []model.Article `json:"articles"`
}

// SaveJSON writes the article list as an indented JSON document.
func SaveJSON(path string, articles []model.Article) error {
	dump := jsonDump{
		TotalResults: len(articles),
		Timestamp:    time.Now().Format(time.RFC3339),
		Articles:     articles,
	}

	data, err := json.MarshalIndent(dump, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal results: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write results file: %w", err)
	}
	return nil
}

// SaveText writes a human-readable rendering of the same results.
func SaveText(path string, articles []model.Article) error {
	var b strings.Builder
	divider := strings.Repeat("=", 80)

	b.WriteString("NEWS SEARCH RESULTS\n")
	b.WriteString(divider + "\n")
	fmt.Fprintf(&b, "Total Results: %d\n", len(articles))
	fmt.Fprintf(&b, "Generated: %s\n", time.Now().Format("2006-01-02 15:04:05"))
	b.WriteString(divider + "\n\n")

	for i, a := range articles {
		fmt.Fprintf(&b, "\n[%d] %s\n", i+1, a.Title)
		fmt.Fprintf(&b, "Source: %s\n", a.Source)
		fmt.Fprintf(&b, "Author: %s\n", a.Author)
		fmt.Fprintf(&b, "Published: %s\n", a.PublishedAt)
		fmt.Fprintf(&b, "URL: %s\n", a.URL)
		fmt.Fprintf(&b, "Description: %s\n", a.Description)
		b.WriteString(strings.Repeat("-", 80) + "\n")
	}

	if err := os.WriteFile(path, []byte(b.String()), 0644); err != nil {
		return fmt.Errorf("write results file: %w", err)
	}
	return nil
}
