// Command newsagent searches several news sources for a topic, prints
// the merged results and optionally summarizes them with Gemini or
// keeps watching for new articles.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/deusflow/newsagent/internal/app"
	"github.com/deusflow/newsagent/internal/config"
	"github.com/deusflow/newsagent/internal/logger"
	"github.com/deusflow/newsagent/internal/metrics"
	"github.com/deusflow/newsagent/internal/model"
	"github.com/deusflow/newsagent/internal/storage"
)

var (
	flagQuery      string
	flagDays       int
	flagLanguage   string
	flagSortBy     string
	flagURLs       []string
	flagSummary    bool
	flagNotify     bool
	flagInterval   int
	flagJSONOut    string
	flagTextOut    string
	flagMaxDisplay int
	flagEvery      time.Duration
)

var rootCmd = &cobra.Command{
	Use:           "newsagent",
	Short:         "Multi-source news search with optional AI summary and re-poll notifications",
	SilenceUsage:  true,
	SilenceErrors: true,
}

var searchCmd = &cobra.Command{
	Use:   "search",
	Short: "Run one search across all configured sources",
	RunE:  runSearch,
}

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Re-run a search on a fixed cadence and announce new articles",
	RunE:  runWatch,
}

func init() {
	for _, cmd := range []*cobra.Command{searchCmd, watchCmd} {
		cmd.Flags().StringVarP(&flagQuery, "query", "q", "", "search topic (required)")
		cmd.Flags().IntVar(&flagDays, "days", 1, "how many days back to search")
		cmd.Flags().StringVar(&flagLanguage, "language", "", "language code for the keyed API (default from config)")
		cmd.Flags().StringVar(&flagSortBy, "sort-by", "", "keyed API sort order: publishedAt, relevancy or popularity")
		cmd.Flags().StringArrayVar(&flagURLs, "url", nil, "extra page URL to scrape (repeatable)")
		_ = cmd.MarkFlagRequired("query")
	}

	searchCmd.Flags().BoolVar(&flagSummary, "summary", false, "generate an AI summary of the results")
	searchCmd.Flags().BoolVar(&flagNotify, "notify", false, "schedule one follow-up search and notify on new articles")
	searchCmd.Flags().IntVar(&flagInterval, "interval", 60, "follow-up delay in minutes (with --notify)")
	searchCmd.Flags().StringVar(&flagJSONOut, "json-out", "", "write results to a JSON file")
	searchCmd.Flags().StringVar(&flagTextOut, "text-out", "", "write results to a text file")
	searchCmd.Flags().IntVar(&flagMaxDisplay, "max-display", 10, "articles to print (0 = all)")

	watchCmd.Flags().DurationVar(&flagEvery, "every", 30*time.Minute, "re-poll cadence")

	rootCmd.AddCommand(searchCmd, watchCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func setup(ctx context.Context) (*app.App, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	logger.Init(cfg.Debug)

	if os.Getenv("ENABLE_HTTP_MONITORING") == "true" {
		go startMonitoringServer(cfg.MonitoringPort)
	}

	return app.New(ctx, cfg)
}

func buildRequest() model.SearchRequest {
	return model.SearchRequest{
		Query:          flagQuery,
		DaysBack:       flagDays,
		Language:       flagLanguage,
		SortBy:         flagSortBy,
		CustomURLs:     flagURLs,
		Notify:         flagNotify,
		NotifyInterval: time.Duration(flagInterval) * time.Minute,
		Summarize:      flagSummary,
	}
}

func runSearch(cmd *cobra.Command, _ []string) error {
	ctx, cancel := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	a, err := setup(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	res := a.Search(ctx, buildRequest())
	printResults(cmd, res, flagMaxDisplay)

	if flagJSONOut != "" {
		if err := storage.SaveJSON(flagJSONOut, res.Articles); err != nil {
			return err
		}
		cmd.Printf("Results saved to %s\n", flagJSONOut)
	}
	if flagTextOut != "" {
		if err := storage.SaveText(flagTextOut, res.Articles); err != nil {
			return err
		}
		cmd.Printf("Results saved to %s\n", flagTextOut)
	}

	if flagNotify {
		cmd.Printf("Follow-up search scheduled in %d minutes, waiting...\n", flagInterval)
		a.WaitForFollowUps()
	}
	return nil
}

func runWatch(cmd *cobra.Command, _ []string) error {
	ctx, cancel := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	a, err := setup(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	return a.Watch(ctx, buildRequest(), flagEvery)
}

func printResults(cmd *cobra.Command, res model.SearchResult, max int) {
	if len(res.Articles) == 0 {
		cmd.Println("No results found.")
		return
	}

	cmd.Printf("Found %d news articles\n\n", len(res.Articles))

	shown := res.Articles
	if max > 0 && len(shown) > max {
		shown = shown[:max]
	}
	for i, a := range shown {
		cmd.Printf("[%d] %s\n", i+1, a.Title)
		cmd.Printf("    Source: %s | Author: %s\n", a.Source, a.Author)
		cmd.Printf("    Published: %s\n", a.PublishedAt)
		cmd.Printf("    %s\n", a.URL)
		if a.Description != "" {
			desc := a.Description
			if len(desc) > 200 {
				desc = desc[:200] + "..."
			}
			cmd.Printf("    %s\n", desc)
		}
		cmd.Println()
	}
	if rest := len(res.Articles) - len(shown); rest > 0 {
		cmd.Printf("... and %d more articles\n", rest)
	}

	if res.Summary != "" {
		cmd.Println("\nSummary:")
		cmd.Println(res.Summary)
	}
}

func startMonitoringServer(port string) {
	http.HandleFunc("/health", healthHandler)
	http.HandleFunc("/metrics", metricsHandler)

	logger.Info("starting monitoring server", "port", port)
	if err := http.ListenAndServe(":"+port, nil); err != nil {
		logger.Error("monitoring server error", "error", err)
	}
}

func healthHandler(w http.ResponseWriter, _ *http.Request) {
	stats := metrics.Global.GetStats()

	status := "ok"
	if !stats["is_healthy"].(bool) {
		status = "error"
		w.WriteHeader(http.StatusServiceUnavailable)
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]interface{}{
		"status":     status,
		"last_run":   stats["last_run_time"],
		"last_error": stats["last_error"],
	})
}

func metricsHandler(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(metrics.Global.GetStats())
}
