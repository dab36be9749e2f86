// Package summarize sends aggregated articles to Gemini and returns
// prose. Every path out of this package is a displayable string — a
// failed or unavailable summary is reported, never raised.
package summarize

import (
	"context"
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"

	"github.com/deusflow/newsagent/internal/logger"
	"github.com/deusflow/newsagent/internal/metrics"
	"github.com/deusflow/newsagent/internal/model"
	"github.com/deusflow/newsagent/internal/ratelimit"
)

const (
	MsgUnavailable      = "Summary is unavailable because the Gemini model could not be initialized."
	MsgNoArticles       = "No articles were provided to summarize."
	MsgInsufficientText = "Could not extract sufficient text from the articles to generate a summary."
	MsgBudgetExhausted  = "Summary skipped: the Gemini request budget for this run is exhausted."
)

type Summarizer struct {
	client      *genai.Client
	modelName   string
	limiter     *ratelimit.Limiter
	maxArticles int
}

// New builds a Summarizer. An empty API key or a client construction
// failure leaves the client nil; Summarize then reports unavailability
// instead of calling out.
func New(ctx context.Context, apiKey, modelName string, maxArticles int, limiter *ratelimit.Limiter) *Summarizer {
	s := &Summarizer{modelName: modelName, limiter: limiter, maxArticles: maxArticles}
	if s.maxArticles <= 0 {
		s.maxArticles = 20
	}
	if apiKey == "" {
		logger.Warn("no Gemini API key configured, summaries unavailable")
		return s
	}
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		logger.Error("failed to create Gemini client", "error", err)
		return s
	}
	s.client = client
	return s
}

func (s *Summarizer) Close() {
	if s.client != nil {
		s.client.Close()
	}
}

// Summarize generates one neutral paragraph covering the supplied
// articles. Only the first maxArticles influence the prompt; the caller
// is expected to pass them most-recent-first.
func (s *Summarizer) Summarize(ctx context.Context, articles []model.Article, query string) string {
	if s.client == nil {
		return MsgUnavailable
	}
	if len(articles) == 0 {
		return MsgNoArticles
	}

	digest := buildDigest(articles, s.maxArticles)
	if strings.TrimSpace(digest) == "" {
		return MsgInsufficientText
	}

	if s.limiter != nil && !s.limiter.Allow() {
		logger.Warn("Gemini request budget exhausted", "used", s.limiter.Used())
		return MsgBudgetExhausted
	}

	prompt := buildPrompt(query, digest)

	logger.Info("generating summary", "query", query, "articles", min(len(articles), s.maxArticles))
	gm := s.client.GenerativeModel(s.modelName)
	resp, err := gm.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		logger.Error("Gemini summary generation failed", "error", err)
		metrics.Global.IncrementSummariesFailed()
		return fmt.Sprintf("An error occurred while generating the AI summary: %v", err)
	}

	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil || len(resp.Candidates[0].Content.Parts) == 0 {
		metrics.Global.IncrementSummariesFailed()
		return "An error occurred while generating the AI summary: empty response from Gemini"
	}

	metrics.Global.IncrementSummariesGenerated()
	return strings.TrimSpace(fmt.Sprintf("%v", resp.Candidates[0].Content.Parts[0]))
}

// buildDigest combines title and cleaned description of the first max
// articles into one text block for the prompt.
func buildDigest(articles []model.Article, max int) string {
	var b strings.Builder
	for i, a := range articles {
		if i >= max {
			break
		}
		description := StripMarkup(a.Description)
		if strings.TrimSpace(a.Title) == "" && description == "" {
			continue
		}
		fmt.Fprintf(&b, "Article %d:\nTitle: %s\nDescription: %s\n\n", i+1, a.Title, description)
	}
	return b.String()
}

func buildPrompt(query, digest string) string {
	return fmt.Sprintf(`You are an expert news analyst. Based on the following news articles about %q, please provide a concise, neutral, and easy-to-read summary.
Synthesize the main points and key developments into a single, coherent paragraph. Do not list the articles or cite sources in your summary. Just provide the summary itself.

Here are the articles to analyze:
---
%s
---

Summary:`, query, digest)
}

// StripMarkup reduces HTML-bearing text to plain text with entities
// decoded. Feed descriptions routinely carry markup.
func StripMarkup(s string) string {
	if !strings.ContainsAny(s, "<&") {
		return strings.TrimSpace(s)
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(s))
	if err != nil {
		return strings.TrimSpace(s)
	}
	return strings.TrimSpace(strings.Join(strings.Fields(doc.Text()), " "))
}
