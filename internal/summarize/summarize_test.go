package summarize

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/google/generative-ai-go/genai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/deusflow/newsagent/internal/model"
)

func TestSummarize_UnavailableWithoutClient(t *testing.T) {
	s := New(context.Background(), "", "gemini-2.5-flash", 20, nil)
	got := s.Summarize(context.Background(), []model.Article{{Title: "Anything"}}, "sudan")
	assert.Equal(t, MsgUnavailable, got)
}

func TestSummarize_NoArticles(t *testing.T) {
	s := &Summarizer{client: &genai.Client{}, modelName: "gemini-2.5-flash", maxArticles: 20}
	got := s.Summarize(context.Background(), nil, "sudan")
	assert.Equal(t, MsgNoArticles, got)
}

func TestSummarize_InsufficientText(t *testing.T) {
	s := &Summarizer{client: &genai.Client{}, modelName: "gemini-2.5-flash", maxArticles: 20}
	articles := []model.Article{
		{Title: "", Description: "<p>   </p>"},
		{Title: "   ", Description: ""},
	}
	got := s.Summarize(context.Background(), articles, "sudan")
	assert.Equal(t, MsgInsufficientText, got)
}

func TestBuildDigest_CapsAtMax(t *testing.T) {
	var articles []model.Article
	for i := 1; i <= 25; i++ {
		articles = append(articles, model.Article{
			Title:       fmt.Sprintf("Headline %d", i),
			Description: fmt.Sprintf("Description %d", i),
		})
	}

	digest := buildDigest(articles, 20)
	assert.Contains(t, digest, "Headline 1")
	assert.Contains(t, digest, "Headline 20")
	assert.NotContains(t, digest, "Headline 21")
	assert.NotContains(t, digest, "Headline 25")

	// Supplied order is preserved.
	require.Less(t, strings.Index(digest, "Headline 1\n"), strings.Index(digest, "Headline 2\n"))
}

func TestBuildDigest_StripsMarkupFromDescriptions(t *testing.T) {
	articles := []model.Article{{
		Title:       "Markets react",
		Description: `<p>Prices rose <b>sharply</b> &amp; quickly.</p>`,
	}}
	digest := buildDigest(articles, 20)
	assert.Contains(t, digest, "Prices rose sharply & quickly.")
	assert.NotContains(t, digest, "<b>")
	assert.NotContains(t, digest, "&amp;")
}

func TestStripMarkup(t *testing.T) {
	assert.Equal(t, "plain text stays", StripMarkup("plain text stays"))
	assert.Equal(t, "Hello & world", StripMarkup("<p>Hello &amp; world</p>"))
	assert.Equal(t, "a b", StripMarkup("<div>a</div>\n<div>b</div>"))
	assert.Equal(t, "", StripMarkup("<p>  </p>"))
}

func TestBuildPrompt(t *testing.T) {
	prompt := buildPrompt("sudan", "Article 1:\nTitle: X\nDescription: Y\n")
	assert.Contains(t, prompt, `"sudan"`)
	assert.Contains(t, prompt, "single, coherent paragraph")
	assert.Contains(t, prompt, "Do not list the articles or cite sources")
	assert.Contains(t, prompt, "Title: X")
}
