package assistant

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"
	openai "github.com/sashabaranov/go-openai"

	"github.com/hyperifyio/seoscan/internal/report"
)

// Provider is the minimal chat capability the fallback chain needs. Any
// OpenAI-compatible or local backend can be adapted behind it.
type Provider interface {
	Name() string
	Chat(ctx context.Context, system, user string) (string, error)
}

// FallbackSource marks an answer produced without any provider.
const FallbackSource = "fallback"

// Answer is one assistant response tagged with the provider that produced
// it, or FallbackSource when every provider failed.
type Answer struct {
	Text   string `json:"text"`
	Source string `json:"source"`
}

// OpenAIProvider adapts *openai.Client to the Provider interface. Separate
// instances with different base URLs and models form the fallback tiers.
type OpenAIProvider struct {
	Label string
	Model string
	Inner *openai.Client
}

func (p *OpenAIProvider) Name() string { return p.Label }

func (p *OpenAIProvider) Chat(ctx context.Context, system, user string) (string, error) {
	resp, err := p.Inner.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: p.Model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: system},
			{Role: openai.ChatMessageRoleUser, Content: user},
		},
		Temperature: 0.2,
		N:           1,
	})
	if err != nil {
		return "", err
	}
	if len(resp.Choices) == 0 {
		return "", errors.New("empty completion")
	}
	out := strings.TrimSpace(resp.Choices[0].Message.Content)
	if out == "" {
		return "", errors.New("blank completion content")
	}
	return out, nil
}

// Chain invokes providers in order and short-circuits on the first success.
// When every provider fails, the templated summary built from the report is
// the guaranteed terminal branch; Ask never returns an error.
type Chain struct {
	Providers []Provider
}

// Ask answers a question about the report. Provider failures are logged and
// the next tier is tried.
func (c *Chain) Ask(ctx context.Context, r *report.Report, question string) Answer {
	system := systemPrompt
	user := buildUserMessage(r, question)
	for _, p := range c.Providers {
		text, err := p.Chat(ctx, system, user)
		if err != nil {
			log.Warn().Err(err).Str("provider", p.Name()).Msg("assistant provider failed, trying next")
			continue
		}
		return Answer{Text: text, Source: p.Name()}
	}
	return Answer{Text: FallbackAnswer(r), Source: FallbackSource}
}

const systemPrompt = "You are an SEO consultant. Answer using ONLY the analysis facts provided. Be concrete and concise, reference the detected issues by name, and do not invent metrics that are not listed."

// buildUserMessage summarizes the report into the prompt context followed by
// the user's question.
func buildUserMessage(r *report.Report, question string) string {
	var sb strings.Builder
	sb.WriteString("SEO analysis of ")
	sb.WriteString(r.URL)
	sb.WriteString(fmt.Sprintf("\nOverall score: %d/100 (%s)\n", r.OverallScore, report.StatusLabel(r.OverallScore)))
	sb.WriteString("Section scores:\n")
	for _, name := range report.SectionNames {
		if sec, ok := r.Sections[name]; ok {
			sb.WriteString(fmt.Sprintf("- %s: %d/100\n", name, sec.Score))
		}
	}
	sb.WriteString(fmt.Sprintf("Detected issues (%d):\n", len(r.Issues)))
	for i, issue := range r.Issues {
		sb.WriteString(fmt.Sprintf("%d. %s", i+1, issue))
		if i < len(r.Recommendations) {
			sb.WriteString(" -> ")
			sb.WriteString(r.Recommendations[i])
		}
		sb.WriteString("\n")
	}
	sb.WriteString("\nQuestion: ")
	sb.WriteString(question)
	return sb.String()
}

// FallbackAnswer builds the deterministic templated response used when no
// provider is reachable. It summarizes the score and the top findings.
func FallbackAnswer(r *report.Report) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("The page %s scored %d/100 (%s).", r.URL, r.OverallScore, report.StatusLabel(r.OverallScore)))
	if len(r.Issues) == 0 {
		sb.WriteString(" No issues were detected.")
		return sb.String()
	}
	sb.WriteString(fmt.Sprintf(" %d issues were detected. Top priorities:", len(r.Issues)))
	limit := len(r.Issues)
	if limit > 3 {
		limit = 3
	}
	for i := 0; i < limit; i++ {
		sb.WriteString(fmt.Sprintf("\n%d. %s", i+1, r.Issues[i]))
		if i < len(r.Recommendations) {
			sb.WriteString(": ")
			sb.WriteString(r.Recommendations[i])
		}
	}
	return sb.String()
}
