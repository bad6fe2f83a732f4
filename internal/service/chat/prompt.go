package chat

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/sandevgo/aquabot/internal/core"
)

const (
	GreetingText = "Hello! I can answer questions about rainwater harvesting or help with general queries. How can I assist you today?"

	// SummaryPrefix heads the bot message that carries a summary.
	SummaryPrefix = "Conversation Summary:\n"

	summaryInstruction = "Please summarize the following conversation concisely:\n\n"
	suggestPrompt      = `Suggest three brief, engaging questions a user might have about rainwater harvesting. Respond ONLY with a valid JSON array of strings, like ["question 1", "question 2", "question 3"].`
)

// TurnPrompt wraps a raw user query for the completion endpoint.
func TurnPrompt(query string) string {
	return `User query: "` + query + `". Please provide a helpful and concise response.`
}

// TranscriptLines renders messages as "sender: text" lines in log order.
func TranscriptLines(messages []core.Message) []string {
	lines := make([]string, 0, len(messages))
	for _, m := range messages {
		lines = append(lines, fmt.Sprintf("%s: %s", m.Sender, m.Text))
	}
	return lines
}

// BuildSummaryPrompt asks for a concise summary of messages.
func BuildSummaryPrompt(messages []core.Message) string {
	return buildSummaryPrompt(TranscriptLines(messages))
}

func buildSummaryPrompt(lines []string) string {
	return summaryInstruction + strings.Join(lines, "\n")
}

// ParseSuggestions decodes a JSON array of strings. Blank entries are dropped;
// a result with no questions left is a parse error too.
func ParseSuggestions(text string) ([]string, error) {
	raw := stripCodeFence(strings.TrimSpace(text))

	var items []string
	if err := json.Unmarshal([]byte(raw), &items); err != nil {
		return nil, fmt.Errorf("%w: %w", core.ErrSuggestionParse, err)
	}

	out := make([]string, 0, len(items))
	for _, s := range items {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("%w: no questions", core.ErrSuggestionParse)
	}
	return out, nil
}

// Models sometimes wrap JSON-mode output in a ```json fence anyway.
func stripCodeFence(s string) string {
	if !strings.HasPrefix(s, "```") || !strings.HasSuffix(s, "```") || len(s) < 6 {
		return s
	}
	s = strings.TrimSuffix(strings.TrimPrefix(s, "```"), "```")
	s = strings.TrimPrefix(s, "json")
	return strings.TrimSpace(s)
}
