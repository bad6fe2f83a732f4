package knowledge

import (
	"testing"

	"github.com/sandevgo/aquabot/internal/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault_Order(t *testing.T) {
	var keywords []string
	for _, e := range Default().Entries() {
		keywords = append(keywords, e.Keyword)
	}
	assert.Equal(t, []string{"benefits", "methods", "start", "uses", "cost"}, keywords)
}

func TestTable_Resolve(t *testing.T) {
	table := Default()
	answers := map[string]string{}
	for _, e := range table.Entries() {
		answers[e.Keyword] = e.Answer
	}

	tests := []struct {
		name    string
		query   string
		wantKey string
		wantOk  bool
	}{
		{"exact keyword", "benefits", "benefits", true},
		{"case insensitive", "What are the BENEFITS of rainwater harvesting?", "benefits", true},
		{"substring inside word", "how can I get started?", "start", true},
		{"table order wins over position in query", "what is the cost to start", "start", true},
		{"earlier entry wins", "methods and benefits", "benefits", true},
		{"no match", "What is the capital of France?", "", false},
		{"empty query", "", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := table.Resolve(tt.query)
			assert.Equal(t, tt.wantOk, ok)
			if tt.wantOk {
				assert.Equal(t, answers[tt.wantKey], got)
			} else {
				assert.Empty(t, got)
			}
		})
	}
}

func TestTable_Match(t *testing.T) {
	e, ok := Default().Match("Typical USES?")
	require.True(t, ok)
	assert.Equal(t, "uses", e.Keyword)
}

func TestNew_Validation(t *testing.T) {
	tests := []struct {
		name    string
		entries []core.KnowledgeEntry
		wantErr string
	}{
		{"empty keyword", []core.KnowledgeEntry{{Keyword: "  ", Answer: "a"}}, "empty keyword"},
		{"empty answer", []core.KnowledgeEntry{{Keyword: "k", Answer: ""}}, "empty answer"},
		{"duplicate after normalizing", []core.KnowledgeEntry{{Keyword: "Cost", Answer: "a"}, {Keyword: "cost ", Answer: "b"}}, "duplicate"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(tt.entries)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestNew_NormalizesKeywords(t *testing.T) {
	table, err := New([]core.KnowledgeEntry{{Keyword: " Tank ", Answer: "Tanks hold water."}})
	require.NoError(t, err)

	got, ok := table.Resolve("how big a TANK?")
	assert.True(t, ok)
	assert.Equal(t, "Tanks hold water.", got)
}
