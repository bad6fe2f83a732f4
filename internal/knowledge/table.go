// Package knowledge holds the static keyword table consulted before any network call.
package knowledge

import (
	"fmt"
	"strings"

	"github.com/sandevgo/aquabot/internal/core"
)

// Table is an ordered keyword table. Lookup is first match wins in declaration order,
// so overlapping keywords resolve by position, not by specificity.
type Table struct {
	entries []core.KnowledgeEntry
}

// New builds a table from entries, normalizing keywords to lower case.
func New(entries []core.KnowledgeEntry) (*Table, error) {
	seen := make(map[string]struct{}, len(entries))
	normalized := make([]core.KnowledgeEntry, 0, len(entries))

	for i, e := range entries {
		kw := strings.ToLower(strings.TrimSpace(e.Keyword))
		if kw == "" {
			return nil, fmt.Errorf("entry %d: empty keyword", i)
		}
		if strings.TrimSpace(e.Answer) == "" {
			return nil, fmt.Errorf("entry %d (%s): empty answer", i, kw)
		}
		if _, dup := seen[kw]; dup {
			return nil, fmt.Errorf("entry %d: duplicate keyword %q", i, kw)
		}
		seen[kw] = struct{}{}
		normalized = append(normalized, core.KnowledgeEntry{Keyword: kw, Answer: e.Answer})
	}

	return &Table{entries: normalized}, nil
}

func (t *Table) Resolve(query string) (string, bool) {
	e, ok := t.Match(query)
	if !ok {
		return "", false
	}
	return e.Answer, true
}

func (t *Table) Match(query string) (core.KnowledgeEntry, bool) {
	q := strings.ToLower(query)
	for _, e := range t.entries {
		if strings.Contains(q, e.Keyword) {
			return e, true
		}
	}
	return core.KnowledgeEntry{}, false
}

// Entries returns a copy of the table in lookup order.
func (t *Table) Entries() []core.KnowledgeEntry {
	out := make([]core.KnowledgeEntry, len(t.entries))
	copy(out, t.entries)
	return out
}

func (t *Table) Len() int {
	return len(t.entries)
}
