// Package tokens counts cl100k_base tokens for prompt budgeting.
package tokens

import (
	"fmt"
	"sync"

	"github.com/pkoukk/tiktoken-go"
)

const encoding = "cl100k_base"

var (
	tk     *tiktoken.Tiktoken
	tkErr  error
	tkOnce sync.Once
)

// The encoding tables are fetched on first use, so loading can fail offline.
func getTokenizer() (*tiktoken.Tiktoken, error) {
	tkOnce.Do(func() {
		tk, tkErr = tiktoken.GetEncoding(encoding)
		if tkErr != nil {
			tkErr = fmt.Errorf("load %s: %w", encoding, tkErr)
		}
	})
	return tk, tkErr
}

// Count returns the number of tokens in text.
func Count(text string) (int, error) {
	if text == "" {
		return 0, nil
	}
	enc, err := getTokenizer()
	if err != nil {
		return 0, err
	}
	return len(enc.Encode(text, nil, nil)), nil
}

// KeepNewest returns the longest suffix of lines whose combined size, counting one
// separator token per line, fits in maxTokens. maxTokens <= 0 disables the budget.
func KeepNewest(lines []string, maxTokens int) ([]string, error) {
	if maxTokens <= 0 || len(lines) == 0 {
		return lines, nil
	}

	total := 0
	start := len(lines)
	for i := len(lines) - 1; i >= 0; i-- {
		n, err := Count(lines[i])
		if err != nil {
			return nil, err
		}
		if total+n+1 > maxTokens {
			break
		}
		total += n + 1
		start = i
	}
	return lines[start:], nil
}
