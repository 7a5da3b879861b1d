// ABOUTME: Query tokenization for retrieval scoring
// ABOUTME: Lowercase alphanumeric tokens, length >= 3, deduplicated, capped
package recall

import "strings"

const (
	minTokenLen = 3
	maxTokens   = 32
)

// tokenize splits user text plus entities into scoring tokens. The
// result is deterministic for the same input: first-appearance order,
// duplicates removed, at most maxTokens kept.
func tokenize(userText string, entities []string) []string {
	raw := userText
	for _, e := range entities {
		raw += " " + e
	}

	fields := strings.FieldsFunc(strings.ToLower(raw), func(r rune) bool {
		return !(r >= 'a' && r <= 'z' || r >= '0' && r <= '9')
	})

	seen := map[string]bool{}
	var tokens []string
	for _, f := range fields {
		if len(f) < minTokenLen || seen[f] {
			continue
		}
		seen[f] = true
		tokens = append(tokens, f)
		if len(tokens) == maxTokens {
			break
		}
	}
	return tokens
}
