// ABOUTME: Chunk scoring behind a narrow interface so the heuristic can change
// ABOUTME: The default counts query tokens appearing as substrings of a chunk
package recall

import (
	"sort"
	"strings"
)

// Scorer rates how relevant a chunk is to the query tokens. Higher is
// better; zero means no overlap.
type Scorer interface {
	Score(tokens []string, chunk string) int
}

// SubstringScorer counts how many tokens occur as substrings of the
// lowercased chunk. Bounded and deterministic; not relevance ranking in
// the information-retrieval sense.
type SubstringScorer struct{}

func (SubstringScorer) Score(tokens []string, chunk string) int {
	lower := strings.ToLower(chunk)
	n := 0
	for _, tok := range tokens {
		if strings.Contains(lower, tok) {
			n++
		}
	}
	return n
}

// selectChunks keeps the top-keep chunks by score, ties broken by
// earlier position. When every score is zero, it keeps the first keep
// chunks, or the last keep when preferRecent is set (log sources).
// Selected chunks are returned in their original order.
func selectChunks(chunks []string, tokens []string, scorer Scorer, keep int, preferRecent bool) []string {
	if keep <= 0 || len(chunks) == 0 {
		return nil
	}
	if len(chunks) <= keep {
		return chunks
	}

	type scored struct {
		pos   int
		score int
	}
	ranked := make([]scored, len(chunks))
	allZero := true
	for i, c := range chunks {
		sc := scorer.Score(tokens, c)
		if sc > 0 {
			allZero = false
		}
		ranked[i] = scored{pos: i, score: sc}
	}

	if allZero {
		if preferRecent {
			return chunks[len(chunks)-keep:]
		}
		return chunks[:keep]
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		if ranked[i].score != ranked[j].score {
			return ranked[i].score > ranked[j].score
		}
		return ranked[i].pos < ranked[j].pos
	})

	kept := ranked[:keep]
	sort.Slice(kept, func(i, j int) bool { return kept[i].pos < kept[j].pos })

	out := make([]string, 0, keep)
	for _, s := range kept {
		out = append(out, chunks[s.pos])
	}
	return out
}

// splitChunks breaks a narrative document into paragraph chunks on blank
// lines, falling back to line chunks when the document has no blank
// lines at all.
func splitChunks(doc string) []string {
	doc = strings.ReplaceAll(doc, "\r\n", "\n")

	var chunks []string
	for _, p := range strings.Split(doc, "\n\n") {
		if strings.TrimSpace(p) != "" {
			chunks = append(chunks, strings.TrimSpace(p))
		}
	}
	if len(chunks) > 1 {
		return chunks
	}

	var lines []string
	for _, l := range strings.Split(doc, "\n") {
		if strings.TrimSpace(l) != "" {
			lines = append(lines, strings.TrimSpace(l))
		}
	}
	if len(lines) > 1 {
		return lines
	}
	return chunks
}
