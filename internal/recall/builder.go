// ABOUTME: Engine assembles bounded, labeled snippet blocks for an intent
// ABOUTME: Deterministic for a given (intent, entities, userText, disk state)
package recall

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/keelstore/keel/internal/models"
	"github.com/keelstore/keel/internal/store"
)

// stateFocusMinOverlap is how many query tokens must overlap the
// project state's current_focus field before it is included.
const stateFocusMinOverlap = 2

// Block is one labeled contribution from a canonical source.
type Block struct {
	Label string
	Text  string
}

// Engine is the sole read path over the canonical stores. It never
// mutates anything and never calls out of process.
type Engine struct {
	store  *store.Store
	policy Policy
	scorer Scorer
}

// NewEngine creates an Engine with the default substring scorer.
func NewEngine(st *store.Store, policy Policy) *Engine {
	return &Engine{store: st, policy: policy, scorer: SubstringScorer{}}
}

// SetScorer swaps the chunk scoring heuristic.
func (e *Engine) SetScorer(s Scorer) { e.scorer = s }

// BuildSnippets selects and bounds excerpts from the sources allowed for
// intent. Blocks appear in allowlist order; a block that would exceed
// the remaining global budget is truncated, never dropped.
func (e *Engine) BuildSnippets(intent string, entities []string, userText string) ([]Block, error) {
	allowed, err := e.policy.Allowlist(intent)
	if err != nil {
		return nil, err
	}
	tokens := tokenize(userText, entities)

	var blocks []Block
	remaining := e.policy.Budget
	for _, source := range allowed {
		if remaining <= 0 {
			break
		}
		text, err := e.renderSource(source, tokens)
		if err != nil {
			return nil, err
		}
		if text == "" {
			continue
		}
		block := Block{Label: labelFor(source), Text: text}
		cost := len(block.Label) + 2 + len(block.Text)
		if cost > remaining {
			cut := remaining - len(block.Label) - 2
			if cut <= 0 {
				break
			}
			block.Text = cutAtRune(block.Text, cut)
			remaining = 0
		} else {
			remaining -= cost
		}
		blocks = append(blocks, block)
	}
	return blocks, nil
}

// cutAtRune truncates s to at most n bytes, backing off so a
// multi-byte rune is never split.
func cutAtRune(s string, n int) string {
	if n >= len(s) {
		return s
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n]
}

// Render joins blocks into the plain-text form handed to callers.
func Render(blocks []Block) string {
	var sb strings.Builder
	for i, b := range blocks {
		if i > 0 {
			sb.WriteString("\n\n")
		}
		sb.WriteString(b.Label)
		sb.WriteString(":\n")
		sb.WriteString(b.Text)
	}
	return sb.String()
}

func (e *Engine) renderSource(source string, tokens []string) (string, error) {
	switch source {
	case SourceDecisions:
		rows, err := e.store.ListDecisions("", "", true, 0)
		if err != nil {
			return "", err
		}
		lines := make([]string, 0, len(rows))
		for _, r := range rows {
			lines = append(lines, renderDecisionLine(r))
		}
		return e.renderLog(lines, tokens), nil

	case SourceInbox:
		rows, err := e.store.ListInbox(true)
		if err != nil {
			return "", err
		}
		lines := make([]string, 0, len(rows))
		for _, r := range rows {
			lines = append(lines, fmt.Sprintf("- [%s/%s] %s", r.Type, r.Status, r.Text))
		}
		return e.renderLog(lines, tokens), nil

	case SourceUploadNotes:
		rows, err := e.store.ListUploadNotes(0)
		if err != nil {
			return "", err
		}
		lines := make([]string, 0, len(rows))
		for _, r := range rows {
			if r.UploadPath != "" {
				lines = append(lines, fmt.Sprintf("- %s: %s", r.UploadPath, r.Answer))
			} else {
				lines = append(lines, "- "+r.Answer)
			}
		}
		return e.renderLog(lines, tokens), nil

	case SourceProjectState:
		st, err := e.store.ProjectState()
		if err != nil {
			return "", err
		}
		return e.renderProjectState(st, tokens), nil

	case SourceProjectMap:
		return e.renderDocument(store.ProjectMapFile, tokens)

	case SourceWorkingDoc:
		return e.renderDocument(store.WorkingDocFile, tokens)
	}
	return "", fmt.Errorf("unknown source %q", source)
}

// renderLog keeps the trailing LogTail lines, scores them, keeps the
// top-KeepPerSource (most recent on an all-zero tie), and sanitizes.
func (e *Engine) renderLog(lines []string, tokens []string) string {
	if len(lines) > e.policy.LogTail {
		lines = lines[len(lines)-e.policy.LogTail:]
	}
	kept := selectChunks(lines, tokens, e.scorer, e.policy.KeepPerSource, true)
	for i, l := range kept {
		kept[i] = sanitizeFragment(l)
	}
	return strings.Join(kept, "\n")
}

func (e *Engine) renderDocument(name string, tokens []string) (string, error) {
	doc, err := e.store.ReadDocument(name)
	if err != nil {
		return "", err
	}
	if strings.TrimSpace(doc) == "" {
		return "", nil
	}
	kept := selectChunks(splitChunks(doc), tokens, e.scorer, e.policy.KeepPerSource, false)
	for i, c := range kept {
		kept[i] = sanitizeFragment(c)
	}
	return strings.Join(kept, "\n\n"), nil
}

// renderProjectState includes the whole small document except the
// situational current_focus field, which needs at least two overlapping
// tokens; otherwise only the stable fields are kept.
func (e *Engine) renderProjectState(st models.ProjectState, tokens []string) string {
	var lines []string
	lines = append(lines, "Project: "+st.Project)
	if st.Phase != "" {
		lines = append(lines, "Phase: "+st.Phase)
	}
	if st.UpdatedAt != "" {
		lines = append(lines, "Updated: "+st.UpdatedAt)
	}
	if st.CurrentFocus != "" && e.scorer.Score(tokens, st.CurrentFocus) >= stateFocusMinOverlap {
		lines = append(lines, "Focus: "+sanitizeFragment(st.CurrentFocus))
	}
	return strings.Join(lines, "\n")
}

// sanitizeFragment cleans one included fragment: control markers and
// role prefixes stripped, whitespace collapsed per line.
func sanitizeFragment(s string) string {
	lines := strings.Split(s, "\n")
	for i, l := range lines {
		lines[i] = store.Line(store.StripRolePrefix(l))
	}
	return strings.TrimSpace(strings.Join(lines, "\n"))
}

func renderDecisionLine(r models.DecisionRecord) string {
	day := r.CreatedAt
	if len(day) >= 10 {
		day = day[:10]
	}
	key := r.Domain
	if r.Surface != "" {
		key += "/" + r.Surface
	}
	if key != "" {
		return fmt.Sprintf("- [%s] (%s) %s [%s]", day, key, r.Text, r.Status)
	}
	return fmt.Sprintf("- [%s] %s [%s]", day, r.Text, r.Status)
}

func labelFor(source string) string {
	switch source {
	case SourceDecisions:
		return "DECISIONS"
	case SourceInbox:
		return "INBOX"
	case SourceUploadNotes:
		return "UPLOAD NOTES"
	case SourceProjectState:
		return "PROJECT STATE"
	case SourceProjectMap:
		return "PROJECT MAP"
	case SourceWorkingDoc:
		return "WORKING DOC"
	}
	return strings.ToUpper(source)
}
