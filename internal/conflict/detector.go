// ABOUTME: Detector groups current final decisions and flags disagreement
// ABOUTME: Conflicts are surfaced into the inbox idempotently
package conflict

import (
	"fmt"
	"sort"
	"strings"

	"github.com/keelstore/keel/internal/models"
	"github.com/keelstore/keel/internal/store"
)

// Conflict is a group of current decisions that disagree. Surface is
// empty for a domain-level conflict triggered by a wildcard surface.
type Conflict struct {
	Domain      string
	Surface     string
	DecisionIDs []string
	Texts       []string
}

// Detector reads the current decision view and finds disagreement.
type Detector struct {
	store *store.Store
}

// NewDetector creates a Detector over the given store.
func NewDetector(s *store.Store) *Detector {
	return &Detector{store: s}
}

// DetectConflicts groups current final decisions by (domain, surface)
// and reports groups with disagreeing texts.
//
// Two rules apply. A surface-specific conflict needs two or more rows on
// the same non-empty (domain, surface) key with at least two distinct
// texts. A domain-level conflict fires when any row in a domain has an
// empty surface: the empty surface is a wildcard, so ALL rows in the
// domain are compared and flagged unless their texts are unanimous.
// The wildcard rule is intentionally aggressive and can pair decisions a
// user never meant to compare; it is kept as-is pending product review.
func (d *Detector) DetectConflicts() ([]Conflict, error) {
	current, err := d.store.CurrentDecisions()
	if err != nil {
		return nil, err
	}

	var rows []groupRow
	for _, rec := range current {
		if rec.Status != models.DecisionFinal {
			continue
		}
		domain, surface := rec.Domain, rec.Surface
		if domain == "" {
			domain, surface = inferKind(rec.Text)
			if domain == "" {
				continue
			}
		}
		rows = append(rows, groupRow{id: rec.ID, domain: domain, surface: surface, text: rec.Text})
	}

	byDomain := map[string][]groupRow{}
	for _, r := range rows {
		byDomain[r.domain] = append(byDomain[r.domain], r)
	}

	var conflicts []Conflict

	domains := make([]string, 0, len(byDomain))
	for dom := range byDomain {
		domains = append(domains, dom)
	}
	sort.Strings(domains)

	for _, domain := range domains {
		domainRows := byDomain[domain]

		hasWildcard := false
		bySurface := map[string][]groupRow{}
		for _, r := range domainRows {
			if r.surface == "" {
				hasWildcard = true
			}
			bySurface[r.surface] = append(bySurface[r.surface], r)
		}

		// Surface-specific conflicts.
		surfaces := make([]string, 0, len(bySurface))
		for s := range bySurface {
			if s != "" {
				surfaces = append(surfaces, s)
			}
		}
		sort.Strings(surfaces)
		for _, surface := range surfaces {
			group := bySurface[surface]
			if len(group) < 2 {
				continue
			}
			if c, ok := buildConflict(domain, surface, group); ok {
				conflicts = append(conflicts, c)
			}
		}

		// Domain-level wildcard conflict: compare every row in the domain.
		if hasWildcard {
			if c, ok := buildConflict(domain, "", domainRows); ok {
				conflicts = append(conflicts, c)
			}
		}
	}
	return conflicts, nil
}

// groupRow is a decision flattened to its grouping key for detection.
type groupRow struct {
	id, domain, surface, text string
}

func buildConflict(domain, surface string, group []groupRow) (Conflict, bool) {
	c := Conflict{Domain: domain, Surface: surface}
	seen := map[string]bool{}
	for _, r := range group {
		c.DecisionIDs = append(c.DecisionIDs, r.id)
		if !seen[r.text] {
			seen[r.text] = true
			c.Texts = append(c.Texts, r.text)
		}
	}
	if len(c.Texts) < 2 {
		return Conflict{}, false
	}
	return c, true
}

// EnsureConflictsInInbox appends an open conflict inbox item for every
// detected conflict that does not already have one. Running it twice in
// a row appends nothing the second time. Returns how many items were
// appended.
func (d *Detector) EnsureConflictsInInbox() (int, error) {
	conflicts, err := d.DetectConflicts()
	if err != nil {
		return 0, err
	}

	appended := 0
	for _, c := range conflicts {
		_, exists, err := d.store.OpenConflictItemFor(c.Domain, c.Surface)
		if err != nil {
			return appended, err
		}
		if exists {
			continue
		}
		if _, err := d.store.AppendConflictItem(c.Domain, c.Surface, conflictText(c), c.DecisionIDs, c.Texts); err != nil {
			return appended, err
		}
		appended++
	}
	return appended, nil
}

func conflictText(c Conflict) string {
	key := c.Domain
	if c.Surface != "" {
		key += "/" + c.Surface
	}
	return fmt.Sprintf("Conflicting decisions in %s: %s", key, strings.Join(c.Texts, " vs. "))
}
