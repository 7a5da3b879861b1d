// ABOUTME: Winner-based conflict resolution over an open conflict inbox item
// ABOUTME: Losers get superseded markers and provenance links; the item closes
package conflict

import (
	"errors"
	"fmt"

	"github.com/keelstore/keel/internal/models"
	"github.com/keelstore/keel/internal/store"
)

// ResolveConflictByWinner closes the conflict inbox item by keeping the
// winner decision and retiring every other decision in the group. It
// returns false without writing anything when the item is missing, not
// an open conflict, or the winner is not one of its decision ids.
func (d *Detector) ResolveConflictByWinner(conflictInboxID, winnerDecisionID string) (bool, error) {
	items, err := d.store.ListInbox(false)
	if err != nil {
		return false, err
	}

	var item *models.InboxItem
	for i := range items {
		if items[i].ID == conflictInboxID {
			item = &items[i]
			break
		}
	}
	if item == nil || item.Type != models.InboxConflict || item.Status != models.InboxOpen {
		return false, nil
	}

	isMember := false
	for _, id := range item.DecisionIDs {
		if id == winnerDecisionID {
			isMember = true
			break
		}
	}
	if !isMember {
		return false, nil
	}

	for _, loserID := range item.DecisionIDs {
		if loserID == winnerDecisionID {
			continue
		}
		if err := d.retireLoser(winnerDecisionID, loserID); err != nil {
			return false, err
		}
	}

	note := fmt.Sprintf("kept %s", winnerDecisionID)
	if err := d.store.ResolveInboxItem(conflictInboxID, note, []string{"decision:" + winnerDecisionID}); err != nil {
		return false, err
	}
	return true, nil
}

func (d *Detector) retireLoser(winnerID, loserID string) error {
	loser, err := d.store.FindDecision(loserID)
	if err != nil {
		if !errors.Is(err, store.ErrNotFound) {
			return err
		}
		// A conflict item can reference a row that was since rewritten
		// under a derived id; a bare marker still retires the id.
		loser = models.DecisionRecord{ID: loserID}
	}
	if _, err := d.store.MarkDecisionSuperseded(loser); err != nil {
		return err
	}
	_, err = d.store.AddLink(models.LinkDecisionToDecision, "decision:"+winnerID, "decision:"+loserID, "conflict_resolution_supersedes", "")
	return err
}
