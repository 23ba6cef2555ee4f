package evidence

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/suykerbuyk/proofline/internal/hashid"
)

// ReasonPriority explains every conflict the resolver emits.
const ReasonPriority = "same action observed via multiple channels: kept highest priority, then confidence, then most recent"

// Resolution is the deduplicated evidence plus one conflict per collision group.
type Resolution struct {
	Evidence  []Item     `json:"evidence"`
	Conflicts []Conflict `json:"conflicts"`
}

// ResolveConflicts groups items by (minute, projectId, case-insensitive
// summary) and keeps one winner per group. The result does not depend on
// input order.
func ResolveConflicts(items []Item) Resolution {
	groups := make(map[string][]Item)
	var keys []string
	for _, it := range items {
		k := collisionKey(it)
		if _, ok := groups[k]; !ok {
			keys = append(keys, k)
		}
		groups[k] = append(groups[k], it)
	}

	res := Resolution{
		Evidence:  make([]Item, 0, len(keys)),
		Conflicts: make([]Conflict, 0),
	}
	winners := make(map[string]Item)
	for _, k := range keys {
		group := groups[k]
		winner := group[0]
		for _, it := range group[1:] {
			if outranks(it, winner) {
				winner = it
			}
		}
		res.Evidence = append(res.Evidence, winner)
		if len(group) == 1 {
			continue
		}

		discarded := make([]string, 0, len(group)-1)
		for _, it := range group {
			if it.ID != winner.ID {
				discarded = append(discarded, it.ID)
			}
		}
		sort.Strings(discarded)
		winners[winner.ID] = winner
		res.Conflicts = append(res.Conflicts, Conflict{
			ID:                   hashid.Sum("cf", append([]hashid.Part{hashid.Str(winner.ID)}, hashid.Strs(discarded)...)...),
			WinnerEvidenceID:     winner.ID,
			DiscardedEvidenceIDs: discarded,
			Reason:               ReasonPriority,
			Confidence:           winner.Confidence,
		})
	}

	sortItems(res.Evidence)
	sort.Slice(res.Conflicts, func(i, j int) bool {
		a, b := winners[res.Conflicts[i].WinnerEvidenceID], winners[res.Conflicts[j].WinnerEvidenceID]
		if !a.TS.Equal(b.TS) {
			return a.TS.Before(b.TS)
		}
		return a.ID < b.ID
	})
	return res
}

func collisionKey(it Item) string {
	bucket := it.TS.UTC().Truncate(time.Minute).Unix()
	return fmt.Sprintf("%d|%s|%s", bucket, it.ProjectID, strings.ToLower(strings.TrimSpace(it.Summary)))
}

// outranks orders by priority, confidence, recency, then id.
func outranks(a, b Item) bool {
	if a.Priority != b.Priority {
		return a.Priority > b.Priority
	}
	if a.Confidence != b.Confidence {
		return a.Confidence > b.Confidence
	}
	if !a.TS.Equal(b.TS) {
		return a.TS.After(b.TS)
	}
	return a.ID < b.ID
}

func sortItems(items []Item) {
	sort.Slice(items, func(i, j int) bool {
		if !items[i].TS.Equal(items[j].TS) {
			return items[i].TS.Before(items[j].TS)
		}
		return items[i].ID < items[j].ID
	})
}
