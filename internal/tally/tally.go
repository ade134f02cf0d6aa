// Package tally aggregates participant selections into per-label vote counts
// and picks a plurality winner for every label.
package tally

import (
	"pinot/internal/model"
)

// Votes maps labelId -> cardId -> count
type Votes map[string]map[string]int

// Count adds one vote for every (label, card) pair of every selection.
// Selections are not validated against the event's deck.
func Count(selections []*model.Selection) Votes {
	votes := Votes{}
	for _, sel := range selections {
		if sel == nil {
			continue
		}
		for labelID, cardID := range sel.Selections {
			if cardID == "" {
				continue
			}
			if votes[labelID] == nil {
				votes[labelID] = map[string]int{}
			}
			votes[labelID][cardID]++
		}
	}
	return votes
}

// Resolve picks the max-vote card for each label with at least one vote.
// Ties go to the card with the lowest deck rank.
func Resolve(votes Votes) map[string]string {
	solution := make(map[string]string, len(votes))
	for labelID, counts := range votes {
		if w, ok := Winner(counts); ok {
			solution[labelID] = w
		}
	}
	return solution
}

// Winner returns the plurality card of one label
func Winner(counts map[string]int) (string, bool) {
	best := ""
	bestVotes := 0
	for cardID, n := range counts {
		if n <= 0 {
			continue
		}
		if n > bestVotes || (n == bestVotes && ranksBefore(cardID, best)) {
			best, bestVotes = cardID, n
		}
	}
	return best, bestVotes > 0
}

// ranksBefore orders deck cards by rank, then unknown ids lexically
func ranksBefore(a, b string) bool {
	ca, okA := model.CardByID(a)
	cb, okB := model.CardByID(b)
	switch {
	case okA && okB:
		return ca.Rank < cb.Rank
	case okA != okB:
		return okA
	default:
		return a < b
	}
}

// Matches counts the labels where a selection agrees with the solution
func Matches(sel *model.Selection, solution map[string]string) int {
	n := 0
	for labelID, cardID := range sel.Selections {
		if cardID != "" && solution[labelID] == cardID {
			n++
		}
	}
	return n
}
