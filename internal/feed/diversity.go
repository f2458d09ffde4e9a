package feed

import (
	"github.com/inkwellhq/inkwell/backend/internal/logger"
	"go.uber.org/zap"
)

// maxConsecutiveSameAuthor caps how many of the previous two accepted slots
// may already belong to a candidate's author.
const maxConsecutiveSameAuthor = 2

// applyAuthorDiversity walks the score-descending list and keeps a candidate
// only when fewer than maxConsecutiveSameAuthor of the last two accepted
// slots share its author. Rejected candidates are dropped from this ranking
// pass entirely. The walk stops as soon as maxItems candidates are accepted,
// so items ranked past the cutoff are never revisited on later pages.
func (s *Service) applyAuthorDiversity(ranked []ScoredCandidate, maxItems int) []ScoredCandidate {
	selected := make([]ScoredCandidate, 0, maxItems)
	authorCounts := make(map[string]int)

	for _, candidate := range ranked {
		if len(selected) >= maxItems {
			break
		}

		recentSameAuthor := 0
		for i := len(selected) - 1; i >= 0 && i >= len(selected)-maxConsecutiveSameAuthor; i-- {
			if selected[i].AuthorID == candidate.AuthorID {
				recentSameAuthor++
			}
		}
		if recentSameAuthor >= maxConsecutiveSameAuthor {
			continue
		}

		selected = append(selected, candidate)
		authorCounts[candidate.AuthorID]++
	}

	logger.Log.Debug("Applied author diversity filter",
		zap.Int("ranked", len(ranked)),
		zap.Int("selected", len(selected)),
		zap.Int("distinct_authors", len(authorCounts)),
	)

	return selected
}
