package feed

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func scoredByAuthor(authors ...string) []ScoredCandidate {
	out := make([]ScoredCandidate, 0, len(authors))
	for i, author := range authors {
		out = append(out, ScoredCandidate{
			Candidate: Candidate{
				ID:       fmt.Sprintf("post-%d", i),
				AuthorID: author,
			},
			RelevanceScore: float64(1000 - i), // already score-descending
		})
	}
	return out
}

// assertWindowInvariant checks that no author occupies both of the two slots
// preceding any accepted item of the same author — i.e. never three in a row.
func assertWindowInvariant(t *testing.T, selected []ScoredCandidate) {
	t.Helper()
	for i := 2; i < len(selected); i++ {
		same := selected[i].AuthorID == selected[i-1].AuthorID &&
			selected[i].AuthorID == selected[i-2].AuthorID
		assert.False(t, same,
			"three consecutive posts by %s at positions %d..%d", selected[i].AuthorID, i-2, i)
	}
}

func TestDiversityDropsThirdConsecutive(t *testing.T) {
	svc := &Service{}

	ranked := scoredByAuthor("a", "a", "a", "b", "a", "b")
	selected := svc.applyAuthorDiversity(ranked, 10)

	// The third "a" is dropped; everything after shifts up
	ids := make([]string, 0, len(selected))
	for _, sc := range selected {
		ids = append(ids, sc.ID)
	}
	assert.Equal(t, []string{"post-0", "post-1", "post-3", "post-4", "post-5"}, ids)
	assertWindowInvariant(t, selected)
}

func TestDiversityInterleavedAuthors(t *testing.T) {
	svc := &Service{}

	// Heavy single-author run interrupted by a second author
	ranked := scoredByAuthor("a", "a", "a", "a", "b", "a", "a", "a", "b", "b", "b", "a")
	selected := svc.applyAuthorDiversity(ranked, 20)

	assertWindowInvariant(t, selected)

	// Dropped candidates never reappear
	seen := make(map[string]bool)
	for _, sc := range selected {
		assert.False(t, seen[sc.ID], "candidate %s selected twice", sc.ID)
		seen[sc.ID] = true
	}
	assert.False(t, seen["post-2"], "the third consecutive same-author post must be dropped")
	assert.False(t, seen["post-3"], "a run of four keeps only the first two")
}

func TestDiversityPreservesScoreOrder(t *testing.T) {
	svc := &Service{}

	ranked := scoredByAuthor("a", "b", "c", "a", "b", "c", "a")
	selected := svc.applyAuthorDiversity(ranked, 10)

	// Distinct-author runs pass through untouched, still score-descending
	assert.Len(t, selected, 7)
	for i := 1; i < len(selected); i++ {
		assert.GreaterOrEqual(t, selected[i-1].RelevanceScore, selected[i].RelevanceScore)
	}
}

func TestDiversityEagerStop(t *testing.T) {
	svc := &Service{}

	ranked := scoredByAuthor("a", "b", "c", "d", "e", "f", "g", "h")
	selected := svc.applyAuthorDiversity(ranked, 3)

	assert.Len(t, selected, 3)
	assert.Equal(t, "post-0", selected[0].ID)
	assert.Equal(t, "post-2", selected[2].ID)
}

func TestDiversityShortOutput(t *testing.T) {
	svc := &Service{}

	// All one author: only the first two survive, output shorter than asked
	ranked := scoredByAuthor("a", "a", "a", "a", "a")
	selected := svc.applyAuthorDiversity(ranked, 10)

	assert.Len(t, selected, 2)
}

func TestDiversityEmptyInput(t *testing.T) {
	svc := &Service{}

	selected := svc.applyAuthorDiversity(nil, 10)
	assert.Empty(t, selected)
}
