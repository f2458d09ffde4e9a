package feed

import (
	"math"
	"time"
)

// Weights configures every term of the relevance score. All terms are
// additive; nothing normalizes or clamps the sum, so only the long-read
// penalty can pull a score down.
type Weights struct {
	// Recency decays linearly from RecencyMax at publish time to zero at
	// RecencyWindowDays.
	RecencyMax        float64
	RecencyWindowDays float64

	// Flat bonus when the post's author is followed.
	AuthorBonus float64

	// Flat bonus when the post has a category and it is followed.
	CategoryBonus float64

	// Bonus per followed tag on the post; the sum is uncapped.
	PerTagBonus float64

	// Engagement is ln(reactions + 2*comments + views/10 + 1) times this.
	EngagementMultiplier float64

	// Flat bonus when the post is not in the user's read history.
	UnreadBonus float64

	// Reading-time shaping buckets, in minutes. Posts at or under
	// ShortReadMax get ShortReadBonus; over that and at or under
	// MediumReadMax get MediumReadBonus; over LongReadMin get
	// LongReadPenalty. Anything between, or with no estimate, gets nothing.
	ShortReadMax    int
	MediumReadMax   int
	LongReadMin     int
	ShortReadBonus  float64
	MediumReadBonus float64
	LongReadPenalty float64
}

// DefaultWeights returns the production scoring constants.
func DefaultWeights() Weights {
	return Weights{
		RecencyMax:           30,
		RecencyWindowDays:    7,
		AuthorBonus:          50,
		CategoryBonus:        30,
		PerTagBonus:          15,
		EngagementMultiplier: 10,
		UnreadBonus:          20,
		ShortReadMax:         5,
		MediumReadMax:        15,
		LongReadMin:          30,
		ShortReadBonus:       10,
		MediumReadBonus:      15,
		LongReadPenalty:      -5,
	}
}

// Score computes the relevance of one candidate for one user. Pure and
// deterministic: the same candidate, preferences, clock and weights always
// produce the same score.
func Score(c Candidate, prefs Preferences, now time.Time, w Weights) float64 {
	score := 0.0

	// Freshness, linear within the window, floored at zero
	daysSincePublish := now.Sub(c.PublishedAt).Hours() / 24
	score += math.Max(0, 1-daysSincePublish/w.RecencyWindowDays) * w.RecencyMax

	if prefs.Authors[c.AuthorID] {
		score += w.AuthorBonus
	}

	if c.CategoryID != nil && prefs.Categories[*c.CategoryID] {
		score += w.CategoryBonus
	}

	for _, tagID := range c.TagIDs {
		if prefs.Tags[tagID] {
			score += w.PerTagBonus
		}
	}

	engagement := float64(c.ReactionCount) +
		2*float64(c.CommentCount) +
		float64(c.ViewCount)/10
	score += math.Log(engagement+1) * w.EngagementMultiplier

	if !prefs.ReadPosts[c.ID] {
		score += w.UnreadBonus
	}

	if c.ReadingTime != nil {
		switch rt := *c.ReadingTime; {
		case rt <= w.ShortReadMax:
			score += w.ShortReadBonus
		case rt <= w.MediumReadMax:
			score += w.MediumReadBonus
		case rt > w.LongReadMin:
			score += w.LongReadPenalty
		}
	}

	return score
}
