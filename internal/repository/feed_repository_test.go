package repository

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/inkwellhq/inkwell/backend/internal/feed"
	"github.com/inkwellhq/inkwell/backend/internal/models"
)

func TestFollowedIDs(t *testing.T) {
	db := setupTestDB(t)
	repo := NewFeedRepository(db)
	ctx := context.Background()

	reader := createTestUser(t, db, "reader")
	author := createTestUser(t, db, "author")
	category := createTestCategory(t, db, "essays")
	tag := createTestTag(t, db, "craft")

	require.NoError(t, db.Create(&models.AuthorFollow{UserID: reader.ID, AuthorID: author.ID}).Error)
	require.NoError(t, db.Create(&models.CategoryFollow{UserID: reader.ID, CategoryID: category.ID}).Error)
	require.NoError(t, db.Create(&models.TagFollow{UserID: reader.ID, TagID: tag.ID}).Error)

	authorIDs, err := repo.FollowedAuthorIDs(ctx, reader.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{author.ID}, authorIDs)

	categoryIDs, err := repo.FollowedCategoryIDs(ctx, reader.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{category.ID}, categoryIDs)

	tagIDs, err := repo.FollowedTagIDs(ctx, reader.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{tag.ID}, tagIDs)

	// A user with no follows gets empty sets, not errors
	none, err := repo.FollowedAuthorIDs(ctx, author.ID)
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestReadPostIDs(t *testing.T) {
	db := setupTestDB(t)
	repo := NewFeedRepository(db)
	ctx := context.Background()

	reader := createTestUser(t, db, "reader")
	author := createTestUser(t, db, "author")
	post := createTestPost(t, db, author, "Read Me", models.PostStatusPublished, timePtr(time.Now()))

	require.NoError(t, db.Create(&models.PostRead{UserID: reader.ID, PostID: post.ID}).Error)

	ids, err := repo.ReadPostIDs(ctx, reader.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{post.ID}, ids)
}

func TestFetchCandidatesPublishedOnly(t *testing.T) {
	db := setupTestDB(t)
	repo := NewFeedRepository(db)
	ctx := context.Background()

	author := createTestUser(t, db, "author")
	published := createTestPost(t, db, author, "Published", models.PostStatusPublished, timePtr(time.Now()))
	createTestPost(t, db, author, "Still A Draft", models.PostStatusDraft, nil)
	createTestPost(t, db, author, "Archived Piece", models.PostStatusArchived, nil)

	candidates, total, err := repo.FetchCandidates(ctx, feed.CandidateQuery{Limit: 10})
	require.NoError(t, err)

	assert.Equal(t, int64(1), total)
	require.Len(t, candidates, 1)
	assert.Equal(t, published.ID, candidates[0].ID)
}

func TestFetchCandidatesOrderAndCap(t *testing.T) {
	db := setupTestDB(t)
	repo := NewFeedRepository(db)
	ctx := context.Background()

	author := createTestUser(t, db, "author")
	base := time.Now().Add(-24 * time.Hour)
	titles := []string{"First", "Second", "Third", "Fourth", "Fifth"}
	for i, title := range titles {
		createTestPost(t, db, author, title, models.PostStatusPublished, timePtr(base.Add(time.Duration(i)*time.Hour)))
	}

	candidates, total, err := repo.FetchCandidates(ctx, feed.CandidateQuery{Limit: 2})
	require.NoError(t, err)

	// The pool is capped but the count is not
	assert.Equal(t, int64(5), total)
	require.Len(t, candidates, 2)
	assert.Equal(t, "Fifth", candidates[0].Title)
	assert.Equal(t, "Fourth", candidates[1].Title)
}

func TestFetchCandidatesCategoryFilter(t *testing.T) {
	db := setupTestDB(t)
	repo := NewFeedRepository(db)
	ctx := context.Background()

	author := createTestUser(t, db, "author")
	essays := createTestCategory(t, db, "essays")
	interviews := createTestCategory(t, db, "interviews")

	inEssays := createTestPost(t, db, author, "On Drafting", models.PostStatusPublished, timePtr(time.Now()))
	require.NoError(t, db.Model(inEssays).Update("category_id", essays.ID).Error)
	inInterviews := createTestPost(t, db, author, "A Conversation", models.PostStatusPublished, timePtr(time.Now()))
	require.NoError(t, db.Model(inInterviews).Update("category_id", interviews.ID).Error)

	candidates, total, err := repo.FetchCandidates(ctx, feed.CandidateQuery{Category: "essays", Limit: 10})
	require.NoError(t, err)

	assert.Equal(t, int64(1), total)
	require.Len(t, candidates, 1)
	assert.Equal(t, inEssays.ID, candidates[0].ID)
	assert.Equal(t, "essays", candidates[0].CategorySlug)
}

func TestFetchCandidatesAuthorFilter(t *testing.T) {
	db := setupTestDB(t)
	repo := NewFeedRepository(db)
	ctx := context.Background()

	alice := createTestUser(t, db, "alice")
	bob := createTestUser(t, db, "bob")
	fromAlice := createTestPost(t, db, alice, "By Alice", models.PostStatusPublished, timePtr(time.Now()))
	createTestPost(t, db, bob, "By Bob", models.PostStatusPublished, timePtr(time.Now()))

	candidates, total, err := repo.FetchCandidates(ctx, feed.CandidateQuery{Author: "alice", Limit: 10})
	require.NoError(t, err)

	assert.Equal(t, int64(1), total)
	require.Len(t, candidates, 1)
	assert.Equal(t, fromAlice.ID, candidates[0].ID)
	assert.Equal(t, "alice Display", candidates[0].AuthorName)
}

func TestFetchCandidatesLoadsTags(t *testing.T) {
	db := setupTestDB(t)
	repo := NewFeedRepository(db)
	ctx := context.Background()

	author := createTestUser(t, db, "author")
	craft := createTestTag(t, db, "craft")
	writing := createTestTag(t, db, "writing")
	post := createTestPost(t, db, author, "Tagged Post", models.PostStatusPublished, timePtr(time.Now()))
	require.NoError(t, db.Create(&models.PostTag{PostID: post.ID, TagID: craft.ID}).Error)
	require.NoError(t, db.Create(&models.PostTag{PostID: post.ID, TagID: writing.ID}).Error)

	candidates, _, err := repo.FetchCandidates(ctx, feed.CandidateQuery{Limit: 10})
	require.NoError(t, err)

	require.Len(t, candidates, 1)
	assert.ElementsMatch(t, []string{craft.ID, writing.ID}, candidates[0].TagIDs)
	assert.ElementsMatch(t, []string{"craft", "writing"}, candidates[0].TagSlugs)
}

func TestFetchTrendingWindowAndOrder(t *testing.T) {
	db := setupTestDB(t)
	repo := NewFeedRepository(db)
	ctx := context.Background()

	author := createTestUser(t, db, "author")
	now := time.Now()

	hot := createTestPost(t, db, author, "Hot", models.PostStatusPublished, timePtr(now.Add(-24*time.Hour)))
	require.NoError(t, db.Model(hot).Updates(map[string]interface{}{"reaction_count": 50, "comment_count": 5}).Error)

	tied := createTestPost(t, db, author, "Tied On Reactions", models.PostStatusPublished, timePtr(now.Add(-48*time.Hour)))
	require.NoError(t, db.Model(tied).Updates(map[string]interface{}{"reaction_count": 50, "comment_count": 2}).Error)

	quiet := createTestPost(t, db, author, "Quiet", models.PostStatusPublished, timePtr(now.Add(-24*time.Hour)))

	stale := createTestPost(t, db, author, "Stale Viral Hit", models.PostStatusPublished, timePtr(now.Add(-30*24*time.Hour)))
	require.NoError(t, db.Model(stale).Update("reaction_count", 900).Error)

	candidates, err := repo.FetchTrending(ctx, now.AddDate(0, 0, -7), 10)
	require.NoError(t, err)

	// The month-old hit falls outside the window no matter its counters,
	// and the reaction tie breaks on comments
	require.Len(t, candidates, 3)
	assert.Equal(t, hot.ID, candidates[0].ID)
	assert.Equal(t, tied.ID, candidates[1].ID)
	assert.Equal(t, quiet.ID, candidates[2].ID)
}

func TestFetchCandidatesQueryError(t *testing.T) {
	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer sqlDB.Close()

	db, err := gorm.Open(postgres.New(postgres.Config{Conn: sqlDB}), &gorm.Config{})
	require.NoError(t, err)

	mock.ExpectQuery(`SELECT count\(\*\) FROM "posts"`).
		WillReturnError(assert.AnError)

	repo := NewFeedRepository(db)
	_, _, err = repo.FetchCandidates(context.Background(), feed.CandidateQuery{Limit: 10})
	require.Error(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}
