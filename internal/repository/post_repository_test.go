package repository

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/inkwellhq/inkwell/backend/internal/models"
)

func TestCreatePostAndGetPost(t *testing.T) {
	db := setupTestDB(t)
	repo := NewPostRepository(db)
	ctx := context.Background()

	author := createTestUser(t, db, "author")
	category := createTestCategory(t, db, "essays")

	tags, err := repo.GetOrCreateTags(ctx, []string{"craft", "writing"})
	require.NoError(t, err)
	require.Len(t, tags, 2)

	post := &models.Post{
		AuthorID:   author.ID,
		CategoryID: &category.ID,
		Title:      "On Drafting",
		Slug:       "on-drafting",
		Summary:    "Notes on first drafts",
		Body:       strings.Repeat("word ", 30),
		Tags:       tags,
	}
	require.NoError(t, repo.CreatePost(ctx, post))
	require.NotEmpty(t, post.ID)

	loaded, err := repo.GetPost(ctx, post.ID)
	require.NoError(t, err)
	assert.Equal(t, "On Drafting", loaded.Title)
	assert.Equal(t, models.PostStatusDraft, loaded.Status)
	assert.Equal(t, "author Display", loaded.Author.DisplayName)
	require.NotNil(t, loaded.Category)
	assert.Equal(t, "essays", loaded.Category.Slug)
	assert.Len(t, loaded.Tags, 2)
}

func TestCreatePostValidation(t *testing.T) {
	db := setupTestDB(t)
	repo := NewPostRepository(db)
	ctx := context.Background()

	assert.ErrorIs(t, repo.CreatePost(ctx, nil), ErrInvalidInput)
	assert.ErrorIs(t, repo.CreatePost(ctx, &models.Post{AuthorID: "a"}), ErrInvalidInput)
}

func TestGetPostNotFound(t *testing.T) {
	db := setupTestDB(t)
	repo := NewPostRepository(db)

	_, err := repo.GetPost(context.Background(), "missing-id")
	assert.ErrorIs(t, err, ErrPostNotFound)

	_, err = repo.GetPostBySlug(context.Background(), "missing-slug")
	assert.ErrorIs(t, err, ErrPostNotFound)
}

func TestGetPostBySlug(t *testing.T) {
	db := setupTestDB(t)
	repo := NewPostRepository(db)
	ctx := context.Background()

	author := createTestUser(t, db, "author")
	post := createTestPost(t, db, author, "Findable Post", models.PostStatusPublished, timePtr(time.Now()))

	loaded, err := repo.GetPostBySlug(ctx, "findable-post")
	require.NoError(t, err)
	assert.Equal(t, post.ID, loaded.ID)
}

func TestPublishPost(t *testing.T) {
	db := setupTestDB(t)
	repo := NewPostRepository(db)
	ctx := context.Background()

	author := createTestUser(t, db, "author")
	draft := &models.Post{
		AuthorID: author.ID,
		Title:    "Long Draft",
		Slug:     "long-draft",
		Body:     strings.Repeat("word ", 450),
	}
	require.NoError(t, repo.CreatePost(ctx, draft))

	published, err := repo.PublishPost(ctx, draft.ID, author.ID)
	require.NoError(t, err)

	assert.Equal(t, models.PostStatusPublished, published.Status)
	require.NotNil(t, published.PublishedAt)
	require.NotNil(t, published.ReadingTime)
	assert.Equal(t, 3, *published.ReadingTime, "450 words at 200 wpm round up to 3 minutes")
}

func TestPublishPostAuthorOnly(t *testing.T) {
	db := setupTestDB(t)
	repo := NewPostRepository(db)
	ctx := context.Background()

	author := createTestUser(t, db, "author")
	intruder := createTestUser(t, db, "intruder")
	draft := createTestPost(t, db, author, "Private Draft", models.PostStatusDraft, nil)

	_, err := repo.PublishPost(ctx, draft.ID, intruder.ID)
	assert.ErrorIs(t, err, ErrNotPostAuthor)
}

func TestPublishPostTwice(t *testing.T) {
	db := setupTestDB(t)
	repo := NewPostRepository(db)
	ctx := context.Background()

	author := createTestUser(t, db, "author")
	post := createTestPost(t, db, author, "Already Out", models.PostStatusPublished, timePtr(time.Now()))

	_, err := repo.PublishPost(ctx, post.ID, author.ID)
	assert.ErrorIs(t, err, ErrAlreadyPublished)
}

func TestDeletePost(t *testing.T) {
	db := setupTestDB(t)
	repo := NewPostRepository(db)
	ctx := context.Background()

	author := createTestUser(t, db, "author")
	post := createTestPost(t, db, author, "Doomed Post", models.PostStatusPublished, timePtr(time.Now()))

	require.NoError(t, repo.DeletePost(ctx, post.ID, author.ID))

	_, err := repo.GetPost(ctx, post.ID)
	assert.ErrorIs(t, err, ErrPostNotFound)

	// Soft delete keeps the row around
	var count int64
	require.NoError(t, db.Unscoped().Model(&models.Post{}).Where("id = ?", post.ID).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestDeletePostAuthorOnly(t *testing.T) {
	db := setupTestDB(t)
	repo := NewPostRepository(db)
	ctx := context.Background()

	author := createTestUser(t, db, "author")
	intruder := createTestUser(t, db, "intruder")
	post := createTestPost(t, db, author, "Kept Post", models.PostStatusPublished, timePtr(time.Now()))

	assert.ErrorIs(t, repo.DeletePost(ctx, post.ID, intruder.ID), ErrNotPostAuthor)

	_, err := repo.GetPost(ctx, post.ID)
	assert.NoError(t, err)
}

func TestBrowsePosts(t *testing.T) {
	db := setupTestDB(t)
	repo := NewPostRepository(db)
	ctx := context.Background()

	author := createTestUser(t, db, "author")
	base := time.Now().Add(-10 * time.Hour)
	titles := []string{"One", "Two", "Three", "Four", "Five"}
	for i, title := range titles {
		createTestPost(t, db, author, title, models.PostStatusPublished, timePtr(base.Add(time.Duration(i)*time.Hour)))
	}
	createTestPost(t, db, author, "Hidden Draft", models.PostStatusDraft, nil)

	posts, total, err := repo.BrowsePosts(ctx, BrowseOptions{Page: 1, Limit: 2})
	require.NoError(t, err)
	assert.Equal(t, int64(5), total)
	require.Len(t, posts, 2)
	assert.Equal(t, "Five", posts[0].Title)
	assert.Equal(t, "Four", posts[1].Title)

	page2, _, err := repo.BrowsePosts(ctx, BrowseOptions{Page: 2, Limit: 2})
	require.NoError(t, err)
	require.Len(t, page2, 2)
	assert.Equal(t, "Three", page2[0].Title)
}

func TestBrowsePostsFilters(t *testing.T) {
	db := setupTestDB(t)
	repo := NewPostRepository(db)
	ctx := context.Background()

	alice := createTestUser(t, db, "alice")
	bob := createTestUser(t, db, "bob")
	essays := createTestCategory(t, db, "essays")

	inEssays := createTestPost(t, db, alice, "Essay Piece", models.PostStatusPublished, timePtr(time.Now()))
	require.NoError(t, db.Model(inEssays).Update("category_id", essays.ID).Error)
	byBob := createTestPost(t, db, bob, "Bob Piece", models.PostStatusPublished, timePtr(time.Now()))

	posts, total, err := repo.BrowsePosts(ctx, BrowseOptions{Category: "essays", Page: 1, Limit: 10})
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	require.Len(t, posts, 1)
	assert.Equal(t, inEssays.ID, posts[0].ID)

	posts, total, err = repo.BrowsePosts(ctx, BrowseOptions{Author: "bob", Page: 1, Limit: 10})
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	require.Len(t, posts, 1)
	assert.Equal(t, byBob.ID, posts[0].ID)
}

func TestIncrementViewCount(t *testing.T) {
	db := setupTestDB(t)
	repo := NewPostRepository(db)
	ctx := context.Background()

	author := createTestUser(t, db, "author")
	post := createTestPost(t, db, author, "Viewed Post", models.PostStatusPublished, timePtr(time.Now()))

	require.NoError(t, repo.IncrementViewCount(ctx, post.ID))
	require.NoError(t, repo.IncrementViewCount(ctx, post.ID))

	loaded, err := repo.GetPost(ctx, post.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, loaded.ViewCount)

	assert.ErrorIs(t, repo.IncrementViewCount(ctx, "missing-id"), ErrPostNotFound)
}

func TestListTaxonomy(t *testing.T) {
	db := setupTestDB(t)
	repo := NewPostRepository(db)
	ctx := context.Background()

	createTestCategory(t, db, "reviews")
	createTestCategory(t, db, "essays")
	createTestTag(t, db, "writing")
	createTestTag(t, db, "craft")

	categories, err := repo.ListCategories(ctx)
	require.NoError(t, err)
	require.Len(t, categories, 2)
	assert.Equal(t, "essays", categories[0].Name)

	tags, err := repo.ListTags(ctx)
	require.NoError(t, err)
	require.Len(t, tags, 2)
	assert.Equal(t, "craft", tags[0].Name)
}

func TestGetCategoryBySlug(t *testing.T) {
	db := setupTestDB(t)
	repo := NewPostRepository(db)
	ctx := context.Background()

	created := createTestCategory(t, db, "essays")

	category, err := repo.GetCategoryBySlug(ctx, "essays")
	require.NoError(t, err)
	assert.Equal(t, created.ID, category.ID)

	_, err = repo.GetCategoryBySlug(ctx, "missing")
	assert.ErrorIs(t, err, ErrCategoryNotFound)
}

func TestGetOrCreateTags(t *testing.T) {
	db := setupTestDB(t)
	repo := NewPostRepository(db)
	ctx := context.Background()

	existing := createTestTag(t, db, "craft")

	tags, err := repo.GetOrCreateTags(ctx, []string{"craft", "writing", ""})
	require.NoError(t, err)
	require.Len(t, tags, 2, "empty slugs are skipped")
	assert.Equal(t, existing.ID, tags[0].ID, "existing tags are reused")

	var count int64
	require.NoError(t, db.Model(&models.Tag{}).Count(&count).Error)
	assert.Equal(t, int64(2), count)
}

func TestBrowsePostsTagFilterSQL(t *testing.T) {
	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer sqlDB.Close()

	db, err := gorm.Open(postgres.New(postgres.Config{Conn: sqlDB}), &gorm.Config{})
	require.NoError(t, err)

	// Tag browsing goes through a Postgres array ANY clause
	mock.ExpectQuery(`SELECT count\(\*\) FROM "posts" WHERE .*tags\.slug = ANY`).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))
	mock.ExpectQuery(`SELECT .* FROM "posts" WHERE .*tags\.slug = ANY`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	repo := NewPostRepository(db)
	posts, total, err := repo.BrowsePosts(context.Background(), BrowseOptions{
		Tags:  []string{"craft", "writing"},
		Page:  1,
		Limit: 20,
	})
	require.NoError(t, err)
	assert.Equal(t, int64(0), total)
	assert.Empty(t, posts)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSearchPostsFallbackSQL(t *testing.T) {
	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer sqlDB.Close()

	db, err := gorm.Open(postgres.New(postgres.Config{Conn: sqlDB}), &gorm.Config{})
	require.NoError(t, err)

	mock.ExpectQuery(`SELECT .* FROM "posts" WHERE .*ILIKE`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	repo := NewPostRepository(db)
	posts, err := repo.SearchPostsFallback(context.Background(), "revision", 20)
	require.NoError(t, err)
	assert.Empty(t, posts)
	assert.NoError(t, mock.ExpectationsWereMet())
}
