package handlers

import (
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"gorm.io/gorm"

	"github.com/inkwellhq/inkwell/backend/internal/database"
	"github.com/inkwellhq/inkwell/backend/internal/models"
)

// PostHandlersTestSuite covers the content endpoints end to end: handler,
// repository, and SQLite
type PostHandlersTestSuite struct {
	suite.Suite
	db     *gorm.DB
	router *gin.Engine
	author *models.User
}

// SetupTest builds a fresh database, handlers, and fixtures for each test
func (suite *PostHandlersTestSuite) SetupTest() {
	suite.db = setupTestDB(suite.T())
	database.DB = suite.db
	suite.router = newTestRouter(newTestHandlers(suite.db))
	suite.author = createTestUser(suite.T(), suite.db, "margaret")
}

func (suite *PostHandlersTestSuite) TestCreatePostDraft() {
	t := suite.T()
	category := createTestCategory(t, suite.db, "essays")

	w := doRequest(suite.router, "POST", "/api/v1/posts", map[string]interface{}{
		"title":    "First Light",
		"summary":  "On beginnings",
		"body":     "Dawn over the harbor.",
		"category": "essays",
		"tags":     []string{"craft", "mornings"},
	}, suite.author.ID)

	assert.Equal(t, http.StatusCreated, w.Code)

	response := decodeBody(t, w)
	assert.Equal(t, "draft", response["status"])
	assert.Equal(t, "first-light", response["slug"])
	assert.Equal(t, "On beginnings", response["summary"])
	assert.Equal(t, suite.author.ID, response["author_id"])
	assert.Equal(t, category.ID, response["category_id"])
	assert.Len(t, response["tags"], 2)
	assert.Nil(t, response["published_at"])

	// Tag attachments landed in the join table
	var joined int64
	suite.db.Model(&models.PostTag{}).
		Where("post_id = ?", response["id"]).
		Count(&joined)
	assert.Equal(t, int64(2), joined)
}

func (suite *PostHandlersTestSuite) TestCreatePostDerivesSummaryExcerpt() {
	t := suite.T()

	words := make([]string, 50)
	for i := range words {
		words[i] = "sentence"
	}

	w := doRequest(suite.router, "POST", "/api/v1/posts", map[string]interface{}{
		"title": "Untitled Essay",
		"body":  strings.Join(words, " "),
	}, suite.author.ID)

	require.Equal(t, http.StatusCreated, w.Code)

	response := decodeBody(t, w)
	assert.Equal(t, strings.Join(words[:40], " ")+"…", response["summary"],
		"missing summary is excerpted from the body")
}

func (suite *PostHandlersTestSuite) TestCreatePostRequiresTitle() {
	t := suite.T()

	w := doRequest(suite.router, "POST", "/api/v1/posts", map[string]interface{}{
		"body": "No title here",
	}, suite.author.ID)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func (suite *PostHandlersTestSuite) TestCreatePostRequiresUser() {
	t := suite.T()

	w := doRequest(suite.router, "POST", "/api/v1/posts", map[string]interface{}{
		"title": "Orphan Draft",
	}, "")

	assert.Equal(t, http.StatusBadRequest, w.Code)
	response := decodeBody(t, w)
	assert.Equal(t, "missing_user_id", response["error"])
}

func (suite *PostHandlersTestSuite) TestCreatePostUnknownCategory() {
	t := suite.T()

	w := doRequest(suite.router, "POST", "/api/v1/posts", map[string]interface{}{
		"title":    "Lost Section",
		"category": "does-not-exist",
	}, suite.author.ID)

	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	response := decodeBody(t, w)
	assert.Equal(t, "VALIDATION_ERROR", response["code"])
	assert.Equal(t, "category", response["field"])
}

func (suite *PostHandlersTestSuite) TestCreatePostDuplicateTitleGetsSuffixedSlug() {
	t := suite.T()

	first := doRequest(suite.router, "POST", "/api/v1/posts", map[string]interface{}{
		"title": "Repeated Title",
	}, suite.author.ID)
	require.Equal(t, http.StatusCreated, first.Code)
	assert.Equal(t, "repeated-title", decodeBody(t, first)["slug"])

	second := doRequest(suite.router, "POST", "/api/v1/posts", map[string]interface{}{
		"title": "Repeated Title",
	}, suite.author.ID)
	require.Equal(t, http.StatusCreated, second.Code)

	slug := decodeBody(t, second)["slug"].(string)
	assert.NotEqual(t, "repeated-title", slug)
	assert.True(t, strings.HasPrefix(slug, "repeated-title-"))
}

func (suite *PostHandlersTestSuite) TestPublishPostFlow() {
	t := suite.T()

	created := doRequest(suite.router, "POST", "/api/v1/posts", map[string]interface{}{
		"title": "The Long Read",
		"body":  strings.TrimSpace(strings.Repeat("word ", 450)),
	}, suite.author.ID)
	require.Equal(t, http.StatusCreated, created.Code)
	postID := decodeBody(t, created)["id"].(string)

	w := doRequest(suite.router, "POST", "/api/v1/posts/"+postID+"/publish", nil, suite.author.ID)
	assert.Equal(t, http.StatusOK, w.Code)

	response := decodeBody(t, w)
	assert.Equal(t, "published", response["status"])
	assert.NotNil(t, response["published_at"])
	assert.Equal(t, float64(3), response["reading_time"])

	// A published post is no longer a draft
	again := doRequest(suite.router, "POST", "/api/v1/posts/"+postID+"/publish", nil, suite.author.ID)
	assert.Equal(t, http.StatusBadRequest, again.Code)
	assert.Equal(t, "BAD_REQUEST", decodeBody(t, again)["code"])
}

func (suite *PostHandlersTestSuite) TestPublishPostAuthorOnly() {
	t := suite.T()
	other := createTestUser(t, suite.db, "eve")
	draft := createTestPost(t, suite.db, suite.author, "Private Draft", models.PostStatusDraft, nil)

	w := doRequest(suite.router, "POST", "/api/v1/posts/"+draft.ID+"/publish", nil, other.ID)

	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Equal(t, "FORBIDDEN", decodeBody(t, w)["code"])
}

func (suite *PostHandlersTestSuite) TestPublishPostNotFound() {
	t := suite.T()

	w := doRequest(suite.router, "POST", "/api/v1/posts/missing-id/publish", nil, suite.author.ID)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func (suite *PostHandlersTestSuite) TestGetPost() {
	t := suite.T()
	post := createTestPost(t, suite.db, suite.author, "Findable", models.PostStatusPublished, timePtr(time.Now().UTC()))

	w := doRequest(suite.router, "GET", "/api/v1/posts/"+post.ID, nil, "")
	assert.Equal(t, http.StatusOK, w.Code)

	response := decodeBody(t, w)
	assert.Equal(t, post.ID, response["id"])

	author := response["author"].(map[string]interface{})
	assert.Equal(t, "margaret", author["username"])
}

func (suite *PostHandlersTestSuite) TestGetPostNotFound() {
	t := suite.T()

	w := doRequest(suite.router, "GET", "/api/v1/posts/missing-id", nil, "")

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "NOT_FOUND", decodeBody(t, w)["code"])
}

func (suite *PostHandlersTestSuite) TestBrowsePosts() {
	t := suite.T()
	now := time.Now().UTC()
	createTestPost(t, suite.db, suite.author, "Oldest", models.PostStatusPublished, timePtr(now.Add(-3*time.Hour)))
	createTestPost(t, suite.db, suite.author, "Middle", models.PostStatusPublished, timePtr(now.Add(-2*time.Hour)))
	createTestPost(t, suite.db, suite.author, "Newest", models.PostStatusPublished, timePtr(now.Add(-time.Hour)))
	createTestPost(t, suite.db, suite.author, "Hidden Draft", models.PostStatusDraft, nil)

	w := doRequest(suite.router, "GET", "/api/v1/posts?limit=2", nil, "")
	assert.Equal(t, http.StatusOK, w.Code)

	response := decodeBody(t, w)
	posts := response["posts"].([]interface{})
	require.Len(t, posts, 2)
	assert.Equal(t, "Newest", posts[0].(map[string]interface{})["title"])
	assert.Equal(t, "Middle", posts[1].(map[string]interface{})["title"])

	meta := response["meta"].(map[string]interface{})
	assert.Equal(t, float64(3), meta["total"])
	assert.Equal(t, float64(1), meta["page"])
	assert.Equal(t, float64(2), meta["limit"])
}

func (suite *PostHandlersTestSuite) TestBrowsePostsCategoryFilter() {
	t := suite.T()
	now := time.Now().UTC()
	category := createTestCategory(t, suite.db, "letters")
	inCategory := createTestPost(t, suite.db, suite.author, "In Letters", models.PostStatusPublished, timePtr(now))
	suite.db.Model(inCategory).UpdateColumn("category_id", category.ID)
	createTestPost(t, suite.db, suite.author, "Uncategorized", models.PostStatusPublished, timePtr(now))

	w := doRequest(suite.router, "GET", "/api/v1/posts?category=letters", nil, "")
	assert.Equal(t, http.StatusOK, w.Code)

	response := decodeBody(t, w)
	posts := response["posts"].([]interface{})
	require.Len(t, posts, 1)
	assert.Equal(t, "In Letters", posts[0].(map[string]interface{})["title"])
}

func (suite *PostHandlersTestSuite) TestDeletePost() {
	t := suite.T()
	post := createTestPost(t, suite.db, suite.author, "Short Lived", models.PostStatusPublished, timePtr(time.Now().UTC()))

	w := doRequest(suite.router, "DELETE", "/api/v1/posts/"+post.ID, nil, suite.author.ID)
	assert.Equal(t, http.StatusOK, w.Code)

	response := decodeBody(t, w)
	assert.Equal(t, "deleted", response["status"])
	assert.Equal(t, post.ID, response["post_id"])

	gone := doRequest(suite.router, "GET", "/api/v1/posts/"+post.ID, nil, "")
	assert.Equal(t, http.StatusNotFound, gone.Code)

	// Soft delete keeps the row
	var count int64
	suite.db.Unscoped().Model(&models.Post{}).Where("id = ?", post.ID).Count(&count)
	assert.Equal(t, int64(1), count)
}

func (suite *PostHandlersTestSuite) TestDeletePostAuthorOnly() {
	t := suite.T()
	other := createTestUser(t, suite.db, "eve")
	post := createTestPost(t, suite.db, suite.author, "Not Yours", models.PostStatusPublished, timePtr(time.Now().UTC()))

	w := doRequest(suite.router, "DELETE", "/api/v1/posts/"+post.ID, nil, other.ID)

	assert.Equal(t, http.StatusForbidden, w.Code)
}

func (suite *PostHandlersTestSuite) TestTaxonomyListings() {
	t := suite.T()
	createTestCategory(t, suite.db, "essays")
	createTestCategory(t, suite.db, "letters")
	createTestTag(t, suite.db, "craft")
	createTestTag(t, suite.db, "mornings")

	categories := doRequest(suite.router, "GET", "/api/v1/categories", nil, "")
	assert.Equal(t, http.StatusOK, categories.Code)
	assert.Len(t, decodeBody(t, categories)["categories"], 2)

	tags := doRequest(suite.router, "GET", "/api/v1/tags", nil, "")
	assert.Equal(t, http.StatusOK, tags.Code)
	assert.Len(t, decodeBody(t, tags)["tags"], 2)
}

func TestPostHandlersSuite(t *testing.T) {
	suite.Run(t, new(PostHandlersTestSuite))
}
