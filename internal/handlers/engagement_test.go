package handlers

import (
	"fmt"
	"net/http"
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

// EngagementTestSuite covers views, reads, reactions, and comments
type EngagementTestSuite struct {
	suite.Suite
	db     *gorm.DB
	router *gin.Engine
	reader *models.User
	post   *models.Post
}

func (suite *EngagementTestSuite) SetupTest() {
	suite.db = setupTestDB(suite.T())
	database.DB = suite.db
	suite.router = newTestRouter(newTestHandlers(suite.db))

	author := createTestUser(suite.T(), suite.db, "author")
	suite.reader = createTestUser(suite.T(), suite.db, "reader")
	suite.post = createTestPost(suite.T(), suite.db, author, "Engaging Post", models.PostStatusPublished, timePtr(time.Now().UTC()))
}

func (suite *EngagementTestSuite) reloadPost() *models.Post {
	var post models.Post
	require.NoError(suite.T(), suite.db.First(&post, "id = ?", suite.post.ID).Error)
	return &post
}

func (suite *EngagementTestSuite) TestRecordView() {
	t := suite.T()

	for i := 0; i < 2; i++ {
		w := doRequest(suite.router, "POST", "/api/v1/posts/"+suite.post.ID+"/view", nil, "")
		assert.Equal(t, http.StatusOK, w.Code)
	}

	assert.Equal(t, 2, suite.reloadPost().ViewCount)
}

func (suite *EngagementTestSuite) TestRecordViewMissingPost() {
	t := suite.T()

	w := doRequest(suite.router, "POST", "/api/v1/posts/missing-id/view", nil, "")

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func (suite *EngagementTestSuite) TestMarkReadIdempotent() {
	t := suite.T()

	for i := 0; i < 2; i++ {
		w := doRequest(suite.router, "POST", "/api/v1/posts/"+suite.post.ID+"/read", nil, suite.reader.ID)
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "marked_read", decodeBody(t, w)["status"])
	}

	var count int64
	suite.db.Model(&models.PostRead{}).
		Where("user_id = ? AND post_id = ?", suite.reader.ID, suite.post.ID).
		Count(&count)
	assert.Equal(t, int64(1), count)
}

func (suite *EngagementTestSuite) TestMarkReadMissingPost() {
	t := suite.T()

	w := doRequest(suite.router, "POST", "/api/v1/posts/missing-id/read", nil, suite.reader.ID)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func (suite *EngagementTestSuite) TestReactBumpsCounterOnce() {
	t := suite.T()

	w := doRequest(suite.router, "POST", "/api/v1/posts/"+suite.post.ID+"/reactions", nil, suite.reader.ID)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "like", decodeBody(t, w)["kind"])
	assert.Equal(t, 1, suite.reloadPost().ReactionCount)

	// A repeat keeps the original reaction and the counter
	again := doRequest(suite.router, "POST", "/api/v1/posts/"+suite.post.ID+"/reactions", map[string]interface{}{
		"kind": "applause",
	}, suite.reader.ID)
	assert.Equal(t, http.StatusOK, again.Code)
	assert.Equal(t, "like", decodeBody(t, again)["kind"])
	assert.Equal(t, 1, suite.reloadPost().ReactionCount)
}

func (suite *EngagementTestSuite) TestReactMissingPost() {
	t := suite.T()

	w := doRequest(suite.router, "POST", "/api/v1/posts/missing-id/reactions", nil, suite.reader.ID)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func (suite *EngagementTestSuite) TestReactRequiresUser() {
	t := suite.T()

	w := doRequest(suite.router, "POST", "/api/v1/posts/"+suite.post.ID+"/reactions", nil, "")

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "missing_user_id", decodeBody(t, w)["error"])
}

func (suite *EngagementTestSuite) TestUnreact() {
	t := suite.T()

	react := doRequest(suite.router, "POST", "/api/v1/posts/"+suite.post.ID+"/reactions", nil, suite.reader.ID)
	require.Equal(t, http.StatusOK, react.Code)
	require.Equal(t, 1, suite.reloadPost().ReactionCount)

	w := doRequest(suite.router, "DELETE", "/api/v1/posts/"+suite.post.ID+"/reactions", nil, suite.reader.ID)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "unreacted", decodeBody(t, w)["status"])
	assert.Equal(t, 0, suite.reloadPost().ReactionCount)

	// Unreacting without a reaction leaves the counter alone
	again := doRequest(suite.router, "DELETE", "/api/v1/posts/"+suite.post.ID+"/reactions", nil, suite.reader.ID)
	assert.Equal(t, http.StatusOK, again.Code)
	assert.Equal(t, 0, suite.reloadPost().ReactionCount)
}

func (suite *EngagementTestSuite) TestCreateComment() {
	t := suite.T()

	w := doRequest(suite.router, "POST", "/api/v1/posts/"+suite.post.ID+"/comments", map[string]interface{}{
		"body": "A thoughtful reply",
	}, suite.reader.ID)

	assert.Equal(t, http.StatusCreated, w.Code)

	response := decodeBody(t, w)
	assert.Equal(t, "A thoughtful reply", response["body"])
	assert.Equal(t, suite.post.ID, response["post_id"])
	assert.Equal(t, suite.reader.ID, response["user_id"])

	user := response["user"].(map[string]interface{})
	assert.Equal(t, "reader", user["username"])

	assert.Equal(t, 1, suite.reloadPost().CommentCount)
}

func (suite *EngagementTestSuite) TestCreateCommentValidation() {
	t := suite.T()

	w := doRequest(suite.router, "POST", "/api/v1/posts/"+suite.post.ID+"/comments", map[string]interface{}{
		"body": "",
	}, suite.reader.ID)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func (suite *EngagementTestSuite) TestCreateCommentMissingPost() {
	t := suite.T()

	w := doRequest(suite.router, "POST", "/api/v1/posts/missing-id/comments", map[string]interface{}{
		"body": "Shouting into the void",
	}, suite.reader.ID)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func (suite *EngagementTestSuite) TestGetCommentsPagination() {
	t := suite.T()
	base := time.Now().UTC().Add(-time.Hour)
	for i := 0; i < 5; i++ {
		comment := &models.Comment{
			PostID:    suite.post.ID,
			UserID:    suite.reader.ID,
			Body:      fmt.Sprintf("Comment %d", i),
			CreatedAt: base.Add(time.Duration(i) * time.Minute),
		}
		require.NoError(t, suite.db.Create(comment).Error)
	}

	w := doRequest(suite.router, "GET", "/api/v1/posts/"+suite.post.ID+"/comments?limit=3", nil, "")
	assert.Equal(t, http.StatusOK, w.Code)

	response := decodeBody(t, w)
	comments := response["comments"].([]interface{})
	require.Len(t, comments, 3)
	assert.Equal(t, "Comment 4", comments[0].(map[string]interface{})["body"])

	meta := response["meta"].(map[string]interface{})
	assert.Equal(t, float64(5), meta["total"])

	rest := doRequest(suite.router, "GET", "/api/v1/posts/"+suite.post.ID+"/comments?limit=3&offset=3", nil, "")
	assert.Equal(t, http.StatusOK, rest.Code)
	assert.Len(t, decodeBody(t, rest)["comments"], 2)
}

func (suite *EngagementTestSuite) TestGetCommentsMissingPost() {
	t := suite.T()

	w := doRequest(suite.router, "GET", "/api/v1/posts/missing-id/comments", nil, "")

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestEngagementSuite(t *testing.T) {
	suite.Run(t, new(EngagementTestSuite))
}
