package handler

import (
	"encoding/json"
	"net/http"
	"strconv"
	"testing"

	"reviewhub/internal/http-api/dto"
	"reviewhub/internal/http-api/models"
	"reviewhub/internal/http-api/repository"
	"reviewhub/internal/http-api/service"
	"reviewhub/internal/policy"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func setupReviewRouter(t *testing.T) (*gin.Engine, *gorm.DB, *models.Title) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db := testDB(t)
	alice := createUser(t, db, "alice", policy.RoleUser)
	eve := createUser(t, db, "eve", policy.RoleUser)
	mia := createUser(t, db, "mia", policy.RoleModerator)

	actors := map[string]policy.Actor{
		"alice": alice.Actor(),
		"eve":   eve.Actor(),
		"mia":   mia.Actor(),
	}

	title := &models.Title{Name: "Dune", Year: 1965}
	require.NoError(t, db.Create(title).Error)

	reviewRepo := repository.NewReviewRepository(db)
	titleRepo := repository.NewTitleRepo(db)
	svc := service.NewReviewService(reviewRepo, titleRepo, 1, 10)
	h := NewReviewHandler(svc, 20)

	r := gin.New()
	h.RegisterRoutes(r.Group("/api/v1/titles/:title_id/reviews"), actorAuth(actors))
	return r, db, title
}

func reviewsPath(titleID int64) string {
	return "/api/v1/titles/" + strconv.FormatInt(titleID, 10) + "/reviews"
}

func postReview(t *testing.T, r *gin.Engine, title *models.Title, actor string, score int) dto.ReviewResponse {
	t.Helper()
	w := performRequest(r, "POST", reviewsPath(title.ID), actor, gin.H{"text": "review by " + actor, "score": score})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var resp dto.ReviewResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp
}

func TestReviewCreateAndList(t *testing.T) {
	r, _, title := setupReviewRouter(t)

	created := postReview(t, r, title, "alice", 8)
	assert.Equal(t, "alice", created.Author)
	assert.Equal(t, 8, created.Score)

	// Listing is open to anonymous readers
	w := performRequest(r, "GET", reviewsPath(title.ID), "", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var page dto.Paginated[dto.ReviewResponse]
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &page))
	assert.Equal(t, 1, page.Total)
}

func TestReviewCreateRequiresAuth(t *testing.T) {
	r, _, title := setupReviewRouter(t)

	w := performRequest(r, "POST", reviewsPath(title.ID), "", gin.H{"text": "anon", "score": 5})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestReviewDuplicateRejected(t *testing.T) {
	r, _, title := setupReviewRouter(t)

	postReview(t, r, title, "alice", 8)

	w := performRequest(r, "POST", reviewsPath(title.ID), "alice", gin.H{"text": "again", "score": 2})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestReviewOwnershipOnUpdate(t *testing.T) {
	r, _, title := setupReviewRouter(t)

	created := postReview(t, r, title, "alice", 8)
	path := reviewsPath(title.ID) + "/" + strconv.FormatInt(created.ID, 10)

	// Another plain user is rejected
	w := performRequest(r, "PATCH", path, "eve", gin.H{"text": "hijacked"})
	assert.Equal(t, http.StatusForbidden, w.Code)

	// A moderator may edit anyone's review
	w = performRequest(r, "PATCH", path, "mia", gin.H{"text": "moderated"})
	require.Equal(t, http.StatusOK, w.Code)

	var resp dto.ReviewResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "moderated", resp.Text)

	// And so may the author
	w = performRequest(r, "PATCH", path, "alice", gin.H{"score": 3})
	require.Equal(t, http.StatusOK, w.Code)
}

func TestReviewOwnershipOnDelete(t *testing.T) {
	r, _, title := setupReviewRouter(t)

	created := postReview(t, r, title, "alice", 8)
	path := reviewsPath(title.ID) + "/" + strconv.FormatInt(created.ID, 10)

	w := performRequest(r, "DELETE", path, "eve", nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = performRequest(r, "DELETE", path, "alice", nil)
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = performRequest(r, "GET", path, "", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestReviewUnknownTitleIs404(t *testing.T) {
	r, _, _ := setupReviewRouter(t)

	w := performRequest(r, "GET", reviewsPath(9999), "", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = performRequest(r, "POST", reviewsPath(9999), "alice", gin.H{"text": "ghost", "score": 5})
	assert.Equal(t, http.StatusNotFound, w.Code)
}
