package handler

import (
	"encoding/json"
	"net/http"
	"testing"

	"reviewhub/internal/http-api/dto"
	"reviewhub/internal/http-api/repository"
	"reviewhub/internal/http-api/service"
	"reviewhub/internal/policy"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func setupUserRouter(t *testing.T) (*gin.Engine, *gorm.DB, map[string]policy.Actor) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db := testDB(t)
	alice := createUser(t, db, "alice", policy.RoleUser)
	admin := createUser(t, db, "root", policy.RoleAdmin)

	actors := map[string]policy.Actor{
		"alice": alice.Actor(),
		"root":  admin.Actor(),
	}

	svc := service.NewUserService(repository.NewUserRepository(db), "me")
	h := NewUserHandler(svc, "me", 20)

	r := gin.New()
	h.RegisterRoutes(r.Group("/api/v1/users", actorAuth(actors)))
	return r, db, actors
}

func TestUserSelfAliasGet(t *testing.T) {
	r, _, _ := setupUserRouter(t)

	w := performRequest(r, "GET", "/api/v1/users/me", "alice", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var resp dto.UserResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "alice", resp.Username)
}

func TestUserSelfAliasDeleteIsNotAllowed(t *testing.T) {
	r, _, _ := setupUserRouter(t)

	// 405, not 403: the alias simply has no DELETE, role does not matter
	w := performRequest(r, "DELETE", "/api/v1/users/me", "alice", nil)
	assert.Equal(t, http.StatusMethodNotAllowed, w.Code)

	w = performRequest(r, "DELETE", "/api/v1/users/me", "root", nil)
	assert.Equal(t, http.StatusMethodNotAllowed, w.Code)
}

func TestUserSelfUpdateCannotEscalate(t *testing.T) {
	r, _, _ := setupUserRouter(t)

	w := performRequest(r, "PATCH", "/api/v1/users/me", "alice", gin.H{
		"bio":  "hello",
		"role": "admin",
	})
	require.Equal(t, http.StatusOK, w.Code)

	var resp dto.UserResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, policy.RoleUser, resp.Role, "requested escalation must be forced back to user")
	require.NotNil(t, resp.Bio)
	assert.Equal(t, "hello", *resp.Bio)
}

func TestUserRoutesRequireAdmin(t *testing.T) {
	r, _, _ := setupUserRouter(t)

	w := performRequest(r, "GET", "/api/v1/users", "alice", nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = performRequest(r, "GET", "/api/v1/users", "root", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = performRequest(r, "GET", "/api/v1/users/alice", "alice", nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = performRequest(r, "GET", "/api/v1/users/alice", "root", nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestUserAdminCreateAndRoleChange(t *testing.T) {
	r, _, _ := setupUserRouter(t)

	w := performRequest(r, "POST", "/api/v1/users", "root", gin.H{
		"username": "mia",
		"email":    "mia@example.com",
		"role":     "moderator",
	})
	require.Equal(t, http.StatusCreated, w.Code)

	var resp dto.UserResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, policy.RoleModerator, resp.Role)

	// Admin may change someone else's role for real
	w = performRequest(r, "PATCH", "/api/v1/users/mia", "root", gin.H{"role": "user"})
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, policy.RoleUser, resp.Role)
}

func TestUserAdminDelete(t *testing.T) {
	r, _, _ := setupUserRouter(t)

	w := performRequest(r, "DELETE", "/api/v1/users/alice", "root", nil)
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = performRequest(r, "GET", "/api/v1/users/alice", "root", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}
