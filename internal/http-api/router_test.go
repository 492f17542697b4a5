package httpapi

import (
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"reviewhub/database"
	"reviewhub/internal/config"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

func setupTestRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := gorm.Open(sqlite.Open("file::memory:?_foreign_keys=on"), &gorm.Config{
		TranslateError: true,
		Logger:         gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })
	require.NoError(t, database.Migrate(db))

	cfg := &config.Config{
		GoEnv:           "development",
		JWTSecret:       strings.Repeat("s", 32),
		SelfAlias:       "me",
		PageSize:        20,
		MinReviewScore:  1,
		MaxReviewScore:  10,
		AccessTokenTTL:  15 * time.Minute,
		RefreshTokenTTL: 24 * time.Hour,
		ConfirmationTTL: time.Hour,
		CORSOrigins:     []string{"http://localhost:3000"},
	}

	// The client is lazy, nothing dials until a code is stored
	rdb := redis.NewClient(&redis.Options{Addr: "localhost:6379"})
	t.Cleanup(func() { rdb.Close() })

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return SetupRouter(cfg, db, rdb, logger)
}

func TestSelfAliasUnroutedVerbsAre405(t *testing.T) {
	r := setupTestRouter(t)

	// DELETE is routed and rejected by the access rule; PUT and POST have no
	// route at all and must still come back 405, never 404
	for _, method := range []string{"PUT", "POST"} {
		req := httptest.NewRequest(method, "/api/v1/users/me", nil)
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		assert.Equal(t, http.StatusMethodNotAllowed, w.Code, "%s /users/me", method)
	}
}

func TestHealthz(t *testing.T) {
	r := setupTestRouter(t)

	req := httptest.NewRequest("GET", "/healthz", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestUnknownPathStays404(t *testing.T) {
	r := setupTestRouter(t)

	req := httptest.NewRequest("GET", "/api/v1/nonexistent", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusNotFound, w.Code)
}
