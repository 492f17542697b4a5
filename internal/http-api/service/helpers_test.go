package service

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"reviewhub/database"
	"reviewhub/internal/http-api/models"
	"reviewhub/internal/http-api/repository"
	"reviewhub/internal/policy"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// testDB opens a fresh in-memory store with the full schema. A single
// connection keeps every query on the same in-memory database.
func testDB(t *testing.T) *gorm.DB {
	t.Helper()

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
	return db
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func createUser(t *testing.T, db *gorm.DB, username string, role policy.Role) *models.User {
	t.Helper()
	user := &models.User{
		ID:       uuid.New().String(),
		Username: username,
		Email:    username + "@example.com",
		Role:     role,
	}
	require.NoError(t, db.Create(user).Error)
	return user
}

func createTitle(t *testing.T, db *gorm.DB, name string, year int) *models.Title {
	t.Helper()
	title := &models.Title{Name: name, Year: year}
	require.NoError(t, db.Create(title).Error)
	return title
}

// fakeConfirmationStore is an in-memory stand-in for the Redis-backed code
// store. Expiry is modeled with a deadline check on Get.
type fakeConfirmationStore struct {
	mu    sync.Mutex
	codes map[string]repository.ConfirmationRecord
	exp   map[string]time.Time
}

func newFakeConfirmationStore() *fakeConfirmationStore {
	return &fakeConfirmationStore{
		codes: make(map[string]repository.ConfirmationRecord),
		exp:   make(map[string]time.Time),
	}
}

func (f *fakeConfirmationStore) Store(_ context.Context, username string, rec repository.ConfirmationRecord, ttl time.Duration) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.codes[username] = rec
	f.exp[username] = time.Now().Add(ttl)
	return nil
}

func (f *fakeConfirmationStore) Get(_ context.Context, username string) (*repository.ConfirmationRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	rec, ok := f.codes[username]
	if !ok || time.Now().After(f.exp[username]) {
		return nil, repository.ErrCodeNotFound
	}
	return &rec, nil
}

func (f *fakeConfirmationStore) Consume(_ context.Context, username string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.codes, username)
	delete(f.exp, username)
	return nil
}

// fakeMailer captures sent messages; Send runs on a goroutine in the signup
// path, so delivery is observed through a channel.
type fakeMailer struct {
	sent chan string
}

func newFakeMailer() *fakeMailer {
	return &fakeMailer{sent: make(chan string, 8)}
}

func (m *fakeMailer) Send(_, body, _ string, _ []string) error {
	m.sent <- body
	return nil
}

func (m *fakeMailer) lastBody(t *testing.T) string {
	t.Helper()
	select {
	case body := <-m.sent:
		return body
	case <-time.After(2 * time.Second):
		t.Fatal("no email delivered")
		return ""
	}
}
