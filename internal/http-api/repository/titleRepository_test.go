package repository

import (
	"context"
	"testing"

	"reviewhub/database"
	"reviewhub/internal/http-api/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

func newTestDB(t *testing.T) *gorm.DB {
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

// seedTitles builds a small catalog: two categories, two genres, three
// titles spread across them.
func seedTitles(t *testing.T, db *gorm.DB) {
	t.Helper()

	books := models.Category{Name: "Books", Slug: "books"}
	movies := models.Category{Name: "Movies", Slug: "movies"}
	require.NoError(t, db.Create(&books).Error)
	require.NoError(t, db.Create(&movies).Error)

	scifi := models.Genre{Name: "Sci-Fi", Slug: "sci-fi"}
	drama := models.Genre{Name: "Drama", Slug: "drama"}
	require.NoError(t, db.Create(&scifi).Error)
	require.NoError(t, db.Create(&drama).Error)

	require.NoError(t, db.Create(&models.Title{
		Name: "Dune", Year: 1965, CategoryID: &books.ID,
		Genres: []models.Genre{scifi},
	}).Error)
	require.NoError(t, db.Create(&models.Title{
		Name: "Solaris", Year: 1972, CategoryID: &movies.ID,
		Genres: []models.Genre{scifi, drama},
	}).Error)
	require.NoError(t, db.Create(&models.Title{
		Name: "Amadeus", Year: 1984, CategoryID: &movies.ID,
		Genres: []models.Genre{drama},
	}).Error)
}

func TestTitleFilters(t *testing.T) {
	db := newTestDB(t)
	seedTitles(t, db)
	repo := NewTitleRepo(db)
	ctx := context.Background()

	t.Run("no filter returns everything", func(t *testing.T) {
		_, total, err := repo.GetAll(ctx, TitleFilter{}, 1, 20)
		require.NoError(t, err)
		assert.EqualValues(t, 3, total)
	})

	t.Run("by genre slug", func(t *testing.T) {
		list, total, err := repo.GetAll(ctx, TitleFilter{GenreSlug: "sci-fi"}, 1, 20)
		require.NoError(t, err)
		assert.EqualValues(t, 2, total)
		for _, title := range list {
			assert.Contains(t, []string{"Dune", "Solaris"}, title.Name)
		}
	})

	t.Run("by category slug", func(t *testing.T) {
		_, total, err := repo.GetAll(ctx, TitleFilter{CategorySlug: "movies"}, 1, 20)
		require.NoError(t, err)
		assert.EqualValues(t, 2, total)
	})

	t.Run("by name substring", func(t *testing.T) {
		list, total, err := repo.GetAll(ctx, TitleFilter{Name: "olar"}, 1, 20)
		require.NoError(t, err)
		require.EqualValues(t, 1, total)
		assert.Equal(t, "Solaris", list[0].Name)
	})

	t.Run("by year", func(t *testing.T) {
		year := 1984
		list, total, err := repo.GetAll(ctx, TitleFilter{Year: &year}, 1, 20)
		require.NoError(t, err)
		require.EqualValues(t, 1, total)
		assert.Equal(t, "Amadeus", list[0].Name)
	})

	t.Run("genre wins over later filters", func(t *testing.T) {
		// genre + name that would match a different set: genre applies
		year := 1984
		_, total, err := repo.GetAll(ctx, TitleFilter{GenreSlug: "sci-fi", Name: "Amadeus", Year: &year}, 1, 20)
		require.NoError(t, err)
		assert.EqualValues(t, 2, total)
	})
}

func TestGenreDeleteUnlinksTitles(t *testing.T) {
	db := newTestDB(t)
	seedTitles(t, db)
	repo := NewGenreRepo(db)
	ctx := context.Background()

	require.NoError(t, repo.DeleteBySlug(ctx, "sci-fi"))

	// Titles survive, only the links are gone
	var titles int64
	require.NoError(t, db.Model(&models.Title{}).Count(&titles).Error)
	assert.EqualValues(t, 3, titles)

	var links int64
	require.NoError(t, db.Model(&models.TitleGenre{}).Count(&links).Error)
	assert.EqualValues(t, 2, links, "only the drama links should remain")

	err := repo.DeleteBySlug(ctx, "sci-fi")
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestCategoryDeleteKeepsTitles(t *testing.T) {
	db := newTestDB(t)
	seedTitles(t, db)
	repo := NewCategoryRepo(db)
	titleRepo := NewTitleRepo(db)
	ctx := context.Background()

	require.NoError(t, repo.DeleteBySlug(ctx, "movies"))

	list, total, err := titleRepo.GetAll(ctx, TitleFilter{}, 1, 20)
	require.NoError(t, err)
	assert.EqualValues(t, 3, total)

	for _, title := range list {
		if title.Name == "Solaris" || title.Name == "Amadeus" {
			assert.Nil(t, title.Category, "deleted category must be nulled, not cascade")
		}
	}
}
