package database

import (
	"fmt"
	"log/slog" // use slog for structured logging

	"reviewhub/internal/config"
	"reviewhub/internal/http-api/models"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func ConnectDB(cfg *config.Config, logger *slog.Logger) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(cfg.DatabaseURL), &gorm.Config{
		// TranslateError turns driver unique-violation errors into
		// gorm.ErrDuplicatedKey so repositories can match on errors.Is
		TranslateError: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Verify the connection
	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to access database handle: %w", err)
	}
	if err := sqlDB.Ping(); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := Migrate(db); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	logger.Info("Connected to the database successfully")
	return db, nil
}

// Migrate creates or updates the schema. The review uniqueness constraint
// (author, title) and the SET NULL / CASCADE foreign keys live in the model
// tags, so the store enforces them, not the application.
func Migrate(db *gorm.DB) error {
	// TitleGenre goes first so the join table keeps its own id column
	// instead of the composite-key shape AutoMigrate would invent for the
	// many2many relation.
	return db.AutoMigrate(
		&models.User{},
		&models.Category{},
		&models.Genre{},
		&models.TitleGenre{},
		&models.Title{},
		&models.Review{},
		&models.Comment{},
		&models.RefreshToken{},
	)
}
