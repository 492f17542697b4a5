package repository

import (
	"database/sql"
	"errors"

	"reviewhub/internal/http-api/models"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

// ErrDuplicateReview is returned when the (author, title) uniqueness
// constraint rejects an insert. The constraint lives at the store so two
// concurrent submissions cannot both slip past an application check.
var ErrDuplicateReview = errors.New("review by this author for this title already exists")

type ReviewRepository interface {
	Create(review *models.Review) error
	Update(review *models.Review) error
	Delete(reviewID int64) error
	GetByID(titleID, reviewID int64) (*models.Review, error)
	GetByAuthorAndTitle(authorID string, titleID int64) (*models.Review, error)
	GetByTitle(titleID int64, page, pageSize int) ([]models.Review, int64, error)
	AverageScore(titleID int64) (*float64, error)
}

type reviewRepository struct {
	db *gorm.DB
}

func NewReviewRepository(db *gorm.DB) ReviewRepository {
	return &reviewRepository{db: db}
}

// Create inserts a new review, translating a unique violation into
// ErrDuplicateReview.
func (r *reviewRepository) Create(review *models.Review) error {
	if err := r.db.Create(review).Error; err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicateReview
		}
		return err
	}
	return nil
}

// Update an existing review
func (r *reviewRepository) Update(review *models.Review) error {
	return r.db.Save(review).Error
}

// Delete a review, its comments go with it via the CASCADE constraint
func (r *reviewRepository) Delete(reviewID int64) error {
	result := r.db.Delete(&models.Review{}, reviewID)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// GetByID retrieves a review scoped to its title
func (r *reviewRepository) GetByID(titleID, reviewID int64) (*models.Review, error) {
	var review models.Review
	err := r.db.Where("id = ? AND title_id = ?", reviewID, titleID).
		Preload("Author").
		First(&review).Error
	if err != nil {
		return nil, err
	}
	return &review, nil
}

// GetByAuthorAndTitle retrieves an author's review for a specific title
func (r *reviewRepository) GetByAuthorAndTitle(authorID string, titleID int64) (*models.Review, error) {
	var review models.Review
	err := r.db.Where("author_id = ? AND title_id = ?", authorID, titleID).
		Preload("Author").
		First(&review).Error
	if err != nil {
		return nil, err
	}
	return &review, nil
}

// GetByTitle retrieves all reviews for a title with pagination
func (r *reviewRepository) GetByTitle(titleID int64, page, pageSize int) ([]models.Review, int64, error) {
	var reviews []models.Review
	var total int64

	if err := r.db.Model(&models.Review{}).Where("title_id = ?", titleID).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * pageSize
	err := r.db.Where("title_id = ?", titleID).
		Preload("Author").
		Order("pub_date DESC").
		Limit(pageSize).
		Offset(offset).
		Find(&reviews).Error
	if err != nil {
		return nil, 0, err
	}

	return reviews, total, nil
}

// AverageScore computes the mean score across a title's reviews, recomputed
// on every call. Returns nil when the title has no reviews at all.
func (r *reviewRepository) AverageScore(titleID int64) (*float64, error) {
	var avg sql.NullFloat64

	err := r.db.Model(&models.Review{}).
		Select("AVG(score)").
		Where("title_id = ?", titleID).
		Scan(&avg).Error
	if err != nil {
		return nil, err
	}
	if !avg.Valid {
		return nil, nil
	}
	return &avg.Float64, nil
}

// isUniqueViolation matches both the translated gorm error and, as a
// fallback, the raw postgres error code 23505.
func isUniqueViolation(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
