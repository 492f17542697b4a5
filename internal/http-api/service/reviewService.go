package service

import (
	"context"
	"errors"
	"fmt"

	"reviewhub/internal/http-api/dto"
	"reviewhub/internal/http-api/models"
	"reviewhub/internal/http-api/repository"

	"gorm.io/gorm"
)

var (
	ErrReviewExists    = errors.New("review for this title by this author already exists")
	ErrScoreOutOfRange = errors.New("score out of range")
)

type ReviewService interface {
	ListByTitle(titleID int64, page, pageSize int) (*dto.Paginated[dto.ReviewResponse], error)
	Create(authorID string, titleID int64, in dto.CreateReviewDTO) (*dto.ReviewResponse, error)
	// Find returns the stored review so the caller can run the ownership
	// policy before mutating.
	Find(titleID, reviewID int64) (*models.Review, error)
	Update(review *models.Review, in dto.UpdateReviewDTO) (*dto.ReviewResponse, error)
	Delete(reviewID int64) error
}

type reviewService struct {
	reviewRepo repository.ReviewRepository
	titleRepo  *repository.TitleRepo
	minScore   int
	maxScore   int
}

func NewReviewService(reviewRepo repository.ReviewRepository, titleRepo *repository.TitleRepo, minScore, maxScore int) ReviewService {
	return &reviewService{
		reviewRepo: reviewRepo,
		titleRepo:  titleRepo,
		minScore:   minScore,
		maxScore:   maxScore,
	}
}

func (s *reviewService) ListByTitle(titleID int64, page, pageSize int) (*dto.Paginated[dto.ReviewResponse], error) {
	if _, err := s.titleRepo.GetByID(context.Background(), titleID); err != nil {
		return nil, err
	}

	reviews, total, err := s.reviewRepo.GetByTitle(titleID, page, pageSize)
	if err != nil {
		return nil, err
	}

	responses := make([]dto.ReviewResponse, 0, len(reviews))
	for i := range reviews {
		responses = append(responses, *dto.FromModelToReviewResponse(&reviews[i]))
	}
	return dto.NewPaginated(responses, int(total), page, pageSize), nil
}

// Create posts a new review. The duplicate check here is a friendly
// pre-check; the store's unique constraint is what actually guarantees one
// review per (author, title) under concurrency.
func (s *reviewService) Create(authorID string, titleID int64, in dto.CreateReviewDTO) (*dto.ReviewResponse, error) {
	if _, err := s.titleRepo.GetByID(context.Background(), titleID); err != nil {
		return nil, err
	}

	if err := s.checkScore(*in.Score); err != nil {
		return nil, err
	}

	if _, err := s.reviewRepo.GetByAuthorAndTitle(authorID, titleID); err == nil {
		return nil, ErrReviewExists
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	review := &models.Review{
		TitleID:  titleID,
		AuthorID: authorID,
		Text:     in.Text,
		Score:    *in.Score,
	}
	if err := s.reviewRepo.Create(review); err != nil {
		if errors.Is(err, repository.ErrDuplicateReview) {
			return nil, ErrReviewExists
		}
		return nil, err
	}

	// Reload with author data
	review, err := s.reviewRepo.GetByID(titleID, review.ID)
	if err != nil {
		return nil, err
	}
	return dto.FromModelToReviewResponse(review), nil
}

func (s *reviewService) Find(titleID, reviewID int64) (*models.Review, error) {
	return s.reviewRepo.GetByID(titleID, reviewID)
}

func (s *reviewService) Update(review *models.Review, in dto.UpdateReviewDTO) (*dto.ReviewResponse, error) {
	if in.Text != nil {
		review.Text = *in.Text
	}
	if in.Score != nil {
		if err := s.checkScore(*in.Score); err != nil {
			return nil, err
		}
		review.Score = *in.Score
	}
	if err := s.reviewRepo.Update(review); err != nil {
		return nil, err
	}
	return dto.FromModelToReviewResponse(review), nil
}

func (s *reviewService) Delete(reviewID int64) error {
	return s.reviewRepo.Delete(reviewID)
}

func (s *reviewService) checkScore(score int) error {
	if score < s.minScore || score > s.maxScore {
		return fmt.Errorf("%w: score must be between %d and %d", ErrScoreOutOfRange, s.minScore, s.maxScore)
	}
	return nil
}
