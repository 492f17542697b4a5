package service

import (
	"reviewhub/internal/http-api/dto"
	"reviewhub/internal/http-api/models"
	"reviewhub/internal/http-api/repository"
)

type CommentService interface {
	ListByReview(titleID, reviewID int64, page, pageSize int) (*dto.Paginated[dto.CommentResponse], error)
	Create(authorID string, titleID, reviewID int64, in dto.CreateCommentDTO) (*dto.CommentResponse, error)
	// Find returns the stored comment so the caller can run the ownership
	// policy before mutating.
	Find(titleID, reviewID, commentID int64) (*models.Comment, error)
	Update(comment *models.Comment, in dto.CreateCommentDTO) (*dto.CommentResponse, error)
	Delete(commentID int64) error
}

type commentService struct {
	commentRepo repository.CommentRepository
	reviewRepo  repository.ReviewRepository
}

func NewCommentService(commentRepo repository.CommentRepository, reviewRepo repository.ReviewRepository) CommentService {
	return &commentService{
		commentRepo: commentRepo,
		reviewRepo:  reviewRepo,
	}
}

func (s *commentService) ListByReview(titleID, reviewID int64, page, pageSize int) (*dto.Paginated[dto.CommentResponse], error) {
	if _, err := s.reviewRepo.GetByID(titleID, reviewID); err != nil {
		return nil, err
	}

	comments, total, err := s.commentRepo.GetByReview(reviewID, page, pageSize)
	if err != nil {
		return nil, err
	}

	responses := make([]dto.CommentResponse, 0, len(comments))
	for i := range comments {
		responses = append(responses, *dto.FromModelToCommentResponse(&comments[i]))
	}
	return dto.NewPaginated(responses, int(total), page, pageSize), nil
}

func (s *commentService) Create(authorID string, titleID, reviewID int64, in dto.CreateCommentDTO) (*dto.CommentResponse, error) {
	if _, err := s.reviewRepo.GetByID(titleID, reviewID); err != nil {
		return nil, err
	}

	comment := &models.Comment{
		ReviewID: reviewID,
		AuthorID: authorID,
		Text:     in.Text,
	}
	if err := s.commentRepo.Create(comment); err != nil {
		return nil, err
	}

	// Reload with author data
	comment, err := s.commentRepo.GetByID(reviewID, comment.ID)
	if err != nil {
		return nil, err
	}
	return dto.FromModelToCommentResponse(comment), nil
}

func (s *commentService) Find(titleID, reviewID, commentID int64) (*models.Comment, error) {
	if _, err := s.reviewRepo.GetByID(titleID, reviewID); err != nil {
		return nil, err
	}
	return s.commentRepo.GetByID(reviewID, commentID)
}

func (s *commentService) Update(comment *models.Comment, in dto.CreateCommentDTO) (*dto.CommentResponse, error) {
	comment.Text = in.Text
	if err := s.commentRepo.Update(comment); err != nil {
		return nil, err
	}
	return dto.FromModelToCommentResponse(comment), nil
}

func (s *commentService) Delete(commentID int64) error {
	return s.commentRepo.Delete(commentID)
}
