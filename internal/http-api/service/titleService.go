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
	ErrUnknownCategory = errors.New("category slug does not exist")
	ErrUnknownGenre    = errors.New("genre slug does not exist")
)

type TitleService interface {
	List(ctx context.Context, filter repository.TitleFilter, page, pageSize int) (*dto.Paginated[dto.TitleResponse], error)
	Get(ctx context.Context, id int64) (*dto.TitleResponse, error)
	Create(ctx context.Context, in dto.CreateTitleDTO) (*dto.TitleResponse, error)
	Update(ctx context.Context, id int64, in dto.UpdateTitleDTO) (*dto.TitleResponse, error)
	Delete(ctx context.Context, id int64) error
}

type titleService struct {
	titleRepo    *repository.TitleRepo
	categoryRepo *repository.CategoryRepo
	genreRepo    *repository.GenreRepo
	reviewRepo   repository.ReviewRepository
}

func NewTitleService(
	titleRepo *repository.TitleRepo,
	categoryRepo *repository.CategoryRepo,
	genreRepo *repository.GenreRepo,
	reviewRepo repository.ReviewRepository,
) TitleService {
	return &titleService{
		titleRepo:    titleRepo,
		categoryRepo: categoryRepo,
		genreRepo:    genreRepo,
		reviewRepo:   reviewRepo,
	}
}

func (s *titleService) List(ctx context.Context, filter repository.TitleFilter, page, pageSize int) (*dto.Paginated[dto.TitleResponse], error) {
	titles, total, err := s.titleRepo.GetAll(ctx, filter, page, pageSize)
	if err != nil {
		return nil, err
	}

	responses := make([]dto.TitleResponse, 0, len(titles))
	for i := range titles {
		rating, err := s.reviewRepo.AverageScore(titles[i].ID)
		if err != nil {
			return nil, err
		}
		responses = append(responses, dto.TitleFromModel(&titles[i], rating))
	}
	return dto.NewPaginated(responses, int(total), page, pageSize), nil
}

func (s *titleService) Get(ctx context.Context, id int64) (*dto.TitleResponse, error) {
	title, err := s.titleRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	rating, err := s.reviewRepo.AverageScore(title.ID)
	if err != nil {
		return nil, err
	}
	resp := dto.TitleFromModel(title, rating)
	return &resp, nil
}

func (s *titleService) Create(ctx context.Context, in dto.CreateTitleDTO) (*dto.TitleResponse, error) {
	category, err := s.categoryRepo.GetBySlug(ctx, in.Category)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUnknownCategory
		}
		return nil, err
	}
	genres, err := s.resolveGenres(ctx, in.Genre)
	if err != nil {
		return nil, err
	}

	title := &models.Title{
		Name:        in.Name,
		Year:        in.Year,
		Description: in.Description,
		CategoryID:  &category.ID,
		Category:    category,
		Genres:      genres,
	}
	if err := s.titleRepo.Create(ctx, title); err != nil {
		return nil, err
	}

	resp := dto.TitleFromModel(title, nil) // a fresh title has no reviews
	return &resp, nil
}

func (s *titleService) Update(ctx context.Context, id int64, in dto.UpdateTitleDTO) (*dto.TitleResponse, error) {
	title, err := s.titleRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if in.Name != nil {
		title.Name = *in.Name
	}
	if in.Year != nil {
		title.Year = *in.Year
	}
	if in.Description != nil {
		title.Description = in.Description
	}
	if in.Category != nil {
		category, err := s.categoryRepo.GetBySlug(ctx, *in.Category)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, ErrUnknownCategory
			}
			return nil, err
		}
		title.CategoryID = &category.ID
		title.Category = category
	}
	if in.Genre != nil {
		genres, err := s.resolveGenres(ctx, in.Genre)
		if err != nil {
			return nil, err
		}
		title.Genres = genres
	}

	if err := s.titleRepo.Update(ctx, title); err != nil {
		return nil, err
	}

	rating, err := s.reviewRepo.AverageScore(title.ID)
	if err != nil {
		return nil, err
	}
	resp := dto.TitleFromModel(title, rating)
	return &resp, nil
}

func (s *titleService) Delete(ctx context.Context, id int64) error {
	return s.titleRepo.Delete(ctx, id)
}

// resolveGenres maps slugs to stored genres, rejecting any slug that does
// not exist.
func (s *titleService) resolveGenres(ctx context.Context, slugs []string) ([]models.Genre, error) {
	genres, err := s.genreRepo.GetBySlugs(ctx, slugs)
	if err != nil {
		return nil, err
	}
	if len(genres) != len(slugs) {
		return nil, fmt.Errorf("%w: got %d of %d", ErrUnknownGenre, len(genres), len(slugs))
	}
	return genres, nil
}
