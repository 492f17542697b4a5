package service

import (
	"context"
	"errors"
	"strings"

	"reviewhub/internal/http-api/dto"
	"reviewhub/internal/http-api/models"
	"reviewhub/internal/http-api/repository"

	"gorm.io/gorm"
)

var ErrSlugTaken = errors.New("slug already in use")

type CategoryService interface {
	List(ctx context.Context, query string, page, pageSize int) (*dto.Paginated[models.Category], error)
	Create(ctx context.Context, in dto.CreateCategoryDTO) (*models.Category, error)
	Delete(ctx context.Context, slug string) error
}

type categoryService struct {
	repo *repository.CategoryRepo
}

func NewCategoryService(r *repository.CategoryRepo) CategoryService {
	return &categoryService{repo: r}
}

func (s *categoryService) List(ctx context.Context, query string, page, pageSize int) (*dto.Paginated[models.Category], error) {
	list, total, err := s.repo.Search(ctx, query, page, pageSize)
	if err != nil {
		return nil, err
	}
	return dto.NewPaginated(list, int(total), page, pageSize), nil
}

func (s *categoryService) Create(ctx context.Context, in dto.CreateCategoryDTO) (*models.Category, error) {
	c := &models.Category{
		Name: strings.TrimSpace(in.Name),
		Slug: strings.TrimSpace(in.Slug),
	}
	if err := s.repo.Create(ctx, c); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrSlugTaken
		}
		return nil, err
	}
	return c, nil
}

func (s *categoryService) Delete(ctx context.Context, slug string) error {
	return s.repo.DeleteBySlug(ctx, slug)
}
