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

type GenreService interface {
    List(ctx context.Context, query string, page, pageSize int) (*dto.Paginated[models.Genre], error)
    Create(ctx context.Context, in dto.CreateGenreDTO) (*models.Genre, error)
    Delete(ctx context.Context, slug string) error
}

type genreService struct {
    repo *repository.GenreRepo
}

func NewGenreService(r *repository.GenreRepo) GenreService {
    return &genreService{repo: r}
}

func (s *genreService) List(ctx context.Context, query string, page, pageSize int) (*dto.Paginated[models.Genre], error) {
    list, total, err := s.repo.Search(ctx, query, page, pageSize)
    if err != nil {
        return nil, err
    }
    return dto.NewPaginated(list, int(total), page, pageSize), nil
}

func (s *genreService) Create(ctx context.Context, in dto.CreateGenreDTO) (*models.Genre, error) {
    g := &models.Genre{
        Name: strings.TrimSpace(in.Name),
        Slug: strings.TrimSpace(in.Slug),
    }
    if err := s.repo.Create(ctx, g); err != nil {
        if errors.Is(err, gorm.ErrDuplicatedKey) {
            return nil, ErrSlugTaken
        }
        return nil, err
    }
    return g, nil
}

func (s *genreService) Delete(ctx context.Context, slug string) error {
    return s.repo.DeleteBySlug(ctx, slug)
}
