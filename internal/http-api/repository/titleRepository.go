package repository

import (
	"context"
	"fmt"

	"reviewhub/internal/http-api/models"

	"gorm.io/gorm"
)

// TitleFilter narrows a title listing. Filters are applied in declaration
// order and the first non-empty one wins, matching the query contract.
type TitleFilter struct {
	GenreSlug    string
	CategorySlug string
	Name         string
	Year         *int
}

type TitleRepo struct {
	db *gorm.DB
}

func NewTitleRepo(db *gorm.DB) *TitleRepo {
	return &TitleRepo{db: db}
}

func (r *TitleRepo) GetAll(ctx context.Context, filter TitleFilter, page, pageSize int) ([]models.Title, int64, error) {
	var list []models.Title
	var total int64

	q := r.db.WithContext(ctx).Model(&models.Title{})
	switch {
	case filter.GenreSlug != "":
		q = q.Joins("JOIN title_genres tg ON tg.title_id = titles.id").
			Joins("JOIN genres g ON g.id = tg.genre_id").
			Where("g.slug = ?", filter.GenreSlug)
	case filter.CategorySlug != "":
		q = q.Joins("JOIN categories c ON c.id = titles.category_id").
			Where("c.slug = ?", filter.CategorySlug)
	case filter.Name != "":
		q = q.Where("titles.name LIKE ?", "%"+filter.Name+"%")
	case filter.Year != nil:
		q = q.Where("titles.year = ?", *filter.Year)
	}

	if err := q.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("count titles: %w", err)
	}

	offset := (page - 1) * pageSize
	if err := q.
		Preload("Genres").
		Preload("Category").
		Order("titles.id asc").
		Limit(pageSize).
		Offset(offset).
		Find(&list).Error; err != nil {
		return nil, 0, fmt.Errorf("get titles: %w", err)
	}

	return list, total, nil
}

func (r *TitleRepo) GetByID(ctx context.Context, id int64) (*models.Title, error) {
	var t models.Title
	if err := r.db.WithContext(ctx).Preload("Genres").Preload("Category").First(&t, id).Error; err != nil {
		return nil, err
	}
	return &t, nil
}

func (r *TitleRepo) Create(ctx context.Context, t *models.Title) error {
	if err := r.db.WithContext(ctx).Create(t).Error; err != nil {
		return fmt.Errorf("create title: %w", err)
	}
	return nil
}

func (r *TitleRepo) Update(ctx context.Context, t *models.Title) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Save(t).Error; err != nil {
			return fmt.Errorf("update title: %w", err)
		}
		// Save does not sync many2many rows, replace the association explicitly
		if err := tx.Model(t).Association("Genres").Replace(t.Genres); err != nil {
			return fmt.Errorf("update title genres: %w", err)
		}
		return nil
	})
}

// Delete removes the title. Reviews (and through them comments) go with it
// via the CASCADE constraints.
func (r *TitleRepo) Delete(ctx context.Context, id int64) error {
	result := r.db.WithContext(ctx).Delete(&models.Title{}, id)
	if result.Error != nil {
		return fmt.Errorf("delete title: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
