package dto

import "reviewhub/internal/http-api/models"

// ClassifierResponse renders a category or genre as {name, slug}
type ClassifierResponse struct {
	Name string `json:"name"`
	Slug string `json:"slug"`
}

// TitleResponse is the read shape, rating is the on-demand mean of review
// scores and stays null while the title has no reviews
type TitleResponse struct {
	ID          int64                `json:"id"`
	Name        string               `json:"name"`
	Year        int                  `json:"year"`
	Rating      *float64             `json:"rating"`
	Description *string              `json:"description"`
	Genre       []ClassifierResponse `json:"genre"`
	Category    *ClassifierResponse  `json:"category"`
}

func TitleFromModel(t *models.Title, rating *float64) TitleResponse {
	genres := make([]ClassifierResponse, 0, len(t.Genres))
	for _, g := range t.Genres {
		genres = append(genres, ClassifierResponse{Name: g.Name, Slug: g.Slug})
	}
	resp := TitleResponse{
		ID:          t.ID,
		Name:        t.Name,
		Year:        t.Year,
		Rating:      rating,
		Description: t.Description,
		Genre:       genres,
	}
	if t.Category != nil {
		resp.Category = &ClassifierResponse{Name: t.Category.Name, Slug: t.Category.Slug}
	}
	return resp
}

// CreateTitleDTO references category and genres by slug
type CreateTitleDTO struct {
	Name        string   `json:"name" binding:"required,max=64"`
	Year        int      `json:"year" binding:"required"`
	Description *string  `json:"description"`
	Genre       []string `json:"genre" binding:"required,min=1"`
	Category    string   `json:"category" binding:"required"`
}

// UpdateTitleDTO carries only the submitted fields
type UpdateTitleDTO struct {
	Name        *string  `json:"name" binding:"omitempty,max=64"`
	Year        *int     `json:"year"`
	Description *string  `json:"description"`
	Genre       []string `json:"genre"`
	Category    *string  `json:"category"`
}
