package dto

// CreateCategoryDTO for creating a category
type CreateCategoryDTO struct {
	Name string `json:"name" binding:"required,max=64"`
	Slug string `json:"slug" binding:"required,max=50"`
}

// CreateGenreDTO for creating a genre
type CreateGenreDTO struct {
	Name string `json:"name" binding:"required,max=64"`
	Slug string `json:"slug" binding:"required,max=50"`
}
