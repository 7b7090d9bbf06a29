package request

import "cryptoinsight/domain"

type Article struct {
	ID       int64  `json:"id"`
	Title    string `json:"title" binding:"required,notblank"`
	Content  string `json:"content" binding:"required,notblank"`
	ImageURL string `json:"image_url" binding:"omitempty,url"`
}

// ToDomain: Request -> Domain
func (r *Article) ToDomain() domain.Article {
	return domain.Article{
		ID:       r.ID,
		Title:    r.Title,
		Content:  r.Content,
		ImageURL: r.ImageURL,
	}
}
