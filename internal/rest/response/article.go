package response

import (
	"cryptoinsight/domain"
)

type Article struct {
	ID        int64  `json:"id"`
	Title     string `json:"title"`
	Content   string `json:"content"`
	ImageURL  string `json:"image_url,omitempty"`
	UserName  string `json:"user_name"`
	UpdatedAt string `json:"updated_at"`
	CreatedAt string `json:"created_at"`
	Views     int64  `json:"views"`
	Likes     int64  `json:"likes"`
}

// NewArticleFromDomain: Domain -> Response
func NewArticleFromDomain(a *domain.Article) Article {
	return Article{
		ID:        a.ID,
		Title:     a.Title,
		Content:   a.Content,
		ImageURL:  a.ImageURL,
		UserName:  a.User.Name,
		UpdatedAt: a.UpdatedAt.Format(DateTimeFormat),
		CreatedAt: a.CreatedAt.Format(DateTimeFormat),
		Views:     a.Views,
		Likes:     a.Likes,
	}
}
