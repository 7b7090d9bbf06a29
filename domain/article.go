package domain

import (
	"context"
	"time"
)

// Article is representing the Article data struct
type Article struct {
	ID        int64     // Unique identifier for the article
	Title     string    // Article title
	Content   string    // Article body content
	ImageURL  string    // Optional cover image
	User      User      // Author information
	UpdatedAt time.Time // Last update timestamp
	CreatedAt time.Time // Creation timestamp
	Views     int64     // Number of views
	Likes     int64     // Number of likes
}

// ArticleDBRepository is the database-only persistence layer.
type ArticleDBRepository interface {
	// Fetch retrieves a paginated list of articles.
	// cursor: for pagination, pass the encoded created_at of the last
	// article or empty string for the first page.
	Fetch(ctx context.Context, cursor string, num int64) ([]Article, error)

	// GetByID retrieves a single article by its ID.
	// Returns ErrNotFound if the article doesn't exist.
	GetByID(ctx context.Context, id int64) (Article, error)

	// GetByIDs retrieves articles by given IDs. Missing IDs are skipped.
	GetByIDs(ctx context.Context, ids []int64) ([]Article, error)

	// GetByTitle retrieves an article by its title.
	GetByTitle(ctx context.Context, title string) (Article, error)

	// Store creates a new article in the repository.
	Store(ctx context.Context, a *Article) error

	// Update modifies an existing article.
	// Returns ErrNotFound if the article doesn't exist.
	Update(ctx context.Context, ar *Article) error

	// Delete removes an article by its ID. Comments and like records
	// go with it through the store's foreign keys.
	Delete(ctx context.Context, id int64) error

	// AddViews increments the view count of an article.
	AddViews(ctx context.Context, id int64, deltaViews int64) error

	// ApplyLikeChanges applies a batch of like/unlike records in one
	// transaction and refreshes the per-article like counters.
	ApplyLikeChanges(ctx context.Context, changes LikeStateChanges) error

	// FetchUserLikedArticles selects the most recent article ids liked
	// by the user, newest first, limited.
	FetchUserLikedArticles(ctx context.Context, uid int64, limit int64) ([]int64, error)

	// FetchArticlesByLikes returns articles ordered by like count.
	FetchArticlesByLikes(ctx context.Context, limit int64) ([]Article, error)

	// FetchIDs pages over all article ids, for bloom filter warmup.
	FetchIDs(ctx context.Context, cursor, limit int64) ([]int64, error)
}

// ArticleRepository is the coordinating layer on top of DB and cache.
type ArticleRepository interface {
	Fetch(ctx context.Context, cursor string, num int64) ([]Article, error)
	GetByID(ctx context.Context, id int64) (Article, error)
	GetByIDs(ctx context.Context, ids []int64) ([]Article, error)
	GetByTitle(ctx context.Context, title string) (Article, error)
	Store(ctx context.Context, a *Article) error
	Update(ctx context.Context, ar *Article) error
	Delete(ctx context.Context, id int64) error
	FetchUserLikedArticles(ctx context.Context, uid int64, limit int64) ([]int64, error)
	FetchArticlesByLikes(ctx context.Context, limit int64) ([]Article, error)
	FetchIDs(ctx context.Context, cursor, limit int64) ([]int64, error)
}

type ArticleCache interface {
	// Article related
	GetArticle(ctx context.Context, id int64) (Article, error)
	GetArticleByIDs(ctx context.Context, ids []int64) ([]Article, error)
	SetArticle(ctx context.Context, ar *Article) error
	BatchSetArticle(ctx context.Context, ars []Article) error

	// DeleteArticle removes the cached article
	DeleteArticle(ctx context.Context, id int64) error

	// Views related
	IncrViews(ctx context.Context, id int64) (views int64, err error)
	FetchAndResetViews(ctx context.Context) (map[int64]int64, error)

	// Likes related
	GetLikeCount(ctx context.Context, articleID int64) (int64, error)
	SetLikeCount(ctx context.Context, articleID int64, likes int64) error
	AddLikeRecord(ctx context.Context, likeRecord UserLike) (bool, error)
	DecrLikeRecord(ctx context.Context, likeRecord UserLike) (bool, error)
	SetUserLikedArticles(ctx context.Context, userID int64, articleIDs []int64) error

	GetDailyRank(ctx context.Context, limit int64) ([]Article, error)
	GetHistoryRank(ctx context.Context, limit int64) ([]Article, error)
	SetHistoryRank(ctx context.Context, articleIDs []int64, scores []float64) error
}

type ArticleUsecase interface {
	Fetch(ctx context.Context, cursor string, num int64) ([]Article, string, error)
	GetByID(ctx context.Context, id int64) (Article, error)
	Store(ctx context.Context, ar *Article) error
	Update(ctx context.Context, ar *Article) error
	Delete(ctx context.Context, id int64, actor User) error
	AddLikeRecord(ctx context.Context, likeRecord UserLike) (bool, error)
	RemoveLikeRecord(ctx context.Context, likeRecord UserLike) (bool, error)
	FetchDailyRank(ctx context.Context, limit int64) ([]Article, error)
	FetchHistoryRank(ctx context.Context, limit int64) ([]Article, error)
	InitBloomFilter(ctx context.Context) error
}
