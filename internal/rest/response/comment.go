package response

import "cryptoinsight/domain"

type Comment struct {
	ID        int64  `json:"id"`
	ArticleID int64  `json:"article_id"`
	Username  string `json:"username"`
	Content   string `json:"content"`
	ParentID  *int64 `json:"parent_id,omitempty"`
	CreatedAt string `json:"created_at"`
	UpdatedAt string `json:"updated_at,omitempty"`

	// Replies 子评论列表
	Replies []*Comment `json:"replies"`
}

// NewCommentFromDomain: Domain -> Response, recursively over the reply tree.
func NewCommentFromDomain(c *domain.Comment) *Comment {
	if c == nil {
		return nil
	}

	res := &Comment{
		ID:        c.ID,
		ArticleID: c.ArticleID,
		Username:  c.Username,
		Content:   c.Content,
		ParentID:  c.ParentID,
		CreatedAt: c.CreatedAt.Format(DateTimeFormat),
		Replies:   make([]*Comment, 0, len(c.Replies)),
	}
	if c.UpdatedAt != nil {
		res.UpdatedAt = c.UpdatedAt.Format(DateTimeFormat)
	}

	for _, reply := range c.Replies {
		res.Replies = append(res.Replies, NewCommentFromDomain(reply))
	}
	return res
}

// NewCommentForestFromDomain converts a whole forest.
func NewCommentForestFromDomain(forest []*domain.Comment) []*Comment {
	res := make([]*Comment, 0, len(forest))
	for _, c := range forest {
		res = append(res, NewCommentFromDomain(c))
	}
	return res
}
