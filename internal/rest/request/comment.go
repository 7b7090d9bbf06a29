package request

// Comment is the create/edit payload. The author and article come
// from the session and the URL, never from the body.
type Comment struct {
	Content  string `json:"content" binding:"required,notblank"`
	ParentID *int64 `json:"parent_id"`
}
