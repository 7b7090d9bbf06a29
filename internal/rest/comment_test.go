package rest

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cryptoinsight/domain"
)

type stubCommentUsecase struct {
	addFn       func(ctx context.Context, articleID int64, username, content string, parentID *int64) (int64, error)
	fetchTreeFn func(ctx context.Context, articleID int64) ([]*domain.Comment, error)
	countFn     func(ctx context.Context, articleID int64) (int64, error)
	editFn      func(ctx context.Context, commentID int64, username, newContent string) error
	deleteFn    func(ctx context.Context, commentID int64, username string) error
}

var _ domain.CommentUsecase = (*stubCommentUsecase)(nil)

func (s *stubCommentUsecase) Add(ctx context.Context, articleID int64, username, content string, parentID *int64) (int64, error) {
	return s.addFn(ctx, articleID, username, content, parentID)
}

func (s *stubCommentUsecase) FetchTree(ctx context.Context, articleID int64) ([]*domain.Comment, error) {
	return s.fetchTreeFn(ctx, articleID)
}

func (s *stubCommentUsecase) Count(ctx context.Context, articleID int64) (int64, error) {
	return s.countFn(ctx, articleID)
}

func (s *stubCommentUsecase) Edit(ctx context.Context, commentID int64, username, newContent string) error {
	return s.editFn(ctx, commentID, username, newContent)
}

func (s *stubCommentUsecase) Delete(ctx context.Context, commentID int64, username string) error {
	return s.deleteFn(ctx, commentID, username)
}

func newCommentRouter(svc domain.CommentUsecase, username string) *gin.Engine {
	gin.SetMode(gin.TestMode)
	route := gin.New()
	if username != "" {
		route.Use(func(c *gin.Context) {
			c.Set("username", username)
			c.Next()
		})
	}

	h := NewCommentHandler(svc)
	route.GET("/articles/:id/comments", h.FetchTree)
	route.POST("/articles/:id/comments", h.Create)
	route.PUT("/comments/:id", h.Update)
	route.DELETE("/comments/:id", h.Delete)
	return route
}

func TestFetchTreeHandler(t *testing.T) {
	created := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	rootID := int64(1)
	svc := &stubCommentUsecase{
		fetchTreeFn: func(ctx context.Context, articleID int64) ([]*domain.Comment, error) {
			assert.Equal(t, int64(42), articleID)
			return []*domain.Comment{
				{
					ID:        rootID,
					ArticleID: 42,
					Username:  "alice",
					Content:   "root",
					CreatedAt: created,
					Replies: []*domain.Comment{
						{
							ID:        2,
							ArticleID: 42,
							Username:  "bob",
							Content:   "reply",
							ParentID:  &rootID,
							CreatedAt: created.Add(time.Second),
							Replies:   []*domain.Comment{},
						},
					},
				},
			}, nil
		},
		countFn: func(ctx context.Context, articleID int64) (int64, error) {
			return 2, nil
		},
	}

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/articles/42/comments", nil)
	newCommentRouter(svc, "").ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var body struct {
		Count    int64 `json:"count"`
		Comments []struct {
			ID       int64  `json:"id"`
			Username string `json:"username"`
			Replies  []struct {
				ID       int64 `json:"id"`
				ParentID int64 `json:"parent_id"`
			} `json:"replies"`
		} `json:"comments"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, int64(2), body.Count)
	require.Len(t, body.Comments, 1)
	assert.Equal(t, "alice", body.Comments[0].Username)
	require.Len(t, body.Comments[0].Replies, 1)
	assert.Equal(t, rootID, body.Comments[0].Replies[0].ParentID)
}

func TestFetchTreeHandlerUnknownArticle(t *testing.T) {
	svc := &stubCommentUsecase{
		fetchTreeFn: func(ctx context.Context, articleID int64) ([]*domain.Comment, error) {
			return nil, domain.ErrNotFound
		},
	}

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/articles/999/comments", nil)
	newCommentRouter(svc, "").ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestCreateCommentHandler(t *testing.T) {
	var gotParent *int64
	svc := &stubCommentUsecase{
		addFn: func(ctx context.Context, articleID int64, username, content string, parentID *int64) (int64, error) {
			assert.Equal(t, int64(42), articleID)
			assert.Equal(t, "alice", username)
			assert.Equal(t, "hello", content)
			gotParent = parentID
			return 7, nil
		},
	}

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/articles/42/comments",
		strings.NewReader(`{"content":"hello","parent_id":3}`))
	req.Header.Set("Content-Type", "application/json")
	newCommentRouter(svc, "alice").ServeHTTP(w, req)

	require.Equal(t, http.StatusCreated, w.Code)
	require.NotNil(t, gotParent)
	assert.Equal(t, int64(3), *gotParent)

	var body struct {
		ID int64 `json:"id"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, int64(7), body.ID)
}

func TestCreateCommentHandlerUnauthenticated(t *testing.T) {
	svc := &stubCommentUsecase{}

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/articles/42/comments",
		strings.NewReader(`{"content":"hello"}`))
	req.Header.Set("Content-Type", "application/json")
	newCommentRouter(svc, "").ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestUpdateCommentHandlerForbidden(t *testing.T) {
	svc := &stubCommentUsecase{
		editFn: func(ctx context.Context, commentID int64, username, newContent string) error {
			return domain.ErrForbidden
		},
	}

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPut, "/comments/7",
		strings.NewReader(`{"content":"hijacked"}`))
	req.Header.Set("Content-Type", "application/json")
	newCommentRouter(svc, "mallory").ServeHTTP(w, req)

	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestDeleteCommentHandler(t *testing.T) {
	var deleted int64
	svc := &stubCommentUsecase{
		deleteFn: func(ctx context.Context, commentID int64, username string) error {
			deleted = commentID
			assert.Equal(t, "alice", username)
			return nil
		},
	}

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodDelete, "/comments/7", nil)
	newCommentRouter(svc, "alice").ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, int64(7), deleted)
}
