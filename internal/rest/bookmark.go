package rest

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"cryptoinsight/domain"
	"cryptoinsight/internal/rest/response"
)

const DefaultBookmarkLimit = 50

type bookmarkHandler struct {
	Service domain.BookmarkUsecase
}

func NewBookmarkHandler(svc domain.BookmarkUsecase) *bookmarkHandler {
	return &bookmarkHandler{
		Service: svc,
	}
}

func (h *bookmarkHandler) Add(c *gin.Context) {
	idP, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, ResponseError{Message: domain.ErrNotFound.Error()})
		return
	}

	userID, exists := c.Get("user_id")
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	ctx := c.Request.Context()
	if err := h.Service.Add(ctx, int64(idP), userID.(int64)); err != nil {
		c.JSON(getStatusCode(err), ResponseError{Message: err.Error()})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"message": "Bookmark added"})
}

func (h *bookmarkHandler) Remove(c *gin.Context) {
	idP, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, ResponseError{Message: domain.ErrNotFound.Error()})
		return
	}

	userID, exists := c.Get("user_id")
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	ctx := c.Request.Context()
	if err := h.Service.Remove(ctx, int64(idP), userID.(int64)); err != nil {
		c.JSON(getStatusCode(err), ResponseError{Message: err.Error()})
		return
	}

	c.Status(http.StatusNoContent)
}

// FetchMine returns the caller's bookmarked articles, newest first.
func (h *bookmarkHandler) FetchMine(c *gin.Context) {
	userID, exists := c.Get("user_id")
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	limit, err := strconv.ParseInt(c.Query("num"), 10, 64)
	if err != nil || limit <= 0 || limit > DefaultBookmarkLimit {
		limit = DefaultBookmarkLimit
	}

	ctx := c.Request.Context()
	listAr, err := h.Service.FetchMine(ctx, userID.(int64), limit)
	if err != nil {
		c.JSON(getStatusCode(err), ResponseError{Message: err.Error()})
		return
	}

	res := make([]response.Article, len(listAr))
	for i := range listAr {
		res[i] = response.NewArticleFromDomain(&listAr[i])
	}
	c.JSON(http.StatusOK, res)
}

func (h *bookmarkHandler) IsBookmarked(c *gin.Context) {
	idP, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, ResponseError{Message: domain.ErrNotFound.Error()})
		return
	}

	userID, exists := c.Get("user_id")
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	ctx := c.Request.Context()
	ok, err := h.Service.IsBookmarked(ctx, int64(idP), userID.(int64))
	if err != nil {
		c.JSON(getStatusCode(err), ResponseError{Message: err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"is_bookmarked": ok})
}
