package rest

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"cryptoinsight/domain"
	"cryptoinsight/internal/rest/request"
	"cryptoinsight/internal/rest/response"
)

// adminHandler serves the moderation endpoints. All routes are mounted
// behind RequireAdmin.
type adminHandler struct {
	Service domain.UserUsecase
}

func NewAdminHandler(svc domain.UserUsecase) *adminHandler {
	return &adminHandler{
		Service: svc,
	}
}

// ListUsers pages through users by id for the moderation dashboard.
func (h *adminHandler) ListUsers(c *gin.Context) {
	cursor, err := strconv.ParseInt(c.DefaultQuery("cursor", "0"), 10, 64)
	if err != nil || cursor < 0 {
		cursor = 0
	}
	limit, err := strconv.ParseInt(c.Query("num"), 10, 64)
	if err != nil || limit < PageMinNum || limit > PageMaxNum {
		limit = DefaultPageNum
	}

	ctx := c.Request.Context()
	users, err := h.Service.Fetch(ctx, cursor, limit)
	if err != nil {
		c.JSON(getStatusCode(err), ResponseError{Message: err.Error()})
		return
	}

	res := make([]*response.User, 0, len(users))
	for i := range users {
		res = append(res, response.NewUserFromDomain(&users[i]))
	}
	c.JSON(http.StatusOK, res)
}

// SetBanned bans or unbans one user.
func (h *adminHandler) SetBanned(c *gin.Context) {
	idP, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, ResponseError{Message: domain.ErrNotFound.Error()})
		return
	}

	var req request.SetBanned
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ctx := c.Request.Context()
	if err := h.Service.SetBanned(ctx, int64(idP), req.Banned); err != nil {
		c.JSON(getStatusCode(err), ResponseError{Message: err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "User ban state updated"})
}
