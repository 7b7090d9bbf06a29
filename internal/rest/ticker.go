package rest

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"cryptoinsight/domain"
)

type tickerHandler struct {
	Service domain.TickerUsecase
}

func NewTickerHandler(svc domain.TickerUsecase) *tickerHandler {
	return &tickerHandler{
		Service: svc,
	}
}

// Quotes returns the latest polled prices. 503 until the first
// successful upstream poll lands in the cache.
func (h *tickerHandler) Quotes(c *gin.Context) {
	quotes, err := h.Service.Quotes(c.Request.Context())
	if err != nil {
		c.JSON(getStatusCode(err), ResponseError{Message: err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"quotes": quotes})
}
