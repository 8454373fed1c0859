package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
	purchasedomain "github.com/nextdevhq/storefront/internal/purchase/domain"
	"github.com/nextdevhq/storefront/pkg/db/pagination"
)

// ListPurchases returns the caller's purchase history, newest first.
func (s *Server) ListPurchases(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		AbortWithError(c, ErrUnauthorized)
		return
	}

	var page pagination.Pagination
	if err := c.ShouldBindQuery(&page); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.purchasesvc.List(c.Request.Context(), purchasedomain.ListRequest{
		UserID:     userID,
		Pagination: page,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}
