package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
	orderdomain "github.com/nextdevhq/storefront/internal/order/domain"
)

type siteConfigResponse struct {
	DisplayName string `json:"display_name"`
	ThemeColor  string `json:"theme_color"`
	SupportURL  string `json:"support_url"`
	KeyID       string `json:"key_id"`
	Currency    string `json:"currency"`
}

// GetSiteConfig exposes merchant branding plus the public provider key so the
// checkout surface can render without a rebuild when ops retune the config.
func (s *Server) GetSiteConfig(c *gin.Context) {
	merchant := s.merchant.Get()
	c.JSON(http.StatusOK, siteConfigResponse{
		DisplayName: merchant.DisplayName,
		ThemeColor:  merchant.ThemeColor,
		SupportURL:  merchant.SupportURL,
		KeyID:       s.cfg.RazorpayKeyID,
		Currency:    orderdomain.Currency,
	})
}
