package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

const (
	accessCookie  = "accessToken"
	refreshCookie = "refreshToken"
)

// Cookie attributes are derived from config once; set and clear must use the
// same attributes or browsers will not actually remove the cookie.
func (h *Handler) setTokenCookies(c *gin.Context, access, refresh string) {
	c.SetSameSite(http.SameSiteNoneMode)
	secure := h.Cfg.IsProduction()
	c.SetCookie(accessCookie, access, int(h.AccessTTL.Seconds()), "/", "", secure, true)
	c.SetCookie(refreshCookie, refresh, int(h.RefreshTTL.Seconds()), "/", "", secure, true)
}

func (h *Handler) clearTokenCookies(c *gin.Context) {
	c.SetSameSite(http.SameSiteNoneMode)
	secure := h.Cfg.IsProduction()
	c.SetCookie(accessCookie, "", -1, "/", "", secure, true)
	c.SetCookie(refreshCookie, "", -1, "/", "", secure, true)
}
