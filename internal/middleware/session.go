package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prepwise/prepwise-backend/internal/response"
	"github.com/prepwise/prepwise-backend/internal/service"
)

// CheckActiveDevice validates the JWT's JTI against the active session in
// Redis. A mismatch means a newer sign-in replaced this device and the
// request is rejected.
func CheckActiveDevice(authService *service.AuthService) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims := GetClaims(c)
		if claims == nil {
			response.AbortFail(c, http.StatusUnauthorized, response.ErrTokenRequired)
			return
		}

		if err := authService.ValidateSession(c.Request.Context(), claims.UserID, claims.ID); err != nil {
			response.AbortFail(c, http.StatusUnauthorized, response.ErrSessionInvalidated)
			return
		}

		c.Next()
	}
}
