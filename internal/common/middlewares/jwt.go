package middlewares

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/c14220110/poliklinik-dashboard/internal/common/models"
	"github.com/c14220110/poliklinik-dashboard/pkg/utils"
)

// Key context untuk klaim JWT yang sudah divalidasi.
const ContextKeyClaims = "claims"

// JWTMiddleware memvalidasi header Authorization: Bearer <token>. The
// WebSocket endpoint cannot set headers from a browser, so a token query
// parameter is accepted as well.
func JWTMiddleware(jm *utils.JWTManager) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			tokenStr := c.QueryParam("token")
			if authHeader := c.Request().Header.Get(echo.HeaderAuthorization); authHeader != "" {
				parts := strings.Split(authHeader, " ")
				if len(parts) != 2 || parts[0] != "Bearer" {
					return models.Respond(c, http.StatusUnauthorized, "Invalid authorization header", nil)
				}
				tokenStr = parts[1]
			}
			if tokenStr == "" {
				return models.Respond(c, http.StatusUnauthorized, "Authorization header missing", nil)
			}

			claims, err := jm.ValidateJWTToken(tokenStr)
			if err != nil {
				return models.Respond(c, http.StatusUnauthorized, "Invalid token: "+err.Error(), nil)
			}

			c.Set(ContextKeyClaims, claims)
			return next(c)
		}
	}
}

// ClaimsFrom returns the claims stored by JWTMiddleware, or nil.
func ClaimsFrom(c echo.Context) *utils.Claims {
	claims, _ := c.Get(ContextKeyClaims).(*utils.Claims)
	return claims
}
