package middlewares

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/c14220110/poliklinik-dashboard/internal/common/models"
)

// RequireRole memeriksa apakah role pada klaim JWT termasuk salah satu roles.
func RequireRole(roles ...string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			claims := ClaimsFrom(c)
			if claims == nil {
				return models.Respond(c, http.StatusUnauthorized, "Missing or invalid JWT claims", nil)
			}
			for _, r := range roles {
				if claims.Role == r {
					return next(c)
				}
			}
			return models.Respond(c, http.StatusForbidden, "Anda tidak memiliki hak akses", nil)
		}
	}
}
