package routes

import (
	"github.com/labstack/echo/v4"

	"github.com/c14220110/poliklinik-dashboard/internal/manajemen/controllers"
)

func RegisterManagementRoutes(public *echo.Group, mc *controllers.ManagementController) {
	public.POST("/login", mc.Login) // Tidak pakai JWT
}

// RegisterReferensiRoutes: read is open to any logged-in user, writes are
// mounted on admin.
func RegisterReferensiRoutes(read, admin *echo.Group, rc *controllers.ReferensiController) {
	read.GET("", rc.GetState)
	read.GET("/:kind", rc.List)
	admin.POST("/:kind", rc.Add)
	admin.PUT("/:kind/:id", rc.Update)
	admin.DELETE("/:kind/:id", rc.Delete)
}
