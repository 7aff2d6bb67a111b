package routes

import (
	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"

	"github.com/c14220110/poliklinik-dashboard/internal/common/middlewares"
	dokterControllers "github.com/c14220110/poliklinik-dashboard/internal/dokter/controllers"
	dokterRoutes "github.com/c14220110/poliklinik-dashboard/internal/dokter/routes"
	manajemenControllers "github.com/c14220110/poliklinik-dashboard/internal/manajemen/controllers"
	manajemenRoutes "github.com/c14220110/poliklinik-dashboard/internal/manajemen/routes"
	"github.com/c14220110/poliklinik-dashboard/pkg/utils"
	"github.com/c14220110/poliklinik-dashboard/ws"
)

// Handlers adalah semua controller yang dipasang oleh Init.
type Handlers struct {
	Dokter     *dokterControllers.DokterController
	Antrian    *dokterControllers.AntrianController
	Konsultasi *dokterControllers.KonsultasiController
	Management *manajemenControllers.ManagementController
	Referensi  *manajemenControllers.ReferensiController

	Hub      *ws.Hub
	Upgrader websocket.Upgrader
	Snapshot func() interface{}
}

// Init menginisialisasi semua routes menggunakan Echo framework
func Init(e *echo.Echo, jm *utils.JWTManager, h Handlers) {
	auth := middlewares.JWTMiddleware(jm)

	// Grup API utama
	api := e.Group("/api")

	// **Grup Dokter**
	dokterRoutes.RegisterDokterRoutes(
		api.Group("/dokter"),
		api.Group("/dokter", auth, middlewares.RequireRole(utils.RoleDokter)),
		h.Dokter, h.Antrian, h.Konsultasi,
	)

	// **Grup Management**
	manajemenRoutes.RegisterManagementRoutes(api.Group("/management"), h.Management)

	// **Grup Referensi** diagnosa & obat
	manajemenRoutes.RegisterReferensiRoutes(
		api.Group("/referensi", auth, middlewares.RequireRole(utils.RoleDokter, utils.RoleAdmin)),
		api.Group("/referensi", auth, middlewares.RequireRole(utils.RoleAdmin)),
		h.Referensi,
	)

	e.GET("/ws", ws.ServeWS(h.Hub, h.Upgrader, h.Snapshot), auth)
}
