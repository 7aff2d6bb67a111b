package routes

import (
	"github.com/labstack/echo/v4"

	"github.com/c14220110/poliklinik-dashboard/internal/dokter/controllers"
)

// RegisterDokterRoutes memasang endpoint dashboard dokter. dokter must
// already be guarded by JWT and role middleware; login is mounted on
// public.
func RegisterDokterRoutes(public, dokter *echo.Group, dc *controllers.DokterController, ac *controllers.AntrianController, kc *controllers.KonsultasiController) {
	public.POST("/login", dc.LoginDokter) // Tidak pakai JWT

	dokter.GET("/dashboard", ac.GetDashboard)
	dokter.POST("/dashboard/refresh", ac.RefreshDashboard)

	antrian := dokter.Group("/antrian")
	antrian.POST("/next", ac.CallNext)
	antrian.POST("/repeat", ac.RepeatCall)
	antrian.PUT("/:id/timein", ac.TimeIn)
	antrian.PUT("/:id/timeout", ac.TimeOut)
	antrian.PUT("/:id/complete", ac.Complete)
	antrian.GET("/history", ac.GetCallHistory)

	konsultasi := dokter.Group("/konsultasi")
	konsultasi.GET("", kc.Get)
	konsultasi.PUT("", kc.Replace)
	konsultasi.DELETE("", kc.Close)
	konsultasi.POST("/save", kc.Save)
	konsultasi.PUT("/notes", kc.SetNotes)
	konsultasi.PUT("/mc", kc.SetMC)
	konsultasi.POST("/diagnosis", kc.AddDiagnosis)
	konsultasi.PUT("/diagnosis/:row", kc.TypeDiagnosis)
	konsultasi.PUT("/diagnosis/:row/select", kc.SelectDiagnosis)
	konsultasi.DELETE("/diagnosis/:row", kc.RemoveDiagnosis)
	konsultasi.POST("/medicine", kc.AddMedicine)
	konsultasi.PUT("/medicine/:row", kc.EditMedicine)
	konsultasi.PUT("/medicine/:row/select", kc.SelectMedicine)
	konsultasi.DELETE("/medicine/:row", kc.RemoveMedicine)
	konsultasi.POST("/:id", kc.Open)
}
