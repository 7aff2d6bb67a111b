package controllers

import (
	"net/http"

	"github.com/labstack/echo/v4"

	commonModels "github.com/c14220110/poliklinik-dashboard/internal/common/models"
	"github.com/c14220110/poliklinik-dashboard/internal/dokter/services"
	"github.com/c14220110/poliklinik-dashboard/pkg/utils"
)

type LoginDokterRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type DokterController struct {
	Service *services.DokterService
	JWT     *utils.JWTManager
}

func NewDokterController(service *services.DokterService, jwt *utils.JWTManager) *DokterController {
	return &DokterController{Service: service, JWT: jwt}
}

func (dc *DokterController) LoginDokter(c echo.Context) error {
	var req LoginDokterRequest
	if err := c.Bind(&req); err != nil {
		return commonModels.Respond(c, http.StatusBadRequest, "Invalid request payload: "+err.Error(), nil)
	}
	if err := c.Validate(&req); err != nil {
		return commonModels.Respond(c, http.StatusBadRequest, "Username and Password are required", nil)
	}

	acc, err := dc.Service.AuthenticateDokter(req.Username, req.Password)
	if err != nil {
		return commonModels.Respond(c, http.StatusUnauthorized, "Invalid username or password", nil)
	}

	token, exp, err := dc.JWT.GenerateJWTToken(acc.Username, acc.Role)
	if err != nil {
		return commonModels.Respond(c, http.StatusInternalServerError, "Failed to generate token: "+err.Error(), nil)
	}

	return commonModels.Respond(c, http.StatusOK, "Login successful", echo.Map{
		"username":   acc.Username,
		"role":       acc.Role,
		"token":      token,
		"expires_at": exp,
	})
}
