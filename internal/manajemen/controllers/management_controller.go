package controllers

import (
	"net/http"

	"github.com/labstack/echo/v4"

	commonModels "github.com/c14220110/poliklinik-dashboard/internal/common/models"
	"github.com/c14220110/poliklinik-dashboard/internal/manajemen/services"
	"github.com/c14220110/poliklinik-dashboard/pkg/utils"
)

type ManagementController struct {
	Service *services.ManagementService
	JWT     *utils.JWTManager
}

func NewManagementController(service *services.ManagementService, jwt *utils.JWTManager) *ManagementController {
	return &ManagementController{Service: service, JWT: jwt}
}

type LoginManagementRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

func (mc *ManagementController) Login(c echo.Context) error {
	var req LoginManagementRequest
	if err := c.Bind(&req); err != nil {
		return commonModels.Respond(c, http.StatusBadRequest, "Invalid request payload", nil)
	}
	if err := c.Validate(&req); err != nil {
		return commonModels.Respond(c, http.StatusBadRequest, "Username and Password are required", nil)
	}

	// Autentikasi admin melalui service
	acc, err := mc.Service.AuthenticateManagement(req.Username, req.Password)
	if err != nil {
		return commonModels.Respond(c, http.StatusUnauthorized, "Invalid username or password", nil)
	}

	token, exp, err := mc.JWT.GenerateJWTToken(acc.Username, acc.Role)
	if err != nil {
		return commonModels.Respond(c, http.StatusInternalServerError, "Failed to generate token", nil)
	}

	return commonModels.Respond(c, http.StatusOK, "Login successful", echo.Map{
		"username":   acc.Username,
		"role":       acc.Role,
		"token":      token,
		"expires_at": exp,
	})
}
