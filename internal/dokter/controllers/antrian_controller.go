package controllers

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	commonModels "github.com/c14220110/poliklinik-dashboard/internal/common/models"
	"github.com/c14220110/poliklinik-dashboard/internal/dokter/services"
)

type AntrianController struct {
	Service *services.QueueService
}

func NewAntrianController(service *services.QueueService) *AntrianController {
	return &AntrianController{Service: service}
}

// GetDashboard mengembalikan state layar dokter saat ini.
func (ac *AntrianController) GetDashboard(c echo.Context) error {
	return commonModels.Respond(c, http.StatusOK, "Dashboard retrieved successfully", ac.Service.Store().Snapshot())
}

// RefreshDashboard reloads the queue and the stats. Partial failures still
// answer with the state as it stands.
func (ac *AntrianController) RefreshDashboard(c echo.Context) error {
	if err := ac.Service.Refresh(requestContext(c)); err != nil {
		return commonModels.Respond(c, http.StatusBadGateway, "Failed to refresh dashboard: "+err.Error(), ac.Service.Store().Snapshot())
	}
	return commonModels.Respond(c, http.StatusOK, "Dashboard refreshed successfully", ac.Service.Store().Snapshot())
}

func (ac *AntrianController) CallNext(c echo.Context) error {
	entry, err := ac.Service.CallNext(requestContext(c))
	if err != nil {
		return respondError(c, err, "Failed to call the next patient. Please try again.")
	}
	return commonModels.Respond(c, http.StatusOK, "Next patient called: (Queue No: "+entry.QueueNumber+")", entry)
}

func (ac *AntrianController) RepeatCall(c echo.Context) error {
	entry, err := ac.Service.RepeatCall(requestContext(c))
	if err != nil {
		return respondError(c, err, "Failed to repeat the call")
	}
	return commonModels.Respond(c, http.StatusOK, "Repeated call for patient: (Queue No: "+entry.QueueNumber+")", entry)
}

func (ac *AntrianController) TimeIn(c echo.Context) error {
	id, err := paramInt64(c, "id")
	if err != nil {
		return commonModels.Respond(c, http.StatusBadRequest, "id must be a number", nil)
	}
	if err := ac.Service.TimeIn(requestContext(c), id); err != nil {
		return respondError(c, err, "Failed to update Time In. Please try again.")
	}
	return commonModels.Respond(c, http.StatusOK, "Time In recorded successfully!", ac.Service.Store().Snapshot())
}

func (ac *AntrianController) TimeOut(c echo.Context) error {
	id, err := paramInt64(c, "id")
	if err != nil {
		return commonModels.Respond(c, http.StatusBadRequest, "id must be a number", nil)
	}
	if err := ac.Service.TimeOut(requestContext(c), id); err != nil {
		return respondError(c, err, "Failed to update Time Out. Please try again.")
	}
	return commonModels.Respond(c, http.StatusOK, "Time Out recorded successfully!", ac.Service.Store().Snapshot())
}

func (ac *AntrianController) Complete(c echo.Context) error {
	id, err := paramInt64(c, "id")
	if err != nil {
		return commonModels.Respond(c, http.StatusBadRequest, "id must be a number", nil)
	}
	if err := ac.Service.Complete(requestContext(c), id); err != nil {
		return respondError(c, err, "Failed to update complete. Please try again.")
	}
	return commonModels.Respond(c, http.StatusOK, "Patient marked as completed", ac.Service.Store().Snapshot())
}

// GetCallHistory mengembalikan riwayat panggilan terbaru (?limit=, default 50).
func (ac *AntrianController) GetCallHistory(c echo.Context) error {
	limit := 50
	if s := c.QueryParam("limit"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil {
			return commonModels.Respond(c, http.StatusBadRequest, "limit must be a number", nil)
		}
		limit = n
	}
	list, err := ac.Service.CallHistory(c.Request().Context(), limit)
	if err != nil {
		return commonModels.Respond(c, http.StatusInternalServerError, "Failed to retrieve call history: "+err.Error(), nil)
	}
	return commonModels.Respond(c, http.StatusOK, "Call history retrieved successfully", list)
}
