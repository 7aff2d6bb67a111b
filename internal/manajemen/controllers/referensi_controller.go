package controllers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	commonModels "github.com/c14220110/poliklinik-dashboard/internal/common/models"
	"github.com/c14220110/poliklinik-dashboard/internal/manajemen/models"
	"github.com/c14220110/poliklinik-dashboard/internal/manajemen/services"
	"github.com/c14220110/poliklinik-dashboard/pkg/clinicapi"
)

type ReferensiController struct {
	Service *services.ReferenceService
}

func NewReferensiController(service *services.ReferenceService) *ReferensiController {
	return &ReferensiController{Service: service}
}

// GetState mengembalikan kedua daftar beserta status loading/error.
func (rc *ReferensiController) GetState(c echo.Context) error {
	return commonModels.Respond(c, http.StatusOK, "Reference data retrieved successfully", rc.Service.State())
}

// List fetches :kind from the backend and returns it.
func (rc *ReferensiController) List(c echo.Context) error {
	kind, ok := kindParam(c)
	if !ok {
		return commonModels.Respond(c, http.StatusBadRequest, "kind must be diagnoses or medicines", nil)
	}
	if err := rc.Service.Fetch(c.Request().Context(), kind); err != nil {
		return rc.fail(c)
	}
	return commonModels.Respond(c, http.StatusOK, string(kind)+" retrieved successfully", rc.Service.State().Items(kind))
}

func (rc *ReferensiController) Add(c echo.Context) error {
	kind, ok := kindParam(c)
	if !ok {
		return commonModels.Respond(c, http.StatusBadRequest, "kind must be diagnoses or medicines", nil)
	}
	var req models.ReferenceRequest
	if err := c.Bind(&req); err != nil {
		return commonModels.Respond(c, http.StatusBadRequest, "Invalid request payload: "+err.Error(), nil)
	}
	if err := c.Validate(&req); err != nil {
		return commonModels.Respond(c, http.StatusBadRequest, "name is required", nil)
	}
	if err := rc.Service.Add(c.Request().Context(), kind, req.Name); err != nil {
		return rc.writeFailed(c, err)
	}
	return commonModels.Respond(c, http.StatusCreated, kind.Singular()+" added successfully", rc.Service.State().Items(kind))
}

func (rc *ReferensiController) Update(c echo.Context) error {
	kind, id, ok := kindAndID(c)
	if !ok {
		return commonModels.Respond(c, http.StatusBadRequest, "kind must be diagnoses or medicines and id a number", nil)
	}
	var req models.ReferenceRequest
	if err := c.Bind(&req); err != nil {
		return commonModels.Respond(c, http.StatusBadRequest, "Invalid request payload: "+err.Error(), nil)
	}
	if err := c.Validate(&req); err != nil {
		return commonModels.Respond(c, http.StatusBadRequest, "name is required", nil)
	}
	if err := rc.Service.Update(c.Request().Context(), kind, id, req.Name); err != nil {
		return rc.writeFailed(c, err)
	}
	return commonModels.Respond(c, http.StatusOK, kind.Singular()+" updated successfully", rc.Service.State().Items(kind))
}

func (rc *ReferensiController) Delete(c echo.Context) error {
	kind, id, ok := kindAndID(c)
	if !ok {
		return commonModels.Respond(c, http.StatusBadRequest, "kind must be diagnoses or medicines and id a number", nil)
	}
	if err := rc.Service.Delete(c.Request().Context(), kind, id); err != nil {
		return rc.fail(c)
	}
	return commonModels.Respond(c, http.StatusOK, kind.Singular()+" deleted successfully", rc.Service.State().Items(kind))
}

func (rc *ReferensiController) writeFailed(c echo.Context, err error) error {
	if errors.Is(err, services.ErrEmptyName) {
		return commonModels.Respond(c, http.StatusBadRequest, "name is required", nil)
	}
	return rc.fail(c)
}

// fail answers with the screen error and the lists as they were.
func (rc *ReferensiController) fail(c echo.Context) error {
	st := rc.Service.State()
	return commonModels.Respond(c, http.StatusBadGateway, st.Error, st)
}

func kindParam(c echo.Context) (clinicapi.ReferenceKind, bool) {
	kind := clinicapi.ReferenceKind(c.Param("kind"))
	return kind, kind.Valid()
}

func kindAndID(c echo.Context) (clinicapi.ReferenceKind, int64, bool) {
	kind, ok := kindParam(c)
	if !ok {
		return kind, 0, false
	}
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return kind, 0, false
	}
	return kind, id, true
}
