package controllers

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/c14220110/poliklinik-dashboard/internal/common/middlewares"
	commonModels "github.com/c14220110/poliklinik-dashboard/internal/common/models"
	"github.com/c14220110/poliklinik-dashboard/internal/dokter/services"
	"github.com/c14220110/poliklinik-dashboard/pkg/clinicapi"
)

// respondError maps service errors to HTTP statuses. Anything not known
// here came from the clinic backend.
func respondError(c echo.Context, err error, fallback string) error {
	switch {
	case errors.Is(err, services.ErrNoPatientsWaiting),
		errors.Is(err, services.ErrNoCurrentPatient),
		errors.Is(err, services.ErrNoOpenConsultation):
		return commonModels.Respond(c, http.StatusNotFound, err.Error(), nil)
	case errors.Is(err, services.ErrCallNextDisabled),
		errors.Is(err, services.ErrRepeatInProgress),
		errors.Is(err, services.ErrAlreadyCompleted):
		return commonModels.Respond(c, http.StatusConflict, err.Error(), nil)
	case errors.Is(err, services.ErrRowOutOfRange),
		errors.Is(err, services.ErrInvalidDraft):
		return commonModels.Respond(c, http.StatusBadRequest, err.Error(), nil)
	case errors.Is(err, context.Canceled):
		return commonModels.Respond(c, http.StatusRequestTimeout, "Request cancelled", nil)
	}
	return commonModels.Respond(c, http.StatusBadGateway, clinicapi.ErrorMessage(err, fallback), nil)
}

// requestContext carries the logged-in username into the call history.
func requestContext(c echo.Context) context.Context {
	ctx := c.Request().Context()
	if claims := middlewares.ClaimsFrom(c); claims != nil {
		ctx = services.WithActor(ctx, claims.Username)
	}
	return ctx
}

func paramInt64(c echo.Context, name string) (int64, error) {
	return strconv.ParseInt(c.Param(name), 10, 64)
}
