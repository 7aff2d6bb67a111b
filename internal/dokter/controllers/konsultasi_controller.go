package controllers

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	commonModels "github.com/c14220110/poliklinik-dashboard/internal/common/models"
	"github.com/c14220110/poliklinik-dashboard/internal/dokter/models"
	"github.com/c14220110/poliklinik-dashboard/internal/dokter/services"
)

type KonsultasiController struct {
	Service *services.ConsultationService
	Queue   *services.QueueService
}

func NewKonsultasiController(service *services.ConsultationService, queue *services.QueueService) *KonsultasiController {
	return &KonsultasiController{Service: service, Queue: queue}
}

type openKonsultasiRequest struct {
	PatientName string `json:"patient_name"`
}

type rowRequest struct {
	Name   *string `json:"name"`
	Dosage *string `json:"dosage"`
}

type notesRequest struct {
	Notes string `json:"notes"`
}

type mcRequest struct {
	Issued *bool   `json:"mc_issued"`
	Start  *string `json:"mc_start"`
	End    *string `json:"mc_end"`
	Amount *string `json:"mc_amount"`
}

// Open membuka form konsultasi kosong untuk entri antrian :id.
func (kc *KonsultasiController) Open(c echo.Context) error {
	id, err := paramInt64(c, "id")
	if err != nil {
		return commonModels.Respond(c, http.StatusBadRequest, "id must be a number", nil)
	}
	var req openKonsultasiRequest
	if err := c.Bind(&req); err != nil {
		return commonModels.Respond(c, http.StatusBadRequest, "Invalid request payload: "+err.Error(), nil)
	}
	name := req.PatientName
	if name == "" {
		name = models.NotAvailable
		for _, e := range kc.Queue.Store().Snapshot().Entries {
			if e.ID == id {
				name = e.PatientName
				break
			}
		}
	}
	return commonModels.Respond(c, http.StatusOK, "Consultation opened", kc.Service.OpenFor(id, name))
}

func (kc *KonsultasiController) Close(c echo.Context) error {
	kc.Service.Close()
	return commonModels.Respond(c, http.StatusOK, "Consultation closed", nil)
}

func (kc *KonsultasiController) Get(c echo.Context) error {
	return kc.draft(c)(kc.Service.Draft())
}

// Replace menimpa seluruh isi form sekaligus.
func (kc *KonsultasiController) Replace(c echo.Context) error {
	var req models.ConsultationDraft
	if err := c.Bind(&req); err != nil {
		return commonModels.Respond(c, http.StatusBadRequest, "Invalid request payload: "+err.Error(), nil)
	}
	return kc.draft(c)(kc.Service.Replace(req))
}

func (kc *KonsultasiController) AddDiagnosis(c echo.Context) error {
	return kc.draft(c)(kc.Service.AddDiagnosis())
}

func (kc *KonsultasiController) RemoveDiagnosis(c echo.Context) error {
	row, err := strconv.Atoi(c.Param("row"))
	if err != nil {
		return commonModels.Respond(c, http.StatusBadRequest, "row must be a number", nil)
	}
	return kc.draft(c)(kc.Service.RemoveDiagnosis(row))
}

// TypeDiagnosis sets the row and refreshes the diagnosis suggestions.
func (kc *KonsultasiController) TypeDiagnosis(c echo.Context) error {
	row, req, done, err := kc.bindRow(c)
	if done {
		return err
	}
	if req.Name == nil {
		return commonModels.Respond(c, http.StatusBadRequest, "name is required", nil)
	}
	return kc.draft(c)(kc.Service.TypeDiagnosis(c.Request().Context(), row, *req.Name))
}

func (kc *KonsultasiController) SelectDiagnosis(c echo.Context) error {
	row, req, done, err := kc.bindRow(c)
	if done {
		return err
	}
	if req.Name == nil {
		return commonModels.Respond(c, http.StatusBadRequest, "name is required", nil)
	}
	return kc.draft(c)(kc.Service.SelectDiagnosisSuggestion(row, *req.Name))
}

func (kc *KonsultasiController) AddMedicine(c echo.Context) error {
	return kc.draft(c)(kc.Service.AddMedicine())
}

func (kc *KonsultasiController) RemoveMedicine(c echo.Context) error {
	row, err := strconv.Atoi(c.Param("row"))
	if err != nil {
		return commonModels.Respond(c, http.StatusBadRequest, "row must be a number", nil)
	}
	return kc.draft(c)(kc.Service.RemoveMedicine(row))
}

// EditMedicine updates the dosage and/or the name; a name change also
// refreshes the medicine suggestions.
func (kc *KonsultasiController) EditMedicine(c echo.Context) error {
	row, req, done, err := kc.bindRow(c)
	if done {
		return err
	}
	if req.Name == nil && req.Dosage == nil {
		return commonModels.Respond(c, http.StatusBadRequest, "name or dosage is required", nil)
	}
	if req.Dosage != nil {
		if _, err := kc.Service.SetMedicineDosage(row, *req.Dosage); err != nil {
			return respondError(c, err, "Failed to update consultation")
		}
	}
	if req.Name != nil {
		return kc.draft(c)(kc.Service.TypeMedicine(c.Request().Context(), row, *req.Name))
	}
	return kc.draft(c)(kc.Service.Draft())
}

func (kc *KonsultasiController) SelectMedicine(c echo.Context) error {
	row, req, done, err := kc.bindRow(c)
	if done {
		return err
	}
	if req.Name == nil {
		return commonModels.Respond(c, http.StatusBadRequest, "name is required", nil)
	}
	return kc.draft(c)(kc.Service.SelectMedicineSuggestion(row, *req.Name))
}

func (kc *KonsultasiController) SetNotes(c echo.Context) error {
	var req notesRequest
	if err := c.Bind(&req); err != nil {
		return commonModels.Respond(c, http.StatusBadRequest, "Invalid request payload: "+err.Error(), nil)
	}
	return kc.draft(c)(kc.Service.SetNotes(req.Notes))
}

// SetMC updates only the certificate fields present in the body.
func (kc *KonsultasiController) SetMC(c echo.Context) error {
	var req mcRequest
	if err := c.Bind(&req); err != nil {
		return commonModels.Respond(c, http.StatusBadRequest, "Invalid request payload: "+err.Error(), nil)
	}
	return kc.draft(c)(kc.Service.SetCertificate(services.CertificateChange{
		Issued: req.Issued,
		Start:  req.Start,
		End:    req.End,
		Amount: req.Amount,
	}))
}

func (kc *KonsultasiController) Save(c echo.Context) error {
	if err := kc.Service.Save(requestContext(c)); err != nil {
		return respondError(c, err, "Failed to save consultation. Please try again.")
	}
	return commonModels.Respond(c, http.StatusOK, "Consultation saved successfully!", nil)
}

// bindRow reads :row and the body. done is true when a response has
// already been written.
func (kc *KonsultasiController) bindRow(c echo.Context) (row int, req rowRequest, done bool, err error) {
	row, err = strconv.Atoi(c.Param("row"))
	if err != nil {
		return 0, req, true, commonModels.Respond(c, http.StatusBadRequest, "row must be a number", nil)
	}
	if err := c.Bind(&req); err != nil {
		return 0, req, true, commonModels.Respond(c, http.StatusBadRequest, "Invalid request payload: "+err.Error(), nil)
	}
	return row, req, false, nil
}

func (kc *KonsultasiController) draft(c echo.Context) func(*models.ConsultationDraft, error) error {
	return func(d *models.ConsultationDraft, err error) error {
		if err != nil {
			return respondError(c, err, "Failed to update consultation")
		}
		return commonModels.Respond(c, http.StatusOK, "Consultation updated", d)
	}
}
