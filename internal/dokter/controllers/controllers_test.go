package controllers

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/c14220110/poliklinik-dashboard/internal/announcement"
	"github.com/c14220110/poliklinik-dashboard/internal/dokter/services"
	"github.com/c14220110/poliklinik-dashboard/pkg/clinicapi"
	"github.com/c14220110/poliklinik-dashboard/pkg/utils"
)

type silentAnnouncer struct{ numbers []string }

func (a *silentAnnouncer) Announce(ctx context.Context, n string) (announcement.Announcement, error) {
	a.numbers = append(a.numbers, n)
	return announcement.Announcement{QueueNumber: n}, nil
}

type envelope struct {
	Status  int             `json:"status"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) envelope {
	t.Helper()
	var env envelope
	if err := json.Unmarshal(rec.Body.Bytes(), &env); err != nil {
		t.Fatalf("decode %q: %v", rec.Body.String(), err)
	}
	return env
}

type fixture struct {
	e          *echo.Echo
	antrian    *AntrianController
	konsultasi *KonsultasiController
	announcer  *silentAnnouncer
}

func newFixture(t *testing.T, backend http.HandlerFunc) *fixture {
	t.Helper()
	srv := httptest.NewServer(backend)
	t.Cleanup(srv.Close)

	api := clinicapi.NewClient(srv.URL, 5*time.Second)
	store := services.NewDashboardStore()
	ann := &silentAnnouncer{}
	queue := services.NewQueueService(api, ann, store, nil, services.QueueOptions{}, zerolog.Nop())
	consult := services.NewConsultationService(api, store, nil, 100, zerolog.Nop())

	e := echo.New()
	e.Validator = utils.NewValidator()
	return &fixture{
		e:          e,
		antrian:    NewAntrianController(queue),
		konsultasi: NewKonsultasiController(consult, queue),
		announcer:  ann,
	}
}

func (f *fixture) call(h echo.HandlerFunc, method, target, body string, params ...string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := f.e.NewContext(req, rec)
	var names, values []string
	for i := 0; i+1 < len(params); i += 2 {
		names = append(names, params[i])
		values = append(values, params[i+1])
	}
	if len(names) > 0 {
		c.SetParamNames(names...)
		c.SetParamValues(values...)
	}
	if err := h(c); err != nil {
		f.e.HTTPErrorHandler(err, c)
	}
	return rec
}

func TestLoginDokter(t *testing.T) {
	hash, _ := bcrypt.GenerateFromPassword([]byte("pw"), bcrypt.MinCost)
	dc := NewDokterController(services.NewDokterService("dr.lim", string(hash)), utils.NewJWTManager("secret", time.Hour))
	f := newFixture(t, func(w http.ResponseWriter, r *http.Request) {})

	rec := f.call(dc.LoginDokter, http.MethodPost, "/api/dokter/login", `{"username":"dr.lim","password":"pw"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var data struct {
		Token string `json:"token"`
		Role  string `json:"role"`
	}
	json.Unmarshal(decode(t, rec).Data, &data)
	if data.Token == "" || data.Role != utils.RoleDokter {
		t.Errorf("unexpected login data: %+v", data)
	}

	if rec := f.call(dc.LoginDokter, http.MethodPost, "/", `{"username":"dr.lim","password":"nope"}`); rec.Code != http.StatusUnauthorized {
		t.Errorf("wrong password: expected 401, got %d", rec.Code)
	}
	if rec := f.call(dc.LoginDokter, http.MethodPost, "/", `{"username":"dr.lim"}`); rec.Code != http.StatusBadRequest {
		t.Errorf("missing password: expected 400, got %d", rec.Code)
	}
}

func TestCallNext_EmptyQueueIs404(t *testing.T) {
	f := newFixture(t, func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, `{"success":false}`)
	})

	rec := f.call(f.antrian.CallNext, http.MethodPost, "/api/dokter/antrian/next", "")
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
	if len(f.announcer.numbers) != 0 {
		t.Errorf("nothing should be announced, got %v", f.announcer.numbers)
	}
}

func TestCallNext_Success(t *testing.T) {
	f := newFixture(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/patients/next":
			io.WriteString(w, `{"success":true,"data":[{"id":7,"queue_number":7,"employee":{"name":"Siti"},"status":"Waiting"}]}`)
		case "/patientlist":
			io.WriteString(w, `[{"id":7,"queue_number":7,"status":"InProgress"}]`)
		default:
			http.NotFound(w, r)
		}
	})

	rec := f.call(f.antrian.CallNext, http.MethodPost, "/api/dokter/antrian/next", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if env := decode(t, rec); env.Message != "Next patient called: (Queue No: 7)" {
		t.Errorf("unexpected message %q", env.Message)
	}
	if len(f.announcer.numbers) != 1 || f.announcer.numbers[0] != "7" {
		t.Errorf("expected 7 to be announced, got %v", f.announcer.numbers)
	}
}

func TestTimeIn_BackendMessageSurfaced(t *testing.T) {
	f := newFixture(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
		io.WriteString(w, `{"error":"Patient has not been called yet"}`)
	})

	rec := f.call(f.antrian.TimeIn, http.MethodPut, "/", "", "id", "3")
	if rec.Code != http.StatusBadGateway {
		t.Fatalf("expected 502, got %d", rec.Code)
	}
	if env := decode(t, rec); env.Message != "Patient has not been called yet" {
		t.Errorf("unexpected message %q", env.Message)
	}

	if rec := f.call(f.antrian.TimeIn, http.MethodPut, "/", "", "id", "abc"); rec.Code != http.StatusBadRequest {
		t.Errorf("bad id: expected 400, got %d", rec.Code)
	}
}

func TestRepeatCall_NoCurrentPatient(t *testing.T) {
	f := newFixture(t, func(w http.ResponseWriter, r *http.Request) {})
	if rec := f.call(f.antrian.RepeatCall, http.MethodPost, "/", ""); rec.Code != http.StatusNotFound {
		t.Errorf("expected 404, got %d", rec.Code)
	}
}

func TestKonsultasi_Flow(t *testing.T) {
	var saved clinicapi.ConsultationRequest
	f := newFixture(t, func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.Method == http.MethodPut && r.URL.Path == "/queue/5":
			json.NewDecoder(r.Body).Decode(&saved)
			io.WriteString(w, `{"message":"ok"}`)
		case r.URL.Path == "/diagnosis-suggestions":
			io.WriteString(w, `["Fever"]`)
		default:
			http.NotFound(w, r)
		}
	})
	kc := f.konsultasi

	if rec := f.call(kc.Save, http.MethodPost, "/", ""); rec.Code != http.StatusNotFound {
		t.Fatalf("save without form: expected 404, got %d", rec.Code)
	}
	if rec := f.call(kc.Open, http.MethodPost, "/", `{"patient_name":"Siti"}`, "id", "5"); rec.Code != http.StatusOK {
		t.Fatalf("open: %d", rec.Code)
	}
	rec := f.call(kc.TypeDiagnosis, http.MethodPut, "/", `{"name":"fe"}`, "row", "0")
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), `"diagnosis_suggestions":["Fever"]`) {
		t.Fatalf("type diagnosis: %d %s", rec.Code, rec.Body.String())
	}
	f.call(kc.SelectDiagnosis, http.MethodPut, "/", `{"name":"Fever"}`, "row", "0")
	f.call(kc.EditMedicine, http.MethodPut, "/", `{"dosage":"2x1"}`, "row", "0")
	if rec := f.call(kc.SetMC, http.MethodPut, "/", `{"mc_issued":true,"mc_start":"2024-06-01","mc_end":"2024-06-02"}`); rec.Code != http.StatusOK {
		t.Fatalf("set mc: %d", rec.Code)
	}
	if rec := f.call(kc.RemoveDiagnosis, http.MethodDelete, "/", "", "row", "9"); rec.Code != http.StatusBadRequest {
		t.Errorf("remove out of range: expected 400, got %d", rec.Code)
	}

	if rec := f.call(kc.Save, http.MethodPost, "/", ""); rec.Code != http.StatusOK {
		t.Fatalf("save: %d %s", rec.Code, rec.Body.String())
	}
	if saved.ConsultationDetails != `["Fever"]` || saved.PrescribedMedicine != "[]" || saved.MCIssued != 1 {
		t.Errorf("unexpected saved body: %+v", saved)
	}
	if rec := f.call(kc.Get, http.MethodGet, "/", ""); rec.Code != http.StatusNotFound {
		t.Errorf("form must be closed after save, got %d", rec.Code)
	}
}

func TestKonsultasi_SetMCOnClosedForm(t *testing.T) {
	f := newFixture(t, func(w http.ResponseWriter, r *http.Request) {})
	kc := f.konsultasi

	rec := f.call(kc.SetMC, http.MethodPut, "/", `{"mc_issued":true,"mc_amount":"10"}`)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404 without an open form, got %d", rec.Code)
	}

	f.call(kc.Open, http.MethodPost, "/", `{"patient_name":"Siti"}`, "id", "5")
	f.call(kc.Close, http.MethodDelete, "/", "")
	if rec := f.call(kc.SetMC, http.MethodPut, "/", `{"mc_start":"2024-06-01"}`); rec.Code != http.StatusNotFound {
		t.Errorf("expected 404 after close, got %d", rec.Code)
	}
}
