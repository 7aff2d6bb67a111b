package routes

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/c14220110/poliklinik-dashboard/internal/announcement"
	dokterControllers "github.com/c14220110/poliklinik-dashboard/internal/dokter/controllers"
	dokterServices "github.com/c14220110/poliklinik-dashboard/internal/dokter/services"
	manajemenControllers "github.com/c14220110/poliklinik-dashboard/internal/manajemen/controllers"
	manajemenServices "github.com/c14220110/poliklinik-dashboard/internal/manajemen/services"
	"github.com/c14220110/poliklinik-dashboard/pkg/clinicapi"
	"github.com/c14220110/poliklinik-dashboard/pkg/utils"
	"github.com/c14220110/poliklinik-dashboard/ws"
)

type noAnnouncer struct{}

func (noAnnouncer) Announce(ctx context.Context, n string) (announcement.Announcement, error) {
	return announcement.Announcement{QueueNumber: n}, nil
}

func newServer(t *testing.T) (*echo.Echo, *utils.JWTManager) {
	t.Helper()
	backend := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, `[]`)
	}))
	t.Cleanup(backend.Close)

	api := clinicapi.NewClient(backend.URL, 5*time.Second)
	jm := utils.NewJWTManager("secret", time.Hour)
	store := dokterServices.NewDashboardStore()
	queue := dokterServices.NewQueueService(api, noAnnouncer{}, store, nil, dokterServices.QueueOptions{}, zerolog.Nop())
	consult := dokterServices.NewConsultationService(api, store, nil, 100, zerolog.Nop())

	e := echo.New()
	e.Validator = utils.NewValidator()
	Init(e, jm, Handlers{
		Dokter:     dokterControllers.NewDokterController(dokterServices.NewDokterService("dr", ""), jm),
		Antrian:    dokterControllers.NewAntrianController(queue),
		Konsultasi: dokterControllers.NewKonsultasiController(consult, queue),
		Management: manajemenControllers.NewManagementController(manajemenServices.NewManagementService("admin", ""), jm),
		Referensi:  manajemenControllers.NewReferensiController(manajemenServices.NewReferenceService(api, zerolog.Nop())),
		Hub:        ws.NewHub(zerolog.Nop()),
		Upgrader:   ws.NewUpgrader(nil),
		Snapshot:   func() interface{} { return store.Snapshot() },
	})
	return e, jm
}

func TestInit_RoleGuards(t *testing.T) {
	e, jm := newServer(t)
	dokterToken, _, _ := jm.GenerateJWTToken("dr", utils.RoleDokter)
	adminToken, _, _ := jm.GenerateJWTToken("admin", utils.RoleAdmin)

	cases := []struct {
		name   string
		method string
		path   string
		token  string
		want   int
	}{
		{"dashboard without token", http.MethodGet, "/api/dokter/dashboard", "", http.StatusUnauthorized},
		{"dashboard as dokter", http.MethodGet, "/api/dokter/dashboard", dokterToken, http.StatusOK},
		{"dashboard as admin", http.MethodGet, "/api/dokter/dashboard", adminToken, http.StatusForbidden},
		{"reference read as dokter", http.MethodGet, "/api/referensi", dokterToken, http.StatusOK},
		{"reference read as admin", http.MethodGet, "/api/referensi/medicines", adminToken, http.StatusOK},
		{"reference write as dokter", http.MethodPost, "/api/referensi/medicines", dokterToken, http.StatusForbidden},
		{"konsultasi without form", http.MethodGet, "/api/dokter/konsultasi", dokterToken, http.StatusNotFound},
		{"login is public", http.MethodPost, "/api/dokter/login", "", http.StatusBadRequest},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(tc.method, tc.path, nil)
			req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
			if tc.token != "" {
				req.Header.Set(echo.HeaderAuthorization, "Bearer "+tc.token)
			}
			rec := httptest.NewRecorder()
			e.ServeHTTP(rec, req)
			if rec.Code != tc.want {
				t.Errorf("expected %d, got %d: %s", tc.want, rec.Code, rec.Body.String())
			}
		})
	}
}
