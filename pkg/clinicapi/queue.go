package clinicapi

import (
	"context"
	"net/http"
	"net/url"
)

// ListPatients returns every queue entry of the day.
func (c *Client) ListPatients(ctx context.Context) ([]PatientRecord, error) {
	var res []PatientRecord
	if err := c.do(ctx, http.MethodGet, "/patientlist", nil, nil, &res); err != nil {
		return nil, err
	}
	return res, nil
}

// NextPatient asks the backend to call the next waiting entry.
func (c *Client) NextPatient(ctx context.Context) (*NextPatientResponse, error) {
	var res NextPatientResponse
	if err := c.do(ctx, http.MethodGet, "/patients/next", nil, nil, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

func (c *Client) TimeIn(ctx context.Context, id int64) error {
	return c.do(ctx, http.MethodPut, idPath("/patients", id)+"/timein", nil, nil, nil)
}

func (c *Client) TimeOut(ctx context.Context, id int64) error {
	return c.do(ctx, http.MethodPut, idPath("/patients", id)+"/timeout", nil, nil, nil)
}

func (c *Client) Complete(ctx context.Context, id int64) error {
	return c.do(ctx, http.MethodPut, idPath("/patients", id)+"/complete", nil, nil, nil)
}

// Dashboard fetches the aggregate counters shown above the queue.
func (c *Client) Dashboard(ctx context.Context) (*DashboardResponse, error) {
	var res DashboardResponse
	if err := c.do(ctx, http.MethodGet, "/queuedashboard", nil, nil, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

// SaveConsultation stores the whole consultation record of a queue entry.
func (c *Client) SaveConsultation(ctx context.Context, id int64, req ConsultationRequest) error {
	return c.do(ctx, http.MethodPut, idPath("/queue", id), nil, req, nil)
}

func (c *Client) DiagnosisSuggestions(ctx context.Context, query string) ([]string, error) {
	return c.suggestions(ctx, "/diagnosis-suggestions", query)
}

func (c *Client) MedicineSuggestions(ctx context.Context, query string) ([]string, error) {
	return c.suggestions(ctx, "/medicine-suggestions", query)
}

func (c *Client) suggestions(ctx context.Context, path, query string) ([]string, error) {
	res := []string{}
	if err := c.do(ctx, http.MethodGet, path, url.Values{"query": []string{query}}, nil, &res); err != nil {
		return nil, err
	}
	if res == nil {
		res = []string{}
	}
	return res, nil
}
