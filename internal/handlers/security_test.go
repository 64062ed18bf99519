package handlers

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"motion_security/internal/models"
	"motion_security/internal/service"
)

func TestSecurityHandlers_StateModeMotion(t *testing.T) {
	mon := &mockMonitoring{state: models.SecurityState{
		DashboardState: models.DashboardState{ID: 1, Power: false, Color: "none", Mode: "auto"},
		Running:        true,
		MotionCount:    4,
	}}
	sec := &mockSecurity{}
	s := &service.Service{
		Authorization: &mockAuth{parseID: 7},
		Monitoring:    mon,
		Security:      sec,
	}
	r := newTestRouter(s)

	// state requires auth
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/security/state", nil))
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without auth, got %d", w.Code)
	}

	w = httptest.NewRecorder()
	r.ServeHTTP(w, withAuth(httptest.NewRequest(http.MethodGet, "/api/v1/security/state", nil)))
	if w.Code != http.StatusOK {
		t.Fatalf("state status=%d, body=%s", w.Code, w.Body.String())
	}
	var st models.SecurityState
	if err := json.Unmarshal(w.Body.Bytes(), &st); err != nil {
		t.Fatalf("unmarshal state: %v", err)
	}
	if st.Mode != "auto" || st.MotionCount != 4 || !st.Running {
		t.Fatalf("unexpected state: %+v", st)
	}

	// mode switch
	req := withAuth(httptest.NewRequest(http.MethodPost, "/api/v1/security/mode", bytes.NewBufferString(`{"mode":"manual"}`)))
	req.Header.Set("Content-Type", "application/json")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("mode status=%d, body=%s", w.Code, w.Body.String())
	}
	if sec.setModeCalls != 1 || sec.lastSetMode.Mode != "manual" {
		t.Fatalf("wrong SetMode call: %d %+v", sec.setModeCalls, sec.lastSetMode)
	}
	var modeResp struct {
		Status string               `json:"status"`
		Mode   string               `json:"mode"`
		State  models.SecurityState `json:"state"`
	}
	_ = json.Unmarshal(w.Body.Bytes(), &modeResp)
	if modeResp.Status != statusModeSet || modeResp.Mode != "manual" || modeResp.State.ID != 1 {
		t.Fatalf("bad mode response: %+v", modeResp)
	}

	// motion
	w = httptest.NewRecorder()
	r.ServeHTTP(w, withAuth(httptest.NewRequest(http.MethodPost, "/api/v1/security/motion", nil)))
	if w.Code != http.StatusAccepted {
		t.Fatalf("motion status=%d, body=%s", w.Code, w.Body.String())
	}
	if sec.triggered != 1 {
		t.Fatalf("expected one trigger, got %d", sec.triggered)
	}
}

func TestSecurityHandlers_ModeValidation(t *testing.T) {
	s := &service.Service{
		Authorization: &mockAuth{parseID: 1},
		Monitoring:    &mockMonitoring{},
		Security:      &mockSecurity{},
	}
	r := newTestRouter(s)

	cases := []struct {
		name string
		body string
		code int
	}{
		{"missing mode", `{}`, http.StatusBadRequest},
		{"unknown mode", `{"mode":"party"}`, http.StatusBadRequest},
		{"not json", `mode=auto`, http.StatusBadRequest},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := withAuth(httptest.NewRequest(http.MethodPost, "/api/v1/security/mode", bytes.NewBufferString(tc.body)))
			req.Header.Set("Content-Type", "application/json")
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)
			if w.Code != tc.code {
				t.Fatalf("status=%d want %d, body=%s", w.Code, tc.code, w.Body.String())
			}
		})
	}
}

func TestSecurityHandlers_MotionWhenStopped(t *testing.T) {
	s := &service.Service{
		Authorization: &mockAuth{parseID: 1},
		Security:      &mockSecurity{triggerErr: service.ErrStopped},
	}
	r := newTestRouter(s)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, withAuth(httptest.NewRequest(http.MethodPost, "/api/v1/security/motion", nil)))
	if w.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503, got %d", w.Code)
	}
}

func TestSecurityHandlers_StateError(t *testing.T) {
	s := &service.Service{
		Authorization: &mockAuth{parseID: 1},
		Monitoring:    &mockMonitoring{err: errors.New("db locked")},
	}
	r := newTestRouter(s)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, withAuth(httptest.NewRequest(http.MethodGet, "/api/v1/security/state", nil)))
	if w.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", w.Code)
	}
}

func TestIdentityHandlers(t *testing.T) {
	ids := &mockIdentities{
		ids:     []models.RegisteredIdentity{{Name: "alice", PreferredColor: "blue"}},
		reloadN: 2,
	}
	s := &service.Service{Authorization: &mockAuth{parseID: 1}, Identities: ids}
	r := newTestRouter(s)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, withAuth(httptest.NewRequest(http.MethodGet, "/api/v1/identities", nil)))
	if w.Code != http.StatusOK {
		t.Fatalf("list status=%d, body=%s", w.Code, w.Body.String())
	}
	var list struct {
		Count      int                         `json:"count"`
		Identities []models.RegisteredIdentity `json:"identities"`
	}
	_ = json.Unmarshal(w.Body.Bytes(), &list)
	if list.Count != 1 || list.Identities[0].Name != "alice" || list.Identities[0].PreferredColor != "blue" {
		t.Fatalf("unexpected list: %+v", list)
	}

	w = httptest.NewRecorder()
	r.ServeHTTP(w, withAuth(httptest.NewRequest(http.MethodPost, "/api/v1/identities/reload", nil)))
	if w.Code != http.StatusOK {
		t.Fatalf("reload status=%d", w.Code)
	}
	var rel map[string]any
	_ = json.Unmarshal(w.Body.Bytes(), &rel)
	if rel["status"] != statusReloaded || rel["count"].(float64) != 2 {
		t.Fatalf("unexpected reload response: %v", rel)
	}

	ids.reloadErr = errors.New("sidecar down")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, withAuth(httptest.NewRequest(http.MethodPost, "/api/v1/identities/reload", nil)))
	if w.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500 on reload failure, got %d", w.Code)
	}
}

func TestHealth(t *testing.T) {
	r := newTestRouter(&service.Service{})
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("health status=%d", w.Code)
	}
}
