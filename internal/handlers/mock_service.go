package handlers

import (
	"context"
	"net/http"
	"time"

	"motion_security/internal/models"
	"motion_security/internal/service"

	"github.com/gin-gonic/gin"
)

// ---- Service Mocks ----

type mockAuth struct {
	signUpID      int
	signUpErr     error
	genTokenToken string
	genTokenErr   error
	parseID       int
	parseErr      error

	lastSignUpUsername string
	lastSignUpPassword string
	lastGenUsername    string
	lastGenPassword    string
	lastParseToken     string
}

func (m *mockAuth) SignUp(ctx context.Context, username, password string) (int, error) {
	m.lastSignUpUsername = username
	m.lastSignUpPassword = password
	return m.signUpID, m.signUpErr
}
func (m *mockAuth) GenerateToken(ctx context.Context, username, password string) (string, error) {
	m.lastGenUsername = username
	m.lastGenPassword = password
	return m.genTokenToken, m.genTokenErr
}
func (m *mockAuth) ParseToken(token string) (int, error) {
	m.lastParseToken = token
	return m.parseID, m.parseErr
}

type mockSecurity struct {
	mode         service.OperationMode
	setModeErr   error
	triggerErr   error
	lastSetMode  service.ModeParams
	setModeCalls int
	triggered    int
}

func (m *mockSecurity) TriggerMotion(ctx context.Context) error {
	m.triggered++
	return m.triggerErr
}
func (m *mockSecurity) SetMode(ctx context.Context, p service.ModeParams) error {
	m.setModeCalls++
	m.lastSetMode = p
	if m.setModeErr != nil {
		return m.setModeErr
	}
	mode, err := service.ParseMode(p.Mode)
	if err != nil {
		return err
	}
	m.mode = mode
	return nil
}
func (m *mockSecurity) CurrentMode() service.OperationMode { return m.mode }

type mockIdentities struct {
	ids       []models.RegisteredIdentity
	reloadN   int
	reloadErr error
	reloads   int
}

func (m *mockIdentities) List(ctx context.Context) []models.RegisteredIdentity { return m.ids }
func (m *mockIdentities) Reload(ctx context.Context) (int, error) {
	m.reloads++
	return m.reloadN, m.reloadErr
}

type mockMonitoring struct {
	state models.SecurityState
	err   error
}

func (m *mockMonitoring) GetState(ctx context.Context) (models.SecurityState, error) {
	return m.state, m.err
}

type mockEventLog struct {
	resp     []models.SecurityEvent
	err      error
	lastFrom time.Time
	lastTo   time.Time
	lastType string
}

func (m *mockEventLog) List(ctx context.Context, f service.LogFilter) ([]models.SecurityEvent, error) {
	m.lastFrom = f.From
	m.lastTo = f.To
	m.lastType = f.Type
	return m.resp, m.err
}

// ---- Shared Test Helpers ----

func newTestRouter(s *service.Service) *gin.Engine {
	h := NewHandler(s, nil)
	gin.SetMode(gin.TestMode)
	return h.InitRoutes()
}

func authHeader(token string) http.Header {
	h := http.Header{}
	if token != "" {
		h.Set("Authorization", "Bearer "+token)
	}
	return h
}

func withAuth(req *http.Request) *http.Request {
	for k, vv := range authHeader("valid") {
		for _, v := range vv {
			req.Header.Add(k, v)
		}
	}
	return req
}
