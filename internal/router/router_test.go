package router

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yukikurage/stepflow-api/internal/auth"
	"github.com/yukikurage/stepflow-api/internal/config"
	"github.com/yukikurage/stepflow-api/internal/database"
	"github.com/yukikurage/stepflow-api/internal/dto"
	applog "github.com/yukikurage/stepflow-api/internal/logger"
	"github.com/yukikurage/stepflow-api/internal/metrics"
	"github.com/yukikurage/stepflow-api/internal/middleware"
	"github.com/yukikurage/stepflow-api/internal/repository"
	"github.com/yukikurage/stepflow-api/internal/services"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type apiEnv struct {
	router *gin.Engine
	tokens *auth.TokenManager
}

func setupAPI(t *testing.T) apiEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() {
		sqlDB.Close()
	})
	require.NoError(t, database.Migrate(db))

	store := repository.NewStore(db)
	access := services.NewAccessControl(false)
	tokens := auth.NewTokenManager(config.JWTConfig{Secret: "test-secret", Issuer: "stepflow", TTL: time.Hour})

	router := New(Deps{
		Log:           applog.NewNop(),
		Metrics:       metrics.New(),
		Sessions:      cookie.NewStore([]byte("session-secret")),
		Tokens:        tokens,
		InviteLimiter: middleware.NewIPRateLimiter(0.01, 5),
		Projects:      services.NewProjectService(store, access),
		Steps:         services.NewStepService(store, access, nil),
		Subtasks:      services.NewSubtaskService(store, access),
		Invitations:   services.NewInvitationService(store, access, nil, 0),
		Notes:         services.NewNoteService(store, access),
		Users:         services.NewUserService(store),
	})

	return apiEnv{router: router, tokens: tokens}
}

// request sends body as JSON. A non-empty userID is sent as a bearer token.
func (e apiEnv) request(t *testing.T, method, path, userID string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if userID != "" {
		token, err := e.tokens.Issue(userID, strings.ToUpper(userID), "")
		require.NoError(t, err)
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), w.Body.String())
	return out
}

func (e apiEnv) createProject(t *testing.T, ownerID string, stepTitles ...string) (dto.ProjectDTO, []dto.StepDTO) {
	t.Helper()

	w := e.request(t, http.MethodPost, "/api/projects", ownerID, map[string]string{"name": "Launch"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	project := decode[dto.ProjectDTO](t, w)

	steps := make([]dto.StepDTO, 0, len(stepTitles))
	for _, title := range stepTitles {
		w := e.request(t, http.MethodPost, "/api/projects/"+project.ID+"/steps", ownerID, map[string]string{"title": title})
		require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
		steps = append(steps, decode[dto.StepDTO](t, w))
	}
	return project, steps
}

func TestHealth(t *testing.T) {
	env := setupAPI(t)

	w := env.request(t, http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"status":"ok"`)
}

func TestStepWorkflow(t *testing.T) {
	env := setupAPI(t)
	project, steps := env.createProject(t, "owner", "Plan", "Build")

	assert.True(t, steps[0].IsUnlocked)
	assert.False(t, steps[1].IsUnlocked)

	w := env.request(t, http.MethodGet, "/api/projects", "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = env.request(t, http.MethodPost, "/api/steps/"+steps[1].ID+"/toggle", "owner", nil)
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Contains(t, w.Body.String(), "STEP_LOCKED")

	w = env.request(t, http.MethodPost, "/api/steps/"+steps[0].ID+"/toggle", "owner", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.True(t, decode[dto.StepDTO](t, w).IsCompleted)

	w = env.request(t, http.MethodGet, "/api/projects/"+project.ID, "owner", nil)
	require.Equal(t, http.StatusOK, w.Code)
	view := decode[dto.ProjectViewDTO](t, w)
	assert.Equal(t, services.RoleOwner, view.Role)
	assert.Equal(t, 50.0, view.Progress)
	assert.Equal(t, 1, view.CompletedSteps)
	require.Len(t, view.Steps, 2)
	assert.True(t, view.Steps[1].IsUnlocked)

	w = env.request(t, http.MethodPost, "/api/steps/"+steps[1].ID+"/subtasks", "owner", map[string]string{"title": "API"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w = env.request(t, http.MethodGet, "/api/subtasks?step_id="+steps[1].ID+"&step_id=unknown", "owner", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode[map[string][]dto.SubtaskDTO](t, w)["subtasks"], 1)

	w = env.request(t, http.MethodPost, "/api/projects/"+project.ID+"/steps", "owner", map[string]string{"title": strings.Repeat("x", 256)})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "INVALID_INPUT")
	assert.Contains(t, w.Body.String(), `"title"`)

	w = env.request(t, http.MethodDelete, "/api/steps/"+steps[0].ID, "owner", nil)
	require.Equal(t, http.StatusOK, w.Code)

	w = env.request(t, http.MethodGet, "/api/projects/"+project.ID+"/steps", "owner", nil)
	remaining := decode[map[string][]dto.StepDTO](t, w)["steps"]
	require.Len(t, remaining, 1)
	assert.Equal(t, 0, remaining[0].Order)
	assert.True(t, remaining[0].IsUnlocked)
}

func TestProjectVisibility(t *testing.T) {
	env := setupAPI(t)
	project, _ := env.createProject(t, "owner", "Plan")

	w := env.request(t, http.MethodGet, "/api/projects/"+project.ID, "stranger", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = env.request(t, http.MethodGet, "/api/projects/"+project.ID+"/steps", "stranger", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, decode[map[string][]dto.StepDTO](t, w)["steps"])

	w = env.request(t, http.MethodDelete, "/api/projects/"+project.ID, "stranger", nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = env.request(t, http.MethodDelete, "/api/projects/"+project.ID, "owner", nil)
	require.Equal(t, http.StatusOK, w.Code)

	w = env.request(t, http.MethodGet, "/api/projects/"+project.ID, "owner", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestInvitationFlow(t *testing.T) {
	env := setupAPI(t)
	project, _ := env.createProject(t, "owner", "Plan")

	w := env.request(t, http.MethodPost, "/api/projects/"+project.ID+"/invitations", "owner", map[string]string{"permission": "view"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	invitation := decode[dto.InvitationDTO](t, w)
	assert.Len(t, invitation.Token, 43)

	w = env.request(t, http.MethodGet, "/api/invitations/"+invitation.Token, "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	details := decode[dto.InvitationDetailsDTO](t, w)
	assert.Equal(t, "pending", details.Status)
	require.NotNil(t, details.Project)
	assert.Equal(t, "Launch", details.Project.Name)

	w = env.request(t, http.MethodGet, "/api/invitations/unknown-token", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "invalid", decode[dto.InvitationDetailsDTO](t, w).Status)

	w = env.request(t, http.MethodPost, "/api/invitations/"+invitation.Token+"/accept", "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = env.request(t, http.MethodPost, "/api/invitations/"+invitation.Token+"/accept", "guest", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Contains(t, w.Body.String(), project.ID)

	w = env.request(t, http.MethodPost, "/api/invitations/"+invitation.Token+"/accept", "other", nil)
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Contains(t, w.Body.String(), "INVITATION_NOT_ACCEPTABLE")

	w = env.request(t, http.MethodGet, "/api/projects/"+project.ID, "guest", nil)
	require.Equal(t, http.StatusOK, w.Code)
	view := decode[dto.ProjectViewDTO](t, w)
	assert.Equal(t, services.RoleMember, view.Role)
	assert.Equal(t, "view", string(view.Permission))

	w = env.request(t, http.MethodGet, "/api/projects/"+project.ID+"/members", "owner", nil)
	require.Equal(t, http.StatusOK, w.Code)
	members := decode[map[string][]dto.MemberDTO](t, w)["members"]
	require.Len(t, members, 1)
	assert.Equal(t, "guest", members[0].UserID)
}

func TestInvitationLookupIsRateLimited(t *testing.T) {
	env := setupAPI(t)

	var last int
	for i := 0; i < 6; i++ {
		last = env.request(t, http.MethodGet, "/api/invitations/anything", "", nil).Code
	}
	assert.Equal(t, http.StatusTooManyRequests, last)
}

func TestSessionLogin(t *testing.T) {
	env := setupAPI(t)

	w := env.request(t, http.MethodPost, "/api/auth/login", "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = env.request(t, http.MethodPost, "/api/auth/login", "ada", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "ADA", decode[dto.UserDTO](t, w).Name)

	cookies := w.Result().Cookies()
	require.NotEmpty(t, cookies)

	req := httptest.NewRequest(http.MethodGet, "/api/auth/me", nil)
	for _, c := range cookies {
		req.AddCookie(c)
	}
	w = httptest.NewRecorder()
	env.router.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "ada", decode[dto.UserDTO](t, w).ID)
}

func TestMetricsExposeWorkflowEvents(t *testing.T) {
	env := setupAPI(t)
	_, steps := env.createProject(t, "owner", "Plan")

	w := env.request(t, http.MethodPost, "/api/steps/"+steps[0].ID+"/toggle", "owner", nil)
	require.Equal(t, http.StatusOK, w.Code)

	w = env.request(t, http.MethodGet, "/metrics", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `workflow_events_total{event="step_completed"} 1`)
	assert.Contains(t, w.Body.String(), `http_requests_total{method="POST",path="/api/steps/:id/toggle",status="200"} 1`)
}
