package http

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/unifyhub/core/internal/application/services"
	"github.com/unifyhub/core/internal/domain/entities"
	"github.com/unifyhub/core/internal/infrastructure/config"
	"github.com/unifyhub/core/internal/infrastructure/logger"
)

type testValidator struct {
	validator *validator.Validate
}

func (v *testValidator) Validate(i interface{}) error {
	return v.validator.Struct(i)
}

func newTestEcho() *echo.Echo {
	e := echo.New()
	e.Validator = &testValidator{validator: validator.New()}
	return e
}

// fakeTaskRepo satisfies ports.TaskRepository with canned tasks keyed by id
type fakeTaskRepo struct {
	tasks map[string]entities.Task
}

func (f *fakeTaskRepo) GetAll(ctx context.Context) ([]entities.Task, error) {
	out := make([]entities.Task, 0, len(f.tasks))
	for _, t := range f.tasks {
		out = append(out, t)
	}
	return out, nil
}

func (f *fakeTaskRepo) GetByID(ctx context.Context, id string) (*entities.Task, error) {
	if task, ok := f.tasks[id]; ok {
		return &task, nil
	}
	return nil, nil
}

func (f *fakeTaskRepo) Create(ctx context.Context, data map[string]interface{}) (*entities.Task, error) {
	return nil, nil
}

func (f *fakeTaskRepo) Update(ctx context.Context, id string, patch map[string]interface{}) (*entities.Task, error) {
	task, ok := f.tasks[id]
	if !ok {
		return nil, nil
	}
	if status, ok := patch["status"].(string); ok {
		task.Status = entities.TaskStatus(status)
	}
	f.tasks[id] = task
	return &task, nil
}

func (f *fakeTaskRepo) Delete(ctx context.Context, id string) (bool, error) {
	if _, ok := f.tasks[id]; !ok {
		return false, nil
	}
	delete(f.tasks, id)
	return true, nil
}

func taskHandlerFixture(tasks map[string]entities.Task) *TaskHandler {
	repo := &fakeTaskRepo{tasks: tasks}
	service := services.NewTaskService(repo, logger.NewNop())
	return NewTaskHandler(service, logger.NewNop())
}

func TestGetTaskNotFound(t *testing.T) {
	handler := taskHandlerFixture(map[string]entities.Task{})
	e := newTestEcho()

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("id")
	c.SetParamValues("99")

	err := handler.GetTask(c)
	require.Error(t, err)
	httpErr, ok := err.(*echo.HTTPError)
	require.True(t, ok)
	assert.Equal(t, http.StatusNotFound, httpErr.Code)
}

func TestToggleTask(t *testing.T) {
	handler := taskHandlerFixture(map[string]entities.Task{
		"5": {ID: 5, Title: "Buy milk", Status: entities.TaskStatusPending},
	})
	e := newTestEcho()

	req := httptest.NewRequest(http.MethodPost, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("id")
	c.SetParamValues("5")

	require.NoError(t, handler.ToggleTask(c))
	assert.Equal(t, http.StatusOK, rec.Code)

	var task entities.Task
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &task))
	assert.Equal(t, entities.TaskStatusCompleted, task.Status)
}

func TestDeleteTaskReportsOutcome(t *testing.T) {
	handler := taskHandlerFixture(map[string]entities.Task{
		"5": {ID: 5, Status: entities.TaskStatusPending},
	})
	e := newTestEcho()

	req := httptest.NewRequest(http.MethodDelete, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("id")
	c.SetParamValues("5")

	require.NoError(t, handler.DeleteTask(c))
	var response DeletedResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &response))
	assert.True(t, response.Deleted)

	// Deleting again reports false instead of failing
	rec = httptest.NewRecorder()
	c = e.NewContext(req, rec)
	c.SetParamNames("id")
	c.SetParamValues("5")

	require.NoError(t, handler.DeleteTask(c))
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &response))
	assert.False(t, response.Deleted)
}

func TestAuthTokenRejectsWrongKey(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("right-key"), bcrypt.MinCost)
	require.NoError(t, err)

	authService := services.NewAuthService(config.AuthConfig{
		JWTSecret:  "secret",
		ExpiresIn:  time.Hour,
		Issuer:     "test",
		APIKeyHash: string(hash),
	}, logger.NewNop())
	handler := NewAuthHandler(authService, logger.NewNop())
	e := newTestEcho()

	body := `{"api_key":"wrong-key"}`
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	err = handler.Token(c)
	require.Error(t, err)
	httpErr, ok := err.(*echo.HTTPError)
	require.True(t, ok)
	assert.Equal(t, http.StatusUnauthorized, httpErr.Code)
}

func TestAuthTokenRequiresKey(t *testing.T) {
	authService := services.NewAuthService(config.AuthConfig{JWTSecret: "secret"}, logger.NewNop())
	handler := NewAuthHandler(authService, logger.NewNop())
	e := newTestEcho()

	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{}`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	err := handler.Token(c)
	require.Error(t, err)
	httpErr, ok := err.(*echo.HTTPError)
	require.True(t, ok)
	assert.Equal(t, http.StatusBadRequest, httpErr.Code)
}
