package http

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/unifyhub/core/internal/application/services"
	"github.com/unifyhub/core/internal/domain/entities"
	"github.com/unifyhub/core/internal/infrastructure/config"
	"github.com/unifyhub/core/internal/infrastructure/logger"
)

// fakeConnectionRepo satisfies ports.ConnectionRepository with canned
// connections keyed by id
type fakeConnectionRepo struct {
	connections map[string]entities.ServiceConnection
}

func (f *fakeConnectionRepo) GetAll(ctx context.Context) ([]entities.ServiceConnection, error) {
	out := make([]entities.ServiceConnection, 0, len(f.connections))
	for _, c := range f.connections {
		out = append(out, c)
	}
	return out, nil
}

func (f *fakeConnectionRepo) GetByID(ctx context.Context, id string) (*entities.ServiceConnection, error) {
	if connection, ok := f.connections[id]; ok {
		return &connection, nil
	}
	return nil, nil
}

func (f *fakeConnectionRepo) Create(ctx context.Context, data map[string]interface{}) (*entities.ServiceConnection, error) {
	serviceID, _ := data["service_id"].(string)
	connection := entities.ServiceConnection{
		ID:        len(f.connections) + 1,
		ServiceID: serviceID,
		Status:    entities.ConnectionStatusConnected,
	}
	f.connections[strconv.Itoa(connection.ID)] = connection
	return &connection, nil
}

func (f *fakeConnectionRepo) Update(ctx context.Context, id string, patch map[string]interface{}) (*entities.ServiceConnection, error) {
	connection, ok := f.connections[id]
	if !ok {
		return nil, nil
	}
	if status, ok := patch["status"].(string); ok {
		connection.Status = entities.ConnectionStatus(status)
	}
	f.connections[id] = connection
	return &connection, nil
}

func (f *fakeConnectionRepo) Delete(ctx context.Context, id string) (bool, error) {
	if _, ok := f.connections[id]; !ok {
		return false, nil
	}
	delete(f.connections, id)
	return true, nil
}

func connectionHandlerFixture(connections map[string]entities.ServiceConnection) *ConnectionHandler {
	repo := &fakeConnectionRepo{connections: connections}
	scheduler := services.NewScheduler(logger.NewNop())
	cfg := config.SyncConfig{ConnectDelay: time.Millisecond, SyncDelay: time.Millisecond}
	service := services.NewConnectionService(repo, scheduler, cfg, logger.NewNop())
	return NewConnectionHandler(service, logger.NewNop())
}

func TestGetConnection(t *testing.T) {
	synced := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	handler := connectionHandlerFixture(map[string]entities.ServiceConnection{
		"3": {ID: 3, ServiceID: "gmail", Status: entities.ConnectionStatusConnected, LastSync: &synced},
	})
	e := newTestEcho()

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("id")
	c.SetParamValues("3")

	require.NoError(t, handler.GetConnection(c))
	assert.Equal(t, http.StatusOK, rec.Code)

	var connection entities.ServiceConnection
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &connection))
	assert.Equal(t, 3, connection.ID)
	assert.Equal(t, "gmail", connection.ServiceID)
	assert.Equal(t, entities.ConnectionStatusConnected, connection.Status)
}

func TestGetConnectionNotFound(t *testing.T) {
	handler := connectionHandlerFixture(map[string]entities.ServiceConnection{})
	e := newTestEcho()

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("id")
	c.SetParamValues("99")

	err := handler.GetConnection(c)
	require.Error(t, err)
	httpErr, ok := err.(*echo.HTTPError)
	require.True(t, ok)
	assert.Equal(t, http.StatusNotFound, httpErr.Code)
}

func TestConnectUnknownService(t *testing.T) {
	handler := connectionHandlerFixture(map[string]entities.ServiceConnection{})
	e := newTestEcho()

	body := `{"service_id":"myspace"}`
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	err := handler.Connect(c)
	require.Error(t, err)
	httpErr, ok := err.(*echo.HTTPError)
	require.True(t, ok)
	assert.Equal(t, http.StatusBadRequest, httpErr.Code)
}

func TestConnectDuplicateService(t *testing.T) {
	handler := connectionHandlerFixture(map[string]entities.ServiceConnection{
		"1": {ID: 1, ServiceID: "slack", Status: entities.ConnectionStatusConnected},
	})
	e := newTestEcho()

	body := `{"service_id":"slack"}`
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	err := handler.Connect(c)
	require.Error(t, err)
	httpErr, ok := err.(*echo.HTTPError)
	require.True(t, ok)
	assert.Equal(t, http.StatusConflict, httpErr.Code)
}
