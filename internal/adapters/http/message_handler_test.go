package http

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/unifyhub/core/internal/application/services"
	"github.com/unifyhub/core/internal/domain/entities"
	"github.com/unifyhub/core/internal/infrastructure/logger"
)

// fakeMessageRepo satisfies ports.MessageRepository with canned messages
// keyed by id
type fakeMessageRepo struct {
	messages map[string]entities.Message
}

func (f *fakeMessageRepo) GetAll(ctx context.Context) ([]entities.Message, error) {
	out := make([]entities.Message, 0, len(f.messages))
	for _, m := range f.messages {
		out = append(out, m)
	}
	return out, nil
}

func (f *fakeMessageRepo) GetByID(ctx context.Context, id string) (*entities.Message, error) {
	if message, ok := f.messages[id]; ok {
		return &message, nil
	}
	return nil, nil
}

func (f *fakeMessageRepo) Create(ctx context.Context, data map[string]interface{}) (*entities.Message, error) {
	return nil, nil
}

func (f *fakeMessageRepo) Update(ctx context.Context, id string, patch map[string]interface{}) (*entities.Message, error) {
	message, ok := f.messages[id]
	if !ok {
		return nil, nil
	}
	if read, ok := patch["read"].(bool); ok {
		message.Read = read
	}
	f.messages[id] = message
	return &message, nil
}

func (f *fakeMessageRepo) Delete(ctx context.Context, id string) (bool, error) {
	if _, ok := f.messages[id]; !ok {
		return false, nil
	}
	delete(f.messages, id)
	return true, nil
}

func messageHandlerFixture(messages map[string]entities.Message) *MessageHandler {
	repo := &fakeMessageRepo{messages: messages}
	service := services.NewMessageService(repo, logger.NewNop())
	return NewMessageHandler(service, logger.NewNop())
}

func TestMarkMessageRead(t *testing.T) {
	handler := messageHandlerFixture(map[string]entities.Message{
		"7": {ID: 7, From: "Sarah Chen", Subject: "Q3 planning deck", Timestamp: time.Now(), Read: false},
	})
	e := newTestEcho()

	req := httptest.NewRequest(http.MethodPost, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("id")
	c.SetParamValues("7")

	require.NoError(t, handler.MarkRead(c))
	assert.Equal(t, http.StatusOK, rec.Code)

	var message entities.Message
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &message))
	assert.Equal(t, 7, message.ID)
	assert.True(t, message.Read)
}

func TestMarkMessageReadNotFound(t *testing.T) {
	handler := messageHandlerFixture(map[string]entities.Message{})
	e := newTestEcho()

	req := httptest.NewRequest(http.MethodPost, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("id")
	c.SetParamValues("99")

	err := handler.MarkRead(c)
	require.Error(t, err)
	httpErr, ok := err.(*echo.HTTPError)
	require.True(t, ok)
	assert.Equal(t, http.StatusNotFound, httpErr.Code)
}
