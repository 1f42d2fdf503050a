package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/unifyhub/core/internal/adapters/recordstore"
	"github.com/unifyhub/core/internal/infrastructure/logger"
)

// fakeStore records every call and replays canned responses
type fakeStore struct {
	fetchCalls  int
	getCalls    int
	createCalls int
	updateCalls int
	deleteCalls int

	lastCreate []map[string]string
	lastUpdate []recordstore.Patch

	fetchResponse  recordstore.ListResponse
	getResponse    recordstore.GetResponse
	createResponse recordstore.BatchResponse
	updateResponse recordstore.BatchResponse
	deleteResponse recordstore.BatchResponse
}

func (f *fakeStore) Fetch(ctx context.Context, table string, q recordstore.Query) (recordstore.ListResponse, error) {
	f.fetchCalls++
	return f.fetchResponse, nil
}

func (f *fakeStore) Get(ctx context.Context, table string, id int, fields []string) (recordstore.GetResponse, error) {
	f.getCalls++
	return f.getResponse, nil
}

func (f *fakeStore) Create(ctx context.Context, table string, records []map[string]string) (recordstore.BatchResponse, error) {
	f.createCalls++
	f.lastCreate = records
	return f.createResponse, nil
}

func (f *fakeStore) Update(ctx context.Context, table string, patches []recordstore.Patch) (recordstore.BatchResponse, error) {
	f.updateCalls++
	f.lastUpdate = patches
	return f.updateResponse, nil
}

func (f *fakeStore) Delete(ctx context.Context, table string, ids []int) (recordstore.BatchResponse, error) {
	f.deleteCalls++
	return f.deleteResponse, nil
}

func taskRecord(id int, fields map[string]string) recordstore.Record {
	return recordstore.Record{ID: id, Fields: fields}
}

func successBatch(record recordstore.Record) recordstore.BatchResponse {
	return recordstore.BatchResponse{
		Success: true,
		Results: []recordstore.RecordResult{{Success: true, Record: &record}},
	}
}

func TestGetByIDMalformedNeverReachesStore(t *testing.T) {
	store := &fakeStore{}
	repo := NewTaskRepository(store, logger.NewNop())

	for _, id := range []string{"", "abc", "1.5", "-1", "0", " 12x"} {
		task, err := repo.GetByID(context.Background(), id)
		require.NoError(t, err, "id %q", id)
		assert.Nil(t, task, "id %q", id)
	}
	assert.Equal(t, 0, store.getCalls)
}

func TestUpdateMalformedNeverReachesStore(t *testing.T) {
	store := &fakeStore{}
	repo := NewTaskRepository(store, logger.NewNop())

	task, err := repo.Update(context.Background(), "not-a-number", map[string]interface{}{"title": "x"})
	require.NoError(t, err)
	assert.Nil(t, task)
	assert.Equal(t, 0, store.updateCalls)
}

func TestDeleteMalformedNeverReachesStore(t *testing.T) {
	store := &fakeStore{}
	repo := NewTaskRepository(store, logger.NewNop())

	deleted, err := repo.Delete(context.Background(), "nope")
	require.NoError(t, err)
	assert.False(t, deleted)
	assert.Equal(t, 0, store.deleteCalls)
}

func TestGetByIDTrimsWhitespace(t *testing.T) {
	store := &fakeStore{
		getResponse: recordstore.GetResponse{
			Success: true,
			Record: &recordstore.Record{ID: 7, Fields: map[string]string{
				"title": "Ship it", "priority": "high", "status": "pending",
			}},
		},
	}
	repo := NewTaskRepository(store, logger.NewNop())

	task, err := repo.GetByID(context.Background(), " 7 ")
	require.NoError(t, err)
	require.NotNil(t, task)
	assert.Equal(t, 7, task.ID)
	assert.Equal(t, 1, store.getCalls)
}

func TestGetAllBackendRejectionYieldsEmptyList(t *testing.T) {
	store := &fakeStore{
		fetchResponse: recordstore.ListResponse{Success: false, Message: "table offline"},
	}
	repo := NewTaskRepository(store, logger.NewNop())

	tasks, err := repo.GetAll(context.Background())
	require.NoError(t, err)
	assert.Empty(t, tasks)
	assert.NotNil(t, tasks)
}

func TestUpdateNormalizesAliasesAndDropsUnknown(t *testing.T) {
	store := &fakeStore{
		updateResponse: successBatch(taskRecord(3, map[string]string{
			"title": "t", "status": "pending", "due_date": "2025-06-01",
		})),
	}
	repo := NewTaskRepository(store, logger.NewNop())

	_, err := repo.Update(context.Background(), "3", map[string]interface{}{
		"dueDate":   "2025-06-01",
		"projectId": 4,
		"bogus":     "dropped",
	})
	require.NoError(t, err)
	require.Len(t, store.lastUpdate, 1)

	fields := store.lastUpdate[0].Fields
	assert.Equal(t, "2025-06-01", fields["due_date"])
	assert.Equal(t, "4", fields["project_id"])
	assert.NotContains(t, fields, "dueDate")
	assert.NotContains(t, fields, "bogus")
}

func TestUpdateHonorsAllowList(t *testing.T) {
	store := &fakeStore{
		updateResponse: successBatch(taskRecord(1, map[string]string{
			"from": "a", "subject": "s", "timestamp": "2025-01-01T00:00:00Z", "read": "true",
		})),
	}
	repo := NewMessageRepository(store, logger.NewNop())

	_, err := repo.Update(context.Background(), "1", map[string]interface{}{
		"read":    true,
		"subject": "rewritten",
		"from":    "spoofed",
	})
	require.NoError(t, err)
	require.Len(t, store.lastUpdate, 1)

	fields := store.lastUpdate[0].Fields
	assert.Equal(t, "true", fields["read"])
	assert.NotContains(t, fields, "subject")
	assert.NotContains(t, fields, "from")
}

func TestRuleLastRunIsNotUpdatable(t *testing.T) {
	store := &fakeStore{
		updateResponse: successBatch(taskRecord(1, map[string]string{
			"name": "r", "enabled": "true",
		})),
	}
	repo := NewRuleRepository(store, logger.NewNop())

	_, err := repo.Update(context.Background(), "1", map[string]interface{}{
		"name":    "renamed",
		"lastRun": "2025-01-01T00:00:00Z",
	})
	require.NoError(t, err)
	require.Len(t, store.lastUpdate, 1)

	fields := store.lastUpdate[0].Fields
	assert.Equal(t, "renamed", fields["name"])
	assert.NotContains(t, fields, "last_run")
}

func TestEmptyPatchForwardsNoFields(t *testing.T) {
	store := &fakeStore{
		updateResponse: successBatch(taskRecord(2, map[string]string{
			"title": "unchanged", "status": "pending",
		})),
	}
	repo := NewTaskRepository(store, logger.NewNop())

	task, err := repo.Update(context.Background(), "2", map[string]interface{}{})
	require.NoError(t, err)
	require.NotNil(t, task)
	assert.Equal(t, "unchanged", task.Title)
	require.Len(t, store.lastUpdate, 1)
	assert.Empty(t, store.lastUpdate[0].Fields)
}

func TestCreateEncodesCompositeFields(t *testing.T) {
	created := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)
	store := &fakeStore{
		createResponse: successBatch(taskRecord(5, map[string]string{
			"name":         "Launch",
			"linked_items": `[{"type":"task","title":"Ship"}]`,
			"created":      "2025-03-01T00:00:00Z",
			"progress":     "40",
		})),
	}
	repo := NewProjectRepository(store, logger.NewNop())

	project, err := repo.Create(context.Background(), map[string]interface{}{
		"name": "Launch",
		"linkedItems": []map[string]string{
			{"type": "task", "title": "Ship"},
		},
		"created":  created,
		"progress": 40,
	})
	require.NoError(t, err)
	require.NotNil(t, project)

	require.Len(t, store.lastCreate, 1)
	fields := store.lastCreate[0]
	assert.JSONEq(t, `[{"type":"task","title":"Ship"}]`, fields["linked_items"])
	assert.Equal(t, "2025-03-01T00:00:00Z", fields["created"])
	assert.Equal(t, "40", fields["progress"])

	require.Len(t, project.LinkedItems, 1)
	assert.Equal(t, "Ship", project.LinkedItems[0].Title)
}

func TestCreateRejectedYieldsNil(t *testing.T) {
	store := &fakeStore{
		createResponse: recordstore.BatchResponse{
			Success: true,
			Results: []recordstore.RecordResult{{
				Success: false,
				Errors:  []recordstore.FieldError{{Field: "title", Message: "required"}},
				Message: "validation failed",
			}},
		},
	}
	repo := NewTaskRepository(store, logger.NewNop())

	task, err := repo.Create(context.Background(), map[string]interface{}{"description": "no title"})
	require.NoError(t, err)
	assert.Nil(t, task)
}

func TestDeleteReportsStoreOutcome(t *testing.T) {
	store := &fakeStore{
		deleteResponse: recordstore.BatchResponse{
			Success: true,
			Results: []recordstore.RecordResult{{Success: true}},
		},
	}
	repo := NewTaskRepository(store, logger.NewNop())

	deleted, err := repo.Delete(context.Background(), "9")
	require.NoError(t, err)
	assert.True(t, deleted)

	store.deleteResponse = recordstore.BatchResponse{
		Success: true,
		Results: []recordstore.RecordResult{{Success: false, Message: "record not found"}},
	}
	deleted, err = repo.Delete(context.Background(), "9")
	require.NoError(t, err)
	assert.False(t, deleted)
}

func TestMessageRoundTrip(t *testing.T) {
	record := taskRecord(11, map[string]string{
		"from":      "alice@example.com",
		"subject":   "Standup",
		"preview":   "Daily notes",
		"service":   "gmail",
		"timestamp": "2025-05-01T09:30:00Z",
		"read":      "true",
		"labels":    "work,urgent",
	})

	message, err := decodeMessage(record)
	require.NoError(t, err)
	assert.Equal(t, []string{"work", "urgent"}, message.Labels)
	assert.True(t, message.Read)
	assert.Equal(t, 2025, message.Timestamp.Year())

	encoded, err := CommaListCodec().Encode(message.Labels)
	require.NoError(t, err)
	assert.Equal(t, "work,urgent", encoded)
}

func TestDecodeTaskOptionalFields(t *testing.T) {
	task, err := decodeTask(taskRecord(1, map[string]string{
		"title":    "Loose end",
		"status":   "pending",
		"priority": "low",
	}))
	require.NoError(t, err)
	assert.Nil(t, task.DueDate)
	assert.Nil(t, task.ProjectID)

	task, err = decodeTask(taskRecord(2, map[string]string{
		"title":      "Dated",
		"status":     "pending",
		"priority":   "high",
		"due_date":   "2025-04-15",
		"project_id": "3",
	}))
	require.NoError(t, err)
	require.NotNil(t, task.DueDate)
	assert.Equal(t, 15, task.DueDate.Day())
	require.NotNil(t, task.ProjectID)
	assert.Equal(t, 3, *task.ProjectID)
}

func TestParseRecordID(t *testing.T) {
	id, err := ParseRecordID("42")
	require.NoError(t, err)
	assert.Equal(t, 42, id)

	for _, raw := range []string{"", "abc", "1.5", "-1", "0", "+ 3"} {
		_, err := ParseRecordID(raw)
		assert.Error(t, err, "raw %q", raw)
	}
}
