package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/unifyhub/core/internal/domain/entities"
	"github.com/unifyhub/core/internal/infrastructure/logger"
)

func TestProjectListCapsLinkedItems(t *testing.T) {
	repo := &fakeRepo[entities.Project]{items: []entities.Project{
		{ID: 1, Name: "Small", LinkedItems: []entities.LinkedItem{
			{Type: "task", Title: "one"},
		}},
		{ID: 2, Name: "Big", LinkedItems: []entities.LinkedItem{
			{Type: "task", Title: "a"},
			{Type: "event", Title: "b"},
			{Type: "message", Title: "c"},
			{Type: "task", Title: "d"},
			{Type: "task", Title: "e"},
		}},
		{ID: 3, Name: "Empty"},
	}}
	service := NewProjectService(repo, logger.NewNop())

	summaries, err := service.List(context.Background())
	require.NoError(t, err)
	require.Len(t, summaries, 3)

	assert.Len(t, summaries[0].Items, 1)
	assert.Equal(t, 0, summaries[0].More)

	assert.Len(t, summaries[1].Items, 3)
	assert.Equal(t, 2, summaries[1].More)
	assert.Equal(t, "a", summaries[1].Items[0].Title)

	assert.Empty(t, summaries[2].Items)
	assert.Equal(t, 0, summaries[2].More)

	// The full project record keeps every linked item
	assert.Len(t, summaries[1].Project.LinkedItems, 5)
}

func TestProjectStoredProgressIsAuthoritative(t *testing.T) {
	repo := &fakeRepo[entities.Project]{items: []entities.Project{
		{ID: 1, Name: "Manual", Progress: 80, LinkedItems: []entities.LinkedItem{
			{Type: "task", Title: "only one"},
		}},
	}}
	service := NewProjectService(repo, logger.NewNop())

	summaries, err := service.List(context.Background())
	require.NoError(t, err)
	require.Len(t, summaries, 1)
	assert.Equal(t, 80, summaries[0].Project.Progress)
}
