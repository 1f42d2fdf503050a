package services

import (
	"context"
	"sync"
)

// fakeRepo is an in-memory stand-in for one entity repository. Behaviors
// are supplied per test through the hook funcs; every update patch is
// recorded for assertions.
type fakeRepo[T any] struct {
	mu    sync.Mutex
	items []T

	byID     func(id string) *T
	onCreate func(data map[string]interface{}) *T
	onUpdate func(id string, patch map[string]interface{}) *T

	creates []map[string]interface{}
	updates []patchCall
	deletes []string
}

type patchCall struct {
	id    string
	patch map[string]interface{}
}

func (f *fakeRepo[T]) GetAll(ctx context.Context) ([]T, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]T, len(f.items))
	copy(out, f.items)
	return out, nil
}

func (f *fakeRepo[T]) GetByID(ctx context.Context, id string) (*T, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.byID == nil {
		return nil, nil
	}
	return f.byID(id), nil
}

func (f *fakeRepo[T]) Create(ctx context.Context, data map[string]interface{}) (*T, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.creates = append(f.creates, data)
	if f.onCreate == nil {
		return nil, nil
	}
	return f.onCreate(data), nil
}

func (f *fakeRepo[T]) Update(ctx context.Context, id string, patch map[string]interface{}) (*T, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.updates = append(f.updates, patchCall{id: id, patch: patch})
	if f.onUpdate == nil {
		return nil, nil
	}
	return f.onUpdate(id, patch), nil
}

func (f *fakeRepo[T]) Delete(ctx context.Context, id string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deletes = append(f.deletes, id)
	return true, nil
}

func (f *fakeRepo[T]) recordedUpdates() []patchCall {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]patchCall, len(f.updates))
	copy(out, f.updates)
	return out
}
