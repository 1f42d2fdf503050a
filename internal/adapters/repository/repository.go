package repository

import (
	"context"
	"fmt"

	"github.com/unifyhub/core/internal/adapters/recordstore"
	"github.com/unifyhub/core/internal/infrastructure/logger"
)

// Mapping configures the generic repository for one entity table: which
// fields exist, how incoming alias names normalize to stored names, which
// fields a partial update may touch, and how composite fields encode.
type Mapping struct {
	Table     string
	Fields    []string
	Aliases   map[string]string
	Updatable map[string]struct{}
	Codecs    map[string]Codec
	OrderBy   []recordstore.Sort
}

func (m Mapping) known(field string) bool {
	for _, f := range m.Fields {
		if f == field {
			return true
		}
	}
	return false
}

// normalize resolves an incoming field name to its stored name
func (m Mapping) normalize(field string) string {
	if native, ok := m.Aliases[field]; ok {
		return native
	}
	return field
}

// Repository is the uniform CRUD facade over the record store, instantiated
// once per entity. Backend rejections and invalid identifiers surface as
// zero values plus a logged warning; only transport failures return errors.
type Repository[T any] struct {
	store   recordstore.Store
	mapping Mapping
	decode  func(recordstore.Record) (T, error)
	log     *logger.Logger
}

// New creates a repository for one entity mapping
func New[T any](store recordstore.Store, mapping Mapping, decode func(recordstore.Record) (T, error), log *logger.Logger) *Repository[T] {
	return &Repository[T]{
		store:   store,
		mapping: mapping,
		decode:  decode,
		log:     log,
	}
}

// GetAll returns every record of the table in the mapping's fixed order.
// A backend rejection yields an empty list, never an error.
func (r *Repository[T]) GetAll(ctx context.Context) ([]T, error) {
	response, err := r.store.Fetch(ctx, r.mapping.Table, recordstore.Query{
		Fields:  r.mapping.Fields,
		OrderBy: r.mapping.OrderBy,
	})
	if err != nil {
		return nil, fmt.Errorf("fetch %s records: %w", r.mapping.Table, err)
	}
	if !response.Success {
		r.log.Warnw("Record fetch rejected", "table", r.mapping.Table, "message", response.Message)
		return []T{}, nil
	}

	entities := make([]T, 0, len(response.Records))
	for _, record := range response.Records {
		entity, err := r.decode(record)
		if err != nil {
			return nil, fmt.Errorf("decode %s record %d: %w", r.mapping.Table, record.ID, err)
		}
		entities = append(entities, entity)
	}
	return entities, nil
}

// GetByID returns one record, or nil when the id is malformed or the
// backend reports not-found or failure.
func (r *Repository[T]) GetByID(ctx context.Context, rawID string) (*T, error) {
	id, err := ParseRecordID(rawID)
	if err != nil {
		r.log.Warnw("Invalid record id", "table", r.mapping.Table, "id", rawID)
		return nil, nil
	}

	response, err := r.store.Get(ctx, r.mapping.Table, id, r.mapping.Fields)
	if err != nil {
		return nil, fmt.Errorf("get %s record: %w", r.mapping.Table, err)
	}
	if !response.Success || response.Record == nil {
		r.log.Warnw("Record lookup failed", "table", r.mapping.Table, "id", id, "message", response.Message)
		return nil, nil
	}

	entity, err := r.decode(*response.Record)
	if err != nil {
		return nil, fmt.Errorf("decode %s record %d: %w", r.mapping.Table, id, err)
	}
	return &entity, nil
}

// Create submits exactly one record and returns the first successful
// result, or nil when the backend rejected it.
func (r *Repository[T]) Create(ctx context.Context, data map[string]interface{}) (*T, error) {
	fields, err := r.encode(data, false)
	if err != nil {
		return nil, fmt.Errorf("encode %s record: %w", r.mapping.Table, err)
	}

	response, err := r.store.Create(ctx, r.mapping.Table, []map[string]string{fields})
	if err != nil {
		return nil, fmt.Errorf("create %s record: %w", r.mapping.Table, err)
	}

	return r.firstSuccessful(response, "create")
}

// Update applies a partial patch. Only allow-listed fields are forwarded;
// unknown keys are dropped silently. An empty patch leaves the record
// unchanged.
func (r *Repository[T]) Update(ctx context.Context, rawID string, patch map[string]interface{}) (*T, error) {
	id, err := ParseRecordID(rawID)
	if err != nil {
		r.log.Warnw("Invalid record id", "table", r.mapping.Table, "id", rawID)
		return nil, nil
	}

	fields, err := r.encode(patch, true)
	if err != nil {
		return nil, fmt.Errorf("encode %s patch: %w", r.mapping.Table, err)
	}

	response, err := r.store.Update(ctx, r.mapping.Table, []recordstore.Patch{{ID: id, Fields: fields}})
	if err != nil {
		return nil, fmt.Errorf("update %s record: %w", r.mapping.Table, err)
	}

	return r.firstSuccessful(response, "update")
}

// Delete removes one record, returning true only if the store reported at
// least one record deleted.
func (r *Repository[T]) Delete(ctx context.Context, rawID string) (bool, error) {
	id, err := ParseRecordID(rawID)
	if err != nil {
		r.log.Warnw("Invalid record id", "table", r.mapping.Table, "id", rawID)
		return false, nil
	}

	response, err := r.store.Delete(ctx, r.mapping.Table, []int{id})
	if err != nil {
		return false, fmt.Errorf("delete %s record: %w", r.mapping.Table, err)
	}
	if !response.Success {
		r.log.Warnw("Record delete rejected", "table", r.mapping.Table, "id", id, "message", response.Message)
		return false, nil
	}

	deleted := false
	for _, result := range response.Results {
		if result.Success {
			deleted = true
			continue
		}
		r.log.Warnw("Record delete failed", "table", r.mapping.Table, "id", id, "message", result.Message)
	}
	return deleted, nil
}

// encode normalizes incoming field names and renders every value in its
// stored string form
func (r *Repository[T]) encode(data map[string]interface{}, updatesOnly bool) (map[string]string, error) {
	fields := make(map[string]string, len(data))
	for key, value := range data {
		native := r.mapping.normalize(key)
		if !r.mapping.known(native) {
			continue
		}
		if updatesOnly {
			if _, ok := r.mapping.Updatable[native]; !ok {
				continue
			}
		}

		var stored string
		var err error
		if codec, ok := r.mapping.Codecs[native]; ok {
			stored, err = codec.Encode(value)
		} else {
			stored, err = formatScalar(value)
		}
		if err != nil {
			return nil, fmt.Errorf("field %s: %w", native, err)
		}
		fields[native] = stored
	}
	return fields, nil
}

// firstSuccessful enumerates every failed record result and decodes the
// first successful one
func (r *Repository[T]) firstSuccessful(response recordstore.BatchResponse, operation string) (*T, error) {
	if !response.Success {
		r.log.Warnw("Record "+operation+" rejected", "table", r.mapping.Table, "message", response.Message)
		return nil, nil
	}

	var first *T
	for _, result := range response.Results {
		if !result.Success {
			for _, fieldErr := range result.Errors {
				r.log.Warnw("Record "+operation+" field error",
					"table", r.mapping.Table, "field", fieldErr.Field, "message", fieldErr.Message)
			}
			r.log.Warnw("Record "+operation+" failed", "table", r.mapping.Table, "message", result.Message)
			continue
		}
		if first == nil && result.Record != nil {
			entity, err := r.decode(*result.Record)
			if err != nil {
				return nil, fmt.Errorf("decode %s record %d: %w", r.mapping.Table, result.Record.ID, err)
			}
			first = &entity
		}
	}
	return first, nil
}
