// Package recordstore provides generic CRUD over named record tables.
// Every field value crosses this boundary as a string; composite fields are
// encoded by the repository layer before they get here.
package recordstore

import "context"

// Record is one stored row: a numeric store-assigned id plus flat string fields.
type Record struct {
	ID     int
	Fields map[string]string
}

// Sort is one element of an order-by clause
type Sort struct {
	Field string
	Desc  bool
}

// Query selects fields and ordering for a fetch
type Query struct {
	Fields  []string
	OrderBy []Sort
}

// Patch addresses an existing record with a partial field set
type Patch struct {
	ID     int
	Fields map[string]string
}

// FieldError is a field-level validation failure reported by the store
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// RecordResult is the per-record outcome of a batch create/update/delete
type RecordResult struct {
	Success bool
	Record  *Record
	Errors  []FieldError
	Message string
}

// ListResponse is the outcome of a fetch
type ListResponse struct {
	Success bool
	Records []Record
	Message string
}

// GetResponse is the outcome of a single-record lookup
type GetResponse struct {
	Success bool
	Record  *Record
	Message string
}

// BatchResponse is the outcome of a create/update/delete request. Success
// reflects whether the request itself was processed; per-record failures are
// reported in Results.
type BatchResponse struct {
	Success bool
	Results []RecordResult
	Message string
}

// Store is the generic record backend. A response with Success=false is a
// backend rejection; a returned error is a transport failure.
type Store interface {
	Fetch(ctx context.Context, table string, q Query) (ListResponse, error)
	Get(ctx context.Context, table string, id int, fields []string) (GetResponse, error)
	Create(ctx context.Context, table string, records []map[string]string) (BatchResponse, error)
	Update(ctx context.Context, table string, patches []Patch) (BatchResponse, error)
	Delete(ctx context.Context, table string, ids []int) (BatchResponse, error)
}
