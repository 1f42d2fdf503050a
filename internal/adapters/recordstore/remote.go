package recordstore

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// RemoteStore implements Store against an external record-management
// backend. Requests are authenticated with the project id and public key
// the backend issued for this application; both are opaque here.
type RemoteStore struct {
	baseURL   string
	projectID string
	publicKey string
	client    *http.Client
}

// NewRemoteStore creates a client for the external record backend
func NewRemoteStore(baseURL, projectID, publicKey string, timeout time.Duration) *RemoteStore {
	return &RemoteStore{
		baseURL:   baseURL,
		projectID: projectID,
		publicKey: publicKey,
		client:    &http.Client{Timeout: timeout},
	}
}

type remoteSort struct {
	Field     string `json:"field"`
	Direction string `json:"direction"`
}

type remoteEnvelope struct {
	Success bool              `json:"success"`
	Message string            `json:"message"`
	Data    []json.RawMessage `json:"data"`
	Results []remoteResult    `json:"results"`
}

type remoteGetEnvelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

type remoteResult struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
	Errors  []FieldError    `json:"errors"`
}

func (s *RemoteStore) call(ctx context.Context, method string, payload interface{}, out interface{}) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.baseURL+"/"+method, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Project-Id", s.projectID)
	req.Header.Set("X-Public-Key", s.publicKey)

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("call record backend: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusInternalServerError {
		return fmt.Errorf("record backend returned status %d", resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func (s *RemoteStore) Fetch(ctx context.Context, table string, q Query) (ListResponse, error) {
	if err := validateFields(table, q.Fields); err != nil {
		return ListResponse{}, err
	}

	orderBy := make([]remoteSort, len(q.OrderBy))
	for i, sort := range q.OrderBy {
		direction := "asc"
		if sort.Desc {
			direction = "desc"
		}
		orderBy[i] = remoteSort{Field: sort.Field, Direction: direction}
	}

	payload := map[string]interface{}{
		"tableName": table,
		"fields":    q.Fields,
		"orderBy":   orderBy,
	}

	var envelope remoteEnvelope
	if err := s.call(ctx, "fetchRecords", payload, &envelope); err != nil {
		return ListResponse{}, err
	}
	if !envelope.Success {
		return ListResponse{Success: false, Message: envelope.Message}, nil
	}

	records := make([]Record, 0, len(envelope.Data))
	for _, raw := range envelope.Data {
		record, err := decodeRemoteRecord(raw)
		if err != nil {
			return ListResponse{}, err
		}
		records = append(records, record)
	}

	return ListResponse{Success: true, Records: records}, nil
}

func (s *RemoteStore) Get(ctx context.Context, table string, id int, fields []string) (GetResponse, error) {
	if err := validateFields(table, fields); err != nil {
		return GetResponse{}, err
	}

	payload := map[string]interface{}{
		"tableName": table,
		"recordId":  id,
		"fields":    fields,
	}

	var envelope remoteGetEnvelope
	if err := s.call(ctx, "getRecordById", payload, &envelope); err != nil {
		return GetResponse{}, err
	}
	if !envelope.Success || len(envelope.Data) == 0 {
		return GetResponse{Success: false, Message: envelope.Message}, nil
	}

	record, err := decodeRemoteRecord(envelope.Data)
	if err != nil {
		return GetResponse{}, err
	}
	return GetResponse{Success: true, Record: &record}, nil
}

func (s *RemoteStore) Create(ctx context.Context, table string, records []map[string]string) (BatchResponse, error) {
	if _, err := validateTable(table); err != nil {
		return BatchResponse{}, err
	}

	payload := map[string]interface{}{
		"tableName": table,
		"records":   records,
	}

	var envelope remoteEnvelope
	if err := s.call(ctx, "createRecord", payload, &envelope); err != nil {
		return BatchResponse{}, err
	}
	return s.batchResponse(envelope)
}

func (s *RemoteStore) Update(ctx context.Context, table string, patches []Patch) (BatchResponse, error) {
	if _, err := validateTable(table); err != nil {
		return BatchResponse{}, err
	}

	records := make([]map[string]interface{}, len(patches))
	for i, patch := range patches {
		record := make(map[string]interface{}, len(patch.Fields)+1)
		record["Id"] = patch.ID
		for k, v := range patch.Fields {
			record[k] = v
		}
		records[i] = record
	}

	payload := map[string]interface{}{
		"tableName": table,
		"records":   records,
	}

	var envelope remoteEnvelope
	if err := s.call(ctx, "updateRecord", payload, &envelope); err != nil {
		return BatchResponse{}, err
	}
	return s.batchResponse(envelope)
}

func (s *RemoteStore) Delete(ctx context.Context, table string, ids []int) (BatchResponse, error) {
	if _, err := validateTable(table); err != nil {
		return BatchResponse{}, err
	}

	payload := map[string]interface{}{
		"tableName": table,
		"RecordIds": ids,
	}

	var envelope remoteEnvelope
	if err := s.call(ctx, "deleteRecord", payload, &envelope); err != nil {
		return BatchResponse{}, err
	}
	return s.batchResponse(envelope)
}

func (s *RemoteStore) batchResponse(envelope remoteEnvelope) (BatchResponse, error) {
	response := BatchResponse{Success: envelope.Success, Message: envelope.Message}
	for _, result := range envelope.Results {
		converted := RecordResult{
			Success: result.Success,
			Message: result.Message,
			Errors:  result.Errors,
		}
		if result.Success && len(result.Data) > 0 {
			record, err := decodeRemoteRecord(result.Data)
			if err != nil {
				return BatchResponse{}, err
			}
			converted.Record = &record
		}
		response.Results = append(response.Results, converted)
	}
	return response, nil
}

// decodeRemoteRecord flattens the backend's {"Id": n, ...fields} shape into
// a Record. Non-string field values are rendered with their JSON encoding.
func decodeRemoteRecord(raw json.RawMessage) (Record, error) {
	var flat map[string]json.RawMessage
	if err := json.Unmarshal(raw, &flat); err != nil {
		return Record{}, fmt.Errorf("decode record: %w", err)
	}

	record := Record{Fields: make(map[string]string, len(flat))}
	for key, value := range flat {
		if key == "Id" {
			if err := json.Unmarshal(value, &record.ID); err != nil {
				return Record{}, fmt.Errorf("decode record id: %w", err)
			}
			continue
		}
		var str string
		if err := json.Unmarshal(value, &str); err == nil {
			record.Fields[key] = str
		} else {
			record.Fields[key] = string(value)
		}
	}
	return record, nil
}
