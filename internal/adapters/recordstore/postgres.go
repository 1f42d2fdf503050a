package recordstore

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

// PostgresStore implements Store on top of the record tables created by the
// migrations. Every column is text; ids are store-assigned serials.
type PostgresStore struct {
	db *sqlx.DB
}

// NewPostgresStore creates a postgres-backed record store
func NewPostgresStore(db *sqlx.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func quoteColumns(fields []string) string {
	quoted := make([]string, len(fields))
	for i, f := range fields {
		quoted[i] = pq.QuoteIdentifier(f)
	}
	return strings.Join(quoted, ", ")
}

func (s *PostgresStore) Fetch(ctx context.Context, table string, q Query) (ListResponse, error) {
	if err := validateFields(table, q.Fields); err != nil {
		return ListResponse{}, err
	}

	query := fmt.Sprintf("SELECT id, %s FROM %s", quoteColumns(q.Fields), pq.QuoteIdentifier(table))
	if len(q.OrderBy) > 0 {
		var sortFields []string
		for _, s := range q.OrderBy {
			sortFields = append(sortFields, s.Field)
		}
		if err := validateFields(table, sortFields); err != nil {
			return ListResponse{}, err
		}
		clauses := make([]string, len(q.OrderBy))
		for i, s := range q.OrderBy {
			direction := "ASC"
			if s.Desc {
				direction = "DESC"
			}
			clauses[i] = fmt.Sprintf("%s %s", pq.QuoteIdentifier(s.Field), direction)
		}
		query += " ORDER BY " + strings.Join(clauses, ", ")
	}

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return ListResponse{}, fmt.Errorf("fetch records: %w", err)
	}
	defer rows.Close()

	var records []Record
	for rows.Next() {
		record, err := scanRecord(rows, q.Fields)
		if err != nil {
			return ListResponse{}, fmt.Errorf("scan record: %w", err)
		}
		records = append(records, record)
	}
	if err := rows.Err(); err != nil {
		return ListResponse{}, fmt.Errorf("fetch records: %w", err)
	}

	return ListResponse{Success: true, Records: records}, nil
}

func (s *PostgresStore) Get(ctx context.Context, table string, id int, fields []string) (GetResponse, error) {
	if err := validateFields(table, fields); err != nil {
		return GetResponse{}, err
	}

	query := fmt.Sprintf("SELECT id, %s FROM %s WHERE id = $1",
		quoteColumns(fields), pq.QuoteIdentifier(table))

	rows, err := s.db.QueryContext(ctx, query, id)
	if err != nil {
		return GetResponse{}, fmt.Errorf("get record: %w", err)
	}
	defer rows.Close()

	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return GetResponse{}, fmt.Errorf("get record: %w", err)
		}
		return GetResponse{Success: false, Message: "record not found"}, nil
	}

	record, err := scanRecord(rows, fields)
	if err != nil {
		return GetResponse{}, fmt.Errorf("scan record: %w", err)
	}

	return GetResponse{Success: true, Record: &record}, nil
}

func (s *PostgresStore) Create(ctx context.Context, table string, records []map[string]string) (BatchResponse, error) {
	columns, err := validateTable(table)
	if err != nil {
		return BatchResponse{}, err
	}

	results := make([]RecordResult, 0, len(records))
	for _, fields := range records {
		result, err := s.insertOne(ctx, table, columns, fields)
		if err != nil {
			return BatchResponse{}, err
		}
		results = append(results, result)
	}

	return BatchResponse{Success: true, Results: results}, nil
}

func (s *PostgresStore) insertOne(ctx context.Context, table string, columns []string, fields map[string]string) (RecordResult, error) {
	var names []string
	if err := validateFields(table, keys(fields)); err != nil {
		return RecordResult{Success: false, Message: err.Error()}, nil
	}
	// Deterministic column order
	for _, c := range columns {
		if _, ok := fields[c]; ok {
			names = append(names, c)
		}
	}

	placeholders := make([]string, len(names))
	args := make([]interface{}, len(names))
	for i, name := range names {
		placeholders[i] = fmt.Sprintf("$%d", i+1)
		args[i] = fields[name]
	}

	query := fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s) RETURNING id",
		pq.QuoteIdentifier(table), quoteColumns(names), strings.Join(placeholders, ", "))
	if len(names) == 0 {
		query = fmt.Sprintf("INSERT INTO %s DEFAULT VALUES RETURNING id", pq.QuoteIdentifier(table))
	}

	var id int
	if err := s.db.QueryRowContext(ctx, query, args...).Scan(&id); err != nil {
		if isConstraintViolation(err) {
			return RecordResult{Success: false, Message: err.Error()}, nil
		}
		return RecordResult{}, fmt.Errorf("insert record: %w", err)
	}

	return RecordResult{Success: true, Record: &Record{ID: id, Fields: copyFields(fields)}}, nil
}

func (s *PostgresStore) Update(ctx context.Context, table string, patches []Patch) (BatchResponse, error) {
	if _, err := validateTable(table); err != nil {
		return BatchResponse{}, err
	}

	results := make([]RecordResult, 0, len(patches))
	for _, patch := range patches {
		result, err := s.updateOne(ctx, table, patch)
		if err != nil {
			return BatchResponse{}, err
		}
		results = append(results, result)
	}

	return BatchResponse{Success: true, Results: results}, nil
}

func (s *PostgresStore) updateOne(ctx context.Context, table string, patch Patch) (RecordResult, error) {
	names := keys(patch.Fields)
	if err := validateFields(table, names); err != nil {
		return RecordResult{Success: false, Message: err.Error()}, nil
	}

	if len(names) > 0 {
		assignments := make([]string, len(names))
		args := make([]interface{}, 0, len(names)+1)
		for i, name := range names {
			assignments[i] = fmt.Sprintf("%s = $%d", pq.QuoteIdentifier(name), i+1)
			args = append(args, patch.Fields[name])
		}
		args = append(args, patch.ID)

		query := fmt.Sprintf("UPDATE %s SET %s WHERE id = $%d",
			pq.QuoteIdentifier(table), strings.Join(assignments, ", "), len(names)+1)

		result, err := s.db.ExecContext(ctx, query, args...)
		if err != nil {
			if isConstraintViolation(err) {
				return RecordResult{Success: false, Message: err.Error()}, nil
			}
			return RecordResult{}, fmt.Errorf("update record: %w", err)
		}
		affected, err := result.RowsAffected()
		if err != nil {
			return RecordResult{}, fmt.Errorf("get rows affected: %w", err)
		}
		if affected == 0 {
			return RecordResult{Success: false, Message: "record not found"}, nil
		}
	}

	// Return the full stored record so callers see the merged state
	columns, _ := validateTable(table)
	get, err := s.Get(ctx, table, patch.ID, columns)
	if err != nil {
		return RecordResult{}, err
	}
	if !get.Success {
		return RecordResult{Success: false, Message: get.Message}, nil
	}

	return RecordResult{Success: true, Record: get.Record}, nil
}

func (s *PostgresStore) Delete(ctx context.Context, table string, ids []int) (BatchResponse, error) {
	if _, err := validateTable(table); err != nil {
		return BatchResponse{}, err
	}

	query := fmt.Sprintf("DELETE FROM %s WHERE id = $1", pq.QuoteIdentifier(table))

	results := make([]RecordResult, 0, len(ids))
	for _, id := range ids {
		result, err := s.db.ExecContext(ctx, query, id)
		if err != nil {
			return BatchResponse{}, fmt.Errorf("delete record: %w", err)
		}
		affected, err := result.RowsAffected()
		if err != nil {
			return BatchResponse{}, fmt.Errorf("get rows affected: %w", err)
		}
		if affected == 0 {
			results = append(results, RecordResult{Success: false, Message: "record not found"})
		} else {
			results = append(results, RecordResult{Success: true})
		}
	}

	return BatchResponse{Success: true, Results: results}, nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanRecord(row rowScanner, fields []string) (Record, error) {
	var id int
	values := make([]sql.NullString, len(fields))
	dest := make([]interface{}, 0, len(fields)+1)
	dest = append(dest, &id)
	for i := range values {
		dest = append(dest, &values[i])
	}

	if err := row.Scan(dest...); err != nil {
		return Record{}, err
	}

	record := Record{ID: id, Fields: make(map[string]string, len(fields))}
	for i, f := range fields {
		record.Fields[f] = values[i].String
	}
	return record, nil
}

func isConstraintViolation(err error) bool {
	pqErr, ok := err.(*pq.Error)
	if !ok {
		return false
	}
	return pqErr.Code.Class() == "23"
}

func keys(m map[string]string) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	return out
}

func copyFields(m map[string]string) map[string]string {
	out := make(map[string]string, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}
