package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"cepbook/internal/address/models"
	"cepbook/internal/sentinel"
	id "cepbook/pkg/domain"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
)

// Postgres persists address records one row per record, so create and delete
// touch a single row instead of rewriting the whole collection. The
// search_name column carries the normalized name so substring search runs in
// SQL with the same case and accent folding the in-memory store applies.
type Postgres struct {
	db *sql.DB
}

// NewPostgres constructs a PostgreSQL-backed record store.
func NewPostgres(db *sql.DB) *Postgres {
	return &Postgres{db: db}
}

// Create inserts the record.
func (s *Postgres) Create(ctx context.Context, record *models.AddressRecord) error {
	if record == nil {
		return fmt.Errorf("record is required")
	}
	query := `
		INSERT INTO address_records (id, name, search_name, postal_code, street, number, city, state_code, complement, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`
	_, err := s.db.ExecContext(ctx, query,
		uuid.UUID(record.ID),
		record.Name,
		NormalizeText(record.Name),
		record.PostalCode,
		record.Street,
		record.Number,
		record.City,
		record.StateCode,
		record.Complement,
		record.CreatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("record id already present: %w", sentinel.ErrInvalidInput)
		}
		return fmt.Errorf("create record: %w", err)
	}
	return nil
}

// ListAll returns every record.
func (s *Postgres) ListAll(ctx context.Context) ([]models.AddressRecord, error) {
	query := `
		SELECT id, name, postal_code, street, number, city, state_code, complement, created_at
		FROM address_records
	`
	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list records: %w", err)
	}
	defer rows.Close()
	return collectRecords(rows)
}

// GetByID retrieves a record by its UUID; absence is sentinel.ErrNotFound.
func (s *Postgres) GetByID(ctx context.Context, recordID id.RecordID) (*models.AddressRecord, error) {
	query := `
		SELECT id, name, postal_code, street, number, city, state_code, complement, created_at
		FROM address_records
		WHERE id = $1
	`
	record, err := scanRecord(s.db.QueryRowContext(ctx, query, uuid.UUID(recordID)))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("get record by id: %w", err)
	}
	return record, nil
}

// SearchByName matches the normalized query as a substring of the
// normalized name.
func (s *Postgres) SearchByName(ctx context.Context, query string) ([]models.AddressRecord, error) {
	trimmed := strings.TrimSpace(query)
	if trimmed == "" {
		return nil, nil
	}
	stmt := `
		SELECT id, name, postal_code, street, number, city, state_code, complement, created_at
		FROM address_records
		WHERE search_name LIKE '%' || $1 || '%'
	`
	rows, err := s.db.QueryContext(ctx, stmt, escapeLike(NormalizeText(trimmed)))
	if err != nil {
		return nil, fmt.Errorf("search records: %w", err)
	}
	defer rows.Close()
	return collectRecords(rows)
}

// Delete removes the record, reporting whether a row existed.
func (s *Postgres) Delete(ctx context.Context, recordID id.RecordID) (bool, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM address_records WHERE id = $1`, uuid.UUID(recordID))
	if err != nil {
		return false, fmt.Errorf("delete record: %w", err)
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("delete record rows: %w", err)
	}
	return rows > 0, nil
}

type recordRow interface {
	Scan(dest ...any) error
}

func scanRecord(row recordRow) (*models.AddressRecord, error) {
	var record models.AddressRecord
	var recordID uuid.UUID
	if err := row.Scan(
		&recordID,
		&record.Name,
		&record.PostalCode,
		&record.Street,
		&record.Number,
		&record.City,
		&record.StateCode,
		&record.Complement,
		&record.CreatedAt,
	); err != nil {
		return nil, err
	}
	record.ID = id.RecordID(recordID)
	return &record, nil
}

func collectRecords(rows *sql.Rows) ([]models.AddressRecord, error) {
	var records []models.AddressRecord
	for rows.Next() {
		record, err := scanRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("scan record: %w", err)
		}
		records = append(records, *record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate records: %w", err)
	}
	return records, nil
}

// escapeLike neutralizes LIKE metacharacters in user-supplied queries.
func escapeLike(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	s = strings.ReplaceAll(s, `%`, `\%`)
	s = strings.ReplaceAll(s, `_`, `\_`)
	return s
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505"
	}
	return false
}
