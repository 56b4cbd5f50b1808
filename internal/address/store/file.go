package store

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"cepbook/internal/address/models"
	"cepbook/internal/sentinel"
	id "cepbook/pkg/domain"
)

// File persists the whole collection as one JSON blob under a single path,
// mirroring the key-value contract of the mobile app's device storage: a
// missing file means an empty collection, and every write overwrites the
// whole blob. The serialized field names are a stable contract so data
// written by the original app remains readable.
type File struct {
	path   string
	logger *slog.Logger

	// One writer at a time; the blob is read-modify-written wholesale.
	mu sync.Mutex
}

// NewFile creates a file-backed record store at path.
func NewFile(path string, logger *slog.Logger) *File {
	if logger == nil {
		logger = slog.Default()
	}
	return &File{path: path, logger: logger}
}

// blobRecord is the on-disk representation. Field names follow the original
// export format; createdAt is epoch milliseconds.
type blobRecord struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	PostalCode string `json:"cep"`
	Street     string `json:"street"`
	Number     string `json:"number"`
	City       string `json:"city"`
	StateCode  string `json:"uf"`
	Complement string `json:"complement,omitempty"`
	CreatedAt  int64  `json:"createdAt"`
}

func toBlob(r models.AddressRecord) blobRecord {
	return blobRecord{
		ID:         r.ID.String(),
		Name:       r.Name,
		PostalCode: r.PostalCode,
		Street:     r.Street,
		Number:     r.Number,
		City:       r.City,
		StateCode:  r.StateCode,
		Complement: r.Complement,
		CreatedAt:  r.CreatedAt.UnixMilli(),
	}
}

func fromBlob(b blobRecord) (models.AddressRecord, error) {
	recordID, err := id.ParseRecordID(b.ID)
	if err != nil {
		return models.AddressRecord{}, err
	}
	return models.AddressRecord{
		ID:         recordID,
		Name:       b.Name,
		PostalCode: b.PostalCode,
		Street:     b.Street,
		Number:     b.Number,
		City:       b.City,
		StateCode:  b.StateCode,
		Complement: b.Complement,
		CreatedAt:  time.UnixMilli(b.CreatedAt),
	}, nil
}

// load reads the whole collection. A missing file is an empty collection; a
// corrupt or unreadable file degrades to empty so read paths never fail, per
// the read-failure policy.
func (s *File) load(ctx context.Context) []models.AddressRecord {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if !os.IsNotExist(err) {
			s.logger.WarnContext(ctx, "record blob unreadable, treating as empty",
				"path", s.path, "error", err)
		}
		return nil
	}

	var blobs []blobRecord
	if err := json.Unmarshal(data, &blobs); err != nil {
		s.logger.WarnContext(ctx, "record blob corrupt, treating as empty",
			"path", s.path, "error", err)
		return nil
	}

	records := make([]models.AddressRecord, 0, len(blobs))
	for _, b := range blobs {
		r, err := fromBlob(b)
		if err != nil {
			s.logger.WarnContext(ctx, "skipping blob record with bad id",
				"id", b.ID, "error", err)
			continue
		}
		records = append(records, r)
	}
	return records
}

// save overwrites the whole blob. Write failures propagate to the caller.
func (s *File) save(records []models.AddressRecord) error {
	blobs := make([]blobRecord, 0, len(records))
	for _, r := range records {
		blobs = append(blobs, toBlob(r))
	}

	data, err := json.Marshal(blobs)
	if err != nil {
		return fmt.Errorf("encode record blob: %w", err)
	}
	if dir := filepath.Dir(s.path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create blob directory: %w", err)
		}
	}
	if err := os.WriteFile(s.path, data, 0o644); err != nil {
		return fmt.Errorf("write record blob: %w", err)
	}
	return nil
}

// Create appends the record and rewrites the blob.
func (s *File) Create(ctx context.Context, record *models.AddressRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	records := s.load(ctx)
	for _, r := range records {
		if r.ID == record.ID {
			return fmt.Errorf("record id already present: %w", sentinel.ErrInvalidInput)
		}
	}
	return s.save(append(records, *record))
}

// ListAll returns every record in stored order.
func (s *File) ListAll(ctx context.Context) ([]models.AddressRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.load(ctx), nil
}

// GetByID scans the collection; absence is sentinel.ErrNotFound.
func (s *File) GetByID(ctx context.Context, recordID id.RecordID) (*models.AddressRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, r := range s.load(ctx) {
		if r.ID == recordID {
			out := r
			return &out, nil
		}
	}
	return nil, sentinel.ErrNotFound
}

// SearchByName filters by normalized substring match on the name.
func (s *File) SearchByName(ctx context.Context, query string) ([]models.AddressRecord, error) {
	if strings.TrimSpace(query) == "" {
		return nil, nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return matchByName(s.load(ctx), query), nil
}

// Delete removes the record if present and rewrites the blob.
func (s *File) Delete(ctx context.Context, recordID id.RecordID) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	records := s.load(ctx)
	for i, r := range records {
		if r.ID == recordID {
			records = append(records[:i], records[i+1:]...)
			if err := s.save(records); err != nil {
				return false, err
			}
			return true, nil
		}
	}
	return false, nil
}
