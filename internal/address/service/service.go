// Package service orchestrates the address-record use cases on top of a
// pluggable record store.
package service

import (
	"context"
	"errors"
	"log/slog"
	"sort"
	"time"

	addressmetrics "cepbook/internal/address/metrics"
	"cepbook/internal/address/models"
	"cepbook/internal/sentinel"
	id "cepbook/pkg/domain"
	dErrors "cepbook/pkg/domain-errors"
)

//go:generate mockgen -source=service.go -destination=mocks/store_mock.go -package=mocks

// RecordStore is the persistence contract consumed by the service.
type RecordStore interface {
	Create(ctx context.Context, record *models.AddressRecord) error
	ListAll(ctx context.Context) ([]models.AddressRecord, error)
	GetByID(ctx context.Context, recordID id.RecordID) (*models.AddressRecord, error)
	SearchByName(ctx context.Context, query string) ([]models.AddressRecord, error)
	Delete(ctx context.Context, recordID id.RecordID) (bool, error)
}

// Service orchestrates record creation, listing, search and deletion.
type Service struct {
	records RecordStore
	logger  *slog.Logger
	metrics *addressmetrics.Metrics
	now     func() time.Time
}

func New(records RecordStore, opts ...Option) *Service {
	s := &Service{
		records: records,
		logger:  slog.Default(),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// CreateRecord validates the command, canonicalizes its fields and persists a
// fresh record. Write failures propagate as domain errors.
func (s *Service) CreateRecord(ctx context.Context, cmd CreateRecordCommand) (*models.AddressRecord, error) {
	cmd.Canonicalize()
	if err := cmd.Validate(); err != nil {
		return nil, err
	}

	record, err := models.NewAddressRecord(id.NewRecordID(), cmd.Fields(), s.now().UTC())
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to build record")
	}

	if err := s.records.Create(ctx, record); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to save record")
	}

	s.logger.InfoContext(ctx, "record created", "record_id", record.ID)
	s.incrementCreated()
	return record, nil
}

// ListRecords returns every record, newest first. A failing store degrades to
// an empty list so the listing surface stays available.
func (s *Service) ListRecords(ctx context.Context) ([]models.AddressRecord, error) {
	records, err := s.records.ListAll(ctx)
	if err != nil {
		s.degradeRead(ctx, "list", err)
		return nil, nil
	}
	sortNewestFirst(records)
	return records, nil
}

// SearchRecords returns records whose name contains the query, ignoring case
// and accents. An empty query is an empty result, not an error.
func (s *Service) SearchRecords(ctx context.Context, query string) ([]models.AddressRecord, error) {
	s.incrementSearches()
	records, err := s.records.SearchByName(ctx, query)
	if err != nil {
		s.degradeRead(ctx, "search", err)
		return nil, nil
	}
	sortNewestFirst(records)
	return records, nil
}

// GetRecord fetches one record. Both a genuinely absent record and a failing
// store surface as not-found; the messages differ so callers can tell which.
func (s *Service) GetRecord(ctx context.Context, recordID id.RecordID) (*models.AddressRecord, error) {
	if recordID.IsNil() {
		return nil, dErrors.New(dErrors.CodeBadRequest, "record ID required")
	}
	record, err := s.records.GetByID(ctx, recordID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "record not found")
		}
		s.degradeRead(ctx, "get", err)
		return nil, dErrors.New(dErrors.CodeNotFound, "record unavailable")
	}
	return record, nil
}

// DeleteRecord removes the record, reporting not-found when nothing was
// deleted. Write failures propagate.
func (s *Service) DeleteRecord(ctx context.Context, recordID id.RecordID) error {
	if recordID.IsNil() {
		return dErrors.New(dErrors.CodeBadRequest, "record ID required")
	}
	deleted, err := s.records.Delete(ctx, recordID)
	if err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to delete record")
	}
	if !deleted {
		return dErrors.New(dErrors.CodeNotFound, "record not found")
	}
	s.logger.InfoContext(ctx, "record deleted", "record_id", recordID)
	s.incrementDeleted()
	return nil
}

func (s *Service) degradeRead(ctx context.Context, op string, err error) {
	s.logger.WarnContext(ctx, "record store read failed, degrading",
		"op", op, "error", err)
	if s.metrics != nil {
		s.metrics.IncrementReadDegradation()
	}
}

func (s *Service) incrementCreated() {
	if s.metrics != nil {
		s.metrics.IncrementRecordsCreated()
	}
}

func (s *Service) incrementDeleted() {
	if s.metrics != nil {
		s.metrics.IncrementRecordsDeleted()
	}
}

func (s *Service) incrementSearches() {
	if s.metrics != nil {
		s.metrics.IncrementSearchesRun()
	}
}

func sortNewestFirst(records []models.AddressRecord) {
	sort.SliceStable(records, func(i, j int) bool {
		return records[i].CreatedAt.After(records[j].CreatedAt)
	})
}
