package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"cepbook/internal/address/models"
	"cepbook/internal/address/service"
	id "cepbook/pkg/domain"
	dErrors "cepbook/pkg/domain-errors"
	"cepbook/pkg/platform/httputil"
	"cepbook/pkg/requestcontext"
)

// Service defines the record operations the HTTP surface depends on.
// Returns domain objects, not HTTP response DTOs.
type Service interface {
	CreateRecord(ctx context.Context, cmd service.CreateRecordCommand) (*models.AddressRecord, error)
	ListRecords(ctx context.Context) ([]models.AddressRecord, error)
	SearchRecords(ctx context.Context, query string) ([]models.AddressRecord, error)
	GetRecord(ctx context.Context, recordID id.RecordID) (*models.AddressRecord, error)
	DeleteRecord(ctx context.Context, recordID id.RecordID) error
}

type Handler struct {
	service Service
	logger  *slog.Logger
}

func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

func (h *Handler) Register(r chi.Router) {
	r.Post("/records", h.HandleCreateRecord)
	r.Get("/records", h.HandleListRecords)
	r.Get("/records/search", h.HandleSearchRecords)
	r.Get("/records/{id}", h.HandleGetRecord)
	r.Delete("/records/{id}", h.HandleDeleteRecord)
}

// HandleCreateRecord persists a new address record.
func (h *Handler) HandleCreateRecord(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	req, ok := httputil.DecodeAndPrepare[CreateRecordRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	record, err := h.service.CreateRecord(ctx, req.Command())
	if err != nil {
		h.logger.ErrorContext(ctx, "create record failed", "error", err, "request_id", requestID)
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusCreated, toRecordResponse(record))
}

// HandleListRecords returns the whole collection, newest first.
func (h *Handler) HandleListRecords(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	records, err := h.service.ListRecords(ctx)
	if err != nil {
		h.logger.ErrorContext(ctx, "list records failed", "error", err,
			"request_id", requestcontext.RequestID(ctx))
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, toRecordListResponse(records))
}

// HandleSearchRecords filters the collection by name.
func (h *Handler) HandleSearchRecords(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	query := r.URL.Query().Get("q")

	records, err := h.service.SearchRecords(ctx, query)
	if err != nil {
		h.logger.ErrorContext(ctx, "search records failed", "error", err,
			"request_id", requestcontext.RequestID(ctx))
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, toRecordListResponse(records))
}

// HandleGetRecord returns one record by id.
func (h *Handler) HandleGetRecord(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	recordID, err := id.ParseRecordID(chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid record id"))
		return
	}

	record, err := h.service.GetRecord(ctx, recordID)
	if err != nil {
		h.logger.WarnContext(ctx, "get record failed", "error", err,
			"request_id", requestcontext.RequestID(ctx), "record_id", recordID)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, toRecordResponse(record))
}

// HandleDeleteRecord removes one record by id.
func (h *Handler) HandleDeleteRecord(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	recordID, err := id.ParseRecordID(chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid record id"))
		return
	}

	if err := h.service.DeleteRecord(ctx, recordID); err != nil {
		h.logger.WarnContext(ctx, "delete record failed", "error", err,
			"request_id", requestcontext.RequestID(ctx), "record_id", recordID)
		httputil.WriteError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
