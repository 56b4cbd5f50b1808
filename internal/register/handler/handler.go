package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"cepbook/internal/address/models"
	"cepbook/internal/register"
	id "cepbook/pkg/domain"
	dErrors "cepbook/pkg/domain-errors"
	"cepbook/pkg/platform/httputil"
	"cepbook/pkg/requestcontext"
)

// Sessions is the draft lifecycle the HTTP surface depends on.
type Sessions interface {
	Start(ctx context.Context) (id.SessionID, register.Snapshot)
	Edit(ctx context.Context, sessionID id.SessionID, field register.Field, value string) (register.Snapshot, error)
	Snapshot(ctx context.Context, sessionID id.SessionID) (register.Snapshot, error)
	Submit(ctx context.Context, sessionID id.SessionID) (*models.AddressRecord, error)
	Abandon(ctx context.Context, sessionID id.SessionID) error
}

type Handler struct {
	sessions Sessions
	logger   *slog.Logger
}

func New(sessions Sessions, logger *slog.Logger) *Handler {
	return &Handler{sessions: sessions, logger: logger}
}

func (h *Handler) Register(r chi.Router) {
	r.Post("/registration", h.HandleStart)
	r.Get("/registration/{id}", h.HandleSnapshot)
	r.Patch("/registration/{id}", h.HandleEdit)
	r.Post("/registration/{id}/submit", h.HandleSubmit)
	r.Delete("/registration/{id}", h.HandleAbandon)
}

// HandleStart opens a fresh registration draft.
func (h *Handler) HandleStart(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	sessionID, snap := h.sessions.Start(ctx)
	httputil.WriteJSON(w, http.StatusCreated, toStartResponse(sessionID, snap))
}

// HandleSnapshot returns the draft's current state.
func (h *Handler) HandleSnapshot(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	sessionID, err := id.ParseSessionID(chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid session id"))
		return
	}

	snap, err := h.sessions.Snapshot(ctx, sessionID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, toSnapshotResponse(snap))
}

// HandleEdit applies one field change to the draft.
func (h *Handler) HandleEdit(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)
	sessionID, err := id.ParseSessionID(chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid session id"))
		return
	}

	req, ok := httputil.DecodeAndPrepare[EditFieldRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	snap, err := h.sessions.Edit(ctx, sessionID, register.Field(req.Field), req.Value)
	if err != nil {
		h.logger.WarnContext(ctx, "session edit rejected", "error", err,
			"request_id", requestID, "session_id", sessionID, "field", req.Field)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, toSnapshotResponse(snap))
}

// HandleSubmit commits the draft into a record.
func (h *Handler) HandleSubmit(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	sessionID, err := id.ParseSessionID(chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid session id"))
		return
	}

	record, err := h.sessions.Submit(ctx, sessionID)
	if err != nil {
		h.logger.WarnContext(ctx, "session submit rejected", "error", err,
			"request_id", requestcontext.RequestID(ctx), "session_id", sessionID)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, toRecordResponse(record))
}

// HandleAbandon discards the draft.
func (h *Handler) HandleAbandon(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	sessionID, err := id.ParseSessionID(chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid session id"))
		return
	}

	if err := h.sessions.Abandon(ctx, sessionID); err != nil {
		httputil.WriteError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
