package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"cepbook/internal/address/models"
	"cepbook/internal/sentinel"
	dErrors "cepbook/pkg/domain-errors"
	"cepbook/pkg/platform/httputil"
	"cepbook/pkg/requestcontext"
)

// Lookuper resolves a postal code to an address.
type Lookuper interface {
	Lookup(ctx context.Context, code string) (*models.Address, error)
}

type Handler struct {
	client Lookuper
	logger *slog.Logger
}

func New(client Lookuper, logger *slog.Logger) *Handler {
	return &Handler{client: client, logger: logger}
}

func (h *Handler) Register(r chi.Router) {
	r.Get("/cep/{code}", h.HandleLookup)
}

// AddressResponse carries a resolved address with the provider's field
// vocabulary (cep, uf).
type AddressResponse struct {
	PostalCode string `json:"cep"`
	Street     string `json:"street"`
	City       string `json:"city"`
	StateCode  string `json:"uf"`
	Complement string `json:"complement,omitempty"`
}

// HandleLookup resolves one postal code.
func (h *Handler) HandleLookup(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	code := chi.URLParam(r, "code")

	address, err := h.client.Lookup(ctx, code)
	if err != nil {
		httputil.WriteError(w, translateLookupErr(err))
		h.logger.InfoContext(ctx, "cep lookup did not resolve",
			"error", err, "request_id", requestcontext.RequestID(ctx))
		return
	}

	httputil.WriteJSON(w, http.StatusOK, AddressResponse{
		PostalCode: address.PostalCode,
		Street:     address.Street,
		City:       address.City,
		StateCode:  address.StateCode,
		Complement: address.Complement,
	})
}

func translateLookupErr(err error) error {
	switch {
	case dErrors.HasCode(err, dErrors.CodeInvalidInput):
		return err
	case errors.Is(err, sentinel.ErrNotFound):
		return dErrors.New(dErrors.CodeNotFound, "no address for postal code")
	case errors.Is(err, sentinel.ErrUnavailable):
		return dErrors.New(dErrors.CodeUnavailable, "postal code provider unavailable")
	default:
		return dErrors.Wrap(err, dErrors.CodeInternal, "postal code lookup failed")
	}
}
