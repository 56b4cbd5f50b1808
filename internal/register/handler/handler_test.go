package handler

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/suite"

	addressservice "cepbook/internal/address/service"
	"cepbook/internal/address/store"
	"cepbook/internal/cep"
	"cepbook/internal/register"
)

// HandlerSuite wires the full registration path: a ViaCEP-shaped fake
// provider, the lookup client, the session manager and the HTTP surface.
type HandlerSuite struct {
	suite.Suite
	router  http.Handler
	records *store.InMemory
}

func (s *HandlerSuite) SetupTest() {
	provider := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/ws/01310100/json/":
			_, _ = w.Write([]byte(`{
				"cep": "01310-100",
				"logradouro": "Avenida Paulista",
				"localidade": "São Paulo",
				"uf": "SP"
			}`))
		default:
			_, _ = w.Write([]byte(`{"erro": true}`))
		}
	}))
	s.T().Cleanup(provider.Close)

	logger := slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))
	s.records = store.NewInMemory()
	records := addressservice.New(s.records, addressservice.WithLogger(logger))
	lookup := cep.NewClient(provider.URL, 2*time.Second, cep.WithLogger(logger))
	manager := register.NewManager(lookup, records, register.WithLogger(logger))

	h := New(manager, logger)
	r := chi.NewRouter()
	h.Register(r)
	s.router = r
}

func TestHandlerSuite(t *testing.T) {
	suite.Run(t, new(HandlerSuite))
}

func (s *HandlerSuite) do(method, path, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	return rec
}

func (s *HandlerSuite) startSession() string {
	rec := s.do(http.MethodPost, "/registration", "")
	s.Require().Equal(http.StatusCreated, rec.Code, rec.Body.String())

	var resp StartResponse
	s.Require().NoError(json.Unmarshal(rec.Body.Bytes(), &resp))
	s.Require().NotEmpty(resp.SessionID)
	s.Equal("empty", resp.Form.State)
	return resp.SessionID
}

func (s *HandlerSuite) edit(sessionID, field, value string) SnapshotResponse {
	rec := s.do(http.MethodPatch, "/registration/"+sessionID,
		`{"field": "`+field+`", "value": "`+value+`"}`)
	s.Require().Equal(http.StatusOK, rec.Code, rec.Body.String())

	var resp SnapshotResponse
	s.Require().NoError(json.Unmarshal(rec.Body.Bytes(), &resp))
	return resp
}

func (s *HandlerSuite) snapshot(sessionID string) SnapshotResponse {
	rec := s.do(http.MethodGet, "/registration/"+sessionID, "")
	s.Require().Equal(http.StatusOK, rec.Code, rec.Body.String())

	var resp SnapshotResponse
	s.Require().NoError(json.Unmarshal(rec.Body.Bytes(), &resp))
	return resp
}

func (s *HandlerSuite) waitForState(sessionID, state string) SnapshotResponse {
	var snap SnapshotResponse
	s.Require().Eventually(func() bool {
		snap = s.snapshot(sessionID)
		return snap.State == state
	}, time.Second, 5*time.Millisecond)
	return snap
}

func (s *HandlerSuite) TestCompletedPostalCodeResolvesAddress() {
	sessionID := s.startSession()

	snap := s.edit(sessionID, "cep", "01310100")
	s.Equal("lookup_pending", snap.State)
	s.Equal("01310-100", snap.Values["cep"])

	snap = s.waitForState(sessionID, "lookup_resolved")
	s.Equal("Avenida Paulista", snap.Values["street"])
	s.Equal("São Paulo", snap.Values["city"])
	s.Equal("SP", snap.Values["uf"])
	s.True(snap.Locked)
}

func (s *HandlerSuite) TestUnknownPostalCodeFallsBackToManualEntry() {
	sessionID := s.startSession()
	s.edit(sessionID, "cep", "99999999")

	snap := s.waitForState(sessionID, "lookup_failed")
	s.False(snap.Locked)
	s.NotEmpty(snap.Advisory)

	snap = s.edit(sessionID, "street", "Rua Manual de Entrada")
	s.Equal("Rua Manual de Entrada", snap.Values["street"])
}

func (s *HandlerSuite) TestLockedFieldEditIsRejected() {
	sessionID := s.startSession()
	s.edit(sessionID, "cep", "01310100")
	s.waitForState(sessionID, "lookup_resolved")

	rec := s.do(http.MethodPatch, "/registration/"+sessionID,
		`{"field": "street", "value": "Rua Qualquer"}`)
	s.Equal(http.StatusConflict, rec.Code)
}

func (s *HandlerSuite) TestSubmitFlow() {
	sessionID := s.startSession()
	s.edit(sessionID, "name", "Maria Souza")
	s.edit(sessionID, "number", "1000")
	s.edit(sessionID, "cep", "01310100")
	snap := s.waitForState(sessionID, "lookup_resolved")
	s.True(snap.CanSubmit)

	rec := s.do(http.MethodPost, "/registration/"+sessionID+"/submit", "")
	s.Require().Equal(http.StatusCreated, rec.Code, rec.Body.String())

	var record RecordResponse
	s.Require().NoError(json.Unmarshal(rec.Body.Bytes(), &record))
	s.Equal("Maria Souza", record.Name)
	s.Equal("01310-100", record.PostalCode)
	s.NotEmpty(record.ID)

	// The session is consumed; a second submit cannot duplicate the record.
	rec = s.do(http.MethodPost, "/registration/"+sessionID+"/submit", "")
	s.Equal(http.StatusNotFound, rec.Code)
}

func (s *HandlerSuite) TestSubmitIncompleteDraftRejected() {
	sessionID := s.startSession()
	rec := s.do(http.MethodPost, "/registration/"+sessionID+"/submit", "")
	s.Equal(http.StatusBadRequest, rec.Code)
}

func (s *HandlerSuite) TestAbandon() {
	sessionID := s.startSession()

	rec := s.do(http.MethodDelete, "/registration/"+sessionID, "")
	s.Equal(http.StatusNoContent, rec.Code)

	rec = s.do(http.MethodGet, "/registration/"+sessionID, "")
	s.Equal(http.StatusNotFound, rec.Code)
}

func (s *HandlerSuite) TestValidityIsReportedPerField() {
	sessionID := s.startSession()

	snap := s.edit(sessionID, "name", "Ana")
	s.Equal("invalid", snap.Validity["name"])
	s.Equal("not_evaluated", snap.Validity["number"])

	snap = s.edit(sessionID, "name", "Ana Silva")
	s.Equal("valid", snap.Validity["name"])
}

func (s *HandlerSuite) TestMalformedSessionIDReturns400() {
	rec := s.do(http.MethodGet, "/registration/not-a-uuid", "")
	s.Equal(http.StatusBadRequest, rec.Code)
}
