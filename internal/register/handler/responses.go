package handler

import (
	"cepbook/internal/address/models"
	"cepbook/internal/register"
	id "cepbook/pkg/domain"
)

type StartResponse struct {
	SessionID string           `json:"session_id"`
	Form      SnapshotResponse `json:"form"`
}

// SnapshotResponse is the draft state: values, lock flag, per-field validity
// and an advisory message when the lookup could not help.
type SnapshotResponse struct {
	State     string            `json:"state"`
	Locked    bool              `json:"locked"`
	Advisory  string            `json:"advisory,omitempty"`
	CanSubmit bool              `json:"can_submit"`
	Values    map[string]string `json:"values"`
	Validity  map[string]string `json:"validity"`
}

// RecordResponse mirrors the record vocabulary of the records API.
type RecordResponse struct {
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

func toStartResponse(sessionID id.SessionID, snap register.Snapshot) StartResponse {
	return StartResponse{
		SessionID: sessionID.String(),
		Form:      toSnapshotResponse(snap),
	}
}

func toSnapshotResponse(snap register.Snapshot) SnapshotResponse {
	values := make(map[string]string, len(snap.Values))
	for field, value := range snap.Values {
		values[string(field)] = value
	}
	validity := make(map[string]string, len(snap.Validity))
	for field, v := range snap.Validity {
		validity[string(field)] = v.String()
	}
	return SnapshotResponse{
		State:     snap.State.String(),
		Locked:    snap.Locked,
		Advisory:  snap.Advisory,
		CanSubmit: snap.CanSubmit,
		Values:    values,
		Validity:  validity,
	}
}

func toRecordResponse(r *models.AddressRecord) RecordResponse {
	return RecordResponse{
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
