package handler

import (
	"cepbook/internal/address/models"
)

// RecordResponse mirrors the export contract of the original client:
// cep and uf as field names, createdAt in epoch milliseconds.
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

type RecordListResponse struct {
	Records []RecordResponse `json:"records"`
	Total   int              `json:"total"`
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

func toRecordListResponse(records []models.AddressRecord) RecordListResponse {
	out := RecordListResponse{Records: make([]RecordResponse, 0, len(records))}
	for i := range records {
		out.Records = append(out.Records, toRecordResponse(&records[i]))
	}
	out.Total = len(out.Records)
	return out
}
