package dto

import (
	"bytes"
	"encoding/json"
	"strings"
)

// Weight accepts a JSON number, a numeric string or null and keeps the
// raw text. Form inputs arrive as strings and may be blank.
type Weight string

func (w *Weight) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	switch {
	case bytes.Equal(b, []byte("null")):
		*w = ""
	case len(b) > 0 && b[0] == '"':
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*w = Weight(strings.TrimSpace(s))
	default:
		var n json.Number
		if err := json.Unmarshal(b, &n); err != nil {
			return err
		}
		*w = Weight(n.String())
	}
	return nil
}

type QuoteRequest struct {
	ParcelType          string `json:"parcel_type"`
	Weight              Weight `json:"weight"`
	OriginDistrict      string `json:"sender_district"`
	DestinationDistrict string `json:"receiver_district"`
}

type LineItemResponse struct {
	Label  string `json:"label"`
	Amount int64  `json:"amount"`
}

type QuoteResponse struct {
	Cost           int64              `json:"cost"`
	ExtraKg        int64              `json:"extra_kg"`
	IntraDistrict  bool               `json:"intra_district"`
	Breakdown      []LineItemResponse `json:"breakdown"`
	BillableWeight string             `json:"billable_weight_kg"`
}
