package domain

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// ParcelType distinguishes flat-priced documents from weight-priced goods.
type ParcelType string

const (
	ParcelTypeDocument    ParcelType = "document"
	ParcelTypeNonDocument ParcelType = "non-document"
)

// ParseParcelType accepts the canonical spellings as well as the legacy
// "Document" / "Not-Document" values sent by the booking form.
func ParseParcelType(s string) (ParcelType, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "document":
		return ParcelTypeDocument, nil
	case "non-document", "not-document", "nondocument":
		return ParcelTypeNonDocument, nil
	default:
		return "", fmt.Errorf("parse parcel type: unknown value %q", s)
	}
}

// Quote is the ephemeral input of a cost calculation. It is never stored.
type Quote struct {
	ParcelType          ParcelType
	WeightKg            decimal.Decimal
	OriginDistrict      string
	DestinationDistrict string
}

// IsIntraDistrict reports whether origin and destination are the same district.
// The comparison is exact; district identifiers are not normalized.
func (q Quote) IsIntraDistrict() bool {
	return q.OriginDistrict == q.DestinationDistrict
}

// LineItem is one labelled component of an estimate.
type LineItem struct {
	Label  string
	Amount int64
}

// Estimate is the output of a cost calculation.
// The amounts of Breakdown always sum to Cost.
type Estimate struct {
	Cost      int64
	ExtraKg   int64
	Breakdown []LineItem
}
