package services

import (
	"parcel-booking-service/internal/domain"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// Tariff in whole currency units.
const (
	documentIntraFee    = 60
	documentInterFee    = 80
	nonDocumentIntraFee = 110
	nonDocumentInterFee = 150
	extraWeightFeePerKg = 40
	outsideDistrictFee  = 40
	includedWeightKg    = 3
)

// MaxWeightKg is the heaviest parcel that can be booked. Quotes for anything
// heavier are priced at this weight.
const MaxWeightKg = 1000

const (
	maxWeightInputLen = 32
	// Parsed weights are held at or below weightCeilingKg so that anything
	// above MaxWeightKg stays distinguishable without unbounded arithmetic.
	weightCeilingKg = 1_000_000
	// Values under 10^-16 kg are treated as zero.
	minWeightMagnitude = -16
)

var (
	includedWeight    = decimal.NewFromInt(includedWeightKg)
	maxBillableWeight = decimal.NewFromInt(MaxWeightKg)
	weightCeiling     = decimal.NewFromInt(weightCeilingKg)
)

// EstimateCost prices a parcel quote.
//
// Documents are flat-priced by district match. Non-documents pay a base fee
// plus 40 per started kilogram above 3kg; a cross-district parcel with any
// overage pays one extra flat 40. Weights above MaxWeightKg are billed as
// MaxWeightKg. The function is pure and safe for concurrent use.
func EstimateCost(q domain.Quote) domain.Estimate {
	intra := q.IsIntraDistrict()

	if q.ParcelType == domain.ParcelTypeDocument {
		fee := int64(documentInterFee)
		if intra {
			fee = documentIntraFee
		}
		return domain.Estimate{
			Cost:      fee,
			Breakdown: []domain.LineItem{{Label: "document fee", Amount: fee}},
		}
	}

	base := int64(nonDocumentInterFee)
	if intra {
		base = nonDocumentIntraFee
	}
	est := domain.Estimate{
		Cost:      base,
		Breakdown: []domain.LineItem{{Label: "non-document base fee", Amount: base}},
	}

	weight := BillableWeight(q.WeightKg)
	if !weight.GreaterThan(includedWeight) {
		return est
	}

	// Any fractional kilogram over the threshold is billed as a whole one.
	extraKg := weight.Sub(includedWeight).Ceil().IntPart()
	extraFee := extraKg * extraWeightFeePerKg
	est.ExtraKg = extraKg
	est.Cost += extraFee
	est.Breakdown = append(est.Breakdown, domain.LineItem{Label: "extra weight charge", Amount: extraFee})

	if !intra && extraKg > 0 {
		est.Cost += outsideDistrictFee
		est.Breakdown = append(est.Breakdown, domain.LineItem{Label: "outside district charge", Amount: outsideDistrictFee})
	}

	return est
}

// BillableWeight is the weight a non-document is charged for: w held to the
// range [0, MaxWeightKg].
func BillableWeight(w decimal.Decimal) decimal.Decimal {
	return decimal.Min(boundWeight(w), maxBillableWeight)
}

// ParseWeight reads a weight in kilograms. Blank, unparseable or negative
// input is treated as zero, which prices a non-document at its base fee.
// Very large values are held at a ceiling well above MaxWeightKg.
func ParseWeight(s string) decimal.Decimal {
	s = strings.TrimSpace(s)
	if s == "" || len(s) > maxWeightInputLen {
		return decimal.Zero
	}

	w, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero
	}
	return boundWeight(w)
}

// boundWeight maps w into [0, weightCeiling] using only its coefficient and
// exponent before comparing, so extreme exponents never get rescaled.
func boundWeight(w decimal.Decimal) decimal.Decimal {
	if w.Sign() <= 0 {
		return decimal.Zero
	}

	// w < 10^magnitude
	magnitude := len(w.Coefficient().String()) + int(w.Exponent())
	switch {
	case magnitude > len(strconv.Itoa(weightCeilingKg)):
		return weightCeiling
	case magnitude < minWeightMagnitude:
		return decimal.Zero
	}
	return decimal.Min(w, weightCeiling)
}
