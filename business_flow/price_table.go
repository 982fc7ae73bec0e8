package businessflow

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/goldfolio/goldfolio-api/models"
	"github.com/shopspring/decimal"
)

// PriceTableLayout describes where the denomination rows and the selling price marker sit in the source table
type PriceTableLayout struct {
	HeaderRows       int
	DenominationRows int
}

// DefaultPriceTableLayout matches the history page of harga-emas.org
var DefaultPriceTableLayout = PriceTableLayout{HeaderRows: 2, DenominationRows: 12}

// ParsedPriceTable is the result of parsing one day's table
type ParsedPriceTable struct {
	Points       models.PricePoints
	SellingPrice string
}

var (
	sellingPricePattern = regexp.MustCompile(`Rp\.?\s*([\d.,]+)/gram`)
	amountPrefixPattern = regexp.MustCompile(`^(?:Rp\.?\s*)?([\d.,]+)`)
	gramLabelPattern    = regexp.MustCompile(`^(\d+(?:[.,]\d+)?)(?:\s*/\s*(\d+))?$`)
	gramSuffixPattern   = regexp.MustCompile(`(?i)\s*(?:gram|gr|g)$`)
)

const unitPriceScale = 2

// ParsePriceTable turns raw table rows into an ordered denomination table and the selling price text.
// Rows are cell texts in source order, header rows included.
func ParsePriceTable(rows [][]string, layout PriceTableLayout) (*ParsedPriceTable, error) {
	if layout.HeaderRows < 0 || layout.DenominationRows <= 0 {
		return nil, fmt.Errorf("%w: invalid table layout %+v", ErrParseFailed, layout)
	}
	if len(rows) <= layout.HeaderRows+layout.DenominationRows {
		return nil, fmt.Errorf("%w: expected at least %d rows, got %d", ErrParseFailed, layout.HeaderRows+layout.DenominationRows+1, len(rows))
	}

	body := rows[layout.HeaderRows:]
	marker := body[layout.DenominationRows]
	if len(marker) == 0 {
		return nil, fmt.Errorf("%w: selling price row is empty", ErrParseFailed)
	}
	sellingPrice, err := ExtractSellingPrice(marker[0])
	if err != nil {
		return nil, err
	}

	points := make(models.PricePoints, 0, layout.DenominationRows)
	for i, row := range body[:layout.DenominationRows] {
		if len(row) < 3 {
			return nil, fmt.Errorf("%w: denomination row %d has %d cells", ErrParseFailed, i, len(row))
		}
		point, err := NewPricePoint(row[0], row[1], row[2])
		if err != nil {
			return nil, fmt.Errorf("denomination row %d: %w", i, err)
		}
		points = append(points, point)
	}

	return &ParsedPriceTable{Points: points, SellingPrice: sellingPrice}, nil
}

// ExtractSellingPrice finds "Rp<digits>/gram" in text and returns the grouped digits ("1.234.567")
func ExtractSellingPrice(text string) (string, error) {
	m := sellingPricePattern.FindStringSubmatch(text)
	if m == nil {
		return "", fmt.Errorf("%w: selling price not found in %q", ErrParseFailed, text)
	}
	price := strings.TrimRight(m[1], ".,")
	if _, err := ParseSellingPrice(price); err != nil {
		return "", fmt.Errorf("%w: selling price %q has no digits", ErrParseFailed, m[1])
	}
	return price, nil
}

// NewPricePoint builds a point from the three source columns and derives the unit price per gram
func NewPricePoint(gram, totalPrice, perGramPrice string) (models.PricePoint, error) {
	grams, err := ParseGramLabel(gram)
	if err != nil {
		return models.PricePoint{}, err
	}
	total, err := ParseAmountPrefix(totalPrice)
	if err != nil {
		return models.PricePoint{}, err
	}
	return models.PricePoint{
		Gram:             strings.TrimSpace(gram),
		TotalPrice:       strings.TrimSpace(totalPrice),
		PerGramPrice:     strings.TrimSpace(perGramPrice),
		UnitPricePerGram: total.DivRound(grams, unitPriceScale),
	}, nil
}

// ParseGramLabel reads a denomination label such as "0.5", "0,5", "1/2", "100 gr" as grams.
// Anything else, and any non-positive value, is rejected.
func ParseGramLabel(label string) (decimal.Decimal, error) {
	s := strings.TrimSpace(gramSuffixPattern.ReplaceAllString(strings.TrimSpace(label), ""))
	m := gramLabelPattern.FindStringSubmatch(s)
	if m == nil {
		return decimal.Zero, fmt.Errorf("%w: %q", ErrUnrecognizedDenomination, label)
	}

	value, err := decimal.NewFromString(strings.Replace(m[1], ",", ".", 1))
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: %q", ErrUnrecognizedDenomination, label)
	}
	if m[2] != "" {
		denominator, err := decimal.NewFromString(m[2])
		if err != nil || denominator.IsZero() {
			return decimal.Zero, fmt.Errorf("%w: %q", ErrUnrecognizedDenomination, label)
		}
		value = value.Div(denominator)
	}
	if !value.IsPositive() {
		return decimal.Zero, fmt.Errorf("%w: %q", ErrUnrecognizedDenomination, label)
	}
	return value, nil
}

// ParseAmountPrefix reads the leading grouped amount of a quote ("1.234.567 (+2.000)" -> 1234567).
// "." groups digits and "," starts the fraction.
func ParseAmountPrefix(text string) (decimal.Decimal, error) {
	m := amountPrefixPattern.FindStringSubmatch(strings.TrimSpace(text))
	if m == nil {
		return decimal.Zero, fmt.Errorf("%w: no amount in %q", ErrParseFailed, text)
	}
	digits := strings.TrimRight(m[1], ".,")
	digits = strings.ReplaceAll(digits, ".", "")
	digits = strings.Replace(digits, ",", ".", 1)
	amount, err := decimal.NewFromString(digits)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: no amount in %q", ErrParseFailed, text)
	}
	return amount, nil
}
