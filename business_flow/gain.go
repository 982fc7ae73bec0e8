package businessflow

import (
	"math"
	"strconv"
	"strings"

	"github.com/goldfolio/goldfolio-api/models"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var rupiahPrinter = message.NewPrinter(language.German)

// ParseSellingPrice turns grouped-digit text such as "1.234.567" or "Rp 1.234.567/gram"
// into whole currency units. Text without digits yields ErrPriceUnavailable.
func ParseSellingPrice(text string) (int64, error) {
	digits := strings.Map(func(r rune) rune {
		if r >= '0' && r <= '9' {
			return r
		}
		return -1
	}, text)
	if digits == "" {
		return 0, ErrPriceUnavailable
	}
	price, err := strconv.ParseInt(digits, 10, 64)
	if err != nil {
		return 0, ErrPriceUnavailable
	}
	return price, nil
}

// SellingValue is what the lot would fetch today at the given price per gram
func SellingValue(lot *models.PortfolioLot, sellingPricePerGram int64) float64 {
	return float64(sellingPricePerGram) * lot.GoldWeight
}

// Gain is the selling value minus the total paid for the lot
func Gain(lot *models.PortfolioLot, sellingPricePerGram int64) float64 {
	return SellingValue(lot, sellingPricePerGram) - lot.GoldBuyingPrice
}

func TotalWeight(lots []*models.PortfolioLot) float64 {
	total := 0.0
	for _, lot := range lots {
		total += lot.GoldWeight
	}
	return total
}

func TotalGain(lots []*models.PortfolioLot, sellingPricePerGram int64) float64 {
	total := 0.0
	for _, lot := range lots {
		total += Gain(lot, sellingPricePerGram)
	}
	return total
}

// FormatAmount rounds to whole units and groups digits with "." (1234567 -> "1.234.567")
func FormatAmount(v float64) string {
	return rupiahPrinter.Sprintf("%d", int64(math.Round(v)))
}

// FormatGain formats like FormatAmount with an explicit "+" on strictly positive gains
func FormatGain(v float64) string {
	if v > 0 {
		return "+" + FormatAmount(v)
	}
	return FormatAmount(v)
}

// FormatWeight renders grams with up to three decimals in German notation (1234.5 -> "1.234,5")
func FormatWeight(v float64) string {
	rounded := math.Round(math.Abs(v)*1000) / 1000
	whole, frac, _ := strings.Cut(strconv.FormatFloat(rounded, 'f', -1, 64), ".")
	n, _ := strconv.ParseInt(whole, 10, 64)
	out := rupiahPrinter.Sprintf("%d", n)
	if frac != "" {
		out += "," + frac
	}
	if v < 0 && rounded != 0 {
		out = "-" + out
	}
	return out
}
