// Package fees implements the venue's quadratic trading fee schedule.
//
// The published formula is:
//
//	fee = round up(0.07 x C x P x (1-P))
//
// where P is the contract price in dollars and C the contract count, rounded
// up to the next cent. All arithmetic here is integer cents so the ceiling
// is exact; a float implementation drifts on prices like 0.07 and 0.35.
package fees

import "github.com/rickgao/kalshi-trader/internal/model"

// DefaultRate is the venue fee rate in hundredths (7 = 0.07).
const DefaultRate = 7

// Model computes trading fees for a venue-fixed rate.
type Model struct {
	rate int64 // Fee rate in hundredths of the quadratic term
}

// NewModel creates a fee model with the given rate in hundredths.
// NewModel(7) is the standard schedule.
func NewModel(rateHundredths int) Model {
	return Model{rate: int64(rateHundredths)}
}

// DefaultModel returns the standard venue fee schedule.
func DefaultModel() Model {
	return Model{rate: DefaultRate}
}

// Fee returns the fee in cents for trading contracts at priceCents.
//
// With the rate in hundredths, the fee in cents is
//
//	ceil(rate * C * p * (100 - p) / 10000)
//
// for p in cents. Non-positive counts and out-of-range prices carry no fee.
func (m Model) Fee(priceCents, contracts int) model.Cents {
	if contracts <= 0 || priceCents <= 0 || priceCents >= 100 {
		return 0
	}
	n := m.rate * int64(contracts) * int64(priceCents) * int64(100-priceCents)
	return model.Cents((n + 9999) / 10000)
}

// FeeDollars returns the fee as a float dollar amount. Display only.
func (m Model) FeeDollars(priceCents, contracts int) float64 {
	return m.Fee(priceCents, contracts).Dollars()
}
