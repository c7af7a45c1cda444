package roi

import (
	"fmt"
	"math"

	"github.com/dustin/go-humanize"
)

// NotAvailable is rendered in place of NaN and infinite values.
const NotAvailable = "n/a"

// FormatNumber renders v with thousands separators and at most decimals
// fraction digits. Trailing zeros are dropped, so whole numbers never show
// a decimal part.
func FormatNumber(v float64, decimals int) string {
	if !isFinite(v) {
		return NotAvailable
	}
	if decimals < 0 || v == math.Trunc(v) {
		decimals = 0
	}

	scale := math.Pow(10, float64(decimals))
	rounded := math.Round(v*scale) / scale
	if rounded == 0 {
		// avoid "-0"
		rounded = 0
	}
	return humanize.Commaf(rounded)
}

// FormatCurrency renders v as a whole amount prefixed with symbol.
func FormatCurrency(v float64, symbol string) string {
	if !isFinite(v) {
		return NotAvailable
	}
	return symbol + FormatNumber(v, 0)
}

// Summary is the display projection of a Result.
type Summary struct {
	TotalCallsPerDay   string `json:"total_calls_per_day"`
	PotentialCustomers string `json:"potential_customers"`
	LostCustomers      string `json:"lost_customers"`
	MinutesDaily       string `json:"minutes_daily"`
	MinutesMonthly     string `json:"minutes_monthly"`
	SoftwareFee        string `json:"software_fee"`
	MonthlyServiceCost string `json:"monthly_service_cost"`
	DailyRevenueLoss   string `json:"daily_revenue_loss"`
	MonthlyRevenueLoss string `json:"monthly_revenue_loss"`
	YearlyRevenueLoss  string `json:"yearly_revenue_loss"`
	NetDailyRecovery   string `json:"net_daily_recovery"`
	NetMonthlyRecovery string `json:"net_monthly_recovery"`
	NetYearlyRecovery  string `json:"net_yearly_recovery"`
	Explanation        string `json:"explanation"`
}

// Summarize formats a Result for display. Net recovery figures are floored
// at zero; every string is formatted from the unrounded value.
func Summarize(r Result, a Assumptions) Summary {
	symbol := a.CurrencySymbol
	net := r.NetRecovery.Displayed()

	return Summary{
		TotalCallsPerDay:   FormatNumber(r.TotalCallsPerDay, 0),
		PotentialCustomers: FormatNumber(r.PotentialCustomers, 1),
		LostCustomers:      FormatNumber(r.LostCustomers, 1),
		MinutesDaily:       FormatNumber(r.ServiceCost.MinutesDaily, 0),
		MinutesMonthly:     FormatNumber(r.ServiceCost.MinutesMonthly, 0),
		SoftwareFee:        FormatCurrency(r.ServiceCost.SoftwareFee, symbol),
		MonthlyServiceCost: FormatCurrency(r.ServiceCost.Monthly, symbol),
		DailyRevenueLoss:   FormatCurrency(r.RevenueLoss.Daily, symbol),
		MonthlyRevenueLoss: FormatCurrency(r.RevenueLoss.Monthly, symbol),
		YearlyRevenueLoss:  FormatCurrency(r.RevenueLoss.Yearly, symbol),
		NetDailyRecovery:   FormatCurrency(net.Daily, symbol),
		NetMonthlyRecovery: FormatCurrency(net.Monthly, symbol),
		NetYearlyRecovery:  FormatCurrency(net.Yearly, symbol),
		Explanation:        explain(r, symbol),
	}
}

func explain(r Result, symbol string) string {
	p := r.Params
	return fmt.Sprintf(
		"From %s daily calls, %s%% want to book (%s customers). But %s%% of these are lost due to missed calls (%s customers x %s = lost revenue).",
		FormatNumber(r.TotalCallsPerDay, 0),
		FormatNumber(p.BookingConversionRate, 0),
		FormatNumber(r.PotentialCustomers, 1),
		FormatNumber(p.MissedCallRate, 0),
		FormatNumber(r.LostCustomers, 1),
		FormatCurrency(p.AverageOrderValue, symbol),
	)
}
