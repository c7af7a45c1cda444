// Package roi estimates the revenue a business loses to missed calls and
// what answering them with a voice agent would cost.
//
// Inputs arrive as form text. ParseNumber is strict: the whole field must be
// a decimal number, so "12abc" is unparsable and takes the field default
// rather than reading the leading 12. Hexadecimal forms such as "0x1p4" are
// rejected the same way. Finite inputs can still overflow the arithmetic;
// Result.Finite reports whether every derived figure is representable.
package roi

import "math"

const (
	DaysPerMonth = 30.0
	DaysPerYear  = 365.0

	DefaultCostPerMinute        = 0.35
	DefaultMonthlySoftwareFee   = 150.0
	DefaultRevenueGrowthPercent = 0.0
	DefaultCurrencySymbol       = "$"
)

// Params holds the normalized numeric calculator inputs.
type Params struct {
	WorkingHoursCalls     float64 `json:"working_hours_calls"`
	AfterHoursCalls       float64 `json:"after_hours_calls"`
	BookingConversionRate float64 `json:"booking_conversion_rate"`
	MissedCallRate        float64 `json:"missed_call_rate"`
	AverageOrderValue     float64 `json:"average_order_value"`
	CallDurationMinutes   float64 `json:"call_duration_minutes"`
}

// DefaultParams returns the values used for every unfilled calculator field.
func DefaultParams() Params {
	return Params{
		WorkingHoursCalls:     DefaultWorkingHoursCalls,
		AfterHoursCalls:       DefaultAfterHoursCalls,
		BookingConversionRate: DefaultBookingConversionRate,
		MissedCallRate:        DefaultMissedCallRate,
		AverageOrderValue:     DefaultAverageOrderValue,
		CallDurationMinutes:   DefaultCallDurationMinutes,
	}
}

// Assumptions groups the service pricing constants applied to every estimate.
type Assumptions struct {
	CostPerMinute        float64 `json:"cost_per_minute"`
	MonthlySoftwareFee   float64 `json:"monthly_software_fee"`
	RevenueGrowthPercent float64 `json:"revenue_growth_percent"`
	CurrencySymbol       string  `json:"currency_symbol"`
}

// DefaultAssumptions returns the canonical pricing: no growth multiplier,
// $0.35 per handled minute and a $150 monthly software fee.
func DefaultAssumptions() Assumptions {
	return Assumptions{
		CostPerMinute:        DefaultCostPerMinute,
		MonthlySoftwareFee:   DefaultMonthlySoftwareFee,
		RevenueGrowthPercent: DefaultRevenueGrowthPercent,
		CurrencySymbol:       DefaultCurrencySymbol,
	}
}

// RevenueLoss is the revenue lost to missed calls at each granularity.
type RevenueLoss struct {
	Daily   float64 `json:"daily"`
	Monthly float64 `json:"monthly"`
	Yearly  float64 `json:"yearly"`
}

// ServiceCost is what answering every call with the voice agent costs.
type ServiceCost struct {
	MinutesDaily   float64 `json:"minutes_daily"`
	MinutesMonthly float64 `json:"minutes_monthly"`
	MinutesCost    float64 `json:"minutes_cost"`
	SoftwareFee    float64 `json:"software_fee"`
	Monthly        float64 `json:"monthly"`
}

// Recovery is revenue loss minus service cost. Values may be negative.
type Recovery struct {
	Daily   float64 `json:"daily"`
	Monthly float64 `json:"monthly"`
	Yearly  float64 `json:"yearly"`
}

// Displayed returns the recovery floored at zero for presentation.
func (r Recovery) Displayed() Recovery {
	return Recovery{
		Daily:   floorZero(r.Daily),
		Monthly: floorZero(r.Monthly),
		Yearly:  floorZero(r.Yearly),
	}
}

// Result contains every value derived from one set of Params.
type Result struct {
	Params             Params      `json:"params"`
	TotalCallsPerDay   float64     `json:"total_calls_per_day"`
	PotentialCustomers float64     `json:"potential_customers"`
	LostCustomers      float64     `json:"lost_customers"`
	RevenueLoss        RevenueLoss `json:"revenue_loss"`
	ServiceCost        ServiceCost `json:"service_cost"`
	NetRecovery        Recovery    `json:"net_recovery"`
}

// Calculate derives the ROI figures from normalized params. It never fails:
// negative or zero inputs flow through the arithmetic unchanged.
func Calculate(p Params, a Assumptions) Result {
	totalCalls := p.WorkingHoursCalls + p.AfterHoursCalls
	potentialCustomers := totalCalls * (p.BookingConversionRate / 100.0)
	lostCustomers := potentialCustomers * (p.MissedCallRate / 100.0)

	dailyLoss := lostCustomers * p.AverageOrderValue * (1.0 + a.RevenueGrowthPercent/100.0)
	monthlyLoss := dailyLoss * DaysPerMonth
	yearlyLoss := dailyLoss * DaysPerYear

	minutesDaily := totalCalls * p.CallDurationMinutes
	minutesMonthly := minutesDaily * DaysPerMonth
	minutesCost := minutesMonthly * a.CostPerMinute
	monthlyCost := minutesCost + a.MonthlySoftwareFee

	netMonthly := monthlyLoss - monthlyCost
	netDaily := netMonthly / DaysPerMonth
	netYearly := netDaily * DaysPerYear

	return Result{
		Params:             p,
		TotalCallsPerDay:   totalCalls,
		PotentialCustomers: potentialCustomers,
		LostCustomers:      lostCustomers,
		RevenueLoss: RevenueLoss{
			Daily:   dailyLoss,
			Monthly: monthlyLoss,
			Yearly:  yearlyLoss,
		},
		ServiceCost: ServiceCost{
			MinutesDaily:   minutesDaily,
			MinutesMonthly: minutesMonthly,
			MinutesCost:    minutesCost,
			SoftwareFee:    a.MonthlySoftwareFee,
			Monthly:        monthlyCost,
		},
		NetRecovery: Recovery{
			Daily:   netDaily,
			Monthly: netMonthly,
			Yearly:  netYearly,
		},
	}
}

// Estimate normalizes raw form input and calculates the result.
func Estimate(in Input, a Assumptions) Result {
	return Calculate(in.Normalize(), a)
}

func floorZero(v float64) float64 {
	if v < 0 {
		return 0
	}
	return v
}

// Finite reports whether every figure in r is a finite number. Very large
// inputs overflow to infinity, and infinity minus infinity is NaN.
func (r Result) Finite() bool {
	for _, v := range []float64{
		r.TotalCallsPerDay,
		r.PotentialCustomers,
		r.LostCustomers,
		r.RevenueLoss.Daily,
		r.RevenueLoss.Monthly,
		r.RevenueLoss.Yearly,
		r.ServiceCost.MinutesDaily,
		r.ServiceCost.MinutesMonthly,
		r.ServiceCost.MinutesCost,
		r.ServiceCost.SoftwareFee,
		r.ServiceCost.Monthly,
		r.NetRecovery.Daily,
		r.NetRecovery.Monthly,
		r.NetRecovery.Yearly,
	} {
		if !isFinite(v) {
			return false
		}
	}
	return true
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
