package roi

import (
	"errors"
	"math"
	"net/url"
	"strings"
	"testing"
)

func TestFormatNumber(t *testing.T) {
	cases := []struct {
		value    float64
		decimals int
		want     string
	}{
		{32, 0, "32"},
		{9.6, 1, "9.6"},
		{1.92, 1, "1.9"},
		{9.6, 0, "10"},
		{5760, 0, "5,760"},
		{1234567.891, 2, "1,234,567.89"},
		{5, 2, "5"},
		{2.50, 2, "2.5"},
		{-4602, 0, "-4,602"},
		{-0.2, 0, "0"},
		{0, 3, "0"},
	}

	for _, tc := range cases {
		if got := FormatNumber(tc.value, tc.decimals); got != tc.want {
			t.Fatalf("FormatNumber(%v, %d) = %q, want %q", tc.value, tc.decimals, got, tc.want)
		}
	}
}

func TestFormatNumber_NonFinite(t *testing.T) {
	for _, v := range []float64{math.Inf(1), math.Inf(-1), math.NaN()} {
		if got := FormatNumber(v, 0); got != NotAvailable {
			t.Fatalf("FormatNumber(%v) = %q, want %q", v, got, NotAvailable)
		}
		if got := FormatCurrency(v, "$"); got != NotAvailable {
			t.Fatalf("FormatCurrency(%v) = %q, want %q", v, got, NotAvailable)
		}
	}
}

func TestFormatCurrency(t *testing.T) {
	if got := FormatCurrency(5760, "$"); got != "$5,760" {
		t.Fatalf("FormatCurrency = %q, want %q", got, "$5,760")
	}
	if got := FormatCurrency(1158.4, "€"); got != "€1,158" {
		t.Fatalf("FormatCurrency = %q, want %q", got, "€1,158")
	}
}

func TestSummarize_BaselineScenario(t *testing.T) {
	summary := Summarize(Estimate(Input{}, DefaultAssumptions()), DefaultAssumptions())

	checks := map[string][2]string{
		"totalCallsPerDay":   {summary.TotalCallsPerDay, "32"},
		"potentialCustomers": {summary.PotentialCustomers, "9.6"},
		"lostCustomers":      {summary.LostCustomers, "1.9"},
		"minutesMonthly":     {summary.MinutesMonthly, "2,880"},
		"softwareFee":        {summary.SoftwareFee, "$150"},
		"monthlyServiceCost": {summary.MonthlyServiceCost, "$1,158"},
		"monthlyRevenueLoss": {summary.MonthlyRevenueLoss, "$5,760"},
		"netMonthlyRecovery": {summary.NetMonthlyRecovery, "$4,602"},
	}
	for name, pair := range checks {
		if pair[0] != pair[1] {
			t.Fatalf("%s = %q, want %q", name, pair[0], pair[1])
		}
	}

	if !strings.Contains(summary.Explanation, "From 32 daily calls, 30% want to book (9.6 customers)") {
		t.Fatalf("unexpected explanation: %s", summary.Explanation)
	}
}

func TestSummarize_FloorsNegativeRecovery(t *testing.T) {
	summary := Summarize(Estimate(Input{MissedCallRate: "-10"}, DefaultAssumptions()), DefaultAssumptions())

	if summary.NetMonthlyRecovery != "$0" {
		t.Fatalf("netMonthlyRecovery = %q, want $0", summary.NetMonthlyRecovery)
	}
	if summary.DailyRevenueLoss != "$-96" {
		t.Fatalf("dailyRevenueLoss = %q, want $-96", summary.DailyRevenueLoss)
	}
}

func TestCalculator_SetRecomputesFromLatestValues(t *testing.T) {
	calc := NewCalculator(DefaultAssumptions())
	nearlyEqual(t, "initial monthly loss", calc.Result().RevenueLoss.Monthly, 5760)

	if err := calc.Set(FieldAverageOrderValue, "200"); err != nil {
		t.Fatalf("set: %v", err)
	}
	nearlyEqual(t, "after edit", calc.Result().RevenueLoss.Monthly, 11520)

	if err := calc.Set(FieldAverageOrderValue, ""); err != nil {
		t.Fatalf("set: %v", err)
	}
	nearlyEqual(t, "after clear", calc.Result().RevenueLoss.Monthly, 5760)

	if got := calc.Input().AverageOrderValue; got != "" {
		t.Fatalf("input AverageOrderValue = %q, want empty", got)
	}
}

func TestCalculator_SetUnknownField(t *testing.T) {
	calc := NewCalculator(DefaultAssumptions())

	err := calc.Set("monthlyBudget", "10")
	if !errors.Is(err, ErrUnknownField) {
		t.Fatalf("expected ErrUnknownField, got %v", err)
	}
}

func TestInputFromValues_RoundTripsNonEmptyFields(t *testing.T) {
	values := url.Values{}
	values.Set(FieldWorkingHoursCalls, "45")
	values.Set(FieldMissedCallRate, "12.5")
	values.Set("utm_source", "newsletter")

	in := InputFromValues(values)
	if in.WorkingHoursCalls != "45" || in.MissedCallRate != "12.5" || in.AfterHoursCalls != "" {
		t.Fatalf("unexpected input: %+v", in)
	}

	encoded := in.Values()
	if len(encoded) != 2 || encoded.Get(FieldMissedCallRate) != "12.5" {
		t.Fatalf("unexpected values: %v", encoded)
	}
}
