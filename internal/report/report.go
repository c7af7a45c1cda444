// Package report renders a downloadable PDF of an ROI estimate.
package report

import (
	"bytes"
	"fmt"
	"time"

	"github.com/johnfercher/maroto/pkg/color"
	"github.com/johnfercher/maroto/pkg/consts"
	"github.com/johnfercher/maroto/pkg/pdf"
	"github.com/johnfercher/maroto/pkg/props"

	"github.com/Simplici0/voiceai-site/internal/roi"
)

var (
	darkGray   = color.Color{Red: 26, Green: 26, Blue: 26}
	mediumGray = color.Color{Red: 107, Green: 114, Blue: 128}
	green      = color.Color{Red: 34, Green: 197, Blue: 94}
)

// Estimate is everything printed on the report.
type Estimate struct {
	Title       string
	Result      roi.Result
	Assumptions roi.Assumptions
	GeneratedAt time.Time
}

// Render builds the PDF in memory.
func Render(e Estimate) (*bytes.Buffer, error) {
	summary := roi.Summarize(e.Result, e.Assumptions)
	p := e.Result.Params

	m := pdf.NewMaroto(consts.Portrait, consts.A4)
	m.SetPageMargins(20, 20, 20)

	title := e.Title
	if title == "" {
		title = "Missed Call Revenue Report"
	}

	m.Row(15, func() {
		m.Col(12, func() {
			m.Text(title, props.Text{Size: 20, Style: consts.Bold, Color: darkGray})
		})
	})
	m.Row(6, func() {
		m.Col(12, func() {
			m.Text("Generated "+e.GeneratedAt.Format("Jan 02, 2006"), props.Text{Size: 9, Color: mediumGray})
		})
	})
	m.Row(8, func() {})

	section(m, "YOUR INPUTS")
	line(m, "Calls during working hours (daily)", roi.FormatNumber(p.WorkingHoursCalls, 1))
	line(m, "Calls after hours (daily)", roi.FormatNumber(p.AfterHoursCalls, 1))
	line(m, "Booking conversion rate", roi.FormatNumber(p.BookingConversionRate, 1)+"%")
	line(m, "Missed call rate", roi.FormatNumber(p.MissedCallRate, 1)+"%")
	line(m, "Average order value", roi.FormatCurrency(p.AverageOrderValue, e.Assumptions.CurrencySymbol))
	line(m, "Average call duration", roi.FormatNumber(p.CallDurationMinutes, 1)+" min")
	m.Row(6, func() {})

	section(m, "CURRENT SITUATION")
	line(m, "Calls daily", summary.TotalCallsPerDay)
	line(m, "Bookings", summary.PotentialCustomers)
	line(m, "Customers lost", summary.LostCustomers)
	m.Row(10, func() {
		m.Col(12, func() {
			m.Text(summary.Explanation, props.Text{Size: 8, Color: mediumGray})
		})
	})
	m.Row(6, func() {})

	section(m, "VOICE AI AGENT SERVICE")
	line(m, "Minutes daily", summary.MinutesDaily)
	line(m, "Minutes monthly", summary.MinutesMonthly)
	line(m, fmt.Sprintf("Minutes cost (%s/min)", roi.FormatNumber(e.Assumptions.CostPerMinute, 2)), roi.FormatCurrency(e.Result.ServiceCost.MinutesCost, e.Assumptions.CurrencySymbol))
	line(m, "Software fee", summary.SoftwareFee)
	line(m, "Total monthly cost", summary.MonthlyServiceCost)
	m.Row(6, func() {})

	section(m, "YOUR REVENUE RECOVERY")
	line(m, "Revenue lost daily", summary.DailyRevenueLoss)
	line(m, "Revenue lost monthly", summary.MonthlyRevenueLoss)
	line(m, "Revenue lost yearly", summary.YearlyRevenueLoss)
	m.Row(10, func() {
		m.Col(8, func() {
			m.Text("Net monthly recovery", props.Text{Size: 12, Style: consts.Bold, Color: darkGray})
		})
		m.Col(4, func() {
			m.Text(summary.NetMonthlyRecovery, props.Text{Size: 12, Style: consts.Bold, Color: green, Align: consts.Right})
		})
	})
	line(m, "Net daily recovery", summary.NetDailyRecovery)
	line(m, "Net yearly recovery", summary.NetYearlyRecovery)

	buf, err := m.Output()
	if err != nil {
		return nil, fmt.Errorf("render roi report pdf: %w", err)
	}
	return &buf, nil
}

func section(m pdf.Maroto, heading string) {
	m.Row(8, func() {
		m.Col(12, func() {
			m.Text(heading, props.Text{Size: 10, Style: consts.Bold, Color: darkGray})
		})
	})
}

func line(m pdf.Maroto, label, value string) {
	m.Row(6, func() {
		m.Col(8, func() {
			m.Text(label, props.Text{Size: 9, Color: mediumGray})
		})
		m.Col(4, func() {
			m.Text(value, props.Text{Size: 9, Color: darkGray, Align: consts.Right})
		})
	})
}
