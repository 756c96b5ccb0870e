package output

import (
	"fmt"
	"html"
	"strconv"
	"strings"

	"github.com/zhaobenny/vnstat-notify/cli/internal/aggregator"
	"github.com/zhaobenny/vnstat-notify/internal/model"
)

const noData = "No data"

// BytesToReadable renders a byte count in GB with one decimal, dropping a
// trailing ".0". Absent and zero counts both render as "No data".
func BytesToReadable(b model.ByteCount, bold bool) string {
	n, ok := b.Get()
	if !ok || n == 0 {
		return noData
	}

	value := strconv.FormatFloat(float64(n)/(1<<30), 'f', 1, 64)
	value = strings.TrimSuffix(value, ".0")
	if bold {
		value = "<b>" + value + "</b>"
	}
	return value + " GB"
}

// SystemMessage renders the paragraph of one system.
//
//	<b>local</b>:
//	vnstat.service is <b>active (running)</b> ...
//	Yesterday, Monday, 02 September 2024:
//	7.7 GB
//	Cumulative for September 2024:
//	12.3 GB
func SystemMessage(rec model.TrafficRecord) string {
	var b strings.Builder

	fmt.Fprintf(&b, "<b>%s</b>:\n", html.EscapeString(rec.SystemName))
	if rec.ServiceStatus != "" {
		// Already markup.
		b.WriteString(rec.ServiceStatus)
		b.WriteString("\n")
	}
	fmt.Fprintf(&b, "Yesterday, %s:\n%s\n", rec.StatDate.Time().Format("Monday, 02 January 2006"), BytesToReadable(rec.DayTraffic, false))
	fmt.Fprintf(&b, "Cumulative for %s:\n%s", monthLabel(rec), BytesToReadable(rec.MonthTraffic, false))
	if !rec.OK() {
		fmt.Fprintf(&b, "\n<b>Error</b>: %s", html.EscapeString(rec.Error))
	}
	b.WriteString("\n\n")

	return b.String()
}

// FinalMessage renders every system followed by the combined totals.
func FinalMessage(records ...model.TrafficRecord) string {
	var b strings.Builder
	for _, rec := range records {
		b.WriteString(SystemMessage(rec))
	}

	total := aggregator.Sum(records)
	b.WriteString("<b>Total for all services</b>:\n")
	fmt.Fprintf(&b, "Yesterday: %s\n", BytesToReadable(total.Day, true))
	fmt.Fprintf(&b, "Cumulative: %s\n\n", BytesToReadable(total.Month, true))

	return b.String()
}

// monthLabel names the month the cumulative figure covers, which differs
// from the stat date's month on the 1st.
func monthLabel(rec model.TrafficRecord) string {
	m := rec.MonthPeriod
	if m.IsZero() {
		m = rec.StatDate.MonthOf()
	}
	return m.Time().Format("January 2006")
}
