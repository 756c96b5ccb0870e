package output

import (
	"encoding/json"
	"fmt"
	"html"
	"io"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/zhaobenny/vnstat-notify/cli/internal/aggregator"
	"github.com/zhaobenny/vnstat-notify/internal/model"
)

const (
	compactThreshold = 100 // Terminal width below which compact mode kicks in
	defaultWidth     = 120
)

var tagPattern = regexp.MustCompile(`<[^>]+>`)

// TableOptions controls table display behavior
type TableOptions struct {
	ForceCompact bool
}

// shouldUseCompact determines if compact mode should be used
func shouldUseCompact(opts TableOptions) bool {
	if opts.ForceCompact {
		return true
	}
	return getTerminalWidth() < compactThreshold
}

// plainText strips the HTML used in chat messages for terminal display
func plainText(s string) string {
	return html.UnescapeString(tagPattern.ReplaceAllString(s, ""))
}

// FormatNumber formats a number with thousand separators
func FormatNumber(n uint64) string {
	str := fmt.Sprintf("%d", n)

	var b strings.Builder
	for i, c := range str {
		if i > 0 && (len(str)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(c)
	}
	return b.String()
}

func formatBytes(b model.ByteCount) string {
	n, ok := b.Get()
	if !ok {
		return "-"
	}
	return FormatNumber(n)
}

// PrintTable prints records as a formatted table
func PrintTable(w io.Writer, records []model.TrafficRecord, opts TableOptions) {
	if len(records) == 0 {
		fmt.Fprintln(w, "No traffic data collected.")
		return
	}

	compact := shouldUseCompact(opts)

	// Calculate key column width
	keyWidth := len("System")
	for _, r := range records {
		if n := utf8.RuneCountInString(r.SystemName); n > keyWidth {
			keyWidth = n
		}
	}
	if keyWidth < 10 {
		keyWidth = 10
	}
	// Cap key width in compact mode
	if compact && keyWidth > 12 {
		keyWidth = 12
	}

	total := aggregator.Sum(records)

	fmt.Fprintln(w)

	if compact {
		// Compact: System, Yesterday, Month
		fmt.Fprintf(w, "%-*s  %10s  %10s\n", keyWidth, "System", "Yesterday", "Month")
		fmt.Fprintln(w, strings.Repeat("─", keyWidth+2+10+2+10))

		for _, r := range records {
			key := truncateRunes(r.SystemName, keyWidth)
			fmt.Fprintf(w, "%-*s  %10s  %10s\n",
				keyWidth, key,
				BytesToReadable(r.DayTraffic, false),
				BytesToReadable(r.MonthTraffic, false))
		}

		if len(records) > 1 {
			fmt.Fprintln(w, strings.Repeat("─", keyWidth+2+10+2+10))
			fmt.Fprintf(w, "%-*s  %10s  %10s\n",
				keyWidth, "Total",
				BytesToReadable(total.Day, false),
				BytesToReadable(total.Month, false))
		}
	} else {
		// Full: System, Date, Yesterday bytes, Month, Month bytes
		fmt.Fprintf(w, "%-*s  %10s  %18s  %7s  %18s\n",
			keyWidth, "System", "Date", "Yesterday (B)", "Month", "Cumulative (B)")
		fmt.Fprintln(w, strings.Repeat("─", keyWidth+2+10+2+18+2+7+2+18))

		for _, r := range records {
			fmt.Fprintf(w, "%-*s  %10s  %18s  %7s  %18s\n",
				keyWidth, r.SystemName,
				r.StatDate.String(),
				formatBytes(r.DayTraffic),
				monthColumn(r),
				formatBytes(r.MonthTraffic))
		}

		if len(records) > 1 {
			fmt.Fprintln(w, strings.Repeat("─", keyWidth+2+10+2+18+2+7+2+18))
			fmt.Fprintf(w, "%-*s  %10s  %18s  %7s  %18s\n",
				keyWidth, "Total", "",
				formatBytes(total.Day), "",
				formatBytes(total.Month))
		}
	}

	fmt.Fprintln(w)

	for _, r := range records {
		if r.ServiceStatus != "" {
			fmt.Fprintf(w, "%s: %s\n", r.SystemName, plainText(r.ServiceStatus))
		}
	}
	for _, r := range records {
		if !r.OK() {
			fmt.Fprintf(w, "%s: error: %s\n", r.SystemName, r.Error)
		}
	}

	if compact {
		fmt.Fprintln(w)
		fmt.Fprintln(w, "(Compact mode - expand terminal for full view)")
	}
}

// truncateRunes cuts s to at most n characters; fmt widths count runes too.
func truncateRunes(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}

func monthColumn(r model.TrafficRecord) string {
	if r.MonthPeriod.IsZero() {
		return "-"
	}
	return r.MonthPeriod.String()
}

// JSONOutput represents the JSON output structure
type JSONOutput struct {
	Records []model.TrafficRecord `json:"records"`
	Total   JSONTotal             `json:"total"`
}

// JSONTotal holds the combined traffic of all systems
type JSONTotal struct {
	DayTraffic   model.ByteCount `json:"day_traffic"`
	MonthTraffic model.ByteCount `json:"month_traffic"`
	Failed       int             `json:"failed"`
}

// PrintJSON outputs records and their totals as JSON
func PrintJSON(w io.Writer, records []model.TrafficRecord) error {
	total := aggregator.Sum(records)
	output := JSONOutput{
		Records: records,
		Total: JSONTotal{
			DayTraffic:   total.Day,
			MonthTraffic: total.Month,
			Failed:       total.Failed,
		},
	}
	if output.Records == nil {
		output.Records = []model.TrafficRecord{}
	}

	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(output)
}
