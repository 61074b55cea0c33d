package memcheck

import (
	"fmt"
	"regexp"
	"strings"
)

// NoLeaksPhrase is the literal line Valgrind prints when every heap block
// was freed. Its presence is the only "clean" signal we trust; a stream
// without it is reported as leaking. The wording is an unversioned contract
// of the checker and may drift between Valgrind releases, so all matching
// here is best effort and the full raw stream is always shown alongside.
const NoLeaksPhrase = "All heap blocks were freed -- no leaks are possible"

const leakSummaryHeader = "LEAK SUMMARY"

var heapUsageRe = regexp.MustCompile(`total heap usage: .* bytes allocated`)

// leakCategoryPatterns lists the LEAK SUMMARY lines in Valgrind's own order.
var leakCategoryPatterns = []struct {
	label string
	re    *regexp.Regexp
}{
	{"Definitely lost", regexp.MustCompile(`definitely lost: .* blocks`)},
	{"Indirectly lost", regexp.MustCompile(`indirectly lost: .* blocks`)},
	{"Possibly lost", regexp.MustCompile(`possibly lost: .* blocks`)},
	{"Still reachable", regexp.MustCompile(`still reachable: .* blocks`)},
	{"Suppressed", regexp.MustCompile(`suppressed: .* blocks`)},
}

// LeakCategory is one extracted LEAK SUMMARY line.
type LeakCategory struct {
	Label  string
	Amount string // e.g. "40 bytes in 2 blocks"
}

// Report holds a raw checker stream plus the summary fields extracted from
// it. Categories are populated only when the LEAK SUMMARY header occurred in
// the stream.
type Report struct {
	Raw           string
	LeaksDetected bool
	HeapUsage     string
	HasSummary    bool
	Categories    []LeakCategory
}

// ParseValgrindOutput extracts the summary fields from a raw Valgrind
// stream. The function is pure: the same input always yields the same
// report, and unmatched patterns simply leave their fields empty.
func ParseValgrindOutput(raw string) *Report {
	r := &Report{
		Raw:           raw,
		LeaksDetected: !strings.Contains(raw, NoLeaksPhrase),
		HeapUsage:     heapUsageRe.FindString(raw),
	}

	if !strings.Contains(raw, leakSummaryHeader) {
		return r
	}
	r.HasSummary = true

	for _, cat := range leakCategoryPatterns {
		m := cat.re.FindString(raw)
		if m == "" {
			continue
		}
		parts := strings.SplitN(m, ":", 2)
		r.Categories = append(r.Categories, LeakCategory{
			Label:  cat.label,
			Amount: strings.TrimSpace(parts[1]),
		})
	}

	return r
}

// Format renders the report for the output log in a fixed order: verdict,
// heap usage, leak summary table, full raw stream.
func (r *Report) Format() string {
	var sb strings.Builder

	if r.LeaksDetected {
		sb.WriteString("\n⚠ РЕЗУЛЬТАТ: обнаружены утечки памяти!\n\n")
	} else {
		sb.WriteString("\n✓ РЕЗУЛЬТАТ: утечек памяти не обнаружено!\n\n")
	}

	if r.HeapUsage != "" {
		sb.WriteString(fmt.Sprintf("Использование памяти: %s\n", r.HeapUsage))
	}

	if r.HasSummary {
		sb.WriteString("\n" + strings.Repeat("-", 50) + "\n")
		sb.WriteString("Сводка утечек:\n")
		sb.WriteString(strings.Repeat("-", 50) + "\n")
		for _, cat := range r.Categories {
			sb.WriteString(fmt.Sprintf("  %s: %s\n", cat.Label, cat.Amount))
		}
	}

	sb.WriteString("\n" + strings.Repeat("=", 50) + "\n")
	sb.WriteString("Полный вывод Valgrind:\n")
	sb.WriteString(strings.Repeat("=", 50) + "\n")
	sb.WriteString(r.Raw)
	sb.WriteString("\n")

	return sb.String()
}
