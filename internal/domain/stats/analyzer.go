// internal/domain/stats/analyzer.go
package stats

import (
	"regexp"
	"sort"
	"strconv"
	"strings"

	"tendays_plan_bot/internal/domain/plan"
)

// Result is one aggregated task group, ranked by frequency then total hours.
// Name keeps the first-seen original spelling of the task.
type Result struct {
	Name       string
	Frequency  int
	TotalHours float64
}

var (
	// Hour units: 小时, hour, hours, h. All matches in the string are summed.
	hourPattern = regexp.MustCompile(`(?i)(\d+(?:\.\d+)?)\s*(?:小时|hour|h|hours)`)
	// Minute units: 分钟, minute, min, m, minutes. Only the first match counts,
	// and only when no hour unit appeared at all.
	minutePattern = regexp.MustCompile(`(?i)(\d+(?:\.\d+)?)\s*(?:分钟|minute|min|m|minutes)`)

	// Normalization strips everything outside word characters and the CJK
	// Unified Ideographs block, then any remaining whitespace.
	symbolPattern     = regexp.MustCompile(`[^\w\x{4e00}-\x{9fff}]`)
	whitespacePattern = regexp.MustCompile(`\s+`)
)

type taskGroup struct {
	displayName string
	frequency   int
	totalHours  float64
}

// Analyze aggregates recurring task names across day records. Every non-blank
// slot name counts once toward its normalized group; the slot's free-text time
// field adds parsed hours. Results are ordered by frequency descending, then
// total hours descending, then first-seen order.
func Analyze(records []*plan.DayRecord) []Result {
	groups := make(map[string]*taskGroup)
	var order []string

	for _, record := range records {
		for i := range record.Tasks {
			slot := record.Tasks[i]
			if !slot.Name.Valid || strings.TrimSpace(slot.Name.String) == "" {
				continue
			}

			key := NormalizeTaskName(slot.Name.String)
			group, ok := groups[key]
			if !ok {
				group = &taskGroup{displayName: slot.Name.String}
				groups[key] = group
				order = append(order, key)
			}

			group.frequency++
			if slot.Time.Valid {
				group.totalHours += ExtractHours(slot.Time.String)
			}
		}
	}

	results := make([]Result, 0, len(order))
	for _, key := range order {
		group := groups[key]
		results = append(results, Result{
			Name:       group.displayName,
			Frequency:  group.frequency,
			TotalHours: group.totalHours,
		})
	}

	sort.SliceStable(results, func(i, j int) bool {
		if results[i].Frequency != results[j].Frequency {
			return results[i].Frequency > results[j].Frequency
		}
		return results[i].TotalHours > results[j].TotalHours
	})
	return results
}

// ExtractHours parses a duration in hours out of a free-text time field,
// e.g. "1小时", "1.5h", "30分钟", "45 min". Hour matches take strict
// precedence: if any hour unit is present, minutes are never parsed.
// Unparsable text contributes zero.
func ExtractHours(timeText string) float64 {
	var total float64

	hourMatches := hourPattern.FindAllStringSubmatch(timeText, -1)
	for _, match := range hourMatches {
		if v, err := strconv.ParseFloat(match[1], 64); err == nil {
			total += v
		}
	}

	if len(hourMatches) == 0 {
		if match := minutePattern.FindStringSubmatch(timeText); match != nil {
			if v, err := strconv.ParseFloat(match[1], 64); err == nil {
				total += v / 60.0
			}
		}
	}

	return total
}

// NormalizeTaskName reduces a task name to the key used for grouping:
// trimmed, lowercased, punctuation and whitespace removed.
func NormalizeTaskName(name string) string {
	normalized := strings.ToLower(strings.TrimSpace(name))
	normalized = symbolPattern.ReplaceAllString(normalized, "")
	return whitespacePattern.ReplaceAllString(normalized, "")
}
