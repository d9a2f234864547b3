// internal/infra/telegram/format.go
package telegram

import (
	"fmt"
	"strings"

	"tendays_plan_bot/internal/domain/plan"
	"tendays_plan_bot/internal/domain/stats"
)

// FormatDayPlan renders one day of a cycle as a plain-text message.
// Shared with the scheduler's morning push.
func FormatDayPlan(cycle *plan.Cycle, record *plan.DayRecord) string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("Cycle %d/%d (%s - %s), day %d/10: %s\n",
		cycle.Year, cycle.Number,
		plan.FormatDate(cycle.StartDate), plan.FormatDate(cycle.EndDate),
		record.DayInCycle, record.DateString()))

	if goals := formatGoals(cycle); goals != "" {
		b.WriteString("\nGoals:\n")
		b.WriteString(goals)
	}

	b.WriteString("\nTasks:\n")
	empty := true
	for i := range record.Tasks {
		slot := record.Tasks[i]
		if slot.IsEmpty() {
			continue
		}
		empty = false
		b.WriteString(formatTaskSlot(i+1, slot))
	}
	if empty {
		b.WriteString("  (no tasks yet)\n")
	}
	return b.String()
}

func formatTaskSlot(number int, slot plan.TaskSlot) string {
	mark := " "
	if slot.Completed {
		mark = "x"
	}
	text := slot.Text.String
	if !slot.Text.Valid {
		text = slot.Name.String
	}
	line := fmt.Sprintf("  %d. [%s] %s", number, mark, text)
	if slot.Time.Valid {
		line += fmt.Sprintf(" (%s)", slot.Time.String)
	}
	return line + "\n"
}

func formatGoals(cycle *plan.Cycle) string {
	var b strings.Builder
	for i, goal := range []string{goalText(cycle, 1), goalText(cycle, 2), goalText(cycle, 3)} {
		if goal == "" {
			continue
		}
		b.WriteString(fmt.Sprintf("  %d. %s\n", i+1, goal))
	}
	return b.String()
}

func goalText(cycle *plan.Cycle, slot int) string {
	switch slot {
	case 1:
		if cycle.Goal1.Valid {
			return cycle.Goal1.String
		}
	case 2:
		if cycle.Goal2.Valid {
			return cycle.Goal2.String
		}
	case 3:
		if cycle.Goal3.Valid {
			return cycle.Goal3.String
		}
	}
	return ""
}

// FormatYearOverview renders the 36 cycles of a year with their goals.
func FormatYearOverview(year int, cycles []*plan.Cycle) string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("Cycles of %d:\n", year))
	for _, c := range cycles {
		b.WriteString(fmt.Sprintf("  #%02d  %s - %s", c.Number, plan.FormatDate(c.StartDate), plan.FormatDate(c.EndDate)))
		if goals := formatGoalSummary(c); goals != "" {
			b.WriteString("  " + goals)
		}
		b.WriteString("\n")
	}
	return b.String()
}

func formatGoalSummary(cycle *plan.Cycle) string {
	goals := make([]string, 0, plan.GoalsPerCycle)
	for slot := 1; slot <= plan.GoalsPerCycle; slot++ {
		if g := goalText(cycle, slot); g != "" {
			goals = append(goals, g)
		}
	}
	return strings.Join(goals, "; ")
}

// FormatStatistics renders ranked task statistics.
func FormatStatistics(scope string, results []stats.Result) string {
	if len(results) == 0 {
		return fmt.Sprintf("No recurring tasks found (%s).", scope)
	}
	var b strings.Builder
	b.WriteString(fmt.Sprintf("Recurring tasks (%s):\n", scope))
	for i, r := range results {
		b.WriteString(fmt.Sprintf("  %d. %s: %d times, %.1f h total\n", i+1, r.Name, r.Frequency, r.TotalHours))
	}
	return b.String()
}
