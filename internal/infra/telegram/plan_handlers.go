// internal/infra/telegram/plan_handlers.go
package telegram

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"tendays_plan_bot/internal/app"
	"tendays_plan_bot/internal/domain/plan"
	"tendays_plan_bot/internal/domain/stats"

	"github.com/sirupsen/logrus"
	"gopkg.in/telebot.v3"
)

// ownerOnly guards a handler so that only the configured bot owner can use
// it. This is a single-user planning bot; everyone else is turned away.
func ownerOnly(ownerID int64, logger *logrus.Entry, next telebot.HandlerFunc) telebot.HandlerFunc {
	return func(c telebot.Context) error {
		if c.Sender().ID != ownerID {
			logger.WithField("sender_id", c.Sender().ID).Warn("Unauthorized access attempt")
			return c.Send("This is a personal planning bot and you are not its owner.")
		}
		return next(c)
	}
}

// RegisterPlanHandlers wires the navigation, editing and statistics commands.
func RegisterPlanHandlers(
	ctx context.Context,
	b *telebot.Bot,
	navigator *app.NavigatorService,
	statsService *app.StatisticsService,
	ownerID int64,
	baseLogger *logrus.Entry,
) {
	logger := baseLogger.WithField("handler_group", "plan")

	b.Handle("/start", ownerOnly(ownerID, logger, func(c telebot.Context) error {
		return c.Send(fmt.Sprintf("Hello, %s! I track your ten-day plan cycles. Use /help for the command list.", c.Sender().FirstName))
	}))

	b.Handle("/help", ownerOnly(ownerID, logger, func(c telebot.Context) error {
		var helpText strings.Builder
		helpText.WriteString("Available commands:\n\n")
		helpText.WriteString("`/today` - Show today's plan.\n")
		helpText.WriteString("`/date <yyyy-mm-dd>` - Jump to the cycle containing a date.\n")
		helpText.WriteString("`/day <1-10>` - Select a day within the current cycle.\n")
		helpText.WriteString("`/prev` - Show the same day in the previous cycle.\n")
		helpText.WriteString("`/cycle <1-36> [year]` - Jump to an explicit cycle.\n")
		helpText.WriteString("`/prev_cycle`, `/next_cycle` - Step between cycles of the year.\n")
		helpText.WriteString("`/year [year]` - Overview of all 36 cycles.\n")
		helpText.WriteString("`/task <slot> <text> [; name ; detail ; time]` - Edit a task slot.\n")
		helpText.WriteString("`/done <slot>`, `/undone <slot>` - Toggle completion.\n")
		helpText.WriteString("`/cleartask <slot>` - Wipe a task slot.\n")
		helpText.WriteString("`/goals <g1> [; g2 ; g3]` - Set the current cycle's goals.\n")
		helpText.WriteString("`/stats [year|all]` - Recurring task statistics.\n")
		helpText.WriteString("`/export`, `/import <path>`, `/clear_all` - Data management.\n")
		return c.Send(helpText.String(), &telebot.SendOptions{ParseMode: telebot.ModeMarkdown})
	}))

	b.Handle("/today", ownerOnly(ownerID, logger, func(c telebot.Context) error {
		logCtx := logger.WithField("command", "/today")
		if err := navigator.SelectDate(ctx, time.Now()); err != nil {
			return replySelectionError(c, logCtx, err)
		}
		return sendSelection(c, navigator)
	}))

	b.Handle("/date", ownerOnly(ownerID, logger, func(c telebot.Context) error {
		logCtx := logger.WithField("command", "/date")
		args := c.Args()
		if len(args) != 1 {
			return c.Send("Usage: /date <yyyy-mm-dd>")
		}
		date, err := plan.ParseDate(args[0])
		if err != nil {
			return c.Send("Invalid date. Use the yyyy-mm-dd form, e.g. /date 2025-03-14.")
		}
		if err := navigator.SelectDate(ctx, date); err != nil {
			return replySelectionError(c, logCtx, err)
		}
		return sendSelection(c, navigator)
	}))

	b.Handle("/day", ownerOnly(ownerID, logger, func(c telebot.Context) error {
		args := c.Args()
		if len(args) != 1 {
			return c.Send("Usage: /day <1-10>")
		}
		day, err := strconv.Atoi(args[0])
		if err != nil {
			return c.Send("The day must be a number between 1 and 10.")
		}
		if err := navigator.SelectDay(day); err != nil {
			return c.Send("No cycle selected yet. Use /today or /date first.")
		}
		return sendSelection(c, navigator)
	}))

	b.Handle("/prev", ownerOnly(ownerID, logger, func(c telebot.Context) error {
		logCtx := logger.WithField("command", "/prev")
		record, err := navigator.PreviousCycleSameDay(ctx)
		if err != nil {
			switch {
			case errors.Is(err, app.ErrNotReady):
				return c.Send("No cycle selected yet. Use /today or /date first.")
			case errors.Is(err, app.ErrNoPreviousCycle):
				return c.Send("There is no previous cycle before the earliest supported year.")
			default:
				logCtx.WithError(err).Error("Failed to resolve previous cycle day")
				return c.Send("Something went wrong while loading the previous cycle. Please try again.")
			}
		}
		if record == nil {
			return c.Send("No record exists for that day in the previous cycle.")
		}
		prevCycle := &plan.Cycle{
			ID:     record.CycleID,
			Year:   int(record.CycleID / 100),
			Number: int(record.CycleID % 100),
		}
		if start, end, boundsErr := plan.CycleBounds(prevCycle.Year, prevCycle.Number); boundsErr == nil {
			prevCycle.StartDate, prevCycle.EndDate = start, end
		}
		return c.Send("Same day in the previous cycle:\n\n" + FormatDayPlan(prevCycle, record))
	}))

	b.Handle("/cycle", ownerOnly(ownerID, logger, func(c telebot.Context) error {
		logCtx := logger.WithField("command", "/cycle")
		args := c.Args()
		if len(args) < 1 || len(args) > 2 {
			return c.Send("Usage: /cycle <1-36> [year]")
		}
		number, err := strconv.Atoi(args[0])
		if err != nil {
			return c.Send("The cycle number must be a number between 1 and 36.")
		}
		year := time.Now().Year()
		if len(args) == 2 {
			year, err = strconv.Atoi(args[1])
			if err != nil {
				return c.Send("The year must be a number, e.g. /cycle 12 2025.")
			}
		}
		if err := navigator.SelectCycle(ctx, year, number); err != nil {
			return replySelectionError(c, logCtx, err)
		}
		return sendSelection(c, navigator)
	}))

	b.Handle("/prev_cycle", ownerOnly(ownerID, logger, advanceHandler(ctx, navigator, app.DirectionPrevious, logger)))
	b.Handle("/next_cycle", ownerOnly(ownerID, logger, advanceHandler(ctx, navigator, app.DirectionNext, logger)))

	b.Handle("/year", ownerOnly(ownerID, logger, func(c telebot.Context) error {
		logCtx := logger.WithField("command", "/year")
		year := time.Now().Year()
		if args := c.Args(); len(args) == 1 {
			parsed, err := strconv.Atoi(args[0])
			if err != nil {
				return c.Send("The year must be a number, e.g. /year 2025.")
			}
			year = parsed
		}
		cycles, err := navigator.YearOverview(ctx, year)
		if err != nil {
			logCtx.WithError(err).Error("Failed to load year overview")
			return c.Send("Something went wrong while loading the year overview. Please try again.")
		}
		return c.Send(FormatYearOverview(year, cycles))
	}))

	b.Handle("/task", ownerOnly(ownerID, logger, editTaskHandler(ctx, navigator, logger)))

	b.Handle("/done", ownerOnly(ownerID, logger, completionHandler(ctx, navigator, true, logger)))
	b.Handle("/undone", ownerOnly(ownerID, logger, completionHandler(ctx, navigator, false, logger)))

	b.Handle("/cleartask", ownerOnly(ownerID, logger, func(c telebot.Context) error {
		logCtx := logger.WithField("command", "/cleartask")
		slot, record, errMsg := selectedSlot(c.Args(), navigator, "/cleartask <slot>")
		if errMsg != "" {
			return c.Send(errMsg)
		}
		updated, err := navigator.ClearTask(ctx, record.Date, slot)
		if err != nil {
			return replyEditError(c, logCtx, err)
		}
		return c.Send(FormatDayPlan(navigator.CurrentCycle(), updated))
	}))

	b.Handle("/goals", ownerOnly(ownerID, logger, func(c telebot.Context) error {
		logCtx := logger.WithField("command", "/goals")
		cycle := navigator.CurrentCycle()
		if cycle == nil || navigator.State() != app.StateReady {
			return c.Send("No cycle selected yet. Use /today or /date first.")
		}
		parts := splitParts(strings.Join(c.Args(), " "), plan.GoalsPerCycle)
		updated, err := navigator.UpdateCycleGoals(ctx, cycle.ID, parts[0], parts[1], parts[2])
		if err != nil {
			logCtx.WithError(err).Error("Failed to update cycle goals")
			return c.Send("Something went wrong while saving the goals. Please try again.")
		}
		return c.Send(fmt.Sprintf("Goals updated for cycle %d/%d.\n%s", updated.Year, updated.Number, formatGoals(updated)))
	}))

	b.Handle("/stats", ownerOnly(ownerID, logger, func(c telebot.Context) error {
		logCtx := logger.WithField("command", "/stats")
		args := c.Args()

		var (
			results []stats.Result
			scope   string
			err     error
		)
		switch {
		case len(args) == 0:
			scope = fmt.Sprintf("year %d", time.Now().Year())
			results, err = statsService.AnalyzeYear(ctx, time.Now().Year())
		case args[0] == "all":
			scope = "all years"
			results, err = statsService.AnalyzeAll(ctx)
		default:
			year, parseErr := strconv.Atoi(args[0])
			if parseErr != nil {
				return c.Send("Usage: /stats [year|all]")
			}
			scope = fmt.Sprintf("year %d", year)
			results, err = statsService.AnalyzeYear(ctx, year)
		}
		if err != nil {
			logCtx.WithError(err).Error("Failed to analyze statistics")
			return c.Send("Something went wrong while computing statistics. Please try again.")
		}
		return c.Send(FormatStatistics(scope, results))
	}))
}

func advanceHandler(ctx context.Context, navigator *app.NavigatorService, direction app.Direction, logger *logrus.Entry) telebot.HandlerFunc {
	return func(c telebot.Context) error {
		err := navigator.AdvanceCycle(ctx, direction)
		if err != nil {
			switch {
			case errors.Is(err, app.ErrNotReady):
				return c.Send("No cycle selected yet. Use /today or /date first.")
			case errors.Is(err, app.ErrFirstCycleOfYear):
				return c.Send("Already at the first cycle of the year. Use /cycle 36 " +
					strconv.Itoa(navigator.CurrentCycle().Year-1) + " to cross into the previous year.")
			case errors.Is(err, app.ErrLastCycleOfYear):
				return c.Send("Already at the last cycle of the year. Use /cycle 1 " +
					strconv.Itoa(navigator.CurrentCycle().Year+1) + " to cross into the next year.")
			default:
				logger.WithError(err).Error("Failed to advance cycle")
				return c.Send("Something went wrong while switching cycles. Please try again.")
			}
		}
		return sendSelection(c, navigator)
	}
}

func editTaskHandler(ctx context.Context, navigator *app.NavigatorService, logger *logrus.Entry) telebot.HandlerFunc {
	return func(c telebot.Context) error {
		logCtx := logger.WithField("command", "/task")
		args := c.Args()
		if len(args) < 2 {
			return c.Send("Usage: /task <slot> <text> [; name ; detail ; time]")
		}
		slot, err := strconv.Atoi(args[0])
		if err != nil {
			return c.Send("The slot must be a number between 1 and 6.")
		}
		record := navigator.SelectedRecord()
		if record == nil {
			return c.Send("No day selected yet. Use /today or /date first.")
		}

		parts := splitParts(strings.Join(args[1:], " "), 4)
		updated, err := navigator.SetTask(ctx, record.Date, slot, parts[0], parts[1], parts[2], parts[3])
		if err != nil {
			return replyEditError(c, logCtx, err)
		}
		return c.Send(FormatDayPlan(navigator.CurrentCycle(), updated))
	}
}

func completionHandler(ctx context.Context, navigator *app.NavigatorService, completed bool, logger *logrus.Entry) telebot.HandlerFunc {
	usage := "/done <slot>"
	if !completed {
		usage = "/undone <slot>"
	}
	return func(c telebot.Context) error {
		logCtx := logger.WithField("command", usage)
		slot, record, errMsg := selectedSlot(c.Args(), navigator, usage)
		if errMsg != "" {
			return c.Send(errMsg)
		}
		updated, err := navigator.SetTaskCompleted(ctx, record.Date, slot, completed)
		if err != nil {
			return replyEditError(c, logCtx, err)
		}
		return c.Send(FormatDayPlan(navigator.CurrentCycle(), updated))
	}
}

// selectedSlot parses a single slot argument and resolves the currently
// selected day record. An empty errMsg means both are valid.
func selectedSlot(args []string, navigator *app.NavigatorService, usage string) (slot int, record *plan.DayRecord, errMsg string) {
	if len(args) != 1 {
		return 0, nil, "Usage: " + usage
	}
	slot, err := strconv.Atoi(args[0])
	if err != nil {
		return 0, nil, "The slot must be a number between 1 and 6."
	}
	record = navigator.SelectedRecord()
	if record == nil {
		return 0, nil, "No day selected yet. Use /today or /date first."
	}
	return slot, record, ""
}

// splitParts splits a "; "-separated argument string into exactly n trimmed
// parts, padding missing ones with blanks.
func splitParts(joined string, n int) []string {
	parts := make([]string, n)
	for i, part := range strings.SplitN(joined, ";", n) {
		parts[i] = strings.TrimSpace(part)
	}
	return parts
}

func sendSelection(c telebot.Context, navigator *app.NavigatorService) error {
	cycle := navigator.CurrentCycle()
	record := navigator.SelectedRecord()
	if cycle == nil || record == nil {
		return c.Send("Nothing is selected.")
	}
	return c.Send(FormatDayPlan(cycle, record))
}

func replySelectionError(c telebot.Context, logCtx *logrus.Entry, err error) error {
	switch {
	case errors.Is(err, plan.ErrDateOutsideCycles):
		return c.Send("That date falls after day 360 of its year and belongs to no cycle.")
	case errors.Is(err, plan.ErrCycleNumberOutOfRange):
		return c.Send("Cycle numbers run from 1 to 36.")
	default:
		logCtx.WithError(err).Error("Failed to load cycle selection")
		return c.Send("Something went wrong while loading the cycle. Your previous view is unchanged.")
	}
}

func replyEditError(c telebot.Context, logCtx *logrus.Entry, err error) error {
	if errors.Is(err, app.ErrTaskSlotOutOfRange) {
		return c.Send("The slot must be a number between 1 and 6.")
	}
	logCtx.WithError(err).Error("Failed to edit day record")
	return c.Send("Something went wrong while saving. Please try again.")
}
