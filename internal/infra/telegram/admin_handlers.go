// internal/infra/telegram/admin_handlers.go
package telegram

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"tendays_plan_bot/internal/app"

	"github.com/sirupsen/logrus"
	"gopkg.in/telebot.v3"
)

// RegisterAdminHandlers wires the data management commands: export, import
// and the full wipe. All of them are owner-only.
func RegisterAdminHandlers(
	ctx context.Context,
	b *telebot.Bot,
	adminService *app.AdminService,
	interchange *app.InterchangeService,
	ownerID int64,
	baseLogger *logrus.Entry,
) {
	logger := baseLogger.WithField("handler_group", "admin")

	b.Handle("/export", ownerOnly(ownerID, logger, func(c telebot.Context) error {
		logCtx := logger.WithField("command", "/export")
		summary, err := interchange.Export(ctx)
		if err != nil {
			logCtx.WithError(err).Error("Failed to export dataset")
			return c.Send("Something went wrong while exporting. Please try again.")
		}
		return c.Send(fmt.Sprintf("Exported %d cycles and %d day records to %s.",
			summary.CycleCount, summary.RecordCount, summary.Location))
	}))

	b.Handle("/import", ownerOnly(ownerID, logger, func(c telebot.Context) error {
		logCtx := logger.WithField("command", "/import")
		args := c.Args()
		if len(args) != 1 {
			return c.Send("Usage: /import <backup file path>\n\nImporting replaces ALL existing data with the backup's contents.")
		}
		location := strings.TrimSpace(args[0])

		summary, err := interchange.ImportFromLocation(ctx, location)
		if err != nil {
			switch {
			case errors.Is(err, app.ErrUnsupportedVersion):
				return c.Send("That backup was written by an unsupported version. Nothing was changed.")
			case errors.Is(err, app.ErrInvalidPayload):
				return c.Send("That file is not a valid backup. Nothing was changed.")
			default:
				logCtx.WithError(err).WithField("location", location).Error("Failed to import dataset")
				return c.Send("Something went wrong while importing. Please try again.")
			}
		}
		return c.Send(fmt.Sprintf("Imported %d cycles and %d day records. The previous dataset was replaced.",
			summary.CycleCount, summary.RecordCount))
	}))

	b.Handle("/clear_all", ownerOnly(ownerID, logger, func(c telebot.Context) error {
		logCtx := logger.WithField("command", "/clear_all")
		if err := adminService.ClearAllData(ctx, c.Sender().ID); err != nil {
			if errors.Is(err, app.ErrNotAuthorized) {
				return c.Send("You are not authorized to do that.")
			}
			logCtx.WithError(err).Error("Failed to clear plan data")
			return c.Send("Something went wrong while clearing the data. Please try again.")
		}
		return c.Send("All cycles and day records have been deleted. Consider running /export before doing this next time.")
	}))
}
