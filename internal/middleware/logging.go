package middleware

import (
	"time"

	"go.uber.org/zap"
	tele "gopkg.in/telebot.v3"
)

// Logger creates update tracing middleware
func Logger(logger *zap.Logger) tele.MiddlewareFunc {
	return func(next tele.HandlerFunc) tele.HandlerFunc {
		return func(c tele.Context) error {
			started := time.Now()
			fields := updateFields(c)

			err := next(c)

			fields = append(fields, zap.Duration("took", time.Since(started)))
			if err != nil {
				logger.Warn("Update handler failed", append(fields, zap.Error(err))...)
				return err
			}

			logger.Debug("Update handled", fields...)
			return nil
		}
	}
}

// updateFields describes an update; channel posts have no sender
func updateFields(c tele.Context) []zap.Field {
	fields := []zap.Field{zap.Int("update_id", c.Update().ID)}

	if sender := c.Sender(); sender != nil {
		fields = append(fields, zap.Int64("user_id", sender.ID))
	}
	if chat := c.Chat(); chat != nil {
		fields = append(fields,
			zap.Int64("chat_id", chat.ID),
			zap.String("chat_type", string(chat.Type)),
		)
	}
	if cb := c.Callback(); cb != nil {
		fields = append(fields, zap.String("callback_unique", cb.Unique))
	}
	return fields
}
