package middleware

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	tele "gopkg.in/telebot.v4"
)

func Logger() tele.MiddlewareFunc {
	return func(next tele.HandlerFunc) tele.HandlerFunc {
		return func(c tele.Context) error {
			now := time.Now()

			rqID := uuid.NewString()
			c.Set("rqID", rqID)

			attrs := []any{slog.String("rqID", rqID)}
			if chat := c.Chat(); chat != nil {
				attrs = append(attrs, slog.Int64("chatID", chat.ID))
			}
			if cb := c.Callback(); cb != nil {
				attrs = append(attrs, slog.String("callback", cb.Unique))
			}
			slog.Info("start request", attrs...)

			defer func() {
				slog.Info(
					"request finished",
					slog.String("rqID", rqID),
					slog.String("request duration", fmt.Sprintf("%.2fs", time.Since(now).Seconds())),
				)
			}()

			return next(c)
		}
	}
}

// AllowChats drops updates from chats outside the list. An empty list lets every chat through.
func AllowChats(chatIDs ...int64) tele.MiddlewareFunc {
	allowed := make(map[int64]struct{}, len(chatIDs))
	for _, id := range chatIDs {
		allowed[id] = struct{}{}
	}

	return func(next tele.HandlerFunc) tele.HandlerFunc {
		return func(c tele.Context) error {
			if len(allowed) == 0 {
				return next(c)
			}

			chat := c.Chat()
			if chat == nil {
				return nil
			}
			if _, ok := allowed[chat.ID]; !ok {
				rqID, _ := c.Get("rqID").(string)
				slog.Warn("update from chat outside allowlist", slog.String("rqID", rqID), slog.Int64("chatID", chat.ID))
				return nil
			}
			return next(c)
		}
	}
}
