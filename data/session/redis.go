package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/KotFed0t/vc_portfolio_dashboard/config"
	"github.com/KotFed0t/vc_portfolio_dashboard/internal/model"
	"github.com/KotFed0t/vc_portfolio_dashboard/utils"
	"github.com/redis/go-redis/v9"
)

var ErrNotFound = errors.New("session not found")

const (
	authPrefix = "session:auth:"
	chatPrefix = "session:chat:"
)

type RedisSession struct {
	redis *redis.Client
	cfg   *config.Config
}

func NewRedisSession(redisClient *redis.Client, cfg *config.Config) *RedisSession {
	return &RedisSession{redis: redisClient, cfg: cfg}
}

func (r *RedisSession) SetSession(ctx context.Context, session model.Session) error {
	ttl := time.Until(session.ExpiresAt)
	if ttl <= 0 {
		return fmt.Errorf("session %s already expired", session.ID)
	}
	return r.set(ctx, authPrefix+session.ID, session, ttl)
}

func (r *RedisSession) GetSession(ctx context.Context, sessionID string) (model.Session, error) {
	session := model.Session{}
	err := r.get(ctx, authPrefix+sessionID, &session)
	return session, err
}

func (r *RedisSession) DeleteSession(ctx context.Context, sessionID string) error {
	rqID := utils.GetRequestIDFromCtx(ctx)

	n, err := r.redis.Del(ctx, authPrefix+sessionID).Result()
	if err != nil {
		slog.Error("failed on redis.Del", slog.String("rqID", rqID), slog.String("err", err.Error()))
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *RedisSession) GetChatSession(ctx context.Context, chatID string) (model.ChatSession, error) {
	chatSession := model.ChatSession{}
	err := r.get(ctx, chatPrefix+chatID, &chatSession)
	return chatSession, err
}

func (r *RedisSession) SetChatSession(ctx context.Context, chatID string, chatSession model.ChatSession) error {
	return r.set(ctx, chatPrefix+chatID, chatSession, r.cfg.Session.TTL)
}

func (r *RedisSession) get(ctx context.Context, key string, dest any) error {
	rqID := utils.GetRequestIDFromCtx(ctx)

	res, err := r.redis.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return ErrNotFound
		}
		slog.Error("failed on redis.Get", slog.String("rqID", rqID), slog.String("err", err.Error()))
		return err
	}

	if err = json.Unmarshal(res, dest); err != nil {
		slog.Error("can't unmarshall session", slog.String("rqID", rqID), slog.String("err", err.Error()))
		return err
	}

	return nil
}

func (r *RedisSession) set(ctx context.Context, key string, value any, ttl time.Duration) error {
	rqID := utils.GetRequestIDFromCtx(ctx)

	data, err := json.Marshal(value)
	if err != nil {
		slog.Error("can't marshall session", slog.String("rqID", rqID), slog.String("err", err.Error()))
		return err
	}

	if err = r.redis.Set(ctx, key, data, ttl).Err(); err != nil {
		slog.Error("failed on redis.Set", slog.String("rqID", rqID), slog.String("err", err.Error()))
		return err
	}

	return nil
}
