package repo

import (
	"ProductKeeper/internal/model"
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// ReconciliationLog журнал расхождений между метаданными и файлами.
type ReconciliationLog interface {
	Record(ctx context.Context, ev *model.ReconciliationEvent) error
	// List возвращает последние события, новые первыми.
	List(ctx context.Context, limit int) ([]model.ReconciliationEvent, error)
}

type dbReconciliationLog struct {
	db *gorm.DB
}

// NewReconciliationLog хранит события в таблице reconciliation_events.
func NewReconciliationLog(db *gorm.DB) ReconciliationLog {
	return &dbReconciliationLog{db: db}
}

func (l *dbReconciliationLog) Record(ctx context.Context, ev *model.ReconciliationEvent) error {
	return l.db.WithContext(ctx).Create(ev).Error
}

func (l *dbReconciliationLog) List(ctx context.Context, limit int) ([]model.ReconciliationEvent, error) {
	out := []model.ReconciliationEvent{}
	if err := l.db.WithContext(ctx).Order("created_at DESC").Limit(limit).Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

// ReconciliationKey ключ списка событий в Redis.
const ReconciliationKey = "productkeeper:reconciliation"

type redisReconciliationLog struct {
	client *redis.Client
	key    string
}

// NewRedisReconciliationLog хранит события в списке Redis (LPUSH, новые в голове).
func NewRedisReconciliationLog(client *redis.Client) ReconciliationLog {
	return &redisReconciliationLog{client: client, key: ReconciliationKey}
}

func (l *redisReconciliationLog) Record(ctx context.Context, ev *model.ReconciliationEvent) error {
	b, err := json.Marshal(ev)
	if err != nil {
		return err
	}
	return l.client.LPush(ctx, l.key, b).Err()
}

func (l *redisReconciliationLog) List(ctx context.Context, limit int) ([]model.ReconciliationEvent, error) {
	if limit <= 0 {
		return []model.ReconciliationEvent{}, nil
	}
	raw, err := l.client.LRange(ctx, l.key, 0, int64(limit-1)).Result()
	if err != nil {
		return nil, err
	}
	out := make([]model.ReconciliationEvent, 0, len(raw))
	for _, s := range raw {
		var ev model.ReconciliationEvent
		if err := json.Unmarshal([]byte(s), &ev); err != nil {
			return nil, fmt.Errorf("decode reconciliation event: %w", err)
		}
		out = append(out, ev)
	}
	return out, nil
}
