package conversation

import (
	"context"
	"fmt"
	"time"

	"github.com/xpanvictor/xarvis-voice/pkg/assistant"
	"gorm.io/gorm"
)

// GormHistoryRepo persists voice conversation history for responder context.
type GormHistoryRepo struct {
	db *gorm.DB
}

var _ assistant.HistoryStore = (*GormHistoryRepo)(nil)

func NewGormHistoryRepo(db *gorm.DB) *GormHistoryRepo {
	return &GormHistoryRepo{db: db}
}

// Recent implements assistant.HistoryStore. Messages come back oldest first.
func (g *GormHistoryRepo) Recent(ctx context.Context, sessionID string, limit int) ([]assistant.Message, error) {
	var rows []MessageEntity
	if err := g.recentQuery(ctx, sessionID, limit).Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("fetch history: %w", err)
	}

	out := make([]assistant.Message, len(rows))
	for i := range rows {
		out[len(rows)-1-i] = rows[i].ToDomain()
	}
	return out, nil
}

func (g *GormHistoryRepo) recentQuery(ctx context.Context, sessionID string, limit int) *gorm.DB {
	q := g.db.WithContext(ctx).
		Where("session_id = ?", sessionID).
		Order("created_at DESC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	return q
}

// Append implements assistant.HistoryStore.
func (g *GormHistoryRepo) Append(ctx context.Context, sessionID string, msgs ...assistant.Message) error {
	if len(msgs) == 0 {
		return nil
	}
	rows := make([]MessageEntity, len(msgs))
	for i, m := range msgs {
		rows[i].FromDomain(sessionID, m)
	}
	if err := g.db.WithContext(ctx).Create(&rows).Error; err != nil {
		return fmt.Errorf("store history: %w", err)
	}
	return nil
}

// Prune hard-deletes messages created before the cutoff.
func (g *GormHistoryRepo) Prune(ctx context.Context, before time.Time) (int64, error) {
	res := g.pruneQuery(ctx, before).Delete(&MessageEntity{})
	if res.Error != nil {
		return 0, fmt.Errorf("prune history: %w", res.Error)
	}
	return res.RowsAffected, nil
}

func (g *GormHistoryRepo) pruneQuery(ctx context.Context, before time.Time) *gorm.DB {
	return g.db.WithContext(ctx).Unscoped().Where("created_at < ?", before)
}
