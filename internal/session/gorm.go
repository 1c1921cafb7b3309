package session

import (
	"context"
	"errors"
	"time"

	"garden-console/internal/domain/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormPersister redis 없이 Postgres 에 세션을 두는 배포용
type GormPersister struct {
	db  *gorm.DB
	ttl time.Duration
}

func NewGormPersister(db *gorm.DB, ttl time.Duration) *GormPersister {
	return &GormPersister{db: db, ttl: ttl}
}

func (g *GormPersister) Load(ctx context.Context, key string) ([]byte, error) {
	var row model.ConsoleSession
	err := g.db.WithContext(ctx).
		Where("session_key = ? AND expires_at > ?", key, time.Now()).
		First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return row.Payload, nil
}

func (g *GormPersister) Save(ctx context.Context, key string, data []byte) error {
	now := time.Now()
	row := model.ConsoleSession{Key: key, Payload: data, ExpiresAt: now.Add(g.ttl), UpdatedAt: now}
	return g.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "session_key"}},
		DoUpdates: clause.AssignmentColumns([]string{"payload", "expires_at", "updated_at"}),
	}).Create(&row).Error
}

func (g *GormPersister) Delete(ctx context.Context, key string) error {
	return g.db.WithContext(ctx).Where("session_key = ?", key).Delete(&model.ConsoleSession{}).Error
}

func (g *GormPersister) Touch(ctx context.Context, key string) error {
	return g.db.WithContext(ctx).Model(&model.ConsoleSession{}).
		Where("session_key = ?", key).
		Updates(map[string]interface{}{"expires_at": time.Now().Add(g.ttl), "updated_at": time.Now()}).Error
}

// Purge 만료된 행 삭제. 삭제한 행 수를 돌려준다.
func (g *GormPersister) Purge(ctx context.Context) (int64, error) {
	res := g.db.WithContext(ctx).Where("expires_at <= ?", time.Now()).Delete(&model.ConsoleSession{})
	return res.RowsAffected, res.Error
}
