package model

import "time"

// ConsoleSession 콘솔(BFF) 세션 영속 테이블. Payload 는 직렬화된 세션 레코드.
type ConsoleSession struct {
	ID        int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	Key       string    `gorm:"column:session_key;size:128;uniqueIndex:uk_session_key" json:"key"`
	Payload   []byte    `gorm:"column:payload" json:"-"`
	ExpiresAt time.Time `gorm:"column:expires_at;index" json:"expires_at"`
	UpdatedAt time.Time `gorm:"column:updated_at" json:"updated_at"`
}

func (ConsoleSession) TableName() string { return "console_session" }
