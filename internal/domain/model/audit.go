package model

import "time"

// AuditEvent 콘솔 변경 작업 한 건 (Kafka 메시지 본문)
type AuditEvent struct {
	Action    string `json:"action"`
	Method    string `json:"method"`
	Path      string `json:"path"`
	Route     string `json:"route"`
	Status    int    `json:"status"`
	AdminID   string `json:"admin_id,omitempty"`
	TraceID   string `json:"trace_id,omitempty"`
	IP        string `json:"ip"`
	LatencyMS int64  `json:"latency_ms"`
	Body      string `json:"body,omitempty"`
	Time      string `json:"time"`
}

// ConsoleAudit 감사 이벤트 보관 테이블
type ConsoleAudit struct {
	ID        int64     `gorm:"primaryKey" json:"id"`
	Action    string    `gorm:"column:action;size:100;index" json:"action"`
	AdminID   string    `gorm:"column:admin_id;size:50;index" json:"adminId"`
	Method    string    `gorm:"column:method;size:10" json:"method"`
	Path      string    `gorm:"column:path;size:200" json:"path"`
	Status    int       `gorm:"column:status" json:"status"`
	LatencyMS int64     `gorm:"column:latency_ms" json:"latencyMs"`
	IP        string    `gorm:"column:ip;size:64" json:"ip"`
	TraceID   string    `gorm:"column:trace_id;size:64" json:"traceId"`
	Body      string    `gorm:"column:body" json:"body"`
	At        time.Time `gorm:"column:at;index" json:"at"`
	Partition int       `gorm:"column:kafka_partition;uniqueIndex:ux_console_audit_offset" json:"-"`
	Offset    int64     `gorm:"column:kafka_offset;uniqueIndex:ux_console_audit_offset" json:"-"`
}

func (ConsoleAudit) TableName() string { return "console_audit" }
