package audit

import (
	"strings"
	"testing"
	"time"

	kafkaGo "github.com/segmentio/kafka-go"
)

func TestRow(t *testing.T) {
	tests := []struct {
		name    string
		value   string
		wantErr bool
		check   func(t *testing.T, body string, at time.Time)
	}{
		{
			name:  "정상 이벤트",
			value: `{"action":"put.flower-messages.id","method":"PUT","path":"/console/flower-messages/7","status":200,"admin_id":"admin1","time":"2026-10-16T09:00:00Z","body":"{\"content\":\"안녕\"}"}`,
			check: func(t *testing.T, body string, at time.Time) {
				if !at.Equal(time.Date(2026, 10, 16, 9, 0, 0, 0, time.UTC)) {
					t.Errorf("at = %v", at)
				}
			},
		},
		{
			name:  "긴 본문은 자른다",
			value: `{"action":"post.accounts","time":"bad","body":"` + strings.Repeat("a", 3000) + `"}`,
			check: func(t *testing.T, body string, at time.Time) {
				if len(body) != bodyLimit {
					t.Errorf("body len = %d", len(body))
				}
				if at.IsZero() {
					t.Error("at must fall back to message time")
				}
			},
		},
		{name: "JSON 아님", value: `oops`, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			row, err := Row(kafkaGo.Message{Value: []byte(tt.value), Partition: 2, Offset: 41, Time: time.Now()})
			if tt.wantErr {
				if err == nil {
					t.Fatal("want error")
				}
				return
			}
			if err != nil {
				t.Fatal(err)
			}
			if row.Partition != 2 || row.Offset != 41 {
				t.Fatalf("row = %+v", row)
			}
			tt.check(t, row.Body, row.At)
		})
	}
}
