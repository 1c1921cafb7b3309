// Package search 는 화면 필터 입력을 백엔드 검색 조건/쿼리스트링으로 변환한다.
package search

import (
	"errors"
	"strings"
	"time"

	"garden-console/internal/domain/model"

	"github.com/go-playground/validator/v10"
)

const dateLayout = "2006-01-02"

var ErrDateRange = errors.New("startDate must not be after endDate")

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	_ = v.RegisterValidation("ymd", func(fl validator.FieldLevel) bool {
		_, err := time.Parse(dateLayout, fl.Field().String())
		return err == nil
	})
	return v
}

// MessageFilter 메시지 검색 폼 원본 값 (빈 문자열 = 미입력)
type MessageFilter struct {
	SearchKeyword string `json:"searchKeyword" form:"searchKeyword"`
	StartDate     string `json:"startDate" form:"startDate" validate:"omitempty,ymd"`
	EndDate       string `json:"endDate" form:"endDate" validate:"omitempty,ymd"`
	MessageType   string `json:"messageType" form:"messageType" validate:"omitempty,oneof=FLOWER LEAF"`
	DeleteFlag    string `json:"deleteFlag" form:"deleteFlag" validate:"omitempty,oneof=Y N"`
}

// LogFilter 로그 검색 폼 원본 값
type LogFilter struct {
	AdminID   string `json:"adminId" form:"adminId"`
	StartDate string `json:"startDate" form:"startDate" validate:"omitempty,ymd"`
	EndDate   string `json:"endDate" form:"endDate" validate:"omitempty,ymd"`
	IPAddress string `json:"ipAddress" form:"ipAddress"`
	ActType   string `json:"actType" form:"actType"`
}

// Validate 날짜 형식/열거값/기간 순서 검사
func (f MessageFilter) Validate() error {
	if err := validate.Struct(f.trimmed()); err != nil {
		return err
	}
	return checkRange(f.StartDate, f.EndDate)
}

func (f LogFilter) Validate() error {
	if err := validate.Struct(f.trimmed()); err != nil {
		return err
	}
	return checkRange(f.StartDate, f.EndDate)
}

// Condition 빈 값은 nil 로 정규화한다. "" 가 그대로 전송되는 일은 없다.
func (f MessageFilter) Condition() model.MessageSearchCondition {
	t := f.trimmed()
	cond := model.MessageSearchCondition{
		SearchKeyword: optional(t.SearchKeyword),
		StartDate:     optional(t.StartDate),
		EndDate:       optional(t.EndDate),
	}
	if t.MessageType != "" {
		mt := model.MessageType(strings.ToUpper(t.MessageType))
		cond.MessageType = &mt
	}
	if t.DeleteFlag != "" {
		df := model.DeleteFlag(strings.ToUpper(t.DeleteFlag))
		cond.DeleteFlag = &df
	}
	return cond
}

func (f LogFilter) Condition() model.LogSearchCondition {
	t := f.trimmed()
	return model.LogSearchCondition{
		AdminID:   optional(t.AdminID),
		StartDate: optional(t.StartDate),
		EndDate:   optional(t.EndDate),
		IPAddress: optional(t.IPAddress),
		ActType:   optional(t.ActType),
	}
}

func (f MessageFilter) trimmed() MessageFilter {
	return MessageFilter{
		SearchKeyword: strings.TrimSpace(f.SearchKeyword),
		StartDate:     strings.TrimSpace(f.StartDate),
		EndDate:       strings.TrimSpace(f.EndDate),
		MessageType:   strings.ToUpper(strings.TrimSpace(f.MessageType)),
		DeleteFlag:    strings.ToUpper(strings.TrimSpace(f.DeleteFlag)),
	}
}

func (f LogFilter) trimmed() LogFilter {
	return LogFilter{
		AdminID:   strings.TrimSpace(f.AdminID),
		StartDate: strings.TrimSpace(f.StartDate),
		EndDate:   strings.TrimSpace(f.EndDate),
		IPAddress: strings.TrimSpace(f.IPAddress),
		ActType:   strings.TrimSpace(f.ActType),
	}
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func checkRange(start, end string) error {
	start, end = strings.TrimSpace(start), strings.TrimSpace(end)
	if start == "" || end == "" {
		return nil
	}
	s, err1 := time.Parse(dateLayout, start)
	e, err2 := time.Parse(dateLayout, end)
	if err1 != nil || err2 != nil {
		return nil
	}
	if s.After(e) {
		return ErrDateRange
	}
	return nil
}
