package search

import (
	"errors"
	"sync"
	"testing"

	"garden-console/internal/domain/model"
)

func TestMessageFilterCondition(t *testing.T) {
	tests := []struct {
		name     string
		filter   MessageFilter
		wantKeys []string
	}{
		{name: "빈 필터", filter: MessageFilter{}, wantKeys: nil},
		{name: "공백만 입력", filter: MessageFilter{SearchKeyword: "   ", StartDate: " "}, wantKeys: nil},
		{name: "키워드만", filter: MessageFilter{SearchKeyword: "엄마"}, wantKeys: []string{"searchKeyword"}},
		{
			name:     "전체 입력",
			filter:   MessageFilter{SearchKeyword: "꽃", StartDate: "2024-01-01", EndDate: "2024-01-31", MessageType: "flower", DeleteFlag: "n"},
			wantKeys: []string{"searchKeyword", "startDate", "endDate", "messageType", "deleteFlag"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cond := tt.filter.Condition()
			vals, err := Values(&cond, nil)
			if err != nil {
				t.Fatalf("Values: %v", err)
			}
			if len(vals) != len(tt.wantKeys) {
				t.Fatalf("keys = %v, want %v", vals, tt.wantKeys)
			}
			for _, k := range tt.wantKeys {
				if vals.Get(k) == "" {
					t.Errorf("missing key %q in %v", k, vals)
				}
			}
		})
	}
}

func TestConditionUppercasesEnums(t *testing.T) {
	cond := MessageFilter{MessageType: "leaf", DeleteFlag: "y"}.Condition()
	if cond.MessageType == nil || *cond.MessageType != model.MessageTypeLeaf {
		t.Fatalf("messageType = %v", cond.MessageType)
	}
	if cond.DeleteFlag == nil || *cond.DeleteFlag != model.Deleted {
		t.Fatalf("deleteFlag = %v", cond.DeleteFlag)
	}
}

// 정의되지 않은 필드는 쿼리스트링에 나타나지 않아야 한다
func TestValuesOnlyDefinedKeys(t *testing.T) {
	ip := "10.0.0.1"
	empty := ""
	cond := model.LogSearchCondition{IPAddress: &ip, ActType: &empty}
	vals, err := Values(&cond, &model.Pageable{Page: 0, Size: 20})
	if err != nil {
		t.Fatal(err)
	}
	allowed := map[string]bool{"ipAddress": true, "page": true, "size": true}
	for k := range vals {
		if !allowed[k] {
			t.Errorf("unexpected key %q (%v)", k, vals)
		}
	}
	if vals.Get("page") != "0" || vals.Get("size") != "20" {
		t.Errorf("page/size = %q/%q", vals.Get("page"), vals.Get("size"))
	}
	if _, ok := vals["sort"]; ok {
		t.Errorf("sort must be absent: %v", vals)
	}
}

func TestValuesSortRepeated(t *testing.T) {
	vals, err := Values(nil, &model.Pageable{Page: 2, Size: 10, Sort: []string{"createdAt,desc", " ", "id,asc"}})
	if err != nil {
		t.Fatal(err)
	}
	got := vals["sort"]
	if len(got) != 2 || got[0] != "createdAt,desc" || got[1] != "id,asc" {
		t.Fatalf("sort = %v", got)
	}
}

func TestNormalizePage(t *testing.T) {
	tests := []struct {
		in   model.Pageable
		want model.Pageable
	}{
		{model.Pageable{Page: -1, Size: 0}, model.Pageable{Page: 0, Size: DefaultPageSize}},
		{model.Pageable{Page: 3, Size: 500}, model.Pageable{Page: 3, Size: MaxPageSize}},
		{model.Pageable{Page: 1, Size: 5}, model.Pageable{Page: 1, Size: 5}},
	}
	for _, tt := range tests {
		got := NormalizePage(tt.in)
		if got.Page != tt.want.Page || got.Size != tt.want.Size {
			t.Errorf("NormalizePage(%+v) = %+v, want %+v", tt.in, got, tt.want)
		}
	}
}

func TestFilterValidate(t *testing.T) {
	tests := []struct {
		name    string
		filter  MessageFilter
		wantErr bool
	}{
		{"빈 값", MessageFilter{}, false},
		{"정상 기간", MessageFilter{StartDate: "2024-01-01", EndDate: "2024-02-01"}, false},
		{"날짜 형식 오류", MessageFilter{StartDate: "2024/01/01"}, true},
		{"잘못된 타입", MessageFilter{MessageType: "TREE"}, true},
		{"잘못된 삭제 플래그", MessageFilter{DeleteFlag: "X"}, true},
		{"기간 역전", MessageFilter{StartDate: "2024-03-01", EndDate: "2024-02-01"}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.filter.Validate()
			if (err != nil) != tt.wantErr {
				t.Fatalf("Validate() err = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
	if err := (LogFilter{StartDate: "2024-05-02", EndDate: "2024-05-01"}).Validate(); !errors.Is(err, ErrDateRange) {
		t.Fatalf("log range err = %v", err)
	}
}

func TestCursorResetsPageOnFilterChange(t *testing.T) {
	c := NewCursor[LogFilter](20)
	first := LogFilter{AdminID: "admin1"}
	c.Search(first)
	if p := c.Goto(4); p.Page != 4 {
		t.Fatalf("goto page = %d", p.Page)
	}
	if p := c.Apply(first, 5); p.Page != 5 {
		t.Fatalf("same filter page = %d, want 5", p.Page)
	}
	if p := c.Apply(LogFilter{AdminID: "admin2"}, 5); p.Page != 0 {
		t.Fatalf("changed filter page = %d, want 0", p.Page)
	}
	c.Goto(3)
	if p := c.Search(c.Filter()); p.Page != 0 {
		t.Fatalf("re-search page = %d, want 0", p.Page)
	}
	c.Goto(2)
	if p := c.Reset(); p.Page != 0 || c.Filter() != (LogFilter{}) {
		t.Fatalf("reset = %+v filter %+v", p, c.Filter())
	}
	if p := c.Goto(-3); p.Page != 0 || p.Size != 20 {
		t.Fatalf("negative goto = %+v", p)
	}
}

func TestResumePage(t *testing.T) {
	tulip := MessageFilter{SearchKeyword: "튤립"}.Condition()
	rose := MessageFilter{SearchKeyword: "장미"}.Condition()
	_, prev, err := ResumePage("", &tulip, model.Pageable{})
	if err != nil || prev != "searchKeyword=%ED%8A%A4%EB%A6%BD" {
		t.Fatalf("fingerprint = %q err %v", prev, err)
	}

	tests := []struct {
		name     string
		prev     string
		cond     *model.MessageSearchCondition
		page     model.Pageable
		wantPage int
	}{
		{name: "같은 조건은 요청 페이지 유지", prev: prev, cond: &tulip, page: model.Pageable{Page: 4, Size: 10}, wantPage: 4},
		{name: "바뀐 조건은 0 페이지", prev: prev, cond: &rose, page: model.Pageable{Page: 4, Size: 10}, wantPage: 0},
		{name: "첫 검색도 조건이 있으면 0 페이지", prev: "", cond: &rose, page: model.Pageable{Page: 2, Size: 10}, wantPage: 0},
		{name: "빈 조건끼리는 같은 조건", prev: "", cond: &model.MessageSearchCondition{}, page: model.Pageable{Page: 3, Size: 10}, wantPage: 3},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, _, err := ResumePage(tt.prev, tt.cond, tt.page)
			if err != nil {
				t.Fatal(err)
			}
			if p.Page != tt.wantPage || p.Size != 10 {
				t.Fatalf("page = %+v, want page %d", p, tt.wantPage)
			}
		})
	}

	p, _, _ := ResumePage(prev, &tulip, model.Pageable{Page: 1, Size: 10, Sort: []string{"createdAt,desc"}})
	if len(p.Sort) != 1 || p.Sort[0] != "createdAt,desc" {
		t.Fatalf("sort = %v", p.Sort)
	}
}

func TestCursorApplyConcurrent(t *testing.T) {
	c := NewCursor[string](20)
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			f := "a"
			if i%2 == 1 {
				f = "b"
			}
			if p := c.Apply(f, 3); p.Page != 0 && p.Page != 3 {
				t.Errorf("page = %d", p.Page)
			}
		}(i)
	}
	wg.Wait()
	if f := c.Filter(); f != "a" && f != "b" {
		t.Fatalf("filter = %q", f)
	}
}
