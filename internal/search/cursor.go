package search

import (
	"sync"

	"garden-console/internal/domain/model"
)

// Cursor 현재 필터와 페이지 위치를 함께 관리한다.
// 필터가 바뀌면 페이지는 항상 0으로 돌아간다 (이전 검색의 offset 재사용 금지).
type Cursor[F comparable] struct {
	mu     sync.Mutex
	filter F
	page   int
	size   int
}

func NewCursor[F comparable](size int) *Cursor[F] {
	return &Cursor[F]{size: NormalizePage(model.Pageable{Size: size}).Size}
}

// Resume prev 를 직전 필터로 둔 커서를 만든다. 요청마다 커서를 새로 만드는 서버 쪽에서 쓴다.
func Resume[F comparable](prev F, size int) *Cursor[F] {
	c := NewCursor[F](size)
	c.filter = prev
	return c
}

// Search 새 필터 적용. 같은 필터로 다시 검색해도 첫 페이지부터 시작한다.
func (c *Cursor[F]) Search(f F) model.Pageable {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.search(f)
}

// Reset 필터 초기화 (zero value) + 첫 페이지
func (c *Cursor[F]) Reset() model.Pageable {
	var zero F
	return c.Search(zero)
}

// Goto 같은 필터 안에서 페이지 이동
func (c *Cursor[F]) Goto(page int) model.Pageable {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.goTo(page)
}

// Apply 필터와 요청 페이지를 함께 받는다. 필터가 이전과 다르면 요청 페이지를 무시하고 0으로.
func (c *Cursor[F]) Apply(f F, page int) model.Pageable {
	c.mu.Lock()
	defer c.mu.Unlock()
	if f != c.filter {
		return c.search(f)
	}
	return c.goTo(page)
}

func (c *Cursor[F]) Filter() F {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.filter
}

func (c *Cursor[F]) search(f F) model.Pageable {
	c.filter = f
	c.page = 0
	return c.pageable()
}

func (c *Cursor[F]) goTo(page int) model.Pageable {
	if page < 0 {
		page = 0
	}
	c.page = page
	return c.pageable()
}

func (c *Cursor[F]) pageable() model.Pageable {
	return model.Pageable{Page: c.page, Size: c.size}
}

// Fingerprint 페이지 정보를 뺀 검색 조건의 정규화된 쿼리스트링. 필터 비교용.
func Fingerprint(cond interface{}) (string, error) {
	vals, err := Values(cond, nil)
	if err != nil {
		return "", err
	}
	return vals.Encode(), nil
}

// ResumePage prev 지문과 cond 를 비교해 page 를 정한다. 조건이 바뀌었으면 0 페이지.
// 정렬은 요청 값을 그대로 둔다. 새 지문도 함께 돌려준다.
func ResumePage(prev string, cond interface{}, page model.Pageable) (model.Pageable, string, error) {
	fp, err := Fingerprint(cond)
	if err != nil {
		return page, "", err
	}
	next := Resume(prev, page.Size).Apply(fp, page.Page)
	next.Sort = page.Sort
	return next, fp, nil
}
