package search

import (
	"net/url"
	"strings"

	"garden-console/internal/domain/model"

	"github.com/google/go-querystring/query"
)

const (
	DefaultPageSize = 20
	MaxPageSize     = 100
)

// NormalizePage 음수 페이지/잘못된 크기를 보정하고 빈 정렬 항목을 제거한다.
func NormalizePage(p model.Pageable) model.Pageable {
	if p.Page < 0 {
		p.Page = 0
	}
	if p.Size <= 0 {
		p.Size = DefaultPageSize
	}
	if p.Size > MaxPageSize {
		p.Size = MaxPageSize
	}
	if len(p.Sort) > 0 {
		sorts := make([]string, 0, len(p.Sort))
		for _, s := range p.Sort {
			if s = strings.TrimSpace(s); s != "" {
				sorts = append(sorts, s)
			}
		}
		p.Sort = sorts
	}
	return p
}

// Values 조건 + 페이지 정보를 쿼리 파라미터로 직렬화한다. 값이 없는 필드는 키 자체가 빠진다.
// cond 는 nil 이거나 검색 조건 구조체(포인터)여야 한다.
func Values(cond interface{}, page *model.Pageable) (url.Values, error) {
	vals := url.Values{}
	if cond != nil {
		cv, err := query.Values(cond)
		if err != nil {
			return nil, err
		}
		merge(vals, cv)
	}
	if page != nil {
		pv, err := query.Values(NormalizePage(*page))
		if err != nil {
			return nil, err
		}
		merge(vals, pv)
	}
	return vals, nil
}

func merge(dst, src url.Values) {
	for k, vs := range src {
		for _, v := range vs {
			if v == "" {
				continue
			}
			dst.Add(k, v)
		}
	}
}
