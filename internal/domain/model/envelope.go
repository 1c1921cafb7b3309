package model

import "encoding/json"

// ApiResponse 백엔드 공통 응답 envelope
type ApiResponse[T any] struct {
	Success bool   `json:"success"`
	Code    int    `json:"code"`
	Message string `json:"message"`
	Data    T      `json:"data"`
}

// PageResponse 페이지 응답. Spring Page 형태(number)도 받아서 pageNumber 로 맞춘다.
type PageResponse[T any] struct {
	Content       []T   `json:"content"`
	TotalPages    int   `json:"totalPages"`
	TotalElements int64 `json:"totalElements"`
	PageNumber    int   `json:"pageNumber"`
	Size          int   `json:"size"`
}

func (p *PageResponse[T]) UnmarshalJSON(b []byte) error {
	var raw struct {
		Content       []T   `json:"content"`
		TotalPages    int   `json:"totalPages"`
		TotalElements int64 `json:"totalElements"`
		PageNumber    *int  `json:"pageNumber"`
		Number        *int  `json:"number"`
		Size          int   `json:"size"`
	}
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	p.Content = raw.Content
	if p.Content == nil {
		p.Content = []T{}
	}
	p.TotalPages = raw.TotalPages
	p.TotalElements = raw.TotalElements
	p.Size = raw.Size
	switch {
	case raw.PageNumber != nil:
		p.PageNumber = *raw.PageNumber
	case raw.Number != nil:
		p.PageNumber = *raw.Number
	default:
		p.PageNumber = 0
	}
	return nil
}

// EmptyPage 실패 시 화면에 돌려줄 빈 페이지
func EmptyPage[T any](page Pageable) PageResponse[T] {
	return PageResponse[T]{Content: []T{}, PageNumber: page.Page, Size: page.Size}
}
