package model

// MessageSearchCondition 메시지 검색 조건. nil 필드는 "해당 조건 없음".
type MessageSearchCondition struct {
	SearchKeyword *string      `json:"searchKeyword,omitempty" url:"searchKeyword,omitempty"`
	StartDate     *string      `json:"startDate,omitempty" url:"startDate,omitempty"`
	EndDate       *string      `json:"endDate,omitempty" url:"endDate,omitempty"`
	MessageType   *MessageType `json:"messageType,omitempty" url:"messageType,omitempty"`
	DeleteFlag    *DeleteFlag  `json:"deleteFlag,omitempty" url:"deleteFlag,omitempty"`
}

// LogSearchCondition 로그인/활동 로그 검색 조건. ActType 은 활동 로그에만 적용된다.
type LogSearchCondition struct {
	AdminID   *string `json:"adminId,omitempty" url:"adminId,omitempty"`
	StartDate *string `json:"startDate,omitempty" url:"startDate,omitempty"`
	EndDate   *string `json:"endDate,omitempty" url:"endDate,omitempty"`
	IPAddress *string `json:"ipAddress,omitempty" url:"ipAddress,omitempty"`
	ActType   *string `json:"actType,omitempty" url:"actType,omitempty"`
}

// Pageable page 는 0부터 시작. Sort 항목은 "field,asc|desc" 형식.
type Pageable struct {
	Page int      `json:"page" url:"page"`
	Size int      `json:"size" url:"size"`
	Sort []string `json:"sort,omitempty" url:"sort,omitempty"`
}
