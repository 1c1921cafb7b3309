package model

// FlowerContentMaxLen 꽃 메시지 본문 최대 글자 수 (rune 기준)
const FlowerContentMaxLen = 50

type MessageType string

const (
	MessageTypeFlower MessageType = "FLOWER"
	MessageTypeLeaf   MessageType = "LEAF"
)

// DeleteFlag 소프트 삭제 여부
type DeleteFlag string

const (
	Deleted    DeleteFlag = "Y"
	NotDeleted DeleteFlag = "N"
)

// Message 꽃/나뭇잎 메시지 공통 구조. 나뭇잎은 조회/삭제만 가능하다.
type Message struct {
	ID          int64       `json:"id"`
	Content     string      `json:"content"`
	CreatedAt   string      `json:"createdAt"`
	UpdatedAt   string      `json:"updatedAt,omitempty"`
	DeleteFlag  DeleteFlag  `json:"deleteFlag"`
	MessageType MessageType `json:"messageType"`
}

type (
	FlowerMessage = Message
	LeafMessage   = Message
)

func (m Message) IsDeleted() bool { return m.DeleteFlag == Deleted }

type FlowerMessageUpdateRequest struct {
	Content string `json:"content" validate:"required,max=50"`
}

// ExportFile 엑셀 다운로드 결과 (envelope 없이 바이너리 그대로)
type ExportFile struct {
	Filename    string
	ContentType string
	Data        []byte
}
