package handler

import (
	consoleh "garden-console/internal/server/http/handler/console"
)

// HandlerSet router 가 쓰는 핸들러 묶음
type HandlerSet struct {
	Auth      *consoleh.AuthHandler
	Message   *consoleh.MessageHandler
	Account   *consoleh.AccountHandler
	Log       *consoleh.LogHandler
	Dashboard *consoleh.DashboardHandler
}

func NewHandlerSet(d consoleh.Dependencies) *HandlerSet {
	return &HandlerSet{
		Auth:      consoleh.NewAuthHandler(d),
		Message:   consoleh.NewMessageHandler(d),
		Account:   consoleh.NewAccountHandler(d),
		Log:       consoleh.NewLogHandler(d),
		Dashboard: consoleh.NewDashboardHandler(d),
	}
}
