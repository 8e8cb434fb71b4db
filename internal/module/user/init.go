package user

import (
	"log/slog"

	"social-event-system/internal/global/database"
	"social-event-system/internal/global/logger"
)

var (
	log *slog.Logger
	svc *Service
)

type ModuleUser struct{}

func (*ModuleUser) GetName() string {
	return "User"
}

func (*ModuleUser) Init() {
	log = logger.New("User")
	svc = NewService(database.DB, nil)
}
