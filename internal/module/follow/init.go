package follow

import (
	"log/slog"

	"social-event-system/internal/global/bus"
	"social-event-system/internal/global/database"
	"social-event-system/internal/global/logger"
	"social-event-system/internal/module/notification"
)

var (
	log *slog.Logger
	svc *Service
)

type ModuleFollow struct{}

func (*ModuleFollow) GetName() string {
	return "Follow"
}

func (*ModuleFollow) Init() {
	log = logger.New("Follow")
	svc = NewService(database.DB, notification.NewPublisher(bus.Default))
}
