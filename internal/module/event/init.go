package event

import (
	"context"
	"log/slog"

	"social-event-system/config"
	"social-event-system/internal/global/bus"
	"social-event-system/internal/global/database"
	"social-event-system/internal/global/logger"
	"social-event-system/internal/module/event/policy"
	"social-event-system/internal/module/event/sweeper"
	"social-event-system/internal/module/notification"
)

var (
	log *slog.Logger
	svc *Service
)

type ModuleEvent struct{}

func (*ModuleEvent) GetName() string {
	return "Event"
}

// Init 除了读取前归档，也按配置的间隔定期归档已结束的活动
func (*ModuleEvent) Init() {
	log = logger.New("Event")
	sw := sweeper.New(database.DB, nil, log)
	svc = NewService(
		database.DB,
		policy.UserBirthDates{DB: database.DB},
		notification.NewPublisher(bus.Default),
		sw,
		nil,
	)
	go sw.Run(context.Background(), config.Get().Schedule.SweepInterval)
}
