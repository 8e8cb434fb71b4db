package participation

import (
	"log/slog"

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

type ModuleParticipation struct{}

func (*ModuleParticipation) GetName() string {
	return "Participation"
}

func (*ModuleParticipation) Init() {
	log = logger.New("Participation")
	svc = NewService(
		database.DB,
		policy.UserBirthDates{DB: database.DB},
		notification.NewPublisher(bus.Default),
		sweeper.New(database.DB, nil, log),
		nil,
	)
}
