package stats

import (
	"log/slog"

	"social-event-system/internal/global/database"
	"social-event-system/internal/global/logger"
)

var (
	log *slog.Logger
	svc *Service
)

type ModuleStats struct{}

func (*ModuleStats) GetName() string {
	return "Stats"
}

func (*ModuleStats) Init() {
	log = logger.New("Stats")
	svc = NewService(database.DB, nil)
}
