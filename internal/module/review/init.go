package review

import (
	"log/slog"

	"social-event-system/internal/global/database"
	"social-event-system/internal/global/logger"
)

var (
	log *slog.Logger
	svc *Service
)

type ModuleReview struct{}

func (*ModuleReview) GetName() string {
	return "Review"
}

func (*ModuleReview) Init() {
	log = logger.New("Review")
	svc = NewService(database.DB, nil)
}
