package module

import (
	"social-event-system/internal/module/event"
	"social-event-system/internal/module/file"
	"social-event-system/internal/module/follow"
	"social-event-system/internal/module/notification"
	"social-event-system/internal/module/participation"
	"social-event-system/internal/module/ping"
	"social-event-system/internal/module/review"
	"social-event-system/internal/module/stats"
	"social-event-system/internal/module/user"

	"github.com/gin-gonic/gin"
)

type Module interface {
	GetName() string
	Init()
	InitRouter(r *gin.RouterGroup)
}

var Modules []Module

func registerModule(m []Module) {
	Modules = append(Modules, m...)
}

func init() {
	// Register your module here
	registerModule([]Module{
		&user.ModuleUser{},
		&ping.ModulePing{},
		&notification.ModuleNotification{},
		&event.ModuleEvent{},
		&participation.ModuleParticipation{},
		&review.ModuleReview{},
		&follow.ModuleFollow{},
		&file.ModuleFile{},
		&stats.ModuleStats{},
	})
}
