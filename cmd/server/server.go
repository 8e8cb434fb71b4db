package server

import (
	"fmt"
	"log/slog"

	"social-event-system/config"
	"social-event-system/internal/global/bus"
	"social-event-system/internal/global/database"
	"social-event-system/internal/global/httpclient"
	"social-event-system/internal/global/logger"
	"social-event-system/internal/global/middleware"
	"social-event-system/internal/global/redis"
	"social-event-system/internal/global/sentry"
	"social-event-system/internal/global/storage"
	"social-event-system/internal/module"
	"social-event-system/tools"

	"github.com/gin-gonic/gin"
)

var log *slog.Logger

func Init() {
	config.Init()

	// logger 首次使用时决定是否挂 Sentry，必须先初始化 Sentry
	if err := sentry.Init(); err != nil {
		fmt.Printf("Sentry 初始化失败: %v\n", err)
	}
	log = logger.New("Server")

	database.Init()

	if config.Get().Bus.Driver == "redis" {
		redis.Init()
	}

	httpclient.Init()

	bus.Init()

	tools.PanicOnErr(storage.Init())

	for _, m := range module.Modules {
		log.Info(fmt.Sprintf("Init Module: %s", m.GetName()))
		m.Init()
	}
}

func Run() {
	gin.SetMode(string(config.Get().Mode))
	r := gin.New()

	switch config.Get().Mode {
	case config.ModeRelease:
		r.Use(middleware.Logger(logger.Get()))
	case config.ModeDebug:
		r.Use(gin.Logger())
	}
	r.Use(sentry.Middleware())
	r.Use(middleware.SentryEnrichIP())
	r.Use(middleware.Cors())
	r.Use(middleware.Recovery())

	for _, m := range module.Modules {
		log.Info(fmt.Sprintf("Init Router: %s", m.GetName()))
		m.InitRouter(r.Group("/" + config.Get().Prefix))
	}
	err := r.Run(config.Get().Host + ":" + config.Get().Port)
	tools.PanicOnErr(err)
}
