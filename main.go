package main

import (
	"time"

	"social-event-system/cmd/server"
	"social-event-system/internal/global/sentry"
)

func main() {
	defer sentry.Flush(2 * time.Second)

	server.Init()
	server.Run()
}
