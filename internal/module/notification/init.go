package notification

import (
	"context"
	"log/slog"

	"social-event-system/config"
	"social-event-system/internal/global/bus"
	"social-event-system/internal/global/database"
	"social-event-system/internal/global/httpclient"
	"social-event-system/internal/global/logger"
	"social-event-system/internal/global/sentry"
)

var (
	log *slog.Logger
	svc *Service
)

type ModuleNotification struct{}

func (*ModuleNotification) GetName() string {
	return "Notification"
}

// Init 启动消息消费者和活动提醒任务
func (*ModuleNotification) Init() {
	log = logger.New("Notification")
	svc = NewService(database.DB)

	cfg := config.Get()
	pusher := NewFCMPusher(httpclient.Client, database.DB, cfg.Push)
	if !pusher.Enabled() {
		log.Info("未配置 FCM，推送已关闭")
	}
	consumer := NewConsumer(database.DB, pusher)

	ctx := context.Background()
	go func() {
		handle := func(ctx context.Context, msg bus.Message) error {
			err := consumer.Handle(ctx, msg)
			sentry.CaptureJobError(ctx, "notification."+string(msg.Type), err)
			return err
		}
		if err := bus.Default.Consume(ctx, handle); err != nil {
			log.Error("通知消费者退出", "error", err)
		}
	}()

	reminder := NewReminder(database.DB, NewPublisher(bus.Default), cfg.Schedule.ReminderWindow)
	go reminder.Run(ctx, cfg.Schedule.ReminderInterval)
}
