package notification

import (
	"context"
	"log/slog"
	"slices"
	"strings"

	"social-event-system/config"
	"social-event-system/internal/global/logger"
	"social-event-system/internal/model"

	"github.com/go-resty/resty/v2"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"
)

const maxTokensPerBatch = 500

type PushPayload struct {
	Title string
	Body  string
	Badge int64
	Data  map[string]string
}

type Pusher interface {
	SendToUser(ctx context.Context, userID uint, payload PushPayload)
}

// FCMPusher 通过 FCM legacy HTTP 接口推送，未配置 server key 时不推送
type FCMPusher struct {
	client    *resty.Client
	db        *gorm.DB
	serverKey string
	endpoint  string
	log       *slog.Logger
}

func NewFCMPusher(client *resty.Client, db *gorm.DB, cfg config.Push) *FCMPusher {
	endpoint := cfg.Endpoint
	if endpoint == "" {
		endpoint = "https://fcm.googleapis.com/fcm/send"
	}
	return &FCMPusher{
		client:    client,
		db:        db,
		serverKey: strings.TrimSpace(cfg.FCMServerKey),
		endpoint:  endpoint,
		log:       logger.New("Push"),
	}
}

func (p *FCMPusher) Enabled() bool {
	return p.serverKey != ""
}

func (p *FCMPusher) SendToUser(ctx context.Context, userID uint, payload PushPayload) {
	p.SendToUsers(ctx, []uint{userID}, payload)
}

func (p *FCMPusher) SendToUsers(ctx context.Context, userIDs []uint, payload PushPayload) {
	if !p.Enabled() || len(userIDs) == 0 {
		return
	}
	var tokens []string
	err := p.db.WithContext(ctx).Model(&model.DeviceToken{}).
		Where("user_id IN ?", userIDs).
		Pluck("token", &tokens).Error
	if err != nil {
		p.log.Error("查询推送设备失败", "error", err)
		return
	}

	g, ctx := errgroup.WithContext(ctx)
	for batch := range slices.Chunk(tokens, maxTokensPerBatch) {
		g.Go(func() error {
			p.dispatch(ctx, batch, payload)
			return nil
		})
	}
	_ = g.Wait()
}

type fcmRequest struct {
	RegistrationIDs []string          `json:"registration_ids"`
	Notification    fcmNotification   `json:"notification"`
	Data            map[string]string `json:"data"`
}

type fcmNotification struct {
	Title string `json:"title"`
	Body  string `json:"body"`
	Badge int64  `json:"badge"`
}

type fcmResponse struct {
	Results []struct {
		Error string `json:"error"`
	} `json:"results"`
}

// 这些错误说明 token 已失效，直接删除
var staleTokenErrors = []string{"NotRegistered", "InvalidRegistration", "MismatchSenderId"}

func (p *FCMPusher) dispatch(ctx context.Context, tokens []string, payload PushPayload) {
	data := payload.Data
	if data == nil {
		data = map[string]string{}
	}
	var result fcmResponse
	resp, err := p.client.R().
		SetContext(ctx).
		SetHeader("Authorization", "key="+p.serverKey).
		SetBody(fcmRequest{
			RegistrationIDs: tokens,
			Notification:    fcmNotification{Title: payload.Title, Body: payload.Body, Badge: payload.Badge},
			Data:            data,
		}).
		SetResult(&result).
		Post(p.endpoint)
	if err != nil {
		p.log.Error("推送失败", "error", err)
		return
	}
	if resp.IsError() {
		p.log.Warn("FCM 请求失败", "status", resp.StatusCode(), "body", resp.String())
		return
	}

	var stale []string
	for i, r := range result.Results {
		if r.Error == "" || i >= len(tokens) {
			continue
		}
		if slices.Contains(staleTokenErrors, r.Error) {
			stale = append(stale, tokens[i])
		} else {
			p.log.Warn("FCM 返回错误", "error", r.Error, "token", tokens[i])
		}
	}
	if len(stale) > 0 {
		if err := p.db.WithContext(ctx).Where("token IN ?", stale).Delete(&model.DeviceToken{}).Error; err != nil {
			p.log.Error("删除失效推送设备失败", "error", err)
		}
	}
}
