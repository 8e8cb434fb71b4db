package notification

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"social-event-system/config"
	"social-event-system/internal/model"
	"social-event-system/test"

	"github.com/go-resty/resty/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFCMPusherRemovesStaleTokens(t *testing.T) {
	db := test.NewDB(t)
	user := test.CreateUser(t, db, nil)
	require.NoError(t, db.Create(&model.DeviceToken{UserID: user.ID, Token: "good", Platform: "ios"}).Error)
	require.NoError(t, db.Create(&model.DeviceToken{UserID: user.ID, Token: "stale", Platform: "android"}).Error)

	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		assert.Equal(t, "key=secret", r.Header.Get("Authorization"))
		var req fcmRequest
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "标题", req.Notification.Title)

		results := make([]map[string]string, len(req.RegistrationIDs))
		for i, token := range req.RegistrationIDs {
			results[i] = map[string]string{}
			if token == "stale" {
				results[i]["error"] = "NotRegistered"
			}
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{"results": results})
	}))
	defer srv.Close()

	p := NewFCMPusher(resty.New(), db, config.Push{FCMServerKey: "secret", Endpoint: srv.URL})
	require.True(t, p.Enabled())
	p.SendToUser(context.Background(), user.ID, PushPayload{Title: "标题", Body: "内容"})

	assert.EqualValues(t, 1, calls.Load())
	var tokens []string
	require.NoError(t, db.Model(&model.DeviceToken{}).Pluck("token", &tokens).Error)
	assert.Equal(t, []string{"good"}, tokens)
}

func TestFCMPusherDisabledWithoutKey(t *testing.T) {
	db := test.NewDB(t)
	user := test.CreateUser(t, db, nil)
	require.NoError(t, db.Create(&model.DeviceToken{UserID: user.ID, Token: "t1"}).Error)

	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
	}))
	defer srv.Close()

	p := NewFCMPusher(resty.New(), db, config.Push{Endpoint: srv.URL})
	assert.False(t, p.Enabled())
	p.SendToUser(context.Background(), user.ID, PushPayload{Title: "x"})
	assert.Zero(t, calls.Load())
}
