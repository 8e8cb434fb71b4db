package event

import (
	"fmt"
	"net/http"
	"testing"
	"time"

	"social-event-system/internal/global/logger"
	"social-event-system/internal/global/response"
	"social-event-system/internal/model"
	"social-event-system/test"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRouter(t *testing.T) (*fixture, *gin.Engine) {
	f := newFixture(t)
	svc = f.svc
	log = logger.New("Event")
	return f, test.Router((&ModuleEvent{}).InitRouter)
}

func TestEventRoutes(t *testing.T) {
	f, r := newRouter(t)
	owner := test.CreateUser(t, f.db, nil)
	minor := test.CreateUser(t, f.db, test.BirthDateYearsAgo(f.now, 15))
	start := f.now.Add(48 * time.Hour)

	w, _ := test.Call(t, r, http.MethodPost, "/api/events", "", gin.H{"title": "x"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	_, resp := test.Call(t, r, http.MethodPost, "/api/events", test.Token(t, owner), gin.H{"title": "x"})
	test.ErrorCode(t, response.ErrInvalidRequest, resp)

	w, resp = test.Call(t, r, http.MethodPost, "/api/events", test.Token(t, owner), gin.H{
		"title":         "深夜品酒",
		"start_at":      start,
		"end_at":        start.Add(3 * time.Hour),
		"is_adult_only": true,
		"city":          "上海",
	})
	require.Equal(t, http.StatusOK, w.Code)
	test.NoError(t, resp)
	var created model.Event
	test.DecodeData(t, resp, &created)
	assert.Equal(t, model.EventPublished, created.Status)
	assert.Equal(t, []uint{created.ID}, f.notifier.created)

	path := fmt.Sprintf("/api/events/%d", created.ID)

	// 游客可以看到成人活动
	w, resp = test.Call(t, r, http.MethodGet, path, "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	test.NoError(t, resp)

	w, resp = test.Call(t, r, http.MethodGet, path, test.Token(t, minor), nil)
	assert.Equal(t, http.StatusForbidden, w.Code)
	test.ErrorEqual(t, response.ErrAgeRestricted, resp)

	_, resp = test.Call(t, r, http.MethodGet, "/api/events", test.Token(t, minor), nil)
	test.NoError(t, resp)
	var list []View
	test.DecodeData(t, resp, &list)
	assert.Empty(t, list)

	_, resp = test.Call(t, r, http.MethodPatch, path+"/status", test.Token(t, owner), gin.H{"status": "draft"})
	test.NoError(t, resp)

	_, resp = test.Call(t, r, http.MethodGet, "/api/events", "", nil)
	test.DecodeData(t, resp, &list)
	assert.Empty(t, list)

	_, resp = test.Call(t, r, http.MethodGet, "/api/events/mine", test.Token(t, owner), nil)
	test.NoError(t, resp)
	test.DecodeData(t, resp, &list)
	require.Len(t, list, 1)
	assert.Equal(t, model.EventDraft, list[0].Status)

	_, resp = test.Call(t, r, http.MethodPut, path, test.Token(t, minor), gin.H{"title": "改"})
	test.ErrorEqual(t, response.ErrForbidden, resp)

	_, resp = test.Call(t, r, http.MethodDelete, path, test.Token(t, owner), nil)
	test.NoError(t, resp)
	w, resp = test.Call(t, r, http.MethodGet, path, "", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	test.ErrorCode(t, response.ErrNotFound, resp)
}

func TestParticipatingRoute(t *testing.T) {
	f, r := newRouter(t)
	owner := test.CreateUser(t, f.db, nil)
	user := test.CreateUser(t, f.db, nil)
	e := test.CreateEvent(t, f.db, owner.ID)
	test.CreateParticipation(t, f.db, e.ID, user.ID, model.StatusApproved)

	_, resp := test.Call(t, r, http.MethodGet, "/api/events/participating", test.Token(t, user), nil)
	test.NoError(t, resp)
	var list []View
	test.DecodeData(t, resp, &list)
	require.Len(t, list, 1)
	assert.Equal(t, e.ID, list[0].ID)
	require.NotNil(t, list[0].ParticipationStatus)
	assert.Equal(t, model.StatusApproved, *list[0].ParticipationStatus)

	_, resp = test.Call(t, r, http.MethodGet, "/api/categories", "", nil)
	test.NoError(t, resp)
}
