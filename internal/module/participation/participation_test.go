package participation

import (
	"fmt"
	"net/http"
	"testing"

	"social-event-system/internal/global/logger"
	"social-event-system/internal/global/response"
	"social-event-system/internal/model"
	"social-event-system/test"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func newRouter(t *testing.T) (*fixture, *gin.Engine) {
	f := newFixture(t)
	svc = f.svc
	log = logger.New("Participation")
	r := test.Router((&ModuleParticipation{}).InitRouter)
	return f, r
}

func TestJoinAndReviewOverHTTP(t *testing.T) {
	f, r := newRouter(t)
	owner := test.CreateUser(t, f.db, nil)
	user := test.CreateUser(t, f.db, nil)
	e := test.CreateEvent(t, f.db, owner.ID, test.WithApproval())
	base := fmt.Sprintf("/api/events/%d/participations", e.ID)

	w, resp := test.Call(t, r, http.MethodPost, base, "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	test.ErrorEqual(t, response.ErrUnauthorized, resp)

	_, resp = test.Call(t, r, http.MethodPost, base, test.Token(t, owner), nil)
	test.ErrorEqual(t, response.ErrOwnerCannotRequest, resp)

	w, resp = test.Call(t, r, http.MethodPost, base, test.Token(t, user), nil)
	require.Equal(t, http.StatusOK, w.Code)
	test.NoError(t, resp)
	var joined struct {
		ID            uint                      `json:"id"`
		Status        model.ParticipationStatus `json:"status"`
		Autoconfirmed bool                      `json:"autoconfirmed"`
	}
	test.DecodeData(t, resp, &joined)
	assert.Equal(t, model.StatusRequested, joined.Status)
	assert.False(t, joined.Autoconfirmed)

	// 参与者不能审核
	path := fmt.Sprintf("%s/%d", base, joined.ID)
	w, resp = test.Call(t, r, http.MethodPatch, path, test.Token(t, user), gin.H{"status": "approved"})
	assert.Equal(t, http.StatusForbidden, w.Code)
	test.ErrorEqual(t, response.ErrForbidden, resp)

	_, resp = test.Call(t, r, http.MethodPatch, path, test.Token(t, owner), gin.H{"status": "maybe"})
	test.ErrorCode(t, response.ErrInvalidRequest, resp)

	_, resp = test.Call(t, r, http.MethodPatch, path, test.Token(t, owner), gin.H{"status": "approved"})
	test.NoError(t, resp)
	assert.Equal(t, 1, f.notifier.count())

	_, resp = test.Call(t, r, http.MethodGet, base+"/me", test.Token(t, user), nil)
	test.NoError(t, resp)
	var view struct {
		Participation struct {
			Status model.ParticipationStatus `json:"status"`
		} `json:"participation"`
		AvailableSpots *int `json:"available_spots"`
	}
	test.DecodeData(t, resp, &view)
	assert.Equal(t, model.StatusApproved, view.Participation.Status)
	assert.Nil(t, view.AvailableSpots)

	_, resp = test.Call(t, r, http.MethodDelete, base+"/me", test.Token(t, user), nil)
	test.NoError(t, resp)

	_, resp = test.Call(t, r, http.MethodGet, base, test.Token(t, owner), nil)
	test.NoError(t, resp)
	var items []struct {
		Status model.ParticipationStatus `json:"status"`
		Email  string                    `json:"email"`
	}
	test.DecodeData(t, resp, &items)
	require.Len(t, items, 1)
	assert.Equal(t, model.StatusCancelled, items[0].Status)
	assert.Equal(t, user.Email, items[0].Email)
}

func TestExport(t *testing.T) {
	f, r := newRouter(t)
	owner := test.CreateUser(t, f.db, nil)
	a := test.CreateUser(t, f.db, nil)
	b := test.CreateUser(t, f.db, nil)
	e := test.CreateEvent(t, f.db, owner.ID)
	test.CreateParticipation(t, f.db, e.ID, a.ID, model.StatusRejected)
	test.CreateParticipation(t, f.db, e.ID, b.ID, model.StatusApproved)
	path := fmt.Sprintf("/api/events/%d/participations/export", e.ID)

	w, resp := test.Call(t, r, http.MethodGet, path, test.Token(t, a), nil)
	assert.Equal(t, http.StatusForbidden, w.Code)
	test.ErrorEqual(t, response.ErrForbidden, resp)

	w, _ = test.Call(t, r, http.MethodGet, path, test.Token(t, owner), nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Disposition"), "attachment")

	book, err := excelize.OpenReader(w.Body)
	require.NoError(t, err)
	defer book.Close()
	rows, err := book.GetRows("Sheet1")
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, "报名ID", rows[0][0])
	// 已通过排在已拒绝之前
	assert.Equal(t, b.Email, rows[1][4])
	assert.Equal(t, string(model.StatusApproved), rows[1][5])
	assert.Equal(t, a.Email, rows[2][4])
}
