package follow

import (
	"context"
	"net/http"
	"strconv"
	"sync"
	"testing"

	"social-event-system/internal/global/logger"
	"social-event-system/internal/global/response"
	"social-event-system/internal/model"
	"social-event-system/test"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingNotifier struct {
	mu    sync.Mutex
	pairs [][2]uint
}

func (n *recordingNotifier) NotifyNewFollower(_ context.Context, followerID, followeeID uint) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.pairs = append(n.pairs, [2]uint{followerID, followeeID})
}

func briefIDs(list []model.UserBrief) []uint {
	out := make([]uint, 0, len(list))
	for _, u := range list {
		out = append(out, u.ID)
	}
	return out
}

func TestFollow(t *testing.T) {
	db := test.NewDB(t)
	n := &recordingNotifier{}
	s := NewService(db, n)
	ctx := context.Background()
	a := test.CreateUser(t, db, nil)
	b := test.CreateUser(t, db, nil)
	c := test.CreateUser(t, db, nil)

	assert.ErrorIs(t, s.Follow(ctx, a.ID, a.ID), response.ErrInvalidRequest)
	assert.ErrorIs(t, s.Follow(ctx, a.ID, 9999), response.ErrNotFound)

	require.NoError(t, s.Follow(ctx, a.ID, b.ID))
	require.NoError(t, s.Follow(ctx, a.ID, b.ID))
	require.NoError(t, s.Follow(ctx, c.ID, b.ID))
	require.NoError(t, s.Follow(ctx, a.ID, c.ID))
	assert.Equal(t, [][2]uint{{a.ID, b.ID}, {c.ID, b.ID}, {a.ID, c.ID}}, n.pairs)

	var count int64
	require.NoError(t, db.Model(&model.Follow{}).Where("follower_id = ? AND followee_id = ?", a.ID, b.ID).Count(&count).Error)
	assert.EqualValues(t, 1, count)

	followers, err := s.Followers(ctx, b.ID)
	require.NoError(t, err)
	assert.ElementsMatch(t, []uint{a.ID, c.ID}, briefIDs(followers))

	following, err := s.Following(ctx, a.ID)
	require.NoError(t, err)
	assert.ElementsMatch(t, []uint{b.ID, c.ID}, briefIDs(following))

	require.NoError(t, s.Unfollow(ctx, a.ID, b.ID))
	require.NoError(t, s.Unfollow(ctx, a.ID, b.ID))
	followers, err = s.Followers(ctx, b.ID)
	require.NoError(t, err)
	assert.Equal(t, []uint{c.ID}, briefIDs(followers))

	// 取消后重新关注会再次通知
	require.NoError(t, s.Follow(ctx, a.ID, b.ID))
	assert.Len(t, n.pairs, 4)

	_, err = s.Following(ctx, 9999)
	assert.ErrorIs(t, err, response.ErrNotFound)
}

func TestFollowRoutes(t *testing.T) {
	db := test.NewDB(t)
	svc = NewService(db, &recordingNotifier{})
	log = logger.New("Follow")
	r := test.Router((&ModuleFollow{}).InitRouter)
	a := test.CreateUser(t, db, nil)
	b := test.CreateUser(t, db, nil)

	w, _ := test.Call(t, r, http.MethodPost, "/api/users/"+itoa(b.ID)+"/follow", "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	_, resp := test.Call(t, r, http.MethodPost, "/api/users/"+itoa(a.ID)+"/follow", test.Token(t, a), nil)
	test.ErrorCode(t, response.ErrInvalidRequest, resp)

	_, resp = test.Call(t, r, http.MethodPost, "/api/users/"+itoa(b.ID)+"/follow", test.Token(t, a), nil)
	test.NoError(t, resp)

	_, resp = test.Call(t, r, http.MethodGet, "/api/users/"+itoa(b.ID)+"/followers", test.Token(t, a), nil)
	test.NoError(t, resp)
	var list []model.UserBrief
	test.DecodeData(t, resp, &list)
	require.Len(t, list, 1)
	assert.Equal(t, a.ID, list[0].ID)

	_, resp = test.Call(t, r, http.MethodDelete, "/api/users/"+itoa(b.ID)+"/follow", test.Token(t, a), nil)
	test.NoError(t, resp)
	_, resp = test.Call(t, r, http.MethodGet, "/api/users/"+itoa(a.ID)+"/following", test.Token(t, a), nil)
	test.DecodeData(t, resp, &list)
	assert.Empty(t, list)
}

func itoa(id uint) string {
	return strconv.FormatUint(uint64(id), 10)
}
