package event

import (
	"context"
	"sync"
	"testing"
	"time"

	"social-event-system/internal/global/logger"
	"social-event-system/internal/global/response"
	"social-event-system/internal/model"
	"social-event-system/internal/module/event/policy"
	"social-event-system/internal/module/event/sweeper"
	"social-event-system/test"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type recordingNotifier struct {
	mu      sync.Mutex
	created []uint
	updated []uint
}

func (n *recordingNotifier) NotifyEventCreated(_ context.Context, eventID, _ uint) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.created = append(n.created, eventID)
}

func (n *recordingNotifier) NotifyEventUpdated(_ context.Context, eventID, _ uint) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.updated = append(n.updated, eventID)
}

type fixture struct {
	db       *gorm.DB
	svc      *Service
	notifier *recordingNotifier
	now      time.Time
}

func newFixture(t *testing.T) *fixture {
	db := test.NewDB(t)
	f := &fixture{db: db, notifier: &recordingNotifier{}, now: time.Now().UTC().Truncate(time.Second)}
	clock := func() time.Time { return f.now }
	f.svc = NewService(db, policy.UserBirthDates{DB: db}, f.notifier, sweeper.New(db, clock, logger.New("Test")), clock)
	return f
}

func ids(views []View) []uint {
	out := make([]uint, 0, len(views))
	for _, v := range views {
		out = append(out, v.ID)
	}
	return out
}

func TestCreate(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	owner := test.CreateUser(t, f.db, nil)
	start := f.now.Add(time.Hour)

	_, err := f.svc.Create(ctx, owner.ID, Input{Title: "x", StartAt: start, EndAt: start})
	assert.ErrorIs(t, err, response.ErrInvalidRequest)

	_, err = f.svc.Create(ctx, owner.ID, Input{Title: "x", StartAt: start, EndAt: start.Add(time.Hour), CategoryID: 999})
	assert.ErrorIs(t, err, response.ErrNotFound)

	price := 30.0
	e, err := f.svc.Create(ctx, owner.ID, Input{
		Title: "读书会", StartAt: start, EndAt: start.Add(time.Hour),
		Price: &price, Currency: "CNY",
	})
	require.NoError(t, err)
	assert.Equal(t, model.EventPublished, e.Status)
	assert.Nil(t, e.Price, "免费活动不保存价格")
	defaultID, err := model.DefaultCategoryID(f.db)
	require.NoError(t, err)
	assert.Equal(t, defaultID, e.CategoryID)
	assert.Equal(t, []uint{e.ID}, f.notifier.created)

	draft, err := f.svc.Create(ctx, owner.ID, Input{Title: "草稿", StartAt: start, EndAt: start.Add(time.Hour), Status: model.EventDraft})
	require.NoError(t, err)
	assert.Equal(t, model.EventDraft, draft.Status)
	assert.Len(t, f.notifier.created, 1)
}

func TestUpdate(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	owner := test.CreateUser(t, f.db, nil)
	other := test.CreateUser(t, f.db, nil)
	e := test.CreateEvent(t, f.db, owner.ID, test.WithCapacity(3))

	title := "新标题"
	_, err := f.svc.Update(ctx, e.ID, other.ID, Update{Title: &title})
	assert.ErrorIs(t, err, response.ErrForbidden)

	_, err = f.svc.Update(ctx, 999, owner.ID, Update{Title: &title})
	assert.ErrorIs(t, err, response.ErrNotFound)

	badEnd := e.StartAt.Add(-time.Minute)
	_, err = f.svc.Update(ctx, e.ID, owner.ID, Update{EndAt: &badEnd})
	assert.ErrorIs(t, err, response.ErrInvalidRequest)

	unlimited := 0
	updated, err := f.svc.Update(ctx, e.ID, owner.ID, Update{Title: &title, Capacity: &unlimited})
	require.NoError(t, err)
	assert.Equal(t, title, updated.Title)
	assert.Nil(t, updated.Capacity)
	assert.Equal(t, []uint{e.ID}, f.notifier.updated)

	var stored model.Event
	require.NoError(t, f.db.First(&stored, e.ID).Error)
	assert.Equal(t, title, stored.Title)
	assert.Nil(t, stored.Capacity)
}

func TestSetStatusAndDelete(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	owner := test.CreateUser(t, f.db, nil)
	e := test.CreateEvent(t, f.db, owner.ID)
	ended := test.CreateEvent(t, f.db, owner.ID, test.WithStatus(model.EventDraft),
		test.WithWindow(f.now.Add(-3*time.Hour), f.now.Add(-time.Hour)))

	_, err := f.svc.SetStatus(ctx, e.ID, owner.ID, "archived")
	assert.ErrorIs(t, err, response.ErrInvalidRequest)

	got, err := f.svc.SetStatus(ctx, e.ID, owner.ID, model.EventDraft)
	require.NoError(t, err)
	assert.Equal(t, model.EventDraft, got.Status)

	_, err = f.svc.SetStatus(ctx, ended.ID, owner.ID, model.EventPublished)
	assert.ErrorIs(t, err, response.ErrInvalidRequest)

	stranger := test.CreateUser(t, f.db, nil)
	assert.ErrorIs(t, f.svc.Delete(ctx, e.ID, stranger.ID), response.ErrForbidden)
	require.NoError(t, f.svc.Delete(ctx, e.ID, owner.ID))
	_, err = f.svc.Get(ctx, e.ID, nil)
	assert.ErrorIs(t, err, response.ErrNotFound)
}

func TestListFilters(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	owner := test.CreateUser(t, f.db, nil)
	minor := test.CreateUser(t, f.db, test.BirthDateYearsAgo(f.now, 16))
	adult := test.CreateUser(t, f.db, test.BirthDateYearsAgo(f.now, 30))
	unknown := test.CreateUser(t, f.db, nil)

	open := test.CreateEvent(t, f.db, owner.ID, test.WithCity("杭州"))
	adultOnly := test.CreateEvent(t, f.db, owner.ID, test.WithAdultOnly())
	draft := test.CreateEvent(t, f.db, owner.ID, test.WithStatus(model.EventDraft))
	expired := test.CreateEvent(t, f.db, owner.ID, test.WithWindow(f.now.Add(-3*time.Hour), f.now.Add(-time.Hour)))

	list, err := f.svc.List(ctx, nil, ListFilter{})
	require.NoError(t, err)
	assert.Equal(t, []uint{open.ID, adultOnly.ID}, ids(list))

	// 读取前已归档
	var e model.Event
	require.NoError(t, f.db.First(&e, expired.ID).Error)
	assert.Equal(t, model.EventDraft, e.Status)

	list, err = f.svc.List(ctx, &minor.ID, ListFilter{})
	require.NoError(t, err)
	assert.Equal(t, []uint{open.ID}, ids(list))

	list, err = f.svc.List(ctx, &adult.ID, ListFilter{})
	require.NoError(t, err)
	assert.Len(t, list, 2)

	list, err = f.svc.List(ctx, &unknown.ID, ListFilter{})
	require.NoError(t, err)
	assert.Len(t, list, 2)

	list, err = f.svc.List(ctx, nil, ListFilter{City: "杭州"})
	require.NoError(t, err)
	assert.Equal(t, []uint{open.ID}, ids(list))

	list, err = f.svc.List(ctx, &owner.ID, ListFilter{ExcludeMine: true})
	require.NoError(t, err)
	assert.Empty(t, list)

	list, err = f.svc.List(ctx, &owner.ID, ListFilter{Owner: "me"})
	require.NoError(t, err)
	assert.ElementsMatch(t, []uint{open.ID, adultOnly.ID, draft.ID, expired.ID}, ids(list))

	_, err = f.svc.List(ctx, nil, ListFilter{Owner: "me"})
	assert.ErrorIs(t, err, response.ErrUnauthorized)
}

func TestListGeo(t *testing.T) {
	f := newFixture(t)
	owner := test.CreateUser(t, f.db, nil)

	// 以人民广场为中心
	lat, lon := 31.2304, 121.4737
	far := test.CreateEvent(t, f.db, owner.ID, test.WithAddress("苏州", 31.2990, 120.5853))
	near := test.CreateEvent(t, f.db, owner.ID, test.WithAddress("外滩", 31.2400, 121.4900))
	mid := test.CreateEvent(t, f.db, owner.ID, test.WithAddress("虹桥", 31.1979, 121.3363))
	test.CreateEvent(t, f.db, owner.ID)

	list, err := f.svc.List(context.Background(), nil, ListFilter{Lat: &lat, Lon: &lon})
	require.NoError(t, err)
	require.Equal(t, []uint{near.ID, mid.ID}, ids(list))
	require.NotNil(t, list[0].DistanceKm)
	assert.Less(t, *list[0].DistanceKm, *list[1].DistanceKm)

	list, err = f.svc.List(context.Background(), nil, ListFilter{Lat: &lat, Lon: &lon, RadiusKm: 100})
	require.NoError(t, err)
	assert.Equal(t, []uint{near.ID, mid.ID, far.ID}, ids(list))

	// 需审核活动的地址对陌生人隐藏，距离查询也不能暴露它的位置
	hidden := test.CreateEvent(t, f.db, owner.ID, test.WithApproval(), test.WithAddress("秘密基地", 31.2410, 121.4950))
	stranger := test.CreateUser(t, f.db, nil)
	approved := test.CreateUser(t, f.db, nil)
	test.CreateParticipation(t, f.db, hidden.ID, approved.ID, model.StatusApproved)
	hLat, hLon := 31.2410, 121.4950

	for _, viewer := range []*uint{nil, &stranger.ID} {
		list, err = f.svc.List(context.Background(), viewer, ListFilter{Lat: &hLat, Lon: &hLon, RadiusKm: 0.01})
		require.NoError(t, err)
		assert.Empty(t, list)

		list, err = f.svc.List(context.Background(), viewer, ListFilter{Lat: &lat, Lon: &lon})
		require.NoError(t, err)
		assert.Equal(t, []uint{near.ID, mid.ID}, ids(list))
	}

	// 不做距离查询时依然可见，只是没有地址
	list, err = f.svc.List(context.Background(), &stranger.ID, ListFilter{})
	require.NoError(t, err)
	require.Contains(t, ids(list), hidden.ID)
	for _, v := range list {
		if v.ID == hidden.ID {
			assert.True(t, v.IsAddressHidden)
			assert.Nil(t, v.Lat)
			assert.Nil(t, v.DistanceKm)
		}
	}

	for _, viewer := range []*uint{&approved.ID, &owner.ID} {
		list, err = f.svc.List(context.Background(), viewer, ListFilter{Lat: &hLat, Lon: &hLon, RadiusKm: 0.01})
		require.NoError(t, err)
		require.Equal(t, []uint{hidden.ID}, ids(list))
		require.NotNil(t, list[0].DistanceKm)
		assert.InDelta(t, 0, *list[0].DistanceKm, 0.001)
	}
}

func TestGetPolicyAndSpots(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	owner := test.CreateUser(t, f.db, nil)
	minor := test.CreateUser(t, f.db, test.BirthDateYearsAgo(f.now, 17))
	approved := test.CreateUser(t, f.db, nil)
	requested := test.CreateUser(t, f.db, nil)

	e := test.CreateEvent(t, f.db, owner.ID, test.WithApproval(), test.WithCapacity(2), test.WithAddress("秘密基地", 30.1, 120.2))
	test.CreateParticipation(t, f.db, e.ID, approved.ID, model.StatusApproved)
	test.CreateParticipation(t, f.db, e.ID, requested.ID, model.StatusRequested)

	v, err := f.svc.Get(ctx, e.ID, nil)
	require.NoError(t, err)
	assert.True(t, v.IsAddressHidden)
	assert.Nil(t, v.Address)
	assert.Nil(t, v.Lat)
	require.NotNil(t, v.AvailableSpots)
	assert.Equal(t, 1, *v.AvailableSpots)
	assert.Nil(t, v.ParticipationStatus)

	v, err = f.svc.Get(ctx, e.ID, &requested.ID)
	require.NoError(t, err)
	assert.True(t, v.IsAddressHidden)
	require.NotNil(t, v.ParticipationStatus)
	assert.Equal(t, model.StatusRequested, *v.ParticipationStatus)

	v, err = f.svc.Get(ctx, e.ID, &approved.ID)
	require.NoError(t, err)
	assert.False(t, v.IsAddressHidden)
	require.NotNil(t, v.Address)
	assert.Equal(t, "秘密基地", *v.Address)

	v, err = f.svc.Get(ctx, e.ID, &owner.ID)
	require.NoError(t, err)
	assert.False(t, v.IsAddressHidden)
	assert.Equal(t, owner.ID, v.Owner.ID)

	adultOnly := test.CreateEvent(t, f.db, owner.ID, test.WithAdultOnly())
	_, err = f.svc.Get(ctx, adultOnly.ID, &minor.ID)
	assert.ErrorIs(t, err, response.ErrAgeRestricted)
	_, err = f.svc.Get(ctx, adultOnly.ID, nil)
	assert.NoError(t, err)

	minorsOwn := test.CreateEvent(t, f.db, minor.ID, test.WithAdultOnly())
	_, err = f.svc.Get(ctx, minorsOwn.ID, &minor.ID)
	assert.NoError(t, err)
}

func TestParticipating(t *testing.T) {
	f := newFixture(t)
	owner := test.CreateUser(t, f.db, nil)
	user := test.CreateUser(t, f.db, nil)

	a := test.CreateEvent(t, f.db, owner.ID)
	b := test.CreateEvent(t, f.db, owner.ID, test.WithApproval(), test.WithAddress("x", 1, 1))
	c := test.CreateEvent(t, f.db, owner.ID)
	test.CreateParticipation(t, f.db, a.ID, user.ID, model.StatusApproved)
	test.CreateParticipation(t, f.db, b.ID, user.ID, model.StatusRequested)
	test.CreateParticipation(t, f.db, c.ID, user.ID, model.StatusCancelled)

	list, err := f.svc.Participating(context.Background(), user.ID)
	require.NoError(t, err)
	require.ElementsMatch(t, []uint{a.ID, b.ID}, ids(list))
	for _, v := range list {
		require.NotNil(t, v.ParticipationStatus)
		if v.ID == b.ID {
			assert.Equal(t, model.StatusRequested, *v.ParticipationStatus)
			assert.True(t, v.IsAddressHidden)
		}
	}
}

func TestCategories(t *testing.T) {
	f := newFixture(t)
	first, err := f.svc.Categories(context.Background())
	require.NoError(t, err)
	second, err := f.svc.Categories(context.Background())
	require.NoError(t, err)
	require.Len(t, second, len(defaultCategories))
	for i := range first {
		assert.Equal(t, first[i].ID, second[i].ID)
		assert.Equal(t, first[i].Slug, second[i].Slug)
	}
	assert.Equal(t, model.DefaultCategorySlug, second[0].Slug)
}
