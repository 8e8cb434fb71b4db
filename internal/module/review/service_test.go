package review

import (
	"context"
	"sync"
	"testing"
	"time"

	"social-event-system/internal/global/response"
	"social-event-system/internal/model"
	"social-event-system/test"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type fixture struct {
	db    *gorm.DB
	svc   *Service
	now   time.Time
	owner *model.User
	user  *model.User
	event *model.Event
	part  *model.Participation
}

// newFixture 活动在 now 之后一小时结束
func newFixture(t *testing.T) *fixture {
	db := test.NewDB(t)
	f := &fixture{db: db, now: time.Now().UTC().Truncate(time.Second)}
	f.svc = NewService(db, func() time.Time { return f.now })
	f.owner = test.CreateUser(t, db, nil)
	f.user = test.CreateUser(t, db, nil)
	f.event = test.CreateEvent(t, db, f.owner.ID, test.WithWindow(f.now.Add(-time.Hour), f.now.Add(time.Hour)))
	f.part = test.CreateParticipation(t, db, f.event.ID, f.user.ID, model.StatusApproved)
	return f
}

func (f *fixture) afterEnd() {
	f.now = f.event.EndAt
}

func TestRateEventWindow(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.svc.RateEvent(ctx, f.event.ID, f.user.ID, 4, nil)
	assert.ErrorIs(t, err, response.ErrTooEarly)

	// 结束时刻当下即可评价
	f.afterEnd()
	text := "很好"
	r, err := f.svc.RateEvent(ctx, f.event.ID, f.user.ID, 4, &text)
	require.NoError(t, err)
	assert.Equal(t, 4, r.Rating)
	assert.Equal(t, model.TargetEvent, r.Target)

	_, err = f.svc.RateEvent(ctx, f.event.ID, f.user.ID, 5, nil)
	assert.ErrorIs(t, err, response.ErrDuplicateReview)

	mine, err := f.svc.Mine(ctx, f.event.ID, f.user.ID)
	require.NoError(t, err)
	require.NotNil(t, mine)
	assert.Equal(t, 4, mine.Rating)
}

func TestRateEventGuards(t *testing.T) {
	f := newFixture(t)
	f.afterEnd()
	ctx := context.Background()

	_, err := f.svc.RateEvent(ctx, f.event.ID, f.user.ID, 0, nil)
	assert.ErrorIs(t, err, response.ErrInvalidRequest)
	_, err = f.svc.RateEvent(ctx, f.event.ID, f.user.ID, 6, nil)
	assert.ErrorIs(t, err, response.ErrInvalidRequest)

	_, err = f.svc.RateEvent(ctx, 9999, f.user.ID, 3, nil)
	assert.ErrorIs(t, err, response.ErrNotFound)

	stranger := test.CreateUser(t, f.db, nil)
	_, err = f.svc.RateEvent(ctx, f.event.ID, stranger.ID, 3, nil)
	assert.ErrorIs(t, err, response.ErrForbidden)

	rejected := test.CreateUser(t, f.db, nil)
	test.CreateParticipation(t, f.db, f.event.ID, rejected.ID, model.StatusRejected)
	_, err = f.svc.RateEvent(ctx, f.event.ID, rejected.ID, 3, nil)
	assert.ErrorIs(t, err, response.ErrForbidden)

	_, err = f.svc.RateEvent(ctx, f.event.ID, f.owner.ID, 3, nil)
	assert.ErrorIs(t, err, response.ErrForbidden)

	attended := test.CreateUser(t, f.db, nil)
	test.CreateParticipation(t, f.db, f.event.ID, attended.ID, model.StatusAttended)
	_, err = f.svc.RateEvent(ctx, f.event.ID, attended.ID, 3, nil)
	assert.NoError(t, err)
}

func TestRateEventConcurrentDuplicate(t *testing.T) {
	f := newFixture(t)
	f.afterEnd()

	const n = 5
	var (
		wg   sync.WaitGroup
		mu   sync.Mutex
		errs []error
	)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := f.svc.RateEvent(context.Background(), f.event.ID, f.user.ID, 5, nil)
			mu.Lock()
			errs = append(errs, err)
			mu.Unlock()
		}()
	}
	wg.Wait()

	ok := 0
	for _, err := range errs {
		if err == nil {
			ok++
			continue
		}
		assert.ErrorIs(t, err, response.ErrDuplicateReview)
	}
	assert.Equal(t, 1, ok)

	var rows int64
	require.NoError(t, f.db.Model(&model.Review{}).Where("event_id = ? AND target = ?", f.event.ID, model.TargetEvent).Count(&rows).Error)
	assert.EqualValues(t, 1, rows)
}

func TestRateParticipantUpsert(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.svc.RateParticipant(ctx, f.event.ID, f.owner.ID, f.part.ID, 3, nil)
	assert.ErrorIs(t, err, response.ErrTooEarly)

	f.afterEnd()
	first, err := f.svc.RateParticipant(ctx, f.event.ID, f.owner.ID, f.part.ID, 3, nil)
	require.NoError(t, err)
	assert.Equal(t, 3, first.Rating)

	note := "准时到场"
	second, err := f.svc.RateParticipant(ctx, f.event.ID, f.owner.ID, f.part.ID, 5, &note)
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, 5, second.Rating)
	require.NotNil(t, second.Text)
	assert.Equal(t, note, *second.Text)

	var rows []model.Review
	require.NoError(t, f.db.Where("event_id = ? AND target = ?", f.event.ID, model.TargetParticipant).Find(&rows).Error)
	require.Len(t, rows, 1)
	assert.Equal(t, 5, rows[0].Rating)
	assert.Equal(t, f.user.ID, rows[0].TargetUserID)
}

func TestRateParticipantGuards(t *testing.T) {
	f := newFixture(t)
	f.afterEnd()
	ctx := context.Background()

	_, err := f.svc.RateParticipant(ctx, f.event.ID, f.user.ID, f.part.ID, 3, nil)
	assert.ErrorIs(t, err, response.ErrForbidden)

	_, err = f.svc.RateParticipant(ctx, f.event.ID, f.owner.ID, 9999, 3, nil)
	assert.ErrorIs(t, err, response.ErrNotFound)

	other := test.CreateEvent(t, f.db, f.owner.ID)
	_, err = f.svc.RateParticipant(ctx, other.ID, f.owner.ID, f.part.ID, 3, nil)
	assert.ErrorIs(t, err, response.ErrNotFound)

	_, err = f.svc.RateParticipant(ctx, f.event.ID, f.owner.ID, f.part.ID, 9, nil)
	assert.ErrorIs(t, err, response.ErrInvalidRequest)
}

func TestListAndForUser(t *testing.T) {
	f := newFixture(t)
	f.afterEnd()
	ctx := context.Background()

	second := test.CreateUser(t, f.db, nil)
	test.CreateParticipation(t, f.db, f.event.ID, second.ID, model.StatusApproved)

	_, err := f.svc.RateEvent(ctx, f.event.ID, f.user.ID, 4, nil)
	require.NoError(t, err)
	f.now = f.now.Add(time.Minute)
	_, err = f.svc.RateEvent(ctx, f.event.ID, second.ID, 2, nil)
	require.NoError(t, err)
	_, err = f.svc.RateParticipant(ctx, f.event.ID, f.owner.ID, f.part.ID, 5, nil)
	require.NoError(t, err)

	items, err := f.svc.List(ctx, f.event.ID, nil)
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, second.ID, items[0].AuthorID)
	assert.Equal(t, second.ID, items[0].Author.ID)

	four := 4
	items, err = f.svc.List(ctx, f.event.ID, &four)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, f.user.ID, items[0].AuthorID)

	received, err := f.svc.ForUser(ctx, f.owner.ID, model.TargetEvent, nil)
	require.NoError(t, err)
	assert.Len(t, received, 2)

	received, err = f.svc.ForUser(ctx, f.user.ID, model.TargetParticipant, nil)
	require.NoError(t, err)
	require.Len(t, received, 1)
	assert.Equal(t, f.owner.ID, received[0].Author.ID)

	_, err = f.svc.ForUser(ctx, f.user.ID, "other", nil)
	assert.ErrorIs(t, err, response.ErrInvalidRequest)
}
