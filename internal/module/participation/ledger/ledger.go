// Package ledger 活动名额账本。占用名额的人数每次都从参与记录实时统计，不维护计数器
package ledger

import (
	"social-event-system/internal/global/response"
	"social-event-system/internal/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// LockEvent 在事务内锁住活动行，同一活动的名额判断由此串行化。
// 必须是事务里的第一条语句，之后的统计才能看到其他事务已提交的结果。
// sqlite 不支持 FOR UPDATE，它的写事务本身就是串行的
func LockEvent(tx *gorm.DB, eventID uint) (*model.Event, error) {
	q := tx
	if tx.Dialector.Name() != "sqlite" {
		q = q.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	var e model.Event
	if err := q.First(&e, eventID).Error; err != nil {
		return nil, err
	}
	return &e, nil
}

// Occupied 占用名额的参与数，excludeID 为正在变更的那一行（0 表示不排除）
func Occupied(tx *gorm.DB, eventID, excludeID uint) (int64, error) {
	var n int64
	q := tx.Model(&model.Participation{}).
		Where("event_id = ? AND status IN ?", eventID, model.SeatStatuses)
	if excludeID != 0 {
		q = q.Where("id <> ?", excludeID)
	}
	err := q.Count(&n).Error
	return n, err
}

// ReserveSeat 判断把一行参与记录置为占用状态后是否超员，必须与写入在同一事务中，
// 且 event 由 LockEvent 取得。名额不足返回 ErrCapacityExceeded
func ReserveSeat(tx *gorm.DB, event *model.Event, excludeParticipationID uint) error {
	if event.Capacity == nil {
		return nil
	}
	n, err := Occupied(tx, event.ID, excludeParticipationID)
	if err != nil {
		return err
	}
	if n >= int64(*event.Capacity) {
		return response.ErrCapacityExceeded
	}
	return nil
}

// RemainingSpots 剩余名额，仅供展示，不保证与并发写入一致。不限人数返回 nil
func RemainingSpots(db *gorm.DB, event *model.Event) (*int, error) {
	if event.Capacity == nil {
		return nil, nil
	}
	n, err := Occupied(db, event.ID, 0)
	if err != nil {
		return nil, err
	}
	return remaining(*event.Capacity, n), nil
}

// RemainingSpotsBatch 列表页批量计算，一次 GROUP BY
func RemainingSpotsBatch(db *gorm.DB, events []model.Event) (map[uint]*int, error) {
	out := make(map[uint]*int, len(events))
	var ids []uint
	for _, e := range events {
		if e.Capacity != nil {
			ids = append(ids, e.ID)
		}
	}
	if len(ids) == 0 {
		return out, nil
	}

	var rows []struct {
		EventID uint
		N       int64
	}
	err := db.Model(&model.Participation{}).
		Select("event_id, COUNT(*) AS n").
		Where("event_id IN ? AND status IN ?", ids, model.SeatStatuses).
		Group("event_id").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	counts := make(map[uint]int64, len(rows))
	for _, r := range rows {
		counts[r.EventID] = r.N
	}
	for _, e := range events {
		if e.Capacity != nil {
			out[e.ID] = remaining(*e.Capacity, counts[e.ID])
		}
	}
	return out, nil
}

func remaining(capacity int, occupied int64) *int {
	left := capacity - int(occupied)
	if left < 0 {
		left = 0
	}
	return &left
}
