package policy

import (
	"time"

	"social-event-system/internal/global/response"
	"social-event-system/internal/model"
)

// Viewer 一次读取中的查看者。ID 为 nil 表示未登录
type Viewer struct {
	ID        *uint
	BirthDate *time.Time
	// Status 查看者在该活动上的参与状态，没有记录时为空
	Status model.ParticipationStatus
}

func (v Viewer) isOwner(e *model.Event) bool {
	return v.ID != nil && e.IsOwner(*v.ID)
}

// CheckAgeGate 成人活动对未成年的非创建者不可见也不可加入。未登录的游客不受限
func CheckAgeGate(e *model.Event, v Viewer, now time.Time) error {
	if !e.IsAdultOnly || v.ID == nil || v.isOwner(e) {
		return nil
	}
	if !IsAdult(v.BirthDate, now) {
		return response.ErrAgeRestricted
	}
	return nil
}

// CanSeeAddress 需审核活动只对创建者和已通过/已到场的参与者公开地址
func CanSeeAddress(e *model.Event, v Viewer) bool {
	if !e.RequiresApproval {
		return true
	}
	return v.isOwner(e) || v.Status.OccupiesSeat()
}

// Apply 按查看者改写活动：隐藏地址和坐标。每次读取都要重新计算
func Apply(e *model.Event, v Viewer) {
	if CanSeeAddress(e, v) {
		e.IsAddressHidden = false
		return
	}
	e.Address = nil
	e.Lat = nil
	e.Lon = nil
	e.IsAddressHidden = true
}

// ExcludeAdultOnly 列表级年龄过滤：只有出生日期能证明未成年时才排除成人活动
func ExcludeAdultOnly(birth *time.Time, now time.Time) bool {
	return birth != nil && !IsAdult(birth, now)
}
