package model

// ParticipationStatus 参与状态，只允许下列取值
type ParticipationStatus string

const (
	StatusRequested ParticipationStatus = "requested"
	StatusApproved  ParticipationStatus = "approved"
	StatusRejected  ParticipationStatus = "rejected"
	StatusCancelled ParticipationStatus = "cancelled"
	StatusAttended  ParticipationStatus = "attended"
)

// ParticipationStatuses 全部参与状态
var ParticipationStatuses = []ParticipationStatus{StatusRequested, StatusApproved, StatusRejected, StatusCancelled, StatusAttended}

// SeatStatuses 占用名额的状态
var SeatStatuses = []ParticipationStatus{StatusApproved, StatusAttended}

func (s ParticipationStatus) Valid() bool {
	switch s {
	case StatusRequested, StatusApproved, StatusRejected, StatusCancelled, StatusAttended:
		return true
	}
	return false
}

func (s ParticipationStatus) OccupiesSeat() bool {
	return s == StatusApproved || s == StatusAttended
}

// Rank 组织者审核列表的排序
func (s ParticipationStatus) Rank() int {
	switch s {
	case StatusRequested:
		return 0
	case StatusApproved:
		return 1
	case StatusRejected:
		return 2
	case StatusCancelled:
		return 3
	case StatusAttended:
		return 4
	}
	return 5
}

type EventStatus string

const (
	EventPublished EventStatus = "published"
	EventDraft     EventStatus = "draft"
)

func (s EventStatus) Valid() bool {
	return s == EventPublished || s == EventDraft
}

// ReviewTarget 区分对活动的评价和对参与者的评价
type ReviewTarget string

const (
	TargetEvent       ReviewTarget = "event"
	TargetParticipant ReviewTarget = "participant"
)

func (t ReviewTarget) Valid() bool {
	return t == TargetEvent || t == TargetParticipant
}
