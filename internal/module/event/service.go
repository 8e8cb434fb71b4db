package event

import (
	"cmp"
	"context"
	"errors"
	"slices"
	"strconv"
	"time"

	"social-event-system/internal/global/response"
	"social-event-system/internal/model"
	"social-event-system/internal/module/event/policy"
	"social-event-system/internal/module/event/sweeper"
	"social-event-system/internal/module/participation/ledger"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Notifier 活动创建和修改后的通知，提交后调用
type Notifier interface {
	NotifyEventCreated(ctx context.Context, eventID, ownerID uint)
	NotifyEventUpdated(ctx context.Context, eventID, ownerID uint)
}

type Service struct {
	db       *gorm.DB
	births   policy.BirthDates
	notifier Notifier
	sweeper  *sweeper.Sweeper
	now      func() time.Time
}

func NewService(db *gorm.DB, births policy.BirthDates, notifier Notifier, sw *sweeper.Sweeper, now func() time.Time) *Service {
	if now == nil {
		now = func() time.Time { return time.Now().UTC() }
	}
	return &Service{db: db, births: births, notifier: notifier, sweeper: sw, now: now}
}

// View 返回给查看者的活动
type View struct {
	*model.Event
	Owner          model.UserBrief `json:"owner"`
	AvailableSpots *int            `json:"available_spots"`
	DistanceKm     *float64        `json:"distance_km,omitempty"`
	// ParticipationStatus 查看者在该活动上的参与状态
	ParticipationStatus *model.ParticipationStatus `json:"participation_status"`
}

type Input struct {
	Title            string            `json:"title" binding:"required,max=255"`
	Description      string            `json:"description"`
	CategoryID       uint              `json:"category_id"`
	StartAt          time.Time         `json:"start_at" binding:"required"`
	EndAt            time.Time         `json:"end_at" binding:"required"`
	Capacity         *int              `json:"capacity" binding:"omitempty,min=1"`
	RequiresApproval bool              `json:"requires_approval"`
	IsAdultOnly      bool              `json:"is_adult_only"`
	IsPaid           bool              `json:"is_paid"`
	Price            *float64          `json:"price" binding:"omitempty,min=0"`
	Currency         string            `json:"currency" binding:"max=8"`
	City             string            `json:"city" binding:"max=128"`
	Address          *string           `json:"address" binding:"omitempty,max=255"`
	Lat              *float64          `json:"lat" binding:"omitempty,min=-90,max=90"`
	Lon              *float64          `json:"lon" binding:"omitempty,min=-180,max=180"`
	CoverURL         string            `json:"cover_url" binding:"max=255"`
	Status           model.EventStatus `json:"status"`
}

// Update 为 nil 的字段保持不变。Capacity 传 0 表示改为不限人数
type Update struct {
	Title            *string    `json:"title" binding:"omitempty,max=255"`
	Description      *string    `json:"description"`
	CategoryID       *uint      `json:"category_id"`
	StartAt          *time.Time `json:"start_at"`
	EndAt            *time.Time `json:"end_at"`
	Capacity         *int       `json:"capacity" binding:"omitempty,min=0"`
	RequiresApproval *bool      `json:"requires_approval"`
	IsAdultOnly      *bool      `json:"is_adult_only"`
	IsPaid           *bool      `json:"is_paid"`
	Price            *float64   `json:"price" binding:"omitempty,min=0"`
	Currency         *string    `json:"currency" binding:"omitempty,max=8"`
	City             *string    `json:"city" binding:"omitempty,max=128"`
	Address          *string    `json:"address" binding:"omitempty,max=255"`
	Lat              *float64   `json:"lat" binding:"omitempty,min=-90,max=90"`
	Lon              *float64   `json:"lon" binding:"omitempty,min=-180,max=180"`
	CoverURL         *string    `json:"cover_url" binding:"omitempty,max=255"`
}

// Create 创建活动，未指定分类时归入默认分类。已发布的活动会通知关注者
func (s *Service) Create(ctx context.Context, ownerID uint, in Input) (*model.Event, error) {
	if !in.StartAt.Before(in.EndAt) {
		return nil, response.ErrInvalidRequest.WithTips("开始时间必须早于结束时间")
	}
	status := in.Status
	if status == "" {
		status = model.EventPublished
	}
	if !status.Valid() {
		return nil, response.ErrInvalidRequest.WithTips("未知的活动状态")
	}
	db := s.db.WithContext(ctx)

	categoryID, err := s.resolveCategory(db, in.CategoryID)
	if err != nil {
		return nil, err
	}

	e := &model.Event{
		OwnerID:          ownerID,
		CategoryID:       categoryID,
		Title:            in.Title,
		Description:      in.Description,
		StartAt:          in.StartAt.UTC(),
		EndAt:            in.EndAt.UTC(),
		Capacity:         in.Capacity,
		RequiresApproval: in.RequiresApproval,
		IsAdultOnly:      in.IsAdultOnly,
		IsPaid:           in.IsPaid,
		Status:           status,
		City:             in.City,
		Address:          in.Address,
		Lat:              in.Lat,
		Lon:              in.Lon,
		CoverURL:         in.CoverURL,
	}
	if in.IsPaid {
		e.Price = in.Price
		e.Currency = in.Currency
	}
	if err := db.Create(e).Error; err != nil {
		return nil, response.ErrDatabase.WithOrigin(err)
	}

	if e.Status == model.EventPublished {
		s.notifier.NotifyEventCreated(ctx, e.ID, ownerID)
	}
	return e, nil
}

// Update 仅创建者可修改，修改后通知已占名额的参与者
func (s *Service) Update(ctx context.Context, id, ownerID uint, in Update) (*model.Event, error) {
	db := s.db.WithContext(ctx)
	e, err := s.owned(db, id, ownerID)
	if err != nil {
		return nil, err
	}

	if in.CategoryID != nil {
		if e.CategoryID, err = s.resolveCategory(db, *in.CategoryID); err != nil {
			return nil, err
		}
	}
	assign(&e.Title, in.Title)
	assign(&e.Description, in.Description)
	assign(&e.RequiresApproval, in.RequiresApproval)
	assign(&e.IsAdultOnly, in.IsAdultOnly)
	assign(&e.IsPaid, in.IsPaid)
	assign(&e.City, in.City)
	assign(&e.CoverURL, in.CoverURL)
	if in.StartAt != nil {
		e.StartAt = in.StartAt.UTC()
	}
	if in.EndAt != nil {
		e.EndAt = in.EndAt.UTC()
	}
	if in.Capacity != nil {
		if *in.Capacity == 0 {
			e.Capacity = nil
		} else {
			e.Capacity = in.Capacity
		}
	}
	if in.Address != nil {
		e.Address = in.Address
	}
	if in.Lat != nil {
		e.Lat = in.Lat
	}
	if in.Lon != nil {
		e.Lon = in.Lon
	}
	if in.Price != nil {
		e.Price = in.Price
	}
	assign(&e.Currency, in.Currency)
	if !e.IsPaid {
		e.Price = nil
		e.Currency = ""
	}
	if !e.StartAt.Before(e.EndAt) {
		return nil, response.ErrInvalidRequest.WithTips("开始时间必须早于结束时间")
	}
	// 时间变了要重新提醒
	if in.StartAt != nil {
		e.ReminderSentAt = nil
	}

	if err := db.Save(e).Error; err != nil {
		return nil, response.ErrDatabase.WithOrigin(err)
	}
	s.notifier.NotifyEventUpdated(ctx, e.ID, ownerID)
	return e, nil
}

// SetStatus 发布或转为草稿。已结束的活动不能重新发布
func (s *Service) SetStatus(ctx context.Context, id, ownerID uint, status model.EventStatus) (*model.Event, error) {
	if !status.Valid() {
		return nil, response.ErrInvalidRequest.WithTips("未知的活动状态")
	}
	db := s.db.WithContext(ctx)
	e, err := s.owned(db, id, ownerID)
	if err != nil {
		return nil, err
	}
	if status == model.EventPublished && e.Ended(s.now()) {
		return nil, response.ErrInvalidRequest.WithTips("活动已结束，不能发布")
	}
	if e.Status == status {
		return e, nil
	}
	if err := db.Model(e).Update("status", status).Error; err != nil {
		return nil, response.ErrDatabase.WithOrigin(err)
	}
	e.Status = status
	return e, nil
}

func (s *Service) Delete(ctx context.Context, id, ownerID uint) error {
	db := s.db.WithContext(ctx)
	e, err := s.owned(db, id, ownerID)
	if err != nil {
		return err
	}
	if err := db.Delete(e).Error; err != nil {
		return response.ErrDatabase.WithOrigin(err)
	}
	return nil
}

type ListFilter struct {
	City        string   `form:"city"`
	CategoryID  uint     `form:"category_id"`
	IsPaid      *bool    `form:"is_paid"`
	Owner       string   `form:"owner"` // me 或用户 ID
	ExcludeMine bool     `form:"exclude_mine"`
	Lat         *float64 `form:"lat" binding:"omitempty,min=-90,max=90"`
	Lon         *float64 `form:"lon" binding:"omitempty,min=-180,max=180"`
	RadiusKm    float64  `form:"radius_km" binding:"omitempty,gt=0"`
}

// List 活动列表。先归档已结束的活动；查看自己的活动时包含草稿
func (s *Service) List(ctx context.Context, viewerID *uint, f ListFilter) ([]View, error) {
	if s.sweeper != nil {
		s.sweeper.BeforeRead(ctx)
	}
	db := s.db.WithContext(ctx)
	now := s.now()

	q := db.Model(&model.Event{})
	ownList := false
	switch {
	case f.Owner == "me":
		if viewerID == nil {
			return nil, response.ErrUnauthorized
		}
		q = q.Where("owner_id = ?", *viewerID)
		ownList = true
	case f.Owner != "":
		ownerID, err := strconv.ParseUint(f.Owner, 10, 64)
		if err != nil {
			return nil, response.ErrInvalidRequest.WithTips("owner 参数无效")
		}
		q = q.Where("owner_id = ?", ownerID)
		ownList = viewerID != nil && uint(ownerID) == *viewerID
	}
	if !ownList {
		q = q.Where("status = ? AND end_at >= ?", model.EventPublished, now)
	}
	if f.City != "" {
		q = q.Where("city = ?", f.City)
	}
	if f.CategoryID != 0 {
		q = q.Where("category_id = ?", f.CategoryID)
	}
	if f.IsPaid != nil {
		q = q.Where("is_paid = ?", *f.IsPaid)
	}
	if f.ExcludeMine && viewerID != nil {
		q = q.Where("owner_id <> ?", *viewerID)
	}

	var viewerBirth *time.Time
	if viewerID != nil {
		birth, err := s.births.BirthDate(ctx, *viewerID)
		if err != nil {
			return nil, response.ErrDatabase.WithOrigin(err)
		}
		viewerBirth = birth
	}
	if !ownList && policy.ExcludeAdultOnly(viewerBirth, now) {
		q = q.Where("is_adult_only = ?", false)
	}

	geo := f.Lat != nil && f.Lon != nil
	radius := f.RadiusKm
	if radius <= 0 {
		radius = defaultRadiusKm
	}
	if geo {
		minLat, maxLat, minLon, maxLon, limitLon := boundingBox(*f.Lat, *f.Lon, radius)
		q = q.Where("lat IS NOT NULL AND lon IS NOT NULL AND lat BETWEEN ? AND ?", minLat, maxLat)
		if limitLon {
			q = q.Where("lon BETWEEN ? AND ?", minLon, maxLon)
		}
	}

	var events []model.Event
	if err := q.Order("start_at ASC, id ASC").Find(&events).Error; err != nil {
		return nil, response.ErrDatabase.WithOrigin(err)
	}

	views, err := s.views(db, events, viewerID, viewerBirth)
	if err != nil {
		return nil, err
	}
	if geo {
		views = nearby(views, *f.Lat, *f.Lon, radius)
	}
	return views, nil
}

// nearby 按距离筛选并排序。地址对查看者隐藏的活动不参与距离查询，否则半径本身就能定位它
func nearby(views []View, lat, lon, radius float64) []View {
	out := views[:0]
	for _, v := range views {
		if v.IsAddressHidden || v.Lat == nil || v.Lon == nil {
			continue
		}
		d := haversineKm(lat, lon, *v.Lat, *v.Lon)
		if d > radius {
			continue
		}
		v.DistanceKm = &d
		out = append(out, v)
	}
	slices.SortStableFunc(out, func(a, b View) int {
		return cmp.Compare(*a.DistanceKm, *b.DistanceKm)
	})
	return out
}

// Get 活动详情：年龄限制、地址隐藏、剩余名额和查看者的参与状态
func (s *Service) Get(ctx context.Context, id uint, viewerID *uint) (*View, error) {
	db := s.db.WithContext(ctx)
	e, err := model.FindEvent(db, id)
	if err != nil {
		return nil, notFound(err)
	}

	var birth *time.Time
	if viewerID != nil && e.IsAdultOnly && !e.IsOwner(*viewerID) {
		if birth, err = s.births.BirthDate(ctx, *viewerID); err != nil {
			return nil, response.ErrDatabase.WithOrigin(err)
		}
	}
	views, err := s.views(db, []model.Event{*e}, viewerID, birth)
	if err != nil {
		return nil, err
	}
	return &views[0], nil
}

// Participating 当前用户待审核或已通过的活动
func (s *Service) Participating(ctx context.Context, userID uint) ([]View, error) {
	if s.sweeper != nil {
		s.sweeper.BeforeRead(ctx)
	}
	db := s.db.WithContext(ctx)

	var events []model.Event
	err := db.Where("id IN (?)",
		db.Model(&model.Participation{}).Select("event_id").
			Where("user_id = ? AND status IN ?", userID, []model.ParticipationStatus{model.StatusRequested, model.StatusApproved}),
	).Order("start_at ASC, id ASC").Find(&events).Error
	if err != nil {
		return nil, response.ErrDatabase.WithOrigin(err)
	}
	return s.views(db, events, &userID, nil)
}

// views 批量组装查看结果。birth 仅在需要年龄校验时传入
func (s *Service) views(db *gorm.DB, events []model.Event, viewerID *uint, birth *time.Time) ([]View, error) {
	now := s.now()
	ids := make([]uint, 0, len(events))
	ownerIDs := make([]uint, 0, len(events))
	for _, e := range events {
		ids = append(ids, e.ID)
		ownerIDs = append(ownerIDs, e.OwnerID)
	}

	statuses := map[uint]model.ParticipationStatus{}
	if viewerID != nil && len(ids) > 0 {
		var parts []model.Participation
		if err := db.Where("user_id = ? AND event_id IN ?", *viewerID, ids).Find(&parts).Error; err != nil {
			return nil, response.ErrDatabase.WithOrigin(err)
		}
		for _, p := range parts {
			statuses[p.EventID] = p.Status
		}
	}

	owners := map[uint]model.UserBrief{}
	if len(ownerIDs) > 0 {
		var users []model.User
		if err := db.Where("id IN ?", ownerIDs).Find(&users).Error; err != nil {
			return nil, response.ErrDatabase.WithOrigin(err)
		}
		for i := range users {
			owners[users[i].ID] = users[i].Brief()
		}
	}

	spots, err := ledger.RemainingSpotsBatch(db, events)
	if err != nil {
		return nil, response.ErrDatabase.WithOrigin(err)
	}

	views := make([]View, 0, len(events))
	for i := range events {
		e := &events[i]
		viewer := policy.Viewer{ID: viewerID, BirthDate: birth, Status: statuses[e.ID]}
		if err := policy.CheckAgeGate(e, viewer, now); err != nil {
			return nil, err
		}
		policy.Apply(e, viewer)

		v := View{Event: e, Owner: owners[e.OwnerID], AvailableSpots: spots[e.ID]}
		if st, ok := statuses[e.ID]; ok {
			v.ParticipationStatus = &st
		}
		views = append(views, v)
	}
	return views, nil
}

var defaultCategories = []model.Category{
	{Name: "聚会", Slug: model.DefaultCategorySlug},
	{Name: "音乐", Slug: "music"},
	{Name: "运动", Slug: "sport"},
	{Name: "学习", Slug: "education"},
	{Name: "艺术", Slug: "art"},
	{Name: "商务", Slug: "business"},
	{Name: "亲子", Slug: "family"},
	{Name: "健康", Slug: "health"},
	{Name: "旅行", Slug: "travel"},
	{Name: "美食", Slug: "food"},
	{Name: "科技", Slug: "tech"},
	{Name: "游戏", Slug: "games"},
}

// Categories 确保内置分类存在后返回全部分类
func (s *Service) Categories(ctx context.Context) ([]model.Category, error) {
	db := s.db.WithContext(ctx)
	seed := slices.Clone(defaultCategories)
	if err := db.Clauses(clause.OnConflict{DoNothing: true}).Create(&seed).Error; err != nil {
		return nil, response.ErrDatabase.WithOrigin(err)
	}
	var list []model.Category
	if err := db.Order("id ASC").Find(&list).Error; err != nil {
		return nil, response.ErrDatabase.WithOrigin(err)
	}
	return list, nil
}

func (s *Service) resolveCategory(db *gorm.DB, id uint) (uint, error) {
	if id == 0 {
		categoryID, err := model.DefaultCategoryID(db)
		if err != nil {
			return 0, response.ErrDatabase.WithOrigin(err)
		}
		return categoryID, nil
	}
	var c model.Category
	if err := db.Select("id").First(&c, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, response.ErrNotFound.WithTips("分类不存在")
		}
		return 0, response.ErrDatabase.WithOrigin(err)
	}
	return c.ID, nil
}

func (s *Service) owned(db *gorm.DB, id, ownerID uint) (*model.Event, error) {
	e, err := model.FindEvent(db, id)
	if err != nil {
		return nil, notFound(err)
	}
	if !e.IsOwner(ownerID) {
		return nil, response.ErrForbidden
	}
	return e, nil
}

func assign[T any](dst *T, v *T) {
	if v != nil {
		*dst = *v
	}
}

func notFound(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return response.ErrNotFound.WithTips("活动不存在")
	}
	return response.ErrDatabase.WithOrigin(err)
}
