package user

import (
	"context"
	"errors"
	"strings"
	"time"

	"social-event-system/internal/global/database"
	"social-event-system/internal/global/jwt"
	"social-event-system/internal/global/response"
	"social-event-system/internal/model"
	"social-event-system/tools"

	"gorm.io/gorm"
)

const birthDateLayout = "2006-01-02"

type Service struct {
	db  *gorm.DB
	now func() time.Time
}

func NewService(db *gorm.DB, now func() time.Time) *Service {
	if now == nil {
		now = func() time.Time { return time.Now().UTC() }
	}
	return &Service{db: db, now: now}
}

type RegisterInput struct {
	Email     string `json:"email" binding:"required,email,max=191"`
	Password  string `json:"password" binding:"required,max=72"`
	FirstName string `json:"first_name" binding:"required,max=64"`
	LastName  string `json:"last_name" binding:"max=64"`
	BirthDate string `json:"birth_date" binding:"required,datetime=2006-01-02"`
}

// ProfileUpdate 只修改传入的字段，birth_date 传空字符串表示清除
type ProfileUpdate struct {
	FirstName *string `json:"first_name" binding:"omitempty,max=64"`
	LastName  *string `json:"last_name" binding:"omitempty,max=64"`
	AvatarURL *string `json:"avatar_url" binding:"omitempty,max=255"`
	BirthDate *string `json:"birth_date"`
}

// Profile 公开资料
type Profile struct {
	model.UserBrief
	FollowerCount  int64 `json:"follower_count"`
	FollowingCount int64 `json:"following_count"`
}

// LoginResult 登录成功返回的令牌和用户信息
type LoginResult struct {
	Token string      `json:"token"`
	User  *model.User `json:"user"`
}

func (s *Service) Register(ctx context.Context, in RegisterInput) (*model.User, error) {
	if err := validatePasswordStrength(in.Password); err != nil {
		return nil, response.ErrInvalidRequest.WithTips(err.Error())
	}
	birth, err := s.parseBirthDate(in.BirthDate)
	if err != nil {
		return nil, err
	}
	hashed, err := tools.PasswordEncrypt(in.Password)
	if err != nil {
		return nil, response.ErrServerInternal.WithOrigin(err)
	}

	u := &model.User{
		Email:     normalizeEmail(in.Email),
		Password:  hashed,
		RoleID:    jwt.RoleUser,
		FirstName: strings.TrimSpace(in.FirstName),
		LastName:  strings.TrimSpace(in.LastName),
		BirthDate: birth,
	}
	if err := s.db.WithContext(ctx).Create(u).Error; err != nil {
		if database.IsDuplicateKey(err) {
			return nil, response.ErrAlreadyExists.WithTips("邮箱已注册")
		}
		return nil, response.ErrDatabase.WithOrigin(err)
	}
	return u, nil
}

// Login 用户不存在和密码错误返回同一个错误
func (s *Service) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	var u model.User
	err := s.db.WithContext(ctx).Where("email = ?", normalizeEmail(email)).First(&u).Error
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return nil, response.ErrInvalidPassword
	case err != nil:
		return nil, response.ErrDatabase.WithOrigin(err)
	}
	if !tools.PasswordCompare(u.Password, password) {
		return nil, response.ErrInvalidPassword
	}

	token, err := jwt.CreateToken(jwt.Payload{UserID: u.ID, Username: u.Email, RoleID: u.RoleID})
	if err != nil {
		return nil, response.ErrServerInternal.WithOrigin(err)
	}
	return &LoginResult{Token: token, User: &u}, nil
}

func (s *Service) Me(ctx context.Context, id uint) (*model.User, error) {
	var u model.User
	if err := s.db.WithContext(ctx).First(&u, id).Error; err != nil {
		return nil, notFound(err)
	}
	return &u, nil
}

func (s *Service) UpdateProfile(ctx context.Context, id uint, in ProfileUpdate) (*model.User, error) {
	u, err := s.Me(ctx, id)
	if err != nil {
		return nil, err
	}
	if in.FirstName != nil {
		name := strings.TrimSpace(*in.FirstName)
		if name == "" {
			return nil, response.ErrInvalidRequest.WithTips("名字不能为空")
		}
		u.FirstName = name
	}
	if in.LastName != nil {
		u.LastName = strings.TrimSpace(*in.LastName)
	}
	if in.AvatarURL != nil {
		u.AvatarURL = *in.AvatarURL
	}
	if in.BirthDate != nil {
		if *in.BirthDate == "" {
			u.BirthDate = nil
		} else if u.BirthDate, err = s.parseBirthDate(*in.BirthDate); err != nil {
			return nil, err
		}
	}

	if err := s.db.WithContext(ctx).Save(u).Error; err != nil {
		return nil, response.ErrDatabase.WithOrigin(err)
	}
	return u, nil
}

func (s *Service) ChangePassword(ctx context.Context, id uint, oldPassword, newPassword string) error {
	u, err := s.Me(ctx, id)
	if err != nil {
		return err
	}
	if !tools.PasswordCompare(u.Password, oldPassword) {
		return response.ErrInvalidPassword
	}
	if err := validatePasswordStrength(newPassword); err != nil {
		return response.ErrInvalidRequest.WithTips(err.Error())
	}
	hashed, err := tools.PasswordEncrypt(newPassword)
	if err != nil {
		return response.ErrServerInternal.WithOrigin(err)
	}
	if err := s.db.WithContext(ctx).Model(u).Update("password", hashed).Error; err != nil {
		return response.ErrDatabase.WithOrigin(err)
	}
	return nil
}

// Profile 公开资料，附带关注数和粉丝数
func (s *Service) Profile(ctx context.Context, id uint) (*Profile, error) {
	db := s.db.WithContext(ctx)
	u, err := s.Me(ctx, id)
	if err != nil {
		return nil, err
	}
	p := &Profile{UserBrief: u.Brief()}
	if err := db.Model(&model.Follow{}).Where("followee_id = ?", id).Count(&p.FollowerCount).Error; err != nil {
		return nil, response.ErrDatabase.WithOrigin(err)
	}
	if err := db.Model(&model.Follow{}).Where("follower_id = ?", id).Count(&p.FollowingCount).Error; err != nil {
		return nil, response.ErrDatabase.WithOrigin(err)
	}
	return p, nil
}

// parseBirthDate 出生日期按 UTC 零点保存，不能晚于今天
func (s *Service) parseBirthDate(raw string) (*time.Time, error) {
	d, err := time.Parse(birthDateLayout, raw)
	if err != nil {
		return nil, response.ErrInvalidRequest.WithTips("出生日期格式应为 YYYY-MM-DD")
	}
	if d.After(s.now()) {
		return nil, response.ErrInvalidRequest.WithTips("出生日期不能晚于今天")
	}
	return &d, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// validatePasswordStrength 至少 8 位，同时包含字母和数字
func validatePasswordStrength(password string) error {
	if len(password) < 8 {
		return errors.New("密码长度必须至少8字符")
	}
	hasLetter, hasDigit := false, false
	for _, char := range password {
		switch {
		case char >= 'a' && char <= 'z', char >= 'A' && char <= 'Z':
			hasLetter = true
		case char >= '0' && char <= '9':
			hasDigit = true
		}
	}
	if !hasLetter {
		return errors.New("密码必须包含至少一个字母")
	}
	if !hasDigit {
		return errors.New("密码必须包含至少一个数字")
	}
	return nil
}

func notFound(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return response.ErrNotFound.WithTips("用户不存在")
	}
	return response.ErrDatabase.WithOrigin(err)
}
