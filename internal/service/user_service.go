package service

import (
	"context"
	"strings"
	"time"
	"unicode/utf8"

	"friendmarket/internal/models"
	"friendmarket/internal/repository"
)

// BirthdayLayout is the wire format of User.Birthday.
const BirthdayLayout = "2006-01-02"

type UserService struct {
	userRepo repository.UserRepository
}

// UpdateProfileInput carries a partial profile update. Nil fields are left
// untouched; Birthday "" clears the date.
type UpdateProfileInput struct {
	UserID       uint
	Name         *string
	Username     *string
	Phone        *string
	Birthday     *string
	Gender       *string
	EnableNotif  *bool
	AndroidRegID *string
}

func NewUserService(userRepo repository.UserRepository) *UserService {
	return &UserService{userRepo: userRepo}
}

func (s *UserService) ListUsers(ctx context.Context, page repository.Page) ([]models.User, int64, error) {
	return s.userRepo.List(ctx, page)
}

func (s *UserService) GetUserByID(ctx context.Context, id uint) (*models.User, error) {
	return s.userRepo.GetByID(ctx, id)
}

// GetProfile returns the caller's own account with every stored field.
func (s *UserService) GetProfile(ctx context.Context, userID uint) (*models.User, error) {
	return s.userRepo.GetAccount(ctx, userID)
}

func (s *UserService) UpdateProfile(ctx context.Context, in UpdateProfileInput) (*models.User, error) {
	const (
		maxFirstNameLen = 30
		maxLastNameLen  = 150
		maxUsernameLen  = 150
		maxPhoneLen     = 30
		maxRegIDLen     = 255
	)

	fields := make(map[string]any)
	if in.Name != nil {
		first, last := models.SplitName(*in.Name)
		if utf8.RuneCountInString(first) > maxFirstNameLen {
			return nil, models.NewValidationError("First name too long (max 30 characters)")
		}
		if utf8.RuneCountInString(last) > maxLastNameLen {
			return nil, models.NewValidationError("Last name too long (max 150 characters)")
		}
		fields["first_name"] = first
		fields["last_name"] = last
	}
	if in.Username != nil {
		username := strings.TrimSpace(*in.Username)
		if utf8.RuneCountInString(username) > maxUsernameLen {
			return nil, models.NewValidationError("Username too long (max 150 characters)")
		}
		fields["username"] = username
	}
	if in.Phone != nil {
		phone := strings.TrimSpace(*in.Phone)
		if utf8.RuneCountInString(phone) > maxPhoneLen {
			return nil, models.NewValidationError("Phone too long (max 30 characters)")
		}
		fields["phone"] = phone
	}
	if in.Birthday != nil {
		raw := strings.TrimSpace(*in.Birthday)
		if raw == "" {
			fields["birthday"] = nil
		} else {
			day, err := time.Parse(BirthdayLayout, raw)
			if err != nil {
				return nil, models.NewValidationError("Birthday must be formatted YYYY-MM-DD")
			}
			fields["birthday"] = day
		}
	}
	if in.Gender != nil {
		g := models.Gender(strings.ToUpper(strings.TrimSpace(*in.Gender)))
		if !g.Valid() {
			return nil, models.NewValidationError("Gender must be one of F, M, U")
		}
		fields["gender"] = g
	}
	if in.EnableNotif != nil {
		fields["enable_notif"] = *in.EnableNotif
	}
	if in.AndroidRegID != nil {
		token := strings.TrimSpace(*in.AndroidRegID)
		if len(token) > maxRegIDLen {
			return nil, models.NewValidationError("android_regid too long (max 255 characters)")
		}
		fields["android_regid"] = token
	}

	if err := s.userRepo.UpdateFields(ctx, in.UserID, fields); err != nil {
		return nil, err
	}
	return s.userRepo.GetAccount(ctx, in.UserID)
}
