package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"

	"guildchat/internal/app/model"
	"guildchat/internal/pkg/errs"
	"guildchat/internal/pkg/randx"
)

// RegisterInput is the payload of a registration.
type RegisterInput struct {
	Username string `json:"username" validate:"required,min=2,max=32"`
	Email    string `json:"email" validate:"required,email,max=254"`
	Password string `json:"password" validate:"required,min=8,max=72"`
}

// LoginInput is the payload of a login.
type LoginInput struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// ProfileUpdate carries the profile fields a user may change. Nil fields are left as is.
type ProfileUpdate struct {
	Username      *string `json:"username" validate:"omitempty,min=2,max=32"`
	Avatar        *string `json:"avatar" validate:"omitempty,max=2048"`
	CustomStatus  *string `json:"customStatus" validate:"omitempty,max=128"`
	Pronouns      *string `json:"pronouns" validate:"omitempty,max=40"`
	BannerURL     *string `json:"bannerUrl" validate:"omitempty,max=2048"`
	ProfileEffect *string `json:"profileEffect" validate:"omitempty,max=64"`
	AboutMe       *string `json:"aboutMe" validate:"omitempty,max=1024"`
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Register creates an Online user. The email must not be registered yet.
func (s *Service) Register(ctx context.Context, in RegisterInput) (model.User, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), s.bcryptCost)
	if err != nil {
		return model.User{}, err
	}

	user := model.User{
		ID:             randx.UserID(),
		Username:       strings.TrimSpace(in.Username),
		Email:          normalizeEmail(in.Email),
		PasswordHash:   string(hash),
		Status:         model.StatusOnline,
		Role:           model.DefaultUserRole,
		Friends:        []string{},
		FriendRequests: []model.FriendRequest{},
		CreatedAt:      time.Now().UTC(),
	}

	err = s.store.UpdateUsers(ctx, func(users []model.User) ([]model.User, error) {
		if model.FindUserByEmail(users, user.Email) >= 0 {
			return nil, errs.NewError(errs.ErrEmailAlreadyExists)
		}
		return append(users, user), nil
	})
	if err != nil {
		return model.User{}, storeError(err, 0, errs.ErrEmailAlreadyExists)
	}

	s.logger.Info().Str("user_id", user.ID).Msg("User registered")
	return user.Public(), nil
}

// Login verifies the credentials and marks the user Online.
func (s *Service) Login(ctx context.Context, in LoginInput) (model.User, error) {
	email := normalizeEmail(in.Email)

	var user model.User
	err := s.store.UpdateUsers(ctx, func(users []model.User) ([]model.User, error) {
		i := model.FindUserByEmail(users, email)
		if i < 0 {
			return nil, errs.NewError(errs.ErrInvalidCredentials)
		}

		if err := bcrypt.CompareHashAndPassword([]byte(users[i].PasswordHash), []byte(in.Password)); err != nil {
			if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
				return nil, errs.NewError(errs.ErrInvalidCredentials)
			}
			return nil, err
		}

		users[i].Status = model.StatusOnline
		user = users[i]
		return users, nil
	})
	if err != nil {
		return model.User{}, err
	}

	return user.Public(), nil
}

// Logout marks the user Offline.
func (s *Service) Logout(ctx context.Context, userID string) error {
	return setStatus(ctx, s.store, userID, model.StatusOffline)
}

// ListUsers returns every user without credentials.
func (s *Service) ListUsers(ctx context.Context) ([]model.User, error) {
	users, err := s.store.ReadUsers(ctx)
	if err != nil {
		return nil, err
	}

	out := make([]model.User, 0, len(users))
	for _, u := range users {
		out = append(out, u.Public())
	}
	return out, nil
}

// GetUser returns one user without credentials.
func (s *Service) GetUser(ctx context.Context, userID string) (model.User, error) {
	users, err := s.store.ReadUsers(ctx)
	if err != nil {
		return model.User{}, err
	}

	i := model.FindUser(users, userID)
	if i < 0 {
		return model.User{}, errs.NewError(errs.ErrUserNotFound)
	}
	return users[i].Public(), nil
}

// UserExists reports whether userID is registered.
func (s *Service) UserExists(ctx context.Context, userID string) (bool, error) {
	users, err := s.store.ReadUsers(ctx)
	if err != nil {
		return false, err
	}
	return model.FindUser(users, userID) >= 0, nil
}

// UpdateProfile applies in to userID. Users may only edit their own profile.
func (s *Service) UpdateProfile(ctx context.Context, actorID, userID string, in ProfileUpdate) (model.User, error) {
	if actorID != userID {
		return model.User{}, errs.NewError(errs.ErrPermissionDenied)
	}

	var user model.User
	err := s.store.UpdateUsers(ctx, func(users []model.User) ([]model.User, error) {
		i := model.FindUser(users, userID)
		if i < 0 {
			return nil, errs.NewError(errs.ErrUserNotFound)
		}

		u := &users[i]
		if in.Username != nil {
			u.Username = strings.TrimSpace(*in.Username)
		}
		if in.Avatar != nil {
			u.Avatar = in.Avatar
		}
		if in.CustomStatus != nil {
			u.CustomStatus = *in.CustomStatus
		}
		if in.Pronouns != nil {
			u.Pronouns = *in.Pronouns
		}
		if in.BannerURL != nil {
			u.BannerURL = in.BannerURL
		}
		if in.ProfileEffect != nil {
			u.ProfileEffect = in.ProfileEffect
		}
		if in.AboutMe != nil {
			u.AboutMe = *in.AboutMe
		}

		user = *u
		return users, nil
	})
	if err != nil {
		return model.User{}, err
	}

	return user.Public(), nil
}
