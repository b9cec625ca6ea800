package services

import (
	"context"
	"strings"
	"time"

	"keepsake/internal/domain/user"
	kredis "keepsake/internal/redis"
	"keepsake/internal/repository"
	keepsake_errors "keepsake/pkg/errors"

	"github.com/google/uuid"
)

type UserService struct {
	userRepo repository.UserRepository
	presence *kredis.PresenceStore
}

type UpdateProfileInput struct {
	DisplayName string
	AvatarURL   string
	Bio         string
	Birthday    *time.Time
}

func NewUserService(userRepo repository.UserRepository, presence *kredis.PresenceStore) *UserService {
	return &UserService{userRepo: userRepo, presence: presence}
}

func (s *UserService) GetProfile(ctx context.Context, id uuid.UUID) (user.User, error) {
	return s.userRepo.GetByID(ctx, id)
}

func (s *UserService) GetPartner(ctx context.Context, userID uuid.UUID) (user.User, error) {
	return s.userRepo.GetPartner(ctx, userID)
}

func (s *UserService) UpdateProfile(ctx context.Context, id uuid.UUID, input UpdateProfileInput) (user.User, error) {
	u, err := s.userRepo.GetByID(ctx, id)
	if err != nil {
		return user.User{}, err
	}

	if strings.TrimSpace(input.DisplayName) != "" {
		u.DisplayName = strings.TrimSpace(input.DisplayName)
	}
	if input.AvatarURL != "" {
		u.AvatarURL = nullable(input.AvatarURL)
	}
	if input.Bio != "" {
		u.Bio = nullable(input.Bio)
	}
	if input.Birthday != nil {
		u.Birthday = input.Birthday
	}
	u.UpdatedAt = time.Now()

	if err := s.userRepo.Update(ctx, u); err != nil {
		return user.User{}, err
	}
	return u, nil
}

// LinkPartner pairs the two members of the space. A user already linked
// to someone else cannot be re-linked.
func (s *UserService) LinkPartner(ctx context.Context, userID, partnerID uuid.UUID) error {
	if userID == partnerID {
		return keepsake_errors.ErrInvalidInput
	}
	u, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return err
	}
	partner, err := s.userRepo.GetByID(ctx, partnerID)
	if err != nil {
		return err
	}
	if (u.PartnerID != nil && *u.PartnerID != partnerID) ||
		(partner.PartnerID != nil && *partner.PartnerID != userID) {
		return keepsake_errors.ErrConflict
	}
	return s.userRepo.LinkPartner(ctx, userID, partnerID)
}

// Heartbeat refreshes the viewer's last-active marker in both Redis (for
// fast presence reads) and the profile row (for "last seen" after expiry).
func (s *UserService) Heartbeat(ctx context.Context, userID uuid.UUID) error {
	if s.presence != nil {
		if err := s.presence.Heartbeat(ctx, userID); err != nil {
			return err
		}
	}
	return s.userRepo.TouchLastActive(ctx, userID, time.Now())
}

// PartnerPresence derives the partner's online state from their last
// heartbeat; never a stored boolean.
func (s *UserService) PartnerPresence(ctx context.Context, userID uuid.UUID) (kredis.PresenceStatus, error) {
	partner, err := s.userRepo.GetPartner(ctx, userID)
	if err != nil {
		return kredis.PresenceStatus{}, err
	}
	if s.presence == nil {
		return kredis.PresenceStatus{UserID: partner.ID.String()}, nil
	}
	return s.presence.Get(ctx, partner.ID)
}

func (s *UserService) RegisterPushToken(ctx context.Context, userID uuid.UUID, token, platform string) error {
	if strings.TrimSpace(token) == "" {
		return keepsake_errors.ErrInvalidInput
	}
	return s.userRepo.UpsertPushToken(ctx, &user.PushToken{
		ID:        uuid.New(),
		UserID:    userID,
		Token:     token,
		Platform:  platform,
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	})
}

func (s *UserService) RemovePushToken(ctx context.Context, token string) error {
	return s.userRepo.DeletePushToken(ctx, token)
}
