package service

import (
	"context"
	"time"

	"github.com/heliohq/claims-portal/internal/domain"
	"github.com/heliohq/claims-portal/internal/http/response"
	"github.com/heliohq/claims-portal/internal/repository"
	"github.com/heliohq/claims-portal/pkg/auth"
	"github.com/heliohq/claims-portal/pkg/config"
	"github.com/heliohq/claims-portal/pkg/events"
	"github.com/heliohq/claims-portal/pkg/logger"
)

// KycService handles the one-time KYC submission and the admin-side
// record overwrite.
type KycService interface {
	// Submit creates the KYC record for a user and returns a fresh session
	// token reflecting the completed status.
	Submit(ctx context.Context, userID string, req *domain.KycRequest) (*domain.KYC, *domain.User, string, error)
	Update(ctx context.Context, kycID string, req *domain.KycRequest) (*domain.KYC, error)
}

type kycService struct {
	kyc   repository.KycRepository
	users repository.UserRepository
	bus   events.Publisher
	cfg   config.AuthConfig
}

func NewKycService(kyc repository.KycRepository, users repository.UserRepository, bus events.Publisher, cfg config.AuthConfig) KycService {
	return &kycService{kyc: kyc, users: users, bus: bus, cfg: cfg}
}

func (s *kycService) Submit(ctx context.Context, userID string, req *domain.KycRequest) (*domain.KYC, *domain.User, string, error) {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return nil, nil, "", err
	}
	if user == nil {
		return nil, nil, "", response.NotFound("User not found")
	}
	if user.KycID != nil {
		return nil, nil, "", response.BadRequest("KYC has already been submitted")
	}

	req.Normalize()
	if err := req.Validate(); err != nil {
		return nil, nil, "", response.BadRequest(err.Error())
	}

	record, updated, err := s.kyc.SubmitForUser(ctx, userID, req)
	if err != nil {
		return nil, nil, "", err
	}

	if err := s.bus.Publish(ctx, events.KycSubmitted, events.KycSubmittedEvent{
		UserID:      updated.ID,
		KycID:       record.ID,
		SubmittedAt: record.CreatedAt,
	}); err != nil {
		logger.WarnContext(ctx, "failed to publish event", "subject", events.KycSubmitted, "error", err)
	}

	ttl := time.Duration(s.cfg.TokenExpiresDays) * 24 * time.Hour
	token, err := auth.NewUserToken(updated.ID, updated.Role, updated.IsKycComplete, s.cfg.JWTSecret, ttl)
	if err != nil {
		return nil, nil, "", err
	}
	return record, updated, token, nil
}

// Update overwrites the whole record; partial edits are not a thing here.
func (s *kycService) Update(ctx context.Context, kycID string, req *domain.KycRequest) (*domain.KYC, error) {
	req.Normalize()
	if err := req.Validate(); err != nil {
		return nil, response.BadRequest(err.Error())
	}

	existing, err := s.kyc.FindByID(ctx, kycID)
	if err != nil {
		return nil, err
	}
	if existing == nil {
		return nil, response.NotFound("KYC not found")
	}

	return s.kyc.Update(ctx, kycID, req)
}
