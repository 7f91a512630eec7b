package service

import (
	"context"

	"github.com/heliohq/claims-portal/internal/domain"
	"github.com/heliohq/claims-portal/internal/http/response"
	"github.com/heliohq/claims-portal/internal/repository"
	"github.com/heliohq/claims-portal/pkg/events"
	"github.com/heliohq/claims-portal/pkg/logger"
)

// FormService creates claim forms and resolves reads with ownership rules.
type FormService interface {
	Create(ctx context.Context, userID string, req *domain.CreateFormRequest) (*domain.Form, []domain.Claim, error)
	// Get enforces that vendors only see their own forms; every other role
	// with access to the route sees any form.
	Get(ctx context.Context, id, requesterID, requesterRole string) (*domain.Form, []domain.Claim, error)
}

type formService struct {
	forms repository.FormRepository
	bus   events.Publisher
}

func NewFormService(forms repository.FormRepository, bus events.Publisher) FormService {
	return &formService{forms: forms, bus: bus}
}

func (s *formService) Create(ctx context.Context, userID string, req *domain.CreateFormRequest) (*domain.Form, []domain.Claim, error) {
	if err := req.Validate(); err != nil {
		return nil, nil, response.BadRequest(err.Error())
	}

	form, claims, err := s.forms.CreateWithClaims(ctx, userID, req.TotalAmount(), req.Claims)
	if err != nil {
		return nil, nil, err
	}

	if err := s.bus.Publish(ctx, events.FormCreated, events.FormCreatedEvent{
		FormID:           form.ID,
		UserID:           form.UserID,
		TotalClaimAmount: form.TotalClaimAmount,
		ClaimCount:       len(claims),
		CreatedAt:        form.CreatedAt,
	}); err != nil {
		logger.WarnContext(ctx, "failed to publish event", "subject", events.FormCreated, "error", err)
	}

	return form, claims, nil
}

func (s *formService) Get(ctx context.Context, id, requesterID, requesterRole string) (*domain.Form, []domain.Claim, error) {
	form, claims, err := s.forms.GetByIDWithClaims(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	if form == nil {
		return nil, nil, response.NotFound("Form not found")
	}
	if requesterRole == domain.RoleVendor && form.UserID != requesterID {
		return nil, nil, response.Forbidden("You do not have permission to view this form")
	}

	return form, claims, nil
}
