package recruitment

import (
	"context"
	"fmt"
	"strings"
)

type Service struct {
	store StoreAPI
}

func NewService(store StoreAPI) *Service {
	return &Service{store: store}
}

func (s *Service) Store() StoreAPI {
	return s.store
}

func (s *Service) CreateApplication(ctx context.Context, tenantID string, in ApplicationInput) (*Application, error) {
	in.Position = strings.TrimSpace(in.Position)
	if in.CandidateID == "" || in.Position == "" {
		return nil, fmt.Errorf("recruitment: candidate and position are required")
	}
	return s.store.CreateApplication(ctx, tenantID, in)
}

func (s *Service) GetApplication(ctx context.Context, tenantID, id string) (*Application, error) {
	return s.store.FindApplication(ctx, tenantID, id)
}

func (s *Service) UpdateApplicationStatus(ctx context.Context, tenantID, id, status string) (*Application, error) {
	if !ValidApplicationStatus(status) {
		return nil, ErrInvalidStatus
	}
	if err := s.store.UpdateApplicationStatus(ctx, tenantID, id, status); err != nil {
		return nil, fmt.Errorf("recruitment: update application %s: %w", id, err)
	}
	return s.store.FindApplication(ctx, tenantID, id)
}

func (s *Service) CreateOffer(ctx context.Context, tenantID string, in OfferInput) (*Offer, error) {
	in.Role = strings.TrimSpace(in.Role)
	if in.SigningBonus != nil && *in.SigningBonus < 0 {
		return nil, ErrInvalidAmount
	}
	return s.store.CreateOffer(ctx, tenantID, in)
}

func (s *Service) GetOffer(ctx context.Context, tenantID, id string) (*Offer, error) {
	return s.store.FindOffer(ctx, tenantID, id)
}

func (s *Service) AcceptOffer(ctx context.Context, tenantID, offerID string) (*Contract, error) {
	return s.store.AcceptOffer(ctx, tenantID, offerID)
}

func (s *Service) GetContract(ctx context.Context, tenantID, id string) (*Contract, error) {
	return s.store.FindContract(ctx, tenantID, id)
}

func (s *Service) ListContracts(ctx context.Context, tenantID string, limit, offset int) ([]Contract, int, error) {
	return s.store.ListContracts(ctx, tenantID, limit, offset)
}

// ContractDocument renders the contract PDF together with its offer.
func (s *Service) ContractDocument(ctx context.Context, tenantID, contractID string) ([]byte, error) {
	contract, err := s.store.FindContract(ctx, tenantID, contractID)
	if err != nil {
		return nil, err
	}
	offer, err := s.store.FindOffer(ctx, tenantID, contract.OfferID)
	if err != nil {
		return nil, err
	}
	return RenderContractDocument(*contract, *offer)
}
