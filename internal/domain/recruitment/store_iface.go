package recruitment

import "context"

type StoreAPI interface {
	FindContract(ctx context.Context, tenantID, id string) (*Contract, error)
	UpdateContract(ctx context.Context, tenantID string, c Contract) (*Contract, error)
	ListContracts(ctx context.Context, tenantID string, limit, offset int) ([]Contract, int, error)
	FindOffer(ctx context.Context, tenantID, id string) (*Offer, error)
	FindApplication(ctx context.Context, tenantID, id string) (*Application, error)
	UpdateApplicationStatus(ctx context.Context, tenantID, id, status string) error
	CreateApplication(ctx context.Context, tenantID string, in ApplicationInput) (*Application, error)
	CreateOffer(ctx context.Context, tenantID string, in OfferInput) (*Offer, error)
	AcceptOffer(ctx context.Context, tenantID, offerID string) (*Contract, error)
}
