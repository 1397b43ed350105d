package recruitment

import (
	"context"
	"errors"
	"testing"
	"time"

	"hireflow/internal/domain/auth"
	"hireflow/internal/platform/db/dbtest"
)

func TestStoreOfferToContractLifecycle(t *testing.T) {
	database := dbtest.Start(t)
	ctx := context.Background()
	store := NewStore(database.Pool)

	candidateID := database.User(t, auth.RoleCandidate, "candidate-lifecycle@example.com")
	hrID := database.User(t, auth.RoleHR, "hr-lifecycle@example.com")

	app, err := store.CreateApplication(ctx, database.TenantID, ApplicationInput{CandidateID: candidateID, Position: "Engineer"})
	if err != nil {
		t.Fatalf("create application: %v", err)
	}
	offer, err := store.CreateOffer(ctx, database.TenantID, OfferInput{
		ApplicationID: app.ID,
		HREmployeeID:  hrID,
		Role:          "Engineer",
		SigningBonus:  ptr(500.0),
	})
	if err != nil {
		t.Fatalf("create offer: %v", err)
	}
	if offer.CandidateID != candidateID {
		t.Fatalf("expected offer candidate from application, got %q", offer.CandidateID)
	}

	contract, err := store.AcceptOffer(ctx, database.TenantID, offer.ID)
	if err != nil {
		t.Fatalf("accept offer: %v", err)
	}
	if contract.FullyExecuted() || contract.BonusAmount() != 500 {
		t.Fatalf("unexpected new contract: %+v", contract)
	}
	if _, err := store.AcceptOffer(ctx, database.TenantID, offer.ID); !errors.Is(err, ErrOfferNotPending) {
		t.Fatalf("expected ErrOfferNotPending on second accept, got %v", err)
	}

	signed := time.Now().UTC().Truncate(time.Microsecond)
	merged := ContractUpdate{EmployeeSignatureURL: ptr("sig.png"), EmployerSignedAt: &signed}.Apply(*contract, signed)
	updated, err := store.UpdateContract(ctx, database.TenantID, merged)
	if err != nil {
		t.Fatalf("update contract: %v", err)
	}
	if !updated.FullyExecuted() {
		t.Fatalf("expected stored contract to be fully executed: %+v", updated)
	}

	if err := store.UpdateApplicationStatus(ctx, database.TenantID, app.ID, ApplicationStatusHired); err != nil {
		t.Fatalf("update application: %v", err)
	}
	reloaded, err := store.FindApplication(ctx, database.TenantID, app.ID)
	if err != nil {
		t.Fatalf("find application: %v", err)
	}
	if reloaded.Status != ApplicationStatusHired {
		t.Fatalf("expected HIRED, got %q", reloaded.Status)
	}

	contracts, total, err := store.ListContracts(ctx, database.TenantID, 10, 0)
	if err != nil {
		t.Fatalf("list contracts: %v", err)
	}
	if total < 1 || len(contracts) < 1 {
		t.Fatalf("expected listed contracts, got %d/%d", len(contracts), total)
	}
}

func TestStoreNotFound(t *testing.T) {
	database := dbtest.Start(t)
	ctx := context.Background()
	store := NewStore(database.Pool)
	missing := "00000000-0000-0000-0000-000000000000"

	if _, err := store.FindContract(ctx, database.TenantID, missing); !errors.Is(err, ErrContractNotFound) {
		t.Fatalf("expected ErrContractNotFound, got %v", err)
	}
	if _, err := store.FindOffer(ctx, database.TenantID, missing); !errors.Is(err, ErrOfferNotFound) {
		t.Fatalf("expected ErrOfferNotFound, got %v", err)
	}
	if err := store.UpdateApplicationStatus(ctx, database.TenantID, missing, ApplicationStatusHired); !errors.Is(err, ErrApplicationNotFound) {
		t.Fatalf("expected ErrApplicationNotFound, got %v", err)
	}
}
