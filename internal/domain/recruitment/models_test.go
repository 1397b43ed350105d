package recruitment

import (
	"errors"
	"testing"
	"time"

	"hireflow/internal/domain/core"
)

func ptr[T any](v T) *T { return &v }

func TestFullyExecuted(t *testing.T) {
	signed := time.Date(2024, 3, 10, 9, 0, 0, 0, time.UTC)
	tests := []struct {
		name     string
		contract Contract
		want     bool
	}{
		{name: "neither signed", contract: Contract{}},
		{name: "employee only", contract: Contract{EmployeeSignatureURL: "sig.png", EmployeeSignedAt: &signed}},
		{name: "employer only", contract: Contract{EmployerSignedAt: &signed}},
		{name: "employee timestamp without artifact", contract: Contract{EmployeeSignedAt: &signed, EmployerSignedAt: &signed}},
		{name: "both", contract: Contract{EmployeeSignatureURL: "sig.png", EmployerSignedAt: &signed}, want: true},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := tc.contract.FullyExecuted(); got != tc.want {
				t.Fatalf("FullyExecuted() = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestApplyMergesSetFieldsOnly(t *testing.T) {
	now := time.Date(2024, 3, 15, 12, 0, 0, 0, time.UTC)
	original := Contract{ID: "c1", OfferID: "o1", Role: "Engineer", SigningBonus: ptr(100.0)}

	got := ContractUpdate{Role: ptr("Senior Engineer")}.Apply(original, now)
	if got.Role != "Senior Engineer" {
		t.Fatalf("expected role update, got %q", got.Role)
	}
	if got.SigningBonus == nil || *got.SigningBonus != 100 {
		t.Fatalf("expected bonus untouched, got %v", got.SigningBonus)
	}
	if got.EmployeeSignedAt != nil || got.EmployerSignedAt != nil {
		t.Fatal("expected signatures untouched")
	}
	if original.Role != "Engineer" {
		t.Fatal("expected original contract to be unchanged")
	}
}

func TestApplyStampsEmployeeSignature(t *testing.T) {
	now := time.Date(2024, 3, 15, 12, 0, 0, 0, time.UTC)

	got := ContractUpdate{EmployeeSignatureURL: ptr("sig.png")}.Apply(Contract{}, now)
	if got.EmployeeSignedAt == nil || !got.EmployeeSignedAt.Equal(now) {
		t.Fatalf("expected employee signature stamped at %v, got %v", now, got.EmployeeSignedAt)
	}

	explicit := now.Add(-time.Hour)
	got = ContractUpdate{EmployeeSignatureURL: ptr("sig.png"), EmployeeSignedAt: &explicit}.Apply(Contract{}, now)
	if !got.EmployeeSignedAt.Equal(explicit) {
		t.Fatalf("expected explicit timestamp kept, got %v", got.EmployeeSignedAt)
	}

	earlier := now.Add(-24 * time.Hour)
	got = ContractUpdate{EmployeeSignatureURL: ptr("sig-v2.png")}.Apply(Contract{EmployeeSignedAt: &earlier}, now)
	if !got.EmployeeSignedAt.Equal(earlier) {
		t.Fatalf("expected existing timestamp kept, got %v", got.EmployeeSignedAt)
	}

	got = ContractUpdate{EmployeeSignatureURL: ptr("")}.Apply(Contract{}, now)
	if got.EmployeeSignedAt != nil {
		t.Fatal("expected blank artifact not to stamp a signature")
	}
}

func TestCheckSignaturesLocksRecordedSignatures(t *testing.T) {
	signed := time.Date(2024, 3, 10, 9, 0, 0, 0, time.UTC)
	later := signed.Add(time.Hour)
	executed := Contract{EmployeeSignatureURL: "sig.png", EmployeeSignedAt: &signed, EmployerSignedAt: &signed}
	tests := []struct {
		name     string
		contract Contract
		update   ContractUpdate
		locked   bool
	}{
		{name: "first employee signature", contract: Contract{}, update: ContractUpdate{EmployeeSignatureURL: ptr("sig.png")}},
		{name: "artifact after bare timestamp", contract: Contract{EmployeeSignedAt: &signed}, update: ContractUpdate{EmployeeSignatureURL: ptr("sig.png")}},
		{name: "same artifact resent", contract: executed, update: ContractUpdate{EmployeeSignatureURL: ptr("sig.png")}},
		{name: "same employer time resent", contract: executed, update: ContractUpdate{EmployerSignedAt: &signed}},
		{name: "unrelated field", contract: executed, update: ContractUpdate{Role: ptr("Lead")}},
		{name: "artifact cleared", contract: executed, update: ContractUpdate{EmployeeSignatureURL: ptr("")}, locked: true},
		{name: "artifact replaced", contract: executed, update: ContractUpdate{EmployeeSignatureURL: ptr("sig-v2.png")}, locked: true},
		{name: "employee time moved", contract: executed, update: ContractUpdate{EmployeeSignedAt: &later}, locked: true},
		{name: "employer time moved", contract: executed, update: ContractUpdate{EmployerSignedAt: &later}, locked: true},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.update.CheckSignatures(tc.contract)
			if got := errors.Is(err, ErrSignatureRecorded); got != tc.locked {
				t.Fatalf("CheckSignatures() = %v, want locked %v", err, tc.locked)
			}
			if !tc.locked && err != nil {
				t.Fatalf("unexpected error %v", err)
			}
		})
	}
}

func TestEmployeeFieldsOnly(t *testing.T) {
	if !(ContractUpdate{EmployeeSignatureURL: ptr("sig.png")}).EmployeeFieldsOnly() {
		t.Fatal("expected signature update to be employee-only")
	}
	if (ContractUpdate{EmployerSignedAt: ptr(time.Now())}).EmployeeFieldsOnly() {
		t.Fatal("expected employer signature to require HR")
	}
	if (ContractUpdate{SigningBonus: ptr(10.0)}).EmployeeFieldsOnly() {
		t.Fatal("expected bonus change to require HR")
	}
}

func TestNotFoundSentinelsShareMarker(t *testing.T) {
	for _, err := range []error{ErrContractNotFound, ErrOfferNotFound, ErrApplicationNotFound} {
		if !errors.Is(err, core.ErrNotFound) {
			t.Fatalf("expected %v to wrap core.ErrNotFound", err)
		}
	}
}

func TestRenderContractDocument(t *testing.T) {
	signed := time.Date(2024, 3, 10, 9, 0, 0, 0, time.UTC)
	data, err := RenderContractDocument(Contract{
		ID:                   "c1",
		Role:                 "Engineer",
		SigningBonus:         ptr(500.0),
		EmployeeSignatureURL: "sig.png",
		EmployeeSignedAt:     &signed,
		EmployerSignedAt:     &signed,
	}, Offer{CandidateID: "cand-1"})
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if len(data) < 4 || string(data[:4]) != "%PDF" {
		t.Fatalf("expected PDF output, got %q", data[:min(len(data), 8)])
	}
}
