package recruitment

import (
	"bytes"
	"fmt"
	"time"

	"github.com/jung-kurt/gofpdf"
)

func RenderContractDocument(contract Contract, offer Offer) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.AddPage()
	pdf.SetFont("Helvetica", "B", 16)
	pdf.Cell(40, 10, "Employment Contract")
	pdf.Ln(12)
	pdf.SetFont("Helvetica", "", 12)
	pdf.Cell(0, 8, fmt.Sprintf("Contract: %s", contract.ID))
	pdf.Ln(7)
	pdf.Cell(0, 8, fmt.Sprintf("Role: %s", contract.Role))
	pdf.Ln(7)
	pdf.Cell(0, 8, fmt.Sprintf("Candidate: %s", offer.CandidateID))
	pdf.Ln(7)
	if amount := contract.BonusAmount(); amount > 0 {
		pdf.Cell(0, 8, fmt.Sprintf("Signing bonus: %.2f", amount))
		pdf.Ln(7)
	}
	pdf.Ln(5)
	pdf.SetFont("Helvetica", "B", 12)
	pdf.Cell(0, 8, "Signatures")
	pdf.Ln(8)
	pdf.SetFont("Helvetica", "", 12)
	pdf.Cell(0, 8, fmt.Sprintf("Employee: %s", signedLabel(contract.EmployeeSignedAt)))
	pdf.Ln(7)
	pdf.Cell(0, 8, fmt.Sprintf("Employer: %s", signedLabel(contract.EmployerSignedAt)))
	pdf.Ln(7)
	if contract.FullyExecuted() {
		pdf.SetFont("Helvetica", "I", 11)
		pdf.Cell(0, 8, "This contract is fully executed.")
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("recruitment: render contract %s: %w", contract.ID, err)
	}
	return buf.Bytes(), nil
}

func signedLabel(at *time.Time) string {
	if at == nil {
		return "not signed"
	}
	return "signed " + at.UTC().Format("2006-01-02")
}
