package payroll

const (
	PolicyStatusDraft    = "draft"
	PolicyStatusApproved = "approved"

	BonusStatusPending  = "pending"
	BonusStatusApproved = "approved"

	RunStatusDraft       = "draft"
	RunStatusUnderReview = "under_review"
	RunStatusApproved    = "approved"
)

func validPolicyStatus(status string) bool {
	return status == PolicyStatusDraft || status == PolicyStatusApproved
}
