package recruitment

const (
	ApplicationStatusSubmitted = "submitted"
	ApplicationStatusInReview  = "in_review"
	ApplicationStatusOffered   = "offered"
	ApplicationStatusHired     = "HIRED"
	ApplicationStatusRejected  = "rejected"

	OfferStatusPending  = "pending"
	OfferStatusAccepted = "accepted"
	OfferStatusDeclined = "declined"
)

var applicationStatuses = map[string]bool{
	ApplicationStatusSubmitted: true,
	ApplicationStatusInReview:  true,
	ApplicationStatusOffered:   true,
	ApplicationStatusHired:     true,
	ApplicationStatusRejected:  true,
}

func ValidApplicationStatus(status string) bool {
	return applicationStatuses[status]
}
