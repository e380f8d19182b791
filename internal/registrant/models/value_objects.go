package models

import (
	"strings"

	dErrors "regdesk/pkg/domain-errors"
)

// PaymentStatus records whether a registrant has paid. Submissions store the
// title-case values; the update path stores whatever it was given, case-folded.
type PaymentStatus string

const (
	PaymentStatusYes PaymentStatus = "Yes"
	PaymentStatusNo  PaymentStatus = "No"
)

// PaymentOptionPayNow is the only form option that marks a submission as paid
// and triggers a payment QR code. Matching is exact.
const PaymentOptionPayNow = "Pay Now"

// PaymentStatusForOption derives the submit-time status from the form's
// payment option.
func PaymentStatusForOption(option string) PaymentStatus {
	if option == PaymentOptionPayNow {
		return PaymentStatusYes
	}
	return PaymentStatusNo
}

// ParsePaymentStatus case-folds an update-path status and accepts only
// "yes" or "no".
func ParsePaymentStatus(raw string) (PaymentStatus, error) {
	status := strings.ToLower(strings.TrimSpace(raw))
	switch status {
	case "":
		return "", dErrors.New(dErrors.CodeValidation, "paymentStatus is required")
	case "yes", "no":
		return PaymentStatus(status), nil
	default:
		return "", dErrors.New(dErrors.CodeValidation, "paymentStatus must be yes or no")
	}
}

// IsPaid reports whether the status is a case-insensitive "yes".
func (p PaymentStatus) IsPaid() bool {
	return strings.EqualFold(string(p), string(PaymentStatusYes))
}

// NormalizeEmail produces the lookup key for email matching.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
