package service

import (
	"strings"
	"time"

	"regdesk/internal/registrant/models"
	dErrors "regdesk/pkg/domain-errors"
)

// SubmitCommand carries a decoded registration form into the service.
type SubmitCommand struct {
	FullName      string
	HouseName     string
	Place         string
	Parish        string
	Email         string
	Phone         string
	DOB           *time.Time
	Experience    *float64
	Accommodation string
	HomeLocation  string
	Gender        string
	Category      string
	SpouseName    string
	SpousePhone   string
	NumChildren   int
	Children      []models.Dependent
	PaymentOption string
}

func (c *SubmitCommand) Validate() error {
	if c == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request is required")
	}
	if strings.TrimSpace(c.FullName) == "" {
		return dErrors.New(dErrors.CodeValidation, "fullName is required")
	}
	if strings.TrimSpace(c.Email) == "" {
		return dErrors.New(dErrors.CodeValidation, "email is required")
	}
	if c.NumChildren < 0 {
		return dErrors.New(dErrors.CodeValidation, "numChildren must not be negative")
	}
	return nil
}

// SubmitResult is the stored registrant plus the payment QR data URI, which
// is empty unless the registrant chose to pay now.
type SubmitResult struct {
	Registrant *models.Registrant
	QRCode     string
}

// ExportFile is a rendered export ready to be sent or saved.
type ExportFile struct {
	Filename    string
	ContentType string
	Body        []byte
	Rows        int
}
