package handler

import (
	"regdesk/internal/registrant/models"
	"regdesk/internal/registrant/service"
)

const (
	messageSubmitted      = "Form submitted successfully!"
	messagePaymentUpdated = "Payment status updated successfully"
	messageSheetsSynced   = "Google Sheet updated successfully"
)

type SubmitResponse struct {
	Message       string  `json:"message"`
	ID            string  `json:"id"`
	PaymentStatus string  `json:"paymentStatus"`
	QRCode        *string `json:"qrCode"`
}

type UpdatePaymentStatusResponse struct {
	Message string             `json:"message"`
	User    *models.Registrant `json:"user"`
}

type SheetsSyncResponse struct {
	Message string `json:"message"`
	Rows    int    `json:"rows"`
}

func toSubmitResponse(res *service.SubmitResult) *SubmitResponse {
	resp := &SubmitResponse{
		Message:       messageSubmitted,
		ID:            res.Registrant.ID.String(),
		PaymentStatus: string(res.Registrant.PaymentStatus),
	}
	if res.QRCode != "" {
		qr := res.QRCode
		resp.QRCode = &qr
	}
	return resp
}
