package service_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"regdesk/internal/payment"
	"regdesk/internal/registrant/models"
	"regdesk/internal/registrant/service"
	"regdesk/internal/registrant/store"
)

func TestPayLaterThenMarkPaid(t *testing.T) {
	ctx := context.Background()
	svc := service.New(store.NewInMemory(), payment.New("church@upi"))

	res, err := svc.Submit(ctx, &service.SubmitCommand{
		FullName:      "A B",
		Email:         "a@b.com",
		PaymentOption: "Pay Later",
	})
	require.NoError(t, err)
	assert.Equal(t, models.PaymentStatusNo, res.Registrant.PaymentStatus)
	assert.Empty(t, res.QRCode)

	first, err := svc.UpdatePaymentStatus(ctx, "A@B.com", "yes")
	require.NoError(t, err)
	second, err := svc.UpdatePaymentStatus(ctx, "  a@b.com ", "yes")
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, first.PaymentStatus, second.PaymentStatus)

	got, err := svc.Get(ctx, res.Registrant.ID)
	require.NoError(t, err)
	assert.Equal(t, models.PaymentStatus("yes"), got.PaymentStatus)
}

func TestPayNowRendersQRCode(t *testing.T) {
	svc := service.New(store.NewInMemory(), payment.New("church@upi"))

	res, err := svc.Submit(context.Background(), &service.SubmitCommand{
		FullName:      "Anna Joseph",
		Email:         "anna@example.org",
		PaymentOption: "Pay Now",
	})
	require.NoError(t, err)
	assert.Equal(t, models.PaymentStatusYes, res.Registrant.PaymentStatus)
	assert.Contains(t, res.QRCode, "data:image/png;base64,")
}
