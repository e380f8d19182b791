// Package payment builds UPI payment request strings and renders them as QR
// code images. It never talks to a payment gateway.
package payment

import (
	"encoding/base64"
	"net/url"
	"strings"

	"github.com/skip2/go-qrcode"

	dErrors "regdesk/pkg/domain-errors"
)

const (
	DefaultCurrency = "INR"
	DefaultQRSize   = 256

	dataURIPrefix = "data:image/png;base64,"
)

// Generator renders payment QR codes for a fixed payee.
type Generator struct {
	payeeID  string
	currency string
	size     int
}

// Option configures a Generator.
type Option func(*Generator)

func WithCurrency(currency string) Option {
	return func(g *Generator) {
		if currency != "" {
			g.currency = currency
		}
	}
}

func WithQRSize(size int) Option {
	return func(g *Generator) {
		if size > 0 {
			g.size = size
		}
	}
}

func New(payeeID string, opts ...Option) *Generator {
	g := &Generator{payeeID: payeeID, currency: DefaultCurrency, size: DefaultQRSize}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// QRCodeFor builds the payment string for the registrant name and renders it.
func (g *Generator) QRCodeFor(registrantName string) (string, error) {
	return g.RenderQRImage(BuildPaymentString(g.payeeID, registrantName, g.currency))
}

// RenderQRImage encodes paymentString as a PNG QR code (medium recovery) and
// returns it as a data URI.
func (g *Generator) RenderQRImage(paymentString string) (string, error) {
	if paymentString == "" {
		return "", dErrors.New(dErrors.CodeInternal, "failed to encode payment qr code")
	}
	png, err := qrcode.Encode(paymentString, qrcode.Medium, g.size)
	if err != nil {
		return "", dErrors.Wrap(err, dErrors.CodeInternal, "failed to encode payment qr code")
	}
	return dataURIPrefix + base64.StdEncoding.EncodeToString(png), nil
}

// BuildPaymentString returns upi://pay?pa=<payee>&pn=<name>&cu=<currency> with
// every value percent-encoded. The output depends only on its inputs.
func BuildPaymentString(payeeID, registrantName, currency string) string {
	var b strings.Builder
	b.WriteString("upi://pay?pa=")
	b.WriteString(escape(payeeID))
	b.WriteString("&pn=")
	b.WriteString(escape(registrantName))
	b.WriteString("&cu=")
	b.WriteString(escape(currency))
	return b.String()
}

// escape percent-encodes a query value, using %20 for spaces.
func escape(s string) string {
	return strings.ReplaceAll(url.QueryEscape(s), "+", "%20")
}
