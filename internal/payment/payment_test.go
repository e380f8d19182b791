package payment

import (
	"bytes"
	"encoding/base64"
	"image/png"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dErrors "regdesk/pkg/domain-errors"
)

func TestBuildPaymentString(t *testing.T) {
	tests := []struct {
		name     string
		payee    string
		person   string
		currency string
		want     string
	}{
		{
			name:     "spaces become %20",
			payee:    "church@upi",
			person:   "Anna Joseph",
			currency: "INR",
			want:     "upi://pay?pa=church%40upi&pn=Anna%20Joseph&cu=INR",
		},
		{
			name:     "reserved characters are escaped",
			payee:    "p&q",
			person:   "A=B+C",
			currency: "INR",
			want:     "upi://pay?pa=p%26q&pn=A%3DB%2BC&cu=INR",
		},
		{
			name:     "empty name",
			payee:    "x",
			person:   "",
			currency: "INR",
			want:     "upi://pay?pa=x&pn=&cu=INR",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, BuildPaymentString(tt.payee, tt.person, tt.currency))
		})
	}
}

func TestBuildPaymentStringIsDeterministic(t *testing.T) {
	a := BuildPaymentString("church@upi", "Anna Joseph", "INR")
	b := BuildPaymentString("church@upi", "Anna Joseph", "INR")
	assert.Equal(t, a, b)
}

func TestRenderQRImage(t *testing.T) {
	g := New("church@upi")

	uri, err := g.RenderQRImage(BuildPaymentString("church@upi", "Anna Joseph", "INR"))
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(uri, "data:image/png;base64,"))

	raw, err := base64.StdEncoding.DecodeString(strings.TrimPrefix(uri, "data:image/png;base64,"))
	require.NoError(t, err)
	img, err := png.Decode(bytes.NewReader(raw))
	require.NoError(t, err)
	assert.Equal(t, DefaultQRSize, img.Bounds().Dx())
}

func TestRenderQRImageHonoursSize(t *testing.T) {
	g := New("church@upi", WithQRSize(128), WithCurrency("USD"))

	uri, err := g.QRCodeFor("Anna")
	require.NoError(t, err)
	raw, err := base64.StdEncoding.DecodeString(strings.TrimPrefix(uri, dataURIPrefix))
	require.NoError(t, err)
	img, err := png.Decode(bytes.NewReader(raw))
	require.NoError(t, err)
	assert.Equal(t, 128, img.Bounds().Dx())
}

func TestRenderQRImageFailures(t *testing.T) {
	g := New("church@upi")

	t.Run("empty input", func(t *testing.T) {
		_, err := g.RenderQRImage("")
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInternal))
		assert.Equal(t, "failed to encode payment qr code", err.Error())
	})

	t.Run("over capacity", func(t *testing.T) {
		_, err := g.RenderQRImage(strings.Repeat("x", 8000))
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInternal))
	})
}

func TestOptionsIgnoreZeroValues(t *testing.T) {
	g := New("p", WithCurrency(""), WithQRSize(0))
	assert.Equal(t, DefaultCurrency, g.currency)
	assert.Equal(t, DefaultQRSize, g.size)
}
