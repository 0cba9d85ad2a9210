// Package tracking builds the public order-tracking link and its QR code.
package tracking

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/skip2/go-qrcode"
)

const DefaultQRSize = 256

// URL returns the shopper-facing tracking page for an order code.
func URL(baseURL, orderCode string) string {
	return strings.TrimRight(baseURL, "/") + "/track-order?code=" + url.QueryEscape(orderCode)
}

// QRCode renders the tracking URL as a PNG.
func QRCode(baseURL, orderCode string, size int) ([]byte, error) {
	if strings.TrimSpace(orderCode) == "" {
		return nil, fmt.Errorf("order code is required")
	}
	if size <= 0 {
		size = DefaultQRSize
	}
	png, err := qrcode.Encode(URL(baseURL, orderCode), qrcode.Medium, size)
	if err != nil {
		return nil, fmt.Errorf("failed to encode QR code: %w", err)
	}
	return png, nil
}
