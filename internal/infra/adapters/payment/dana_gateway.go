// File: internal/infra/adapters/payment/dana_gateway.go
package payment

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"time"

	qrcode "github.com/skip2/go-qrcode"

	"github.com/sellaris/payments/internal/domain/model"
	"github.com/sellaris/payments/internal/domain/ports/adapter"
)

var _ adapter.PaymentGateway = (*DanaGateway)(nil)

// DanaGateway implements adapter.PaymentGateway against DANA's merchant
// QRIS API. Order registration is a REST call; confirmation always comes
// back asynchronously through the webhook, signed with the shared secret.
type DanaGateway struct {
	merchantID string
	secretKey  string
	callback   string
	sandbox    bool
	client     *http.Client
}

func NewDanaGateway(merchantID, secretKey, callbackURL string, sandbox bool) (*DanaGateway, error) {
	if merchantID == "" {
		return nil, errors.New("merchant id empty")
	}
	if secretKey == "" {
		return nil, errors.New("secret key empty")
	}
	if _, err := url.Parse(callbackURL); err != nil {
		return nil, fmt.Errorf("invalid callback url: %w", err)
	}
	return &DanaGateway{
		merchantID: merchantID,
		secretKey:  secretKey,
		callback:   callbackURL,
		sandbox:    sandbox,
		client:     &http.Client{Timeout: 15 * time.Second},
	}, nil
}

func (g *DanaGateway) Name() string { return "dana" }

func (g *DanaGateway) endpoint(path string) string {
	base := "https://api.saas.dana.id/v1"
	if g.sandbox {
		base = "https://api.sandbox.dana.id/v1"
	}
	return base + path
}

// RegisterOrder announces the attempt to DANA and renders the scannable
// code. The payload embedded in the code is ours, not the provider's;
// DANA only needs the order on file so the wallet app can resolve it.
func (g *DanaGateway) RegisterOrder(ctx context.Context, attempt *model.PaymentAttempt) (*adapter.QROrder, error) {
	body := map[string]any{
		"merchantId":   g.merchantID,
		"referenceId":  attempt.ReferenceID,
		"amount":       attempt.Amount,
		"currency":     "IDR",
		"itemName":     attempt.Payload.ItemName,
		"callbackUrl":  g.callback,
		"validSeconds": int(time.Until(attempt.Deadline).Seconds()),
	}
	b, _ := json.Marshal(body)
	req, _ := http.NewRequestWithContext(ctx, http.MethodPost, g.endpoint("/qr/qr-mpm-generate"), bytes.NewReader(b))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-SIGNATURE", g.Sign(attempt.ReferenceID, attempt.Amount, "order"))

	resp, err := g.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	var out struct {
		ResponseCode    string `json:"responseCode"`
		ResponseMessage string `json:"responseMessage"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, err
	}
	if out.ResponseCode != "00000000" {
		return nil, fmt.Errorf("dana order rejected: %s %s", out.ResponseCode, out.ResponseMessage)
	}

	payload, err := attempt.Payload.Encode()
	if err != nil {
		return nil, err
	}
	png, err := qrcode.Encode(payload, qrcode.Medium, 256)
	if err != nil {
		return nil, err
	}
	return &adapter.QROrder{
		ReferenceID: attempt.ReferenceID,
		Payload:     payload,
		ImagePNG:    png,
	}, nil
}

// Sign computes hex(HMAC-SHA256(secret, referenceID+amount+status)),
// DANA's webhook signature convention.
func (g *DanaGateway) Sign(referenceID string, amount int64, status string) string {
	mac := hmac.New(sha256.New, []byte(g.secretKey))
	fmt.Fprintf(mac, "%s%d%s", referenceID, amount, status)
	return hex.EncodeToString(mac.Sum(nil))
}

// VerifySignature compares in constant time.
func (g *DanaGateway) VerifySignature(referenceID string, amount int64, status, signature string) bool {
	expected := g.Sign(referenceID, amount, status)
	return hmac.Equal([]byte(expected), []byte(signature))
}
