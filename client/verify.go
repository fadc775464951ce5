package client

import (
	"context"
	"fmt"
	"net/url"
)

// MintCode asks the backend to issue a fresh verification code for an item.
// Only the item's uploader may mint; the backend re-verifies that and the
// resulting AuthorizationError is surfaced as such. Minting twice yields two
// distinct live codes: issuance is deliberately not idempotent.
func (c *Client) MintCode(ctx context.Context, itemID string) (string, error) {
	if itemID == "" {
		return "", &ValidationError{Msg: "itemId is required"}
	}
	token, err := c.requireToken(ctx)
	if err != nil {
		return "", err
	}

	var out struct {
		VerificationCode string `json:"verificationCode"`
	}
	body := map[string]string{"itemId": itemID}
	if err := c.postJSON(ctx, "/verify/generate", token, body, &out); err != nil {
		return "", err
	}
	if out.VerificationCode == "" {
		return "", fmt.Errorf("backend returned no verification code")
	}
	return out.VerificationCode, nil
}

// Resolve looks up the item a verification code points to. The session cache
// is consulted first: a hit answers without any network traffic, trading
// freshness for stability of what the second party already saw. On a miss the
// backend is called with the caller's identity attached when one is
// available, and the snapshot is cached only if resolution succeeds.
func (c *Client) Resolve(ctx context.Context, code string) (*Item, error) {
	if code == "" {
		return nil, &ValidationError{Msg: "verification code is required"}
	}

	if item, ok := c.cache.Get(code); ok {
		return item, nil
	}

	token, err := c.optionalToken(ctx)
	if err != nil {
		return nil, err
	}

	var out struct {
		ItemDetails Item `json:"itemDetails"`
	}
	if err := c.getJSON(ctx, "/verify/"+url.PathEscape(code), token, &out); err != nil {
		return nil, err
	}

	c.cache.put(code, out.ItemDetails)
	item := out.ItemDetails
	return &item, nil
}

// Claim asserts the caller's right to the item behind a code. The backend's
// conditional write guarantees at most one claim succeeds per item, no matter
// how many live codes exist; this client only reports the outcome.
func (c *Client) Claim(ctx context.Context, code string) (*ClaimResult, error) {
	if code == "" {
		return nil, &ValidationError{Msg: "verification code is required"}
	}
	token, err := c.requireToken(ctx)
	if err != nil {
		return nil, err
	}

	var result ClaimResult
	if err := c.postJSON(ctx, "/verify/"+url.PathEscape(code)+"/claim", token, struct{}{}, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// VerificationLink builds the shareable resolution URL for a code, the one a
// QR code would encode. origin is the public web origin of the gallery.
func VerificationLink(origin, code string) string {
	return fmt.Sprintf("%s/verify/%s", origin, url.PathEscape(code))
}
