package client

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMintCodeRequiresAuthentication(t *testing.T) {
	var requests int64
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt64(&requests, 1)
	}))
	defer srv.Close()

	c := New(srv.URL, nil)

	_, err := c.MintCode(context.Background(), "item-1")
	require.ErrorIs(t, err, ErrAuthenticationRequired)
	assert.EqualValues(t, 0, atomic.LoadInt64(&requests))
}

func TestMintCodeForeignItemIsAuthorizationError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		json.NewEncoder(w).Encode(map[string]string{"message": "only the uploader may generate codes"})
	}))
	defer srv.Close()

	c := New(srv.URL, staticToken("tok"))

	_, err := c.MintCode(context.Background(), "item-1")
	require.True(t, IsAuthorizationError(err))
	assert.Equal(t, "only the uploader may generate codes", err.Error())
}

func TestMintCodeReturnsBackendCode(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/verify/generate", r.URL.Path)
		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "item-1", body["itemId"])
		json.NewEncoder(w).Encode(map[string]string{"verificationCode": "code-xyz"})
	}))
	defer srv.Close()

	c := New(srv.URL, staticToken("tok"))

	code, err := c.MintCode(context.Background(), "item-1")
	require.NoError(t, err)
	assert.Equal(t, "code-xyz", code)
}

func TestResolveCachesSuccessfulResolution(t *testing.T) {
	var hits int64
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt64(&hits, 1)
		json.NewEncoder(w).Encode(map[string]Item{
			"itemDetails": {ItemID: "item-1", ItemName: "Black umbrella", Status: StatusActive},
		})
	}))
	defer srv.Close()

	c := New(srv.URL, nil)

	first, err := c.Resolve(context.Background(), "code-xyz")
	require.NoError(t, err)
	second, err := c.Resolve(context.Background(), "code-xyz")
	require.NoError(t, err)

	assert.EqualValues(t, 1, atomic.LoadInt64(&hits), "second resolution must be served from the cache")
	assert.Equal(t, first.ItemID, second.ItemID)
	assert.Equal(t, 1, c.Cache().Len())
}

func TestResolveFailureIsNotCached(t *testing.T) {
	var hits int64
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt64(&hits, 1)
		w.WriteHeader(http.StatusNotFound)
		json.NewEncoder(w).Encode(map[string]string{"message": "code not found"})
	}))
	defer srv.Close()

	c := New(srv.URL, nil)

	_, err := c.Resolve(context.Background(), "bogus")
	require.ErrorIs(t, err, ErrNotFound)
	_, err = c.Resolve(context.Background(), "bogus")
	require.ErrorIs(t, err, ErrNotFound)

	assert.EqualValues(t, 2, atomic.LoadInt64(&hits), "failed resolutions must not populate the cache")
	assert.Equal(t, 0, c.Cache().Len())
}

func TestResolveCacheHitMutationDoesNotLeakBack(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]Item{
			"itemDetails": {ItemID: "item-1", ItemName: "Black umbrella"},
		})
	}))
	defer srv.Close()

	c := New(srv.URL, nil)

	first, err := c.Resolve(context.Background(), "code-xyz")
	require.NoError(t, err)
	first.ItemName = "mutated"

	second, err := c.Resolve(context.Background(), "code-xyz")
	require.NoError(t, err)
	assert.Equal(t, "Black umbrella", second.ItemName)
}

func TestResolveAttachesTokenWhenAvailable(t *testing.T) {
	var authHeader string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		authHeader = r.Header.Get("Authorization")
		json.NewEncoder(w).Encode(map[string]Item{"itemDetails": {ItemID: "item-1"}})
	}))
	defer srv.Close()

	c := New(srv.URL, staticToken("tok"))

	_, err := c.Resolve(context.Background(), "code-xyz")
	require.NoError(t, err)
	assert.Equal(t, "Bearer tok", authHeader)
}

func TestClaimMapsConflictStatuses(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		message string
		code    string
		want    error
	}{
		{"lost race", http.StatusConflict, "item has already been claimed", "already_claimed", ErrAlreadyClaimed},
		{"wrong state", http.StatusConflict, "item is not awaiting handover", "invalid_state", ErrInvalidState},
		{"terminal item", http.StatusGone, "item has already been handed over", "handed_over", ErrItemAlreadyHandedOver},
		{"unknown code", http.StatusNotFound, "code not found", "not_found", ErrNotFound},
		// The error code decides the mapping; the message is free to change.
		{"reworded lost race", http.StatusConflict, "someone got there first", "already_claimed", ErrAlreadyClaimed},
		{"legacy body without code", http.StatusConflict, "item has already been claimed", "", ErrAlreadyClaimed},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tc.status)
				body := map[string]string{"message": tc.message}
				if tc.code != "" {
					body["code"] = tc.code
				}
				json.NewEncoder(w).Encode(body)
			}))
			defer srv.Close()

			c := New(srv.URL, staticToken("tok"))

			_, err := c.Claim(context.Background(), "code-xyz")
			require.ErrorIs(t, err, tc.want)
		})
	}
}

func TestConflictWithUnrelatedCodeIsNotMisreadAsLifecycle(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusConflict)
		json.NewEncoder(w).Encode(map[string]string{
			"message": "item already exists",
			"code":    "duplicate_item",
		})
	}))
	defer srv.Close()

	c := New(srv.URL, staticToken("tok"))

	_, err := c.Claim(context.Background(), "code-xyz")
	require.NotErrorIs(t, err, ErrAlreadyClaimed)
	require.NotErrorIs(t, err, ErrInvalidState)
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusConflict, apiErr.StatusCode)
}

func TestClaimSuccessReturnsUpdatedItem(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/verify/code-xyz/claim", r.URL.Path)
		require.Equal(t, http.MethodPost, r.Method)
		json.NewEncoder(w).Encode(ClaimResult{
			Message: "claim registered",
			Item:    &Item{ItemID: "item-1", Status: StatusPendingHandover},
		})
	}))
	defer srv.Close()

	c := New(srv.URL, staticToken("tok"))

	result, err := c.Claim(context.Background(), "code-xyz")
	require.NoError(t, err)
	require.NotNil(t, result.Item)
	assert.Equal(t, StatusPendingHandover, result.Item.Status)
}

func TestVerificationLinkEscapesCode(t *testing.T) {
	link := VerificationLink("https://portal.example.com", "code with space")
	assert.Equal(t, "https://portal.example.com/verify/code%20with%20space", link)
}
