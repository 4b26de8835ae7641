// Copyright (C) 2019-2025, Lux Industries Inc All rights reserved.
// See the file LICENSE for licensing terms.

package gateway

import (
	"context"
	"encoding/json"
	"math/big"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/luxfi/crypto/bls"
	"github.com/luxfi/geth/common"
	"github.com/stretchr/testify/require"
)

var testHandle = common.HexToHash("0xabcd")

// newTestGateway serves fixed responses and records the last request body.
func newTestGateway(t *testing.T, status int, body any, lastBody *map[string]any) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	respond := func(w http.ResponseWriter, r *http.Request) {
		if lastBody != nil {
			require.NoError(t, json.NewDecoder(r.Body).Decode(lastBody))
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		require.NoError(t, json.NewEncoder(w).Encode(body))
	}
	mux.HandleFunc("POST "+UserDecryptPath, respond)
	mux.HandleFunc("POST "+PublicDecryptPath, respond)
	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)
	return server
}

func TestClientNotConfigured(t *testing.T) {
	require := require.New(t)

	c := NewClient("")
	_, err := c.PublicDecrypt(context.Background(), &PublicDecryptRequest{Handle: testHandle})
	require.ErrorIs(err, ErrNotConfigured)
	_, err = c.UserDecrypt(context.Background(), &UserDecryptRequest{Handle: testHandle, Signature: []byte{1}})
	require.ErrorIs(err, ErrNotConfigured)
}

func TestClientUserDecrypt(t *testing.T) {
	require := require.New(t)

	var body map[string]any
	server := newTestGateway(t, http.StatusOK, DecryptResponse{Value: "1000"}, &body)
	c := NewClient(server.URL + "/")

	v, err := c.UserDecrypt(context.Background(), &UserDecryptRequest{
		ContractAddress: common.HexToAddress("0x01"),
		Handle:          testHandle,
		UserAddress:     common.HexToAddress("0x02"),
		ChainID:         9000,
		Signature:       []byte{0xaa, 0xbb},
		PublicKey:       "0x04",
	})
	require.NoError(err)
	require.Equal(big.NewInt(1000), v)

	require.Equal(testHandle.Hex(), body["handle"])
	require.Equal("0xaabb", body["signature"])
	require.InDelta(9000, body["chainId"], 0)

	_, err = c.UserDecrypt(context.Background(), &UserDecryptRequest{Handle: testHandle})
	require.ErrorIs(err, ErrNotAllowed)
}

func TestClientResponses(t *testing.T) {
	tests := []struct {
		name          string
		status        int
		body          any
		expectedValue *big.Int
		expectedErr   error
		errContains   string
	}{
		{
			name:          "ok",
			status:        http.StatusOK,
			body:          DecryptResponse{Value: "18446744073709551616"},
			expectedValue: new(big.Int).Lsh(big.NewInt(1), 64),
		},
		{
			name:        "negative value",
			status:      http.StatusOK,
			body:        DecryptResponse{Value: "-1"},
			expectedErr: ErrInvalidResponse,
		},
		{
			name:          "max word",
			status:        http.StatusOK,
			body:          DecryptResponse{Value: new(big.Int).Sub(new(big.Int).Lsh(big.NewInt(1), 256), big.NewInt(1)).String()},
			expectedValue: new(big.Int).Sub(new(big.Int).Lsh(big.NewInt(1), 256), big.NewInt(1)),
		},
		{
			name:        "wider than a word",
			status:      http.StatusOK,
			body:        DecryptResponse{Value: new(big.Int).Lsh(big.NewInt(1), 256).String()},
			expectedErr: ErrInvalidResponse,
		},
		{
			name:        "not a number",
			status:      http.StatusOK,
			body:        DecryptResponse{Value: "abc"},
			expectedErr: ErrInvalidResponse,
		},
		{
			name:        "malformed",
			status:      http.StatusOK,
			body:        []int{1},
			expectedErr: ErrInvalidResponse,
		},
		{
			name:        "error message",
			status:      http.StatusForbidden,
			body:        ErrorResponse{Error: "acl denied"},
			errContains: "gateway returned 403: acl denied",
		},
		{
			name:        "bare error",
			status:      http.StatusBadGateway,
			body:        map[string]string{},
			errContains: "gateway returned 502",
		},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			require := require.New(t)

			server := newTestGateway(t, test.status, test.body, nil)
			c := NewClient(server.URL)
			v, err := c.PublicDecrypt(context.Background(), &PublicDecryptRequest{Handle: testHandle})
			if test.expectedErr != nil {
				require.ErrorIs(err, test.expectedErr)
				return
			}
			if test.errContains != "" {
				require.ErrorContains(err, test.errContains)
				return
			}
			require.NoError(err)
			require.Equal(test.expectedValue, v)
		})
	}
}

func TestClientVerifiesSignedResults(t *testing.T) {
	r := require.New(t)

	sk, err := bls.NewSecretKey()
	r.NoError(err)
	pk := bls.PublicFromSecretKey(sk)

	value := big.NewInt(42)
	sig := bls.Sign(sk, ResultDigest(testHandle, value))
	r.NoError(err)
	sigBytes := bls.SignatureToBytes(sig)

	wrongSig := bls.Sign(sk, ResultDigest(testHandle, big.NewInt(43)))
	r.NoError(err)

	tests := []struct {
		name        string
		response    DecryptResponse
		expectedErr error
	}{
		{
			name:     "valid",
			response: DecryptResponse{Value: "42", Signature: sigBytes},
		},
		{
			name:        "unsigned",
			response:    DecryptResponse{Value: "42"},
			expectedErr: ErrInvalidResponse,
		},
		{
			name:        "signature over other value",
			response:    DecryptResponse{Value: "42", Signature: bls.SignatureToBytes(wrongSig)},
			expectedErr: ErrInvalidResponse,
		},
		{
			name:        "garbage signature",
			response:    DecryptResponse{Value: "42", Signature: []byte{1, 2, 3}},
			expectedErr: ErrInvalidResponse,
		},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			require := require.New(t)

			server := newTestGateway(t, http.StatusOK, test.response, nil)
			c := NewClient(server.URL, WithSignerKey(pk))
			v, err := c.PublicDecrypt(context.Background(), &PublicDecryptRequest{Handle: testHandle})
			require.ErrorIs(err, test.expectedErr)
			if test.expectedErr == nil {
				require.Equal(value, v)
			}
		})
	}
}

func TestResultDigest(t *testing.T) {
	require := require.New(t)

	d1 := ResultDigest(testHandle, big.NewInt(1))
	require.Len(d1, 32)
	require.NotEqual(d1, ResultDigest(testHandle, big.NewInt(2)))
	require.NotEqual(d1, ResultDigest(common.HexToHash("0x01"), big.NewInt(1)))
}
