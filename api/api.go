// Copyright (C) 2019-2025, Lux Industries Inc All rights reserved.
// See the file LICENSE for licensing terms.

// Package api serves encryption, public decryption and key lookups over
// HTTP for server-side callers.
package api

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/luxfi/log"

	"github.com/luxfi/fhevm"
	"github.com/luxfi/fhevm/keys"
)

const (
	EncryptPath = "/api/fhe/encrypt"
	DecryptPath = "/api/fhe/decrypt"
	KeysPath    = "/api/keys"

	maxRequestSize = 1 << 20

	displayPrefixLen = 10
	displaySuffixLen = 8
)

// EncryptRequest carries either an object of untyped values or an array of
// typed values.
type EncryptRequest struct {
	ContractAddress string          `json:"contractAddress"`
	UserAddress     string          `json:"userAddress"`
	Values          json.RawMessage `json:"values"`
}

type EncryptedData struct {
	Handles    []string `json:"handles"`
	InputProof string   `json:"inputProof"`
}

type EncryptResponse struct {
	Success   bool          `json:"success"`
	Encrypted EncryptedData `json:"encrypted"`
}

type DecryptRequest struct {
	ContractAddress string `json:"contractAddress"`
	Handle          string `json:"handle"`
}

type DecryptResponse struct {
	Success bool `json:"success"`
	// decimal encoding of the plaintext
	Value string `json:"value"`
}

type KeysResponse struct {
	Success   bool           `json:"success"`
	ChainID   uint64         `json:"chainId"`
	PublicKey string         `json:"publicKey"`
	Display   string         `json:"display"`
	Metadata  *keys.Metadata `json:"metadata,omitempty"`
	Cached    bool           `json:"cached"`
}

type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

// HandleRequests registers the API routes on mux.
func HandleRequests(
	mux *http.ServeMux,
	logger log.Logger,
	metrics *Metrics,
	client *fhevm.Client,
	cache *keys.Cache,
) {
	mux.Handle("POST "+EncryptPath, instrument(metrics, EncryptPath, encryptHandler(logger, client)))
	mux.Handle("POST "+DecryptPath, instrument(metrics, DecryptPath, decryptHandler(logger, client)))
	mux.Handle("GET "+KeysPath, instrument(metrics, KeysPath, keysHandler(logger, client, cache)))
}

func writeJSON(logger log.Logger, w http.ResponseWriter, httpStatusCode int, body any) {
	resp, err := json.Marshal(body)
	if err != nil {
		msg := "Error marshalling JSON response"
		logger.Error(msg, log.Err(err))
		resp = []byte(msg)
		httpStatusCode = http.StatusInternalServerError
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(httpStatusCode)

	if _, err := w.Write(resp); err != nil {
		logger.Error("Error writing response", log.Err(err))
	}
}

func writeJSONError(logger log.Logger, w http.ResponseWriter, httpStatusCode int, msg string, err error) {
	resp := ErrorResponse{Error: msg}
	if err != nil {
		resp.Details = err.Error()
	}
	writeJSON(logger, w, httpStatusCode, resp)
}

// statusFor maps SDK errors to HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, fhevm.ErrValidation), errors.Is(err, fhevm.ErrUnsupportedType):
		return http.StatusBadRequest
	case errors.Is(err, fhevm.ErrGatewayNotImplemented):
		return http.StatusNotImplemented
	case errors.Is(err, fhevm.ErrNotInitialized):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func decodeRequest(w http.ResponseWriter, r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxRequestSize))
	dec.UseNumber()
	return dec.Decode(v)
}

func encryptHandler(logger log.Logger, client *fhevm.Client) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req EncryptRequest
		if err := decodeRequest(w, r, &req); err != nil {
			logger.Warn("Could not decode request body", log.Err(err))
			writeJSONError(logger, w, http.StatusBadRequest, "Could not decode request body", err)
			return
		}
		values := bytes.TrimSpace(req.Values)
		if req.ContractAddress == "" || req.UserAddress == "" || len(values) == 0 || bytes.Equal(values, []byte("null")) {
			writeJSONError(logger, w, http.StatusBadRequest, "Missing required parameters: contractAddress, userAddress, values", nil)
			return
		}
		contractAddress, err := fhevm.ParseAddress(req.ContractAddress)
		if err != nil {
			writeJSONError(logger, w, http.StatusBadRequest, "Invalid contract address", err)
			return
		}
		userAddress, err := fhevm.ParseAddress(req.UserAddress)
		if err != nil {
			writeJSONError(logger, w, http.StatusBadRequest, "Invalid user address", err)
			return
		}

		ctx := r.Context()
		if err := client.Init(ctx); err != nil {
			logger.Error("Failed to initialize FHEVM client", log.Err(err))
			writeJSONError(logger, w, http.StatusServiceUnavailable, "Encryption failed", err)
			return
		}

		var encrypted *fhevm.EncryptedInput
		if values[0] == '[' {
			var typed []fhevm.TypedValue
			dec := json.NewDecoder(bytes.NewReader(values))
			dec.UseNumber()
			if err := dec.Decode(&typed); err != nil {
				writeJSONError(logger, w, http.StatusBadRequest, "Could not decode values", err)
				return
			}
			encrypted, err = client.BatchEncrypt(ctx, contractAddress, userAddress, typed)
		} else {
			var inputs fhevm.Inputs
			if err := json.Unmarshal(values, &inputs); err != nil {
				writeJSONError(logger, w, http.StatusBadRequest, "Could not decode values", err)
				return
			}
			encrypted, err = client.EncryptInput(ctx, contractAddress, userAddress, inputs)
		}
		if err != nil {
			logger.Warn("Encryption failed",
				log.String("contract", req.ContractAddress),
				log.Err(err),
			)
			writeJSONError(logger, w, statusFor(err), "Encryption failed", err)
			return
		}

		writeJSON(logger, w, http.StatusOK, EncryptResponse{
			Success: true,
			Encrypted: EncryptedData{
				Handles:    encrypted.HandleStrings(),
				InputProof: encrypted.ProofHex(),
			},
		})
	})
}

func decryptHandler(logger log.Logger, client *fhevm.Client) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req DecryptRequest
		if err := decodeRequest(w, r, &req); err != nil {
			logger.Warn("Could not decode request body", log.Err(err))
			writeJSONError(logger, w, http.StatusBadRequest, "Could not decode request body", err)
			return
		}
		if req.ContractAddress == "" || req.Handle == "" {
			writeJSONError(logger, w, http.StatusBadRequest, "Missing required parameters: contractAddress, handle", nil)
			return
		}
		if err := fhevm.ValidateDecryptionParams(req.ContractAddress, req.Handle); err != nil {
			writeJSONError(logger, w, http.StatusBadRequest, "Decryption failed", err)
			return
		}
		contractAddress, err := fhevm.ParseAddress(req.ContractAddress)
		if err != nil {
			writeJSONError(logger, w, http.StatusBadRequest, "Decryption failed", err)
			return
		}
		handle, err := fhevm.ParseHandle(req.Handle)
		if err != nil {
			writeJSONError(logger, w, http.StatusBadRequest, "Decryption failed", err)
			return
		}

		value, err := client.PublicDecrypt(r.Context(), fhevm.PublicDecryptionRequest{
			ContractAddress: contractAddress,
			Handle:          handle,
		})
		if err != nil {
			logger.Warn("Decryption failed",
				log.String("handle", req.Handle),
				log.Err(err),
			)
			writeJSONError(logger, w, statusFor(err), "Decryption failed", err)
			return
		}

		writeJSON(logger, w, http.StatusOK, DecryptResponse{
			Success: true,
			Value:   value.String(),
		})
	})
}

func keysHandler(logger log.Logger, client *fhevm.Client, cache *keys.Cache) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		chainID := client.Config().ChainID
		if cache != nil {
			if entry, ok := client.CachedPublicKey(cache); ok {
				writeJSON(logger, w, http.StatusOK, KeysResponse{
					Success:   true,
					ChainID:   chainID,
					PublicKey: entry.Key,
					Display:   keys.FormatForDisplay(entry.Key, displayPrefixLen, displaySuffixLen),
					Metadata:  &entry.Metadata,
					Cached:    true,
				})
				return
			}
		}

		if err := client.Init(r.Context()); err != nil {
			logger.Error("Failed to initialize FHEVM client", log.Err(err))
			writeJSONError(logger, w, statusFor(err), "Key operation failed", err)
			return
		}
		key, err := client.PublicKey()
		if err != nil {
			writeJSONError(logger, w, statusFor(err), "Key operation failed", err)
			return
		}
		metadata := keys.NewKeyMetadata(keys.PurposeEncryption, chainID, time.Now(), 0)
		if cache != nil {
			cache.Put(key, metadata)
		}

		writeJSON(logger, w, http.StatusOK, KeysResponse{
			Success:   true,
			ChainID:   chainID,
			PublicKey: key,
			Display:   keys.FormatForDisplay(key, displayPrefixLen, displaySuffixLen),
			Metadata:  &metadata,
		})
	})
}
