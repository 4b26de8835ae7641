// Copyright (C) 2019-2025, Lux Industries Inc All rights reserved.
// See the file LICENSE for licensing terms.

package api

import (
	"context"
	"net/http"

	"github.com/alexliesenfeld/health"

	"github.com/luxfi/fhevm"
)

const HealthPath = "/health"

// HandleHealthCheckRequest reports healthy once the client runtime is ready.
func HandleHealthCheckRequest(mux *http.ServeMux, client *fhevm.Client) {
	healthChecker := health.NewChecker(
		health.WithCheck(health.Check{
			Name: "fhevm-client",
			Check: func(context.Context) error {
				if !client.IsReady() {
					if err := client.Err(); err != nil {
						return err
					}
					return fhevm.ErrNotInitialized
				}
				return nil
			},
		}),
	)

	mux.Handle(HealthPath, health.NewHandler(healthChecker))
}
