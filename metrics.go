// Copyright (C) 2019-2025, Lux Industries Inc All rights reserved.
// See the file LICENSE for licensing terms.

package fhevm

import (
	"github.com/prometheus/client_golang/prometheus"
)

const (
	outcomeSuccess = "success"
	outcomeFailure = "failure"
)

type Metrics struct {
	initCount            *prometheus.CounterVec
	encryptCount         *prometheus.CounterVec
	encryptedValuesCount *prometheus.CounterVec
	decryptCount         *prometheus.CounterVec
}

func NewMetrics(registerer prometheus.Registerer) *Metrics {
	m := Metrics{
		initCount: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "fhevm_init_count",
				Help: "Number of runtime bootstraps",
			},
			[]string{"chain_id", "outcome"},
		),
		encryptCount: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "fhevm_encrypt_count",
				Help: "Number of encrypted input requests",
			},
			[]string{"mode", "outcome"},
		),
		encryptedValuesCount: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "fhevm_encrypted_values_count",
				Help: "Number of values encrypted, by type",
			},
			[]string{"type"},
		),
		decryptCount: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "fhevm_decrypt_count",
				Help: "Number of decryption requests",
			},
			[]string{"mode", "outcome"},
		),
	}

	registerer.MustRegister(m.initCount)
	registerer.MustRegister(m.encryptCount)
	registerer.MustRegister(m.encryptedValuesCount)
	registerer.MustRegister(m.decryptCount)

	return &m
}

func outcome(err error) string {
	if err != nil {
		return outcomeFailure
	}
	return outcomeSuccess
}
