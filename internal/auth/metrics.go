// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Gatewarden Contributors

package auth

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Status constants for authentication metrics.
const (
	StatusSuccess            = "success"
	StatusInvalidCredentials = "invalid_credentials"
	StatusLocked             = "locked"
	StatusInactive           = "inactive"
	StatusEmailTaken         = "email_taken"
	StatusError              = "error"
)

// LoginAttempts is the counter for login attempts by outcome.
// Use RegisterMetrics to register this with a Prometheus registry.
var LoginAttempts = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "gatewarden_login_attempts_total",
		Help: "Total number of login attempts by status",
	},
	[]string{"status"},
)

// Registrations is the counter for registration attempts by outcome.
// Use RegisterMetrics to register this with a Prometheus registry.
var Registrations = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "gatewarden_registrations_total",
		Help: "Total number of registration attempts by status",
	},
	[]string{"status"},
)

// Lockouts is the counter for accounts entering the locked state.
// Use RegisterMetrics to register this with a Prometheus registry.
var Lockouts = prometheus.NewCounter(
	prometheus.CounterOpts{
		Name: "gatewarden_account_lockouts_total",
		Help: "Total number of accounts locked after repeated failures",
	},
)

// RegisterMetrics registers auth package metrics with the given Prometheus
// registry. This must be called at startup to make metrics available on
// /metrics. Panics if registration fails (following prometheus convention).
func RegisterMetrics(reg prometheus.Registerer) {
	reg.MustRegister(LoginAttempts)
	reg.MustRegister(Registrations)
	reg.MustRegister(Lockouts)
}
