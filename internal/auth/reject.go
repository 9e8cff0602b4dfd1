// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Gatewarden Contributors

package auth

import "github.com/samber/oops"

// Error codes for expected rejections. Callers discriminate on these via
// Reject rather than matching message strings.
const (
	CodeEmailTaken         = "AUTH_EMAIL_TAKEN"
	CodeInvalidCredentials = "AUTH_INVALID_CREDENTIALS"
	CodeAccountLocked      = "AUTH_ACCOUNT_LOCKED"
	CodeAccountInactive    = "AUTH_ACCOUNT_INACTIVE"
	CodePersistenceFailed  = "AUTH_PERSISTENCE_FAILED"
)

// RejectReason is the discriminant for expected engine rejections.
type RejectReason int

// Rejection reasons, in rough order of user remediation.
const (
	ReasonNone RejectReason = iota
	ReasonEmailTaken
	ReasonInvalidCredentials
	ReasonAccountLocked
	ReasonAccountInactive
	ReasonPersistenceFailed
)

// Reject maps an engine error to its rejection reason. Returns ReasonNone
// for nil errors and for faults that carry no rejection code.
func Reject(err error) RejectReason {
	if err == nil {
		return ReasonNone
	}
	oopsErr, ok := oops.AsOops(err)
	if !ok {
		return ReasonNone
	}
	switch oopsErr.Code() {
	case CodeEmailTaken:
		return ReasonEmailTaken
	case CodeInvalidCredentials:
		return ReasonInvalidCredentials
	case CodeAccountLocked:
		return ReasonAccountLocked
	case CodeAccountInactive:
		return ReasonAccountInactive
	case CodePersistenceFailed:
		return ReasonPersistenceFailed
	}
	return ReasonNone
}
