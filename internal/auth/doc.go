// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Gatewarden Contributors

// Package auth implements the authentication engine.
//
// # Domain Types
//
// Domain types (User, Credential) are created through the engine:
//   - Service.Register creates a User and its Credential atomically
//   - Credential lockout state is mutated only through RecordFailure,
//     RecordSuccess, and IsLocked
//
// # Components
//
//   - PBKDF2Hasher - salted password digests (PBKDF2, HMAC-SHA-512)
//   - TokenIssuer - HS256 bearer tokens and opaque refresh tokens
//   - Service - registration, login, lockout, password change/reset
//
// All mutable state lives in the repositories; the engine itself is
// stateless and safe for concurrent use across distinct accounts.
package auth
