// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package credstore keeps the TargetProcess API token outside the plain
// configuration file.
//
// A [Store] maps an account name to a secret string. Two backends are
// provided:
//
//   - [Keychain] -- the macOS login keychain via the security(1) tool,
//     under service "targetprocess-mcp".
//   - [SealedFile] -- a directory holding an age X25519 identity and one
//     age-encrypted file per account, all mode 0600. This keeps the
//     token unreadable to anything that copies the directory without
//     the identity, and it works on every platform.
//
// [Default] picks the keychain on darwin and the sealed file elsewhere.
// [Memory] is an in-process store for tests and for callers that
// already hold the token.
//
// A missing secret is reported as [ErrNotFound] by every backend.
package credstore
