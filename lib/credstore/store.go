// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package credstore

import (
	"errors"
	"runtime"
	"sync"
)

const (
	// Service is the keychain service name secrets are filed under.
	Service = "targetprocess-mcp"

	// TokenAccount is the account name of the API token.
	TokenAccount = "api-token"
)

// ErrNotFound is returned by Get when no secret is stored for the
// account.
var ErrNotFound = errors.New("credstore: secret not found")

// Store reads and writes secrets by account name.
type Store interface {
	Get(account string) (string, error)
	Set(account, value string) error
}

// Default returns the platform's preferred store. dir is where the
// sealed file backend keeps its files.
func Default(dir string) Store {
	if runtime.GOOS == "darwin" {
		return &Keychain{Service: Service}
	}
	return &SealedFile{Dir: dir}
}

// Memory is a Store held in process memory.
type Memory struct {
	mu      sync.Mutex
	secrets map[string]string
}

// NewMemory returns a Memory store seeded with secrets.
func NewMemory(secrets map[string]string) *Memory {
	memory := &Memory{secrets: make(map[string]string, len(secrets))}
	for account, value := range secrets {
		memory.secrets[account] = value
	}
	return memory
}

func (m *Memory) Get(account string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	value, ok := m.secrets[account]
	if !ok {
		return "", ErrNotFound
	}
	return value, nil
}

func (m *Memory) Set(account, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.secrets == nil {
		m.secrets = make(map[string]string)
	}
	m.secrets[account] = value
	return nil
}
