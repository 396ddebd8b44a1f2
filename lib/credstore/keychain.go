// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package credstore

import (
	"errors"
	"fmt"
	"os/exec"
	"strings"
)

// securityItemNotFound is the exit status security(1) uses when no
// matching keychain item exists (errSecItemNotFound).
const securityItemNotFound = 44

// Keychain stores secrets as generic passwords in the macOS keychain.
type Keychain struct {
	// Service is the keychain service name. Defaults to Service.
	Service string

	// Exec runs security(1) with the given arguments and returns its
	// standard output. Defaults to running the real tool.
	Exec func(args ...string) ([]byte, error)
}

func (k *Keychain) Get(account string) (string, error) {
	output, err := k.run("find-generic-password", "-s", k.service(), "-a", account, "-w")
	if err != nil {
		if exitCode(err) == securityItemNotFound {
			return "", ErrNotFound
		}
		return "", fmt.Errorf("credstore: reading %s/%s from keychain: %w", k.service(), account, err)
	}
	value := strings.TrimRight(string(output), "\r\n")
	if value == "" {
		return "", ErrNotFound
	}
	return value, nil
}

// Set adds or updates the item. -U updates an existing item in place.
func (k *Keychain) Set(account, value string) error {
	_, err := k.run("add-generic-password", "-U", "-s", k.service(), "-a", account, "-w", value)
	if err != nil {
		return fmt.Errorf("credstore: writing %s/%s to keychain: %w", k.service(), account, err)
	}
	return nil
}

func (k *Keychain) service() string {
	if k.Service == "" {
		return Service
	}
	return k.Service
}

func (k *Keychain) run(args ...string) ([]byte, error) {
	if k.Exec != nil {
		return k.Exec(args...)
	}
	return exec.Command("security", args...).Output()
}

// exitCode extracts a process exit status from err, or -1.
func exitCode(err error) int {
	var exited interface{ ExitCode() int }
	if errors.As(err, &exited) {
		return exited.ExitCode()
	}
	return -1
}
