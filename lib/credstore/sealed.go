// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package credstore

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"filippo.io/age"
	"filippo.io/age/armor"
)

// IdentityFile is the name of the age identity inside a SealedFile
// directory.
const IdentityFile = "identity.age-key"

// SealedFile stores each secret as an armored age file encrypted to an
// X25519 identity kept in the same directory. The identity is created
// on the first Set.
type SealedFile struct {
	Dir string
}

func (s *SealedFile) Get(account string) (string, error) {
	ciphertext, err := os.ReadFile(s.secretPath(account))
	if errors.Is(err, fs.ErrNotExist) {
		return "", ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("credstore: reading sealed %s: %w", account, err)
	}

	identity, err := s.loadIdentity()
	if errors.Is(err, fs.ErrNotExist) {
		return "", fmt.Errorf("credstore: sealed %s exists but %s is missing", account, IdentityFile)
	}
	if err != nil {
		return "", err
	}

	reader, err := age.Decrypt(armor.NewReader(bytes.NewReader(ciphertext)), identity)
	if err != nil {
		return "", fmt.Errorf("credstore: decrypting %s: %w", account, err)
	}
	plaintext, err := io.ReadAll(reader)
	if err != nil {
		return "", fmt.Errorf("credstore: reading decrypted %s: %w", account, err)
	}
	return string(plaintext), nil
}

func (s *SealedFile) Set(account, value string) error {
	if err := os.MkdirAll(s.Dir, 0o700); err != nil {
		return fmt.Errorf("credstore: creating %s: %w", s.Dir, err)
	}

	identity, err := s.loadIdentity()
	if errors.Is(err, fs.ErrNotExist) {
		identity, err = s.createIdentity()
	}
	if err != nil {
		return err
	}

	var ciphertext bytes.Buffer
	armored := armor.NewWriter(&ciphertext)
	writer, err := age.Encrypt(armored, identity.Recipient())
	if err != nil {
		return fmt.Errorf("credstore: creating age encryptor: %w", err)
	}
	if _, err := io.WriteString(writer, value); err != nil {
		return fmt.Errorf("credstore: encrypting %s: %w", account, err)
	}
	if err := writer.Close(); err != nil {
		return fmt.Errorf("credstore: finalizing %s: %w", account, err)
	}
	if err := armored.Close(); err != nil {
		return fmt.Errorf("credstore: armoring %s: %w", account, err)
	}

	return writePrivate(s.secretPath(account), ciphertext.Bytes())
}

func (s *SealedFile) secretPath(account string) string {
	return filepath.Join(s.Dir, account+".age")
}

func (s *SealedFile) loadIdentity() (*age.X25519Identity, error) {
	data, err := os.ReadFile(filepath.Join(s.Dir, IdentityFile))
	if err != nil {
		return nil, err
	}
	identity, err := age.ParseX25519Identity(strings.TrimSpace(string(data)))
	if err != nil {
		return nil, fmt.Errorf("credstore: parsing %s: %w", IdentityFile, err)
	}
	return identity, nil
}

func (s *SealedFile) createIdentity() (*age.X25519Identity, error) {
	identity, err := age.GenerateX25519Identity()
	if err != nil {
		return nil, fmt.Errorf("credstore: generating identity: %w", err)
	}
	if err := writePrivate(filepath.Join(s.Dir, IdentityFile), []byte(identity.String()+"\n")); err != nil {
		return nil, err
	}
	return identity, nil
}

// writePrivate writes data to path with mode 0600 via a rename, so a
// reader never sees a partial file.
func writePrivate(path string, data []byte) error {
	temporary, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*")
	if err != nil {
		return fmt.Errorf("credstore: creating temp file for %s: %w", path, err)
	}
	defer os.Remove(temporary.Name())

	if err := temporary.Chmod(0o600); err != nil {
		temporary.Close()
		return fmt.Errorf("credstore: chmod %s: %w", temporary.Name(), err)
	}
	if _, err := temporary.Write(data); err != nil {
		temporary.Close()
		return fmt.Errorf("credstore: writing %s: %w", path, err)
	}
	if err := temporary.Close(); err != nil {
		return fmt.Errorf("credstore: closing %s: %w", path, err)
	}
	if err := os.Rename(temporary.Name(), path); err != nil {
		return fmt.Errorf("credstore: replacing %s: %w", path, err)
	}
	return nil
}
