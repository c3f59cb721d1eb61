package session

import (
	"bytes"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"filippo.io/age"
)

// Sealer encrypts small secrets into printable text and back.
type Sealer interface {
	Seal(plaintext []byte) (string, error)
	Open(sealed string) ([]byte, error)
}

// AgeSealer seals to a single X25519 identity.
type AgeSealer struct {
	identity *age.X25519Identity
}

func NewAgeSealer(identity *age.X25519Identity) *AgeSealer {
	return &AgeSealer{identity: identity}
}

// LoadOrCreateIdentity reads an age identity file, generating a new one when
// the file does not exist yet.
func LoadOrCreateIdentity(path string) (*age.X25519Identity, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		identity, genErr := age.GenerateX25519Identity()
		if genErr != nil {
			return nil, fmt.Errorf("failed to generate identity: %w", genErr)
		}
		if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
			return nil, fmt.Errorf("failed to create identity directory: %w", err)
		}
		content := fmt.Sprintf("# public key: %s\n%s\n", identity.Recipient(), identity)
		if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
			return nil, fmt.Errorf("failed to write identity: %w", err)
		}
		return identity, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read identity: %w", err)
	}
	for _, line := range strings.Split(string(data), "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		identity, err := age.ParseX25519Identity(line)
		if err != nil {
			return nil, fmt.Errorf("failed to parse identity %s: %w", path, err)
		}
		return identity, nil
	}
	return nil, fmt.Errorf("no identity found in %s", path)
}

func (s *AgeSealer) Seal(plaintext []byte) (string, error) {
	var buf bytes.Buffer
	w, err := age.Encrypt(&buf, s.identity.Recipient())
	if err != nil {
		return "", fmt.Errorf("failed to start encryption: %w", err)
	}
	if _, err := w.Write(plaintext); err != nil {
		return "", fmt.Errorf("failed to encrypt: %w", err)
	}
	if err := w.Close(); err != nil {
		return "", fmt.Errorf("failed to finish encryption: %w", err)
	}
	return base64.StdEncoding.EncodeToString(buf.Bytes()), nil
}

func (s *AgeSealer) Open(sealed string) ([]byte, error) {
	raw, err := base64.StdEncoding.DecodeString(sealed)
	if err != nil {
		return nil, fmt.Errorf("failed to decode sealed token: %w", err)
	}
	r, err := age.Decrypt(bytes.NewReader(raw), s.identity)
	if err != nil {
		return nil, fmt.Errorf("failed to decrypt: %w", err)
	}
	plain, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read decrypted token: %w", err)
	}
	return plain, nil
}
