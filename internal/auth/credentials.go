// Package auth implements the credential gate and the in-memory session
// store. Credentials are a fixed identity-to-secret mapping supplied at
// startup; the gate performs plain equality checks against it and is an
// acknowledged placeholder, not a hardened authentication scheme.
package auth

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Credentials is the fixed mapping of identities to expected secrets.
type Credentials map[string]string

// LoadCredentials reads a YAML file mapping identity strings to secrets.
func LoadCredentials(path string) (Credentials, error) {
	if path == "" {
		return nil, errors.New("credentials file path is required")
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read credentials file: %w", err)
	}

	creds := Credentials{}
	if err := yaml.Unmarshal(data, &creds); err != nil {
		return nil, fmt.Errorf("parse credentials file: %w", err)
	}
	if len(creds) == 0 {
		return nil, fmt.Errorf("credentials file %q contains no entries", path)
	}
	return creds, nil
}

// Authenticate reports whether the supplied pair exactly matches a stored
// entry. Case-sensitive, no hashing, no lockout; a fresh comparison is made
// on every attempt and failures change no state.
func (c Credentials) Authenticate(identity, secret string) bool {
	expected, ok := c[identity]
	return ok && expected == secret
}

// DisplayName returns the local part of an identity before any '@'
// separator. Display only; the full identity remains the lookup key.
func DisplayName(identity string) string {
	if i := strings.Index(identity, "@"); i >= 0 {
		return identity[:i]
	}
	return identity
}
