// internal/config/keyring.go
package config

import (
	"errors"
	"fmt"

	"github.com/99designs/keyring"
)

const serviceName = "gamedash"

// KeyringStore keeps access tokens and the master key in the system keyring
type KeyringStore struct {
	ring keyring.Keyring
}

// NewKeyringStore creates a new keyring store instance
func NewKeyringStore() (*KeyringStore, error) {
	ring, err := keyring.Open(keyring.Config{
		ServiceName: serviceName,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open keyring: %w", err)
	}
	return &KeyringStore{ring: ring}, nil
}

// SetSecret stores a secret under key
func (k *KeyringStore) SetSecret(key, value string) error {
	return k.ring.Set(keyring.Item{
		Key:   key,
		Data:  []byte(value),
		Label: serviceName + " " + key,
	})
}

// GetSecret retrieves the secret stored under key
func (k *KeyringStore) GetSecret(key string) (string, error) {
	item, err := k.ring.Get(key)
	if err != nil {
		return "", fmt.Errorf("secret not found: %s: %w", key, err)
	}
	return string(item.Data), nil
}

// DeleteSecret removes a secret. Removing a missing key is not an error.
func (k *KeyringStore) DeleteSecret(key string) error {
	err := k.ring.Remove(key)
	if errors.Is(err, keyring.ErrKeyNotFound) {
		return nil
	}
	return err
}
