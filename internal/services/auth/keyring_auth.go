package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/zalando/go-keyring"
)

// keyringTimeout bounds a single keychain call. The Secret Service on Linux
// can block indefinitely waiting for an unlock prompt.
const keyringTimeout = 10 * time.Second

var ErrKeyringTimeout = errors.New("keychain did not respond")

// KeyringStore keeps tokens in the OS keychain under one service name.
type KeyringStore struct {
	service string
	timeout time.Duration
}

func NewKeyringStore(service string) *KeyringStore {
	if service == "" {
		service = ServiceName
	}
	return &KeyringStore{service: service, timeout: keyringTimeout}
}

func (k *KeyringStore) Set(key string, value string) error {
	_, err := k.do(func() (string, error) {
		return "", keyring.Set(k.service, NormalizeKey(key), value)
	})
	return err
}

func (k *KeyringStore) Get(key string) (string, error) {
	return k.do(func() (string, error) {
		return keyring.Get(k.service, NormalizeKey(key))
	})
}

func (k *KeyringStore) Delete(key string) error {
	_, err := k.do(func() (string, error) {
		return "", keyring.Delete(k.service, NormalizeKey(key))
	})
	return err
}

type keyringResult struct {
	value string
	err   error
}

func (k *KeyringStore) do(op func() (string, error)) (string, error) {
	done := make(chan keyringResult, 1)
	go func() {
		v, err := op()
		done <- keyringResult{v, err}
	}()

	select {
	case r := <-done:
		if errors.Is(r.err, keyring.ErrNotFound) {
			return "", ErrTokenNotFound
		}
		if r.err != nil {
			return "", fmt.Errorf("keychain %s: %w", k.service, r.err)
		}
		return r.value, nil
	case <-time.After(k.timeout):
		return "", fmt.Errorf("%w after %s", ErrKeyringTimeout, k.timeout)
	}
}
