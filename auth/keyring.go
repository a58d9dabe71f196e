// Package auth stores the telemetry backend bearer token in the system keyring.
package auth

import (
	"errors"

	"github.com/playmark/playmark/constant"
	"github.com/zalando/go-keyring"
)

const user = "telemetry-token"

// ErrNoToken is returned when no token has been stored.
var ErrNoToken = errors.New("no telemetry token stored")

// SetToken persists the telemetry token.
func SetToken(token string) error {
	return keyring.Set(constant.Playmark, user, token)
}

// GetToken retrieves the telemetry token.
func GetToken() (string, error) {
	token, err := keyring.Get(constant.Playmark, user)
	if errors.Is(err, keyring.ErrNotFound) {
		return "", ErrNoToken
	}
	return token, err
}

// DeleteToken removes the telemetry token. Deleting a missing token is not an error.
func DeleteToken() error {
	if err := keyring.Delete(constant.Playmark, user); err != nil && !errors.Is(err, keyring.ErrNotFound) {
		return err
	}
	return nil
}
