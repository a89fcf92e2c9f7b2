package client

import (
	"context"
	"encoding/json"
	"fmt"
	"time"
)

// CredentialKey is the local storage key of the persisted credential.
const CredentialKey = "credential"

// Credential is a signed-in session as issued by the server.
type Credential struct {
	AccountID    string    `json:"account_id"`
	Email        string    `json:"email"`
	AccessToken  string    `json:"access_token"`
	RefreshToken string    `json:"refresh_token"`
	ExpiresAt    time.Time `json:"expires_at"`
}

func (i *Identity) loadCredential(ctx context.Context) (*Credential, error) {
	data, err := i.storage.Get(ctx, CredentialKey)
	if err != nil {
		return nil, fmt.Errorf("read credential: %w", err)
	}
	if len(data) == 0 {
		return nil, nil
	}
	var c Credential
	if err := json.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("decode credential: %w", err)
	}
	if c.RefreshToken == "" {
		return nil, nil
	}
	return &c, nil
}

func (i *Identity) saveCredential(ctx context.Context, c *Credential) error {
	data, err := json.Marshal(c)
	if err != nil {
		return fmt.Errorf("encode credential: %w", err)
	}
	if err := i.storage.Set(ctx, CredentialKey, data); err != nil {
		return fmt.Errorf("save credential: %w", err)
	}
	return nil
}

func (i *Identity) deleteCredential(ctx context.Context) error {
	if err := i.storage.Delete(ctx, CredentialKey); err != nil {
		return fmt.Errorf("delete credential: %w", err)
	}
	return nil
}
