package domain

import (
	"context"
	"errors"
)

// StorageKey is the persisted record holding platform credentials.
const StorageKey = "payabli-config"

const DefaultAPIBaseURL = "https://api-sandbox.payabli.com"

// Credentials scope every outbound call to a paypoint on the remote
// payment platform.
type Credentials struct {
	APIToken    string `json:"apiToken"`
	EntryPoint  string `json:"entryPoint"`
	EntryID     string `json:"entryId"`
	PublicToken string `json:"publicToken"`
	APIBaseURL  string `json:"apiBaseUrl"`
}

// IsConfigured reports whether every credential needed for API calls is set.
// The base URL is optional because it has a default.
func (c Credentials) IsConfigured() bool {
	return c.APIToken != "" && c.EntryPoint != "" && c.EntryID != "" && c.PublicToken != ""
}

// Patch updates only the fields that are non-nil.
type Patch struct {
	APIToken    *string `json:"apiToken"`
	EntryPoint  *string `json:"entryPoint"`
	EntryID     *string `json:"entryId"`
	PublicToken *string `json:"publicToken"`
	APIBaseURL  *string `json:"apiBaseUrl"`
}

type Service interface {
	Get(ctx context.Context) (Credentials, error)
	Set(ctx context.Context, patch Patch) (Credentials, error)
	Clear(ctx context.Context) error
	IsConfigured(ctx context.Context) (bool, error)
}

var (
	ErrInvalidPatch  = errors.New("invalid_credentials_patch")
	ErrNotConfigured = errors.New("credentials_not_configured")
)
