// Package credentials loads the service-account key that authenticates
// the cloud warehouse connection.
package credentials

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/opensight-finance/kestrel/internal/domain"
)

// ServiceAccount is a parsed service-account key.
type ServiceAccount struct {
	Type         string `json:"type"`
	ProjectID    string `json:"project_id"`
	PrivateKeyID string `json:"private_key_id"`
	PrivateKey   string `json:"private_key"`
	ClientEmail  string `json:"client_email"`
	ClientID     string `json:"client_id"`
	AuthURI      string `json:"auth_uri"`
	TokenURI     string `json:"token_uri"`
}

// Load reads and parses a service-account key file.
func Load(path string) (*ServiceAccount, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read credentials file: %w", err)
	}
	return Parse(raw)
}

// Parse parses a key blob and validates the fields the warehouse
// connection depends on.
func Parse(raw []byte) (*ServiceAccount, error) {
	var sa ServiceAccount
	if err := json.Unmarshal(raw, &sa); err != nil {
		return nil, fmt.Errorf("parse credentials: %w", err)
	}
	if sa.Type != "service_account" {
		return nil, fmt.Errorf("credentials: unexpected key type %q", sa.Type)
	}

	required := []struct {
		name  string
		value string
	}{
		{"project_id", sa.ProjectID},
		{"private_key", sa.PrivateKey},
		{"client_email", sa.ClientEmail},
	}
	for _, f := range required {
		if strings.TrimSpace(f.value) == "" {
			return nil, fmt.Errorf("credentials: missing %s", f.name)
		}
	}
	return &sa, nil
}

// Resolve applies the credential resolution order: explicit key file,
// then inline blob. Returns nil, nil when neither is configured, in
// which case the caller decides whether ambient settings suffice.
func Resolve(cfg domain.CredentialsConfig) (*ServiceAccount, error) {
	switch {
	case cfg.File != "":
		return Load(cfg.File)
	case strings.TrimSpace(cfg.JSON) != "":
		return Parse([]byte(cfg.JSON))
	}
	return nil, nil
}
