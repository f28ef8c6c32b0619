// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package secrets reads the NCBI credentials kept outside the config file.
//
// The secrets directory holds one file per credential, ncbi-api-key and
// ncbi-email, each containing only the value. Other files are ignored.
package secrets

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/pdiddy/pubmed-harvest/pkg/types"
)

// Credential file names.
const (
	FileAPIKey = "ncbi-api-key"
	FileEmail  = "ncbi-email"
)

// NCBI issues API keys as 36 lowercase hex characters.
var apiKeyRE = regexp.MustCompile(`^[0-9a-f]{36}$`)

// Credentials identify the caller to the E-utilities.
type Credentials struct {
	APIKey string
	Email  string
}

// Names lists the credential files that supplied a value, for logging
// without exposing the values.
func (c Credentials) Names() []string {
	var names []string
	if c.APIKey != "" {
		names = append(names, FileAPIKey)
	}
	if c.Email != "" {
		names = append(names, FileEmail)
	}
	return names
}

// Apply fills the API key and contact email of cfg when cfg does not
// already carry them. Explicit configuration wins over credential files.
func (c Credentials) Apply(cfg *types.EntrezConfig) {
	if cfg.APIKey == "" {
		cfg.APIKey = c.APIKey
	}
	if cfg.Email == "" {
		cfg.Email = c.Email
	}
}

// Load reads the credential files in dir. A missing directory or file
// leaves that credential empty. A file that exists but cannot be read is
// an error. Values that do not look like an NCBI key or an e-mail address
// are kept but logged, since the service will reject them per request.
func Load(dir string) (Credentials, error) {
	var c Credentials
	var err error
	if c.APIKey, err = readCredential(dir, FileAPIKey); err != nil {
		return Credentials{}, err
	}
	if c.Email, err = readCredential(dir, FileEmail); err != nil {
		return Credentials{}, err
	}

	if c.APIKey != "" && !apiKeyRE.MatchString(c.APIKey) {
		log.Warn().Str("file", FileAPIKey).Int("length", len(c.APIKey)).Msg("API key is not 36 hex characters")
	}
	if c.Email != "" && !strings.Contains(c.Email, "@") {
		log.Warn().Str("file", FileEmail).Msg("contact email has no @")
	}
	return c, nil
}

func readCredential(dir, name string) (string, error) {
	data, err := os.ReadFile(filepath.Join(dir, name))
	if errors.Is(err, fs.ErrNotExist) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("reading credential %s: %w", name, err)
	}
	return strings.TrimSpace(string(data)), nil
}
