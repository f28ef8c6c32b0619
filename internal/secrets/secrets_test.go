// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package secrets

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/pubmed-harvest/pkg/types"
)

const validKey = "0123456789abcdef0123456789abcdef0123"

func TestLoad(t *testing.T) {
	tests := []struct {
		name  string
		files map[string]string
		want  Credentials
	}{
		{
			name:  "reads both credentials and trims whitespace",
			files: map[string]string{FileAPIKey: "  " + validKey + "  \n", FileEmail: "user@example.com\n"},
			want:  Credentials{APIKey: validKey, Email: "user@example.com"},
		},
		{
			name:  "email only",
			files: map[string]string{FileEmail: "user@example.com"},
			want:  Credentials{Email: "user@example.com"},
		},
		{
			name:  "whitespace-only file is empty",
			files: map[string]string{FileAPIKey: "   \n\t  "},
			want:  Credentials{},
		},
		{
			name:  "unrelated files are ignored",
			files: map[string]string{".gitkeep": "", "openai-key": "sk-123", FileAPIKey: validKey},
			want:  Credentials{APIKey: validKey},
		},
		{
			name:  "malformed key is kept",
			files: map[string]string{FileAPIKey: "not-a-key"},
			want:  Credentials{APIKey: "not-a-key"},
		},
		{
			name: "empty directory",
			want: Credentials{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			for name, content := range tt.files {
				writeFile(t, dir, name, content)
			}
			got, err := Load(dir)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestLoadMissingDirectory(t *testing.T) {
	got, err := Load(filepath.Join(t.TempDir(), "does-not-exist"))
	require.NoError(t, err)
	assert.Equal(t, Credentials{}, got)
}

func TestLoadUnreadableCredential(t *testing.T) {
	dir := t.TempDir()
	// A directory in place of the key file cannot be read as one.
	require.NoError(t, os.Mkdir(filepath.Join(dir, FileAPIKey), 0o755))

	_, err := Load(dir)
	assert.ErrorContains(t, err, FileAPIKey)
}

func TestNames(t *testing.T) {
	assert.Empty(t, Credentials{}.Names())
	assert.Equal(t, []string{FileEmail}, Credentials{Email: "a@b.org"}.Names())
	assert.Equal(t, []string{FileAPIKey, FileEmail}, Credentials{APIKey: validKey, Email: "a@b.org"}.Names())
}

func TestApply(t *testing.T) {
	c := Credentials{APIKey: "from-file", Email: "file@example.com"}

	t.Run("fills empty fields", func(t *testing.T) {
		var cfg types.EntrezConfig
		c.Apply(&cfg)
		assert.Equal(t, "from-file", cfg.APIKey)
		assert.Equal(t, "file@example.com", cfg.Email)
	})

	t.Run("explicit config wins", func(t *testing.T) {
		cfg := types.EntrezConfig{APIKey: "flag-key"}
		c.Apply(&cfg)
		assert.Equal(t, "flag-key", cfg.APIKey)
		assert.Equal(t, "file@example.com", cfg.Email)
	})

	t.Run("zero credentials leave config untouched", func(t *testing.T) {
		var cfg types.EntrezConfig
		Credentials{}.Apply(&cfg)
		assert.Empty(t, cfg.APIKey)
		assert.Empty(t, cfg.Email)
	})
}

func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
}
