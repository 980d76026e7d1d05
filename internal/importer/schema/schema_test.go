package schema

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTempSchema(t *testing.T, content string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "schema.json")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestValidateContext_AcceptsMatchingContext(t *testing.T) {
	path := writeTempSchema(t, `{
		"type": "object",
		"required": ["region"],
		"properties": {"region": {"type": "string"}}
	}`)

	err := ValidateContext(path, map[string]string{"region": "eu"})
	assert.NoError(t, err)
}

func TestValidateContext_RejectsMissingRequiredKey(t *testing.T) {
	path := writeTempSchema(t, `{
		"type": "object",
		"required": ["region"],
		"properties": {"region": {"type": "string"}}
	}`)

	err := ValidateContext(path, map[string]string{"site": "eu"})
	assert.Error(t, err)
}

func TestValidateContext_RejectsUnreadableSchema(t *testing.T) {
	err := ValidateContext(filepath.Join(t.TempDir(), "missing.json"), map[string]string{})
	assert.Error(t, err)
}
