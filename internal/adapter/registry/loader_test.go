package registry

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/couchcryptid/waterbody-recon/internal/domain"
)

func writeRegistry(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "waterbodies.json")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoad(t *testing.T) {
	path := writeRegistry(t, `[
		{"id": "md_patapsco", "name": "Patapsco River", "state_code": "24", "status": "monitored", "alert_level": "low"},
		{"id": "va_james", "name": "James River", "state_code": "VA", "status": "assessed", "alert_level": "none"}
	]`)

	entries, err := Load(path)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "MD", entries[0].State())
	assert.Equal(t, domain.AlertLow, entries[0].AlertLevel)
	assert.Equal(t, "VA", entries[1].State())
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.json"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "read registry")
}

func TestLoad_MalformedJSON(t *testing.T) {
	path := writeRegistry(t, `[{"id": "x"`)
	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parse registry")
}

func TestLoad_DuplicateID(t *testing.T) {
	path := writeRegistry(t, `[
		{"id": "md_x", "name": "X River", "state_code": "MD"},
		{"id": "md_x", "name": "X Creek", "state_code": "MD"}
	]`)
	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "duplicate id")
}

func TestLoad_MissingName(t *testing.T) {
	path := writeRegistry(t, `[{"id": "md_x", "state_code": "MD"}]`)
	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "missing name")
}

func TestLoad_UnresolvableState(t *testing.T) {
	path := writeRegistry(t, `[{"id": "zz_x", "name": "X River", "state_code": "99"}]`)
	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unresolvable state code")
}
