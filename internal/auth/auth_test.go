package auth

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func noEnv(string) string { return "" }

func TestSetGetDelete(t *testing.T) {
	s := Store{Dir: filepath.Join(t.TempDir(), ".todo"), Getenv: noEnv}

	ti, err := s.Get()
	require.NoError(t, err)
	assert.Nil(t, ti, "not logged in yet")

	exp := time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC)
	require.NoError(t, s.Set("Bearer abc123", &exp))

	info, err := os.Stat(filepath.Join(s.Dir, credFileName))
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())

	ti, err = s.Get()
	require.NoError(t, err)
	require.NotNil(t, ti)
	assert.Equal(t, "abc123", ti.Token)
	assert.Equal(t, SourceFile, ti.Source)
	require.NotNil(t, ti.ExpiresAt)
	assert.True(t, exp.Equal(*ti.ExpiresAt))

	require.NoError(t, s.Delete())
	require.NoError(t, s.Delete(), "deleting twice is fine")
	ti, err = s.Get()
	require.NoError(t, err)
	assert.Nil(t, ti)
}

func TestEnvOverridesFile(t *testing.T) {
	s := Store{Dir: t.TempDir(), Getenv: func(k string) string {
		if k == EnvToken {
			return " bearer from-env "
		}
		return ""
	}}
	require.NoError(t, s.Set("from-file", nil))

	ti, err := s.Get()
	require.NoError(t, err)
	assert.Equal(t, "from-env", ti.Token)
	assert.Equal(t, SourceEnv, ti.Source)
}

func TestSetRejectsEmpty(t *testing.T) {
	s := Store{Dir: t.TempDir(), Getenv: noEnv}
	assert.ErrorIs(t, s.Set("   ", nil), ErrEmptyToken)
}

func TestGetCorruptFile(t *testing.T) {
	s := Store{Dir: t.TempDir(), Getenv: noEnv}
	require.NoError(t, os.WriteFile(filepath.Join(s.Dir, credFileName), []byte("{"), 0o600))
	_, err := s.Get()
	assert.Error(t, err)
}

func TestExpired(t *testing.T) {
	now := time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)
	past, future := now.Add(-time.Hour), now.Add(time.Hour)

	assert.False(t, TokenInfo{}.Expired(now))
	assert.True(t, TokenInfo{ExpiresAt: &past}.Expired(now))
	assert.False(t, TokenInfo{ExpiresAt: &future}.Expired(now))
}
