package common

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteFileAtomicReplacesContent(t *testing.T) {
	dir := t.TempDir()
	target := filepath.Join(dir, "project.pbxproj")
	require.NoError(t, os.WriteFile(target, []byte("old"), 0o600))

	require.NoError(t, WriteFileAtomic(target, []byte("new")))

	cont, err := os.ReadFile(target)
	require.NoError(t, err)
	assert.Equal(t, "new", string(cont))
	info, err := os.Stat(target)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1, "no staging files may be left behind")
}

func TestWriteFileAtomicMissingDirectory(t *testing.T) {
	target := filepath.Join(t.TempDir(), "missing", "file.json")
	assert.Error(t, WriteFileAtomic(target, []byte("{}")))
	assert.NoFileExists(t, target)
}

func TestCopyFileCreatesParents(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "google-services.json")
	require.NoError(t, os.WriteFile(src, []byte(`{"a":1}`), 0o600))
	dst := filepath.Join(dir, "android", "app", "google-services.json")

	require.NoError(t, CopyFile(src, dst))
	require.NoError(t, CopyFile(src, dst))

	cont, err := os.ReadFile(dst)
	require.NoError(t, err)
	assert.Equal(t, `{"a":1}`, string(cont))
}

func TestCopyFileMissingSource(t *testing.T) {
	dir := t.TempDir()
	dst := filepath.Join(dir, "out.json")
	err := CopyFile(filepath.Join(dir, "nope.json"), dst)
	require.Error(t, err)
	assert.ErrorIs(t, err, os.ErrNotExist)
	assert.NoFileExists(t, dst)
}

func TestJSONRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "build.json")
	require.NoError(t, WriteJSON(path, map[string]interface{}{"appId": "42"}))
	out := map[string]interface{}{}
	require.NoError(t, ReadJSON(path, &out))
	assert.Equal(t, "42", out["appId"])
}

func TestLookupEnvBool(t *testing.T) {
	table := []struct {
		value string
		val   bool
		ok    bool
	}{
		{"1", true, true},
		{"Yes", true, true},
		{"false", false, true},
		{"N", false, true},
		{"maybe", false, false},
	}
	for _, tt := range table {
		t.Setenv("FIREBASE_PREBUILD_TEST_BOOL", tt.value)
		val, ok := LookupEnvBool("FIREBASE_PREBUILD_TEST_BOOL")
		assert.Equal(t, tt.val, val, tt.value)
		assert.Equal(t, tt.ok, ok, tt.value)
	}
}

func TestLookupEnvDuration(t *testing.T) {
	t.Setenv("FIREBASE_PREBUILD_TEST_DURATION", "90")
	d, ok := LookupEnvDuration("FIREBASE_PREBUILD_TEST_DURATION")
	assert.True(t, ok)
	assert.Equal(t, "1m30s", d.String())

	t.Setenv("FIREBASE_PREBUILD_TEST_DURATION", "2m")
	d, ok = LookupEnvDuration("FIREBASE_PREBUILD_TEST_DURATION")
	assert.True(t, ok)
	assert.Equal(t, "2m0s", d.String())
}

func TestPlainTextFormatter(t *testing.T) {
	buf := &bytes.Buffer{}
	logger := NewLogger(buf, false)
	logger.WithField("platform", "ios").Warn("More than one Xcode project found")
	logger.Debug("hidden")
	assert.Contains(t, buf.String(), "WARNING! ios: More than one Xcode project found\n")
	assert.NotContains(t, buf.String(), "hidden")

	buf.Reset()
	logger = NewLogger(buf, true)
	logger.Debug("visible")
	assert.Contains(t, buf.String(), "visible")
	assert.Equal(t, logrus.DebugLevel, logger.GetLevel())
}
