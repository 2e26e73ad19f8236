package appconfiguration

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const applicationDocument = `{
  "data": {"type": "shoutem.core.applications", "id": "42"},
  "included": [
    {"type": "shoutem.core.extensions", "id": "shoutem.navigation", "attributes": {"settings": {}}},
    {"type": "shoutem.core.extensions", "id": "shoutem.application",
     "attributes": {"settings": {"legacyApiEndpoint": "https://api.example.com/"}}}
  ]
}`

func TestLegacyAPIEndpoint(t *testing.T) {
	conf := &ApplicationConfiguration{}
	require.NoError(t, json.Unmarshal([]byte(applicationDocument), conf))

	endpoint, err := conf.LegacyAPIEndpoint()
	require.NoError(t, err)
	assert.Equal(t, "https://api.example.com/", endpoint)
}

func TestLegacyAPIEndpointMissing(t *testing.T) {
	table := []struct {
		name     string
		document string
	}{
		{
			name:     "no included section",
			document: `{}`,
		},
		{
			name:     "no application extension",
			document: `{"included": [{"type": "shoutem.core.extensions", "id": "shoutem.firebase"}]}`,
		},
		{
			name:     "wrong type",
			document: `{"included": [{"type": "shoutem.core.shortcuts", "id": "shoutem.application", "attributes": {"settings": {"legacyApiEndpoint": "http://a/"}}}]}`,
		},
		{
			name:     "empty setting",
			document: `{"included": [{"type": "shoutem.core.extensions", "id": "shoutem.application", "attributes": {"settings": {"legacyApiEndpoint": ""}}}]}`,
		},
		{
			name:     "not a string",
			document: `{"included": [{"type": "shoutem.core.extensions", "id": "shoutem.application", "attributes": {"settings": {"legacyApiEndpoint": 1}}}]}`,
		},
	}
	for _, tt := range table {
		t.Run(tt.name, func(t *testing.T) {
			conf := &ApplicationConfiguration{}
			require.NoError(t, json.Unmarshal([]byte(tt.document), conf))
			_, err := conf.LegacyAPIEndpoint()
			require.ErrorIs(t, err, ErrSettingNotSet)
			assert.Contains(t, err.Error(), "legacyApiEndpoint not set in shoutem.application settings")
		})
	}
}

func TestNilApplicationConfiguration(t *testing.T) {
	var conf *ApplicationConfiguration
	_, err := conf.LegacyAPIEndpoint()
	assert.ErrorIs(t, err, ErrSettingNotSet)
}

func TestLoadApplicationConfiguration(t *testing.T) {
	path := filepath.Join(t.TempDir(), "app.json")
	require.NoError(t, os.WriteFile(path, []byte(applicationDocument), 0o600))
	conf, err := LoadApplicationConfiguration(path)
	require.NoError(t, err)
	ext, ok := conf.ApplicationExtension()
	require.True(t, ok)
	assert.Equal(t, "shoutem.application", ext.ID)

	_, err = LoadApplicationConfiguration(filepath.Join(t.TempDir(), "missing.json"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestAppIDUnmarshal(t *testing.T) {
	table := []struct {
		json     string
		expected AppID
	}{
		{`{"appId": "42"}`, "42"},
		{`{"appId": 42}`, "42"},
		{`{"appId": 12345678901234}`, "12345678901234"},
	}
	for _, tt := range table {
		conf := BuildConfiguration{}
		require.NoError(t, json.Unmarshal([]byte(tt.json), &conf))
		assert.Equal(t, tt.expected, conf.AppID)
	}
	conf := BuildConfiguration{}
	assert.Error(t, json.Unmarshal([]byte(`{"appId": {}}`), &conf))
}

func TestReleaseGradeGate(t *testing.T) {
	table := []struct {
		production, release, downloaded bool
		trusted                         bool
	}{
		{false, false, true, false},
		{false, false, false, false},
		{true, false, true, true},
		{false, true, true, true},
		{true, true, false, false},
	}
	for _, tt := range table {
		build := BuildConfiguration{Production: tt.production, Release: tt.release}
		assert.Equal(t, tt.production || tt.release, build.IsReleaseGrade())
		assert.Equal(t, tt.trusted, TrustDownloadedFile(build, tt.downloaded))
	}
}

func TestBuildConfigurationFiles(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"build.json", "build.yaml"} {
		path := filepath.Join(dir, name)
		in := &BuildConfiguration{AppID: "42", Release: true}
		require.NoError(t, in.Save(path))
		out, err := LoadBuildConfiguration(path)
		require.NoError(t, err, name)
		assert.Equal(t, in, out, name)
	}

	path := filepath.Join(dir, "broken.yml")
	require.NoError(t, os.WriteFile(path, []byte("appId: [\n"), 0o600))
	_, err := LoadBuildConfiguration(path)
	assert.Error(t, err)
}
