package appconfiguration

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/shoutem/firebase-prebuild/common"
)

// AppID accepts both `"42"` and `42` in JSON documents, build harnesses emit either.
type AppID string

func (id *AppID) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*id = AppID(s)
		return nil
	}
	var n json.Number
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	if err := dec.Decode(&n); err != nil {
		return fmt.Errorf("appId must be a string or a number: %w", err)
	}
	*id = AppID(n.String())
	return nil
}

func (id AppID) String() string {
	return string(id)
}

type BuildConfiguration struct {
	AppID      AppID `json:"appId" yaml:"appId"`
	Production bool  `json:"production" yaml:"production"`
	Release    bool  `json:"release" yaml:"release"`
}

// IsReleaseGrade reports whether the build is a production or release build.
func (b BuildConfiguration) IsReleaseGrade() bool {
	return b.Production || b.Release
}

// TrustDownloadedFile decides if a downloaded config file may replace the bundled template.
// Development builds always get the template, even when the download succeeded, so production
// push credentials never end up in a local build.
func TrustDownloadedFile(build BuildConfiguration, downloaded bool) bool {
	return build.IsReleaseGrade() && downloaded
}

// LoadBuildConfiguration reads a json or yaml build configuration, depending on the extension.
func LoadBuildConfiguration(path string) (*BuildConfiguration, error) {
	conf := &BuildConfiguration{}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		//nolint:gosec // Path is provided by the build harness
		cont, err := os.ReadFile(path)
		if err != nil {
			return nil, err
		}
		if err := yaml.Unmarshal(cont, conf); err != nil {
			return nil, fmt.Errorf("failed to parse build configuration %s: %w", path, err)
		}
	default:
		if err := common.ReadJSON(path, conf); err != nil {
			return nil, fmt.Errorf("failed to read build configuration %s: %w", path, err)
		}
	}
	return conf, nil
}

func (b *BuildConfiguration) Save(path string) error {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		cont, err := yaml.Marshal(b)
		if err != nil {
			return err
		}
		return common.WriteFileAtomic(path, cont)
	default:
		return common.WriteJSON(path, b)
	}
}
