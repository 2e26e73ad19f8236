package appconfiguration

import (
	"errors"
	"fmt"
	"strings"

	"github.com/shoutem/firebase-prebuild/common"
)

const (
	CoreExtensionsType   = "shoutem.core.extensions"
	ApplicationExtension = "shoutem.application"
	LegacyAPIEndpointKey = "legacyApiEndpoint"
)

var ErrSettingNotSet = errors.New("setting not set")

type ExtensionAttributes struct {
	Settings map[string]interface{} `json:"settings"`
}

type ExtensionRecord struct {
	Type       string              `json:"type"`
	ID         string              `json:"id"`
	Attributes ExtensionAttributes `json:"attributes"`
}

// ApplicationConfiguration is the subset of the application document the hook reads.
type ApplicationConfiguration struct {
	Included []ExtensionRecord `json:"included"`
}

func LoadApplicationConfiguration(path string) (*ApplicationConfiguration, error) {
	conf := &ApplicationConfiguration{}
	if err := common.ReadJSON(path, conf); err != nil {
		return nil, fmt.Errorf("failed to read application configuration %s: %w", path, err)
	}
	return conf, nil
}

func (r *ExtensionRecord) isApplicationExtension() bool {
	return r.Type == CoreExtensionsType && r.ID == ApplicationExtension
}

// ApplicationExtension returns the core application extension record, if the document has one.
func (conf *ApplicationConfiguration) ApplicationExtension() (*ExtensionRecord, bool) {
	if conf == nil {
		return nil, false
	}
	for i := range conf.Included {
		if conf.Included[i].isApplicationExtension() {
			return &conf.Included[i], true
		}
	}
	return nil, false
}

// LegacyAPIEndpoint returns the legacyApiEndpoint setting of the application extension.
func (conf *ApplicationConfiguration) LegacyAPIEndpoint() (string, error) {
	notSet := fmt.Errorf("%s not set in %s settings: %w", LegacyAPIEndpointKey, ApplicationExtension, ErrSettingNotSet)
	ext, ok := conf.ApplicationExtension()
	if !ok {
		return "", notSet
	}
	v, ok := ext.Attributes.Settings[LegacyAPIEndpointKey].(string)
	if !ok || strings.TrimSpace(v) == "" {
		return "", notSet
	}
	return strings.TrimSpace(v), nil
}
