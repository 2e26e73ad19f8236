package prebuildconfig

import (
	"fmt"
	"os"
	"strings"

	"github.com/shoutem/firebase-prebuild/appconfiguration"
	"github.com/shoutem/firebase-prebuild/common"
)

type Survey interface {
	GetInput(prompt string, def string) string
	GetConfirm(prompt string, def bool) bool
}

// ConfigureBuild collects the build configuration consumed by the prebuild command.
// Production and Release are nil unless given, an explicit false overrides a stored true.
type ConfigureBuild struct {
	AppID      string
	Production *bool
	Release    *bool
	Unattended bool
}

func (config *ConfigureBuild) ReadFromEnvironment() {
	if len(config.AppID) == 0 {
		if v, ok := os.LookupEnv(envPrefix + "APP_ID"); ok {
			config.AppID = v
		}
	}
	if config.Production == nil {
		if v, ok := common.LookupEnvBool(envPrefix + "PRODUCTION"); ok {
			config.Production = &v
		}
	}
	if config.Release == nil {
		if v, ok := common.LookupEnvBool(envPrefix + "RELEASE"); ok {
			config.Release = &v
		}
	}
	if !config.Unattended {
		if v, ok := common.LookupEnvBool(envPrefix + "UNATTENDED"); ok {
			config.Unattended = v
		}
	}
}

// Configure merges the collected values into existing, asking for anything missing
// unless running unattended. existing may be nil.
func (config *ConfigureBuild) Configure(existing *appconfiguration.BuildConfiguration, survey Survey) (*appconfiguration.BuildConfiguration, error) {
	build := &appconfiguration.BuildConfiguration{}
	if existing != nil {
		*build = *existing
	}
	if len(config.AppID) > 0 {
		build.AppID = appconfiguration.AppID(config.AppID)
	} else if !config.Unattended {
		build.AppID = appconfiguration.AppID(survey.GetInput("Please enter the id of your app:", build.AppID.String()))
	}
	build.AppID = appconfiguration.AppID(strings.TrimSpace(build.AppID.String()))
	if len(build.AppID) == 0 {
		return nil, fmt.Errorf("no app id provided")
	}
	if strings.ContainsAny(build.AppID.String(), "/?#") {
		return nil, fmt.Errorf("invalid app id %q", build.AppID)
	}

	if config.Production != nil {
		build.Production = *config.Production
	} else if !config.Unattended {
		build.Production = survey.GetConfirm("Is this a production build?", build.Production)
	}
	if config.Release != nil {
		build.Release = *config.Release
	} else if !config.Unattended {
		build.Release = survey.GetConfirm("Is this a release build?", build.Release)
	}
	return build, nil
}
