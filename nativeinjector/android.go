package nativeinjector

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/shoutem/firebase-prebuild/appconfiguration"
	"github.com/shoutem/firebase-prebuild/common"
	"github.com/shoutem/firebase-prebuild/fcmfiles"
)

const DefaultDevelopmentPackageName = "com.shoutemapp"

// AndroidInjector places google-services.json into the android app module.
type AndroidInjector struct {
	ProjectDir             string
	Sources                ConfigSources
	DevelopmentPackageName string
	Logger                 logrus.FieldLogger
}

func (a *AndroidInjector) logger() logrus.FieldLogger {
	if a.Logger == nil {
		a.Logger = common.DiscardLogger()
	}
	return a.Logger.WithField("platform", string(fcmfiles.Android))
}

func (a *AndroidInjector) relativeDestination() string {
	return filepath.Join("android", "app", fcmfiles.AndroidConfigFile)
}

// Destination is the location the android gradle plugin reads the config from.
func (a *AndroidInjector) Destination() string {
	return filepath.Join(a.ProjectDir, a.relativeDestination())
}

// Inject copies the resolved config file into the android project and, for development
// builds, points it at the development package. A missing source file is an error,
// every template is shipped with the extension.
func (a *AndroidInjector) Inject(useDownloaded bool, build appconfiguration.BuildConfiguration) error {
	logger := a.logger()
	src := a.Sources.Resolve(useDownloaded, fcmfiles.AndroidConfigFile)
	dst := a.Destination()
	if err := common.CopyFile(src, dst); err != nil {
		return fmt.Errorf("failed to copy %s into the android project: %w", src, err)
	}
	logger.Infof("Copied %s to %s", src, dst)
	if services, err := ReadGoogleServices(dst); err == nil {
		logger.Infof("Using firebase project %q for package %q", services.ProjectInfo.ProjectID, services.PackageName())
	}

	// only update android package on non-production builds
	if !build.IsReleaseGrade() {
		a.PatchPackageName()
	}
	return nil
}

func (a *AndroidInjector) packageName() string {
	if a.DevelopmentPackageName == "" {
		return DefaultDevelopmentPackageName
	}
	return a.DevelopmentPackageName
}

// PatchPackageName rewrites client[0].client_info.android_client_info.package_name of the
// copied file. It never fails, problems are logged and leave the file as it is.
func (a *AndroidInjector) PatchPackageName() bool {
	logger := a.logger()
	relativePath := a.relativeDestination()
	path := a.Destination()
	pkgName := a.packageName()

	//nolint:gosec // Path is derived from the project directory
	cont, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			logger.Infof("%s does not exist, moving on...", relativePath)
		} else {
			logger.Warnf("Failed to read %s: %v", relativePath, err)
		}
		return false
	}

	var data map[string]interface{}
	dec := json.NewDecoder(bytes.NewReader(cont))
	dec.UseNumber()
	if err := dec.Decode(&data); err != nil || data == nil {
		logger.Warnf("%s is invalid or empty - please check your shoutem.firebase configuration!", relativePath)
		return false
	}
	clientInfo, ok := androidClientInfo(data)
	if !ok {
		logger.Warnf("%s has no client[0].client_info.android_client_info - please check your shoutem.firebase configuration!", relativePath)
		return false
	}

	start := time.Now()
	clientInfo["package_name"] = pkgName
	if err := common.WriteJSON(path, data); err != nil {
		logger.Warnf("Failed to write %s: %v", relativePath, err)
		return false
	}
	common.Elapsed(logger, fmt.Sprintf("Updated %s package_name to %s", relativePath, pkgName), start)
	return true
}

func androidClientInfo(data map[string]interface{}) (map[string]interface{}, bool) {
	clients, ok := data["client"].([]interface{})
	if !ok || len(clients) == 0 {
		return nil, false
	}
	client, ok := clients[0].(map[string]interface{})
	if !ok {
		return nil, false
	}
	info, ok := client["client_info"].(map[string]interface{})
	if !ok {
		return nil, false
	}
	androidInfo, ok := info["android_client_info"].(map[string]interface{})
	return androidInfo, ok
}
