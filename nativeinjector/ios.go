package nativeinjector

import (
	"errors"
	"fmt"
	"path/filepath"
	"sort"

	"github.com/sirupsen/logrus"

	"github.com/shoutem/firebase-prebuild/common"
	"github.com/shoutem/firebase-prebuild/fcmfiles"
)

var ErrNoXcodeProject = errors.New("xcode project file could not be found")

// IosInjector registers GoogleService-Info.plist as a resource of every Xcode project
// found in the ios directory.
type IosInjector struct {
	ProjectDir string
	Sources    ConfigSources
	Logger     logrus.FieldLogger
}

func (i *IosInjector) logger() logrus.FieldLogger {
	if i.Logger == nil {
		i.Logger = common.DiscardLogger()
	}
	return i.Logger.WithField("platform", string(fcmfiles.IOS))
}

// XcodeProjects returns every ios/*.xcodeproj/project.pbxproj of the project, sorted.
func (i *IosInjector) XcodeProjects() ([]string, error) {
	matches, err := filepath.Glob(filepath.Join(i.ProjectDir, "ios", "*.xcodeproj", "project.pbxproj"))
	if err != nil {
		return nil, err
	}
	sort.Strings(matches)
	return matches, nil
}

// Inject fails with ErrNoXcodeProject when there is nothing to inject into. A broken
// project does not stop the others from being updated, all failures are returned together.
func (i *IosInjector) Inject(useDownloaded bool) error {
	logger := i.logger()
	configFilePath := i.Sources.Resolve(useDownloaded, fcmfiles.IOSConfigFile)
	if info, err := ReadGoogleServiceInfo(configFilePath); err == nil {
		logger.Infof("Using firebase project %q for bundle %q", info.ProjectID, info.BundleID)
	} else {
		logger.Debugf("Could not read %s: %v", configFilePath, err)
	}

	xcodeProjects, err := i.XcodeProjects()
	if err != nil {
		return err
	}
	if len(xcodeProjects) == 0 {
		logger.Error("Are you sure you are in a React Native project directory? Xcode project file could not be found.")
		return fmt.Errorf("%w in %s", ErrNoXcodeProject, filepath.Join(i.ProjectDir, "ios"))
	}
	if len(xcodeProjects) > 1 {
		logger.Warnf("More than one Xcode project found. The %s file will be added to each project", configFilePath)
	}

	var errs []error
	for _, xcodeprojPath := range xcodeProjects {
		if err := i.addToProject(configFilePath, xcodeprojPath); err != nil {
			logger.Errorf("Failed to add %s to %s: %v", configFilePath, xcodeprojPath, err)
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (i *IosInjector) addToProject(configFilePath, xcodeprojPath string) error {
	logger := i.logger()
	xcodeProject, err := OpenXcodeProject(xcodeprojPath)
	if err != nil {
		return err
	}
	targetID, err := xcodeProject.FirstTarget()
	if err != nil {
		return err
	}
	changed, err := xcodeProject.AddResourceFile(configFilePath, targetID)
	if err != nil {
		return fmt.Errorf("%s: %w", xcodeprojPath, err)
	}
	if !changed {
		logger.Infof("%s is already a resource of %s", configFilePath, xcodeprojPath)
		return nil
	}
	if err := xcodeProject.Save(); err != nil {
		return fmt.Errorf("failed to write %s: %w", xcodeprojPath, err)
	}
	logger.Infof("Added %s to %s resources", configFilePath, xcodeprojPath)
	return nil
}
