package prebuildconfig

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/shoutem/firebase-prebuild/common"
)

const (
	DefaultSettingsFile           = "firebase-prebuild.yaml"
	DefaultExtensionName          = "shoutem.firebase"
	DefaultDevelopmentPackageName = "com.shoutemapp"
	DefaultDownloadTimeout        = 100 * time.Second

	envPrefix = "FIREBASE_PREBUILD_"
)

// PostInjectCommand is an external program run after both native projects are finalized.
type PostInjectCommand struct {
	Name    string   `yaml:"name"`
	Command []string `yaml:"command"`
}

// Settings locate the native project and the extension files the hook works with.
type Settings struct {
	ProjectDir             string              `yaml:"projectDir"`
	ExtensionDir           string              `yaml:"extensionDir"`
	DownloadDir            string              `yaml:"downloadDir"`
	TemplateDir            string              `yaml:"templateDir"`
	DownloadTimeout        time.Duration       `yaml:"downloadTimeout"`
	DevelopmentPackageName string              `yaml:"developmentPackageName"`
	PostInject             []PostInjectCommand `yaml:"postInject"`
	Trace                  bool                `yaml:"trace"`
}

// Load reads the settings file at path. A missing file yields empty settings, the
// defaults are filled in by ApplyDefaults.
func Load(path string) (*Settings, error) {
	settings := &Settings{}
	//nolint:gosec // Path is provided on the command line
	cont, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return settings, nil
		}
		return nil, err
	}
	if err := yaml.Unmarshal(cont, settings); err != nil {
		return nil, fmt.Errorf("%s is corrupted: %w", path, err)
	}
	return settings, nil
}

// LoadEnvFile loads a godotenv file without overriding variables that are already set.
func LoadEnvFile(path string) error {
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		return nil
	}
	return godotenv.Load(path)
}

func (s *Settings) ReadFromEnvironment() {
	if v, ok := os.LookupEnv(envPrefix + "PROJECT_DIR"); ok {
		s.ProjectDir = v
	}
	if v, ok := os.LookupEnv(envPrefix + "EXTENSION_DIR"); ok {
		s.ExtensionDir = v
	}
	if v, ok := os.LookupEnv(envPrefix + "DOWNLOAD_DIR"); ok {
		s.DownloadDir = v
	}
	if v, ok := os.LookupEnv(envPrefix + "TEMPLATE_DIR"); ok {
		s.TemplateDir = v
	}
	if v, ok := os.LookupEnv(envPrefix + "DEVELOPMENT_PACKAGE_NAME"); ok {
		s.DevelopmentPackageName = v
	}
	if v, ok := common.LookupEnvDuration(envPrefix + "DOWNLOAD_TIMEOUT"); ok {
		s.DownloadTimeout = v
	}
	if !s.Trace {
		if v, ok := common.LookupEnvBool(envPrefix + "TRACE"); ok {
			s.Trace = v
		}
	}
}

func (s *Settings) ApplyDefaults() {
	if s.ProjectDir == "" {
		s.ProjectDir = "."
	}
	if s.ExtensionDir == "" {
		s.ExtensionDir = filepath.Join(s.ProjectDir, "node_modules", DefaultExtensionName)
	}
	if s.DownloadDir == "" {
		s.DownloadDir = s.ExtensionDir
	}
	if s.TemplateDir == "" {
		s.TemplateDir = filepath.Join(s.ExtensionDir, "build", "templates")
	}
	if s.DownloadTimeout <= 0 {
		s.DownloadTimeout = DefaultDownloadTimeout
	}
	if s.DevelopmentPackageName == "" {
		s.DevelopmentPackageName = DefaultDevelopmentPackageName
	}
	for i := range s.PostInject {
		if s.PostInject[i].Name == "" && len(s.PostInject[i].Command) > 0 {
			s.PostInject[i].Name = filepath.Base(s.PostInject[i].Command[0])
		}
	}
}

func (s *Settings) Validate() error {
	for _, c := range s.PostInject {
		if len(c.Command) == 0 {
			return fmt.Errorf("postInject step %q has no command", c.Name)
		}
	}
	return nil
}
