package nativeinjector

import (
	"path/filepath"
)

// ConfigSources are the two places a platform config file can come from.
type ConfigSources struct {
	// DownloadDir holds the files fetched from the legacy api.
	DownloadDir string
	// TemplateDir holds the bundled, application independent fallbacks.
	TemplateDir string
}

// Resolve returns the downloaded file when useDownloaded is set, the template otherwise.
func (s ConfigSources) Resolve(useDownloaded bool, filename string) string {
	if useDownloaded {
		return filepath.Join(s.DownloadDir, filename)
	}
	return filepath.Join(s.TemplateDir, filename)
}
