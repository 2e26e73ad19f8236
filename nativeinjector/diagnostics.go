package nativeinjector

import (
	"os"

	"howett.net/plist"

	"github.com/shoutem/firebase-prebuild/common"
)

// GoogleServiceInfo is the identifying part of GoogleService-Info.plist.
type GoogleServiceInfo struct {
	BundleID    string `plist:"BUNDLE_ID"`
	ProjectID   string `plist:"PROJECT_ID"`
	GoogleAppID string `plist:"GOOGLE_APP_ID"`
	GCMSenderID string `plist:"GCM_SENDER_ID"`
}

func ReadGoogleServiceInfo(path string) (*GoogleServiceInfo, error) {
	//nolint:gosec // Path is derived from the extension directory
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	info := &GoogleServiceInfo{}
	if err := plist.NewDecoder(f).Decode(info); err != nil {
		return nil, err
	}
	return info, nil
}

type AndroidClientInfo struct {
	PackageName string `json:"package_name"`
}

type GoogleServicesClient struct {
	ClientInfo struct {
		MobileSDKAppID    string            `json:"mobilesdk_app_id"`
		AndroidClientInfo AndroidClientInfo `json:"android_client_info"`
	} `json:"client_info"`
}

// GoogleServices is the identifying part of google-services.json.
type GoogleServices struct {
	ProjectInfo struct {
		ProjectID     string `json:"project_id"`
		ProjectNumber string `json:"project_number"`
	} `json:"project_info"`
	Client []GoogleServicesClient `json:"client"`
}

func ReadGoogleServices(path string) (*GoogleServices, error) {
	services := &GoogleServices{}
	if err := common.ReadJSON(path, services); err != nil {
		return nil, err
	}
	return services, nil
}

// PackageName returns the package of the first client, the one the build uses.
func (s *GoogleServices) PackageName() string {
	if len(s.Client) == 0 {
		return ""
	}
	return s.Client[0].ClientInfo.AndroidClientInfo.PackageName
}
