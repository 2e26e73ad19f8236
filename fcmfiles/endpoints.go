package fcmfiles

import (
	"errors"
	"fmt"
	"net/url"
	"path"
	"strings"
)

type Platform string

const (
	Android Platform = "android"
	IOS     Platform = "ios"
)

const (
	AndroidConfigFile = "google-services.json"
	IOSConfigFile     = "GoogleService-Info.plist"

	androidResource = "googleservices.json"
	iosResource     = "googleservices.plist"
	resourcePath    = "firebase/objects/FirebaseProject"
)

var ErrInvalidEndpoint = errors.New("invalid legacy api endpoint")

// Descriptor names one remote config file and the local file it is stored as.
type Descriptor struct {
	Platform Platform
	Filename string
	Resource string
	Endpoint *url.URL
}

// DescriptorSet holds exactly one descriptor per platform.
type DescriptorSet struct {
	Android Descriptor
	IOS     Descriptor
}

// All returns the descriptors in a fixed order, Android first.
func (set DescriptorSet) All() []Descriptor {
	return []Descriptor{set.Android, set.IOS}
}

// Get returns the descriptor of platform.
func (set DescriptorSet) Get(platform Platform) (Descriptor, bool) {
	switch platform {
	case Android:
		return set.Android, true
	case IOS:
		return set.IOS, true
	}
	return Descriptor{}, false
}

// NormalizeBaseURL forces the plain http scheme, the legacy api does not serve https.
func NormalizeBaseURL(legacyAPI string) (*url.URL, error) {
	raw := strings.TrimSpace(legacyAPI)
	if raw == "" {
		return nil, fmt.Errorf("%w: empty url", ErrInvalidEndpoint)
	}
	if !strings.Contains(raw, "://") {
		raw = "http://" + strings.TrimPrefix(raw, "//")
	}
	base, err := url.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidEndpoint, err)
	}
	if base.Hostname() == "" {
		return nil, fmt.Errorf("%w: %q has no host", ErrInvalidEndpoint, legacyAPI)
	}
	base.Scheme = "http"
	base.RawQuery = ""
	base.Fragment = ""
	base.RawPath = ""
	return base, nil
}

func endpointForResource(base *url.URL, appID, resource string) *url.URL {
	endpoint := *base
	endpoint.Path = path.Join("/", base.Path, appID, resourcePath, resource)
	return &endpoint
}

// ResolveDescriptors builds the download descriptors of both platforms for appID.
func ResolveDescriptors(legacyAPI string, appID string) (DescriptorSet, error) {
	base, err := NormalizeBaseURL(legacyAPI)
	if err != nil {
		return DescriptorSet{}, err
	}
	appID = strings.TrimSpace(appID)
	if appID == "" || strings.ContainsAny(appID, "/?#") {
		return DescriptorSet{}, fmt.Errorf("%w: invalid app id %q", ErrInvalidEndpoint, appID)
	}
	return DescriptorSet{
		Android: Descriptor{
			Platform: Android,
			Filename: AndroidConfigFile,
			Resource: androidResource,
			Endpoint: endpointForResource(base, appID, androidResource),
		},
		IOS: Descriptor{
			Platform: IOS,
			Filename: IOSConfigFile,
			Resource: iosResource,
			Endpoint: endpointForResource(base, appID, iosResource),
		},
	}, nil
}
