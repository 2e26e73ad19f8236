package fcmfiles

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type delayedFetcher struct {
	delays map[Platform]time.Duration
	fail   map[Platform]bool
}

func (f *delayedFetcher) Download(ctx context.Context, desc Descriptor, dest string) Outcome {
	time.Sleep(f.delays[desc.Platform])
	if f.fail[desc.Platform] {
		return fallback(desc, ErrEmptyResponse)
	}
	return downloaded(desc, dest)
}

func TestProvisionKeepsInputOrder(t *testing.T) {
	set, err := ResolveDescriptors("https://api.example.com/", "42")
	require.NoError(t, err)
	table := []struct {
		name   string
		delays map[Platform]time.Duration
	}{
		{"android finishes last", map[Platform]time.Duration{Android: 50 * time.Millisecond}},
		{"ios finishes last", map[Platform]time.Duration{IOS: 50 * time.Millisecond}},
		{"no delay", map[Platform]time.Duration{}},
	}
	for _, tt := range table {
		t.Run(tt.name, func(t *testing.T) {
			p := &Provisioner{
				Fetcher:     &delayedFetcher{delays: tt.delays, fail: map[Platform]bool{IOS: true}},
				DownloadDir: "/extension",
			}
			outcomes := p.Provision(context.Background(), set.All())
			require.Len(t, outcomes, 2)
			assert.Equal(t, Android, outcomes[0].Descriptor.Platform)
			assert.True(t, outcomes[0].Downloaded())
			assert.Equal(t, filepath.Join("/extension", AndroidConfigFile), outcomes[0].Path)
			assert.Equal(t, IOS, outcomes[1].Descriptor.Platform)
			assert.False(t, outcomes[1].Downloaded())
		})
	}
}

func TestProvisionLengthMatchesInput(t *testing.T) {
	p := &Provisioner{Fetcher: &delayedFetcher{}}
	assert.Empty(t, p.Provision(context.Background(), nil))

	set, err := ResolveDescriptors("https://api.example.com/", "42")
	require.NoError(t, err)
	descs := append(set.All(), set.Android)
	assert.Len(t, p.Provision(context.Background(), descs), 3)
}

func TestProvisionSetOverHTTP(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch filepath.Base(r.URL.Path) {
		case "googleservices.json":
			// the slow download must not hold back or break the other one
			time.Sleep(30 * time.Millisecond)
			_, _ = w.Write([]byte(`{"client":[]}`))
		case "googleservices.plist":
			w.WriteHeader(http.StatusOK)
		}
	}))
	defer server.Close()

	set, err := ResolveDescriptors(server.URL, "42")
	require.NoError(t, err)
	dir := t.TempDir()
	p := &Provisioner{
		Fetcher:     NewDownloader(time.Second, false, nil),
		DownloadDir: dir,
	}
	outcomes := p.ProvisionSet(context.Background(), set)

	require.Len(t, outcomes, 2)
	assert.True(t, outcomes.Downloaded(Android))
	assert.False(t, outcomes.Downloaded(IOS))
	assert.ErrorIs(t, outcomes[IOS].Reason, ErrEmptyResponse)
	assert.False(t, Outcomes{}.Downloaded(Android))

	cont, err := os.ReadFile(filepath.Join(dir, AndroidConfigFile))
	require.NoError(t, err)
	assert.Equal(t, `{"client":[]}`, string(cont))
	assert.NoFileExists(t, filepath.Join(dir, IOSConfigFile))
}

func TestProvisionSharesOneDownloader(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(filepath.Base(r.URL.Path)))
	}))
	defer server.Close()

	set, err := ResolveDescriptors(server.URL, "42")
	require.NoError(t, err)
	// zero value, the client and logger are resolved from both goroutines
	downloader := &Downloader{Timeout: time.Second}
	p := &Provisioner{Fetcher: downloader, DownloadDir: t.TempDir()}

	for i := 0; i < 5; i++ {
		outcomes := p.ProvisionSet(context.Background(), set)
		assert.True(t, outcomes.Downloaded(Android))
		assert.True(t, outcomes.Downloaded(IOS))
	}
	client := downloader.HTTPClient()
	require.NotNil(t, client)
	assert.Same(t, client, downloader.HTTPClient())
	assert.Nil(t, downloader.Logger)
}

func TestNewDownloaderBuildsClient(t *testing.T) {
	d := NewDownloader(3*time.Second, false, nil)
	require.NotNil(t, d.Client)
	assert.Same(t, d.Client, d.HTTPClient())
	assert.Equal(t, 3*time.Second, d.Client.GetClient().Timeout)
}
