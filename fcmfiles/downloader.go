package fcmfiles

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/sirupsen/logrus"

	"github.com/shoutem/firebase-prebuild/common"
)

const (
	filePermissions = 0o664
	dirPermissions  = 0o775

	DefaultTimeout = 100 * time.Second
	userAgent      = "firebase-prebuild"
)

// Downloader fetches single config files. It never returns an error, failures are
// reported as fallback outcomes and leave no file behind. A Downloader is safe for
// concurrent use, the client is built at most once.
type Downloader struct {
	Client  *resty.Client
	Timeout time.Duration
	Trace   bool
	Logger  logrus.FieldLogger

	clientOnce sync.Once
}

func NewDownloader(timeout time.Duration, trace bool, logger logrus.FieldLogger) *Downloader {
	d := &Downloader{
		Timeout: timeout,
		Trace:   trace,
		Logger:  logger,
	}
	d.Client = d.newClient()
	return d
}

func (d *Downloader) logger() logrus.FieldLogger {
	if d.Logger == nil {
		return common.DiscardLogger()
	}
	return d.Logger
}

func (d *Downloader) newClient() *resty.Client {
	timeout := d.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return resty.New().
		SetTimeout(timeout).
		SetHeader("User-Agent", userAgent).
		SetLogger(d.logger()).
		SetDebug(d.Trace)
}

// HTTPClient returns Client, building it on first use for Downloaders created
// without NewDownloader.
func (d *Downloader) HTTPClient() *resty.Client {
	d.clientOnce.Do(func() {
		if d.Client == nil {
			d.Client = d.newClient()
		}
	})
	return d.Client
}

// Download stores the resource of desc at dest. The file is only created when a
// non-empty body was received completely.
func (d *Downloader) Download(ctx context.Context, desc Descriptor, dest string) (outcome Outcome) {
	logger := d.logger().WithField("platform", string(desc.Platform))
	endpoint := desc.Endpoint.String()
	defer func() {
		if r := recover(); r != nil {
			discard(dest, "")
			outcome = fallback(desc, fmt.Errorf("download panicked: %v", r))
		}
		switch {
		case outcome.Downloaded():
		case errors.Is(outcome.Reason, ErrEmptyResponse):
			logger.Warnf("Received empty response from %s, please check your shoutem.firebase settings", endpoint)
		default:
			logger.Warnf("Failed to download %s from %s: %v", desc.Filename, endpoint, outcome.Reason)
		}
	}()

	logger.Debugf("Downloading %s from %s", desc.Filename, endpoint)
	resp, err := d.HTTPClient().R().
		SetContext(ctx).
		SetDoNotParseResponse(true).
		Get(endpoint)
	if resp != nil && resp.RawBody() != nil {
		defer resp.RawBody().Close()
	}
	if err != nil {
		discard(dest, "")
		return fallback(desc, err)
	}
	if !resp.IsSuccess() {
		discard(dest, "")
		return fallback(desc, fmt.Errorf("%w: %d", ErrUnexpectedStatus, resp.StatusCode()))
	}
	written, err := writeBody(resp.RawBody(), dest)
	if err != nil {
		return fallback(desc, err)
	}
	if written == 0 {
		return fallback(desc, ErrEmptyResponse)
	}
	logger.Infof("Downloaded %s from %s", desc.Filename, endpoint)
	return downloaded(desc, dest)
}

func writeBody(body io.Reader, dest string) (int64, error) {
	if body == nil {
		discard(dest, "")
		return 0, nil
	}
	if err := os.MkdirAll(filepath.Dir(dest), dirPermissions); err != nil {
		discard(dest, "")
		return 0, err
	}
	tmp := common.StagingPath(dest)
	//nolint:gosec // Path is derived from the extension directory
	f, err := os.OpenFile(tmp, os.O_WRONLY|os.O_CREATE|os.O_EXCL, filePermissions)
	if err != nil {
		discard(dest, "")
		return 0, err
	}
	written, err := io.Copy(f, body)
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil || written == 0 {
		discard(dest, tmp)
		return 0, err
	}
	if err := os.Rename(tmp, dest); err != nil {
		discard(dest, tmp)
		return 0, err
	}
	return written, nil
}

// discard removes the staging file and any stale destination from an earlier run.
func discard(dest, tmp string) {
	if tmp != "" {
		_ = os.Remove(tmp)
	}
	_ = os.Remove(dest)
}
