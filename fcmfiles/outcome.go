package fcmfiles

import (
	"errors"
)

var (
	ErrEmptyResponse    = errors.New("received empty response")
	ErrUnexpectedStatus = errors.New("unexpected status code")
)

// Outcome is the result of one download. A nil Reason means the file was downloaded to Path,
// otherwise the platform falls back to its bundled template.
type Outcome struct {
	Descriptor Descriptor
	Path       string
	Reason     error
}

func downloaded(desc Descriptor, path string) Outcome {
	return Outcome{Descriptor: desc, Path: path}
}

func fallback(desc Descriptor, reason error) Outcome {
	return Outcome{Descriptor: desc, Reason: reason}
}

func (o Outcome) Downloaded() bool {
	return o.Reason == nil
}

func (o Outcome) String() string {
	if o.Downloaded() {
		return "downloaded " + o.Path
	}
	return "fallback: " + o.Reason.Error()
}

// Outcomes maps every provisioned platform to its outcome.
type Outcomes map[Platform]Outcome

// Downloaded reports whether platform has a usable downloaded file, missing entries count as failed.
func (o Outcomes) Downloaded(platform Platform) bool {
	outcome, ok := o[platform]
	return ok && outcome.Downloaded()
}
