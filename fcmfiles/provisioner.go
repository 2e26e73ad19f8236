package fcmfiles

import (
	"context"
	"path/filepath"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/shoutem/firebase-prebuild/common"
)

// Fetcher downloads a single descriptor to dest.
type Fetcher interface {
	Download(ctx context.Context, desc Descriptor, dest string) Outcome
}

// Provisioner downloads all descriptors concurrently into DownloadDir.
type Provisioner struct {
	Fetcher     Fetcher
	DownloadDir string
	Logger      logrus.FieldLogger
}

func (p *Provisioner) destination(desc Descriptor) string {
	return filepath.Join(p.DownloadDir, desc.Filename)
}

// Provision waits for every download to settle. outcomes[i] always belongs to descs[i],
// one failing download does not affect the others.
func (p *Provisioner) Provision(ctx context.Context, descs []Descriptor) []Outcome {
	outcomes := make([]Outcome, len(descs))
	var wg sync.WaitGroup
	for i := range descs {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			outcomes[i] = p.Fetcher.Download(ctx, descs[i], p.destination(descs[i]))
		}(i)
	}
	wg.Wait()
	return outcomes
}

// ProvisionSet downloads both platform files and keys the outcomes by platform.
func (p *Provisioner) ProvisionSet(ctx context.Context, set DescriptorSet) Outcomes {
	logger := p.Logger
	if logger == nil {
		logger = common.DiscardLogger()
	}
	all := set.All()
	res := make(Outcomes, len(all))
	for i, outcome := range p.Provision(ctx, all) {
		res[all[i].Platform] = outcome
		logger.WithField("platform", string(all[i].Platform)).Debugf("%s: %v", all[i].Filename, outcome)
	}
	return res
}
