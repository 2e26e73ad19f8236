package prebuild

import (
	"context"

	"github.com/sirupsen/logrus"

	"github.com/shoutem/firebase-prebuild/appconfiguration"
	"github.com/shoutem/firebase-prebuild/common"
	"github.com/shoutem/firebase-prebuild/fcmfiles"
	"github.com/shoutem/firebase-prebuild/nativeinjector"
	"github.com/shoutem/firebase-prebuild/prebuildconfig"
)

type Provisioner interface {
	ProvisionSet(ctx context.Context, set fcmfiles.DescriptorSet) fcmfiles.Outcomes
}

// PreBuild provisions the firebase config files of both native projects.
type PreBuild struct {
	Provisioner Provisioner
	Android     *nativeinjector.AndroidInjector
	IOS         *nativeinjector.IosInjector
	Steps       []Step
	Logger      logrus.FieldLogger
}

// New wires a PreBuild from settings, settings must have their defaults applied.
func New(settings *prebuildconfig.Settings, logger logrus.FieldLogger) *PreBuild {
	sources := nativeinjector.ConfigSources{
		DownloadDir: settings.DownloadDir,
		TemplateDir: settings.TemplateDir,
	}
	return &PreBuild{
		Provisioner: &fcmfiles.Provisioner{
			Fetcher:     fcmfiles.NewDownloader(settings.DownloadTimeout, settings.Trace, logger),
			DownloadDir: settings.DownloadDir,
			Logger:      logger,
		},
		Android: &nativeinjector.AndroidInjector{
			ProjectDir:             settings.ProjectDir,
			Sources:                sources,
			DevelopmentPackageName: settings.DevelopmentPackageName,
			Logger:                 logger,
		},
		IOS: &nativeinjector.IosInjector{
			ProjectDir: settings.ProjectDir,
			Sources:    sources,
			Logger:     logger,
		},
		Steps:  CommandSteps(settings),
		Logger: logger,
	}
}

func (p *PreBuild) logger() logrus.FieldLogger {
	if p.Logger == nil {
		p.Logger = common.DiscardLogger()
	}
	return p.Logger
}

// useDownloaded applies the release gate to the outcome of platform.
func (p *PreBuild) useDownloaded(build appconfiguration.BuildConfiguration, outcomes fcmfiles.Outcomes, platform fcmfiles.Platform) bool {
	downloaded := outcomes.Downloaded(platform)
	use := appconfiguration.TrustDownloadedFile(build, downloaded)
	logger := p.logger().WithField("platform", string(platform))
	switch {
	case use:
		logger.Info("Using the downloaded config file")
	case downloaded:
		logger.Info("Not a production or release build, using the template config file instead of the downloaded one")
	default:
		logger.Info("Using the template config file")
	}
	return use
}

// Run is the pre-build hook. Nothing is downloaded or written when the application
// configuration lacks the legacy api endpoint.
func (p *PreBuild) Run(ctx context.Context, app *appconfiguration.ApplicationConfiguration, build appconfiguration.BuildConfiguration) error {
	logger := p.logger()
	legacyAPI, err := app.LegacyAPIEndpoint()
	if err != nil {
		return err
	}
	descriptors, err := fcmfiles.ResolveDescriptors(legacyAPI, build.AppID.String())
	if err != nil {
		return err
	}
	logger.Debugf("Resolved legacy api %s for app %s", legacyAPI, build.AppID)

	outcomes := p.Provisioner.ProvisionSet(ctx, descriptors)

	if err := p.Android.Inject(p.useDownloaded(build, outcomes, fcmfiles.Android), build); err != nil {
		return err
	}
	if err := p.IOS.Inject(p.useDownloaded(build, outcomes, fcmfiles.IOS)); err != nil {
		return err
	}

	for _, step := range p.Steps {
		logger.Infof("Running %s", step.Name())
		if err := step.Run(ctx); err != nil {
			return err
		}
	}
	return nil
}
