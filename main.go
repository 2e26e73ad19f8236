package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/shoutem/firebase-prebuild/appconfiguration"
	"github.com/shoutem/firebase-prebuild/common"
	"github.com/shoutem/firebase-prebuild/fcmfiles"
	"github.com/shoutem/firebase-prebuild/prebuild"
	"github.com/shoutem/firebase-prebuild/prebuildconfig"
)

var version string = "0.1.x-dev"

type interactive struct {
}

func (i *interactive) GetInput(prompt string, def string) string {
	return GetInput(prompt, def)
}
func (i *interactive) GetConfirm(prompt string, def bool) bool {
	return GetConfirm(prompt, def)
}

// RunPreBuild holds the flags shared by the prebuild and endpoints commands.
type RunPreBuild struct {
	SettingsFile string
	EnvFile      string
	ProjectDir   string
	AppConfig    string
	BuildConfig  string
	Timeout      time.Duration
	Trace        bool
	Build        prebuildconfig.ConfigureBuild
}

func (run *RunPreBuild) LoadSettings() (*prebuildconfig.Settings, error) {
	if err := prebuildconfig.LoadEnvFile(run.EnvFile); err != nil {
		return nil, fmt.Errorf("failed to load %s: %w", run.EnvFile, err)
	}
	settings, err := prebuildconfig.Load(run.SettingsFile)
	if err != nil {
		return nil, err
	}
	settings.ReadFromEnvironment()
	if run.ProjectDir != "" {
		settings.ProjectDir = run.ProjectDir
	}
	if run.Timeout > 0 {
		settings.DownloadTimeout = run.Timeout
	}
	settings.Trace = settings.Trace || run.Trace
	settings.ApplyDefaults()
	if err := settings.Validate(); err != nil {
		return nil, err
	}
	return settings, nil
}

// LoadBuildConfiguration reads --build-config when given and lets flags and environment
// take precedence over it.
func (run *RunPreBuild) LoadBuildConfiguration() (*appconfiguration.BuildConfiguration, error) {
	var existing *appconfiguration.BuildConfiguration
	if run.BuildConfig != "" {
		build, err := appconfiguration.LoadBuildConfiguration(run.BuildConfig)
		if err != nil {
			return nil, err
		}
		existing = build
	}
	config := run.Build
	config.Unattended = true
	config.ReadFromEnvironment()
	return config.Configure(existing, nil)
}

func (run *RunPreBuild) Run(ctx context.Context, out io.Writer) error {
	settings, err := run.LoadSettings()
	if err != nil {
		return err
	}
	logger := common.NewLogger(out, settings.Trace)
	app, err := appconfiguration.LoadApplicationConfiguration(run.AppConfig)
	if err != nil {
		return err
	}
	build, err := run.LoadBuildConfiguration()
	if err != nil {
		return err
	}
	start := time.Now()
	if err := prebuild.New(settings, logger).Run(ctx, app, *build); err != nil {
		return err
	}
	common.Elapsed(logger, "Firebase prebuild finished", start)
	return nil
}

func (run *RunPreBuild) PrintEndpoints(out io.Writer) error {
	app, err := appconfiguration.LoadApplicationConfiguration(run.AppConfig)
	if err != nil {
		return err
	}
	build, err := run.LoadBuildConfiguration()
	if err != nil {
		return err
	}
	legacyAPI, err := app.LegacyAPIEndpoint()
	if err != nil {
		return err
	}
	descriptors, err := fcmfiles.ResolveDescriptors(legacyAPI, build.AppID.String())
	if err != nil {
		return err
	}
	for _, desc := range descriptors.All() {
		fmt.Fprintf(out, "%s\t%s\t%s\n", desc.Platform, desc.Filename, desc.Endpoint)
	}
	return nil
}

// exitCode maps a command error to the process exit status.
func exitCode(err error) int {
	if err != nil {
		return 1
	}
	return 0
}

func fail(err error) {
	if err != nil {
		common.NewLogger(os.Stderr, false).Errorf("firebase prebuild failed: %v", err)
	}
	os.Exit(exitCode(err))
}

// buildFlags keeps --production and --release apart from ConfigureBuild, they only
// apply when given on the command line.
type buildFlags struct {
	production bool
	release    bool
}

func (flags *buildFlags) register(cmd *cobra.Command, config *prebuildconfig.ConfigureBuild) {
	cmd.Flags().StringVar(&config.AppID, "app-id", "", "id of the shoutem app")
	cmd.Flags().BoolVar(&flags.production, "production", false, "production build")
	cmd.Flags().BoolVar(&flags.release, "release", false, "release build")
}

func (flags *buildFlags) apply(cmd *cobra.Command, config *prebuildconfig.ConfigureBuild) {
	if cmd.Flags().Changed("production") {
		production := flags.production
		config.Production = &production
	}
	if cmd.Flags().Changed("release") {
		release := flags.release
		config.Release = &release
	}
}

func main() {
	run := &RunPreBuild{}
	prebuildFlags := &buildFlags{}
	var cmdPreBuild = &cobra.Command{
		Use:   "prebuild",
		Short: "Download the firebase config files and inject them into the native projects",
		Args:  cobra.MaximumNArgs(0),
		Run: func(cmd *cobra.Command, args []string) {
			// trap Ctrl+C
			channel := make(chan os.Signal, 1)
			signal.Notify(channel, syscall.SIGTERM, os.Interrupt)
			defer signal.Stop(channel)
			ctx, cancel := context.WithCancel(context.Background())
			defer cancel()
			go func() {
				select {
				case <-channel:
					fmt.Println("Interrupted, cancel pending downloads")
					cancel()
				case <-ctx.Done():
				}
			}()
			prebuildFlags.apply(cmd, &run.Build)
			fail(run.Run(ctx, os.Stdout))
		},
	}
	cmdPreBuild.Flags().StringVar(&run.AppConfig, "app-config", "", "json application configuration with the included extensions")
	cmdPreBuild.Flags().StringVar(&run.BuildConfig, "build-config", "", "json or yaml build configuration, flags take precedence")
	cmdPreBuild.Flags().StringVar(&run.ProjectDir, "project-dir", "", "root of the react native project")
	cmdPreBuild.Flags().StringVar(&run.SettingsFile, "settings", prebuildconfig.DefaultSettingsFile, "yaml settings of the prebuild hook")
	cmdPreBuild.Flags().StringVar(&run.EnvFile, "env-file", ".env", "godotenv file with environment variables")
	cmdPreBuild.Flags().DurationVar(&run.Timeout, "timeout", 0, "download timeout per config file (default 100s)")
	cmdPreBuild.Flags().BoolVar(&run.Trace, "trace", false, "trace http communication with the legacy api")
	prebuildFlags.register(cmdPreBuild, &run.Build)
	_ = cmdPreBuild.MarkFlagRequired("app-config")

	endpoints := &RunPreBuild{}
	endpointsFlags := &buildFlags{}
	var cmdEndpoints = &cobra.Command{
		Use:   "endpoints",
		Short: "Print the legacy api endpoints of the firebase config files",
		Args:  cobra.MaximumNArgs(0),
		Run: func(cmd *cobra.Command, args []string) {
			endpointsFlags.apply(cmd, &endpoints.Build)
			if err := endpoints.PrintEndpoints(os.Stdout); err != nil {
				fail(err)
			}
		},
	}
	cmdEndpoints.Flags().StringVar(&endpoints.AppConfig, "app-config", "", "json application configuration with the included extensions")
	cmdEndpoints.Flags().StringVar(&endpoints.BuildConfig, "build-config", "", "json or yaml build configuration, flags take precedence")
	endpointsFlags.register(cmdEndpoints, &endpoints.Build)
	_ = cmdEndpoints.MarkFlagRequired("app-config")

	config := &prebuildconfig.ConfigureBuild{}
	configureFlags := &buildFlags{}
	output := "build-config.json"
	var cmdConfigure = &cobra.Command{
		Use:   "configure",
		Short: "Write the build configuration used by prebuild",
		Args:  cobra.MaximumNArgs(0),
		Run: func(cmd *cobra.Command, args []string) {
			configureFlags.apply(cmd, config)
			config.ReadFromEnvironment()
			existing, _ := appconfiguration.LoadBuildConfiguration(output)
			build, err := config.Configure(existing, &interactive{})
			if err == nil {
				err = build.Save(output)
			}
			if err != nil {
				fmt.Printf("failed to configure: %v\n", err)
				os.Exit(1)
			}
			fmt.Printf("success\n")
		},
	}
	configureFlags.register(cmdConfigure, config)
	cmdConfigure.Flags().BoolVar(&config.Unattended, "unattended", false, "suppress shell prompts during configure")
	cmdConfigure.Flags().StringVarP(&output, "output", "o", output, "json or yaml file to write")

	var rootCmd = &cobra.Command{
		Use:     "firebase-prebuild",
		Version: version,
	}
	rootCmd.AddCommand(cmdPreBuild, cmdConfigure, cmdEndpoints)
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
