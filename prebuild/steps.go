package prebuild

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"

	"github.com/shoutem/firebase-prebuild/prebuildconfig"
)

// Step is a downstream injection that needs the native project files to be final,
// e.g. wiring the push notification callbacks into the generated app sources.
type Step interface {
	Name() string
	Run(ctx context.Context) error
}

// CommandStep runs an external program inside the project directory.
type CommandStep struct {
	StepName string
	Command  []string
	Dir      string
	Stdout   io.Writer
	Stderr   io.Writer
}

func (s *CommandStep) Name() string {
	return s.StepName
}

func (s *CommandStep) Run(ctx context.Context) error {
	if len(s.Command) == 0 {
		return fmt.Errorf("step %s has no command", s.StepName)
	}
	//nolint:gosec // Commands come from the project's own settings file
	cmd := exec.CommandContext(ctx, s.Command[0], s.Command[1:]...)
	cmd.Dir = s.Dir
	cmd.Stdout = s.Stdout
	cmd.Stderr = s.Stderr
	if cmd.Stdout == nil {
		cmd.Stdout = os.Stdout
	}
	if cmd.Stderr == nil {
		cmd.Stderr = os.Stderr
	}
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("step %s failed: %w", s.StepName, err)
	}
	return nil
}

// CommandSteps turns the postInject section of the settings into steps.
func CommandSteps(settings *prebuildconfig.Settings) []Step {
	steps := make([]Step, 0, len(settings.PostInject))
	for _, c := range settings.PostInject {
		steps = append(steps, &CommandStep{
			StepName: c.Name,
			Command:  c.Command,
			Dir:      settings.ProjectDir,
		})
	}
	return steps
}
