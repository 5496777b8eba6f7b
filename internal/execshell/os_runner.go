package execshell

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"time"
)

const (
	environmentAssignmentSeparatorConstant = "="
	environmentAssignmentTemplateConstant  = "%s%s%s"
	outputDrainDelayConstant               = time.Second
)

// OSCommandRunner executes commands using the operating system facilities.
type OSCommandRunner struct{}

// NewOSCommandRunner constructs a runner backed by os/exec.
func NewOSCommandRunner() *OSCommandRunner {
	return &OSCommandRunner{}
}

// Start launches the supplied command using os/exec without waiting for completion.
func (runner *OSCommandRunner) Start(executionContext context.Context, command ShellCommand) (RunningCommand, error) {
	commandArguments := append([]string{}, command.Details.Arguments...)
	executable := exec.CommandContext(executionContext, string(command.Name), commandArguments...)
	// Descendants such as ssh may keep the output pipes open after the child is killed.
	executable.WaitDelay = outputDrainDelayConstant

	if len(command.Details.WorkingDirectory) > 0 {
		executable.Dir = command.Details.WorkingDirectory
	}

	if len(command.Details.EnvironmentVariables) > 0 {
		mergedEnvironment := append([]string{}, os.Environ()...)
		for environmentKey, environmentValue := range command.Details.EnvironmentVariables {
			mergedEnvironment = append(mergedEnvironment, fmt.Sprintf(environmentAssignmentTemplateConstant, environmentKey, environmentAssignmentSeparatorConstant, environmentValue))
		}
		executable.Env = mergedEnvironment
	}

	runningProcess := &osRunningCommand{executable: executable}
	executable.Stdout = &runningProcess.standardOutputBuffer
	executable.Stderr = &runningProcess.standardErrorBuffer

	if len(command.Details.StandardInput) > 0 {
		executable.Stdin = bytes.NewReader(command.Details.StandardInput)
	}

	if startError := executable.Start(); startError != nil {
		return nil, startError
	}

	return runningProcess, nil
}

type osRunningCommand struct {
	executable           *exec.Cmd
	standardOutputBuffer bytes.Buffer
	standardErrorBuffer  bytes.Buffer
}

// Wait collects the exit status and both output streams of the started process.
func (runningProcess *osRunningCommand) Wait() (ExecutionResult, error) {
	waitError := runningProcess.executable.Wait()
	if waitError != nil {
		exitError := &exec.ExitError{}
		if errors.As(waitError, &exitError) {
			return ExecutionResult{
				StandardOutput: runningProcess.standardOutputBuffer.String(),
				StandardError:  runningProcess.standardErrorBuffer.String(),
				ExitCode:       exitError.ExitCode(),
			}, nil
		}
		return ExecutionResult{}, waitError
	}

	return ExecutionResult{
		StandardOutput: runningProcess.standardOutputBuffer.String(),
		StandardError:  runningProcess.standardErrorBuffer.String(),
		ExitCode:       0,
	}, nil
}
