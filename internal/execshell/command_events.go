package execshell

// CommandEventObserver receives lifecycle notifications for started processes.
type CommandEventObserver interface {
	// CommandStarted fires after the command is prepared and before the process is launched.
	CommandStarted(command ShellCommand)
	// CommandCompleted fires once the process exited and its output was collected.
	CommandCompleted(command ShellCommand, result ExecutionResult)
	// CommandExecutionFailed fires when the process could not be launched or collected.
	CommandExecutionFailed(command ShellCommand, failure error)
}

type noopCommandEventObserver struct{}

func (noopCommandEventObserver) CommandStarted(ShellCommand) {}

func (noopCommandEventObserver) CommandCompleted(ShellCommand, ExecutionResult) {}

func (noopCommandEventObserver) CommandExecutionFailed(ShellCommand, error) {}
