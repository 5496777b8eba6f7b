package pipeline

import (
	"context"

	"github.com/temirov/repostates/internal/operations"
	"github.com/temirov/repostates/internal/repos/shared"
	"github.com/temirov/repostates/internal/repos/state"
)

const (
	operationStartedTemplateConstant   = "%s\n"
	operationCompletedTemplateConstant = "%s\t✓\n"
)

// Runner executes a pipeline one operation at a time, reporting progress.
type Runner struct {
	executor *Executor
	reporter shared.Reporter
}

// NewRunner constructs a Runner. A nil reporter silences progress output.
func NewRunner(executor *Executor, reporter shared.Reporter) *Runner {
	if reporter == nil {
		reporter = shared.NewDiscardReporter()
	}
	return &Runner{executor: executor, reporter: reporter}
}

// Run executes the operations in order. Each operation is fully applied to every
// repository before the next starts. Cancellation is observed between operations.
func (runner *Runner) Run(executionContext context.Context, pipelineOperations []operations.Operation, repositoryStates []*state.RepositoryState) error {
	for _, operation := range pipelineOperations {
		if contextError := executionContext.Err(); contextError != nil {
			return contextError
		}
		runner.reporter.Printf(operationStartedTemplateConstant, operation.Message())
		runner.executor.Run(executionContext, operation, repositoryStates)
		runner.reporter.Printf(operationCompletedTemplateConstant, operation.Message())
	}
	return nil
}
