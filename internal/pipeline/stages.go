package pipeline

import (
	"errors"
	"fmt"

	"github.com/temirov/repostates/internal/operations"
	"github.com/temirov/repostates/internal/repos/state"
)

const (
	stageOrderViolationMessageConstant = "pipeline stage order violated"
	stageOrderErrorTemplateConstant    = "%s: operation %q at position %d requires stage %q which no earlier operation provides"
)

// ErrStageOrderViolation indicates an operation that reads state no earlier operation writes.
var ErrStageOrderViolation = errors.New(stageOrderViolationMessageConstant)

// StageOrderError describes the first unsatisfied stage requirement in a pipeline.
type StageOrderError struct {
	Operation string
	Position  int
	Stage     state.Stage
}

// Error describes the violation.
func (orderError StageOrderError) Error() string {
	return fmt.Sprintf(stageOrderErrorTemplateConstant, stageOrderViolationMessageConstant, orderError.Operation, orderError.Position, orderError.Stage)
}

// Unwrap exposes ErrStageOrderViolation.
func (orderError StageOrderError) Unwrap() error {
	return ErrStageOrderViolation
}

// ValidateOrder verifies that every operation's required stages are provided by an earlier operation.
func ValidateOrder(pipelineOperations []operations.Operation) error {
	providedStages := make(map[state.Stage]struct{})
	for operationIndex, operation := range pipelineOperations {
		for _, requiredStage := range operation.Requires() {
			if _, provided := providedStages[requiredStage]; !provided {
				return StageOrderError{Operation: operation.Name(), Position: operationIndex, Stage: requiredStage}
			}
		}
		for _, providedStage := range operation.Provides() {
			providedStages[providedStage] = struct{}{}
		}
	}
	return nil
}
