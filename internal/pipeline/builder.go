package pipeline

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"go.uber.org/zap"

	"github.com/temirov/repostates/internal/operations"
)

// Action names a pipeline the CLI can request.
type Action string

// Supported actions.
const (
	ActionStatus            Action = "status"
	ActionPull              Action = "pull"
	ActionCheckout          Action = "checkout"
	ActionCheckoutDefault   Action = "checkout-default"
	ActionCheckoutLatestTag Action = "checkout-latest-tag"
	ActionStaleBranches     Action = "stale-branches"
	ActionRun               Action = "run"
)

const (
	unsupportedActionMessageConstant        = "unsupported pipeline action"
	checkoutTargetRequiredMessageConstant   = "checkout target is required"
	unsupportedActionErrorTemplateConstant  = "%w: %s"
	buildActionErrorTemplateConstant        = "unable to build %s pipeline: %w"
	incorrectTargetWarningTemplateConstant  = "Incorrect target branch was given: '%s'\n"
	targetReplacementNoticeTemplateConstant = "Target branch was set to: '%s'\n"
	sanitizedTargetLogMessageConstant       = "Checkout target sanitized"
	logFieldOriginalTargetConstant          = "original_target"
	logFieldSanitizedTargetConstant         = "sanitized_target"
)

// ErrUnsupportedAction indicates an action without a pipeline definition.
var ErrUnsupportedAction = errors.New(unsupportedActionMessageConstant)

// ErrCheckoutTargetRequired indicates a checkout whose target is empty after sanitization.
var ErrCheckoutTargetRequired = errors.New(checkoutTargetRequiredMessageConstant)

// Parameters carries the user input that shapes a pipeline.
type Parameters struct {
	NoFetch        bool
	CheckoutTarget string
	CustomCommand  string
	Warnings       io.Writer
	Logger         *zap.Logger
}

type pipelineFactory func(parameters Parameters) ([]operations.Operation, error)

var pipelineFactories = map[Action]pipelineFactory{
	ActionStatus:            buildStatusPipeline,
	ActionPull:              buildPullPipeline,
	ActionCheckout:          buildCheckoutPipeline,
	ActionCheckoutDefault:   buildCheckoutDefaultPipeline,
	ActionCheckoutLatestTag: buildCheckoutLatestTagPipeline,
	ActionStaleBranches:     buildStaleBranchesPipeline,
	ActionRun:               buildRunPipeline,
}

// Build returns the ordered operations for the action and verifies their stage order.
func Build(action Action, parameters Parameters) ([]operations.Operation, error) {
	factory, supported := pipelineFactories[action]
	if !supported {
		return nil, fmt.Errorf(unsupportedActionErrorTemplateConstant, ErrUnsupportedAction, action)
	}
	pipelineOperations, buildError := factory(parameters)
	if buildError != nil {
		return nil, fmt.Errorf(buildActionErrorTemplateConstant, action, buildError)
	}
	if orderError := ValidateOrder(pipelineOperations); orderError != nil {
		return nil, orderError
	}
	return pipelineOperations, nil
}

func buildStatusPipeline(parameters Parameters) ([]operations.Operation, error) {
	if parameters.NoFetch {
		return []operations.Operation{operations.DetailedStatus{}, operations.Describe{}}, nil
	}
	return []operations.Operation{operations.RefreshRemote{}, operations.DetailedStatus{}, operations.Describe{}}, nil
}

func buildPullPipeline(Parameters) ([]operations.Operation, error) {
	return []operations.Operation{
		operations.RefreshRemote{},
		operations.DetailedStatus{},
		operations.Pull{},
		operations.DetailedStatus{},
		operations.Describe{},
	}, nil
}

func buildCheckoutPipeline(parameters Parameters) ([]operations.Operation, error) {
	checkout := operations.NewCheckout(parameters.CheckoutTarget)
	if len(checkout.Target()) == 0 {
		return nil, ErrCheckoutTargetRequired
	}
	if checkout.WasSanitized() {
		reportSanitizedTarget(parameters, checkout)
	}
	return []operations.Operation{
		operations.RefreshRemote{},
		checkout,
		operations.DetailedStatus{},
		operations.Describe{},
	}, nil
}

func buildCheckoutDefaultPipeline(Parameters) ([]operations.Operation, error) {
	return []operations.Operation{
		operations.RefreshRemote{},
		operations.DefaultBranchProbe{},
		operations.NewCheckoutSpecial(operations.CheckoutFieldDefaultBranch),
		operations.DetailedStatus{},
		operations.Describe{},
	}, nil
}

func buildCheckoutLatestTagPipeline(Parameters) ([]operations.Operation, error) {
	return []operations.Operation{
		operations.RefreshRemote{},
		operations.LatestReleaseTagProbe{},
		operations.NewCheckoutSpecial(operations.CheckoutFieldLatestReleaseTag),
		operations.DetailedStatus{},
		operations.Describe{},
	}, nil
}

func buildStaleBranchesPipeline(Parameters) ([]operations.Operation, error) {
	return []operations.Operation{operations.RefreshRemote{}, operations.StaleBranchScan{}}, nil
}

func buildRunPipeline(parameters Parameters) ([]operations.Operation, error) {
	customCommand, customCommandError := operations.NewCustomCommand(parameters.CustomCommand)
	if customCommandError != nil {
		return nil, customCommandError
	}
	return []operations.Operation{customCommand}, nil
}

func reportSanitizedTarget(parameters Parameters, checkout operations.Checkout) {
	if parameters.Logger != nil {
		parameters.Logger.Warn(
			sanitizedTargetLogMessageConstant,
			zap.String(logFieldOriginalTargetConstant, checkout.OriginalTarget()),
			zap.String(logFieldSanitizedTargetConstant, checkout.Target()),
		)
	}
	if parameters.Warnings == nil {
		return
	}
	var notice strings.Builder
	fmt.Fprintf(&notice, incorrectTargetWarningTemplateConstant, checkout.OriginalTarget())
	fmt.Fprintf(&notice, targetReplacementNoticeTemplateConstant, checkout.Target())
	_, _ = io.WriteString(parameters.Warnings, notice.String())
}
