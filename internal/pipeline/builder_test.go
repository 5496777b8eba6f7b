package pipeline_test

import (
	"bytes"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/temirov/repostates/internal/operations"
	"github.com/temirov/repostates/internal/pipeline"
	"github.com/temirov/repostates/internal/repos/state"
)

func operationNames(pipelineOperations []operations.Operation) []string {
	names := make([]string, 0, len(pipelineOperations))
	for _, operation := range pipelineOperations {
		names = append(names, operation.Name())
	}
	return names
}

func TestBuildProducesActionSequences(testInstance *testing.T) {
	testCases := []struct {
		name          string
		action        pipeline.Action
		parameters    pipeline.Parameters
		expectedNames []string
	}{
		{
			name:          "status",
			action:        pipeline.ActionStatus,
			expectedNames: []string{"refresh-remote", "detailed-status", "describe"},
		},
		{
			name:          "status_without_fetch",
			action:        pipeline.ActionStatus,
			parameters:    pipeline.Parameters{NoFetch: true},
			expectedNames: []string{"detailed-status", "describe"},
		},
		{
			name:          "pull",
			action:        pipeline.ActionPull,
			expectedNames: []string{"refresh-remote", "detailed-status", "pull", "detailed-status", "describe"},
		},
		{
			name:          "checkout",
			action:        pipeline.ActionCheckout,
			parameters:    pipeline.Parameters{CheckoutTarget: "develop"},
			expectedNames: []string{"refresh-remote", "checkout", "detailed-status", "describe"},
		},
		{
			name:          "checkout_default",
			action:        pipeline.ActionCheckoutDefault,
			expectedNames: []string{"refresh-remote", "default-branch-probe", "checkout-default-branch", "detailed-status", "describe"},
		},
		{
			name:          "checkout_latest_tag",
			action:        pipeline.ActionCheckoutLatestTag,
			expectedNames: []string{"refresh-remote", "latest-release-tag-probe", "checkout-latest-release-tag", "detailed-status", "describe"},
		},
		{
			name:          "stale_branches",
			action:        pipeline.ActionStaleBranches,
			expectedNames: []string{"refresh-remote", "stale-branch-scan"},
		},
		{
			name:          "run",
			action:        pipeline.ActionRun,
			parameters:    pipeline.Parameters{CustomCommand: "git gc --auto"},
			expectedNames: []string{"custom-command"},
		},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			pipelineOperations, buildError := pipeline.Build(testCase.action, testCase.parameters)
			require.NoError(testInstance, buildError)
			require.Equal(testInstance, testCase.expectedNames, operationNames(pipelineOperations))
			require.NoError(testInstance, pipeline.ValidateOrder(pipelineOperations))
		})
	}
}

func TestBuildPullOrdersOperationsExactly(testInstance *testing.T) {
	pipelineOperations, buildError := pipeline.Build(pipeline.ActionPull, pipeline.Parameters{})
	require.NoError(testInstance, buildError)
	require.Len(testInstance, pipelineOperations, 5)
	require.IsType(testInstance, operations.RefreshRemote{}, pipelineOperations[0])
	require.IsType(testInstance, operations.DetailedStatus{}, pipelineOperations[1])
	require.IsType(testInstance, operations.Pull{}, pipelineOperations[2])
	require.IsType(testInstance, operations.DetailedStatus{}, pipelineOperations[3])
	require.IsType(testInstance, operations.Describe{}, pipelineOperations[4])
}

func TestBuildSanitizesCheckoutTarget(testInstance *testing.T) {
	var warnings bytes.Buffer
	observedCore, observedLogs := observer.New(zapcore.WarnLevel)

	pipelineOperations, buildError := pipeline.Build(pipeline.ActionCheckout, pipeline.Parameters{
		CheckoutTarget: "main; rm -rf /",
		Warnings:       &warnings,
		Logger:         zap.New(observedCore),
	})
	require.NoError(testInstance, buildError)

	checkout, isCheckout := pipelineOperations[1].(operations.Checkout)
	require.True(testInstance, isCheckout)
	require.Equal(testInstance, "main", checkout.Target())
	require.Equal(testInstance, "Incorrect target branch was given: 'main; rm -rf /'\nTarget branch was set to: 'main'\n", warnings.String())
	require.Equal(testInstance, 1, observedLogs.Len())
}

func TestBuildLeavesCleanTargetSilent(testInstance *testing.T) {
	var warnings bytes.Buffer
	_, buildError := pipeline.Build(pipeline.ActionCheckout, pipeline.Parameters{CheckoutTarget: "main", Warnings: &warnings})
	require.NoError(testInstance, buildError)
	require.Empty(testInstance, warnings.String())
}

func TestBuildRejectsInvalidInput(testInstance *testing.T) {
	testCases := []struct {
		name          string
		action        pipeline.Action
		parameters    pipeline.Parameters
		expectedError error
	}{
		{name: "unknown_action", action: pipeline.Action("rebase"), expectedError: pipeline.ErrUnsupportedAction},
		{name: "empty_custom_command", action: pipeline.ActionRun, parameters: pipeline.Parameters{CustomCommand: "  "}, expectedError: operations.ErrEmptyCustomCommand},
		{name: "empty_checkout_target", action: pipeline.ActionCheckout, parameters: pipeline.Parameters{CheckoutTarget: " "}, expectedError: pipeline.ErrCheckoutTargetRequired},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			pipelineOperations, buildError := pipeline.Build(testCase.action, testCase.parameters)
			require.Nil(testInstance, pipelineOperations)
			require.True(testInstance, errors.Is(buildError, testCase.expectedError))
		})
	}
}

func TestValidateOrderRejectsMisorderedPipelines(testInstance *testing.T) {
	testCases := []struct {
		name              string
		operations        []operations.Operation
		expectedOperation string
		expectedStage     state.Stage
		expectedPosition  int
	}{
		{
			name:              "describe_before_status",
			operations:        []operations.Operation{operations.Describe{}, operations.DetailedStatus{}},
			expectedOperation: "describe",
			expectedStage:     state.StageStatusProbed,
			expectedPosition:  0,
		},
		{
			name:              "checkout_default_before_probe",
			operations:        []operations.Operation{operations.RefreshRemote{}, operations.NewCheckoutSpecial(operations.CheckoutFieldDefaultBranch), operations.DefaultBranchProbe{}},
			expectedOperation: "checkout-default-branch",
			expectedStage:     state.StageDefaultBranchProbed,
			expectedPosition:  1,
		},
		{
			name:              "checkout_tag_without_probe",
			operations:        []operations.Operation{operations.NewCheckoutSpecial(operations.CheckoutFieldLatestReleaseTag)},
			expectedOperation: "checkout-latest-release-tag",
			expectedStage:     state.StageLatestTagProbed,
			expectedPosition:  0,
		},
		{
			name:              "pull_without_fetch",
			operations:        []operations.Operation{operations.DetailedStatus{}, operations.Pull{}},
			expectedOperation: "pull",
			expectedStage:     state.StageRemoteProbed,
			expectedPosition:  1,
		},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			orderError := pipeline.ValidateOrder(testCase.operations)
			require.True(testInstance, errors.Is(orderError, pipeline.ErrStageOrderViolation))

			var stageOrderError pipeline.StageOrderError
			require.True(testInstance, errors.As(orderError, &stageOrderError))
			require.Equal(testInstance, testCase.expectedOperation, stageOrderError.Operation)
			require.Equal(testInstance, testCase.expectedStage, stageOrderError.Stage)
			require.Equal(testInstance, testCase.expectedPosition, stageOrderError.Position)
		})
	}
}
