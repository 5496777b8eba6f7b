package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/temirov/repostates/internal/pipeline"
	"github.com/temirov/repostates/internal/report"
	"github.com/temirov/repostates/internal/repos/discovery"
	"github.com/temirov/repostates/internal/repos/shared"
	"github.com/temirov/repostates/internal/repos/state"
)

const (
	statusCommandUseConstant                  = "status"
	statusCommandShortDescriptionConstant     = "Fetch every repository and report its branch, sync, and cleanliness state"
	pullCommandUseConstant                    = "pull"
	pullCommandShortDescriptionConstant       = "Fast-forward every repository that tracks an upstream branch"
	checkoutCommandUseConstant                = "checkout <target>"
	checkoutCommandShortDescriptionConstant   = "Check out the same branch, tag, or commit in every repository"
	checkoutDefaultCommandUseConstant         = "checkout-default"
	checkoutDefaultShortDescriptionConstant   = "Check out each repository's remote default branch"
	checkoutLatestTagCommandUseConstant       = "checkout-latest-tag"
	checkoutLatestTagShortDescriptionConstant = "Check out the highest semantic-version release tag of each repository"
	staleBranchesCommandUseConstant           = "stale-branches"
	staleBranchesCommandAliasConstant         = "gone-branches"
	staleBranchesShortDescriptionConstant     = "List local branches whose upstream branch no longer exists"
	runCommandUseConstant                     = "run <command>"
	runCommandAliasConstant                   = "shell"
	runCommandShortDescriptionConstant        = "Run an arbitrary command in every repository and show its output"
	noFetchFlagNameConstant                   = "no-fetch"
	noFetchFlagUsageConstant                  = "Skip fetching origin before reading status."
	argumentSeparatorConstant                 = " "
	noRepositoriesMessageConstant             = "No repos found!"
	outputFormatErrorTemplateConstant         = "invalid output configuration: %w"
	colorModeErrorTemplateConstant            = "invalid color configuration: %w"
	discoveryErrorTemplateConstant            = "unable to discover repositories: %w"
	executorErrorTemplateConstant             = "unable to prepare executor: %w"
	pipelineInterruptedErrorTemplateConstant  = "pipeline interrupted: %w"
	reportRenderErrorTemplateConstant         = "unable to render report: %w"
)

type reportKind int

const (
	reportKindStatusTable reportKind = iota
	reportKindStaleBranches
	reportKindCustomOutput
)

type parametersResolver func(command *cobra.Command, arguments []string) pipeline.Parameters

type pipelineCommandDefinition struct {
	use               string
	aliases           []string
	shortDescription  string
	arguments         cobra.PositionalArgs
	action            pipeline.Action
	report            reportKind
	supportsNoFetch   bool
	resolveParameters parametersResolver
}

var statusCommandDefinition = pipelineCommandDefinition{
	use:               statusCommandUseConstant,
	shortDescription:  statusCommandShortDescriptionConstant,
	arguments:         cobra.NoArgs,
	action:            pipeline.ActionStatus,
	report:            reportKindStatusTable,
	supportsNoFetch:   true,
	resolveParameters: resolveStatusParameters,
}

var pipelineCommandDefinitions = []pipelineCommandDefinition{
	statusCommandDefinition,
	{
		use:              pullCommandUseConstant,
		shortDescription: pullCommandShortDescriptionConstant,
		arguments:        cobra.NoArgs,
		action:           pipeline.ActionPull,
		report:           reportKindStatusTable,
	},
	{
		use:              checkoutCommandUseConstant,
		shortDescription: checkoutCommandShortDescriptionConstant,
		arguments:        cobra.MinimumNArgs(1),
		action:           pipeline.ActionCheckout,
		report:           reportKindStatusTable,
		resolveParameters: func(_ *cobra.Command, arguments []string) pipeline.Parameters {
			return pipeline.Parameters{CheckoutTarget: strings.Join(arguments, argumentSeparatorConstant)}
		},
	},
	{
		use:              checkoutDefaultCommandUseConstant,
		shortDescription: checkoutDefaultShortDescriptionConstant,
		arguments:        cobra.NoArgs,
		action:           pipeline.ActionCheckoutDefault,
		report:           reportKindStatusTable,
	},
	{
		use:              checkoutLatestTagCommandUseConstant,
		shortDescription: checkoutLatestTagShortDescriptionConstant,
		arguments:        cobra.NoArgs,
		action:           pipeline.ActionCheckoutLatestTag,
		report:           reportKindStatusTable,
	},
	{
		use:              staleBranchesCommandUseConstant,
		aliases:          []string{staleBranchesCommandAliasConstant},
		shortDescription: staleBranchesShortDescriptionConstant,
		arguments:        cobra.NoArgs,
		action:           pipeline.ActionStaleBranches,
		report:           reportKindStaleBranches,
	},
	{
		use:              runCommandUseConstant,
		aliases:          []string{runCommandAliasConstant},
		shortDescription: runCommandShortDescriptionConstant,
		arguments:        cobra.MinimumNArgs(1),
		action:           pipeline.ActionRun,
		report:           reportKindCustomOutput,
		resolveParameters: func(_ *cobra.Command, arguments []string) pipeline.Parameters {
			return pipeline.Parameters{CustomCommand: strings.Join(arguments, argumentSeparatorConstant)}
		},
	},
}

func resolveStatusParameters(command *cobra.Command, _ []string) pipeline.Parameters {
	noFetchValue, _ := command.Flags().GetBool(noFetchFlagNameConstant)
	return pipeline.Parameters{NoFetch: noFetchValue}
}

func (definition pipelineCommandDefinition) registerFlags(command *cobra.Command) {
	if definition.supportsNoFetch {
		command.Flags().Bool(noFetchFlagNameConstant, false, noFetchFlagUsageConstant)
	}
}

func (definition pipelineCommandDefinition) parameters(command *cobra.Command, arguments []string) pipeline.Parameters {
	if definition.resolveParameters == nil {
		return pipeline.Parameters{}
	}
	return definition.resolveParameters(command, arguments)
}

func (application *Application) buildPipelineCommand(definition pipelineCommandDefinition) *cobra.Command {
	command := &cobra.Command{
		Use:     definition.use,
		Aliases: definition.aliases,
		Short:   definition.shortDescription,
		Args:    definition.arguments,
		RunE: func(command *cobra.Command, arguments []string) error {
			return application.runPipelineCommand(command, definition, arguments)
		},
	}
	definition.registerFlags(command)
	return command
}

// runPipelineCommand validates user input, discovers repositories, runs the
// action's operations against all of them, and renders the report.
func (application *Application) runPipelineCommand(command *cobra.Command, definition pipelineCommandDefinition, arguments []string) error {
	outputFormat, outputFormatError := report.ParseOutputFormat(application.configuration.Output.Format)
	if outputFormatError != nil {
		return fmt.Errorf(outputFormatErrorTemplateConstant, outputFormatError)
	}
	colorMode, colorModeError := report.ParseColorMode(application.configuration.Output.Color)
	if colorModeError != nil {
		return fmt.Errorf(colorModeErrorTemplateConstant, colorModeError)
	}

	parameters := definition.parameters(command, arguments)
	parameters.Warnings = command.ErrOrStderr()
	parameters.Logger = application.logger
	pipelineOperations, buildError := pipeline.Build(definition.action, parameters)
	if buildError != nil {
		return buildError
	}

	discoverer := discovery.NewRepositoryDiscoverer(application.fileSystem)
	handles, discoveryError := discoverer.DiscoverRepositories(application.configuration.Repositories.Root, discovery.Options{
		NameFilter:      application.configuration.Repositories.NameFilter,
		ExcludePatterns: application.configuration.Repositories.Exclude,
	})
	if discoveryError != nil {
		return fmt.Errorf(discoveryErrorTemplateConstant, discoveryError)
	}

	outputWriter := command.OutOrStdout()
	if len(handles) == 0 {
		fmt.Fprintln(outputWriter, noRepositoriesMessageConstant)
		return nil
	}

	executor, executorError := application.newExecutor()
	if executorError != nil {
		return fmt.Errorf(executorErrorTemplateConstant, executorError)
	}

	progressWriter := outputWriter
	if outputFormat != report.OutputFormatTable {
		progressWriter = command.ErrOrStderr()
	}
	runner := pipeline.NewRunner(executor, shared.NewWriterReporter(progressWriter))

	repositoryStates := state.NewRepositoryStates(handles)
	if runError := runner.Run(command.Context(), pipelineOperations, repositoryStates); runError != nil {
		return fmt.Errorf(pipelineInterruptedErrorTemplateConstant, runError)
	}

	if renderError := renderReport(outputWriter, definition.report, outputFormat, colorMode, repositoryStates); renderError != nil {
		return fmt.Errorf(reportRenderErrorTemplateConstant, renderError)
	}
	return nil
}

func renderReport(writer io.Writer, kind reportKind, outputFormat report.OutputFormat, colorMode report.ColorMode, repositoryStates []*state.RepositoryState) error {
	renderer := report.NewRenderer(writer, report.ColorEnabled(colorMode, writer))
	if outputFormat != report.OutputFormatTable {
		return renderer.Document(repositoryStates, outputFormat)
	}

	switch kind {
	case reportKindStaleBranches:
		renderer.StaleBranches(repositoryStates)
	case reportKindCustomOutput:
		renderer.CustomCommandOutput(repositoryStates)
	default:
		renderer.StatusTable(repositoryStates)
	}
	return nil
}
