package report

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"

	"github.com/fatih/color"
	"gopkg.in/yaml.v3"

	"github.com/temirov/repostates/internal/repos/state"
)

const (
	repositoryHeaderConstant        = "REPOSITORY"
	branchHeaderConstant            = "BRANCH"
	aheadHeaderConstant             = "AHEAD"
	behindHeaderConstant            = "BEHIND"
	statusHeaderConstant            = "STATUS"
	notAvailableConstant            = "N/A"
	dirtyMarkerConstant             = "*"
	noBranchLabelConstant           = "-- No branch --"
	tagReferenceTemplateConstant    = "(tag) %s"
	commitReferenceTemplateConstant = "(commit) %s"
	columnMarginConstant            = 3
	staleBranchesTitleConstant      = "ALREADY GONE BRANCHES:"
	staleBranchLineTemplateConstant = "  ↳ %s\n"
	notDeterminedLineConstant       = "  not determined\n"
	customOutputTitleConstant       = "CUSTOM COMMAND OUTPUT:"
	exitCodeLineTemplateConstant    = "  exit code: %s\n"
	streamHeaderTemplateConstant    = "  %s:\n"
	streamLineTemplateConstant      = "    %s\n"
	standardOutputLabelConstant     = "stdout"
	standardErrorLabelConstant      = "stderr"
	jsonIndentConstant              = "  "
	yamlIndentConstant              = 2
	documentEncodeErrorTemplate     = "unable to encode %s report: %w"
)

// Renderer writes reports for a set of repository states.
type Renderer struct {
	writer  io.Writer
	palette palette
}

type palette struct {
	header   *color.Color
	name     *color.Color
	accent   *color.Color
	statuses map[state.Status]*color.Color
}

func newPalette(colorEnabled bool) palette {
	configured := func(attributes ...color.Attribute) *color.Color {
		colorInstance := color.New(attributes...)
		if colorEnabled {
			colorInstance.EnableColor()
		} else {
			colorInstance.DisableColor()
		}
		return colorInstance
	}
	return palette{
		header: configured(color.FgBlue),
		name:   configured(color.FgGreen),
		accent: configured(color.FgRed),
		statuses: map[state.Status]*color.Color{
			state.StatusOK:       configured(color.FgGreen),
			state.StatusModerate: configured(color.FgYellow),
			state.StatusCritical: configured(color.FgRed),
		},
	}
}

// NewRenderer constructs a Renderer writing to writer.
func NewRenderer(writer io.Writer, colorEnabled bool) *Renderer {
	return &Renderer{writer: writer, palette: newPalette(colorEnabled)}
}

// SortByName returns the states ordered by repository name without modifying the input.
func SortByName(repositoryStates []*state.RepositoryState) []*state.RepositoryState {
	sorted := append([]*state.RepositoryState(nil), repositoryStates...)
	sort.SliceStable(sorted, func(leftIndex int, rightIndex int) bool {
		return sorted[leftIndex].Name() < sorted[rightIndex].Name()
	})
	return sorted
}

// ReferenceLabel renders the checked-out reference with a dirty marker.
func ReferenceLabel(repositoryState *state.RepositoryState) string {
	var label string
	switch repositoryState.ReferenceKind {
	case state.ReferenceKindUnknown:
		label = noBranchLabelConstant
	case state.ReferenceKindTag:
		label = fmt.Sprintf(tagReferenceTemplateConstant, optionalString(repositoryState.Reference))
	case state.ReferenceKindCommit, state.ReferenceKindDetached:
		label = fmt.Sprintf(commitReferenceTemplateConstant, optionalString(repositoryState.Reference))
	default:
		label = optionalString(repositoryState.Reference)
	}
	if !repositoryState.IsClean && repositoryState.ReferenceKind != state.ReferenceKindUnknown {
		return dirtyMarkerConstant + label
	}
	return label
}

// StatusTable writes one row per repository, colored by derived status.
func (renderer *Renderer) StatusTable(repositoryStates []*state.RepositoryState) {
	sorted := SortByName(repositoryStates)
	rows := make([][]string, 0, len(sorted))
	for _, repositoryState := range sorted {
		rows = append(rows, []string{
			repositoryState.Name(),
			ReferenceLabel(repositoryState),
			optionalInt(repositoryState.CommitsAhead),
			optionalInt(repositoryState.CommitsBehind),
			string(state.Classify(repositoryState)),
		})
	}

	headers := []string{repositoryHeaderConstant, branchHeaderConstant, aheadHeaderConstant, behindHeaderConstant, statusHeaderConstant}
	widths := columnWidths(headers, rows)

	fmt.Fprintln(renderer.writer)
	renderer.palette.header.Fprintln(renderer.writer, formatRow(headers, widths))
	for rowIndex, row := range rows {
		statusColor := renderer.palette.statuses[state.Classify(sorted[rowIndex])]
		statusColor.Fprintln(renderer.writer, formatRow(row, widths))
	}
}

// StaleBranches lists each repository followed by its branches whose upstream is gone.
func (renderer *Renderer) StaleBranches(repositoryStates []*state.RepositoryState) {
	fmt.Fprintln(renderer.writer)
	renderer.palette.header.Fprintln(renderer.writer, staleBranchesTitleConstant)
	fmt.Fprintln(renderer.writer)
	for _, repositoryState := range SortByName(repositoryStates) {
		renderer.palette.name.Fprintln(renderer.writer, repositoryState.Name())
		if !repositoryState.StaleBranchesKnown {
			fmt.Fprint(renderer.writer, notDeterminedLineConstant)
			continue
		}
		for _, branchName := range repositoryState.StaleBranches {
			renderer.palette.accent.Fprintf(renderer.writer, staleBranchLineTemplateConstant, branchName)
		}
	}
}

// CustomCommandOutput lists the exit code and output streams recorded for each repository.
func (renderer *Renderer) CustomCommandOutput(repositoryStates []*state.RepositoryState) {
	fmt.Fprintln(renderer.writer)
	renderer.palette.header.Fprintln(renderer.writer, customOutputTitleConstant)
	for _, repositoryState := range SortByName(repositoryStates) {
		fmt.Fprintln(renderer.writer)
		nameColor := renderer.palette.name
		if repositoryState.CustomExitCode == nil || *repositoryState.CustomExitCode != 0 {
			nameColor = renderer.palette.accent
		}
		nameColor.Fprintln(renderer.writer, repositoryState.Name())
		fmt.Fprintf(renderer.writer, exitCodeLineTemplateConstant, optionalInt(repositoryState.CustomExitCode))
		renderer.writeStream(standardOutputLabelConstant, repositoryState.CustomOutput)
		renderer.writeStream(standardErrorLabelConstant, repositoryState.CustomError)
	}
}

func (renderer *Renderer) writeStream(label string, content *string) {
	if content == nil {
		return
	}
	trimmed := strings.TrimRight(*content, "\n")
	if len(strings.TrimSpace(trimmed)) == 0 {
		return
	}
	fmt.Fprintf(renderer.writer, streamHeaderTemplateConstant, label)
	for _, line := range strings.Split(trimmed, "\n") {
		fmt.Fprintf(renderer.writer, streamLineTemplateConstant, line)
	}
}

// Document writes a serializable snapshot of every state in the requested format.
func (renderer *Renderer) Document(repositoryStates []*state.RepositoryState, format OutputFormat) error {
	document := NewDocument(repositoryStates)
	switch format {
	case OutputFormatJSON:
		encoder := json.NewEncoder(renderer.writer)
		encoder.SetIndent("", jsonIndentConstant)
		if encodeError := encoder.Encode(document); encodeError != nil {
			return fmt.Errorf(documentEncodeErrorTemplate, format, encodeError)
		}
		return nil
	case OutputFormatYAML:
		encoder := yaml.NewEncoder(renderer.writer)
		encoder.SetIndent(yamlIndentConstant)
		if encodeError := encoder.Encode(document); encodeError != nil {
			return fmt.Errorf(documentEncodeErrorTemplate, format, encodeError)
		}
		if closeError := encoder.Close(); closeError != nil {
			return fmt.Errorf(documentEncodeErrorTemplate, format, closeError)
		}
		return nil
	default:
		return fmt.Errorf(unsupportedValueTemplateConstant, ErrUnsupportedOutputFormat, format)
	}
}

func columnWidths(headers []string, rows [][]string) []int {
	widths := make([]int, len(headers))
	for columnIndex, header := range headers {
		widths[columnIndex] = displayWidth(header)
	}
	for _, row := range rows {
		for columnIndex, cell := range row {
			if cellWidth := displayWidth(cell); cellWidth > widths[columnIndex] {
				widths[columnIndex] = cellWidth
			}
		}
	}
	return widths
}

func formatRow(cells []string, widths []int) string {
	var builder strings.Builder
	for columnIndex, cell := range cells {
		if columnIndex == len(cells)-1 {
			builder.WriteString(cell)
			break
		}
		builder.WriteString(cell)
		builder.WriteString(strings.Repeat(" ", widths[columnIndex]-displayWidth(cell)+columnMarginConstant))
	}
	return builder.String()
}

func displayWidth(value string) int {
	return len([]rune(value))
}

func optionalString(value *string) string {
	if value == nil {
		return notAvailableConstant
	}
	return *value
}

func optionalInt(value *int) string {
	if value == nil {
		return notAvailableConstant
	}
	return strconv.Itoa(*value)
}
