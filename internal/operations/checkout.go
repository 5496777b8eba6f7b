package operations

import (
	"fmt"
	"strings"

	"github.com/temirov/repostates/internal/execshell"
	"github.com/temirov/repostates/internal/repos/state"
)

const (
	checkoutNameConstant                 = "checkout"
	checkoutMessageTemplateConstant      = "Running git checkout %s..."
	gitCheckoutSubcommandConstant        = "checkout"
	checkoutTargetSeparatorConstant      = ";"
	checkoutDefaultBranchNameConstant    = "checkout-default-branch"
	checkoutDefaultBranchMessageConstant = "Checking out default branches..."
	checkoutLatestTagNameConstant        = "checkout-latest-release-tag"
	checkoutLatestTagMessageConstant     = "Checking out latest release tags..."
)

// SanitizeCheckoutTarget keeps the first whitespace-delimited token of the
// target and truncates it at the first semicolon. The boolean reports whether
// the value changed.
func SanitizeCheckoutTarget(target string) (string, bool) {
	fields := strings.Fields(target)
	if len(fields) == 0 {
		return "", len(target) > 0
	}
	sanitized, _, _ := strings.Cut(fields[0], checkoutTargetSeparatorConstant)
	return sanitized, sanitized != target
}

// Checkout switches every repository to a user-supplied branch, tag, or commit.
type Checkout struct {
	target         string
	originalTarget string
}

// NewCheckout sanitizes the target and constructs the operation.
func NewCheckout(target string) Checkout {
	sanitized, _ := SanitizeCheckoutTarget(target)
	return Checkout{target: sanitized, originalTarget: target}
}

// Target returns the sanitized checkout target.
func (checkout Checkout) Target() string { return checkout.target }

// OriginalTarget returns the target as supplied.
func (checkout Checkout) OriginalTarget() string { return checkout.originalTarget }

// WasSanitized reports whether the supplied target had to be truncated.
func (checkout Checkout) WasSanitized() bool { return checkout.target != checkout.originalTarget }

// Name identifies the operation.
func (Checkout) Name() string { return checkoutNameConstant }

// Message returns the progress label.
func (checkout Checkout) Message() string {
	return fmt.Sprintf(checkoutMessageTemplateConstant, checkout.target)
}

// Requires returns no stages.
func (Checkout) Requires() []state.Stage { return nil }

// Provides no stages.
func (Checkout) Provides() []state.Stage { return nil }

// IsRelevant applies to every repository.
func (Checkout) IsRelevant(repositoryState *state.RepositoryState) bool {
	return alwaysRelevant(repositoryState)
}

// BuildCommand returns git checkout <target>.
func (checkout Checkout) BuildCommand(repositoryState *state.RepositoryState) execshell.ShellCommand {
	return buildGitCommand(repositoryState, gitCheckoutSubcommandConstant, checkout.target)
}

// ApplyResult leaves the state untouched.
func (Checkout) ApplyResult(*state.RepositoryState, execshell.ExecutionResult) {}

// CheckoutField selects the probed state field that names a checkout target.
type CheckoutField int

// Checkout fields.
const (
	CheckoutFieldDefaultBranch CheckoutField = iota
	CheckoutFieldLatestReleaseTag
)

// CheckoutSpecial switches each repository to a target recorded by an earlier probe.
type CheckoutSpecial struct {
	field CheckoutField
}

// NewCheckoutSpecial constructs a checkout driven by the selected state field.
func NewCheckoutSpecial(field CheckoutField) CheckoutSpecial {
	return CheckoutSpecial{field: field}
}

// Field returns the state field the operation reads.
func (checkout CheckoutSpecial) Field() CheckoutField { return checkout.field }

// Name identifies the operation.
func (checkout CheckoutSpecial) Name() string {
	if checkout.field == CheckoutFieldLatestReleaseTag {
		return checkoutLatestTagNameConstant
	}
	return checkoutDefaultBranchNameConstant
}

// Message returns the progress label.
func (checkout CheckoutSpecial) Message() string {
	if checkout.field == CheckoutFieldLatestReleaseTag {
		return checkoutLatestTagMessageConstant
	}
	return checkoutDefaultBranchMessageConstant
}

// Requires the probe that populates the field.
func (checkout CheckoutSpecial) Requires() []state.Stage {
	if checkout.field == CheckoutFieldLatestReleaseTag {
		return []state.Stage{state.StageLatestTagProbed}
	}
	return []state.Stage{state.StageDefaultBranchProbed}
}

// Provides no stages.
func (CheckoutSpecial) Provides() []state.Stage { return nil }

// IsRelevant selects repositories whose field has been populated.
func (checkout CheckoutSpecial) IsRelevant(repositoryState *state.RepositoryState) bool {
	return checkout.targetValue(repositoryState) != nil
}

// BuildCommand returns git checkout <field value>.
func (checkout CheckoutSpecial) BuildCommand(repositoryState *state.RepositoryState) execshell.ShellCommand {
	var target string
	if value := checkout.targetValue(repositoryState); value != nil {
		target = *value
	}
	return buildGitCommand(repositoryState, gitCheckoutSubcommandConstant, target)
}

// ApplyResult leaves the state untouched.
func (CheckoutSpecial) ApplyResult(*state.RepositoryState, execshell.ExecutionResult) {}

func (checkout CheckoutSpecial) targetValue(repositoryState *state.RepositoryState) *string {
	if checkout.field == CheckoutFieldLatestReleaseTag {
		return repositoryState.LatestReleaseTag
	}
	return repositoryState.DefaultBranch
}
