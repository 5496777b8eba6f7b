package utils

import (
	"fmt"
	"strings"
)

const (
	choiceSeparatorConstant     = "|"
	choiceUsageTemplateConstant = "%s (%s)"
)

// FormatChoiceUsage appends the accepted values to a flag description,
// upper-casing the default so it stands out in help output.
func FormatChoiceUsage(description string, defaultChoice string, choices ...string) string {
	displayed := make([]string, 0, len(choices))
	for _, choice := range choices {
		if strings.EqualFold(choice, defaultChoice) {
			displayed = append(displayed, strings.ToUpper(choice))
			continue
		}
		displayed = append(displayed, choice)
	}
	return fmt.Sprintf(choiceUsageTemplateConstant, description, strings.Join(displayed, choiceSeparatorConstant))
}
