package operations

import (
	"strconv"
	"strings"
)

const (
	porcelainHeaderPrefixConstant          = "# "
	porcelainObjectIDHeaderConstant        = "# branch.oid"
	porcelainHeadHeaderConstant            = "# branch.head"
	porcelainUpstreamHeaderConstant        = "# branch.upstream"
	porcelainAheadBehindHeaderConstant     = "# branch.ab"
	porcelainDetachedHeadConstant          = "(detached)"
	porcelainInitialObjectIDConstant       = "(initial)"
	porcelainAheadBehindFieldCountConstant = 2
)

// BranchStatus holds the branch headers and cleanliness reported by
// git status --porcelain=v2 --branch.
type BranchStatus struct {
	ObjectID      string
	Head          *string
	Detached      bool
	Upstream      *string
	CommitsAhead  *int
	CommitsBehind *int
	IsClean       bool
}

// ParseBranchStatus interprets porcelain v2 output. Head is nil when the head
// header is missing, and the counts are nil when the ahead/behind header is missing.
func ParseBranchStatus(output string) BranchStatus {
	branchStatus := BranchStatus{IsClean: true}
	for _, rawLine := range strings.Split(output, "\n") {
		line := strings.TrimRight(rawLine, "\r")
		if len(strings.TrimSpace(line)) == 0 {
			continue
		}
		if !strings.HasPrefix(line, porcelainHeaderPrefixConstant) {
			branchStatus.IsClean = false
			continue
		}

		if value, matched := headerValue(line, porcelainObjectIDHeaderConstant); matched {
			if value != porcelainInitialObjectIDConstant {
				branchStatus.ObjectID = value
			}
			continue
		}
		if value, matched := headerValue(line, porcelainHeadHeaderConstant); matched {
			head := value
			branchStatus.Head = &head
			branchStatus.Detached = value == porcelainDetachedHeadConstant
			continue
		}
		if value, matched := headerValue(line, porcelainUpstreamHeaderConstant); matched {
			upstream := value
			branchStatus.Upstream = &upstream
			continue
		}
		if value, matched := headerValue(line, porcelainAheadBehindHeaderConstant); matched {
			ahead, behind, parsed := parseAheadBehind(value)
			if parsed {
				branchStatus.CommitsAhead = &ahead
				branchStatus.CommitsBehind = &behind
			}
		}
	}
	return branchStatus
}

func headerValue(line string, header string) (string, bool) {
	if !strings.HasPrefix(line, header) {
		return "", false
	}
	remainder := line[len(header):]
	if len(remainder) > 0 && remainder[0] != ' ' && remainder[0] != '\t' {
		return "", false
	}
	return strings.TrimSpace(remainder), true
}

func parseAheadBehind(value string) (int, int, bool) {
	fields := strings.Fields(value)
	if len(fields) != porcelainAheadBehindFieldCountConstant {
		return 0, 0, false
	}
	ahead, aheadParsed := parseSignedCount(fields[0])
	behind, behindParsed := parseSignedCount(fields[1])
	if !aheadParsed || !behindParsed {
		return 0, 0, false
	}
	return ahead, behind, true
}

func parseSignedCount(field string) (int, bool) {
	if len(field) < 2 || (field[0] != '+' && field[0] != '-') {
		return 0, false
	}
	count, parseError := strconv.Atoi(field[1:])
	if parseError != nil || count < 0 {
		return 0, false
	}
	return count, true
}
