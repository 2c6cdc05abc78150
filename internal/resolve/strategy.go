package resolve

// DepartmentStrategy decides whether a tally of departments observed
// among a document's matched Links is lopsided enough to adopt one
// department as a hard filter for the document's remaining unmatched
// Links (spec.md §4.6 Phase 2). It is an explicit object the Engine
// holds, replacing the source's runtime swap of a bare guess_department
// function attribute (Design Note, spec.md §9).
type DepartmentStrategy interface {
	Guess(tally map[string]int) (dept string, ok bool)
}

// exclusionaryStrategy implements the variant spec.md §9's Open Question
// adopts: departments already carrying the inferred-department marker
// ("*") are excluded from the tally before the majority/sole-candidate
// thresholds are evaluated, so an already-forced department can't
// reinforce its own adoption. The competing, non-exclusionary variant
// that counted starred departments too is not implemented; callers that
// need it can supply their own DepartmentStrategy.
type exclusionaryStrategy struct{}

// NewDepartmentStrategy returns the exclusionary DepartmentStrategy this
// implementation standardizes on.
func NewDepartmentStrategy() DepartmentStrategy {
	return exclusionaryStrategy{}
}

// Guess applies spec.md §4.6's thresholds: a department is adopted when
// it holds either (a) more than 70% of tallied counts and the total
// tallied count exceeds 20, or (b) it is the only department with a
// count of at least 5.
func (exclusionaryStrategy) Guess(tally map[string]int) (string, bool) {
	filtered := make(map[string]int, len(tally))
	total := 0
	for dept, count := range tally {
		if isStarred(dept) {
			continue
		}
		filtered[dept] = count
		total += count
	}
	if len(filtered) == 0 {
		return "", false
	}

	var bestDept string
	bestCount := -1
	for dept, count := range filtered {
		if count > bestCount {
			bestDept, bestCount = dept, count
		}
	}

	if total > 0 && float64(bestCount)/float64(total) > 0.70 && total > 20 {
		return bestDept, true
	}

	atLeastFive := 0
	var onlyDept string
	for dept, count := range filtered {
		if count >= 5 {
			atLeastFive++
			onlyDept = dept
		}
	}
	if atLeastFive == 1 {
		return onlyDept, true
	}
	return "", false
}

func isStarred(dept string) bool {
	return len(dept) > 0 && dept[len(dept)-1] == '*'
}
