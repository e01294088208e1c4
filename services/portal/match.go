package portal

import (
	"strings"

	"aurassist-backend/lib/textutil"

	"github.com/antzucaro/matchr"
)

// CourseWeight is one reference-catalog entry: a canonical course code
// with the keywords that identify it in free-text session labels and
// its total instructional-hours budget.
type CourseWeight struct {
	Code       string   `json:"code"`
	Semester   string   `json:"semester"`
	Keywords   []string `json:"keywords"`
	TotalHours float64  `json:"total_hours"`
}

// MatchCourse maps a free-text course-session label to a canonical
// course code. The portal's labels are inconsistent and carry no
// codes, so this is a best-effort keyword scorer:
//
//   - only catalog entries whose semester tag occurs in the label are
//     considered
//   - each keyword contained in the normalized label adds
//     10+len(keyword), each miss subtracts 5
//   - entries with no keyword hit at all are discarded outright
//   - highest strictly-positive score wins, first entry wins ties
//
// Unmatched labels are simply excluded from statistics; a negative or
// zero net score must never attribute hours to a course.
func MatchCourse(label string, catalog []CourseWeight) (CourseWeight, bool) {
	normalized := textutil.NormalizeLabel(label)

	var best CourseWeight
	bestScore := 0
	found := false

	for _, entry := range catalog {
		if !strings.Contains(normalized, textutil.NormalizeLabel(entry.Semester)) {
			continue
		}

		score := 0
		hits := 0
		for _, keyword := range entry.Keywords {
			if strings.Contains(normalized, textutil.NormalizeLabel(keyword)) {
				score += 10 + len(keyword)
				hits++
			} else {
				score -= 5
			}
		}
		if hits == 0 {
			continue
		}
		if score > bestScore {
			best = entry
			bestScore = score
			found = true
		}
	}

	return best, found
}

// Suggest returns the catalog code whose normalized code is closest to
// the label by Jaro-Winkler distance. Diagnostics only: it never feeds
// attribution, since it will happily return a bad match.
func Suggest(label string, catalog []CourseWeight) string {
	normalized := textutil.NormalizeLabel(label)

	best := ""
	var bestSim float64
	for _, entry := range catalog {
		sim := matchr.JaroWinkler(normalized, textutil.NormalizeLabel(entry.Code), false)
		if sim > bestSim {
			bestSim = sim
			best = entry.Code
		}
	}
	return best
}
