package portal

import (
	"slices"
	"strings"

	"aurassist-backend/lib/scrapers/aurion"
)

// at or beyond this share of missed instructional hours the school
// fails the course automatically
const FailureThresholdPercent = 20.0

type AbsenceStat struct {
	Code             string  `json:"code"`
	UnjustifiedHours float64 `json:"unjustified_hours"`
	TotalHours       float64 `json:"total_hours"`
	Percent          float64 `json:"percent"`
	AboveThreshold   bool    `json:"above_threshold"`
}

// ComputeAbsenceStats accumulates unjustified absence hours per
// matched course and expresses them as a percentage of the course's
// instructional-hours budget. Absences whose label matches no catalog
// entry are excluded rather than guessed at.
func ComputeAbsenceStats(absences []aurion.Absence, catalog []CourseWeight) []AbsenceStat {
	hoursByCode := map[string]float64{}
	totalByCode := map[string]float64{}

	for _, absence := range absences {
		if absence.Reason != "" {
			continue
		}
		course, ok := MatchCourse(absence.CourseLabel, catalog)
		if !ok || course.TotalHours <= 0 {
			continue
		}
		hoursByCode[course.Code] += absence.Duration.Hours()
		totalByCode[course.Code] = course.TotalHours
	}

	stats := make([]AbsenceStat, 0, len(hoursByCode))
	for code, hours := range hoursByCode {
		percent := hours / totalByCode[code] * 100
		stats = append(stats, AbsenceStat{
			Code:             code,
			UnjustifiedHours: hours,
			TotalHours:       totalByCode[code],
			Percent:          percent,
			AboveThreshold:   percent >= FailureThresholdPercent,
		})
	}
	slices.SortFunc(stats, func(a, b AbsenceStat) int {
		return strings.Compare(a.Code, b.Code)
	})
	return stats
}
