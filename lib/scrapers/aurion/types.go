package aurion

import "time"

// GradeCard is one entry of the landing page's grade carousel. The
// course code is not part of the card markup, it is recovered later by
// the course matcher.
type GradeCard struct {
	Label string
	// either a 0-20 mark ("14,5") or a symbolic marker ("ABS")
	Grade string
	Date  time.Time
}

type Absence struct {
	Date time.Time
	// empty means unjustified
	Reason      string
	Duration    time.Duration
	TimeSlot    string
	CourseLabel string
	Instructors string
	Subject     string
}

type EventType int

const (
	EventOther EventType = iota
	EventLecture
	EventExam
	EventIndependentWork
	EventTutorial
	EventPractical
	EventMeal
	EventProject
)

func (t EventType) String() string {
	switch t {
	case EventLecture:
		return "lecture"
	case EventExam:
		return "exam"
	case EventIndependentWork:
		return "independent-work"
	case EventTutorial:
		return "tutorial"
	case EventPractical:
		return "practical"
	case EventMeal:
		return "meal"
	case EventProject:
		return "project"
	}
	return "other"
}

type PlanningEvent struct {
	Title      string
	Start      time.Time
	End        time.Time
	Location   string
	Instructor string
	Group      string
	Type       EventType
	AllDay     bool
	// horizontal display lane, filled in by AssignLanes
	Lane int
}
