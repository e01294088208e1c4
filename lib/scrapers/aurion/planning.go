package aurion

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"time"

	"aurassist-backend/lib/textutil"

	ics "github.com/arran4/golang-ical"
	"go.opentelemetry.io/otel/codes"
)

// Planning fetches the student's iCalendar feed and parses it into
// typed events.
func (c *Client) Planning(ctx context.Context) ([]PlanningEvent, error) {
	ctx, span := tracer.Start(ctx, "client:Planning")
	defer span.End()

	res, err := redirectAware(c.Http.R().
		SetContext(ctx).
		Get(planningPath))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "planning request failed")
		return nil, fmt.Errorf("%w: %v", ErrUpstreamUnreachable, err)
	}
	if res.StatusCode() >= 300 && res.StatusCode() < 400 {
		span.SetStatus(codes.Error, "redirected to sign-in")
		return nil, ErrSessionExpired
	}

	return ParsePlanning(ctx, res.Body())
}

// ParsePlanning parses an ICS feed. The portal stuffs the structured
// parts of an event into its free-text description as labeled lines:
//
//	- MATIÈRE : Électronique analogique
//	- GROUPE : S7 TD1
//	- INTERVENANT : DUPONT Jean
//	- TYPE D'ACTIVITÉ : TD
//
// The summary is used as a title fallback when the subject line is
// absent.
func ParsePlanning(ctx context.Context, feed []byte) ([]PlanningEvent, error) {
	cal, err := ics.ParseCalendar(bytes.NewReader(feed))
	if err != nil {
		return nil, fmt.Errorf("%w: unparseable ics feed: %v", ErrProtocolMismatch, err)
	}

	var events []PlanningEvent
	for _, ev := range cal.Events() {
		allDay := false
		start, err := ev.GetStartAt()
		if err != nil {
			start, err = ev.GetAllDayStartAt()
			if err != nil {
				slog.WarnContext(ctx, "skipping event without start", "err", err)
				continue
			}
			allDay = true
		}
		end, err := ev.GetEndAt()
		if err != nil {
			end, err = ev.GetAllDayEndAt()
			if err != nil {
				end = start
			}
		}

		event := PlanningEvent{
			Start:  start,
			End:    end,
			AllDay: allDay,
		}
		if prop := ev.GetProperty(ics.ComponentPropertyLocation); prop != nil {
			event.Location = prop.Value
		}

		summary := ""
		if prop := ev.GetProperty(ics.ComponentPropertySummary); prop != nil {
			summary = prop.Value
		}
		description := ""
		if prop := ev.GetProperty(ics.ComponentPropertyDescription); prop != nil {
			description = prop.Value
		}

		for _, line := range descriptionLines(description) {
			key, value, ok := labeledLine(line)
			if !ok {
				continue
			}
			switch key {
			case "MATIERE":
				event.Title = value
			case "GROUPE":
				event.Group = value
			case "INTERVENANT":
				event.Instructor = value
			case "TYPE D'ACTIVITE":
				event.Type = parseEventType(value)
			}
		}
		if event.Title == "" {
			event.Title = summary
		}

		events = append(events, event)
	}

	return events, nil
}

// descriptionLines splits an ICS description on both real and
// still-escaped newlines, feeds differ on which they emit.
func descriptionLines(description string) []string {
	description = strings.ReplaceAll(description, `\n`, "\n")
	return strings.Split(description, "\n")
}

func labeledLine(line string) (key, value string, ok bool) {
	line = strings.TrimSpace(line)
	if !strings.HasPrefix(line, "- ") {
		return "", "", false
	}
	key, value, found := strings.Cut(line[2:], ":")
	if !found {
		return "", "", false
	}
	key = strings.ToUpper(strings.TrimSpace(textutil.StripDiacritics(key)))
	return key, strings.TrimSpace(value), true
}

func parseEventType(value string) EventType {
	switch strings.ToUpper(strings.TrimSpace(textutil.StripDiacritics(value))) {
	case "COURS", "CM":
		return EventLecture
	case "EXAMEN", "DS", "CONTROLE":
		return EventExam
	case "TRAVAIL AUTONOME":
		return EventIndependentWork
	case "TD":
		return EventTutorial
	case "TP":
		return EventPractical
	case "REPAS":
		return EventMeal
	case "PROJET":
		return EventProject
	}
	return EventOther
}

// FilterBusinessDays drops weekend events: the school never schedules
// them and the dashboard doesn't render those columns.
func FilterBusinessDays(events []PlanningEvent) []PlanningEvent {
	var out []PlanningEvent
	for _, ev := range events {
		switch ev.Start.Weekday() {
		case time.Saturday, time.Sunday:
			continue
		}
		out = append(out, ev)
	}
	return out
}

// AssignLanes gives overlapping events non-overlapping horizontal
// display lanes, greedily packing each event into the lowest lane that
// is free at its start time. Purely presentational, but deterministic
// so it lives next to the data it describes.
func AssignLanes(events []PlanningEvent) []PlanningEvent {
	out := make([]PlanningEvent, len(events))
	copy(out, events)
	slices.SortStableFunc(out, func(a, b PlanningEvent) int {
		return a.Start.Compare(b.Start)
	})

	var laneEnds []time.Time
	for i := range out {
		assigned := false
		for lane, end := range laneEnds {
			if !out[i].Start.Before(end) {
				out[i].Lane = lane
				laneEnds[lane] = out[i].End
				assigned = true
				break
			}
		}
		if !assigned {
			out[i].Lane = len(laneEnds)
			laneEnds = append(laneEnds, out[i].End)
		}
	}
	return out
}
