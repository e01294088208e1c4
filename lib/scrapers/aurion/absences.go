package aurion

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"aurassist-backend/lib/htmlutil"
	"aurassist-backend/lib/timezone"

	"github.com/PuerkitoBio/goquery"
)

// the portal renders a single fake row with this date text instead of
// an empty table
const noAbsenceSentinel = "Aucune absence"

const absenceTableID = "form:table_data"

// Absences navigates to the absence list and extracts its rows.
func (c *Client) Absences(ctx context.Context) ([]Absence, error) {
	ctx, span := tracer.Start(ctx, "client:Absences")
	defer span.End()

	doc, err := c.NavigateTo(ctx, DestAbsences)
	if err != nil {
		return nil, err
	}
	return ExtractAbsences(ctx, doc)
}

// ExtractAbsences walks the absence table. The "no absence" sentinel
// row yields an empty (but valid) result; individually malformed rows
// are skipped best-effort.
func ExtractAbsences(ctx context.Context, doc *goquery.Document) ([]Absence, error) {
	rows := doc.Find("tbody#" + htmlutil.EscapeSelector(absenceTableID) + " tr")
	if rows.Length() == 0 {
		return nil, fmt.Errorf("%w: absence table not found", ErrProtocolMismatch)
	}

	var absences []Absence
	rows.EachWithBreak(func(i int, row *goquery.Selection) bool {
		cells := row.Find("td")
		dateText := htmlutil.CleanText(cells.Eq(0))

		if strings.Contains(dateText, noAbsenceSentinel) {
			absences = nil
			return false
		}

		date, err := time.ParseInLocation(portalDateLayout, dateText, timezone.Location)
		if err != nil {
			slog.WarnContext(
				ctx, "skipping absence row with unparseable date",
				"date", dateText,
				"err", err,
			)
			return true
		}
		duration, err := ParseDuration(htmlutil.CleanText(cells.Eq(2)))
		if err != nil {
			slog.WarnContext(
				ctx, "skipping absence row with unparseable duration",
				"duration", htmlutil.CleanText(cells.Eq(2)),
				"err", err,
			)
			return true
		}

		absences = append(absences, Absence{
			Date:        date,
			Reason:      htmlutil.CleanText(cells.Eq(1)),
			Duration:    duration,
			TimeSlot:    htmlutil.CleanText(cells.Eq(3)),
			CourseLabel: htmlutil.CleanText(cells.Eq(4)),
			Instructors: htmlutil.CleanText(cells.Eq(5)),
			Subject:     htmlutil.CleanText(cells.Eq(6)),
		})
		return true
	})

	return absences, nil
}

// ParseDuration parses the portal's "HHhMM" duration format, e.g.
// "02h00" or "1h30".
func ParseDuration(text string) (time.Duration, error) {
	parts := strings.SplitN(strings.ToLower(text), "h", 2)
	if len(parts) != 2 {
		return 0, fmt.Errorf("malformed duration %q", text)
	}
	hours, err := strconv.Atoi(strings.TrimSpace(parts[0]))
	if err != nil {
		return 0, fmt.Errorf("malformed duration %q: %w", text, err)
	}
	minutes, err := strconv.Atoi(strings.TrimSpace(parts[1]))
	if err != nil {
		return 0, fmt.Errorf("malformed duration %q: %w", text, err)
	}
	return time.Duration(hours)*time.Hour + time.Duration(minutes)*time.Minute, nil
}
