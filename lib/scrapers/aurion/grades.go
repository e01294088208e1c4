package aurion

import (
	"context"
	"log/slog"
	"time"

	"aurassist-backend/lib/htmlutil"
	"aurassist-backend/lib/timezone"

	"github.com/PuerkitoBio/goquery"
)

const portalDateLayout = "02/01/2006"

// Grades scrapes the grade carousel off the landing page. Unlike
// absences, no navigation sequence is needed: the portal shows the
// latest marks on the page the session lands on.
func (c *Client) Grades(ctx context.Context) ([]GradeCard, error) {
	ctx, span := tracer.Start(ctx, "client:Grades")
	defer span.End()

	doc, _, err := c.Landing(ctx)
	if err != nil {
		return nil, err
	}
	return ExtractGrades(ctx, doc), nil
}

// ExtractGrades walks the carousel cards and pulls label/grade/date
// triplets. Malformed cards are skipped rather than failing the batch.
func ExtractGrades(ctx context.Context, doc *goquery.Document) []GradeCard {
	var cards []GradeCard

	doc.Find("div.ui-carousel-item").Each(func(i int, card *goquery.Selection) {
		label := htmlutil.CleanText(card.Find("span.libelleNote"))
		grade := htmlutil.CleanText(card.Find("span.noteValeur"))
		dateText := htmlutil.CleanText(card.Find("span.dateNote"))

		if label == "" || grade == "" {
			// empty carousel filler, not a grade
			return
		}

		date, err := time.ParseInLocation(portalDateLayout, dateText, timezone.Location)
		if err != nil {
			slog.WarnContext(
				ctx, "skipping grade card with unparseable date",
				"label", label,
				"date", dateText,
				"err", err,
			)
			return
		}

		cards = append(cards, GradeCard{
			Label: label,
			Grade: grade,
			Date:  date,
		})
	})

	return cards
}
