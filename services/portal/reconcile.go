package portal

import (
	"fmt"
	"time"

	"aurassist-backend/lib/scrapers/aurion"
	"aurassist-backend/lib/timezone"
	"aurassist-backend/services/portal/db"

	"github.com/mazen160/go-random"
)

// gradeIdentity is the dedup tuple: two scrapes producing the same
// (label, date, grade) must not create a duplicate persisted row.
type gradeIdentity struct {
	label string
	date  int64
	grade string
}

// mergeGrades reconciles freshly scraped cards against the persisted
// set. It returns the union plus the genuinely new records separately
// (for persistence and notification). Persisted records absent from
// the scrape are never dropped: the portal's carousel is a window over
// recent history, not an authoritative list.
func mergeGrades(persisted []db.Grade, scraped []aurion.GradeCard) (all []GradeRecord, fresh []GradeRecord) {
	seen := map[gradeIdentity]bool{}

	for _, row := range persisted {
		seen[gradeIdentity{label: row.Label, date: row.Date, grade: row.Grade}] = true
		all = append(all, GradeRecord{
			ID:    row.ID,
			Code:  row.Code,
			Label: row.Label,
			Grade: row.Grade,
			Date:  time.Unix(row.Date, 0).In(timezone.Location),
			IsNew: false,
		})
	}

	for _, card := range scraped {
		identity := gradeIdentity{
			label: card.Label,
			date:  card.Date.Unix(),
			grade: card.Grade,
		}
		if seen[identity] {
			continue
		}
		seen[identity] = true

		record := GradeRecord{
			TempID: tempID(),
			Label:  card.Label,
			Grade:  card.Grade,
			Date:   card.Date,
			IsNew:  true,
		}
		all = append(all, record)
		fresh = append(fresh, record)
	}

	return all, fresh
}

func tempID() string {
	id, err := random.String(12)
	if err != nil {
		return fmt.Sprintf("tmp-%d", timezone.Now().UnixNano())
	}
	return id
}
