package portal

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"time"

	"aurassist-backend/lib/ratelimit"
	"aurassist-backend/lib/scrapers/aurion"
	"aurassist-backend/lib/timezone"
	"aurassist-backend/services/portal/db"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

var tracer = otel.Tracer("services/portal")

const (
	defaultSessionTTL    = 45 * time.Minute
	defaultScrapeTimeout = 10 * time.Second
)

type Options struct {
	// portal origin, e.g. https://aurion.example.fr
	BaseUrl string
	// how long a stored session token is trusted before we force a
	// fresh login
	SessionTTL time.Duration
	// per-request timeout handed to the scraper client
	ScrapeTimeout time.Duration
	// guards the login path; nil disables limiting
	Limiter ratelimit.Limiter
	// told about new grades after a merge; nil disables notification
	Notifier Notifier
	// course-weight catalog; nil falls back to the embedded one
	Weights []CourseWeight
}

type Service struct {
	options Options
	qry     *db.Queries
	sqldb   *sql.DB
}

func NewService(sqldb *sql.DB, options Options) *Service {
	if options.SessionTTL <= 0 {
		options.SessionTTL = defaultSessionTTL
	}
	if options.ScrapeTimeout <= 0 {
		options.ScrapeTimeout = defaultScrapeTimeout
	}
	if options.Notifier == nil {
		options.Notifier = NoopNotifier{}
	}
	if options.Weights == nil {
		options.Weights = DefaultCourseWeights()
	}
	return &Service{
		options: options,
		qry:     db.New(sqldb),
		sqldb:   sqldb,
	}
}

func (s *Service) newClient() (*aurion.Client, error) {
	return aurion.NewClient(aurion.ClientOptions{
		BaseUrl: s.options.BaseUrl,
		Timeout: s.options.ScrapeTimeout,
	})
}

// Login authenticates against the portal and stores the issued session
// token. The rate limiter is consulted before any upstream I/O so a
// brute-force run cannot hammer the school's server through us.
func (s *Service) Login(ctx context.Context, username, password string) RecordSet[LoginData] {
	ctx, span := tracer.Start(ctx, "Login")
	defer span.End()

	if !aurion.ValidUsername(username) {
		return failure[LoginData]("malformed username, expected the 0000-0000 form")
	}
	if s.options.Limiter != nil && !s.options.Limiter.Allow(username) {
		slog.WarnContext(ctx, "login rate limited", "username", username)
		return recordFailure[LoginData](span, ratelimit.ErrRateLimited, "too many login attempts, try again later")
	}

	client, err := s.newClient()
	if err != nil {
		return recordFailure[LoginData](span, err, "internal error")
	}

	token, err := client.Login(ctx, username, password)
	switch {
	case errors.Is(err, aurion.ErrBadCredentials):
		return failure[LoginData]("the portal rejected these credentials")
	case errors.Is(err, aurion.ErrUpstreamUnreachable):
		return recordFailure[LoginData](span, err, "the portal is unreachable, try again later")
	case err != nil:
		return recordFailure[LoginData](span, err, "login failed")
	}

	now := timezone.Now()
	expiresAt := now.Add(s.options.SessionTTL)
	err = s.qry.CreateSession(ctx, db.CreateSessionParams{
		Username:  username,
		Token:     token,
		IssuedAt:  now.Unix(),
		ExpiresAt: expiresAt.Unix(),
	})
	if err != nil {
		return recordFailure[LoginData](span, err, "could not persist session")
	}

	slog.InfoContext(ctx, "logged in", "username", username)
	return success(LoginData{
		Username:  username,
		Token:     token,
		ExpiresAt: expiresAt,
	})
}

// Logout drops the stored session and tells the portal to invalidate
// the server side of it. The local delete wins even when the upstream
// call fails.
func (s *Service) Logout(ctx context.Context, username string) RecordSet[struct{}] {
	ctx, span := tracer.Start(ctx, "Logout")
	defer span.End()

	session, err := s.qry.GetSession(ctx, username)
	if errors.Is(err, sql.ErrNoRows) {
		return success(struct{}{})
	}
	if err != nil {
		return recordFailure[struct{}](span, err, "could not read session")
	}

	if err := s.qry.DeleteSession(ctx, username); err != nil {
		return recordFailure[struct{}](span, err, "could not drop session")
	}

	client, err := s.newClient()
	if err == nil {
		client.SeedSession(session.Token)
		if err := client.Logout(ctx); err != nil {
			slog.WarnContext(ctx, "upstream logout failed", "err", err)
		}
	}

	return success(struct{}{})
}

// session returns a scraper client seeded with the user's stored
// token, or a user-facing message when no usable session exists.
func (s *Service) session(ctx context.Context, username string) (*aurion.Client, string, error) {
	session, err := s.qry.GetSession(ctx, username)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, "not logged in", err
	}
	if err != nil {
		return nil, "could not read session", err
	}
	if timezone.Now().Unix() >= session.ExpiresAt {
		_ = s.qry.DeleteSession(ctx, username)
		return nil, "session expired, log in again", aurion.ErrSessionExpired
	}

	client, err := s.newClient()
	if err != nil {
		return nil, "internal error", err
	}
	client.SeedSession(session.Token)
	return client, "", nil
}

// expireOn drops the stored session when the scraper reports the
// portal no longer honors its token.
func (s *Service) expireOn(ctx context.Context, username string, err error) {
	if errors.Is(err, aurion.ErrSessionExpired) {
		_ = s.qry.DeleteSession(ctx, username)
	}
}

// Grades scrapes the grade carousel, merges it against the persisted
// set and stores anything new. Newly detected records are flagged and
// handed to the notifier.
func (s *Service) Grades(ctx context.Context, username string) RecordSet[GradesData] {
	ctx, span := tracer.Start(ctx, "Grades")
	defer span.End()

	client, message, err := s.session(ctx, username)
	if err != nil {
		return recordFailure[GradesData](span, err, message)
	}

	cards, err := client.Grades(ctx)
	if err != nil {
		s.expireOn(ctx, username, err)
		return recordFailure[GradesData](span, err, scrapeMessage(err))
	}

	persisted, err := s.qry.GetGrades(ctx, username)
	if err != nil {
		return recordFailure[GradesData](span, err, "could not read stored grades")
	}

	all, _ := mergeGrades(persisted, cards)
	for i := range all {
		if all[i].Code == "" {
			if course, ok := MatchCourse(all[i].Label, s.options.Weights); ok {
				all[i].Code = course.Code
			}
		}
	}

	// rebuilt after matching so notified and returned records carry
	// the same course code as the merged view
	var fresh []GradeRecord
	for _, record := range all {
		if !record.IsNew {
			continue
		}
		fresh = append(fresh, record)
		err := s.qry.CreateGrade(ctx, db.CreateGradeParams{
			Username: username,
			Code:     record.Code,
			Label:    record.Label,
			Grade:    record.Grade,
			Date:     record.Date.Unix(),
		})
		if err != nil {
			return recordFailure[GradesData](span, err, "could not persist grades")
		}
	}

	if len(fresh) > 0 {
		if err := s.options.Notifier.NotifyNewGrades(ctx, username, fresh); err != nil {
			slog.WarnContext(ctx, "grade notification failed", "err", err)
		}
	}

	return success(GradesData{Grades: all, New: fresh})
}

// Absences navigates to the absence table, extracts it and derives the
// per-course failure statistics.
func (s *Service) Absences(ctx context.Context, username string) RecordSet[AbsencesData] {
	ctx, span := tracer.Start(ctx, "Absences")
	defer span.End()

	client, message, err := s.session(ctx, username)
	if err != nil {
		return recordFailure[AbsencesData](span, err, message)
	}

	absences, err := client.Absences(ctx)
	if err != nil {
		s.expireOn(ctx, username, err)
		return recordFailure[AbsencesData](span, err, scrapeMessage(err))
	}

	return success(AbsencesData{
		Total:   len(absences),
		Records: absences,
		Stats:   ComputeAbsenceStats(absences, s.options.Weights),
	})
}

// Planning fetches the ICS feed, drops weekend events and lays
// overlapping ones out into display lanes.
func (s *Service) Planning(ctx context.Context, username string) RecordSet[PlanningData] {
	ctx, span := tracer.Start(ctx, "Planning")
	defer span.End()

	client, message, err := s.session(ctx, username)
	if err != nil {
		return recordFailure[PlanningData](span, err, message)
	}

	events, err := client.Planning(ctx)
	if err != nil {
		s.expireOn(ctx, username, err)
		return recordFailure[PlanningData](span, err, scrapeMessage(err))
	}

	events = aurion.FilterBusinessDays(events)
	events = aurion.AssignLanes(events)
	return success(PlanningData{Events: events})
}

func scrapeMessage(err error) string {
	switch {
	case errors.Is(err, aurion.ErrSessionExpired):
		return "session expired, log in again"
	case errors.Is(err, aurion.ErrUpstreamUnreachable):
		return "the portal is unreachable, try again later"
	case errors.Is(err, aurion.ErrProtocolMismatch), errors.Is(err, aurion.ErrTokenMissing):
		return "the portal changed in a way we don't understand yet"
	default:
		return "scrape failed"
	}
}

func recordFailure[T any](span trace.Span, err error, message string) RecordSet[T] {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
	return failure[T](message)
}
