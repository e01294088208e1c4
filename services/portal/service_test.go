package portal

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"aurassist-backend/lib/testutil"
	"aurassist-backend/services/portal/db"

	"github.com/stretchr/testify/require"
)

const (
	testUsername = "1234-5678"
	testPassword = "hunter2"
	testToken    = "5D11A0C4F2B3"
)

const testLandingHTML = `<!DOCTYPE html>
<html>
<head><title>Aurion</title></head>
<body>
<form id="form">
	<input type="hidden" name="javax.faces.ViewState" value="vs-100"/>
	<input type="hidden" name="form:idInit" value="webscolaapp.MainMenuPage_1"/>
	<input type="hidden" name="form:largeurDivCenter" value="1409"/>
	<div class="ui-carousel-item">
		<span class="libelleNote">S7 EEAA TD Circuits</span>
		<span class="noteValeur">14,5</span>
		<span class="dateNote">02/03/2026</span>
	</div>
	<div class="ui-carousel-item">
		<span class="libelleNote">S7 INFO DS Programmation</span>
		<span class="noteValeur">11</span>
		<span class="dateNote">09/03/2026</span>
	</div>
	<div class="ui-carousel-item"></div>
</form>
</body>
</html>`

const testSignInHTML = `<!DOCTYPE html>
<html><head><title>Aurion - Connexion</title></head>
<body><form id="j_idt27"></form></body></html>`

// fakeBackend is a minimal portal double: a login endpoint and a
// landing page guarded by the session cookie.
type fakeBackend struct {
	srv *httptest.Server

	mu        sync.Mutex
	loginHits int
	// when set, the landing page redirects to sign-in as the real
	// portal does once the server-side session dies
	expired bool
}

func newFakeBackend(t *testing.T) *fakeBackend {
	b := &fakeBackend{}
	mux := http.NewServeMux()

	mux.HandleFunc("/faces/Login", func(w http.ResponseWriter, r *http.Request) {
		b.mu.Lock()
		b.loginHits++
		b.mu.Unlock()

		if r.FormValue("username") == testUsername && r.FormValue("password") == testPassword {
			http.SetCookie(w, &http.Cookie{Name: "JSESSIONID", Value: testToken, Path: "/"})
			w.Header().Set("Location", "/faces/MainMenuPage")
			w.WriteHeader(http.StatusFound)
			return
		}
		w.Write([]byte(testSignInHTML))
	})

	mux.HandleFunc("/faces/MainMenuPage", func(w http.ResponseWriter, r *http.Request) {
		cookie, err := r.Cookie("JSESSIONID")
		b.mu.Lock()
		expired := b.expired
		b.mu.Unlock()
		if err != nil || cookie.Value != testToken || expired {
			w.Header().Set("Location", "/faces/Login")
			w.WriteHeader(http.StatusFound)
			return
		}
		w.Write([]byte(testLandingHTML))
	})

	mux.HandleFunc("/faces/Logout", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Location", "/faces/Login")
		w.WriteHeader(http.StatusFound)
	})

	b.srv = httptest.NewServer(mux)
	t.Cleanup(b.srv.Close)
	return b
}

func (b *fakeBackend) hits() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.loginHits
}

func (b *fakeBackend) expire() {
	b.mu.Lock()
	b.expired = true
	b.mu.Unlock()
}

type captureNotifier struct {
	mu    sync.Mutex
	calls [][]GradeRecord
}

func (n *captureNotifier) NotifyNewGrades(ctx context.Context, username string, records []GradeRecord) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.calls = append(n.calls, records)
	return nil
}

type denyAllLimiter struct{}

func (denyAllLimiter) Allow(string) bool { return false }

func newTestService(t *testing.T, backend *fakeBackend, options Options) (*Service, *sql.DB) {
	res := testutil.SetupService(t, testutil.ServiceParams{
		Name:     "portal",
		DbSchema: db.Schema,
	})
	options.BaseUrl = backend.srv.URL
	if options.Weights == nil {
		options.Weights = testCatalog
	}
	return NewService(res.DB, options), res.DB
}

func TestLogin(t *testing.T) {
	backend := newFakeBackend(t)
	service, sqldb := newTestService(t, backend, Options{})
	ctx := context.Background()

	out := service.Login(ctx, testUsername, testPassword)
	require.True(t, out.Success)
	require.Empty(t, out.Errors)
	require.Equal(t, testToken, out.Data.Token)
	require.True(t, out.Data.ExpiresAt.After(time.Now()))

	session, err := db.New(sqldb).GetSession(ctx, testUsername)
	require.NoError(t, err)
	require.Equal(t, testToken, session.Token)
}

func TestLoginBadCredentials(t *testing.T) {
	backend := newFakeBackend(t)
	service, sqldb := newTestService(t, backend, Options{})
	ctx := context.Background()

	out := service.Login(ctx, testUsername, "wrong")
	require.False(t, out.Success)
	require.Contains(t, out.Errors, "rejected")
	require.Nil(t, out.Data)

	_, err := db.New(sqldb).GetSession(ctx, testUsername)
	require.ErrorIs(t, err, sql.ErrNoRows)
}

func TestLoginUnreachable(t *testing.T) {
	backend := newFakeBackend(t)
	backend.srv.Close()
	service, _ := newTestService(t, backend, Options{})

	out := service.Login(context.Background(), testUsername, testPassword)
	require.False(t, out.Success)
	require.Contains(t, out.Errors, "unreachable")
}

func TestLoginMalformedUsername(t *testing.T) {
	backend := newFakeBackend(t)
	service, _ := newTestService(t, backend, Options{})

	out := service.Login(context.Background(), "robert'); DROP", testPassword)
	require.False(t, out.Success)
	require.Contains(t, out.Errors, "malformed username")
	// rejected before any upstream I/O
	require.Zero(t, backend.hits())
}

func TestLoginRateLimited(t *testing.T) {
	backend := newFakeBackend(t)
	service, _ := newTestService(t, backend, Options{Limiter: denyAllLimiter{}})

	out := service.Login(context.Background(), testUsername, testPassword)
	require.False(t, out.Success)
	require.Contains(t, out.Errors, "too many login attempts")
	require.Zero(t, backend.hits())
}

func TestGrades(t *testing.T) {
	backend := newFakeBackend(t)
	notifier := &captureNotifier{}
	service, _ := newTestService(t, backend, Options{Notifier: notifier})
	ctx := context.Background()

	require.True(t, service.Login(ctx, testUsername, testPassword).Success)

	out := service.Grades(ctx, testUsername)
	require.True(t, out.Success)
	require.Len(t, out.Data.Grades, 2)
	require.Len(t, out.Data.New, 2)
	require.Equal(t, "FITE_S7_EEAA", out.Data.Grades[0].Code)
	require.True(t, out.Data.Grades[0].IsNew)

	// new records carry the same matched code everywhere they are
	// reported
	require.Equal(t, "FITE_S7_EEAA", out.Data.New[0].Code)
	require.Equal(t, "FITE_S7_INFO", out.Data.New[1].Code)
	require.Len(t, notifier.calls, 1)
	require.Equal(t, "FITE_S7_EEAA", notifier.calls[0][0].Code)

	// same scrape again: nothing new, nothing re-notified
	out = service.Grades(ctx, testUsername)
	require.True(t, out.Success)
	require.Len(t, out.Data.Grades, 2)
	require.Empty(t, out.Data.New)
	for _, record := range out.Data.Grades {
		require.False(t, record.IsNew)
	}
	require.Len(t, notifier.calls, 1)
}

func TestGradesNotLoggedIn(t *testing.T) {
	backend := newFakeBackend(t)
	service, _ := newTestService(t, backend, Options{})

	out := service.Grades(context.Background(), testUsername)
	require.False(t, out.Success)
	require.Contains(t, out.Errors, "not logged in")
}

func TestGradesSessionExpiredUpstream(t *testing.T) {
	backend := newFakeBackend(t)
	service, sqldb := newTestService(t, backend, Options{})
	ctx := context.Background()

	require.True(t, service.Login(ctx, testUsername, testPassword).Success)
	backend.expire()

	out := service.Grades(ctx, testUsername)
	require.False(t, out.Success)
	require.Contains(t, out.Errors, "session expired")

	// the stored session is dropped so the next call asks for a login
	_, err := db.New(sqldb).GetSession(ctx, testUsername)
	require.ErrorIs(t, err, sql.ErrNoRows)
}

func TestGradesSessionExpiredLocally(t *testing.T) {
	backend := newFakeBackend(t)
	service, sqldb := newTestService(t, backend, Options{SessionTTL: time.Nanosecond})
	ctx := context.Background()

	require.True(t, service.Login(ctx, testUsername, testPassword).Success)
	time.Sleep(time.Millisecond)

	out := service.Grades(ctx, testUsername)
	require.False(t, out.Success)
	require.Contains(t, out.Errors, "session expired")

	_, err := db.New(sqldb).GetSession(ctx, testUsername)
	require.ErrorIs(t, err, sql.ErrNoRows)
}

func TestGradesCancelledContext(t *testing.T) {
	backend := newFakeBackend(t)
	service, sqldb := newTestService(t, backend, Options{})

	require.True(t, service.Login(context.Background(), testUsername, testPassword).Success)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	out := service.Grades(ctx, testUsername)
	require.False(t, out.Success)

	// an aborted scrape must not leave partial rows behind
	grades, err := db.New(sqldb).GetGrades(context.Background(), testUsername)
	require.NoError(t, err)
	require.Empty(t, grades)
}

func TestLogout(t *testing.T) {
	backend := newFakeBackend(t)
	service, _ := newTestService(t, backend, Options{})
	ctx := context.Background()

	require.True(t, service.Login(ctx, testUsername, testPassword).Success)
	require.True(t, service.Logout(ctx, testUsername).Success)

	out := service.Grades(ctx, testUsername)
	require.False(t, out.Success)
	require.Contains(t, out.Errors, "not logged in")

	// logging out twice is fine
	require.True(t, service.Logout(ctx, testUsername).Success)
}

func TestLogoutSurvivesUpstreamFailure(t *testing.T) {
	backend := newFakeBackend(t)
	service, sqldb := newTestService(t, backend, Options{})
	ctx := context.Background()

	require.True(t, service.Login(ctx, testUsername, testPassword).Success)
	backend.srv.Close()

	require.True(t, service.Logout(ctx, testUsername).Success)
	_, err := db.New(sqldb).GetSession(ctx, testUsername)
	require.True(t, errors.Is(err, sql.ErrNoRows))
}
