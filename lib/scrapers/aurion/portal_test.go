package aurion

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
)

// fakePortal emulates just enough of the upstream's JSF protocol to
// exercise login, navigation and extraction: cookie-gated pages, a
// strictly sequential view-state token chain and XML partial updates.
type fakePortal struct {
	mu sync.Mutex
	// tokens received on navigation steps, in order
	seenTokens []string
	// how many navigation POSTs to answer before failing hard; -1
	// means never fail
	failAfterStep int

	server *httptest.Server
}

const (
	fakeSession   = "8A61BFA6E41C"
	goodUsername  = "1234-5678"
	goodPassword  = "hunter2"
	landingToken  = "vs-0"
	armToken      = "vs-1"
	submenuToken  = "vs-2"
	absencesTitle = "Mes absences"
)

const landingHTML = `<html><head><title>Accueil</title></head><body>
<form id="form">
<input type="hidden" name="javax.faces.ViewState" value="` + landingToken + `"/>
<input type="hidden" name="form:idInit" value="webscolaapp.MainMenuPage_123456"/>
<input type="hidden" name="form:largeurDivCenter" value="1294"/>
<div class="ui-carousel">
  <div class="ui-carousel-item">
    <span class="dateNote">02/12/2024</span>
    <span class="libelleNote">S7 EEAA DS</span>
    <span class="noteValeur">14,5</span>
  </div>
  <div class="ui-carousel-item">
    <span class="dateNote">28/11/2024</span>
    <span class="libelleNote">S7 INFO TP</span>
    <span class="noteValeur">ABS</span>
  </div>
  <div class="ui-carousel-item">
    <span class="dateNote">pas une date</span>
    <span class="libelleNote">S7 MATH DS</span>
    <span class="noteValeur">12</span>
  </div>
  <div class="ui-carousel-item"></div>
</div>
</form></body></html>`

const signInHTML = `<html><head><title>Aurion - Connexion</title></head>
<body><form id="login">Veuillez vous connecter</form></body></html>`

const absencesHTML = `<html><head><title>` + absencesTitle + `</title></head><body>
<form id="form">
<input type="hidden" name="javax.faces.ViewState" value="vs-3"/>
<div id="form:table"><table><tbody id="form:table_data">
<tr>
  <td>18/11/2024</td><td></td><td>02h00</td><td>08:00 - 10:00</td>
  <td>S7 EEAA TD Circuits</td><td>DUPONT Jean</td><td>EEAA</td>
</tr>
<tr>
  <td>19/11/2024</td><td>Maladie</td><td>1h30</td><td>10:00 - 11:30</td>
  <td>S7 INFO TP Réseaux</td><td>MARTIN Luc</td><td>INFO</td>
</tr>
<tr>
  <td>mauvaise date</td><td></td><td>02h00</td><td></td><td></td><td></td><td></td>
</tr>
</tbody></table></div>
</form></body></html>`

const noAbsencesHTML = `<html><head><title>` + absencesTitle + `</title></head><body>
<form id="form">
<div id="form:table"><table><tbody id="form:table_data">
<tr><td>Aucune absence à ce jour.</td></tr>
</tbody></table></div>
</form></body></html>`

func partialResponseXML(token string) string {
	return `<?xml version="1.0" encoding="UTF-8"?>
<partial-response><changes>
<update id="form:sidebar"><![CDATA[<div id="form:sidebar"></div>]]></update>
<update id="j_id1:javax.faces.ViewState:0"><![CDATA[` + token + `]]></update>
</changes></partial-response>`
}

func (p *fakePortal) loggedIn(r *http.Request) bool {
	cookie, err := r.Cookie(sessionCookie)
	return err == nil && cookie.Value == fakeSession
}

func (p *fakePortal) handleLogin(w http.ResponseWriter, r *http.Request) {
	r.ParseForm()
	if r.PostFormValue("username") == goodUsername && r.PostFormValue("password") == goodPassword {
		http.SetCookie(w, &http.Cookie{Name: sessionCookie, Value: fakeSession, Path: "/"})
		w.Header().Set("Location", landingPath)
		w.WriteHeader(http.StatusFound)
		return
	}
	// the portal redisplays the login form on bad credentials
	fmt.Fprint(w, signInHTML)
}

func (p *fakePortal) handleLanding(w http.ResponseWriter, r *http.Request) {
	if !p.loggedIn(r) {
		w.Header().Set("Location", loginPath)
		w.WriteHeader(http.StatusFound)
		return
	}

	if r.Method == http.MethodGet {
		fmt.Fprint(w, landingHTML)
		return
	}

	r.ParseForm()
	token := r.PostFormValue(viewStateField)

	p.mu.Lock()
	p.seenTokens = append(p.seenTokens, token)
	step := len(p.seenTokens)
	failAfter := p.failAfterStep
	p.mu.Unlock()

	if failAfter >= 0 && step > failAfter {
		w.WriteHeader(http.StatusInternalServerError)
		return
	}

	switch {
	case step == 1 && token == landingToken:
		fmt.Fprint(w, partialResponseXML(armToken))
	case step == 2 && token == armToken:
		fmt.Fprint(w, partialResponseXML(submenuToken))
	case step == 3 && token == submenuToken:
		fmt.Fprint(w, absencesHTML)
	default:
		// replaying a stale token is rejected upstream; emulate by
		// answering with a tokenless partial response
		fmt.Fprint(w, `<partial-response><changes></changes></partial-response>`)
	}
}

func newFakePortal(t *testing.T) *fakePortal {
	p := &fakePortal{failAfterStep: -1}

	mux := http.NewServeMux()
	mux.HandleFunc(loginPath, p.handleLogin)
	mux.HandleFunc(landingPath, p.handleLanding)
	mux.HandleFunc(logoutPath, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Location", loginPath)
		w.WriteHeader(http.StatusFound)
	})
	mux.HandleFunc(planningPath, func(w http.ResponseWriter, r *http.Request) {
		if !p.loggedIn(r) {
			w.Header().Set("Location", loginPath)
			w.WriteHeader(http.StatusFound)
			return
		}
		fmt.Fprint(w, strings.ReplaceAll(planningICS, "\n", "\r\n"))
	})

	p.server = httptest.NewServer(mux)
	t.Cleanup(p.server.Close)
	return p
}

func newTestClient(t *testing.T, p *fakePortal) *Client {
	client, err := NewClient(ClientOptions{BaseUrl: p.server.URL})
	if err != nil {
		t.Fatal(err)
	}
	return client
}
