package aurion

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"go.opentelemetry.io/otel/codes"
)

// signInTitle is the phrase the portal's sign-in page carries in its
// <title>; seeing it mid-scrape means the upstream invalidated our
// session.
const signInTitle = "Connexion"

// Destination names a data view reachable through the sidebar. The
// portal has no deep links: every view is three POSTs away from the
// landing page.
type Destination struct {
	// sidebar submenu identifier, e.g. "submenu_291906"
	Submenu string
	// menu item within that submenu, e.g. "1_3"
	MenuID string
}

// the identifiers below were captured from a live portal session and
// are as stable as the rest of the protocol, which is to say: they
// change whenever the school redeploys
var (
	DestAbsences = Destination{Submenu: "submenu_291906", MenuID: "1_3"}
	DestGrades   = Destination{Submenu: "submenu_291906", MenuID: "1_5"}
)

// step is one POST of the navigation replay, declared as data so the
// replay loop stays testable and no header block gets hand-copied per
// call site.
type step struct {
	name string
	// fields added on top of the carried hidden-field bundle
	fields map[string]string
	// partial steps answer with an XML partial-update carrying the
	// next view-state token; the final step answers with the
	// destination HTML page
	partial bool
}

func navigationSteps(dest Destination) []step {
	return []step{
		{
			name:    "arm date widget",
			partial: true,
			fields: map[string]string{
				"javax.faces.partial.ajax":    "true",
				"javax.faces.source":          "form:j_idt820",
				"javax.faces.partial.execute": "form:j_idt820",
				"javax.faces.partial.render":  "form:sidebar",
				"form:j_idt820":               "form:j_idt820",
			},
		},
		{
			name:    "select submenu",
			partial: true,
			fields: map[string]string{
				"javax.faces.partial.ajax":       "true",
				"javax.faces.source":             "form:j_idt52",
				"javax.faces.partial.execute":    "form:j_idt52",
				"javax.faces.partial.render":     "form:sidebar",
				"form:j_idt52":                   "form:j_idt52",
				"webscolaapp.Sidebar.ID_SUBMENU": dest.Submenu,
			},
		},
		{
			name: "open menu item",
			fields: map[string]string{
				"form:sidebar":        "form:sidebar",
				"form:sidebar_menuid": dest.MenuID,
			},
		},
	}
}

// Landing fetches the portal landing page and extracts the hidden-field
// bundle everything else needs. A redirect or a sign-in title here
// means the seeded session is no longer honored upstream.
func (c *Client) Landing(ctx context.Context) (*goquery.Document, formState, error) {
	ctx, span := tracer.Start(ctx, "client:Landing")
	defer span.End()

	res, err := redirectAware(c.Http.R().
		SetContext(ctx).
		Get(landingPath))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "landing request failed")
		return nil, formState{}, fmt.Errorf("%w: %v", ErrUpstreamUnreachable, err)
	}
	if res.StatusCode() >= 300 && res.StatusCode() < 400 {
		span.SetStatus(codes.Error, "redirected to sign-in")
		return nil, formState{}, ErrSessionExpired
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewBuffer(res.Body()))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to parse landing html")
		return nil, formState{}, fmt.Errorf("%w: %v", ErrProtocolMismatch, err)
	}
	if isSignInPage(doc) {
		span.SetStatus(codes.Error, "sign-in page detected")
		return nil, formState{}, ErrSessionExpired
	}

	state, err := extractFormState(doc)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to extract form state")
		return nil, formState{}, err
	}
	return doc, state, nil
}

// NavigateTo replays the click path from the landing page to a data
// view, forwarding the newest view-state token at every step. It fails
// loudly on any missing token or field: that means the portal's page
// structure drifted, and silently continuing would scrape garbage.
func (c *Client) NavigateTo(ctx context.Context, dest Destination) (*goquery.Document, error) {
	ctx, span := tracer.Start(ctx, "client:NavigateTo")
	defer span.End()

	_, state, err := c.Landing(ctx)
	if err != nil {
		return nil, err
	}

	for _, s := range navigationSteps(dest) {
		body := map[string]string{
			"form":          "form",
			formIdInitField: state.IdInit,
			formWidthField:  state.Width,
			viewStateField:  state.ViewState,
		}
		for k, v := range s.fields {
			body[k] = v
		}

		req := c.Http.R().
			SetContext(ctx).
			SetFormData(body)
		if s.partial {
			req.SetHeader("Faces-Request", "partial/ajax")
			req.SetHeader("X-Requested-With", "XMLHttpRequest")
		}

		res, err := redirectAware(req.Post(landingPath))
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, fmt.Sprintf("step %q failed", s.name))
			return nil, fmt.Errorf("%w: step %q: %v", ErrUpstreamUnreachable, s.name, err)
		}
		if res.StatusCode() >= 300 && res.StatusCode() < 400 {
			span.SetStatus(codes.Error, "redirected to sign-in mid-navigation")
			return nil, ErrSessionExpired
		}

		if s.partial {
			token, err := harvestViewState(res.Body())
			if err != nil {
				span.RecordError(err)
				span.SetStatus(codes.Error, fmt.Sprintf("step %q yielded no token", s.name))
				return nil, fmt.Errorf("step %q: %w", s.name, err)
			}
			state.ViewState = token
			continue
		}

		doc, err := goquery.NewDocumentFromReader(bytes.NewBuffer(res.Body()))
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, "failed to parse destination html")
			return nil, fmt.Errorf("%w: %v", ErrProtocolMismatch, err)
		}
		if isSignInPage(doc) {
			span.SetStatus(codes.Error, "sign-in page reached instead of destination")
			return nil, ErrSessionExpired
		}
		return doc, nil
	}

	// navigationSteps always ends on a non-partial step
	return nil, ErrProtocolMismatch
}

func isSignInPage(doc *goquery.Document) bool {
	title := doc.Find("title").Text()
	return strings.Contains(title, signInTitle)
}
