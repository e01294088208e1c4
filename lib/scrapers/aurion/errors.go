package aurion

import "errors"

var (
	// the username did not look like a portal identifier, no request
	// was made
	ErrBadUsername = errors.New("invalid username, expected the NNNN-NNNN portal identifier")
	// transport-level failure, the portal never answered
	ErrUpstreamUnreachable = errors.New("the portal is unreachable or too slow")
	// the portal answered the login POST with something other than a
	// redirect
	ErrBadCredentials = errors.New("the portal rejected these credentials")
	// the portal signalled a successful login but never set its
	// session cookie
	ErrTokenMissing = errors.New("no session token issued despite login success")
	// the portal bounced us back to its sign-in page mid-scrape
	ErrSessionExpired = errors.New("the portal session has expired")
	// a hidden field or view-state token the navigation sequence
	// depends on is gone, the portal markup has likely changed
	ErrProtocolMismatch = errors.New("navigation protocol mismatch, the portal page structure has changed")
)
