package aurion

import (
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"time"

	"aurassist-backend/lib/restyutil"

	cloudflarebp "github.com/DaRealFreak/cloudflare-bp-go"
	"github.com/go-resty/resty/v2"
	"go.opentelemetry.io/otel"
)

var tracer = otel.Tracer("scrapers/aurion")

const userAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/123.0.0.0 Safari/537.36"

const sessionCookie = "JSESSIONID"

const (
	loginPath    = "/faces/Login"
	logoutPath   = "/faces/Logout"
	landingPath  = "/faces/MainMenuPage"
	planningPath = "/ical/Planning.ics"
)

// Client speaks the portal's stateful JSF protocol for exactly one
// login or scrape flow. The cookie jar and any in-flight view-state
// token belong to this instance alone; concurrent scrapes must each
// construct their own client, even for the same user.
type Client struct {
	BaseUrl *url.URL
	Http    *resty.Client
	jar     http.CookieJar
}

type ClientOptions struct {
	BaseUrl string
	// per-request ceiling; the full navigation sequence takes a
	// multiple of this
	Timeout time.Duration
}

func NewClient(opts ClientOptions) (*Client, error) {
	baseUrl, err := url.Parse(opts.BaseUrl)
	if err != nil {
		return nil, err
	}
	timeout := opts.Timeout
	if timeout == 0 {
		timeout = time.Second * 10
	}

	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, err
	}

	client := resty.New()
	client.SetBaseURL(opts.BaseUrl)
	client.SetCookieJar(jar)
	client.GetClient().Transport = cloudflarebp.AddCloudFlareByPass(client.GetClient().Transport)
	client.SetHeader("user-agent", userAgent)
	// the login flow reads 3xx codes as a success signal, redirects
	// must never be followed implicitly
	client.SetRedirectPolicy(resty.NoRedirectPolicy())
	client.SetTimeout(timeout)

	restyutil.InstrumentClient(client, tracer)

	return &Client{
		BaseUrl: baseUrl,
		Http:    client,
		jar:     jar,
	}, nil
}

// SeedSession resumes a previously stored portal session by planting
// its cookie in the jar.
func (c *Client) SeedSession(token string) {
	c.jar.SetCookies(c.BaseUrl, []*http.Cookie{{
		Name:  sessionCookie,
		Value: token,
		Path:  "/",
	}})
}

// SessionToken reads the portal-issued session identifier back out of
// the jar, or "" when the portal never set one.
func (c *Client) SessionToken() string {
	for _, cookie := range c.jar.Cookies(c.BaseUrl) {
		if cookie.Name == sessionCookie {
			return cookie.Value
		}
	}
	return ""
}
