package core

import (
	"context"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"time"

	"ovxassist-backend/lib/restyutil"
	"ovxassist-backend/lib/textutil"

	cloudflarebp "github.com/DaRealFreak/cloudflare-bp-go"
	"github.com/go-resty/resty/v2"
	"go.opentelemetry.io/otel/codes"
)

const DefaultBaseUrl = "https://dawsoncollege.omnivox.ca"

const loginPath = "/intr/Module/Identification/Login/Login.aspx"

// the portal has no structured success signal, a fragment of the
// logged-in navigation bar is the only reliable marker
const loginSuccessMarker = "headerNavbarLink"

type Client struct {
	BaseUrl       *url.URL
	Http          *resty.Client
	Authenticated bool
}

type ClientOptions struct {
	// portal base url, e.g. https://dawsoncollege.omnivox.ca
	BaseUrl string
	// extra hostnames redirects are allowed to land on. content
	// subservices live on their own subdomains and the cookie bridge
	// redirects there.
	SubserviceHosts []string
}

func NewClient(ctx context.Context, opts ClientOptions) (*Client, error) {
	if opts.BaseUrl == "" {
		opts.BaseUrl = DefaultBaseUrl
	}
	baseUrl, err := url.Parse(opts.BaseUrl)
	if err != nil {
		return nil, err
	}

	client := resty.New()
	client.SetBaseURL(opts.BaseUrl)
	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, err
	}
	client.SetCookieJar(jar)
	client.GetClient().Transport = cloudflarebp.AddCloudFlareByPass(client.GetClient().Transport)

	client.SetHeader("user-agent", "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/123.0.0.0 Safari/537.36")
	hosts := append([]string{baseUrl.Hostname()}, opts.SubserviceHosts...)
	client.SetRedirectPolicy(resty.DomainCheckRedirectPolicy(hosts...))
	client.SetTimeout(time.Second * 30)

	restyutil.InstrumentClient(client, tracer, restyInstrumentOutput)

	c := &Client{
		BaseUrl: baseUrl,
		Http:    client,
	}
	return c, nil
}

// Login authenticates the session against the portal:
//
//  1. GET the login page and pull the one-time "k" token out of it.
//  2. POST the credential form with the token attached.
//  3. Look for the logged-in navigation bar in the response.
//
// An unreachable portal is a *NetworkError, a missing token or absent
// success marker is an *AuthenticationError. The marker check cannot
// tell bad credentials apart from maintenance pages, that ambiguity is
// inherent to the portal.
func (c *Client) Login(ctx context.Context, studentId, password string) error {
	ctx, span := tracer.Start(ctx, "client:Login")
	defer span.End()

	res, err := c.Http.R().
		SetContext(ctx).
		Get(loginPath)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to fetch login page")
		return &NetworkError{Op: "login", Err: err}
	}

	token := textutil.ExtractKToken(string(res.Body()))
	if token == "" {
		span.SetStatus(codes.Error, "failed to extract login token")
		return &AuthenticationError{Reason: "could not extract login token from login page"}
	}

	res, err = c.Http.R().
		SetContext(ctx).
		SetFormData(map[string]string{
			"NoDa":        studentId,
			"PasswordEtu": password,
			"k":           token,
		}).
		Post(loginPath)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to submit login form")
		return &NetworkError{Op: "login", Err: err}
	}

	if !strings.Contains(string(res.Body()), loginSuccessMarker) {
		span.SetStatus(codes.Error, "invalid credentials")
		return &AuthenticationError{Reason: "invalid credentials"}
	}

	c.Authenticated = true
	return nil
}

// MintSubserviceCookies performs the bridge request a content
// subservice requires before its endpoints work. The portal partitions
// session state per subdomain, so each subservice gets its cookies
// minted by one authenticated GET. The response body is irrelevant,
// only the cookies added to the shared jar matter, which makes the
// call idempotent.
func (c *Client) MintSubserviceCookies(ctx context.Context, bridgeUrl string) error {
	ctx, span := tracer.Start(ctx, "client:MintSubserviceCookies")
	defer span.End()

	if !c.Authenticated {
		err := &AuthenticationError{Reason: "not authenticated, call Login first"}
		span.SetStatus(codes.Error, err.Error())
		return err
	}

	_, err := c.Http.R().
		SetContext(ctx).
		Get(bridgeUrl)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to mint subservice cookies")
		return &NetworkError{Op: "cookie bridge", Err: err}
	}
	return nil
}
