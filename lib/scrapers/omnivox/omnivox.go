package omnivox

import (
	"context"
	"net/url"

	"ovxassist-backend/lib/scrapers/omnivox/core"
	"ovxassist-backend/lib/scrapers/omnivox/lea"
	"ovxassist-backend/lib/scrapers/omnivox/mio"
)

// Client bundles an authenticated portal session with its content
// extractors.
type Client struct {
	Core *core.Client
	Lea  *lea.Client
	Mio  *mio.Client
}

type Options struct {
	StudentId string
	Password  string
	// overrides for the portal and Lea base urls, empty means production
	BaseUrl    string
	LeaBaseUrl string
}

// NewClient logs the student in and mints cookies for both content
// subservices. Every client owns a fresh cookie jar, sessions are never
// shared between instances.
func NewClient(ctx context.Context, opts Options) (*Client, error) {
	leaBase := opts.LeaBaseUrl
	if leaBase == "" {
		leaBase = lea.DefaultBaseUrl
	}
	leaUrl, err := url.Parse(leaBase)
	if err != nil {
		return nil, err
	}

	coreClient, err := core.NewClient(ctx, core.ClientOptions{
		BaseUrl:         opts.BaseUrl,
		SubserviceHosts: []string{leaUrl.Hostname()},
	})
	if err != nil {
		return nil, err
	}
	err = coreClient.Login(ctx, opts.StudentId, opts.Password)
	if err != nil {
		return nil, err
	}

	leaClient, err := lea.NewClient(ctx, coreClient, lea.ClientOptions{BaseUrl: leaBase})
	if err != nil {
		return nil, err
	}
	mioClient, err := mio.NewClient(ctx, coreClient)
	if err != nil {
		return nil, err
	}

	return &Client{
		Core: coreClient,
		Lea:  leaClient,
		Mio:  mioClient,
	}, nil
}
