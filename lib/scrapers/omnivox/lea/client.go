package lea

import (
	"bytes"
	"context"
	"log/slog"
	"strings"

	"ovxassist-backend/lib/scrapers/omnivox/core"

	"github.com/PuerkitoBio/goquery"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

const DefaultBaseUrl = "https://www-daw-ovx.omnivox.ca"

// the bridge lives on the portal host, everything else on the Lea
// subdomain
const bridgePath = "/intr/Module/ServicesExterne/Skytech.aspx?IdServiceSkytech=Skytech_Omnivox&lk=%2festd%2fcvie&IdService=CVIE&C=DAW&E=P&L=ANG"

const (
	classesPath   = "/cvir/doce/Default.aspx"
	summariesPath = "/cvir/ddle/SommaireDocuments.aspx"
)

// Class is one course card from the listing page.
type Class struct {
	Code    string
	Title   string
	Teacher string
	Section string
	// schedule slots like "Mon 10:00 - 11:30"
	Schedule []string
	// raw grade text, empty while the portal shows the placeholder dash
	Grade      string
	Average    float64
	HasAverage bool
	Median     float64
	HasMedian  bool
	// counts of newly distributed items shown on the card
	NewDocuments   int
	NewAssignments int
}

// DocumentSummary is one row of the per-course document count table.
type DocumentSummary struct {
	Name string
	// the portal's literal count text, not always numeric
	AvailableDocuments string
	// relative link to the course's document listing
	Href string
}

type Document struct {
	Name        string
	Description string
	Posted      string
	Viewed      bool
}

type Category struct {
	Name      string
	Documents []Document
}

// ClassQuery selects a class by exactly one criterion, checked in field
// order. Teacher and Title match case-insensitive substrings, Code
// matches the whole code case-insensitively.
type ClassQuery struct {
	Teacher string
	Title   string
	Code    string
}

type Client struct {
	Core    *core.Client
	baseUrl string

	classes   []Class
	summaries []DocumentSummary
}

type ClientOptions struct {
	// base url of the Lea subservice, e.g. https://www-daw-ovx.omnivox.ca
	BaseUrl string
}

// NewClient mints the Lea subservice cookies on the given session and
// returns an extractor bound to it. The core client must be logged in.
func NewClient(ctx context.Context, coreClient *core.Client, opts ClientOptions) (*Client, error) {
	ctx, span := tracer.Start(ctx, "NewClient")
	defer span.End()

	if opts.BaseUrl == "" {
		opts.BaseUrl = DefaultBaseUrl
	}

	err := coreClient.MintSubserviceCookies(ctx, bridgePath)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to mint lea cookies")
		return nil, err
	}

	return &Client{
		Core:    coreClient,
		baseUrl: opts.BaseUrl,
	}, nil
}

// Classes lists the enrolled courses. The result is cached until a call
// passes forceRefresh. Malformed cards are logged and skipped, one bad
// card never aborts the listing.
func (c *Client) Classes(ctx context.Context, forceRefresh bool) ([]Class, error) {
	ctx, span := tracer.Start(ctx, "client:Classes")
	defer span.End()

	if len(c.classes) > 0 && !forceRefresh {
		span.AddEvent("cache hit")
		return c.classes, nil
	}

	res, err := c.Core.Http.R().
		SetContext(ctx).
		Get(c.baseUrl + classesPath)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to fetch class list")
		return nil, &core.NetworkError{Op: "list classes", Err: err}
	}
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(res.Body()))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to parse class list html")
		return nil, err
	}

	var classes []Class
	doc.Find(".card-panel").Each(func(_ int, card *goquery.Selection) {
		class, err := parseClassCard(card)
		if err != nil {
			slog.WarnContext(ctx, "skipping malformed class card", "err", err)
			return
		}
		classes = append(classes, class)
	})

	c.classes = classes
	return classes, nil
}

// Class returns the first class matching the query, filling the class
// cache first if it is empty. The second return reports whether a match
// was found.
func (c *Client) Class(ctx context.Context, query ClassQuery) (Class, bool, error) {
	ctx, span := tracer.Start(ctx, "client:Class")
	defer span.End()

	if len(c.classes) == 0 {
		_, err := c.Classes(ctx, false)
		if err != nil {
			return Class{}, false, err
		}
	}

	switch {
	case query.Teacher != "":
		for _, class := range c.classes {
			if strings.Contains(strings.ToUpper(class.Teacher), strings.ToUpper(query.Teacher)) {
				return class, true, nil
			}
		}
	case query.Title != "":
		for _, class := range c.classes {
			if strings.Contains(strings.ToUpper(class.Title), strings.ToUpper(query.Title)) {
				return class, true, nil
			}
		}
	case query.Code != "":
		for _, class := range c.classes {
			if strings.EqualFold(class.Code, query.Code) {
				return class, true, nil
			}
		}
	}

	return Class{}, false, nil
}

// DocumentSummaries lists the per-course document counts. The result is
// cached until a call passes forceRefresh.
func (c *Client) DocumentSummaries(ctx context.Context, forceRefresh bool) ([]DocumentSummary, error) {
	ctx, span := tracer.Start(ctx, "client:DocumentSummaries")
	defer span.End()

	if len(c.summaries) > 0 && !forceRefresh {
		span.AddEvent("cache hit")
		return c.summaries, nil
	}

	res, err := c.Core.Http.R().
		SetContext(ctx).
		Get(c.baseUrl + summariesPath)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to fetch document summary")
		return nil, &core.NetworkError{Op: "list document summaries", Err: err}
	}
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(res.Body()))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to parse document summary html")
		return nil, err
	}

	c.summaries = parseDocumentSummaries(ctx, doc)
	return c.summaries, nil
}

// ClassDocuments fetches a course's categorized documents through the
// relative href of its DocumentSummary. Never cached, the href is
// caller-supplied.
func (c *Client) ClassDocuments(ctx context.Context, href string) ([]Category, error) {
	ctx, span := tracer.Start(ctx, "client:ClassDocuments")
	defer span.End()
	span.SetAttributes(attribute.KeyValue{
		Key:   "href",
		Value: attribute.StringValue(href),
	})

	res, err := c.Core.Http.R().
		SetContext(ctx).
		Get(c.baseUrl + href)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to fetch class documents")
		return nil, &core.NetworkError{Op: "list class documents", Err: err}
	}
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(res.Body()))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to parse class documents html")
		return nil, err
	}

	return parseClassDocuments(doc), nil
}
