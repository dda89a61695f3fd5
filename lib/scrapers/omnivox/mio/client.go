package mio

import (
	"bytes"
	"context"

	"ovxassist-backend/lib/scrapers/omnivox/core"

	"github.com/PuerkitoBio/goquery"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

// all of mio lives on the portal host itself
const (
	bridgePath = "/WebApplication/Module.MIOE/Login.aspx?ReturnUrl=%2fWebApplication%2fModule.MIOE%2fDefault.aspx"
	listPath   = "/WebApplication/Module.MIOE/Commun/Message/MioListe.aspx"
	detailPath = "/WebApplication/Module.MIOE/Commun/Message/MioDetail.aspx"
)

// Preview is one inbox row.
type Preview struct {
	Id     string
	Author string
	Title  string
	// the inbox's teaser text, the title rides along inside it
	ShortDesc string
}

// Message is a fully fetched mio.
type Message struct {
	Id        string
	Author    string
	Recipient string
	Title     string
	Date      string
	Content   string
}

// SearchUser mirrors the compose dialog's user search records. Field
// names follow the portal's wire format.
type SearchUser struct {
	Numero              string `json:"Numero"`
	Titre               string `json:"Titre"`
	Username            string `json:"Username"`
	TypeItemSelectionne int    `json:"TypeItemSelectionne"`
	TypeItemString      string `json:"TypeItemString"`
	Description         string `json:"Description"`
	NbEtudiants         int    `json:"NbEtudiants"`
	NbEnseignants       int    `json:"NbEnseignants"`
	NbIndividus         int    `json:"NbIndividus"`
}

type Client struct {
	Core *core.Client

	// fetched messages by id, kept for the life of the client
	messages map[string]Message
}

// NewClient mints the mio subservice cookies on the given session and
// returns an extractor bound to it. The core client must be logged in.
func NewClient(ctx context.Context, coreClient *core.Client) (*Client, error) {
	ctx, span := tracer.Start(ctx, "NewClient")
	defer span.End()

	err := coreClient.MintSubserviceCookies(ctx, bridgePath)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to mint mio cookies")
		return nil, err
	}

	return &Client{
		Core:     coreClient,
		messages: map[string]Message{},
	}, nil
}

// Previews lists the inbox. Never cached, the inbox changes under us.
func (c *Client) Previews(ctx context.Context) ([]Preview, error) {
	ctx, span := tracer.Start(ctx, "client:Previews")
	defer span.End()

	res, err := c.Core.Http.R().
		SetContext(ctx).
		Get(listPath)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to fetch inbox")
		return nil, &core.NetworkError{Op: "list previews", Err: err}
	}
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(res.Body()))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to parse inbox html")
		return nil, err
	}

	return parsePreviews(string(res.Body()), doc), nil
}

// Message fetches one mio by id. Results are cached for the life of the
// client, a repeated id never refetches.
func (c *Client) Message(ctx context.Context, id string) (Message, error) {
	ctx, span := tracer.Start(ctx, "client:Message")
	defer span.End()
	span.SetAttributes(attribute.KeyValue{
		Key:   "id",
		Value: attribute.StringValue(id),
	})

	if cached, ok := c.messages[id]; ok {
		span.AddEvent("cache hit")
		return cached, nil
	}

	res, err := c.Core.Http.R().
		SetContext(ctx).
		SetQueryParam("m", id).
		Get(detailPath)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to fetch message")
		return Message{}, &core.NetworkError{Op: "fetch message", Err: err}
	}
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(res.Body()))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to parse message html")
		return Message{}, err
	}

	message, err := parseMessage(id, doc)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "message not found")
		return Message{}, err
	}

	c.messages[id] = message
	return message, nil
}

// SearchUsers would drive the compose dialog's user search. The portal
// wants a multi-step token handshake there which this client does not
// speak, callers get ErrNotImplemented rather than a missing method.
func (c *Client) SearchUsers(ctx context.Context, name string) ([]SearchUser, error) {
	return nil, core.ErrNotImplemented
}

// Send would deliver a mio to the given recipients, same handshake
// story as SearchUsers.
func (c *Client) Send(ctx context.Context, recipients []SearchUser, title, message string) error {
	return core.ErrNotImplemented
}
