package mio

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	devenv "ovxassist-backend/dev/env"
	"ovxassist-backend/lib/scrapers/omnivox/core"
	"ovxassist-backend/lib/telemetry"

	"github.com/stretchr/testify/require"
)

var testMessageId = strings.Repeat("a", 37)

var inboxBody = `<html><body><table>
<tr>
	<td><input id="chk` + testMessageId + `" type="checkbox"></td>
	<td><span class="name">JANE DOE</span></td>
	<td class="lsTdTitle"><div><em>Essay 1 feedback</em>  Graded, see comments.</div></td>
</tr>
</table></body></html>`

const messageBody = `<html><body>
<table>
	<tr><td class="cDe">JANE DOE</td><td id="tdACont">JOHN STUDENT</td></tr>
	<tr><td class="cSujet">Essay 1 feedback</td><td class="cDate">2025-08-19 14:02</td></tr>
</table>
<div id="contenuWrapper">Graded, see the comments in Lea.</div>
</body></html>`

const missingMessageBody = `<html><body>
<div class="erreur">This message no longer exists.</div>
</body></html>`

type fetchCounts struct {
	bridge int
	list   int
	detail int
}

func newMioServer(counts *fetchCounts) *httptest.Server {
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/intr/Module/Identification/Login/Login.aspx":
			if r.Method == http.MethodPost {
				w.Write([]byte(`<html><body><a class="headerNavbarLink">My Omnivox</a></body></html>`))
				return
			}
			w.Write([]byte(`<input name="k" value="612345678901234567">`))
		case "/WebApplication/Module.MIOE/Login.aspx":
			counts.bridge++
		case "/WebApplication/Module.MIOE/Commun/Message/MioListe.aspx":
			counts.list++
			w.Write([]byte(inboxBody))
		case "/WebApplication/Module.MIOE/Commun/Message/MioDetail.aspx":
			counts.detail++
			if r.URL.Query().Get("m") == testMessageId {
				w.Write([]byte(messageBody))
				return
			}
			w.Write([]byte(missingMessageBody))
		default:
			http.NotFound(w, r)
		}
	}))
}

func newTestClient(t *testing.T, baseUrl string) *Client {
	ctx := context.Background()

	coreClient, err := core.NewClient(ctx, core.ClientOptions{BaseUrl: baseUrl})
	require.NoError(t, err)
	err = coreClient.Login(ctx, "1234567", "hunter2")
	require.NoError(t, err)

	client, err := NewClient(ctx, coreClient)
	require.NoError(t, err)
	return client
}

func TestPreviews(t *testing.T) {
	cleanup := telemetry.SetupForTesting("test:scrapers/omnivox/mio")
	defer cleanup()

	counts := &fetchCounts{}
	srv := newMioServer(counts)
	defer srv.Close()

	ctx := context.Background()
	client := newTestClient(t, srv.URL)
	require.Equal(t, 1, counts.bridge)

	previews, err := client.Previews(ctx)
	require.NoError(t, err)
	require.Equal(t, []Preview{
		{
			Id:        testMessageId,
			Author:    "JANE DOE",
			Title:     "Essay 1 feedback",
			ShortDesc: "Essay 1 feedback\nGraded, see comments.",
		},
	}, previews)

	// the inbox is never cached
	_, err = client.Previews(ctx)
	require.NoError(t, err)
	require.Equal(t, 2, counts.list)
}

func TestMessageCachedById(t *testing.T) {
	cleanup := telemetry.SetupForTesting("test:scrapers/omnivox/mio")
	defer cleanup()

	counts := &fetchCounts{}
	srv := newMioServer(counts)
	defer srv.Close()

	ctx := context.Background()
	client := newTestClient(t, srv.URL)

	message, err := client.Message(ctx, testMessageId)
	require.NoError(t, err)
	require.Equal(t, testMessageId, message.Id)
	require.Equal(t, "JANE DOE", message.Author)
	require.Equal(t, "JOHN STUDENT", message.Recipient)
	require.Equal(t, "Graded, see the comments in Lea.", message.Content)
	require.Equal(t, 1, counts.detail)

	again, err := client.Message(ctx, testMessageId)
	require.NoError(t, err)
	require.Equal(t, message, again)
	require.Equal(t, 1, counts.detail)
}

func TestMessageNotFound(t *testing.T) {
	cleanup := telemetry.SetupForTesting("test:scrapers/omnivox/mio")
	defer cleanup()

	counts := &fetchCounts{}
	srv := newMioServer(counts)
	defer srv.Close()

	ctx := context.Background()
	client := newTestClient(t, srv.URL)

	_, err := client.Message(ctx, strings.Repeat("b", 37))
	var notFound *core.NotFoundError
	require.ErrorAs(t, err, &notFound)

	// failures are not cached, a retry hits the portal again
	_, err = client.Message(ctx, strings.Repeat("b", 37))
	require.Error(t, err)
	require.Equal(t, 2, counts.detail)
}

func TestSearchAndSendNotImplemented(t *testing.T) {
	cleanup := telemetry.SetupForTesting("test:scrapers/omnivox/mio")
	defer cleanup()

	counts := &fetchCounts{}
	srv := newMioServer(counts)
	defer srv.Close()

	ctx := context.Background()
	client := newTestClient(t, srv.URL)

	_, err := client.SearchUsers(ctx, "doe")
	require.ErrorIs(t, err, core.ErrNotImplemented)

	err = client.Send(ctx, []SearchUser{{Titre: "JANE DOE"}}, "hi", "hello")
	require.ErrorIs(t, err, core.ErrNotImplemented)
}

func TestMioLive(t *testing.T) {
	config, err := devenv.GetStateConfig[devenv.OmnivoxTestConfig]("omnivox_config.json5")
	if err != nil {
		t.Skipf("no omnivox dev state config: %v", err)
	}

	cleanup := telemetry.SetupForTesting("test:scrapers/omnivox/mio")
	defer cleanup()

	ctx, span := tracer.Start(context.Background(), "TestMioLive")
	defer span.End()

	coreClient, err := core.NewClient(ctx, core.ClientOptions{BaseUrl: config.BaseUrl})
	if err != nil {
		t.Fatal(err)
	}
	err = coreClient.Login(ctx, config.StudentId, config.Password)
	if err != nil {
		t.Fatal(err)
	}

	client, err := NewClient(ctx, coreClient)
	if err != nil {
		t.Fatal(err)
	}
	previews, err := client.Previews(ctx)
	if err != nil {
		t.Fatal(err)
	}
	t.Logf("fetched %d previews", len(previews))
}
