package lea

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	devenv "ovxassist-backend/dev/env"
	"ovxassist-backend/lib/scrapers/omnivox/core"
	"ovxassist-backend/lib/telemetry"

	"github.com/stretchr/testify/require"
)

const classListBody = `<html><body>
<div class="card-panel">
	<a class="card-panel-title">603-101-MQ&nbsp;Introduction to College English</a>
	<div class="card-panel-desc">Sect. 00001 - Mon, Wed 10:00 - 11:30, JANE DOE</div>
	<div class="note-principale">85.3 %</div>
</div>
<div class="card-panel">
	<a class="card-panel-title">201-NYA-05&nbsp;Calculus I</a>
	<div class="card-panel-desc">Sect. 00002 - Tue, Thu 14:00 - 15:30, JOHN SMITH</div>
	<div class="note-principale">-</div>
</div>
<div class="card-panel">
	<div class="card-panel-desc">a card the portal rendered without a title</div>
</div>
</body></html>`

const summaryBody = `<html><body><table>
<tr class="itemDataGrid">
	<td><a href="/cvir/ddle/VisualiseDocuments.aspx?id=1">Introduction to College English</a></td>
	<td>2025-08-15</td>
	<td>12</td>
</tr>
<tr class="itemDataGridAltern">
	<td><a href="/cvir/ddle/VisualiseDocuments.aspx?id=2">Calculus I</a></td>
	<td>2025-08-14</td>
	<td>4</td>
</tr>
</table></body></html>`

const documentsBody = `<html><body>
<table class="CategorieDocumentEtudiant">
	<tr><td class="boutonEnabled">Course Notes</td></tr>
	<tr>
		<td id="colonneEtoileVisualisation"><img src="etoile.gif"> </td>
		<td><span class="lblTitreDocumentDansListe">Week 1 Slides</span></td>
		<td class="DocDispo">since August 18, 2025</td>
	</tr>
</table>
</body></html>`

type fetchCounts struct {
	bridge    int
	classes   int
	summaries int
	documents int
}

func newLeaServer(counts *fetchCounts) *httptest.Server {
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/intr/Module/Identification/Login/Login.aspx":
			if r.Method == http.MethodPost {
				w.Write([]byte(`<html><body><a class="headerNavbarLink">My Omnivox</a></body></html>`))
				return
			}
			w.Write([]byte(`<input name="k" value="612345678901234567">`))
		case "/intr/Module/ServicesExterne/Skytech.aspx":
			counts.bridge++
		case "/cvir/doce/Default.aspx":
			counts.classes++
			w.Write([]byte(classListBody))
		case "/cvir/ddle/SommaireDocuments.aspx":
			counts.summaries++
			w.Write([]byte(summaryBody))
		case "/cvir/ddle/VisualiseDocuments.aspx":
			counts.documents++
			w.Write([]byte(documentsBody))
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

	client, err := NewClient(ctx, coreClient, ClientOptions{BaseUrl: baseUrl})
	require.NoError(t, err)
	return client
}

func TestClassesCachesAndSkipsMalformedCards(t *testing.T) {
	cleanup := telemetry.SetupForTesting("test:scrapers/omnivox/lea")
	defer cleanup()

	counts := &fetchCounts{}
	srv := newLeaServer(counts)
	defer srv.Close()

	ctx := context.Background()
	client := newTestClient(t, srv.URL)
	require.Equal(t, 1, counts.bridge)

	classes, err := client.Classes(ctx, false)
	require.NoError(t, err)
	// the titleless card is skipped, the two valid ones survive
	require.Len(t, classes, 2)
	require.Equal(t, "603-101-MQ", classes[0].Code)
	require.Equal(t, "201-NYA-05", classes[1].Code)
	require.Equal(t, 1, counts.classes)

	again, err := client.Classes(ctx, false)
	require.NoError(t, err)
	require.Equal(t, classes, again)
	require.Equal(t, 1, counts.classes)

	_, err = client.Classes(ctx, true)
	require.NoError(t, err)
	require.Equal(t, 2, counts.classes)
}

func TestClassQuery(t *testing.T) {
	cleanup := telemetry.SetupForTesting("test:scrapers/omnivox/lea")
	defer cleanup()

	counts := &fetchCounts{}
	srv := newLeaServer(counts)
	defer srv.Close()

	ctx := context.Background()
	client := newTestClient(t, srv.URL)

	// an empty cache triggers the listing fetch
	class, found, err := client.Class(ctx, ClassQuery{Teacher: "doe"})
	require.NoError(t, err)
	require.True(t, found)
	require.Equal(t, "603-101-MQ", class.Code)
	require.Equal(t, 1, counts.classes)

	class, found, err = client.Class(ctx, ClassQuery{Title: "calculus"})
	require.NoError(t, err)
	require.True(t, found)
	require.Equal(t, "201-NYA-05", class.Code)

	class, found, err = client.Class(ctx, ClassQuery{Code: "201-nya-05"})
	require.NoError(t, err)
	require.True(t, found)
	require.Equal(t, "Calculus I", class.Title)

	_, found, err = client.Class(ctx, ClassQuery{Teacher: "NOBODY"})
	require.NoError(t, err)
	require.False(t, found)

	_, found, err = client.Class(ctx, ClassQuery{})
	require.NoError(t, err)
	require.False(t, found)

	require.Equal(t, 1, counts.classes)
}

func TestDocumentSummariesCaching(t *testing.T) {
	cleanup := telemetry.SetupForTesting("test:scrapers/omnivox/lea")
	defer cleanup()

	counts := &fetchCounts{}
	srv := newLeaServer(counts)
	defer srv.Close()

	ctx := context.Background()
	client := newTestClient(t, srv.URL)

	summaries, err := client.DocumentSummaries(ctx, false)
	require.NoError(t, err)
	require.Len(t, summaries, 2)
	require.Equal(t, "12", summaries[0].AvailableDocuments)
	require.Equal(t, 1, counts.summaries)

	_, err = client.DocumentSummaries(ctx, false)
	require.NoError(t, err)
	require.Equal(t, 1, counts.summaries)

	_, err = client.DocumentSummaries(ctx, true)
	require.NoError(t, err)
	require.Equal(t, 2, counts.summaries)
}

func TestClassDocumentsNotCached(t *testing.T) {
	cleanup := telemetry.SetupForTesting("test:scrapers/omnivox/lea")
	defer cleanup()

	counts := &fetchCounts{}
	srv := newLeaServer(counts)
	defer srv.Close()

	ctx := context.Background()
	client := newTestClient(t, srv.URL)

	categories, err := client.ClassDocuments(ctx, "/cvir/ddle/VisualiseDocuments.aspx?id=1")
	require.NoError(t, err)
	require.Len(t, categories, 1)
	require.Equal(t, "Course Notes", categories[0].Name)
	require.Len(t, categories[0].Documents, 1)
	require.False(t, categories[0].Documents[0].Viewed)

	_, err = client.ClassDocuments(ctx, "/cvir/ddle/VisualiseDocuments.aspx?id=1")
	require.NoError(t, err)
	require.Equal(t, 2, counts.documents)
}

func TestNewClientRequiresLogin(t *testing.T) {
	cleanup := telemetry.SetupForTesting("test:scrapers/omnivox/lea")
	defer cleanup()

	counts := &fetchCounts{}
	srv := newLeaServer(counts)
	defer srv.Close()

	ctx := context.Background()
	coreClient, err := core.NewClient(ctx, core.ClientOptions{BaseUrl: srv.URL})
	require.NoError(t, err)

	_, err = NewClient(ctx, coreClient, ClientOptions{BaseUrl: srv.URL})
	var authErr *core.AuthenticationError
	require.ErrorAs(t, err, &authErr)
	require.Equal(t, 0, counts.bridge)
}

func TestLeaLive(t *testing.T) {
	config, err := devenv.GetStateConfig[devenv.OmnivoxTestConfig]("omnivox_config.json5")
	if err != nil {
		t.Skipf("no omnivox dev state config: %v", err)
	}

	cleanup := telemetry.SetupForTesting("test:scrapers/omnivox/lea")
	defer cleanup()

	ctx, span := tracer.Start(context.Background(), "TestLeaLive")
	defer span.End()

	leaBase := config.LeaBaseUrl
	if leaBase == "" {
		leaBase = DefaultBaseUrl
	}
	parsed, err := url.Parse(leaBase)
	if err != nil {
		t.Fatal(err)
	}

	coreClient, err := core.NewClient(ctx, core.ClientOptions{
		BaseUrl:         config.BaseUrl,
		SubserviceHosts: []string{parsed.Hostname()},
	})
	if err != nil {
		t.Fatal(err)
	}
	err = coreClient.Login(ctx, config.StudentId, config.Password)
	if err != nil {
		t.Fatal(err)
	}

	client, err := NewClient(ctx, coreClient, ClientOptions{BaseUrl: leaBase})
	if err != nil {
		t.Fatal(err)
	}
	classes, err := client.Classes(ctx, false)
	if err != nil {
		t.Fatal(err)
	}
	require.Greater(t, len(classes), 0)
}
