package mailer

import (
	"context"
	"io"
	"log"
	"testing"

	"github.com/go-resty/resty/v2"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"ovxassist-backend/lib/scrapers/omnivox/lea"
	"ovxassist-backend/lib/telemetry"
)

func setupSmtp(t testing.TB) func() {
	// suppress logging
	testcontainers.Logger = log.New(io.Discard, "", 0)

	smtp, err := testcontainers.GenericContainer(
		context.Background(),
		testcontainers.GenericContainerRequest{
			Started: true,
			ContainerRequest: testcontainers.ContainerRequest{
				Image:        "haravich/fake-smtp-server",
				ExposedPorts: []string{"1025:1025", "1080:1080"},
				WaitingFor:   wait.ForLog("smtp://0.0.0.0:1025"),
			},
		},
	)
	if err != nil {
		t.Fatal(err)
	}
	return func() {
		err := smtp.Terminate(context.Background())
		if err != nil {
			t.Fatal(err)
		}
	}
}

func TestSendDocumentAlert(t *testing.T) {
	cleanupTelemetry := telemetry.SetupForTesting("test:lib/mailer")
	defer cleanupTelemetry()
	cleanupSmtp := setupSmtp(t)
	defer cleanupSmtp()

	sender := New(Config{
		Server:   "localhost",
		Port:     1025,
		Address:  "alerts@ovxassist.app",
		Password: "default",
	})

	err := sender.SendDocumentAlert(context.Background(), "bob@email.com", "Calculus I", []lea.Document{
		{Name: "Assignment 3", Posted: "October 2, 2024"},
		{Name: "Lecture notes week 6"},
	})
	require.NoError(t, err)

	res, err := resty.New().R().
		Get("http://127.0.0.1:1080/messages/1.plain")
	require.NoError(t, err)

	body := res.String()
	require.Contains(t, body, "Calculus I")
	require.Contains(t, body, "Assignment 3 (October 2, 2024)")
	require.Contains(t, body, "Lecture notes week 6")
}
