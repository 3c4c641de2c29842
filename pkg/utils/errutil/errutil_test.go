package errutil_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/getsentry/sentry-go"
	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/gt"
	"github.com/secmon-lab/cyberportal/pkg/utils/errutil"
	"github.com/secmon-lab/cyberportal/pkg/utils/logging"
)

func testContext(buf *bytes.Buffer) context.Context {
	return logging.With(context.Background(), slog.New(slog.NewJSONHandler(buf, nil)))
}

func TestHandle(t *testing.T) {
	var buf bytes.Buffer
	ctx := testContext(&buf)

	errutil.Handle(ctx, goerr.New("broken", goerr.V("incident_id", "INC-2024-001")), "failed")
	gt.String(t, buf.String()).Contains("INC-2024-001")
	gt.String(t, buf.String()).Contains("failed")

	buf.Reset()
	errutil.Handle(ctx, nil, "nothing")
	gt.Value(t, buf.Len()).Equal(0)
}

func TestHandleHTTP(t *testing.T) {
	t.Run("client error exposes message", func(t *testing.T) {
		var buf bytes.Buffer
		w := httptest.NewRecorder()
		errutil.HandleHTTP(testContext(&buf), w, errors.New("bad status"), http.StatusBadRequest)

		gt.Value(t, w.Code).Equal(http.StatusBadRequest)
		var body map[string]string
		gt.NoError(t, json.Unmarshal(w.Body.Bytes(), &body)).Required()
		gt.Value(t, body["error"]).Equal("bad status")
	})

	t.Run("server error hides details", func(t *testing.T) {
		var buf bytes.Buffer
		w := httptest.NewRecorder()
		errutil.HandleHTTP(testContext(&buf), w, goerr.New("firestore unavailable"), http.StatusInternalServerError)

		gt.Value(t, w.Code).Equal(http.StatusInternalServerError)
		var body map[string]string
		gt.NoError(t, json.Unmarshal(w.Body.Bytes(), &body)).Required()
		gt.Value(t, body["error"]).Equal("Internal Server Error")
		gt.String(t, buf.String()).Contains("firestore unavailable")
	})
}

func TestHandleReportsGoerrValuesToSentry(t *testing.T) {
	var captured []*sentry.Event
	client, err := sentry.NewClient(sentry.ClientOptions{
		BeforeSend: func(event *sentry.Event, hint *sentry.EventHint) *sentry.Event {
			captured = append(captured, event)
			return nil
		},
	})
	gt.NoError(t, err).Required()

	var buf bytes.Buffer
	ctx := sentry.SetHubOnContext(testContext(&buf), sentry.NewHub(client, sentry.NewScope()))

	errutil.Handle(ctx, goerr.New("broken", goerr.V("incident_id", "INC-2024-001")), "failed")

	gt.A(t, captured).Length(1)
	if len(captured) != 1 {
		t.FailNow()
	}
	gt.V(t, captured[0].Tags["message"]).Equal("failed")
	gt.V(t, captured[0].Contexts["goerr"]["incident_id"]).Equal(any("INC-2024-001"))
}
