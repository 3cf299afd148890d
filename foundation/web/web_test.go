package web_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"syscall"
	"testing"

	"github.com/powledger/powledger/foundation/web"
)

func Test_Handle(t *testing.T) {
	shutdown := make(chan os.Signal, 1)
	app := web.NewApp(shutdown)

	var traceID string
	h := func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		traceID = web.GetTraceID(ctx)

		var body struct {
			Name string `json:"name"`
		}
		if err := web.Decode(r, &body); err != nil {
			return web.Respond(ctx, w, err.Error(), http.StatusBadRequest)
		}

		return web.Respond(ctx, w, web.Param(r, "id")+":"+body.Name, http.StatusOK)
	}
	app.Handle(http.MethodPost, "v1", "/echo/:id", h)

	t.Log("Given the need to route requests through the app.")
	{
		r := httptest.NewRequest(http.MethodPost, "/v1/echo/42", strings.NewReader(`{"name":"bill"}`))
		w := httptest.NewRecorder()
		app.ServeHTTP(w, r)

		if w.Code != http.StatusOK || w.Body.String() != `"42:bill"` {
			t.Fatalf("\t%s\tShould route to the handler: %d %s", failed, w.Code, w.Body.String())
		}
		t.Logf("\t%s\tShould route to the handler.", success)

		if traceID == "" {
			t.Fatalf("\t%s\tShould set a trace id.", failed)
		}
		t.Logf("\t%s\tShould set a trace id.", success)

		r = httptest.NewRequest(http.MethodPost, "/v1/echo/42", strings.NewReader(`{"name":"bill","extra":1}`))
		w = httptest.NewRecorder()
		app.ServeHTTP(w, r)

		if w.Code != http.StatusBadRequest {
			t.Fatalf("\t%s\tShould reject unknown fields: %d", failed, w.Code)
		}
		t.Logf("\t%s\tShould reject unknown fields.", success)
	}
}

func Test_ShutdownError(t *testing.T) {
	shutdown := make(chan os.Signal, 1)
	app := web.NewApp(shutdown)

	h := func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		return web.NewShutdownError("integrity issue")
	}
	app.Handle(http.MethodGet, "", "/fail", h)

	app.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/fail", nil))

	select {
	case sig := <-shutdown:
		if sig != syscall.SIGTERM {
			t.Fatalf("Should signal SIGTERM: got %v", sig)
		}
	default:
		t.Fatal("Should signal a shutdown.")
	}

	if web.IsShutdown(errors.New("plain")) {
		t.Fatal("Should not treat a plain error as a shutdown.")
	}
}

// Success and failure markers.
const (
	success = "\u2713"
	failed  = "\u2717"
)
