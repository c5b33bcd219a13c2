package adminhttp

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/marmos91/corectl/pkg/fsmctl"
	"github.com/marmos91/corectl/pkg/handle"
)

func TestRouter_RoutesAdminEndpoints(t *testing.T) {
	router := NewRouter(handle.NewServer(), fsmctl.ControlCreate())
	srv := httptest.NewServer(router)
	defer srv.Close()

	for _, path := range []string{"/healthz", "/readyz", "/metrics", "/debug/handles", "/debug/fsm"} {
		resp, err := http.Get(srv.URL + path)
		if err != nil {
			t.Fatalf("GET %s: %v", path, err)
		}
		resp.Body.Close()
		if resp.StatusCode != http.StatusOK {
			t.Errorf("GET %s: expected 200, got %d", path, resp.StatusCode)
		}
	}
}

func TestRouter_RootRedirectsToHealthz(t *testing.T) {
	router := NewRouter(nil, nil)
	req := httptest.NewRequest("GET", "/", nil)
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	if w.Code != http.StatusTemporaryRedirect {
		t.Errorf("expected redirect status, got %d", w.Code)
	}
	if loc := w.Header().Get("Location"); loc != "/healthz" {
		t.Errorf("expected redirect to /healthz, got %q", loc)
	}
}
