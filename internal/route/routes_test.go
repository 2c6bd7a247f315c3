package route

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"helmetkiosk/internal/dto"
	"helmetkiosk/internal/logger"
	"helmetkiosk/internal/register"
	"helmetkiosk/internal/service/websocket"
	"helmetkiosk/internal/view"
)

type stubKiosk struct {
	page view.Page
}

func (k *stubKiosk) StartCamera(context.Context) error { return nil }

func (k *stubKiosk) StopCamera() {}

func (k *stubKiosk) Register(_ context.Context, name string) (*register.Result, error) {
	return &register.Result{Name: name, Message: register.Confirmation}, nil
}

func (k *stubKiosk) ShowPage(name string) (view.Page, error) {
	page, err := view.ParsePage(name)
	if err == nil {
		k.page = page
	}
	return page, err
}

func (k *stubKiosk) State() dto.KioskState {
	return dto.KioskState{Page: string(k.page)}
}

func (k *stubKiosk) Greeting() []byte { return nil }

func (k *stubKiosk) GetWebsocketService() *websocket.HubService { return nil }

func TestSetupRoutes(t *testing.T) {
	h := SetupRoutes(&stubKiosk{page: view.Live}, logger.NewDiscard())

	cases := []struct {
		method string
		path   string
		status int
	}{
		{http.MethodGet, "/", http.StatusOK},
		{http.MethodGet, "/api/state", http.StatusOK},
		{http.MethodPost, "/api/page?name=register", http.StatusOK},
		{http.MethodPost, "/api/page?name=nope", http.StatusBadRequest},
		{http.MethodPost, "/api/camera/start", http.StatusOK},
		{http.MethodGet, "/api/camera/stop", http.StatusMethodNotAllowed},
		{http.MethodGet, "/missing", http.StatusNotFound},
	}

	for _, tc := range cases {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(tc.method, tc.path, nil))
		assert.Equal(t, tc.status, rec.Code, "%s %s", tc.method, tc.path)
	}
}

func TestIndexPageHasKioskElements(t *testing.T) {
	h := SetupRoutes(&stubKiosk{}, logger.NewDiscard())
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	body := rec.Body.String()
	for _, id := range []string{"page-live", "page-register", "page-dashboard", "btn-start", "btn-stop", "reg-name", "count", "user-list", "camera"} {
		assert.Contains(t, body, `id="`+id+`"`)
	}
}
