package api_test

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/gorilla/mux"

	"github.com/CharlesManalo/CommunitySafe/api"
	"github.com/CharlesManalo/CommunitySafe/internal/config"
	"github.com/CharlesManalo/CommunitySafe/internal/hazard"
	"github.com/CharlesManalo/CommunitySafe/internal/imagestore"
	"github.com/CharlesManalo/CommunitySafe/pkg/repository/mock"
)

const (
	testSessionSecret = "test-session-secret"
	testJWTSecret     = "test-jwt-secret"
	testAdminPassword = "hunter2"
)

// newTestService wires the real lifecycle service to mocks and temp dirs.
func newTestService(t *testing.T) (hazard.Service, *mock.Mocks) {
	t.Helper()
	mocks := mock.NewMocks()
	svc := hazard.NewService(mocks.ReportRepo, mocks.AdminRepo,
		imagestore.New(t.TempDir()), imagestore.New(t.TempDir()), nil)
	return svc, mocks
}

// newTestRouter builds the full route table around a test service with the
// default admin account seeded.
func newTestRouter(t *testing.T) (*mux.Router, *mock.Mocks) {
	t.Helper()
	svc, mocks := newTestService(t)
	if err := svc.EnsureDefaultAdmin(context.Background(), "admin", testAdminPassword); err != nil {
		t.Fatalf("seed admin: %v", err)
	}

	cfg := &config.Config{
		Addr:            ":0",
		APITimeout:      5 * time.Second,
		SessionSecret:   testSessionSecret,
		JWTSecret:       testJWTSecret,
		TokenDuration:   time.Hour,
		UploadDirBefore: t.TempDir(),
		UploadDirAfter:  t.TempDir(),
	}

	router, err := api.SetupRoutes(cfg, "test", "unknown", svc)
	if err != nil {
		t.Fatalf("SetupRoutes: %v", err)
	}
	return router, mocks
}

func copyCookies(t *testing.T, req *http.Request, res *http.Response) {
	t.Helper()
	for _, c := range res.Cookies() {
		req.AddCookie(c)
	}
}
