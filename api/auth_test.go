package api_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

func postForm(t *testing.T, router http.Handler, path string, form url.Values) *http.Response {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w.Result()
}

func TestAdminLogin_FormSuccess(t *testing.T) {
	router, _ := newTestRouter(t)

	res := postForm(t, router, "/admin/login", url.Values{
		"username": {"admin"},
		"password": {testAdminPassword},
	})
	defer res.Body.Close()

	if res.StatusCode != http.StatusSeeOther {
		t.Fatalf("expected 303 redirect, got %d", res.StatusCode)
	}
	if loc := res.Header.Get("Location"); loc != "/admin/dashboard" {
		t.Fatalf("expected redirect to dashboard, got %q", loc)
	}
	if len(res.Cookies()) == 0 {
		t.Fatalf("expected a session cookie to be set")
	}

	// the session cookie must open the dashboard
	req := httptest.NewRequest(http.MethodGet, "/admin/dashboard", nil)
	copyCookies(t, req, res)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected dashboard 200 with session, got %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), "Signed in as admin") {
		t.Fatalf("dashboard missing signed-in banner: %s", w.Body.String())
	}
}

func TestAdminLogin_FormWrongPassword(t *testing.T) {
	router, _ := newTestRouter(t)

	res := postForm(t, router, "/admin/login", url.Values{
		"username": {"admin"},
		"password": {"wrong"},
	})
	defer res.Body.Close()

	if res.StatusCode != http.StatusSeeOther {
		t.Fatalf("expected 303 redirect, got %d", res.StatusCode)
	}
	if loc := res.Header.Get("Location"); loc != "/admin/login" {
		t.Fatalf("expected redirect back to login, got %q", loc)
	}

	// following the redirect shows the generic flash message
	req := httptest.NewRequest(http.MethodGet, "/admin/login", nil)
	copyCookies(t, req, res)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected login page 200, got %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), "Invalid credentials") {
		t.Fatalf("expected flash message on login page")
	}

	// the failed login must not open the dashboard
	req = httptest.NewRequest(http.MethodGet, "/admin/dashboard", nil)
	copyCookies(t, req, res)
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusSeeOther {
		t.Fatalf("expected dashboard redirect without auth, got %d", w.Code)
	}
}

func TestAdminLogin_UnknownUserSameMessage(t *testing.T) {
	router, _ := newTestRouter(t)

	res := postForm(t, router, "/admin/login", url.Values{
		"username": {"nobody"},
		"password": {"whatever"},
	})
	defer res.Body.Close()

	if res.StatusCode != http.StatusSeeOther || res.Header.Get("Location") != "/admin/login" {
		t.Fatalf("expected redirect back to login, got %d -> %q", res.StatusCode, res.Header.Get("Location"))
	}

	req := httptest.NewRequest(http.MethodGet, "/admin/login", nil)
	copyCookies(t, req, res)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	// unknown-user and wrong-password must be indistinguishable
	if !strings.Contains(w.Body.String(), "Invalid credentials") {
		t.Fatalf("expected the same generic flash message for unknown user")
	}
}

func TestAdminLogin_JSONIssuesToken(t *testing.T) {
	router, _ := newTestRouter(t)

	body, _ := json.Marshal(map[string]string{"username": "admin", "password": testAdminPassword})
	req := httptest.NewRequest(http.MethodPost, "/admin/login", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d body=%s", w.Code, w.Body.String())
	}

	var resp struct {
		Token string `json:"token"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal token: %v", err)
	}
	if resp.Token == "" {
		t.Fatalf("empty token")
	}

	tok, err := jwt.Parse(resp.Token, func(token *jwt.Token) (any, error) { return []byte(testJWTSecret), nil })
	if err != nil || !tok.Valid {
		t.Fatalf("invalid token: %v", err)
	}
	claims, ok := tok.Claims.(jwt.MapClaims)
	if !ok {
		t.Fatalf("unexpected claims type")
	}
	if claims["username"] != "admin" {
		t.Fatalf("missing username claim: %v", claims)
	}
	if expF, ok := claims["exp"].(float64); !ok || int64(expF) < time.Now().Unix() {
		t.Fatalf("invalid exp claim: %v", claims["exp"])
	}
}

func TestAdminLogin_JSONWrongPassword(t *testing.T) {
	router, _ := newTestRouter(t)

	body, _ := json.Marshal(map[string]string{"username": "admin", "password": "wrong"})
	req := httptest.NewRequest(http.MethodPost, "/admin/login", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", w.Code)
	}
}

func TestResolve_RequiresAuth(t *testing.T) {
	router, mocks := newTestRouter(t)

	req := httptest.NewRequest(http.MethodPost, "/admin/resolve/1", strings.NewReader(`{"after_image":"data:image/png;base64,Qg=="}`))
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without auth, got %d", w.Code)
	}
	if len(mocks.ReportRepo.Stored) != 0 {
		t.Fatalf("nothing may be mutated without auth")
	}

	// garbage bearer token is also refused
	req = httptest.NewRequest(http.MethodPost, "/admin/resolve/1", strings.NewReader(`{"after_image":"data:image/png;base64,Qg=="}`))
	req.Header.Set("Authorization", "Bearer bad.token.here")
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 for bad token, got %d", w.Code)
	}
}

func TestLogout_ClearsSession(t *testing.T) {
	router, _ := newTestRouter(t)

	loginRes := postForm(t, router, "/admin/login", url.Values{
		"username": {"admin"},
		"password": {testAdminPassword},
	})
	defer loginRes.Body.Close()

	// logout with the live session
	req := httptest.NewRequest(http.MethodGet, "/admin/logout", nil)
	copyCookies(t, req, loginRes)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusSeeOther || w.Header().Get("Location") != "/admin/login" {
		t.Fatalf("expected logout redirect to login, got %d -> %q", w.Code, w.Header().Get("Location"))
	}

	// the expired cookie no longer opens the dashboard
	req = httptest.NewRequest(http.MethodGet, "/admin/dashboard", nil)
	copyCookies(t, req, w.Result())
	w2 := httptest.NewRecorder()
	router.ServeHTTP(w2, req)

	if w2.Code != http.StatusSeeOther {
		t.Fatalf("expected dashboard redirect after logout, got %d", w2.Code)
	}
}

func TestReportLifecycleFlow(t *testing.T) {
	router, mocks := newTestRouter(t)

	// citizen submits a report
	body, _ := json.Marshal(map[string]any{
		"before_image": "data:image/jpeg;base64,QQ==",
		"description":  "pothole",
		"latitude":     12.9,
		"longitude":    77.6,
	})
	req := httptest.NewRequest(http.MethodPost, "/api/report", bytes.NewReader(body))
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusCreated {
		t.Fatalf("submit: expected 201, got %d body=%s", w.Code, w.Body.String())
	}
	var submitResp struct {
		ReportID int64 `json:"report_id"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &submitResp); err != nil {
		t.Fatalf("unmarshal submit response: %v", err)
	}

	// admin logs in over the JSON API and resolves it with the token
	loginBody, _ := json.Marshal(map[string]string{"username": "admin", "password": testAdminPassword})
	req = httptest.NewRequest(http.MethodPost, "/admin/login", bytes.NewReader(loginBody))
	req.Header.Set("Content-Type", "application/json")
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	var tokenResp struct {
		Token string `json:"token"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &tokenResp); err != nil || tokenResp.Token == "" {
		t.Fatalf("login: %v body=%s", err, w.Body.String())
	}

	resolveBody := `{"after_image":"data:image/png;base64,Qg=="}`
	req = httptest.NewRequest(http.MethodPost, "/admin/resolve/1", strings.NewReader(resolveBody))
	req.Header.Set("Authorization", "Bearer "+tokenResp.Token)
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("resolve: expected 200, got %d body=%s", w.Code, w.Body.String())
	}

	r := mocks.ReportRepo.Stored[0]
	if r.Status != "Resolved" || r.AfterImage == nil || r.DateResolved == nil {
		t.Fatalf("report not resolved: %#v", r)
	}

	// a second resolve is refused
	req = httptest.NewRequest(http.MethodPost, "/admin/resolve/1", strings.NewReader(resolveBody))
	req.Header.Set("Authorization", "Bearer "+tokenResp.Token)
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusConflict {
		t.Fatalf("second resolve: expected 409, got %d", w.Code)
	}

	// the public history page shows the resolved report
	req = httptest.NewRequest(http.MethodGet, "/history", nil)
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("history: expected 200, got %d", w.Code)
	}
	page := w.Body.String()
	if !strings.Contains(page, "pothole") || !strings.Contains(page, "Resolved") {
		t.Fatalf("history page missing resolved report: %s", page)
	}

}
