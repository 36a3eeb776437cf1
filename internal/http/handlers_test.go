package http_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/adilzhan/taskgate/internal/queue"
	"github.com/adilzhan/taskgate/internal/security"
)

func signupHdr() map[string]string {
	return map[string]string{"accesstoken": testAccessToken}
}

func Test_SignUp_SignIn_CheckSession(t *testing.T) {
	env := newTestEnv(t)
	defer env.Close()

	// signup
	w := env.do("POST", "/api/auth/signup",
		`{"email":"new@example.com","password":"P@ssw0rd1","repeatPassword":"P@ssw0rd1"}`, signupHdr())
	if w.Code != http.StatusCreated {
		t.Fatalf("signup code=%d body=%s", w.Code, w.Body.String())
	}
	var created struct {
		Local struct {
			Email string `json:"email"`
		} `json:"local"`
	}
	if err := json.Unmarshal(decodeEnvelope(t, w).ResponseObject, &created); err != nil {
		t.Fatal(err)
	}
	if created.Local.Email != "new@example.com" {
		t.Fatalf("created email = %q", created.Local.Email)
	}
	if body := w.Body.String(); containsPasswordHash(body) {
		t.Fatalf("password hash leaked: %s", body)
	}

	// signin
	w = env.do("POST", "/api/auth/signin",
		`{"email":"new@example.com","password":"P@ssw0rd1"}`, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("signin code=%d body=%s", w.Code, w.Body.String())
	}
	var signed struct {
		Token string `json:"token"`
	}
	if err := json.Unmarshal(decodeEnvelope(t, w).ResponseObject, &signed); err != nil {
		t.Fatal(err)
	}
	if signed.Token == "" {
		t.Fatal("empty token from signin")
	}

	// the token verifies back to the same user
	claims, err := security.ParseAccess(testJWTSecret, signed.Token)
	if err != nil {
		t.Fatalf("token verify: %v", err)
	}
	if claims.Email != "new@example.com" {
		t.Fatalf("token email = %q", claims.Email)
	}

	// wrong password
	w = env.do("POST", "/api/auth/signin",
		`{"email":"new@example.com","password":"wrong-password"}`, nil)
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("wrong password code=%d body=%s", w.Code, w.Body.String())
	}

	// check-session with the issued token
	w = env.do("GET", "/api/auth/check-session", "", map[string]string{"Authorization": "Bearer " + signed.Token})
	if w.Code != http.StatusOK {
		t.Fatalf("check-session code=%d body=%s", w.Code, w.Body.String())
	}

	// check-session without a header
	w = env.do("GET", "/api/auth/check-session", "", nil)
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("check-session no header code=%d", w.Code)
	}
}

func containsPasswordHash(body string) bool {
	// bcrypt hashes start with $2; the envelope must never carry one
	for i := 0; i+1 < len(body); i++ {
		if body[i] == '$' && body[i+1] == '2' {
			return true
		}
	}
	return false
}

func Test_SignUp_PasswordMismatch_NoWrite(t *testing.T) {
	env := newTestEnv(t)
	defer env.Close()

	w := env.do("POST", "/api/auth/signup",
		`{"email":"mismatch@example.com","password":"P@ssw0rd1","repeatPassword":"different1"}`, signupHdr())
	if w.Code != http.StatusBadRequest {
		t.Fatalf("code=%d body=%s", w.Code, w.Body.String())
	}
	if msg := decodeEnvelope(t, w).Message; msg != "Passwords do not match" {
		t.Fatalf("message = %q", msg)
	}
	if n := env.countDocs("users"); n != 0 {
		t.Fatalf("mismatched signup wrote %d users", n)
	}
}

func Test_SignUp_DuplicateEmail(t *testing.T) {
	env := newTestEnv(t)
	defer env.Close()

	body := `{"email":"dup@example.com","password":"P@ssw0rd1","repeatPassword":"P@ssw0rd1"}`
	if w := env.do("POST", "/api/auth/signup", body, signupHdr()); w.Code != http.StatusCreated {
		t.Fatalf("first signup: %d %s", w.Code, w.Body.String())
	}
	w := env.do("POST", "/api/auth/signup", body, signupHdr())
	if w.Code != http.StatusConflict {
		t.Fatalf("second signup code=%d body=%s", w.Code, w.Body.String())
	}
	if msg := decodeEnvelope(t, w).Message; msg != "Email is already in use" {
		t.Fatalf("message = %q", msg)
	}
	if n := env.countDocs("users"); n != 1 {
		t.Fatalf("expected exactly one user, got %d", n)
	}

	// case-insensitive: uppercased email is still the same account
	w = env.do("POST", "/api/auth/signup",
		`{"email":"DUP@example.com","password":"P@ssw0rd1","repeatPassword":"P@ssw0rd1"}`, signupHdr())
	if w.Code != http.StatusConflict {
		t.Fatalf("uppercase signup code=%d body=%s", w.Code, w.Body.String())
	}
}

func Test_SignUp_AccessTokenGate(t *testing.T) {
	env := newTestEnv(t)
	defer env.Close()

	body := `{"email":"gated@example.com","password":"P@ssw0rd1","repeatPassword":"P@ssw0rd1"}`
	if w := env.do("POST", "/api/auth/signup", body, nil); w.Code != http.StatusUnauthorized {
		t.Fatalf("missing accesstoken code=%d", w.Code)
	}
	if w := env.do("POST", "/api/auth/signup", body, map[string]string{"accesstoken": "nope"}); w.Code != http.StatusUnauthorized {
		t.Fatalf("bad accesstoken code=%d", w.Code)
	}
}

func Test_SignIn_UnknownUser(t *testing.T) {
	env := newTestEnv(t)
	defer env.Close()

	w := env.do("POST", "/api/auth/signin", `{"email":"ghost@example.com","password":"whatever1"}`, nil)
	if w.Code != http.StatusNotFound {
		t.Fatalf("code=%d body=%s", w.Code, w.Body.String())
	}
	if msg := decodeEnvelope(t, w).Message; msg != "User not found" {
		t.Fatalf("message = %q", msg)
	}
}

func Test_AddInvite_Conflict(t *testing.T) {
	env := newTestEnv(t)
	defer env.Close()

	w := env.do("POST", "/api/auth/add-invite", `{"email":"guest@example.com"}`, signupHdr())
	if w.Code != http.StatusCreated {
		t.Fatalf("first invite: %d %s", w.Code, w.Body.String())
	}

	w = env.do("POST", "/api/auth/add-invite", `{"email":"guest@example.com"}`, signupHdr())
	if w.Code != http.StatusConflict {
		t.Fatalf("second invite code=%d body=%s", w.Code, w.Body.String())
	}
	if msg := decodeEnvelope(t, w).Message; msg != "Invite already exists" {
		t.Fatalf("message = %q", msg)
	}
	if n := env.countDocs("invites"); n != 1 {
		t.Fatalf("expected exactly one invite, got %d", n)
	}
}

func Test_Logout_ClearsSessionCookie(t *testing.T) {
	env := newTestEnv(t)
	defer env.Close()

	w := env.do("GET", "/api/auth/logout", "", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("logout code=%d", w.Code)
	}
	cleared := false
	for _, ck := range w.Result().Cookies() {
		if ck.Name == "session" && ck.MaxAge < 0 {
			cleared = true
		}
	}
	if !cleared {
		t.Fatal("session cookie was not cleared")
	}
}

func Test_SessionCookie_Auth(t *testing.T) {
	env := newTestEnv(t)
	defer env.Close()

	w := env.do("POST", "/api/auth/signup",
		`{"email":"cookie@example.com","password":"P@ssw0rd1","repeatPassword":"P@ssw0rd1"}`, signupHdr())
	if w.Code != http.StatusCreated {
		t.Fatalf("signup: %d %s", w.Code, w.Body.String())
	}
	w = env.do("POST", "/api/auth/signin", `{"email":"cookie@example.com","password":"P@ssw0rd1"}`, nil)
	var signed struct {
		Token string `json:"token"`
	}
	_ = json.Unmarshal(decodeEnvelope(t, w).ResponseObject, &signed)

	// the middleware accepts the token as a session cookie too, which
	// is how the OAuth callback authenticates the browser
	w = env.do("GET", "/api/auth/login/success", "", map[string]string{"Cookie": "session=" + signed.Token})
	if w.Code != http.StatusOK {
		t.Fatalf("login/success code=%d body=%s", w.Code, w.Body.String())
	}
	var resp struct {
		Token string `json:"token"`
	}
	if err := json.Unmarshal(decodeEnvelope(t, w).ResponseObject, &resp); err != nil || resp.Token == "" {
		t.Fatalf("login/success token missing: %v body=%s", err, w.Body.String())
	}
}

func Test_GoogleRedirect_And_BadState(t *testing.T) {
	env := newTestEnv(t)
	defer env.Close()

	w := env.do("GET", "/api/auth/google", "", nil)
	if w.Code != http.StatusFound {
		t.Fatalf("google redirect code=%d", w.Code)
	}
	if loc := w.Header().Get("Location"); loc == "" {
		t.Fatal("no redirect location")
	}

	// forged state bounces to the failed page
	w = env.do("GET", "/api/auth/google/callback?state=forged&code=abc", "", nil)
	if w.Code != http.StatusFound {
		t.Fatalf("callback code=%d", w.Code)
	}
	if loc := w.Header().Get("Location"); loc != "http://localhost:3000/auth/failed" {
		t.Fatalf("callback location = %q", loc)
	}
}

type capturedPublish struct {
	ctx      context.Context
	exchange string
	key      string
}

type capturePub struct {
	ch chan capturedPublish
}

func (p *capturePub) Publish(ctx context.Context, exchange, key string, event any, reqID string) error {
	p.ch <- capturedPublish{ctx: ctx, exchange: exchange, key: key}
	return nil
}

func (p *capturePub) Close() error { return nil }

func Test_SignUp_PublishOutlivesRequest(t *testing.T) {
	pub := &capturePub{ch: make(chan capturedPublish, 1)}
	env := newTestEnvWithPub(t, pub)
	defer env.Close()

	body := `{"email":"pub@example.com","password":"P@ssw0rd1","repeatPassword":"P@ssw0rd1"}`
	reqCtx, cancel := context.WithCancel(context.Background())
	w := httptest.NewRecorder()
	req := httptest.NewRequest("POST", "/api/auth/signup", bytes.NewBufferString(body))
	req = req.WithContext(reqCtx)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("accesstoken", testAccessToken)
	env.Router.ServeHTTP(w, req)
	cancel()

	if w.Code != http.StatusOK {
		t.Fatalf("signup status = %d, body=%s", w.Code, w.Body.String())
	}

	select {
	case got := <-pub.ch:
		if got.exchange != queue.AuthExchange || got.key != queue.KeyUserRegistered {
			t.Fatalf("published %s/%s", got.exchange, got.key)
		}
		if err := got.ctx.Err(); err != nil {
			t.Fatalf("publish context canceled with the request: %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("no event published")
	}
}

func Test_Docs_Served(t *testing.T) {
	env := newTestEnv(t)
	defer env.Close()

	w := env.do("GET", "/docs/doc.json", "", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("doc.json status = %d, body=%s", w.Code, w.Body.String())
	}
	var doc struct {
		Swagger string                     `json:"swagger"`
		Paths   map[string]json.RawMessage `json:"paths"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &doc); err != nil {
		t.Fatalf("doc.json parse: %v", err)
	}
	if doc.Swagger != "2.0" {
		t.Fatalf("swagger version = %q", doc.Swagger)
	}
	if _, ok := doc.Paths["/api/auth/signup"]; !ok {
		t.Fatal("signup path missing from doc.json")
	}
}
