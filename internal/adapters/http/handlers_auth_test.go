package web

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	accountDomain "carpa/internal/domain/account"
)

func sessionCookie(rec *httptest.ResponseRecorder) *http.Cookie {
	for _, c := range rec.Result().Cookies() {
		if c.Name == "carpa_session" {
			return c
		}
	}
	return nil
}

// --- Tests: /auth ---

// TestHandleAuth_Modes tests the corresponding handler.
func TestHandleAuth_Modes(t *testing.T) {
	setupTest(t)

	rec := httptest.NewRecorder()
	handleAuth(rec, httptest.NewRequest(http.MethodGet, "/auth", nil))
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), `action="/auth/login"`) {
		t.Errorf("login form: got %d", rec.Code)
	}

	rec = httptest.NewRecorder()
	handleAuth(rec, httptest.NewRequest(http.MethodGet, "/auth?modo=registro", nil))
	if !strings.Contains(rec.Body.String(), `action="/auth/signup"`) {
		t.Error("expected the sign-up form")
	}
}

// TestHandleAuth_SignedInRedirects tests the corresponding handler.
func TestHandleAuth_SignedInRedirects(t *testing.T) {
	setupTest(t)
	sess := seedMember(t)
	rec := httptest.NewRecorder()
	handleAuth(rec, authRequest(http.MethodGet, "/auth?next=/horarios", "", sess))
	if rec.Code != http.StatusSeeOther || rec.Header().Get("Location") != "/horarios" {
		t.Errorf("got %d to %q, want 303 to /horarios", rec.Code, rec.Header().Get("Location"))
	}
}

// --- Tests: /auth/signup ---

// TestHandleSignup_CreatesMemberAndSession tests the corresponding handler.
func TestHandleSignup_CreatesMemberAndSession(t *testing.T) {
	setupTest(t)
	form := url.Values{
		"email":     {"nuevo@example.com"},
		"password":  {"secreto123"},
		"full_name": {"Nuevo Socio"},
		"next":      {"/horarios"},
	}
	rec := httptest.NewRecorder()
	handleSignup(rec, formRequest("/auth/signup", form, nil))

	if rec.Code != http.StatusSeeOther {
		t.Fatalf("got %d, want %d: %s", rec.Code, http.StatusSeeOther, rec.Body.String())
	}
	if loc := rec.Header().Get("Location"); loc != "/horarios" {
		t.Errorf("Location = %q, want /horarios", loc)
	}
	cookie := sessionCookie(rec)
	if cookie == nil {
		t.Fatal("no session cookie set")
	}
	sess, ok := sessions.Get(cookie.Value)
	if !ok || sess.Role != accountDomain.RoleMember || sess.FullName != "Nuevo Socio" {
		t.Errorf("session = %+v, ok=%v", sess, ok)
	}
	acct, err := stores.AccountStore.GetByEmail(context.Background(), "nuevo@example.com")
	if err != nil {
		t.Fatalf("GetByEmail: %v", err)
	}
	if acct.PasswordHash == "secreto123" || acct.PasswordHash == "" {
		t.Error("password must be stored hashed")
	}
}

// TestHandleSignup_Rejections tests the corresponding handler.
func TestHandleSignup_Rejections(t *testing.T) {
	tests := []struct {
		name string
		form url.Values
		want string
	}{
		{"short password", url.Values{"email": {"a@example.com"}, "password": {"123"}}, "al menos 6 caracteres"},
		{"invalid email", url.Values{"email": {"sin-arroba"}, "password": {"secreto123"}}, "no es válido"},
		{"duplicate email", url.Values{"email": {"ana@example.com"}, "password": {"secreto123"}}, "Ya existe una cuenta"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			setupTest(t)
			seedMember(t)
			rec := httptest.NewRecorder()
			handleSignup(rec, formRequest("/auth/signup", tt.form, nil))
			if rec.Code != http.StatusBadRequest {
				t.Fatalf("got %d, want %d", rec.Code, http.StatusBadRequest)
			}
			if !strings.Contains(rec.Body.String(), tt.want) {
				t.Errorf("body missing %q", tt.want)
			}
			if sessionCookie(rec) != nil {
				t.Error("a rejected sign-up must not start a session")
			}
		})
	}
}

// --- Tests: /auth/login ---

// TestHandleLogin_Success tests the corresponding handler.
func TestHandleLogin_Success(t *testing.T) {
	setupTest(t)
	seedMember(t)
	form := url.Values{"email": {"ana@example.com"}, "password": {"secreto123"}, "next": {"/horarios?semana=2024-06-10"}}

	rec := httptest.NewRecorder()
	handleLogin(rec, formRequest("/auth/login", form, nil))
	if rec.Code != http.StatusSeeOther {
		t.Fatalf("got %d, want %d", rec.Code, http.StatusSeeOther)
	}
	if loc := rec.Header().Get("Location"); loc != "/horarios?semana=2024-06-10" {
		t.Errorf("Location = %q", loc)
	}
	if sessionCookie(rec) == nil || sessions.Len() != 1 {
		t.Error("expected one session")
	}
}

// TestHandleLogin_OffsiteNext tests the corresponding handler.
func TestHandleLogin_OffsiteNext(t *testing.T) {
	setupTest(t)
	seedMember(t)
	form := url.Values{"email": {"ana@example.com"}, "password": {"secreto123"}, "next": {"//evil.example"}}
	rec := httptest.NewRecorder()
	handleLogin(rec, formRequest("/auth/login", form, nil))
	if loc := rec.Header().Get("Location"); loc != "/dashboard" {
		t.Errorf("Location = %q, want /dashboard", loc)
	}
}

// TestHandleLogin_WrongPassword tests the corresponding handler.
func TestHandleLogin_WrongPassword(t *testing.T) {
	setupTest(t)
	seedMember(t)
	form := url.Values{"email": {"ana@example.com"}, "password": {"incorrecta"}}
	rec := httptest.NewRecorder()
	handleLogin(rec, formRequest("/auth/login", form, nil))
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("got %d, want %d", rec.Code, http.StatusUnauthorized)
	}
	body := rec.Body.String()
	if !strings.Contains(body, "Email o contraseña incorrectos") {
		t.Error("body missing the credentials message")
	}
	if !strings.Contains(body, `value="ana@example.com"`) {
		t.Error("the email should be kept in the form")
	}
}

// TestHandleLogin_UnknownEmail tests the corresponding handler.
func TestHandleLogin_UnknownEmail(t *testing.T) {
	setupTest(t)
	rec := httptest.NewRecorder()
	handleLogin(rec, formRequest("/auth/login", url.Values{"email": {"nadie@example.com"}, "password": {"secreto123"}}, nil))
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("got %d, want %d", rec.Code, http.StatusUnauthorized)
	}
}

// --- Tests: /auth/logout ---

// TestHandleLogout tests the corresponding handler.
func TestHandleLogout(t *testing.T) {
	setupTest(t)
	sess := seedMember(t)
	token, err := sessions.Create(sess.AccountID, sess.Email, sess.FullName, sess.Role)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	req := formRequest("/auth/logout", url.Values{}, &sess)
	req.AddCookie(&http.Cookie{Name: "carpa_session", Value: token})

	rec := httptest.NewRecorder()
	handleLogout(rec, req)
	if rec.Code != http.StatusSeeOther || rec.Header().Get("Location") != "/" {
		t.Errorf("got %d to %q, want 303 to /", rec.Code, rec.Header().Get("Location"))
	}
	if _, ok := sessions.Get(token); ok {
		t.Error("session should be deleted")
	}
	if c := sessionCookie(rec); c == nil || c.MaxAge >= 0 {
		t.Error("session cookie should be cleared")
	}
}

// TestHandleLogout_RequiresPost tests the corresponding handler.
func TestHandleLogout_RequiresPost(t *testing.T) {
	setupTest(t)
	rec := httptest.NewRecorder()
	handleLogout(rec, httptest.NewRequest(http.MethodGet, "/auth/logout", nil))
	if rec.Code != http.StatusMethodNotAllowed {
		t.Errorf("got %d, want %d", rec.Code, http.StatusMethodNotAllowed)
	}
}
