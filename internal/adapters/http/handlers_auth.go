package web

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"carpa/internal/adapters/http/middleware"
	accountStore "carpa/internal/adapters/storage/account"
	"carpa/internal/application/orchestrators"
	"carpa/internal/domain/account"
)

// authMessages translates auth errors for the sign-in page.
var authMessages = map[error]string{
	orchestrators.ErrInvalidCredentials: "Email o contraseña incorrectos.",
	orchestrators.ErrAccountLocked:      "Demasiados intentos fallidos. Vuelve a intentarlo en 15 minutos.",
	orchestrators.ErrEmailAlreadyExists: "Ya existe una cuenta con ese email.",
	accountStore.ErrEmailTaken:          "Ya existe una cuenta con ese email.",
	account.ErrEmptyEmail:               "Introduce tu email.",
	account.ErrInvalidEmail:             "El email no es válido.",
	account.ErrEmailTooLong:             "El email es demasiado largo.",
	account.ErrFullNameTooLong:          "El nombre es demasiado largo.",
	account.ErrEmptyPassword:            "Introduce una contraseña.",
	account.ErrPasswordTooShort:         "La contraseña debe tener al menos 6 caracteres.",
}

func authMessage(err error) (string, bool) {
	for target, msg := range authMessages {
		if errors.Is(err, target) {
			return msg, true
		}
	}
	return "", false
}

// authPage is the data of auth.html.
type authPage struct {
	Mode     string // "login" or "signup"
	Next     string
	Email    string
	FullName string
	Error    string
}

// handleAuth handles GET /auth: the sign-in and sign-up forms.
func handleAuth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method Not Allowed", http.StatusMethodNotAllowed)
		return
	}
	next := localPath(r.URL.Query().Get("next"), "/dashboard")
	if _, ok := middleware.GetSessionFromContext(r.Context()); ok {
		http.Redirect(w, r, next, http.StatusSeeOther)
		return
	}
	mode := "login"
	if r.URL.Query().Get("modo") == "registro" {
		mode = "signup"
	}
	renderTemplate(w, r, "auth.html", authPage{Mode: mode, Next: next})
}

// startSession creates the session and sets its cookie.
func startSession(w http.ResponseWriter, accountID, email, fullName, role string) error {
	token, err := sessions.Create(accountID, email, fullName, role)
	if err != nil {
		return err
	}
	middleware.SetSessionCookie(w, token)
	return nil
}

// handleLogin handles POST /auth/login
func handleLogin(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method Not Allowed", http.StatusMethodNotAllowed)
		return
	}
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Invalid form submission", http.StatusBadRequest)
		return
	}
	next := localPath(r.FormValue("next"), "/dashboard")

	input := orchestrators.LoginInput{
		Email:    r.FormValue("email"),
		Password: r.FormValue("password"),
	}
	deps := orchestrators.LoginDeps{
		AccountStore: stores.AccountStore,
		Now:          time.Now,
	}

	result, err := orchestrators.ExecuteLogin(r.Context(), input, deps)
	if err != nil {
		msg, known := authMessage(err)
		if !known {
			internalError(w, r, err)
			return
		}
		status := http.StatusUnauthorized
		if errors.Is(err, orchestrators.ErrAccountLocked) {
			status = http.StatusTooManyRequests
		}
		renderStatus(w, r, status, "auth.html", authPage{Mode: "login", Next: next, Email: input.Email, Error: msg})
		return
	}

	if err := startSession(w, result.AccountID, result.Email, result.FullName, result.Role); err != nil {
		internalError(w, r, err)
		return
	}
	http.Redirect(w, r, next, http.StatusSeeOther)
}

// handleSignup handles POST /auth/signup: creates a member account and signs it in.
func handleSignup(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method Not Allowed", http.StatusMethodNotAllowed)
		return
	}
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Invalid form submission", http.StatusBadRequest)
		return
	}
	next := localPath(r.FormValue("next"), "/dashboard")

	input := orchestrators.CreateAccountInput{
		Email:    r.FormValue("email"),
		Password: r.FormValue("password"),
		FullName: r.FormValue("full_name"),
		Role:     account.RoleMember,
	}
	deps := orchestrators.CreateAccountDeps{
		AccountStore: stores.AccountStore,
		GenerateID:   generateID,
		Now:          time.Now,
	}

	acct, err := orchestrators.ExecuteCreateAccount(r.Context(), input, deps)
	if err != nil {
		msg, known := authMessage(err)
		if !known {
			internalError(w, r, err)
			return
		}
		renderStatus(w, r, http.StatusBadRequest, "auth.html", authPage{
			Mode: "signup", Next: next, Email: input.Email, FullName: input.FullName, Error: msg,
		})
		return
	}

	if err := startSession(w, acct.ID, acct.Email, acct.FullName, acct.Role); err != nil {
		internalError(w, r, err)
		return
	}
	http.Redirect(w, r, next, http.StatusSeeOther)
}

// handleLogout handles POST /auth/logout
func handleLogout(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method Not Allowed", http.StatusMethodNotAllowed)
		return
	}
	if token := middleware.SessionToken(r); token != "" {
		sessions.Delete(token)
	}
	if sess, ok := middleware.GetSessionFromContext(r.Context()); ok {
		slog.Info("auth_event", "event", "logout", "account_id", sess.AccountID)
	}
	middleware.ClearSessionCookie(w)
	http.Redirect(w, r, "/", http.StatusSeeOther)
}
