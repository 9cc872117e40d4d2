package web

import (
	"database/sql"
	"errors"
	"net/http"

	"carpa/internal/adapters/http/middleware"
	"carpa/internal/application/projections"
)

// handleDashboard handles GET /dashboard: greeting and upcoming bookings.
func handleDashboard(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method Not Allowed", http.StatusMethodNotAllowed)
		return
	}
	sess, ok := middleware.GetSessionFromContext(r.Context())
	if !ok {
		http.Redirect(w, r, middleware.LoginURL("/dashboard"), http.StatusSeeOther)
		return
	}

	result, err := projections.GetDashboard(r.Context(), projections.GetDashboardQuery{
		AccountID: sess.AccountID,
	}, projections.GetDashboardDeps{
		AccountStore: stores.AccountStore,
		BookingStore: stores.BookingStore,
		Now:          timeNow,
	})
	if errors.Is(err, sql.ErrNoRows) {
		// The account was removed while signed in.
		if token := middleware.SessionToken(r); token != "" {
			sessions.Delete(token)
		}
		middleware.ClearSessionCookie(w)
		http.Redirect(w, r, "/auth", http.StatusSeeOther)
		return
	}
	if err != nil {
		internalError(w, r, err)
		return
	}
	renderTemplate(w, r, "dashboard.html", result)
}
