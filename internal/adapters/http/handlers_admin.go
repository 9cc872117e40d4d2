package web

import (
	"database/sql"
	"errors"
	"net/http"
	"time"

	"carpa/internal/adapters/http/middleware"
	"carpa/internal/adapters/http/perf"
	"carpa/internal/application/listutil"
	"carpa/internal/application/orchestrators"
	"carpa/internal/application/projections"
	"carpa/internal/domain/blog"
	"carpa/internal/domain/professor"
	"carpa/internal/domain/review"
)

// perfWindow is how far back the admin performance panel looks.
const perfWindow = time.Hour

// perfTopN is how many slow paths and queries the panel lists.
const perfTopN = 10

// adminMessages translates admin form errors.
var adminMessages = map[error]string{
	blog.ErrEmptyTitle:           "El título es obligatorio.",
	blog.ErrEmptyContent:         "El contenido es obligatorio.",
	blog.ErrTitleTooLong:         "El título es demasiado largo.",
	blog.ErrContentTooLong:       "El contenido es demasiado largo.",
	blog.ErrInvalidImageURL:      "La URL de la imagen debe empezar por http:// o https://.",
	professor.ErrEmptyName:       "El nombre es obligatorio.",
	professor.ErrNameTooLong:     "El nombre es demasiado largo.",
	professor.ErrInvalidPhotoURL: "La URL de la foto debe empezar por http:// o https://.",
	review.ErrAlreadyApproved:    "La reseña ya estaba aprobada.",
}

func adminMessage(err error) (string, bool) {
	for target, msg := range adminMessages {
		if errors.Is(err, target) {
			return msg, true
		}
	}
	return "", false
}

// requireAdmin checks the session for admin role and returns the session.
// Visitors are sent to sign in; members get 403.
func requireAdmin(w http.ResponseWriter, r *http.Request) (middleware.Session, bool) {
	sess, ok := middleware.GetSessionFromContext(r.Context())
	if !ok {
		http.Redirect(w, r, middleware.LoginURL("/admin"), http.StatusSeeOther)
		return middleware.Session{}, false
	}
	if !sess.IsAdmin() {
		middleware.Deny(r, sess, "admin")
		http.Error(w, "Forbidden", http.StatusForbidden)
		return middleware.Session{}, false
	}
	return sess, true
}

// adminPage is the data of admin.html.
type adminPage struct {
	projections.AdminPanelResult
	Perf      perf.Snapshot
	Tab       string
	Error     string
	Post      formValues
	Professor formValues
}

// formValues keeps submitted values when a create form is re-rendered.
type formValues map[string]string

func renderAdmin(w http.ResponseWriter, r *http.Request, status int, page adminPage) {
	result, err := projections.GetAdminPanel(r.Context(), projections.GetAdminPanelDeps{
		AccountStore:   stores.AccountStore,
		BookingStore:   stores.BookingStore,
		PostStore:      stores.PostStore,
		ProfessorStore: stores.ProfessorStore,
		ReviewStore:    stores.ReviewStore,
		BookingPage:    listutil.ParsePage(r.URL.Query()),
		Now:            timeNow,
	})
	if err != nil {
		internalError(w, r, err)
		return
	}
	page.AdminPanelResult = result
	if perfCollector != nil {
		page.Perf = perfCollector.Snapshot(time.Now().Add(-perfWindow), perfTopN)
	}
	if page.Tab == "" {
		page.Tab = "reservas"
	}
	renderStatus(w, r, status, "admin.html", page)
}

// handleAdmin handles GET /admin: every table of the console.
func handleAdmin(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method Not Allowed", http.StatusMethodNotAllowed)
		return
	}
	if _, ok := requireAdmin(w, r); !ok {
		return
	}
	renderAdmin(w, r, http.StatusOK, adminPage{
		Tab:   r.URL.Query().Get("tab"),
		Error: adminErrorParam(r),
	})
}

func adminErrorParam(r *http.Request) string {
	if r.URL.Query().Get("aviso") == "ya-aprobada" {
		return adminMessages[review.ErrAlreadyApproved]
	}
	return ""
}

// adminActionResult turns an action error into a response.
// Missing records are 404; known validation errors go back to the tab.
func adminActionResult(w http.ResponseWriter, r *http.Request, tab string, err error) {
	switch {
	case err == nil:
		http.Redirect(w, r, "/admin?tab="+tab, http.StatusSeeOther)
	case errors.Is(err, sql.ErrNoRows):
		http.Error(w, "Not Found", http.StatusNotFound)
	case errors.Is(err, review.ErrAlreadyApproved):
		http.Redirect(w, r, "/admin?tab="+tab+"&aviso=ya-aprobada", http.StatusSeeOther)
	default:
		internalError(w, r, err)
	}
}

// handleAdminCreatePost handles POST /admin/posts
func handleAdminCreatePost(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method Not Allowed", http.StatusMethodNotAllowed)
		return
	}
	if _, ok := requireAdmin(w, r); !ok {
		return
	}
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Invalid form submission", http.StatusBadRequest)
		return
	}
	input := orchestrators.CreatePostInput{
		Title:     r.FormValue("title"),
		Content:   r.FormValue("content"),
		ImageURL:  r.FormValue("image_url"),
		Published: r.FormValue("published") == "on",
	}
	_, err := orchestrators.ExecuteCreatePost(r.Context(), input, orchestrators.CreatePostDeps{
		PostStore:  stores.PostStore,
		GenerateID: generateID,
		Now:        time.Now,
	})
	if msg, known := adminMessage(err); known {
		renderAdmin(w, r, http.StatusBadRequest, adminPage{
			Tab:   "blog",
			Error: msg,
			Post:  formValues{"title": input.Title, "content": input.Content, "image_url": input.ImageURL},
		})
		return
	}
	adminActionResult(w, r, "blog", err)
}

// handleAdminPostAction handles POST /admin/posts/{id}/{publish|unpublish|delete}
func handleAdminPostAction(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method Not Allowed", http.StatusMethodNotAllowed)
		return
	}
	if _, ok := requireAdmin(w, r); !ok {
		return
	}
	id := r.PathValue("id")
	var err error
	switch r.PathValue("action") {
	case "publish":
		err = orchestrators.ExecuteSetPostPublished(r.Context(), id, true, stores.PostStore)
	case "unpublish":
		err = orchestrators.ExecuteSetPostPublished(r.Context(), id, false, stores.PostStore)
	case "delete":
		err = orchestrators.ExecuteDeletePost(r.Context(), id, stores.PostStore)
	default:
		http.Error(w, "Not Found", http.StatusNotFound)
		return
	}
	adminActionResult(w, r, "blog", err)
}

// handleAdminCreateProfessor handles POST /admin/professors
func handleAdminCreateProfessor(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method Not Allowed", http.StatusMethodNotAllowed)
		return
	}
	if _, ok := requireAdmin(w, r); !ok {
		return
	}
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Invalid form submission", http.StatusBadRequest)
		return
	}
	input := orchestrators.CreateProfessorInput{
		Name:      r.FormValue("name"),
		Specialty: r.FormValue("specialty"),
		Bio:       r.FormValue("bio"),
		PhotoURL:  r.FormValue("photo_url"),
	}
	_, err := orchestrators.ExecuteCreateProfessor(r.Context(), input, orchestrators.CreateProfessorDeps{
		ProfessorStore: stores.ProfessorStore,
		GenerateID:     generateID,
		Now:            time.Now,
	})
	if msg, known := adminMessage(err); known {
		renderAdmin(w, r, http.StatusBadRequest, adminPage{
			Tab:       "profesores",
			Error:     msg,
			Professor: formValues{"name": input.Name, "specialty": input.Specialty, "bio": input.Bio, "photo_url": input.PhotoURL},
		})
		return
	}
	adminActionResult(w, r, "profesores", err)
}

// handleAdminProfessorAction handles POST /admin/professors/{id}/{activate|deactivate|delete}
func handleAdminProfessorAction(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method Not Allowed", http.StatusMethodNotAllowed)
		return
	}
	if _, ok := requireAdmin(w, r); !ok {
		return
	}
	id := r.PathValue("id")
	var err error
	switch r.PathValue("action") {
	case "activate":
		err = orchestrators.ExecuteSetProfessorActive(r.Context(), id, true, stores.ProfessorStore)
	case "deactivate":
		err = orchestrators.ExecuteSetProfessorActive(r.Context(), id, false, stores.ProfessorStore)
	case "delete":
		err = orchestrators.ExecuteDeleteProfessor(r.Context(), id, stores.ProfessorStore)
	default:
		http.Error(w, "Not Found", http.StatusNotFound)
		return
	}
	adminActionResult(w, r, "profesores", err)
}

// handleAdminReviewAction handles POST /admin/reviews/{id}/{approve|delete}
func handleAdminReviewAction(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method Not Allowed", http.StatusMethodNotAllowed)
		return
	}
	if _, ok := requireAdmin(w, r); !ok {
		return
	}
	id := r.PathValue("id")
	var err error
	switch r.PathValue("action") {
	case "approve":
		err = orchestrators.ExecuteApproveReview(r.Context(), id, stores.ReviewStore)
	case "delete":
		err = orchestrators.ExecuteDeleteReview(r.Context(), id, stores.ReviewStore)
	default:
		http.Error(w, "Not Found", http.StatusNotFound)
		return
	}
	adminActionResult(w, r, "resenas", err)
}

// handleAdminPerf handles GET /api/admin/perf: the last hour of timings as JSON.
func handleAdminPerf(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method Not Allowed", http.StatusMethodNotAllowed)
		return
	}
	sess, ok := middleware.GetSessionFromContext(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, apiError{Redirect: "/auth"})
		return
	}
	if !sess.IsAdmin() {
		middleware.Deny(r, sess, "admin")
		writeJSON(w, http.StatusForbidden, apiError{Error: "forbidden"})
		return
	}
	if perfCollector == nil {
		writeJSON(w, http.StatusOK, perf.Snapshot{})
		return
	}
	writeJSON(w, http.StatusOK, perfCollector.Snapshot(time.Now().Add(-perfWindow), perfTopN))
}
