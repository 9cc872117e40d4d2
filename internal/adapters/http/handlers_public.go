package web

import (
	"database/sql"
	"errors"
	"net/http"
	"strconv"
	"time"

	"carpa/internal/adapters/http/middleware"
	"carpa/internal/application/orchestrators"
	"carpa/internal/application/projections"
	"carpa/internal/domain/review"
	"carpa/internal/domain/timetable"
)

// handleHome handles GET /: the landing page with the class timetable.
func handleHome(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		handleNotFound(w, r)
		return
	}
	if r.Method != http.MethodGet {
		http.Error(w, "Method Not Allowed", http.StatusMethodNotAllowed)
		return
	}
	renderTemplate(w, r, "home.html", map[string]any{
		"Sessions": timetable.Sessions,
	})
}

// handleProfessors handles GET /profesores: active professors only.
func handleProfessors(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method Not Allowed", http.StatusMethodNotAllowed)
		return
	}
	list, err := projections.ListActiveProfessors(r.Context(), stores.ProfessorStore)
	if err != nil {
		internalError(w, r, err)
		return
	}
	renderTemplate(w, r, "professors.html", map[string]any{
		"Professors": list,
	})
}

// handleBlog handles GET /blog: published posts, newest first.
func handleBlog(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method Not Allowed", http.StatusMethodNotAllowed)
		return
	}
	posts, err := projections.ListPublishedPosts(r.Context(), stores.PostStore)
	if err != nil {
		internalError(w, r, err)
		return
	}
	renderTemplate(w, r, "blog.html", map[string]any{
		"Posts": posts,
	})
}

// handleBlogPost handles GET /blog/{id}. Drafts are visible to admins only.
func handleBlogPost(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method Not Allowed", http.StatusMethodNotAllowed)
		return
	}
	post, err := stores.PostStore.GetByID(r.Context(), r.PathValue("id"))
	if errors.Is(err, sql.ErrNoRows) || (err == nil && !post.Published && !middleware.IsAdmin(r.Context())) {
		handleNotFound(w, r)
		return
	}
	if err != nil {
		internalError(w, r, err)
		return
	}
	renderTemplate(w, r, "blog_post.html", map[string]any{
		"Post": post,
	})
}

// infoPage is the data of info.html.
type infoPage struct {
	projections.InfoPageResult
	Flash   string
	Error   string
	Rating  int
	Comment string
}

func renderInfo(w http.ResponseWriter, r *http.Request, status int, page infoPage) {
	deps := projections.GetInfoPageDeps{
		AccountStore: stores.AccountStore,
		ReviewStore:  stores.ReviewStore,
		Now:          timeNow,
	}
	result, err := projections.GetInfoPage(r.Context(), deps)
	if err != nil {
		internalError(w, r, err)
		return
	}
	page.InfoPageResult = result
	renderStatus(w, r, status, "info.html", page)
}

// handleInfo handles GET /info: location, live timetable and approved reviews.
func handleInfo(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method Not Allowed", http.StatusMethodNotAllowed)
		return
	}
	renderInfo(w, r, http.StatusOK, infoPage{Flash: flashMessages[r.URL.Query().Get("aviso")]})
}

// reviewMessages translates review validation errors.
var reviewMessages = map[error]string{
	review.ErrInvalidRating:  "Elige una puntuación de 1 a 5 estrellas.",
	review.ErrEmptyComment:   "Escribe un comentario.",
	review.ErrCommentTooLong: "El comentario es demasiado largo.",
}

// handleSubmitReview handles POST /info/resenas. New reviews wait for admin approval.
func handleSubmitReview(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method Not Allowed", http.StatusMethodNotAllowed)
		return
	}
	sess, ok := middleware.GetSessionFromContext(r.Context())
	if !ok {
		http.Redirect(w, r, middleware.LoginURL("/info"), http.StatusSeeOther)
		return
	}
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Invalid form submission", http.StatusBadRequest)
		return
	}
	rating, _ := strconv.Atoi(r.FormValue("rating"))
	comment := r.FormValue("comment")

	_, err := orchestrators.ExecuteSubmitReview(r.Context(), orchestrators.SubmitReviewInput{
		UserID:  sess.AccountID,
		Rating:  rating,
		Comment: comment,
	}, orchestrators.SubmitReviewDeps{
		ReviewStore: stores.ReviewStore,
		GenerateID:  generateID,
		Now:         time.Now,
	})
	if err != nil {
		for target, msg := range reviewMessages {
			if errors.Is(err, target) {
				renderInfo(w, r, http.StatusBadRequest, infoPage{Error: msg, Rating: rating, Comment: comment})
				return
			}
		}
		internalError(w, r, err)
		return
	}
	http.Redirect(w, r, "/info?aviso="+flashReview+"#resenas", http.StatusSeeOther)
}
