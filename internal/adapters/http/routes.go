package web

import "net/http"

// registerRoutes mounts every page and API endpoint on mux.
// Handlers check the method themselves so a wrong method gets a 405 from the handler.
func registerRoutes(mux *http.ServeMux) {
	// Public pages
	mux.HandleFunc("/", handleHome)
	mux.HandleFunc("/horarios", handleSchedule)
	mux.HandleFunc("/profesores", handleProfessors)
	mux.HandleFunc("/blog", handleBlog)
	mux.HandleFunc("/blog/{id}", handleBlogPost)
	mux.HandleFunc("/info", handleInfo)

	// Bookings
	mux.HandleFunc("/horarios/reservar", handleScheduleToggle)
	mux.HandleFunc("/api/bookings", handleBookingsAPI)
	mux.HandleFunc("/api/bookings/toggle", handleToggleAPI)

	// Auth
	mux.HandleFunc("/auth", handleAuth)
	mux.HandleFunc("/auth/login", handleLogin)
	mux.HandleFunc("/auth/signup", handleSignup)
	mux.HandleFunc("/auth/logout", handleLogout)

	// Members
	mux.HandleFunc("/dashboard", handleDashboard)
	mux.HandleFunc("/info/resenas", handleSubmitReview)

	// Admin
	mux.HandleFunc("/admin", handleAdmin)
	mux.HandleFunc("/admin/posts", handleAdminCreatePost)
	mux.HandleFunc("/admin/posts/{id}/{action}", handleAdminPostAction)
	mux.HandleFunc("/admin/professors", handleAdminCreateProfessor)
	mux.HandleFunc("/admin/professors/{id}/{action}", handleAdminProfessorAction)
	mux.HandleFunc("/admin/reviews/{id}/{action}", handleAdminReviewAction)
	mux.HandleFunc("/api/admin/perf", handleAdminPerf)

	mux.HandleFunc("/healthz", handleHealth)
}

// handleHealth handles GET /healthz for load balancers.
func handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Write([]byte("ok"))
}
