package api

import (
	"database/sql"
	"net/http"
)

// NewRouter creates the API router with all endpoints registered.
func NewRouter(db *sql.DB, jwtSecret string) http.Handler {
	mux := http.NewServeMux()

	authHandler := &AuthHandler{DB: db, JWTSecret: jwtSecret}
	orgsHandler := &OrganizationsHandler{DB: db}
	sectionsHandler := &SectionsHandler{DB: db}
	itemsHandler := &ItemsHandler{DB: db}

	authMW := AuthMiddleware(jwtSecret, db)

	// Public: account creation and login.
	mux.HandleFunc("POST /api/auth/signup", authHandler.Signup)
	mux.HandleFunc("POST /api/auth/login", authHandler.Login)

	// Session.
	mux.Handle("POST /api/auth/logout", authMW(http.HandlerFunc(authHandler.Logout)))
	mux.Handle("GET /api/session", authMW(http.HandlerFunc(authHandler.Session)))

	// Organization membership.
	mux.Handle("POST /api/organization/create", authMW(http.HandlerFunc(orgsHandler.Create)))
	mux.Handle("POST /api/organization/join", authMW(http.HandlerFunc(orgsHandler.Join)))

	// Sections.
	mux.Handle("GET /api/sections", authMW(http.HandlerFunc(sectionsHandler.List)))
	mux.Handle("POST /api/sections", authMW(http.HandlerFunc(sectionsHandler.Create)))
	mux.Handle("GET /api/sections/{id}", authMW(http.HandlerFunc(sectionsHandler.Get)))
	mux.Handle("POST /api/sections/{id}", authMW(http.HandlerFunc(sectionsHandler.CreateEntry)))
	mux.Handle("PATCH /api/sections/{id}", authMW(http.HandlerFunc(sectionsHandler.Update)))
	mux.Handle("DELETE /api/sections/{id}", authMW(http.HandlerFunc(sectionsHandler.Delete)))
	mux.Handle("GET /api/sections/{id}/items", authMW(http.HandlerFunc(sectionsHandler.ListItems)))
	mux.Handle("POST /api/sections/{id}/items", authMW(http.HandlerFunc(sectionsHandler.CreateItem)))
	mux.Handle("GET /api/sections/{id}/subsections", authMW(http.HandlerFunc(sectionsHandler.ListSubsections)))
	mux.Handle("POST /api/sections/{id}/subsections", authMW(http.HandlerFunc(sectionsHandler.CreateSubsection)))

	// Items.
	mux.Handle("GET /api/items/{id}", authMW(http.HandlerFunc(itemsHandler.Get)))
	mux.Handle("PATCH /api/items/{id}", authMW(http.HandlerFunc(itemsHandler.Update)))
	mux.Handle("DELETE /api/items/{id}", authMW(http.HandlerFunc(itemsHandler.Delete)))

	return mux
}
