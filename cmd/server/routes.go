package main

import "net/http"

func (app *application) routes() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /health", app.handleHealth)
	mux.HandleFunc("/ws", app.authenticate(app.handleWebSocket))

	mux.HandleFunc("POST /api/register", app.handleRegister)
	mux.HandleFunc("POST /api/login", app.handleLogin)
	mux.HandleFunc("GET /api/profile", app.requireToken(app.handleProfile))
	mux.HandleFunc("GET /api/users/{id}", app.handleGetUser)
	mux.HandleFunc("GET /api/leaderboard", app.handleLeaderboard)

	return mux
}
