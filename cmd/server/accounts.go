package main

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"go.uber.org/zap"

	"github.com/tecu23/match-server/internal/auth"
	"github.com/tecu23/match-server/pkg/accounts"
)

type registerRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type authResponse struct {
	Account accounts.Account `json:"account"`
	Token   string           `json:"token,omitempty"`
}

// handleRegister handles POST /api/register
func (app *application) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		app.errorJSON(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if req.Username == "" || req.Email == "" || len(req.Password) < 6 {
		app.errorJSON(w, http.StatusBadRequest,
			"username, email and a password of at least 6 characters are required")
		return
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		app.serverError(w, err)
		return
	}

	account := &accounts.Account{
		Username: req.Username,
		Email:    req.Email,
		Password: hash,
	}
	if err := app.Store.Create(r.Context(), account); err != nil {
		app.errorJSON(w, http.StatusConflict, "username or email already taken")
		return
	}

	app.Logger.Info("account registered", zap.String("username", account.Username))
	app.writeJSON(w, http.StatusCreated, app.authResponseFor(account))
}

// handleLogin handles POST /api/login
func (app *application) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		app.errorJSON(w, http.StatusBadRequest, "invalid request body")
		return
	}

	account, err := app.Store.FindByUsername(r.Context(), req.Username)
	if err != nil || !auth.CheckPassword(account.Password, req.Password) {
		app.errorJSON(w, http.StatusUnauthorized, "invalid username or password")
		return
	}

	app.writeJSON(w, http.StatusOK, app.authResponseFor(account))
}

// handleProfile handles GET /api/profile for the logged-in account
func (app *application) handleProfile(w http.ResponseWriter, r *http.Request) {
	accountID, _ := r.Context().Value(accountIDKey).(string)

	account, err := app.Store.FindByID(r.Context(), accountID)
	if err != nil {
		if errors.Is(err, accounts.ErrNotFound) {
			app.errorJSON(w, http.StatusNotFound, "account not found")
			return
		}
		app.serverError(w, err)
		return
	}

	app.writeJSON(w, http.StatusOK, account)
}

// handleGetUser handles GET /api/users/{id}
func (app *application) handleGetUser(w http.ResponseWriter, r *http.Request) {
	account, err := app.Store.FindByID(r.Context(), r.PathValue("id"))
	if err != nil {
		if errors.Is(err, accounts.ErrNotFound) {
			app.errorJSON(w, http.StatusNotFound, "account not found")
			return
		}
		app.serverError(w, err)
		return
	}

	app.writeJSON(w, http.StatusOK, account.Public())
}

// handleLeaderboard handles GET /api/leaderboard
func (app *application) handleLeaderboard(w http.ResponseWriter, r *http.Request) {
	limit := 10
	if v := r.URL.Query().Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			limit = n
		}
	}

	var (
		list []accounts.Account
		err  error
	)
	if app.Leaderboard != nil {
		list, err = app.Leaderboard.Top(r.Context(), limit)
	} else {
		list, err = app.Store.Leaderboard(r.Context(), limit)
		for i := range list {
			list[i] = list[i].Public()
		}
	}
	if err != nil {
		app.serverError(w, err)
		return
	}

	app.writeJSON(w, http.StatusOK, list)
}

func (app *application) authResponseFor(account *accounts.Account) authResponse {
	resp := authResponse{Account: *account}
	if app.Tokens != nil {
		token, err := app.Tokens.Issue(account.ID, account.Username)
		if err != nil {
			app.Logger.Error("issuing token", zap.Error(err))
		} else {
			resp.Token = token
		}
	}
	return resp
}

func (app *application) writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		app.Logger.Error("encoding response", zap.Error(err))
	}
}

func (app *application) errorJSON(w http.ResponseWriter, status int, msg string) {
	app.writeJSON(w, status, map[string]string{"error": msg})
}

func (app *application) serverError(w http.ResponseWriter, err error) {
	app.Logger.Error("internal error", zap.Error(err))
	app.errorJSON(w, http.StatusInternalServerError, "internal server error")
}
