// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"log/slog"
	"net/http"

	"cervejas/internal/forms"
	"cervejas/internal/middleware"
	"cervejas/internal/render"
	"cervejas/internal/session"
)

// Auth groups the login, registration and logout handlers.
type Auth struct {
	renderer *render.Renderer
	users    UserGateway
	sessions Sessions
	flashes  Flasher
}

// NewAuth creates a new Auth handler group.
func NewAuth(renderer *render.Renderer, users UserGateway, sessions Sessions, flashes Flasher) *Auth {
	return &Auth{
		renderer: renderer,
		users:    users,
		sessions: sessions,
		flashes:  flashes,
	}
}

// LoginPage renders the login form.
func (a *Auth) LoginPage(w http.ResponseWriter, r *http.Request) {
	if middleware.SessionFromCtx(r.Context()) != nil {
		http.Redirect(w, r, "/admin", http.StatusSeeOther)
		return
	}
	a.login(w, r, http.StatusOK, forms.Login{}, "")
}

// LoginSubmit checks the credentials against the remote API. A matching
// user starts a session; no match and gateway failures get different
// messages.
func (a *Auth) LoginSubmit(w http.ResponseWriter, r *http.Request) {
	form := forms.LoginFromRequest(r)
	if msg := forms.Validate(form); msg != "" {
		a.login(w, r, http.StatusUnprocessableEntity, form, msg)
		return
	}

	users, err := a.users.Authenticate(r.Context(), form.Username, form.Password)
	if err != nil {
		logError(r, "login lookup failed", err)
		a.login(w, r, http.StatusBadGateway, form, "Ocorreu um erro ao tentar logar. Tente novamente.")
		return
	}
	if len(users) == 0 {
		a.login(w, r, http.StatusUnauthorized, form, "Usuário ou senha inválidos.")
		return
	}

	if _, err := a.sessions.Create(r.Context(), w, session.FromUser(users[0])); err != nil {
		logError(r, "session create failed", err)
		a.login(w, r, http.StatusInternalServerError, form, "Ocorreu um erro ao tentar logar. Tente novamente.")
		return
	}

	slog.Info("user logged in", "username", users[0].Username,
		"request_id", middleware.RequestIDFromCtx(r.Context()))
	http.Redirect(w, r, "/admin", http.StatusSeeOther)
}

func (a *Auth) login(w http.ResponseWriter, r *http.Request, status int, form forms.Login, errMsg string) {
	form.Password = ""
	page(a.renderer, a.flashes, w, r, status, "login", &render.PageData{
		Title: "Entrar",
		Data:  map[string]any{"Form": form, "Error": errMsg},
	})
}

// RegisterPage renders the sign-up form.
func (a *Auth) RegisterPage(w http.ResponseWriter, r *http.Request) {
	a.register(w, r, http.StatusOK, forms.Register{}, nil, "")
}

// RegisterSubmit creates the account and sends the user to the login page.
func (a *Auth) RegisterSubmit(w http.ResponseWriter, r *http.Request) {
	form := forms.RegisterFromRequest(r)
	if errs := forms.Errors(form); errs != nil {
		a.register(w, r, http.StatusUnprocessableEntity, form, errs, "")
		return
	}

	if _, err := a.users.Register(r.Context(), form.Username, form.Password); err != nil {
		logError(r, "register failed", err)
		a.register(w, r, http.StatusBadGateway, form, nil, "Erro ao cadastrar usuário. Tente outro username.")
		return
	}

	flash(a.flashes, w, r, "success", "Cadastro realizado com sucesso!")
	http.Redirect(w, r, "/login", http.StatusSeeOther)
}

func (a *Auth) register(w http.ResponseWriter, r *http.Request, status int, form forms.Register, errs map[string]string, errMsg string) {
	form.Password, form.ConfirmPassword = "", ""
	page(a.renderer, a.flashes, w, r, status, "register", &render.PageData{
		Title: "Cadastro",
		Data:  map[string]any{"Form": form, "Errors": errs, "Error": errMsg},
	})
}

// Logout destroys the session and returns to the home page.
func (a *Auth) Logout(w http.ResponseWriter, r *http.Request) {
	if err := a.sessions.Destroy(r.Context(), w, r); err != nil {
		logError(r, "session destroy failed", err)
	}
	http.Redirect(w, r, "/", http.StatusSeeOther)
}
