package http

import (
	"net/http"
	"net/url"

	"maplebudget/internal/api"
	"maplebudget/internal/log"
	"maplebudget/internal/session"
)

// minPasswordLength is the shortest password the register form accepts.
const minPasswordLength = 6

type authView struct {
	Page
	Email string
}

func (s *Server) handleLoginPage(w http.ResponseWriter, r *http.Request) {
	s.showAuth("login.html", "Connexion", r.URL.Query().Get("email"))(w, r, http.StatusOK, "")
}

func (s *Server) handleRegisterPage(w http.ResponseWriter, r *http.Request) {
	s.showAuth("register.html", "Créer un compte", "")(w, r, http.StatusOK, "")
}

// showAuth renders an auth form keeping the email typed so far.
func (s *Server) showAuth(name, title, email string) showFunc {
	return func(w http.ResponseWriter, r *http.Request, status int, msg string) {
		v := authView{Page: s.page(r, title, "auth"), Email: email}
		v.Error = msg
		s.render(w, r, status, name, v)
	}
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	p, err := parseBody(r)
	if err != nil {
		s.fail(w, r, http.StatusBadRequest, "Requête invalide.", s.showAuth("login.html", "Connexion", ""))
		return
	}
	cred := api.Credentials{Email: p.Get("email"), Password: p.Get("password")}
	show := s.showAuth("login.html", "Connexion", cred.Email)
	if cred.Email == "" || cred.Password == "" {
		s.fail(w, r, http.StatusUnprocessableEntity, "Email et mot de passe requis.", show)
		return
	}

	if _, err := s.client(r).Login(ctx, cred); err != nil {
		log.FromContext(ctx).InfoContext(ctx, "Login rejected",
			log.FieldOperation, "login", log.FieldError, err, "error_type", log.ErrorTypeAuth)
		s.fail(w, r, apiStatus(err), api.Message(err), show)
		return
	}
	s.invalidate(r)
	log.FromContext(ctx).InfoContext(ctx, "User logged in", log.FieldOperation, "login")
	s.redirect(w, r, "/dashboard")
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	p, err := parseBody(r)
	if err != nil {
		s.fail(w, r, http.StatusBadRequest, "Requête invalide.", s.showAuth("register.html", "Créer un compte", ""))
		return
	}
	cred := api.Credentials{Email: p.Get("email"), Password: p.Get("password")}
	show := s.showAuth("register.html", "Créer un compte", cred.Email)

	switch {
	case cred.Email == "":
		s.fail(w, r, http.StatusUnprocessableEntity, "Email requis.", show)
		return
	case len([]rune(cred.Password)) < minPasswordLength:
		s.fail(w, r, http.StatusUnprocessableEntity, "Mot de passe trop court (min 6).", show)
		return
	case cred.Password != p.Get("confirm"):
		s.fail(w, r, http.StatusUnprocessableEntity, "Les mots de passe ne correspondent pas.", show)
		return
	}

	if _, err := s.client(r).Register(ctx, cred); err != nil {
		s.failAPI(w, r, "register", err, show)
		return
	}
	log.FromContext(ctx).InfoContext(ctx, "Account registered", log.FieldOperation, "register")
	s.redirect(w, r, "/login?ok=registered&email="+url.QueryEscape(cred.Email))
}

// handleLogout forgets the token and ends the session.
func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if err := s.client(r).Logout(ctx); err != nil {
		log.FromContext(ctx).WarnContext(ctx, "Failed to clear token", log.FieldError, err)
	}
	s.invalidate(r)
	if sess := session.FromContext(ctx); sess != nil {
		if err := s.sessions.Destroy(w, r, sess.ID); err != nil {
			log.FromContext(ctx).WarnContext(ctx, "Failed to destroy session", log.FieldError, err)
		}
	}
	s.redirect(w, r, "/?ok=logout")
}
