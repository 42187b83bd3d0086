package auth

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/go-chi/render"
	"github.com/justArale/recipe-book-server/core"
	"github.com/sirupsen/logrus"
)

type (
	signupRequest struct {
		Email    string `json:"email"`
		Password string `json:"password"`
		Name     string `json:"name"`
	}

	loginRequest struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
)

// Handler exposes the registration and login flow. It talks to the user
// store directly: account creation is deliberately outside the ownership
// engine, there is no owner yet to authorize against.
type Handler struct {
	users  core.UserStore
	tokens *TokenManager
	creds  core.CredentialVerifier
}

func NewHandler(users core.UserStore, tokens *TokenManager, creds core.CredentialVerifier) *Handler {
	return &Handler{users: users, tokens: tokens, creds: creds}
}

func (h *Handler) HandleSignup(w http.ResponseWriter, r *http.Request) {
	var req signupRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, map[string]string{"error": "Invalid request body"})
		return
	}

	var fields []string
	if strings.TrimSpace(req.Name) == "" {
		fields = append(fields, "name")
	}
	if !strings.Contains(req.Email, "@") {
		fields = append(fields, "email")
	}
	if req.Password == "" {
		fields = append(fields, "password")
	}
	if len(fields) > 0 {
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, map[string]any{"error": "Provide name, email and password", "fields": fields})
		return
	}

	if _, err := h.users.FindByEmail(r.Context(), req.Email); err == nil {
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, map[string]string{"error": "User already exists"})
		return
	} else if !core.IsNotFound(err) {
		logrus.WithField("error", err).Error("Failed to check for existing user")
		render.Status(r, http.StatusInternalServerError)
		render.JSON(w, r, map[string]string{"error": "Failed to create the user"})
		return
	}

	digest, err := h.creds.Hash(req.Password)
	if err != nil {
		logrus.WithField("error", err).Error("Failed to hash password")
		render.Status(r, http.StatusInternalServerError)
		render.JSON(w, r, map[string]string{"error": "Failed to create the user"})
		return
	}

	user, err := h.users.Create(r.Context(), &core.User{
		Name:     req.Name,
		Email:    req.Email,
		Password: digest,
	})
	if err != nil {
		logrus.WithField("error", err).Error("Failed to create user")
		render.Status(r, http.StatusInternalServerError)
		render.JSON(w, r, map[string]string{"error": "Failed to create the user"})
		return
	}

	render.Status(r, http.StatusCreated)
	render.JSON(w, r, user)
}

func (h *Handler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, map[string]string{"error": "Invalid request body"})
		return
	}

	user, err := h.users.FindByEmail(r.Context(), req.Email)
	if err != nil {
		if core.IsNotFound(err) {
			render.Status(r, http.StatusUnauthorized)
			render.JSON(w, r, map[string]string{"error": "Wrong email or password"})
			return
		}
		logrus.WithField("error", err).Error("Failed to look up user for login")
		render.Status(r, http.StatusInternalServerError)
		render.JSON(w, r, map[string]string{"error": "Failed to log in"})
		return
	}

	if !h.creds.Verify(req.Password, user.Password) {
		render.Status(r, http.StatusUnauthorized)
		render.JSON(w, r, map[string]string{"error": "Wrong email or password"})
		return
	}

	token, err := h.tokens.Issue(user)
	if err != nil {
		logrus.WithField("error", err).Error("Failed to sign token")
		render.Status(r, http.StatusInternalServerError)
		render.JSON(w, r, map[string]string{"error": "Failed to log in"})
		return
	}

	render.JSON(w, r, map[string]string{"authToken": token})
}

// HandleVerify echoes the claims of a valid token; it sits behind the auth
// middleware, so reaching it at all means the token checked out.
func (h *Handler) HandleVerify(w http.ResponseWriter, r *http.Request) {
	claims, ok := ClaimsFromContext(r.Context())
	if !ok {
		render.Status(r, http.StatusUnauthorized)
		render.JSON(w, r, map[string]string{"error": "User claims not found"})
		return
	}
	render.JSON(w, r, claims)
}
