package users

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"github.com/justArale/recipe-book-server/core"
	"github.com/justArale/recipe-book-server/handlers/api/apierr"
	"github.com/justArale/recipe-book-server/handlers/auth"
	"github.com/justArale/recipe-book-server/service"
)

type (
	updateRequest struct {
		Name   *string       `json:"name"`
		Avatar *core.BlobRef `json:"avatar"`
	}

	changePasswordRequest struct {
		OldPassword string `json:"oldPassword"`
		NewPassword string `json:"newPassword"`
	}

	// profileResponse is a user with its recipe index populated into full
	// records.
	profileResponse struct {
		*core.User
		Recipes []*core.Recipe `json:"recipes"`
	}
)

func HandleList(engine *service.Engine) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		users, err := engine.ListUsers(r.Context())
		if err != nil {
			apierr.Render(w, r, err)
			return
		}
		render.JSON(w, r, users)
	}
}

func HandleGet(engine *service.Engine) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := chi.URLParam(r, "userId")
		user, recipes, err := engine.GetUser(r.Context(), userID)
		if err != nil {
			apierr.Render(w, r, err)
			return
		}
		render.JSON(w, r, profileResponse{User: user, Recipes: recipes})
	}
}

func HandleUpdate(engine *service.Engine) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := auth.ClaimsFromContext(r.Context())
		if !ok {
			render.Status(r, http.StatusUnauthorized)
			render.JSON(w, r, map[string]string{"error": "User claims not found"})
			return
		}

		var req updateRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, map[string]string{"error": "Invalid request body"})
			return
		}

		userID := chi.URLParam(r, "userId")
		user, err := engine.UpdateUser(r.Context(), claims.Subject, userID, core.UserPatch{
			Name:   req.Name,
			Avatar: req.Avatar,
		})
		if err != nil {
			apierr.Render(w, r, err)
			return
		}
		render.JSON(w, r, user)
	}
}

func HandleChangePassword(engine *service.Engine) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := auth.ClaimsFromContext(r.Context())
		if !ok {
			render.Status(r, http.StatusUnauthorized)
			render.JSON(w, r, map[string]string{"error": "User claims not found"})
			return
		}

		var req changePasswordRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, map[string]string{"error": "Invalid request body"})
			return
		}

		userID := chi.URLParam(r, "userId")
		err := engine.ChangePassword(r.Context(), claims.Subject, userID, req.OldPassword, req.NewPassword)
		if err != nil {
			if errors.Is(err, service.ErrOldPasswordMismatch) {
				render.Status(r, http.StatusUnauthorized)
				render.JSON(w, r, map[string]string{"error": "Old password is incorrect"})
				return
			}
			apierr.Render(w, r, err)
			return
		}
		render.JSON(w, r, map[string]string{"message": "Password updated successfully"})
	}
}

func HandleDelete(engine *service.Engine) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := auth.ClaimsFromContext(r.Context())
		if !ok {
			render.Status(r, http.StatusUnauthorized)
			render.JSON(w, r, map[string]string{"error": "User claims not found"})
			return
		}

		userID := chi.URLParam(r, "userId")
		if err := engine.DeleteUser(r.Context(), claims.Subject, userID); err != nil {
			apierr.Render(w, r, err)
			return
		}
		render.NoContent(w, r)
	}
}

func HandleDeleteAvatar(engine *service.Engine) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := auth.ClaimsFromContext(r.Context())
		if !ok {
			render.Status(r, http.StatusUnauthorized)
			render.JSON(w, r, map[string]string{"error": "User claims not found"})
			return
		}

		userID := chi.URLParam(r, "userId")
		user, err := engine.DeleteAvatar(r.Context(), claims.Subject, userID)
		if err != nil {
			apierr.Render(w, r, err)
			return
		}
		render.JSON(w, r, user)
	}
}
