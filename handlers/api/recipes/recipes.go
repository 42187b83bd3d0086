package recipes

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"github.com/justArale/recipe-book-server/core"
	"github.com/justArale/recipe-book-server/handlers/api/apierr"
	"github.com/justArale/recipe-book-server/handlers/auth"
	"github.com/justArale/recipe-book-server/service"
)

type updateRequest struct {
	Name        *string            `json:"name"`
	Description *string            `json:"description"`
	Image       *core.BlobRef      `json:"image"`
	Ingredients *[]core.Ingredient `json:"ingredients"`
	Instruction *[]string          `json:"instruction"`
}

func HandleCreate(engine *service.Engine) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := auth.ClaimsFromContext(r.Context())
		if !ok {
			render.Status(r, http.StatusUnauthorized)
			render.JSON(w, r, map[string]string{"error": "User claims not found"})
			return
		}

		var draft core.RecipeDraft
		if err := json.NewDecoder(r.Body).Decode(&draft); err != nil {
			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, map[string]string{"error": "Invalid request body"})
			return
		}

		userID := chi.URLParam(r, "userId")
		recipe, err := engine.CreateRecipe(r.Context(), claims.Subject, userID, draft)
		if err != nil {
			apierr.Render(w, r, err)
			return
		}
		render.Status(r, http.StatusCreated)
		render.JSON(w, r, recipe)
	}
}

func HandleListAll(engine *service.Engine) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		recipes, err := engine.ListRecipes(r.Context())
		if err != nil {
			apierr.Render(w, r, err)
			return
		}
		render.JSON(w, r, recipes)
	}
}

func HandleListByUser(engine *service.Engine) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := chi.URLParam(r, "userId")
		recipes, err := engine.ListUserRecipes(r.Context(), userID)
		if err != nil {
			apierr.Render(w, r, err)
			return
		}
		render.JSON(w, r, recipes)
	}
}

func HandleGet(engine *service.Engine) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := chi.URLParam(r, "userId")
		recipeID := chi.URLParam(r, "recipeId")
		recipe, err := engine.GetRecipe(r.Context(), userID, recipeID)
		if err != nil {
			apierr.Render(w, r, err)
			return
		}
		render.JSON(w, r, recipe)
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
		recipeID := chi.URLParam(r, "recipeId")
		recipe, err := engine.UpdateRecipe(r.Context(), claims.Subject, userID, recipeID, core.RecipePatch{
			Name:        req.Name,
			Description: req.Description,
			Image:       req.Image,
			Ingredients: req.Ingredients,
			Instruction: req.Instruction,
		})
		if err != nil {
			apierr.Render(w, r, err)
			return
		}
		render.JSON(w, r, recipe)
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
		recipeID := chi.URLParam(r, "recipeId")
		if err := engine.DeleteRecipe(r.Context(), claims.Subject, userID, recipeID); err != nil {
			apierr.Render(w, r, err)
			return
		}
		render.NoContent(w, r)
	}
}

func HandleDeleteImage(engine *service.Engine) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := auth.ClaimsFromContext(r.Context())
		if !ok {
			render.Status(r, http.StatusUnauthorized)
			render.JSON(w, r, map[string]string{"error": "User claims not found"})
			return
		}

		userID := chi.URLParam(r, "userId")
		recipeID := chi.URLParam(r, "recipeId")
		recipe, err := engine.DeleteRecipeImage(r.Context(), claims.Subject, userID, recipeID)
		if err != nil {
			apierr.Render(w, r, err)
			return
		}
		render.JSON(w, r, recipe)
	}
}
