// Package service holds the ownership rules of the recipe book: who may
// mutate which record, and the multi-step protocols that keep the user
// store, recipe store and blob store consistent with each other across
// create, replace and delete.
//
// None of the multi-step operations runs inside a store transaction; every
// step commits on its own. The step ordering below is therefore part of the
// contract: each sequence is arranged so that the reachable partial states
// are either self-healing (a dangling entry in the user's denormalized
// recipe index, skipped on read) or a bounded leak (an unreferenced blob),
// never a broken reference from a live entity to a missing record or blob.
package service

import (
	"context"
	"errors"

	"github.com/justArale/recipe-book-server/core"
	"github.com/sirupsen/logrus"
)

// ErrOldPasswordMismatch is returned by ChangePassword when the supplied
// current password does not verify against the stored digest.
var ErrOldPasswordMismatch = errors.New("old password is incorrect")

// Engine orchestrates all mutations that touch more than one store. It is
// constructed once at startup with its collaborators injected; it keeps no
// other state and is safe for concurrent use.
type Engine struct {
	users   core.UserStore
	recipes core.RecipeStore
	blobs   core.BlobStore
	creds   core.CredentialVerifier
}

func NewEngine(users core.UserStore, recipes core.RecipeStore, blobs core.BlobStore, creds core.CredentialVerifier) *Engine {
	return &Engine{users: users, recipes: recipes, blobs: blobs, creds: creds}
}

// upstream wraps raw store/driver errors while letting already-classified
// errors (not-found, validation) pass through unchanged.
func upstream(message string, err error) error {
	var ce *core.Error
	if errors.As(err, &ce) {
		return err
	}
	return core.UpstreamFailure(message, err)
}

// discardBlob deletes a blob that no entity references anymore. Best
// effort: an already-absent key counts as done, and a failed delete only
// leaks the blob, so it is logged and swallowed.
func (e *Engine) discardBlob(ctx context.Context, key string) {
	if key == "" {
		return
	}
	if err := e.blobs.Delete(ctx, key); err != nil && !core.IsNotFound(err) {
		logrus.WithFields(logrus.Fields{
			"key":   key,
			"error": err,
		}).Warn("Superseded blob was not deleted and is now orphaned")
	}
}

// ListUsers returns all user records.
func (e *Engine) ListUsers(ctx context.Context) ([]*core.User, error) {
	users, err := e.users.Find(ctx)
	if err != nil {
		return nil, upstream("failed to retrieve user", err)
	}
	return users, nil
}

// GetUser returns one user together with the recipes its index references.
// Index entries pointing at recipes that no longer exist are skipped; the
// index is denormalized and heals on read.
func (e *Engine) GetUser(ctx context.Context, userID string) (*core.User, []*core.Recipe, error) {
	if err := validateID(userID); err != nil {
		return nil, nil, err
	}
	user, err := e.users.Get(ctx, userID)
	if err != nil {
		return nil, nil, upstream("failed to retrieve user", err)
	}

	recipes := make([]*core.Recipe, 0, len(user.Recipes))
	for _, recipeID := range user.Recipes {
		recipe, err := e.recipes.Get(ctx, recipeID)
		if err != nil {
			if core.IsNotFound(err) {
				logrus.WithFields(logrus.Fields{
					"userID":   userID,
					"recipeID": recipeID,
				}).Debug("Skipping dangling recipe id in user index")
				continue
			}
			return nil, nil, upstream("failed to retrieve user", err)
		}
		recipes = append(recipes, recipe)
	}
	return user, recipes, nil
}

// UpdateUser applies a self-service profile update. When the patch swaps
// the avatar, the superseded blob is deleted only after the new reference
// is durably persisted, so the user never points at a deleted blob.
func (e *Engine) UpdateUser(ctx context.Context, callerID, userID string, patch core.UserPatch) (*core.User, error) {
	if err := Authorize(callerID, userID); err != nil {
		return nil, err
	}
	if err := validateID(userID); err != nil {
		return nil, err
	}
	current, err := e.users.Get(ctx, userID)
	if err != nil {
		return nil, upstream("failed to retrieve user", err)
	}

	updated, err := e.users.Update(ctx, userID, patch)
	if err != nil {
		return nil, upstream("failed to update the user", err)
	}

	if patch.Avatar != nil && !current.Avatar.IsZero() && current.Avatar.Key != patch.Avatar.Key {
		e.discardBlob(ctx, current.Avatar.Key)
	}
	return updated, nil
}

// ReplaceAvatar attaches an already-uploaded blob as the user's avatar and
// retires the previous one.
func (e *Engine) ReplaceAvatar(ctx context.Context, callerID, userID string, ref core.BlobRef) (*core.User, error) {
	if ref.Key == "" {
		return nil, core.ValidationError("avatar image reference is required", "avatar")
	}
	return e.UpdateUser(ctx, callerID, userID, core.UserPatch{Avatar: &ref})
}

// DeleteAvatar removes the user's avatar blob and clears the field. The
// blob is deleted first: if that fails for a reason other than the key
// already being gone, the field stays untouched so no uncertainty is
// papered over. An already-absent key counts as deleted.
func (e *Engine) DeleteAvatar(ctx context.Context, callerID, userID string) (*core.User, error) {
	if err := Authorize(callerID, userID); err != nil {
		return nil, err
	}
	if err := validateID(userID); err != nil {
		return nil, err
	}
	user, err := e.users.Get(ctx, userID)
	if err != nil {
		return nil, upstream("failed to retrieve user", err)
	}
	if user.Avatar.IsZero() {
		return user, nil
	}

	if err := e.blobs.Delete(ctx, user.Avatar.Key); err != nil && !core.IsNotFound(err) {
		return nil, core.UpstreamFailure("failed to delete avatar image", err)
	}
	empty := core.BlobRef{}
	updated, err := e.users.Update(ctx, userID, core.UserPatch{Avatar: &empty})
	if err != nil {
		return nil, core.PartialFailure("avatar image deleted but user record not updated", err)
	}
	return updated, nil
}

// ChangePassword verifies the current password, then persists a digest of
// the new one.
func (e *Engine) ChangePassword(ctx context.Context, callerID, userID, oldPassword, newPassword string) error {
	if err := Authorize(callerID, userID); err != nil {
		return err
	}
	if err := validateID(userID); err != nil {
		return err
	}
	if newPassword == "" {
		return core.ValidationError("new password is required", "newPassword")
	}
	user, err := e.users.Get(ctx, userID)
	if err != nil {
		return upstream("failed to retrieve user", err)
	}
	if !e.creds.Verify(oldPassword, user.Password) {
		return ErrOldPasswordMismatch
	}
	digest, err := e.creds.Hash(newPassword)
	if err != nil {
		return core.UpstreamFailure("failed to update password", err)
	}
	if _, err := e.users.Update(ctx, userID, core.UserPatch{Password: &digest}); err != nil {
		return upstream("failed to update password", err)
	}
	return nil
}

// DeleteUser cascades: all recipes authored by the user are deleted before
// the user record is. Deleting the user first would strand recipes whose
// author no longer exists, with no owner left to authorize their cleanup,
// so a failed recipe fan-out aborts the whole operation and keeps the user.
func (e *Engine) DeleteUser(ctx context.Context, callerID, userID string) error {
	if err := Authorize(callerID, userID); err != nil {
		return err
	}
	if err := validateID(userID); err != nil {
		return err
	}
	user, err := e.users.Get(ctx, userID)
	if err != nil {
		return upstream("failed to retrieve user", err)
	}

	recipes, err := e.recipes.FindByAuthor(ctx, userID)
	if err != nil {
		return core.UpstreamFailure("deleting user and associated data failed", err)
	}
	if len(recipes) > 0 {
		if _, err := e.recipes.DeleteByAuthor(ctx, userID); err != nil {
			return core.PartialFailure("deleting user and associated data failed", err)
		}
		for _, recipe := range recipes {
			e.discardBlob(ctx, recipe.Image.Key)
		}
	}
	e.discardBlob(ctx, user.Avatar.Key)

	if err := e.users.Delete(ctx, userID); err != nil {
		return core.PartialFailure("deleting user and associated data failed", err)
	}
	logrus.WithFields(logrus.Fields{
		"userID":  userID,
		"recipes": len(recipes),
	}).Info("User and associated recipes deleted")
	return nil
}

// ListRecipes returns every recipe of every user.
func (e *Engine) ListRecipes(ctx context.Context) ([]*core.Recipe, error) {
	recipes, err := e.recipes.Find(ctx)
	if err != nil {
		return nil, upstream("failed to retrieve recipes", err)
	}
	return recipes, nil
}

// ListUserRecipes returns the recipes authored by one user. It queries by
// the authoritative author field, not the user's index.
func (e *Engine) ListUserRecipes(ctx context.Context, userID string) ([]*core.Recipe, error) {
	if err := validateID(userID); err != nil {
		return nil, err
	}
	recipes, err := e.recipes.FindByAuthor(ctx, userID)
	if err != nil {
		return nil, upstream("failed to retrieve recipes", err)
	}
	return recipes, nil
}

// GetRecipe fetches one recipe scoped to its author. A recipe that exists
// under a different author is reported as not found, never as forbidden, so
// the response does not confirm another user's resource.
func (e *Engine) GetRecipe(ctx context.Context, authorID, recipeID string) (*core.Recipe, error) {
	if err := validateID(recipeID); err != nil {
		return nil, err
	}
	recipe, err := e.recipes.FindOne(ctx, recipeID, authorID)
	if err != nil {
		return nil, upstream("failed to retrieve recipe", err)
	}
	return recipe, nil
}

// CreateRecipe inserts the recipe, then appends its id to the author's
// recipe index. A failed append leaves the recipe committed and reachable
// by author query; the index is denormalized, the author field is the
// source of truth, so no rollback is attempted.
func (e *Engine) CreateRecipe(ctx context.Context, callerID, authorID string, draft core.RecipeDraft) (*core.Recipe, error) {
	if err := Authorize(callerID, authorID); err != nil {
		return nil, err
	}
	if err := validateID(authorID); err != nil {
		return nil, err
	}
	if err := validateDraft(draft); err != nil {
		return nil, err
	}

	recipe := &core.Recipe{
		Name:        draft.Name,
		Description: draft.Description,
		Image:       draft.Image,
		Ingredients: draft.Ingredients,
		Instruction: draft.Instruction,
		Author:      authorID,
	}
	created, err := e.recipes.Create(ctx, recipe)
	if err != nil {
		return nil, upstream("failed to create the recipe", err)
	}

	if err := e.users.AppendRecipe(ctx, authorID, created.ID); err != nil {
		logrus.WithFields(logrus.Fields{
			"userID":   authorID,
			"recipeID": created.ID,
			"error":    err,
		}).Warn("Recipe created but not appended to the author's index")
	}
	return created, nil
}

// UpdateRecipe applies an authorized patch. When the patch swaps the image,
// the old blob is deleted only after the new reference is persisted.
func (e *Engine) UpdateRecipe(ctx context.Context, callerID, authorID, recipeID string, patch core.RecipePatch) (*core.Recipe, error) {
	if err := Authorize(callerID, authorID); err != nil {
		return nil, err
	}
	if err := validateID(recipeID); err != nil {
		return nil, err
	}
	if err := validateRecipePatch(patch); err != nil {
		return nil, err
	}
	current, err := e.recipes.FindOne(ctx, recipeID, authorID)
	if err != nil {
		return nil, upstream("failed to retrieve recipe", err)
	}

	updated, err := e.recipes.Update(ctx, recipeID, patch)
	if err != nil {
		return nil, upstream("failed to update the recipe", err)
	}

	if patch.Image != nil && !current.Image.IsZero() && current.Image.Key != patch.Image.Key {
		e.discardBlob(ctx, current.Image.Key)
	}
	return updated, nil
}

// ReplaceRecipeImage attaches an already-uploaded blob as the recipe's
// image and retires the previous one.
func (e *Engine) ReplaceRecipeImage(ctx context.Context, callerID, authorID, recipeID string, ref core.BlobRef) (*core.Recipe, error) {
	if ref.Key == "" {
		return nil, core.ValidationError("recipe image reference is required", "image")
	}
	return e.UpdateRecipe(ctx, callerID, authorID, recipeID, core.RecipePatch{Image: &ref})
}

// DeleteRecipeImage removes the recipe's image blob and clears the field,
// blob first, same uncertainty rule as DeleteAvatar.
func (e *Engine) DeleteRecipeImage(ctx context.Context, callerID, authorID, recipeID string) (*core.Recipe, error) {
	if err := Authorize(callerID, authorID); err != nil {
		return nil, err
	}
	if err := validateID(recipeID); err != nil {
		return nil, err
	}
	recipe, err := e.recipes.FindOne(ctx, recipeID, authorID)
	if err != nil {
		return nil, upstream("failed to retrieve recipe", err)
	}
	if recipe.Image.IsZero() {
		return recipe, nil
	}

	if err := e.blobs.Delete(ctx, recipe.Image.Key); err != nil && !core.IsNotFound(err) {
		return nil, core.UpstreamFailure("failed to delete recipe image", err)
	}
	empty := core.BlobRef{}
	updated, err := e.recipes.Update(ctx, recipeID, core.RecipePatch{Image: &empty})
	if err != nil {
		return nil, core.PartialFailure("recipe image deleted but recipe record not updated", err)
	}
	return updated, nil
}

// DeleteRecipe removes the record first and the index entry second: a
// dangling index entry is detectable and skipped on read, whereas removing
// the index first and failing the record delete would leave a live recipe
// unreachable from its owner's profile.
func (e *Engine) DeleteRecipe(ctx context.Context, callerID, authorID, recipeID string) error {
	if err := Authorize(callerID, authorID); err != nil {
		return err
	}
	if err := validateID(recipeID); err != nil {
		return err
	}
	recipe, err := e.recipes.FindOne(ctx, recipeID, authorID)
	if err != nil {
		return upstream("failed to retrieve recipe", err)
	}

	if err := e.recipes.Delete(ctx, recipeID); err != nil {
		return upstream("deleting recipe failed", err)
	}

	if err := e.users.RemoveRecipe(ctx, authorID, recipeID); err != nil {
		logrus.WithFields(logrus.Fields{
			"userID":   authorID,
			"recipeID": recipeID,
			"error":    err,
		}).Warn("Recipe deleted but its id remains in the author's index")
	}

	e.discardBlob(ctx, recipe.Image.Key)
	return nil
}
