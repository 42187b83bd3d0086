package service

import (
	"fmt"
	"strings"

	"github.com/justArale/recipe-book-server/core"
)

// Authorize decides whether the acting identity may mutate a resource owned
// by ownerID. The rule is exact-match ownership: no roles, no delegation.
// It must run before any store mutation so a denial never leaves partial
// side effects.
func Authorize(callerID, ownerID string) error {
	if callerID != ownerID {
		return core.Forbiddenf("you are not authorized to modify this resource")
	}
	return nil
}

// validateID rejects ids that are empty or could be read as a path. Ids are
// opaque tokens; they are also used as blob-key and URL segments, so dot
// directories and separators are never valid.
func validateID(id string) error {
	if id == "" || id == "." || id == ".." || strings.ContainsAny(id, "/\\") {
		return core.ValidationError("specified id is not valid", "id")
	}
	return nil
}

// validateDraft checks a new recipe against the data model and names every
// violated field, not just the first.
func validateDraft(draft core.RecipeDraft) error {
	var fields []string
	if strings.TrimSpace(draft.Name) == "" {
		fields = append(fields, "name")
	}
	if strings.TrimSpace(draft.Description) == "" {
		fields = append(fields, "description")
	}
	for i, ing := range draft.Ingredients {
		if strings.TrimSpace(ing.Name) == "" {
			fields = append(fields, fmt.Sprintf("ingredients[%d].name", i))
		}
	}
	for i, step := range draft.Instruction {
		if strings.TrimSpace(step) == "" {
			fields = append(fields, fmt.Sprintf("instruction[%d]", i))
		}
	}
	if len(fields) > 0 {
		return core.ValidationError("recipe is missing required fields", fields...)
	}
	return nil
}

// validateRecipePatch applies the same field rules to an update, but only
// for the fields the patch actually sets.
func validateRecipePatch(patch core.RecipePatch) error {
	var fields []string
	if patch.Name != nil && strings.TrimSpace(*patch.Name) == "" {
		fields = append(fields, "name")
	}
	if patch.Description != nil && strings.TrimSpace(*patch.Description) == "" {
		fields = append(fields, "description")
	}
	if patch.Ingredients != nil {
		for i, ing := range *patch.Ingredients {
			if strings.TrimSpace(ing.Name) == "" {
				fields = append(fields, fmt.Sprintf("ingredients[%d].name", i))
			}
		}
	}
	if patch.Instruction != nil {
		for i, step := range *patch.Instruction {
			if strings.TrimSpace(step) == "" {
				fields = append(fields, fmt.Sprintf("instruction[%d]", i))
			}
		}
	}
	if len(fields) > 0 {
		return core.ValidationError("recipe is missing required fields", fields...)
	}
	return nil
}
