package core

import (
	"context"
	"time"
)

type (
	// Ingredient is a single entry of a recipe's ingredient list. Name is
	// required, Amount is free-form and optional ("1L", "a pinch").
	Ingredient struct {
		Name   string `json:"name" bson:"name"`
		Amount string `json:"amount,omitempty" bson:"amount,omitempty"`
	}

	// Recipe is a dish description authored by exactly one user. Author holds
	// the id of that user and is the authoritative ownership record.
	Recipe struct {
		ID          string       `json:"id" bson:"_id,omitempty"`
		Name        string       `json:"name" bson:"name"`
		Description string       `json:"description" bson:"description"`
		Image       BlobRef      `json:"image" bson:"image,omitempty"`
		Ingredients []Ingredient `json:"ingredients" bson:"ingredients"`
		Instruction []string     `json:"instruction" bson:"instruction"`
		Author      string       `json:"author" bson:"author"`
		CreatedAt   time.Time    `json:"createdAt" bson:"createdAt"`
		UpdatedAt   time.Time    `json:"updatedAt" bson:"updatedAt"`
	}

	// RecipeDraft is the client-supplied part of a new recipe.
	RecipeDraft struct {
		Name        string       `json:"name"`
		Description string       `json:"description"`
		Image       BlobRef      `json:"image"`
		Ingredients []Ingredient `json:"ingredients"`
		Instruction []string     `json:"instruction"`
	}

	// RecipePatch carries the mutable fields of a recipe update. Nil means
	// "leave unchanged".
	RecipePatch struct {
		Name        *string
		Description *string
		Image       *BlobRef
		Ingredients *[]Ingredient
		Instruction *[]string
	}

	// RecipeStore defines the persistence layer for recipe records.
	RecipeStore interface {
		Get(ctx context.Context, id string) (*Recipe, error)

		// FindOne returns the recipe only when it exists and its author is
		// authorID; any other case is a not-found error.
		FindOne(ctx context.Context, id, authorID string) (*Recipe, error)

		Find(ctx context.Context) ([]*Recipe, error)
		FindByAuthor(ctx context.Context, authorID string) ([]*Recipe, error)
		Create(ctx context.Context, recipe *Recipe) (*Recipe, error)
		Update(ctx context.Context, id string, patch RecipePatch) (*Recipe, error)
		Delete(ctx context.Context, id string) error

		// DeleteByAuthor removes every recipe authored by authorID and
		// reports how many records were deleted.
		DeleteByAuthor(ctx context.Context, authorID string) (int64, error)
	}
)
