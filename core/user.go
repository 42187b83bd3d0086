package core

import (
	"context"
	"time"
)

type (
	// User is an account that authors recipes and owns an optional avatar blob.
	// Recipes is a denormalized index of the recipe ids the user authored; the
	// Author field on each Recipe is the authoritative side of the relation, so
	// a dangling id in this list is tolerated and skipped on read.
	User struct {
		ID        string    `json:"id" bson:"_id,omitempty"`
		Name      string    `json:"name" bson:"name"`
		Email     string    `json:"email" bson:"email"`
		Password  string    `json:"-" bson:"password"`
		Avatar    BlobRef   `json:"avatar" bson:"avatar,omitempty"`
		Recipes   []string  `json:"recipes" bson:"recipes"`
		CreatedAt time.Time `json:"createdAt" bson:"createdAt"`
		UpdatedAt time.Time `json:"updatedAt" bson:"updatedAt"`
	}

	// UserPatch carries the mutable fields of a user update. Nil means
	// "leave unchanged".
	UserPatch struct {
		Name     *string
		Avatar   *BlobRef
		Password *string
	}

	// UserStore defines the persistence layer for user records.
	UserStore interface {
		Get(ctx context.Context, id string) (*User, error)
		FindByEmail(ctx context.Context, email string) (*User, error)
		Find(ctx context.Context) ([]*User, error)
		Create(ctx context.Context, user *User) (*User, error)
		Update(ctx context.Context, id string, patch UserPatch) (*User, error)

		// AppendRecipe and RemoveRecipe maintain the denormalized recipe-id
		// index on the user record.
		AppendRecipe(ctx context.Context, userID, recipeID string) error
		RemoveRecipe(ctx context.Context, userID, recipeID string) error

		Delete(ctx context.Context, id string) error
	}
)
