package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/justArale/recipe-book-server/core"
	"github.com/oklog/ulid/v2"
	_ "modernc.org/sqlite"
)

// Store persists users and recipes in an embedded SQLite database. The
// ingredient list, instruction steps and the user's recipe index are
// document-shaped and stored as JSON text columns.
type Store struct {
	db *sql.DB
}

func NewStore(dataSourceName string) *Store {
	db, err := sql.Open("sqlite", dataSourceName)
	if err != nil {
		log.Fatalf("failed to open sqlite database: %v", err)
	}

	userTableStmt := `
	CREATE TABLE IF NOT EXISTS users (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		email TEXT NOT NULL UNIQUE,
		password TEXT NOT NULL,
		avatar_key TEXT NOT NULL DEFAULT '',
		avatar_url TEXT NOT NULL DEFAULT '',
		recipes TEXT NOT NULL DEFAULT '[]',
		created_at DATETIME,
		updated_at DATETIME
	);`
	if _, err = db.Exec(userTableStmt); err != nil {
		log.Fatalf("failed to create users table: %v", err)
	}

	recipeTableStmt := `
	CREATE TABLE IF NOT EXISTS recipes (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		description TEXT NOT NULL,
		image_key TEXT NOT NULL DEFAULT '',
		image_url TEXT NOT NULL DEFAULT '',
		ingredients TEXT NOT NULL DEFAULT '[]',
		instruction TEXT NOT NULL DEFAULT '[]',
		author TEXT NOT NULL,
		created_at DATETIME,
		updated_at DATETIME
	);
	CREATE INDEX IF NOT EXISTS idx_recipes_author ON recipes(author);`
	if _, err = db.Exec(recipeTableStmt); err != nil {
		log.Fatalf("failed to create recipes table: %v", err)
	}

	return &Store{db: db}
}

func (s *Store) Users() core.UserStore     { return &userStore{db: s.db} }
func (s *Store) Recipes() core.RecipeStore { return &recipeStore{db: s.db} }

func (s *Store) Close() error { return s.db.Close() }

func marshalJSON(v any) (string, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return "", fmt.Errorf("failed to marshal column: %v", err)
	}
	return string(data), nil
}

type userStore struct {
	db *sql.DB
}

const userColumns = "id, name, email, password, avatar_key, avatar_url, recipes, created_at, updated_at"

func scanUser(row interface{ Scan(...any) error }) (*core.User, error) {
	var user core.User
	var recipes string
	err := row.Scan(&user.ID, &user.Name, &user.Email, &user.Password,
		&user.Avatar.Key, &user.Avatar.URL, &recipes, &user.CreatedAt, &user.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal([]byte(recipes), &user.Recipes); err != nil {
		return nil, fmt.Errorf("failed to unmarshal recipe index: %v", err)
	}
	return &user, nil
}

func (s *userStore) Get(ctx context.Context, id string) (*core.User, error) {
	row := s.db.QueryRowContext(ctx, "SELECT "+userColumns+" FROM users WHERE id = ?", id)
	user, err := scanUser(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, core.NotFoundf("user not found")
		}
		return nil, err
	}
	return user, nil
}

func (s *userStore) FindByEmail(ctx context.Context, email string) (*core.User, error) {
	row := s.db.QueryRowContext(ctx, "SELECT "+userColumns+" FROM users WHERE email = ?", email)
	user, err := scanUser(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, core.NotFoundf("user not found")
		}
		return nil, err
	}
	return user, nil
}

func (s *userStore) Find(ctx context.Context) ([]*core.User, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT "+userColumns+" FROM users")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	users := []*core.User{}
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, user)
	}
	return users, rows.Err()
}

func (s *userStore) Create(ctx context.Context, user *core.User) (*core.User, error) {
	stored := *user
	if stored.ID == "" {
		stored.ID = ulid.Make().String()
	}
	now := time.Now()
	stored.CreatedAt = now
	stored.UpdatedAt = now
	if stored.Recipes == nil {
		stored.Recipes = []string{}
	}
	recipes, err := marshalJSON(stored.Recipes)
	if err != nil {
		return nil, err
	}
	_, err = s.db.ExecContext(ctx,
		"INSERT INTO users (id, name, email, password, avatar_key, avatar_url, recipes, created_at, updated_at) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)",
		stored.ID, stored.Name, stored.Email, stored.Password,
		stored.Avatar.Key, stored.Avatar.URL, recipes, stored.CreatedAt, stored.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &stored, nil
}

func (s *userStore) Update(ctx context.Context, id string, patch core.UserPatch) (*core.User, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	row := tx.QueryRowContext(ctx, "SELECT "+userColumns+" FROM users WHERE id = ?", id)
	user, err := scanUser(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, core.NotFoundf("user not found")
		}
		return nil, err
	}

	if patch.Name != nil {
		user.Name = *patch.Name
	}
	if patch.Avatar != nil {
		user.Avatar = *patch.Avatar
	}
	if patch.Password != nil {
		user.Password = *patch.Password
	}
	user.UpdatedAt = time.Now()

	_, err = tx.ExecContext(ctx,
		"UPDATE users SET name = ?, password = ?, avatar_key = ?, avatar_url = ?, updated_at = ? WHERE id = ?",
		user.Name, user.Password, user.Avatar.Key, user.Avatar.URL, user.UpdatedAt, id)
	if err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return user, nil
}

func (s *userStore) AppendRecipe(ctx context.Context, userID, recipeID string) error {
	return s.updateIndex(ctx, userID, func(index []string) []string {
		return append(index, recipeID)
	})
}

func (s *userStore) RemoveRecipe(ctx context.Context, userID, recipeID string) error {
	return s.updateIndex(ctx, userID, func(index []string) []string {
		kept := index[:0]
		for _, id := range index {
			if id != recipeID {
				kept = append(kept, id)
			}
		}
		return kept
	})
}

// updateIndex rewrites the user's recipe-id JSON column inside a
// transaction so concurrent appends do not lose entries.
func (s *userStore) updateIndex(ctx context.Context, userID string, mutate func([]string) []string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	var raw string
	err = tx.QueryRowContext(ctx, "SELECT recipes FROM users WHERE id = ?", userID).Scan(&raw)
	if err != nil {
		if err == sql.ErrNoRows {
			return core.NotFoundf("user not found")
		}
		return err
	}
	var index []string
	if err := json.Unmarshal([]byte(raw), &index); err != nil {
		return fmt.Errorf("failed to unmarshal recipe index: %v", err)
	}

	updated, err := marshalJSON(mutate(index))
	if err != nil {
		return err
	}
	_, err = tx.ExecContext(ctx, "UPDATE users SET recipes = ?, updated_at = ? WHERE id = ?",
		updated, time.Now(), userID)
	if err != nil {
		return err
	}
	return tx.Commit()
}

func (s *userStore) Delete(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM users WHERE id = ?", id)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return core.NotFoundf("user not found")
	}
	return nil
}

type recipeStore struct {
	db *sql.DB
}

const recipeColumns = "id, name, description, image_key, image_url, ingredients, instruction, author, created_at, updated_at"

func scanRecipe(row interface{ Scan(...any) error }) (*core.Recipe, error) {
	var recipe core.Recipe
	var ingredients, instruction string
	err := row.Scan(&recipe.ID, &recipe.Name, &recipe.Description,
		&recipe.Image.Key, &recipe.Image.URL, &ingredients, &instruction,
		&recipe.Author, &recipe.CreatedAt, &recipe.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal([]byte(ingredients), &recipe.Ingredients); err != nil {
		return nil, fmt.Errorf("failed to unmarshal ingredients: %v", err)
	}
	if err := json.Unmarshal([]byte(instruction), &recipe.Instruction); err != nil {
		return nil, fmt.Errorf("failed to unmarshal instruction: %v", err)
	}
	return &recipe, nil
}

func (s *recipeStore) Get(ctx context.Context, id string) (*core.Recipe, error) {
	row := s.db.QueryRowContext(ctx, "SELECT "+recipeColumns+" FROM recipes WHERE id = ?", id)
	recipe, err := scanRecipe(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, core.NotFoundf("recipe not found")
		}
		return nil, err
	}
	return recipe, nil
}

func (s *recipeStore) FindOne(ctx context.Context, id, authorID string) (*core.Recipe, error) {
	row := s.db.QueryRowContext(ctx, "SELECT "+recipeColumns+" FROM recipes WHERE id = ? AND author = ?", id, authorID)
	recipe, err := scanRecipe(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, core.NotFoundf("recipe not found")
		}
		return nil, err
	}
	return recipe, nil
}

func (s *recipeStore) query(ctx context.Context, stmt string, args ...any) ([]*core.Recipe, error) {
	rows, err := s.db.QueryContext(ctx, stmt, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	recipes := []*core.Recipe{}
	for rows.Next() {
		recipe, err := scanRecipe(rows)
		if err != nil {
			return nil, err
		}
		recipes = append(recipes, recipe)
	}
	return recipes, rows.Err()
}

func (s *recipeStore) Find(ctx context.Context) ([]*core.Recipe, error) {
	return s.query(ctx, "SELECT "+recipeColumns+" FROM recipes")
}

func (s *recipeStore) FindByAuthor(ctx context.Context, authorID string) ([]*core.Recipe, error) {
	return s.query(ctx, "SELECT "+recipeColumns+" FROM recipes WHERE author = ?", authorID)
}

func (s *recipeStore) Create(ctx context.Context, recipe *core.Recipe) (*core.Recipe, error) {
	stored := *recipe
	if stored.ID == "" {
		stored.ID = ulid.Make().String()
	}
	now := time.Now()
	stored.CreatedAt = now
	stored.UpdatedAt = now

	ingredients, err := marshalJSON(stored.Ingredients)
	if err != nil {
		return nil, err
	}
	instruction, err := marshalJSON(stored.Instruction)
	if err != nil {
		return nil, err
	}
	_, err = s.db.ExecContext(ctx,
		"INSERT INTO recipes (id, name, description, image_key, image_url, ingredients, instruction, author, created_at, updated_at) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)",
		stored.ID, stored.Name, stored.Description, stored.Image.Key, stored.Image.URL,
		ingredients, instruction, stored.Author, stored.CreatedAt, stored.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &stored, nil
}

func (s *recipeStore) Update(ctx context.Context, id string, patch core.RecipePatch) (*core.Recipe, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	row := tx.QueryRowContext(ctx, "SELECT "+recipeColumns+" FROM recipes WHERE id = ?", id)
	recipe, err := scanRecipe(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, core.NotFoundf("recipe not found")
		}
		return nil, err
	}

	if patch.Name != nil {
		recipe.Name = *patch.Name
	}
	if patch.Description != nil {
		recipe.Description = *patch.Description
	}
	if patch.Image != nil {
		recipe.Image = *patch.Image
	}
	if patch.Ingredients != nil {
		recipe.Ingredients = *patch.Ingredients
	}
	if patch.Instruction != nil {
		recipe.Instruction = *patch.Instruction
	}
	recipe.UpdatedAt = time.Now()

	ingredients, err := marshalJSON(recipe.Ingredients)
	if err != nil {
		return nil, err
	}
	instruction, err := marshalJSON(recipe.Instruction)
	if err != nil {
		return nil, err
	}
	_, err = tx.ExecContext(ctx,
		"UPDATE recipes SET name = ?, description = ?, image_key = ?, image_url = ?, ingredients = ?, instruction = ?, updated_at = ? WHERE id = ?",
		recipe.Name, recipe.Description, recipe.Image.Key, recipe.Image.URL,
		ingredients, instruction, recipe.UpdatedAt, id)
	if err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return recipe, nil
}

func (s *recipeStore) Delete(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM recipes WHERE id = ?", id)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return core.NotFoundf("recipe not found")
	}
	return nil
}

func (s *recipeStore) DeleteByAuthor(ctx context.Context, authorID string) (int64, error) {
	res, err := s.db.ExecContext(ctx, "DELETE FROM recipes WHERE author = ?", authorID)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
