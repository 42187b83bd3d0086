package memory

import (
	"context"
	"sync"
	"time"

	"github.com/justArale/recipe-book-server/core"
	"github.com/oklog/ulid/v2"
)

// Store keeps users and recipes in process memory. It is the default
// backend when no storage type is configured and the one the tests use.
type Store struct {
	users   *userStore
	recipes *recipeStore
}

func NewStore() *Store {
	return &Store{
		users:   &userStore{byID: make(map[string]*core.User)},
		recipes: &recipeStore{byID: make(map[string]*core.Recipe)},
	}
}

func (s *Store) Users() core.UserStore     { return s.users }
func (s *Store) Recipes() core.RecipeStore { return s.recipes }

// Records are cloned on the way in and out so callers never share slices
// with the store.
func cloneUser(u *core.User) *core.User {
	c := *u
	c.Recipes = append([]string(nil), u.Recipes...)
	return &c
}

func cloneRecipe(r *core.Recipe) *core.Recipe {
	c := *r
	c.Ingredients = append([]core.Ingredient(nil), r.Ingredients...)
	c.Instruction = append([]string(nil), r.Instruction...)
	return &c
}

type userStore struct {
	mu   sync.RWMutex
	byID map[string]*core.User
}

func (s *userStore) Get(ctx context.Context, id string) (*core.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	user, ok := s.byID[id]
	if !ok {
		return nil, core.NotFoundf("user not found")
	}
	return cloneUser(user), nil
}

func (s *userStore) FindByEmail(ctx context.Context, email string) (*core.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, user := range s.byID {
		if user.Email == email {
			return cloneUser(user), nil
		}
	}
	return nil, core.NotFoundf("user not found")
}

func (s *userStore) Find(ctx context.Context) ([]*core.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	users := make([]*core.User, 0, len(s.byID))
	for _, user := range s.byID {
		users = append(users, cloneUser(user))
	}
	return users, nil
}

func (s *userStore) Create(ctx context.Context, user *core.User) (*core.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	stored := cloneUser(user)
	if stored.ID == "" {
		stored.ID = ulid.Make().String()
	}
	now := time.Now()
	stored.CreatedAt = now
	stored.UpdatedAt = now
	if stored.Recipes == nil {
		stored.Recipes = []string{}
	}
	s.byID[stored.ID] = stored
	return cloneUser(stored), nil
}

func (s *userStore) Update(ctx context.Context, id string, patch core.UserPatch) (*core.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	user, ok := s.byID[id]
	if !ok {
		return nil, core.NotFoundf("user not found")
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
	return cloneUser(user), nil
}

func (s *userStore) AppendRecipe(ctx context.Context, userID, recipeID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	user, ok := s.byID[userID]
	if !ok {
		return core.NotFoundf("user not found")
	}
	user.Recipes = append(user.Recipes, recipeID)
	user.UpdatedAt = time.Now()
	return nil
}

func (s *userStore) RemoveRecipe(ctx context.Context, userID, recipeID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	user, ok := s.byID[userID]
	if !ok {
		return core.NotFoundf("user not found")
	}
	kept := user.Recipes[:0]
	for _, id := range user.Recipes {
		if id != recipeID {
			kept = append(kept, id)
		}
	}
	user.Recipes = kept
	user.UpdatedAt = time.Now()
	return nil
}

func (s *userStore) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.byID[id]; !ok {
		return core.NotFoundf("user not found")
	}
	delete(s.byID, id)
	return nil
}

type recipeStore struct {
	mu   sync.RWMutex
	byID map[string]*core.Recipe
}

func (s *recipeStore) Get(ctx context.Context, id string) (*core.Recipe, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	recipe, ok := s.byID[id]
	if !ok {
		return nil, core.NotFoundf("recipe not found")
	}
	return cloneRecipe(recipe), nil
}

func (s *recipeStore) FindOne(ctx context.Context, id, authorID string) (*core.Recipe, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	recipe, ok := s.byID[id]
	if !ok || recipe.Author != authorID {
		return nil, core.NotFoundf("recipe not found")
	}
	return cloneRecipe(recipe), nil
}

func (s *recipeStore) Find(ctx context.Context) ([]*core.Recipe, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	recipes := make([]*core.Recipe, 0, len(s.byID))
	for _, recipe := range s.byID {
		recipes = append(recipes, cloneRecipe(recipe))
	}
	return recipes, nil
}

func (s *recipeStore) FindByAuthor(ctx context.Context, authorID string) ([]*core.Recipe, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	recipes := []*core.Recipe{}
	for _, recipe := range s.byID {
		if recipe.Author == authorID {
			recipes = append(recipes, cloneRecipe(recipe))
		}
	}
	return recipes, nil
}

func (s *recipeStore) Create(ctx context.Context, recipe *core.Recipe) (*core.Recipe, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	stored := cloneRecipe(recipe)
	if stored.ID == "" {
		stored.ID = ulid.Make().String()
	}
	now := time.Now()
	stored.CreatedAt = now
	stored.UpdatedAt = now
	s.byID[stored.ID] = stored
	return cloneRecipe(stored), nil
}

func (s *recipeStore) Update(ctx context.Context, id string, patch core.RecipePatch) (*core.Recipe, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	recipe, ok := s.byID[id]
	if !ok {
		return nil, core.NotFoundf("recipe not found")
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
		recipe.Ingredients = append([]core.Ingredient(nil), *patch.Ingredients...)
	}
	if patch.Instruction != nil {
		recipe.Instruction = append([]string(nil), *patch.Instruction...)
	}
	recipe.UpdatedAt = time.Now()
	return cloneRecipe(recipe), nil
}

func (s *recipeStore) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.byID[id]; !ok {
		return core.NotFoundf("recipe not found")
	}
	delete(s.byID, id)
	return nil
}

func (s *recipeStore) DeleteByAuthor(ctx context.Context, authorID string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var count int64
	for id, recipe := range s.byID {
		if recipe.Author == authorID {
			delete(s.byID, id)
			count++
		}
	}
	return count, nil
}
