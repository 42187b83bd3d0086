package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"testing"

	"github.com/justArale/recipe-book-server/core"
)

// Fake stores with injectable per-method errors, so the partial-failure
// branches of each multi-step operation are reachable.

type fakeUserStore struct {
	mu    sync.Mutex
	users map[string]*core.User

	getErr    error
	updateErr error
	appendErr error
	removeErr error
	deleteErr error
}

func newFakeUserStore() *fakeUserStore {
	return &fakeUserStore{users: make(map[string]*core.User)}
}

func (s *fakeUserStore) Get(ctx context.Context, id string) (*core.User, error) {
	if s.getErr != nil {
		return nil, s.getErr
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	user, ok := s.users[id]
	if !ok {
		return nil, core.NotFoundf("user not found")
	}
	c := *user
	c.Recipes = append([]string(nil), user.Recipes...)
	return &c, nil
}

func (s *fakeUserStore) FindByEmail(ctx context.Context, email string) (*core.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, user := range s.users {
		if user.Email == email {
			c := *user
			return &c, nil
		}
	}
	return nil, core.NotFoundf("user not found")
}

func (s *fakeUserStore) Find(ctx context.Context) ([]*core.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	users := make([]*core.User, 0, len(s.users))
	for _, user := range s.users {
		c := *user
		users = append(users, &c)
	}
	return users, nil
}

func (s *fakeUserStore) Create(ctx context.Context, user *core.User) (*core.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c := *user
	if c.ID == "" {
		c.ID = fmt.Sprintf("user-%d", len(s.users))
	}
	s.users[c.ID] = &c
	return &c, nil
}

func (s *fakeUserStore) Update(ctx context.Context, id string, patch core.UserPatch) (*core.User, error) {
	if s.updateErr != nil {
		return nil, s.updateErr
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	user, ok := s.users[id]
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
	c := *user
	return &c, nil
}

func (s *fakeUserStore) AppendRecipe(ctx context.Context, userID, recipeID string) error {
	if s.appendErr != nil {
		return s.appendErr
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	user, ok := s.users[userID]
	if !ok {
		return core.NotFoundf("user not found")
	}
	user.Recipes = append(user.Recipes, recipeID)
	return nil
}

func (s *fakeUserStore) RemoveRecipe(ctx context.Context, userID, recipeID string) error {
	if s.removeErr != nil {
		return s.removeErr
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	user, ok := s.users[userID]
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
	return nil
}

func (s *fakeUserStore) Delete(ctx context.Context, id string) error {
	if s.deleteErr != nil {
		return s.deleteErr
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.users[id]; !ok {
		return core.NotFoundf("user not found")
	}
	delete(s.users, id)
	return nil
}

type fakeRecipeStore struct {
	mu      sync.Mutex
	recipes map[string]*core.Recipe
	nextID  int

	createErr         error
	updateErr         error
	deleteErr         error
	deleteByAuthorErr error
}

func newFakeRecipeStore() *fakeRecipeStore {
	return &fakeRecipeStore{recipes: make(map[string]*core.Recipe)}
}

func (s *fakeRecipeStore) Get(ctx context.Context, id string) (*core.Recipe, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	recipe, ok := s.recipes[id]
	if !ok {
		return nil, core.NotFoundf("recipe not found")
	}
	c := *recipe
	return &c, nil
}

func (s *fakeRecipeStore) FindOne(ctx context.Context, id, authorID string) (*core.Recipe, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	recipe, ok := s.recipes[id]
	if !ok || recipe.Author != authorID {
		return nil, core.NotFoundf("recipe not found")
	}
	c := *recipe
	return &c, nil
}

func (s *fakeRecipeStore) Find(ctx context.Context) ([]*core.Recipe, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	recipes := make([]*core.Recipe, 0, len(s.recipes))
	for _, recipe := range s.recipes {
		c := *recipe
		recipes = append(recipes, &c)
	}
	return recipes, nil
}

func (s *fakeRecipeStore) FindByAuthor(ctx context.Context, authorID string) ([]*core.Recipe, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	recipes := []*core.Recipe{}
	for _, recipe := range s.recipes {
		if recipe.Author == authorID {
			c := *recipe
			recipes = append(recipes, &c)
		}
	}
	return recipes, nil
}

func (s *fakeRecipeStore) Create(ctx context.Context, recipe *core.Recipe) (*core.Recipe, error) {
	if s.createErr != nil {
		return nil, s.createErr
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	c := *recipe
	if c.ID == "" {
		c.ID = fmt.Sprintf("recipe-%d", s.nextID)
		s.nextID++
	}
	s.recipes[c.ID] = &c
	return &c, nil
}

func (s *fakeRecipeStore) Update(ctx context.Context, id string, patch core.RecipePatch) (*core.Recipe, error) {
	if s.updateErr != nil {
		return nil, s.updateErr
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	recipe, ok := s.recipes[id]
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
		recipe.Ingredients = *patch.Ingredients
	}
	if patch.Instruction != nil {
		recipe.Instruction = *patch.Instruction
	}
	c := *recipe
	return &c, nil
}

func (s *fakeRecipeStore) Delete(ctx context.Context, id string) error {
	if s.deleteErr != nil {
		return s.deleteErr
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.recipes[id]; !ok {
		return core.NotFoundf("recipe not found")
	}
	delete(s.recipes, id)
	return nil
}

func (s *fakeRecipeStore) DeleteByAuthor(ctx context.Context, authorID string) (int64, error) {
	if s.deleteByAuthorErr != nil {
		return 0, s.deleteByAuthorErr
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	var count int64
	for id, recipe := range s.recipes {
		if recipe.Author == authorID {
			delete(s.recipes, id)
			count++
		}
	}
	return count, nil
}

// fakeBlobStore records every delete so exactly-once cleanup is checkable.
type fakeBlobStore struct {
	mu      sync.Mutex
	blobs   map[string]bool
	deleted []string

	deleteErr error
}

func newFakeBlobStore(keys ...string) *fakeBlobStore {
	s := &fakeBlobStore{blobs: make(map[string]bool)}
	for _, key := range keys {
		s.blobs[key] = true
	}
	return s
}

func (s *fakeBlobStore) Upload(ctx context.Context, r io.Reader, folder, contentType string) (core.BlobRef, error) {
	panic("not used in engine tests")
}

func (s *fakeBlobStore) Delete(ctx context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.deleted = append(s.deleted, key)
	if s.deleteErr != nil {
		return s.deleteErr
	}
	if !s.blobs[key] {
		return core.NotFoundf("blob not found")
	}
	delete(s.blobs, key)
	return nil
}

func (s *fakeBlobStore) deleteCount(key string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, deleted := range s.deleted {
		if deleted == key {
			n++
		}
	}
	return n
}

// plainCreds is a stand-in credential verifier with reversible digests.
type plainCreds struct{}

func (plainCreds) Hash(secret string) (string, error) { return "digest:" + secret, nil }
func (plainCreds) Verify(secret, digest string) bool  { return digest == "digest:"+secret }

func kindOf(t *testing.T, err error) core.ErrorKind {
	t.Helper()
	if err == nil {
		t.Fatal("expected an error, got nil")
	}
	return core.KindOf(err)
}

func seedUser(t *testing.T, users *fakeUserStore, id string) *core.User {
	t.Helper()
	user, err := users.Create(context.Background(), &core.User{
		ID:       id,
		Name:     "Test " + id,
		Email:    id + "@example.com",
		Password: "digest:pw",
		Recipes:  []string{},
	})
	if err != nil {
		t.Fatalf("failed to seed user: %v", err)
	}
	return user
}

func validDraft() core.RecipeDraft {
	return core.RecipeDraft{
		Name:        "Soup",
		Description: "Hot",
		Ingredients: []core.Ingredient{{Name: "Water", Amount: "1L"}},
		Instruction: []string{"Boil it"},
	}
}

func TestCreateRecipe_AppendsToAuthorIndex(t *testing.T) {
	users := newFakeUserStore()
	recipes := newFakeRecipeStore()
	engine := NewEngine(users, recipes, newFakeBlobStore(), plainCreds{})
	seedUser(t, users, "u1")

	created, err := engine.CreateRecipe(context.Background(), "u1", "u1", validDraft())
	if err != nil {
		t.Fatalf("CreateRecipe failed: %v", err)
	}
	if created.Author != "u1" {
		t.Errorf("Author mismatch: got %q, want %q", created.Author, "u1")
	}

	user, _ := users.Get(context.Background(), "u1")
	found := false
	for _, id := range user.Recipes {
		if id == created.ID {
			found = true
		}
	}
	if !found {
		t.Errorf("Recipe id %q not in user's index %v", created.ID, user.Recipes)
	}
}

func TestCreateRecipe_ForbiddenForOtherUser(t *testing.T) {
	users := newFakeUserStore()
	recipes := newFakeRecipeStore()
	engine := NewEngine(users, recipes, newFakeBlobStore(), plainCreds{})
	seedUser(t, users, "u1")

	_, err := engine.CreateRecipe(context.Background(), "u2", "u1", validDraft())
	if got := kindOf(t, err); got != core.KindForbidden {
		t.Errorf("Kind mismatch: got %q, want %q", got, core.KindForbidden)
	}
	if len(recipes.recipes) != 0 {
		t.Errorf("Expected no recipes after denial, got %d", len(recipes.recipes))
	}
}

func TestCreateRecipe_ValidationListsEveryField(t *testing.T) {
	users := newFakeUserStore()
	recipes := newFakeRecipeStore()
	engine := NewEngine(users, recipes, newFakeBlobStore(), plainCreds{})
	seedUser(t, users, "u1")

	draft := core.RecipeDraft{
		Ingredients: []core.Ingredient{{Amount: "1L"}},
		Instruction: []string{""},
	}
	_, err := engine.CreateRecipe(context.Background(), "u1", "u1", draft)
	if got := kindOf(t, err); got != core.KindValidation {
		t.Fatalf("Kind mismatch: got %q, want %q", got, core.KindValidation)
	}

	var ce *core.Error
	errors.As(err, &ce)
	want := []string{"name", "description", "ingredients[0].name", "instruction[0]"}
	if len(ce.Fields) != len(want) {
		t.Fatalf("Field list mismatch: got %v, want %v", ce.Fields, want)
	}
	for i, field := range want {
		if ce.Fields[i] != field {
			t.Errorf("Field %d mismatch: got %q, want %q", i, ce.Fields[i], field)
		}
	}
	if len(recipes.recipes) != 0 {
		t.Errorf("Expected no recipes after validation failure, got %d", len(recipes.recipes))
	}
}

func TestCreateRecipe_IndexAppendFailureLeavesRecipeCommitted(t *testing.T) {
	users := newFakeUserStore()
	recipes := newFakeRecipeStore()
	engine := NewEngine(users, recipes, newFakeBlobStore(), plainCreds{})
	seedUser(t, users, "u1")
	users.appendErr = fmt.Errorf("index write failed")

	created, err := engine.CreateRecipe(context.Background(), "u1", "u1", validDraft())
	if err != nil {
		t.Fatalf("CreateRecipe should tolerate a failed index append: %v", err)
	}

	// The recipe stays committed and reachable by author query.
	byAuthor, _ := recipes.FindByAuthor(context.Background(), "u1")
	if len(byAuthor) != 1 || byAuthor[0].ID != created.ID {
		t.Errorf("Recipe not reachable by author after index failure: %v", byAuthor)
	}
	user, _ := users.Get(context.Background(), "u1")
	if len(user.Recipes) != 0 {
		t.Errorf("Index unexpectedly updated: %v", user.Recipes)
	}
}

func TestDeleteRecipe_RemovesRecordIndexAndBlob(t *testing.T) {
	users := newFakeUserStore()
	recipes := newFakeRecipeStore()
	blobs := newFakeBlobStore("recipe-image/k1")
	engine := NewEngine(users, recipes, blobs, plainCreds{})
	seedUser(t, users, "u1")

	created, _ := recipes.Create(context.Background(), &core.Recipe{
		Author: "u1",
		Image:  core.BlobRef{Key: "recipe-image/k1", URL: "/media/recipe-image/k1"},
	})
	users.AppendRecipe(context.Background(), "u1", created.ID)

	if err := engine.DeleteRecipe(context.Background(), "u1", "u1", created.ID); err != nil {
		t.Fatalf("DeleteRecipe failed: %v", err)
	}

	if _, err := recipes.Get(context.Background(), created.ID); !core.IsNotFound(err) {
		t.Error("Recipe record still present after delete")
	}
	user, _ := users.Get(context.Background(), "u1")
	if len(user.Recipes) != 0 {
		t.Errorf("Index still references deleted recipe: %v", user.Recipes)
	}
	if blobs.deleteCount("recipe-image/k1") != 1 {
		t.Errorf("Image blob delete count: got %d, want 1", blobs.deleteCount("recipe-image/k1"))
	}
}

func TestDeleteRecipe_OwnerMismatchIsNotFound(t *testing.T) {
	users := newFakeUserStore()
	recipes := newFakeRecipeStore()
	engine := NewEngine(users, recipes, newFakeBlobStore(), plainCreds{})
	seedUser(t, users, "u1")
	seedUser(t, users, "u2")

	created, _ := recipes.Create(context.Background(), &core.Recipe{Author: "u2"})

	// u1 addresses someone else's recipe under their own path: the answer
	// must not confirm the recipe exists.
	err := engine.DeleteRecipe(context.Background(), "u1", "u1", created.ID)
	if got := kindOf(t, err); got != core.KindNotFound {
		t.Errorf("Kind mismatch: got %q, want %q", got, core.KindNotFound)
	}
	if _, err := recipes.Get(context.Background(), created.ID); err != nil {
		t.Error("Recipe should survive a denied delete")
	}
}

func TestDeleteRecipe_ForbiddenKeepsRecipe(t *testing.T) {
	users := newFakeUserStore()
	recipes := newFakeRecipeStore()
	engine := NewEngine(users, recipes, newFakeBlobStore(), plainCreds{})
	seedUser(t, users, "u1")

	created, _ := recipes.Create(context.Background(), &core.Recipe{Author: "u1"})

	err := engine.DeleteRecipe(context.Background(), "u2", "u1", created.ID)
	if got := kindOf(t, err); got != core.KindForbidden {
		t.Errorf("Kind mismatch: got %q, want %q", got, core.KindForbidden)
	}
	if _, err := recipes.Get(context.Background(), created.ID); err != nil {
		t.Error("Recipe should survive a forbidden delete")
	}
}

func TestDeleteUser_CascadesRecipes(t *testing.T) {
	users := newFakeUserStore()
	recipes := newFakeRecipeStore()
	blobs := newFakeBlobStore("recipe-image/k1", "avatar/a1")
	engine := NewEngine(users, recipes, blobs, plainCreds{})

	user := seedUser(t, users, "u1")
	user.Avatar = core.BlobRef{Key: "avatar/a1"}
	users.users["u1"].Avatar = user.Avatar

	r1, _ := recipes.Create(context.Background(), &core.Recipe{
		Author: "u1",
		Image:  core.BlobRef{Key: "recipe-image/k1"},
	})
	r2, _ := recipes.Create(context.Background(), &core.Recipe{Author: "u1"})

	if err := engine.DeleteUser(context.Background(), "u1", "u1"); err != nil {
		t.Fatalf("DeleteUser failed: %v", err)
	}

	for _, id := range []string{r1.ID, r2.ID} {
		if _, err := recipes.Get(context.Background(), id); !core.IsNotFound(err) {
			t.Errorf("Recipe %s still present after cascade", id)
		}
	}
	if _, err := users.Get(context.Background(), "u1"); !core.IsNotFound(err) {
		t.Error("User still present after delete")
	}
	if blobs.deleteCount("recipe-image/k1") != 1 {
		t.Error("Recipe image blob not cleaned up")
	}
	if blobs.deleteCount("avatar/a1") != 1 {
		t.Error("Avatar blob not cleaned up")
	}
}

func TestDeleteUser_RecipeFanoutFailureKeepsUser(t *testing.T) {
	users := newFakeUserStore()
	recipes := newFakeRecipeStore()
	engine := NewEngine(users, recipes, newFakeBlobStore(), plainCreds{})
	seedUser(t, users, "u1")
	recipes.Create(context.Background(), &core.Recipe{Author: "u1"})
	recipes.deleteByAuthorErr = fmt.Errorf("bulk delete failed")

	err := engine.DeleteUser(context.Background(), "u1", "u1")
	if got := kindOf(t, err); got != core.KindPartialFailure {
		t.Errorf("Kind mismatch: got %q, want %q", got, core.KindPartialFailure)
	}
	if _, getErr := users.Get(context.Background(), "u1"); getErr != nil {
		t.Error("User must survive when the recipe fan-out fails")
	}
}

func TestReplaceRecipeImage_DeletesSupersededKeyExactlyOnce(t *testing.T) {
	users := newFakeUserStore()
	recipes := newFakeRecipeStore()
	blobs := newFakeBlobStore("recipe-image/k0", "recipe-image/k1", "recipe-image/k2")
	engine := NewEngine(users, recipes, blobs, plainCreds{})
	seedUser(t, users, "u1")

	created, _ := recipes.Create(context.Background(), &core.Recipe{
		Author: "u1",
		Image:  core.BlobRef{Key: "recipe-image/k0"},
	})

	updated, err := engine.ReplaceRecipeImage(context.Background(), "u1", "u1", created.ID,
		core.BlobRef{Key: "recipe-image/k1", URL: "/media/recipe-image/k1"})
	if err != nil {
		t.Fatalf("first replace failed: %v", err)
	}
	if updated.Image.Key != "recipe-image/k1" {
		t.Errorf("Image key after first replace: got %q, want k1", updated.Image.Key)
	}

	updated, err = engine.ReplaceRecipeImage(context.Background(), "u1", "u1", created.ID,
		core.BlobRef{Key: "recipe-image/k2", URL: "/media/recipe-image/k2"})
	if err != nil {
		t.Fatalf("second replace failed: %v", err)
	}
	if updated.Image.Key != "recipe-image/k2" {
		t.Errorf("Image key after second replace: got %q, want k2", updated.Image.Key)
	}

	if n := blobs.deleteCount("recipe-image/k0"); n != 1 {
		t.Errorf("k0 delete count: got %d, want 1", n)
	}
	if n := blobs.deleteCount("recipe-image/k1"); n != 1 {
		t.Errorf("k1 delete count: got %d, want 1", n)
	}
	if n := blobs.deleteCount("recipe-image/k2"); n != 0 {
		t.Errorf("k2 delete count: got %d, want 0", n)
	}
}

func TestReplaceAvatar_OldBlobDeleteFailureStillSwapsReference(t *testing.T) {
	users := newFakeUserStore()
	recipes := newFakeRecipeStore()
	blobs := newFakeBlobStore("avatar/old")
	engine := NewEngine(users, recipes, blobs, plainCreds{})
	seedUser(t, users, "u1")
	users.users["u1"].Avatar = core.BlobRef{Key: "avatar/old"}
	blobs.deleteErr = fmt.Errorf("blob service down")

	updated, err := engine.ReplaceAvatar(context.Background(), "u1", "u1",
		core.BlobRef{Key: "avatar/new", URL: "/media/avatar/new"})
	if err != nil {
		t.Fatalf("ReplaceAvatar must not fail on old-blob cleanup: %v", err)
	}
	// The new reference wins; the old blob leaks rather than the user
	// pointing at a deleted one.
	if updated.Avatar.Key != "avatar/new" {
		t.Errorf("Avatar key: got %q, want avatar/new", updated.Avatar.Key)
	}
}

func TestDeleteAvatar_MissingBlobTreatedAsSuccess(t *testing.T) {
	users := newFakeUserStore()
	recipes := newFakeRecipeStore()
	blobs := newFakeBlobStore() // key does not exist
	engine := NewEngine(users, recipes, blobs, plainCreds{})
	seedUser(t, users, "u1")
	users.users["u1"].Avatar = core.BlobRef{Key: "avatar/gone"}

	updated, err := engine.DeleteAvatar(context.Background(), "u1", "u1")
	if err != nil {
		t.Fatalf("DeleteAvatar on an absent blob must succeed: %v", err)
	}
	if !updated.Avatar.IsZero() {
		t.Errorf("Avatar not cleared: %+v", updated.Avatar)
	}
}

func TestDeleteRecipeImage_BlobFailureKeepsField(t *testing.T) {
	users := newFakeUserStore()
	recipes := newFakeRecipeStore()
	blobs := newFakeBlobStore("recipe-image/k1")
	engine := NewEngine(users, recipes, blobs, plainCreds{})
	seedUser(t, users, "u1")

	created, _ := recipes.Create(context.Background(), &core.Recipe{
		Author: "u1",
		Image:  core.BlobRef{Key: "recipe-image/k1"},
	})
	blobs.deleteErr = fmt.Errorf("blob service down")

	_, err := engine.DeleteRecipeImage(context.Background(), "u1", "u1", created.ID)
	if got := kindOf(t, err); got != core.KindUpstream {
		t.Errorf("Kind mismatch: got %q, want %q", got, core.KindUpstream)
	}
	recipe, _ := recipes.Get(context.Background(), created.ID)
	if recipe.Image.Key != "recipe-image/k1" {
		t.Errorf("Image field cleared despite uncertain blob delete: %+v", recipe.Image)
	}
}

func TestChangePassword_WrongOldPassword(t *testing.T) {
	users := newFakeUserStore()
	engine := NewEngine(users, newFakeRecipeStore(), newFakeBlobStore(), plainCreds{})
	seedUser(t, users, "u1") // password digest is digest:pw

	err := engine.ChangePassword(context.Background(), "u1", "u1", "wrong", "next")
	if !errors.Is(err, ErrOldPasswordMismatch) {
		t.Fatalf("Expected ErrOldPasswordMismatch, got %v", err)
	}
	user, _ := users.Get(context.Background(), "u1")
	if user.Password != "digest:pw" {
		t.Errorf("Password changed despite mismatch: %q", user.Password)
	}
}

func TestChangePassword_Success(t *testing.T) {
	users := newFakeUserStore()
	engine := NewEngine(users, newFakeRecipeStore(), newFakeBlobStore(), plainCreds{})
	seedUser(t, users, "u1")

	if err := engine.ChangePassword(context.Background(), "u1", "u1", "pw", "next"); err != nil {
		t.Fatalf("ChangePassword failed: %v", err)
	}
	user, _ := users.Get(context.Background(), "u1")
	if user.Password != "digest:next" {
		t.Errorf("Password digest: got %q, want %q", user.Password, "digest:next")
	}
}

func TestGetUser_SkipsDanglingIndexEntries(t *testing.T) {
	users := newFakeUserStore()
	recipes := newFakeRecipeStore()
	engine := NewEngine(users, recipes, newFakeBlobStore(), plainCreds{})
	seedUser(t, users, "u1")

	created, _ := recipes.Create(context.Background(), &core.Recipe{Author: "u1"})
	users.AppendRecipe(context.Background(), "u1", created.ID)
	users.AppendRecipe(context.Background(), "u1", "long-gone")

	_, populated, err := engine.GetUser(context.Background(), "u1")
	if err != nil {
		t.Fatalf("GetUser failed: %v", err)
	}
	if len(populated) != 1 || populated[0].ID != created.ID {
		t.Errorf("Populated recipes mismatch: %v", populated)
	}
}
