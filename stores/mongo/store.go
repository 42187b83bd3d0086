package mongo

import (
	"context"
	"log"
	"time"

	"github.com/justArale/recipe-book-server/core"
	"github.com/oklog/ulid/v2"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Store persists users and recipes in MongoDB. Ids are ULID strings used as
// the document _id, so the same ids work across all backends.
type Store struct {
	client  *mongo.Client
	users   *mongo.Collection
	recipes *mongo.Collection
}

func NewStore(uri, dbName string) *Store {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		log.Fatalf("failed to connect to mongodb: %v", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		log.Fatalf("failed to ping mongodb: %v", err)
	}

	db := client.Database(dbName)
	return &Store{
		client:  client,
		users:   db.Collection("users"),
		recipes: db.Collection("recipes"),
	}
}

func (s *Store) Users() core.UserStore     { return &userStore{coll: s.users} }
func (s *Store) Recipes() core.RecipeStore { return &recipeStore{coll: s.recipes} }

func (s *Store) Close(ctx context.Context) error { return s.client.Disconnect(ctx) }

type userStore struct {
	coll *mongo.Collection
}

func (s *userStore) Get(ctx context.Context, id string) (*core.User, error) {
	var user core.User
	err := s.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&user)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, core.NotFoundf("user not found")
		}
		return nil, err
	}
	return &user, nil
}

func (s *userStore) FindByEmail(ctx context.Context, email string) (*core.User, error) {
	var user core.User
	err := s.coll.FindOne(ctx, bson.M{"email": email}).Decode(&user)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, core.NotFoundf("user not found")
		}
		return nil, err
	}
	return &user, nil
}

func (s *userStore) Find(ctx context.Context) ([]*core.User, error) {
	cursor, err := s.coll.Find(ctx, bson.M{})
	if err != nil {
		return nil, err
	}
	users := []*core.User{}
	if err := cursor.All(ctx, &users); err != nil {
		return nil, err
	}
	return users, nil
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
	if _, err := s.coll.InsertOne(ctx, &stored); err != nil {
		return nil, err
	}
	return &stored, nil
}

func (s *userStore) Update(ctx context.Context, id string, patch core.UserPatch) (*core.User, error) {
	set := bson.M{"updatedAt": time.Now()}
	if patch.Name != nil {
		set["name"] = *patch.Name
	}
	if patch.Avatar != nil {
		set["avatar"] = *patch.Avatar
	}
	if patch.Password != nil {
		set["password"] = *patch.Password
	}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var user core.User
	err := s.coll.FindOneAndUpdate(ctx, bson.M{"_id": id}, bson.M{"$set": set}, opts).Decode(&user)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, core.NotFoundf("user not found")
		}
		return nil, err
	}
	return &user, nil
}

func (s *userStore) AppendRecipe(ctx context.Context, userID, recipeID string) error {
	res, err := s.coll.UpdateByID(ctx, userID, bson.M{
		"$push": bson.M{"recipes": recipeID},
		"$set":  bson.M{"updatedAt": time.Now()},
	})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return core.NotFoundf("user not found")
	}
	return nil
}

func (s *userStore) RemoveRecipe(ctx context.Context, userID, recipeID string) error {
	res, err := s.coll.UpdateByID(ctx, userID, bson.M{
		"$pull": bson.M{"recipes": recipeID},
		"$set":  bson.M{"updatedAt": time.Now()},
	})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return core.NotFoundf("user not found")
	}
	return nil
}

func (s *userStore) Delete(ctx context.Context, id string) error {
	res, err := s.coll.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return core.NotFoundf("user not found")
	}
	return nil
}

type recipeStore struct {
	coll *mongo.Collection
}

func (s *recipeStore) Get(ctx context.Context, id string) (*core.Recipe, error) {
	var recipe core.Recipe
	err := s.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&recipe)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, core.NotFoundf("recipe not found")
		}
		return nil, err
	}
	return &recipe, nil
}

func (s *recipeStore) FindOne(ctx context.Context, id, authorID string) (*core.Recipe, error) {
	var recipe core.Recipe
	err := s.coll.FindOne(ctx, bson.M{"_id": id, "author": authorID}).Decode(&recipe)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, core.NotFoundf("recipe not found")
		}
		return nil, err
	}
	return &recipe, nil
}

func (s *recipeStore) find(ctx context.Context, filter bson.M) ([]*core.Recipe, error) {
	cursor, err := s.coll.Find(ctx, filter)
	if err != nil {
		return nil, err
	}
	recipes := []*core.Recipe{}
	if err := cursor.All(ctx, &recipes); err != nil {
		return nil, err
	}
	return recipes, nil
}

func (s *recipeStore) Find(ctx context.Context) ([]*core.Recipe, error) {
	return s.find(ctx, bson.M{})
}

func (s *recipeStore) FindByAuthor(ctx context.Context, authorID string) ([]*core.Recipe, error) {
	return s.find(ctx, bson.M{"author": authorID})
}

func (s *recipeStore) Create(ctx context.Context, recipe *core.Recipe) (*core.Recipe, error) {
	stored := *recipe
	if stored.ID == "" {
		stored.ID = ulid.Make().String()
	}
	now := time.Now()
	stored.CreatedAt = now
	stored.UpdatedAt = now
	if _, err := s.coll.InsertOne(ctx, &stored); err != nil {
		return nil, err
	}
	return &stored, nil
}

func (s *recipeStore) Update(ctx context.Context, id string, patch core.RecipePatch) (*core.Recipe, error) {
	set := bson.M{"updatedAt": time.Now()}
	if patch.Name != nil {
		set["name"] = *patch.Name
	}
	if patch.Description != nil {
		set["description"] = *patch.Description
	}
	if patch.Image != nil {
		set["image"] = *patch.Image
	}
	if patch.Ingredients != nil {
		set["ingredients"] = *patch.Ingredients
	}
	if patch.Instruction != nil {
		set["instruction"] = *patch.Instruction
	}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var recipe core.Recipe
	err := s.coll.FindOneAndUpdate(ctx, bson.M{"_id": id}, bson.M{"$set": set}, opts).Decode(&recipe)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, core.NotFoundf("recipe not found")
		}
		return nil, err
	}
	return &recipe, nil
}

func (s *recipeStore) Delete(ctx context.Context, id string) error {
	res, err := s.coll.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return core.NotFoundf("recipe not found")
	}
	return nil
}

func (s *recipeStore) DeleteByAuthor(ctx context.Context, authorID string) (int64, error) {
	res, err := s.coll.DeleteMany(ctx, bson.M{"author": authorID})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}
