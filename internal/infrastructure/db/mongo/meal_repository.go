package mongo

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/nutritrack/calorie-api/internal/core/domain"
)

const mealsCollection = "meals"

// MealRepository implements ports.MealRepository on MongoDB.
type MealRepository struct {
	coll *mongo.Collection
}

func NewMealRepository(db *mongo.Database) *MealRepository {
	return &MealRepository{coll: db.Collection(mealsCollection)}
}

type mongoMeal struct {
	ID       primitive.ObjectID `bson:"_id,omitempty"`
	UserName string             `bson:"user_name"`
	Text     string             `bson:"text"`
	Calories int                `bson:"calories"`
	AteAt    int64              `bson:"ate_at"`
}

func (r *MealRepository) FindByUser(ctx context.Context, userName string) ([]*domain.Meal, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	cur, err := r.coll.Find(ctx, bson.M{"user_name": userName})
	if err != nil {
		return nil, fmt.Errorf("find meals: %w", err)
	}
	defer cur.Close(ctx)

	var meals []*domain.Meal
	for cur.Next(ctx) {
		var mm mongoMeal
		if err := cur.Decode(&mm); err != nil {
			return nil, fmt.Errorf("decode meal: %w", err)
		}
		meals = append(meals, &domain.Meal{
			ID:       mm.ID.Hex(),
			UserName: mm.UserName,
			Text:     mm.Text,
			Calories: mm.Calories,
			AteAt:    unixToTime(mm.AteAt),
		})
	}
	if err := cur.Err(); err != nil {
		return nil, fmt.Errorf("iterate meals: %w", err)
	}
	return meals, nil
}

func (r *MealRepository) RemoveMany(ctx context.Context, meals []*domain.Meal) error {
	if len(meals) == 0 {
		return nil
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	ids := make([]primitive.ObjectID, 0, len(meals))
	for _, m := range meals {
		id, err := primitive.ObjectIDFromHex(m.ID)
		if err != nil {
			return fmt.Errorf("remove meals: bad id %q: %w", m.ID, err)
		}
		ids = append(ids, id)
	}

	if _, err := r.coll.DeleteMany(ctx, bson.M{"_id": bson.M{"$in": ids}}); err != nil {
		return fmt.Errorf("remove meals: %w", err)
	}
	return nil
}

// EnsureIndexes creates the owner index used by the delete cascade.
func (r *MealRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	_, err := r.coll.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "user_name", Value: 1}},
	})
	return err
}
