package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"intakeflow/internal/model"
)

// QuestionnaireRepo stores intake questionnaire definitions.
type QuestionnaireRepo interface {
	GetByID(ctx context.Context, id string) (*model.Questionnaire, error)
	List(ctx context.Context) ([]*model.Questionnaire, error)
	Upsert(ctx context.Context, q *model.Questionnaire) error
	Delete(ctx context.Context, id string) error
}

type questionnaireRepo struct {
	collection *mongo.Collection
}

// NewQuestionnaireRepo uses the "questionnaires" collection.
func NewQuestionnaireRepo(db *mongo.Database) QuestionnaireRepo {
	return &questionnaireRepo{collection: db.Collection("questionnaires")}
}

func (r *questionnaireRepo) GetByID(ctx context.Context, id string) (*model.Questionnaire, error) {
	var q model.Questionnaire
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&q)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get questionnaire %s: %w", id, err)
	}
	return &q, nil
}

func (r *questionnaireRepo) List(ctx context.Context) ([]*model.Questionnaire, error) {
	cursor, err := r.collection.Find(ctx, bson.M{}, options.Find().SetSort(bson.M{"createdAt": 1}))
	if err != nil {
		return nil, fmt.Errorf("failed to list questionnaires: %w", err)
	}
	defer cursor.Close(ctx)

	var out []*model.Questionnaire
	if err := cursor.All(ctx, &out); err != nil {
		return nil, fmt.Errorf("failed to decode questionnaires: %w", err)
	}
	return out, nil
}

func (r *questionnaireRepo) Upsert(ctx context.Context, q *model.Questionnaire) error {
	now := time.Now()
	if q.CreatedAt.IsZero() {
		q.CreatedAt = now
	}
	q.UpdatedAt = now

	_, err := r.collection.ReplaceOne(ctx, bson.M{"_id": q.ID}, q, options.Replace().SetUpsert(true))
	if err != nil {
		return fmt.Errorf("failed to upsert questionnaire %s: %w", q.ID, err)
	}
	return nil
}

func (r *questionnaireRepo) Delete(ctx context.Context, id string) error {
	_, err := r.collection.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("failed to delete questionnaire %s: %w", id, err)
	}
	return nil
}
