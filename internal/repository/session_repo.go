package repository

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"intakeflow/internal/model"
)

// SessionRepo is the remote persistence endpoint for session state, keyed by
// the (clientId, questionnaireId) pair. Load returns (nil, nil) on first
// visit; callers treat unavailability as offline, not as fatal.
type SessionRepo interface {
	Load(ctx context.Context, clientID, questionnaireID string) (*model.SessionState, error)
	Save(ctx context.Context, state *model.SessionState) error
	Delete(ctx context.Context, clientID, questionnaireID string) error
}

type sessionRepo struct {
	collection *mongo.Collection
}

// NewSessionRepo uses the "sessions" collection of the given database.
func NewSessionRepo(db *mongo.Database) SessionRepo {
	return &sessionRepo{collection: db.Collection("sessions")}
}

func sessionKey(clientID, questionnaireID string) bson.M {
	return bson.M{"clientId": clientID, "questionnaireId": questionnaireID}
}

func (r *sessionRepo) Load(ctx context.Context, clientID, questionnaireID string) (*model.SessionState, error) {
	var state model.SessionState
	err := r.collection.FindOne(ctx, sessionKey(clientID, questionnaireID)).Decode(&state)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load session %s/%s: %w", clientID, questionnaireID, err)
	}
	state.Normalize()
	return &state, nil
}

func (r *sessionRepo) Save(ctx context.Context, state *model.SessionState) error {
	_, err := r.collection.ReplaceOne(
		ctx,
		sessionKey(state.ClientID, state.QuestionnaireID),
		state,
		options.Replace().SetUpsert(true),
	)
	if err != nil {
		return fmt.Errorf("failed to save session %s/%s: %w", state.ClientID, state.QuestionnaireID, err)
	}
	return nil
}

func (r *sessionRepo) Delete(ctx context.Context, clientID, questionnaireID string) error {
	_, err := r.collection.DeleteOne(ctx, sessionKey(clientID, questionnaireID))
	if err != nil {
		return fmt.Errorf("failed to delete session %s/%s: %w", clientID, questionnaireID, err)
	}
	return nil
}
