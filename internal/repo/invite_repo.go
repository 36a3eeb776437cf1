package repo

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"gopkg.in/DataDog/dd-trace-go.v1/ddtrace/tracer"

	"github.com/adilzhan/taskgate/internal/domain"
)

func (s *Store) FindInvite(ctx context.Context, email string) (*domain.Invite, error) {
	var inv domain.Invite
	err := s.colInvites.FindOne(ctx, bson.M{"email": normalizeEmail(email)}).Decode(&inv)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	return &inv, err
}

// CreateInvite does not pre-check existence; the unique email index
// reports a duplicate as ErrInviteExists.
func (s *Store) CreateInvite(ctx context.Context, email string) (*domain.Invite, error) {
	sp, ctx := tracer.StartSpanFromContext(ctx, "mongo.invites.insert")
	defer sp.Finish()

	inv := &domain.Invite{
		Email:     normalizeEmail(email),
		CreatedAt: time.Now().UTC(),
	}
	res, err := s.colInvites.InsertOne(ctx, inv)
	if err != nil {
		sp.SetTag("error", err)
		if IsDup(err) {
			return nil, ErrInviteExists
		}
		return nil, err
	}
	if oid, ok := res.InsertedID.(primitive.ObjectID); ok {
		inv.ID = oid
	}
	return inv, nil
}
