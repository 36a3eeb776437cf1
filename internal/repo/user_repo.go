package repo

import (
	"context"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"gopkg.in/DataDog/dd-trace-go.v1/ddtrace/tracer"

	"github.com/adilzhan/taskgate/internal/domain"
)

func normalizeEmail(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// FindUserByEmail looks up the local identity. Emails are stored
// lowercased, so normalizing the argument makes the lookup
// case-insensitive.
func (s *Store) FindUserByEmail(ctx context.Context, email string) (*domain.User, error) {
	var u domain.User
	err := s.colUsers.FindOne(ctx, bson.M{"local.email": normalizeEmail(email)}).Decode(&u)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	return &u, err
}

func (s *Store) FindUserByGoogleID(ctx context.Context, sub string) (*domain.User, error) {
	var u domain.User
	err := s.colUsers.FindOne(ctx, bson.M{"google.id": sub}).Decode(&u)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	return &u, err
}

func (s *Store) FindUserByID(ctx context.Context, id primitive.ObjectID) (*domain.User, error) {
	var u domain.User
	err := s.colUsers.FindOne(ctx, bson.M{"_id": id}).Decode(&u)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	return &u, err
}

// CreateLocalUser inserts a password-based user. The unique index on
// local.email turns a lost signup race into ErrEmailExists.
func (s *Store) CreateLocalUser(ctx context.Context, email, passwordHash string) (*domain.User, error) {
	sp, ctx := tracer.StartSpanFromContext(ctx, "mongo.users.insert",
		tracer.Tag("kind", "local"),
	)
	defer sp.Finish()

	u := &domain.User{
		Local:     &domain.LocalAccount{Email: normalizeEmail(email), PasswordHash: passwordHash},
		CreatedAt: time.Now().UTC(),
	}
	res, err := s.colUsers.InsertOne(ctx, u)
	if err != nil {
		sp.SetTag("error", err)
		if IsDup(err) {
			return nil, ErrEmailExists
		}
		return nil, err
	}
	if oid, ok := res.InsertedID.(primitive.ObjectID); ok {
		u.ID = oid
	}
	return u, nil
}

func (s *Store) CreateGoogleUser(ctx context.Context, sub, email, name string) (*domain.User, error) {
	sp, ctx := tracer.StartSpanFromContext(ctx, "mongo.users.insert",
		tracer.Tag("kind", "google"),
	)
	defer sp.Finish()

	u := &domain.User{
		Google:    &domain.GoogleAccount{ID: sub, Email: normalizeEmail(email), Name: name},
		CreatedAt: time.Now().UTC(),
	}
	res, err := s.colUsers.InsertOne(ctx, u)
	if err != nil {
		sp.SetTag("error", err)
		if IsDup(err) {
			return nil, ErrGoogleExists
		}
		return nil, err
	}
	if oid, ok := res.InsertedID.(primitive.ObjectID); ok {
		u.ID = oid
	}
	return u, nil
}
