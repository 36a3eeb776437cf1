package repo

import (
	"context"
	"regexp"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"gopkg.in/DataDog/dd-trace-go.v1/ddtrace/tracer"

	"github.com/adilzhan/taskgate/internal/domain"
)

func (s *Store) CreateTask(ctx context.Context, t *domain.Task) error {
	sp, ctx := tracer.StartSpanFromContext(ctx, "mongo.tasks.insert")
	defer sp.Finish()

	now := time.Now().UTC()
	t.CreatedAt = now
	t.UpdatedAt = now
	if t.Status == "" {
		t.Status = domain.StatusOpen
	}
	res, err := s.colTasks.InsertOne(ctx, t)
	if err != nil {
		sp.SetTag("error", err)
		return err
	}
	if oid, ok := res.InsertedID.(primitive.ObjectID); ok {
		t.ID = oid
	}
	return nil
}

type TaskListParams struct {
	Page  int
	Limit int
	Title string
}

// ListTasks returns the owner's tasks, newest first, with an optional
// case-insensitive title filter.
func (s *Store) ListTasks(ctx context.Context, owner primitive.ObjectID, p TaskListParams) ([]domain.Task, int64, error) {
	if p.Limit <= 0 || p.Limit > 200 {
		p.Limit = 10
	}
	if p.Page <= 0 {
		p.Page = 1
	}

	filter := bson.M{"created_by": owner}
	if p.Title != "" {
		filter["title"] = bson.M{"$regex": regexp.QuoteMeta(p.Title), "$options": "i"}
	}

	total, err := s.colTasks.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, err
	}

	cur, err := s.colTasks.Find(ctx, filter,
		options.Find().
			SetLimit(int64(p.Limit)).
			SetSkip(int64((p.Page-1)*p.Limit)).
			SetSort(bson.D{{Key: "created_at", Value: -1}}),
	)
	if err != nil {
		return nil, 0, err
	}
	defer cur.Close(ctx)

	var out []domain.Task
	for cur.Next(ctx) {
		var t domain.Task
		if err := cur.Decode(&t); err != nil {
			return nil, 0, err
		}
		out = append(out, t)
	}
	return out, total, cur.Err()
}

func (s *Store) FindTaskByOwner(ctx context.Context, id, owner primitive.ObjectID) (*domain.Task, error) {
	var t domain.Task
	err := s.colTasks.FindOne(ctx, bson.M{"_id": id, "created_by": owner}).Decode(&t)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	return &t, err
}

// UpdateTaskByOwner updates title/description/status and returns the
// new document, or nil when the task does not exist or belongs to
// someone else.
func (s *Store) UpdateTaskByOwner(ctx context.Context, id, owner primitive.ObjectID, title, description string, status domain.TaskStatus) (*domain.Task, error) {
	sp, ctx := tracer.StartSpanFromContext(ctx, "mongo.tasks.update")
	defer sp.Finish()

	res := s.colTasks.FindOneAndUpdate(ctx,
		bson.M{"_id": id, "created_by": owner},
		bson.M{"$set": bson.M{
			"title":       title,
			"description": description,
			"status":      status,
			"updated_at":  time.Now().UTC(),
		}},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	)
	var t domain.Task
	if err := res.Decode(&t); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		sp.SetTag("error", err)
		return nil, err
	}
	return &t, nil
}

func (s *Store) DeleteTaskByOwner(ctx context.Context, id, owner primitive.ObjectID) (*domain.Task, error) {
	sp, ctx := tracer.StartSpanFromContext(ctx, "mongo.tasks.delete")
	defer sp.Finish()

	res := s.colTasks.FindOneAndDelete(ctx, bson.M{"_id": id, "created_by": owner})
	var t domain.Task
	if err := res.Decode(&t); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		sp.SetTag("error", err)
		return nil, err
	}
	return &t, nil
}
