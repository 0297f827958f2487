package repo

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"gopkg.in/DataDog/dd-trace-go.v1/ddtrace/tracer"

	"github.com/tazhibayda/account-service/internal/domain"
)

// Unique indexes on email and mobile are the only concurrency guard against
// two registrations racing on the same value; the second insert must fail
// atomically and surface as a conflict, not a 500.
var (
	ErrConflictEmail  = errors.New("email already registered")
	ErrConflictMobile = errors.New("mobile already registered")
)

const usersColl = "users"

// dupConflict translates a unique-index violation into the field-specific
// conflict sentinel; any other error passes through as nil.
func dupConflict(err error) error {
	if !mongo.IsDuplicateKeyError(err) {
		return nil
	}
	if strings.Contains(err.Error(), "uniq_mobile") {
		return ErrConflictMobile
	}
	return ErrConflictEmail
}

func (s *Store) EnsureUserIndexes(ctx context.Context) error {
	coll := s.DB.Collection(usersColl)
	if _, err := coll.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "email", Value: 1}},
		Options: options.Index().SetUnique(true).SetName("uniq_email"),
	}); err != nil {
		return err
	}
	_, err := coll.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "mobile", Value: 1}},
		Options: options.Index().SetUnique(true).SetName("uniq_mobile"),
	})
	return err
}

func (s *Store) CreateUser(ctx context.Context, u *domain.User) error {
	sp, ctx := tracer.StartSpanFromContext(ctx, "mongo.users.insert")
	defer sp.Finish()

	now := time.Now().UTC()
	u.CreatedAt = now
	u.UpdatedAt = now
	res, err := s.DB.Collection(usersColl).InsertOne(ctx, u)
	if err != nil {
		sp.SetTag("error", err)
		if conflict := dupConflict(err); conflict != nil {
			return conflict
		}
		return err
	}
	if oid, ok := res.InsertedID.(primitive.ObjectID); ok {
		u.ID = oid
	}
	return nil
}

func (s *Store) FindUserByEmail(ctx context.Context, email string) (*domain.User, error) {
	return s.findOne(ctx, bson.M{"email": email})
}

// FindUserByEmailOrMobile backs the duplicate pre-check on registration.
func (s *Store) FindUserByEmailOrMobile(ctx context.Context, email, mobile string) (*domain.User, error) {
	return s.findOne(ctx, bson.M{"$or": bson.A{bson.M{"email": email}, bson.M{"mobile": mobile}}})
}

func (s *Store) findOne(ctx context.Context, filter bson.M) (*domain.User, error) {
	sp, ctx := tracer.StartSpanFromContext(ctx, "mongo.users.find_one")
	defer sp.Finish()

	var u domain.User
	err := s.DB.Collection(usersColl).FindOne(ctx, filter).Decode(&u)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		sp.SetTag("error", err)
		return nil, err
	}
	return &u, nil
}

// MarkEmailVerified flips verify_email to true. The transition never reverts,
// so matching regardless of the current value keeps repeat calls idempotent.
func (s *Store) MarkEmailVerified(ctx context.Context, id primitive.ObjectID) (*domain.User, error) {
	sp, ctx := tracer.StartSpanFromContext(ctx, "mongo.users.mark_verified")
	defer sp.Finish()

	res := s.DB.Collection(usersColl).FindOneAndUpdate(
		ctx,
		bson.M{"_id": id},
		bson.M{"$set": bson.M{"verify_email": true, "updated_at": time.Now().UTC()}},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	)
	var u domain.User
	if err := res.Decode(&u); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		sp.SetTag("error", err)
		return nil, err
	}
	return &u, nil
}

// RecordLogin stamps last_login_date and mirrors the freshly issued refresh
// token onto the user document for later explicit invalidation.
func (s *Store) RecordLogin(ctx context.Context, id primitive.ObjectID, refreshToken string, at time.Time) error {
	sp, ctx := tracer.StartSpanFromContext(ctx, "mongo.users.record_login")
	defer sp.Finish()

	_, err := s.DB.Collection(usersColl).UpdateByID(ctx, id, bson.M{
		"$set": bson.M{
			"last_login_date": at.UTC(),
			"refresh_token":   refreshToken,
			"updated_at":      time.Now().UTC(),
		},
	})
	if err != nil {
		sp.SetTag("error", err)
	}
	return err
}

func (s *Store) ClearRefreshToken(ctx context.Context, id primitive.ObjectID) error {
	sp, ctx := tracer.StartSpanFromContext(ctx, "mongo.users.clear_refresh")
	defer sp.Finish()

	_, err := s.DB.Collection(usersColl).UpdateByID(ctx, id, bson.M{
		"$set":   bson.M{"updated_at": time.Now().UTC()},
		"$unset": bson.M{"refresh_token": ""},
	})
	if err != nil {
		sp.SetTag("error", err)
	}
	return err
}
