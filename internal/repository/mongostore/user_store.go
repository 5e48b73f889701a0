package mongostore

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/noah-isme/school-roster-api/internal/models"
)

// UserStore is the credential store backed by the users collection.
type UserStore struct {
	coll *mongo.Collection
}

// NewUserStore constructs a UserStore.
func NewUserStore(db *mongo.Database) *UserStore {
	return &UserStore{coll: db.Collection(usersCollection)}
}

// FindByEmail returns the account registered under email.
func (s *UserStore) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	var doc userDocument
	filter := bson.M{"email": strings.ToLower(strings.TrimSpace(email))}
	if err := s.coll.FindOne(ctx, filter).Decode(&doc); err != nil {
		return nil, wrapMiss(err, "find user by email")
	}
	return doc.toModel(), nil
}

// FindByID returns the account with the given id.
func (s *UserStore) FindByID(ctx context.Context, id string) (*models.User, error) {
	oid, err := objectID(id)
	if err != nil {
		return nil, err
	}
	var doc userDocument
	if err := s.coll.FindOne(ctx, bson.M{"_id": oid}).Decode(&doc); err != nil {
		return nil, wrapMiss(err, "find user by id")
	}
	return doc.toModel(), nil
}

// Create inserts a new account.
func (s *UserStore) Create(ctx context.Context, user *models.User) error {
	now := time.Now().UTC()
	doc := userDocument{
		Email:          strings.ToLower(strings.TrimSpace(user.Email)),
		PasswordHash:   user.PasswordHash,
		Name:           user.Name,
		Role:           string(user.Role),
		TeacherClasses: nonNil(user.TeacherClasses),
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	res, err := s.coll.InsertOne(ctx, doc)
	if err != nil {
		return fmt.Errorf("create user: %w", err)
	}
	if oid, ok := res.InsertedID.(primitive.ObjectID); ok {
		user.ID = oid.Hex()
	}
	user.CreatedAt, user.UpdatedAt = now, now
	return nil
}

// Upsert creates the account or replaces the one registered under the same email.
func (s *UserStore) Upsert(ctx context.Context, user *models.User) error {
	now := time.Now().UTC()
	email := strings.ToLower(strings.TrimSpace(user.Email))
	update := bson.M{
		"$set": bson.M{
			"passwordHash":   user.PasswordHash,
			"name":           user.Name,
			"role":           string(user.Role),
			"teacherClasses": nonNil(user.TeacherClasses),
			"updatedAt":      now,
		},
		"$setOnInsert": bson.M{"email": email, "createdAt": now},
	}
	opts := options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After)
	var doc userDocument
	if err := s.coll.FindOneAndUpdate(ctx, bson.M{"email": email}, update, opts).Decode(&doc); err != nil {
		return fmt.Errorf("upsert user: %w", err)
	}
	user.ID = doc.ID.Hex()
	user.CreatedAt = doc.CreatedAt
	user.UpdatedAt = doc.UpdatedAt
	return nil
}

// DeleteByEmails removes the accounts with the given addresses.
func (s *UserStore) DeleteByEmails(ctx context.Context, emails []string) (int64, error) {
	if len(emails) == 0 {
		return 0, nil
	}
	lowered := make([]string, 0, len(emails))
	for _, e := range emails {
		lowered = append(lowered, strings.ToLower(strings.TrimSpace(e)))
	}
	res, err := s.coll.DeleteMany(ctx, bson.M{"email": bson.M{"$in": lowered}})
	if err != nil {
		return 0, fmt.Errorf("delete users by email: %w", err)
	}
	return res.DeletedCount, nil
}

func nonNil(values []string) []string {
	if values == nil {
		return []string{}
	}
	return values
}
