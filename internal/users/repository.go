package users

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/bryanlu3000/sign-in-demo/internal/models"
)

// UserRepository defines persistence operations for user records
type UserRepository interface {
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	FindByRefreshToken(ctx context.Context, token string) (*models.User, error)
	Insert(ctx context.Context, u *models.User) error
	SetRefreshToken(ctx context.Context, email, token string) error
	ListEmails(ctx context.Context) ([]string, error)
}

// MongoUserRepository implements UserRepository using a single MongoDB collection
type MongoUserRepository struct {
	col *mongo.Collection
}

// NewMongoUserRepository creates a new repository for the given collection
func NewMongoUserRepository(col *mongo.Collection) *MongoUserRepository {
	return &MongoUserRepository{col: col}
}

func (r *MongoUserRepository) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	var u models.User
	if err := r.col.FindOne(ctx, bson.M{"email": email}).Decode(&u); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, err
	}
	return &u, nil
}

func (r *MongoUserRepository) FindByRefreshToken(ctx context.Context, token string) (*models.User, error) {
	var u models.User
	if err := r.col.FindOne(ctx, bson.M{"refreshToken": token}).Decode(&u); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, err
	}
	return &u, nil
}

func (r *MongoUserRepository) Insert(ctx context.Context, u *models.User) error {
	_, err := r.col.InsertOne(ctx, u)
	return err
}

func (r *MongoUserRepository) SetRefreshToken(ctx context.Context, email, token string) error {
	_, err := r.col.UpdateOne(ctx, bson.M{"email": email}, bson.M{"$set": bson.M{"refreshToken": token}})
	return err
}

// ListEmails returns the email of every registered user, nothing else.
func (r *MongoUserRepository) ListEmails(ctx context.Context) ([]string, error) {
	opts := options.Find().SetProjection(bson.M{"_id": 0, "email": 1})
	cur, err := r.col.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)
	var emails []string
	for cur.Next(ctx) {
		var doc struct {
			Email string `bson:"email"`
		}
		if err := cur.Decode(&doc); err != nil {
			return nil, err
		}
		emails = append(emails, doc.Email)
	}
	if err := cur.Err(); err != nil {
		return nil, err
	}
	return emails, nil
}
