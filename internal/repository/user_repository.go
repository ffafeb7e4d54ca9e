package repository

import (
	"context"
	"fmt"
	"strings"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"taskboard/internal/model"
)

const usersCollection = "Users"

type UserRepository struct {
	client *firestore.Client
}

type UserRepositoryInterface interface {
	GetAll(ctx context.Context) ([]model.User, error)
	GetByEmail(ctx context.Context, email string) (*model.User, error)
	FindByName(ctx context.Context, name string) (*model.User, error)
	Create(ctx context.Context, user *model.User) error
	Upsert(ctx context.Context, user *model.User) error
}

var _ UserRepositoryInterface = (*UserRepository)(nil)

func NewUserRepository(client *firestore.Client) *UserRepository {
	return &UserRepository{client: client}
}

func (r *UserRepository) col() *firestore.CollectionRef {
	return r.client.Collection(usersCollection)
}

func (r *UserRepository) GetAll(ctx context.Context) ([]model.User, error) {
	var users []model.User
	iter := r.col().Documents(ctx)
	defer iter.Stop()
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, err
		}
		var user model.User
		if err := doc.DataTo(&user); err != nil {
			return nil, fmt.Errorf("decoding user %s: %w", doc.Ref.ID, err)
		}
		users = append(users, user)
	}
	return users, nil
}

// GetByEmail does a point read; the document id is the lower-cased email.
func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	doc, err := r.col().Doc(strings.ToLower(email)).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	var user model.User
	if err := doc.DataTo(&user); err != nil {
		return nil, err
	}
	return &user, nil
}

// FindByName looks a user up by display name, used by the chat-bot command
// path where only a name is known.
func (r *UserRepository) FindByName(ctx context.Context, name string) (*model.User, error) {
	docs, err := r.col().Where("name", "==", name).Limit(1).Documents(ctx).GetAll()
	if err != nil {
		return nil, err
	}
	if len(docs) == 0 {
		return nil, ErrUserNotFound
	}
	var user model.User
	if err := docs[0].DataTo(&user); err != nil {
		return nil, err
	}
	return &user, nil
}

// Create inserts a new user and fails with ErrUserExists on a duplicate
// email.
func (r *UserRepository) Create(ctx context.Context, user *model.User) error {
	user.Email = strings.ToLower(user.Email)
	_, err := r.col().Doc(user.Email).Create(ctx, user)
	if status.Code(err) == codes.AlreadyExists {
		return ErrUserExists
	}
	return err
}

// Upsert writes the user document unconditionally, refreshing profile
// fields on login.
func (r *UserRepository) Upsert(ctx context.Context, user *model.User) error {
	user.Email = strings.ToLower(user.Email)
	_, err := r.col().Doc(user.Email).Set(ctx, user)
	return err
}
