package mongo

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/stockdeck/marketplace-system/internal/core/domain"
)

const (
	collectionUsers     = "users"
	collectionUserRoles = "user_roles"
)

// UserRepository implements ports.UserRepository.
type UserRepository struct {
	col *mongo.Collection
}

func NewUserRepository(db *mongo.Database) *UserRepository {
	return &UserRepository{col: db.Collection(collectionUsers)}
}

func (r *UserRepository) FindByID(ctx context.Context, id string) (*domain.User, error) {
	return r.findOne(ctx, bson.M{"_id": id})
}

func (r *UserRepository) FindByExternalID(ctx context.Context, externalID string) (*domain.User, error) {
	return r.findOne(ctx, bson.M{"external_id": externalID})
}

func (r *UserRepository) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	return r.findOne(ctx, bson.M{"email": email})
}

func (r *UserRepository) findOne(ctx context.Context, filter bson.M) (*domain.User, error) {
	var u domain.User
	if err := r.col.FindOne(ctx, filter).Decode(&u); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrUserNotFound
		}
		return nil, err
	}
	return &u, nil
}

// Create inserts a new user document. Unique-index violations on
// external_id or email surface as domain.ErrUserExists.
func (r *UserRepository) Create(ctx context.Context, u *domain.User) error {
	_, err := r.col.InsertOne(ctx, u)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return domain.ErrUserExists
		}
		return err
	}
	return nil
}

// Update replaces the mutable fields of an existing record.
func (r *UserRepository) Update(ctx context.Context, u *domain.User) error {
	set := bson.M{
		"email":          u.Email,
		"display_name":   u.DisplayName,
		"external_id":    u.ExternalID,
		"password_hash":  u.PasswordHash,
		"is_active":      u.IsActive,
		"email_verified": u.EmailVerified,
		"last_login_at":  u.LastLoginAt,
		"updated_at":     u.UpdatedAt,
	}
	res, err := r.col.UpdateByID(ctx, u.ID, bson.M{"$set": set})
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return domain.ErrUserExists
		}
		return err
	}
	if res.MatchedCount == 0 {
		return domain.ErrUserNotFound
	}
	return nil
}

func (r *UserRepository) Delete(ctx context.Context, id string) error {
	res, err := r.col.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return domain.ErrUserNotFound
	}
	return nil
}

// EnsureIndexes creates the uniqueness constraints the reconciler relies on.
func (r *UserRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	indexes := []mongo.IndexModel{
		{
			Keys: bson.D{{Key: "external_id", Value: 1}},
			// Sparse: external_id is nullable for self-registered accounts.
			Options: options.Index().SetUnique(true).SetSparse(true),
		},
		{
			Keys:    bson.D{{Key: "email", Value: 1}},
			Options: options.Index().SetUnique(true).SetSparse(true),
		},
	}
	_, err := r.col.Indexes().CreateMany(ctx, indexes)
	return err
}

// RoleRepository implements ports.RoleRepository on a dedicated collection
// keyed by the (user_id, role) pair.
type RoleRepository struct {
	col *mongo.Collection
}

func NewRoleRepository(db *mongo.Database) *RoleRepository {
	return &RoleRepository{col: db.Collection(collectionUserRoles)}
}

func (r *RoleRepository) ListByUser(ctx context.Context, userID string) ([]domain.Role, error) {
	cur, err := r.col.Find(ctx, bson.M{"user_id": userID})
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var roles []domain.Role
	for cur.Next(ctx) {
		var doc domain.RoleAssignment
		if err := cur.Decode(&doc); err != nil {
			return nil, err
		}
		roles = append(roles, doc.Role)
	}
	return roles, cur.Err()
}

// Grant upserts on (user_id, role): granting twice is a no-op.
func (r *RoleRepository) Grant(ctx context.Context, userID string, role domain.Role) error {
	filter := bson.M{"user_id": userID, "role": string(role)}
	update := bson.M{"$setOnInsert": bson.M{"granted_at": time.Now().UTC()}}
	_, err := r.col.UpdateOne(ctx, filter, update, options.Update().SetUpsert(true))
	return err
}

func (r *RoleRepository) Revoke(ctx context.Context, userID string, role domain.Role) error {
	_, err := r.col.DeleteOne(ctx, bson.M{"user_id": userID, "role": string(role)})
	return err
}

func (r *RoleRepository) RevokeAll(ctx context.Context, userID string) error {
	_, err := r.col.DeleteMany(ctx, bson.M{"user_id": userID})
	return err
}

func (r *RoleRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	_, err := r.col.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "user_id", Value: 1}, {Key: "role", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	return err
}
