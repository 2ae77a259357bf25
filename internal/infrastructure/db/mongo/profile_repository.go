package mongo

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/musha-views/session-store/internal/core/domain"
)

const usersCollection = "users"

// ProfileRepository stores one profile document per account in the "users"
// collection, keyed by the provider-issued uid.
type ProfileRepository struct {
	coll *mongo.Collection
}

func NewProfileRepository(db *mongo.Database) *ProfileRepository {
	return &ProfileRepository{coll: db.Collection(usersCollection)}
}

type profileDoc struct {
	ID               string `bson:"_id"`
	Name             string `bson:"name"`
	Email            string `bson:"email"`
	IsSeller         bool   `bson:"is_seller"`
	SellerModeActive bool   `bson:"seller_mode_active"`
	CreatedAt        int64  `bson:"created_at"`
}

func (r *ProfileRepository) Get(ctx context.Context, id string) (*domain.User, error) {
	var doc profileDoc
	if err := r.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&doc); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, domain.ErrProfileNotFound
		}
		return nil, fmt.Errorf("find profile: %w", err)
	}

	return &domain.User{
		ID:               doc.ID,
		Name:             doc.Name,
		Email:            doc.Email,
		IsSeller:         doc.IsSeller,
		SellerModeActive: doc.SellerModeActive,
		CreatedAt:        unixToTime(doc.CreatedAt),
	}, nil
}

func (r *ProfileRepository) Create(ctx context.Context, user *domain.User) error {
	doc := profileDoc{
		ID:               user.ID,
		Name:             user.Name,
		Email:            user.Email,
		IsSeller:         user.IsSeller,
		SellerModeActive: user.SellerModeActive,
		CreatedAt:        user.CreatedAt.Unix(),
	}

	if _, err := r.coll.InsertOne(ctx, doc); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return domain.ErrProfileExists
		}
		return fmt.Errorf("insert profile: %w", err)
	}
	return nil
}

// Update applies only the fields present in the partial update, leaving the
// rest of the document untouched.
func (r *ProfileRepository) Update(ctx context.Context, id string, update domain.ProfileUpdate) error {
	set := bson.M{}
	if update.Name != nil {
		set["name"] = *update.Name
	}
	if update.Email != nil {
		set["email"] = *update.Email
	}
	if update.IsSeller != nil {
		set["is_seller"] = *update.IsSeller
	}
	if update.SellerModeActive != nil {
		set["seller_mode_active"] = *update.SellerModeActive
	}
	if len(set) == 0 {
		return nil
	}

	res, err := r.coll.UpdateByID(ctx, id, bson.M{"$set": set})
	if err != nil {
		return fmt.Errorf("update profile: %w", err)
	}
	if res.MatchedCount == 0 {
		return domain.ErrProfileNotFound
	}
	return nil
}

func unixToTime(ts int64) time.Time {
	if ts == 0 {
		return time.Time{}
	}
	return time.Unix(ts, 0).UTC()
}
