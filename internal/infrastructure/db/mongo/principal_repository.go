package mongo

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/talentoplus/hr-system/internal/core/domain"
)

const principalCollection = "principals"

type MongoPrincipalRepository struct {
	coll     *mongo.Collection
	counters *mongo.Collection
}

func NewPrincipalRepository(db *mongo.Database) *MongoPrincipalRepository {
	return &MongoPrincipalRepository{
		coll:     db.Collection(principalCollection),
		counters: db.Collection(counterCollection),
	}
}

type mongoPrincipal struct {
	ID                    int       `bson:"_id"`
	Email                 string    `bson:"email"`
	PasswordHash          string    `bson:"password_hash"`
	Role                  string    `bson:"role"`
	EmployeeID            *int      `bson:"employee_id,omitempty"`
	RefreshToken          string    `bson:"refresh_token,omitempty"`
	RefreshTokenExpiresAt time.Time `bson:"refresh_token_expires_at,omitempty"`
	CreatedAt             int64     `bson:"created_at"`
	UpdatedAt             int64     `bson:"updated_at"`
}

func (r *MongoPrincipalRepository) FindByEmail(ctx context.Context, email string) (*domain.Principal, error) {
	return r.findOne(ctx, bson.M{"email": strings.ToLower(email)})
}

func (r *MongoPrincipalRepository) FindByEmployeeID(ctx context.Context, employeeID int) (*domain.Principal, error) {
	return r.findOne(ctx, bson.M{"employee_id": employeeID})
}

func (r *MongoPrincipalRepository) findOne(ctx context.Context, filter bson.M) (*domain.Principal, error) {
	var mp mongoPrincipal
	if err := r.coll.FindOne(ctx, filter).Decode(&mp); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrPrincipalNotFound
		}
		return nil, fmt.Errorf("find principal: %w", err)
	}
	return mp.toDomain(), nil
}

func (r *MongoPrincipalRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	n, err := r.coll.CountDocuments(ctx, bson.M{"email": strings.ToLower(email)}, options.Count().SetLimit(1))
	if err != nil {
		return false, fmt.Errorf("count principals: %w", err)
	}
	return n > 0, nil
}

func (r *MongoPrincipalRepository) Create(ctx context.Context, p *domain.Principal) (*domain.Principal, error) {
	id := p.ID
	if id == 0 {
		next, err := nextSequence(ctx, r.counters, principalCollection)
		if err != nil {
			return nil, err
		}
		id = next
	}

	doc := mongoPrincipal{
		ID:           id,
		Email:        strings.ToLower(p.Email),
		PasswordHash: p.PasswordHash,
		Role:         string(p.Role),
		EmployeeID:   p.EmployeeID,
		CreatedAt:    p.CreatedAt.Unix(),
		UpdatedAt:    p.UpdatedAt.Unix(),
	}

	if _, err := r.coll.InsertOne(ctx, doc); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, domain.ErrEmailTaken
		}
		return nil, fmt.Errorf("insert principal: %w", err)
	}

	created := *p
	created.ID = id
	created.Email = doc.Email
	return &created, nil
}

// SetRefreshToken unconditionally overwrites the stored refresh-token pair.
func (r *MongoPrincipalRepository) SetRefreshToken(ctx context.Context, principalID int, token string, expiresAt time.Time) error {
	res, err := r.coll.UpdateOne(ctx,
		bson.M{"_id": principalID},
		bson.M{"$set": bson.M{
			"refresh_token":            token,
			"refresh_token_expires_at": expiresAt,
			"updated_at":               time.Now().UTC().Unix(),
		}},
	)
	if err != nil {
		return fmt.Errorf("set refresh token: %w", err)
	}
	if res.MatchedCount == 0 {
		return domain.ErrPrincipalNotFound
	}
	return nil
}

// RotateRefreshToken swaps the stored refresh token only when the stored
// value still equals previous. The single-document filter makes the swap
// atomic, so of two concurrent rotations presenting the same prior token
// exactly one matches; the other observes domain.ErrExpiredRefreshToken.
func (r *MongoPrincipalRepository) RotateRefreshToken(ctx context.Context, principalID int, previous, next string, expiresAt time.Time) error {
	res, err := r.coll.UpdateOne(ctx,
		bson.M{"_id": principalID, "refresh_token": previous},
		bson.M{"$set": bson.M{
			"refresh_token":            next,
			"refresh_token_expires_at": expiresAt,
			"updated_at":               time.Now().UTC().Unix(),
		}},
	)
	if err != nil {
		return fmt.Errorf("rotate refresh token: %w", err)
	}
	if res.MatchedCount == 0 {
		return domain.ErrExpiredRefreshToken
	}
	return nil
}

func (r *MongoPrincipalRepository) ClearRefreshToken(ctx context.Context, principalID int) error {
	res, err := r.coll.UpdateOne(ctx,
		bson.M{"_id": principalID},
		bson.M{
			"$unset": bson.M{"refresh_token": "", "refresh_token_expires_at": ""},
			"$set":   bson.M{"updated_at": time.Now().UTC().Unix()},
		},
	)
	if err != nil {
		return fmt.Errorf("clear refresh token: %w", err)
	}
	if res.MatchedCount == 0 {
		return domain.ErrPrincipalNotFound
	}
	return nil
}

// EnsureIndexes creates the unique email index. Call once at startup.
func (r *MongoPrincipalRepository) EnsureIndexes(ctx context.Context) error {
	_, err := r.coll.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "email", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		return fmt.Errorf("principal indexes: %w", err)
	}
	return nil
}

func (mp *mongoPrincipal) toDomain() *domain.Principal {
	return &domain.Principal{
		ID:                    mp.ID,
		Email:                 mp.Email,
		PasswordHash:          mp.PasswordHash,
		Role:                  domain.Role(mp.Role),
		EmployeeID:            mp.EmployeeID,
		RefreshToken:          mp.RefreshToken,
		RefreshTokenExpiresAt: mp.RefreshTokenExpiresAt.UTC(),
		CreatedAt:             unixToTime(mp.CreatedAt),
		UpdatedAt:             unixToTime(mp.UpdatedAt),
	}
}

func unixToTime(ts int64) time.Time {
	if ts == 0 {
		return time.Time{}
	}
	return time.Unix(ts, 0).UTC()
}
