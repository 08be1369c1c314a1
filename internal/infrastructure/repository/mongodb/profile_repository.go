package mongodb

import (
	"context"
	"log/slog"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"

	"github.com/parley/parley/internal/domain/errs"
	profiledomain "github.com/parley/parley/internal/domain/profile"
	"github.com/parley/parley/internal/domain/uuid"
)

// MongoProfileRepository реализует profile.Repository поверх MongoDB
type MongoProfileRepository struct {
	collection *mongo.Collection
	logger     *slog.Logger
}

// ProfileRepoOption configures MongoProfileRepository.
type ProfileRepoOption func(*MongoProfileRepository)

// WithProfileRepoLogger sets the logger for profile repository.
func WithProfileRepoLogger(logger *slog.Logger) ProfileRepoOption {
	return func(r *MongoProfileRepository) {
		r.logger = logger
	}
}

// NewMongoProfileRepository создает MongoDB-репозиторий permission profiles
func NewMongoProfileRepository(collection *mongo.Collection, opts ...ProfileRepoOption) *MongoProfileRepository {
	r := &MongoProfileRepository{
		collection: collection,
		logger:     slog.Default(),
	}

	for _, opt := range opts {
		opt(r)
	}

	return r
}

// FindByID находит профиль по ID
func (r *MongoProfileRepository) FindByID(ctx context.Context, id uuid.UUID) (*profiledomain.Profile, error) {
	if id.IsZero() {
		return nil, errs.ErrInvalidInput
	}

	var doc profileDocument
	err := r.collection.FindOne(ctx, bson.M{"profile_id": id.String()}).Decode(&doc)
	if err != nil {
		return nil, HandleMongoError(err, "profile")
	}

	return r.documentToProfile(&doc)
}

// FindByIDs находит профили по набору ID
func (r *MongoProfileRepository) FindByIDs(ctx context.Context, ids []uuid.UUID) ([]*profiledomain.Profile, error) {
	if len(ids) == 0 {
		return []*profiledomain.Profile{}, nil
	}

	filter := bson.M{"profile_id": bson.M{"$in": idStrings(ids)}}
	return findAll(ctx, r.collection, filter, nil, r.documentToProfile, "profiles")
}

// FindByName находит профиль по имени
func (r *MongoProfileRepository) FindByName(ctx context.Context, name string) (*profiledomain.Profile, error) {
	if name == "" {
		return nil, errs.ErrInvalidInput
	}

	var doc profileDocument
	err := r.collection.FindOne(ctx, bson.M{"name": name}).Decode(&doc)
	if err != nil {
		return nil, HandleMongoError(err, "profile")
	}

	return r.documentToProfile(&doc)
}

// Save сохраняет профиль (insert или update по ID)
func (r *MongoProfileRepository) Save(ctx context.Context, p *profiledomain.Profile) error {
	if p == nil || p.ID().IsZero() {
		return errs.ErrInvalidInput
	}

	doc := r.profileToDocument(p)
	filter := bson.M{"profile_id": p.ID().String()}
	update := bson.M{"$set": doc}

	_, err := r.collection.UpdateOne(ctx, filter, update, UpsertOptions())
	if err != nil && !mongo.IsDuplicateKeyError(err) {
		r.logger.ErrorContext(ctx, "failed to save profile",
			slog.String("profile_id", p.ID().String()),
			slog.String("error", err.Error()),
		)
	}
	return HandleMongoError(err, "profile")
}

// Delete удаляет профиль
func (r *MongoProfileRepository) Delete(ctx context.Context, id uuid.UUID) error {
	if id.IsZero() {
		return errs.ErrInvalidInput
	}

	result, err := r.collection.DeleteOne(ctx, bson.M{"profile_id": id.String()})
	if err != nil {
		return HandleMongoError(err, "profile")
	}
	if result.DeletedCount == 0 {
		return errs.ErrNotFound
	}

	return nil
}

// List возвращает профили с пагинацией
func (r *MongoProfileRepository) List(ctx context.Context, offset, limit int) ([]*profiledomain.Profile, error) {
	limit = DefaultLimitWithMax(limit, DefaultPaginationLimit, MaxPaginationLimit)
	opts := FindWithPagination(offset, limit, "name", 1)
	return findAll(ctx, r.collection, bson.M{}, opts, r.documentToProfile, "profiles")
}

// Count возвращает общее количество профилей
func (r *MongoProfileRepository) Count(ctx context.Context) (int, error) {
	count, err := CountFilter(ctx, r.collection, bson.M{})
	if err != nil {
		return 0, HandleMongoError(err, "profiles")
	}
	return count, nil
}

// profileDocument представляет структуру документа профиля в MongoDB
type profileDocument struct {
	ProfileID   string                `bson:"profile_id"`
	Name        string                `bson:"name"`
	Description string                `bson:"description,omitempty"`
	Grants      []profiledomain.Grant `bson:"grants,omitempty"`
	IsActive    bool                  `bson:"is_active"`
	CreatedAt   time.Time             `bson:"created_at"`
	UpdatedAt   time.Time             `bson:"updated_at"`
}

func (r *MongoProfileRepository) profileToDocument(p *profiledomain.Profile) profileDocument {
	return profileDocument{
		ProfileID:   p.ID().String(),
		Name:        p.Name(),
		Description: p.Description(),
		Grants:      p.Grants(),
		IsActive:    p.IsActive(),
		CreatedAt:   p.CreatedAt(),
		UpdatedAt:   p.UpdatedAt(),
	}
}

func (r *MongoProfileRepository) documentToProfile(doc *profileDocument) (*profiledomain.Profile, error) {
	if doc == nil {
		return nil, errs.ErrInvalidInput
	}

	id, err := uuid.ParseUUID(doc.ProfileID)
	if err != nil {
		return nil, errs.ErrInvalidInput
	}

	return profiledomain.Reconstruct(
		id,
		doc.Name,
		doc.Description,
		doc.Grants,
		doc.IsActive,
		doc.CreatedAt,
		doc.UpdatedAt,
	), nil
}
