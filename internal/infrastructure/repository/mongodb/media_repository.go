package mongodb

import (
	"context"
	"log/slog"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"

	"github.com/parley/parley/internal/domain/errs"
	mediadomain "github.com/parley/parley/internal/domain/media"
)

// MongoMediaRepository реализует media.Repository поверх MongoDB.
// media.Resource — экспортированный value object с bson-тегами,
// отдельный document-тип не нужен.
type MongoMediaRepository struct {
	collection *mongo.Collection
	logger     *slog.Logger
}

// MediaRepoOption configures MongoMediaRepository.
type MediaRepoOption func(*MongoMediaRepository)

// WithMediaRepoLogger sets the logger for media repository.
func WithMediaRepoLogger(logger *slog.Logger) MediaRepoOption {
	return func(r *MongoMediaRepository) {
		r.logger = logger
	}
}

// NewMongoMediaRepository создает MongoDB-репозиторий метаданных media-ресурсов
func NewMongoMediaRepository(collection *mongo.Collection, opts ...MediaRepoOption) *MongoMediaRepository {
	r := &MongoMediaRepository{
		collection: collection,
		logger:     slog.Default(),
	}

	for _, opt := range opts {
		opt(r)
	}

	return r
}

// Insert сохраняет метаданные ресурса
func (r *MongoMediaRepository) Insert(ctx context.Context, resource *mediadomain.Resource) error {
	if resource == nil || resource.Key == "" {
		return errs.ErrInvalidInput
	}

	_, err := r.collection.InsertOne(ctx, resource)
	if err != nil {
		r.logger.ErrorContext(ctx, "failed to insert media resource",
			slog.String("key", resource.Key),
			slog.String("error", err.Error()),
		)
	}
	return HandleMongoError(err, "media resource")
}

// FindByKey находит ресурс по ключу
func (r *MongoMediaRepository) FindByKey(ctx context.Context, key string) (*mediadomain.Resource, error) {
	if key == "" {
		return nil, errs.ErrInvalidInput
	}

	var resource mediadomain.Resource
	err := r.collection.FindOne(ctx, bson.M{"key": key}).Decode(&resource)
	if err != nil {
		return nil, HandleMongoError(err, "media resource")
	}

	return &resource, nil
}

// FindByKeys находит ресурсы по набору ключей
func (r *MongoMediaRepository) FindByKeys(ctx context.Context, keys []string) ([]*mediadomain.Resource, error) {
	if len(keys) == 0 {
		return []*mediadomain.Resource{}, nil
	}

	filter := bson.M{"key": bson.M{"$in": keys}}
	decoder := func(doc *mediadomain.Resource) (*mediadomain.Resource, error) { return doc, nil }
	return findAll(ctx, r.collection, filter, nil, decoder, "media resources")
}

// FindByTypeID находит ресурсы владельца
func (r *MongoMediaRepository) FindByTypeID(
	ctx context.Context,
	resourceType, typeID string,
) ([]*mediadomain.Resource, error) {
	if resourceType == "" || typeID == "" {
		return nil, errs.ErrInvalidInput
	}

	filter := bson.M{"type": resourceType, "type_id": typeID}
	decoder := func(doc *mediadomain.Resource) (*mediadomain.Resource, error) { return doc, nil }
	return findAll(ctx, r.collection, filter, nil, decoder, "media resources")
}

// ReassignTypeID привязывает ресурсы к новому владельцу
func (r *MongoMediaRepository) ReassignTypeID(ctx context.Context, keys []string, typeID string) error {
	if typeID == "" {
		return errs.ErrInvalidInput
	}
	if len(keys) == 0 {
		return nil
	}

	filter := bson.M{"key": bson.M{"$in": keys}}
	update := bson.M{"$set": bson.M{"type_id": typeID}}

	_, err := r.collection.UpdateMany(ctx, filter, update)
	return HandleMongoError(err, "media resources")
}

// DeleteByKey удаляет метаданные ресурса
func (r *MongoMediaRepository) DeleteByKey(ctx context.Context, key string) error {
	if key == "" {
		return errs.ErrInvalidInput
	}

	result, err := r.collection.DeleteOne(ctx, bson.M{"key": key})
	if err != nil {
		return HandleMongoError(err, "media resource")
	}
	if result.DeletedCount == 0 {
		return errs.ErrNotFound
	}

	return nil
}

// DeleteByTypeID удаляет все ресурсы владельца и возвращает их ключи
func (r *MongoMediaRepository) DeleteByTypeID(
	ctx context.Context,
	resourceType, typeID string,
) ([]string, error) {
	resources, err := r.FindByTypeID(ctx, resourceType, typeID)
	if err != nil {
		return nil, err
	}
	if len(resources) == 0 {
		return []string{}, nil
	}

	keys := make([]string, 0, len(resources))
	for _, resource := range resources {
		keys = append(keys, resource.Key)
	}

	filter := bson.M{"key": bson.M{"$in": keys}}
	_, err = r.collection.DeleteMany(ctx, filter)
	if err != nil {
		return nil, HandleMongoError(err, "media resources")
	}

	return keys, nil
}
