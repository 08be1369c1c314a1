package mongodb

import (
	"context"
	"log/slog"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"

	channeldomain "github.com/parley/parley/internal/domain/channel"
	"github.com/parley/parley/internal/domain/errs"
	"github.com/parley/parley/internal/domain/media"
	"github.com/parley/parley/internal/domain/uuid"
)

// MongoChannelRepository реализует channel.Repository поверх MongoDB
type MongoChannelRepository struct {
	collection *mongo.Collection
	logger     *slog.Logger
}

// ChannelRepoOption configures MongoChannelRepository.
type ChannelRepoOption func(*MongoChannelRepository)

// WithChannelRepoLogger sets the logger for channel repository.
func WithChannelRepoLogger(logger *slog.Logger) ChannelRepoOption {
	return func(r *MongoChannelRepository) {
		r.logger = logger
	}
}

// NewMongoChannelRepository создает MongoDB-репозиторий каналов
func NewMongoChannelRepository(collection *mongo.Collection, opts ...ChannelRepoOption) *MongoChannelRepository {
	r := &MongoChannelRepository{
		collection: collection,
		logger:     slog.Default(),
	}

	for _, opt := range opts {
		opt(r)
	}

	return r
}

// Insert создает канал. Уникальность channel_id обеспечивает index,
// конкурентное создание DIRECT канала дает errs.ErrAlreadyExists.
func (r *MongoChannelRepository) Insert(ctx context.Context, ch *channeldomain.Channel) error {
	if ch == nil || ch.ID().IsZero() {
		return errs.ErrInvalidInput
	}

	_, err := r.collection.InsertOne(ctx, r.channelToDocument(ch))
	if err != nil && !mongo.IsDuplicateKeyError(err) {
		r.logger.ErrorContext(ctx, "failed to insert channel",
			slog.String("channel_id", ch.ID().String()),
			slog.String("error", err.Error()),
		)
	}
	return HandleMongoError(err, "channel")
}

// Save обновляет существующий канал по ID
func (r *MongoChannelRepository) Save(ctx context.Context, ch *channeldomain.Channel) error {
	if ch == nil || ch.ID().IsZero() {
		return errs.ErrInvalidInput
	}

	doc := r.channelToDocument(ch)
	doc.UpdatedAt = time.Now().UTC()

	filter := bson.M{"channel_id": ch.ID().String()}
	result, err := r.collection.UpdateOne(ctx, filter, bson.M{"$set": doc})
	if err != nil {
		return HandleMongoError(err, "channel")
	}
	if result.MatchedCount == 0 {
		return errs.ErrNotFound
	}

	return nil
}

// Delete удаляет канал
func (r *MongoChannelRepository) Delete(ctx context.Context, id uuid.UUID) error {
	if id.IsZero() {
		return errs.ErrInvalidInput
	}

	result, err := r.collection.DeleteOne(ctx, bson.M{"channel_id": id.String()})
	if err != nil {
		return HandleMongoError(err, "channel")
	}
	if result.DeletedCount == 0 {
		return errs.ErrNotFound
	}

	return nil
}

// FindByID находит канал по id, опционально сужая по типу
func (r *MongoChannelRepository) FindByID(
	ctx context.Context,
	id uuid.UUID,
	channelType channeldomain.Type,
) (*channeldomain.Channel, error) {
	if id.IsZero() {
		return nil, errs.ErrInvalidInput
	}

	filter := bson.M{"channel_id": id.String()}
	if channelType != "" {
		filter["type"] = string(channelType)
	}

	var doc channelDocument
	err := r.collection.FindOne(ctx, filter).Decode(&doc)
	if err != nil {
		return nil, HandleMongoError(err, "channel")
	}

	return r.documentToChannel(&doc)
}

// FindByIDs находит каналы по набору id, опционально сужая по типу
func (r *MongoChannelRepository) FindByIDs(
	ctx context.Context,
	ids []uuid.UUID,
	channelType channeldomain.Type,
) ([]*channeldomain.Channel, error) {
	if len(ids) == 0 {
		return []*channeldomain.Channel{}, nil
	}

	filter := bson.M{"channel_id": bson.M{"$in": idStrings(ids)}}
	if channelType != "" {
		filter["type"] = string(channelType)
	}

	return findAll(ctx, r.collection, filter, nil, r.documentToChannel, "channels")
}

// channelDocument представляет структуру документа канала в MongoDB.
// channel_id хранится строкой: id прямого канала не является RFC-4122 UUID.
type channelDocument struct {
	ChannelID   string          `bson:"channel_id"`
	Type        string          `bson:"type"`
	Name        string          `bson:"name,omitempty"`
	Description string          `bson:"description,omitempty"`
	Avatar      *media.Resource `bson:"avatar,omitempty"`
	CreatedByID string          `bson:"created_by_id"`
	CreatedAt   time.Time       `bson:"created_at"`
	UpdatedAt   time.Time       `bson:"updated_at"`
}

func (r *MongoChannelRepository) channelToDocument(ch *channeldomain.Channel) channelDocument {
	doc := channelDocument{
		ChannelID:   ch.ID().String(),
		Type:        string(ch.Type()),
		Name:        ch.Name(),
		Description: ch.Description(),
		CreatedByID: ch.CreatedByID().String(),
		CreatedAt:   ch.CreatedAt(),
		UpdatedAt:   ch.CreatedAt(),
	}

	if avatar := ch.Avatar(); !avatar.IsZero() {
		doc.Avatar = &avatar
	}

	return doc
}

func (r *MongoChannelRepository) documentToChannel(doc *channelDocument) (*channeldomain.Channel, error) {
	if doc == nil {
		return nil, errs.ErrInvalidInput
	}

	var avatar media.Resource
	if doc.Avatar != nil {
		avatar = *doc.Avatar
	}

	return channeldomain.Reconstruct(
		uuid.UUID(doc.ChannelID),
		channeldomain.Type(doc.Type),
		doc.Name,
		doc.Description,
		avatar,
		uuid.UUID(doc.CreatedByID),
		doc.CreatedAt,
	), nil
}
