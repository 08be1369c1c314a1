package mongodb

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"

	"github.com/parley/parley/internal/domain/errs"
	"github.com/parley/parley/internal/domain/media"
	msgdomain "github.com/parley/parley/internal/domain/message"
	"github.com/parley/parley/internal/domain/uuid"
)

// MongoMessageRepository реализует message.Repository поверх MongoDB
type MongoMessageRepository struct {
	collection *mongo.Collection
	logger     *slog.Logger
}

// MessageRepoOption configures MongoMessageRepository.
type MessageRepoOption func(*MongoMessageRepository)

// WithMessageRepoLogger sets the logger for message repository.
func WithMessageRepoLogger(logger *slog.Logger) MessageRepoOption {
	return func(r *MongoMessageRepository) {
		r.logger = logger
	}
}

// NewMongoMessageRepository создает MongoDB-репозиторий сообщений
func NewMongoMessageRepository(collection *mongo.Collection, opts ...MessageRepoOption) *MongoMessageRepository {
	r := &MongoMessageRepository{
		collection: collection,
		logger:     slog.Default(),
	}

	for _, opt := range opts {
		opt(r)
	}

	return r
}

// Insert создает сообщение
func (r *MongoMessageRepository) Insert(ctx context.Context, msg *msgdomain.Message) error {
	if msg == nil || msg.ID().IsZero() {
		return errs.ErrInvalidInput
	}

	_, err := r.collection.InsertOne(ctx, r.messageToDocument(msg))
	if err != nil {
		r.logger.ErrorContext(ctx, "failed to insert message",
			slog.String("message_id", msg.ID().String()),
			slog.String("channel_id", msg.ChannelID().String()),
			slog.String("error", err.Error()),
		)
	}
	return HandleMongoError(err, "message")
}

// Save обновляет существующее сообщение
func (r *MongoMessageRepository) Save(ctx context.Context, msg *msgdomain.Message) error {
	if msg == nil || msg.ID().IsZero() {
		return errs.ErrInvalidInput
	}

	filter := bson.M{"message_id": msg.ID().String()}
	update := bson.M{"$set": r.messageToDocument(msg)}

	result, err := r.collection.UpdateOne(ctx, filter, update)
	if err != nil {
		return HandleMongoError(err, "message")
	}
	if result.MatchedCount == 0 {
		return errs.ErrNotFound
	}

	return nil
}

// FindByID находит сообщение по id
func (r *MongoMessageRepository) FindByID(ctx context.Context, id uuid.UUID) (*msgdomain.Message, error) {
	if id.IsZero() {
		return nil, errs.ErrInvalidInput
	}

	var doc messageDocument
	err := r.collection.FindOne(ctx, bson.M{"message_id": id.String()}).Decode(&doc)
	if err != nil {
		return nil, HandleMongoError(err, "message")
	}

	return r.documentToMessage(&doc)
}

// DeleteByID удаляет сообщение
func (r *MongoMessageRepository) DeleteByID(ctx context.Context, id uuid.UUID) error {
	if id.IsZero() {
		return errs.ErrInvalidInput
	}

	result, err := r.collection.DeleteOne(ctx, bson.M{"message_id": id.String()})
	if err != nil {
		return HandleMongoError(err, "message")
	}
	if result.DeletedCount == 0 {
		return errs.ErrNotFound
	}

	return nil
}

// ListByChannel возвращает страницу сообщений канала (createdAt desc)
func (r *MongoMessageRepository) ListByChannel(
	ctx context.Context,
	channelID uuid.UUID,
	skip, limit int,
) ([]*msgdomain.Message, error) {
	if channelID.IsZero() {
		return nil, errs.ErrInvalidInput
	}

	limit = DefaultLimitWithMax(limit, DefaultPaginationLimit, MaxPaginationLimit)
	filter := bson.M{"channel_id": channelID.String()}
	opts := FindWithPaginationDesc(skip, limit)

	return findAll(ctx, r.collection, filter, opts, r.documentToMessage, "messages")
}

// FindLastByChannel возвращает последнее сообщение канала или nil
func (r *MongoMessageRepository) FindLastByChannel(
	ctx context.Context,
	channelID uuid.UUID,
) (*msgdomain.Message, error) {
	if channelID.IsZero() {
		return nil, errs.ErrInvalidInput
	}

	filter := bson.M{"channel_id": channelID.String()}
	opts := FindWithPaginationDesc(0, 1)

	messages, err := findAll(ctx, r.collection, filter, opts, r.documentToMessage, "messages")
	if err != nil {
		if errors.Is(err, errs.ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}
	if len(messages) == 0 {
		return nil, nil
	}

	return messages[0], nil
}

// CountAfter возвращает количество сообщений канала новее момента t
func (r *MongoMessageRepository) CountAfter(ctx context.Context, channelID uuid.UUID, t time.Time) (int, error) {
	if channelID.IsZero() {
		return 0, errs.ErrInvalidInput
	}

	filter := bson.M{"channel_id": channelID.String()}
	if !t.IsZero() {
		filter["created_at"] = bson.M{"$gt": t}
	}

	count, err := CountFilter(ctx, r.collection, filter)
	if err != nil {
		return 0, HandleMongoError(err, "messages")
	}
	return count, nil
}

// messageDocument представляет структуру документа сообщения в MongoDB.
// message_id — time-ordered идентификатор, не RFC-4122 UUID.
type messageDocument struct {
	MessageID   string           `bson:"message_id"`
	ChannelID   string           `bson:"channel_id"`
	CreatedByID string           `bson:"created_by_id"`
	Text        string           `bson:"text"`
	Resources   []media.Resource `bson:"resources,omitempty"`
	CreatedAt   time.Time        `bson:"created_at"`
	UpdatedAt   time.Time        `bson:"updated_at"`
}

func (r *MongoMessageRepository) messageToDocument(msg *msgdomain.Message) messageDocument {
	return messageDocument{
		MessageID:   msg.ID().String(),
		ChannelID:   msg.ChannelID().String(),
		CreatedByID: msg.CreatedByID().String(),
		Text:        msg.Text(),
		Resources:   msg.Resources(),
		CreatedAt:   msg.CreatedAt(),
		UpdatedAt:   msg.UpdatedAt(),
	}
}

func (r *MongoMessageRepository) documentToMessage(doc *messageDocument) (*msgdomain.Message, error) {
	if doc == nil {
		return nil, errs.ErrInvalidInput
	}

	return msgdomain.Reconstruct(
		uuid.UUID(doc.MessageID),
		uuid.UUID(doc.ChannelID),
		uuid.UUID(doc.CreatedByID),
		doc.Text,
		doc.Resources,
		doc.CreatedAt,
		doc.UpdatedAt,
	), nil
}
