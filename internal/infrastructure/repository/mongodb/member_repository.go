package mongodb

import (
	"context"
	"log/slog"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	channeldomain "github.com/parley/parley/internal/domain/channel"
	"github.com/parley/parley/internal/domain/errs"
	"github.com/parley/parley/internal/domain/uuid"
)

// MongoMemberRepository реализует channel.MemberRepository поверх MongoDB
type MongoMemberRepository struct {
	collection *mongo.Collection
	logger     *slog.Logger
}

// MemberRepoOption configures MongoMemberRepository.
type MemberRepoOption func(*MongoMemberRepository)

// WithMemberRepoLogger sets the logger for member repository.
func WithMemberRepoLogger(logger *slog.Logger) MemberRepoOption {
	return func(r *MongoMemberRepository) {
		r.logger = logger
	}
}

// NewMongoMemberRepository создает MongoDB-репозиторий участников каналов
func NewMongoMemberRepository(collection *mongo.Collection, opts ...MemberRepoOption) *MongoMemberRepository {
	r := &MongoMemberRepository{
		collection: collection,
		logger:     slog.Default(),
	}

	for _, opt := range opts {
		opt(r)
	}

	return r
}

// InsertMany создает участников. Уникальность (channel_id, user_id)
// обеспечивает index, дубликат дает errs.ErrAlreadyExists.
func (r *MongoMemberRepository) InsertMany(ctx context.Context, members []*channeldomain.Member) error {
	if len(members) == 0 {
		return nil
	}

	docs := make([]any, 0, len(members))
	for _, m := range members {
		if m == nil {
			return errs.ErrInvalidInput
		}
		docs = append(docs, r.memberToDocument(m))
	}

	// Ordered(false): дубликат одного участника не блокирует вставку остальных.
	_, err := r.collection.InsertMany(ctx, docs, options.InsertMany().SetOrdered(false))
	if err != nil && !mongo.IsDuplicateKeyError(err) {
		r.logger.ErrorContext(ctx, "failed to insert channel members",
			slog.Int("count", len(members)),
			slog.String("error", err.Error()),
		)
	}
	return HandleMongoError(err, "channel member")
}

// Find находит участника канала
func (r *MongoMemberRepository) Find(
	ctx context.Context,
	channelID, userID uuid.UUID,
) (*channeldomain.Member, error) {
	if channelID.IsZero() || userID.IsZero() {
		return nil, errs.ErrInvalidInput
	}

	filter := bson.M{"channel_id": channelID.String(), "user_id": userID.String()}
	var doc memberDocument
	err := r.collection.FindOne(ctx, filter).Decode(&doc)
	if err != nil {
		return nil, HandleMongoError(err, "channel member")
	}

	return r.documentToMember(&doc)
}

// FindByUserIDs находит участников канала из набора пользователей
func (r *MongoMemberRepository) FindByUserIDs(
	ctx context.Context,
	channelID uuid.UUID,
	userIDs []uuid.UUID,
) ([]*channeldomain.Member, error) {
	if channelID.IsZero() {
		return nil, errs.ErrInvalidInput
	}
	if len(userIDs) == 0 {
		return []*channeldomain.Member{}, nil
	}

	filter := bson.M{
		"channel_id": channelID.String(),
		"user_id":    bson.M{"$in": idStrings(userIDs)},
	}
	return findAll(ctx, r.collection, filter, nil, r.documentToMember, "channel members")
}

// ListByChannel возвращает всех участников канала
func (r *MongoMemberRepository) ListByChannel(
	ctx context.Context,
	channelID uuid.UUID,
) ([]*channeldomain.Member, error) {
	if channelID.IsZero() {
		return nil, errs.ErrInvalidInput
	}

	filter := bson.M{"channel_id": channelID.String()}
	opts := options.Find().SetSort(bson.D{{Key: "joined_at", Value: 1}})
	return findAll(ctx, r.collection, filter, opts, r.documentToMember, "channel members")
}

// ListByUser возвращает все членства пользователя
func (r *MongoMemberRepository) ListByUser(
	ctx context.Context,
	userID uuid.UUID,
) ([]*channeldomain.Member, error) {
	if userID.IsZero() {
		return nil, errs.ErrInvalidInput
	}

	filter := bson.M{"user_id": userID.String()}
	return findAll(ctx, r.collection, filter, nil, r.documentToMember, "channel members")
}

// UpdateRole устанавливает роль участника
func (r *MongoMemberRepository) UpdateRole(
	ctx context.Context,
	channelID, userID uuid.UUID,
	role channeldomain.Role,
) error {
	if channelID.IsZero() || userID.IsZero() {
		return errs.ErrInvalidInput
	}

	filter := bson.M{"channel_id": channelID.String(), "user_id": userID.String()}
	update := bson.M{"$set": bson.M{"role": string(role)}}

	result, err := r.collection.UpdateOne(ctx, filter, update)
	if err != nil {
		r.logger.ErrorContext(ctx, "failed to update member role",
			slog.String("channel_id", channelID.String()),
			slog.String("user_id", userID.String()),
			slog.String("role", string(role)),
			slog.String("error", err.Error()),
		)
		return HandleMongoError(err, "channel member")
	}
	if result.MatchedCount == 0 {
		return errs.ErrNotFound
	}

	return nil
}

// UpdateLastSeenAt обновляет время последнего просмотра канала
func (r *MongoMemberRepository) UpdateLastSeenAt(ctx context.Context, channelID, userID uuid.UUID) error {
	if channelID.IsZero() || userID.IsZero() {
		return errs.ErrInvalidInput
	}

	filter := bson.M{"channel_id": channelID.String(), "user_id": userID.String()}
	update := bson.M{"$set": bson.M{"last_seen_at": time.Now().UTC()}}

	result, err := r.collection.UpdateOne(ctx, filter, update)
	if err != nil {
		return HandleMongoError(err, "channel member")
	}
	if result.MatchedCount == 0 {
		return errs.ErrNotFound
	}

	return nil
}

// CountByRole возвращает количество участников канала с ролью
func (r *MongoMemberRepository) CountByRole(
	ctx context.Context,
	channelID uuid.UUID,
	role channeldomain.Role,
) (int, error) {
	if channelID.IsZero() {
		return 0, errs.ErrInvalidInput
	}

	filter := bson.M{"channel_id": channelID.String(), "role": string(role)}
	count, err := CountFilter(ctx, r.collection, filter)
	if err != nil {
		return 0, HandleMongoError(err, "channel members")
	}
	return count, nil
}

// memberDocument представляет структуру документа участника в MongoDB
type memberDocument struct {
	ChannelID  string    `bson:"channel_id"`
	UserID     string    `bson:"user_id"`
	Role       string    `bson:"role"`
	JoinedAt   time.Time `bson:"joined_at"`
	LastSeenAt time.Time `bson:"last_seen_at,omitempty"`
}

func (r *MongoMemberRepository) memberToDocument(m *channeldomain.Member) memberDocument {
	return memberDocument{
		ChannelID:  m.ChannelID().String(),
		UserID:     m.UserID().String(),
		Role:       string(m.Role()),
		JoinedAt:   m.JoinedAt(),
		LastSeenAt: m.LastSeenAt(),
	}
}

func (r *MongoMemberRepository) documentToMember(doc *memberDocument) (*channeldomain.Member, error) {
	if doc == nil {
		return nil, errs.ErrInvalidInput
	}

	return channeldomain.ReconstructMember(
		uuid.UUID(doc.ChannelID),
		uuid.UUID(doc.UserID),
		channeldomain.Role(doc.Role),
		doc.JoinedAt,
		doc.LastSeenAt,
	), nil
}
