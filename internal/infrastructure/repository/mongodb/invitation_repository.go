package mongodb

import (
	"context"
	"log/slog"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"

	channeldomain "github.com/parley/parley/internal/domain/channel"
	"github.com/parley/parley/internal/domain/errs"
	invdomain "github.com/parley/parley/internal/domain/invitation"
	"github.com/parley/parley/internal/domain/uuid"
)

// MongoInvitationRepository реализует invitation.Repository поверх MongoDB
type MongoInvitationRepository struct {
	collection *mongo.Collection
	logger     *slog.Logger
}

// InvitationRepoOption configures MongoInvitationRepository.
type InvitationRepoOption func(*MongoInvitationRepository)

// WithInvitationRepoLogger sets the logger for invitation repository.
func WithInvitationRepoLogger(logger *slog.Logger) InvitationRepoOption {
	return func(r *MongoInvitationRepository) {
		r.logger = logger
	}
}

// NewMongoInvitationRepository создает MongoDB-репозиторий приглашений
func NewMongoInvitationRepository(
	collection *mongo.Collection,
	opts ...InvitationRepoOption,
) *MongoInvitationRepository {
	r := &MongoInvitationRepository{
		collection: collection,
		logger:     slog.Default(),
	}

	for _, opt := range opts {
		opt(r)
	}

	return r
}

// InsertMany создает приглашения
func (r *MongoInvitationRepository) InsertMany(ctx context.Context, invitations []*invdomain.Invitation) error {
	if len(invitations) == 0 {
		return nil
	}

	docs := make([]any, 0, len(invitations))
	for _, inv := range invitations {
		if inv == nil {
			return errs.ErrInvalidInput
		}
		docs = append(docs, r.invitationToDocument(inv))
	}

	_, err := r.collection.InsertMany(ctx, docs)
	if err != nil {
		r.logger.ErrorContext(ctx, "failed to insert invitations",
			slog.Int("count", len(invitations)),
			slog.String("error", err.Error()),
		)
	}
	return HandleMongoError(err, "invitation")
}

// FindByID находит приглашение по id
func (r *MongoInvitationRepository) FindByID(ctx context.Context, id uuid.UUID) (*invdomain.Invitation, error) {
	if id.IsZero() {
		return nil, errs.ErrInvalidInput
	}

	var doc invitationDocument
	err := r.collection.FindOne(ctx, bson.M{"invitation_id": id.String()}).Decode(&doc)
	if err != nil {
		return nil, HandleMongoError(err, "invitation")
	}

	return r.documentToInvitation(&doc)
}

// UpdateResponse записывает терминальный ответ приглашения.
// Фильтр по статусу PENDING защищает от конкурентного двойного ответа.
func (r *MongoInvitationRepository) UpdateResponse(ctx context.Context, inv *invdomain.Invitation) error {
	if inv == nil || inv.ID().IsZero() {
		return errs.ErrInvalidInput
	}

	filter := bson.M{
		"invitation_id": inv.ID().String(),
		"status":        string(invdomain.StatusPending),
	}
	update := bson.M{"$set": bson.M{
		"status":            string(inv.Status()),
		"responded_message": inv.RespondedMessage(),
		"responded_at":      inv.RespondedAt(),
	}}

	result, err := r.collection.UpdateOne(ctx, filter, update)
	if err != nil {
		return HandleMongoError(err, "invitation")
	}
	if result.MatchedCount == 0 {
		return errs.ErrInvalidState
	}

	return nil
}

// DeletePending удаляет PENDING-приглашения приглашающего для указанных
// пар (user, channel)
func (r *MongoInvitationRepository) DeletePending(
	ctx context.Context,
	createdByID uuid.UUID,
	keys []invdomain.PendingKey,
) error {
	if createdByID.IsZero() {
		return errs.ErrInvalidInput
	}
	if len(keys) == 0 {
		return nil
	}

	pairs := make(bson.A, 0, len(keys))
	for _, key := range keys {
		pairs = append(pairs, bson.M{
			"user_id":    key.UserID.String(),
			"channel_id": key.ChannelID.String(),
		})
	}

	filter := bson.M{
		"created_by_id": createdByID.String(),
		"status":        string(invdomain.StatusPending),
		"$or":           pairs,
	}

	_, err := r.collection.DeleteMany(ctx, filter)
	return HandleMongoError(err, "invitations")
}

// Find возвращает страницу приглашений по фильтру (createdAt desc)
// и общее количество подходящих записей
func (r *MongoInvitationRepository) Find(
	ctx context.Context,
	filter invdomain.Filter,
) ([]*invdomain.Invitation, int, error) {
	query := bson.M{}
	if !filter.UserID.IsZero() {
		query["user_id"] = filter.UserID.String()
	}
	if !filter.CreatedByID.IsZero() {
		query["created_by_id"] = filter.CreatedByID.String()
	}
	if filter.ChannelType != "" {
		query["channel_type"] = string(filter.ChannelType)
	}
	if !filter.ChannelID.IsZero() {
		query["channel_id"] = filter.ChannelID.String()
	}
	if len(filter.Statuses) > 0 {
		query["status"] = bson.M{"$in": idStrings(filter.Statuses)}
	}

	total, err := CountFilter(ctx, r.collection, query)
	if err != nil {
		return nil, 0, HandleMongoError(err, "invitations")
	}

	limit := DefaultLimitWithMax(filter.Limit, DefaultPaginationLimit, MaxPaginationLimit)
	opts := FindWithPaginationDesc(filter.Skip, limit)

	invitations, err := findAll(ctx, r.collection, query, opts, r.documentToInvitation, "invitations")
	if err != nil {
		return nil, 0, err
	}

	return invitations, total, nil
}

// invitationDocument представляет структуру документа приглашения в MongoDB
type invitationDocument struct {
	InvitationID     string    `bson:"invitation_id"`
	UserID           string    `bson:"user_id"`
	CreatedByID      string    `bson:"created_by_id"`
	Status           string    `bson:"status"`
	ChannelType      string    `bson:"channel_type"`
	ChannelID        string    `bson:"channel_id"`
	Message          string    `bson:"message,omitempty"`
	RespondedMessage string    `bson:"responded_message,omitempty"`
	CreatedAt        time.Time `bson:"created_at"`
	RespondedAt      time.Time `bson:"responded_at,omitempty"`
}

func (r *MongoInvitationRepository) invitationToDocument(inv *invdomain.Invitation) invitationDocument {
	return invitationDocument{
		InvitationID:     inv.ID().String(),
		UserID:           inv.UserID().String(),
		CreatedByID:      inv.CreatedByID().String(),
		Status:           string(inv.Status()),
		ChannelType:      string(inv.ChannelType()),
		ChannelID:        inv.ChannelID().String(),
		Message:          inv.Message(),
		RespondedMessage: inv.RespondedMessage(),
		CreatedAt:        inv.CreatedAt(),
		RespondedAt:      inv.RespondedAt(),
	}
}

func (r *MongoInvitationRepository) documentToInvitation(doc *invitationDocument) (*invdomain.Invitation, error) {
	if doc == nil {
		return nil, errs.ErrInvalidInput
	}

	return invdomain.Reconstruct(
		uuid.UUID(doc.InvitationID),
		uuid.UUID(doc.UserID),
		uuid.UUID(doc.CreatedByID),
		invdomain.Status(doc.Status),
		channeldomain.Type(doc.ChannelType),
		uuid.UUID(doc.ChannelID),
		doc.Message,
		doc.RespondedMessage,
		doc.CreatedAt,
		doc.RespondedAt,
	), nil
}
