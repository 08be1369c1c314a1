package mongodb

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"github.com/parley/parley/internal/domain/errs"
	"github.com/parley/parley/internal/domain/media"
	"github.com/parley/parley/internal/domain/profile"
	userdomain "github.com/parley/parley/internal/domain/user"
	"github.com/parley/parley/internal/domain/uuid"
)

// MongoUserRepository реализует user.Repository поверх MongoDB
type MongoUserRepository struct {
	collection *mongo.Collection
	logger     *slog.Logger
}

// UserRepoOption configures MongoUserRepository.
type UserRepoOption func(*MongoUserRepository)

// WithUserRepoLogger sets the logger for user repository.
func WithUserRepoLogger(logger *slog.Logger) UserRepoOption {
	return func(r *MongoUserRepository) {
		r.logger = logger
	}
}

// NewMongoUserRepository создает MongoDB-репозиторий пользователей
func NewMongoUserRepository(collection *mongo.Collection, opts ...UserRepoOption) *MongoUserRepository {
	r := &MongoUserRepository{
		collection: collection,
		logger:     slog.Default(),
	}

	for _, opt := range opts {
		opt(r)
	}

	return r
}

// FindByID находит пользователя по ID
func (r *MongoUserRepository) FindByID(ctx context.Context, id uuid.UUID) (*userdomain.User, error) {
	if id.IsZero() {
		return nil, errs.ErrInvalidInput
	}

	filter := bson.M{"user_id": id.String()}
	var doc userDocument
	err := r.collection.FindOne(ctx, filter).Decode(&doc)
	if err != nil {
		if !errors.Is(err, mongo.ErrNoDocuments) {
			r.logger.ErrorContext(ctx, "failed to find user by ID",
				slog.String("user_id", id.String()),
				slog.String("error", err.Error()),
			)
		}
		return nil, HandleMongoError(err, "user")
	}

	return r.documentToUser(&doc)
}

// FindByIDs находит пользователей по набору ID
func (r *MongoUserRepository) FindByIDs(ctx context.Context, ids []uuid.UUID) ([]*userdomain.User, error) {
	if len(ids) == 0 {
		return []*userdomain.User{}, nil
	}

	filter := bson.M{"user_id": bson.M{"$in": idStrings(ids)}}
	return findAll(ctx, r.collection, filter, nil, r.documentToUser, "users")
}

// FindByLogin находит пользователя по username или email
func (r *MongoUserRepository) FindByLogin(ctx context.Context, loginID string) (*userdomain.User, error) {
	if loginID == "" {
		return nil, errs.ErrInvalidInput
	}

	filter := bson.M{"$or": bson.A{
		bson.M{"username": loginID},
		bson.M{"email": loginID},
	}}
	var doc userDocument
	err := r.collection.FindOne(ctx, filter).Decode(&doc)
	if err != nil {
		return nil, HandleMongoError(err, "user")
	}

	return r.documentToUser(&doc)
}

// FindByUsername находит пользователя по username, исключая excludeID
func (r *MongoUserRepository) FindByUsername(
	ctx context.Context,
	username string,
	excludeID uuid.UUID,
) (*userdomain.User, error) {
	if username == "" {
		return nil, errs.ErrInvalidInput
	}

	filter := bson.M{"username": username}
	if !excludeID.IsZero() {
		filter["user_id"] = bson.M{"$ne": excludeID.String()}
	}

	var doc userDocument
	err := r.collection.FindOne(ctx, filter).Decode(&doc)
	if err != nil {
		return nil, HandleMongoError(err, "user")
	}

	return r.documentToUser(&doc)
}

// ExistsSuperUser проверяет, существует ли хотя бы один суперпользователь
func (r *MongoUserRepository) ExistsSuperUser(ctx context.Context) (bool, error) {
	filter := bson.M{"is_super_user": true}
	count, err := r.collection.CountDocuments(ctx, filter, options.Count().SetLimit(1))
	if err != nil {
		return false, HandleMongoError(err, "user")
	}

	return count > 0, nil
}

// Save сохраняет пользователя (insert или update по ID)
func (r *MongoUserRepository) Save(ctx context.Context, user *userdomain.User) error {
	if user == nil || user.ID().IsZero() {
		return errs.ErrInvalidInput
	}

	doc := r.userToDocument(user)
	filter := bson.M{"user_id": user.ID().String()}
	update := bson.M{"$set": doc}

	_, err := r.collection.UpdateOne(ctx, filter, update, UpsertOptions())
	if err != nil && !mongo.IsDuplicateKeyError(err) {
		r.logger.ErrorContext(ctx, "failed to save user",
			slog.String("user_id", user.ID().String()),
			slog.String("error", err.Error()),
		)
	}
	return HandleMongoError(err, "user")
}

// List возвращает пользователей по фильтру и общее количество
func (r *MongoUserRepository) List(
	ctx context.Context,
	filter userdomain.SearchFilter,
) ([]*userdomain.User, int, error) {
	query := bson.M{}
	if search := strings.TrimSpace(filter.Search); search != "" {
		pattern := bson.M{"$regex": regexEscape(search), "$options": "i"}
		query["$or"] = bson.A{
			bson.M{"username": pattern},
			bson.M{"email": pattern},
			bson.M{"first_name": pattern},
			bson.M{"last_name": pattern},
		}
	}

	total, err := CountFilter(ctx, r.collection, query)
	if err != nil {
		return nil, 0, HandleMongoError(err, "users")
	}

	limit := DefaultLimitWithMax(filter.Limit, DefaultPaginationLimit, MaxPaginationLimit)
	opts := FindWithPagination(filter.Offset, limit, "username", 1)

	users, err := findAll(ctx, r.collection, query, opts, r.documentToUser, "users")
	if err != nil {
		return nil, 0, err
	}

	return users, total, nil
}

// regexEscape экранирует спецсимволы регулярного выражения в поисковой строке.
func regexEscape(s string) string {
	const special = `\.+*?()|[]{}^$`
	var b strings.Builder
	for _, r := range s {
		if strings.ContainsRune(special, r) {
			b.WriteByte('\\')
		}
		b.WriteRune(r)
	}
	return b.String()
}

// userDocument представляет структуру документа в MongoDB
type userDocument struct {
	UserID                string             `bson:"user_id"`
	Username              string             `bson:"username"`
	Email                 string             `bson:"email"`
	FirstName             string             `bson:"first_name"`
	LastName              string             `bson:"last_name"`
	PasswordHash          string             `bson:"password_hash"`
	IsSuperUser           bool               `bson:"is_super_user"`
	IsActive              bool               `bson:"is_active"`
	ProfilePicture        *media.Resource    `bson:"profile_picture,omitempty"`
	Profiles              []profile.Snapshot `bson:"profiles,omitempty"`
	PasswordLastChangedAt time.Time          `bson:"password_last_changed_at"`
	CreatedAt             time.Time          `bson:"created_at"`
	UpdatedAt             time.Time          `bson:"updated_at"`
}

// userToDocument преобразует User в документ
func (r *MongoUserRepository) userToDocument(user *userdomain.User) userDocument {
	doc := userDocument{
		UserID:                user.ID().String(),
		Username:              user.Username(),
		Email:                 user.Email(),
		FirstName:             user.FirstName(),
		LastName:              user.LastName(),
		PasswordHash:          user.PasswordHash(),
		IsSuperUser:           user.IsSuperUser(),
		IsActive:              user.IsActive(),
		Profiles:              user.Profiles(),
		PasswordLastChangedAt: user.PasswordLastChangedAt(),
		CreatedAt:             user.CreatedAt(),
		UpdatedAt:             user.UpdatedAt(),
	}

	if picture := user.ProfilePicture(); !picture.IsZero() {
		doc.ProfilePicture = &picture
	}

	return doc
}

// documentToUser преобразует документ в User
func (r *MongoUserRepository) documentToUser(doc *userDocument) (*userdomain.User, error) {
	if doc == nil {
		return nil, errs.ErrInvalidInput
	}

	id, err := uuid.ParseUUID(doc.UserID)
	if err != nil {
		return nil, errs.ErrInvalidInput
	}

	var picture media.Resource
	if doc.ProfilePicture != nil {
		picture = *doc.ProfilePicture
	}

	return userdomain.Reconstruct(
		id,
		doc.Username,
		doc.Email,
		doc.FirstName,
		doc.LastName,
		doc.PasswordHash,
		doc.IsSuperUser,
		doc.IsActive,
		picture,
		doc.Profiles,
		doc.PasswordLastChangedAt,
		doc.CreatedAt,
		doc.UpdatedAt,
	), nil
}
