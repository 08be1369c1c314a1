package mongodb

import (
	"context"
	"log/slog"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"

	"github.com/parley/parley/internal/domain/errs"
	notedomain "github.com/parley/parley/internal/domain/note"
	"github.com/parley/parley/internal/domain/uuid"
)

// MongoNoteRepository реализует note.Repository поверх MongoDB
type MongoNoteRepository struct {
	collection *mongo.Collection
	logger     *slog.Logger
}

// NoteRepoOption configures MongoNoteRepository.
type NoteRepoOption func(*MongoNoteRepository)

// WithNoteRepoLogger sets the logger for note repository.
func WithNoteRepoLogger(logger *slog.Logger) NoteRepoOption {
	return func(r *MongoNoteRepository) {
		r.logger = logger
	}
}

// NewMongoNoteRepository создает MongoDB-репозиторий заметок
func NewMongoNoteRepository(collection *mongo.Collection, opts ...NoteRepoOption) *MongoNoteRepository {
	r := &MongoNoteRepository{
		collection: collection,
		logger:     slog.Default(),
	}

	for _, opt := range opts {
		opt(r)
	}

	return r
}

// Insert создает заметку
func (r *MongoNoteRepository) Insert(ctx context.Context, n *notedomain.Note) error {
	if n == nil || n.ID().IsZero() {
		return errs.ErrInvalidInput
	}

	_, err := r.collection.InsertOne(ctx, r.noteToDocument(n))
	if err != nil {
		r.logger.ErrorContext(ctx, "failed to insert note",
			slog.String("note_id", n.ID().String()),
			slog.String("error", err.Error()),
		)
	}
	return HandleMongoError(err, "note")
}

// Save обновляет существующую заметку
func (r *MongoNoteRepository) Save(ctx context.Context, n *notedomain.Note) error {
	if n == nil || n.ID().IsZero() {
		return errs.ErrInvalidInput
	}

	filter := bson.M{"note_id": n.ID().String()}
	update := bson.M{"$set": r.noteToDocument(n)}

	result, err := r.collection.UpdateOne(ctx, filter, update)
	if err != nil {
		return HandleMongoError(err, "note")
	}
	if result.MatchedCount == 0 {
		return errs.ErrNotFound
	}

	return nil
}

// FindByID находит заметку по id
func (r *MongoNoteRepository) FindByID(ctx context.Context, id uuid.UUID) (*notedomain.Note, error) {
	if id.IsZero() {
		return nil, errs.ErrInvalidInput
	}

	var doc noteDocument
	err := r.collection.FindOne(ctx, bson.M{"note_id": id.String()}).Decode(&doc)
	if err != nil {
		return nil, HandleMongoError(err, "note")
	}

	return r.documentToNote(&doc)
}

// DeleteByID удаляет заметку
func (r *MongoNoteRepository) DeleteByID(ctx context.Context, id uuid.UUID) error {
	if id.IsZero() {
		return errs.ErrInvalidInput
	}

	result, err := r.collection.DeleteOne(ctx, bson.M{"note_id": id.String()})
	if err != nil {
		return HandleMongoError(err, "note")
	}
	if result.DeletedCount == 0 {
		return errs.ErrNotFound
	}

	return nil
}

// ListByOwner возвращает заметки владельца (updatedAt desc) и их количество
func (r *MongoNoteRepository) ListByOwner(
	ctx context.Context,
	ownerID uuid.UUID,
	skip, limit int,
) ([]*notedomain.Note, int, error) {
	if ownerID.IsZero() {
		return nil, 0, errs.ErrInvalidInput
	}

	filter := bson.M{"created_by_id": ownerID.String()}

	total, err := CountFilter(ctx, r.collection, filter)
	if err != nil {
		return nil, 0, HandleMongoError(err, "notes")
	}

	limit = DefaultLimitWithMax(limit, DefaultPaginationLimit, MaxPaginationLimit)
	opts := FindWithPagination(skip, limit, "updated_at", -1)

	notes, err := findAll(ctx, r.collection, filter, opts, r.documentToNote, "notes")
	if err != nil {
		return nil, 0, err
	}

	return notes, total, nil
}

// noteDocument представляет структуру документа заметки в MongoDB
type noteDocument struct {
	NoteID      string    `bson:"note_id"`
	CreatedByID string    `bson:"created_by_id"`
	Title       string    `bson:"title"`
	Content     string    `bson:"content,omitempty"`
	CreatedAt   time.Time `bson:"created_at"`
	UpdatedAt   time.Time `bson:"updated_at"`
}

func (r *MongoNoteRepository) noteToDocument(n *notedomain.Note) noteDocument {
	return noteDocument{
		NoteID:      n.ID().String(),
		CreatedByID: n.CreatedByID().String(),
		Title:       n.Title(),
		Content:     n.Content(),
		CreatedAt:   n.CreatedAt(),
		UpdatedAt:   n.UpdatedAt(),
	}
}

func (r *MongoNoteRepository) documentToNote(doc *noteDocument) (*notedomain.Note, error) {
	if doc == nil {
		return nil, errs.ErrInvalidInput
	}

	return notedomain.Reconstruct(
		uuid.UUID(doc.NoteID),
		uuid.UUID(doc.CreatedByID),
		doc.Title,
		doc.Content,
		doc.CreatedAt,
		doc.UpdatedAt,
	), nil
}
