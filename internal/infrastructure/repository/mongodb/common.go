package mongodb

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"github.com/parley/parley/internal/domain/errs"
)

const (
	// DefaultPaginationLimit — дефолтный лимит для пагинации запросов.
	DefaultPaginationLimit = 50

	// MaxPaginationLimit — максимальный лимит для пагинации запросов.
	MaxPaginationLimit = 100
)

// HandleMongoError преобразует ошибку MongoDB в доменную ошибку.
// Возвращает:
//   - nil если err == nil
//   - errs.ErrNotFound если документ не найден
//   - errs.ErrAlreadyExists если нарушен unique constraint
//   - wrapped error для остальных случаев
func HandleMongoError(err error, resourceType string) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, mongo.ErrNoDocuments) {
		return errs.ErrNotFound
	}

	if mongo.IsDuplicateKeyError(err) {
		return errs.ErrAlreadyExists
	}

	return fmt.Errorf("failed to operate on %s: %w", resourceType, err)
}

// UpsertOptions возвращает стандартные опции для upsert операции.
func UpsertOptions() *options.UpdateOneOptionsBuilder {
	return options.UpdateOne().SetUpsert(true)
}

// FindWithPagination возвращает опции для find с пагинацией и сортировкой.
// sortOrder: 1 = ASC, -1 = DESC.
func FindWithPagination(offset, limit int, sortField string, sortOrder int) *options.FindOptionsBuilder {
	return options.Find().
		SetSort(bson.D{{Key: sortField, Value: sortOrder}}).
		SetLimit(int64(limit)).
		SetSkip(int64(offset))
}

// FindWithPaginationDesc возвращает опции для find с сортировкой по created_at DESC.
func FindWithPaginationDesc(offset, limit int) *options.FindOptionsBuilder {
	return FindWithPagination(offset, limit, "created_at", -1)
}

// CountFilter выполняет подсчет документов с указанным фильтром.
func CountFilter(ctx context.Context, coll *mongo.Collection, filter bson.M) (int, error) {
	count, err := coll.CountDocuments(ctx, filter)
	if err != nil {
		return 0, err
	}
	return int(count), nil
}

// DefaultLimit возвращает limit с применением дефолтного значения.
func DefaultLimit(limit, defaultLimit int) int {
	if limit <= 0 {
		return defaultLimit
	}
	return limit
}

// DefaultLimitWithMax возвращает limit, зажатый между дефолтом и максимумом.
func DefaultLimitWithMax(limit, defaultLimit, maxLimit int) int {
	if limit <= 0 {
		return defaultLimit
	}
	if limit > maxLimit {
		return maxLimit
	}
	return limit
}

// decodeAll декодирует все документы курсора и преобразует их в доменные
// объекты. Некорректные документы пропускаются. Никогда не возвращает nil slice.
func decodeAll[T any, R any](
	ctx context.Context,
	cursor *mongo.Cursor,
	decoder func(*T) (R, error),
) ([]R, error) {
	defer cursor.Close(ctx)

	results := make([]R, 0)
	for cursor.Next(ctx) {
		var doc T
		if decodeErr := cursor.Decode(&doc); decodeErr != nil {
			continue
		}

		item, convErr := decoder(&doc)
		if convErr != nil {
			continue
		}

		results = append(results, item)
	}

	if err := cursor.Err(); err != nil {
		return nil, fmt.Errorf("cursor error: %w", err)
	}

	return results, nil
}

// findAll выполняет Find с фильтром и опциями и декодирует результат.
func findAll[T any, R any](
	ctx context.Context,
	coll *mongo.Collection,
	filter bson.M,
	opts *options.FindOptionsBuilder,
	decoder func(*T) (R, error),
	collectionName string,
) ([]R, error) {
	var cursor *mongo.Cursor
	var err error
	if opts != nil {
		cursor, err = coll.Find(ctx, filter, opts)
	} else {
		cursor, err = coll.Find(ctx, filter)
	}
	if err != nil {
		return nil, HandleMongoError(err, collectionName)
	}

	return decodeAll(ctx, cursor, decoder)
}

// idStrings преобразует идентификаторы в строки для $in фильтров.
func idStrings[T ~string](ids []T) []string {
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		out = append(out, string(id))
	}
	return out
}
