package postgresql

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/buildtrack/buildtrack/internal/domain/repositories"
	"github.com/buildtrack/buildtrack/internal/infrastructure/database"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// crudRepository holds the statements every entity repository shares.
type crudRepository[T any] struct {
	db     *database.DB
	entity string
}

func newCrudRepository[T any](db *database.DB, entity string) crudRepository[T] {
	return crudRepository[T]{db: db, entity: entity}
}

func (r *crudRepository[T]) Create(ctx context.Context, entity *T) error {
	if err := r.db.WithContext(ctx).Create(entity).Error; err != nil {
		return fmt.Errorf("failed to create %s: %w", r.entity, err)
	}
	return nil
}

func (r *crudRepository[T]) GetByID(ctx context.Context, id uuid.UUID) (*T, error) {
	var entity T
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&entity).Error
	if err != nil {
		return nil, r.wrapLookup(err)
	}
	return &entity, nil
}

func (r *crudRepository[T]) Update(ctx context.Context, entity *T) error {
	result := r.db.WithContext(ctx).Omit(clause.Associations).Save(entity)
	if result.Error != nil {
		return fmt.Errorf("failed to update %s: %w", r.entity, result.Error)
	}
	return nil
}

func (r *crudRepository[T]) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Where("id = ?", id).Delete(new(T))
	if result.Error != nil {
		return fmt.Errorf("failed to delete %s: %w", r.entity, result.Error)
	}
	if result.RowsAffected == 0 {
		return r.notFound()
	}
	return nil
}

// listWhere returns every row matching the query, in the given order.
func (r *crudRepository[T]) listWhere(ctx context.Context, order string, query interface{}, args ...interface{}) ([]T, error) {
	var entities []T
	err := r.db.WithContext(ctx).Where(query, args...).Order(order).Find(&entities).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list %s: %w", r.entity, err)
	}
	return entities, nil
}

// paginate counts the scoped query and then fetches one page of it.
func (r *crudRepository[T]) paginate(query *gorm.DB, params repositories.ListParams, allowedSorts map[string]string, defaultOrder string) ([]T, int64, error) {
	var entities []T
	var total int64

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count %s: %w", r.entity, err)
	}

	orderBy := defaultOrder
	if column, ok := allowedSorts[params.SortBy]; ok {
		direction := "ASC"
		if params.SortDesc {
			direction = "DESC"
		}
		orderBy = fmt.Sprintf("%s %s", column, direction)
	}

	err := query.Order(orderBy).Offset(params.Offset()).Limit(params.Limit()).Find(&entities).Error
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list %s: %w", r.entity, err)
	}
	return entities, total, nil
}

func (r *crudRepository[T]) wrapLookup(err error) error {
	if isNotFound(err) {
		return r.notFound()
	}
	return fmt.Errorf("failed to get %s: %w", r.entity, err)
}

func (r *crudRepository[T]) notFound() error {
	return fmt.Errorf("%s %w", r.entity, repositories.ErrRecordNotFound)
}

// likeEscape must follow every LIKE that takes a likePattern or likeLiteral argument.
const likeEscape = ` ESCAPE '\'`

var likeReplacer = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// likeLiteral escapes LIKE wildcards so term only matches itself.
func likeLiteral(term string) string {
	return likeReplacer.Replace(term)
}

// likePattern builds a case-insensitive substring pattern for LOWER(col) LIKE ?.
func likePattern(term string) string {
	return "%" + likeLiteral(strings.ToLower(term)) + "%"
}

func isNotFound(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound)
}
