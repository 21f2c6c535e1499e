package postgresql

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/buildtrack/buildtrack/internal/domain/repositories"
	"github.com/buildtrack/buildtrack/internal/infrastructure/database"
	"github.com/buildtrack/buildtrack/internal/infrastructure/database/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type DocumentRepository struct {
	crudRepository[models.Document]
}

func NewDocumentRepository(db *database.DB) repositories.DocumentRepository {
	return &DocumentRepository{crudRepository: newCrudRepository[models.Document](db, "document")}
}

// chainScope selects every row of the version chain rooted at rootID.
func chainScope(rootID uuid.UUID) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.Where("(id = ? OR parent_document_id = ?)", rootID, rootID)
	}
}

// Delete removes one row. If it was the latest version, the highest remaining version is promoted.
func (r *DocumentRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var doc models.Document
		if err := tx.Where("id = ?", id).First(&doc).Error; err != nil {
			return r.wrapLookup(err)
		}

		if err := tx.Where("id = ?", id).Delete(&models.Document{}).Error; err != nil {
			return fmt.Errorf("failed to delete document: %w", err)
		}

		if !doc.IsLatestVersion {
			return nil
		}

		var next models.Document
		err := tx.Scopes(chainScope(doc.ChainRootID())).
			Order("version DESC").
			First(&next).Error
		if isNotFound(err) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("failed to find previous version: %w", err)
		}

		if err := tx.Model(&models.Document{}).
			Where("id = ?", next.ID).
			Update("is_latest_version", true).Error; err != nil {
			return fmt.Errorf("failed to promote previous version: %w", err)
		}
		return nil
	})
}

// AppendVersion numbers doc max(chain)+1 and makes it the only latest row of the chain.
// The root row is locked so concurrent appends serialize on PostgreSQL.
func (r *DocumentRepository) AppendVersion(ctx context.Context, rootID uuid.UUID, doc *models.Document) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var root models.Document
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("id = ?", rootID).
			First(&root).Error
		if err != nil && !isNotFound(err) {
			return fmt.Errorf("failed to lock version chain: %w", err)
		}

		var chain struct {
			MaxVersion int
		}
		if err := tx.Model(&models.Document{}).
			Scopes(chainScope(rootID)).
			Select("COALESCE(MAX(version), 0) AS max_version").
			Scan(&chain).Error; err != nil {
			return fmt.Errorf("failed to read chain version: %w", err)
		}
		if chain.MaxVersion == 0 {
			return r.notFound()
		}

		if err := tx.Model(&models.Document{}).
			Scopes(chainScope(rootID)).
			Update("is_latest_version", false).Error; err != nil {
			return fmt.Errorf("failed to clear latest flag: %w", err)
		}

		parent := rootID
		doc.ParentDocumentID = &parent
		doc.Version = chain.MaxVersion + 1
		doc.IsLatestVersion = true

		if err := tx.Create(doc).Error; err != nil {
			return fmt.Errorf("failed to create document version: %w", err)
		}
		return nil
	})
}

func (r *DocumentRepository) GetLatestInChain(ctx context.Context, rootID uuid.UUID) (*models.Document, error) {
	var doc models.Document
	err := r.db.WithContext(ctx).
		Scopes(chainScope(rootID)).
		Order("is_latest_version DESC, version DESC").
		First(&doc).Error
	if err != nil {
		return nil, r.wrapLookup(err)
	}
	return &doc, nil
}

// ListChain returns every version, highest first.
func (r *DocumentRepository) ListChain(ctx context.Context, rootID uuid.UUID) ([]models.Document, error) {
	var docs []models.Document
	err := r.db.WithContext(ctx).
		Scopes(chainScope(rootID)).
		Order("version DESC").
		Find(&docs).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list document versions: %w", err)
	}
	return docs, nil
}

// Search applies every set filter conjunctively, newest first.
func (r *DocumentRepository) Search(ctx context.Context, q repositories.DocumentSearchQuery) ([]models.Document, error) {
	query := r.db.WithContext(ctx).Model(&models.Document{})

	if q.Query != "" {
		term := likePattern(q.Query)
		query = query.Where("(LOWER(name) LIKE ?"+likeEscape+" OR LOWER(description) LIKE ?"+likeEscape+")", term, term)
	}
	if q.PropertyID != nil {
		query = query.Where("property_id = ?", *q.PropertyID)
	}
	if q.MilestoneID != nil {
		query = query.Where("milestone_id = ?", *q.MilestoneID)
	}
	if q.Category != "" {
		query = query.Where("category = ?", q.Category)
	}
	if q.Type != nil {
		query = query.Where("type = ?", *q.Type)
	}
	if q.UploadedBy != nil {
		query = query.Where("uploaded_by = ?", *q.UploadedBy)
	}
	if q.Status != nil {
		query = query.Where("status = ?", *q.Status)
	}
	if q.DateFrom != nil {
		query = query.Where("created_at >= ?", *q.DateFrom)
	}
	if q.DateTo != nil {
		query = query.Where("created_at <= ?", *q.DateTo)
	}
	for _, tag := range q.Tags {
		cond, arg, err := r.tagCondition(tag)
		if err != nil {
			return nil, err
		}
		query = query.Where(cond, arg)
	}
	if !q.IncludeArchived {
		query = query.Where("is_archived = ?", false)
	}
	if !q.AllVersions {
		query = query.Where("is_latest_version = ?", true)
	}

	query = query.Order("created_at DESC").Order("id")
	if q.Limit > 0 {
		query = query.Limit(q.Limit)
	}
	if q.Offset > 0 {
		query = query.Offset(q.Offset)
	}

	var docs []models.Document
	if err := query.Find(&docs).Error; err != nil {
		return nil, fmt.Errorf("failed to search documents: %w", err)
	}
	return docs, nil
}

// tagCondition matches one tag inside the JSON array column.
func (r *DocumentRepository) tagCondition(tag string) (string, interface{}, error) {
	encoded, err := json.Marshal(tag)
	if err != nil {
		return "", nil, fmt.Errorf("failed to encode tag: %w", err)
	}
	if r.db.IsPostgres() {
		return "tags @> ?::jsonb", "[" + string(encoded) + "]", nil
	}
	return "tags LIKE ?" + likeEscape, "%" + likeLiteral(string(encoded)) + "%", nil
}
