package postgres

import (
	"context"
	"database/sql"
	"encoding/json"

	domainAudit "github.com/lettercounsel/lettercounsel/internal/domain/audit"
	ierr "github.com/lettercounsel/lettercounsel/internal/errors"
	"github.com/lettercounsel/lettercounsel/internal/logger"
	"github.com/lettercounsel/lettercounsel/internal/postgres"
	"github.com/lettercounsel/lettercounsel/internal/types"
)

type auditRepository struct {
	db  postgres.IDB
	log *logger.Logger
}

func NewAuditRepository(db postgres.IDB, log *logger.Logger) domainAudit.Repository {
	return &auditRepository{db: db, log: log}
}

func (r *auditRepository) Create(ctx context.Context, entry *domainAudit.AuditLog) error {
	metadata, err := json.Marshal(entry.Metadata)
	if err != nil {
		return ierr.WithError(err).
			WithHint("Failed to encode audit metadata").
			Mark(ierr.ErrValidation)
	}

	_, err = r.db.Querier(ctx).ExecContext(ctx, `
		INSERT INTO audit_logs (id, letter_id, action, old_status, new_status,
			performed_by, notes, metadata, status, created_at, updated_at, created_by, updated_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`,
		entry.ID, entry.LetterID, entry.Action, entry.OldStatus, entry.NewStatus,
		entry.PerformedBy, entry.Notes, metadata,
		entry.Status, entry.CreatedAt, entry.UpdatedAt, entry.CreatedBy, entry.UpdatedBy,
	)
	if err != nil {
		return ierr.WithError(err).
			WithHint("Failed to record audit entry").
			WithReportableDetails(map[string]interface{}{
				"letter_id": entry.LetterID,
				"action":    entry.Action,
			}).
			Mark(ierr.ErrDatabase)
	}
	return nil
}

func (r *auditRepository) ListByLetter(ctx context.Context, letterID string) ([]*domainAudit.AuditLog, error) {
	rows, err := r.db.Querier(ctx).QueryContext(ctx, `
		SELECT id, letter_id, action, old_status, new_status,
			performed_by, notes, metadata, status, created_at, updated_at, created_by, updated_by
		FROM audit_logs
		WHERE letter_id = $1
		ORDER BY created_at DESC, id DESC`,
		letterID,
	)
	if err != nil {
		return nil, ierr.WithError(err).
			WithHint("Failed to list audit entries").
			Mark(ierr.ErrDatabase)
	}
	defer rows.Close()

	var entries []*domainAudit.AuditLog
	for rows.Next() {
		var (
			entry        domainAudit.AuditLog
			oldStatus    sql.NullString
			newStatus    sql.NullString
			metadataJSON []byte
		)
		err := rows.Scan(
			&entry.ID, &entry.LetterID, &entry.Action, &oldStatus, &newStatus,
			&entry.PerformedBy, &entry.Notes, &metadataJSON,
			&entry.Status, &entry.CreatedAt, &entry.UpdatedAt, &entry.CreatedBy, &entry.UpdatedBy,
		)
		if err != nil {
			return nil, ierr.WithError(err).
				WithHint("Failed to scan audit entry").
				Mark(ierr.ErrDatabase)
		}
		if oldStatus.Valid {
			s := types.LetterStatus(oldStatus.String)
			entry.OldStatus = &s
		}
		if newStatus.Valid {
			s := types.LetterStatus(newStatus.String)
			entry.NewStatus = &s
		}
		if len(metadataJSON) > 0 {
			if err := json.Unmarshal(metadataJSON, &entry.Metadata); err != nil {
				return nil, ierr.WithError(err).
					WithHint("Failed to decode audit metadata").
					Mark(ierr.ErrDatabase)
			}
		}
		entries = append(entries, &entry)
	}
	if err := rows.Err(); err != nil {
		return nil, ierr.WithError(err).
			WithHint("Failed to list audit entries").
			Mark(ierr.ErrDatabase)
	}
	return entries, nil
}
