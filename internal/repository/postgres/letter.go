package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"

	domainLetter "github.com/lettercounsel/lettercounsel/internal/domain/letter"
	ierr "github.com/lettercounsel/lettercounsel/internal/errors"
	"github.com/lettercounsel/lettercounsel/internal/logger"
	"github.com/lettercounsel/lettercounsel/internal/postgres"
	"github.com/lettercounsel/lettercounsel/internal/types"
	"github.com/lib/pq"
)

type letterRepository struct {
	db  postgres.IDB
	log *logger.Logger
}

func NewLetterRepository(db postgres.IDB, log *logger.Logger) domainLetter.Repository {
	return &letterRepository{db: db, log: log}
}

const letterColumns = `id, user_id, letter_type, letter_status, intake_data,
	ai_draft_content, final_content, rejection_reason, review_notes,
	generation_context, approved_at, completed_at,
	status, created_at, updated_at, created_by, updated_by`

func (r *letterRepository) Create(ctx context.Context, l *domainLetter.Letter) error {
	intake, err := json.Marshal(l.IntakeData)
	if err != nil {
		return ierr.WithError(err).
			WithHint("Failed to encode intake data").
			Mark(ierr.ErrValidation)
	}

	_, err = r.db.Querier(ctx).ExecContext(ctx, `
		INSERT INTO letters (id, user_id, letter_type, letter_status, intake_data,
			generation_context, status, created_at, updated_at, created_by, updated_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
		l.ID, l.UserID, l.LetterType, l.LetterStatus, intake,
		l.GenerationContext, l.Status, l.CreatedAt, l.UpdatedAt, l.CreatedBy, l.UpdatedBy,
	)
	if err != nil {
		return ierr.WithError(err).
			WithHint("Failed to create letter").
			WithReportableDetails(map[string]interface{}{
				"letter_id": l.ID,
			}).
			Mark(ierr.ErrDatabase)
	}
	return nil
}

func (r *letterRepository) Get(ctx context.Context, id string) (*domainLetter.Letter, error) {
	row := r.db.Querier(ctx).QueryRowContext(ctx,
		fmt.Sprintf(`SELECT %s FROM letters WHERE id = $1 AND status != $2`, letterColumns),
		id, types.StatusDeleted,
	)
	l, err := scanLetter(row)
	if err == sql.ErrNoRows {
		return nil, ierr.NewError("letter not found").
			WithHint("Letter not found").
			WithReportableDetails(map[string]interface{}{
				"letter_id": id,
			}).
			Mark(ierr.ErrNotFound)
	}
	if err != nil {
		return nil, ierr.WithError(err).
			WithHint("Failed to get letter").
			Mark(ierr.ErrDatabase)
	}
	return l, nil
}

func (r *letterRepository) List(ctx context.Context, filter *types.LetterFilter) ([]*domainLetter.Letter, error) {
	if filter == nil {
		filter = types.NewLetterFilter()
	}

	where, args := letterFilterClauses(filter)
	query := fmt.Sprintf(`SELECT %s FROM letters WHERE %s ORDER BY created_at %s LIMIT %d OFFSET %d`,
		letterColumns, where, orderKeyword(filter.GetOrder()), filter.GetLimit(), filter.GetOffset())

	rows, err := r.db.Querier(ctx).QueryContext(ctx, query, args...)
	if err != nil {
		return nil, ierr.WithError(err).
			WithHint("Failed to list letters").
			Mark(ierr.ErrDatabase)
	}
	defer rows.Close()

	var letters []*domainLetter.Letter
	for rows.Next() {
		l, err := scanLetter(rows)
		if err != nil {
			return nil, ierr.WithError(err).
				WithHint("Failed to scan letter").
				Mark(ierr.ErrDatabase)
		}
		letters = append(letters, l)
	}
	if err := rows.Err(); err != nil {
		return nil, ierr.WithError(err).
			WithHint("Failed to list letters").
			Mark(ierr.ErrDatabase)
	}
	return letters, nil
}

func (r *letterRepository) Count(ctx context.Context, filter *types.LetterFilter) (int, error) {
	if filter == nil {
		filter = types.NewLetterFilter()
	}

	where, args := letterFilterClauses(filter)
	var count int
	err := r.db.Querier(ctx).QueryRowContext(ctx,
		fmt.Sprintf(`SELECT COUNT(*) FROM letters WHERE %s`, where), args...,
	).Scan(&count)
	if err != nil {
		return 0, ierr.WithError(err).
			WithHint("Failed to count letters").
			Mark(ierr.ErrDatabase)
	}
	return count, nil
}

// UpdateStatus is the single write path for letter status. The WHERE clause
// carries the expected current status, so a lost optimistic race surfaces
// as zero affected rows rather than a silent overwrite.
func (r *letterRepository) UpdateStatus(ctx context.Context, update *domainLetter.StatusUpdate) (*domainLetter.Letter, error) {
	sets := []string{
		"letter_status = $1",
		"updated_at = NOW()",
		"updated_by = $2",
	}
	args := []interface{}{update.To, update.ActorID}
	idx := 3

	addSet := func(column string, value interface{}) {
		sets = append(sets, fmt.Sprintf("%s = $%d", column, idx))
		args = append(args, value)
		idx++
	}

	if update.DraftContent != nil {
		addSet("ai_draft_content", *update.DraftContent)
	}
	if update.FinalContent != nil {
		addSet("final_content", *update.FinalContent)
	}
	if update.RejectionReason != nil {
		addSet("rejection_reason", *update.RejectionReason)
	}
	if update.ClearRejection {
		sets = append(sets, "rejection_reason = NULL")
	}
	if update.ReviewNotes != nil {
		addSet("review_notes", *update.ReviewNotes)
	}
	if update.GenerationContext != nil {
		addSet("generation_context", *update.GenerationContext)
	}
	if update.ApprovedAt != nil {
		addSet("approved_at", *update.ApprovedAt)
	}
	if update.CompletedAt != nil {
		addSet("completed_at", *update.CompletedAt)
	}

	query := fmt.Sprintf(
		`UPDATE letters SET %s WHERE id = $%d AND letter_status = $%d AND status != $%d RETURNING %s`,
		strings.Join(sets, ", "), idx, idx+1, idx+2, letterColumns,
	)
	args = append(args, update.LetterID, update.From, types.StatusDeleted)

	row := r.db.Querier(ctx).QueryRowContext(ctx, query, args...)
	l, err := scanLetter(row)
	if err == sql.ErrNoRows {
		// Distinguish a missing letter from a lost optimistic race.
		if _, getErr := r.Get(ctx, update.LetterID); getErr != nil {
			return nil, getErr
		}
		return nil, ierr.NewError("letter was modified concurrently").
			WithHint("The letter changed while this action was in flight, retry if still applicable").
			WithReportableDetails(map[string]interface{}{
				"letter_id":       update.LetterID,
				"expected_status": update.From,
			}).
			Mark(ierr.ErrVersionConflict)
	}
	if err != nil {
		return nil, ierr.WithError(err).
			WithHint("Failed to update letter status").
			Mark(ierr.ErrDatabase)
	}
	return l, nil
}

func (r *letterRepository) Delete(ctx context.Context, id string, userID string, allowed []types.LetterStatus) error {
	statuses := make([]string, len(allowed))
	for i, s := range allowed {
		statuses[i] = string(s)
	}

	res, err := r.db.Querier(ctx).ExecContext(ctx, `
		DELETE FROM letters
		WHERE id = $1 AND user_id = $2 AND letter_status = ANY($3)`,
		id, userID, pq.Array(statuses),
	)
	if err != nil {
		return ierr.WithError(err).
			WithHint("Failed to delete letter").
			Mark(ierr.ErrDatabase)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return ierr.WithError(err).
			WithHint("Failed to delete letter").
			Mark(ierr.ErrDatabase)
	}
	if affected == 0 {
		return ierr.NewError("letter not deletable").
			WithHint("Letter does not exist, is not yours, or is not in a deletable status").
			WithReportableDetails(map[string]interface{}{
				"letter_id": id,
			}).
			Mark(ierr.ErrNotFound)
	}
	return nil
}

func (r *letterRepository) CountNonFailedByUser(ctx context.Context, userID string) (int, error) {
	var count int
	err := r.db.Querier(ctx).QueryRowContext(ctx, `
		SELECT COUNT(*) FROM letters
		WHERE user_id = $1 AND letter_status != $2 AND status != $3`,
		userID, types.LetterStatusFailed, types.StatusDeleted,
	).Scan(&count)
	if err != nil {
		return 0, ierr.WithError(err).
			WithHint("Failed to count letters").
			Mark(ierr.ErrDatabase)
	}
	return count, nil
}

func letterFilterClauses(filter *types.LetterFilter) (string, []interface{}) {
	clauses := []string{"status != $1"}
	args := []interface{}{types.StatusDeleted}
	idx := 2

	if filter.UserID != "" {
		clauses = append(clauses, fmt.Sprintf("user_id = $%d", idx))
		args = append(args, filter.UserID)
		idx++
	}
	if len(filter.Statuses) > 0 {
		statuses := make([]string, len(filter.Statuses))
		for i, s := range filter.Statuses {
			statuses[i] = string(s)
		}
		clauses = append(clauses, fmt.Sprintf("letter_status = ANY($%d)", idx))
		args = append(args, pq.Array(statuses))
		idx++
	}
	if len(filter.LetterTypes) > 0 {
		letterTypes := make([]string, len(filter.LetterTypes))
		for i, t := range filter.LetterTypes {
			letterTypes[i] = string(t)
		}
		clauses = append(clauses, fmt.Sprintf("letter_type = ANY($%d)", idx))
		args = append(args, pq.Array(letterTypes))
	}

	return strings.Join(clauses, " AND "), args
}

func orderKeyword(order string) string {
	if order == "asc" {
		return "ASC"
	}
	return "DESC"
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanLetter(row rowScanner) (*domainLetter.Letter, error) {
	var (
		l          domainLetter.Letter
		intakeJSON []byte
		draft      sql.NullString
		final      sql.NullString
		rejection  sql.NullString
		notes      sql.NullString
		genContext sql.NullString
		approvedAt sql.NullTime
		completed  sql.NullTime
	)

	err := row.Scan(
		&l.ID, &l.UserID, &l.LetterType, &l.LetterStatus, &intakeJSON,
		&draft, &final, &rejection, &notes,
		&genContext, &approvedAt, &completed,
		&l.Status, &l.CreatedAt, &l.UpdatedAt, &l.CreatedBy, &l.UpdatedBy,
	)
	if err != nil {
		return nil, err
	}

	if len(intakeJSON) > 0 {
		if err := json.Unmarshal(intakeJSON, &l.IntakeData); err != nil {
			return nil, err
		}
	}
	l.AIDraftContent = nullString(draft)
	l.FinalContent = nullString(final)
	l.RejectionReason = nullString(rejection)
	l.ReviewNotes = nullString(notes)
	l.GenerationContext = nullString(genContext)
	if approvedAt.Valid {
		l.ApprovedAt = &approvedAt.Time
	}
	if completed.Valid {
		l.CompletedAt = &completed.Time
	}
	return &l, nil
}

func nullString(ns sql.NullString) *string {
	if !ns.Valid {
		return nil
	}
	return &ns.String
}
