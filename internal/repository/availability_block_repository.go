package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/noah-isme/workforce-api/internal/models"
)

const availabilityBlockColumns = `id, organization_id, subject_id, subject_type, kind, status, start_at, end_at, is_recurring, recurrence_group_id, label, created_by, created_at, updated_at`

// AvailabilityBlockRepository persists availability, shift and booking blocks.
type AvailabilityBlockRepository struct {
	db *sqlx.DB
}

// NewAvailabilityBlockRepository constructs the repository.
func NewAvailabilityBlockRepository(db *sqlx.DB) *AvailabilityBlockRepository {
	return &AvailabilityBlockRepository{db: db}
}

func (r *AvailabilityBlockRepository) exec(exec sqlx.ExtContext) sqlx.ExtContext {
	if exec != nil {
		return exec
	}
	return r.db
}

// BeginTxx opens a transaction on the underlying database.
func (r *AvailabilityBlockRepository) BeginTxx(ctx context.Context, opts *sql.TxOptions) (*sqlx.Tx, error) {
	return r.db.BeginTxx(ctx, opts)
}

// List returns blocks of one organization matching the filter, ordered by start.
func (r *AvailabilityBlockRepository) List(ctx context.Context, filter models.AvailabilityFilter) ([]models.AvailabilityBlock, int, error) {
	base := "FROM availability_blocks"
	where := []string{"organization_id = $1"}
	args := []interface{}{filter.OrganizationID}
	if filter.SubjectID != "" {
		where = append(where, fmt.Sprintf("subject_id = $%d", len(args)+1))
		args = append(args, filter.SubjectID)
	}
	if len(filter.Statuses) > 0 {
		where = append(where, fmt.Sprintf("status = ANY($%d)", len(args)+1))
		args = append(args, pq.Array(filter.Statuses))
	}
	if filter.From != nil {
		where = append(where, fmt.Sprintf("end_at >= $%d", len(args)+1))
		args = append(args, *filter.From)
	}
	if filter.To != nil {
		where = append(where, fmt.Sprintf("start_at <= $%d", len(args)+1))
		args = append(args, *filter.To)
	}
	whereClause := strings.Join(where, " AND ")

	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 || size > 200 {
		size = 50
	}
	offset := (page - 1) * size

	query := fmt.Sprintf(`SELECT %s
%s WHERE %s ORDER BY start_at ASC, id ASC LIMIT %d OFFSET %d`, availabilityBlockColumns, base, whereClause, size, offset)
	var blocks []models.AvailabilityBlock
	if err := r.db.SelectContext(ctx, &blocks, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list availability blocks: %w", err)
	}
	countQuery := fmt.Sprintf("SELECT COUNT(*) %s WHERE %s", base, whereClause)
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count availability blocks: %w", err)
	}
	return blocks, total, nil
}

// ListOverlapping returns the subject's blocks that overlap or touch [from, to].
// With lock set the rows are locked for the remainder of the transaction.
func (r *AvailabilityBlockRepository) ListOverlapping(ctx context.Context, exec sqlx.ExtContext, organizationID, subjectID string, from, to time.Time, lock bool) ([]models.AvailabilityBlock, error) {
	query := `SELECT ` + availabilityBlockColumns + `
FROM availability_blocks WHERE organization_id = $1 AND subject_id = $2 AND start_at <= $3 AND end_at >= $4 ORDER BY start_at ASC, id ASC`
	if lock {
		query += " FOR UPDATE"
	}
	var blocks []models.AvailabilityBlock
	if err := sqlx.SelectContext(ctx, r.exec(exec), &blocks, query, organizationID, subjectID, to, from); err != nil {
		return nil, fmt.Errorf("list overlapping availability blocks: %w", err)
	}
	return blocks, nil
}

// FindByID fetches a block scoped to its organization.
func (r *AvailabilityBlockRepository) FindByID(ctx context.Context, organizationID, id string) (*models.AvailabilityBlock, error) {
	query := `SELECT ` + availabilityBlockColumns + `
FROM availability_blocks WHERE organization_id = $1 AND id = $2`
	var block models.AvailabilityBlock
	if err := r.db.GetContext(ctx, &block, query, organizationID, id); err != nil {
		return nil, err
	}
	return &block, nil
}

// CreateBatch inserts blocks, assigning ids and timestamps where missing.
func (r *AvailabilityBlockRepository) CreateBatch(ctx context.Context, exec sqlx.ExtContext, blocks []models.AvailabilityBlock) error {
	if len(blocks) == 0 {
		return nil
	}
	target := r.exec(exec)
	now := time.Now().UTC()

	const query = `
INSERT INTO availability_blocks (id, organization_id, subject_id, subject_type, kind, status, start_at, end_at, is_recurring, recurrence_group_id, label, created_by, created_at, updated_at)
VALUES (:id, :organization_id, :subject_id, :subject_type, :kind, :status, :start_at, :end_at, :is_recurring, :recurrence_group_id, :label, :created_by, :created_at, :updated_at)`

	for i := range blocks {
		block := &blocks[i]
		if block.ID == "" {
			block.ID = uuid.NewString()
		}
		if block.CreatedAt.IsZero() {
			block.CreatedAt = now
		}
		block.UpdatedAt = now
		if _, err := sqlx.NamedExecContext(ctx, target, query, block); err != nil {
			return fmt.Errorf("create availability block: %w", err)
		}
	}
	return nil
}

// UpdateRange moves a block's boundaries.
func (r *AvailabilityBlockRepository) UpdateRange(ctx context.Context, exec sqlx.ExtContext, id string, start, end time.Time) error {
	const query = `UPDATE availability_blocks SET start_at = $1, end_at = $2, updated_at = $3 WHERE id = $4`
	res, err := r.exec(exec).ExecContext(ctx, query, start, end, time.Now().UTC(), id)
	if err != nil {
		return fmt.Errorf("update availability block range: %w", err)
	}
	return expectAffected(res)
}

// Delete removes a block of the organization.
func (r *AvailabilityBlockRepository) Delete(ctx context.Context, exec sqlx.ExtContext, organizationID, id string) error {
	res, err := r.exec(exec).ExecContext(ctx, "DELETE FROM availability_blocks WHERE organization_id = $1 AND id = $2", organizationID, id)
	if err != nil {
		return fmt.Errorf("delete availability block: %w", err)
	}
	return expectAffected(res)
}

func expectAffected(res sql.Result) error {
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}
