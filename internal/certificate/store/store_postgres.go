package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"certifier/internal/certificate/models"
	id "certifier/pkg/domain"
	"certifier/pkg/platform/sentinel"
)

// PostgresStore persists certificate records in PostgreSQL.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgres constructs a PostgreSQL-backed certificate store.
func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

const recordColumns = `learner_id, course_id, status, mode, grade, name, external_key,
	download_url, download_uuid, verify_uuid, error_reason, created_at, updated_at`

func (s *PostgresStore) Get(ctx context.Context, learnerID id.LearnerID, courseID models.CourseID) (*models.Record, error) {
	query := `SELECT ` + recordColumns + ` FROM certificate_records WHERE learner_id = $1 AND course_id = $2`
	record, err := scanRecord(s.db.QueryRowContext(ctx, query, uuid.UUID(learnerID), string(courseID)))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("find certificate: %w", err)
	}
	return record, nil
}

// Save upserts on (learner_id, course_id). created_at is written once.
func (s *PostgresStore) Save(ctx context.Context, record *models.Record) error {
	if err := checkRecord(record); err != nil {
		return err
	}
	query := `
		INSERT INTO certificate_records (` + recordColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		ON CONFLICT (learner_id, course_id) DO UPDATE SET
			status = EXCLUDED.status,
			mode = EXCLUDED.mode,
			grade = EXCLUDED.grade,
			name = EXCLUDED.name,
			external_key = EXCLUDED.external_key,
			download_url = EXCLUDED.download_url,
			download_uuid = EXCLUDED.download_uuid,
			verify_uuid = EXCLUDED.verify_uuid,
			error_reason = EXCLUDED.error_reason,
			updated_at = EXCLUDED.updated_at
		RETURNING created_at
	`
	err := s.db.QueryRowContext(ctx, query,
		uuid.UUID(record.LearnerID),
		string(record.CourseID),
		record.Status.String(),
		string(record.Mode),
		record.Grade,
		record.Name,
		record.ExternalKey,
		record.DownloadURL,
		record.DownloadUUID,
		record.VerifyUUID,
		record.ErrorReason,
		record.CreatedAt,
		record.UpdatedAt,
	).Scan(&record.CreatedAt)
	if err != nil {
		return fmt.Errorf("save certificate: %w", err)
	}
	return nil
}

func (s *PostgresStore) FindForCallback(ctx context.Context, learnerID id.LearnerID, courseID models.CourseID, externalKey string) (*models.Record, error) {
	if externalKey == "" {
		return nil, sentinel.ErrNotFound
	}
	query := `SELECT ` + recordColumns + ` FROM certificate_records
		WHERE learner_id = $1 AND course_id = $2 AND external_key = $3`
	record, err := scanRecord(s.db.QueryRowContext(ctx, query, uuid.UUID(learnerID), string(courseID), externalKey))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("find certificate for callback: %w", err)
	}
	return record, nil
}

func (s *PostgresStore) ListByCourseStatus(ctx context.Context, courseID models.CourseID, status models.Status) ([]*models.Record, error) {
	query := `SELECT ` + recordColumns + ` FROM certificate_records
		WHERE course_id = $1 AND status = $2 ORDER BY learner_id`
	rows, err := s.db.QueryContext(ctx, query, string(courseID), status.String())
	if err != nil {
		return nil, fmt.Errorf("list certificates: %w", err)
	}
	defer rows.Close()

	var records []*models.Record
	for rows.Next() {
		record, err := scanRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("scan certificate: %w", err)
		}
		records = append(records, record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate certificates: %w", err)
	}
	return records, nil
}

func (s *PostgresStore) IsWhitelisted(ctx context.Context, learnerID id.LearnerID, courseID models.CourseID) (bool, error) {
	var whitelisted bool
	err := s.db.QueryRowContext(ctx,
		`SELECT whitelisted FROM certificate_whitelist WHERE learner_id = $1 AND course_id = $2`,
		uuid.UUID(learnerID), string(courseID),
	).Scan(&whitelisted)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("check whitelist: %w", err)
	}
	return whitelisted, nil
}

func (s *PostgresStore) SetWhitelist(ctx context.Context, entry models.WhitelistEntry) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO certificate_whitelist (learner_id, course_id, whitelisted)
		VALUES ($1, $2, $3)
		ON CONFLICT (learner_id, course_id) DO UPDATE SET whitelisted = EXCLUDED.whitelisted
	`, uuid.UUID(entry.LearnerID), string(entry.CourseID), entry.Whitelisted)
	if err != nil {
		return fmt.Errorf("set whitelist: %w", err)
	}
	return nil
}

func (s *PostgresStore) IsRestricted(ctx context.Context, learnerID id.LearnerID) (bool, error) {
	var exists bool
	err := s.db.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM certificate_restrictions WHERE learner_id = $1)`,
		uuid.UUID(learnerID),
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check restriction: %w", err)
	}
	return exists, nil
}

func (s *PostgresStore) Restrict(ctx context.Context, entry models.RestrictionEntry) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO certificate_restrictions (learner_id, reason)
		VALUES ($1, $2)
		ON CONFLICT (learner_id) DO UPDATE SET reason = EXCLUDED.reason
	`, uuid.UUID(entry.LearnerID), entry.Reason)
	if err != nil {
		return fmt.Errorf("restrict learner: %w", err)
	}
	return nil
}

func (s *PostgresStore) Unrestrict(ctx context.Context, learnerID id.LearnerID) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM certificate_restrictions WHERE learner_id = $1`, uuid.UUID(learnerID)); err != nil {
		return fmt.Errorf("unrestrict learner: %w", err)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRecord(row rowScanner) (*models.Record, error) {
	var (
		learnerID uuid.UUID
		courseID  string
		status    string
		mode      string
		record    models.Record
	)
	if err := row.Scan(
		&learnerID,
		&courseID,
		&status,
		&mode,
		&record.Grade,
		&record.Name,
		&record.ExternalKey,
		&record.DownloadURL,
		&record.DownloadUUID,
		&record.VerifyUUID,
		&record.ErrorReason,
		&record.CreatedAt,
		&record.UpdatedAt,
	); err != nil {
		return nil, err
	}
	parsed, err := models.ParseStatus(status)
	if err != nil {
		return nil, err
	}
	record.LearnerID = id.LearnerID(learnerID)
	record.CourseID = models.CourseID(courseID)
	record.Status = parsed
	record.Mode = models.Mode(mode)
	return &record, nil
}
