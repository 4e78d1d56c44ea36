package adapters

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

// Postgres reads platform data from the learners, courses and
// course_grades tables.
type Postgres struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *Postgres {
	return &Postgres{db: db}
}

func (p *Postgres) ByID(ctx context.Context, learnerID id.LearnerID) (*models.Learner, error) {
	return p.findLearner(ctx, `SELECT id, username, email, full_name FROM learners WHERE id = $1`, uuid.UUID(learnerID))
}

func (p *Postgres) ByUsername(ctx context.Context, username string) (*models.Learner, error) {
	return p.findLearner(ctx, `SELECT id, username, email, full_name FROM learners WHERE username = $1`, username)
}

func (p *Postgres) findLearner(ctx context.Context, query string, arg any) (*models.Learner, error) {
	var (
		learnerID uuid.UUID
		learner   models.Learner
	)
	err := p.db.QueryRowContext(ctx, query, arg).Scan(&learnerID, &learner.Username, &learner.Email, &learner.FullName)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, sentinel.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find learner: %w", err)
	}
	learner.ID = id.LearnerID(learnerID)
	return &learner, nil
}

func (p *Postgres) Course(ctx context.Context, courseID models.CourseID) (*models.Course, error) {
	var (
		course      models.Course
		description sql.NullString
	)
	err := p.db.QueryRowContext(ctx,
		`SELECT display_name, description, passing_grade FROM courses WHERE id = $1`,
		string(courseID),
	).Scan(&course.DisplayName, &description, &course.PassingGrade)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, sentinel.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find course: %w", err)
	}
	course.ID = courseID
	course.Description = description.String
	return &course, nil
}

func (p *Postgres) Description(ctx context.Context, courseID models.CourseID) (string, error) {
	var description sql.NullString
	err := p.db.QueryRowContext(ctx, `SELECT description FROM courses WHERE id = $1`, string(courseID)).Scan(&description)
	if errors.Is(err, sql.ErrNoRows) || (err == nil && description.String == "") {
		return "", sentinel.ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("find course description: %w", err)
	}
	return description.String, nil
}

// Evaluate returns the stored grade, or zero for a learner never graded.
func (p *Postgres) Evaluate(ctx context.Context, learnerID id.LearnerID, courseID models.CourseID) (models.Grade, error) {
	var grade models.Grade
	err := p.db.QueryRowContext(ctx,
		`SELECT percent, letter_grade FROM course_grades WHERE learner_id = $1 AND course_id = $2`,
		uuid.UUID(learnerID), string(courseID),
	).Scan(&grade.Percent, &grade.Letter)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Grade{}, nil
	}
	if err != nil {
		return models.Grade{}, fmt.Errorf("read grade: %w", err)
	}
	return grade, nil
}

func (p *Postgres) PutLearner(ctx context.Context, learner models.Learner) error {
	_, err := p.db.ExecContext(ctx, `
		INSERT INTO learners (id, username, email, full_name) VALUES ($1, $2, $3, $4)
		ON CONFLICT (id) DO UPDATE SET username = EXCLUDED.username, email = EXCLUDED.email, full_name = EXCLUDED.full_name
	`, uuid.UUID(learner.ID), learner.Username, learner.Email, learner.FullName)
	if err != nil {
		return fmt.Errorf("upsert learner: %w", err)
	}
	return nil
}

func (p *Postgres) PutCourse(ctx context.Context, course models.Course) error {
	_, err := p.db.ExecContext(ctx, `
		INSERT INTO courses (id, display_name, description, passing_grade) VALUES ($1, $2, NULLIF($3, ''), $4)
		ON CONFLICT (id) DO UPDATE SET display_name = EXCLUDED.display_name, description = EXCLUDED.description, passing_grade = EXCLUDED.passing_grade
	`, string(course.ID), course.DisplayName, course.Description, course.PassingGrade)
	if err != nil {
		return fmt.Errorf("upsert course: %w", err)
	}
	return nil
}

func (p *Postgres) PutGrade(ctx context.Context, learnerID id.LearnerID, courseID models.CourseID, grade models.Grade) error {
	_, err := p.db.ExecContext(ctx, `
		INSERT INTO course_grades (learner_id, course_id, percent, letter_grade) VALUES ($1, $2, $3, $4)
		ON CONFLICT (learner_id, course_id) DO UPDATE SET percent = EXCLUDED.percent, letter_grade = EXCLUDED.letter_grade, updated_at = now()
	`, uuid.UUID(learnerID), string(courseID), grade.Percent, grade.Letter)
	if err != nil {
		return fmt.Errorf("upsert grade: %w", err)
	}
	return nil
}
