package gradestore

import (
	"context"
	"database/sql"
	_ "embed"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"ovxassist-backend/lib/telemetry"
	"ovxassist-backend/lib/timezone"
)

var tracer = telemetry.Tracer("ovxassist.lib.gradestore")

//go:embed schema.sql
var Schema string

// Store keeps one grade value per user, course and day. Pushing twice
// on the same day replaces that day's rows instead of stacking them.
type Store struct {
	db *sql.DB
}

func NewStore(database *sql.DB) Store {
	return Store{db: database}
}

type CourseSnapshot struct {
	Course string
	Value  float64
}

type UserSnapshot struct {
	User    string
	Courses []CourseSnapshot
}

type PushRequest struct {
	Time  time.Time
	Users []UserSnapshot
}

const deleteGradeSnapshotsInQuery = `
DELETE FROM grade_snapshots
WHERE time >= ? AND time < ?
    AND user_course_id IN (SELECT id FROM users_courses WHERE user = ?)
`

const createUserCourseQuery = `
INSERT INTO users_courses (user, course)
VALUES (?, ?)
ON CONFLICT (user, course) DO NOTHING
`

const getUserCourseIdQuery = `
SELECT id FROM users_courses WHERE user = ? AND course = ?
`

const createGradeSnapshotQuery = `
INSERT INTO grade_snapshots (user_course_id, time, value)
VALUES (?, ?, ?)
`

func (s Store) Push(ctx context.Context, req PushRequest) error {
	ctx, span := tracer.Start(ctx, "Push")
	defer span.End()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}
	defer tx.Rollback()

	dayStart := timezone.StartOfDay(req.Time)
	dayEnd := dayStart.AddDate(0, 0, 1)

	for _, user := range req.Users {
		_, err = tx.ExecContext(
			ctx, deleteGradeSnapshotsInQuery,
			dayStart.Unix(), dayEnd.Unix(), user.User,
		)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			return err
		}

		for _, course := range user.Courses {
			_, err := tx.ExecContext(ctx, createUserCourseQuery, user.User, course.Course)
			if err != nil {
				span.RecordError(err)
				span.SetStatus(codes.Error, err.Error())
				return err
			}

			var userCourseId int64
			err = tx.QueryRowContext(ctx, getUserCourseIdQuery, user.User, course.Course).
				Scan(&userCourseId)
			if err != nil {
				span.RecordError(err)
				span.SetStatus(codes.Error, err.Error())
				return err
			}

			_, err = tx.ExecContext(
				ctx, createGradeSnapshotQuery,
				userCourseId, req.Time.Unix(), course.Value,
			)
			if err != nil {
				span.RecordError(err)
				span.SetStatus(codes.Error, err.Error())
				return err
			}
		}
	}

	err = tx.Commit()
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}
	return nil
}

type GradeSnapshot struct {
	Time  time.Time
	Value float32
}

type CourseSnapshotSeries struct {
	Course    string
	Snapshots []GradeSnapshot
}

const getGradeSnapshotsQuery = `
SELECT users_courses.course, grade_snapshots.time, grade_snapshots.value
FROM grade_snapshots
INNER JOIN users_courses ON users_courses.id = grade_snapshots.user_course_id
WHERE users_courses.user = ?
ORDER BY users_courses.course, grade_snapshots.time
`

func (s Store) Pull(ctx context.Context, user string) ([]CourseSnapshotSeries, error) {
	ctx, span := tracer.Start(ctx, "Pull")
	defer span.End()

	span.SetAttributes(attribute.String("user", user))

	rows, err := s.db.QueryContext(ctx, getGradeSnapshotsQuery, user)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	defer rows.Close()

	// rows come back sorted by course so all the rows belonging to the
	// same course are next to each other, one pass groups them
	var courses []CourseSnapshotSeries
	for rows.Next() {
		var course string
		var unix int64
		var value float64
		err := rows.Scan(&course, &unix, &value)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			return nil, err
		}

		if len(courses) == 0 || courses[len(courses)-1].Course != course {
			courses = append(courses, CourseSnapshotSeries{Course: course})
		}
		series := &courses[len(courses)-1]
		series.Snapshots = append(series.Snapshots, GradeSnapshot{
			Time:  time.Unix(unix, 0),
			Value: float32(value),
		})
	}
	if err := rows.Err(); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	return courses, nil
}
