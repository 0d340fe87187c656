package repository

//go:generate go run go.uber.org/mock/mockgen -source=./repository.go -destination=../mocks/repository_mock.go -package=mocks

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"roomtime/infras/otel"
	"roomtime/infras/postgres"
	"roomtime/internal/domains/session/model"
	"roomtime/shared/constant"
	gDto "roomtime/shared/dto"
	"time"

	"github.com/jmoiron/sqlx"
)

// ListFilter narrows List and Count queries. Zero fields are ignored.
type ListFilter struct {
	RoomID    string
	ClassCode string
}

type Session interface {
	Insert(ctx context.Context, session model.Session) error
	InsertBatch(ctx context.Context, sessions []model.Session) error
	GetByID(ctx context.Context, id string) (model.Session, error)
	List(ctx context.Context, params gDto.QueryParams, filter ListFilter) ([]model.Session, error)
	Count(ctx context.Context, filter ListFilter) (int, error)
	ListForRoomDates(ctx context.Context, roomID string, from, to time.Time) ([]model.Session, error)
	ListForRoomOnDateTx(ctx context.Context, tx *sqlx.Tx, roomID string, date time.Time) ([]model.Session, error)
	Delete(ctx context.Context, id string) error
}

type repositoryImpl struct {
	db   *postgres.Connection
	otel otel.Otel
}

func New(db *postgres.Connection, otel otel.Otel) Session {
	return &repositoryImpl{
		db:   db,
		otel: otel,
	}
}

const insertSessionQuery = `
	INSERT INTO class_sessions (id, room_id, session_date, slot, start_time, end_time,
		subject, class_code, lecturer_name, lecturer_contact,
		created_at, modified_at, created_by, modified_by)
	VALUES (:id, :room_id, :session_date, :slot, :start_time, :end_time,
		:subject, :class_code, :lecturer_name, :lecturer_contact,
		:created_at, :modified_at, :created_by, :modified_by)`

func (r *repositoryImpl) Insert(ctx context.Context, session model.Session) (err error) {
	ctx, scope := r.otel.NewScope(ctx, constant.OtelRepositoryScopeName, constant.OtelRepositoryScopeName+".session.Insert")
	defer scope.End()
	defer scope.TraceIfError(err)

	if _, err = r.db.Write.NamedExecContext(ctx, insertSessionQuery, session); err != nil {
		return fmt.Errorf("failed to insert class session: %w", err)
	}

	return nil
}

// InsertBatch writes all sessions of one import row in a single statement.
func (r *repositoryImpl) InsertBatch(ctx context.Context, sessions []model.Session) (err error) {
	ctx, scope := r.otel.NewScope(ctx, constant.OtelRepositoryScopeName, constant.OtelRepositoryScopeName+".session.InsertBatch")
	defer scope.End()
	defer scope.TraceIfError(err)

	if len(sessions) == 0 {
		return nil
	}

	if _, err = r.db.Write.NamedExecContext(ctx, insertSessionQuery, sessions); err != nil {
		return fmt.Errorf("failed to insert class sessions: %w", err)
	}

	return nil
}

func (r *repositoryImpl) GetByID(ctx context.Context, id string) (session model.Session, err error) {
	ctx, scope := r.otel.NewScope(ctx, constant.OtelRepositoryScopeName, constant.OtelRepositoryScopeName+".session.GetByID")
	defer scope.End()
	defer scope.TraceIfError(err)

	err = r.db.Read.GetContext(ctx, &session, `SELECT * FROM class_sessions WHERE id = $1`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Session{}, nil
	}

	if err != nil {
		return model.Session{}, fmt.Errorf("failed to get class session: %w", err)
	}

	return session, nil
}

func (r *repositoryImpl) List(ctx context.Context, params gDto.QueryParams, filter ListFilter) (sessions []model.Session, err error) {
	ctx, scope := r.otel.NewScope(ctx, constant.OtelRepositoryScopeName, constant.OtelRepositoryScopeName+".session.List")
	defer scope.End()
	defer scope.TraceIfError(err)

	where, args := buildFilter(filter)

	query := `SELECT * FROM class_sessions` + where +
		fmt.Sprintf(` ORDER BY session_date %s, start_time ASC LIMIT %d OFFSET %d`,
			sortDir(params.SortDir), params.Limit, params.Offset())
	scope.SetAttribute(constant.OtelQueryAttributeKey, query)

	if err = r.db.Read.SelectContext(ctx, &sessions, query, args...); err != nil {
		return nil, fmt.Errorf("failed to list class sessions: %w", err)
	}

	return sessions, nil
}

func (r *repositoryImpl) Count(ctx context.Context, filter ListFilter) (count int, err error) {
	ctx, scope := r.otel.NewScope(ctx, constant.OtelRepositoryScopeName, constant.OtelRepositoryScopeName+".session.Count")
	defer scope.End()
	defer scope.TraceIfError(err)

	where, args := buildFilter(filter)

	if err = r.db.Read.GetContext(ctx, &count, `SELECT COUNT(*) FROM class_sessions`+where, args...); err != nil {
		return 0, fmt.Errorf("failed to count class sessions: %w", err)
	}

	return count, nil
}

const listForRoomDatesQuery = `
	SELECT * FROM class_sessions
	WHERE room_id = $1 AND session_date >= $2 AND session_date <= $3
	ORDER BY session_date ASC, start_time ASC`

func (r *repositoryImpl) ListForRoomDates(ctx context.Context, roomID string, from, to time.Time) (sessions []model.Session, err error) {
	ctx, scope := r.otel.NewScope(ctx, constant.OtelRepositoryScopeName, constant.OtelRepositoryScopeName+".session.ListForRoomDates")
	defer scope.End()
	defer scope.TraceIfError(err)

	if err = r.db.Read.SelectContext(ctx, &sessions, listForRoomDatesQuery, roomID, from, to); err != nil {
		return nil, fmt.Errorf("failed to list class sessions for room: %w", err)
	}

	return sessions, nil
}

// ListForRoomOnDateTx loads a room's sessions on one date inside the caller's
// transaction, for the booking conflict check.
func (r *repositoryImpl) ListForRoomOnDateTx(ctx context.Context, tx *sqlx.Tx, roomID string, date time.Time) (sessions []model.Session, err error) {
	ctx, scope := r.otel.NewScope(ctx, constant.OtelRepositoryScopeName, constant.OtelRepositoryScopeName+".session.ListForRoomOnDateTx")
	defer scope.End()
	defer scope.TraceIfError(err)

	query := `SELECT * FROM class_sessions WHERE room_id = $1 AND session_date = $2`

	if err = tx.SelectContext(ctx, &sessions, query, roomID, date); err != nil {
		return nil, fmt.Errorf("failed to list class sessions for date: %w", err)
	}

	return sessions, nil
}

func (r *repositoryImpl) Delete(ctx context.Context, id string) (err error) {
	ctx, scope := r.otel.NewScope(ctx, constant.OtelRepositoryScopeName, constant.OtelRepositoryScopeName+".session.Delete")
	defer scope.End()
	defer scope.TraceIfError(err)

	if _, err = r.db.Write.ExecContext(ctx, `DELETE FROM class_sessions WHERE id = $1`, id); err != nil {
		return fmt.Errorf("failed to delete class session: %w", err)
	}

	return nil
}

func buildFilter(filter ListFilter) (string, []any) {
	where := ""
	args := []any{}

	appendClause := func(field string, value string) {
		if value == "" {
			return
		}

		if where == "" {
			where = " WHERE "
		} else {
			where += " AND "
		}

		args = append(args, value)
		where += fmt.Sprintf("%s = $%d", field, len(args))
	}

	appendClause(model.FieldRoomID, filter.RoomID)
	appendClause(model.FieldClassCode, filter.ClassCode)

	return where, args
}

func sortDir(dir string) string {
	if dir == gDto.SortDirDesc {
		return gDto.SortDirDesc
	}

	return gDto.SortDirAsc
}
