package repository

//go:generate go run go.uber.org/mock/mockgen -source=./repository.go -destination=../mocks/repository_mock.go -package=mocks

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"roomtime/infras/otel"
	"roomtime/infras/postgres"
	"roomtime/internal/domains/booking/model"
	"roomtime/shared/constant"
	gDto "roomtime/shared/dto"
	"time"

	"github.com/jmoiron/sqlx"
)

// ListFilter narrows List and Count queries. Zero fields are ignored.
type ListFilter struct {
	RoomID      string
	Status      string
	RequestedBy string
}

type Booking interface {
	InsertTx(ctx context.Context, tx *sqlx.Tx, booking model.Booking) error
	GetByID(ctx context.Context, id string) (model.Booking, error)
	GetByIDForUpdate(ctx context.Context, tx *sqlx.Tx, id string) (model.Booking, error)
	List(ctx context.Context, params gDto.QueryParams, filter ListFilter) ([]model.Booking, error)
	Count(ctx context.Context, filter ListFilter) (int, error)
	ListForRoomSpanTx(ctx context.Context, tx *sqlx.Tx, roomID string, from, to time.Time) ([]model.Booking, error)
	ListForRoomSpan(ctx context.Context, roomID string, from, to time.Time) ([]model.Booking, error)
	UpdateStatusTx(ctx context.Context, tx *sqlx.Tx, id, status, modifiedBy string) error
}

type repositoryImpl struct {
	db   *postgres.Connection
	otel otel.Otel
}

func New(db *postgres.Connection, otel otel.Otel) Booking {
	return &repositoryImpl{
		db:   db,
		otel: otel,
	}
}

const insertBookingQuery = `
	INSERT INTO bookings (id, room_id, requested_by, requested_by_name, start_at, end_at,
		duration_hours, reason, status, created_at, modified_at, created_by, modified_by)
	VALUES (:id, :room_id, :requested_by, :requested_by_name, :start_at, :end_at,
		:duration_hours, :reason, :status, :created_at, :modified_at, :created_by, :modified_by)`

// InsertTx writes the booking inside the caller's transaction so the conflict
// check and the insert commit as one unit.
func (r *repositoryImpl) InsertTx(ctx context.Context, tx *sqlx.Tx, booking model.Booking) (err error) {
	ctx, scope := r.otel.NewScope(ctx, constant.OtelRepositoryScopeName, constant.OtelRepositoryScopeName+".booking.InsertTx")
	defer scope.End()
	defer scope.TraceIfError(err)

	if _, err = tx.NamedExecContext(ctx, insertBookingQuery, booking); err != nil {
		return fmt.Errorf("failed to insert booking: %w", err)
	}

	return nil
}

func (r *repositoryImpl) GetByID(ctx context.Context, id string) (booking model.Booking, err error) {
	ctx, scope := r.otel.NewScope(ctx, constant.OtelRepositoryScopeName, constant.OtelRepositoryScopeName+".booking.GetByID")
	defer scope.End()
	defer scope.TraceIfError(err)

	err = r.db.Read.GetContext(ctx, &booking, `SELECT * FROM bookings WHERE id = $1`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Booking{}, nil
	}

	if err != nil {
		return model.Booking{}, fmt.Errorf("failed to get booking: %w", err)
	}

	return booking, nil
}

func (r *repositoryImpl) GetByIDForUpdate(ctx context.Context, tx *sqlx.Tx, id string) (booking model.Booking, err error) {
	ctx, scope := r.otel.NewScope(ctx, constant.OtelRepositoryScopeName, constant.OtelRepositoryScopeName+".booking.GetByIDForUpdate")
	defer scope.End()
	defer scope.TraceIfError(err)

	err = tx.GetContext(ctx, &booking, `SELECT * FROM bookings WHERE id = $1 FOR UPDATE`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Booking{}, nil
	}

	if err != nil {
		return model.Booking{}, fmt.Errorf("failed to lock booking: %w", err)
	}

	return booking, nil
}

func (r *repositoryImpl) List(ctx context.Context, params gDto.QueryParams, filter ListFilter) (bookings []model.Booking, err error) {
	ctx, scope := r.otel.NewScope(ctx, constant.OtelRepositoryScopeName, constant.OtelRepositoryScopeName+".booking.List")
	defer scope.End()
	defer scope.TraceIfError(err)

	where, args := buildFilter(filter)

	query := `SELECT * FROM bookings` + where +
		fmt.Sprintf(` ORDER BY start_at %s LIMIT %d OFFSET %d`, sortDir(params.SortDir), params.Limit, params.Offset())
	scope.SetAttribute(constant.OtelQueryAttributeKey, query)

	if err = r.db.Read.SelectContext(ctx, &bookings, query, args...); err != nil {
		return nil, fmt.Errorf("failed to list bookings: %w", err)
	}

	return bookings, nil
}

func (r *repositoryImpl) Count(ctx context.Context, filter ListFilter) (count int, err error) {
	ctx, scope := r.otel.NewScope(ctx, constant.OtelRepositoryScopeName, constant.OtelRepositoryScopeName+".booking.Count")
	defer scope.End()
	defer scope.TraceIfError(err)

	where, args := buildFilter(filter)

	if err = r.db.Read.GetContext(ctx, &count, `SELECT COUNT(*) FROM bookings`+where, args...); err != nil {
		return 0, fmt.Errorf("failed to count bookings: %w", err)
	}

	return count, nil
}

const listForRoomSpanQuery = `
	SELECT * FROM bookings
	WHERE room_id = $1 AND start_at < $3 AND end_at > $2
	ORDER BY start_at ASC`

// ListForRoomSpanTx loads every booking of a room whose interval intersects
// [from, to), inside the caller's transaction.
func (r *repositoryImpl) ListForRoomSpanTx(ctx context.Context, tx *sqlx.Tx, roomID string, from, to time.Time) (bookings []model.Booking, err error) {
	ctx, scope := r.otel.NewScope(ctx, constant.OtelRepositoryScopeName, constant.OtelRepositoryScopeName+".booking.ListForRoomSpanTx")
	defer scope.End()
	defer scope.TraceIfError(err)

	if err = tx.SelectContext(ctx, &bookings, listForRoomSpanQuery, roomID, from, to); err != nil {
		return nil, fmt.Errorf("failed to list bookings for room span: %w", err)
	}

	return bookings, nil
}

func (r *repositoryImpl) ListForRoomSpan(ctx context.Context, roomID string, from, to time.Time) (bookings []model.Booking, err error) {
	ctx, scope := r.otel.NewScope(ctx, constant.OtelRepositoryScopeName, constant.OtelRepositoryScopeName+".booking.ListForRoomSpan")
	defer scope.End()
	defer scope.TraceIfError(err)

	if err = r.db.Read.SelectContext(ctx, &bookings, listForRoomSpanQuery, roomID, from, to); err != nil {
		return nil, fmt.Errorf("failed to list bookings for room span: %w", err)
	}

	return bookings, nil
}

func (r *repositoryImpl) UpdateStatusTx(ctx context.Context, tx *sqlx.Tx, id, status, modifiedBy string) (err error) {
	ctx, scope := r.otel.NewScope(ctx, constant.OtelRepositoryScopeName, constant.OtelRepositoryScopeName+".booking.UpdateStatusTx")
	defer scope.End()
	defer scope.TraceIfError(err)

	query := `UPDATE bookings SET status = $1, modified_at = NOW(), modified_by = $2 WHERE id = $3`

	if _, err = tx.ExecContext(ctx, query, status, modifiedBy, id); err != nil {
		return fmt.Errorf("failed to update booking status: %w", err)
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
	appendClause(model.FieldStatus, filter.Status)
	appendClause(model.FieldRequestedBy, filter.RequestedBy)

	return where, args
}

func sortDir(dir string) string {
	if dir == gDto.SortDirAsc {
		return gDto.SortDirAsc
	}

	return gDto.SortDirDesc
}
