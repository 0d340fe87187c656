package repository

//go:generate go run go.uber.org/mock/mockgen -source=./repository.go -destination=../mocks/repository_mock.go -package=mocks

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"roomtime/infras/otel"
	"roomtime/infras/postgres"
	"roomtime/internal/domains/room/model"
	"roomtime/shared/constant"
	gDto "roomtime/shared/dto"

	"github.com/jmoiron/sqlx"
)

// ListFilter narrows List and Count queries. Zero fields are ignored.
type ListFilter struct {
	Status string
}

type Room interface {
	Insert(ctx context.Context, room model.Room) error
	GetByID(ctx context.Context, id string) (model.Room, error)
	GetByIDForUpdate(ctx context.Context, tx *sqlx.Tx, id string) (model.Room, error)
	List(ctx context.Context, params gDto.QueryParams, filter ListFilter) ([]model.Room, error)
	Count(ctx context.Context, filter ListFilter) (int, error)
	ResolveCodes(ctx context.Context, codes []string) (map[string]string, error)
	Update(ctx context.Context, fields map[string]any, id string) error
	Delete(ctx context.Context, id string) error
}

type repositoryImpl struct {
	db   *postgres.Connection
	otel otel.Otel
}

func New(db *postgres.Connection, otel otel.Otel) Room {
	return &repositoryImpl{
		db:   db,
		otel: otel,
	}
}

const insertRoomQuery = `
	INSERT INTO rooms (id, code, name, building, capacity, status, created_at, modified_at, created_by, modified_by)
	VALUES (:id, :code, :name, :building, :capacity, :status, :created_at, :modified_at, :created_by, :modified_by)`

func (r *repositoryImpl) Insert(ctx context.Context, room model.Room) (err error) {
	ctx, scope := r.otel.NewScope(ctx, constant.OtelRepositoryScopeName, constant.OtelRepositoryScopeName+".room.Insert")
	defer scope.End()
	defer scope.TraceIfError(err)

	if _, err = r.db.Write.NamedExecContext(ctx, insertRoomQuery, room); err != nil {
		return fmt.Errorf("failed to insert room: %w", err)
	}

	return nil
}

func (r *repositoryImpl) GetByID(ctx context.Context, id string) (room model.Room, err error) {
	ctx, scope := r.otel.NewScope(ctx, constant.OtelRepositoryScopeName, constant.OtelRepositoryScopeName+".room.GetByID")
	defer scope.End()
	defer scope.TraceIfError(err)

	err = r.db.Read.GetContext(ctx, &room, `SELECT * FROM rooms WHERE id = $1`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Room{}, nil
	}

	if err != nil {
		return model.Room{}, fmt.Errorf("failed to get room: %w", err)
	}

	return room, nil
}

// GetByIDForUpdate loads the room inside the given transaction and takes a row
// lock so concurrent booking writes on the same room serialize.
func (r *repositoryImpl) GetByIDForUpdate(ctx context.Context, tx *sqlx.Tx, id string) (room model.Room, err error) {
	ctx, scope := r.otel.NewScope(ctx, constant.OtelRepositoryScopeName, constant.OtelRepositoryScopeName+".room.GetByIDForUpdate")
	defer scope.End()
	defer scope.TraceIfError(err)

	err = tx.GetContext(ctx, &room, `SELECT * FROM rooms WHERE id = $1 FOR UPDATE`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Room{}, nil
	}

	if err != nil {
		return model.Room{}, fmt.Errorf("failed to lock room: %w", err)
	}

	return room, nil
}

func (r *repositoryImpl) List(ctx context.Context, params gDto.QueryParams, filter ListFilter) (rooms []model.Room, err error) {
	ctx, scope := r.otel.NewScope(ctx, constant.OtelRepositoryScopeName, constant.OtelRepositoryScopeName+".room.List")
	defer scope.End()
	defer scope.TraceIfError(err)

	query := `SELECT * FROM rooms`
	args := []any{}

	if filter.Status != "" {
		query += ` WHERE status = $1`
		args = append(args, filter.Status)
	}

	query += fmt.Sprintf(` ORDER BY code %s LIMIT %d OFFSET %d`, sortDir(params.SortDir), params.Limit, params.Offset())
	scope.SetAttribute(constant.OtelQueryAttributeKey, query)

	if err = r.db.Read.SelectContext(ctx, &rooms, query, args...); err != nil {
		return nil, fmt.Errorf("failed to list rooms: %w", err)
	}

	return rooms, nil
}

func (r *repositoryImpl) Count(ctx context.Context, filter ListFilter) (count int, err error) {
	ctx, scope := r.otel.NewScope(ctx, constant.OtelRepositoryScopeName, constant.OtelRepositoryScopeName+".room.Count")
	defer scope.End()
	defer scope.TraceIfError(err)

	query := `SELECT COUNT(*) FROM rooms`
	args := []any{}

	if filter.Status != "" {
		query += ` WHERE status = $1`
		args = append(args, filter.Status)
	}

	if err = r.db.Read.GetContext(ctx, &count, query, args...); err != nil {
		return 0, fmt.Errorf("failed to count rooms: %w", err)
	}

	return count, nil
}

// ResolveCodes maps room codes to room identifiers in one query. Codes with no
// matching room are absent from the result.
func (r *repositoryImpl) ResolveCodes(ctx context.Context, codes []string) (resolved map[string]string, err error) {
	ctx, scope := r.otel.NewScope(ctx, constant.OtelRepositoryScopeName, constant.OtelRepositoryScopeName+".room.ResolveCodes")
	defer scope.End()
	defer scope.TraceIfError(err)

	resolved = make(map[string]string, len(codes))
	if len(codes) == 0 {
		return resolved, nil
	}

	query, args, err := sqlx.In(`SELECT id, code FROM rooms WHERE code IN (?)`, codes)
	if err != nil {
		return nil, fmt.Errorf("failed to build room code query: %w", err)
	}

	rows := []struct {
		ID   string `db:"id"`
		Code string `db:"code"`
	}{}

	if err = r.db.Read.SelectContext(ctx, &rows, r.db.Read.Rebind(query), args...); err != nil {
		return nil, fmt.Errorf("failed to resolve room codes: %w", err)
	}

	for _, row := range rows {
		resolved[row.Code] = row.ID
	}

	return resolved, nil
}

func (r *repositoryImpl) Update(ctx context.Context, fields map[string]any, id string) (err error) {
	ctx, scope := r.otel.NewScope(ctx, constant.OtelRepositoryScopeName, constant.OtelRepositoryScopeName+".room.Update")
	defer scope.End()
	defer scope.TraceIfError(err)

	query := `UPDATE rooms SET `
	args := []any{}

	i := 1
	for field, value := range fields {
		if i > 1 {
			query += ", "
		}

		query += fmt.Sprintf("%s = $%d", field, i)
		args = append(args, value)
		i++
	}

	query += fmt.Sprintf(" WHERE id = $%d", i)
	args = append(args, id)

	if _, err = r.db.Write.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("failed to update room: %w", err)
	}

	return nil
}

func (r *repositoryImpl) Delete(ctx context.Context, id string) (err error) {
	ctx, scope := r.otel.NewScope(ctx, constant.OtelRepositoryScopeName, constant.OtelRepositoryScopeName+".room.Delete")
	defer scope.End()
	defer scope.TraceIfError(err)

	if _, err = r.db.Write.ExecContext(ctx, `DELETE FROM rooms WHERE id = $1`, id); err != nil {
		return fmt.Errorf("failed to delete room: %w", err)
	}

	return nil
}

func sortDir(dir string) string {
	if dir == gDto.SortDirDesc {
		return gDto.SortDirDesc
	}

	return gDto.SortDirAsc
}
