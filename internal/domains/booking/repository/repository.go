package repository

//go:generate go run go.uber.org/mock/mockgen -source=./repository.go -destination=../mocks/repository_mock.go -package=mocks

import (
	"context"
	"fmt"
	"time"

	"roomdesk/infras/otel"
	"roomdesk/infras/postgres"
	"roomdesk/internal/domains/booking/model"
	"roomdesk/shared/constant"
	gDto "roomdesk/shared/dto"
	"roomdesk/shared/logger"
	gRepo "roomdesk/shared/repository"
)

type Booking interface {
	Insert(ctx context.Context, model model.Booking) error
	Get(ctx context.Context, filter gDto.FilterGroup, columns ...string) (model.Booking, error)
	GetAll(ctx context.Context, params gDto.QueryParams, filter gDto.FilterGroup, columns ...string) ([]model.Booking, error)
	Exist(ctx context.Context, filter gDto.FilterGroup) (bool, error)
	Count(ctx context.Context, filter gDto.FilterGroup) (int, error)
	Update(ctx context.Context, req map[string]any, filter gDto.FilterGroup) error
	Delete(ctx context.Context, filter gDto.FilterGroup) error
	HasOverlap(ctx context.Context, roomID string, startAt, endAt time.Time, excludeID string) (bool, error)
}

type repositoryImpl struct {
	gRepo.Repository[model.Booking]
	db   *postgres.Connection
	otel otel.Otel
}

func New(db *postgres.Connection, otel otel.Otel) Booking {
	return &repositoryImpl{
		Repository: gRepo.NewRepository[model.Booking](model.EntityName, model.TableName, model.FieldID, db, otel),
		db:         db,
		otel:       otel,
	}
}

// HasOverlap reports whether the room already holds a booking whose interval
// intersects [startAt, endAt). Intervals that merely touch at an endpoint do
// not overlap. excludeID skips the record being edited; pass the empty string
// on create.
func (repo *repositoryImpl) HasOverlap(ctx context.Context, roomID string, startAt, endAt time.Time, excludeID string) (bool, error) {
	ctx, scope := repo.otel.NewScope(ctx, constant.OtelRepositoryScopeName, constant.OtelRepositoryScopeName+".booking.HasOverlap")
	defer scope.End()

	query := `SELECT EXISTS(
		SELECT 1 FROM bookings
		WHERE room_id = :room_id
		  AND (start_date + start_time) < :end_at
		  AND (end_date + end_time) > :start_at`

	args := map[string]any{
		"room_id":  roomID,
		"start_at": startAt,
		"end_at":   endAt,
	}

	// id is a uuid column; binding an empty string would fail at parse, so
	// the exclusion predicate only exists when a record is being edited.
	if excludeID != constant.Empty {
		query += `
		  AND id != :exclude_id`
		args["exclude_id"] = excludeID
	}

	query += `
	)`
	scope.SetAttribute(constant.OtelQueryAttributeKey, query)

	exist := false

	prepare, err := repo.db.Read.PrepareNamedContext(ctx, query)
	if err != nil {
		logger.ErrorWithStack(err)
		scope.TraceError(err)

		return false, fmt.Errorf("failed to check booking overlap: %w", err)
	}
	defer prepare.Close()

	err = prepare.GetContext(ctx, &exist, args)
	if err != nil {
		logger.ErrorWithStack(err)
		scope.TraceError(err)

		return false, fmt.Errorf("failed to check booking overlap: %w", err)
	}

	return exist, nil
}
