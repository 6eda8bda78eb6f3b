package service

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"roomdesk/config"
	"roomdesk/infras/otel"
	"roomdesk/infras/webhook"
	"roomdesk/internal/domains/booking/export"
	"roomdesk/internal/domains/booking/model"
	"roomdesk/internal/domains/booking/model/dto"
	"roomdesk/internal/domains/booking/repository"
	roomModel "roomdesk/internal/domains/room/model"
	roomRepo "roomdesk/internal/domains/room/repository"
	"roomdesk/internal/events"
	"roomdesk/permissions"
	"roomdesk/shared"
	"roomdesk/shared/cache"
	"roomdesk/shared/constant"
	gDto "roomdesk/shared/dto"
	"roomdesk/shared/failure"
	"roomdesk/shared/timezone"
)

const (
	cacheGetBooking    = "booking:get"
	cacheGetAllBooking = "booking:gets"
	cacheCountBooking  = "booking:count"
)

type Booking interface {
	Create(ctx context.Context, req dto.CreateBookingRequest) error
	GetAll(ctx context.Context, req gDto.QueryParams, filter gDto.FilterGroup, includeExpired bool) (dto.GetBookingsResponse, error)
	Count(ctx context.Context, req gDto.QueryParams, filter gDto.FilterGroup) (int, error)
	Get(ctx context.Context, id string) (dto.BookingResponse, error)
	Update(ctx context.Context, req dto.UpdateBookingRequest, id string) error
	Delete(ctx context.Context, id string) error
	Approve(ctx context.Context, id string) error
	Reject(ctx context.Context, req dto.RejectBookingRequest, id string) error
	Export(ctx context.Context, req dto.ExportBookingsRequest) (dto.ExportResult, error)
}

type serviceImpl struct {
	repo      repository.Booking
	roomRepo  roomRepo.Room
	cfg       *config.Config
	cache     cache.RedisCache
	otel      otel.Otel
	notifier  webhook.Notifier
	publisher events.Publisher
}

func New(
	repo repository.Booking,
	roomRepo roomRepo.Room,
	cfg *config.Config,
	cache cache.RedisCache,
	otel otel.Otel,
	notifier webhook.Notifier,
	publisher events.Publisher,
) Booking {
	return &serviceImpl{
		repo:      repo,
		roomRepo:  roomRepo,
		cfg:       cfg,
		cache:     cache,
		otel:      otel,
		notifier:  notifier,
		publisher: publisher,
	}
}

func (s *serviceImpl) Create(ctx context.Context, req dto.CreateBookingRequest) (err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".Create")
	defer scope.End()
	defer scope.TraceIfError(err)

	user, _ := ctx.Value(constant.ContextKeyUserID).(string)
	if user == constant.Empty {
		return failure.Unauthorized("authentication required") // nolint:wrapcheck
	}

	booking, err := req.ToModel(user)
	if err != nil {
		log.Error().Err(err).Msg("failed to parse booking request")

		return failure.BadRequestFromString(fmt.Sprintf("invalid date/time format: %v", err)) // nolint:wrapcheck
	}

	if !booking.EndAt().After(booking.StartAt()) {
		return failure.BadRequestFromString("end time must be after start time") // nolint:wrapcheck
	}

	room, err := s.validateRoom(ctx, req.RoomID, req.PartySize)
	if err != nil {
		return err
	}

	overlap, err := s.repo.HasOverlap(ctx, req.RoomID, booking.StartAt(), booking.EndAt(), constant.Empty)
	if err != nil {
		log.Error().Err(err).Msg("failed to check booking overlap")

		return fmt.Errorf("failed to check booking overlap: %w", err)
	}

	if overlap {
		return failure.Conflict("room already taken for the requested time") // nolint:wrapcheck
	}

	if err = s.repo.Insert(ctx, booking); err != nil {
		log.Error().Err(err).Msg("failed to create booking")

		return fmt.Errorf("failed to create booking: %w", err)
	}

	booking.RoomName = room.Name

	go func() {
		c := context.WithoutCancel(ctx)

		shared.InvalidateCaches(c, s.cache, cacheGetAllBooking)
		shared.InvalidateCaches(c, s.cache, cacheCountBooking)

		s.notify(c, webhook.EventBookingCreate, booking, constant.Empty)
		s.publish(c, events.TypeBookingCreated, booking, constant.Empty)
	}()

	return nil
}

func (s *serviceImpl) GetAll(ctx context.Context, req gDto.QueryParams, filter gDto.FilterGroup, includeExpired bool) (res dto.GetBookingsResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".GetAll")
	defer scope.End()
	defer scope.TraceIfError(err)

	if !includeExpired {
		filter = withActiveOnly(filter)
	}

	cacheKey := shared.BuildCacheKeyWithQuery(cacheGetAllBooking, req, filter)

	err = s.cache.Get(ctx, cacheKey, &res)
	if err == nil {
		log.Info().Str("cacheKey", cacheKey).Msg("cache hit for bookings")

		return res, nil
	}

	total, err := s.Count(ctx, req, filter)
	if err != nil {
		log.Error().Err(err).Msg("failed to count bookings")

		return res, fmt.Errorf("failed to count bookings: %w", err)
	}

	models, err := s.repo.GetAll(ctx, req, filter)
	if err != nil {
		log.Error().Err(err).Msg("failed to get bookings")

		return res, fmt.Errorf("failed to get bookings: %w", err)
	}

	res.FromModels(models, total, req.Limit)

	go func() {
		c := context.WithoutCancel(ctx)

		if err := s.cache.Save(c, cacheKey, res, s.cfg.Cache.TTL); err != nil {
			log.Error().Err(err).Msg("failed to save bookings to cache")
		}
	}()

	return res, nil
}

func (s *serviceImpl) Count(ctx context.Context, req gDto.QueryParams, filter gDto.FilterGroup) (res int, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".Count")
	defer scope.End()
	defer scope.TraceIfError(err)

	cacheKey := shared.BuildCacheKeyWithQuery(cacheCountBooking, req, filter)

	err = s.cache.Get(ctx, cacheKey, &res)
	if err == nil {
		log.Info().Str("cacheKey", cacheKey).Msg("cache hit for booking count")

		return res, nil
	}

	res, err = s.repo.Count(ctx, filter)
	if err != nil {
		log.Error().Err(err).Msg("failed to count bookings")

		return res, fmt.Errorf("failed to count bookings: %w", err)
	}

	go func() {
		c := context.WithoutCancel(ctx)

		if err := s.cache.Save(c, cacheKey, res, s.cfg.Cache.TTL); err != nil {
			log.Error().Err(err).Msg("failed to save booking count to cache")
		}
	}()

	return res, nil
}

func (s *serviceImpl) Get(ctx context.Context, id string) (res dto.BookingResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".Get")
	defer scope.End()
	defer scope.TraceIfError(err)

	cacheKey := shared.BuildCacheKey(cacheGetBooking, id)

	err = s.cache.Get(ctx, cacheKey, &res)
	if err == nil {
		log.Info().Str("cacheKey", cacheKey).Msg("cache hit for booking")

		return res, nil
	}

	booking, err := s.repo.Get(ctx, shared.FilterByID(id, model.FieldID, model.TableName))
	if err != nil {
		log.Error().Err(err).Msg("failed to get booking")

		return res, fmt.Errorf("failed to get booking: %w", err)
	}

	if booking.ID == constant.Empty {
		return res, failure.NotFound("booking not found") // nolint:wrapcheck
	}

	res.FromModel(booking)

	go func() {
		c := context.WithoutCancel(ctx)

		if err := s.cache.Save(c, cacheKey, res, s.cfg.Cache.TTL); err != nil {
			log.Error().Err(err).Msg("failed to save booking to cache")
		}
	}()

	return res, nil
}

func (s *serviceImpl) Update(ctx context.Context, req dto.UpdateBookingRequest, id string) (err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".Update")
	defer scope.End()
	defer scope.TraceIfError(err)

	if req == (dto.UpdateBookingRequest{}) {
		return failure.BadRequestFromString("update request cannot be empty") // nolint:wrapcheck
	}

	user, _ := ctx.Value(constant.ContextKeyUserID).(string)
	role, _ := ctx.Value(constant.ContextKeyUserRole).(string)
	filter := shared.FilterByID(id, model.FieldID, model.TableName)

	current, err := s.repo.Get(ctx, filter)
	if err != nil {
		log.Error().Err(err).Msg("failed to get booking")

		return fmt.Errorf("failed to get booking: %w", err)
	}

	if current.ID == constant.Empty {
		return failure.NotFound("booking not found") // nolint:wrapcheck
	}

	if !permissions.CanModifyRecord(role, user, current.CreatedBy) {
		return failure.ResourceRestrictedError // nolint:wrapcheck
	}

	startAt, endAt, err := resolveInterval(current, req)
	if err != nil {
		log.Error().Err(err).Msg("failed to parse booking request")

		return failure.BadRequestFromString(fmt.Sprintf("invalid date/time format: %v", err)) // nolint:wrapcheck
	}

	if !endAt.After(startAt) {
		return failure.BadRequestFromString("end time must be after start time") // nolint:wrapcheck
	}

	roomID := current.RoomID
	if req.RoomID != constant.Empty {
		roomID = req.RoomID
	}

	partySize := current.PartySize
	if req.PartySize > 0 {
		partySize = req.PartySize
	}

	if _, err = s.validateRoom(ctx, roomID, partySize); err != nil {
		return err
	}

	overlap, err := s.repo.HasOverlap(ctx, roomID, startAt, endAt, id)
	if err != nil {
		log.Error().Err(err).Msg("failed to check booking overlap")

		return fmt.Errorf("failed to check booking overlap: %w", err)
	}

	if overlap {
		return failure.Conflict("room already taken for the requested time") // nolint:wrapcheck
	}

	updatedFields := shared.TransformFields(req, user)

	if req.StartAt != constant.Empty {
		updatedFields[model.FieldStartDate], updatedFields[model.FieldStartTime] = dto.SplitInstant(startAt)
	}

	if req.EndAt != constant.Empty {
		updatedFields[model.FieldEndDate], updatedFields[model.FieldEndTime] = dto.SplitInstant(endAt)
	}

	if err = s.repo.Update(ctx, updatedFields, filter); err != nil {
		log.Error().Err(err).Msg("failed to update booking")

		return fmt.Errorf("failed to update booking: %w", err)
	}

	go func() {
		c := context.WithoutCancel(ctx)

		s.invalidate(c, id)

		updated, err := s.repo.Get(c, shared.FilterByID(id, model.FieldID, model.TableName))
		if err != nil || updated.ID == constant.Empty {
			updated = current
		}

		s.notify(c, webhook.EventBookingEdit, updated, constant.Empty)
		s.publish(c, events.TypeBookingUpdated, updated, constant.Empty)
	}()

	return nil
}

func (s *serviceImpl) Delete(ctx context.Context, id string) (err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".Delete")
	defer scope.End()
	defer scope.TraceIfError(err)

	user, _ := ctx.Value(constant.ContextKeyUserID).(string)
	role, _ := ctx.Value(constant.ContextKeyUserRole).(string)
	filter := shared.FilterByID(id, model.FieldID, model.TableName)

	current, err := s.repo.Get(ctx, filter)
	if err != nil {
		log.Error().Err(err).Msg("failed to get booking")

		return fmt.Errorf("failed to get booking: %w", err)
	}

	if current.ID == constant.Empty {
		return failure.NotFound("booking not found") // nolint:wrapcheck
	}

	if !permissions.CanModifyRecord(role, user, current.CreatedBy) {
		return failure.ResourceRestrictedError // nolint:wrapcheck
	}

	// Notify before the row disappears; the store stays authoritative either way.
	s.notify(ctx, webhook.EventBookingDelete, current, constant.Empty)

	if err = s.repo.Delete(ctx, filter); err != nil {
		log.Error().Err(err).Msg("failed to delete booking")

		return fmt.Errorf("failed to delete booking: %w", err)
	}

	go func() {
		c := context.WithoutCancel(ctx)

		s.invalidate(c, id)
		s.publish(c, events.TypeBookingDeleted, current, constant.Empty)
	}()

	return nil
}

func (s *serviceImpl) Approve(ctx context.Context, id string) (err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".Approve")
	defer scope.End()
	defer scope.TraceIfError(err)

	user, _ := ctx.Value(constant.ContextKeyUserID).(string)
	filter := shared.FilterByID(id, model.FieldID, model.TableName)

	current, err := s.repo.Get(ctx, filter)
	if err != nil {
		log.Error().Err(err).Msg("failed to get booking")

		return fmt.Errorf("failed to get booking: %w", err)
	}

	if current.ID == constant.Empty {
		return failure.NotFound("booking not found") // nolint:wrapcheck
	}

	if current.Approved {
		return failure.Conflict("booking is already approved") // nolint:wrapcheck
	}

	updatedFields := map[string]any{
		model.FieldApproved:      true,
		constant.FieldModifiedAt: timezone.Now(),
		constant.FieldModifiedBy: user,
	}

	if err = s.repo.Update(ctx, updatedFields, filter); err != nil {
		log.Error().Err(err).Msg("failed to approve booking")

		return fmt.Errorf("failed to approve booking: %w", err)
	}

	current.Approved = true

	go func() {
		c := context.WithoutCancel(ctx)

		s.invalidate(c, id)
		s.notify(c, webhook.EventBookingApprove, current, constant.Empty)
		s.publish(c, events.TypeBookingApproved, current, constant.Empty)
	}()

	return nil
}

func (s *serviceImpl) Reject(ctx context.Context, req dto.RejectBookingRequest, id string) (err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".Reject")
	defer scope.End()
	defer scope.TraceIfError(err)

	filter := shared.FilterByID(id, model.FieldID, model.TableName)

	current, err := s.repo.Get(ctx, filter)
	if err != nil {
		log.Error().Err(err).Msg("failed to get booking")

		return fmt.Errorf("failed to get booking: %w", err)
	}

	if current.ID == constant.Empty {
		return failure.NotFound("booking not found") // nolint:wrapcheck
	}

	if current.Approved {
		return failure.Conflict("cannot reject an approved booking") // nolint:wrapcheck
	}

	if err = s.repo.Delete(ctx, filter); err != nil {
		log.Error().Err(err).Msg("failed to reject booking")

		return fmt.Errorf("failed to reject booking: %w", err)
	}

	go func() {
		c := context.WithoutCancel(ctx)

		s.invalidate(c, id)
		s.notify(c, webhook.EventBookingReject, current, req.Reason)
		s.publish(c, events.TypeBookingRejected, current, req.Reason)
	}()

	return nil
}

func (s *serviceImpl) Export(ctx context.Context, req dto.ExportBookingsRequest) (res dto.ExportResult, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".Export")
	defer scope.End()
	defer scope.TraceIfError(err)

	from, err := time.Parse(constant.DateOnlyFormat, req.StartDate)
	if err != nil {
		return res, failure.BadRequestFromString("invalid start_date, expected YYYY-MM-DD") // nolint:wrapcheck
	}

	to, err := time.Parse(constant.DateOnlyFormat, req.EndDate)
	if err != nil {
		return res, failure.BadRequestFromString("invalid end_date, expected YYYY-MM-DD") // nolint:wrapcheck
	}

	if to.Before(from) {
		return res, failure.BadRequestFromString("end_date must not be before start_date") // nolint:wrapcheck
	}

	filter := gDto.FilterGroup{
		Operator: gDto.FilterGroupOperatorAnd,
		Filters: []any{
			gDto.Filter{
				ArgName:  "export_from",
				Field:    model.FieldStartDate,
				Value:    from,
				Operator: gDto.FilterOperatorGreaterEq,
				Table:    model.TableName,
			},
			gDto.Filter{
				ArgName:  "export_to",
				Field:    model.FieldStartDate,
				Value:    to,
				Operator: gDto.FilterOperatorLessEq,
				Table:    model.TableName,
			},
		},
	}

	params := gDto.QueryParams{
		SortBy:  "bookings.start_date, bookings.start_time",
		SortDir: "ASC",
	}

	models, err := s.repo.GetAll(ctx, params, filter)
	if err != nil {
		log.Error().Err(err).Msg("failed to get bookings for export")

		return res, fmt.Errorf("failed to get bookings for export: %w", err)
	}

	if len(models) == 0 {
		return res, failure.NotFound("no bookings in the requested range") // nolint:wrapcheck
	}

	baseName := fmt.Sprintf("bookings_%s_%s", req.StartDate, req.EndDate)

	switch req.Format {
	case "xlsx":
		content, err := export.XLSX(models)
		if err != nil {
			log.Error().Err(err).Msg("failed to render bookings spreadsheet")

			return res, fmt.Errorf("failed to render bookings spreadsheet: %w", err)
		}

		return dto.ExportResult{
			FileName:    baseName + ".xlsx",
			ContentType: constant.ContentTypeXLSX,
			Content:     content,
		}, nil
	default:
		return dto.ExportResult{
			FileName:    baseName + ".csv",
			ContentType: constant.ContentTypeCSV,
			Content:     export.CSV(models),
		}, nil
	}
}

func (s *serviceImpl) validateRoom(ctx context.Context, roomID string, partySize int) (roomModel.Room, error) {
	room, err := s.roomRepo.Get(ctx, shared.FilterByID(roomID, roomModel.FieldID, roomModel.TableName))
	if err != nil {
		log.Error().Err(err).Msg("failed to get room")

		return room, fmt.Errorf("failed to get room: %w", err)
	}

	if room.ID == constant.Empty {
		return room, failure.BadRequestFromString("room does not exist") // nolint:wrapcheck
	}

	if !room.Active {
		return room, failure.BadRequestFromString("room is not available for booking") // nolint:wrapcheck
	}

	if partySize > room.Capacity {
		return room, failure.BadRequestFromString(fmt.Sprintf("party size %d exceeds room capacity %d", partySize, room.Capacity)) // nolint:wrapcheck
	}

	return room, nil
}

func (s *serviceImpl) invalidate(ctx context.Context, id string) {
	if err := s.cache.Delete(ctx, shared.BuildCacheKey(cacheGetBooking, id)); err != nil {
		log.Error().Err(err).Msg("failed to delete booking from cache")
	}

	shared.InvalidateCaches(ctx, s.cache, cacheGetAllBooking)
	shared.InvalidateCaches(ctx, s.cache, cacheCountBooking)
}

func (s *serviceImpl) notify(ctx context.Context, event webhook.Event, booking model.Booking, reason string) {
	var res dto.BookingResponse
	res.FromModel(booking)

	payload := struct {
		dto.BookingResponse
		Reason string `json:"reason,omitempty"`
	}{BookingResponse: res, Reason: reason}

	if err := s.notifier.Notify(ctx, event, payload); err != nil {
		log.Error().Err(err).
			Str("bookingID", booking.ID).
			Str("event", string(event)).
			Msg("booking stored but webhook notification failed")
	}
}

func (s *serviceImpl) publish(ctx context.Context, eventType events.Type, booking model.Booking, reason string) {
	_ = s.publisher.Publish(ctx, events.BookingEvent{
		Type:      eventType,
		BookingID: booking.ID,
		RoomID:    booking.RoomID,
		OwnerID:   booking.CreatedBy,
		Reason:    reason,
	})
}

// resolveInterval yields the interval the update would leave in place, taking
// unchanged halves from the stored record.
func resolveInterval(current model.Booking, req dto.UpdateBookingRequest) (startAt, endAt time.Time, err error) {
	startAt = current.StartAt()
	endAt = current.EndAt()

	if req.StartAt != constant.Empty {
		startAt, err = time.Parse(constant.DateTimeFormat, req.StartAt)
		if err != nil {
			return startAt, endAt, err
		}
	}

	if req.EndAt != constant.Empty {
		endAt, err = time.Parse(constant.DateTimeFormat, req.EndAt)
		if err != nil {
			return startAt, endAt, err
		}
	}

	return startAt, endAt, nil
}

// withActiveOnly appends the derived expiry predicate. Expiry is never stored;
// a booking drops out of the default listing once its end instant passes.
func withActiveOnly(filter gDto.FilterGroup) gDto.FilterGroup {
	if filter.Operator == constant.Empty {
		filter.Operator = gDto.FilterGroupOperatorAnd
	}

	filter.Filters = append(filter.Filters, gDto.Filter{
		ArgName:  "active_after",
		Field:    model.ExprEndTimestamp,
		Value:    timezone.Now().Truncate(time.Minute),
		Operator: gDto.FilterOperatorGreater,
	})

	return filter
}
