package service_test

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"go.uber.org/mock/gomock"

	"roomdesk/config"
	"roomdesk/infras/otel/mocks"
	webhookMocks "roomdesk/infras/webhook/mocks"
	bookingMocks "roomdesk/internal/domains/booking/mocks"
	"roomdesk/internal/domains/booking/model"
	"roomdesk/internal/domains/booking/model/dto"
	"roomdesk/internal/domains/booking/service"
	roomMocks "roomdesk/internal/domains/room/mocks"
	roomModel "roomdesk/internal/domains/room/model"
	eventMocks "roomdesk/internal/events/mocks"
	cacheMocks "roomdesk/shared/cache/mocks"
	"roomdesk/shared/constant"
	gDto "roomdesk/shared/dto"
	"roomdesk/shared/failure"
	gModel "roomdesk/shared/model"
	"roomdesk/shared/timezone"
)

type bookingMockSet struct {
	repo      *bookingMocks.MockBooking
	roomRepo  *roomMocks.MockRoom
	cache     *cacheMocks.MockRedisCache
	notifier  *webhookMocks.MockNotifier
	publisher *eventMocks.MockPublisher
}

func newBookingService(ctrl *gomock.Controller) (service.Booking, bookingMockSet) {
	set := bookingMockSet{
		repo:      bookingMocks.NewMockBooking(ctrl),
		roomRepo:  roomMocks.NewMockRoom(ctrl),
		cache:     cacheMocks.NewMockRedisCache(ctrl),
		notifier:  webhookMocks.NewMockNotifier(ctrl),
		publisher: eventMocks.NewMockPublisher(ctrl),
	}

	cfg := &config.Config{}
	cfg.Cache.TTL = 3600

	svc := service.New(set.repo, set.roomRepo, cfg, set.cache, mocks.NewOtel(), set.notifier, set.publisher)

	return svc, set
}

// allowAsyncEffects covers the cache invalidation, webhook and event calls the
// service fires from goroutines after a successful mutation.
func allowAsyncEffects(set bookingMockSet) {
	set.cache.EXPECT().Clear(gomock.Any(), gomock.Any()).Return(nil).AnyTimes()
	set.cache.EXPECT().Delete(gomock.Any(), gomock.Any()).Return(nil).AnyTimes()
	set.cache.EXPECT().Save(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Return(nil).AnyTimes()
	set.notifier.EXPECT().Notify(gomock.Any(), gomock.Any(), gomock.Any()).Return(nil).AnyTimes()
	set.publisher.EXPECT().Publish(gomock.Any(), gomock.Any()).Return(nil).AnyTimes()
}

func authedContext(userID, role string) context.Context {
	ctx := context.WithValue(context.Background(), constant.ContextKeyUserID, userID)

	return context.WithValue(ctx, constant.ContextKeyUserRole, role)
}

func storedBooking(owner string, approved bool) model.Booking {
	start, _ := time.Parse(constant.DateTimeFormat, "2026-03-10T09:00")
	end, _ := time.Parse(constant.DateTimeFormat, "2026-03-10T11:00")

	startDate, startTime := dto.SplitInstant(start)
	endDate, endTime := dto.SplitInstant(end)

	return model.Booking{
		ID:               "booking-id-1",
		Title:            "Sprint Planning",
		RequesterName:    "Jane Roe",
		Contact:          "08123456789",
		OrganizationUnit: "Engineering",
		RoomID:           "room-id-1",
		PartySize:        8,
		StartDate:        startDate,
		StartTime:        startTime,
		EndDate:          endDate,
		EndTime:          endTime,
		Approved:         approved,
		RoomName:         "Large Meeting Room",
		Metadata: gModel.Metadata{
			CreatedAt:  timezone.Now(),
			ModifiedAt: timezone.Now(),
			CreatedBy:  owner,
			ModifiedBy: owner,
		},
	}
}

func activeRoom() roomModel.Room {
	return roomModel.Room{
		ID:       "room-id-1",
		Name:     "Large Meeting Room",
		Location: "Head Office",
		Capacity: 50,
		Active:   true,
	}
}

func TestBookingService_Create(t *testing.T) {
	validReq := dto.CreateBookingRequest{
		Title:            "Sprint Planning",
		RequesterName:    "Jane Roe",
		Contact:          "08123456789",
		OrganizationUnit: "Engineering",
		RoomID:           "d9428888-122b-11e1-b85c-61cd3cbb3210",
		PartySize:        8,
		StartAt:          "2026-03-10T09:00",
		EndAt:            "2026-03-10T11:00",
	}

	tests := []struct {
		name      string
		ctx       context.Context
		req       dto.CreateBookingRequest
		setupMock func(set bookingMockSet)
		wantErr   bool
		wantCode  int
	}{
		{
			name: "successful creation",
			ctx:  authedContext("user-id-1", constant.RoleUser),
			req:  validReq,
			setupMock: func(set bookingMockSet) {
				set.roomRepo.EXPECT().
					Get(gomock.Any(), gomock.Any()).
					Return(activeRoom(), nil)

				set.repo.EXPECT().
					HasOverlap(gomock.Any(), validReq.RoomID, gomock.Any(), gomock.Any(), "").
					Return(false, nil)

				set.repo.EXPECT().
					Insert(gomock.Any(), gomock.Any()).
					Return(nil)
			},
			wantErr: false,
		},
		{
			name:      "unauthenticated request never reaches the store",
			ctx:       context.Background(),
			req:       validReq,
			setupMock: func(set bookingMockSet) {},
			wantErr:   true,
			wantCode:  http.StatusUnauthorized,
		},
		{
			name: "end before start rejected locally",
			ctx:  authedContext("user-id-1", constant.RoleUser),
			req: func() dto.CreateBookingRequest {
				req := validReq
				req.StartAt = "2026-03-10T11:00"
				req.EndAt = "2026-03-10T09:00"

				return req
			}(),
			setupMock: func(set bookingMockSet) {},
			wantErr:   true,
			wantCode:  http.StatusBadRequest,
		},
		{
			name: "end equal to start rejected locally",
			ctx:  authedContext("user-id-1", constant.RoleUser),
			req: func() dto.CreateBookingRequest {
				req := validReq
				req.EndAt = req.StartAt

				return req
			}(),
			setupMock: func(set bookingMockSet) {},
			wantErr:   true,
			wantCode:  http.StatusBadRequest,
		},
		{
			name: "malformed datetime rejected locally",
			ctx:  authedContext("user-id-1", constant.RoleUser),
			req: func() dto.CreateBookingRequest {
				req := validReq
				req.StartAt = "10-03-2026 09:00"

				return req
			}(),
			setupMock: func(set bookingMockSet) {},
			wantErr:   true,
			wantCode:  http.StatusBadRequest,
		},
		{
			name: "unknown room",
			ctx:  authedContext("user-id-1", constant.RoleUser),
			req:  validReq,
			setupMock: func(set bookingMockSet) {
				set.roomRepo.EXPECT().
					Get(gomock.Any(), gomock.Any()).
					Return(roomModel.Room{}, nil)
			},
			wantErr:  true,
			wantCode: http.StatusBadRequest,
		},
		{
			name: "inactive room",
			ctx:  authedContext("user-id-1", constant.RoleUser),
			req:  validReq,
			setupMock: func(set bookingMockSet) {
				room := activeRoom()
				room.Active = false

				set.roomRepo.EXPECT().
					Get(gomock.Any(), gomock.Any()).
					Return(room, nil)
			},
			wantErr:  true,
			wantCode: http.StatusBadRequest,
		},
		{
			name: "party size over capacity",
			ctx:  authedContext("user-id-1", constant.RoleUser),
			req: func() dto.CreateBookingRequest {
				req := validReq
				req.PartySize = 80

				return req
			}(),
			setupMock: func(set bookingMockSet) {
				set.roomRepo.EXPECT().
					Get(gomock.Any(), gomock.Any()).
					Return(activeRoom(), nil)
			},
			wantErr:  true,
			wantCode: http.StatusBadRequest,
		},
		{
			name: "overlapping booking is a conflict, nothing written",
			ctx:  authedContext("user-id-1", constant.RoleUser),
			req:  validReq,
			setupMock: func(set bookingMockSet) {
				set.roomRepo.EXPECT().
					Get(gomock.Any(), gomock.Any()).
					Return(activeRoom(), nil)

				set.repo.EXPECT().
					HasOverlap(gomock.Any(), validReq.RoomID, gomock.Any(), gomock.Any(), "").
					Return(true, nil)
			},
			wantErr:  true,
			wantCode: http.StatusConflict,
		},
		{
			name: "repository error",
			ctx:  authedContext("user-id-1", constant.RoleUser),
			req:  validReq,
			setupMock: func(set bookingMockSet) {
				set.roomRepo.EXPECT().
					Get(gomock.Any(), gomock.Any()).
					Return(activeRoom(), nil)

				set.repo.EXPECT().
					HasOverlap(gomock.Any(), validReq.RoomID, gomock.Any(), gomock.Any(), "").
					Return(false, nil)

				set.repo.EXPECT().
					Insert(gomock.Any(), gomock.Any()).
					Return(errors.New("database error"))
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			svc, set := newBookingService(ctrl)
			allowAsyncEffects(set)
			tt.setupMock(set)

			err := svc.Create(tt.ctx, tt.req)

			if tt.wantErr {
				assert.Error(t, err)

				if tt.wantCode != 0 {
					assert.Equal(t, tt.wantCode, failure.GetCode(err))
				}
			} else {
				assert.NoError(t, err)
			}

			time.Sleep(10 * time.Millisecond)
		})
	}
}

func TestBookingService_Update(t *testing.T) {
	req := dto.UpdateBookingRequest{Title: "Retro"}

	tests := []struct {
		name      string
		ctx       context.Context
		req       dto.UpdateBookingRequest
		setupMock func(set bookingMockSet)
		wantErr   bool
		wantCode  int
	}{
		{
			name: "owner may update",
			ctx:  authedContext("user-id-1", constant.RoleUser),
			req:  req,
			setupMock: func(set bookingMockSet) {
				set.repo.EXPECT().
					Get(gomock.Any(), gomock.Any()).
					Return(storedBooking("user-id-1", false), nil).
					AnyTimes()

				set.roomRepo.EXPECT().
					Get(gomock.Any(), gomock.Any()).
					Return(activeRoom(), nil)

				set.repo.EXPECT().
					HasOverlap(gomock.Any(), "room-id-1", gomock.Any(), gomock.Any(), "booking-id-1").
					Return(false, nil)

				set.repo.EXPECT().
					Update(gomock.Any(), gomock.Any(), gomock.Any()).
					Return(nil)
			},
			wantErr: false,
		},
		{
			name: "admin may update another owner's booking",
			ctx:  authedContext("admin-id", constant.RoleAdmin),
			req:  req,
			setupMock: func(set bookingMockSet) {
				set.repo.EXPECT().
					Get(gomock.Any(), gomock.Any()).
					Return(storedBooking("user-id-1", false), nil).
					AnyTimes()

				set.roomRepo.EXPECT().
					Get(gomock.Any(), gomock.Any()).
					Return(activeRoom(), nil)

				set.repo.EXPECT().
					HasOverlap(gomock.Any(), "room-id-1", gomock.Any(), gomock.Any(), "booking-id-1").
					Return(false, nil)

				set.repo.EXPECT().
					Update(gomock.Any(), gomock.Any(), gomock.Any()).
					Return(nil)
			},
			wantErr: false,
		},
		{
			name: "non-owner non-admin rejected",
			ctx:  authedContext("someone-else", constant.RoleUser),
			req:  req,
			setupMock: func(set bookingMockSet) {
				set.repo.EXPECT().
					Get(gomock.Any(), gomock.Any()).
					Return(storedBooking("user-id-1", false), nil)
			},
			wantErr:  true,
			wantCode: http.StatusForbidden,
		},
		{
			name:      "empty update rejected",
			ctx:       authedContext("user-id-1", constant.RoleUser),
			req:       dto.UpdateBookingRequest{},
			setupMock: func(set bookingMockSet) {},
			wantErr:   true,
			wantCode:  http.StatusBadRequest,
		},
		{
			name: "booking not found",
			ctx:  authedContext("user-id-1", constant.RoleUser),
			req:  req,
			setupMock: func(set bookingMockSet) {
				set.repo.EXPECT().
					Get(gomock.Any(), gomock.Any()).
					Return(model.Booking{}, nil)
			},
			wantErr:  true,
			wantCode: http.StatusNotFound,
		},
		{
			name: "moved interval re-checked for conflicts",
			ctx:  authedContext("user-id-1", constant.RoleUser),
			req: dto.UpdateBookingRequest{
				StartAt: "2026-03-11T09:00",
				EndAt:   "2026-03-11T11:00",
			},
			setupMock: func(set bookingMockSet) {
				set.repo.EXPECT().
					Get(gomock.Any(), gomock.Any()).
					Return(storedBooking("user-id-1", false), nil)

				set.roomRepo.EXPECT().
					Get(gomock.Any(), gomock.Any()).
					Return(activeRoom(), nil)

				set.repo.EXPECT().
					HasOverlap(gomock.Any(), "room-id-1", gomock.Any(), gomock.Any(), "booking-id-1").
					Return(true, nil)
			},
			wantErr:  true,
			wantCode: http.StatusConflict,
		},
		{
			name: "moved interval must still end after it starts",
			ctx:  authedContext("user-id-1", constant.RoleUser),
			req: dto.UpdateBookingRequest{
				StartAt: "2026-03-11T11:00",
				EndAt:   "2026-03-11T09:00",
			},
			setupMock: func(set bookingMockSet) {
				set.repo.EXPECT().
					Get(gomock.Any(), gomock.Any()).
					Return(storedBooking("user-id-1", false), nil)
			},
			wantErr:  true,
			wantCode: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			svc, set := newBookingService(ctrl)
			allowAsyncEffects(set)
			tt.setupMock(set)

			err := svc.Update(tt.ctx, tt.req, "booking-id-1")

			if tt.wantErr {
				assert.Error(t, err)

				if tt.wantCode != 0 {
					assert.Equal(t, tt.wantCode, failure.GetCode(err))
				}
			} else {
				assert.NoError(t, err)
			}

			time.Sleep(10 * time.Millisecond)
		})
	}
}

func TestBookingService_Delete(t *testing.T) {
	tests := []struct {
		name      string
		ctx       context.Context
		setupMock func(set bookingMockSet)
		wantErr   bool
		wantCode  int
	}{
		{
			name: "owner may delete",
			ctx:  authedContext("user-id-1", constant.RoleUser),
			setupMock: func(set bookingMockSet) {
				set.repo.EXPECT().
					Get(gomock.Any(), gomock.Any()).
					Return(storedBooking("user-id-1", false), nil)

				set.repo.EXPECT().
					Delete(gomock.Any(), gomock.Any()).
					Return(nil)
			},
			wantErr: false,
		},
		{
			name: "non-owner non-admin rejected",
			ctx:  authedContext("someone-else", constant.RoleUser),
			setupMock: func(set bookingMockSet) {
				set.repo.EXPECT().
					Get(gomock.Any(), gomock.Any()).
					Return(storedBooking("user-id-1", false), nil)
			},
			wantErr:  true,
			wantCode: http.StatusForbidden,
		},
		{
			name: "booking not found",
			ctx:  authedContext("user-id-1", constant.RoleUser),
			setupMock: func(set bookingMockSet) {
				set.repo.EXPECT().
					Get(gomock.Any(), gomock.Any()).
					Return(model.Booking{}, nil)
			},
			wantErr:  true,
			wantCode: http.StatusNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			svc, set := newBookingService(ctrl)
			allowAsyncEffects(set)
			tt.setupMock(set)

			err := svc.Delete(tt.ctx, "booking-id-1")

			if tt.wantErr {
				assert.Error(t, err)

				if tt.wantCode != 0 {
					assert.Equal(t, tt.wantCode, failure.GetCode(err))
				}
			} else {
				assert.NoError(t, err)
			}

			time.Sleep(10 * time.Millisecond)
		})
	}
}

func TestBookingService_Approve(t *testing.T) {
	tests := []struct {
		name      string
		setupMock func(set bookingMockSet)
		wantErr   bool
		wantCode  int
	}{
		{
			name: "pending booking approved",
			setupMock: func(set bookingMockSet) {
				set.repo.EXPECT().
					Get(gomock.Any(), gomock.Any()).
					Return(storedBooking("user-id-1", false), nil)

				set.repo.EXPECT().
					Update(gomock.Any(), gomock.Any(), gomock.Any()).
					Return(nil)
			},
			wantErr: false,
		},
		{
			name: "approving twice is a conflict",
			setupMock: func(set bookingMockSet) {
				set.repo.EXPECT().
					Get(gomock.Any(), gomock.Any()).
					Return(storedBooking("user-id-1", true), nil)
			},
			wantErr:  true,
			wantCode: http.StatusConflict,
		},
		{
			name: "booking not found",
			setupMock: func(set bookingMockSet) {
				set.repo.EXPECT().
					Get(gomock.Any(), gomock.Any()).
					Return(model.Booking{}, nil)
			},
			wantErr:  true,
			wantCode: http.StatusNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			svc, set := newBookingService(ctrl)
			allowAsyncEffects(set)
			tt.setupMock(set)

			err := svc.Approve(authedContext("admin-id", constant.RoleAdmin), "booking-id-1")

			if tt.wantErr {
				assert.Error(t, err)

				if tt.wantCode != 0 {
					assert.Equal(t, tt.wantCode, failure.GetCode(err))
				}
			} else {
				assert.NoError(t, err)
			}

			time.Sleep(10 * time.Millisecond)
		})
	}
}

func TestBookingService_Reject(t *testing.T) {
	tests := []struct {
		name      string
		setupMock func(set bookingMockSet)
		wantErr   bool
		wantCode  int
	}{
		{
			name: "pending booking rejected and removed",
			setupMock: func(set bookingMockSet) {
				set.repo.EXPECT().
					Get(gomock.Any(), gomock.Any()).
					Return(storedBooking("user-id-1", false), nil)

				set.repo.EXPECT().
					Delete(gomock.Any(), gomock.Any()).
					Return(nil)
			},
			wantErr: false,
		},
		{
			name: "approved booking cannot be rejected",
			setupMock: func(set bookingMockSet) {
				set.repo.EXPECT().
					Get(gomock.Any(), gomock.Any()).
					Return(storedBooking("user-id-1", true), nil)
			},
			wantErr:  true,
			wantCode: http.StatusConflict,
		},
		{
			name: "booking not found",
			setupMock: func(set bookingMockSet) {
				set.repo.EXPECT().
					Get(gomock.Any(), gomock.Any()).
					Return(model.Booking{}, nil)
			},
			wantErr:  true,
			wantCode: http.StatusNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			svc, set := newBookingService(ctrl)
			allowAsyncEffects(set)
			tt.setupMock(set)

			req := dto.RejectBookingRequest{Reason: "double booked with a client visit"}
			err := svc.Reject(authedContext("admin-id", constant.RoleAdmin), req, "booking-id-1")

			if tt.wantErr {
				assert.Error(t, err)

				if tt.wantCode != 0 {
					assert.Equal(t, tt.wantCode, failure.GetCode(err))
				}
			} else {
				assert.NoError(t, err)
			}

			time.Sleep(10 * time.Millisecond)
		})
	}
}

func TestBookingService_Export(t *testing.T) {
	tests := []struct {
		name        string
		req         dto.ExportBookingsRequest
		setupMock   func(set bookingMockSet)
		wantErr     bool
		wantCode    int
		wantName    string
		wantContent string
	}{
		{
			name: "csv export",
			req: dto.ExportBookingsRequest{
				StartDate: "2026-03-01",
				EndDate:   "2026-03-31",
				Format:    "csv",
			},
			setupMock: func(set bookingMockSet) {
				set.repo.EXPECT().
					GetAll(gomock.Any(), gomock.Any(), gomock.Any()).
					Return([]model.Booking{storedBooking("user-id-1", true)}, nil)
			},
			wantErr:     false,
			wantName:    "bookings_2026-03-01_2026-03-31.csv",
			wantContent: constant.ContentTypeCSV,
		},
		{
			name: "xlsx export",
			req: dto.ExportBookingsRequest{
				StartDate: "2026-03-01",
				EndDate:   "2026-03-31",
				Format:    "xlsx",
			},
			setupMock: func(set bookingMockSet) {
				set.repo.EXPECT().
					GetAll(gomock.Any(), gomock.Any(), gomock.Any()).
					Return([]model.Booking{storedBooking("user-id-1", true)}, nil)
			},
			wantErr:     false,
			wantName:    "bookings_2026-03-01_2026-03-31.xlsx",
			wantContent: constant.ContentTypeXLSX,
		},
		{
			name: "empty range refused without a document",
			req: dto.ExportBookingsRequest{
				StartDate: "2026-03-01",
				EndDate:   "2026-03-31",
			},
			setupMock: func(set bookingMockSet) {
				set.repo.EXPECT().
					GetAll(gomock.Any(), gomock.Any(), gomock.Any()).
					Return([]model.Booking{}, nil)
			},
			wantErr:  true,
			wantCode: http.StatusNotFound,
		},
		{
			name: "malformed start date",
			req: dto.ExportBookingsRequest{
				StartDate: "01-03-2026",
				EndDate:   "2026-03-31",
			},
			setupMock: func(set bookingMockSet) {},
			wantErr:   true,
			wantCode:  http.StatusBadRequest,
		},
		{
			name: "end before start",
			req: dto.ExportBookingsRequest{
				StartDate: "2026-03-31",
				EndDate:   "2026-03-01",
			},
			setupMock: func(set bookingMockSet) {},
			wantErr:   true,
			wantCode:  http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			svc, set := newBookingService(ctrl)
			tt.setupMock(set)

			res, err := svc.Export(context.Background(), tt.req)

			if tt.wantErr {
				assert.Error(t, err)
				assert.Empty(t, res.Content)

				if tt.wantCode != 0 {
					assert.Equal(t, tt.wantCode, failure.GetCode(err))
				}

				return
			}

			assert.NoError(t, err)
			assert.Equal(t, tt.wantName, res.FileName)
			assert.Equal(t, tt.wantContent, res.ContentType)
			assert.NotEmpty(t, res.Content)
		})
	}
}

func TestBookingService_GetAll(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	svc, set := newBookingService(ctrl)

	set.cache.EXPECT().
		Get(gomock.Any(), gomock.Any(), gomock.Any()).
		Return(errors.New("cache miss")).
		AnyTimes()
	set.cache.EXPECT().
		Save(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
		Return(nil).
		AnyTimes()

	set.repo.EXPECT().
		Count(gomock.Any(), gomock.Any()).
		Return(1, nil)

	set.repo.EXPECT().
		GetAll(gomock.Any(), gomock.Any(), gomock.Any()).
		Return([]model.Booking{storedBooking("user-id-1", false)}, nil)

	params := gDto.QueryParams{Page: 1, Limit: 10}

	res, err := svc.GetAll(context.Background(), params, gDto.FilterGroup{}, false)

	assert.NoError(t, err)
	assert.Equal(t, 1, res.TotalData)
	assert.Len(t, res.Bookings, 1)
	assert.Equal(t, "Large Meeting Room", res.Bookings[0].RoomName)

	time.Sleep(10 * time.Millisecond)
}
