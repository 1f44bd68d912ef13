//go:build protogen

package grpcserver

import (
	"context"
	"time"

	schedulev1 "github.com/medsched/medsched/protos/gen/schedule/v1"
	"github.com/medsched/medsched/services/schedule-service/internal/model"
	"github.com/medsched/medsched/services/schedule-service/internal/storage"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

type server struct {
	schedulev1.UnimplementedScheduleServiceServer
	store *storage.Store
}

func Register(grpcServer *grpc.Server, store *storage.Store) {
	schedulev1.RegisterScheduleServiceServer(grpcServer, &server{store: store})
}

func (s *server) GetDayAvailability(ctx context.Context, req *schedulev1.DayAvailabilityRequest) (*schedulev1.DayAvailabilityResponse, error) {
	if req.GetProviderId() == "" || req.GetDate() == "" {
		return nil, status.Error(codes.InvalidArgument, "provider_id and date are required")
	}

	profile, err := s.store.GetOrCreateProfile(ctx, req.GetProviderId())
	if err != nil {
		return nil, status.Error(codes.Internal, "failed to load profile")
	}
	loc, err := time.LoadLocation(profile.Timezone)
	if err != nil {
		loc = time.UTC
		profile.Timezone = "UTC"
	}

	date, err := time.ParseInLocation("2006-01-02", req.GetDate(), loc)
	if err != nil {
		return nil, status.Error(codes.InvalidArgument, "date must be YYYY-MM-DD")
	}

	resp := &schedulev1.DayAvailabilityResponse{
		ProviderId:          req.GetProviderId(),
		Date:                req.GetDate(),
		Timezone:            profile.Timezone,
		ConsultationMinutes: int32(profile.ConsultationMinutes),
	}

	blocked, _, err := s.store.ListBlocked(ctx, req.GetProviderId())
	if err != nil {
		return nil, status.Error(codes.Internal, "failed to load blocked dates")
	}
	for _, b := range blocked {
		if b.Format("2006-01-02") == req.GetDate() {
			return resp, nil
		}
	}

	vd, err := s.store.GetDay(ctx, req.GetProviderId(), model.FromTimeWeekday(date.Weekday()))
	if err != nil {
		return nil, status.Error(codes.Internal, "failed to load day template")
	}
	resp.ScheduleVersion = vd.Version
	if !vd.Template.IsAvailable {
		return resp, nil
	}

	resp.Bookable = true
	for _, slot := range vd.Template.SortedSlots() {
		resp.Windows = append(resp.Windows, &schedulev1.AvailabilityWindow{
			StartMinute: int32(slot.StartMinute),
			EndMinute:   int32(slot.EndMinute),
		})
	}
	return resp, nil
}
