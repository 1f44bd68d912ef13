//go:build protogen

package schedule

import (
	"context"
	"time"

	"github.com/medsched/medsched/libs/grpcx"
	schedulev1 "github.com/medsched/medsched/protos/gen/schedule/v1"
	"github.com/medsched/medsched/services/booking-service/internal/availability"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

type grpcProvider struct {
	client schedulev1.ScheduleServiceClient
}

// NewGRPCProvider dials the schedule service. An empty address returns nil
// so the caller can fall back to direct table reads.
func NewGRPCProvider(addr string) (Provider, error) {
	if addr == "" {
		return nil, nil
	}
	conn, err := grpcx.Dial(context.Background(), addr, grpcx.DialOptions{Timeout: 3 * time.Second})
	if err != nil {
		return nil, err
	}
	return &grpcProvider{client: schedulev1.NewScheduleServiceClient(conn)}, nil
}

func (p *grpcProvider) DayAvailability(ctx context.Context, providerID, date string) (DayAvailability, error) {
	resp, err := p.client.GetDayAvailability(ctx, &schedulev1.DayAvailabilityRequest{
		ProviderId: providerID,
		Date:       date,
	})
	if status.Code(err) == codes.NotFound {
		return DayAvailability{}, ErrProviderNotFound
	}
	if err != nil {
		return DayAvailability{}, err
	}

	out := DayAvailability{
		Bookable:            resp.GetBookable(),
		ConsultationMinutes: int(resp.GetConsultationMinutes()),
		Timezone:            resp.GetTimezone(),
		ScheduleVersion:     resp.GetScheduleVersion(),
	}
	for _, w := range resp.GetWindows() {
		out.Windows = append(out.Windows, availability.Window{
			StartMinute: int(w.GetStartMinute()),
			EndMinute:   int(w.GetEndMinute()),
		})
	}
	return out, nil
}
