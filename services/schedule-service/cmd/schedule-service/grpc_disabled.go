//go:build !protogen

package main

import (
	"context"
	"log/slog"

	"github.com/medsched/medsched/services/schedule-service/internal/storage"
)

func startGrpcServer(_ context.Context, _ *slog.Logger, _ *storage.Store) error {
	return nil
}
