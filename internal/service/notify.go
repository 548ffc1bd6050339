package service

import (
	"context"

	"github.com/computingshadrack/v0-restaurant-hotel-system/internal/events"
	"github.com/computingshadrack/v0-restaurant-hotel-system/internal/logger"
)

// Notifier publishes domain events after a transaction commits. The zero
// value publishes nothing.
type Notifier struct {
	Publisher events.Publisher
	Log       *logger.Logger
}

func (n Notifier) emit(ctx context.Context, eventType, key string, payload any) {
	events.Emit(ctx, n.Publisher, n.Log, eventType, key, payload)
}
