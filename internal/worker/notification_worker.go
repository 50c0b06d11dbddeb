package worker

import "go.uber.org/zap"

// Subscriber attaches its handlers to the event dispatcher.
type Subscriber interface {
	RegisterHandlers()
}

// StartSubscribers registers every non-nil subscriber once at start-up.
func StartSubscribers(logger *zap.Logger, subscribers ...Subscriber) int {
	started := 0
	for _, sub := range subscribers {
		if sub == nil {
			continue
		}
		sub.RegisterHandlers()
		started++
	}
	logger.Info("event subscribers registered", zap.Int("count", started))
	return started
}
