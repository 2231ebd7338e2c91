package services

import (
	"context"

	"github.com/dmitrijs2005/storagesync/internal/client/models"
	"github.com/dmitrijs2005/storagesync/internal/logging"
)

// ProfileQueue collects profile refresh requests raised while merging.
// Requests are dropped when the buffer is full; the next merge raises
// them again.
type ProfileQueue struct {
	ch     chan models.ServiceID
	logger logging.Logger
}

func NewProfileQueue(size int, logger logging.Logger) *ProfileQueue {
	return &ProfileQueue{ch: make(chan models.ServiceID, size), logger: logger}
}

func (q *ProfileQueue) FetchProfile(serviceID models.ServiceID) {
	select {
	case q.ch <- serviceID:
	default:
		q.logger.Debug(context.Background(), "profile fetch queue full, dropping request", "service_id", serviceID.String())
	}
}

// C delivers queued requests.
func (q *ProfileQueue) C() <-chan models.ServiceID {
	return q.ch
}

// Drain returns everything queued so far without blocking.
func (q *ProfileQueue) Drain() []models.ServiceID {
	var out []models.ServiceID
	for {
		select {
		case sid := <-q.ch:
			out = append(out, sid)
		default:
			return out
		}
	}
}
