package hazard

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/corray333/backend-labs/storefront/internal/service/models/reconciliation"
)

type publisher interface {
	Publish(queue, contentType string, body []byte) error
}

// Reporter sends hazards to the reconciliation queue.
type Reporter struct {
	publisher publisher
	queue     string
}

// NewReporter creates a reporter publishing to queue.
func NewReporter(p publisher, queue string) *Reporter {
	return &Reporter{
		publisher: p,
		queue:     queue,
	}
}

// ReportHazard publishes h as JSON.
func (r *Reporter) ReportHazard(_ context.Context, h reconciliation.Hazard) error {
	body, err := json.Marshal(h)
	if err != nil {
		return fmt.Errorf("failed to marshal hazard: %w", err)
	}

	if err := r.publisher.Publish(r.queue, "application/json", body); err != nil {
		return fmt.Errorf("failed to publish hazard: %w", err)
	}

	return nil
}
