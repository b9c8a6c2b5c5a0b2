package reconcilesvc

import (
	"context"
	"log/slog"
	"strings"

	"github.com/corray333/backend-labs/storefront/internal/dal/interfaces/ireconciliationrepo"
	"github.com/corray333/backend-labs/storefront/internal/dal/postgres"
	reconciliationrepo "github.com/corray333/backend-labs/storefront/internal/dal/repositories/reconciliation/postgres"
	"github.com/corray333/backend-labs/storefront/internal/service/errs"
	"github.com/corray333/backend-labs/storefront/internal/service/models/reconciliation"
	"go.opentelemetry.io/otel"
)

// ReconcileService records charges that were captured but never persisted.
type ReconcileService struct {
	repo ireconciliationrepo.IReconciliationRepository
}

// option is a function that configures the ReconcileService.
type option func(*ReconcileService)

// MustNewReconcileService creates a new ReconcileService.
func MustNewReconcileService(opts ...option) *ReconcileService {
	s := &ReconcileService{}
	for _, opt := range opts {
		opt(s)
	}

	if s.repo == nil {
		panic("reconcile service requires a reconciliation repository")
	}

	return s
}

// WithPostgresClient stores hazards in Postgres.
//
//goland:noinspection GoExportedFuncWithUnexportedType
func WithPostgresClient(pgClient *postgres.Client) option {
	return func(s *ReconcileService) {
		s.repo = reconciliationrepo.NewReconciliationRepository(pgClient.Pool())
	}
}

// WithReconciliationRepository sets the repository directly.
//
//goland:noinspection GoExportedFuncWithUnexportedType
func WithReconciliationRepository(repo ireconciliationrepo.IReconciliationRepository) option {
	return func(s *ReconcileService) {
		s.repo = repo
	}
}

// RecordHazard stores a hazard. Redelivered hazards are accepted and ignored.
func (s *ReconcileService) RecordHazard(ctx context.Context, h reconciliation.Hazard) error {
	const op = "ReconcileService.RecordHazard"

	ctx, span := otel.Tracer("reconcilesvc").Start(ctx, op)
	defer span.End()

	if strings.TrimSpace(h.IdempotencyKey) == "" {
		return errs.Validation(op, "hazard has no idempotency key")
	}
	if h.ChargeID == "" {
		return errs.Validation(op, "hazard has no charge id")
	}

	inserted, err := s.repo.Insert(ctx, h)
	if err != nil {
		return errs.Persistence(op, err)
	}

	if !inserted {
		slog.InfoContext(ctx, "Hazard already recorded",
			"idempotency_key", h.IdempotencyKey,
			"charge_id", h.ChargeID)

		return nil
	}

	slog.WarnContext(ctx, "Hazard recorded for reconciliation",
		"idempotency_key", h.IdempotencyKey,
		"charge_id", h.ChargeID,
		"amount", h.Amount,
		"currency", h.Currency)

	return nil
}
