package dashboard

import (
	"context"

	"github.com/vannylyvan0209-hub/AngkorCompliance-sub001/internal/audit"
	"github.com/vannylyvan0209-hub/AngkorCompliance-sub001/internal/document"
	"github.com/vannylyvan0209-hub/AngkorCompliance-sub001/internal/factory"
	"github.com/vannylyvan0209-hub/AngkorCompliance-sub001/internal/grievance"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// StatsSource is the stats half of an entity service.
type StatsSource[T any] interface {
	GetStats(ctx context.Context, actorID, factoryID string) (T, error)
}

type Service interface {
	GetStats(ctx context.Context, actorID, factoryID string) (StatsResponse, error)
}

type service struct {
	audits     StatsSource[audit.StatsResponse]
	documents  StatsSource[document.StatsResponse]
	grievances StatsSource[grievance.StatsResponse]
	factories  StatsSource[factory.StatsResponse]
	weights    Weights
	logger     *zap.Logger
}

func NewService(
	audits StatsSource[audit.StatsResponse],
	documents StatsSource[document.StatsResponse],
	grievances StatsSource[grievance.StatsResponse],
	factories StatsSource[factory.StatsResponse],
	weights Weights,
	logger ...*zap.Logger,
) Service {
	l := zap.L().Named("dashboard.service")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("dashboard.service")
	}
	return &service{
		audits:     audits,
		documents:  documents,
		grievances: grievances,
		factories:  factories,
		weights:    weights,
		logger:     l,
	}
}

// GetStats fans out to every entity. Each source applies the stats gate and
// the actor's scope on its own, so one rejection fails the whole call.
func (s *service) GetStats(ctx context.Context, actorID, factoryID string) (StatsResponse, error) {
	var resp StatsResponse
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() (err error) {
		resp.Audits, err = s.audits.GetStats(gctx, actorID, factoryID)
		return err
	})
	g.Go(func() (err error) {
		resp.Documents, err = s.documents.GetStats(gctx, actorID, factoryID)
		return err
	})
	g.Go(func() (err error) {
		resp.Grievances, err = s.grievances.GetStats(gctx, actorID, factoryID)
		return err
	})
	g.Go(func() (err error) {
		resp.Factories, err = s.factories.GetStats(gctx, actorID, factoryID)
		return err
	})

	if err := g.Wait(); err != nil {
		return StatsResponse{}, err
	}

	resp.ComplianceScore = Score(resp.Audits.PassRate, resp.Audits.Overdue, resp.Grievances.Open, s.weights)
	s.logger.Debug("dashboard stats computed",
		zap.String("actor_id", actorID),
		zap.Float64("compliance_score", resp.ComplianceScore),
	)
	return resp, nil
}
