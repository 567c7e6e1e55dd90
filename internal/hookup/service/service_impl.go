package service

import (
	"context"

	hookupdomain "github.com/smallbiznis/hookup/internal/hookup/domain"
	"github.com/smallbiznis/hookup/internal/observability/logger"
	obsmetrics "github.com/smallbiznis/hookup/internal/observability/metrics"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

const (
	opCreate = "create"
	opGet    = "get"
	opList   = "list"
	opUpdate = "update"
	opDelete = "delete"
)

type Params struct {
	fx.In

	Log     *zap.Logger
	Repo    hookupdomain.Repository
	Metrics *obsmetrics.Metrics `optional:"true"`
}

type Service struct {
	log     *zap.Logger
	repo    hookupdomain.Repository
	metrics *obsmetrics.Metrics
}

func New(p Params) hookupdomain.Service {
	return &Service{
		log:     p.Log.Named("hookup.service"),
		repo:    p.Repo,
		metrics: p.Metrics,
	}
}

func (s *Service) Create(ctx context.Context, req hookupdomain.CreateRequest) (created *hookupdomain.Hookup, err error) {
	defer s.record(ctx, opCreate, &err)

	consumptionType, err := hookupdomain.ParseConsumptionType(req.Type)
	if err != nil {
		return nil, err
	}

	h, err := hookupdomain.NewHookup(req.Name, consumptionType, req.Endpoint)
	if err != nil {
		return nil, err
	}

	created, err = s.repo.Add(ctx, h)
	if err != nil {
		return nil, err
	}

	logger.WithHookup(logger.WithContext(ctx, s.log), created.ID.String()).Info("hookup created",
		zap.String("name", created.Name),
		zap.String("consumption_type", string(created.Consumption.Type())),
		zap.String("endpoint", created.Endpoint),
	)
	return created, nil
}

// Get returns nil, nil when no hookup has the given id.
func (s *Service) Get(ctx context.Context, rawID string) (h *hookupdomain.Hookup, err error) {
	defer s.record(ctx, opGet, &err)

	id, err := hookupdomain.ParseID(rawID)
	if err != nil {
		return nil, err
	}
	return s.repo.FindByID(ctx, id)
}

func (s *Service) List(ctx context.Context) (items []hookupdomain.Hookup, err error) {
	defer s.record(ctx, opList, &err)

	return s.repo.FindAll(ctx)
}

func (s *Service) Update(ctx context.Context, req hookupdomain.UpdateRequest) (updated *hookupdomain.Hookup, err error) {
	defer s.record(ctx, opUpdate, &err)

	current, err := s.load(ctx, req.ID)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		current.Name = *req.Name
	}
	if req.Endpoint != nil {
		current.Endpoint = *req.Endpoint
	}

	updated, err = s.repo.Update(ctx, current)
	if err != nil {
		return nil, err
	}

	logger.WithHookup(logger.WithContext(ctx, s.log), updated.ID.String()).Info("hookup updated",
		zap.String("name", updated.Name),
		zap.String("endpoint", updated.Endpoint),
	)
	return updated, nil
}

func (s *Service) Delete(ctx context.Context, rawID string) (err error) {
	defer s.record(ctx, opDelete, &err)

	current, err := s.load(ctx, rawID)
	if err != nil {
		return err
	}
	if err := s.repo.Remove(ctx, current); err != nil {
		return err
	}

	logger.WithHookup(logger.WithContext(ctx, s.log), current.ID.String()).Info("hookup deleted")
	return nil
}

// load resolves rawID to a stored hookup or ErrNotFound.
func (s *Service) load(ctx context.Context, rawID string) (*hookupdomain.Hookup, error) {
	id, err := hookupdomain.ParseID(rawID)
	if err != nil {
		return nil, err
	}

	current, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if current == nil {
		return nil, hookupdomain.ErrNotFound
	}
	return current, nil
}

func (s *Service) record(ctx context.Context, operation string, errp *error) {
	var err error
	if errp != nil {
		err = *errp
	}
	s.metrics.RecordHookupOperation(ctx, operation, err)
	if err != nil {
		logger.WithContext(ctx, s.log).Debug("hookup operation failed",
			zap.String("operation", operation),
			zap.Bool("conflict", hookupdomain.IsConflict(err)),
			zap.Error(err),
		)
	}
}
