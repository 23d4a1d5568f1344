package employee

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"sync/atomic"
	"time"

	employeeerrors "go-directory/internal/employee/errors"
	"go-directory/internal/events"
	"go-directory/internal/shared/apperror"
	"go-directory/internal/shared/contextutil"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

const (
	EmployeeListKey     = "employees:list"
	DefaultListCacheTTL = 5 * time.Minute
)

type Service interface {
	Create(ctx context.Context, req CreateEmployeeRequest) (EmployeeResponse, error)
	GetAll(ctx context.Context) ([]EmployeeResponse, error)
	GetByID(ctx context.Context, id string) (EmployeeResponse, error)
	Update(ctx context.Context, id string, req UpdateEmployeeRequest) (EmployeeResponse, error)
	Delete(ctx context.Context, id string) error
}

type service struct {
	repo      Repository
	rdb       *redis.Client
	publisher EventPublisher
	cacheTTL  time.Duration
	sf        *singleflight.Group
	// listGen advances on every invalidation; a list read that spans one
	// is not written back to the cache.
	listGen atomic.Uint64
	logger  *zap.Logger
}

func NewService(repo Repository, rdb *redis.Client, logger ...*zap.Logger) Service {
	return NewServiceWithPublisher(repo, rdb, nil, DefaultListCacheTTL, logger...)
}

func NewServiceWithPublisher(
	repo Repository,
	rdb *redis.Client,
	publisher EventPublisher,
	cacheTTL time.Duration,
	logger ...*zap.Logger,
) Service {
	l := zap.L().Named("employee.service")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("employee.service")
	}
	if publisher == nil {
		publisher = noopEventPublisher{}
	}
	if cacheTTL <= 0 {
		cacheTTL = DefaultListCacheTTL
	}
	return &service{
		repo:      repo,
		rdb:       rdb,
		publisher: publisher,
		cacheTTL:  cacheTTL,
		sf:        &singleflight.Group{},
		logger:    l,
	}
}

func (s *service) Create(ctx context.Context, req CreateEmployeeRequest) (EmployeeResponse, error) {
	rid := contextutil.GetRequestID(ctx)
	s.logger.Debug("create employee requested",
		zap.String("request_id", rid),
		zap.String("email", req.Email),
	)

	empl := &Employee{
		ID:       uuid.New(),
		Name:     req.Name,
		Phone:    req.Phone,
		Email:    req.Email,
		Address:  req.Address,
		ImageURL: imageURLOrDefault(req.ImageURL),
	}

	if err := s.repo.Create(ctx, empl); err != nil {
		mapped := mapRepositoryError(err, employeeerrors.MsgCreateFailed)
		s.logFailure("create employee persist failed", mapped, zap.String("request_id", rid))
		return EmployeeResponse{}, mapped
	}

	s.invalidateList(ctx)
	s.publish(ctx, events.EmployeeCreated, empl)

	s.logger.Info("create employee success",
		zap.String("request_id", rid),
		zap.String("employee_id", empl.ID.String()),
	)

	return mapToResponse(*empl), nil
}

func (s *service) GetAll(ctx context.Context) ([]EmployeeResponse, error) {
	s.logger.Debug("get all employees requested")

	if s.rdb != nil {
		cached, err := s.rdb.Get(ctx, EmployeeListKey).Result()
		switch {
		case err == nil:
			var resp []EmployeeResponse
			if jsonErr := json.Unmarshal([]byte(cached), &resp); jsonErr == nil {
				return resp, nil
			}
			s.logger.Warn("employee list cache entry unreadable", zap.String("key", EmployeeListKey))
		case !errors.Is(err, redis.Nil):
			s.logger.Warn("employee list cache read failed", zap.Error(err))
		}
	}

	// concurrent misses share one store read
	v, err, _ := s.sf.Do(EmployeeListKey, func() (interface{}, error) {
		gen := s.listGen.Load()
		empls, err := s.repo.FindAll(ctx)
		if err != nil {
			return nil, mapRepositoryError(err, employeeerrors.MsgListFailed)
		}

		resp := mapToListResponse(empls)

		if s.rdb != nil && s.listGen.Load() == gen {
			if jsonData, err := json.Marshal(resp); err == nil {
				if err := s.rdb.Set(ctx, EmployeeListKey, jsonData, s.cacheTTL).Err(); err != nil {
					s.logger.Warn("employee list cache write failed", zap.Error(err))
				}
			}
		}

		return resp, nil
	})
	if err != nil {
		s.logFailure("get all employees failed", err)
		return nil, err
	}

	return v.([]EmployeeResponse), nil
}

func (s *service) GetByID(ctx context.Context, id string) (EmployeeResponse, error) {
	s.logger.Debug("get employee by id requested", zap.String("employee_id", id))

	emplID, err := uuid.Parse(id)
	if err != nil {
		return EmployeeResponse{}, employeeerrors.ErrEmployeeNotFound
	}

	empl, err := s.repo.FindByID(ctx, emplID)
	if err != nil {
		mapped := mapRepositoryError(err, employeeerrors.MsgGetFailed)
		s.logFailure("get employee by id failed", mapped, zap.String("employee_id", id))
		return EmployeeResponse{}, mapped
	}

	return mapToResponse(*empl), nil
}

func (s *service) Update(ctx context.Context, id string, req UpdateEmployeeRequest) (EmployeeResponse, error) {
	rid := contextutil.GetRequestID(ctx)
	s.logger.Debug("update employee requested",
		zap.String("request_id", rid),
		zap.String("employee_id", id),
	)

	emplID, err := uuid.Parse(id)
	if err != nil {
		return EmployeeResponse{}, employeeerrors.ErrEmployeeNotFound
	}

	empl, err := s.repo.Update(ctx, emplID, func(e *Employee) {
		applyUpdate(e, req)
	})
	if err != nil {
		mapped := mapRepositoryError(err, employeeerrors.MsgUpdateFailed)
		s.logFailure("update employee persist failed", mapped,
			zap.String("request_id", rid),
			zap.String("employee_id", id),
		)
		return EmployeeResponse{}, mapped
	}

	s.invalidateList(ctx)
	s.publish(ctx, events.EmployeeUpdated, empl)

	s.logger.Info("update employee success", zap.String("employee_id", id))

	return mapToResponse(*empl), nil
}

func (s *service) Delete(ctx context.Context, id string) error {
	rid := contextutil.GetRequestID(ctx)
	s.logger.Debug("delete employee requested",
		zap.String("request_id", rid),
		zap.String("employee_id", id),
	)

	emplID, err := uuid.Parse(id)
	if err != nil {
		return employeeerrors.ErrEmployeeNotFound
	}

	if err := s.repo.Delete(ctx, emplID); err != nil {
		mapped := mapRepositoryError(err, employeeerrors.MsgDeleteFailed)
		s.logFailure("delete employee failed", mapped, zap.String("employee_id", id))
		return mapped
	}

	s.invalidateList(ctx)
	s.publish(ctx, events.EmployeeDeleted, &Employee{ID: emplID})

	s.logger.Info("delete employee success", zap.String("employee_id", id))
	return nil
}

// logFailure logs store faults as errors and caller faults as warnings.
func (s *service) logFailure(msg string, err error, fields ...zap.Field) {
	fields = append(fields, zap.Error(err))
	var appErr *apperror.AppError
	if errors.As(err, &appErr) && appErr.Code != apperror.CodeStoreError {
		s.logger.Warn(msg, fields...)
		return
	}
	s.logger.Error(msg, fields...)
}

func (s *service) invalidateList(ctx context.Context) {
	s.listGen.Add(1)
	if s.rdb == nil {
		return
	}
	if err := s.rdb.Del(ctx, EmployeeListKey).Err(); err != nil {
		s.logger.Error("failed to invalidate employee list cache",
			zap.Error(err),
			zap.String("key", EmployeeListKey),
		)
	}
}

func (s *service) publish(ctx context.Context, eventType string, empl *Employee) {
	event := events.EmployeeEvent{
		EventType:  eventType,
		RequestID:  contextutil.GetRequestID(ctx),
		EmployeeID: empl.ID.String(),
		Email:      empl.Email,
		OccurredAt: time.Now().UTC(),
	}
	if err := s.publisher.Publish(ctx, event); err != nil {
		s.logger.Error("publish employee event failed",
			zap.String("event_type", eventType),
			zap.String("employee_id", event.EmployeeID),
			zap.Error(err),
		)
	}
}

func applyUpdate(e *Employee, req UpdateEmployeeRequest) {
	if req.Name != nil {
		e.Name = *req.Name
	}
	if req.Phone != nil {
		e.Phone = *req.Phone
	}
	if req.Email != nil {
		e.Email = *req.Email
	}
	if req.Address != nil {
		e.Address = *req.Address
	}
	if req.ImageURL != nil {
		e.ImageURL = imageURLOrDefault(*req.ImageURL)
	}
}

func imageURLOrDefault(v string) string {
	if strings.TrimSpace(v) == "" {
		return DefaultImageURL
	}
	return v
}

func mapToResponse(empl Employee) EmployeeResponse {
	return EmployeeResponse{
		ID:       empl.ID.String(),
		Name:     empl.Name,
		Phone:    empl.Phone,
		Email:    empl.Email,
		Address:  empl.Address,
		ImageURL: empl.ImageURL,
	}
}

func mapToListResponse(empls []Employee) []EmployeeResponse {
	res := make([]EmployeeResponse, len(empls))
	for i, e := range empls {
		res[i] = mapToResponse(e)
	}
	return res
}
