package position

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	positionerrors "aisg-audit/internal/position/errors"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
	"gorm.io/gorm"
)

const PositionAllKey = "positions:all"

//go:generate mockgen -source=position_service.go -destination=mock/position_service_mock.go -package=mock
type Service interface {
	Seed(ctx context.Context) error
	GetAll(ctx context.Context) ([]PositionResponse, error)
	GetByCode(ctx context.Context, code string) (PositionResponse, error)
}

type service struct {
	repo   Repository
	rdb    *redis.Client
	sf     *singleflight.Group
	logger *zap.Logger
}

func NewService(repo Repository, rdb *redis.Client, logger ...*zap.Logger) Service {
	l := zap.L().Named("position.service")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("position.service")
	}
	return &service{repo: repo, rdb: rdb, sf: &singleflight.Group{}, logger: l}
}

// Seed menyelaraskan tabel positions dengan katalog tetap saat startup.
func (s *service) Seed(ctx context.Context) error {
	rows := make([]Position, len(Catalog))
	copy(rows, Catalog)

	if err := s.repo.Upsert(ctx, rows); err != nil {
		s.logger.Error("seed positions failed", zap.Error(err))
		return err
	}

	if s.rdb != nil {
		if err := s.rdb.Del(ctx, PositionAllKey).Err(); err != nil {
			s.logger.Warn("failed to invalidate position cache", zap.String("key", PositionAllKey), zap.Error(err))
		}
	}

	s.logger.Info("positions seeded", zap.Int("count", len(rows)))
	return nil
}

func (s *service) GetAll(ctx context.Context) ([]PositionResponse, error) {
	if s.rdb != nil {
		if cached, err := s.rdb.Get(ctx, PositionAllKey).Result(); err == nil {
			var resp []PositionResponse
			if json.Unmarshal([]byte(cached), &resp) == nil {
				return resp, nil
			}
		}
	}

	// Singleflight supaya form yang dibuka bersamaan tidak membanjiri DB
	v, err, _ := s.sf.Do(PositionAllKey, func() (interface{}, error) {
		positions, err := s.repo.FindAll(ctx)
		if err != nil {
			return nil, err
		}

		resp := mapToListResponse(positions)

		if s.rdb != nil {
			if jsonData, err := json.Marshal(resp); err == nil {
				s.rdb.Set(ctx, PositionAllKey, jsonData, time.Hour)
			}
		}

		return resp, nil
	})
	if err != nil {
		s.logger.Error("get all positions failed", zap.Error(err))
		return nil, err
	}

	return v.([]PositionResponse), nil
}

func (s *service) GetByCode(ctx context.Context, code string) (PositionResponse, error) {
	canonical, ok := Lookup(code)
	if !ok {
		return PositionResponse{}, positionerrors.ErrPositionNotFound
	}

	p, err := s.repo.FindByCode(ctx, canonical.Code)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return PositionResponse{}, positionerrors.ErrPositionNotFound
		}
		return PositionResponse{}, err
	}

	return mapToResponse(*p), nil
}

func mapToResponse(p Position) PositionResponse {
	return PositionResponse{
		Code:  p.Code,
		Name:  p.Name,
		Level: p.Level,
	}
}

func mapToListResponse(positions []Position) []PositionResponse {
	res := make([]PositionResponse, len(positions))
	for i, p := range positions {
		res[i] = mapToResponse(p)
	}
	return res
}
