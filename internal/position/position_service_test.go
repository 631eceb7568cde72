package position_test

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"aisg-audit/internal/position"
	positionerrors "aisg-audit/internal/position/errors"
	positionMock "aisg-audit/internal/position/mock"

	"github.com/go-redis/redismock/v9"
	"github.com/stretchr/testify/assert"
	"go.uber.org/mock/gomock"
	"gorm.io/gorm"
)

type serviceDeps struct {
	service   position.Service
	repo      *positionMock.MockRepository
	redismock redismock.ClientMock
}

func setupServiceTest(t *testing.T) *serviceDeps {
	ctrl := gomock.NewController(t)

	rdb, redisMock := redismock.NewClientMock()
	repo := positionMock.NewMockRepository(ctrl)

	return &serviceDeps{
		service:   position.NewService(repo, rdb),
		repo:      repo,
		redismock: redisMock,
	}
}

func TestLookup(t *testing.T) {
	p, ok := position.Lookup(" brm ")
	assert.True(t, ok)
	assert.Equal(t, "BrM", p.Code)
	assert.Equal(t, 3, p.Level)

	_, ok = position.Lookup("CTO")
	assert.False(t, ok)

	assert.Equal(t, 9, position.LevelOf("BC"))
	assert.Equal(t, 0, position.LevelOf(""))
	assert.Len(t, position.Codes(), 9)
}

func TestPositionService_Seed(t *testing.T) {
	deps := setupServiceTest(t)
	ctx := context.Background()

	deps.repo.EXPECT().
		Upsert(ctx, gomock.Any()).
		DoAndReturn(func(_ context.Context, rows []position.Position) error {
			assert.Len(t, rows, 9)
			assert.Equal(t, "CEO", rows[0].Code)
			return nil
		})
	deps.redismock.ExpectDel(position.PositionAllKey).SetVal(1)

	err := deps.service.Seed(ctx)

	assert.NoError(t, err)
	assert.NoError(t, deps.redismock.ExpectationsWereMet())
}

func TestPositionService_GetAll(t *testing.T) {
	ctx := context.Background()

	t.Run("cache hit", func(t *testing.T) {
		deps := setupServiceTest(t)
		cached, _ := json.Marshal([]position.PositionResponse{{Code: "CEO", Name: "Chief Executive Officer", Level: 1}})
		deps.redismock.ExpectGet(position.PositionAllKey).SetVal(string(cached))

		resp, err := deps.service.GetAll(ctx)

		assert.NoError(t, err)
		assert.Len(t, resp, 1)
		assert.Equal(t, "CEO", resp[0].Code)
	})

	t.Run("cache miss loads and stores", func(t *testing.T) {
		deps := setupServiceTest(t)
		rows := []position.Position{{Code: "CEO", Name: "Chief Executive Officer", Level: 1}}
		payload, _ := json.Marshal([]position.PositionResponse{{Code: "CEO", Name: "Chief Executive Officer", Level: 1}})

		deps.redismock.ExpectGet(position.PositionAllKey).RedisNil()
		deps.repo.EXPECT().FindAll(gomock.Any()).Return(rows, nil)
		deps.redismock.ExpectSet(position.PositionAllKey, payload, time.Hour).SetVal("OK")

		resp, err := deps.service.GetAll(ctx)

		assert.NoError(t, err)
		assert.Equal(t, 1, resp[0].Level)
	})

	t.Run("repo error", func(t *testing.T) {
		deps := setupServiceTest(t)
		deps.redismock.ExpectGet(position.PositionAllKey).RedisNil()
		deps.repo.EXPECT().FindAll(gomock.Any()).Return(nil, errors.New("db down"))

		_, err := deps.service.GetAll(ctx)

		assert.Error(t, err)
	})
}

func TestPositionService_GetByCode(t *testing.T) {
	ctx := context.Background()

	t.Run("unknown code never hits db", func(t *testing.T) {
		deps := setupServiceTest(t)

		_, err := deps.service.GetByCode(ctx, "CTO")

		assert.ErrorIs(t, err, positionerrors.ErrPositionNotFound)
	})

	t.Run("canonicalizes code", func(t *testing.T) {
		deps := setupServiceTest(t)
		deps.repo.EXPECT().FindByCode(ctx, "BsM").Return(&position.Position{Code: "BsM", Name: "Business Manager", Level: 8}, nil)

		resp, err := deps.service.GetByCode(ctx, "bsm")

		assert.NoError(t, err)
		assert.Equal(t, 8, resp.Level)
	})

	t.Run("not seeded", func(t *testing.T) {
		deps := setupServiceTest(t)
		deps.repo.EXPECT().FindByCode(ctx, "BC").Return(nil, gorm.ErrRecordNotFound)

		_, err := deps.service.GetByCode(ctx, "BC")

		assert.ErrorIs(t, err, positionerrors.ErrPositionNotFound)
	})
}
