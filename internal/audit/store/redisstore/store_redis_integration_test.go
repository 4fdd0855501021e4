//go:build integration

package redisstore_test

import (
	"context"
	"testing"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/suite"
	tcredis "github.com/testcontainers/testcontainers-go/modules/redis"

	"github.com/ClarenceRuth/cipher-shipment-stream/internal/audit"
	"github.com/ClarenceRuth/cipher-shipment-stream/internal/audit/store/redisstore"
	id "github.com/ClarenceRuth/cipher-shipment-stream/pkg/domain"
)

type RedisStoreSuite struct {
	suite.Suite
	container *tcredis.RedisContainer
	client    *redis.Client
	store     *redisstore.Store
}

func TestRedisStoreSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(RedisStoreSuite))
}

func (s *RedisStoreSuite) SetupSuite() {
	ctx := context.Background()

	container, err := tcredis.Run(ctx, "redis:7-alpine")
	s.Require().NoError(err)
	s.container = container

	addr, err := container.ConnectionString(ctx)
	s.Require().NoError(err)
	opts, err := redis.ParseURL(addr)
	s.Require().NoError(err)
	s.client = redis.NewClient(opts)
	s.store = redisstore.New(s.client)
}

func (s *RedisStoreSuite) TearDownSuite() {
	ctx := context.Background()
	if s.client != nil {
		_ = s.client.Close()
	}
	if s.container != nil {
		_ = s.container.Terminate(ctx)
	}
}

func (s *RedisStoreSuite) SetupTest() {
	s.Require().NoError(s.client.FlushAll(context.Background()).Err())
}

func (s *RedisStoreSuite) TestAppendAndList() {
	ctx := context.Background()
	driver := id.NewPrincipalID()
	other := id.NewPrincipalID()
	actor := id.NewPrincipalID()

	events := []audit.Event{
		{ID: "evt-1", Kind: audit.KindDriverRegistered, Category: audit.CategoryOperations, Driver: driver, Actor: actor},
		{ID: "evt-2", Kind: audit.KindValueSubmitted, Category: audit.CategoryCompliance, Driver: driver, Actor: actor},
		{ID: "evt-3", Kind: audit.KindDriverRegistered, Category: audit.CategoryOperations, Driver: other, Actor: actor},
	}
	for _, event := range events {
		s.Require().NoError(s.store.Append(ctx, event))
	}

	got, err := s.store.ListByDriver(ctx, driver)
	s.Require().NoError(err)
	s.Require().Len(got, 2)
	s.Equal("evt-1", got[0].ID)
	s.Equal("evt-2", got[1].ID)

	got, err = s.store.ListByDriver(ctx, other)
	s.Require().NoError(err)
	s.Require().Len(got, 1)
	s.Equal("evt-3", got[0].ID)
}

func (s *RedisStoreSuite) TestListUnknownDriverIsEmpty() {
	got, err := s.store.ListByDriver(context.Background(), id.NewPrincipalID())
	s.Require().NoError(err)
	s.Empty(got)
}
