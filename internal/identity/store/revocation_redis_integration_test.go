//go:build integration

package store_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"

	"geoattend/internal/identity/store"
	"geoattend/pkg/testutil/containers"
)

type RedisRevocationsSuite struct {
	suite.Suite

	redis       *containers.RedisContainer
	revocations *store.RedisRevocations
}

func TestRedisRevocationsSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(RedisRevocationsSuite))
}

func (s *RedisRevocationsSuite) SetupSuite() {
	s.redis = containers.NewRedisContainer(s.T())
	s.revocations = store.NewRedisRevocations(s.redis.Client)
}

func (s *RedisRevocationsSuite) SetupTest() {
	s.Require().NoError(s.redis.FlushAll(context.Background()))
}

func (s *RedisRevocationsSuite) TestRevokeAndCheck() {
	ctx := context.Background()
	tokenID := uuid.NewString()

	revoked, err := s.revocations.IsRevoked(ctx, tokenID)
	s.Require().NoError(err)
	s.False(revoked)

	s.Require().NoError(s.revocations.Revoke(ctx, tokenID, time.Hour))

	revoked, err = s.revocations.IsRevoked(ctx, tokenID)
	s.Require().NoError(err)
	s.True(revoked)
}

func (s *RedisRevocationsSuite) TestExpiredTokenNeedsNoRevocation() {
	ctx := context.Background()
	tokenID := uuid.NewString()

	s.Require().NoError(s.revocations.Revoke(ctx, tokenID, -time.Minute))

	revoked, err := s.revocations.IsRevoked(ctx, tokenID)
	s.Require().NoError(err)
	s.False(revoked)
}

func (s *RedisRevocationsSuite) TestRevocationExpiresWithTTL() {
	ctx := context.Background()
	tokenID := uuid.NewString()

	s.Require().NoError(s.revocations.Revoke(ctx, tokenID, 500*time.Millisecond))

	revoked, err := s.revocations.IsRevoked(ctx, tokenID)
	s.Require().NoError(err)
	s.True(revoked)

	time.Sleep(time.Second)

	revoked, err = s.revocations.IsRevoked(ctx, tokenID)
	s.Require().NoError(err)
	s.False(revoked)
}
