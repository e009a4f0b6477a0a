package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	"game_catalog/internal/config"
	"game_catalog/internal/domain"
	"game_catalog/internal/service/mocks"
)

type CoalescingCatalogTestSuite struct {
	suite.Suite
	ctrl    *gomock.Controller
	inner   *mocks.MockCatalog
	catalog *CoalescingCatalog
	ctx     context.Context
}

func (s *CoalescingCatalogTestSuite) SetupTest() {
	s.ctrl = gomock.NewController(s.T())
	s.inner = mocks.NewMockCatalog(s.ctrl)
	s.catalog = NewCoalescingCatalog(s.inner, config.CacheConfig{Capacity: 100, CoalesceTTL: time.Minute})
	s.ctx = context.Background()
}

func (s *CoalescingCatalogTestSuite) TearDownTest() {
	s.ctrl.Finish()
}

func (s *CoalescingCatalogTestSuite) TestRepeatedLookupHitsProviderOnce() {
	s.inner.EXPECT().
		SearchByText(gomock.Any(), "Witcher", 10).
		Return([]domain.Game{{ProviderID: "1942", Name: "The Witcher 3"}}, nil).
		Times(1)

	for i := 0; i < 3; i++ {
		games, err := s.catalog.SearchByText(s.ctx, "Witcher", 10)
		s.Require().NoError(err)
		s.Len(games, 1)
	}
}

func (s *CoalescingCatalogTestSuite) TestKeysIncludeArguments() {
	s.inner.EXPECT().SearchByText(gomock.Any(), "Witcher", 10).Return([]domain.Game{}, nil)
	s.inner.EXPECT().SearchByText(gomock.Any(), "Witcher", 5).Return([]domain.Game{}, nil)
	s.inner.EXPECT().GetByGenre(gomock.Any(), "Witcher", 10).Return([]domain.Game{}, nil)

	_, err := s.catalog.SearchByText(s.ctx, "Witcher", 10)
	s.NoError(err)
	_, err = s.catalog.SearchByText(s.ctx, "Witcher", 5)
	s.NoError(err)
	_, err = s.catalog.GetByGenre(s.ctx, "Witcher", 10)
	s.NoError(err)
}

func (s *CoalescingCatalogTestSuite) TestErrorsAreNotKept() {
	gomock.InOrder(
		s.inner.EXPECT().GetBySlug(gomock.Any(), "hades").Return(nil, errors.New("connection reset")),
		s.inner.EXPECT().GetBySlug(gomock.Any(), "hades").Return([]domain.Game{{ProviderID: "1", Slug: "hades"}}, nil),
	)

	_, err := s.catalog.GetBySlug(s.ctx, "hades")
	s.Error(err)

	games, err := s.catalog.GetBySlug(s.ctx, "hades")
	s.NoError(err)
	s.Len(games, 1)
}

func (s *CoalescingCatalogTestSuite) TestReturnedSliceIsACopy() {
	s.inner.EXPECT().GetTopRated(gomock.Any(), 1).Return([]domain.Game{{ProviderID: "1", Name: "Original"}}, nil)

	first, err := s.catalog.GetTopRated(s.ctx, 1)
	s.Require().NoError(err)
	first[0].Name = "Mutated"

	second, err := s.catalog.GetTopRated(s.ctx, 1)
	s.Require().NoError(err)
	s.Equal("Original", second[0].Name)
}

func (s *CoalescingCatalogTestSuite) TestSharedFetchSurvivesFirstCallerCancel() {
	started := make(chan struct{})
	release := make(chan struct{})

	s.inner.EXPECT().
		GetUpcoming(gomock.Any(), 5).
		DoAndReturn(func(ctx context.Context, _ int) ([]domain.Game, error) {
			close(started)
			<-release
			if err := ctx.Err(); err != nil {
				return nil, err
			}
			return []domain.Game{{ProviderID: "7", Name: "Hollow Knight: Silksong"}}, nil
		}).
		Times(1)

	firstCtx, cancelFirst := context.WithCancel(s.ctx)
	go func() {
		_, _ = s.catalog.GetUpcoming(firstCtx, 5)
	}()
	<-started

	type result struct {
		games []domain.Game
		err   error
	}
	second := make(chan result, 1)
	go func() {
		games, err := s.catalog.GetUpcoming(s.ctx, 5)
		second <- result{games, err}
	}()

	// Let the second caller join the in-flight fetch before the first goes away.
	time.Sleep(50 * time.Millisecond)
	cancelFirst()
	close(release)

	select {
	case res := <-second:
		s.Require().NoError(res.err)
		s.Require().Len(res.games, 1)
		s.Equal("7", res.games[0].ProviderID)
	case <-time.After(5 * time.Second):
		s.Fail("second caller never returned")
	}
}

func (s *CoalescingCatalogTestSuite) TestSharedFetchIsBounded() {
	catalog := NewCoalescingCatalog(s.inner, config.CacheConfig{
		Capacity:     100,
		CoalesceTTL:  time.Minute,
		FetchTimeout: 20 * time.Millisecond,
	})

	s.inner.EXPECT().
		GetTopRated(gomock.Any(), 3).
		DoAndReturn(func(ctx context.Context, _ int) ([]domain.Game, error) {
			<-ctx.Done()
			return nil, ctx.Err()
		})

	_, err := catalog.GetTopRated(s.ctx, 3)

	s.ErrorIs(err, context.DeadlineExceeded)
}

func TestCoalescingCatalogSuite(t *testing.T) {
	suite.Run(t, new(CoalescingCatalogTestSuite))
}
