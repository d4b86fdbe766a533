package lti_test

import (
	"context"
	"errors"
	"testing"

	lti "github.com/goliatone/go-auth-lti"
	"github.com/goliatone/go-router"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestLaunchFromRouterContext(t *testing.T) {
	launch := &lti.Launch{User: &lti.LaunchUser{Subject: "ada"}}

	ctx := router.NewMockContext()
	ctx.LocalsMock[lti.DefaultLaunchKey] = launch

	got, ok := lti.LaunchFromRouterContext(ctx, "")
	require.True(t, ok)
	assert.Same(t, launch, got)

	_, ok = lti.LaunchFromRouterContext(ctx, "other")
	assert.False(t, ok)

	wrongType := router.NewMockContext()
	wrongType.LocalsMock[lti.DefaultLaunchKey] = "not-a-launch"
	_, ok = lti.LaunchFromRouterContext(wrongType, "")
	assert.False(t, ok)
}

func TestLaunchContextHelpers(t *testing.T) {
	_, ok := lti.LaunchFromContext(context.Background())
	assert.False(t, ok)

	_, ok = lti.LaunchFromContext(lti.WithLaunch(context.Background(), nil))
	assert.False(t, ok)

	launch := &lti.Launch{User: &lti.LaunchUser{Subject: "ada"}}
	got, ok := lti.LaunchFromContext(lti.WithLaunch(context.Background(), launch))
	require.True(t, ok)
	assert.Equal(t, "ada", got.UserID())

	var empty *lti.Launch
	assert.Equal(t, "", empty.UserID())

	user := &lti.User{Username: "ada"}
	found, ok := lti.UserFromContext(lti.WithUser(context.Background(), user))
	require.True(t, ok)
	assert.Same(t, user, found)
}

func TestMiddlewareAuthenticatesLaunch(t *testing.T) {
	launch := &lti.Launch{User: &lti.LaunchUser{Subject: "ada"}}
	base := lti.WithLaunch(context.Background(), launch)

	store := new(MockUserStore)
	user := &lti.User{ID: uuid.New(), Username: "ada"}
	store.On("GetOrCreateByUsername", base, "ada").Return(user, false, nil).Once()

	backend := lti.NewBackend(store,
		lti.WithLogger(&captureLogger{}),
		lti.WithUserConfigurer(&configurerSpy{}),
	)

	var stored context.Context
	ctx := router.NewMockContext()
	ctx.On("Context").Return(base)
	ctx.On("SetContext", mock.Anything).Run(func(args mock.Arguments) {
		stored = args.Get(0).(context.Context)
	}).Return()

	nextCalled := false
	handler := lti.Middleware(backend, lti.MiddlewareConfig{})(func(c router.Context) error {
		nextCalled = true
		return nil
	})

	require.NoError(t, handler(ctx))
	assert.True(t, nextCalled)

	require.NotNil(t, stored)
	found, ok := lti.UserFromContext(stored)
	require.True(t, ok)
	assert.Same(t, user, found)
	store.AssertExpectations(t)
}

func TestMiddlewareWithoutLaunchSkipsAuthentication(t *testing.T) {
	store := new(MockUserStore)
	backend := lti.NewBackend(store, lti.WithLogger(&captureLogger{}))

	ctx := router.NewMockContext()
	ctx.On("Context").Return(context.Background())

	nextCalled := false
	handler := lti.Middleware(backend, lti.MiddlewareConfig{})(func(c router.Context) error {
		nextCalled = true
		return nil
	})

	require.NoError(t, handler(ctx))
	assert.True(t, nextCalled)
	store.AssertNotCalled(t, "GetOrCreateByUsername", mock.Anything, mock.Anything)
}

func TestMiddlewareStoreErrorUsesErrorHandler(t *testing.T) {
	launch := &lti.Launch{User: &lti.LaunchUser{Subject: "ada"}}
	base := lti.WithLaunch(context.Background(), launch)
	boom := errors.New("database down")

	store := new(MockUserStore)
	store.On("GetOrCreateByUsername", base, "ada").Return(nil, false, boom).Once()

	logger := &captureLogger{}
	backend := lti.NewBackend(store, lti.WithLogger(logger))

	ctx := router.NewMockContext()
	ctx.On("Context").Return(base)

	var handled error
	handler := lti.Middleware(backend, lti.MiddlewareConfig{
		ErrorHandler: func(c router.Context, err error) error {
			handled = err
			return nil
		},
	})(func(c router.Context) error {
		t.Fatal("next handler should not run")
		return nil
	})

	require.NoError(t, handler(ctx))
	require.ErrorIs(t, handled, boom)
	assert.Len(t, logger.byLevel("error"), 1)
}
