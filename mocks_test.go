package lti_test

import (
	"context"
	"sync"

	lti "github.com/goliatone/go-auth-lti"
	"github.com/stretchr/testify/mock"
)

// MockUserStore implements lti.UserStore
type MockUserStore struct {
	mock.Mock
}

func (m *MockUserStore) GetByUsername(ctx context.Context, username string) (*lti.User, error) {
	args := m.Called(ctx, username)
	user, _ := args.Get(0).(*lti.User)
	return user, args.Error(1)
}

func (m *MockUserStore) GetOrCreateByUsername(ctx context.Context, username string) (*lti.User, bool, error) {
	args := m.Called(ctx, username)
	user, _ := args.Get(0).(*lti.User)
	return user, args.Bool(1), args.Error(2)
}

func (m *MockUserStore) SaveProfile(ctx context.Context, user *lti.User) (*lti.User, error) {
	args := m.Called(ctx, user)
	saved, _ := args.Get(0).(*lti.User)
	return saved, args.Error(1)
}

// MockLaunchUserStore implements lti.LaunchUserStore
type MockLaunchUserStore struct {
	mock.Mock
}

func (m *MockLaunchUserStore) FindBySubject(ctx context.Context, issuer, subject string) (*lti.LaunchUser, error) {
	args := m.Called(ctx, issuer, subject)
	user, _ := args.Get(0).(*lti.LaunchUser)
	return user, args.Error(1)
}

func (m *MockLaunchUserStore) Save(ctx context.Context, user *lti.LaunchUser) (*lti.LaunchUser, error) {
	args := m.Called(ctx, user)
	saved, _ := args.Get(0).(*lti.LaunchUser)
	return saved, args.Error(1)
}

type logCall struct {
	level   string
	message string
	args    []any
}

type captureLogger struct {
	mu    sync.Mutex
	calls []logCall
}

func (l *captureLogger) record(level, message string, args ...any) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.calls = append(l.calls, logCall{level: level, message: message, args: args})
}

func (l *captureLogger) Debug(message string, args ...any) { l.record("debug", message, args...) }
func (l *captureLogger) Info(message string, args ...any)  { l.record("info", message, args...) }
func (l *captureLogger) Warn(message string, args ...any)  { l.record("warn", message, args...) }
func (l *captureLogger) Error(message string, args ...any) { l.record("error", message, args...) }

func (l *captureLogger) byLevel(level string) []logCall {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := []logCall{}
	for _, c := range l.calls {
		if c.level == level {
			out = append(out, c)
		}
	}
	return out
}

type capturingSink struct {
	mu     sync.Mutex
	events []lti.ActivityEvent
}

func (c *capturingSink) Record(ctx context.Context, evt lti.ActivityEvent) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.events = append(c.events, evt)
	return nil
}

func (c *capturingSink) types() []lti.ActivityEventType {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]lti.ActivityEventType, 0, len(c.events))
	for _, e := range c.events {
		out = append(out, e.EventType)
	}
	return out
}

type configurerSpy struct {
	calls   []bool
	users   []*lti.User
	mutator func(*lti.User)
}

func (s *configurerSpy) ConfigureUser(ctx context.Context, user *lti.User, created bool) (*lti.User, error) {
	s.calls = append(s.calls, created)
	s.users = append(s.users, user)
	if s.mutator != nil {
		s.mutator(user)
	}
	return user, nil
}
