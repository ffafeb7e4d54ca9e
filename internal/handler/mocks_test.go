package handler_test

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"io"
	"sync"

	"taskboard/internal/auth"
	"taskboard/internal/model"
	"taskboard/internal/repository"

	"github.com/stretchr/testify/mock"
)

// Task repository mock
type MockTaskRepository struct {
	mock.Mock
}

func (m *MockTaskRepository) GetAll(ctx context.Context) ([]model.Task, error) {
	args := m.Called(ctx)
	tasks := args.Get(0)
	if tasks == nil {
		return nil, args.Error(1)
	}
	return tasks.([]model.Task), args.Error(1)
}

func (m *MockTaskRepository) GetArchived(ctx context.Context) ([]model.Task, error) {
	args := m.Called(ctx)
	tasks := args.Get(0)
	if tasks == nil {
		return nil, args.Error(1)
	}
	return tasks.([]model.Task), args.Error(1)
}

func (m *MockTaskRepository) GetByID(ctx context.Context, id string) (*model.Task, error) {
	args := m.Called(ctx, id)
	task := args.Get(0)
	if task == nil {
		return nil, args.Error(1)
	}
	return task.(*model.Task), args.Error(1)
}

func (m *MockTaskRepository) Create(ctx context.Context, task *model.Task) error {
	args := m.Called(ctx, task)
	return args.Error(0)
}

func (m *MockTaskRepository) Replace(ctx context.Context, task *model.Task) error {
	args := m.Called(ctx, task)
	return args.Error(0)
}

func (m *MockTaskRepository) Delete(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockTaskRepository) NextNumericID(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockTaskRepository) UpdateOrders(ctx context.Context, updates []repository.OrderUpdate) error {
	args := m.Called(ctx, updates)
	return args.Error(0)
}

func (m *MockTaskRepository) UpdateProjectColor(ctx context.Context, projectName, newColor string) (int, error) {
	args := m.Called(ctx, projectName, newColor)
	return args.Int(0), args.Error(1)
}

// User repository mock
type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) GetAll(ctx context.Context) ([]model.User, error) {
	args := m.Called(ctx)
	users := args.Get(0)
	if users == nil {
		return nil, args.Error(1)
	}
	return users.([]model.User), args.Error(1)
}

func (m *MockUserRepository) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	args := m.Called(ctx, email)
	user := args.Get(0)
	if user == nil {
		return nil, args.Error(1)
	}
	return user.(*model.User), args.Error(1)
}

func (m *MockUserRepository) FindByName(ctx context.Context, name string) (*model.User, error) {
	args := m.Called(ctx, name)
	user := args.Get(0)
	if user == nil {
		return nil, args.Error(1)
	}
	return user.(*model.User), args.Error(1)
}

func (m *MockUserRepository) Create(ctx context.Context, user *model.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUserRepository) Upsert(ctx context.Context, user *model.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

// Attachment store mock
type MockAttachmentStore struct {
	mock.Mock
}

func (m *MockAttachmentStore) Upload(ctx context.Context, blobName, contentType string, r io.Reader) (string, error) {
	args := m.Called(ctx, blobName, contentType, r)
	return args.String(0), args.Error(1)
}

func (m *MockAttachmentStore) Delete(ctx context.Context, blobName string) error {
	args := m.Called(ctx, blobName)
	return args.Error(0)
}

func (m *MockAttachmentStore) SignedURL(blobName string) (string, error) {
	args := m.Called(blobName)
	return args.String(0), args.Error(1)
}

// fakePublisher records published events instead of broadcasting them.
type fakePublisher struct {
	mu     sync.Mutex
	events []publishedEvent
}

type publishedEvent struct {
	Target string
	Args   []any
}

func (f *fakePublisher) Publish(target string, args ...any) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, publishedEvent{Target: target, Args: args})
}

func (f *fakePublisher) published() []publishedEvent {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]publishedEvent(nil), f.events...)
}

// principalHeader encodes an identity header the way the platform proxy
// does.
func principalHeader(userID, userDetails string, roles ...string) string {
	principal := auth.ClientPrincipal{
		UserID:      userID,
		UserDetails: userDetails,
		UserRoles:   roles,
		Claims: []auth.Claim{
			{Typ: auth.EmailClaimType, Val: userDetails + "@example.com"},
			{Typ: auth.NameClaimType, Val: userDetails},
		},
	}
	raw, _ := json.Marshal(principal)
	return base64.StdEncoding.EncodeToString(raw)
}
