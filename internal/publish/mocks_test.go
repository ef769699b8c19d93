package publish

import (
	"context"

	"github.com/stretchr/testify/mock"
)

// --- Mocks ---

// MockStore is a mock implementing the Store interface.
type MockStore struct {
	mock.Mock
}

func (m *MockStore) DefaultBranch(ctx context.Context) (string, error) {
	args := m.Called(ctx)
	return args.String(0), args.Error(1)
}

func (m *MockStore) GetBranch(ctx context.Context, name string) (string, error) {
	args := m.Called(ctx, name)
	return args.String(0), args.Error(1)
}

func (m *MockStore) CreateBranch(ctx context.Context, name, fromSHA string) error {
	args := m.Called(ctx, name, fromSHA)
	return args.Error(0)
}

func (m *MockStore) GetRef(ctx context.Context, branch string) (string, error) {
	args := m.Called(ctx, branch)
	return args.String(0), args.Error(1)
}

func (m *MockStore) GetTree(ctx context.Context, sha string) (string, error) {
	args := m.Called(ctx, sha)
	return args.String(0), args.Error(1)
}

func (m *MockStore) GetContents(ctx context.Context, path, ref string) ([]byte, error) {
	args := m.Called(ctx, path, ref)
	if data, ok := args.Get(0).([]byte); ok {
		return data, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockStore) CreateBlob(ctx context.Context, base64Content string) (string, error) {
	args := m.Called(ctx, base64Content)
	return args.String(0), args.Error(1)
}

func (m *MockStore) CreateTree(ctx context.Context, baseTree string, entries []TreeEntry) (string, error) {
	args := m.Called(ctx, baseTree, entries)
	return args.String(0), args.Error(1)
}

func (m *MockStore) CreateCommit(ctx context.Context, message, treeSHA, parentSHA string) (string, error) {
	args := m.Called(ctx, message, treeSHA, parentSHA)
	return args.String(0), args.Error(1)
}

func (m *MockStore) UpdateRef(ctx context.Context, branch, sha string) error {
	args := m.Called(ctx, branch, sha)
	return args.Error(0)
}
