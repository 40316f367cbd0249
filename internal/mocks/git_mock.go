package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"
)

// MockGitClient mocks the git.Client interface
type MockGitClient struct {
	mock.Mock
}

// ReadFile mocks reading a file at a revision
func (m *MockGitClient) ReadFile(ctx context.Context, repoPath, rev, path string) ([]byte, error) {
	args := m.Called(ctx, repoPath, rev, path)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]byte), args.Error(1)
}

// ListFiles mocks listing a directory at a revision
func (m *MockGitClient) ListFiles(ctx context.Context, repoPath, rev, dir string) ([]string, error) {
	args := m.Called(ctx, repoPath, rev, dir)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}
