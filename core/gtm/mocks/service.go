package mocks

import (
	"context"

	"gtm-sync/core/gtm"

	"github.com/stretchr/testify/mock"
)

// Service is a mock implementation of gtm.Service
type Service struct {
	mock.Mock
}

func (m *Service) EnsureWorkspace(ctx context.Context, accountID, containerID, name string, createIfMissing bool) (*gtm.Workspace, error) {
	args := m.Called(ctx, accountID, containerID, name, createIfMissing)
	if ws, ok := args.Get(0).(*gtm.Workspace); ok {
		return ws, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *Service) List(ctx context.Context, parent, collection string) ([]map[string]any, error) {
	args := m.Called(ctx, parent, collection)
	if items, ok := args.Get(0).([]map[string]any); ok {
		return items, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *Service) Create(ctx context.Context, parent, collection string, body map[string]any) (map[string]any, error) {
	args := m.Called(ctx, parent, collection, body)
	if created, ok := args.Get(0).(map[string]any); ok {
		return created, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *Service) Update(ctx context.Context, path string, body map[string]any, fingerprint string) (map[string]any, error) {
	args := m.Called(ctx, path, body, fingerprint)
	if updated, ok := args.Get(0).(map[string]any); ok {
		return updated, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *Service) Delete(ctx context.Context, path string) error {
	args := m.Called(ctx, path)
	return args.Error(0)
}

func (m *Service) ListEnabledBuiltIns(ctx context.Context, parent string) ([]string, error) {
	args := m.Called(ctx, parent)
	if types, ok := args.Get(0).([]string); ok {
		return types, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *Service) EnableBuiltIn(ctx context.Context, parent, builtInType string) error {
	args := m.Called(ctx, parent, builtInType)
	return args.Error(0)
}

func (m *Service) DisableBuiltIn(ctx context.Context, parent, builtInType string) error {
	args := m.Called(ctx, parent, builtInType)
	return args.Error(0)
}

func (m *Service) MoveEntitiesToFolder(ctx context.Context, folderPath string, tagIDs, triggerIDs, variableIDs []string) error {
	args := m.Called(ctx, folderPath, tagIDs, triggerIDs, variableIDs)
	return args.Error(0)
}
