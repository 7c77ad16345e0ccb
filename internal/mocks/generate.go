// Package mocks provides mock implementations for testing the FTP server.
//
// This package uses go.uber.org/mock (gomock) to generate type-safe mocks for
// the storage and data-layer interfaces. The mocks are generated using
// go:generate directives and provide a fluent API for setting up test
// expectations.
//
// To regenerate mocks after interface changes, run:
//
//	go generate ./internal/mocks
//
// Usage in tests:
//
//	ctrl := gomock.NewController(t)
//	defer ctrl.Finish()
//	mockBackend := mocks.NewMockBackend(ctrl)
//	mockBackend.EXPECT().Stat(gomock.Any(), "/file").Return(info, nil)
package mocks

// Generate mock for the Backend interface from internal/storage.
// This creates MockBackend with methods for all Backend interface methods:
// Stat, List, Open, Put, Del, Mkd, Rmd, Rename, Features
//go:generate go run go.uber.org/mock/mockgen@v0.6.0 -package=mocks -destination=storage_backend_mock.go github.com/developerfred/libunftp/internal/storage Backend

// Generate mock for the UserStore interface from internal/auth.
// This creates MockUserStore with methods for all UserStore interface methods:
// GetByUsername
//go:generate go run go.uber.org/mock/mockgen@v0.6.0 -package=mocks -destination=user_store_mock.go github.com/developerfred/libunftp/internal/auth UserStore
