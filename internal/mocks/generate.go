// Package mocks provides mock implementations for testing the job tracker.
//
// This package uses go.uber.org/mock (gomock) to generate type-safe mocks for
// the core interfaces. The mocks are generated using go:generate directives
// and provide a fluent API for setting up test expectations.
//
// To regenerate mocks after interface changes, run:
//
//	go generate ./internal/mocks
//
// Usage in tests:
//
//	ctrl := gomock.NewController(t)
//	defer ctrl.Finish()
//	backend := mocks.NewMockChatBackend(ctrl)
//	backend.EXPECT().Enqueue(gomock.Any(), "prompt").Return("job-1", nil)
package mocks

// Generate mock for JobStore interface from internal/core package.
// This creates MockJobStore with methods for all JobStore interface methods:
// LoadIndex, SaveIndex, SaveReply, LoadReply, DeleteReply, ListReplyIDs, UsedBytes, DeleteAll
//go:generate go run go.uber.org/mock/mockgen -package=mocks -destination=job_store_mock.go github.com/promptlab/jobtrack/internal/core JobStore

// Generate mock for ChatBackend interface from internal/core package.
// This creates MockChatBackend with methods for all ChatBackend interface methods:
// Enqueue, PollJob, Configured
//go:generate go run go.uber.org/mock/mockgen -package=mocks -destination=chat_backend_mock.go github.com/promptlab/jobtrack/internal/core ChatBackend
