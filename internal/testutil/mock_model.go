// mock_model.go - Scripted upstream model for testing
package testutil

import (
	"bytes"
	"context"
	"errors"
	"sync"

	"github.com/plant-identifier/backend/internal/identify"
)

// Reply is one scripted model outcome.
type Reply struct {
	Text string
	Err  error
}

// MockModel implements identify.Model, returning scripted replies in order.
// When the script runs out the last reply is repeated.
type MockModel struct {
	mu      sync.Mutex
	replies []Reply
	calls   []identify.Request
	// ReplyFunc, if set, overrides the script.
	ReplyFunc func(req identify.Request) (string, error)
}

// NewMockModel creates a mock that answers with the given replies.
func NewMockModel(replies ...Reply) *MockModel {
	return &MockModel{replies: replies}
}

// NewTextModel creates a mock that always answers with text.
func NewTextModel(text string) *MockModel {
	return NewMockModel(Reply{Text: text})
}

// Generate records req and returns the next scripted reply, or ctx.Err() if
// the context is already done.
func (m *MockModel) Generate(ctx context.Context, req identify.Request) (string, error) {
	m.mu.Lock()
	m.calls = append(m.calls, copyRequest(req))
	fn := m.ReplyFunc
	var reply Reply
	switch {
	case fn != nil:
	case len(m.replies) == 0:
		reply = Reply{Err: errors.New("mock model: no replies scripted")}
	case len(m.replies) == 1:
		reply = m.replies[0]
	default:
		reply = m.replies[0]
		m.replies = m.replies[1:]
	}
	m.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return "", err
	}
	if fn != nil {
		return fn(req)
	}
	return reply.Text, reply.Err
}

// Calls returns the requests received so far.
func (m *MockModel) Calls() []identify.Request {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]identify.Request, len(m.calls))
	copy(out, m.calls)
	return out
}

// CallCount returns the number of Generate calls.
func (m *MockModel) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.calls)
}

func copyRequest(req identify.Request) identify.Request {
	req.Image.Data = bytes.Clone(req.Image.Data)
	return req
}

// FakeJPEG returns size bytes that start with a JPEG SOI marker, enough for
// MIME sniffing. fill distinguishes images in tests.
func FakeJPEG(size int, fill byte) []byte {
	if size < 4 {
		size = 4
	}
	data := bytes.Repeat([]byte{fill}, size)
	copy(data, []byte{0xFF, 0xD8, 0xFF, 0xE0})
	return data
}
