package igdb

import (
	"context"
	"sync"
	"time"
)

type recordedRequest struct {
	Host    string
	Port    int
	Path    string
	Method  string
	Body    string
	Headers map[string]string
}

// fakeRequester records requests and answers them with respond.
type fakeRequester struct {
	mu       sync.Mutex
	requests []recordedRequest
	respond  func(n int, req recordedRequest) ([]byte, error)
}

func (f *fakeRequester) Request(
	ctx context.Context,
	host string,
	port int,
	path, method string,
	body []byte,
	headers map[string]string,
) ([]byte, error) {
	req := recordedRequest{Host: host, Port: port, Path: path, Method: method, Body: string(body), Headers: headers}

	f.mu.Lock()
	f.requests = append(f.requests, req)
	n := len(f.requests)
	f.mu.Unlock()

	return f.respond(n, req)
}

func (f *fakeRequester) calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.requests)
}

func (f *fakeRequester) last() recordedRequest {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.requests[len(f.requests)-1]
}

type fakeClock struct {
	mu  sync.Mutex
	now int64
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return time.Unix(c.now, 0)
}

func (c *fakeClock) advance(seconds int64) {
	c.mu.Lock()
	c.now += seconds
	c.mu.Unlock()
}
