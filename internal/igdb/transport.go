package igdb

import (
	"bufio"
	"bytes"
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"time"
)

const defaultUserAgent = "game-catalog/1.0"

// ErrTransport matches every *TransportError.
var ErrTransport = errors.New("transport failure")

// Requester performs a single HTTPS exchange and returns the response body.
type Requester interface {
	Request(ctx context.Context, host string, port int, path, method string, body []byte, headers map[string]string) ([]byte, error)
}

type TransportError struct {
	Op   string // resolve, dial, write, read
	Addr string
	Err  error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Op, e.Addr, e.Err)
}

func (e *TransportError) Unwrap() []error {
	return []error{ErrTransport, e.Err}
}

// StatusError is returned for a complete response with a non-2xx status.
type StatusError struct {
	StatusCode int
	Body       []byte
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("unexpected status: %d", e.StatusCode)
}

type TransportOption func(*Transport)

// WithTLSConfig sets the base TLS configuration. ServerName is always
// overwritten with the requested host.
func WithTLSConfig(cfg *tls.Config) TransportOption {
	return func(t *Transport) {
		t.tlsConfig = cfg
	}
}

func WithUserAgent(ua string) TransportOption {
	return func(t *Transport) {
		t.userAgent = ua
	}
}

// WithDialTimeout bounds connection establishment only.
func WithDialTimeout(d time.Duration) TransportOption {
	return func(t *Transport) {
		t.dialer.Timeout = d
	}
}

// Transport opens one TLS connection per request and closes it once the
// response body has been read.
type Transport struct {
	dialer    *net.Dialer
	tlsConfig *tls.Config
	userAgent string
	logger    *slog.Logger
}

func NewTransport(logger *slog.Logger, opts ...TransportOption) *Transport {
	t := &Transport{
		dialer:    &net.Dialer{},
		tlsConfig: &tls.Config{MinVersion: tls.VersionTLS12},
		userAgent: defaultUserAgent,
		logger:    logger.With("component", "transport"),
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

func (t *Transport) Request(
	ctx context.Context,
	host string,
	port int,
	path, method string,
	body []byte,
	headers map[string]string,
) ([]byte, error) {
	start := time.Now()
	addr := net.JoinHostPort(host, strconv.Itoa(port))

	tlsCfg := t.tlsConfig.Clone()
	tlsCfg.ServerName = host
	dialer := &tls.Dialer{NetDialer: t.dialer, Config: tlsCfg}

	conn, err := dialer.DialContext(ctx, "tcp", addr)
	if err != nil {
		return nil, &TransportError{Op: dialOp(err), Addr: addr, Err: err}
	}
	defer conn.Close()

	// Unblocks pending reads and writes once the caller gives up.
	stop := context.AfterFunc(ctx, func() { _ = conn.Close() })
	defer stop()

	req, err := t.newRequest(ctx, host, port, path, method, body, headers)
	if err != nil {
		return nil, &TransportError{Op: "write", Addr: addr, Err: err}
	}

	if err := req.Write(conn); err != nil {
		return nil, &TransportError{Op: "write", Addr: addr, Err: causeOf(ctx, err)}
	}

	resp, err := http.ReadResponse(bufio.NewReader(conn), req)
	if err != nil {
		return nil, &TransportError{Op: "read", Addr: addr, Err: causeOf(ctx, err)}
	}
	defer resp.Body.Close()

	payload, err := io.ReadAll(resp.Body)
	if err != nil && !truncatedAtClose(resp, err) {
		return nil, &TransportError{Op: "read", Addr: addr, Err: causeOf(ctx, err)}
	}

	t.logger.Debug("request completed",
		"host", host,
		"path", path,
		"status", resp.StatusCode,
		"bytes", len(payload),
		"duration", time.Since(start),
	)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &StatusError{StatusCode: resp.StatusCode, Body: payload}
	}

	return payload, nil
}

func (t *Transport) newRequest(
	ctx context.Context,
	host string,
	port int,
	path, method string,
	body []byte,
	headers map[string]string,
) (*http.Request, error) {
	var reader io.Reader
	if len(body) > 0 {
		reader = bytes.NewReader(body)
	}

	req, err := http.NewRequestWithContext(ctx, method, "https://"+net.JoinHostPort(host, strconv.Itoa(port))+path, reader)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}

	req.Host = host
	if port != 443 {
		req.Host = net.JoinHostPort(host, strconv.Itoa(port))
	}
	req.Close = true
	req.Header.Set("User-Agent", t.userAgent)
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	if len(body) > 0 && req.Header.Get("Content-Type") == "" {
		req.Header.Set("Content-Type", "application/json")
	}

	return req, nil
}

func dialOp(err error) string {
	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		return "resolve"
	}
	return "dial"
}

func causeOf(ctx context.Context, err error) error {
	if ctxErr := ctx.Err(); ctxErr != nil {
		return ctxErr
	}
	return err
}

// truncatedAtClose reports a close-delimited body whose peer dropped the
// connection without a TLS close_notify.
func truncatedAtClose(resp *http.Response, err error) bool {
	return errors.Is(err, io.ErrUnexpectedEOF) &&
		resp.ContentLength < 0 &&
		len(resp.TransferEncoding) == 0
}
