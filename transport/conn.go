package transport

import (
	"bufio"
	"context"
	"crypto/tls"
	"fmt"
	"io"
	"net"
	"runtime"
	"sync"
	"time"

	"github.com/scylla-go/cqldriver/frame"
	"github.com/scylla-go/cqldriver/frame/request"
	"github.com/scylla-go/cqldriver/frame/response"
)

// decodedResponse is what a connReader hands back to whoever is
// waiting on a stream id: either a parsed body or the error that
// stopped decoding.
type decodedResponse struct {
	frame.Header
	frame.Response
	Tracing  *frame.UUID
	Warnings frame.StringList
	Err      error
}

type responseHandler chan decodedResponse

type outgoingRequest struct {
	frame.Request
	StreamID frame.StreamID
	Tracing  bool
	Handler  responseHandler
}

type connWriter struct {
	conn      io.Writer
	buf       frame.Buffer
	requestCh chan outgoingRequest
	compress  func() frame.Compressor
}

func (w *connWriter) submit(r outgoingRequest) {
	w.requestCh <- r
}

func (w *connWriter) loop() {
	runtime.LockOSThread()
	for r := range w.requestCh {
		if err := w.send(r); err != nil {
			r.Handler <- decodedResponse{Err: fmt.Errorf("send: %w", err)}
		}
	}
}

func (w *connWriter) send(r outgoingRequest) error {
	encoded, err := frame.EncodeRequest(r.Request, r.StreamID, w.compress(), r.Tracing)
	if err != nil {
		return err
	}
	w.buf.Reset()
	w.buf.Write(encoded)
	_, err = frame.CopyBuffer(&w.buf, w.conn)
	return err
}

type connReader struct {
	conn io.Reader
	buf  frame.Buffer
	bufw io.Writer

	compress func() frame.Compressor

	mu sync.Mutex
	h  map[frame.StreamID]responseHandler
	s  streamIDAllocator

	events EventChan // non-nil once an event listener is registered
}

// EventChan delivers server-initiated EVENT bodies after a REGISTER
// call (§4.8). The sender closes it if the connection dies.
type EventChan chan response.ServerEvent

func (r *connReader) setHandler(h responseHandler) (frame.StreamID, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	id, err := r.s.Alloc()
	if err != nil {
		return 0, fmt.Errorf("stream id alloc: %w", err)
	}
	r.h[id] = h
	return id, nil
}

func (r *connReader) freeHandler(id frame.StreamID) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.s.Free(id)
	delete(r.h, id)
}

func (r *connReader) handler(id frame.StreamID) responseHandler {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.h[id]
}

func (r *connReader) setEventHandler(h EventChan) {
	r.mu.Lock()
	r.events = h
	r.mu.Unlock()
}

func (r *connReader) eventHandler() EventChan {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.events
}

// loop reads frames until the underlying connection is closed, at which
// point every handler registered at that moment is notified with the
// closing error and the event channel, if any, is closed.
func (r *connReader) loop() {
	runtime.LockOSThread()
	r.bufw = frame.BufferWriter(&r.buf)

	for {
		resp := r.recv()
		if resp.Err != nil {
			r.drain(resp.Err)
			return
		}
		if resp.StreamID == frame.ServerInitiatedStream {
			if ev, ok := resp.Response.(response.ServerEvent); ok {
				if h := r.eventHandler(); h != nil {
					h <- ev
				}
			}
			continue
		}
		if h := r.handler(resp.StreamID); h != nil {
			h <- resp
		}
	}
}

// drain notifies every pending handler of a fatal connection error.
func (r *connReader) drain(err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for id, h := range r.h {
		h <- decodedResponse{Err: err}
		delete(r.h, id)
	}
	if r.events != nil {
		close(r.events)
		r.events = nil
	}
}

func (r *connReader) recv() decodedResponse {
	r.buf.Reset()

	var out decodedResponse
	if _, err := io.CopyN(r.bufw, r.conn, frame.HeaderSize); err != nil {
		out.Err = fmt.Errorf("read header: %w", err)
		return out
	}
	out.Header = frame.ParseHeader(&r.buf)
	if err := r.buf.Error(); err != nil {
		out.Err = fmt.Errorf("parse header: %w", err)
		return out
	}
	if err := checkLength(out.Header.Length); err != nil {
		out.Err = err
		return out
	}

	body := make([]byte, out.Header.Length)
	if _, err := io.ReadFull(r.conn, body); err != nil {
		out.Err = fmt.Errorf("read body: %w", err)
		return out
	}

	decoded, err := frame.DecodeResponseBody(out.Header, body, r.compress())
	if err != nil {
		out.Err = fmt.Errorf("decode body: %w", err)
		return out
	}
	out.Tracing = decoded.Tracing
	out.Warnings = decoded.Warnings

	var payload frame.Buffer
	payload.Write(decoded.Payload)
	out.Response, err = parseBody(out.Header.OpCode, &payload)
	if err != nil {
		out.Err = fmt.Errorf("parse %s body: %w", out.Header.OpCode, err)
	}
	return out
}

func parseBody(op frame.OpCode, b *frame.Buffer) (frame.Response, error) {
	var resp frame.Response
	switch op {
	case frame.OpError:
		resp = response.ParseError(b)
	case frame.OpReady:
		resp = response.ParseReady(b)
	case frame.OpAuthenticate:
		resp = response.ParseAuthenticate(b)
	case frame.OpAuthChallenge:
		resp = response.ParseAuthChallenge(b)
	case frame.OpAuthSuccess:
		resp = response.ParseAuthSuccess(b)
	case frame.OpSupported:
		resp = response.ParseSupported(b)
	case frame.OpResult:
		resp = response.ParseResult(b)
	case frame.OpEvent:
		resp = response.ParseEvent(b)
	default:
		return nil, fmt.Errorf("%w: unsupported opcode %s", frame.ErrProtocol, op)
	}
	if err := b.Error(); err != nil {
		return nil, err
	}
	return resp, nil
}

// Conn is a single multiplexed connection to one node: a writer
// goroutine drains an outgoing queue while a reader goroutine dispatches
// incoming frames to whichever stream id is waiting for them (§4 "Connection").
type Conn struct {
	conn StreamConn
	w    connWriter
	r    connReader

	compressor frame.Compressor
	keyspace   string

	closeOnce sync.Once
}

// ConnConfig configures dialing and the STARTUP handshake for a Conn.
type ConnConfig struct {
	TCPNoDelay    bool
	Timeout       time.Duration
	TLSConfig     *tls.Config
	Keyspace      string
	Compression   string // "", "lz4", or "snappy"
	Authenticator Authenticator
}

// DefaultConnConfig mirrors the defaults a Session without further
// configuration would use.
func DefaultConnConfig(keyspace string) ConnConfig {
	return ConnConfig{
		TCPNoDelay: true,
		Timeout:    10 * time.Second,
		Keyspace:   keyspace,
	}
}

const (
	requestChanSize = 256
	ioBufferSize    = 8192
)

// Dial opens a TCP (optionally TLS) connection to addr and performs the
// CQL handshake described in §4.7.
func Dial(ctx context.Context, addr string, cfg ConnConfig) (*Conn, error) {
	d := net.Dialer{Timeout: cfg.Timeout}
	tcpConn, err := d.DialContext(ctx, "tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("dialing %s: %w", addr, err)
	}
	if tc, ok := tcpConn.(*net.TCPConn); ok {
		if err := tc.SetNoDelay(cfg.TCPNoDelay); err != nil {
			return nil, fmt.Errorf("setting TCP no delay: %w", err)
		}
	}

	stream, err := maybeWrapTLS(tcpConn, cfg.TLSConfig)
	if err != nil {
		_ = tcpConn.Close()
		return nil, fmt.Errorf("TLS handshake: %w", err)
	}

	conn := wrapConn(stream, cfg.Compression)
	if err := conn.handshake(ctx, cfg); err != nil {
		conn.Close()
		return nil, err
	}
	conn.keyspace = cfg.Keyspace
	return conn, nil
}

func wrapConn(stream StreamConn, compression string) *Conn {
	c := &Conn{
		conn: stream,
	}
	c.w = connWriter{
		conn:      stream,
		requestCh: make(chan outgoingRequest, requestChanSize),
		compress:  func() frame.Compressor { return c.compressor },
	}
	c.r = connReader{
		conn:     bufio.NewReaderSize(stream, ioBufferSize),
		h:        make(map[frame.StreamID]responseHandler),
		s:        newStreamIDAllocator(),
		compress: func() frame.Compressor { return c.compressor },
	}

	go c.w.loop()
	go c.r.loop()
	return c
}

func newCompressor(name string) (frame.Compressor, error) {
	switch name {
	case "":
		return nil, nil
	case "lz4":
		return frame.LZ4Compressor{}, nil
	case "snappy":
		return frame.SnappyCompressor{}, nil
	default:
		return nil, fmt.Errorf("transport: unknown compression algorithm %q", name)
	}
}

func (c *Conn) handshake(ctx context.Context, cfg ConnConfig) error {
	resp, err := c.sendRequest(ctx, request.NewStartup(cfg.Compression), false)
	if err != nil {
		return fmt.Errorf("startup: %w", err)
	}

	switch r := resp.Response.(type) {
	case *response.Ready:
		return c.negotiateCompression(cfg.Compression)
	case *response.Authenticate:
		if cfg.Authenticator == nil {
			return fmt.Errorf("transport: server requires authentication (%s) but no Authenticator configured", r.Class)
		}
		if cls := cfg.Authenticator.Class(); cls != r.Class {
			return fmt.Errorf("transport: server authenticator %s does not match configured %q", r.Class, cls)
		}
		if err := c.authenticate(ctx, cfg.Authenticator); err != nil {
			return err
		}
		return c.negotiateCompression(cfg.Compression)
	default:
		return fmt.Errorf("transport: unexpected handshake response %T", resp.Response)
	}
}

// negotiateCompression is called once STARTUP has succeeded: everything
// from here on may legally be compressed, so the connection's
// compressor becomes active.
func (c *Conn) negotiateCompression(name string) error {
	comp, err := newCompressor(name)
	if err != nil {
		return err
	}
	c.compressor = comp
	return nil
}

func (c *Conn) authenticate(ctx context.Context, auth Authenticator) error {
	token, err := auth.Token(nil)
	if err != nil {
		return fmt.Errorf("building auth token: %w", err)
	}

	for {
		resp, err := c.sendRequest(ctx, &request.AuthResponse{Token: token}, false)
		if err != nil {
			return fmt.Errorf("auth response: %w", err)
		}
		switch r := resp.Response.(type) {
		case *response.AuthSuccess:
			return nil
		case *response.AuthChallenge:
			token, err = auth.Token(r.Token)
			if err != nil {
				return fmt.Errorf("building auth token: %w", err)
			}
		default:
			return fmt.Errorf("transport: unexpected auth response %T", resp.Response)
		}
	}
}

// Close unblocks the writer and reader goroutines and releases the
// underlying stream. It is safe to call more than once.
func (c *Conn) Close() error {
	var err error
	c.closeOnce.Do(func() {
		close(c.w.requestCh)
		err = c.conn.Close()
	})
	return err
}

// InFlight reports how many streams are currently awaiting a response
// on this connection; pools use it to pick the least busy connection.
func (c *Conn) InFlight() int {
	c.r.mu.Lock()
	defer c.r.mu.Unlock()
	return c.r.s.InUse()
}

// sendRequest writes req and blocks for its matching response, or for
// ctx's cancellation, whichever comes first.
func (c *Conn) sendRequest(ctx context.Context, req frame.Request, tracing bool) (decodedResponse, error) {
	h := make(responseHandler, 1)
	streamID, err := c.r.setHandler(h)
	if err != nil {
		return decodedResponse{}, err
	}
	defer c.r.freeHandler(streamID)

	c.w.submit(outgoingRequest{Request: req, StreamID: streamID, Tracing: tracing, Handler: h})

	select {
	case resp := <-h:
		return resp, resp.Err
	case <-ctx.Done():
		return decodedResponse{}, ctx.Err()
	}
}

// QueryResult pairs a parsed RESULT body with the tracing id and
// warnings the response carried, when tracing was requested (§4.9).
type QueryResult struct {
	response.Result
	Tracing  *frame.UUID
	Warnings frame.StringList
}

// Query executes content with the given bind parameters (§4.9 "Query").
func (c *Conn) Query(ctx context.Context, content string, params request.QueryParams, tracing bool) (QueryResult, error) {
	resp, err := c.sendRequest(ctx, &request.Query{Content: content, Params: params}, tracing)
	if err != nil {
		return QueryResult{}, err
	}
	return c.asResult(resp)
}

// Prepare registers content as a prepared statement (§4.9 "Prepare").
func (c *Conn) Prepare(ctx context.Context, content string, tracing bool) (*response.Prepared, error) {
	resp, err := c.sendRequest(ctx, &request.Prepare{Content: content}, tracing)
	if err != nil {
		return nil, err
	}
	p, ok := resp.Response.(*response.Prepared)
	if !ok {
		if cerr, ok := resp.Response.(response.CodedError); ok {
			return nil, cerr
		}
		return nil, fmt.Errorf("transport: unexpected PREPARE response %T", resp.Response)
	}
	return p, nil
}

// Execute runs a previously prepared statement identified by id (§4.9 "Execute").
func (c *Conn) Execute(ctx context.Context, id []byte, params request.QueryParams, tracing bool) (QueryResult, error) {
	resp, err := c.sendRequest(ctx, &request.Execute{ID: id, Params: params}, tracing)
	if err != nil {
		return QueryResult{}, err
	}
	return c.asResult(resp)
}

// Batch submits a BATCH request composing multiple statements (§4.9 "Batch").
func (c *Conn) Batch(ctx context.Context, b *request.Batch, tracing bool) (QueryResult, error) {
	resp, err := c.sendRequest(ctx, b, tracing)
	if err != nil {
		return QueryResult{}, err
	}
	return c.asResult(resp)
}

// Options probes the server's advertised option values; pools use it as
// a lightweight health check (§6 "Pool").
func (c *Conn) Options(ctx context.Context) (*response.Supported, error) {
	resp, err := c.sendRequest(ctx, &request.Options{}, false)
	if err != nil {
		return nil, err
	}
	s, ok := resp.Response.(*response.Supported)
	if !ok {
		return nil, fmt.Errorf("transport: unexpected OPTIONS response %T", resp.Response)
	}
	return s, nil
}

// Register subscribes the connection to the named server event types;
// matching EVENT frames subsequently arrive on stream -1 and are
// delivered to h (§4.8).
func (c *Conn) Register(ctx context.Context, events frame.StringList, h EventChan) error {
	c.r.setEventHandler(h)
	resp, err := c.sendRequest(ctx, &request.Register{Events: events}, false)
	if err != nil {
		return err
	}
	if _, ok := resp.Response.(*response.Ready); !ok {
		return fmt.Errorf("transport: unexpected REGISTER response %T", resp.Response)
	}
	return nil
}

func (c *Conn) asResult(resp decodedResponse) (QueryResult, error) {
	if r, ok := resp.Response.(response.Result); ok {
		return QueryResult{Result: r, Tracing: resp.Tracing, Warnings: resp.Warnings}, nil
	}
	if cerr, ok := resp.Response.(response.CodedError); ok {
		return QueryResult{}, cerr
	}
	return QueryResult{}, fmt.Errorf("transport: unexpected result response %T", resp.Response)
}

// discardLength is a guard against Length values implied by a corrupted
// frame header; a legitimate body never approaches it.
const discardLength = 256 << 20

func checkLength(l uint32) error {
	if l > discardLength {
		return fmt.Errorf("%w: implausible frame length %d", frame.ErrProtocol, l)
	}
	return nil
}
