//nolint:revive,nolintlint // Package name "common" is intentional for shared helpers.
package common

import (
	"context"
	"errors"
	"fmt"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/metadata"
	"google.golang.org/protobuf/types/known/emptypb"

	"github.com/oshokin/webkit-proxy/internal/config"
	"github.com/oshokin/webkit-proxy/internal/domain/proxy"
	pb "github.com/oshokin/webkit-proxy/internal/pb/v1"
)

// Client wraps the gRPC ProxyService client with convenience helpers.
type Client struct {
	// conn is the underlying gRPC connection to webkit-proxy-server.
	conn *grpc.ClientConn
	// api is the ProxyService client interface.
	api pb.ProxyServiceClient

	// callTimeout is the default timeout for individual RPC calls.
	callTimeout time.Duration
	// actor is sent as metadata with every call when set.
	actor *Actor
}

// Option configures client behaviour.
type Option func(*Client)

// WithCallTimeout sets a default timeout for service calls.
func WithCallTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		if timeout > 0 {
			c.callTimeout = timeout
		}
	}
}

// WithActor attaches the calling actor to every request.
func WithActor(actor *Actor) Option {
	return func(c *Client) {
		c.actor = actor
	}
}

// errAddressRequired is returned when a required address value is missing.
var errAddressRequired = errors.New("address must be provided")

// Dial establishes a gRPC connection to webkit-proxy-server.
// The daemon listens on loopback by default, so transport is insecure.
func Dial(_ context.Context, address string, opts ...Option) (*Client, error) {
	if address == "" {
		return nil, errAddressRequired
	}

	conn, err := grpc.NewClient(address, grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		return nil, fmt.Errorf("dial proxy server: %w", err)
	}

	client := &Client{
		conn:        conn,
		api:         pb.NewProxyServiceClient(conn),
		callTimeout: config.DefaultTimeout,
	}

	for _, opt := range opts {
		opt(client)
	}

	return client, nil
}

// Close releases the underlying gRPC connection.
func (c *Client) Close() error {
	if c == nil || c.conn == nil {
		return nil
	}

	return c.conn.Close()
}

// Start asks the daemon to launch the proxy.
func (c *Client) Start(ctx context.Context) (*proxy.State, error) {
	callCtx, cancel := c.callContext(ctx)
	defer cancel()

	response, err := c.api.Start(callCtx, new(emptypb.Empty))
	if err != nil {
		return nil, fmt.Errorf("start proxy: %w", err)
	}

	return pb.StateFromStruct(response), nil
}

// Stop asks the daemon to interrupt the proxy.
func (c *Client) Stop(ctx context.Context) (*proxy.State, error) {
	callCtx, cancel := c.callContext(ctx)
	defer cancel()

	response, err := c.api.Stop(callCtx, new(emptypb.Empty))
	if err != nil {
		return nil, fmt.Errorf("stop proxy: %w", err)
	}

	return pb.StateFromStruct(response), nil
}

// Status retrieves the supervised proxy state.
func (c *Client) Status(ctx context.Context) (*proxy.State, error) {
	callCtx, cancel := c.callContext(ctx)
	defer cancel()

	response, err := c.api.Status(callCtx, new(emptypb.Empty))
	if err != nil {
		return nil, fmt.Errorf("get proxy status: %w", err)
	}

	return pb.StateFromStruct(response), nil
}

// callContext returns a context with the client's call timeout if configured,
// otherwise a cancellable child context without a deadline.
func (c *Client) callContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if c.actor != nil {
		ctx = metadata.AppendToOutgoingContext(ctx, ActorMetadataKey, c.actor.String())
	}

	if c.callTimeout <= 0 {
		return context.WithCancel(ctx)
	}

	return context.WithTimeout(ctx, c.callTimeout)
}
