// Package jobtest provides an in-memory Zeebe gateway for exercising job
// handlers without a broker.
package jobtest

import (
	"context"
	"sync"

	"github.com/camunda/zeebe/clients/go/v8/pkg/commands"
	"github.com/camunda/zeebe/clients/go/v8/pkg/pb"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
	"google.golang.org/grpc"
)

// Call is one command received by the Gateway. CtxErr is the state of the
// request context when the command arrived.
type Call struct {
	Method       string
	JobKey       int64
	Retries      int32
	ErrorCode    string
	ErrorMessage string
	Variables    string
	CtxErr       error
}

// Gateway records complete, fail and throw-error commands and answers them
// with Err. Any other gateway call panics on the nil embedded client.
type Gateway struct {
	pb.GatewayClient

	Err error

	mu    sync.Mutex
	calls []Call
}

func (g *Gateway) record(ctx context.Context, c Call) {
	c.CtxErr = ctx.Err()
	g.mu.Lock()
	defer g.mu.Unlock()
	g.calls = append(g.calls, c)
}

func (g *Gateway) result() error {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.Err
}

// Calls returns a copy of the commands received so far.
func (g *Gateway) Calls() []Call {
	g.mu.Lock()
	defer g.mu.Unlock()
	return append([]Call(nil), g.calls...)
}

func (g *Gateway) CompleteJob(ctx context.Context, in *pb.CompleteJobRequest, _ ...grpc.CallOption) (*pb.CompleteJobResponse, error) {
	g.record(ctx, Call{Method: "CompleteJob", JobKey: in.JobKey, Variables: in.Variables})
	if err := g.result(); err != nil {
		return nil, err
	}
	return &pb.CompleteJobResponse{}, nil
}

func (g *Gateway) FailJob(ctx context.Context, in *pb.FailJobRequest, _ ...grpc.CallOption) (*pb.FailJobResponse, error) {
	g.record(ctx, Call{
		Method:       "FailJob",
		JobKey:       in.JobKey,
		Retries:      in.Retries,
		ErrorMessage: in.ErrorMessage,
		Variables:    in.Variables,
	})
	if err := g.result(); err != nil {
		return nil, err
	}
	return &pb.FailJobResponse{}, nil
}

func (g *Gateway) ThrowError(ctx context.Context, in *pb.ThrowErrorRequest, _ ...grpc.CallOption) (*pb.ThrowErrorResponse, error) {
	g.record(ctx, Call{
		Method:       "ThrowError",
		JobKey:       in.JobKey,
		ErrorCode:    in.ErrorCode,
		ErrorMessage: in.ErrorMessage,
		Variables:    in.Variables,
	})
	if err := g.result(); err != nil {
		return nil, err
	}
	return &pb.ThrowErrorResponse{}, nil
}

// Client is a worker.JobClient whose commands go to a Gateway.
type Client struct {
	Gateway *Gateway
}

var _ worker.JobClient = (*Client)(nil)

// NewClient returns a Client over a fresh Gateway.
func NewClient() *Client {
	return &Client{Gateway: &Gateway{}}
}

func noRetry(context.Context, error) bool { return false }

func (c *Client) NewCompleteJobCommand() commands.CompleteJobCommandStep1 {
	return commands.NewCompleteJobCommand(c.Gateway, noRetry)
}

func (c *Client) NewFailJobCommand() commands.FailJobCommandStep1 {
	return commands.NewFailJobCommand(c.Gateway, noRetry)
}

func (c *Client) NewThrowErrorCommand() commands.ThrowErrorCommandStep1 {
	return commands.NewThrowErrorCommand(c.Gateway, noRetry)
}
