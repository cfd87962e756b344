package rpc

import (
	"context"
	"encoding/json"
	"fmt"

	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/danielpatrickdp/math-mentor/internal/pipeline"
)

// #region types
// RetrieveResult holds the response from a Retrieve RPC call.
type RetrieveResult struct {
	Context  []string `json:"context"`
	CacheHit bool     `json:"cache_hit"`
	Reason   string   `json:"reason"`
}

// #endregion types

// #region client-struct
// MentorClient wraps a gRPC connection to a mentor server.
type MentorClient struct {
	conn *grpc.ClientConn
	cc   grpc.ClientConnInterface
}

// #endregion client-struct

// #region constructor
// NewMentorClient connects to the mentor gRPC server at addr.
func NewMentorClient(addr string, opts ...grpc.DialOption) (*MentorClient, error) {
	opts = append([]grpc.DialOption{grpc.WithTransportCredentials(insecure.NewCredentials())}, opts...)
	conn, err := grpc.NewClient(addr, opts...)
	if err != nil {
		return nil, fmt.Errorf("grpc dial %s: %w", addr, err)
	}
	return &MentorClient{conn: conn, cc: conn}, nil
}

// NewMentorClientWithConn creates a MentorClient over an existing
// connection. Close is then a no-op.
func NewMentorClientWithConn(cc grpc.ClientConnInterface) *MentorClient {
	return &MentorClient{cc: cc}
}

// Close shuts down the gRPC connection.
func (c *MentorClient) Close() error {
	if c.conn == nil {
		return nil
	}
	return c.conn.Close()
}

// #endregion constructor

// #region calls
// Parse starts a session for problem.
func (c *MentorClient) Parse(ctx context.Context, problem string) (*pipeline.Session, error) {
	var s pipeline.Session
	if err := c.call(ctx, MethodParse, map[string]any{"problem": problem}, &s); err != nil {
		return nil, err
	}
	return &s, nil
}

// Solve runs problem end to end in a new session.
func (c *MentorClient) Solve(ctx context.Context, problem string) (*pipeline.Session, error) {
	var s pipeline.Session
	if err := c.call(ctx, MethodSolve, map[string]any{"problem": problem}, &s); err != nil {
		return nil, err
	}
	return &s, nil
}

// SolveSession continues a parsed session.
func (c *MentorClient) SolveSession(ctx context.Context, sessionID string) (*pipeline.Session, error) {
	var s pipeline.Session
	if err := c.call(ctx, MethodSolve, map[string]any{"session_id": sessionID}, &s); err != nil {
		return nil, err
	}
	return &s, nil
}

// Retrieve queries context documents. k <= 0 uses the server default.
func (c *MentorClient) Retrieve(ctx context.Context, problem string, k int) (RetrieveResult, error) {
	var r RetrieveResult
	err := c.call(ctx, MethodRetrieve, map[string]any{"problem": problem, "k": k}, &r)
	return r, err
}

// Approve sends the human decision for a session.
func (c *MentorClient) Approve(ctx context.Context, sessionID, correction string) (*pipeline.Session, error) {
	var s pipeline.Session
	req := map[string]any{"session_id": sessionID, "correction": correction}
	if err := c.call(ctx, MethodApprove, req, &s); err != nil {
		return nil, err
	}
	return &s, nil
}

func (c *MentorClient) call(ctx context.Context, method string, req map[string]any, out any) error {
	in, err := structpb.NewStruct(req)
	if err != nil {
		return fmt.Errorf("%s request: %w", method, err)
	}
	resp := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, fullMethod(method), in, resp); err != nil {
		return fmt.Errorf("%s rpc: %w", method, err)
	}
	b, err := json.Marshal(resp.AsMap())
	if err != nil {
		return fmt.Errorf("%s response: %w", method, err)
	}
	if err := json.Unmarshal(b, out); err != nil {
		return fmt.Errorf("%s response: %w", method, err)
	}
	return nil
}

// #endregion calls
