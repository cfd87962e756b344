package rpc

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/danielpatrickdp/math-mentor/internal/pipeline"
)

// #region server-struct
type sessionEntry struct {
	mu      sync.Mutex
	session *pipeline.Session
}

// DefaultMaxSessions is the session capacity used when none is configured.
const DefaultMaxSessions = 1024

// Server implements MentorServer on a Pipeline. The most recently used
// sessions are kept in memory so Solve and Approve can continue them by ID;
// older ones are evicted.
type Server struct {
	pipeline *pipeline.Pipeline
	logger   *zap.Logger
	sessions *lru.Cache[string, *sessionEntry]
}

// NewServer creates a Server holding at most maxSessions sessions. A nil
// logger is a no-op and maxSessions < 1 means DefaultMaxSessions.
func NewServer(p *pipeline.Pipeline, logger *zap.Logger, maxSessions int) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	if maxSessions < 1 {
		maxSessions = DefaultMaxSessions
	}
	s := &Server{pipeline: p, logger: logger}
	// only fails for a non-positive size
	s.sessions, _ = lru.NewWithEvict(maxSessions, func(id string, _ *sessionEntry) {
		s.logger.Debug("session evicted", zap.String("session_id", id))
	})
	return s
}

// NewGRPCServer builds a grpc.Server with srv registered and request
// logging installed.
func NewGRPCServer(srv *Server, opts ...grpc.ServerOption) *grpc.Server {
	opts = append(opts, grpc.ChainUnaryInterceptor(logInterceptor(srv.logger)))
	gs := grpc.NewServer(opts...)
	RegisterMentorServer(gs, srv)
	return gs
}

// #endregion server-struct

// #region handlers
// Parse starts a session from "problem".
func (s *Server) Parse(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	problem, err := requireString(req, "problem")
	if err != nil {
		return nil, err
	}
	sess, err := s.pipeline.Parse(ctx, problem)
	if err != nil {
		return nil, toStatus(err)
	}
	s.store(sess)
	return encode(sess)
}

// Solve continues the session named by "session_id", or runs "problem"
// end to end in a new session.
func (s *Server) Solve(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	if id := stringField(req, "session_id"); id != "" {
		e, err := s.lookup(id)
		if err != nil {
			return nil, err
		}
		e.mu.Lock()
		defer e.mu.Unlock()
		if err := s.pipeline.Solve(ctx, e.session); err != nil {
			return nil, toStatus(err)
		}
		return encode(e.session)
	}

	problem, err := requireString(req, "problem")
	if err != nil {
		return nil, err
	}
	sess, err := s.pipeline.Run(ctx, problem)
	if err != nil {
		return nil, toStatus(err)
	}
	s.store(sess)
	return encode(sess)
}

// Retrieve returns the context documents for "problem", "k" at most.
func (s *Server) Retrieve(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	problem, err := requireString(req, "problem")
	if err != nil {
		return nil, err
	}
	k := 0
	if v, ok := req.GetFields()["k"]; ok {
		k = int(v.GetNumberValue())
	}
	res, err := s.pipeline.Retriever().Retrieve(ctx, problem, k)
	if err != nil {
		return nil, toStatus(err)
	}
	return encode(map[string]any{
		"context":   res.Texts(),
		"cache_hit": res.CacheHit,
		"reason":    res.Reason,
	})
}

// Approve records the human decision on "session_id". A non-empty
// "correction" replaces the problem and re-runs it.
func (s *Server) Approve(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	id, err := requireString(req, "session_id")
	if err != nil {
		return nil, err
	}
	e, err := s.lookup(id)
	if err != nil {
		return nil, err
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	if err := s.pipeline.Approve(ctx, e.session, stringField(req, "correction")); err != nil {
		return nil, toStatus(err)
	}
	return encode(e.session)
}

// #endregion handlers

// #region sessions
func (s *Server) store(sess *pipeline.Session) {
	s.sessions.Add(sess.ID, &sessionEntry{session: sess})
}

func (s *Server) lookup(id string) (*sessionEntry, error) {
	e, ok := s.sessions.Get(id)
	if !ok {
		return nil, status.Errorf(codes.NotFound, "session %s not found", id)
	}
	return e, nil
}

// #endregion sessions

// #region helpers
func stringField(req *structpb.Struct, key string) string {
	return req.GetFields()[key].GetStringValue()
}

func requireString(req *structpb.Struct, key string) (string, error) {
	v := stringField(req, key)
	if v == "" {
		return "", status.Errorf(codes.InvalidArgument, "%s is required", key)
	}
	return v, nil
}

// encode converts v to a Struct through its JSON form.
func encode(v any) (*structpb.Struct, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, status.Errorf(codes.Internal, "encode response: %v", err)
	}
	var m map[string]any
	if err := json.Unmarshal(b, &m); err != nil {
		return nil, status.Errorf(codes.Internal, "encode response: %v", err)
	}
	out, err := structpb.NewStruct(m)
	if err != nil {
		return nil, status.Errorf(codes.Internal, "encode response: %v", err)
	}
	return out, nil
}

func toStatus(err error) error {
	if st, ok := status.FromError(err); ok {
		return st.Err()
	}
	if code := status.FromContextError(err).Code(); code != codes.Unknown {
		return status.Error(code, err.Error())
	}
	return status.Error(codes.Internal, fmt.Sprint(err))
}

func logInterceptor(logger *zap.Logger) grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
		start := time.Now()
		resp, err := handler(ctx, req)
		logger.Info("rpc",
			zap.String("method", info.FullMethod),
			zap.String("code", status.Code(err).String()),
			zap.Duration("duration", time.Since(start)))
		return resp, err
	}
}

// #endregion helpers
