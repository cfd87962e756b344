package rpc

import (
	"context"
	"net"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/status"
	"google.golang.org/grpc/test/bufconn"

	"github.com/danielpatrickdp/math-mentor/internal/pipeline"
	"github.com/danielpatrickdp/math-mentor/internal/retrieval"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

// #region harness
func startServer(t *testing.T) *MentorClient {
	t.Helper()
	return startServerWithCapacity(t, 0)
}

func startServerWithCapacity(t *testing.T, maxSessions int) *MentorClient {
	t.Helper()
	docs := []retrieval.Document{
		{Name: "a.txt", Text: "Quadratic equations have two roots."},
		{Name: "b.txt", Text: "Limits describe behavior near a point."},
	}
	r, err := retrieval.NewRetriever(docs, retrieval.DefaultConfig(), nil)
	require.NoError(t, err)
	p, err := pipeline.New(pipeline.Options{Retriever: r})
	require.NoError(t, err)

	lis := bufconn.Listen(1 << 20)
	gs := NewGRPCServer(NewServer(p, nil, maxSessions))
	go gs.Serve(lis)

	conn, err := grpc.NewClient("passthrough:///bufnet",
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) {
			return lis.DialContext(ctx)
		}),
		grpc.WithTransportCredentials(insecure.NewCredentials()))
	require.NoError(t, err)

	t.Cleanup(func() {
		conn.Close()
		gs.Stop()
	})
	return NewMentorClientWithConn(conn)
}

// #endregion harness

// #region tests
func TestSolveRoundTrip(t *testing.T) {
	c := startServer(t)

	s, err := c.Solve(context.Background(), "x + 1 = 5")
	require.NoError(t, err)
	require.NotNil(t, s.Solution)
	assert.Equal(t, []string{"4"}, s.Solution.Solutions)
	assert.Equal(t, 0.9, s.Solution.Confidence)
	assert.True(t, s.Verification.Verified)
	assert.Equal(t, pipeline.StatusSolved, s.Status)
}

func TestParseThenSolveSession(t *testing.T) {
	c := startServer(t)
	ctx := context.Background()

	parsed, err := c.Parse(ctx, "limit of 1/x as x->0")
	require.NoError(t, err)
	assert.Nil(t, parsed.Solution)

	solved, err := c.SolveSession(ctx, parsed.ID)
	require.NoError(t, err)
	assert.Equal(t, parsed.ID, solved.ID)
	assert.Equal(t, "oo", solved.Solution.Answer)
}

func TestRetrieve(t *testing.T) {
	c := startServer(t)

	res, err := c.Retrieve(context.Background(), "quadratic roots", 1)
	require.NoError(t, err)
	assert.Equal(t, []string{"Quadratic equations have two roots."}, res.Context)
}

func TestApproveCorrection(t *testing.T) {
	c := startServer(t)
	ctx := context.Background()

	s, err := c.Solve(ctx, "x + y = 3")
	require.NoError(t, err)
	assert.Equal(t, pipeline.StatusNeedsReview, s.Status)

	approved, err := c.Approve(ctx, s.ID, "x + 2 = 3")
	require.NoError(t, err)
	assert.Equal(t, "corrected: x + 2 = 3", approved.Feedback)
	assert.Equal(t, []string{"1"}, approved.Solution.Solutions)
}

func TestSessionsEvictLeastRecentlyUsed(t *testing.T) {
	c := startServerWithCapacity(t, 2)
	ctx := context.Background()

	first, err := c.Parse(ctx, "x + 1 = 5")
	require.NoError(t, err)
	second, err := c.Parse(ctx, "x + 2 = 5")
	require.NoError(t, err)

	// touch the first so the second is the oldest
	_, err = c.SolveSession(ctx, first.ID)
	require.NoError(t, err)
	_, err = c.Parse(ctx, "x + 3 = 5")
	require.NoError(t, err)

	_, err = c.SolveSession(ctx, second.ID)
	assert.Equal(t, codes.NotFound, status.Code(err))
	solved, err := c.SolveSession(ctx, first.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"4"}, solved.Solution.Solutions)
}

func TestErrors(t *testing.T) {
	c := startServer(t)
	ctx := context.Background()

	_, err := c.Parse(ctx, "")
	assert.Equal(t, codes.InvalidArgument, status.Code(err))

	_, err = c.Approve(ctx, "missing", "")
	assert.Equal(t, codes.NotFound, status.Code(err))
}

// #endregion tests
