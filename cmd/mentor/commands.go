package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/danielpatrickdp/math-mentor/internal/metrics"
	"github.com/danielpatrickdp/math-mentor/internal/pipeline"
	"github.com/danielpatrickdp/math-mentor/internal/rpc"
)

var (
	jsonOut    bool
	remoteAddr string
	retrieveK  int
	historyN   int
)

// #region solve
var solveCmd = &cobra.Command{
	Use:   "solve [problem]",
	Short: "Solve one problem end to end",
	Long: `Runs the problem through the full pipeline and prints the steps,
the answer and the verification result. With --addr the problem is sent to
a running "mentor serve" instead of the local pipeline.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := context.WithTimeout(cmd.Context(), turnTimeout)
		defer cancel()
		problem := strings.Join(args, " ")

		var (
			s   *pipeline.Session
			err error
		)
		if remoteAddr != "" {
			s, err = solveRemote(ctx, remoteAddr, problem)
		} else {
			s, err = mentor.Run(ctx, problem)
		}
		if err != nil {
			return err
		}
		return output(cmd.OutOrStdout(), s)
	},
}

func solveRemote(ctx context.Context, addr, problem string) (*pipeline.Session, error) {
	client, err := rpc.NewMentorClient(addr)
	if err != nil {
		return nil, err
	}
	defer client.Close()
	return client.Solve(ctx, problem)
}

// #endregion solve

// #region parse
var parseCmd = &cobra.Command{
	Use:   "parse [problem]",
	Short: "Parse, route and retrieve context without solving",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := mentor.Parse(cmd.Context(), strings.Join(args, " "))
		if err != nil {
			return err
		}
		if jsonOut {
			return printJSON(cmd.OutOrStdout(), s)
		}
		w := cmd.OutOrStdout()
		fmt.Fprintf(w, "Problem:    %s\n", s.Parsed.ProblemText)
		fmt.Fprintf(w, "Topic:      %s\n", s.Parsed.Topic)
		fmt.Fprintf(w, "Task:       %s\n", s.Parsed.Task)
		fmt.Fprintf(w, "Variables:  %s\n", strings.Join(s.Parsed.Variables, ", "))
		fmt.Fprintf(w, "Route:      %s (%.2f)\n", s.Route.Route, s.Route.Confidence)
		fmt.Fprintf(w, "Context:    %d documents\n", len(s.Context))
		if s.NeedsHuman() {
			fmt.Fprintf(w, "Needs clarification: %s\n", s.Gate.Reason)
		}
		return nil
	},
}

// #endregion parse

// #region retrieve
var retrieveCmd = &cobra.Command{
	Use:   "retrieve [query]",
	Short: "Show the reference documents closest to a query",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		res, err := mentor.Retriever().Retrieve(cmd.Context(), strings.Join(args, " "), retrieveK)
		if err != nil {
			return err
		}
		if jsonOut {
			return printJSON(cmd.OutOrStdout(), res)
		}
		w := cmd.OutOrStdout()
		fmt.Fprintf(w, "%-24s  %6s  %s\n", "Document", "Score", "Text")
		fmt.Fprintf(w, "%-24s+-%6s+-%s\n", "------------------------", "------", "--------------------")
		for _, e := range res.Retrieved {
			fmt.Fprintf(w, "%-24s  %6.3f  %s\n", e.ID, e.Score, firstLine(e.Text))
		}
		fmt.Fprintf(w, "\n%s\n", res.Reason)
		return nil
	},
}

func firstLine(s string) string {
	line, _, _ := strings.Cut(strings.TrimSpace(s), "\n")
	if len(line) > 60 {
		return line[:57] + "..."
	}
	return line
}

// #endregion retrieve

// #region serve
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the mentor pipeline over gRPC",
	Long: `Starts the MentorService gRPC server on server.listen. When
server.metrics_listen is set, Prometheus metrics are exposed there under
/metrics. SIGINT or SIGTERM stops both listeners.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()
		return serve(ctx)
	},
}

func serve(ctx context.Context) error {
	lis, err := net.Listen("tcp", cfg.Server.Listen)
	if err != nil {
		return fmt.Errorf("listen %s: %w", cfg.Server.Listen, err)
	}
	gs := rpc.NewGRPCServer(rpc.NewServer(mentor, logger, cfg.Server.MaxSessions))

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("grpc listening", zap.String("addr", lis.Addr().String()))
		return gs.Serve(lis)
	})

	var hs *http.Server
	if cfg.Server.MetricsListen != "" {
		mux := http.NewServeMux()
		mux.Handle("/metrics", metrics.Handler())
		hs = &http.Server{Addr: cfg.Server.MetricsListen, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
		g.Go(func() error {
			logger.Info("metrics listening", zap.String("addr", hs.Addr))
			if err := hs.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
				return err
			}
			return nil
		})
	}

	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down")
		gs.GracefulStop()
		if hs != nil {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			return hs.Shutdown(shutdownCtx)
		}
		return nil
	})
	return g.Wait()
}

// #endregion serve

// #region history
var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List the most recent solved problems",
	RunE: func(cmd *cobra.Command, args []string) error {
		records, err := store.List(historyN)
		if err != nil {
			return err
		}
		if jsonOut {
			return printJSON(cmd.OutOrStdout(), records)
		}
		w := cmd.OutOrStdout()
		if len(records) == 0 {
			fmt.Fprintln(w, "no records found")
			return nil
		}
		fmt.Fprintf(w, "%-10s  %-12s  %-20s  %5s  %-10s  %s\n", "ID", "Topic", "Answer", "Conf", "Feedback", "Problem")
		for _, r := range records {
			feedback := "-"
			if r.Feedback != nil {
				feedback, _, _ = strings.Cut(*r.Feedback, ":")
			}
			fmt.Fprintf(w, "%-10s  %-12s  %-20s  %5.2f  %-10s  %s\n",
				shortID(r.ID), r.Topic, r.Answer, r.Confidence, feedback, r.Problem)
		}
		return nil
	},
}

// #endregion history

// #region output
func output(w io.Writer, s *pipeline.Session) error {
	if jsonOut {
		return printJSON(w, s)
	}
	printSession(w, s)
	return nil
}

func printJSON(w io.Writer, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal json: %w", err)
	}
	fmt.Fprintln(w, string(data))
	return nil
}

// #endregion output

func init() {
	for _, c := range []*cobra.Command{solveCmd, parseCmd, retrieveCmd, historyCmd} {
		c.Flags().BoolVar(&jsonOut, "json", false, "output as JSON")
	}
	solveCmd.Flags().StringVar(&remoteAddr, "addr", "", "send the problem to a mentor server at this address")
	retrieveCmd.Flags().IntVar(&retrieveK, "k", 0, "documents to return (0 uses retrieval.top_k)")
	historyCmd.Flags().IntVar(&historyN, "last", 20, "show N most recent records")
}
