package main

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net"
	"strings"

	"github.com/spf13/cobra"

	"github.com/dayanaadylkhanova/powcaptcha/internal/adapter/transport/tcp"
	"github.com/dayanaadylkhanova/powcaptcha/internal/entity"
	"github.com/dayanaadylkhanova/powcaptcha/pkg/altcha"
)

func buildTCPCmd(opts *options, log func() *slog.Logger) *cobra.Command {
	var addr string
	cmd := &cobra.Command{
		Use:   "tcp",
		Short: "Solve one challenge over the line protocol",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, cancel := context.WithTimeout(cmd.Context(), opts.timeout)
			defer cancel()

			reply, err := solveTCP(ctx, log(), addr, opts.workers)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), strings.TrimSpace(reply))
			if reply != tcp.ReplyVerified {
				return fmt.Errorf("server rejected the solution: %s", strings.TrimSpace(reply))
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&addr, "addr", getenv("SERVER_ADDR", "localhost:8081"), "server TCP address")
	return cmd
}

func solveTCP(ctx context.Context, log *slog.Logger, addr string, workers int) (string, error) {
	conn, err := (&net.Dialer{}).DialContext(ctx, "tcp", addr)
	if err != nil {
		return "", fmt.Errorf("dial: %w", err)
	}
	defer conn.Close()
	if dl, ok := ctx.Deadline(); ok {
		_ = conn.SetDeadline(dl)
	}

	br := bufio.NewReader(conn)
	bw := bufio.NewWriter(conn)

	// 1) challenge
	line, err := br.ReadString('\n')
	if err != nil {
		return "", fmt.Errorf("read challenge: %w", err)
	}
	var ch entity.Challenge
	if err := json.Unmarshal([]byte(strings.TrimSpace(line)), &ch); err != nil {
		return "", fmt.Errorf("unmarshal challenge: %w", err)
	}
	log.Debug("challenge received", "maxnumber", ch.MaxNumber)

	// 2) solve
	payload, err := altcha.SolvePayload(ctx, ch, workers)
	if err != nil {
		return "", fmt.Errorf("solve: %w", err)
	}
	log.Debug("solution found", "number", payload.Number, "took_ms", payload.Took)
	code, err := payload.Encode()
	if err != nil {
		return "", err
	}

	// 3) send solution
	out, _ := json.Marshal(entity.Solution{Payload: code})
	if _, err := bw.Write(append(out, '\n')); err != nil {
		return "", fmt.Errorf("write solution: %w", err)
	}
	if err := bw.Flush(); err != nil {
		return "", fmt.Errorf("flush: %w", err)
	}

	// 4) verdict
	reply, err := br.ReadString('\n')
	if err != nil {
		return "", fmt.Errorf("read reply: %w", err)
	}
	return reply, nil
}
