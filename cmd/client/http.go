package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"

	"github.com/spf13/cobra"

	"github.com/dayanaadylkhanova/powcaptcha/internal/adapter/transport/web"
	"github.com/dayanaadylkhanova/powcaptcha/internal/entity"
	"github.com/dayanaadylkhanova/powcaptcha/pkg/altcha"
)

func buildHTTPCmd(opts *options, log func() *slog.Logger) *cobra.Command {
	var base string
	cmd := &cobra.Command{
		Use:   "http",
		Short: "Fetch the widget, solve its challenge and submit it",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, cancel := context.WithTimeout(cmd.Context(), opts.timeout)
			defer cancel()

			res, err := solveHTTP(ctx, log(), strings.TrimRight(base, "/"), opts.workers)
			if err != nil {
				return err
			}
			out, _ := json.Marshal(res)
			fmt.Fprintln(cmd.OutOrStdout(), string(out))
			if !res.Verified {
				return errors.New("server rejected the solution")
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&base, "url", getenv("SERVER_URL", "http://localhost:8080"), "server base URL")
	return cmd
}

func solveHTTP(ctx context.Context, log *slog.Logger, base string, workers int) (entity.VerifyResult, error) {
	jar, _ := cookiejar.New(nil)
	client := &http.Client{Jar: jar}

	// 1) виджет выдаёт cookie сессии и токен
	resp, err := get(ctx, client, base+web.WidgetPath)
	if err != nil {
		return entity.VerifyResult{}, err
	}
	resp.Body.Close()
	token := resp.Header.Get(web.TokenHeader)
	if token == "" {
		return entity.VerifyResult{}, errors.New("widget response carries no token")
	}

	// 2) challenge
	resp, err = get(ctx, client, base+web.ChallengePath+"?token="+url.QueryEscape(token))
	if err != nil {
		return entity.VerifyResult{}, err
	}
	var ch entity.Challenge
	err = json.NewDecoder(resp.Body).Decode(&ch)
	resp.Body.Close()
	if err != nil {
		return entity.VerifyResult{}, fmt.Errorf("decode challenge: %w", err)
	}
	log.Debug("challenge received", "maxnumber", ch.MaxNumber)

	// 3) solve
	payload, err := altcha.SolvePayload(ctx, ch, workers)
	if err != nil {
		return entity.VerifyResult{}, fmt.Errorf("solve: %w", err)
	}
	code, err := payload.Encode()
	if err != nil {
		return entity.VerifyResult{}, err
	}

	// 4) verify
	body, _ := json.Marshal(entity.Solution{Payload: code})
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, base+web.VerifyPath, bytes.NewReader(body))
	if err != nil {
		return entity.VerifyResult{}, err
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err = client.Do(req)
	if err != nil {
		return entity.VerifyResult{}, fmt.Errorf("verify: %w", err)
	}
	defer resp.Body.Close()

	var res entity.VerifyResult
	if err := json.NewDecoder(resp.Body).Decode(&res); err != nil {
		return entity.VerifyResult{}, fmt.Errorf("decode verdict: %w", err)
	}
	return res, nil
}

func get(ctx context.Context, client *http.Client, u string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("GET %s: %w", u, err)
	}
	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		resp.Body.Close()
		return nil, fmt.Errorf("GET %s: %s: %s", u, resp.Status, strings.TrimSpace(string(b)))
	}
	return resp, nil
}
