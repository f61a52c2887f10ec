package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func newAnalyzeCmd(root *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "analyze [text...]",
		Short: "Analyze text once and print the result as JSON",
		Long: `Analyze runs the full pipeline once. Arguments are joined with spaces;
with no arguments the text is read from stdin.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			text, err := readInput(args, cmd.InOrStdin())
			if err != nil {
				return err
			}
			a, err := buildApp(root.configPath)
			if err != nil {
				return err
			}
			defer func() { _ = a.logger.Sync() }()
			return a.analyzeOnce(cmd.Context(), text, cmd.OutOrStdout())
		},
	}
}

func readInput(args []string, stdin io.Reader) (string, error) {
	if len(args) > 0 {
		return strings.Join(args, " "), nil
	}
	b, err := io.ReadAll(stdin)
	if err != nil {
		return "", fmt.Errorf("read stdin: %w", err)
	}
	return string(b), nil
}

func (a *app) analyzeOnce(ctx context.Context, text string, out io.Writer) error {
	if ctx == nil {
		ctx = context.Background()
	}
	res, err := a.svc.Analyze(ctx, text)

	// The process is about to exit; give a pending webhook delivery its
	// configured timeout to finish.
	waitCtx, cancel := context.WithTimeout(context.Background(), a.cfg.Notify.Timeout)
	defer cancel()
	if werr := a.notifier.Wait(waitCtx); werr != nil {
		a.logger.Warn("notification still pending at exit", zap.Error(werr))
	}

	if err != nil {
		return err
	}
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(res)
}
