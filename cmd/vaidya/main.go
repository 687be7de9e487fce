// Command vaidya runs the Ayurvedic recommendation service or issues one-off
// queries against the pipeline from the terminal.
package main

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/vaidya-ai/vaidya/config"
	"github.com/vaidya-ai/vaidya/server"
)

func main() {
	if err := newRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	var cfgPath string

	root := &cobra.Command{
		Use:           "vaidya",
		Short:         "Retrieval-augmented Ayurvedic recommendation pipeline",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&cfgPath, "config", "", "path to config file (optional, VAIDYA_* env vars always apply)")

	root.AddCommand(newServeCommand(&cfgPath))
	root.AddCommand(newAskCommand(&cfgPath))
	return root
}

func newServeCommand(cfgPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Serve the recommendation API over HTTP",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(*cfgPath)
			if err != nil {
				return err
			}
			v, logger, err := buildVaidya(cfg)
			if err != nil {
				return err
			}

			srv := server.New(v, func(o *server.Options) {
				o.Logger = logger
			})
			return srv.Listen(cfg.Server.Addr)
		},
	}
}

func newAskCommand(cfgPath *string) *cobra.Command {
	var userID string

	cmd := &cobra.Command{
		Use:   "ask [question]",
		Short: "Ask a single question, answering clarifications interactively",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(*cfgPath)
			if err != nil {
				return err
			}
			v, _, err := buildVaidya(cfg)
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			result, err := v.Ask(ctx, userID, strings.Join(args, " "))
			if err != nil {
				return err
			}

			reader := bufio.NewReader(cmd.InOrStdin())
			for result.NeedsInput() {
				cl := result.Clarification
				fmt.Fprintf(cmd.OutOrStdout(), "%s\n> ", cl.Prompt)
				answer, err := reader.ReadString('\n')
				if err != nil {
					return errors.New("no answer supplied for pending clarification")
				}
				result, err = v.Answer(ctx, cl.SessionID, cl.FieldHint, strings.TrimSpace(answer))
				if err != nil {
					return err
				}
			}

			out, err := json.MarshalIndent(result.Plan, "", "  ")
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), string(out))
			return nil
		},
	}
	cmd.Flags().StringVar(&userID, "user", "", "user id whose logged history seeds the context")
	return cmd
}
