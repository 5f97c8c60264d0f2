package cmd

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"

	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"

	"github.com/Rorical/OmniMind/internal/app"
	"github.com/Rorical/OmniMind/internal/omnicore"
	"github.com/Rorical/OmniMind/internal/session"
	"github.com/Rorical/OmniMind/internal/wallet"
)

var balanceCmd = &cobra.Command{
	Use:   "balance",
	Short: "Unlock the wallet and print its token balance",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withStack(cmd, func(ctx context.Context, ctrl *session.Controller) error {
			if out := ctrl.Connect(ctx); !out.OK() {
				return outcomeError(out)
			}
			snap := ctrl.Snapshot()
			fmt.Fprintf(cmd.OutOrStdout(), "%s: %s %s\n", snap.Account, snap.Token.Balance, snap.Symbol)
			return nil
		})
	},
}

var transferCmd = &cobra.Command{
	Use:   "transfer <to> <amount>",
	Short: "Send tokens to an address and wait for confirmation",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withStack(cmd, func(ctx context.Context, ctrl *session.Controller) error {
			if out := ctrl.Connect(ctx); !out.OK() {
				return outcomeError(out)
			}
			out := ctrl.Transfer(ctx, args[0], args[1])
			if !out.OK() {
				return outcomeError(out)
			}
			snap := ctrl.Snapshot()
			fmt.Fprintln(cmd.OutOrStdout(), out.Message)
			fmt.Fprintf(cmd.OutOrStdout(), "New balance: %s %s\n", snap.Token.Balance, snap.Symbol)
			return nil
		})
	},
}

var commandCmd = &cobra.Command{
	Use:   "command <text...>",
	Short: "Send a command to OmniMind Core and print the result",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withStack(cmd, func(ctx context.Context, ctrl *session.Controller) error {
			out := ctrl.SendCommand(ctx, strings.Join(args, " "))
			if result := ctrl.Snapshot().Result; result != nil {
				printResult(cmd.OutOrStdout(), *result)
			}
			if !out.OK() {
				return outcomeError(out)
			}
			return nil
		})
	},
}

// withStack builds a controller for the active profile, echoes its progress
// to stderr and runs fn until it returns or the user interrupts.
func withStack(cmd *cobra.Command, fn func(ctx context.Context, ctrl *session.Controller) error) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: app.LogLevel(slog.LevelWarn)}))
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()

	stack := app.NewStack(ctx, cfg.Current(), logger)
	defer stack.Close()
	stack.SetApprover(promptApprover())

	last := ""
	stack.Controller.OnChange(func(snap session.Snapshot) {
		if snap.Feedback != "" && snap.Feedback != last {
			last = snap.Feedback
			fmt.Fprintln(cmd.ErrOrStderr(), snap.Feedback)
		}
	})

	return fn(ctx, stack.Controller)
}

func promptApprover() wallet.Approver {
	return wallet.ApproverFunc(func(ctx context.Context, account string) (string, error) {
		prompt := promptui.Prompt{
			Label: "Passphrase for " + wallet.ShortAddress(account),
			Mask:  '*',
		}
		return prompt.Run()
	})
}

func outcomeError(out session.Outcome) error {
	if out.Message != "" {
		return fmt.Errorf("%s: %w", out.Message, out.Err)
	}
	return out.Err
}

func printResult(w io.Writer, r omnicore.Result) {
	fmt.Fprintf(w, "Status: %s\n", r.Status)
	fmt.Fprintf(w, "Message: %s\n", r.Message)
	fmt.Fprintf(w, "Confidence: %s\n", omnicore.FormatConfidence(r.Confidence()))
	if len(r.Data) == 0 {
		return
	}
	var pretty bytes.Buffer
	if err := json.Indent(&pretty, r.Data, "", "  "); err == nil {
		fmt.Fprintf(w, "Data:\n%s\n", pretty.String())
	}
}

func init() {
	rootCmd.AddCommand(balanceCmd)
	rootCmd.AddCommand(transferCmd)
	rootCmd.AddCommand(commandCmd)
}
