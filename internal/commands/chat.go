package commands

import (
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/budgetwise-dev/budgetwise/internal/category"
	"github.com/budgetwise-dev/budgetwise/internal/chat"
	"github.com/budgetwise-dev/budgetwise/internal/display"
	"github.com/budgetwise-dev/budgetwise/internal/router"
)

func newChatCommand(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "chat",
		Short: "Talk to the budgeting assistant",
	}
	cmd.AddCommand(
		newChatSendCommand(a),
		newChatHistoryCommand(a),
		newChatApplyCommand(a),
		newChatClearCommand(a),
		newChatUnlockCommand(a),
	)
	return cmd
}

func newChatSendCommand(a *app) *cobra.Command {
	var month string

	cmd := &cobra.Command{
		Use:   "send <message>",
		Short: "Ask the assistant; the month's figures are sent along",
		Args:  cobra.MinimumNArgs(1),
		RunE: opened(a, func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			text := strings.Join(args, " ")
			if strings.TrimSpace(text) == "" {
				return chat.ErrEmpty
			}
			locked, err := a.chat.Locked(ctx)
			if err != nil {
				return err
			}
			if locked {
				return chat.ErrLocked
			}
			p, err := a.period(month)
			if err != nil {
				return err
			}
			v, err := a.loader.Budget(ctx, p)
			if err != nil {
				return err
			}

			reply, sendErr := a.chat.Send(ctx, text, v.Month)
			if reply.Text != "" {
				history, err := a.chat.History(ctx)
				if err != nil {
					return err
				}
				printMessage(a.out, a.money, a.cats, len(history)-1, reply)
			}
			if sendErr != nil {
				if errors.Is(sendErr, chat.ErrBusy) {
					return sendErr
				}
				return a.gate.HandleError(ctx, sendErr)
			}
			return nil
		}),
	}
	cmd.Flags().StringVar(&month, "month", "", "month the question is about, YYYY-MM (default current)")
	return cmd
}

func newChatHistoryCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "history",
		Short: "Show the conversation",
		Args:  cobra.NoArgs,
		RunE: opened(a, func(cmd *cobra.Command, args []string) error {
			msgs, err := a.chat.History(cmd.Context())
			if err != nil {
				return err
			}
			for i, msg := range msgs {
				printMessage(a.out, a.money, a.cats, i, msg)
			}
			if locked, err := a.chat.Locked(cmd.Context()); err == nil && locked {
				fmt.Fprintln(a.out, "(assistant locked: run 'budgetwise chat unlock' to start chatting)")
			}
			return nil
		}),
	}
}

func newChatApplyCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "apply <index>",
		Short: "Apply the budget the assistant suggested in a message",
		Args:  cobra.ExactArgs(1),
		RunE: opened(a, func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			index, err := strconv.Atoi(args[0])
			if err != nil {
				return fmt.Errorf("invalid message index %q", args[0])
			}
			if err := a.enter(ctx, router.PathBudget); err != nil {
				return err
			}
			msg, err := a.chat.Apply(ctx, index)
			if msg.Text != "" {
				printMessage(a.out, a.money, a.cats, index, msg)
			}
			a.record(ctx, "chat.apply", args[0], err)
			return a.gate.HandleError(ctx, err)
		}),
	}
}

func newChatClearCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Delete the conversation after confirmation",
		Args:  cobra.NoArgs,
		RunE: opened(a, func(cmd *cobra.Command, args []string) error {
			cleared, err := a.chat.Clear(cmd.Context(), a.confirmer())
			if err != nil {
				return err
			}
			if cleared {
				fmt.Fprintln(a.out, "Chat history cleared.")
			} else {
				fmt.Fprintln(a.out, "Cancelled.")
			}
			return nil
		}),
	}
}

func newChatUnlockCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "unlock",
		Short: "Activate the assistant",
		Args:  cobra.NoArgs,
		RunE: opened(a, func(cmd *cobra.Command, args []string) error {
			if err := a.chat.Unlock(cmd.Context()); err != nil {
				return err
			}
			fmt.Fprintln(a.out, "Assistant unlocked.")
			return nil
		}),
	}
}

func printMessage(w io.Writer, money *display.Money, cats *category.Catalogue, index int, msg chat.Message) {
	who := "you"
	if msg.Sender == chat.SenderAI {
		who = "assistant"
	}
	if msg.IsError {
		who += " (error)"
	}
	fmt.Fprintf(w, "[%d] %s: %s\n", index, who, msg.Text)

	if len(msg.Suggestion) > 0 {
		fmt.Fprintf(w, "    suggested budget for %s:\n", msg.Period)
		for _, cat := range cats.All() {
			if v, ok := msg.Suggestion[cat.BudgetKey]; ok {
				fmt.Fprintf(w, "      %-16s %s\n", cat.Name, money.Format(v))
			}
		}
		if !msg.Applied {
			fmt.Fprintf(w, "    run 'budgetwise chat apply %d' to use it\n", index)
		}
	}
	for _, note := range msg.Notes {
		fmt.Fprintf(w, "    %s\n", note)
	}
}
