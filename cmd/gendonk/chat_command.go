package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"gendonk/internal/chat"
)

const clearCommand = ":clear"

func newChatCommand(ctx *commandContext) *cobra.Command {
	var model string
	var refresh bool

	cmd := &cobra.Command{
		Use:   "chat [message]",
		Short: "Ask the fine-tuned model a question (interactive without a message)",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			client, err := ctx.openAIClient()
			if err != nil {
				return err
			}

			chosen := strings.TrimSpace(model)
			if chosen == "" {
				chosen = cfg.OpenAI.ChatModel
			}
			if chosen == "" {
				res, err := ctx.resolveCheckpoint(cmd, refresh)
				if err != nil {
					return err
				}
				if !res.Found {
					return errors.New("no fine-tuned model available; run 'gendonk finetune' first or pass --model")
				}
				chosen = res.Model
			}

			session := chat.Session{
				Model:        chosen,
				SystemPrompt: cfg.Prompt.SystemPrompt,
				Completer:    client,
				Logger:       ctx.ensureLogger(),
			}
			out := cmd.OutOrStdout()
			if len(args) > 0 {
				reply, err := session.Generate(cmd.Context(), strings.Join(args, " "))
				if err != nil {
					return err
				}
				fmt.Fprintln(out, reply)
				return nil
			}
			return chatLoop(cmd, session, cmd.InOrStdin(), out)
		},
	}

	cmd.Flags().StringVarP(&model, "model", "m", "", "Model to chat with (default: latest checkpoint)")
	cmd.Flags().BoolVar(&refresh, "refresh", false, "Rescan fine-tuning jobs for the latest checkpoint")
	return cmd
}

func chatLoop(cmd *cobra.Command, session chat.Session, in io.Reader, out io.Writer) error {
	fmt.Fprintf(out, "Chatting with %s. Type %s to clear, Ctrl+D to quit.\n", session.Model, clearCommand)
	scanner := bufio.NewScanner(in)
	scanner.Buffer(make([]byte, 0, 64*1024), 1<<20)
	for {
		fmt.Fprint(out, "> ")
		if !scanner.Scan() {
			fmt.Fprintln(out)
			return scanner.Err()
		}
		line := scanner.Text()
		if strings.TrimSpace(line) == clearCommand {
			fmt.Fprint(out, "\x1b[H\x1b[2J")
			continue
		}
		reply, err := session.Generate(cmd.Context(), line)
		switch {
		case errors.Is(err, chat.ErrEmptyInput):
			continue
		case err != nil:
			if cmd.Context().Err() != nil {
				return cmd.Context().Err()
			}
			fmt.Fprintf(out, "error: %v\n", err)
			continue
		}
		fmt.Fprintln(out, reply)
	}
}
