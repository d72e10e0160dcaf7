// Package repl is the interactive terminal front end. It reads lines with
// readline, sends them through the command router, and renders replies as
// styled markdown.
package repl

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/chzyer/readline"

	"jarvis/internal/router"
	logx "jarvis/pkg/logx"
)

type REPL struct {
	rl     *readline.Instance
	router *router.Router
	out    *renderer
	log    logx.Logger
}

func New(rt *router.Router, historyFile string, log logx.Logger) (*REPL, error) {
	if log.IsZero() {
		log = logx.Nop()
	}
	rl, err := readline.NewEx(&readline.Config{
		Prompt:            prompt(),
		HistoryFile:       historyFile,
		InterruptPrompt:   "^C",
		EOFPrompt:         "exit",
		HistorySearchFold: true,
	})
	if err != nil {
		return nil, fmt.Errorf("setup readline: %w", err)
	}
	return &REPL{rl: rl, router: rt, out: newRenderer(), log: log}, nil
}

// Notify prints an asynchronous reminder line above the prompt. Safe to call
// from timer goroutines; readline redraws the pending input.
func (r *REPL) Notify(message string) {
	fmt.Fprintln(r.rl.Stdout(), r.out.notification(message))
}

// Run is the read-eval-print loop. It returns when the user quits, input hits
// EOF, or ctx is cancelled.
func (r *REPL) Run(ctx context.Context) error {
	defer r.rl.Close()

	fmt.Fprint(r.rl.Stdout(), r.out.welcome())

	for {
		if err := ctx.Err(); err != nil {
			return nil
		}

		line, err := r.rl.Readline()
		if err != nil {
			if errors.Is(err, readline.ErrInterrupt) {
				continue
			}
			if errors.Is(err, io.EOF) {
				fmt.Fprintln(r.rl.Stdout(), "Goodbye!")
				return nil
			}
			return fmt.Errorf("read input: %w", err)
		}

		input := strings.TrimSpace(line)
		if input == "" {
			continue
		}

		if strings.HasPrefix(input, "/") {
			if quit := r.handleCommand(input); quit {
				return nil
			}
			continue
		}

		reply, err := r.router.Handle(ctx, input)
		if err != nil {
			fmt.Fprintln(r.rl.Stdout(), r.out.errorLine(err))
			continue
		}
		if reply != "" {
			fmt.Fprintln(r.rl.Stdout(), r.out.reply(reply))
		}
	}
}

// handleCommand runs a local slash command, reporting whether to quit.
func (r *REPL) handleCommand(input string) bool {
	cmd := strings.ToLower(strings.Fields(input)[0])
	switch cmd {
	case "/quit", "/exit", "/q":
		fmt.Fprintln(r.rl.Stdout(), "Goodbye!")
		return true
	case "/help", "/h":
		fmt.Fprint(r.rl.Stdout(), r.out.help())
	default:
		fmt.Fprintln(r.rl.Stdout(), r.out.errorLine(fmt.Errorf("unknown command %s, try /help", cmd)))
	}
	return false
}
