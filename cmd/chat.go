package cmd

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"sync"
	"syscall"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/teemow/iris/internal/action"
	"github.com/teemow/iris/internal/assistant"
	"github.com/teemow/iris/internal/logging"
)

var (
	// Styles
	userStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("42"))

	assistantStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("212"))

	noticeStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("243")).
			Italic(true)

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196"))
)

// quitWords end the chat.
var quitWords = map[string]bool{
	"quit": true,
	"exit": true,
	"q":    true,
	"bye":  true,
}

func isQuit(line string) bool {
	return quitWords[strings.ToLower(strings.TrimSpace(line))]
}

func newChatCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "chat",
		Short: "Chat with the calendar assistant",
		Long: `Start an interactive conversation with the calendar assistant.

Examples of what to say:
  book lunch with Sam tomorrow at noon
  move it to 2pm
  cancel the dentist appointment
  what's on my calendar this week?

Type quit, exit, q or bye to leave.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}

			level := slog.LevelWarn
			if cfg.Log.Debug {
				level = slog.LevelDebug
			}
			logger := logging.NewWithLevel(os.Stderr, cfg.Log.Format, level)

			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			input := &interruptibleInput{r: os.Stdin}
			in := bufio.NewReader(input)
			out := cmd.OutOrStdout()
			session := &chatSession{out: out, name: cfg.AssistantName}

			a, err := newApp(ctx, cfg, logger, appOptions{
				confirmer: assistant.NewLineConfirmer(in, out),
				onReply:   session.printReply,
				authIn:    in,
				authOut:   out,
			})
			if err != nil {
				return err
			}
			defer a.Close(context.Background())

			exit := func() {
				fmt.Fprintln(out, "\nGoodbye!")
				a.Close(context.Background())
				os.Exit(130)
			}

			// Reading stdin cannot be interrupted. A signal that arrives during
			// a read ends the process; one that arrives mid-turn lets the turn
			// unwind and persist first.
			done := make(chan struct{})
			defer close(done)
			go func() {
				select {
				case <-ctx.Done():
					input.exitIfBlocked(exit)
				case <-done:
				}
			}()

			err = session.run(ctx, a.assistant, in)
			if ctx.Err() != nil {
				exit()
			}
			return err
		},
	}
}

// turner runs one conversation turn.
type turner interface {
	Turn(ctx context.Context, text string) (assistant.TurnResult, error)
}

// chatSession renders a conversation on a terminal.
type chatSession struct {
	out     io.Writer
	name    string
	replied bool
}

func (s *chatSession) printReply(rec action.Record) {
	s.replied = true
	fmt.Fprintf(s.out, "%s %s\n", assistantStyle.Render(s.name+":"), rec.Reply)
}

// run reads lines from in until EOF, a quit word or cancellation.
func (s *chatSession) run(ctx context.Context, t turner, in *bufio.Reader) error {
	fmt.Fprintf(s.out, "%s Hi, I'm %s. How can I help with your calendar? (type 'quit' to exit)\n",
		assistantStyle.Render(s.name+":"), s.name)

	for {
		fmt.Fprint(s.out, userStyle.Render("You:")+" ")
		line, err := in.ReadString('\n')
		if err != nil && line == "" {
			if errors.Is(err, io.EOF) || errors.Is(err, errInterrupted) {
				fmt.Fprintln(s.out)
				return nil
			}
			return fmt.Errorf("failed to read input: %w", err)
		}

		text := strings.TrimSpace(line)
		if text == "" {
			continue
		}
		if isQuit(text) {
			fmt.Fprintln(s.out, "Goodbye!")
			return nil
		}

		s.replied = false
		res, err := t.Turn(ctx, text)
		if !s.replied && res.Reply != "" {
			s.printReply(res.Record)
		}
		for _, n := range res.Notices {
			fmt.Fprintln(s.out, noticeStyle.Render(n))
		}
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			fmt.Fprintln(s.out, errorStyle.Render("Error: "+err.Error()))
		}
	}
}

var errInterrupted = errors.New("input interrupted")

// interruptibleInput tracks whether the terminal is blocked in a read so a
// signal handler can tell an idle prompt from a turn in progress.
type interruptibleInput struct {
	r io.Reader

	mu          sync.Mutex
	reading     bool
	interrupted bool
}

func (in *interruptibleInput) Read(p []byte) (int, error) {
	in.mu.Lock()
	if in.interrupted {
		in.mu.Unlock()
		return 0, errInterrupted
	}
	in.reading = true
	in.mu.Unlock()

	n, err := in.r.Read(p)

	in.mu.Lock()
	defer in.mu.Unlock()
	in.reading = false
	if in.interrupted {
		return 0, errInterrupted
	}
	return n, err
}

// exitIfBlocked marks the input interrupted and runs exit while a read is
// blocked. Otherwise it returns and later reads fail with errInterrupted.
// exit runs with the lock held, so no read completes while it runs.
func (in *interruptibleInput) exitIfBlocked(exit func()) {
	in.mu.Lock()
	defer in.mu.Unlock()

	in.interrupted = true
	if in.reading {
		exit()
	}
}
