package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/shubh-37/prosora/internal/agents"
	"github.com/shubh-37/prosora/internal/frameworks"
	"github.com/shubh-37/prosora/internal/llm"
	"github.com/shubh-37/prosora/internal/models"
	"github.com/shubh-37/prosora/internal/store"
)

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Brainstorm in the terminal",
	Long: `chat runs turns against the configured store and LLM. Lines starting
with "/" are commands: /mode <mode>, /summary, /quit.`,
	RunE: runChat,
}

func init() {
	chatCmd.Flags().String("session", "", "resume an existing session id")
	chatCmd.Flags().String("mode", string(agents.ModeIdeas), "thinking mode (ideas, first-principles, design-thinking, frameworks)")
	chatCmd.Flags().String("domain", "", "domain hint for a new session")
}

type chatSession struct {
	facilitator *agents.Facilitator
	store       *store.ContextStore
	renderer    *glamour.TermRenderer
	out         io.Writer

	sessionID string
	mode      agents.Mode
	domain    models.Domain
	history   []agents.Message
}

func runChat(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}

	logger, err := newLogger(cfg, true)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	modeFlag, _ := cmd.Flags().GetString("mode")
	mode, err := agents.ParseMode(modeFlag)
	if err != nil {
		return err
	}
	var domain models.Domain
	if raw, _ := cmd.Flags().GetString("domain"); raw != "" {
		if domain, err = models.ParseDomain(raw); err != nil {
			return err
		}
	}
	sessionID, _ := cmd.Flags().GetString("session")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	backend, closeBackend, err := openBackend(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer closeBackend()

	client, err := llm.New(ctx, llmConfig(cfg), logger)
	if err != nil {
		return err
	}
	st := store.New(backend, store.WithLogger(logger))

	s := &chatSession{
		facilitator: agents.NewFacilitator(st, client, frameworks.Default(), logger),
		store:       st,
		renderer:    newMarkdownRenderer(80),
		out:         cmd.OutOrStdout(),
		sessionID:   sessionID,
		mode:        mode,
		domain:      domain,
	}
	return s.loop(ctx, cmd.InOrStdin(), logger)
}

func (s *chatSession) loop(ctx context.Context, in io.Reader, logger *zap.Logger) error {
	fmt.Fprintln(s.out, styleDim.Render("prosora chat · "+s.mode.Emoji()+" "+string(s.mode)+" · /quit to exit"))

	scanner := bufio.NewScanner(in)
	for {
		fmt.Fprint(s.out, "> ")
		if !scanner.Scan() {
			return scanner.Err()
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		if strings.HasPrefix(line, "/") {
			if quit := s.command(ctx, line); quit {
				return nil
			}
			continue
		}

		result, err := s.facilitator.ProcessTurn(ctx, agents.TurnRequest{
			SessionID:  s.sessionID,
			Message:    line,
			History:    s.history,
			DomainHint: s.domain,
			Mode:       s.mode,
		})
		if err != nil {
			if errors.Is(err, context.Canceled) {
				return nil
			}
			logger.Debug("turn failed", zap.Error(err))
			fmt.Fprintln(s.out, styleHeader.Render("❌ "+err.Error()))
			continue
		}

		s.sessionID = result.SessionID
		s.history = append(s.history,
			agents.Message{Role: "user", Content: line},
			agents.Message{Role: "assistant", Content: result.ResponseText},
		)

		fmt.Fprint(s.out, renderResponse(s.renderer, s.mode, result.ResponseText))
		if result.Framework != nil {
			fmt.Fprintln(s.out, renderFramework(*result.Framework))
		}
		fmt.Fprintln(s.out, renderSummary(result.Summary))
	}
}

// command handles a slash command and reports whether to quit.
func (s *chatSession) command(ctx context.Context, line string) bool {
	fields := strings.Fields(line)
	switch fields[0] {
	case "/quit", "/exit":
		return true
	case "/mode":
		if len(fields) < 2 {
			fmt.Fprintln(s.out, "usage: /mode <mode>")
			return false
		}
		mode, err := agents.ParseMode(fields[1])
		if err != nil {
			fmt.Fprintln(s.out, err)
			return false
		}
		s.mode = mode
		fmt.Fprintln(s.out, styleDim.Render("mode → "+mode.Emoji()+" "+string(mode)))
	case "/summary":
		if s.sessionID == "" {
			fmt.Fprintln(s.out, styleDim.Render("no session yet"))
			return false
		}
		summary, ok, err := s.store.GetSummary(ctx, s.sessionID)
		switch {
		case err != nil:
			fmt.Fprintln(s.out, err)
		case !ok:
			fmt.Fprintln(s.out, styleDim.Render("session "+s.sessionID+" not found"))
		default:
			fmt.Fprintln(s.out, renderSummary(summary))
		}
	default:
		fmt.Fprintln(s.out, "commands: /mode <mode>, /summary, /quit")
	}
	return false
}
