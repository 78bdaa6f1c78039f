package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/aretw0/leadwizard/internal/presentation/tui"
	"github.com/aretw0/leadwizard/pkg/chat"
	"github.com/aretw0/leadwizard/pkg/domain"
)

// DefaultGreeting opens every console conversation.
const DefaultGreeting = "hello"

// ChatService handles one chat turn.
type ChatService interface {
	Handle(ctx context.Context, req chat.Request) (chat.Response, error)
}

// sessionResetter is implemented by services that can drop a session on /restart.
type sessionResetter interface {
	Reset(ctx context.Context, sessionID string) error
}

// ConsoleOptions configures an interactive chat session.
type ConsoleOptions struct {
	In        io.Reader
	Out       io.Writer
	Render    tui.Renderer
	Marker    string
	SessionID string
	Greeting  string
	Quiet     bool
}

// Console is a line-oriented chat client: numbers pick buttons, anything else is typed text.
type Console struct {
	svc     ChatService
	opts    ConsoleOptions
	session string
	buttons []domain.Button
}

// NewConsole creates a console bound to a chat service.
func NewConsole(svc ChatService, opts ConsoleOptions) *Console {
	if opts.Render == nil {
		opts.Render = tui.PlainRenderer
	}
	if opts.Marker == "" {
		opts.Marker = domain.DefaultSelectionMarker
	}
	if opts.Greeting == "" {
		opts.Greeting = DefaultGreeting
	}
	return &Console{svc: svc, opts: opts, session: opts.SessionID}
}

// SessionID returns the id of the current conversation.
func (c *Console) SessionID() string {
	return c.session
}

// Run greets the wizard and then relays lines from In until EOF, /quit or ctx is done.
func (c *Console) Run(ctx context.Context) error {
	if err := c.send(ctx, c.opts.Greeting); err != nil {
		return err
	}

	scanner := bufio.NewScanner(NewInterruptibleReader(c.opts.In, ctx.Done()))
	c.prompt()
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		switch line {
		case "":
			c.prompt()
			continue
		case "/quit", "/exit":
			c.system("Session %s closed.", c.session)
			return nil
		case "/restart":
			c.reset(ctx)
			c.session = ""
			c.buttons = nil
			if err := c.send(ctx, c.opts.Greeting); err != nil {
				return err
			}
			c.prompt()
			continue
		}

		if err := c.send(ctx, c.translate(line)); err != nil {
			return err
		}
		c.prompt()
	}

	if err := scanner.Err(); err != nil {
		return handleExecutionError(err)
	}
	return handleExecutionError(ctx.Err())
}

// translate turns a button number into a selection message.
func (c *Console) translate(line string) string {
	n, err := strconv.Atoi(line)
	if err != nil || n < 1 || n > len(c.buttons) {
		return line
	}
	return domain.SelectionMessage(c.opts.Marker, c.buttons[n-1].Value)
}

func (c *Console) send(ctx context.Context, message string) error {
	resp, err := c.svc.Handle(ctx, chat.Request{SessionID: c.session, Message: message})
	if err != nil {
		if errors.Is(err, domain.ErrInvalidInput) {
			c.system("Message rejected: %v", err)
			return nil
		}
		return err
	}

	if c.session == "" && !c.opts.Quiet {
		c.system("Session '%s' active.", resp.SessionID)
	}
	c.session = resp.SessionID
	c.buttons = resp.Buttons

	out, err := c.opts.Render(tui.PromptMarkdown(&domain.Prompt{
		NodeID:  resp.NodeID,
		Text:    resp.Text,
		Buttons: resp.Buttons,
	}))
	if err != nil {
		return fmt.Errorf("render failed: %w", err)
	}
	fmt.Fprint(c.opts.Out, out)

	if resp.LeadID > 0 {
		c.system("Lead #%d captured.", resp.LeadID)
	}
	if resp.Completed {
		c.system("Wizard complete. Type /restart to begin again.")
	}
	return nil
}

// reset drops the current session from the store when the service supports it.
func (c *Console) reset(ctx context.Context) {
	r, ok := c.svc.(sessionResetter)
	if !ok || c.session == "" {
		return
	}
	if err := r.Reset(ctx, c.session); err != nil && !errors.Is(err, domain.ErrSessionDeleteUnsupported) {
		c.system("Could not clear session %s: %v", c.session, err)
	}
}

func (c *Console) prompt() {
	fmt.Fprint(c.opts.Out, "> ")
}

func (c *Console) system(format string, args ...any) {
	if c.opts.Quiet {
		return
	}
	printSystemMessage(c.opts.Out, format, args...)
}
