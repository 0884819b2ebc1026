package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/kigopro/kigo/internal/assistant"
	"github.com/kigopro/kigo/internal/client"
	"github.com/kigopro/kigo/internal/ui"
)

// assistantAPI is the part of the HTTP client a chat needs.
type assistantAPI interface {
	CreateSession(ctx context.Context, owner assistant.Owner) (*assistant.Snapshot, error)
	SendEvent(ctx context.Context, sessionID string, ev assistant.Event) (*assistant.Snapshot, error)
}

var assistantCmd = &cobra.Command{
	Use:   "assistant",
	Short: "Build a campaign by chatting with the assistant",
	Long: `Build a campaign by chatting with the assistant.

Type a message to describe what you want. When options are offered, answer
with their number. While configuring, each field is asked for in turn.
/back, /reset and /quit work at any prompt.`,
	GroupID: "campaigns",
	Args:    cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		hc, err := httpClient()
		if err != nil {
			return err
		}
		f := cmd.Flags()
		owner := assistant.Owner{Actor: actor}
		owner.PartnerID, _ = f.GetString("partner-id")
		owner.PartnerName, _ = f.GetString("partner")
		owner.ProgramID, _ = f.GetString("program-id")
		owner.ProgramName, _ = f.GetString("program")
		return runChat(context.Background(), hc, owner, cmd.InOrStdin(), cmd.OutOrStdout())
	},
}

// chat is one interactive assistant session.
type chat struct {
	api  assistantAPI
	snap *assistant.Snapshot
	in   *bufio.Scanner
	out  io.Writer
}

// errQuit ends the chat without an error.
var errQuit = errors.New("quit")

func runChat(ctx context.Context, api assistantAPI, owner assistant.Owner, in io.Reader, out io.Writer) error {
	snap, err := api.CreateSession(ctx, owner)
	if err != nil {
		return err
	}
	c := &chat{api: api, snap: snap, in: bufio.NewScanner(in), out: out}
	fmt.Fprintln(out, ui.RenderMuted("session "+snap.ID))

	for {
		c.show()
		if c.snap.Phase == assistant.PhaseComplete {
			if c.snap.CampaignID != "" {
				fmt.Fprintf(out, "Created campaign %s\n", ui.RenderAccent(c.snap.CampaignID))
			}
			return nil
		}
		ev, err := c.next()
		if errors.Is(err, errQuit) {
			return nil
		}
		if err != nil {
			return err
		}
		c.send(ctx, ev)
	}
}

func (c *chat) show() {
	fmt.Fprintln(c.out)
	fmt.Fprintln(c.out, c.snap.Prompt)
	for i, o := range c.snap.Options {
		fmt.Fprintf(c.out, "  %d) %s\n", i+1, o.Label)
	}
}

// readLine prompts and returns the next trimmed line. /quit and EOF end
// the chat.
func (c *chat) readLine(prompt string) (string, error) {
	fmt.Fprint(c.out, prompt)
	if !c.in.Scan() {
		fmt.Fprintln(c.out)
		if err := c.in.Err(); err != nil {
			return "", err
		}
		return "", errQuit
	}
	line := strings.TrimSpace(c.in.Text())
	if line == "/quit" || line == "/q" {
		return "", errQuit
	}
	return line, nil
}

// command maps /back and /reset to events.
func command(line string) (assistant.Event, bool) {
	switch line {
	case "/back":
		return assistant.Event{Kind: assistant.EventBack}, true
	case "/reset":
		return assistant.Event{Kind: assistant.EventReset}, true
	}
	return assistant.Event{}, false
}

// next reads input until it forms an event for the current phase.
func (c *chat) next() (assistant.Event, error) {
	if c.snap.Phase == assistant.PhaseConfiguring {
		return c.form()
	}
	for {
		line, err := c.readLine("> ")
		if err != nil {
			return assistant.Event{}, err
		}
		if ev, ok := command(line); ok {
			return ev, nil
		}
		if line == "" {
			continue
		}
		if n, err := strconv.Atoi(line); err == nil && len(c.snap.Options) > 0 {
			if n < 1 || n > len(c.snap.Options) {
				fmt.Fprintf(c.out, "choose 1-%d\n", len(c.snap.Options))
				continue
			}
			return assistant.Event{Kind: assistant.EventChooseOption, Option: c.snap.Options[n-1].Value}, nil
		}
		return assistant.Event{Kind: assistant.EventMessage, Text: line}, nil
	}
}

// form asks for each field of the current step.
func (c *chat) form() (assistant.Event, error) {
	fields := make(map[string]string, len(c.snap.Fields))
	for _, name := range c.snap.Fields {
		line, err := c.readLine("  " + strings.ReplaceAll(name, "_", " ") + ": ")
		if err != nil {
			return assistant.Event{}, err
		}
		if ev, ok := command(line); ok {
			return ev, nil
		}
		fields[name] = line
	}
	return assistant.Event{Kind: assistant.EventSubmitStep, Fields: fields}, nil
}

// send applies ev. Rejected events and validation errors are shown and
// the conversation stays where it was.
func (c *chat) send(ctx context.Context, ev assistant.Event) {
	snap, err := c.api.SendEvent(ctx, c.snap.ID, ev)
	if snap != nil {
		c.snap = snap
	}
	if err == nil {
		return
	}
	var ae *client.APIError
	if errors.As(err, &ae) && len(ae.Fields) > 0 {
		for _, f := range ae.Fields {
			fmt.Fprintf(c.out, "  %s %s\n", f.Field, f.Message)
		}
		return
	}
	fmt.Fprintln(c.out, "error:", err)
}

func init() {
	f := assistantCmd.Flags()
	f.String("partner-id", "", "partner the campaign is for")
	f.String("partner", "", "partner name")
	f.String("program-id", "", "program ID")
	f.String("program", "", "program name")
}
