package names

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/chzyer/readline"
)

// Decision is the operator's verdict on one unmatched name.
type Decision int

const (
	Reject Decision = iota
	Accept
	// Quit stops the session; remaining names are left for a later run.
	Quit
)

func (d Decision) String() string {
	switch d {
	case Accept:
		return "accept"
	case Quit:
		return "quit"
	default:
		return "reject"
	}
}

// Decider decides whether Candidate is another spelling of BestMatch.
type Decider interface {
	Decide(ctx context.Context, u Unmatched) (Decision, error)
}

// DeciderFunc adapts a function to Decider.
type DeciderFunc func(ctx context.Context, u Unmatched) (Decision, error)

func (f DeciderFunc) Decide(ctx context.Context, u Unmatched) (Decision, error) {
	return f(ctx, u)
}

// ParseAnswer maps a typed answer to a Decision. Anything but yes or quit rejects.
func ParseAnswer(s string) Decision {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "y", "yes":
		return Accept
	case "q", "quit":
		return Quit
	default:
		return Reject
	}
}

// PromptDecider asks on the terminal.
type PromptDecider struct {
	rl  *readline.Instance
	out io.Writer
}

func NewPromptDecider() (*PromptDecider, error) {
	rl, err := readline.NewEx(&readline.Config{
		Prompt:                 "> ",
		DisableAutoSaveHistory: true,
		InterruptPrompt:        "^C",
		EOFPrompt:              "quit",
	})
	if err != nil {
		return nil, fmt.Errorf("init prompt: %w", err)
	}
	return &PromptDecider{rl: rl, out: rl.Stdout()}, nil
}

func (d *PromptDecider) Decide(ctx context.Context, u Unmatched) (Decision, error) {
	if err := ctx.Err(); err != nil {
		return Quit, err
	}
	fmt.Fprintf(d.out, "\nPotential mismatch: %q, closest match %q, similarity %d%%\n", u.Candidate, u.BestMatch, u.Score)
	d.rl.SetPrompt(fmt.Sprintf("Is %q the same as %q? (y/n/q): ", u.Candidate, u.BestMatch))
	line, err := d.rl.Readline()
	if errors.Is(err, readline.ErrInterrupt) || errors.Is(err, io.EOF) {
		return Quit, nil
	}
	if err != nil {
		return Quit, fmt.Errorf("read answer: %w", err)
	}
	return ParseAnswer(line), nil
}

func (d *PromptDecider) Close() error {
	return d.rl.Close()
}
