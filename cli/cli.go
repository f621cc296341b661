// Package cli provides the console front end: a blocking prompt loop over
// any reader and writer, with optional pacing and word wrapping.
package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/muesli/reflow/wordwrap"

	"github.com/nathoo/miniquest/engine"
	"github.com/nathoo/miniquest/engine/state"
	"github.com/nathoo/miniquest/types"
)

const (
	commandPrompt = "What do you want to do? "
	separator     = "========================================"
	commandsLine  = "Commands: 'view inventory', 'hint', 'save', 'load', 'use [item]', 'pick up [item]', 'fight', 'open chest', 'map', 'help', 'quit'"
)

// CLI handles terminal interaction with the player.
type CLI struct {
	Engine    *engine.Engine
	Defs      *state.Defs
	In        io.Reader
	Out       io.Writer
	Delay     time.Duration // pause between combat lines
	Width     int           // wrap width; 0 disables wrapping
	Trace     bool
	EchoInput bool // echo each input line after the prompt (for script playback)

	lines chan inputLine
	done  chan struct{}
	inErr error // sticky once input has ended
}

// inputLine is one line read by the reader goroutine, or the error that
// ended reading.
type inputLine struct {
	text string
	err  error
}

// New creates a CLI wired to the given engine.
func New(eng *engine.Engine) *CLI {
	return &CLI{
		Engine: eng,
		Defs:   eng.Defs,
		In:     os.Stdin,
		Out:    os.Stdout,
	}
}

// Run starts the game loop. It shows the intro, then repeats: describe
// the room, roll the hazard, prompt, dispatch. It returns when the session
// ends or input runs out; running out of input is not an error.
func (c *CLI) Run(ctx context.Context) (types.Outcome, error) {
	c.startReader()
	defer close(c.done)

	if intro := c.Defs.Game.Intro; intro != "" {
		c.printLine("")
		for _, line := range strings.Split(intro, "\n") {
			c.printLine(line)
		}
		c.printLine("")
	}

	for {
		if err := ctx.Err(); err != nil {
			return c.Engine.State.Over, err
		}

		c.showRoom()

		if res := c.Engine.Hazard(); len(res.Output) > 0 {
			c.printResult(res)
			if res.Outcome != types.OutcomeContinue {
				return res.Outcome, nil
			}
		}

		input, err := c.readCommand(ctx)
		if errors.Is(err, io.EOF) {
			return c.Engine.State.Over, nil
		}
		if err != nil {
			return c.Engine.State.Over, err
		}

		if strings.HasPrefix(input, "/") {
			if c.handleMeta(input) {
				return types.OutcomeQuit, nil
			}
			continue
		}

		outcome, err := c.dispatch(ctx, input)
		if err != nil {
			return outcome, err
		}
		if outcome != types.OutcomeContinue {
			return outcome, nil
		}
	}
}

// dispatch runs one command and any question it raises.
func (c *CLI) dispatch(ctx context.Context, input string) (types.Outcome, error) {
	result := c.Engine.Step(input)
	c.printResult(result)

	switch {
	case c.Engine.InCombat():
		res, err := c.Engine.ResolveCombat(ctx, engine.ActionSourceFunc(c.nextCombatAction), c.emitPaced)
		c.printLine("")
		c.trace(res)
		if err != nil && !errors.Is(err, engine.ErrCanceled) {
			return res.Outcome, err
		}
		if errors.Is(err, engine.ErrCanceled) && ctx.Err() != nil {
			return res.Outcome, ctx.Err()
		}
		return res.Outcome, nil

	case result.Prompt == engine.RiddlePrompt:
		answer, err := c.readLine(ctx, engine.RiddlePrompt+" ")
		if err != nil {
			c.printResult(c.Engine.CancelPrompt())
			if errors.Is(err, io.EOF) {
				return c.Engine.State.Over, nil
			}
			return c.Engine.State.Over, err
		}
		res := c.Engine.Step(answer)
		c.printResult(res)
		return res.Outcome, nil
	}

	return result.Outcome, nil
}

// nextCombatAction reads one combat move. It is the console ActionSource.
func (c *CLI) nextCombatAction(ctx context.Context) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	return c.readLine(ctx, engine.CombatPrompt+" ")
}

// emitPaced prints one combat line and waits for the configured delay.
func (c *CLI) emitPaced(line string) {
	c.printLine(line)
	if c.Delay > 0 {
		time.Sleep(c.Delay)
	}
}

func (c *CLI) showRoom() {
	c.printLine(separator)
	for _, line := range c.Engine.Look() {
		c.printLine(line)
	}
	c.printLine(separator)
	c.printLine(commandsLine)
	c.printLine("")
}

// readCommand reads the next non-blank command line.
func (c *CLI) readCommand(ctx context.Context) (string, error) {
	for {
		input, err := c.readLine(ctx, commandPrompt)
		if err != nil {
			return "", err
		}
		if input != "" {
			return input, nil
		}
	}
}

// startReader scans c.In on its own goroutine so a blocked read never
// holds up cancellation. The goroutine exits when input ends or Run returns.
func (c *CLI) startReader() {
	c.lines = make(chan inputLine)
	c.done = make(chan struct{})
	c.inErr = nil

	lines, done := c.lines, c.done
	scanner := bufio.NewScanner(c.In)
	go func() {
		for scanner.Scan() {
			select {
			case lines <- inputLine{text: scanner.Text()}:
			case <-done:
				return
			}
		}
		err := io.EOF
		if scanErr := scanner.Err(); scanErr != nil {
			err = fmt.Errorf("reading input: %w", scanErr)
		}
		select {
		case lines <- inputLine{err: err}:
		case <-done:
		}
	}()
}

// readLine prompts and reads one line, returning ctx.Err() as soon as ctx
// is done. Lines starting with '#' are script comments and are skipped.
func (c *CLI) readLine(ctx context.Context, prompt string) (string, error) {
	if c.inErr != nil {
		return "", c.inErr
	}
	c.print(prompt)
	for {
		select {
		case <-ctx.Done():
			c.printLine("")
			return "", ctx.Err()
		case in := <-c.lines:
			if in.err != nil {
				c.inErr = in.err
				c.printLine("")
				return "", in.err
			}
			input := strings.TrimSpace(in.text)
			if strings.HasPrefix(input, "#") {
				continue
			}
			if c.EchoInput {
				c.printLine(input)
			}
			return input, nil
		}
	}
}

// handleMeta dispatches meta-commands. Returns true if the game should exit.
func (c *CLI) handleMeta(input string) bool {
	switch cmd := strings.Fields(input)[0]; cmd {
	case "/quit", "/exit":
		c.printSystem("Goodbye.")
		return true

	case "/state":
		c.cmdState()

	case "/trace":
		c.Trace = !c.Trace
		if c.Trace {
			c.printSystem("Trace output enabled.")
		} else {
			c.printSystem("Trace output disabled.")
		}

	default:
		c.printSystem(fmt.Sprintf("Unknown command: %s. Type 'help' for game commands.", cmd))
	}
	return false
}

func (c *CLI) cmdState() {
	s := c.Engine.State
	c.printSystem(fmt.Sprintf("Turn: %d", s.TurnCount))
	c.printSystem(fmt.Sprintf("Location: %s", s.Player.Location))
	c.printSystem(fmt.Sprintf("HP: %d", s.Player.HP))
	c.printSystem(fmt.Sprintf("Inventory: %v", s.Player.Inventory))
	c.printSystem(fmt.Sprintf("Seed: %d (draws: %d)", c.Engine.RNG.Seed(), c.Engine.RNG.Position()))
}

func (c *CLI) trace(result types.Result) {
	if !c.Trace {
		return
	}
	if len(result.Effects) > 0 {
		c.printSystem(fmt.Sprintf("[trace] Effects: %d", len(result.Effects)))
		for _, e := range result.Effects {
			c.printSystem(fmt.Sprintf("[trace]   %s %v", e.Type, e.Params))
		}
	}
	if len(result.Events) > 0 {
		c.printSystem(fmt.Sprintf("[trace] Events: %d", len(result.Events)))
		for _, e := range result.Events {
			c.printSystem(fmt.Sprintf("[trace]   %s", e.Type))
		}
	}
}

func (c *CLI) printResult(result types.Result) {
	if len(result.Output) == 0 {
		return
	}
	c.printLine("")
	for _, line := range result.Output {
		c.printLine(line)
	}
	c.printLine("")
	c.trace(result)
}

func (c *CLI) printLine(text string) {
	if c.Width > 0 {
		text = wordwrap.String(text, c.Width)
	}
	fmt.Fprintln(c.Out, text)
}

func (c *CLI) print(text string) {
	fmt.Fprint(c.Out, text)
}

func (c *CLI) printSystem(text string) {
	fmt.Fprintf(c.Out, "[%s]\n", text)
}
