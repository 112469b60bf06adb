// Command solve runs a search strategy on a single puzzle from the command
// line and prints the plan.
//
//	solve tiles --board 1,2,3,4,5,6,0,7,8
//	solve --strategy astar tiles --board 5,1,2,3,9,6,7,4,13,10,11,8,0,14,15,12
//	solve pitchers --numbers 4,5,3,0,0
//	solve pitchers --catalog one-from-3-8-12 --replay
//	solve config --file configs/eight-puzzle.json
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/urfave/cli/v3"

	"github.com/wricardo/puzzle-search/game/engine"
	"github.com/wricardo/puzzle-search/game/pitchers"
	"github.com/wricardo/puzzle-search/game/search"
	"github.com/wricardo/puzzle-search/game/tiles"
	"github.com/wricardo/puzzle-search/logging"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := newApp(os.Stdout).Run(ctx, os.Args)
	stop()
	if err != nil {
		fmt.Fprintf(os.Stderr, "solve: %v\n", err)
		os.Exit(1)
	}
}

func newApp(w io.Writer) *cli.Command {
	return &cli.Command{
		Name:   "solve",
		Usage:  "search for a plan that solves a sliding-tiles or water-pitchers puzzle",
		Writer: w,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "strategy",
				Aliases: []string{"s"},
				Usage:   "search strategy: bfs, dfs, ucs or astar (config default when empty)",
			},
			&cli.IntFlag{
				Name:  "max-expansions",
				Usage: "expansion budget (0 uses the config or built-in default)",
			},
			&cli.BoolFlag{
				Name:  "replay",
				Usage: "print the position after every move",
			},
			&cli.BoolFlag{
				Name:  "debug",
				Usage: "log search progress to stderr",
			},
		},
		Before: func(ctx context.Context, cmd *cli.Command) (context.Context, error) {
			if cmd.Bool("debug") {
				logging.SetLevel("debug")
			}
			return ctx, nil
		},
		Commands: []*cli.Command{
			{
				Name:  "tiles",
				Usage: "solve an N×N sliding-tile board",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "board",
						Aliases:  []string{"b"},
						Usage:    "row-major tiles separated by commas, 0 is the blank",
						Required: true,
					},
				},
				Action: func(ctx context.Context, cmd *cli.Command) error {
					board, err := parseInts(cmd.String("board"))
					if err != nil {
						return err
					}
					return solve(ctx, cmd, &engine.PuzzleConfig{
						Name:  "command line",
						Kind:  engine.KindTiles,
						Board: board,
					})
				},
			},
			{
				Name:  "pitchers",
				Usage: "solve a water-pitchers instance",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "numbers",
						Aliases: []string{"n"},
						Usage:   "flat form goal,capacities...,contents... separated by commas",
					},
					&cli.StringFlag{
						Name:    "catalog",
						Aliases: []string{"c"},
						Usage:   "name of a catalog instance (see 'solve catalog')",
					},
				},
				Action: func(ctx context.Context, cmd *cli.Command) error {
					state, err := pitchersFromFlags(cmd.String("numbers"), cmd.String("catalog"))
					if err != nil {
						return err
					}
					return solve(ctx, cmd, &engine.PuzzleConfig{
						Name:       "command line",
						Kind:       engine.KindPitchers,
						Goal:       state.Goal(),
						Capacities: state.Capacities(),
						Contents:   state.Contents(),
					})
				},
			},
			{
				Name:  "catalog",
				Usage: "list the built-in water-pitchers instances",
				Action: func(ctx context.Context, cmd *cli.Command) error {
					for _, in := range pitchers.Catalog {
						state, err := pitchers.FromNumbers(in.Numbers)
						if err != nil {
							return err
						}
						fmt.Fprintf(cmd.Root().Writer, "%-18s %s\n", in.Name, state)
					}
					return nil
				},
			},
			{
				Name:  "config",
				Usage: "solve a JSON or YAML puzzle config file",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "file",
						Aliases:  []string{"f"},
						Usage:    "path to the config file",
						Required: true,
					},
				},
				Action: func(ctx context.Context, cmd *cli.Command) error {
					config, err := engine.LoadPuzzleConfig(cmd.String("file"))
					if err != nil {
						return err
					}
					return solve(ctx, cmd, config)
				},
			},
		},
	}
}

func parseInts(s string) ([]int, error) {
	fields := strings.FieldsFunc(s, func(r rune) bool { return r == ',' || r == ' ' })
	values := make([]int, 0, len(fields))
	for _, f := range fields {
		v, err := strconv.Atoi(f)
		if err != nil {
			return nil, fmt.Errorf("%w: %q is not a number", search.ErrInvalidState, f)
		}
		values = append(values, v)
	}
	return values, nil
}

func pitchersFromFlags(numbers, catalog string) (pitchers.State, error) {
	switch {
	case numbers != "" && catalog != "":
		return pitchers.State{}, errors.New("use either --numbers or --catalog")
	case catalog != "":
		state, ok := pitchers.Lookup(catalog)
		if !ok {
			return pitchers.State{}, fmt.Errorf("unknown catalog instance %q", catalog)
		}
		return state, nil
	case numbers != "":
		values, err := parseInts(numbers)
		if err != nil {
			return pitchers.State{}, err
		}
		return pitchers.FromNumbers(values)
	}
	return pitchers.State{}, errors.New("one of --numbers or --catalog is required")
}

// solve runs the search and prints the plan. An unreachable goal is reported
// as a normal outcome, not an error.
func solve(ctx context.Context, cmd *cli.Command, config *engine.PuzzleConfig) error {
	w := cmd.Root().Writer
	config.Messages = config.Messages.WithDefaults()

	eng, err := engine.NewEngine(config)
	if err != nil {
		return err
	}

	opts := engine.SolveOptions{
		Strategy:      cmd.String("strategy"),
		MaxExpansions: int(cmd.Int("max-expansions")),
		Context:       ctx,
		Observer: func(expanded, generated, frontier int) {
			logging.Debug().Add(
				logging.Component("solve"),
				logging.Count("expanded", expanded),
				logging.Count("generated", generated),
				logging.Count("frontier", frontier),
			).Msg("search progress")
		},
	}

	fmt.Fprint(w, render(eng.GetState()))

	started := time.Now()
	plan, err := eng.Solve(opts)
	elapsed := time.Since(started)
	if errors.Is(err, search.ErrNoSolution) {
		fmt.Fprintf(w, "No solution: %s\n", config.Messages.NoSolution)
		return nil
	}
	if err != nil {
		return err
	}

	logging.Info().Add(
		logging.Strategy(plan.Strategy),
		logging.SearchStats(plan.Expanded, plan.Generated, len(plan.Actions)),
		logging.Duration(elapsed),
	).Msg("plan found")

	fmt.Fprintf(w, "Plan (%s): %d moves, %d expanded, %d generated\n",
		plan.Strategy, len(plan.Actions), plan.Expanded, plan.Generated)
	for i, action := range plan.Actions {
		line := action
		if i < len(plan.Labels) {
			line = fmt.Sprintf("%s (%s)", action, plan.Labels[i])
		} else if i < len(plan.BlankPath) {
			cell := plan.BlankPath[i]
			line = fmt.Sprintf("%s (blank to %d,%d)", action, cell.Row, cell.Col)
		}
		fmt.Fprintf(w, "%3d. %s\n", i+1, line)
	}

	if !cmd.Bool("replay") {
		return nil
	}
	return eng.ApplyPlan(plan, func(index int, state *engine.GameState) {
		fmt.Fprintf(w, "\nAfter %d. %s\n%s", index+1, plan.Actions[index], render(state))
	})
}

func render(state *engine.GameState) string {
	switch state.Kind {
	case engine.KindTiles:
		if b, err := tiles.NewBoard(state.Board); err == nil {
			return b.String()
		}
	case engine.KindPitchers:
		if s, err := pitchers.NewState(state.Goal, state.Capacities, state.Contents); err == nil {
			return s.String() + "\n"
		}
	}
	return state.Key + "\n"
}
