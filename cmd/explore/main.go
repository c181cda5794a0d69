package main

import (
	"fmt"
	"os"

	"github.com/alecthomas/kong"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/lox/riversolver/internal/config"
	"github.com/lox/riversolver/internal/explore"
	"github.com/lox/riversolver/poker"
	"github.com/lox/riversolver/solver"
	"github.com/lox/riversolver/strategy"
)

type CLI struct {
	Scenario string `required:"" help:"path to an HCL scenario file"`
	Solve    bool   `help:"run the solver first so the explored ranges reflect a converged strategy, rather than an empty tree"`
}

func main() {
	var cli CLI
	kong.Parse(&cli,
		kong.Name("explore"),
		kong.Description("interactively browse a strategy tree"),
		kong.UsageOnError(),
	)

	tree, err := buildTree(cli)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	p := tea.NewProgram(explore.New(tree))
	if _, err := p.Run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func buildTree(cli CLI) (*strategy.Tree, error) {
	scenario, err := config.LoadScenario(cli.Scenario)
	if err != nil {
		return nil, err
	}
	if err := scenario.Validate(); err != nil {
		return nil, err
	}

	if !cli.Solve {
		return strategy.Build(scenario.StartingPot, scenario.StackSize, scenario.BetSize), nil
	}

	board, err := poker.ParseBoard(scenario.Board)
	if err != nil {
		return nil, fmt.Errorf("parse board: %w", err)
	}
	heroRange, err := poker.ParseRange(scenario.HeroRange)
	if err != nil {
		return nil, fmt.Errorf("parse hero_range: %w", err)
	}
	villainRange, err := poker.ParseRange(scenario.VillainRange)
	if err != nil {
		return nil, fmt.Errorf("parse villain_range: %w", err)
	}

	cfg := solver.DefaultConfig()
	cfg.Board = board
	cfg.HeroRange = heroRange
	cfg.VillainRange = villainRange
	cfg.BetSize = scenario.BetSize
	cfg.StackSize = scenario.StackSize
	cfg.StartingPot = scenario.StartingPot
	cfg.MaxIterations = scenario.MaxIterations
	if scenario.HeroSide == "ip" {
		cfg.HeroSide = solver.IP
	} else {
		cfg.HeroSide = solver.OOP
	}

	// Solve builds and discards its own tree internally; rebuild one here
	// and refill it the same way Solve's objective function does, now that
	// we have the converged variable vector to fill it with.
	tree := strategy.Build(cfg.StartingPot, cfg.StackSize, cfg.BetSize)
	res, err := solver.Solve(cfg)
	if err != nil {
		return nil, fmt.Errorf("solve: %w", err)
	}
	if err := solver.FillTree(tree, cfg.HeroSide, heroRange, res.Variables); err != nil {
		return nil, fmt.Errorf("fill tree: %w", err)
	}
	return tree, nil
}
