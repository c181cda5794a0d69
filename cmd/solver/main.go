package main

import (
	"context"
	"fmt"
	"os"

	"github.com/alecthomas/kong"
	"github.com/charmbracelet/log"

	"github.com/lox/riversolver/equity"
	"github.com/lox/riversolver/internal/config"
	"github.com/lox/riversolver/poker"
	"github.com/lox/riversolver/solver"
)

var cli struct {
	Debug bool `help:"enable debug logging"`

	Solve    SolveCmd    `cmd:"" help:"solve a scenario and print the converged strategy"`
	Evaluate EvaluateCmd `cmd:"" help:"evaluate a literal 5-7 card hand"`
	Equity   EquityCmd   `cmd:"" help:"compute hand-vs-range or range-vs-range equity on a board"`
}

type SolveCmd struct {
	Scenario string `required:"" help:"path to an HCL scenario file"`
}

type EvaluateCmd struct {
	Cards string `required:"" help:"5-7 space separated cards, e.g. \"As Ks Qs Js Ts\""`
}

type EquityCmd struct {
	Board   string `required:"" help:"board cards, e.g. \"2h 3h 4d 6d 7s\""`
	Hero    string `required:"" help:"hero hole cards, e.g. \"As Kh\", or a range notation for range-vs-range"`
	Villain string `required:"" help:"villain range notation, e.g. \"QQ,KK,AA\""`
}

func main() {
	ctx := kong.Parse(&cli,
		kong.Name("solver"),
		kong.Description("river solver tooling"),
		kong.UsageOnError(),
	)

	logger := newLogger(cli.Debug)

	var err error
	switch ctx.Command() {
	case "solve":
		err = cli.Solve.Run(context.Background(), logger)
	case "evaluate":
		err = cli.Evaluate.Run(logger)
	case "equity":
		err = cli.Equity.Run(logger)
	default:
		logger.Fatalf("unknown command: %s", ctx.Command())
	}
	if err != nil {
		logger.Fatal(err)
	}
}

func newLogger(debug bool) *log.Logger {
	level := log.InfoLevel
	if debug {
		level = log.DebugLevel
	}
	return log.NewWithOptions(os.Stderr, log.Options{Level: level})
}

func (cmd *SolveCmd) Run(ctx context.Context, logger *log.Logger) error {
	scenario, err := config.LoadScenario(cmd.Scenario)
	if err != nil {
		return err
	}
	if err := scenario.Validate(); err != nil {
		return err
	}

	board, err := poker.ParseBoard(scenario.Board)
	if err != nil {
		return fmt.Errorf("parse board: %w", err)
	}
	heroRange, err := poker.ParseRange(scenario.HeroRange)
	if err != nil {
		return fmt.Errorf("parse hero_range: %w", err)
	}
	villainRange, err := poker.ParseRange(scenario.VillainRange)
	if err != nil {
		return fmt.Errorf("parse villain_range: %w", err)
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
	if scenario.Method == "gradient-descent" {
		cfg.Method = solver.GradientDescent
	}

	logger.Info("solving", "board", scenario.Board, "hero_side", scenario.HeroSide, "max_iterations", cfg.MaxIterations)

	res, err := solver.Solve(cfg)
	if err != nil {
		return fmt.Errorf("solve: %w", err)
	}

	logger.Info("converged", "objective", res.Objective, "status", res.Status.String(), "success", res.Success)
	fmt.Printf("objective: %v\n", res.Objective)
	fmt.Printf("status: %s\n", res.Status.String())
	for i, v := range res.Variables {
		if v <= 0 {
			continue
		}
		fmt.Printf("var[%d] = %v\n", i, v)
	}
	return nil
}

func (cmd *EvaluateCmd) Run(logger *log.Logger) error {
	cards, err := poker.ParseCards(cmd.Cards)
	if err != nil {
		return fmt.Errorf("parse cards: %w", err)
	}
	hv, err := poker.Evaluate(cards)
	if err != nil {
		return fmt.Errorf("evaluate: %w", err)
	}
	fmt.Println(hv.String())
	return nil
}

func (cmd *EquityCmd) Run(logger *log.Logger) error {
	board, err := poker.ParseBoard(cmd.Board)
	if err != nil {
		return fmt.Errorf("parse board: %w", err)
	}
	villainRange, err := poker.ParseRange(cmd.Villain)
	if err != nil {
		return fmt.Errorf("parse villain range: %w", err)
	}

	if hero, herr := poker.ParseHoleCards(cmd.Hero); herr == nil {
		eq := equity.HandVsRange(hero, villainRange, board)
		c1, c2 := hero.Cards()
		category := poker.CategorizeHoleCards(c1, c2)
		fmt.Printf("equity: %v\n", eq)
		fmt.Printf("hero category: %s\n", category)
		return nil
	}

	heroRange, err := poker.ParseRange(cmd.Hero)
	if err != nil {
		return fmt.Errorf("parse hero range/hand %q: %w", cmd.Hero, err)
	}
	eq := equity.RangeVsRange(heroRange, villainRange, board)
	fmt.Printf("equity: %v\n", eq)
	return nil
}
