package main

import (
	"os"

	"github.com/alecthomas/kong"
	"github.com/charmbracelet/log"

	"github.com/lox/riversolver/internal/server"
)

type CLI struct {
	Address         string `default:"localhost:8080" help:"address to listen on"`
	ReadBufferSize  int    `default:"4096" help:"websocket read buffer size"`
	WriteBufferSize int    `default:"4096" help:"websocket write buffer size"`
	Debug           bool   `help:"enable debug logging"`
}

func main() {
	var cli CLI
	kong.Parse(&cli,
		kong.Name("serve"),
		kong.Description("stream solver results over websocket"),
		kong.UsageOnError(),
	)

	level := log.InfoLevel
	if cli.Debug {
		level = log.DebugLevel
	}
	logger := log.NewWithOptions(os.Stderr, log.Options{Level: level})

	cfg := server.Config{
		Address:         cli.Address,
		ReadBufferSize:  cli.ReadBufferSize,
		WriteBufferSize: cli.WriteBufferSize,
	}

	srv := server.New(cfg, logger)
	if err := srv.Start(); err != nil {
		logger.Fatal(err)
	}
}
