// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// streamchat is an interactive terminal client for a local
// Ollama-compatible chat service.
//
// Usage:
//
//	streamchat [flags]              interactive chat
//	streamchat models               list installed models
//
// Flags:
//
//	--host URL       service base URL (default http://localhost:11434)
//	--model NAME     model for new conversations
//	--config PATH    config file (default ~/.streamchat/config.toml)
//	--plain          line-oriented surface instead of the full-screen UI
//	--no-markdown    disable markdown rendering of replies
//	--no-stream      request each reply whole instead of streaming
package main

import (
	"context"
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"golang.org/x/term"

	"github.com/jeranaias/streamchat/internal/cli"
	"github.com/jeranaias/streamchat/internal/config"
	"github.com/jeranaias/streamchat/internal/ollama"
	"github.com/jeranaias/streamchat/internal/session"
	"github.com/jeranaias/streamchat/internal/ui/chat"
	"github.com/jeranaias/streamchat/internal/ui/styles"
)

const version = "1.2.0"

func main() {
	if err := run(os.Args[1:]); err != nil {
		fmt.Fprintln(os.Stderr, styles.RenderError(err.Error()))
		os.Exit(1)
	}
}

func run(rawArgs []string) error {
	args := cli.ParseArgs(rawArgs)

	if args.Bool("version") || args.Bool("v") {
		fmt.Println("streamchat " + version)
		return nil
	}
	if args.Bool("help") || args.Bool("h") || args.Subcommand() == "help" {
		printUsage()
		return nil
	}

	cfgPath := args.Flag("config")
	if cfgPath == "" {
		cfgPath = config.Path()
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return err
	}

	// Flags beat file and environment.
	if host := args.Flag("host"); host != "" {
		cfg.Host = host
	}
	if model := args.Flag("model"); model != "" {
		cfg.Model = model
	}
	if args.Bool("plain") {
		cfg.UI.Plain = true
	}
	if args.Bool("no-markdown") {
		cfg.UI.Markdown = false
	}
	if args.Bool("no-stream") {
		cfg.Stream = false
	}

	client := ollama.NewClientWithConfig(ollama.ClientConfig{
		BaseURL:      cfg.Host,
		Timeout:      cfg.Timeout(),
		DefaultModel: cfg.Model,
	})

	ctx := context.Background()

	switch args.Subcommand() {
	case "models":
		return cli.RunModels(ctx, os.Stdout, client)

	case "":
		return runChat(ctx, cfg, cfgPath, client)

	default:
		printUsage()
		return fmt.Errorf("unknown command %q", args.Subcommand())
	}
}

func runChat(ctx context.Context, cfg *config.Config, cfgPath string, client *ollama.Client) error {
	if err := client.CheckRunning(ctx); err != nil {
		return fmt.Errorf("cannot reach %s - is Ollama running? (ollama serve)", client.BaseURL())
	}

	transport := session.NewChatTransport(client, cfg.Model)
	transport.SetStreaming(cfg.Stream)

	// Pick up config edits between turns: the model switch applies to
	// the next request.
	watchCtx, stopWatch := context.WithCancel(ctx)
	defer stopWatch()
	if w, err := config.NewWatcher(cfgPath, func(next *config.Config) {
		transport.SetModel(next.Model)
	}); err == nil {
		go w.Run(watchCtx)
	}

	if cfg.UI.Plain || !term.IsTerminal(int(os.Stdout.Fd())) {
		return cli.NewREPL(cfg, transport).Run(ctx)
	}

	m := chat.New(cfg, transport)
	p := tea.NewProgram(m, tea.WithAltScreen())
	m.SetProgram(p)

	_, err := p.Run()
	return err
}

func printUsage() {
	fmt.Print(`streamchat - terminal chat for a local Ollama service

Usage:
  streamchat [flags]              interactive chat
  streamchat models               list installed models

Flags:
  --host URL       service base URL (default http://localhost:11434)
  --model NAME     model for new conversations
  --config PATH    config file (default ~/.streamchat/config.toml)
  --plain          line-oriented surface instead of the full-screen UI
  --no-markdown    disable markdown rendering of replies
  --no-stream      request each reply whole instead of streaming
  --version        print the version

In chat, "exit", "quit", ":q" or ":wq" ends the session and "clear"
resets the conversation. Press Esc or Ctrl-C to interrupt a streaming
reply.
`)
}
