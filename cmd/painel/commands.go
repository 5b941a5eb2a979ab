package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
)

type command struct {
	name   string
	minute string
}

func parseCommand(line string) (command, error) {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return command{}, fmt.Errorf("empty command")
	}
	switch strings.ToLower(fields[0]) {
	case "m", "minuto":
		if len(fields) != 2 {
			return command{}, fmt.Errorf("usage: m HH:MM")
		}
		return command{name: "minute", minute: fields[1]}, nil
	case "l", "live":
		return command{name: "live"}, nil
	case "q", "quit":
		return command{name: "quit"}, nil
	default:
		return command{}, fmt.Errorf("unknown command %q", fields[0])
	}
}

type controls interface {
	SelectMinute(ctx context.Context, minute string) error
	ClearFilter(ctx context.Context)
}

// readCommands applies one command per input line until r is exhausted, ctx
// is done or the user quits.
func readCommands(ctx context.Context, r io.Reader, c controls, quit func()) {
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		if ctx.Err() != nil {
			return
		}
		cmd, err := parseCommand(sc.Text())
		if err != nil {
			slog.Warn("painel: bad command", "error", err)
			continue
		}
		switch cmd.name {
		case "minute":
			if err := c.SelectMinute(ctx, cmd.minute); err != nil {
				slog.Warn("painel: select minute failed", "error", err)
			}
		case "live":
			c.ClearFilter(ctx)
		case "quit":
			quit()
			return
		}
	}
}
