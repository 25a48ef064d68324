package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/unkn0wn-root/litecache"
)

const replHelp = `Commands (one per line):
    SET key value [ttl_ms]   value runs to the end of the line; a trailing
                             integer after it is taken as ttl_ms
    GET key
    HAS key
    DEL key
    CLEAR
    STATS
    SWEEP
Responses start with OK:, MISS: or ERROR:.`

func newReplCmd(f *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "repl",
		Short: "Read commands from stdin",
		Long:  replHelp,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cc, err := openCache(cmd, f)
			if err != nil {
				return err
			}
			defer cc.Close(cmd.Context())
			return serve(cmd.Context(), cc, cmd.InOrStdin(), cmd.OutOrStdout())
		},
	}
}

// serve answers one response line per command line until in is exhausted or
// ctx is done. Command errors are reported inline; only read errors end it.
func serve(ctx context.Context, cc litecache.Cache[string], in io.Reader, out io.Writer) error {
	scanner := bufio.NewScanner(in)
	for scanner.Scan() {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		fmt.Fprintln(out, execute(ctx, cc, line))
	}
	return scanner.Err()
}

func execute(ctx context.Context, cc litecache.Cache[string], line string) string {
	parts := strings.Fields(line)
	command := strings.ToUpper(parts[0])
	args := parts[1:]

	switch command {
	case "SET":
		_, rest := nextField(line)
		key, value := nextField(rest)
		if key == "" || value == "" {
			return "ERROR: SET requires key value [ttl_ms]"
		}
		var ttl time.Duration
		if i := strings.LastIndexAny(value, " \t"); i >= 0 {
			if ms, err := strconv.ParseInt(value[i+1:], 10, 64); err == nil {
				if ms <= 0 {
					return "ERROR: ttl_ms must be a positive integer"
				}
				ttl = time.Duration(ms) * time.Millisecond
				value = strings.TrimRight(value[:i], " \t")
			}
		}
		if err := cc.Set(ctx, key, value, ttl); err != nil {
			return "ERROR: " + err.Error()
		}
		return "OK: set"

	case "GET":
		if len(args) != 1 {
			return "ERROR: GET requires key"
		}
		v, ok, err := cc.Get(ctx, args[0])
		switch {
		case err != nil:
			return "ERROR: " + err.Error()
		case !ok:
			return "MISS: " + args[0]
		}
		return "OK: " + v

	case "HAS":
		if len(args) != 1 {
			return "ERROR: HAS requires key"
		}
		ok, err := cc.Has(ctx, args[0])
		switch {
		case err != nil:
			return "ERROR: " + err.Error()
		case !ok:
			return "MISS: " + args[0]
		}
		return "OK: true"

	case "DEL":
		if len(args) != 1 {
			return "ERROR: DEL requires key"
		}
		if err := cc.Delete(ctx, args[0]); err != nil {
			return "ERROR: " + err.Error()
		}
		return "OK: deleted"

	case "CLEAR":
		if err := cc.Clear(ctx); err != nil {
			return "ERROR: " + err.Error()
		}
		return "OK: cleared"

	case "STATS":
		st, err := cc.Stats(ctx)
		if err != nil {
			return "ERROR: " + err.Error()
		}
		return "OK: " + formatStats(st)

	case "SWEEP":
		n, err := cc.SweepExpired(ctx)
		if err != nil {
			return "ERROR: " + err.Error()
		}
		return fmt.Sprintf("OK: removed %d", n)

	default:
		return "ERROR: unknown command: " + command
	}
}

// nextField splits off the first whitespace-delimited field of s.
func nextField(s string) (field, rest string) {
	s = strings.TrimLeft(s, " \t")
	i := strings.IndexAny(s, " \t")
	if i < 0 {
		return s, ""
	}
	return s[:i], strings.TrimLeft(s[i:], " \t")
}
