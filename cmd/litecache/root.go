package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/unkn0wn-root/litecache"
	c "github.com/unkn0wn-root/litecache/codec"
)

type rootFlags struct {
	config string
	path   string
	max    int
	ttl    time.Duration
	driver string
	log    bool
}

func newRootCmd() *cobra.Command {
	var f rootFlags
	root := &cobra.Command{
		Use:           "litecache",
		Short:         "Disk-backed key/value cache with capacity and TTL eviction",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	pf := root.PersistentFlags()
	pf.StringVar(&f.config, "config", "", "YAML config file")
	pf.StringVar(&f.path, "path", "", "storage file (overrides config)")
	pf.IntVar(&f.max, "max", 0, "maximum live entries (overrides config)")
	pf.DurationVar(&f.ttl, "ttl", 0, "default entry lifetime (overrides config)")
	pf.StringVar(&f.driver, "driver", "", "native or fallback (overrides config)")
	pf.BoolVar(&f.log, "log", false, "log to stderr")

	root.AddCommand(
		newReplCmd(&f),
		newSweepCmd(&f),
		newStatsCmd(&f),
		newVersionCmd(),
	)
	return root
}

// resolveConfig merges the config file with flags set on the command line.
func resolveConfig(cmd *cobra.Command, f *rootFlags) (litecache.Config, error) {
	var cfg litecache.Config
	if f.config != "" {
		var err error
		if cfg, err = litecache.LoadConfig(f.config); err != nil {
			return cfg, err
		}
	}
	flags := cmd.Flags()
	if flags.Changed("path") {
		cfg.Path = f.path
	}
	if flags.Changed("max") {
		cfg.Max = f.max
	}
	if flags.Changed("ttl") {
		cfg.TTL = f.ttl
	}
	if flags.Changed("driver") {
		cfg.Driver = f.driver
	}
	if flags.Changed("log") {
		cfg.Log.Enabled = f.log
	}
	return cfg, nil
}

func openCache(cmd *cobra.Command, f *rootFlags) (litecache.Cache[string], error) {
	cfg, err := resolveConfig(cmd, f)
	if err != nil {
		return nil, err
	}
	return litecache.New[string](litecache.Options[string]{
		Config: cfg,
		Codec:  c.String{},
	})
}

func newSweepCmd(f *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "sweep",
		Short: "Delete every expired entry",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cc, err := openCache(cmd, f)
			if err != nil {
				return err
			}
			defer cc.Close(cmd.Context())

			n, err := cc.SweepExpired(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "removed %d expired entries\n", n)
			return nil
		},
	}
}

func newStatsCmd(f *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Print entry counts and settings",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cc, err := openCache(cmd, f)
			if err != nil {
				return err
			}
			defer cc.Close(cmd.Context())

			st, err := cc.Stats(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), formatStats(st))
			return nil
		},
	}
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "litecache %s\n", Version)
		},
	}
}

func formatStats(st litecache.Stats) string {
	return fmt.Sprintf("driver=%s count=%d stored=%d max=%d ttl=%s",
		st.Driver, st.Count, st.Stored, st.Max, st.TTL)
}
