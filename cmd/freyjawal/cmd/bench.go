/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"bytes"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/ssargent/freyjawal/pkg/frame"
	"github.com/ssargent/freyjawal/pkg/wal"
)

// benchCmd represents the bench command
var benchCmd = &cobra.Command{
	Use:   "bench",
	Short: "Measure append throughput",
	Long: `Append a number of frames to a fresh scratch log in the data directory,
forcing a sync every --sync-every frames, and report throughput. The scratch
log is removed afterwards unless --keep is set.

Examples:
  freyjawal bench
  freyjawal bench --frames 1000000 --sync-every 0 --payload 256`,
	RunE: func(cmd *cobra.Command, args []string) error {
		opts := benchOptions{}
		opts.frames, _ = cmd.Flags().GetInt("frames")
		opts.syncEvery, _ = cmd.Flags().GetInt("sync-every")
		opts.payload, _ = cmd.Flags().GetInt("payload")
		keep, _ := cmd.Flags().GetBool("keep")

		if opts.frames <= 0 {
			return fmt.Errorf("--frames must be positive")
		}
		if opts.payload < 0 || opts.syncEvery < 0 {
			return fmt.Errorf("--payload and --sync-every must not be negative")
		}

		cfg := container.GetConfig()
		wcfg, err := cfg.WriterConfig()
		if err != nil {
			return err
		}
		wcfg.Path, err = scratchLog(cfg.DataDir)
		if err != nil {
			return err
		}
		wcfg.Logger = container.GetLogger()

		if !keep {
			defer os.Remove(wcfg.Path)
		}

		res, err := runBench(wcfg, opts)
		if err != nil {
			return err
		}

		cmd.Printf("frames:       %d (%d byte payload, sync every %d)\n", opts.frames, opts.payload, opts.syncEvery)
		cmd.Printf("elapsed:      %s\n", res.elapsed)
		cmd.Printf("throughput:   %.0f frames/sec, %.2f MB/sec\n", res.framesPerSec(), res.mbPerSec())
		cmd.Printf("flushes:      %d\n", res.stats.Flushes)
		cmd.Printf("bytes:        %d\n", res.stats.BytesWritten)
		if keep {
			cmd.Printf("log kept at:  %s\n", wcfg.Path)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(benchCmd)

	benchCmd.Flags().Int("frames", 100000, "Number of frames to append")
	benchCmd.Flags().Int("sync-every", 1000, "Force a sync every N frames (0 = only at close)")
	benchCmd.Flags().Int("payload", 100, "Payload size in bytes")
	benchCmd.Flags().Bool("keep", false, "Keep the scratch log")
}

type benchOptions struct {
	frames    int
	syncEvery int
	payload   int
}

type benchResult struct {
	elapsed time.Duration
	stats   wal.Stats
}

func (r benchResult) framesPerSec() float64 {
	return float64(r.stats.FramesAppended) / r.elapsed.Seconds()
}

func (r benchResult) mbPerSec() float64 {
	return float64(r.stats.BytesWritten) / (1 << 20) / r.elapsed.Seconds()
}

// scratchLog creates an empty, uniquely named log file in dir
func scratchLog(dir string) (string, error) {
	if err := os.MkdirAll(dir, 0750); err != nil {
		return "", fmt.Errorf("failed to create data directory: %w", err)
	}
	f, err := os.CreateTemp(dir, "bench-*.wal")
	if err != nil {
		return "", fmt.Errorf("failed to create scratch log: %w", err)
	}
	return f.Name(), f.Close()
}

// runBench appends the frames to the log at cfg.Path and closes the writer
func runBench(cfg wal.Config, opts benchOptions) (benchResult, error) {
	w, err := wal.New(cfg)
	if err != nil {
		return benchResult{}, fmt.Errorf("failed to open scratch log: %w", err)
	}

	data := bytes.Repeat([]byte("x"), opts.payload)
	start := time.Now()
	for i := 1; i <= opts.frames; i++ {
		f := frame.Frame{LSN: uint64(i), TxnID: int32(i), Op: frame.OpInsert, Table: "bench", Data: data}
		sync := opts.syncEvery > 0 && i%opts.syncEvery == 0
		if err := w.Append(f, sync); err != nil {
			_ = w.Close()
			return benchResult{}, fmt.Errorf("append %d: %w", i, err)
		}
	}
	if err := w.Flush(); err != nil {
		_ = w.Close()
		return benchResult{}, fmt.Errorf("final flush: %w", err)
	}
	elapsed := time.Since(start)
	stats := w.Stats()

	if err := w.Close(); err != nil {
		return benchResult{}, err
	}
	return benchResult{elapsed: elapsed, stats: stats}, nil
}
