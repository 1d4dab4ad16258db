/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/ssargent/freyjawal/pkg/frame"
)

// batchCmd represents the batch command
var batchCmd = &cobra.Command{
	Use:   "batch <input>",
	Short: "Append a pre-encoded batch file to the log",
	Long: `Write the contents of a file of already-encoded frames to the log
verbatim, then sync. By default the file is checked to be a whole number of
well-formed frames first.

Example:
  freyjawal batch ./frames.bin`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		check, _ := cmd.Flags().GetBool("check")

		data, err := os.ReadFile(args[0])
		if err != nil {
			return fmt.Errorf("failed to read batch: %w", err)
		}

		if check {
			frames, err := countFrames(data)
			if err != nil {
				return fmt.Errorf("batch %s is not well formed: %w", args[0], err)
			}
			cmd.Printf("Batch holds %d frames\n", frames)
		}

		w, err := container.OpenWriter()
		if err != nil {
			return fmt.Errorf("failed to open log: %w", err)
		}

		n, err := w.AppendBatch(data)
		if err == nil {
			err = w.Sync()
		}
		if cerr := w.Close(); err == nil {
			err = cerr
		}
		if err != nil {
			return fmt.Errorf("failed to write batch (%d of %d bytes written): %w", n, len(data), err)
		}

		cmd.Printf("Wrote %d bytes to %s\n", n, w.Path())
		return nil
	},
}

func init() {
	rootCmd.AddCommand(batchCmd)

	batchCmd.Flags().Bool("check", true, "Verify the batch decodes into whole frames before writing")
}

// countFrames decodes b frame by frame and fails on any torn tail
func countFrames(b []byte) (int, error) {
	count := 0
	for len(b) > 0 {
		_, n, err := frame.Decode(b)
		if err != nil {
			return count, err
		}
		b = b[n:]
		count++
	}
	return count, nil
}
