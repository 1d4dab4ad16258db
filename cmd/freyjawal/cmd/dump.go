/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/ssargent/freyjawal/pkg/frame"
)

// dumpCmd represents the dump command
var dumpCmd = &cobra.Command{
	Use:   "dump [wal-file]",
	Short: "List the frames in a log file",
	Long: `Print every frame in a log file. The configured log is used when no
file is given. A torn frame at the end is reported and left alone.

Examples:
  freyjawal dump
  freyjawal dump ./data/freyja.wal --data --format json`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		showData, _ := cmd.Flags().GetBool("data")
		format, _ := cmd.Flags().GetString("format")
		if format != "text" && format != "json" {
			return fmt.Errorf("unknown format %q", format)
		}

		path := container.GetConfig().WALPath()
		if len(args) == 1 {
			path = args[0]
		}

		f, err := os.Open(path)
		if err != nil {
			return fmt.Errorf("failed to open log: %w", err)
		}
		defer f.Close()

		out := cmd.OutOrStdout()
		enc := json.NewEncoder(out)
		s := frame.NewScanner(f)
		count := 0
		for s.Next() {
			fr := s.Frame()
			offset := s.Offset() - int64(frame.Size(fr))
			count++

			if format == "json" {
				if err := enc.Encode(dumpRecord(offset, fr, showData)); err != nil {
					return err
				}
				continue
			}

			fmt.Fprintf(out, "%08d lsn=%d txn=%d op=%s table=%q len=%d",
				offset, fr.LSN, fr.TxnID, fr.Op, fr.Table, len(fr.Data))
			if showData {
				fmt.Fprintf(out, " data=%q", fr.Data)
			}
			fmt.Fprintln(out)
		}

		if err := s.Err(); err != nil {
			if !errors.Is(err, frame.ErrTruncated) {
				return fmt.Errorf("failed to read log: %w", err)
			}
			cmd.PrintErrf("warning: torn frame after offset %d\n", s.Offset())
		}

		if format == "text" {
			fmt.Fprintf(out, "%d frames, %d bytes\n", count, s.Offset())
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(dumpCmd)

	dumpCmd.Flags().Bool("data", false, "Include frame payloads")
	dumpCmd.Flags().String("format", "text", "Output format: text or json")
}

type frameRecord struct {
	Offset int64  `json:"offset"`
	LSN    uint64 `json:"lsn"`
	TxnID  int32  `json:"txn_id"`
	Op     string `json:"op"`
	Table  string `json:"table"`
	Length int    `json:"length"`
	Data   []byte `json:"data,omitempty"` // base64
}

func dumpRecord(offset int64, f frame.Frame, showData bool) frameRecord {
	r := frameRecord{
		Offset: offset,
		LSN:    f.LSN,
		TxnID:  f.TxnID,
		Op:     f.Op.String(),
		Table:  f.Table,
		Length: len(f.Data),
	}
	if showData {
		r.Data = f.Data
	}
	return r
}
