/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ssargent/freyjawal/pkg/frame"
)

// appendCmd represents the append command
var appendCmd = &cobra.Command{
	Use:   "append",
	Short: "Append one frame to the log",
	Long: `Append a single frame to the configured log file. Without --lsn the
next LSN is taken from the sequencer.

Examples:
  freyjawal append --table users --op insert --data '{"id":1}'
  freyjawal append --lsn 42 --txn 7 --table users --op delete --sync`,
	RunE: func(cmd *cobra.Command, args []string) error {
		lsn, _ := cmd.Flags().GetUint64("lsn")
		txn, _ := cmd.Flags().GetInt32("txn")
		opName, _ := cmd.Flags().GetString("op")
		table, _ := cmd.Flags().GetString("table")
		data, _ := cmd.Flags().GetString("data")
		sync, _ := cmd.Flags().GetBool("sync")

		op, err := parseOp(opName)
		if err != nil {
			return err
		}

		if lsn == 0 {
			seq, err := container.OpenSequencer()
			if err != nil {
				return fmt.Errorf("failed to open sequencer: %w", err)
			}
			lsn, err = seq.Next(container.GetConfig().WAL.FileName)
			if cerr := seq.Close(); err == nil {
				err = cerr
			}
			if err != nil {
				return fmt.Errorf("failed to assign LSN: %w", err)
			}
		}

		w, err := container.OpenWriter()
		if err != nil {
			return fmt.Errorf("failed to open log: %w", err)
		}

		f := frame.Frame{LSN: lsn, TxnID: txn, Op: op, Table: table, Data: []byte(data)}
		if err := w.Append(f, sync); err != nil {
			_ = w.Close()
			return fmt.Errorf("failed to append frame: %w", err)
		}
		if err := w.Close(); err != nil {
			return fmt.Errorf("failed to close log: %w", err)
		}

		cmd.Printf("Appended frame lsn=%d op=%s table=%q size=%d to %s\n",
			lsn, op, table, frame.Size(f), w.Path())
		return nil
	},
}

func init() {
	rootCmd.AddCommand(appendCmd)

	appendCmd.Flags().Uint64("lsn", 0, "Log sequence number (0 = assign from the sequencer)")
	appendCmd.Flags().Int32("txn", 0, "Transaction ID")
	appendCmd.Flags().String("op", "insert", "Operation: insert, update, delete, checkpoint or a number 0-255")
	appendCmd.Flags().String("table", "", "Table name")
	appendCmd.Flags().String("data", "", "Frame payload")
	appendCmd.Flags().Bool("sync", false, "Force the frame to disk before returning")
}

// parseOp accepts an operation name or its numeric code
func parseOp(s string) (frame.OpType, error) {
	switch strings.ToLower(s) {
	case "insert":
		return frame.OpInsert, nil
	case "update":
		return frame.OpUpdate, nil
	case "delete":
		return frame.OpDelete, nil
	case "checkpoint":
		return frame.OpCheckpoint, nil
	}

	n, err := strconv.ParseUint(s, 10, 8)
	if err != nil {
		return 0, fmt.Errorf("unknown operation %q", s)
	}
	return frame.OpType(n), nil
}
