package cmd

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ssargent/freyjawal/pkg/config"
	"github.com/ssargent/freyjawal/pkg/di"
	"github.com/ssargent/freyjawal/pkg/frame"
)

// resetFlags puts every flag back to its default so runs do not leak into
// each other through the package-level commands.
func resetFlags(c *cobra.Command) {
	reset := func(f *pflag.Flag) {
		_ = f.Value.Set(f.DefValue)
		f.Changed = false
	}
	c.Flags().VisitAll(reset)
	c.PersistentFlags().VisitAll(reset)
	for _, sub := range c.Commands() {
		resetFlags(sub)
	}
}

// run executes the CLI against a temp config file and data dir
func run(t *testing.T, env testEnv, args ...string) (string, error) {
	t.Helper()
	SetContainer(di.NewContainer())
	resetFlags(rootCmd)

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(append([]string{"--config", env.configPath, "--data-dir", env.dataDir}, args...))
	err := rootCmd.Execute()
	return out.String(), err
}

type testEnv struct {
	configPath string
	dataDir    string
}

func newEnv(t *testing.T) testEnv {
	t.Helper()
	dir := t.TempDir()
	return testEnv{
		configPath: filepath.Join(dir, "config.yaml"),
		dataDir:    filepath.Join(dir, "data"),
	}
}

func (e testEnv) walPath() string {
	return filepath.Join(e.dataDir, "freyja.wal")
}

func readLog(t *testing.T, path string) []frame.Frame {
	t.Helper()
	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	var frames []frame.Frame
	s := frame.NewScanner(f)
	for s.Next() {
		frames = append(frames, s.Frame())
	}
	require.NoError(t, s.Err())
	return frames
}

func TestRootRequiresContainer(t *testing.T) {
	env := newEnv(t)
	resetFlags(rootCmd)
	SetContainer(nil)

	rootCmd.SetOut(&bytes.Buffer{})
	rootCmd.SetErr(&bytes.Buffer{})
	rootCmd.SetArgs([]string{"--config", env.configPath, "dump"})
	err := rootCmd.Execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "dependency container not initialized")
}

func TestRootRejectsBadLogLevel(t *testing.T) {
	env := newEnv(t)
	_, err := run(t, env, "--log-level", "loud", "dump")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "logging.level")
}

func TestInitCommand(t *testing.T) {
	env := newEnv(t)

	out, err := run(t, env, "init", "--print-key")
	require.NoError(t, err)
	assert.Contains(t, out, "Configuration created")
	assert.True(t, config.ConfigExists(env.configPath))

	cfg, err := config.LoadConfig(env.configPath)
	require.NoError(t, err)
	assert.Equal(t, env.dataDir, cfg.DataDir)
	assert.Len(t, cfg.Security.APIKey, 64)
	assert.Contains(t, out, cfg.Security.APIKey)

	out, err = run(t, env, "init")
	require.NoError(t, err)
	assert.Contains(t, out, "already exists")

	_, err = run(t, env, "init", "--force")
	require.NoError(t, err)
	again, err := config.LoadConfig(env.configPath)
	require.NoError(t, err)
	assert.NotEqual(t, cfg.Security.APIKey, again.Security.APIKey)
}

func TestAppendCommand(t *testing.T) {
	env := newEnv(t)

	_, err := run(t, env, "append", "--lsn", "42", "--txn", "7", "--op", "update", "--table", "users", "--data", "bob")
	require.NoError(t, err)

	out, err := run(t, env, "append", "--table", "users", "--op", "delete", "--sync")
	require.NoError(t, err)
	assert.Contains(t, out, "lsn=1")

	out, err = run(t, env, "append", "--table", "users", "--op", "200")
	require.NoError(t, err)
	assert.Contains(t, out, "lsn=2")

	frames := readLog(t, env.walPath())
	require.Len(t, frames, 3)
	assert.Equal(t, frame.Frame{LSN: 42, TxnID: 7, Op: frame.OpUpdate, Table: "users", Data: []byte("bob")}, frames[0])
	assert.Equal(t, uint64(1), frames[1].LSN)
	assert.Equal(t, frame.OpDelete, frames[1].Op)
	assert.Equal(t, frame.OpType(200), frames[2].Op)
}

func TestAppendCommandBadOp(t *testing.T) {
	env := newEnv(t)
	_, err := run(t, env, "append", "--lsn", "1", "--op", "upsert")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown operation")
}

func TestParseOp(t *testing.T) {
	tests := []struct {
		in      string
		want    frame.OpType
		wantErr bool
	}{
		{"insert", frame.OpInsert, false},
		{"UPDATE", frame.OpUpdate, false},
		{"delete", frame.OpDelete, false},
		{"checkpoint", frame.OpCheckpoint, false},
		{"7", frame.OpType(7), false},
		{"256", 0, true},
		{"merge", 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := parseOp(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestBatchCommand(t *testing.T) {
	env := newEnv(t)

	batch := frame.Append(nil, frame.Frame{LSN: 1, Table: "a", Data: []byte("one")})
	batch = frame.Append(batch, frame.Frame{LSN: 2, Table: "a", Data: []byte("two")})
	input := filepath.Join(t.TempDir(), "batch.bin")
	require.NoError(t, os.WriteFile(input, batch, 0600))

	out, err := run(t, env, "batch", input)
	require.NoError(t, err)
	assert.Contains(t, out, "Batch holds 2 frames")
	assert.Contains(t, out, "Wrote 46 bytes")

	raw, err := os.ReadFile(env.walPath())
	require.NoError(t, err)
	assert.Equal(t, batch, raw)

	torn := filepath.Join(t.TempDir(), "torn.bin")
	require.NoError(t, os.WriteFile(torn, batch[:len(batch)-1], 0600))
	_, err = run(t, env, "batch", torn)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not well formed")

	_, err = run(t, env, "batch", "--check=false", torn)
	require.NoError(t, err)
}

func TestCountFrames(t *testing.T) {
	b := frame.Append(nil, frame.Frame{LSN: 1})
	b = frame.Append(b, frame.Frame{LSN: 2, Table: "t", Data: []byte("x")})

	n, err := countFrames(b)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	n, err = countFrames(nil)
	require.NoError(t, err)
	assert.Zero(t, n)

	_, err = countFrames(b[:5])
	assert.ErrorIs(t, err, frame.ErrTruncated)
}

func TestDumpCommand(t *testing.T) {
	env := newEnv(t)
	_, err := run(t, env, "append", "--lsn", "5", "--txn", "2", "--table", "users", "--data", "alice")
	require.NoError(t, err)

	out, err := run(t, env, "dump", "--data")
	require.NoError(t, err)
	assert.Contains(t, out, `00000000 lsn=5 txn=2 op=insert table="users" len=5 data="alice"`)
	assert.Contains(t, out, "1 frames, 29 bytes")

	out, err = run(t, env, "dump", "--format", "json", env.walPath())
	require.NoError(t, err)
	var rec frameRecord
	require.NoError(t, json.Unmarshal([]byte(strings.TrimSpace(out)), &rec))
	assert.Equal(t, frameRecord{LSN: 5, TxnID: 2, Op: "insert", Table: "users", Length: 5}, rec)

	_, err = run(t, env, "dump", "--format", "xml")
	assert.Error(t, err)
}

func TestDumpCommandBinaryPayload(t *testing.T) {
	env := newEnv(t)
	payload := []byte{0x00, 0xff, 0xfe, 'a', 0x80}
	path := filepath.Join(t.TempDir(), "bin.wal")
	require.NoError(t, os.WriteFile(path, frame.Append(nil, frame.Frame{LSN: 9, Table: "t", Data: payload}), 0600))

	out, err := run(t, env, "dump", "--format", "json", "--data", path)
	require.NoError(t, err)
	var rec frameRecord
	require.NoError(t, json.Unmarshal([]byte(strings.TrimSpace(out)), &rec))
	assert.Equal(t, payload, rec.Data)
	assert.Equal(t, len(payload), rec.Length)
}

func TestDumpCommandTornTail(t *testing.T) {
	env := newEnv(t)
	log := frame.Append(nil, frame.Frame{LSN: 1, Table: "t"})
	log = append(log, frame.Append(nil, frame.Frame{LSN: 2, Table: "t"})[:7]...)
	path := filepath.Join(t.TempDir(), "torn.wal")
	require.NoError(t, os.WriteFile(path, log, 0600))

	out, err := run(t, env, "dump", path)
	require.NoError(t, err)
	assert.Contains(t, out, "lsn=1")
	assert.Contains(t, out, "torn frame after offset 20")
	assert.Contains(t, out, "1 frames, 20 bytes")
}

func TestBenchCommand(t *testing.T) {
	env := newEnv(t)

	// A log that happens to be called bench.wal must survive a bench run.
	require.NoError(t, os.MkdirAll(env.dataDir, 0750))
	existing := filepath.Join(env.dataDir, "bench.wal")
	require.NoError(t, os.WriteFile(existing, []byte("keep me"), 0600))

	out, err := run(t, env, "bench", "--frames", "500", "--sync-every", "100", "--payload", "16", "--keep")
	require.NoError(t, err)
	assert.Contains(t, out, "frames/sec")

	kept, err := filepath.Glob(filepath.Join(env.dataDir, "bench-*.wal"))
	require.NoError(t, err)
	require.Len(t, kept, 1)
	assert.Contains(t, out, kept[0])

	frames := readLog(t, kept[0])
	require.Len(t, frames, 500)
	assert.Equal(t, uint64(500), frames[499].LSN)

	_, err = run(t, env, "bench", "--frames", "50")
	require.NoError(t, err)
	after, err := filepath.Glob(filepath.Join(env.dataDir, "bench-*.wal"))
	require.NoError(t, err)
	assert.Equal(t, kept, after, "scratch log removed without --keep")

	raw, err := os.ReadFile(existing)
	require.NoError(t, err)
	assert.Equal(t, "keep me", string(raw))

	_, err = run(t, env, "bench", "--frames", "0")
	assert.Error(t, err)
}

func TestScratchLogIsUnique(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "data")
	a, err := scratchLog(dir)
	require.NoError(t, err)
	b, err := scratchLog(dir)
	require.NoError(t, err)
	assert.NotEqual(t, a, b)
	assert.FileExists(t, a)
}

func TestRunBenchCountsFlushes(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.DataDir = t.TempDir()
	wcfg, err := cfg.WriterConfig()
	require.NoError(t, err)
	wcfg.Path = filepath.Join(cfg.DataDir, "bench.wal")

	res, err := runBench(wcfg, benchOptions{frames: 100, syncEvery: 10, payload: 8})
	require.NoError(t, err)
	assert.Equal(t, uint64(100), res.stats.FramesAppended)
	assert.Equal(t, uint64(10), res.stats.Flushes)
	assert.Equal(t, uint64(100*(frame.Overhead+len("bench")+8)), res.stats.BytesWritten)
}

func TestResolveAPIKey(t *testing.T) {
	cfg := config.DefaultConfig()
	key, err := resolveAPIKey(cfg)
	require.NoError(t, err)
	assert.Len(t, key, 64)

	cfg.Security.APIKey = "fixed"
	key, err = resolveAPIKey(cfg)
	require.NoError(t, err)
	assert.Equal(t, "fixed", key)
}
