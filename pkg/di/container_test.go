package di

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ssargent/freyjawal/pkg/config"
	"github.com/ssargent/freyjawal/pkg/frame"
)

func testContainer(t *testing.T) *Container {
	t.Helper()
	cfg := config.DefaultConfig()
	cfg.DataDir = t.TempDir()
	cfg.WAL.Backend = "os"

	c := NewContainer()
	c.Configure(cfg, nil)
	return c
}

func TestContainer_Defaults(t *testing.T) {
	c := NewContainer()
	assert.NotNil(t, c.GetConfig())
	assert.NotNil(t, c.GetLogger())
	assert.NotNil(t, c.GetRegistry())
	assert.IsType(t, &DefaultServiceFactory{}, c.GetServiceFactory())
}

func TestContainer_OpenWriterTwice(t *testing.T) {
	c := testContainer(t)

	for i := 0; i < 2; i++ {
		w, err := c.OpenWriter()
		require.NoError(t, err, "metrics are registered once")
		require.NoError(t, w.Append(frame.Frame{LSN: uint64(i + 1), Table: "t"}, true))
		require.NoError(t, w.Close())
	}

	info, err := os.Stat(c.GetConfig().WALPath())
	require.NoError(t, err)
	assert.Equal(t, int64(2*(frame.Overhead+1)), info.Size())

	families, err := c.GetRegistry().Gather()
	require.NoError(t, err)
	assert.NotEmpty(t, families)
}

func TestContainer_OpenWriterBadBackend(t *testing.T) {
	c := testContainer(t)
	c.GetConfig().WAL.Backend = "tape"

	_, err := c.OpenWriter()
	assert.Error(t, err)
}

func TestDefaultServiceFactory_CreateService(t *testing.T) {
	c := testContainer(t)

	svc, err := c.GetServiceFactory().CreateService(c, "key")
	require.NoError(t, err)
	require.NotNil(t, svc.Server)
	assert.Equal(t, c.GetConfig().WALPath(), svc.Writer.Path())

	lsn, err := svc.Sequencer.Next(c.GetConfig().WAL.FileName)
	require.NoError(t, err)
	assert.Equal(t, uint64(1), lsn)

	require.NoError(t, svc.Close())
	assert.DirExists(t, c.GetConfig().SequenceDir())
}

type stubFactory struct{ calls int }

func (s *stubFactory) CreateService(*Container, string) (*Service, error) {
	s.calls++
	return &Service{}, nil
}

func TestContainer_SetServiceFactory(t *testing.T) {
	c := NewContainer()
	stub := &stubFactory{}
	c.SetServiceFactory(stub)

	svc, err := c.GetServiceFactory().CreateService(c, "")
	require.NoError(t, err)
	assert.NoError(t, svc.Close())
	assert.Equal(t, 1, stub.calls)
}
