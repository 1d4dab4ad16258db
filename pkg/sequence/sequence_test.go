package sequence

import (
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSequencer_Next(t *testing.T) {
	s, err := Open(filepath.Join(t.TempDir(), "seq"))
	require.NoError(t, err)
	defer s.Close()

	cur, err := s.Current("main")
	require.NoError(t, err)
	assert.Equal(t, uint64(0), cur)

	for want := uint64(1); want <= 3; want++ {
		lsn, err := s.Next("main")
		require.NoError(t, err)
		assert.Equal(t, want, lsn)
	}

	other, err := s.Next("other")
	require.NoError(t, err)
	assert.Equal(t, uint64(1), other, "logs are numbered independently")
}

func TestSequencer_SurvivesReopen(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "seq")

	s, err := Open(dir)
	require.NoError(t, err)
	for i := 0; i < 5; i++ {
		_, err := s.Next("main")
		require.NoError(t, err)
	}
	require.NoError(t, s.Close())

	s, err = Open(dir)
	require.NoError(t, err)
	defer s.Close()

	cur, err := s.Current("main")
	require.NoError(t, err)
	assert.Equal(t, uint64(5), cur)

	lsn, err := s.Next("main")
	require.NoError(t, err)
	assert.Equal(t, uint64(6), lsn)
}

func TestSequencer_Reset(t *testing.T) {
	s, err := Open(filepath.Join(t.TempDir(), "seq"))
	require.NoError(t, err)
	defer s.Close()

	_, err = s.Next("main")
	require.NoError(t, err)
	require.NoError(t, s.Reset("main"))

	lsn, err := s.Next("main")
	require.NoError(t, err)
	assert.Equal(t, uint64(1), lsn)
}

func TestSequencer_ConcurrentNextIsUnique(t *testing.T) {
	s, err := Open(filepath.Join(t.TempDir(), "seq"))
	require.NoError(t, err)
	defer s.Close()

	const workers, perWorker = 4, 25
	var (
		mu   sync.Mutex
		seen = make(map[uint64]bool)
		wg   sync.WaitGroup
	)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < perWorker; j++ {
				lsn, err := s.Next("main")
				assert.NoError(t, err)
				mu.Lock()
				seen[lsn] = true
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.Len(t, seen, workers*perWorker)
	cur, err := s.Current("main")
	require.NoError(t, err)
	assert.Equal(t, uint64(workers*perWorker), cur)
}
