package model

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/lyricsync/scribed/internal/accel"
	"github.com/stretchr/testify/require"
)

type fakeLoader struct {
	mu    sync.Mutex
	loads []Size
	fail  map[Size]error
}

func (f *fakeLoader) Load(_ context.Context, size Size) (*Handle, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.loads = append(f.loads, size)
	if err, ok := f.fail[size]; ok {
		return nil, err
	}
	return &Handle{Size: size, Device: accel.CPU, Path: "/models/" + string(size)}, nil
}

func (f *fakeLoader) loadCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.loads)
}

func TestNewRegistryLoadsDefault(t *testing.T) {
	t.Parallel()

	loader := &fakeLoader{}
	registry, err := NewRegistry(context.Background(), loader, Small, nil)
	require.NoError(t, err)
	require.Equal(t, []Size{Small}, loader.loads)
	require.Equal(t, Small, registry.Snapshot().Size)
}

func TestNewRegistryFailsWhenDefaultCannotLoad(t *testing.T) {
	t.Parallel()

	loader := &fakeLoader{fail: map[Size]error{Small: errors.New("no disk")}}
	_, err := NewRegistry(context.Background(), loader, Small, nil)
	require.Error(t, err)
}

func TestResolveBySizeReusesCurrentHandle(t *testing.T) {
	t.Parallel()

	loader := &fakeLoader{}
	registry, err := NewRegistry(context.Background(), loader, Small, nil)
	require.NoError(t, err)

	first := registry.ResolveBySize(context.Background(), Small)
	second := registry.ResolveBySize(context.Background(), Small)
	require.Same(t, first, second)
	require.Equal(t, 1, loader.loadCount(), "matching size must not reload")
}

func TestResolveBySizeSwapsTier(t *testing.T) {
	t.Parallel()

	loader := &fakeLoader{}
	registry, err := NewRegistry(context.Background(), loader, Small, nil)
	require.NoError(t, err)

	handle := registry.ResolveBySize(context.Background(), Large)
	require.Equal(t, Large, handle.Size)
	require.Equal(t, Large, registry.Snapshot().Size)
}

func TestResolveBySizeFallsBackToPreviousOnFailure(t *testing.T) {
	t.Parallel()

	loader := &fakeLoader{fail: map[Size]error{Large: errors.New("out of memory")}}
	registry, err := NewRegistry(context.Background(), loader, Small, nil)
	require.NoError(t, err)

	handle := registry.ResolveBySize(context.Background(), Large)
	require.Equal(t, Small, handle.Size, "failed swap must serve the previously loaded model")
	require.Equal(t, Small, registry.Snapshot().Size)
}

func TestResolveByQualityMapsTiers(t *testing.T) {
	t.Parallel()

	loader := &fakeLoader{}
	registry, err := NewRegistry(context.Background(), loader, Small, nil)
	require.NoError(t, err)

	require.Equal(t, Small, registry.ResolveByQuality(context.Background(), Fast, nil).Size)
	require.Equal(t, Medium, registry.ResolveByQuality(context.Background(), High, nil).Size)
	require.Equal(t, Large, registry.ResolveByQuality(context.Background(), Best, nil).Size)
}

func TestResolveByQualityExplicitSizeWins(t *testing.T) {
	t.Parallel()

	loader := &fakeLoader{}
	registry, err := NewRegistry(context.Background(), loader, Small, nil)
	require.NoError(t, err)

	explicit := Large
	handle := registry.ResolveByQuality(context.Background(), Fast, &explicit)
	require.Equal(t, Large, handle.Size)
}

func TestConcurrentSwapsNeverTearCurrentHandle(t *testing.T) {
	t.Parallel()

	loader := &fakeLoader{}
	registry, err := NewRegistry(context.Background(), loader, Small, nil)
	require.NoError(t, err)

	const workers = 50
	handles := make([]*Handle, workers)

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		target := Medium
		if i%2 == 0 {
			target = Large
		}
		wg.Add(1)
		go func(i int, size Size) {
			defer wg.Done()
			handles[i] = registry.ResolveBySize(context.Background(), size)
		}(i, target)
	}
	wg.Wait()

	for _, handle := range handles {
		require.NotNil(t, handle)
		require.NotEmpty(t, handle.Path)
	}

	final := registry.Snapshot().Size
	require.Contains(t, []Size{Medium, Large}, final,
		"current handle must be one of the fully loaded targets")
}
