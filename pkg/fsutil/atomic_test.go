package fsutil_test

import (
	"context"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yaklabco/govlist/pkg/fsutil"
)

func TestWriteAtomic(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		existing string
		mode     os.FileMode
		wantMode os.FileMode
	}{
		{name: "new file", mode: 0644, wantMode: 0644},
		{name: "overwrites", existing: "original", mode: 0644, wantMode: 0644},
		{name: "restrictive mode", mode: 0600, wantMode: 0600},
		{name: "zero mode uses default", mode: 0, wantMode: fsutil.DefaultFileMode},
	}

	for _, testCase := range tests {
		t.Run(testCase.name, func(t *testing.T) {
			t.Parallel()

			dir := t.TempDir()
			path := filepath.Join(dir, ".govlist.yml")
			if testCase.existing != "" {
				require.NoError(t, os.WriteFile(path, []byte(testCase.existing), 0644))
			}

			require.NoError(t, fsutil.WriteAtomic(context.Background(), path, []byte("overscan: 3\n"), testCase.mode))

			got, err := os.ReadFile(path)
			require.NoError(t, err)
			assert.Equal(t, "overscan: 3\n", string(got))

			if runtime.GOOS != "windows" {
				info, err := os.Stat(path)
				require.NoError(t, err)
				assert.Equal(t, testCase.wantMode, info.Mode().Perm())
			}

			entries, err := os.ReadDir(dir)
			require.NoError(t, err)
			assert.Len(t, entries, 1, "temporary file left behind")
		})
	}
}

func TestWriteAtomic_Cancelled(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "out.yml")
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	require.ErrorIs(t, fsutil.WriteAtomic(ctx, path, []byte("x"), 0), context.Canceled)
	assert.NoFileExists(t, path)
}

func TestWriteAtomic_MissingDirectory(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "missing", "out.yml")
	require.Error(t, fsutil.WriteAtomic(context.Background(), path, []byte("x"), 0))
	assert.NoFileExists(t, path)
}
