package runner_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yaklabco/govlist/pkg/config"
	"github.com/yaklabco/govlist/pkg/runner"
)

// writeTree creates files (relative, slash-separated) under dir.
func writeTree(t *testing.T, dir string, files map[string]string) {
	t.Helper()
	for name, content := range files {
		path := filepath.Join(dir, filepath.FromSlash(name))
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	}
}

func abs(dir string, names ...string) []string {
	out := make([]string, 0, len(names))
	for _, n := range names {
		out = append(out, filepath.Join(dir, filepath.FromSlash(n)))
	}
	return out
}

func TestDiscover(t *testing.T) {
	t.Parallel()

	tree := map[string]string{
		"readme.md":           "# readme",
		"notes.txt":           "one\ntwo",
		"docs/guide.md":       "# guide",
		"docs/api.markdown":   "# api",
		"docs/deep/trace.log": "line",
		"src/main.go":         "package main",
		"vendor/lib/x.md":     "# vendored",
		".hidden/secret.md":   "# hidden",
		"docs/.draft.md":      "# draft",
	}

	tests := []struct {
		name string
		opts runner.Options
		want []string
	}{
		{
			name: "default extensions",
			opts: runner.Options{},
			want: []string{
				"docs/api.markdown", "docs/deep/trace.log", "docs/guide.md",
				"notes.txt", "readme.md", "vendor/lib/x.md",
			},
		},
		{
			name: "custom extensions",
			opts: runner.Options{Extensions: []string{".TXT"}},
			want: []string{"notes.txt"},
		},
		{
			name: "extensions from config",
			opts: runner.Options{Config: &config.Config{Extensions: []string{".log"}}},
			want: []string{"docs/deep/trace.log"},
		},
		{
			name: "exclude directory tree",
			opts: runner.Options{ExcludeGlobs: []string{"vendor/**", "docs/**"}},
			want: []string{"notes.txt", "readme.md"},
		},
		{
			name: "exclude by base name",
			opts: runner.Options{ExcludeGlobs: []string{"*.log", "*.markdown"}},
			want: []string{"docs/guide.md", "notes.txt", "readme.md", "vendor/lib/x.md"},
		},
		{
			name: "exclude anywhere",
			opts: runner.Options{ExcludeGlobs: []string{"**/lib"}},
			want: []string{
				"docs/api.markdown", "docs/deep/trace.log", "docs/guide.md",
				"notes.txt", "readme.md",
			},
		},
		{
			name: "include globs",
			opts: runner.Options{IncludeGlobs: []string{"docs/**/*.md", "*.txt"}},
			want: []string{"docs/guide.md", "notes.txt"},
		},
		{
			name: "subdirectory path",
			opts: runner.Options{Paths: []string{"docs"}},
			want: []string{"docs/api.markdown", "docs/deep/trace.log", "docs/guide.md"},
		},
		{
			name: "overlapping paths are deduplicated",
			opts: runner.Options{Paths: []string{"docs", ".", "docs/guide.md"}},
			want: []string{
				"docs/api.markdown", "docs/deep/trace.log", "docs/guide.md",
				"notes.txt", "readme.md", "vendor/lib/x.md",
			},
		},
		{
			name: "explicit hidden file",
			opts: runner.Options{Paths: []string{"docs/.draft.md"}},
			want: []string{"docs/.draft.md"},
		},
		{
			name: "explicit file with wrong extension",
			opts: runner.Options{Paths: []string{"src/main.go"}},
			want: []string{},
		},
	}

	for _, testCase := range tests {
		t.Run(testCase.name, func(t *testing.T) {
			t.Parallel()

			dir := t.TempDir()
			writeTree(t, dir, tree)

			opts := testCase.opts
			opts.WorkingDir = dir

			got, err := runner.Discover(context.Background(), opts)
			require.NoError(t, err)

			want := abs(dir, testCase.want...)
			if len(want) == 0 {
				assert.Empty(t, got)
				return
			}
			assert.Equal(t, want, got)
		})
	}
}

func TestDiscover_NonExistentPath(t *testing.T) {
	t.Parallel()

	_, err := runner.Discover(context.Background(), runner.Options{
		Paths:      []string{"missing"},
		WorkingDir: t.TempDir(),
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestDiscover_ContextCancellation(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeTree(t, dir, map[string]string{"a.txt": "a"})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := runner.Discover(ctx, runner.Options{WorkingDir: dir})
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestDiscover_Symlinks(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeTree(t, dir, map[string]string{
		"real/a.md":      "# a",
		"outside/b.txt":  "b",
		"tree/inner.txt": "inner",
	})

	if err := os.Symlink(filepath.Join(dir, "real/a.md"), filepath.Join(dir, "tree/link.md")); err != nil {
		t.Skipf("symlinks unsupported: %v", err)
	}
	require.NoError(t, os.Symlink(filepath.Join(dir, "outside"), filepath.Join(dir, "tree/linked")))
	require.NoError(t, os.Symlink(filepath.Join(dir, "nowhere.md"), filepath.Join(dir, "tree/broken.md")))
	// A cycle back to the tree itself.
	require.NoError(t, os.Symlink(filepath.Join(dir, "tree"), filepath.Join(dir, "tree/loop")))

	t.Run("not following directories", func(t *testing.T) {
		t.Parallel()

		got, err := runner.Discover(context.Background(), runner.Options{
			Paths:      []string{"tree"},
			WorkingDir: dir,
		})
		require.NoError(t, err)
		assert.Equal(t, abs(dir, "tree/inner.txt", "tree/link.md"), got)
	})

	t.Run("following directories", func(t *testing.T) {
		t.Parallel()

		got, err := runner.Discover(context.Background(), runner.Options{
			Paths:          []string{"tree"},
			WorkingDir:     dir,
			FollowSymlinks: true,
		})
		require.NoError(t, err)
		assert.Contains(t, got, filepath.Join(dir, "outside/b.txt"))
		assert.Contains(t, got, filepath.Join(dir, "tree/link.md"))
		assert.NotContains(t, got, filepath.Join(dir, "tree/broken.md"))
	})
}

func TestDefaultExtensions(t *testing.T) {
	t.Parallel()

	assert.Equal(t, []string{".txt", ".log", ".md", ".markdown"}, runner.DefaultExtensions())
}
