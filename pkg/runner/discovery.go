package runner

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"slices"
	"strings"
)

// Discover finds row files matching opts. It returns sorted, de-duplicated
// absolute paths. Hidden files and directories are skipped while walking,
// but a hidden file named explicitly in opts.Paths is accepted.
func Discover(ctx context.Context, opts Options) ([]string, error) {
	workDir, err := resolveWorkDir(opts.WorkingDir)
	if err != nil {
		return nil, fmt.Errorf("resolve working directory: %w", err)
	}

	w := &walker{
		ctx:     ctx,
		workDir: workDir,
		exts:    opts.effectiveExtensions(),
		opts:    opts,
		seen:    make(map[string]struct{}),
		visited: make(map[string]struct{}),
	}

	for _, input := range opts.effectivePaths() {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("discovery cancelled: %w", err)
		}

		abs := input
		if !filepath.IsAbs(abs) {
			abs = filepath.Join(workDir, abs)
		}
		abs = filepath.Clean(abs)

		info, err := os.Stat(abs)
		if err != nil {
			return nil, fmt.Errorf("stat %s: %w", input, err)
		}

		if !info.IsDir() {
			w.consider(abs)
			continue
		}
		if err := w.walk(abs); err != nil {
			return nil, err
		}
	}

	slices.Sort(w.files)
	return w.files, nil
}

// resolveWorkDir resolves the working directory, defaulting to os.Getwd().
func resolveWorkDir(workDir string) (string, error) {
	if workDir == "" {
		wd, err := os.Getwd()
		if err != nil {
			return "", fmt.Errorf("get working directory: %w", err)
		}
		return wd, nil
	}
	abs, err := filepath.Abs(workDir)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path: %w", err)
	}
	return abs, nil
}

// walker accumulates matching files across several roots.
type walker struct {
	ctx     context.Context //nolint:containedctx // Scoped to a single Discover call.
	workDir string
	exts    []string
	opts    Options

	files []string
	seen  map[string]struct{}

	// visited holds resolved directory symlink targets, guarding against cycles.
	visited map[string]struct{}
}

func (w *walker) rel(p string) string {
	rel, err := filepath.Rel(w.workDir, p)
	if err != nil {
		return filepath.ToSlash(p)
	}
	return filepath.ToSlash(rel)
}

// consider adds p if it passes the extension and glob filters.
func (w *walker) consider(p string) {
	if _, dup := w.seen[p]; dup {
		return
	}
	if !w.matches(p) {
		return
	}
	w.seen[p] = struct{}{}
	w.files = append(w.files, p)
}

func (w *walker) matches(p string) bool {
	ext := strings.ToLower(filepath.Ext(p))
	if !slices.ContainsFunc(w.exts, func(e string) bool { return strings.ToLower(e) == ext }) {
		return false
	}

	rel := w.rel(p)
	if matchAny(rel, w.opts.ExcludeGlobs) {
		return false
	}
	if len(w.opts.IncludeGlobs) > 0 && !matchAny(rel, w.opts.IncludeGlobs) {
		return false
	}
	return true
}

func (w *walker) walk(root string) error {
	err := filepath.WalkDir(root, func(p string, entry fs.DirEntry, walkErr error) error {
		if err := w.ctx.Err(); err != nil {
			return err
		}
		if walkErr != nil {
			if os.IsPermission(walkErr) {
				return nil
			}
			return walkErr
		}

		hidden := p != root && strings.HasPrefix(entry.Name(), ".")

		if entry.IsDir() {
			if hidden || (p != root && matchAny(w.rel(p), w.opts.ExcludeGlobs)) {
				return filepath.SkipDir
			}
			return nil
		}
		if hidden {
			return nil
		}

		if entry.Type()&fs.ModeSymlink != 0 {
			return w.followLink(p)
		}

		w.consider(p)
		return nil
	})
	if err != nil {
		return fmt.Errorf("walk directory %s: %w", root, err)
	}
	return nil
}

// followLink handles a symlink met during a walk. Broken links are ignored,
// file links are treated as files, and directory links are walked only when
// FollowSymlinks is set and the target has not been walked before.
func (w *walker) followLink(p string) error {
	target, err := filepath.EvalSymlinks(p)
	if err != nil {
		return nil //nolint:nilerr // Broken symlinks are skipped.
	}
	info, err := os.Stat(target)
	if err != nil {
		return nil //nolint:nilerr // Unreadable targets are skipped.
	}

	if !info.IsDir() {
		w.consider(p)
		return nil
	}
	if !w.opts.FollowSymlinks {
		return nil
	}
	if _, done := w.visited[target]; done {
		return nil
	}
	w.visited[target] = struct{}{}

	return w.walk(target)
}

func matchAny(rel string, patterns []string) bool {
	return slices.ContainsFunc(patterns, func(pattern string) bool {
		return matchGlob(rel, pattern)
	})
}

// matchGlob matches a slash-separated relative path against a glob pattern.
// A "**" segment matches zero or more path segments. A pattern without a
// slash also matches against the base name alone, so "*.log" excludes log
// files at any depth.
func matchGlob(rel, pattern string) bool {
	rel = filepath.ToSlash(rel)
	pattern = strings.TrimSuffix(filepath.ToSlash(pattern), "/")

	if pattern == "" {
		return false
	}
	if !strings.Contains(pattern, "/") && !strings.Contains(pattern, "**") {
		ok, err := path.Match(pattern, path.Base(rel))
		if err == nil && ok {
			return true
		}
	}

	return matchSegments(strings.Split(rel, "/"), strings.Split(pattern, "/"))
}

func matchSegments(parts, pattern []string) bool {
	for len(pattern) > 0 {
		head := pattern[0]
		if head == "**" {
			rest := pattern[1:]
			for i := 0; i <= len(parts); i++ {
				if matchSegments(parts[i:], rest) {
					return true
				}
			}
			return false
		}

		if len(parts) == 0 {
			return false
		}
		ok, err := path.Match(head, parts[0])
		if err != nil || !ok {
			return false
		}
		parts, pattern = parts[1:], pattern[1:]
	}
	return len(parts) == 0
}
