// Package gitinfo resolves last-modified timestamps for content files from
// the source tree's git history.
package gitinfo

import (
	"errors"
	"path"
	"path/filepath"
	"sync"
	"time"

	git "github.com/go-git/go-git/v5"
)

// ErrNotRepository indicates the source tree is not inside a git work tree.
// Callers fall back to file modification times.
var ErrNotRepository = errors.New("source tree is not a git repository")

// Resolver answers last-modified queries against a repository's commit log.
// Lookups are cached; the Resolver is safe for concurrent use.
type Resolver struct {
	repo   *git.Repository
	prefix string // content root relative to the work tree root, slash separated

	mu    sync.Mutex
	cache map[string]time.Time
}

// NewResolver opens the repository containing root, walking up to find the
// .git directory the way the git CLI does.
func NewResolver(root string) (*Resolver, error) {
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return nil, err
	}

	repo, err := git.PlainOpenWithOptions(absRoot, &git.PlainOpenOptions{DetectDotGit: true})
	if err != nil {
		if errors.Is(err, git.ErrRepositoryNotExists) {
			return nil, ErrNotRepository
		}
		return nil, err
	}

	wt, err := repo.Worktree()
	if err != nil {
		return nil, err
	}
	prefix, err := filepath.Rel(wt.Filesystem.Root(), absRoot)
	if err != nil {
		return nil, err
	}
	if prefix == "." {
		prefix = ""
	}

	return &Resolver{
		repo:   repo,
		prefix: filepath.ToSlash(prefix),
		cache:  map[string]time.Time{},
	}, nil
}

// LastModified returns the author time of the newest commit touching the
// content-root-relative file. ok is false for files git has never seen
// (untracked or newly created).
func (r *Resolver) LastModified(rel string) (t time.Time, ok bool) {
	r.mu.Lock()
	if cached, hit := r.cache[rel]; hit {
		r.mu.Unlock()
		return cached, !cached.IsZero()
	}
	r.mu.Unlock()

	full := rel
	if r.prefix != "" {
		full = path.Join(r.prefix, rel)
	}

	var when time.Time
	iter, err := r.repo.Log(&git.LogOptions{FileName: &full, Order: git.LogOrderCommitterTime})
	if err == nil {
		if commit, nextErr := iter.Next(); nextErr == nil {
			when = commit.Author.When
		}
		iter.Close()
	}

	r.mu.Lock()
	r.cache[rel] = when
	r.mu.Unlock()
	return when, !when.IsZero()
}
