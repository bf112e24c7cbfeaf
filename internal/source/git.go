package source

import (
	"errors"
	"fmt"
	"os"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/transport/http"

	"github.com/igor-vendor/igor/igor"
)

// OnIncoming controls what Git.Sync does when the cached checkout has
// diverged from the requested revision (spec.md §6's niche settings
// `thundercloud.git.on-incoming`).
type OnIncoming int

const (
	OnIncomingUpdate OnIncoming = iota
	OnIncomingIgnore
	OnIncomingWarn
	OnIncomingFail
)

func ParseOnIncoming(s string) (OnIncoming, error) {
	switch s {
	case "", "update":
		return OnIncomingUpdate, nil
	case "ignore":
		return OnIncomingIgnore, nil
	case "warn":
		return OnIncomingWarn, nil
	case "fail":
		return OnIncomingFail, nil
	default:
		return 0, fmt.Errorf("unknown on-incoming policy %q", s)
	}
}

// Git is a thundercloud backed by a git remote, cached in CacheDir as a
// plain clone and checked out to Revision on Sync.
type Git struct {
	Remote     string
	Revision   string // branch, tag, or commit; "" means the remote's default branch
	CacheDir   string
	OnIncoming OnIncoming
	Auth       *http.BasicAuth // nil for anonymous/public remotes

	local Local
}

// Sync brings CacheDir up to date with Remote at Revision, cloning fresh
// if the cache does not yet exist. Returns a non-nil warning message
// (never an error) when OnIncoming is Warn and the cache had diverged.
func (g *Git) Sync() (warning string, err error) {
	repo, err := git.PlainOpen(g.CacheDir)
	if errors.Is(err, git.ErrRepositoryNotExists) {
		cloneOpts := &git.CloneOptions{URL: g.Remote}
		if g.Auth != nil {
			cloneOpts.Auth = g.Auth
		}
		repo, err = git.PlainClone(g.CacheDir, false, cloneOpts)
		if err != nil {
			return "", fmt.Errorf("cloning %s: %w", g.Remote, err)
		}
		g.local = Local{Dir: g.CacheDir}
		return "", g.checkout(repo)
	}
	if err != nil {
		return "", fmt.Errorf("opening cached checkout at %s: %w", g.CacheDir, err)
	}
	g.local = Local{Dir: g.CacheDir}

	if g.OnIncoming == OnIncomingIgnore {
		return "", nil
	}

	fetchOpts := &git.FetchOptions{RemoteName: "origin"}
	if g.Auth != nil {
		fetchOpts.Auth = g.Auth
	}
	if err := repo.Fetch(fetchOpts); err != nil && !errors.Is(err, git.NoErrAlreadyUpToDate) {
		return "", fmt.Errorf("fetching %s: %w", g.Remote, err)
	}

	diverged, err := g.hasIncoming(repo)
	if err != nil {
		return "", err
	}
	if !diverged {
		return "", g.checkout(repo)
	}

	switch g.OnIncoming {
	case OnIncomingFail:
		return "", fmt.Errorf("thundercloud %s has incoming changes and on-incoming is \"fail\"", g.Remote)
	case OnIncomingWarn:
		warning = fmt.Sprintf("thundercloud %s has incoming changes, using cached checkout as-is", g.Remote)
		return warning, nil
	default: // OnIncomingUpdate
		return "", g.checkout(repo)
	}
}

func (g *Git) hasIncoming(repo *git.Repository) (bool, error) {
	head, err := repo.Head()
	if err != nil {
		return false, fmt.Errorf("reading HEAD: %w", err)
	}
	target, err := g.resolve(repo)
	if err != nil {
		return false, err
	}
	return head.Hash() != *target, nil
}

func (g *Git) resolve(repo *git.Repository) (*plumbing.Hash, error) {
	rev := g.Revision
	if rev == "" {
		rev = "HEAD"
	}
	return repo.ResolveRevision(plumbing.Revision(rev))
}

func (g *Git) checkout(repo *git.Repository) error {
	wt, err := repo.Worktree()
	if err != nil {
		return fmt.Errorf("opening worktree: %w", err)
	}
	hash, err := g.resolve(repo)
	if err != nil {
		return fmt.Errorf("resolving revision %q: %w", g.Revision, err)
	}
	if err := wt.Checkout(&git.CheckoutOptions{Hash: *hash}); err != nil {
		return fmt.Errorf("checking out %s: %w", hash, err)
	}
	return nil
}

func (g *Git) List(path string) ([]igor.Entry, error) {
	if err := g.ensureSynced(); err != nil {
		return nil, err
	}
	return g.local.List(path)
}

func (g *Git) Read(path string) ([]byte, error) {
	if err := g.ensureSynced(); err != nil {
		return nil, err
	}
	return g.local.Read(path)
}

func (g *Git) ensureSynced() error {
	if g.local.Dir != "" {
		return nil
	}
	if _, err := os.Stat(g.CacheDir); err != nil {
		_, err := g.Sync()
		return err
	}
	g.local = Local{Dir: g.CacheDir}
	return nil
}
