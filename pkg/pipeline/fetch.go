package pipeline

import (
	"context"
	"errors"
	"time"

	"github.com/matzehuels/stargraph/pkg/engine"
	"github.com/matzehuels/stargraph/pkg/integrations"
	"github.com/matzehuels/stargraph/pkg/social"
)

func (r *Runner) fetch(ctx context.Context, opts Options, login string) (*social.UserWithRepos, error) {
	h := r.hooks()
	h.OnFetchStart(ctx, login)
	start := time.Now()
	u, err := r.Fetcher.FetchUser(ctx, login, opts.First, opts.Refresh)
	h.OnFetchComplete(ctx, login, len(u.Repos()), time.Since(start), err)
	if err != nil {
		return nil, err
	}
	return u, nil
}

// expand reacts to repository clicks the way an interactive host does:
// each personal repository label is clicked in graph order, and every
// click-repo notification fetches and ingests the owner. Repositories whose
// owner is already a node emit click-user instead and cost nothing; org
// repositories emit nothing. Expansion stops after opts.ExpandOwners
// fetches. Owners that cannot be fetched are logged and skipped.
func (r *Runner) expand(ctx context.Context, e *engine.Engine, opts Options) (int, error) {
	var pending []string
	e.OnClickRepo(func(ev engine.ClickRepo) { pending = append(pending, ev.Username) })

	tried := map[string]bool{opts.Login: true}
	fetched := 0
	nodes := e.Store().Nodes()
	for i := 0; i < len(nodes) && fetched < opts.ExpandOwners; i++ {
		if err := ctx.Err(); err != nil {
			return fetched, err
		}
		n := nodes[i]
		if n.Kind != social.KindRepo {
			continue
		}
		pending = pending[:0]
		if !e.ClickNode(n.ID) || len(pending) == 0 {
			continue
		}
		login := pending[0]
		if tried[login] {
			continue
		}
		tried[login] = true

		u, err := r.fetch(ctx, opts, login)
		if err != nil {
			if ctx.Err() != nil {
				return fetched, ctx.Err()
			}
			if errors.Is(err, integrations.ErrUnauthorized) {
				return fetched, err
			}
			r.Logger.Warn("skipping owner", "login", login, "err", err)
			continue
		}
		fetched++
		e.Ingest(u)
		// Ingestion only appends, so the prefix already visited is stable.
		nodes = e.Store().Nodes()
		r.Logger.Debug("expanded owner", "login", login, "repo", n.Name())
	}
	return fetched, nil
}
