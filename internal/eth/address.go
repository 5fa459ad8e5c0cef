package eth

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/hiero-ledger/relay-gateway/internal/mirror"
	"github.com/hiero-ledger/relay-gateway/internal/rpctypes"
)

// resolveAddressPair resolves from and to to their canonical EVM
// addresses in parallel, per §4.6.9. An empty to is passed through
// unresolved.
func (s *Service) resolveAddressPair(ctx context.Context, rc *rpctypes.RequestContext, from, to string) (resolvedFrom, resolvedTo string, err error) {
	resolvedFrom, resolvedTo = from, to

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		r, e := s.resolveEVMAddress(gctx, rc, from)
		if e != nil {
			return e
		}
		resolvedFrom = r
		return nil
	})
	if to != "" {
		g.Go(func() error {
			r, e := s.resolveEVMAddress(gctx, rc, to)
			if e != nil {
				return e
			}
			resolvedTo = r
			return nil
		})
	}
	if waitErr := g.Wait(); waitErr != nil {
		return "", "", s.wrapUpstream(rc, waitErr)
	}
	return resolvedFrom, resolvedTo, nil
}

// resolveEVMAddress consults resolveEntityType and, when the entity has a
// canonical evm_address, prefers it; otherwise the input address passes
// through unchanged.
func (s *Service) resolveEVMAddress(ctx context.Context, rc *rpctypes.RequestContext, address string) (string, error) {
	if address == "" {
		return address, nil
	}
	resolved, err := s.mirror.ResolveEntityType(ctx, rc.RequestID, address, []mirror.EntityType{mirror.EntityContract, mirror.EntityToken, mirror.EntityAccount}, "")
	if err != nil {
		return "", err
	}
	if resolved == nil {
		return address, nil
	}
	switch e := resolved.Entity.(type) {
	case *mirror.Account:
		if e.EVMAddress != "" {
			return e.EVMAddress, nil
		}
	case *mirror.ContractSummary:
		if e.EVMAddress != "" {
			return e.EVMAddress, nil
		}
	}
	return address, nil
}
