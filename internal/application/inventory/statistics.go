package inventory

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/jhoicas/Inventario-pos/internal/domain/entity"
	"github.com/jhoicas/Inventario-pos/internal/domain/repository"
)

// Statistics agregados del inventario.
type Statistics struct {
	Summary         repository.BalanceSummary
	ValueByLocation []repository.LocationValue
	MovementsByKind map[entity.MovementKind]int
}

// Statistics ejecuta las tres consultas agregadas en paralelo.
func (uc *LedgerUseCase) Statistics(ctx context.Context) (*Statistics, error) {
	var st Statistics
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		s, err := uc.balanceRepo.Summary(gctx)
		st.Summary = s
		return err
	})
	g.Go(func() error {
		v, err := uc.balanceRepo.ValueByLocation(gctx)
		st.ValueByLocation = v
		return err
	})
	g.Go(func() error {
		m, err := uc.movRepo.CountByKind(gctx)
		st.MovementsByKind = m
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	for _, k := range entity.MovementKinds() {
		if _, ok := st.MovementsByKind[k]; !ok {
			if st.MovementsByKind == nil {
				st.MovementsByKind = make(map[entity.MovementKind]int)
			}
			st.MovementsByKind[k] = 0
		}
	}
	return &st, nil
}
