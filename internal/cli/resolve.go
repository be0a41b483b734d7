package cli

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/alexanderramin/shopfloor/internal/domain"
)

// matchID picks the one candidate whose ID equals input, or failing that
// the single one whose ID starts with it.
func matchID(entity, input string, ids []string) (string, error) {
	var matches []string
	for _, id := range ids {
		if id == input {
			return id, nil
		}
		if strings.HasPrefix(id, input) {
			matches = append(matches, id)
		}
	}
	switch len(matches) {
	case 0:
		return "", &domain.NotFoundError{Entity: entity, ID: input}
	case 1:
		return matches[0], nil
	default:
		return "", fmt.Errorf("%s ID prefix %q is ambiguous (%d matches)", entity, input, len(matches))
	}
}

// resolveComponentID accepts a component name (case-insensitive), a full
// ID or an unambiguous ID prefix.
func resolveComponentID(ctx context.Context, app *App, input string) (string, error) {
	components, err := app.Stock.List(ctx)
	if err != nil {
		return "", err
	}
	ids := make([]string, 0, len(components))
	for _, c := range components {
		if strings.EqualFold(c.Name, input) {
			return c.ID, nil
		}
		ids = append(ids, c.ID)
	}
	return matchID("component", input, ids)
}

// resolveBOMID accepts a BOM name, which picks its latest active version, a
// full ID or an unambiguous ID prefix.
func resolveBOMID(ctx context.Context, app *App, input string) (string, error) {
	boms, err := app.BOMs.List(ctx)
	if err != nil {
		return "", err
	}
	ids := make([]string, 0, len(boms))
	var byName *domain.BillOfMaterials
	for _, b := range boms {
		if strings.EqualFold(b.Name, input) && !b.IsArchived() && (byName == nil || b.Version > byName.Version) {
			byName = b
		}
		ids = append(ids, b.ID)
	}
	if byName != nil {
		return byName.ID, nil
	}
	return matchID("bom", input, ids)
}

// resolveWorkOrderID accepts "<order>/<sequence>", e.g. "MO-0003/2", or a
// work order ID passed through unchanged.
func resolveWorkOrderID(ctx context.Context, app *App, input string) (string, error) {
	ref, seqStr, ok := strings.Cut(input, "/")
	if !ok {
		return input, nil
	}
	seq, err := strconv.Atoi(seqStr)
	if err != nil || seq < 1 {
		return "", fmt.Errorf("invalid work order sequence %q", seqStr)
	}
	order, err := app.Orders.Get(ctx, ref)
	if err != nil {
		return "", err
	}
	for _, w := range order.WorkOrders {
		if w.Sequence == seq {
			return w.ID, nil
		}
	}
	return "", &domain.NotFoundError{Entity: "work order", ID: input}
}

// resolveWorkCenterID accepts a work center name (case-insensitive), a full
// ID or an unambiguous ID prefix. Inactive centers resolve too.
func resolveWorkCenterID(ctx context.Context, app *App, input string) (string, error) {
	centers, err := app.WorkCenters.List(ctx, true)
	if err != nil {
		return "", err
	}
	ids := make([]string, 0, len(centers))
	for _, wc := range centers {
		if strings.EqualFold(wc.Name, input) {
			return wc.ID, nil
		}
		ids = append(ids, wc.ID)
	}
	return matchID("work center", input, ids)
}
