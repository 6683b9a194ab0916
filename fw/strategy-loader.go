/* YaNFD - Yet another NDN Forwarding Daemon
 *
 * Copyright (C) 2020-2021 Eric Newberry.
 *
 * This file is licensed under the terms of the MIT License, as found in LICENSE.md.
 */

package fw

import (
	"errors"

	"github.com/named-data/closersite/core"
	"github.com/named-data/closersite/ndn"
	"github.com/named-data/closersite/utils/comparison"
	pkgerrors "github.com/pkg/errors"
)

// ErrUnknownStrategy is returned for strategy names that no registered strategy answers to.
var ErrUnknownStrategy = errors.New("unknown strategy")

var strategyTypes []func() Strategy

// StrategyVersions contains a list of strategies mapping to a list of their versions
var StrategyVersions = make(map[string][]uint64)

// InstantiateStrategies instantiates all strategies for a forwarding thread.
func InstantiateStrategies(fwThread *Thread) map[string]Strategy {
	strategies := make(map[string]Strategy, len(strategyTypes))

	for _, makeStrategy := range strategyTypes {
		strategy := makeStrategy()
		strategy.Instantiate(fwThread)
		strategies[strategy.GetName().String()] = strategy
		core.LogDebug("StrategyLoader", "Instantiated Strategy=", strategy.GetName(), " for Thread=", fwThread.GetID())
	}

	return strategies
}

// ResolveStrategyName maps a short name ("closer-site"), a full name or a
// versioned full name to the versioned name of a registered strategy.
// Versionless names resolve to the latest version.
func ResolveStrategyName(strategy string) (ndn.Name, error) {
	prefix := ndn.MustNameFromStr(StrategyPrefix)
	var name ndn.Name
	if len(strategy) > 0 && strategy[0] == '/' {
		var err error
		if name, err = ndn.NameFromStr(strategy); err != nil {
			return nil, pkgerrors.Wrapf(err, "strategy %q", strategy)
		}
	} else {
		name = prefix.Append(ndn.NewGenericComponent(strategy))
	}

	if !prefix.IsPrefix(name) || len(name) < len(prefix)+1 || len(name) > len(prefix)+2 {
		return nil, pkgerrors.Wrapf(ErrUnknownStrategy, "strategy %q", strategy)
	}
	versions, ok := StrategyVersions[string(name[len(prefix)].Val)]
	if !ok || len(versions) == 0 {
		return nil, pkgerrors.Wrapf(ErrUnknownStrategy, "strategy %q", strategy)
	}

	if len(name) == len(prefix)+1 {
		latest := versions[0]
		for _, v := range versions {
			latest = comparison.Max(latest, v)
		}
		return name.Append(ndn.NewVersionComponent(latest)), nil
	}

	last := name[len(name)-1]
	if last.Typ != ndn.TypeVersionNameComponent {
		return nil, pkgerrors.Wrapf(ErrUnknownStrategy, "strategy %q", strategy)
	}
	for _, v := range versions {
		if v == last.NumberVal() {
			return name, nil
		}
	}
	return nil, pkgerrors.Wrapf(ErrUnknownStrategy, "strategy %q version %d", strategy, last.NumberVal())
}
