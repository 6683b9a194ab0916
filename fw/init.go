/* YaNFD - Yet another NDN Forwarding Daemon
 *
 * Copyright (C) 2020-2021 Eric Newberry.
 *
 * This file is licensed under the terms of the MIT License, as found in LICENSE.md.
 */

package fw

import (
	"time"

	"github.com/named-data/closersite/core"
)

// defaultStrategy is the strategy of the root prefix of every forwarder.
var defaultStrategy = "best-route"

// stragglerTime is how long a satisfied PIT entry lingers to absorb late Data.
var stragglerTime = 100 * time.Millisecond

// closerSiteExtendLifetime is how long a measurement entry is kept alive after the closer-site strategy updates it.
var closerSiteExtendLifetime = 16 * time.Second

// closerSiteEpoch is the age after which closer-site measurements are taken again. Zero keeps them forever.
var closerSiteEpoch time.Duration

// Configure configures the forwarding system.
func Configure() {
	cfg := core.GetConfig()
	defaultStrategy = cfg.Fw.DefaultStrategy
	stragglerTime = time.Duration(cfg.Fw.StragglerTime) * time.Millisecond
	closerSiteExtendLifetime = time.Duration(cfg.Fw.CloserSite.ExtendLifetime) * time.Millisecond
	closerSiteEpoch = time.Duration(cfg.Fw.CloserSite.Epoch) * time.Millisecond
}
