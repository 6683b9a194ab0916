/* YaNFD - Yet another NDN Forwarding Daemon
 *
 * Copyright (C) 2020-2021 Eric Newberry.
 *
 * This file is licensed under the terms of the MIT License, as found in LICENSE.md.
 */

package table

import (
	"time"

	"github.com/named-data/closersite/core"
)

// deadNonceListLifetime is the lifetime of entries in the dead nonce list.
var deadNonceListLifetime = 6 * time.Second

// csCapacity contains the default capacity of each forwarder's Content Store.
var csCapacity = 1024

// csAdmit determines whether contents will be admitted to the Content Store.
var csAdmit = true

// csServe determines whether contents will be served from the Content Store.
var csServe = true

// measurementsLifetime is the initial lifetime of a measurement entry.
var measurementsLifetime = 4 * time.Second

// Configure configures the tables from the active configuration.
func Configure() {
	cfg := core.GetConfig()

	// Content Store
	csCapacity = cfg.Tables.ContentStore.Capacity
	csAdmit = cfg.Tables.ContentStore.Admit
	csServe = cfg.Tables.ContentStore.Serve

	// Dead Nonce List
	deadNonceListLifetime = time.Duration(cfg.Tables.DeadNonceList.Lifetime) * time.Millisecond

	// Measurements
	measurementsLifetime = time.Duration(cfg.Tables.Measurements.Lifetime) * time.Millisecond
}

// CsCapacity returns the default CS capacity.
func CsCapacity() int {
	return csCapacity
}

// MeasurementsLifetime returns the initial lifetime of new measurement entries.
func MeasurementsLifetime() time.Duration {
	return measurementsLifetime
}
