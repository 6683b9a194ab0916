/* YaNFD - Yet another NDN Forwarding Daemon
 *
 * Copyright (C) 2020-2021 Eric Newberry.
 *
 * This file is licensed under the terms of the MIT License, as found in LICENSE.md.
 */

package ndn

import "time"

// Timer is the clock that drives forwarders and applications.
// Scheduled callbacks run on the same goroutine as every other event.
type Timer interface {
	// Now returns the current time.
	Now() time.Time
	// Schedule calls f after duration d. The returned function cancels it.
	Schedule(d time.Duration, f func()) func() error
	// Nonce generates a random Interest nonce.
	Nonce() uint32
}
