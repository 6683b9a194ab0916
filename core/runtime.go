/* YaNFD - Yet another NDN Forwarding Daemon
 *
 * Copyright (C) 2020-2021 Eric Newberry.
 *
 * This file is licensed under the terms of the MIT License, as found in LICENSE.md.
 */

package core

// Version of the simulator.
var Version string = "0.1.0"

// BuildTime contains the timestamp of when the version of the simulator was built.
var BuildTime string
