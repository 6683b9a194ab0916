/* YaNFD - Yet another NDN Forwarding Daemon
 *
 * Copyright (C) 2020-2021 Eric Newberry.
 *
 * This file is licensed under the terms of the MIT License, as found in LICENSE.md.
 */

package main

import (
	"github.com/named-data/closersite/cmd"
	"github.com/named-data/closersite/core"
)

// Version of closersim.
var Version string

// BuildTime contains the timestamp of when the version of closersim was built.
var BuildTime string

func main() {
	if Version != "" {
		core.Version = Version
	}
	core.BuildTime = BuildTime
	cmd.Execute()
}
