// SPDX-License-Identifier: MPL-2.0

// Command envscout finds, validates and queries Python environments.
package main

import cmd "github.com/invowk/envscout/cmd/envscout"

func main() {
	cmd.Execute()
}
