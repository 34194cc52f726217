// Copyright 2025 The Cockroach Authors.
//
// Use of this software is governed by the CockroachDB Software License
// included in the /LICENSE file.

// groupflow loads hkey-ordered groups of rows into a store and runs flatten
// plans over them.
package main

import "github.com/cockroachdb/groupflow/pkg/cli"

func main() {
	cli.Main()
}
