// Copyright 2023 The Cockroach Authors.
//
// Use of this software is governed by the CockroachDB Software License
// included in the /LICENSE file.

//go:build invariants || race

package buildutil

// Invariants is enabled when built with the invariants or race build tags. It
// enables assertions that are too expensive, or too strict, for production
// builds, such as the bound on a flatten operator's pending rows.
const Invariants = true
