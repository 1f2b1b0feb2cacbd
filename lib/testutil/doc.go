// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package testutil provides shared test helpers for gbx packages.
//
// [WriteFile] places fixture files under a test's temporary tree,
// creating parent directories as needed. [Logger] returns a logger that
// discards everything, for components that require one.
//
// All helpers call t.Fatalf on failure rather than returning errors,
// since test setup failures are not recoverable.
//
// This package has no gbx-internal dependencies.
package testutil
