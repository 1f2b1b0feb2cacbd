// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package testutil

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
)

func TestWriteFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "a", "b", "file.Gbx")
	if got := WriteFile(t, path, []byte("GBX")); got != path {
		t.Errorf("WriteFile returned %q, want %q", got, path)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if !bytes.Equal(data, []byte("GBX")) {
		t.Errorf("content = %q", data)
	}
}

func TestLogger(t *testing.T) {
	Logger().Error("discarded", "key", "value")
}
