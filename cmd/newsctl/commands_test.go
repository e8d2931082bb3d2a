// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package main

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func run(args ...string) error {
	root := newRootCommand()
	root.SetOut(&bytes.Buffer{})
	root.SetErr(&bytes.Buffer{})
	root.SetArgs(args)
	return root.Execute()
}

func TestIngest_RequiresUploader(t *testing.T) {
	err := run("ingest", "19102025_epaper.pdf")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "uploaded-by")
}

func TestIngest_RejectsMalformedUploader(t *testing.T) {
	err := run("ingest", "19102025_epaper.pdf", "--uploaded-by", "editor")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "account id")
}

func TestIngest_RequiresExactlyOneFile(t *testing.T) {
	assert.Error(t, run("ingest", "--uploaded-by", "0192f1c4-7b1e-7c3a-9d2e-5f6a7b8c9d0e"))
}

func TestMigrate_NeedsDatabaseURL(t *testing.T) {
	t.Setenv("DATABASE_URL", "")
	assert.Error(t, run("migrate"))
}
