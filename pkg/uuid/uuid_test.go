// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package uuid_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/taibuivan/epaper/pkg/uuid"
)

func TestNew_IsTimeOrdered(t *testing.T) {
	first := uuid.New()
	second := uuid.New()

	assert.True(t, uuid.Valid(first))
	assert.Equal(t, byte('7'), first[14], "version nibble")
	assert.Less(t, first, second)
}

func TestValid(t *testing.T) {
	assert.True(t, uuid.Valid("0192f1c4-7b1e-7c3a-9d2e-5f6a7b8c9d0e"))
	assert.False(t, uuid.Valid("not-a-uuid"))
	assert.False(t, uuid.Valid("{0192f1c4-7b1e-7c3a-9d2e-5f6a7b8c9d0e}"))
	assert.False(t, uuid.Valid(""))
}
