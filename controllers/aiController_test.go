package controllers

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStorageContextOutlivesLookupContext(t *testing.T) {
	lookupCtx, cancel := context.WithTimeout(context.Background(), time.Millisecond)
	defer cancel()
	<-lookupCtx.Done()
	require.Error(t, lookupCtx.Err())

	writeCtx, writeCancel := storageContext()
	defer writeCancel()
	assert.NoError(t, writeCtx.Err())

	deadline, ok := writeCtx.Deadline()
	require.True(t, ok)
	assert.True(t, deadline.After(time.Now()))
}
