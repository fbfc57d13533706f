package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	appErrors "github.com/noah-isme/dentalcare-api/pkg/errors"
)

func TestCacheRepositoryWithoutClient(t *testing.T) {
	repo := NewCacheRepository(nil)
	ctx := context.Background()

	var dest []string
	assert.ErrorIs(t, repo.Get(ctx, "calendar:x", &dest), appErrors.ErrCacheMiss)
	assert.NoError(t, repo.Set(ctx, "calendar:x", []string{"a"}, time.Minute))
	assert.NoError(t, repo.DeleteByPattern(ctx, "calendar:*"))
	assert.NoError(t, repo.Ping(ctx))
}
