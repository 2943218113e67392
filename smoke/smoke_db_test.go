//go:build database

package smoke

import (
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/madkins23/go-circulation/circulation"
)

func TestRunRepository(t *testing.T) {
	ctx := context.Background()
	repo := circulation.NewRepository(circulation.Config{Database: "smoke-test"})
	runner := NewRunner(repo, zerolog.New(zerolog.NewTestWriter(t)))
	report, err := runner.Run(ctx, dataset(t))
	require.NoError(t, err)
	require.NotNil(t, report)
	assert.Len(t, report.AverageFinalists, 1)
	assert.Len(t, report.AverageByChange, 2)

	// The database is gone after the run.
	count, err := repo.Count(ctx, nil)
	require.NoError(t, err)
	assert.Zero(t, count)
}
