package circulation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDataset(t *testing.T) {
	records, err := Dataset()
	require.NoError(t, err)
	require.Len(t, records, 50)

	assert.Equal(t, &Record{
		Newspaper:           "USA Today",
		Circulation2004:     2192098,
		Circulation2013:     1674306,
		Change:              -24,
		Finalists1990To2003: 1,
		Finalists2004To2014: 1,
		Finalists1990To2014: 2,
	}, records[0])

	var finalists, positive int
	names := make(map[string]bool)
	for _, record := range records {
		assert.False(t, record.HasID())
		assert.NotEmpty(t, record.Newspaper)
		assert.Equal(t, record.Finalists1990To2014, record.Finalists1990To2003+record.Finalists2004To2014,
			record.Newspaper)
		finalists += record.Finalists1990To2014
		if record.Change >= 0 {
			positive++
		}
		names[record.Newspaper] = true
	}
	assert.Equal(t, 777, finalists)
	assert.Equal(t, 7, positive)
	assert.Len(t, names, 50)
}

func TestDatasetFreshCopies(t *testing.T) {
	first, err := Dataset()
	require.NoError(t, err)
	first[0].Newspaper = "Changed"
	second, err := Dataset()
	require.NoError(t, err)
	assert.Equal(t, "USA Today", second[0].Newspaper)
}
