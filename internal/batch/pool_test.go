package batch

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/capdesc/go-capdesc/internal/captypes"
	"github.com/capdesc/go-capdesc/internal/classifier"
)

func TestRunPreservesJobOrder(t *testing.T) {
	c := classifier.New(nil, classifier.Options{})
	jobs := []Job{
		{Command: "rm", Doc: "remove files recursively"},
		{Command: "ls", Doc: "list directory contents"},
		{Command: "dd", Doc: "convert and copy a file"},
		{Command: "cat", Doc: "concatenate files and print"},
	}

	results, err := Run(context.Background(), c, jobs, 3)
	require.NoError(t, err)
	require.Len(t, results, len(jobs))

	for i, r := range results {
		require.NoError(t, r.Err)
		assert.Equal(t, jobs[i].Command, r.Output.Command)
	}
	assert.Equal(t, captypes.RiskLevelCritical, results[0].Output.RiskLevel)
	assert.Equal(t, captypes.RiskLevelSafe, results[1].Output.RiskLevel)
}

func TestRunMatchesSequentialClassification(t *testing.T) {
	c := classifier.New(nil, classifier.Options{})
	jobs := []Job{
		{Command: "rm", Doc: "remove files recursively"},
		{Command: "curl", Doc: "download data from a url"},
	}

	results, err := Run(context.Background(), c, jobs, 2)
	require.NoError(t, err)

	for i, job := range jobs {
		expected := c.Classify(job.Command, job.Doc)
		assert.Equal(t, expected, results[i].Output)
	}
}

func TestRunReadsDocFromPath(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "rm.1")
	require.NoError(t, os.WriteFile(path, []byte("remove files recursively"), 0o600))

	c := classifier.New(nil, classifier.Options{})
	results, err := Run(context.Background(), c, []Job{{Command: "rm", DocPath: path}}, 1)
	require.NoError(t, err)
	require.Len(t, results, 1)
	require.NoError(t, results[0].Err)
	assert.Equal(t, captypes.RiskLevelCritical, results[0].Output.RiskLevel)
}

func TestRunReportsUnreadableDoc(t *testing.T) {
	c := classifier.New(nil, classifier.Options{})
	results, err := Run(context.Background(), c, []Job{
		{Command: "rm", DocPath: filepath.Join(t.TempDir(), "missing.1")},
		{Command: "ls", Doc: "list directory contents"},
	}, 2)
	require.NoError(t, err)
	require.Len(t, results, 2)

	assert.Error(t, results[0].Err)
	require.NoError(t, results[1].Err)
	assert.Equal(t, "ls", results[1].Output.Command)
}

func TestRunEmptyJobs(t *testing.T) {
	c := classifier.New(nil, classifier.Options{})
	_, err := Run(context.Background(), c, nil, 2)
	assert.ErrorIs(t, err, ErrNoJobs)
}

func TestRunCanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	c := classifier.New(nil, classifier.Options{})
	jobs := make([]Job, 50)
	for i := range jobs {
		jobs[i] = Job{Command: "ls", Doc: "list directory contents"}
	}

	results, err := Run(ctx, c, jobs, 2)
	assert.ErrorIs(t, err, context.Canceled)
	require.Len(t, results, len(jobs))

	// every job gets an entry: either a result or the cancellation error
	for _, r := range results {
		if r.Err != nil {
			assert.ErrorIs(t, r.Err, context.Canceled)
		}
	}
}
