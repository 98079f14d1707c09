// Package batch classifies many commands concurrently while keeping results
// in input order.
package batch

import (
	"context"
	"errors"
	"fmt"
	"os"
	"runtime"
	"sync"

	"github.com/capdesc/go-capdesc/internal/captypes"
	"github.com/capdesc/go-capdesc/internal/classifier"
)

// ErrNoJobs is returned when Run is called with an empty job list.
var ErrNoJobs = errors.New("batch contains no jobs")

// Job is one command to classify. Doc holds the documentation text directly;
// when empty and DocPath is set, the file is read at execution time.
type Job struct {
	Command string
	Doc     string
	DocPath string
}

// Result pairs a job with its classification outcome. Err is set when the
// job's documentation file could not be read; the result slice always has
// one entry per job, in job order.
type Result struct {
	Job    Job
	Output captypes.ClassificationResult
	Err    error
}

// Run classifies all jobs using up to workers goroutines. Results preserve
// job order regardless of completion order. A canceled context stops
// dispatching new jobs; already-dispatched jobs finish.
func Run(ctx context.Context, c *classifier.Classifier, jobs []Job, workers int) ([]Result, error) {
	if len(jobs) == 0 {
		return nil, ErrNoJobs
	}
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	if workers > len(jobs) {
		workers = len(jobs)
	}

	type indexedJob struct {
		index int
		job   Job
	}

	results := make([]Result, len(jobs))
	jobCh := make(chan indexedJob)

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for ij := range jobCh {
				results[ij.index] = runOne(c, ij.job)
			}
		}()
	}

	var dispatchErr error
dispatch:
	for i, job := range jobs {
		select {
		case <-ctx.Done():
			dispatchErr = ctx.Err()
			for j := i; j < len(jobs); j++ {
				results[j] = Result{Job: jobs[j], Err: ctx.Err()}
			}
			break dispatch
		case jobCh <- indexedJob{index: i, job: job}:
		}
	}
	close(jobCh)
	wg.Wait()

	return results, dispatchErr
}

func runOne(c *classifier.Classifier, job Job) Result {
	doc := job.Doc
	if doc == "" && job.DocPath != "" {
		data, err := os.ReadFile(job.DocPath)
		if err != nil {
			return Result{Job: job, Err: fmt.Errorf("read documentation for %s: %w", job.Command, err)}
		}
		doc = string(data)
	}
	return Result{Job: job, Output: c.Classify(job.Command, doc)}
}
