package systems

import (
	"fmt"
	"sync"

	"github.com/spaghettifunk/regfile/engine/core"
)

/**
 * @brief Describes a job to be run.
 */
type JobTask struct {
	/** @brief Data to be passed to the entry point upon execution. */
	InputParams interface{}
	/** @brief Invoked when the job starts. Required. */
	OnStart func(params interface{}) (interface{}, error)
	/** @brief Invoked with the result when the job succeeds. Optional. */
	OnComplete func(result interface{})
	/** @brief Invoked with the error when the job fails. Optional. */
	OnFailure func(err error)
	/** @brief Invoked after OnComplete or OnFailure. Optional. */
	OnCompletionCallback func()
}

type JobSystem struct {
	numWorkers int
	jobQueue   chan JobTask
	wg         sync.WaitGroup

	mutex  sync.RWMutex
	closed bool
}

var ErrNoWorkers = fmt.Errorf("attempting to create worker pool with less than 1 worker")
var ErrNegativeChannelSize = fmt.Errorf("attempting to create worker pool with a negative channel size")
var ErrJobSystemClosed = fmt.Errorf("job submitted after the job system was shut down")

func NewJobSystem(numWorkers int, channelSize int) (*JobSystem, error) {
	if numWorkers <= 0 {
		return nil, ErrNoWorkers
	}
	if channelSize < 0 {
		return nil, ErrNegativeChannelSize
	}

	js := &JobSystem{
		numWorkers: numWorkers,
		jobQueue:   make(chan JobTask, channelSize),
	}
	js.start()

	return js, nil
}

func (js *JobSystem) start() {
	for i := 0; i < js.numWorkers; i++ {
		js.wg.Add(1)
		go func() {
			defer js.wg.Done()
			for job := range js.jobQueue {
				js.run(job)
			}
		}()
	}
}

func (js *JobSystem) run(job JobTask) {
	result, err := job.OnStart(job.InputParams)
	if err != nil {
		core.LogError("%s", err)
		if job.OnFailure != nil {
			job.OnFailure(err)
		}
	} else if job.OnComplete != nil {
		job.OnComplete(result)
	}

	// Call the completion callback if set
	if job.OnCompletionCallback != nil {
		job.OnCompletionCallback()
	}
}

/**
 * @brief Shuts the job system down. Jobs already queued are run first.
 */
func (js *JobSystem) Shutdown() error {
	js.mutex.Lock()
	if js.closed {
		js.mutex.Unlock()
		return nil
	}
	js.closed = true
	close(js.jobQueue)
	js.mutex.Unlock()

	js.wg.Wait()
	return nil
}

/**
 * @brief Submits the provided job to be queued for execution. Blocks while the queue is full.
 * @param jt The description of the job to be executed.
 */
func (js *JobSystem) Submit(jt JobTask) error {
	js.mutex.RLock()
	defer js.mutex.RUnlock()
	if js.closed {
		return ErrJobSystemClosed
	}
	js.jobQueue <- jt
	return nil
}
