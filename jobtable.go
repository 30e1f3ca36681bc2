package jcsh

import (
	"sort"
	"strings"
	"sync"
)

// JobTable owns every live Job. Mutators require the table's lock, held
// by both the REPL-side callers and the reaper goroutine.
type JobTable struct {
	mu      sync.Mutex
	jobs    map[int]*Job
	byPid   map[int]*Job
	changed chan struct{}
}

func NewJobTable() *JobTable {
	return &JobTable{
		jobs:    make(map[int]*Job),
		byPid:   make(map[int]*Job),
		changed: make(chan struct{}, 1),
	}
}

// Lock/Unlock expose the table's mutex so callers can hold it across
// several operations.
func (t *JobTable) Lock()   { t.mu.Lock() }
func (t *JobTable) Unlock() { t.mu.Unlock() }

// Changed is signalled whenever Synchronize runs; a signal sent while one
// is already pending is merged into it. Foreground waiters block on it.
func (t *JobTable) Changed() <-chan struct{} { return t.changed }

func (t *JobTable) notifyChanged() {
	select {
	case t.changed <- struct{}{}:
	default:
	}
}

// AddJob allocates a fresh job number and inserts a new, empty Job.
func (t *JobTable) AddJob(state JobState, command string) *Job {
	num := t.allocNum()
	j := newJob(num, state, command)
	t.jobs[num] = j
	return j
}

// allocNum returns the smallest positive job number not currently in use.
func (t *JobTable) allocNum() int {
	for n := 1; ; n++ {
		if _, used := t.jobs[n]; !used {
			return n
		}
	}
}

// RegisterProcess fixes p's pid, attaches it to j, and indexes it.
func (t *JobTable) RegisterProcess(j *Job, p *Process, pid int) {
	p.setPid(pid)
	j.AddProcess(p)
	t.byPid[pid] = j
}

func (t *JobTable) ContainsJob(num int) bool {
	_, ok := t.jobs[num]
	return ok
}

func (t *JobTable) GetJob(num int) (*Job, bool) {
	j, ok := t.jobs[num]
	return j, ok
}

func (t *JobTable) ContainsProcess(pid int) bool {
	_, ok := t.byPid[pid]
	return ok
}

// GetJobWithProcess returns the job owning pid, or nil.
func (t *JobTable) GetJobWithProcess(pid int) *Job {
	return t.byPid[pid]
}

func (t *JobTable) HasForegroundJob() bool {
	_, j := t.foreground()
	return j != nil
}

// GetForegroundJob returns the unique Foreground job, or nil.
func (t *JobTable) GetForegroundJob() *Job {
	_, j := t.foreground()
	return j
}

func (t *JobTable) foreground() (int, *Job) {
	for num, j := range t.jobs {
		if j.State() == Foreground {
			return num, j
		}
	}
	return 0, nil
}

// Synchronize reconciles j with its members: reclaim when all are
// terminated, demote a fully stopped foreground job to Background.
// Returns true if the job was reclaimed.
func (t *JobTable) Synchronize(j *Job) bool {
	defer t.notifyChanged()

	if j.AllTerminated() {
		t.reclaim(j)
		return true
	}

	if j.State() == Foreground && j.AllStopped() {
		j.SetState(Background)
	}

	return false
}

// Discard removes a job that never had the chance to run.
func (t *JobTable) Discard(j *Job) {
	t.reclaim(j)
}

func (t *JobTable) reclaim(j *Job) {
	delete(t.jobs, j.num)
	for _, p := range j.processes {
		delete(t.byPid, p.Pid())
	}
}

// Listing renders the jobs in job-number order: each job's header line is
// followed by one indented line per process.
func (t *JobTable) Listing() string {
	nums := make([]int, 0, len(t.jobs))
	for num := range t.jobs {
		nums = append(nums, num)
	}
	sort.Ints(nums)

	var b strings.Builder
	for i, num := range nums {
		if i > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(t.jobs[num].String())
	}
	return b.String()
}

// Len reports the number of live jobs.
func (t *JobTable) Len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.jobs)
}
