package pixalg

import "math"

// ProgressListener receives progress reports from Runtime.EvaluateAll.
//
// Start is called once before the sweep with the number of pixels to
// visit, Update every UpdateInterval pixels with the count so far, and
// Finish once after a complete sweep with the final count. Finish is not
// called when the sweep is aborted by an error.
type ProgressListener interface {
	Start(taskSize int64)
	Update(done int64)
	Finish(done int64)
	UpdateInterval() int64
}

// NullProgress ignores all progress reports.
type NullProgress struct{}

func (NullProgress) Start(int64)  {}
func (NullProgress) Update(int64) {}
func (NullProgress) Finish(int64) {}

// UpdateInterval returns math.MaxInt64, which disables updates.
func (NullProgress) UpdateInterval() int64 { return math.MaxInt64 }

// ProgressFuncs adapts plain functions to ProgressListener.
// Nil functions are skipped. An Interval of zero or less disables updates.
type ProgressFuncs struct {
	OnStart  func(taskSize int64)
	OnUpdate func(done int64)
	OnFinish func(done int64)
	Interval int64
}

func (p ProgressFuncs) Start(taskSize int64) {
	if p.OnStart != nil {
		p.OnStart(taskSize)
	}
}

func (p ProgressFuncs) Update(done int64) {
	if p.OnUpdate != nil {
		p.OnUpdate(done)
	}
}

func (p ProgressFuncs) Finish(done int64) {
	if p.OnFinish != nil {
		p.OnFinish(done)
	}
}

func (p ProgressFuncs) UpdateInterval() int64 {
	if p.Interval <= 0 {
		return math.MaxInt64
	}
	return p.Interval
}
