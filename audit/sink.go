package audit

import "sync"

// Sink receives incremental events while a crawl runs. Calls are serialized.
type Sink interface {
	Progress(p Progress)
	PageResult(r CrawlResult)
	Checklist(r InfraReport)
}

// NopSink discards every event.
type NopSink struct{}

func (NopSink) Progress(Progress)      {}
func (NopSink) PageResult(CrawlResult) {}
func (NopSink) Checklist(InfraReport)  {}

// lockedSink serializes calls made from crawl workers.
type lockedSink struct {
	mu   sync.Mutex
	sink Sink
}

func newLockedSink(sink Sink) *lockedSink {
	if sink == nil {
		sink = NopSink{}
	}

	return &lockedSink{sink: sink}
}

func (l *lockedSink) Progress(p Progress) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.sink.Progress(p)
}

func (l *lockedSink) PageResult(r CrawlResult) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.sink.PageResult(r)
}

func (l *lockedSink) Checklist(r InfraReport) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.sink.Checklist(r)
}
