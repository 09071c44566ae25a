// Package netout implements the publish() output boundary (the output format):
// the tracker hands each accepted message and its aircraft snapshot to
// every registered Writer; writers format and queue independently, and
// a full queue drops with a counter rather than blocking the pipeline.
package netout

import (
	"modes1090/message"
	"modes1090/stats"
	"modes1090/tracker"
)

// Writer formats and ships one decoded message plus the aircraft state
// it updated. Implementations must not block the caller for long; the
// Queue wrapper below is how callers get a bounded, non-blocking
// boundary in front of a Writer that might (network I/O, disk).
type Writer interface {
	Publish(msg *message.Message, ac *tracker.AircraftSnapshot) error
	Close() error
}

// Queue wraps a Writer with a bounded channel and a background
// goroutine, giving Publish callers a non-blocking boundary (the output format:
// "Writer queues are bounded; when full, writers drop with a counter").
type Queue struct {
	inner   Writer
	ch      chan queuedItem
	done    chan struct{}
	dropped int64
	stats   *stats.Counters
}

// SetStats attaches the shared counters Publish's drop path should feed
// in addition to its own local count; a nil stats (the default) leaves
// Publish only updating Dropped().
func (q *Queue) SetStats(s *stats.Counters) { q.stats = s }

type queuedItem struct {
	msg *message.Message
	ac  tracker.AircraftSnapshot
}

// NewQueue wraps inner with a channel of the given depth and starts the
// draining goroutine.
func NewQueue(inner Writer, depth int) *Queue {
	q := &Queue{inner: inner, ch: make(chan queuedItem, depth), done: make(chan struct{})}
	go q.run()
	return q
}

func (q *Queue) run() {
	for item := range q.ch {
		q.inner.Publish(item.msg, &item.ac)
	}
	close(q.done)
}

// Publish enqueues msg/ac for the wrapped Writer, dropping and counting
// if the queue is full. It always returns nil; drops are reported
// through Dropped and the shared counters.
func (q *Queue) Publish(msg *message.Message, ac *tracker.AircraftSnapshot) error {
	select {
	case q.ch <- queuedItem{msg: msg, ac: *ac}:
	default:
		q.dropped++
		if q.stats != nil {
			q.stats.WriterDrops.Add(1)
		}
	}
	return nil
}

// Dropped returns the cumulative count of messages dropped due to a
// full queue.
func (q *Queue) Dropped() int64 { return q.dropped }

// Close drains in-flight items then closes the wrapped Writer.
func (q *Queue) Close() error {
	close(q.ch)
	<-q.done
	return q.inner.Close()
}
