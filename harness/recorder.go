package harness

import (
	"bufio"
	"fmt"
	"io"
	"time"
)

// flushEvery is the number of rows buffered between flushes.
const flushEvery = 100

const header = "timestamp_ms,mode_label,frame_time_ms,draw_calls\n"

// Record is one frame's entry in the benchmark log.
type Record struct {
	When      time.Time
	Mode      Mode
	FrameTime time.Duration
	DrawCalls int64
}

// Recorder appends frame records to a CSV benchmark log. Timestamps are
// milliseconds relative to the first recorded frame, so logs from different
// sessions line up when plotted.
type Recorder struct {
	wc        io.WriteCloser
	bw        *bufio.Writer
	epoch     time.Time
	haveEpoch bool
	rows      int
}

// NewRecorder wraps wc and writes the CSV header.
func NewRecorder(wc io.WriteCloser) (*Recorder, error) {
	bw := bufio.NewWriter(wc)
	if _, err := bw.WriteString(header); err != nil {
		return nil, fmt.Errorf("write log header: %w", err)
	}

	return &Recorder{wc: wc, bw: bw}, nil
}

// Append writes one record. The first record's timestamp fixes the epoch.
func (r *Recorder) Append(rec Record) error {
	if !r.haveEpoch {
		r.epoch = rec.When
		r.haveEpoch = true
	}

	_, err := fmt.Fprintf(r.bw, "%.2f,%s,%.2f,%d\n",
		millis(rec.When.Sub(r.epoch)),
		rec.Mode.Label(),
		millis(rec.FrameTime),
		rec.DrawCalls,
	)
	if err != nil {
		return fmt.Errorf("append log record: %w", err)
	}

	r.rows++
	if r.rows%flushEvery == 0 {
		if err := r.bw.Flush(); err != nil {
			return fmt.Errorf("flush log: %w", err)
		}
	}

	return nil
}

// Close flushes buffered rows and closes the underlying writer.
func (r *Recorder) Close() error {
	if err := r.bw.Flush(); err != nil {
		return fmt.Errorf("flush log: %w", err)
	}

	if err := r.wc.Close(); err != nil {
		return fmt.Errorf("close log: %w", err)
	}

	return nil
}

func millis(d time.Duration) float64 {
	return float64(d) / float64(time.Millisecond)
}
