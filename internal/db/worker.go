package db

import (
	"context"
	"database/sql"
)

// queueDepth bounds how many writes may wait behind the single
// connection before enqueueing callers start blocking.
const queueDepth = 256

// TxFn runs inside one write transaction. Returning an error rolls the
// transaction back.
type TxFn func(ctx context.Context, tx *sql.Tx) error

type writeJob struct {
	ctx    context.Context
	fn     TxFn
	result chan error
}

// Worker serializes all mutations — event appends, alert writes, face
// state transitions, config toggles — through one goroutine so the
// single SQLite connection never sees interleaved write transactions.
type Worker struct {
	db   *sql.DB
	jobs chan writeJob
	done chan struct{}
}

func NewWorker(db *sql.DB) *Worker {
	w := &Worker{
		db:   db,
		jobs: make(chan writeJob, queueDepth),
		done: make(chan struct{}),
	}
	go w.loop()
	return w
}

// Close stops accepting writes and waits for queued ones to finish.
func (w *Worker) Close() {
	close(w.jobs)
	<-w.done
}

// Do enqueues fn and waits for its transaction to commit or roll back.
// If the caller's context expires first, Do returns early; the worker
// still finishes the transaction and the result is discarded into the
// buffered channel.
func (w *Worker) Do(ctx context.Context, fn TxFn) error {
	result := make(chan error, 1)

	select {
	case w.jobs <- writeJob{ctx: ctx, fn: fn, result: result}:
	case <-ctx.Done():
		return ctx.Err()
	}

	select {
	case err := <-result:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (w *Worker) loop() {
	defer close(w.done)

	for j := range w.jobs {
		j.result <- w.run(j)
	}
}

func (w *Worker) run(j writeJob) error {
	tx, err := w.db.BeginTx(j.ctx, nil)
	if err != nil {
		return err
	}
	if err := j.fn(j.ctx, tx); err != nil {
		_ = tx.Rollback()
		return err
	}
	return tx.Commit()
}
