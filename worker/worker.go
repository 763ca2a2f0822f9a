// Copyright 2026 The CXGPARSE authors
//   This file is part of CXGPARSE.
//
//  CXGPARSE is free software: you can redistribute it and/or modify
//  it under the terms of the GNU General Public License as published by
//  the Free Software Foundation, either version 3 of the License, or
//  (at your option) any later version.
//
//  CXGPARSE is distributed in the hope that it will be useful,
//  but WITHOUT ANY WARRANTY; without even the implied warranty of
//  MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
//  GNU General Public License for more details.
//
//  You should have received a copy of the GNU General Public License
//  along with CXGPARSE.  If not, see <https://www.gnu.org/licenses/>.

package worker

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"time"

	"cxgparse/batch"
	"cxgparse/lexicon"
	"cxgparse/merror"
	"cxgparse/rdb"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

const (
	DefaultTickerInterval = 2 * time.Second
)

type jobLogger interface {
	Log(rec rdb.JobLog)
}

type queue interface {
	DequeueQuery() (rdb.Query, error)
	SomeoneListens(query rdb.Query) (bool, error)
	PublishResult(channelName string, value *rdb.WorkerResult) error
}

// Regenerator is implemented by lexicon.Generator
type Regenerator interface {
	Regenerate(ctx context.Context, entry lexicon.Entry) (*lexicon.Pattern, error)
	Cache() *lexicon.Cache
}

type EntrySource interface {
	Entry(ctx context.Context, id int64) (lexicon.Entry, error)
	Entries(ctx context.Context) ([]lexicon.Entry, error)
}

type recoveredError struct {
	error
}

type Worker struct {
	ID                 string
	messages           <-chan *redis.Message
	radapter           queue
	generator          Regenerator
	entries            EntrySource
	cacheClearInterval int
	ticker             *time.Ticker
	jobLogger          jobLogger
	currJobLog         *rdb.JobLog
	ctx                context.Context
	cancel             context.CancelFunc
	done               chan struct{}
}

func (w *Worker) publishResult(res *rdb.WorkerResult, channel string) error {
	res.WorkerID = w.ID
	res.ProcEnd = time.Now()
	if w.currJobLog != nil {
		w.currJobLog.End = res.ProcEnd
		w.currJobLog.NumItems, w.currJobLog.NumFailed = res.ItemCounts()
		w.currJobLog.Err = res.Err()
		w.jobLogger.Log(*w.currJobLog)
		w.currJobLog = nil
	}
	return w.radapter.PublishResult(channel, res)
}

func (w *Worker) sendPublishingErr(query rdb.Query, res *rdb.WorkerResult, err error) {
	res.Value = nil
	res.AttachError(err, false)
	if err := w.publishResult(res, query.Channel); err != nil {
		log.Error().Err(err).Msg("failed to publish general publishing error")
	}
}

func (w *Worker) regenerateLemma(args rdb.RegenerateLemmaArgs) (*lexicon.Pattern, error) {
	entry, err := w.entries.Entry(w.ctx, args.LemmaID)
	if err != nil {
		return nil, err
	}
	return w.generator.Regenerate(w.ctx, entry)
}

func (w *Worker) regenerateAll(args rdb.RegenerateAllArgs) (batch.Report, error) {
	entries, err := w.entries.Entries(w.ctx)
	if err != nil {
		return batch.Report{}, fmt.Errorf("failed to load lexicon entries: %w", err)
	}
	interval := args.CacheClearInterval
	if interval <= 0 {
		interval = w.cacheClearInterval
	}
	return batch.RegenerateAll(w.ctx, w.generator, entries, interval), nil
}

func isUserError(err error) bool {
	var inputErr merror.InputError
	return errors.Is(err, lexicon.ErrEntryNotFound) || errors.As(err, &inputErr)
}

func (w *Worker) runQueryProtected(query rdb.Query, res *rdb.WorkerResult) (ansErr error) {
	defer func() {
		if r := recover(); r != nil {
			ansErr = recoveredError{merror.PanicValueToErr(r)}
			return
		}
	}()
	var value any
	var resultType rdb.ResultType
	var jobErr error
	switch query.Func {
	case rdb.FuncRegenerateLemma:
		var args rdb.RegenerateLemmaArgs
		if err := query.DecodeArgs(&args); err != nil {
			return err
		}
		value, jobErr = w.regenerateLemma(args)
		resultType = rdb.ResultTypeRegenerate
	case rdb.FuncRegenerateAll:
		var args rdb.RegenerateAllArgs
		if err := query.DecodeArgs(&args); err != nil {
			return err
		}
		value, jobErr = w.regenerateAll(args)
		resultType = rdb.ResultTypeRegenerateAll
	default:
		jobErr = merror.InputError{Msg: fmt.Sprintf("unknown query function: %s", query.Func)}
	}
	if jobErr != nil {
		res.AttachError(jobErr, isUserError(jobErr))

	} else if err := res.AttachValue(resultType, value); err != nil {
		w.sendPublishingErr(query, res, err)
		return err
	}
	if err := w.publishResult(res, query.Channel); err != nil {
		w.sendPublishingErr(query, res, err)
		return err
	}
	return nil
}

// clearCache drops cached lookups after a job so the next one
// sees lexicon entries added in the meantime.
func (w *Worker) clearCache() {
	if c := w.generator.Cache(); c != nil {
		c.Clear()
	}
}

func (w *Worker) tryNextQuery() error {
	time.Sleep(time.Duration(rand.Intn(40)) * time.Millisecond)
	query, err := w.radapter.DequeueQuery()
	if err == rdb.ErrorEmptyQueue {
		return nil

	} else if err != nil {
		return err
	}
	log.Debug().
		Str("channel", query.Channel).
		Str("func", query.Func).
		Str("args", string(query.Args)).
		Msg("received query")

	isActive, err := w.radapter.SomeoneListens(query)
	if err != nil {
		return err
	}
	if !isActive {
		log.Warn().
			Str("func", query.Func).
			Str("channel", query.Channel).
			Msg("worker found an inactive query")
		return nil
	}

	w.currJobLog = &rdb.JobLog{
		WorkerID: w.ID,
		Func:     query.Func,
		Begin:    time.Now(),
	}
	res := &rdb.WorkerResult{
		ID:        query.Channel,
		Func:      query.Func,
		ProcBegin: w.currJobLog.Begin,
	}
	defer w.clearCache()
	err = w.runQueryProtected(query, res)
	var rcvErr recoveredError
	if errors.As(err, &rcvErr) {
		res.Value = nil
		res.AttachError(fmt.Errorf("worker panicked: %w", rcvErr.error), false)
		if err := w.publishResult(res, query.Channel); err != nil {
			return err
		}
		return nil
	}
	return err
}

func (w *Worker) listen() {
	defer close(w.done)
	for {
		select {
		case <-w.ticker.C:
			if err := w.tryNextQuery(); err != nil {
				log.Error().Err(err).Msg("failed to process query")
			}
		case <-w.ctx.Done():
			log.Info().Msg("worker exiting")
			return
		case msg, ok := <-w.messages:
			if !ok {
				log.Warn().Msg("query notification channel closed")
				w.messages = nil
				continue
			}
			if msg.Payload == rdb.MsgNewQuery {
				if err := w.tryNextQuery(); err != nil {
					log.Error().Err(err).Msg("failed to process query")
				}
			}
		}
	}
}

func (w *Worker) Start(ctx context.Context) {
	w.ctx, w.cancel = context.WithCancel(ctx)
	w.done = make(chan struct{})
	log.Info().Str("workerId", w.ID).Msg("starting worker")
	go w.listen()
}

func (w *Worker) Stop(ctx context.Context) error {
	log.Warn().Str("workerId", w.ID).Msg("stopping worker")
	w.ticker.Stop()
	if w.cancel != nil {
		w.cancel()
	}
	select {
	case <-w.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func NewWorker(
	workerID string,
	radapter queue,
	messages <-chan *redis.Message,
	generator Regenerator,
	entries EntrySource,
	cacheClearInterval int,
	jobLogger jobLogger,
) *Worker {
	return &Worker{
		ID:                 workerID,
		radapter:           radapter,
		messages:           messages,
		generator:          generator,
		entries:            entries,
		cacheClearInterval: cacheClearInterval,
		ticker:             time.NewTicker(DefaultTickerInterval),
		jobLogger:          jobLogger,
		ctx:                context.Background(),
	}
}
