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

package rdb

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/bytedance/sonic"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

const (
	MsgNewQuery                = "newQuery"
	MsgNewResult               = "newResult"
	DefaultQueueKey            = "cxgparseQueue"
	DefaultResultChannelPrefix = "cxgparseResults"
	DefaultQueryChannel        = "cxgparseQueries"
	DefaultResultExpiration    = 10 * time.Minute
)

var (
	ErrorEmptyQueue = errors.New("no queries in the queue")
)

// Query is a job description passed to workers. Args are
// func-specific and decoded by the worker.
type Query struct {
	Channel string          `json:"channel"`
	Func    string          `json:"func"`
	Args    json.RawMessage `json:"args"`
}

func (q Query) ToJSON() (string, error) {
	ans, err := sonic.Marshal(q)
	if err != nil {
		return "", err
	}
	return string(ans), nil
}

func (q Query) DecodeArgs(v any) error {
	if len(q.Args) == 0 {
		return nil
	}
	return sonic.Unmarshal(q.Args, v)
}

func NewQuery(fn string, args any) (Query, error) {
	data, err := sonic.Marshal(args)
	if err != nil {
		return Query{}, fmt.Errorf("failed to create query %s: %w", fn, err)
	}
	return Query{Func: fn, Args: data}, nil
}

func DecodeQuery(q string) (Query, error) {
	var ans Query
	err := sonic.Unmarshal([]byte(q), &ans)
	return ans, err
}

type jobLogger interface {
	Log(rec JobLog)
}

type Adapter struct {
	ctx                 context.Context
	c                   *redis.Client
	channelQuery        string
	channelResultPrefix string
	queueKey            string
	resultExpiration    time.Duration
	jobLogger           jobLogger
}

// TestConnection pings Redis until it responds or the timeout elapses.
func (a *Adapter) TestConnection(timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(a.ctx, timeout)
	defer cancel()
	tick := time.NewTicker(2 * time.Second)
	defer tick.Stop()
	for {
		err := a.c.Ping(ctx).Err()
		if err == nil {
			log.Info().Msg("connection to Redis OK")
			return nil
		}
		log.Warn().Err(err).Msg("Redis not ready, trying again")
		select {
		case <-ctx.Done():
			return fmt.Errorf("failed to connect to Redis: %w", err)
		case <-tick.C:
		}
	}
}

func (a *Adapter) SomeoneListens(query Query) (bool, error) {
	cmd := a.c.PubSubNumSub(a.ctx, query.Channel)
	if cmd.Err() != nil {
		return false, fmt.Errorf("failed to check channel listeners: %w", cmd.Err())
	}
	return cmd.Val()[query.Channel] > 0, nil
}

func (a *Adapter) logJob(query Query, result *WorkerResult) {
	if a.jobLogger == nil {
		return
	}
	numItems, numFailed := result.ItemCounts()
	a.jobLogger.Log(JobLog{
		WorkerID:  result.WorkerID,
		Func:      query.Func,
		Begin:     result.ProcBegin,
		End:       result.ProcEnd,
		NumItems:  numItems,
		NumFailed: numFailed,
		Err:       result.Err(),
	})
}

// PublishQuery enqueues a new query and returns a channel the result
// will be sent through. If no result arrives within the result
// expiration interval, an error result is sent.
func (a *Adapter) PublishQuery(query Query) (<-chan *WorkerResult, error) {
	query.Channel = fmt.Sprintf("%s:%s", a.channelResultPrefix, uuid.New().String())
	log.Debug().
		Str("channel", query.Channel).
		Str("func", query.Func).
		Str("args", string(query.Args)).
		Msg("publishing query")

	msg, err := query.ToJSON()
	if err != nil {
		return nil, err
	}
	sub := a.c.Subscribe(a.ctx, query.Channel)
	if _, err := sub.Receive(a.ctx); err != nil {
		sub.Close()
		return nil, fmt.Errorf("failed to subscribe result channel: %w", err)
	}
	if err := a.c.LPush(a.ctx, a.queueKey, msg).Err(); err != nil {
		sub.Close()
		return nil, err
	}
	ans := make(chan *WorkerResult)

	// now we wait for response and send result via `ans`
	go func() {
		defer close(ans)
		defer sub.Close()
		result := &WorkerResult{ID: query.Channel, Func: query.Func}
		timeout := time.NewTimer(a.resultExpiration)
		defer timeout.Stop()

		select {
		case item := <-sub.Channel():
			cmd := a.c.Get(a.ctx, item.Payload)
			if cmd.Err() != nil {
				result.AttachError(cmd.Err(), false)

			} else if err := sonic.Unmarshal([]byte(cmd.Val()), result); err != nil {
				result.AttachError(err, false)
			}
			a.logJob(query, result)
		case <-timeout.C:
			result.AttachError(fmt.Errorf("no result for query %s", query.Channel), false)
		case <-a.ctx.Done():
			result.AttachError(a.ctx.Err(), false)
		}
		ans <- result
	}()
	return ans, a.c.Publish(a.ctx, a.channelQuery, MsgNewQuery).Err()
}

func (a *Adapter) DequeueQuery() (Query, error) {
	cmd := a.c.RPop(a.ctx, a.queueKey)
	if cmd.Err() == redis.Nil {
		return Query{}, ErrorEmptyQueue

	} else if cmd.Err() != nil {
		return Query{}, fmt.Errorf("failed to dequeue query: %w", cmd.Err())
	}
	q, err := DecodeQuery(cmd.Val())
	if err != nil {
		return Query{}, fmt.Errorf("failed to deserialize query: %w", err)
	}
	return q, nil
}

func (a *Adapter) PublishResult(channelName string, value *WorkerResult) error {
	log.Debug().
		Str("channel", channelName).
		Str("resultType", value.ResultType.String()).
		Msg("publishing result")
	data, err := sonic.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to serialize result: %w", err)
	}
	if err := a.c.Set(a.ctx, channelName, string(data), a.resultExpiration).Err(); err != nil {
		return fmt.Errorf("failed to store result: %w", err)
	}
	return a.c.Publish(a.ctx, channelName, channelName).Err()
}

func (a *Adapter) Subscribe() <-chan *redis.Message {
	sub := a.c.Subscribe(a.ctx, a.channelQuery)
	return sub.Channel()
}

func (a *Adapter) Close() error {
	return a.c.Close()
}

// NewAdapter creates a Redis adapter. The jobLogger is optional
// and receives a record for each result obtained via PublishQuery.
// The conf is expected to be validated.
func NewAdapter(ctx context.Context, conf *Conf, jobLogger jobLogger) *Adapter {
	expiration := conf.ResultExpiration()
	if expiration == 0 {
		expiration = DefaultResultExpiration
	}
	queueKey := conf.QueueKey
	if queueKey == "" {
		queueKey = DefaultQueueKey
	}
	ans := &Adapter{
		c: redis.NewClient(&redis.Options{
			Addr:     fmt.Sprintf("%s:%d", conf.Host, conf.Port),
			Password: conf.Password,
			DB:       conf.DB,
		}),
		ctx:                 ctx,
		channelQuery:        conf.ChannelQuery,
		channelResultPrefix: conf.ChannelResultPrefix,
		queueKey:            queueKey,
		resultExpiration:    expiration,
		jobLogger:           jobLogger,
	}
	return ans
}
