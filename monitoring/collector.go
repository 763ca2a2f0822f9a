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

package monitoring

import (
	"context"
	"errors"
	"sync"
	"time"

	"cxgparse/rdb"

	"github.com/czcorpus/cnc-gokit/collections"
	"github.com/rs/zerolog/log"
)

const (
	StaleWorkerLoadTTL       = time.Hour * 24
	tickerIntervalSecs int64 = 60
	recentLogSize            = 100
)

var (
	ErrWorkerNotFound = errors.New("worker not found")
)

// Collector gathers statistics of lexicon pattern regeneration jobs
// (as reported along with worker results) and of parse requests.
// All the records are also passed to a StatusWriter.
type Collector struct {
	workers      WorkersLoad
	funcs        map[string]RegenerationLoad
	parses       ParseThroughput
	recentJobs   *collections.CircularList[rdb.JobLog]
	recentParses *collections.CircularList[ParseLog]
	lock         sync.RWMutex
	tz           *time.Location
	statusWriter StatusWriter
}

// Log records a finished regeneration job
func (c *Collector) Log(rec rdb.JobLog) {
	c.lock.Lock()
	defer c.lock.Unlock()
	entry := c.workers[rec.WorkerID]
	entry.NumWorkers = 1
	entry.add(rec)
	c.workers[rec.WorkerID] = entry

	fn := c.funcs[rec.Func]
	fn.add(rec)
	c.funcs[rec.Func] = fn

	c.recentJobs.Append(rec)
	c.statusWriter.Write(rec)
	if rec.NumFailed > 0 {
		log.Warn().
			Str("workerId", rec.WorkerID).
			Str("func", rec.Func).
			Int("numItems", rec.NumItems).
			Int("numFailed", rec.NumFailed).
			Msg("regeneration job reported failed items")
	}
}

// LogParse records a served parse request
func (c *Collector) LogParse(rec ParseLog) {
	c.lock.Lock()
	defer c.lock.Unlock()
	c.parses.add(rec)
	c.recentParses.Append(rec)
	c.statusWriter.WriteParse(rec)
}

func (c *Collector) TotalLoad() RegenerationLoad {
	c.lock.RLock()
	defer c.lock.RUnlock()
	return c.workers.SumLoad(c.tz)
}

func (c *Collector) TotalWorkerLoad(workerID string) (RegenerationLoad, error) {
	c.lock.RLock()
	defer c.lock.RUnlock()
	ans, ok := c.workers[workerID]
	if !ok {
		return ans, ErrWorkerNotFound
	}
	return ans, nil
}

// RecentLoad aggregates recent jobs of a worker. An empty workerID
// means all the workers.
func (c *Collector) RecentLoad(workerID string) (RegenerationLoad, error) {
	c.lock.RLock()
	defer c.lock.RUnlock()
	var ans RegenerationLoad
	workers := collections.NewSet[string]()
	c.recentJobs.ForEach(func(i int, item rdb.JobLog) bool {
		if workerID == "" || item.WorkerID == workerID {
			workers.Add(item.WorkerID)
			ans.add(item)
		}
		return true
	})
	ans.NumWorkers = workers.Size()
	if workerID != "" && ans.NumJobs == 0 {
		return ans, ErrWorkerNotFound
	}
	return ans, nil
}

// FuncLoads returns loads per job function (regenerateLemma, regenerateAll)
func (c *Collector) FuncLoads() map[string]RegenerationLoad {
	c.lock.RLock()
	defer c.lock.RUnlock()
	ans := make(map[string]RegenerationLoad, len(c.funcs))
	for k, v := range c.funcs {
		ans[k] = v
	}
	return ans
}

func (c *Collector) RecentRecords() []rdb.JobLog {
	c.lock.RLock()
	defer c.lock.RUnlock()
	ans := make([]rdb.JobLog, c.recentJobs.Len())
	c.recentJobs.ForEach(func(i int, item rdb.JobLog) bool {
		ans[i] = item
		return true
	})
	return ans
}

func (c *Collector) TotalParseThroughput() ParseThroughput {
	c.lock.RLock()
	defer c.lock.RUnlock()
	return c.parses
}

func (c *Collector) RecentParseThroughput() ParseThroughput {
	c.lock.RLock()
	defer c.lock.RUnlock()
	var ans ParseThroughput
	c.recentParses.ForEach(func(i int, item ParseLog) bool {
		ans.add(item)
		return true
	})
	return ans
}

func (c *Collector) Start(ctx context.Context) {
	ticksPerCleanup := int64(StaleWorkerLoadTTL.Seconds()) / tickerIntervalSecs
	log.Info().Msg("starting statistics collector")
	go func() {
		ticker := time.NewTicker(time.Duration(tickerIntervalSecs) * time.Second)
		defer ticker.Stop()
		var numTicks int64
		for {
			select {
			case <-ctx.Done():
				log.Info().Msg("requesting statistics collector stop")
				return
			case <-ticker.C:
				numTicks++
				if numTicks%ticksPerCleanup == 0 {
					c.lock.Lock()
					c.workers.cleanOldRecords()
					c.lock.Unlock()
				}
			}
		}
	}()
}

func (c *Collector) Stop(ctx context.Context) error {
	log.Info().Msg("shutting down statistics collector")
	return nil
}

func NewCollector(statusWriter StatusWriter, tz *time.Location) *Collector {
	if statusWriter == nil {
		statusWriter = &NullStatusWriter{}
	}
	return &Collector{
		workers:      make(WorkersLoad),
		funcs:        make(map[string]RegenerationLoad),
		recentJobs:   collections.NewCircularList[rdb.JobLog](recentLogSize),
		recentParses: collections.NewCircularList[ParseLog](recentLogSize),
		tz:           tz,
		statusWriter: statusWriter,
	}
}
