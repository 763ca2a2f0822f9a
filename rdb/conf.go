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
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
)

type Conf struct {
	Host                 string `json:"host"`
	Port                 int    `json:"port"`
	DB                   int    `json:"db"`
	Password             string `json:"password"`
	ChannelQuery         string `json:"channelQuery"`
	ChannelResultPrefix  string `json:"channelResultPrefix"`
	QueueKey             string `json:"queueKey"`
	ResultExpirationSecs int    `json:"resultExpirationSecs"`
}

func (conf *Conf) ResultExpiration() time.Duration {
	return time.Duration(conf.ResultExpirationSecs) * time.Second
}

func (conf *Conf) ValidateAndDefaults() error {
	if conf == nil {
		return fmt.Errorf("missing `redis` section")
	}
	if conf.Host == "" {
		return fmt.Errorf("missing `redis.host`")
	}
	if conf.Port == 0 {
		conf.Port = 6379
		log.Warn().Int("port", conf.Port).Msg("Redis port not specified, using default")
	}
	if conf.ChannelResultPrefix == "" {
		conf.ChannelResultPrefix = DefaultResultChannelPrefix
		log.Warn().
			Str("channel", conf.ChannelResultPrefix).
			Msg("Redis channel for results not specified, using default")
	}
	if conf.ChannelQuery == "" {
		conf.ChannelQuery = DefaultQueryChannel
		log.Warn().
			Str("channel", conf.ChannelQuery).
			Msg("Redis channel for queries not specified, using default")
	}
	if conf.QueueKey == "" {
		conf.QueueKey = DefaultQueueKey
	}
	if conf.ResultExpirationSecs == 0 {
		conf.ResultExpirationSecs = int(DefaultResultExpiration.Seconds())
	}
	return nil
}
