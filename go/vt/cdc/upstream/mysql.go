/*
Copyright 2026 The Vitess Authors.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

package upstream

import (
	"context"
	"database/sql"
	"net"
	"strconv"
	"time"

	mysqldriver "github.com/go-sql-driver/mysql"
	"github.com/google/uuid"

	"github.com/gtidkit/gtidkit/go/mysql/replication"
	"github.com/gtidkit/gtidkit/go/vt/log"
	"github.com/gtidkit/gtidkit/go/vt/vterrors"
)

const positionsQuery = "select @@global.gtid_executed, @@global.gtid_purged, @@global.server_uuid"

// Config describes how to reach the upstream MySQL server. DSN takes
// precedence over the individual fields.
type Config struct {
	DSN      string
	Host     string
	Port     int
	User     string
	Password string
	Timeout  time.Duration
}

func (c Config) driverConfig() (*mysqldriver.Config, error) {
	if c.DSN != "" {
		cfg, err := mysqldriver.ParseDSN(c.DSN)
		if err != nil {
			return nil, vterrors.Wrap(err, "failed to parse MySQL DSN")
		}
		if c.Timeout > 0 && cfg.Timeout == 0 {
			cfg.Timeout = c.Timeout
		}
		return cfg, nil
	}
	if c.Host == "" {
		return nil, vterrors.New(vterrors.InvalidArgument, "either a DSN or a host is required")
	}
	port := c.Port
	if port == 0 {
		port = 3306
	}
	cfg := mysqldriver.NewConfig()
	cfg.Net = "tcp"
	cfg.Addr = net.JoinHostPort(c.Host, strconv.Itoa(port))
	cfg.User = c.User
	cfg.Passwd = c.Password
	cfg.Timeout = c.Timeout
	return cfg, nil
}

// MySQL is a Source reading the GTID system variables of a MySQL server.
type MySQL struct {
	db   *sql.DB
	addr string
}

// NewMySQL returns a MySQL source. No connection is made until the first
// call to Positions.
func NewMySQL(c Config) (*MySQL, error) {
	cfg, err := c.driverConfig()
	if err != nil {
		return nil, err
	}
	connector, err := mysqldriver.NewConnector(cfg)
	if err != nil {
		return nil, vterrors.Wrap(err, "failed to create MySQL connector")
	}
	db := sql.OpenDB(connector)
	db.SetMaxOpenConns(1)
	return &MySQL{db: db, addr: cfg.Addr}, nil
}

// Positions is part of the Source interface.
func (m *MySQL) Positions(ctx context.Context) (Positions, error) {
	var executed, purged, serverUUID string
	if err := m.db.QueryRowContext(ctx, positionsQuery).Scan(&executed, &purged, &serverUUID); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return Positions{}, vterrors.Wrapf(ctxErr, "cannot read GTID state from %s", m.addr)
		}
		return Positions{}, vterrors.Errorf(vterrors.Unavailable, "cannot read GTID state from %s: %v", m.addr, err)
	}
	log.V(2).Infof("upstream %s: gtid_executed=%q gtid_purged=%q", m.addr, executed, purged)
	return positionsFromVariables(executed, purged, serverUUID)
}

// Close closes the connection pool.
func (m *MySQL) Close() error {
	return m.db.Close()
}

func positionsFromVariables(executed, purged, serverUUID string) (Positions, error) {
	var (
		pos Positions
		err error
	)
	if pos.Executed, err = replication.ParsePositionSet(executed); err != nil {
		return Positions{}, vterrors.Wrap(err, "gtid_executed")
	}
	if pos.Purged, err = replication.ParsePositionSet(purged); err != nil {
		return Positions{}, vterrors.Wrap(err, "gtid_purged")
	}
	id, err := uuid.Parse(serverUUID)
	if err != nil {
		return Positions{}, vterrors.Errorf(vterrors.Internal, "invalid server_uuid %q: %v", serverUUID, err)
	}
	pos.ServerUUID = id.String()
	return pos, nil
}
