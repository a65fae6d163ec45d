package database

import (
	"context"
	"database/sql"
	"errors"
	"os"
	"strings"
	"time"

	gomysql "github.com/go-sql-driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/yeremiapane/restaurant-pos/utils"
)

// Defaults are overridable via TX_LOCK_TIMEOUT / TX_TIMEOUT env vars (Go
// duration syntax) and per call through TxOptions.
var (
	// DefaultLockTimeout bounds how long we wait for a row lock.
	DefaultLockTimeout = envDuration("TX_LOCK_TIMEOUT", 5*time.Second)
	// DefaultTxTimeout bounds the whole transaction.
	DefaultTxTimeout = envDuration("TX_TIMEOUT", 10*time.Second)
)

func envDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}

// MySQL error numbers the runner classifies.
const (
	mysqlErrLockWaitTimeout = 1205
	mysqlErrDeadlock        = 1213
	mysqlErrDuplicateKey    = 1062
)

// TxOptions configures one transactional call. Zero values fall back to the
// defaults; Resource names the contended thing for conflict messages.
type TxOptions struct {
	LockTimeout time.Duration
	TxTimeout   time.Duration
	Resource    string
}

func (o TxOptions) withDefaults() TxOptions {
	if o.LockTimeout <= 0 {
		o.LockTimeout = DefaultLockTimeout
	}
	if o.TxTimeout <= 0 {
		o.TxTimeout = DefaultTxTimeout
	}
	if o.Resource == "" {
		o.Resource = "database"
	}
	return o
}

// TxRunner wraps a unit of work in a bounded-wait, bounded-duration
// transaction. Two modes: RunSerializable (elevated isolation for
// read-then-write decisions) and RunWithLock (explicit row locks for
// read-modify-write on a single row).
type TxRunner struct {
	db *gorm.DB
	// sqlite punya satu writer dan default isolation-nya sudah serializable,
	// jadi FOR UPDATE dan SET isolation di-skip di sana
	supportsRowLocks  bool
	supportsIsolation bool
}

func NewTxRunner(db *gorm.DB) *TxRunner {
	isSQLite := db.Dialector.Name() == "sqlite"
	return &TxRunner{
		db:                db,
		supportsRowLocks:  !isSQLite,
		supportsIsolation: !isSQLite,
	}
}

// DB exposes the underlying handle for non-transactional reads.
func (r *TxRunner) DB() *gorm.DB {
	return r.db
}

// RunSerializable executes fn under the strictest isolation the store
// offers. Used wherever a read-then-write decision must not be invalidated
// by a concurrent writer (payment budgets, shift uniqueness, table checks).
func (r *TxRunner) RunSerializable(ctx context.Context, opts TxOptions, fn func(tx *gorm.DB) error) error {
	var txOpts []*sql.TxOptions
	if r.supportsIsolation {
		txOpts = append(txOpts, &sql.TxOptions{Isolation: sql.LevelSerializable})
	}
	return r.run(ctx, opts, txOpts, fn)
}

// RunWithLock executes fn at default isolation; fn is expected to read the
// contended rows through Locked(tx) so the row lock, not isolation, provides
// safety.
func (r *TxRunner) RunWithLock(ctx context.Context, opts TxOptions, fn func(tx *gorm.DB) error) error {
	return r.run(ctx, opts, nil, fn)
}

// Locked applies SELECT ... FOR UPDATE on dialects that support it.
func (r *TxRunner) Locked(tx *gorm.DB) *gorm.DB {
	if r.supportsRowLocks {
		return tx.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	return tx
}

func (r *TxRunner) run(ctx context.Context, opts TxOptions, txOpts []*sql.TxOptions, fn func(tx *gorm.DB) error) error {
	opts = opts.withDefaults()

	ctx, cancel := context.WithTimeout(ctx, opts.TxTimeout)
	defer cancel()

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if r.supportsRowLocks {
			// Session-scoped, berlaku untuk koneksi transaksi ini saja
			seconds := int(opts.LockTimeout.Seconds())
			if seconds < 1 {
				seconds = 1
			}
			if err := tx.Exec("SET innodb_lock_wait_timeout = ?", seconds).Error; err != nil {
				utils.ErrorLogger.Printf("failed to set lock wait timeout: %v", err)
			}
		}
		return fn(tx)
	}, txOpts...)

	return r.classify(err, opts)
}

// classify maps store-level failures onto the error taxonomy. Deadlocks and
// duplicate keys come back as distinct retryable types; lock and duration
// timeouts as conflicts naming the resource and the bound that was exceeded.
func (r *TxRunner) classify(err error, opts TxOptions) error {
	if err == nil {
		return nil
	}

	var myErr *gomysql.MySQLError
	if errors.As(err, &myErr) {
		switch myErr.Number {
		case mysqlErrLockWaitTimeout:
			return utils.NewConflictError(opts.Resource,
				"lock not acquired within %s", opts.LockTimeout)
		case mysqlErrDeadlock:
			return &utils.DeadlockError{Err: err}
		case mysqlErrDuplicateKey:
			return &utils.DuplicateKeyError{Err: err}
		}
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) ||
		strings.Contains(err.Error(), "UNIQUE constraint failed") {
		return &utils.DuplicateKeyError{Err: err}
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return utils.NewConflictError(opts.Resource,
			"transaction exceeded %s", opts.TxTimeout)
	}
	return err
}
