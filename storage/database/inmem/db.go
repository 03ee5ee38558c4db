// Package inmemdb implements the core repositories over in-process maps.
// It backs tests and local runs that have no PostgreSQL around.
package inmemdb

import (
	"context"
	"sync"
	"time"

	"github.com/campusconnect/hub/core"
	"github.com/campusconnect/hub/core/event"
	"github.com/campusconnect/hub/core/news"
	"github.com/campusconnect/hub/core/resource"
	"github.com/campusconnect/hub/core/user"
)

// mocked in tests
var nowFunc = time.Now

// DB holds all tables behind one lock; cross-table reads (counts,
// cascades, projections) stay consistent that way.
type DB struct {
	mutex     sync.RWMutex
	txMutex   sync.Mutex
	users     map[string]*user.User
	news      map[string]*news.Post
	events    map[string]*event.Event
	rsvps     map[string]*event.RSVP
	resources map[string]*resource.Resource
}

var _ core.Transactor = (*DB)(nil)

func NewDB() *DB {
	db := new(DB)
	db.Reset()
	return db
}

// InTx serializes fn against other transactions, keeping check-then-write
// sequences (RSVP capacity, last-admin counts) atomic. Repository calls
// inside fn take the data lock themselves, so fn runs them as usual.
func (db *DB) InTx(ctx context.Context, fn func(exec ...core.DBExecutor) error) error {
	db.txMutex.Lock()
	defer db.txMutex.Unlock()
	return fn()
}

// Reset drops all data. For tests.
func (db *DB) Reset() {
	db.mutex.Lock()
	defer db.mutex.Unlock()
	db.users = make(map[string]*user.User)
	db.news = make(map[string]*news.Post)
	db.events = make(map[string]*event.Event)
	db.rsvps = make(map[string]*event.RSVP)
	db.resources = make(map[string]*resource.Resource)
}
