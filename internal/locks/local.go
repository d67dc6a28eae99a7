package locks

import (
	"context"
	"sync"
)

// LocalLocker is an in-process keyed mutex. Entries are reference counted
// and dropped once nobody holds or waits for them.
type LocalLocker struct {
	mu     sync.Mutex
	courts map[int64]*courtLock
}

type courtLock struct {
	sem  chan struct{}
	refs int
}

func NewLocalLocker() *LocalLocker {
	return &LocalLocker{courts: make(map[int64]*courtLock)}
}

func (l *LocalLocker) Lock(ctx context.Context, courtID int64) (func(), error) {
	entry := l.acquire(courtID)

	select {
	case entry.sem <- struct{}{}:
	case <-ctx.Done():
		l.release(courtID)
		return nil, timeoutErr(ctx, courtID)
	}

	var once sync.Once
	return func() {
		once.Do(func() {
			<-entry.sem
			l.release(courtID)
		})
	}, nil
}

func (l *LocalLocker) acquire(courtID int64) *courtLock {
	l.mu.Lock()
	defer l.mu.Unlock()
	entry, ok := l.courts[courtID]
	if !ok {
		entry = &courtLock{sem: make(chan struct{}, 1)}
		l.courts[courtID] = entry
	}
	entry.refs++
	return entry
}

func (l *LocalLocker) release(courtID int64) {
	l.mu.Lock()
	defer l.mu.Unlock()
	entry, ok := l.courts[courtID]
	if !ok {
		return
	}
	entry.refs--
	if entry.refs == 0 {
		delete(l.courts, courtID)
	}
}

// held returns how many courts currently have holders or waiters.
func (l *LocalLocker) held() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.courts)
}
