package view

import (
	"context"
	"errors"
	"sync"

	"go-directory/internal/form"

	"go.uber.org/zap"
)

type State int

const (
	Loading State = iota
	Loaded
	LoadError
)

func (s State) String() string {
	switch s {
	case Loading:
		return "loading"
	case Loaded:
		return "loaded"
	case LoadError:
		return "load_error"
	default:
		return "unknown"
	}
}

// Notices shown to the user after a mutation or a failed load.
const (
	NoticeCreated    = "Employee created successfully!"
	NoticeUpdated    = "Employee updated successfully!"
	NoticeDeleted    = "Employee deleted successfully!"
	NoticeSaveFailed = "Error saving employee data"
	NoticeDeleteFail = "Error deleting employee"
	NoticeLoadFailed = "Error fetching employee data."
)

var (
	ErrSessionClosed = errors.New("view session closed")
	ErrUnknownRecord = errors.New("employee not in view")
)

// Source is the remote end of the directory, usually the API client.
type Source interface {
	List(ctx context.Context) ([]Record, error)
	Create(ctx context.Context, v form.Values) (Record, error)
	Update(ctx context.Context, id string, v form.Values) (Record, error)
	Delete(ctx context.Context, id string) error
}

type NoticeKind string

const (
	NoticeSuccess NoticeKind = "success"
	NoticeError   NoticeKind = "error"
)

type Notice struct {
	Kind    NoticeKind
	Message string
	Err     error
}

type Notifier interface {
	Notify(n Notice)
}

// LogNotifier writes notices to a zap logger.
type LogNotifier struct {
	Logger *zap.Logger
}

func (n LogNotifier) Notify(notice Notice) {
	if notice.Kind == NoticeError {
		n.Logger.Warn(notice.Message, zap.Error(notice.Err))
		return
	}
	n.Logger.Info(notice.Message)
}

// Session drives one view of the directory: it loads the list, runs
// mutations against the Source and keeps the Cache in step. After Close,
// results that arrive are dropped.
type Session struct {
	src      Source
	cache    *Cache
	notifier Notifier

	mu      sync.Mutex
	state   State
	loadErr error
	closed  bool
}

func NewSession(src Source, notifier Notifier) *Session {
	if notifier == nil {
		notifier = LogNotifier{Logger: zap.L().Named("view.session")}
	}
	return &Session{
		src:      src,
		cache:    NewCache(),
		notifier: notifier,
		state:    Loading,
	}
}

func (s *Session) Cache() *Cache {
	return s.cache
}

func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// LoadErr is the error behind LoadError, nil otherwise.
func (s *Session) LoadErr() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loadErr
}

func (s *Session) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
}

func (s *Session) isClosed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}

// Load fetches the full list. A failure leaves the previous cache content
// untouched and puts the session in LoadError until a load succeeds.
func (s *Session) Load(ctx context.Context) error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return ErrSessionClosed
	}
	s.state = Loading
	s.mu.Unlock()

	records, err := s.src.List(ctx)

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return ErrSessionClosed
	}
	if err != nil {
		s.state = LoadError
		s.loadErr = err
		s.mu.Unlock()
		s.notifier.Notify(Notice{Kind: NoticeError, Message: NoticeLoadFailed, Err: err})
		return err
	}
	s.cache.Replace(records)
	s.state = Loaded
	s.loadErr = nil
	s.mu.Unlock()
	return nil
}

// Create validates in, sends it and reloads on success. Form violations are
// returned as form.Violations without contacting the Source.
func (s *Session) Create(ctx context.Context, in form.Input) (Record, error) {
	values, err := form.Validate(in)
	if err != nil {
		return Record{}, err
	}

	rec, err := s.src.Create(ctx, values)
	return rec, s.afterMutation(ctx, err, NoticeCreated, NoticeSaveFailed)
}

func (s *Session) Update(ctx context.Context, id string, in form.Input) (Record, error) {
	values, err := form.Validate(in)
	if err != nil {
		return Record{}, err
	}

	rec, err := s.src.Update(ctx, id, values)
	return rec, s.afterMutation(ctx, err, NoticeUpdated, NoticeSaveFailed)
}

// Delete hides the record while the request is in flight. It is removed
// only once the Source acknowledges; on failure it reappears in place.
func (s *Session) Delete(ctx context.Context, id string) error {
	if s.isClosed() {
		return ErrSessionClosed
	}
	if !s.cache.MarkPending(id) {
		return ErrUnknownRecord
	}

	err := s.src.Delete(ctx, id)
	if s.isClosed() {
		return ErrSessionClosed
	}
	if err != nil {
		s.cache.Rollback(id)
	} else {
		s.cache.Commit(id)
	}
	return s.afterMutation(ctx, err, NoticeDeleted, NoticeDeleteFail)
}

func (s *Session) afterMutation(ctx context.Context, err error, okMsg, failMsg string) error {
	if s.isClosed() {
		return ErrSessionClosed
	}
	if err != nil {
		s.notifier.Notify(Notice{Kind: NoticeError, Message: failMsg, Err: err})
		return err
	}
	s.notifier.Notify(Notice{Kind: NoticeSuccess, Message: okMsg})

	// the list is already stale; a failed refresh is reported by Load itself
	_ = s.Load(ctx)
	return nil
}
