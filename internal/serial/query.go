// internal/serial/query.go
package serial

import (
	"context"
	"errors"
	"fmt"
	"time"
)

type queryResult struct {
	line string
	err  error
}

// pendingQuery is one outstanding request.
// reply has capacity 1 so delivery never blocks the reader.
type pendingQuery struct {
	token uint64
	tag   string
	reply chan queryResult
}

// Query writes line and waits for the next response carrying tag.
// An empty tag accepts the next response of any kind.
//
// Responses go to the oldest outstanding query with a matching tag.
// Echoed commands, acknowledgements and lines nobody is waiting for are dropped.
func (s *Session) Query(ctx context.Context, line, tag string) (string, error) {
	s.mu.Lock()
	l := s.link
	if l == nil {
		s.mu.Unlock()
		s.log.Info("ignored query", "cmd", line)
		return "", ErrNotOpen
	}
	s.token++
	p := &pendingQuery{
		token: s.token,
		tag:   tag,
		reply: make(chan queryResult, 1),
	}
	s.pending = append(s.pending, p)
	s.mu.Unlock()

	if err := l.write(line); err != nil {
		s.forget(p)
		s.queryDone("error")
		return "", err
	}

	var timeout <-chan time.Time
	if s.cfg.QueryTimeout > 0 {
		t := time.NewTimer(s.cfg.QueryTimeout)
		defer t.Stop()
		timeout = t.C
	}

	select {
	case r := <-p.reply:
		return s.finish(r)

	case <-timeout:
		if !s.forget(p) {
			return s.finish(<-p.reply)
		}
		s.log.Warn("query timed out", "cmd", line, "timeout", s.cfg.QueryTimeout)
		s.queryDone("timeout")
		return "", fmt.Errorf("%w: %s", ErrQueryTimeout, line)

	case <-ctx.Done():
		if !s.forget(p) {
			return s.finish(<-p.reply)
		}
		s.queryDone("error")
		return "", ctx.Err()
	}
}

// Pending returns the number of queries waiting for a response.
func (s *Session) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.pending)
}

func (s *Session) finish(r queryResult) (string, error) {
	switch {
	case r.err == nil:
		s.queryDone("ok")
	case errors.Is(r.err, ErrDisconnected):
		s.queryDone("disconnected")
	default:
		s.queryDone("error")
	}
	return r.line, r.err
}

func (s *Session) queryDone(outcome string) {
	if s.onQuery != nil {
		s.onQuery(outcome)
	}
}

// dispatch routes one received line.
func (s *Session) dispatch(line string) {
	if line == "" {
		return
	}
	if s.cfg.Echo(line) {
		s.log.Debug("dropped echo", "line", line)
		return
	}

	tag, ok := s.cfg.Tag(line)
	if !ok {
		s.log.Debug("dropped unparsable line", "line", line)
		return
	}

	s.mu.Lock()
	for i, p := range s.pending {
		if p.tag != "" && p.tag != tag {
			continue
		}
		s.pending = append(s.pending[:i], s.pending[i+1:]...)
		s.mu.Unlock()

		p.reply <- queryResult{line: line}
		return
	}
	s.mu.Unlock()

	s.log.Debug("dropped unmatched line", "line", line)
}

// forget removes p from the queue. False means a result is already on its way.
func (s *Session) forget(p *pendingQuery) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i, q := range s.pending {
		if q.token == p.token {
			s.pending = append(s.pending[:i], s.pending[i+1:]...)
			return true
		}
	}
	return false
}

func (s *Session) takePendingLocked() []*pendingQuery {
	pending := s.pending
	s.pending = nil
	return pending
}

func failAll(pending []*pendingQuery, err error) {
	for _, p := range pending {
		p.reply <- queryResult{err: err}
	}
}
