package net

// SessionStore tracks live sessions by ID. Game loop only.
type SessionStore struct {
	byID  map[uint64]*Session
	order []uint64
}

func NewSessionStore() *SessionStore {
	return &SessionStore{byID: make(map[uint64]*Session)}
}

func (s *SessionStore) Add(sess *Session) {
	if _, ok := s.byID[sess.ID]; ok {
		return
	}
	s.byID[sess.ID] = sess
	s.order = append(s.order, sess.ID)
}

func (s *SessionStore) Remove(id uint64) {
	if _, ok := s.byID[id]; !ok {
		return
	}
	delete(s.byID, id)
	for i, v := range s.order {
		if v == id {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
}

func (s *SessionStore) Get(id uint64) *Session {
	return s.byID[id]
}

// ForEach visits sessions in connection order.
func (s *SessionStore) ForEach(fn func(*Session)) {
	for _, id := range s.order {
		fn(s.byID[id])
	}
}

// Snapshot returns the sessions in connection order; safe to mutate the
// store while iterating it.
func (s *SessionStore) Snapshot() []*Session {
	out := make([]*Session, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, s.byID[id])
	}
	return out
}

func (s *SessionStore) Count() int { return len(s.byID) }
