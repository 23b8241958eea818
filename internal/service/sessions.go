package service

import (
	"net/url"
	"sync"
)

// Sessions tracks the live result screen of each client. A client without an
// id gets a fresh screen every time.
type Sessions struct {
	resolver *Resolver

	mu   sync.Mutex
	live map[string]*Session
}

func NewSessions(resolver *Resolver) *Sessions {
	return &Sessions{
		resolver: resolver,
		live:     make(map[string]*Session),
	}
}

// Open starts a new screen for the client and closes the one it replaces.
func (s *Sessions) Open(clientID, userID string, params url.Values) *Session {
	session := s.resolver.NewSession(clientID, userID, params)
	if clientID == "" {
		return session
	}

	s.mu.Lock()
	prev := s.live[clientID]
	s.live[clientID] = session
	s.mu.Unlock()

	if prev != nil {
		prev.Close()
	}
	return session
}

// Resume returns the client's live screen, opening one when there is none.
// orderCode is used only if the screen has no order code of its own.
func (s *Sessions) Resume(clientID, userID, orderCode string) *Session {
	var session *Session
	if clientID != "" {
		s.mu.Lock()
		session = s.live[clientID]
		if session == nil {
			session = s.resolver.NewSession(clientID, userID, nil)
			s.live[clientID] = session
		}
		s.mu.Unlock()
	} else {
		session = s.resolver.NewSession(clientID, userID, nil)
	}

	if orderCode != "" {
		session.fallBackTo(orderCode)
	}
	return session
}

// Close unmounts the client's screen.
func (s *Sessions) Close(clientID string) bool {
	s.mu.Lock()
	session, ok := s.live[clientID]
	delete(s.live, clientID)
	s.mu.Unlock()

	if ok {
		session.Close()
	}
	return ok
}
