package client

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"sync"
	"time"

	"taskboard/internal/hub"
	"taskboard/internal/model"

	"github.com/gorilla/websocket"
)

const reconnectDelay = 5 * time.Second

// Store holds the state behind a lock so the websocket loop and renderers
// can share it.
type Store struct {
	mu    sync.RWMutex
	state State
}

func NewStore() *Store {
	return &Store{state: NewState()}
}

// Snapshot returns a copy of the current state.
func (s *Store) Snapshot() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

// Dispatch folds an event into the state and reports whether a full reload
// is now needed.
func (s *Store) Dispatch(ev hub.Event) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = Apply(s.state, ev)
	return s.state.NeedsRefresh
}

// Update applies an arbitrary transition, for view and filter changes.
func (s *Store) Update(fn func(State) State) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = fn(s.state)
}

// Syncer keeps a Store in step with the server: full load on connect,
// incremental events over the websocket, full reload when an event asks for
// one, and a fixed-delay reconnect loop that never gives up.
type Syncer struct {
	apiBase    string
	httpClient *http.Client
	store      *Store
}

func NewSyncer(apiBase string, store *Store) *Syncer {
	return &Syncer{
		apiBase:    apiBase,
		httpClient: &http.Client{Timeout: 15 * time.Second},
		store:      store,
	}
}

// Run blocks until ctx is cancelled.
func (s *Syncer) Run(ctx context.Context) {
	for {
		if err := s.connectAndListen(ctx); err != nil {
			log.Printf("⚠️  Hub connection lost: %v", err)
		}
		select {
		case <-ctx.Done():
			return
		case <-time.After(reconnectDelay):
		}
	}
}

func (s *Syncer) connectAndListen(ctx context.Context) error {
	if err := s.reloadTasks(ctx); err != nil {
		return err
	}

	url, token, err := s.negotiate(ctx)
	if err != nil {
		return err
	}

	conn, _, err := websocket.DefaultDialer.DialContext(ctx, url+"?access_token="+token, nil)
	if err != nil {
		return fmt.Errorf("failed to dial hub: %w", err)
	}
	defer conn.Close()

	// Unblock ReadJSON when the context is cancelled.
	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
			conn.Close()
		case <-done:
		}
	}()

	for {
		var ev hub.Event
		if err := conn.ReadJSON(&ev); err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return err
		}
		if s.store.Dispatch(ev) {
			if err := s.reloadTasks(ctx); err != nil {
				log.Printf("⚠️  Failed to reload tasks: %v", err)
			}
		}
	}
}

func (s *Syncer) negotiate(ctx context.Context) (url, token string, err error) {
	var out struct {
		URL         string `json:"url"`
		AccessToken string `json:"accessToken"`
	}
	if err := s.getJSON(ctx, "/negotiate", &out); err != nil {
		return "", "", err
	}
	return out.URL, out.AccessToken, nil
}

func (s *Syncer) reloadTasks(ctx context.Context) error {
	var tasks []model.Task
	if err := s.getJSON(ctx, "/getTasks", &tasks); err != nil {
		return err
	}
	s.store.Update(func(st State) State { return st.WithTasks(tasks) })
	return nil
}

func (s *Syncer) getJSON(ctx context.Context, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.apiBase+path, nil)
	if err != nil {
		return err
	}
	resp, err := s.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request to %s failed: %w", path, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("request to %s returned %d", path, resp.StatusCode)
	}
	return json.NewDecoder(resp.Body).Decode(out)
}
