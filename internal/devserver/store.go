package devserver

import (
	"errors"
	"sort"
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/nhle/taskflow/internal/model"
)

var (
	errUsernameTaken      = errors.New("username already exists")
	errInvalidCredentials = errors.New("invalid username or password")
	errTaskNotFound       = errors.New("task not found")
)

type user struct {
	username     string
	passwordHash []byte
	role         string
}

// memStore holds users, tokens and tasks for the lifetime of the server.
type memStore struct {
	mu     sync.RWMutex
	users  map[string]user
	tokens map[string]string
	tasks  map[int64]model.Task
	nextID int64
	now    func() time.Time
}

func newMemStore(now func() time.Time) *memStore {
	return &memStore{
		users:  make(map[string]user),
		tokens: make(map[string]string),
		tasks:  make(map[int64]model.Task),
		nextID: 1,
		now:    now,
	}
}

func (s *memStore) register(username, password, role string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.users[username]; ok {
		return errUsernameTaken
	}
	s.users[username] = user{username: username, passwordHash: hash, role: role}
	return nil
}

// login checks the password and issues a fresh opaque token.
func (s *memStore) login(username, password string) (string, user, error) {
	s.mu.RLock()
	u, ok := s.users[username]
	s.mu.RUnlock()
	if !ok {
		return "", user{}, errInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword(u.passwordHash, []byte(password)); err != nil {
		return "", user{}, errInvalidCredentials
	}

	token := uuid.NewString()
	s.mu.Lock()
	s.tokens[token] = username
	s.mu.Unlock()
	return token, u, nil
}

func (s *memStore) userForToken(token string) (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	name, ok := s.tokens[token]
	return name, ok
}

func (s *memStore) stamp() *model.Timestamp {
	ts := model.NewTimestamp(s.now())
	return &ts
}

func (s *memStore) createTask(t model.Task) model.Task {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := s.nextID
	s.nextID++

	t.ID = model.ID(strconv.FormatInt(id, 10))
	if t.Status == "" {
		t.Status = model.StatusOpen
	}
	t.Priority = t.Priority.OrDefault()
	t.CreatedOn = s.stamp()
	t.ModifiedOn = t.CreatedOn
	s.tasks[id] = t
	return t
}

func (s *memStore) updateTask(id int64, t model.Task) (model.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, ok := s.tasks[id]
	if !ok {
		return model.Task{}, errTaskNotFound
	}

	t.ID = existing.ID
	t.CreatedOn = existing.CreatedOn
	if t.CreatedBy == "" {
		t.CreatedBy = existing.CreatedBy
	}
	if t.Status == "" {
		t.Status = existing.Status
	}
	t.Priority = t.Priority.OrDefault()
	t.ModifiedOn = s.stamp()
	s.tasks[id] = t
	return t, nil
}

func (s *memStore) deleteTask(id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.tasks[id]; !ok {
		return errTaskNotFound
	}
	delete(s.tasks, id)
	return nil
}

// listTasks returns one page of tasks in id order and the number of
// tasks matching the filter.
func (s *memStore) listTasks(page, size int, filter model.StatusFilter) ([]model.Task, int) {
	s.mu.RLock()
	ids := make([]int64, 0, len(s.tasks))
	for id, t := range s.tasks {
		if filter.IsAll() || string(t.Status) == filter.Param() {
			ids = append(ids, id)
		}
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	total := len(ids)
	start := page * size
	if start > total {
		start = total
	}
	end := start + size
	if end > total {
		end = total
	}

	out := make([]model.Task, 0, end-start)
	for _, id := range ids[start:end] {
		out = append(out, s.tasks[id])
	}
	s.mu.RUnlock()

	return out, total
}
