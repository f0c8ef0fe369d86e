package repository

import (
	"context"
	"fmt"
	"maps"
	"sort"
	"sync"
	"time"

	"github.com/clientdesk/clientdesk/internal/model"
)

// MemoryStore is a Store held in process memory. Transactions are
// serialized and work on a copy of the data that replaces the live set
// only on commit.
type MemoryStore struct {
	mu            sync.Mutex
	accounts      map[int64]model.Account
	projects      map[int64]model.Project
	nextAccountID int64
	nextProjectID int64
	now           func() time.Time
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		accounts: make(map[int64]model.Account),
		projects: make(map[int64]model.Project),
		now:      time.Now,
	}
}

// Ping always succeeds.
func (m *MemoryStore) Ping(ctx context.Context) error {
	return ctx.Err()
}

// Close is a no-op.
func (m *MemoryStore) Close() {}

// WithTx runs fn against a snapshot and publishes its writes if fn succeeds.
// A panic in fn leaves the store untouched.
func (m *MemoryStore) WithTx(ctx context.Context, fn func(tx Tx) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	tx := &memTx{
		accounts:      maps.Clone(m.accounts),
		projects:      maps.Clone(m.projects),
		nextAccountID: m.nextAccountID,
		nextProjectID: m.nextProjectID,
		now:           m.now,
	}

	if err := fn(tx); err != nil {
		return err
	}

	m.accounts = tx.accounts
	m.projects = tx.projects
	m.nextAccountID = tx.nextAccountID
	m.nextProjectID = tx.nextProjectID
	return nil
}

type memTx struct {
	accounts      map[int64]model.Account
	projects      map[int64]model.Project
	nextAccountID int64
	nextProjectID int64
	now           func() time.Time
}

func (t *memTx) timestamp() time.Time {
	return t.now().UTC().Truncate(time.Microsecond)
}

func (t *memTx) FindAccountByHandle(ctx context.Context, handle string) (*model.Account, error) {
	for _, a := range t.accounts {
		if a.Handle == handle {
			account := a
			return &account, nil
		}
	}
	return nil, ErrAccountNotFound
}

func (t *memTx) GetAccountByID(ctx context.Context, id int64) (*model.Account, error) {
	a, ok := t.accounts[id]
	if !ok {
		return nil, ErrAccountNotFound
	}
	return &a, nil
}

func (t *memTx) InsertAccount(ctx context.Context, account *model.Account) error {
	for _, a := range t.accounts {
		if a.Handle == account.Handle {
			return ErrHandleExists
		}
		if a.Email == account.Email {
			return ErrEmailExists
		}
	}

	t.nextAccountID++
	now := t.timestamp()
	account.ID = t.nextAccountID
	account.CreatedAt = now
	account.UpdatedAt = now
	t.accounts[account.ID] = *account
	return nil
}

func (t *memTx) UpdateAccount(ctx context.Context, account *model.Account) error {
	stored, ok := t.accounts[account.ID]
	if !ok {
		return ErrAccountNotFound
	}
	for id, a := range t.accounts {
		if id != account.ID && a.Email == account.Email {
			return ErrEmailExists
		}
	}

	stored.Email = account.Email
	stored.FullName = account.FullName
	stored.PasswordHash = account.PasswordHash
	stored.Active = account.Active
	stored.UpdatedAt = t.timestamp()
	t.accounts[account.ID] = stored

	account.UpdatedAt = stored.UpdatedAt
	return nil
}

func (t *memTx) GetProjectByID(ctx context.Context, id int64) (*model.Project, error) {
	p, ok := t.projects[id]
	if !ok {
		return nil, ErrProjectNotFound
	}
	return &p, nil
}

func (t *memTx) InsertProject(ctx context.Context, project *model.Project) error {
	if !project.State.IsValid() {
		return fmt.Errorf("%w: %q", ErrInvalidProjectState, project.State)
	}
	if _, ok := t.accounts[project.AccountID]; !ok {
		return ErrAccountNotFound
	}

	t.nextProjectID++
	now := t.timestamp()
	project.ID = t.nextProjectID
	project.CreatedAt = now
	project.UpdatedAt = now
	t.projects[project.ID] = *project
	return nil
}

func (t *memTx) UpdateProject(ctx context.Context, project *model.Project) error {
	if !project.State.IsValid() {
		return fmt.Errorf("%w: %q", ErrInvalidProjectState, project.State)
	}
	stored, ok := t.projects[project.ID]
	if !ok {
		return ErrProjectNotFound
	}

	stored.FullName = project.FullName
	stored.ShortName = project.ShortName
	stored.Description = project.Description
	stored.State = project.State
	stored.UpdatedAt = t.timestamp()
	t.projects[project.ID] = stored

	project.UpdatedAt = stored.UpdatedAt
	return nil
}

func (t *memTx) DeleteProject(ctx context.Context, id int64) error {
	if _, ok := t.projects[id]; !ok {
		return ErrProjectNotFound
	}
	delete(t.projects, id)
	return nil
}

func (t *memTx) ListProjectsByOwner(ctx context.Context, accountID int64) ([]*model.Project, error) {
	projects := make([]*model.Project, 0)
	for _, p := range t.projects {
		if p.AccountID == accountID {
			project := p
			projects = append(projects, &project)
		}
	}
	sort.Slice(projects, func(i, j int) bool {
		return projects[i].ID < projects[j].ID
	})
	return projects, nil
}
