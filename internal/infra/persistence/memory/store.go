// Package memory is an in-process repository backend for local development and tests.
// State is lost on restart.
package memory

import (
	"context"
	"slices"
	"sort"
	"sync"
	"time"

	"safeguard/internal/domain/entity"
	"safeguard/internal/domain/repository"

	"github.com/google/uuid"
)

// Store holds every table behind one lock.
type Store struct {
	mu sync.RWMutex

	liveLocations map[uuid.UUID]*entity.LiveLocation // keyed by user id
	tracked       map[int64]*entity.TrackedLocation
	nextTrackedID int64
	contacts      map[uuid.UUID]*entity.Contact

	now func() time.Time
}

// NewStore creates an empty store.
func NewStore() *Store {
	return &Store{
		liveLocations: make(map[uuid.UUID]*entity.LiveLocation),
		tracked:       make(map[int64]*entity.TrackedLocation),
		contacts:      make(map[uuid.UUID]*entity.Contact),
		now:           func() time.Time { return time.Now().UTC() },
	}
}

func (s *Store) LiveLocations() repository.LiveLocationRepository {
	return &liveLocationRepository{store: s}
}

func (s *Store) TrackedLocations() repository.TrackedLocationRepository {
	return &trackedLocationRepository{store: s}
}

func (s *Store) Contacts() repository.ContactRepository {
	return &contactRepository{store: s}
}

func (s *Store) TransactionManager() repository.TransactionManager {
	return &transactionManager{store: s}
}

// transactionManager serializes transactional callbacks. It does not roll back.
type transactionManager struct {
	store *Store
	mu    sync.Mutex
}

func (tm *transactionManager) Execute(_ context.Context, fn func(repository.RepositoryFactory) error) error {
	tm.mu.Lock()
	defer tm.mu.Unlock()

	return fn(tm)
}

func (tm *transactionManager) NewLiveLocationRepository() repository.LiveLocationRepository {
	return tm.store.LiveLocations()
}

func (tm *transactionManager) NewTrackedLocationRepository() repository.TrackedLocationRepository {
	return tm.store.TrackedLocations()
}

func (tm *transactionManager) NewContactRepository() repository.ContactRepository {
	return tm.store.Contacts()
}

type liveLocationRepository struct {
	store *Store
}

func (r *liveLocationRepository) FindByUserID(_ context.Context, userID uuid.UUID) (*entity.LiveLocation, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	loc, ok := r.store.liveLocations[userID]
	if !ok {
		return nil, repository.ErrLiveLocationNotFound
	}

	return cloneLiveLocation(loc), nil
}

func (r *liveLocationRepository) Upsert(_ context.Context, location *entity.LiveLocation) (bool, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	stored := cloneLiveLocation(location)
	existing, ok := r.store.liveLocations[location.UserID]
	if ok {
		stored.ID = existing.ID
		stored.CreatedAt = existing.CreatedAt
	} else {
		if stored.ID == uuid.Nil {
			stored.ID = uuid.New()
		}
		stored.CreatedAt = r.store.now()
	}
	r.store.liveLocations[location.UserID] = stored
	*location = *cloneLiveLocation(stored)

	return !ok, nil
}

func (r *liveLocationRepository) StopSharing(_ context.Context, userID uuid.UUID, at time.Time) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	loc, ok := r.store.liveLocations[userID]
	if !ok {
		return repository.ErrLiveLocationNotFound
	}
	loc.IsSharing = false
	loc.LastUpdated = at

	return nil
}

func (r *liveLocationRepository) FindVisible(_ context.Context, query repository.VisibleQuery) ([]*entity.LiveLocation, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	out := make([]*entity.LiveLocation, 0)
	for _, loc := range r.store.liveLocations {
		if !loc.IsSharing || loc.LastUpdated.Before(query.Since) {
			continue
		}
		if loc.IsSharedWith(query.ViewerID) || (query.IncludeOwn && loc.UserID == query.ViewerID) {
			out = append(out, cloneLiveLocation(loc))
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].LastUpdated.After(out[j].LastUpdated)
	})

	return out, nil
}

func cloneLiveLocation(l *entity.LiveLocation) *entity.LiveLocation {
	c := *l
	c.ShareWith = slices.Clone(l.ShareWith)

	return &c
}

type trackedLocationRepository struct {
	store *Store
}

func (r *trackedLocationRepository) ListByOwner(_ context.Context, userID uuid.UUID, filter repository.TrackedLocationFilter) ([]*entity.TrackedLocation, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	out := make([]*entity.TrackedLocation, 0)
	for _, loc := range r.store.tracked {
		if loc.UserID != userID {
			continue
		}
		if filter.Type != "" && loc.Type != filter.Type {
			continue
		}
		if filter.Status != "" && loc.Status != filter.Status {
			continue
		}
		c := *loc
		out = append(out, &c)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID > out[j].ID
		}

		return out[i].CreatedAt.After(out[j].CreatedAt)
	})

	return out, nil
}

func (r *trackedLocationRepository) Create(_ context.Context, location *entity.TrackedLocation) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	r.store.nextTrackedID++
	now := r.store.now()
	location.ID = r.store.nextTrackedID
	location.CreatedAt = now
	location.LastUpdated = now

	c := *location
	r.store.tracked[c.ID] = &c

	return nil
}

func (r *trackedLocationRepository) Update(_ context.Context, userID uuid.UUID, id int64, patch repository.TrackedLocationPatch) (*entity.TrackedLocation, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	loc, ok := r.store.tracked[id]
	if !ok || loc.UserID != userID {
		return nil, repository.ErrTrackedLocationNotFound
	}
	if patch.Name != nil {
		loc.Name = *patch.Name
	}
	if patch.Latitude != nil {
		loc.Latitude = *patch.Latitude
	}
	if patch.Longitude != nil {
		loc.Longitude = *patch.Longitude
	}
	if patch.Type != nil {
		loc.Type = *patch.Type
	}
	if patch.Status != nil {
		loc.Status = *patch.Status
	}
	if patch.Location != nil {
		loc.Location = *patch.Location
	}
	loc.LastUpdated = r.store.now()

	c := *loc

	return &c, nil
}

func (r *trackedLocationRepository) Delete(_ context.Context, userID uuid.UUID, id int64) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	loc, ok := r.store.tracked[id]
	if !ok || loc.UserID != userID {
		return repository.ErrTrackedLocationNotFound
	}
	delete(r.store.tracked, id)

	return nil
}

type contactRepository struct {
	store *Store
}

func (r *contactRepository) ListByOwner(_ context.Context, userID uuid.UUID) ([]*entity.Contact, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	out := make([]*entity.Contact, 0)
	for _, contact := range r.store.contacts {
		if contact.UserID == userID {
			c := *contact
			out = append(out, &c)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})

	return out, nil
}

func (r *contactRepository) FindByID(_ context.Context, userID, id uuid.UUID) (*entity.Contact, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	existing, ok := r.store.contacts[id]
	if !ok || existing.UserID != userID {
		return nil, repository.ErrContactNotFound
	}
	c := *existing

	return &c, nil
}

func (r *contactRepository) Create(_ context.Context, contact *entity.Contact) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	if contact.ID == uuid.Nil {
		contact.ID = uuid.New()
	}
	contact.CreatedAt = r.store.now()

	c := *contact
	r.store.contacts[c.ID] = &c

	return nil
}

func (r *contactRepository) Update(_ context.Context, contact *entity.Contact) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	existing, ok := r.store.contacts[contact.ID]
	if !ok || existing.UserID != contact.UserID {
		return repository.ErrContactNotFound
	}

	c := *contact
	c.CreatedAt = existing.CreatedAt
	r.store.contacts[c.ID] = &c

	return nil
}

func (r *contactRepository) Delete(_ context.Context, userID, id uuid.UUID) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	existing, ok := r.store.contacts[id]
	if !ok || existing.UserID != userID {
		return repository.ErrContactNotFound
	}
	delete(r.store.contacts, id)

	return nil
}
