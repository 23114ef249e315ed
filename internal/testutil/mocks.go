package testutil

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/mrmbilling/royalty-ledger/internal/domain"
	"github.com/mrmbilling/royalty-ledger/internal/mailer"
	"github.com/mrmbilling/royalty-ledger/internal/websocket"
)

// MockRoyaltyEntryRepository is a mock implementation of domain.RoyaltyEntryRepository
type MockRoyaltyEntryRepository struct {
	mu       sync.Mutex
	Entries  map[string]*domain.RoyaltyEntry
	NextID   int64
	Upserts  []string // keys in write order
	GetFn    func(clientID string, month domain.Month, year int) (*domain.RoyaltyEntry, error)
	UpsertFn func(entry *domain.RoyaltyEntry) (*domain.RoyaltyEntry, error)
	ListFn   func(filter domain.EntryFilter) ([]*domain.RoyaltyEntry, error)
}

// NewMockRoyaltyEntryRepository creates a new MockRoyaltyEntryRepository
func NewMockRoyaltyEntryRepository() *MockRoyaltyEntryRepository {
	return &MockRoyaltyEntryRepository{
		Entries: make(map[string]*domain.RoyaltyEntry),
		NextID:  1,
	}
}

// EntryKey builds the composite key used by the mock
func EntryKey(clientID string, month domain.Month, year int) string {
	return fmt.Sprintf("%s|%s|%d", clientID, month, year)
}

func cloneEntry(e *domain.RoyaltyEntry) *domain.RoyaltyEntry {
	c := *e
	return &c
}

// GetByKey retrieves a copy of the stored entry
func (m *MockRoyaltyEntryRepository) GetByKey(ctx context.Context, clientID string, month domain.Month, year int) (*domain.RoyaltyEntry, error) {
	if m.GetFn != nil {
		return m.GetFn(clientID, month, year)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if e, ok := m.Entries[EntryKey(clientID, month, year)]; ok {
		return cloneEntry(e), nil
	}
	return nil, domain.ErrEntryNotFound
}

// Upsert inserts or replaces the entry for its key
func (m *MockRoyaltyEntryRepository) Upsert(ctx context.Context, entry *domain.RoyaltyEntry) (*domain.RoyaltyEntry, error) {
	if m.UpsertFn != nil {
		return m.UpsertFn(entry)
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	key := EntryKey(entry.ClientID, entry.Month, entry.Year)
	stored := cloneEntry(entry)
	now := time.Now()
	if existing, ok := m.Entries[key]; ok {
		stored.ID = existing.ID
		stored.CreatedAt = existing.CreatedAt
	} else {
		stored.ID = m.NextID
		m.NextID++
		stored.CreatedAt = now
	}
	stored.UpdatedAt = now
	m.Entries[key] = stored
	m.Upserts = append(m.Upserts, key)
	return cloneEntry(stored), nil
}

// List returns matching entries ordered by client number and financial-year month
func (m *MockRoyaltyEntryRepository) List(ctx context.Context, filter domain.EntryFilter) ([]*domain.RoyaltyEntry, error) {
	if m.ListFn != nil {
		return m.ListFn(filter)
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	result := make([]*domain.RoyaltyEntry, 0)
	for _, e := range m.Entries {
		if filter.ClientID != "" && e.ClientID != filter.ClientID {
			continue
		}
		if filter.Month != "" && e.Month != filter.Month {
			continue
		}
		if filter.FinancialYear != nil && !filter.FinancialYear.Contains(e.Month, e.Year) {
			continue
		}
		result = append(result, cloneEntry(e))
	}
	domain.SortEntries(result)
	return result, nil
}

// UpdateStatus changes the status of one entry
func (m *MockRoyaltyEntryRepository) UpdateStatus(ctx context.Context, clientID string, month domain.Month, year int, status domain.EntryStatus) (*domain.RoyaltyEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.Entries[EntryKey(clientID, month, year)]
	if !ok {
		return nil, domain.ErrEntryNotFound
	}
	e.Status = status
	e.UpdatedAt = time.Now()
	return cloneEntry(e), nil
}

// Delete removes one entry
func (m *MockRoyaltyEntryRepository) Delete(ctx context.Context, clientID string, month domain.Month, year int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	key := EntryKey(clientID, month, year)
	if _, ok := m.Entries[key]; !ok {
		return domain.ErrEntryNotFound
	}
	delete(m.Entries, key)
	return nil
}

// DeleteByClient removes every entry of a client
func (m *MockRoyaltyEntryRepository) DeleteByClient(ctx context.Context, clientID string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var n int64
	for key, e := range m.Entries {
		if e.ClientID == clientID {
			delete(m.Entries, key)
			n++
		}
	}
	return n, nil
}

// RenameClient rewrites the denormalized client name on a client's entries
func (m *MockRoyaltyEntryRepository) RenameClient(ctx context.Context, clientID, name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, e := range m.Entries {
		if e.ClientID == clientID {
			e.ClientName = name
		}
	}
	return nil
}

// AddEntry stores an entry as-is (helper for tests)
func (m *MockRoyaltyEntryRepository) AddEntry(entry *domain.RoyaltyEntry) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if entry.ID == 0 {
		entry.ID = m.NextID
		m.NextID++
	}
	m.Entries[EntryKey(entry.ClientID, entry.Month, entry.Year)] = cloneEntry(entry)
}

// Entry returns the stored entry or nil (helper for tests)
func (m *MockRoyaltyEntryRepository) Entry(clientID string, month domain.Month, year int) *domain.RoyaltyEntry {
	m.mu.Lock()
	defer m.mu.Unlock()
	if e, ok := m.Entries[EntryKey(clientID, month, year)]; ok {
		return cloneEntry(e)
	}
	return nil
}

// MockClientRepository is a mock implementation of domain.ClientRepository
type MockClientRepository struct {
	mu       sync.Mutex
	Clients  map[string]*domain.Client
	UpdateFn func(client *domain.Client) (*domain.Client, error)
}

// NewMockClientRepository creates a new MockClientRepository
func NewMockClientRepository() *MockClientRepository {
	return &MockClientRepository{Clients: make(map[string]*domain.Client)}
}

func cloneClient(c *domain.Client) *domain.Client {
	cp := *c
	return &cp
}

// GetByID retrieves a client, active or not
func (m *MockClientRepository) GetByID(ctx context.Context, clientID string) (*domain.Client, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if c, ok := m.Clients[clientID]; ok {
		return cloneClient(c), nil
	}
	return nil, domain.ErrClientNotFound
}

// List returns clients matching the filter
func (m *MockClientRepository) List(ctx context.Context, filter domain.ClientFilter) ([]*domain.Client, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	search := strings.ToLower(filter.Search)
	result := make([]*domain.Client, 0)
	for _, c := range m.Clients {
		if !filter.IncludeInactive && !c.IsActive {
			continue
		}
		if search != "" &&
			!strings.Contains(strings.ToLower(c.Name), search) &&
			!strings.Contains(strings.ToLower(c.ClientID), search) {
			continue
		}
		result = append(result, cloneClient(c))
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ClientID < result[j].ClientID })
	domain.SortClients(result)
	return result, nil
}

// Create stores a new client
func (m *MockClientRepository) Create(ctx context.Context, client *domain.Client) (*domain.Client, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, exists := m.Clients[client.ClientID]; exists {
		return nil, domain.ErrClientAlreadyExists
	}
	stored := cloneClient(client)
	stored.CreatedAt = time.Now()
	stored.UpdatedAt = stored.CreatedAt
	m.Clients[client.ClientID] = stored
	return cloneClient(stored), nil
}

// Update replaces a stored client
func (m *MockClientRepository) Update(ctx context.Context, client *domain.Client) (*domain.Client, error) {
	if m.UpdateFn != nil {
		return m.UpdateFn(client)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	existing, ok := m.Clients[client.ClientID]
	if !ok {
		return nil, domain.ErrClientNotFound
	}
	stored := cloneClient(client)
	stored.CreatedAt = existing.CreatedAt
	stored.UpdatedAt = time.Now()
	m.Clients[client.ClientID] = stored
	return cloneClient(stored), nil
}

// Delete removes a client permanently
func (m *MockClientRepository) Delete(ctx context.Context, clientID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.Clients[clientID]; !ok {
		return domain.ErrClientNotFound
	}
	delete(m.Clients, clientID)
	return nil
}

// AddClient stores a client as-is (helper for tests)
func (m *MockClientRepository) AddClient(client *domain.Client) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Clients[client.ClientID] = cloneClient(client)
}

// MockSettingsRepository is a mock implementation of domain.SettingsRepository
type MockSettingsRepository struct {
	mu       sync.Mutex
	Settings map[string]*domain.Setting
}

// NewMockSettingsRepository creates a new MockSettingsRepository
func NewMockSettingsRepository() *MockSettingsRepository {
	return &MockSettingsRepository{Settings: make(map[string]*domain.Setting)}
}

// Get retrieves one setting
func (m *MockSettingsRepository) Get(ctx context.Context, key string) (*domain.Setting, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if s, ok := m.Settings[key]; ok {
		cp := *s
		return &cp, nil
	}
	return nil, domain.ErrSettingNotFound
}

// List returns all settings ordered by key
func (m *MockSettingsRepository) List(ctx context.Context) ([]*domain.Setting, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	result := make([]*domain.Setting, 0, len(m.Settings))
	for _, s := range m.Settings {
		cp := *s
		result = append(result, &cp)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Key < result[j].Key })
	return result, nil
}

// Upsert stores a setting
func (m *MockSettingsRepository) Upsert(ctx context.Context, setting *domain.Setting) (*domain.Setting, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *setting
	cp.UpdatedAt = time.Now()
	m.Settings[setting.Key] = &cp
	out := cp
	return &out, nil
}

// InsertIfMissing stores a setting only if its key is absent
func (m *MockSettingsRepository) InsertIfMissing(ctx context.Context, setting *domain.Setting) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.Settings[setting.Key]; ok {
		return nil
	}
	cp := *setting
	cp.UpdatedAt = time.Now()
	m.Settings[setting.Key] = &cp
	return nil
}

// SetValue stores a JSON-encoded value (helper for tests)
func (m *MockSettingsRepository) SetValue(key string, value any) {
	raw, err := json.Marshal(value)
	if err != nil {
		panic(err)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Settings[key] = &domain.Setting{Key: key, Value: raw, UpdatedAt: time.Now()}
}

// PublishedEvent records one Publish call
type PublishedEvent struct {
	ClientID string
	Event    websocket.Event
}

// MockEventPublisher records published events
type MockEventPublisher struct {
	mu     sync.Mutex
	Events []PublishedEvent
}

// NewMockEventPublisher creates a new MockEventPublisher
func NewMockEventPublisher() *MockEventPublisher {
	return &MockEventPublisher{}
}

// Publish records the event
func (m *MockEventPublisher) Publish(clientID string, event websocket.Event) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Events = append(m.Events, PublishedEvent{ClientID: clientID, Event: event})
}

// Types returns the published event types in order (helper for tests)
func (m *MockEventPublisher) Types() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	types := make([]string, len(m.Events))
	for i, e := range m.Events {
		types[i] = e.Event.Type
	}
	return types
}

// MockArchiveStore keeps archived objects in memory
type MockArchiveStore struct {
	mu      sync.Mutex
	Objects map[string][]byte
	PutErr  error
}

// NewMockArchiveStore creates a new MockArchiveStore
func NewMockArchiveStore() *MockArchiveStore {
	return &MockArchiveStore{Objects: make(map[string][]byte)}
}

// Put stores the object bytes
func (m *MockArchiveStore) Put(ctx context.Context, key string, data io.Reader, contentType string, size int64) (string, error) {
	if m.PutErr != nil {
		return "", m.PutErr
	}
	buf, err := io.ReadAll(data)
	if err != nil {
		return "", err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Objects[key] = buf
	return key, nil
}

// PresignedURL returns a fake link
func (m *MockArchiveStore) PresignedURL(ctx context.Context, key string, expiry time.Duration) (string, error) {
	return "https://archive.test/" + key + "?expires=" + expiry.String(), nil
}

// MockMailer records sent messages
type MockMailer struct {
	mu      sync.Mutex
	Sent    []mailer.Message
	SendErr error
}

// NewMockMailer creates a new MockMailer
func NewMockMailer() *MockMailer {
	return &MockMailer{}
}

// Send records msg unless SendErr is set
func (m *MockMailer) Send(ctx context.Context, msg mailer.Message) error {
	if m.SendErr != nil {
		return m.SendErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Sent = append(m.Sent, msg)
	return nil
}
