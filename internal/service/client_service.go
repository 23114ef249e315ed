package service

import (
	"context"
	"errors"
	"strings"

	"github.com/mrmbilling/royalty-ledger/internal/domain"
	"github.com/mrmbilling/royalty-ledger/internal/websocket"
	"github.com/rs/zerolog/log"
)

// ClientService handles royalty client management
type ClientService struct {
	clientRepo     domain.ClientRepository
	entryRepo      domain.RoyaltyEntryRepository
	locker         ClientLocker
	eventPublisher websocket.EventPublisher
}

// NewClientService creates a new ClientService
func NewClientService(clientRepo domain.ClientRepository, entryRepo domain.RoyaltyEntryRepository, locker ClientLocker) *ClientService {
	if locker == nil {
		locker = NewLocalClientLocker()
	}
	return &ClientService{
		clientRepo: clientRepo,
		entryRepo:  entryRepo,
		locker:     locker,
	}
}

// SetEventPublisher sets the event publisher for real-time updates
func (s *ClientService) SetEventPublisher(publisher websocket.EventPublisher) {
	s.eventPublisher = publisher
}

func (s *ClientService) publishEvent(clientID string, event websocket.Event) {
	if s.eventPublisher != nil {
		s.eventPublisher.Publish(clientID, event)
	}
}

// ClientInput holds the input for creating or updating a client.
// Nil fields are left unchanged on update. When both CommissionRate and Fee are
// given, CommissionRate wins.
type ClientInput struct {
	ClientID        string
	Name            *string
	Type            *string
	ClientType      *string
	CommissionRate  *float64
	Fee             *float64
	PreviousBalance *float64
	IPRS            *bool
	PRS             *bool
	ISAMRA          *bool
}

// List returns clients ordered by the numeric part of their id
func (s *ClientService) List(ctx context.Context, filter domain.ClientFilter) ([]*domain.Client, error) {
	filter.Search = strings.TrimSpace(filter.Search)
	return s.clientRepo.List(ctx, filter)
}

// Get returns one client
func (s *ClientService) Get(ctx context.Context, clientID string) (*domain.Client, error) {
	return s.clientRepo.GetByID(ctx, strings.TrimSpace(clientID))
}

// Create adds a client. Creating an id that belongs to an inactive client reactivates it.
func (s *ClientService) Create(ctx context.Context, input ClientInput) (*domain.Client, error) {
	clientID := strings.TrimSpace(input.ClientID)
	if clientID == "" {
		return nil, domain.ErrClientIDRequired
	}
	if input.Name == nil || strings.TrimSpace(*input.Name) == "" {
		return nil, domain.ErrNameRequired
	}

	existing, err := s.clientRepo.GetByID(ctx, clientID)
	if err != nil && !errors.Is(err, domain.ErrClientNotFound) {
		return nil, err
	}
	if existing != nil && existing.IsActive {
		return nil, domain.ErrClientAlreadyExists
	}

	client := &domain.Client{
		ClientID:   clientID,
		Type:       domain.DefaultClientType,
		ClientType: domain.DefaultClientType,
		IsActive:   true,
	}
	if err := applyClientInput(client, input); err != nil {
		return nil, err
	}

	var saved *domain.Client
	if existing != nil {
		saved, err = s.clientRepo.Update(ctx, client)
		log.Info().Str("client_id", clientID).Msg("Client reactivated")
	} else {
		saved, err = s.clientRepo.Create(ctx, client)
	}
	if err != nil {
		return nil, err
	}

	s.publishEvent(clientID, websocket.ClientUpdated(saved))
	return saved, nil
}

// Update changes an existing client. A rename is copied into the client's entries.
func (s *ClientService) Update(ctx context.Context, clientID string, input ClientInput) (*domain.Client, error) {
	existing, err := s.clientRepo.GetByID(ctx, strings.TrimSpace(clientID))
	if err != nil {
		return nil, err
	}

	updated := *existing
	if err := applyClientInput(&updated, input); err != nil {
		return nil, err
	}

	saved, err := s.clientRepo.Update(ctx, &updated)
	if err != nil {
		return nil, err
	}

	if saved.Name != existing.Name {
		if err := s.entryRepo.RenameClient(ctx, saved.ClientID, saved.Name); err != nil {
			return nil, err
		}
	}

	s.publishEvent(saved.ClientID, websocket.ClientUpdated(saved))
	return saved, nil
}

// Delete removes every entry of the client. The client itself is deactivated, or
// removed when permanent is set.
func (s *ClientService) Delete(ctx context.Context, clientID string, permanent bool) (int64, error) {
	client, err := s.clientRepo.GetByID(ctx, strings.TrimSpace(clientID))
	if err != nil {
		return 0, err
	}

	unlock, err := s.locker.Lock(ctx, client.ClientID)
	if err != nil {
		return 0, err
	}
	defer unlock()

	deleted, err := s.entryRepo.DeleteByClient(ctx, client.ClientID)
	if err != nil {
		return 0, err
	}

	if permanent {
		err = s.clientRepo.Delete(ctx, client.ClientID)
	} else {
		client.IsActive = false
		_, err = s.clientRepo.Update(ctx, client)
	}
	if err != nil {
		return deleted, err
	}

	log.Info().
		Str("client_id", client.ClientID).
		Bool("permanent", permanent).
		Int64("entries_deleted", deleted).
		Msg("Client deleted")

	s.publishEvent(client.ClientID, websocket.ClientDeleted(map[string]interface{}{
		"clientId":       client.ClientID,
		"entriesDeleted": deleted,
	}))
	return deleted, nil
}

// BulkResult reports the outcome for one client of a bulk import
type BulkResult struct {
	ClientID string `json:"clientId"`
	Status   string `json:"status"`
	Error    string `json:"error,omitempty"`
}

// Bulk result statuses
const (
	BulkStatusCreated = "created"
	BulkStatusUpdated = "updated"
	BulkStatusFailed  = "error"
)

// BulkUpsert creates new clients and updates existing ones. A failing item does not stop the rest.
func (s *ClientService) BulkUpsert(ctx context.Context, inputs []ClientInput) []BulkResult {
	results := make([]BulkResult, 0, len(inputs))
	for _, input := range inputs {
		res := BulkResult{ClientID: strings.TrimSpace(input.ClientID)}

		existing, err := s.clientRepo.GetByID(ctx, res.ClientID)
		switch {
		case err == nil && existing.IsActive:
			_, err = s.Update(ctx, res.ClientID, input)
			res.Status = BulkStatusUpdated
		case err == nil || errors.Is(err, domain.ErrClientNotFound):
			_, err = s.Create(ctx, input)
			res.Status = BulkStatusCreated
		}
		if err != nil {
			res.Status = BulkStatusFailed
			res.Error = err.Error()
		}
		results = append(results, res)
	}
	return results
}

func applyClientInput(client *domain.Client, input ClientInput) error {
	if input.Name != nil {
		name := strings.TrimSpace(*input.Name)
		if name == "" {
			return domain.ErrNameRequired
		}
		if len(name) > domain.MaxClientNameLength {
			return domain.ErrNameTooLong
		}
		client.Name = name
	}
	if input.Type != nil && strings.TrimSpace(*input.Type) != "" {
		client.Type = strings.TrimSpace(*input.Type)
	}
	if input.ClientType != nil && strings.TrimSpace(*input.ClientType) != "" {
		client.ClientType = strings.TrimSpace(*input.ClientType)
	}

	switch {
	case input.CommissionRate != nil:
		if *input.CommissionRate < 0 || *input.CommissionRate > 100 {
			return domain.ErrInvalidRate
		}
		client.SetCommissionRate(*input.CommissionRate)
	case input.Fee != nil:
		if *input.Fee < 0 || *input.Fee > 1 {
			return domain.ErrInvalidFee
		}
		client.SetFee(*input.Fee)
	}

	if input.PreviousBalance != nil {
		client.PreviousBalance = Round2(*input.PreviousBalance)
	}
	if input.IPRS != nil {
		client.IPRS = *input.IPRS
	}
	if input.PRS != nil {
		client.PRS = *input.PRS
	}
	if input.ISAMRA != nil {
		client.ISAMRA = *input.ISAMRA
	}
	return nil
}
