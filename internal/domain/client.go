package domain

import (
	"context"
	"regexp"
	"sort"
	"strconv"
	"time"
)

// DefaultClientType is used when a client is created without a type
const DefaultClientType = "Other"

// Client is a royalty client of the agency
type Client struct {
	ClientID        string    `json:"clientId"`
	Name            string    `json:"name"`
	Type            string    `json:"type"`
	ClientType      string    `json:"clientType"`
	CommissionRate  float64   `json:"commissionRate"`
	Fee             float64   `json:"fee"`
	PreviousBalance float64   `json:"previousBalance"`
	IPRS            bool      `json:"iprs"`
	PRS             bool      `json:"prs"`
	ISAMRA          bool      `json:"isamra"`
	IsActive        bool      `json:"isActive"`
	CreatedAt       time.Time `json:"createdAt"`
	UpdatedAt       time.Time `json:"updatedAt"`
}

// DisplayName renders "Name (ID)"
func (c *Client) DisplayName() string {
	return c.Name + " (" + c.ClientID + ")"
}

// SetCommissionRate updates the percentage rate and keeps Fee in sync
func (c *Client) SetCommissionRate(rate float64) {
	c.CommissionRate = rate
	c.Fee = rate / 100
}

// SetFee updates the fractional fee and keeps CommissionRate in sync
func (c *Client) SetFee(fee float64) {
	c.Fee = fee
	c.CommissionRate = fee * 100
}

// ClientFilter narrows a client list query
type ClientFilter struct {
	Search          string
	IncludeInactive bool
}

// ClientRepository persists clients
type ClientRepository interface {
	GetByID(ctx context.Context, clientID string) (*Client, error)
	List(ctx context.Context, filter ClientFilter) ([]*Client, error)
	Create(ctx context.Context, client *Client) (*Client, error)
	Update(ctx context.Context, client *Client) (*Client, error)
	Delete(ctx context.Context, clientID string) error
}

var clientNumberPattern = regexp.MustCompile(`(\d+)`)

// ClientNumber extracts the first run of digits in a client id ("MRM-12" -> 12).
// Ids without digits sort as 0.
func ClientNumber(clientID string) int {
	match := clientNumberPattern.FindString(clientID)
	if match == "" {
		return 0
	}
	n, err := strconv.Atoi(match)
	if err != nil {
		return 0
	}
	return n
}

// SortClients orders clients by the numeric part of their id
func SortClients(clients []*Client) {
	sort.SliceStable(clients, func(i, j int) bool {
		return ClientNumber(clients[i].ClientID) < ClientNumber(clients[j].ClientID)
	})
}

// SortEntries orders entries by client number, then by financial-year month
func SortEntries(entries []*RoyaltyEntry) {
	sort.SliceStable(entries, func(i, j int) bool {
		a, b := ClientNumber(entries[i].ClientID), ClientNumber(entries[j].ClientID)
		if a != b {
			return a < b
		}
		fa, fb := FinancialYearOf(entries[i].Month, entries[i].Year), FinancialYearOf(entries[j].Month, entries[j].Year)
		if fa.StartYear != fb.StartYear {
			return fa.StartYear < fb.StartYear
		}
		return entries[i].Month.Index() < entries[j].Month.Index()
	})
}
