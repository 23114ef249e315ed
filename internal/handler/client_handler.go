package handler

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/mrmbilling/royalty-ledger/internal/domain"
	"github.com/mrmbilling/royalty-ledger/internal/middleware"
	"github.com/mrmbilling/royalty-ledger/internal/service"
	"github.com/rs/zerolog/log"
)

// ClientHandler handles client-related HTTP requests
type ClientHandler struct {
	clientService *service.ClientService
}

// NewClientHandler creates a new ClientHandler
func NewClientHandler(clientService *service.ClientService) *ClientHandler {
	return &ClientHandler{clientService: clientService}
}

// ClientRequest is the body for creating or updating a client. Omitted fields are unchanged on update.
type ClientRequest struct {
	ClientID        string   `json:"clientId,omitempty" validate:"max=50"`
	Name            *string  `json:"name,omitempty" validate:"omitempty,max=255"`
	Type            *string  `json:"type,omitempty" validate:"omitempty,max=100"`
	ClientType      *string  `json:"clientType,omitempty" validate:"omitempty,max=100"`
	CommissionRate  *float64 `json:"commissionRate,omitempty" validate:"omitempty,gte=0,lte=100"`
	Fee             *float64 `json:"fee,omitempty" validate:"omitempty,gte=0,lte=1"`
	PreviousBalance *float64 `json:"previousBalance,omitempty"`
	IPRS            *bool    `json:"iprs,omitempty"`
	PRS             *bool    `json:"prs,omitempty"`
	ISAMRA          *bool    `json:"isamra,omitempty"`
}

func (r ClientRequest) input() service.ClientInput {
	return service.ClientInput{
		ClientID:        r.ClientID,
		Name:            r.Name,
		Type:            r.Type,
		ClientType:      r.ClientType,
		CommissionRate:  r.CommissionRate,
		Fee:             r.Fee,
		PreviousBalance: r.PreviousBalance,
		IPRS:            r.IPRS,
		PRS:             r.PRS,
		ISAMRA:          r.ISAMRA,
	}
}

// BulkClientRequest is the body of POST /clients/bulk
type BulkClientRequest struct {
	Clients []ClientRequest `json:"clients" validate:"required,min=1,dive"`
}

// DeleteClientResponse reports what a delete removed
type DeleteClientResponse struct {
	ClientID       string `json:"clientId"`
	Permanent      bool   `json:"permanent"`
	EntriesDeleted int64  `json:"entriesDeleted"`
}

// ListClients handles GET /api/v1/clients
// @Summary List clients
// @Tags clients
// @Produce json
// @Param search query string false "Matches name or client ID"
// @Param includeInactive query bool false "Include deactivated clients"
// @Success 200 {array} domain.Client
// @Security BearerAuth
// @Router /clients [get]
func (h *ClientHandler) ListClients(c echo.Context) error {
	includeInactive, _ := strconv.ParseBool(c.QueryParam("includeInactive"))

	clients, err := h.clientService.List(c.Request().Context(), domain.ClientFilter{
		Search:          c.QueryParam("search"),
		IncludeInactive: includeInactive,
	})
	if err != nil {
		return handleServiceError(c, err, "list clients")
	}
	return c.JSON(http.StatusOK, clients)
}

// GetClient handles GET /api/v1/clients/:clientId
// @Summary Get a client
// @Tags clients
// @Produce json
// @Param clientId path string true "Client ID"
// @Success 200 {object} domain.Client
// @Failure 404 {object} ProblemDetails
// @Security BearerAuth
// @Router /clients/{clientId} [get]
func (h *ClientHandler) GetClient(c echo.Context) error {
	client, err := h.clientService.Get(c.Request().Context(), c.Param("clientId"))
	if err != nil {
		return handleServiceError(c, err, "get client")
	}
	return c.JSON(http.StatusOK, client)
}

// CreateClient handles POST /api/v1/clients
// @Summary Create a client
// @Description Creating the ID of a deactivated client reactivates it
// @Tags clients
// @Accept json
// @Produce json
// @Param request body ClientRequest true "Client"
// @Success 201 {object} domain.Client
// @Failure 400 {object} ProblemDetails
// @Failure 409 {object} ProblemDetails
// @Security BearerAuth
// @Router /clients [post]
func (h *ClientHandler) CreateClient(c echo.Context) error {
	var req ClientRequest
	if ok, err := bindAndValidate(c, &req); !ok {
		return err
	}

	client, err := h.clientService.Create(c.Request().Context(), req.input())
	if err != nil {
		return handleServiceError(c, err, "create client")
	}

	log.Info().Str("client_id", client.ClientID).Str("actor", middleware.Actor(c)).Msg("Client created")
	return c.JSON(http.StatusCreated, client)
}

// UpdateClient handles PUT /api/v1/clients/:clientId
// @Summary Update a client
// @Description A rename is copied into the client's entries
// @Tags clients
// @Accept json
// @Produce json
// @Param clientId path string true "Client ID"
// @Param request body ClientRequest true "Fields to change"
// @Success 200 {object} domain.Client
// @Failure 400 {object} ProblemDetails
// @Failure 404 {object} ProblemDetails
// @Security BearerAuth
// @Router /clients/{clientId} [put]
func (h *ClientHandler) UpdateClient(c echo.Context) error {
	var req ClientRequest
	if ok, err := bindAndValidate(c, &req); !ok {
		return err
	}

	client, err := h.clientService.Update(c.Request().Context(), c.Param("clientId"), req.input())
	if err != nil {
		return handleServiceError(c, err, "update client")
	}
	return c.JSON(http.StatusOK, client)
}

// DeleteClient handles DELETE /api/v1/clients/:clientId
// @Summary Delete a client and all of its entries
// @Tags clients
// @Produce json
// @Param clientId path string true "Client ID"
// @Param permanent query bool false "Remove the client record instead of deactivating it"
// @Success 200 {object} DeleteClientResponse
// @Failure 404 {object} ProblemDetails
// @Security BearerAuth
// @Router /clients/{clientId} [delete]
func (h *ClientHandler) DeleteClient(c echo.Context) error {
	clientID := c.Param("clientId")
	permanent, _ := strconv.ParseBool(c.QueryParam("permanent"))

	deleted, err := h.clientService.Delete(c.Request().Context(), clientID, permanent)
	if err != nil {
		return handleServiceError(c, err, "delete client")
	}

	log.Info().Str("client_id", clientID).Bool("permanent", permanent).Str("actor", middleware.Actor(c)).Msg("Client removed via API")
	return c.JSON(http.StatusOK, DeleteClientResponse{
		ClientID:       clientID,
		Permanent:      permanent,
		EntriesDeleted: deleted,
	})
}

// BulkUpsertClients handles POST /api/v1/clients/bulk
// @Summary Create or update many clients
// @Tags clients
// @Accept json
// @Produce json
// @Param request body BulkClientRequest true "Clients"
// @Success 200 {array} service.BulkResult
// @Failure 400 {object} ProblemDetails
// @Security BearerAuth
// @Router /clients/bulk [post]
func (h *ClientHandler) BulkUpsertClients(c echo.Context) error {
	var req BulkClientRequest
	if ok, err := bindAndValidate(c, &req); !ok {
		return err
	}

	inputs := make([]service.ClientInput, len(req.Clients))
	for i, r := range req.Clients {
		inputs[i] = r.input()
	}
	return c.JSON(http.StatusOK, h.clientService.BulkUpsert(c.Request().Context(), inputs))
}
