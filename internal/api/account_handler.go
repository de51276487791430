package api

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/sheikh-saqib/ledger-transfer-service/internal/accounts"
	"github.com/sheikh-saqib/ledger-transfer-service/internal/models"
)

// Registrar is the account lifecycle surface used by AccountHandler.
type Registrar interface {
	Register(ctx context.Context, params accounts.RegisterParams) (models.Account, error)
	Authenticate(ctx context.Context, email, password string) (models.Account, string, error)
}

// AccountQuerier is the read-side surface used by AccountHandler.
type AccountQuerier interface {
	GetAccount(ctx context.Context, id string) (models.Account, error)
	GetBalance(ctx context.Context, id string) (int64, error)
	ListAccounts(ctx context.Context) ([]models.Account, error)
}

type AccountHandler struct {
	registrar Registrar
	queries   AccountQuerier
}

func NewAccountHandler(registrar Registrar, queries AccountQuerier) *AccountHandler {
	return &AccountHandler{registrar: registrar, queries: queries}
}

type registerRequest struct {
	Name     string          `json:"name" validate:"required"`
	Email    string          `json:"email" validate:"required,email"`
	Password string          `json:"password" validate:"required"`
	Color    string          `json:"color" validate:"required"`
	Balance  decimal.Decimal `json:"balance"`
}

type loginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

func (h *AccountHandler) Register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond(c, http.StatusBadRequest, "Invalid request body", nil)
		return
	}
	if validationErrors := validateRequest(req); validationErrors != nil {
		respond(c, http.StatusBadRequest, "Missing required fields", gin.H{"details": validationErrors})
		return
	}
	if !req.Balance.IsInteger() {
		respond(c, http.StatusBadRequest, "Balance must be a whole number", nil)
		return
	}

	account, err := h.registrar.Register(c.Request.Context(), accounts.RegisterParams{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
		Color:    req.Color,
		Balance:  req.Balance.IntPart(),
	})
	if err != nil {
		switch {
		case errors.Is(err, models.ErrDuplicateEmail):
			respond(c, http.StatusBadRequest, "Email already registered", nil)
		case errors.Is(err, models.ErrInvalidRequest):
			respond(c, http.StatusBadRequest, err.Error(), nil)
		default:
			respond(c, http.StatusInternalServerError, "Internal server error", nil)
		}
		return
	}
	respond(c, http.StatusCreated, "Account registered successfully", gin.H{"account": account})
}

func (h *AccountHandler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond(c, http.StatusBadRequest, "Invalid request body", nil)
		return
	}
	if validationErrors := validateRequest(req); validationErrors != nil {
		respond(c, http.StatusBadRequest, "Missing email or password", gin.H{"details": validationErrors})
		return
	}

	account, token, err := h.registrar.Authenticate(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, models.ErrInvalidCredentials) {
			respond(c, http.StatusBadRequest, "Invalid email or password", nil)
			return
		}
		respond(c, http.StatusInternalServerError, "Internal server error", nil)
		return
	}
	respond(c, http.StatusOK, "Login successful", gin.H{"account": account, "token": token})
}

func (h *AccountHandler) ListAccounts(c *gin.Context) {
	accts, err := h.queries.ListAccounts(c.Request.Context())
	if err != nil {
		respond(c, http.StatusInternalServerError, "Internal server error", nil)
		return
	}
	respond(c, http.StatusOK, "Accounts retrieved successfully", gin.H{"accounts": accts})
}

func (h *AccountHandler) GetAccount(c *gin.Context) {
	id := c.Param("id")
	if _, err := uuid.Parse(id); err != nil {
		respond(c, http.StatusBadRequest, "Invalid account ID", nil)
		return
	}

	account, err := h.queries.GetAccount(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, models.ErrAccountNotFound) {
			respond(c, http.StatusNotFound, "Account not found", nil)
			return
		}
		respond(c, http.StatusInternalServerError, "Internal server error", nil)
		return
	}
	respond(c, http.StatusOK, "Account retrieved successfully", gin.H{"account": account})
}

func (h *AccountHandler) GetBalance(c *gin.Context) {
	id := c.Param("id")
	if _, err := uuid.Parse(id); err != nil {
		respond(c, http.StatusBadRequest, "Invalid account ID", nil)
		return
	}

	balance, err := h.queries.GetBalance(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, models.ErrAccountNotFound) {
			respond(c, http.StatusNotFound, "Account not found", nil)
			return
		}
		respond(c, http.StatusInternalServerError, "Internal server error", nil)
		return
	}
	respond(c, http.StatusOK, "Balance retrieved successfully", gin.H{"account_id": id, "balance": balance})
}
