package api

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"github.com/sheikh-saqib/ledger-transfer-service/internal/ledger"
	"github.com/sheikh-saqib/ledger-transfer-service/internal/models"
)

// TransferExecutor is the write-side operation used by TransferHandler.
type TransferExecutor interface {
	Execute(ctx context.Context, req ledger.TransferRequest) (models.TransferRecord, error)
}

// TransferQuerier is the read-side surface used by TransferHandler.
type TransferQuerier interface {
	GetTransfer(ctx context.Context, id string) (models.TransferRecord, error)
	ListTransfers(ctx context.Context, filter models.TransferFilter) ([]models.TransferRecord, error)
	InvalidateAccounts(ctx context.Context, ids ...string)
}

type TransferHandler struct {
	engine  TransferExecutor
	queries TransferQuerier
}

func NewTransferHandler(engine TransferExecutor, queries TransferQuerier) *TransferHandler {
	return &TransferHandler{engine: engine, queries: queries}
}

// Monetary fields arrive as JSON numbers; they are parsed as decimals so a
// fractional amount can be rejected explicitly instead of failing somewhere
// inside JSON binding.
type createTransferRequest struct {
	From          string            `json:"from" validate:"required"`
	To            string            `json:"to" validate:"required"`
	Amount        decimal.Decimal   `json:"amount" validate:"required"`
	Description   string            `json:"description" validate:"required"`
	Business      string            `json:"business" validate:"required"`
	Date          time.Time         `json:"date" validate:"required"`
	Items         []lineItemRequest `json:"items" validate:"required,min=1,dive"`
	PaymentMethod string            `json:"paymentMethod"`
}

type lineItemRequest struct {
	Title    string          `json:"title" validate:"required"`
	Price    decimal.Decimal `json:"price" validate:"required"`
	Quantity int64           `json:"quantity" validate:"required,gt=0"`
}

func (h *TransferHandler) CreateTransfer(c *gin.Context) {
	var req createTransferRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond(c, http.StatusBadRequest, "Invalid request body", nil)
		return
	}
	if validationErrors := validateRequest(req); validationErrors != nil {
		respond(c, http.StatusBadRequest, "Missing required fields", gin.H{"details": validationErrors})
		return
	}
	if !req.Amount.IsInteger() {
		respond(c, http.StatusBadRequest, "Amount must be a whole number", nil)
		return
	}

	items := make([]models.LineItem, 0, len(req.Items))
	for _, item := range req.Items {
		if !item.Price.IsInteger() {
			respond(c, http.StatusBadRequest, "Item prices must be whole numbers", nil)
			return
		}
		items = append(items, models.LineItem{
			Title:     item.Title,
			UnitPrice: item.Price.IntPart(),
			Quantity:  item.Quantity,
		})
	}

	record, err := h.engine.Execute(c.Request.Context(), ledger.TransferRequest{
		FromAccountID: req.From,
		ToAccountID:   req.To,
		Amount:        req.Amount.IntPart(),
		Description:   req.Description,
		Business:      req.Business,
		OccurredAt:    req.Date,
		Items:         items,
		PaymentMethod: models.PaymentMethod(req.PaymentMethod),
	})
	if err != nil {
		switch {
		case errors.Is(err, models.ErrInvalidRequest):
			respond(c, http.StatusBadRequest, err.Error(), nil)
		case errors.Is(err, models.ErrAccountNotFound):
			respond(c, http.StatusNotFound, "Account not found", nil)
		case errors.Is(err, models.ErrInsufficientBalance):
			respond(c, http.StatusBadRequest, "Insufficient balance", nil)
		default:
			respond(c, http.StatusInternalServerError, "Internal server error", nil)
		}
		return
	}

	h.queries.InvalidateAccounts(c.Request.Context(), record.From.ID, record.To.ID)
	respond(c, http.StatusCreated, "Transfer created successfully", gin.H{"transfer": record})
}

func (h *TransferHandler) ListTransfers(c *gin.Context) {
	filter, err := parseTransferFilter(c)
	if err != nil {
		respond(c, http.StatusBadRequest, err.Error(), nil)
		return
	}

	transfers, err := h.queries.ListTransfers(c.Request.Context(), filter)
	if err != nil {
		respond(c, http.StatusInternalServerError, "Internal server error", nil)
		return
	}
	respond(c, http.StatusOK, "Transfers retrieved successfully", gin.H{"transfers": transfers})
}

func (h *TransferHandler) GetTransfer(c *gin.Context) {
	record, err := h.queries.GetTransfer(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, models.ErrTransferNotFound) {
			respond(c, http.StatusNotFound, "Transfer not found", nil)
			return
		}
		respond(c, http.StatusInternalServerError, "Internal server error", nil)
		return
	}
	respond(c, http.StatusOK, "Transfer retrieved successfully", gin.H{"transfer": record})
}

func parseTransferFilter(c *gin.Context) (models.TransferFilter, error) {
	filter := models.TransferFilter{
		AccountID: c.Query("account"),
		Page:      1,
	}
	if page := c.Query("page"); page != "" {
		n, err := strconv.Atoi(page)
		if err != nil || n < 1 {
			return filter, errors.New("page must be a positive integer")
		}
		filter.Page = n
	}
	var err error
	if filter.DateFrom, err = parseDate(c.Query("dateFrom")); err != nil {
		return filter, errors.New("dateFrom must be a valid date")
	}
	if filter.DateTo, err = parseDate(c.Query("dateTo")); err != nil {
		return filter, errors.New("dateTo must be a valid date")
	}
	if filter.AmountFrom, err = parseAmount(c.Query("amountFrom")); err != nil {
		return filter, errors.New("amountFrom must be an integer")
	}
	if filter.AmountTo, err = parseAmount(c.Query("amountTo")); err != nil {
		return filter, errors.New("amountTo must be an integer")
	}
	return filter, nil
}

func parseDate(value string) (*time.Time, error) {
	if value == "" {
		return nil, nil
	}
	for _, layout := range []string{time.RFC3339, "2006-01-02"} {
		if t, err := time.Parse(layout, value); err == nil {
			return &t, nil
		}
	}
	return nil, errors.New("invalid date")
}

func parseAmount(value string) (*int64, error) {
	if value == "" {
		return nil, nil
	}
	n, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		return nil, err
	}
	return &n, nil
}
