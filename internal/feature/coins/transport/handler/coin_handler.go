// Package handler はcoinsフィーチャーのHTTPハンドラーを提供します。
package handler

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"coin_backend/internal/feature/coins/domain"
	"coin_backend/internal/feature/coins/domain/entity"
	"coin_backend/internal/feature/coins/transport/http/dto"
)

const (
	defaultCount  = "10"
	defaultOffset = "0"
)

// CoinUsecase はコイン操作のユースケースインターフェースを定義します。
// Goの慣例に従い、インターフェースは利用者（handler）側で定義します。
type CoinUsecase interface {
	ListCoins(ctx context.Context) ([]entity.Coin, error)
	ListCoinsByNameDesc(ctx context.Context) ([]entity.Coin, error)
	ListCoinsByDescriptionDescNameAsc(ctx context.Context) ([]entity.Coin, error)
	GetCoinByName(ctx context.Context, name string) (*entity.Coin, error)
	ListFirstCoins(ctx context.Context, count int) ([]entity.Coin, error)
	ListLatestCoins(ctx context.Context, count, offset int) ([]entity.Coin, error)
	CreateCoin(ctx context.Context, coin *entity.Coin) (*entity.Coin, error)
	UpdateCoin(ctx context.Context, id uuid.UUID, coin *entity.Coin) (*entity.Coin, error)
	DeleteCoin(ctx context.Context, id uuid.UUID) error
}

// CoinHandler はコインのHTTPリクエストを処理します。
type CoinHandler struct {
	uc CoinUsecase
}

// NewCoinHandler は指定されたusecaseでCoinHandlerの新しいインスタンスを生成します。
func NewCoinHandler(uc CoinUsecase) *CoinHandler {
	return &CoinHandler{uc: uc}
}

// List は全コインを挿入順で返します。
//
// GET /coins
func (h *CoinHandler) List(c *gin.Context) {
	h.respondList(c, "list coins")(h.uc.ListCoins(c.Request.Context()))
}

// ListByNameDesc は名前の降順でコインを返します。
//
// GET /coins/sorted/name-desc
func (h *CoinHandler) ListByNameDesc(c *gin.Context) {
	h.respondList(c, "list coins by name")(h.uc.ListCoinsByNameDesc(c.Request.Context()))
}

// ListByDescriptionDescNameAsc は説明の降順、名前の昇順でコインを返します。
//
// GET /coins/sorted/description-desc-name-asc
func (h *CoinHandler) ListByDescriptionDescNameAsc(c *gin.Context) {
	h.respondList(c, "list coins by description")(h.uc.ListCoinsByDescriptionDescNameAsc(c.Request.Context()))
}

// GetByName は名前でコインを1件返します。
//
// GET /coins/by-name?name=btc
func (h *CoinHandler) GetByName(c *gin.Context) {
	coin, err := h.uc.GetCoinByName(c.Request.Context(), c.Query("name"))
	if err != nil {
		writeError(c, "get coin by name", err)
		return
	}
	c.JSON(http.StatusOK, dto.NewCoinResponse(*coin))
}

// First は挿入順で先頭count件を返します。countの既定値は10です。
//
// GET /coins/first?count=5
func (h *CoinHandler) First(c *gin.Context) {
	count, err := strconv.Atoi(c.DefaultQuery("count", defaultCount))
	if err != nil {
		writeError(c, "list first coins", invalidQuery("count"))
		return
	}
	h.respondList(c, "list first coins")(h.uc.ListFirstCoins(c.Request.Context(), count))
}

// Latest は開始日の新しい順にoffset件目からcount件を返します。
//
// GET /coins/latest?count=3&offset=0
func (h *CoinHandler) Latest(c *gin.Context) {
	count, err := strconv.Atoi(c.DefaultQuery("count", defaultCount))
	if err != nil {
		writeError(c, "list latest coins", invalidQuery("count"))
		return
	}
	offset, err := strconv.Atoi(c.DefaultQuery("offset", defaultOffset))
	if err != nil {
		writeError(c, "list latest coins", invalidQuery("offset"))
		return
	}
	h.respondList(c, "list latest coins")(h.uc.ListLatestCoins(c.Request.Context(), count, offset))
}

// Create はコインを価格履歴ごと新規作成し、201を返します。
//
// POST /coins
func (h *CoinHandler) Create(c *gin.Context) {
	var req dto.CoinReq
	if err := c.ShouldBindJSON(&req); err != nil {
		slog.Warn("create coin validation failed", "error", err, "remote_addr", c.ClientIP())
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "invalid request"})
		return
	}
	coin, err := h.uc.CreateCoin(c.Request.Context(), req.ToEntity())
	if err != nil {
		writeError(c, "create coin", err)
		return
	}
	slog.Info("coin created", "id", coin.ID, "name", coin.Name, "prices", len(coin.PriceList))
	c.JSON(http.StatusCreated, dto.NewCoinResponse(*coin))
}

// Update はコインを置き換え、価格履歴を同期します。
//
// PUT /coins/:id
func (h *CoinHandler) Update(c *gin.Context) {
	id, ok := parseID(c, "update coin")
	if !ok {
		return
	}
	var req dto.CoinReq
	if err := c.ShouldBindJSON(&req); err != nil {
		slog.Warn("update coin validation failed", "error", err, "remote_addr", c.ClientIP())
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "invalid request"})
		return
	}
	coin, err := h.uc.UpdateCoin(c.Request.Context(), id, req.ToEntity())
	if err != nil {
		writeError(c, "update coin", err)
		return
	}
	c.JSON(http.StatusOK, dto.NewCoinResponse(*coin))
}

// Delete はコインと所有する価格を削除し、204を返します。
//
// DELETE /coins/:id
func (h *CoinHandler) Delete(c *gin.Context) {
	id, ok := parseID(c, "delete coin")
	if !ok {
		return
	}
	if err := h.uc.DeleteCoin(c.Request.Context(), id); err != nil {
		writeError(c, "delete coin", err)
		return
	}
	slog.Info("coin deleted", "id", id)
	c.Status(http.StatusNoContent)
}

func (h *CoinHandler) respondList(c *gin.Context, op string) func([]entity.Coin, error) {
	return func(coins []entity.Coin, err error) {
		if err != nil {
			writeError(c, op, err)
			return
		}
		c.JSON(http.StatusOK, dto.NewCoinListResponse(coins))
	}
}

func parseID(c *gin.Context, op string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		writeError(c, op, invalidQuery("id"))
		return uuid.Nil, false
	}
	return id, true
}

func invalidQuery(name string) error {
	return fmt.Errorf("%w: %s is malformed", domain.ErrInvalidArgument, name)
}

// writeError はドメインエラーをHTTPステータスに変換して返します。
// 500の場合は内部エラーの詳細をクライアントに公開しません。
func writeError(c *gin.Context, op string, err error) {
	status := statusFor(err)
	msg := err.Error()
	if status == http.StatusInternalServerError {
		slog.Error(op+" failed", "error", err, "path", c.FullPath())
		msg = "internal server error"
	} else {
		slog.Warn(op+" rejected", "error", err, "status", status, "remote_addr", c.ClientIP())
	}
	c.JSON(status, dto.ErrorResponse{Error: msg})
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrInvalidArgument):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrCoinNotFound), errors.Is(err, domain.ErrPriceNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrConstraintViolation):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}
