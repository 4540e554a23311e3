package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/thanhnp/ord-store/internal/models"
	"github.com/thanhnp/ord-store/internal/storage"
)

// BlockHandler handles block-scoped transaction requests
type BlockHandler struct {
	txStore *storage.TxStore
}

// NewBlockHandler creates a new BlockHandler
func NewBlockHandler(txStore *storage.TxStore) *BlockHandler {
	return &BlockHandler{
		txStore: txStore,
	}
}

// UpsertTransactions creates the transactions of a block that are not stored yet
// POST /api/v1/blocks/:number/transactions
func (h *BlockHandler) UpsertTransactions(c *gin.Context) {
	number, ok := blockNumber(c)
	if !ok {
		return
	}

	var txs []*models.Transaction
	if err := c.ShouldBindJSON(&txs); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	for _, tx := range txs {
		if tx == nil || tx.Hash == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Transaction hash is required"})
			return
		}
		if tx.BlockNumber == 0 {
			tx.BlockNumber = number
		}
		if tx.BlockNumber != number {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Transaction belongs to another block"})
			return
		}
	}

	if err := h.txStore.UpsertTransactions(c.Request.Context(), txs); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"block_number": number,
		"count":        len(txs),
	})
}

// GetTransactions returns all transactions of a block ordered by index
// GET /api/v1/blocks/:number/transactions
func (h *BlockHandler) GetTransactions(c *gin.Context) {
	number, ok := blockNumber(c)
	if !ok {
		return
	}

	txs, err := h.txStore.GetTransactionsForBlock(c.Request.Context(), number)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"block_number": number,
		"count":        len(txs),
		"transactions": txs,
	})
}

// DeleteTransactions removes all transactions of a block
// DELETE /api/v1/blocks/:number/transactions
func (h *BlockHandler) DeleteTransactions(c *gin.Context) {
	number, ok := blockNumber(c)
	if !ok {
		return
	}

	removed, err := h.txStore.DeleteTransactionsForBlock(c.Request.Context(), number)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"block_number": number,
		"deleted":      removed,
	})
}
