package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/thanhnp/ord-store/internal/models"
	"github.com/thanhnp/ord-store/internal/storage"
)

// TxHandler handles transaction-related API requests
type TxHandler struct {
	txStore     *storage.TxStore
	outputStore *storage.OutputStore
	index       *storage.TxOutputIndex
}

// NewTxHandler creates a new TxHandler
func NewTxHandler(txStore *storage.TxStore, outputStore *storage.OutputStore, index *storage.TxOutputIndex) *TxHandler {
	return &TxHandler{
		txStore:     txStore,
		outputStore: outputStore,
		index:       index,
	}
}

func txRef(c *gin.Context) (*models.Transaction, bool) {
	number, ok := blockNumber(c)
	if !ok {
		return nil, false
	}
	return &models.Transaction{Hash: c.Param("hash"), BlockNumber: number}, true
}

// GetOutputsFetched reports whether the outputs of a transaction were retrieved
// GET /api/v1/blocks/:number/transactions/:hash/outputs-fetched
func (h *TxHandler) GetOutputsFetched(c *gin.Context) {
	tx, ok := txRef(c)
	if !ok {
		return
	}

	fetched, err := h.txStore.GetOutputsAlreadyFetched(c.Request.Context(), tx)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"hash":            tx.Hash,
		"block_number":    tx.BlockNumber,
		"outputs_fetched": fetched,
	})
}

// SetOutputsFetched marks the outputs of a transaction as retrieved
// PUT /api/v1/blocks/:number/transactions/:hash/outputs-fetched
func (h *TxHandler) SetOutputsFetched(c *gin.Context) {
	tx, ok := txRef(c)
	if !ok {
		return
	}

	if err := h.txStore.SetOutputsFetched(c.Request.Context(), tx); err != nil {
		respondError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// UpdateOutputs writes the outputs of a stored transaction
// PUT /api/v1/blocks/:number/transactions/:hash/outputs
func (h *TxHandler) UpdateOutputs(c *gin.Context) {
	ref, ok := txRef(c)
	if !ok {
		return
	}

	var outputs []*models.Output
	if err := c.ShouldBindJSON(&outputs); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}
	for _, o := range outputs {
		if o == nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
			return
		}
	}

	tx, err := h.txStore.GetTransaction(c.Request.Context(), ref.BlockNumber, ref.Hash)
	if err != nil {
		respondError(c, err)
		return
	}
	if tx == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Transaction not found"})
		return
	}

	if err := h.outputStore.UpdateOutputs(c.Request.Context(), tx, outputs); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"hash":  tx.Hash,
		"count": len(outputs),
	})
}

// GetOutputHashes returns the hashes of the outputs written for a transaction
// GET /api/v1/transactions/:hash/outputs
func (h *TxHandler) GetOutputHashes(c *gin.Context) {
	hash := c.Param("hash")

	hashes, err := h.index.GetTxOutputHashes(c.Request.Context(), hash)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"hash":    hash,
		"count":   len(hashes),
		"outputs": hashes,
	})
}
