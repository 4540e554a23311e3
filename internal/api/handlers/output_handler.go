package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/thanhnp/ord-store/internal/storage"
)

// OutputHandler handles output-related API requests
type OutputHandler struct {
	outputStore *storage.OutputStore
}

// NewOutputHandler creates a new OutputHandler
func NewOutputHandler(outputStore *storage.OutputStore) *OutputHandler {
	return &OutputHandler{
		outputStore: outputStore,
	}
}

type inscriptionRequest struct {
	InscriptionID string `json:"inscription_id" binding:"required"`
}

// Get returns an output by its composite hash
// GET /api/v1/outputs/:hash
func (h *OutputHandler) Get(c *gin.Context) {
	output, err := h.outputStore.RequireOutput(c.Request.Context(), c.Param("hash"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, output)
}

// AddInscription attaches an inscription to a recorded output
// POST /api/v1/outputs/:hash/inscriptions
func (h *OutputHandler) AddInscription(c *gin.Context) {
	var req inscriptionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "inscription_id is required"})
		return
	}

	hash := c.Param("hash")
	if err := h.outputStore.SetInscriptionOnOutput(c.Request.Context(), hash, req.InscriptionID); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"hash":           hash,
		"inscription_id": req.InscriptionID,
	})
}
