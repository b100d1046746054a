package handler

import (
	"encoding/json"
	"strconv"

	"github.com/finguard/treasury-api/internal/application/service"
	"github.com/finguard/treasury-api/internal/presentation/http/dto/request"
	"github.com/finguard/treasury-api/internal/presentation/http/dto/response"
	"github.com/gin-gonic/gin"
)

// SnapshotHandler handles entity snapshot HTTP requests
type SnapshotHandler struct {
	snapshotService *service.SnapshotService
}

// NewSnapshotHandler creates a new snapshot handler
func NewSnapshotHandler(snapshotService *service.SnapshotService) *SnapshotHandler {
	return &SnapshotHandler{snapshotService: snapshotService}
}

// Capture stores a new snapshot version for an entity
func (h *SnapshotHandler) Capture(c *gin.Context) {
	entityID := c.Param("entity_id")

	var req request.CaptureSnapshotRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request payload")
		return
	}

	data, err := json.Marshal(req.Data)
	if err != nil {
		response.BadRequest(c, "Invalid snapshot data")
		return
	}

	snapshot, err := h.snapshotService.Capture(c.Request.Context(), req.EntityType, entityID, data)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, "Snapshot captured successfully", snapshot)
}

// List returns all snapshot versions for an entity
func (h *SnapshotHandler) List(c *gin.Context) {
	entityID := c.Param("entity_id")

	snapshots, err := h.snapshotService.ListSnapshots(c.Request.Context(), entityID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Snapshots retrieved successfully", snapshots)
}

// Restore reinstates an archived snapshot version as the new head
func (h *SnapshotHandler) Restore(c *gin.Context) {
	entityID := c.Param("entity_id")

	version, err := strconv.Atoi(c.Param("version"))
	if err != nil || version < 1 {
		response.BadRequest(c, "Invalid snapshot version")
		return
	}

	snapshot, err := h.snapshotService.Restore(c.Request.Context(), entityID, version)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Snapshot restored successfully", snapshot)
}
