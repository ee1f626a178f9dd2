package handlers

import (
	"context"

	"github.com/gin-gonic/gin"

	"negoce/internal/core/id"
	"negoce/internal/infrastructure/storage/postgres"
	"negoce/pkg/logger"
)

// AuditRecorder writes audit trail entries for catalog and pricing mutations.
type AuditRecorder interface {
	Record(ctx context.Context, entityType string, entityID id.ID, action postgres.AuditAction, changed any) error
}

// RecordAudit writes an audit entry for an already committed mutation. A
// failing audit write never fails the request; it is logged and the response
// proceeds.
func (h *BaseHandler) RecordAudit(c *gin.Context, audit AuditRecorder, entityType string, entityID id.ID, action postgres.AuditAction, changed any) {
	if err := audit.Record(c.Request.Context(), entityType, entityID, action, changed); err != nil {
		logger.Warn(c.Request.Context(), "audit record failed",
			"entity_type", entityType,
			"entity_id", entityID,
			"action", action,
			"error", err,
		)
	}
}
