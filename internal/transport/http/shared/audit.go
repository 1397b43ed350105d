package shared

import (
	"context"
	"log"
	"net/http"
)

type Auditor interface {
	Record(ctx context.Context, tenantID, actorID, action, entityType, entityID, requestID, ip string, before, after any) error
}

// AuditEvent records an audit entry for the request. Failures are logged and
// never fail the request.
func AuditEvent(r *http.Request, auditor Auditor, tenantID, actorID, requestID, action, entityType, entityID string, before, after any) {
	if auditor == nil {
		return
	}
	if err := auditor.Record(r.Context(), tenantID, actorID, action, entityType, entityID, requestID, ClientIP(r), before, after); err != nil {
		log.Printf("audit %s failed: %v", action, err)
	}
}
