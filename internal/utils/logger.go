package utils

import (
	"log"
	"strings"
)

// LogEvent prints one line: [MODULE] action=... request_id=... msg=...
// Work done outside a request logs request_id=-. Keep msg to ids and counts,
// never guest details.
func LogEvent(requestID, module, action, message string) {
	req := strings.TrimSpace(requestID)
	if req == "" {
		req = "-"
	}
	log.Printf("[%s] action=%s request_id=%s msg=%s", strings.ToUpper(module), action, req, NormalizeSpace(message))
}

