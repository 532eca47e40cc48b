package bot

import (
	"sync"
	"time"

	"cryptobot/src/model"
)

// AuditEntry records one strategy signal together with the risk decision
// it received. Rejections are kept alongside approvals so the recent
// history explains why the bot did or did not trade.
type AuditEntry struct {
	Signal   model.Signal `json:"signal"`
	Strategy string       `json:"strategy"`
	Approved bool         `json:"approved"`
	Reason   string       `json:"reason,omitempty"`
	OrderID  string       `json:"order_id,omitempty"`
	At       time.Time    `json:"at"`
}

// auditRing is a fixed-size ring of the most recent audit entries.
type auditRing struct {
	mu      sync.Mutex
	entries []AuditEntry
	next    int
	full    bool
}

func newAuditRing(size int) *auditRing {
	if size <= 0 {
		size = 100
	}
	return &auditRing{entries: make([]AuditEntry, size)}
}

func (r *auditRing) Add(entry AuditEntry) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries[r.next] = entry
	r.next = (r.next + 1) % len(r.entries)
	if r.next == 0 {
		r.full = true
	}
}

// Recent returns entries newest first.
func (r *auditRing) Recent(limit int) []AuditEntry {
	r.mu.Lock()
	defer r.mu.Unlock()

	count := r.next
	if r.full {
		count = len(r.entries)
	}
	if limit <= 0 || limit > count {
		limit = count
	}
	out := make([]AuditEntry, 0, limit)
	for i := 1; i <= limit; i++ {
		idx := (r.next - i + len(r.entries)) % len(r.entries)
		out = append(out, r.entries[idx])
	}
	return out
}
