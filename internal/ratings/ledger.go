package ratings

import (
	"strings"
	"sync"
	"time"

	pkgerrors "github.com/angelmondragon/marketplace-backend/pkg/errors"
)

const (
	MinScore = 1
	MaxScore = 5
)

// Entry is a single vote. Entries are append-only.
type Entry struct {
	ItemID  int64     `json:"item_id"`
	RaterID string    `json:"rater_id"`
	Score   int       `json:"score"`
	RatedAt time.Time `json:"rated_at"`
}

// Ledger keeps per-item votes with at most one entry per rater. Safe for
// concurrent use.
type Ledger struct {
	mu      sync.Mutex
	entries map[int64][]Entry
	sums    map[int64]int
	now     func() time.Time
}

// NewLedger returns an empty ledger.
func NewLedger() *Ledger {
	return &Ledger{
		entries: make(map[int64][]Entry),
		sums:    make(map[int64]int),
		now:     func() time.Time { return time.Now().UTC() },
	}
}

// Rate records score for rater on itemID and returns the new average. A second
// vote from the same rater is rejected and leaves the ledger untouched.
func (l *Ledger) Rate(itemID int64, raterID string, score int) (float64, error) {
	raterID = strings.TrimSpace(raterID)
	if raterID == "" {
		return 0, pkgerrors.New(pkgerrors.CodeValidation, "rater identity is required")
	}
	if score < MinScore || score > MaxScore {
		return 0, pkgerrors.New(pkgerrors.CodeValidation, "rating must be between 1 and 5").
			WithDetails(map[string]any{"rating": score, "min": MinScore, "max": MaxScore})
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	for _, entry := range l.entries[itemID] {
		if entry.RaterID == raterID {
			return 0, pkgerrors.New(pkgerrors.CodeConflict, "buyer has already rated this item")
		}
	}
	l.entries[itemID] = append(l.entries[itemID], Entry{
		ItemID:  itemID,
		RaterID: raterID,
		Score:   score,
		RatedAt: l.now(),
	})
	l.sums[itemID] += score
	return l.averageLocked(itemID), nil
}

func (l *Ledger) averageLocked(itemID int64) float64 {
	return float64(l.sums[itemID]) / float64(len(l.entries[itemID]))
}
