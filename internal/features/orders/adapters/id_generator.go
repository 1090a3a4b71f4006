package adapters

import (
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

// OrderIDPrefix starts every order identifier.
const OrderIDPrefix = "ORD-"

// TimestampIDGenerator issues ORD-<unix millis>. When two ids are requested within the
// same millisecond, or the clock goes backwards, the token is bumped past the last one.
type TimestampIDGenerator struct {
	mu   sync.Mutex
	last int64
}

// NewTimestampIDGenerator creates a TimestampIDGenerator.
func NewTimestampIDGenerator() *TimestampIDGenerator {
	return &TimestampIDGenerator{}
}

// NewID implements ports.IDGenerator.
func (g *TimestampIDGenerator) NewID(now time.Time) string {
	g.mu.Lock()
	defer g.mu.Unlock()

	token := now.UnixMilli()
	if token <= g.last {
		token = g.last + 1
	}
	g.last = token
	return fmt.Sprintf("%s%d", OrderIDPrefix, token)
}

// ObserveID raises the floor past an existing ORD-<millis> id, e.g. one loaded from storage.
// Ids in any other format are ignored.
func (g *TimestampIDGenerator) ObserveID(id string) {
	seen, err := strconv.ParseInt(strings.TrimPrefix(id, OrderIDPrefix), 10, 64)
	if err != nil || !strings.HasPrefix(id, OrderIDPrefix) {
		return
	}

	g.mu.Lock()
	defer g.mu.Unlock()
	if seen > g.last {
		g.last = seen
	}
}

// UUIDIDGenerator issues ORD-<random uuid>.
type UUIDIDGenerator struct{}

// NewID implements ports.IDGenerator.
func (UUIDIDGenerator) NewID(time.Time) string {
	return OrderIDPrefix + uuid.NewString()
}
