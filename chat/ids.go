package chat

import (
	"fmt"
	"strings"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
)

// idGenerator produces client side message ids of the form
// msg-<unix millis>-<counter>-<random>
type idGenerator struct {
	counter atomic.Uint64
}

func (g *idGenerator) next(now time.Time) string {
	n := g.counter.Add(1)
	random := strings.ReplaceAll(uuid.NewString(), "-", "")[:9]
	return fmt.Sprintf("msg-%d-%d-%s", now.UnixMilli(), n, random)
}
