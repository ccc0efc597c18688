package gateway

import (
	"math/rand"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
)

// Outcome weights for the simulated gateway.
const (
	successWeight         = 0.90
	paymentRequiredWeight = 0.05
)

// Simulator stands in for the external payment gateway: it accepts 90%
// of charges, answers 402 Payment Required for 5%, and fails with a 500
// for the rest. Used to validate the flows' retry behavior.
type Simulator struct {
	mu  sync.Mutex
	rng *rand.Rand
}

// NewSimulator creates a Simulator. Pass a seeded *rand.Rand for
// deterministic behavior in tests; nil gets a time-seeded source.
func NewSimulator(rng *rand.Rand) *Simulator {
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &Simulator{rng: rng}
}

// Charge handles POST /charge.
func (s *Simulator) Charge(c *gin.Context) {
	var req ChargeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid charge payload"})
		return
	}

	s.mu.Lock()
	roll := s.rng.Float64()
	s.mu.Unlock()

	status, body := outcome(roll)
	c.JSON(status, body)
}

// outcome maps a uniform roll in [0,1) to a gateway response.
func outcome(roll float64) (int, gin.H) {
	switch {
	case roll < successWeight:
		return http.StatusOK, gin.H{"message": "Payment successful"}
	case roll < successWeight+paymentRequiredWeight:
		return http.StatusPaymentRequired, gin.H{"error": "Payment required"}
	default:
		return http.StatusInternalServerError, gin.H{"error": "Payment gateway error"}
	}
}
