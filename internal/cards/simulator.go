package cards

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"tibib/internal/envelope"
	"tibib/internal/logger"
)

// demoPAN is the card number the simulator issues to every caller. The
// real card service would look the caller's card up by the bearer token.
const demoPAN = "4111111111111111"

// Simulator stands in for the external card service: it returns an
// envelope-encrypted card credential for whoever presents a bearer token.
type Simulator struct {
	envelope *envelope.Envelope
}

// NewSimulator creates a card service simulator over the given envelope.
func NewSimulator(env *envelope.Envelope) *Simulator {
	return &Simulator{envelope: env}
}

// GetCard handles POST /get-card.
func (s *Simulator) GetCard(c *gin.Context) {
	if c.GetHeader("Authorization") == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Authorization header is required"})
		return
	}

	encrypted, signature, err := s.envelope.EncryptAndSign(demoPAN)
	if err != nil {
		logger.Get().Errorw("card simulator failed to seal card", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to issue card"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"credit_card": encrypted,
		"signature":   signature,
	})
}
