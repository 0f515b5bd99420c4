package interactions

import (
	"crypto/ed25519"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/avwhitney/stagehand/pkg/clients/discordclient"
	"github.com/avwhitney/stagehand/pkg/core/model"
	"github.com/avwhitney/stagehand/pkg/core/roster"
	"github.com/avwhitney/stagehand/pkg/core/services"
)

const (
	headerSignature = "X-Signature-Ed25519"
	headerTimestamp = "X-Signature-Timestamp"
)

// Handler serves the interactions webhook: signature verification, ping
// acknowledgement, and dispatch of button presses and slash commands to
// the roster service
type Handler struct {
	service   *services.Service
	styles    roster.Styles
	publicKey ed25519.PublicKey
	adminRole string
	logger    *zap.Logger
}

func NewHandler(service *services.Service, styles roster.Styles, publicKeyHex, adminRole string, logger *zap.Logger) (*Handler, error) {
	key, err := hex.DecodeString(publicKeyHex)
	if err != nil {
		return nil, fmt.Errorf("decoding interactions public key: %w", err)
	}
	if len(key) != ed25519.PublicKeySize {
		return nil, fmt.Errorf("interactions public key must be %d bytes, got %d", ed25519.PublicKeySize, len(key))
	}
	return &Handler{
		service:   service,
		styles:    styles,
		publicKey: ed25519.PublicKey(key),
		adminRole: adminRole,
		logger:    logger,
	}, nil
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	body, err := io.ReadAll(r.Body)
	if err != nil {
		http.Error(w, "bad request", http.StatusBadRequest)
		return
	}

	if !h.verify(r.Header, body) {
		h.logger.Warn("Rejected interaction with bad signature")
		http.Error(w, "invalid request signature", http.StatusUnauthorized)
		return
	}

	var in interaction
	if err := json.Unmarshal(body, &in); err != nil {
		http.Error(w, "bad request", http.StatusBadRequest)
		return
	}

	switch in.Type {
	case interactionPing:
		writeResponse(w, response{Type: responsePong})
	case interactionMessageComponent:
		h.handleComponent(w, r, &in)
	case interactionApplicationCommand:
		h.handleCommand(w, r, &in)
	default:
		http.Error(w, "unsupported interaction type", http.StatusBadRequest)
	}
}

// verify checks the request's ed25519 signature over timestamp+body
func (h *Handler) verify(header http.Header, body []byte) bool {
	sig, err := hex.DecodeString(header.Get(headerSignature))
	if err != nil || len(sig) != ed25519.SignatureSize {
		return false
	}
	timestamp := header.Get(headerTimestamp)
	if timestamp == "" {
		return false
	}

	message := make([]byte, 0, len(timestamp)+len(body))
	message = append(message, timestamp...)
	message = append(message, body...)
	return ed25519.Verify(h.publicKey, message, sig)
}

// handleComponent dispatches a button press on a show card
func (h *Handler) handleComponent(w http.ResponseWriter, r *http.Request, in *interaction) {
	ctx := r.Context()
	userID := in.userID()
	cardRef := in.Message.ID

	customID := in.Data.CustomID
	switch {
	case strings.HasPrefix(customID, discordclient.SignupCustomIDPrefix):
		role := model.Role(strings.TrimPrefix(customID, discordclient.SignupCustomIDPrefix))
		if !role.IsValid() {
			ephemeral(w, "That button isn't recognised.")
			return
		}

		snap, err := h.service.RequestRoleByCard(ctx, cardRef, userID, role)
		if err != nil {
			h.replyError(w, err)
			return
		}
		if snap.AlreadyAssigned {
			ephemeral(w, fmt.Sprintf("You're already signed up as %s.", h.styles.FieldName(role)))
			return
		}
		ephemeral(w, fmt.Sprintf("You're signed up as %s. See you there!", h.styles.FieldName(role)))

	case customID == discordclient.RemoveCustomID:
		if _, err := h.service.RemoveRoleByCard(ctx, cardRef, userID); err != nil {
			h.replyError(w, err)
			return
		}
		ephemeral(w, "Your signup was removed.")

	default:
		ephemeral(w, "That button isn't recognised.")
	}
}

// replyError maps a roster error onto an ephemeral user reply. Anything
// that isn't a RoleError is an internal failure and gets a generic reply.
func (h *Handler) replyError(w http.ResponseWriter, err error) {
	if roleErr, ok := services.AsRoleError(err); ok {
		if roleErr.Kind == services.KindStorage {
			h.logger.Error("Interaction failed", zap.Error(err))
		}
		if roleErr.Kind == services.KindUnauthorized && h.adminRole != "" {
			ephemeral(w, fmt.Sprintf("Only <@&%s> members can do that.", h.adminRole))
			return
		}
		ephemeral(w, roleErr.Message)
		return
	}

	h.logger.Error("Interaction failed", zap.Error(err))
	ephemeral(w, "Something went wrong. Please try again.")
}

func ephemeral(w http.ResponseWriter, content string) {
	writeResponse(w, response{
		Type: responseChannelMsg,
		Data: &responseData{Content: content, Flags: flagEphemeral},
	})
}

func public(w http.ResponseWriter, content string) {
	writeResponse(w, response{
		Type: responseChannelMsg,
		Data: &responseData{Content: content},
	})
}

func writeResponse(w http.ResponseWriter, resp response) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(resp)
}
