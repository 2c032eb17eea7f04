package server

import (
	"log"
	"slices"
	"strings"

	"clubboard/internal/models"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
)

const (
	feedMemberLocal      = "feedMember"
	feedCollectionsLocal = "feedCollections"
)

// ChangeFeedUpgrade validates a change-feed request before the WebSocket
// upgrade. collection is a comma-separated list; empty means all.
func (s *Server) ChangeFeedUpgrade(c *fiber.Ctx) error {
	if !websocket.IsWebSocketUpgrade(c) {
		return fiber.ErrUpgradeRequired
	}

	collections := models.Collections
	if raw := strings.TrimSpace(c.Query("collection")); raw != "" {
		collections = nil
		for _, name := range strings.Split(raw, ",") {
			name = strings.TrimSpace(name)
			if !slices.Contains(models.Collections, name) {
				return models.RespondWithError(c, fiber.StatusBadRequest,
					models.NewValidationError("Unknown collection "+name))
			}
			if !slices.Contains(collections, name) {
				collections = append(collections, name)
			}
		}
	}

	c.Locals(feedMemberLocal, callerID(c))
	c.Locals(feedCollectionsLocal, collections)
	return c.Next()
}

// ChangeFeedHandler streams change events for the requested collections.
// @Summary Change feed
// @Description WebSocket stream of {collection,type,id,at} events
// @Tags realtime
// @Security BearerAuth
// @Param collection query string false "Comma-separated collections"
// @Router /ws/changes [get]
func (s *Server) ChangeFeedHandler() fiber.Handler {
	return websocket.New(func(conn *websocket.Conn) {
		memberID, _ := conn.Locals(feedMemberLocal).(string)
		collections, _ := conn.Locals(feedCollectionsLocal).([]string)
		if memberID == "" || len(collections) == 0 {
			if cerr := conn.Close(); cerr != nil {
				log.Printf("websocket close error: %v", cerr)
			}
			return
		}

		client, err := s.hub.Register(memberID, conn, collections)
		if err != nil {
			log.Printf("change feed: failed to register member %s: %v", memberID, err)
			_ = conn.WriteMessage(websocket.TextMessage, []byte(`{"error":"`+err.Error()+`"}`))
			_ = conn.Close()
			return
		}
		defer s.hub.UnregisterClient(client)

		go client.WritePump()
		client.ReadPump()
	})
}
