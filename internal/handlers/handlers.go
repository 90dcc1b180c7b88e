package handlers

import (
	"github.com/enlapet/backend/internal/auth"
	"github.com/enlapet/backend/internal/feed"
	"github.com/enlapet/backend/internal/notifications"
	"github.com/enlapet/backend/internal/social"
	"github.com/enlapet/backend/internal/storage"
	"github.com/enlapet/backend/internal/telemetry"
	"gorm.io/gorm"
)

// Handlers contains all HTTP handlers for the API
type Handlers struct {
	db         *gorm.DB
	auth       *auth.Service
	graph      *social.Graph
	engagement *social.Engagement
	feed       *feed.Assembler
	emitter    *notifications.Emitter
	storage    storage.Storage
	spans      *telemetry.Spans
}

// NewHandlers creates a new handlers instance
func NewHandlers(db *gorm.DB, authService *auth.Service) *Handlers {
	emitter := notifications.NewEmitter(db)
	graph := social.NewGraph(db, emitter)
	return &Handlers{
		db:         db,
		auth:       authService,
		graph:      graph,
		engagement: social.NewEngagement(db, emitter),
		feed:       feed.NewAssembler(db, graph),
		emitter:    emitter,
		spans:      telemetry.NewSpans(),
	}
}

// SetStorage sets the image storage backend
func (h *Handlers) SetStorage(s storage.Storage) {
	h.storage = s
}

// Emitter exposes the notification emitter so the server can drain it on
// shutdown.
func (h *Handlers) Emitter() *notifications.Emitter {
	return h.emitter
}
