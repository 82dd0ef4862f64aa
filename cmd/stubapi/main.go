// Command stubapi runs a local in-memory ticket backend for developing
// the console against. It mirrors the remote API's envelope and, on
// purpose, its uneven message field spellings.
package main

import (
	"fmt"
	"log"
	"strconv"
	"sync"
	"time"

	"github.com/gofiber/fiber/v2"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"go.uber.org/zap"

	"github.com/spec-kit/ticket-console/internal/config"
	"github.com/spec-kit/ticket-console/internal/observability"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger, err := observability.NewLogger(cfg.Logger, false)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logger.Sync() //nolint:errcheck

	app := fiber.New()
	app.Use(recover.New())
	app.Use(fiberlogger.New())

	store := newStore()
	handler := &stubHandler{store: store}

	app.Get("/api/tickets-grouped/usuario/:userID", handler.GroupedByUser)
	app.Get("/api/tickets-grouped/users", handler.GroupedAll)
	app.Post("/api/tickets", handler.CreateTicket)
	app.Get("/api/tickets/:id", handler.GetTicket)
	app.Delete("/api/tickets/:id", handler.DeleteTicket)
	app.Put("/api/tickets/:id/status", handler.UpdateStatus)
	app.Get("/api/tickets/:id/history", handler.GetHistory)
	app.Get("/api/tickets/:id/messages", handler.GetMessages)
	app.Post("/api/tickets/:id/messages", handler.PostMessage)

	logger.Info("stub backend listening", zap.String("addr", cfg.Stub.Addr()))
	if err := app.Listen(cfg.Stub.Addr()); err != nil {
		logger.Fatal("fiber listen", zap.Error(err))
	}
}

// stubTicket is the wire shape the stub serves. Messages use mixed
// field spellings across fixtures so client normalization stays honest
// during development.
type stubTicket struct {
	ID          string           `json:"id"`
	UserID      string           `json:"-"`
	Title       string           `json:"title"`
	Description string           `json:"description"`
	Category    string           `json:"category"`
	Service     string           `json:"service,omitempty"`
	Priority    string           `json:"priority"`
	Status      string           `json:"status"`
	CreatedAt   string           `json:"created"`
	AssignedTo  string           `json:"assignedTo,omitempty"`
	Messages    []map[string]any `json:"messages,omitempty"`
	History     []map[string]any `json:"-"`
}

type stubUser struct {
	ID     string
	Name   string
	Avatar string
}

type store struct {
	mu      sync.Mutex
	users   map[string]stubUser
	tickets map[string]*stubTicket
	nextID  int
}

func newStore() *store {
	s := &store{
		users:   map[string]stubUser{},
		tickets: map[string]*stubTicket{},
		nextID:  100,
	}
	s.seed()
	return s
}

// seed loads two users and a handful of tickets in distinct states.
func (s *store) seed() {
	s.users["42"] = stubUser{ID: "42", Name: "Laura Méndez", Avatar: "LM"}
	s.users["43"] = stubUser{ID: "43", Name: "Diego Fuentes", Avatar: "DF"}

	s.tickets["1"] = &stubTicket{
		ID: "1", UserID: "42",
		Title:       "La impresora no responde",
		Description: "Desde ayer no imprime ningún documento.",
		Category:    "Soporte Técnico",
		Service:     "Impresión",
		Priority:    "Alta",
		Status:      "Pendiente",
		CreatedAt:   "2026-08-28 09:15:00",
		Messages: []map[string]any{
			// Older rows use the legacy spellings.
			{
				"id": 1, "text": "La impresora del piso 3 no responde.",
				"type": "Cliente", "sender": "Laura Méndez",
				"created": "2026-08-28 09:15:00",
			},
			{
				"id": 2, "content": "Gracias por avisar, lo revisamos hoy.",
				"senderType": "Soporte", "senderName": "Mesa de ayuda",
				"senderAvatar": "MA", "timestamp": "2026-08-28T10:02:00Z",
			},
		},
		History: []map[string]any{
			{"id": 1, "estado": "Pendiente", "comentario": "Ticket creado", "usuario": "Laura Méndez", "created": "2026-08-28 09:15:00"},
		},
	}
	s.tickets["2"] = &stubTicket{
		ID: "2", UserID: "42",
		Title:       "Acceso a la VPN",
		Description: "Necesito acceso a la VPN corporativa.",
		Category:    "Accesos",
		Priority:    "Media",
		Status:      "En Progreso",
		CreatedAt:   "2026-08-25 14:00:00",
		Messages: []map[string]any{
			{
				"id": 3, "message": "¿Hay novedades del acceso?",
				"senderType": "Cliente", "senderName": "Laura Méndez",
				"timestamp": "2026-08-26T08:30:00Z",
			},
		},
		History: []map[string]any{
			{"id": 2, "estado": "Pendiente", "comentario": "Ticket creado", "usuario": "Laura Méndez", "created": "2026-08-25 14:00:00"},
			{"id": 3, "estado": "En Progreso", "comentario": "Asignado al equipo de redes", "usuario": "Mesa de ayuda", "created": "2026-08-26 09:00:00"},
		},
	}
	s.tickets["3"] = &stubTicket{
		ID: "3", UserID: "42",
		Title:     "Monitor parpadea",
		Category:  "Hardware",
		Priority:  "Baja",
		Status:    "Resuelto",
		CreatedAt: "2026-08-10 11:00:00",
		Messages: []map[string]any{
			{
				"id": 4, "content": "Cambiamos el cable, quedó resuelto.",
				"senderType": "Soporte", "senderName": "Mesa de ayuda",
				"timestamp": "2026-08-11T16:45:00Z",
			},
		},
		History: []map[string]any{
			{"id": 4, "estado": "Resuelto", "comentario": "Cable reemplazado", "usuario": "Mesa de ayuda", "created": "2026-08-11 16:45:00"},
		},
	}
	s.tickets["9"] = &stubTicket{
		ID: "9", UserID: "43",
		Title:     "Teclado en francés",
		Category:  "Hardware",
		Priority:  "Media",
		Status:    "Pendiente",
		CreatedAt: "2026-08-30 10:00:00",
	}
}

type stubHandler struct {
	store *store
}

func envelope(data any) fiber.Map {
	return fiber.Map{"success": true, "message": "ok", "data": data}
}

func failure(c *fiber.Ctx, status int, message string) error {
	return c.Status(status).JSON(fiber.Map{"success": false, "message": message})
}

// groupedEntry builds one "user<id>" value: the user's profile, the
// aggregate counters, and the ticket list without message bodies.
func (s *store) groupedEntry(user stubUser) fiber.Map {
	var open, resolved, total int
	tickets := []fiber.Map{}
	for _, ticket := range s.tickets {
		if ticket.UserID != user.ID {
			continue
		}
		total++
		switch ticket.Status {
		case "Resuelto":
			resolved++
		case "Pendiente":
			open++
		}
		tickets = append(tickets, fiber.Map{
			"id":          ticket.ID,
			"title":       ticket.Title,
			"description": ticket.Description,
			"category":    ticket.Category,
			"service":     ticket.Service,
			"priority":    ticket.Priority,
			"status":      ticket.Status,
			"created":     ticket.CreatedAt,
		})
	}
	return fiber.Map{
		"userName":   user.Name,
		"userAvatar": user.Avatar,
		"stats": fiber.Map{
			"openTickets":     open,
			"resolvedTickets": resolved,
			"totalTickets":    total,
			"avgResponseTime": "3h",
		},
		"tickets": tickets,
	}
}

// GroupedByUser GET /api/tickets-grouped/usuario/:userID.
func (h *stubHandler) GroupedByUser(c *fiber.Ctx) error {
	h.store.mu.Lock()
	defer h.store.mu.Unlock()

	userID := c.Params("userID")
	user, ok := h.store.users[userID]
	if !ok {
		return failure(c, fiber.StatusNotFound, "usuario no encontrado")
	}
	return c.JSON(envelope(fiber.Map{"user" + userID: h.store.groupedEntry(user)}))
}

// GroupedAll GET /api/tickets-grouped/users.
func (h *stubHandler) GroupedAll(c *fiber.Ctx) error {
	h.store.mu.Lock()
	defer h.store.mu.Unlock()

	data := fiber.Map{}
	for id, user := range h.store.users {
		data["user"+id] = h.store.groupedEntry(user)
	}
	return c.JSON(envelope(data))
}

// GetTicket GET /api/tickets/:id.
func (h *stubHandler) GetTicket(c *fiber.Ctx) error {
	h.store.mu.Lock()
	defer h.store.mu.Unlock()

	ticket, ok := h.store.tickets[c.Params("id")]
	if !ok {
		return failure(c, fiber.StatusNotFound, "ticket no encontrado")
	}
	return c.JSON(envelope(ticket))
}

// DeleteTicket DELETE /api/tickets/:id.
func (h *stubHandler) DeleteTicket(c *fiber.Ctx) error {
	h.store.mu.Lock()
	defer h.store.mu.Unlock()

	id := c.Params("id")
	if _, ok := h.store.tickets[id]; !ok {
		return failure(c, fiber.StatusNotFound, "ticket no encontrado")
	}
	delete(h.store.tickets, id)
	return c.JSON(envelope(fiber.Map{"id": id}))
}

// UpdateStatus PUT /api/tickets/:id/status.
func (h *stubHandler) UpdateStatus(c *fiber.Ctx) error {
	var req struct {
		EstadoID   string `json:"estado_id"`
		Comentario string `json:"comentario"`
		UsuarioID  string `json:"usuario_id"`
	}
	if err := c.BodyParser(&req); err != nil {
		return failure(c, fiber.StatusBadRequest, "payload inválido")
	}

	h.store.mu.Lock()
	defer h.store.mu.Unlock()

	ticket, ok := h.store.tickets[c.Params("id")]
	if !ok {
		return failure(c, fiber.StatusNotFound, "ticket no encontrado")
	}

	status := map[string]string{"1": "Pendiente", "2": "En Progreso", "3": "Resuelto"}[req.EstadoID]
	if status == "" {
		return failure(c, fiber.StatusBadRequest, "estado_id desconocido")
	}
	ticket.Status = status
	ticket.History = append(ticket.History, map[string]any{
		"id":         len(ticket.History) + 1,
		"estado":     status,
		"comentario": req.Comentario,
		"usuario":    req.UsuarioID,
		"created":    time.Now().UTC().Format(time.RFC3339),
	})
	return c.JSON(envelope(ticket))
}

// GetHistory GET /api/tickets/:id/history.
func (h *stubHandler) GetHistory(c *fiber.Ctx) error {
	h.store.mu.Lock()
	defer h.store.mu.Unlock()

	ticket, ok := h.store.tickets[c.Params("id")]
	if !ok {
		return failure(c, fiber.StatusNotFound, "ticket no encontrado")
	}
	return c.JSON(envelope(ticket.History))
}

// GetMessages GET /api/tickets/:id/messages.
func (h *stubHandler) GetMessages(c *fiber.Ctx) error {
	h.store.mu.Lock()
	defer h.store.mu.Unlock()

	ticket, ok := h.store.tickets[c.Params("id")]
	if !ok {
		return failure(c, fiber.StatusNotFound, "ticket no encontrado")
	}
	messages := ticket.Messages
	if messages == nil {
		messages = []map[string]any{}
	}
	return c.JSON(envelope(messages))
}

// PostMessage POST /api/tickets/:id/messages.
func (h *stubHandler) PostMessage(c *fiber.Ctx) error {
	var req struct {
		Content     string `json:"content"`
		SenderType  string `json:"senderType"`
		Timestamp   string `json:"timestamp"`
		Attachments []struct {
			Name string `json:"name"`
			Type string `json:"type"`
			Size int64  `json:"size"`
		} `json:"attachments"`
	}
	if err := c.BodyParser(&req); err != nil {
		return failure(c, fiber.StatusBadRequest, "payload inválido")
	}
	if req.Content == "" {
		return failure(c, fiber.StatusBadRequest, "content requerido")
	}

	h.store.mu.Lock()
	defer h.store.mu.Unlock()

	ticket, ok := h.store.tickets[c.Params("id")]
	if !ok {
		return failure(c, fiber.StatusNotFound, "ticket no encontrado")
	}
	if ticket.Status == "Resuelto" {
		return failure(c, fiber.StatusConflict, "ticket cerrado")
	}

	user := h.store.users[ticket.UserID]
	message := map[string]any{
		"id":         fmt.Sprintf("m%d", h.store.nextID),
		"content":    req.Content,
		"senderType": req.SenderType,
		"senderName": user.Name,
		"timestamp":  req.Timestamp,
	}
	if len(req.Attachments) > 0 {
		attachments := make([]map[string]any, 0, len(req.Attachments))
		for _, a := range req.Attachments {
			attachments = append(attachments, map[string]any{
				"name": a.Name, "type": a.Type, "size": a.Size,
			})
		}
		message["attachments"] = attachments
	}
	h.store.nextID++
	ticket.Messages = append(ticket.Messages, message)
	return c.JSON(envelope(message))
}

// CreateTicket POST /api/tickets (multipart form).
func (h *stubHandler) CreateTicket(c *fiber.Ctx) error {
	title := c.FormValue("title")
	description := c.FormValue("description")
	category := c.FormValue("category")
	if title == "" || description == "" || category == "" {
		return failure(c, fiber.StatusBadRequest, "title, description y category son obligatorios")
	}

	h.store.mu.Lock()
	defer h.store.mu.Unlock()

	id := strconv.Itoa(h.store.nextID)
	h.store.nextID++

	ticket := &stubTicket{
		ID:          id,
		UserID:      c.FormValue("userId"),
		Title:       title,
		Description: description,
		Category:    category,
		Service:     c.FormValue("service"),
		Priority:    c.FormValue("priority"),
		Status:      "Pendiente",
		CreatedAt:   time.Now().UTC().Format(time.RFC3339),
		Messages:    []map[string]any{},
		History: []map[string]any{
			{"id": 1, "estado": "Pendiente", "comentario": "Ticket creado", "usuario": c.FormValue("userId"), "created": time.Now().UTC().Format(time.RFC3339)},
		},
	}

	if form, err := c.MultipartForm(); err == nil {
		if files := form.File["archivos"]; len(files) > 0 {
			attachments := make([]map[string]any, 0, len(files))
			for _, file := range files {
				attachments = append(attachments, map[string]any{
					"name": file.Filename,
					"type": file.Header.Get("Content-Type"),
					"size": file.Size,
				})
			}
			ticket.Messages = append(ticket.Messages, map[string]any{
				"id":          "m-adjuntos",
				"content":     "Archivos adjuntos al crear el ticket",
				"senderType":  "Cliente",
				"timestamp":   ticket.CreatedAt,
				"attachments": attachments,
			})
		}
	}

	h.store.tickets[id] = ticket
	return c.Status(fiber.StatusCreated).JSON(envelope(ticket))
}
