package rest

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/spec-kit/ticket-console/internal/api/dto"
	"github.com/spec-kit/ticket-console/internal/config"
	"github.com/spec-kit/ticket-console/internal/domain"
	"github.com/spec-kit/ticket-console/internal/observability"
)

const groupedBody = `{
	"success": true,
	"data": {
		"user42": {
			"userName": "Laura",
			"userAvatar": "LA",
			"stats": {"openTickets": 3, "resolvedTickets": 5, "totalTickets": 10, "avgResponseTime": "2h"},
			"tickets": [
				{"id": 1, "title": "Web caida", "status": "Pendiente", "category": "Sitio Web", "assignedTo": "Carlos"},
				{"id": 2, "title": "Correo rebota", "status": "Resuelto", "category": "Correo"}
			]
		}
	}
}`

func newTestClient(t *testing.T, baseURL string, timeoutSeconds int) *Client {
	t.Helper()
	return New(config.APIConfig{
		BaseURL:               baseURL,
		AccessToken:           "test-token",
		RequestTimeoutSeconds: timeoutSeconds,
	}, zap.NewNop(), observability.NewMetrics())
}

func TestFetchUserTickets(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/tickets-grouped/usuario/42", r.URL.Path)
		assert.Equal(t, "Bearer test-token", r.Header.Get("Authorization"))
		w.Write([]byte(groupedBody))
	}))
	defer server.Close()

	cli := newTestClient(t, server.URL, 10)
	collection := cli.FetchUserTickets(context.Background(), "42")
	require.NotNil(t, collection)

	assert.Equal(t, "Laura", collection.UserName)
	assert.Equal(t, 3, collection.Stats.Open)
	assert.Equal(t, 2, collection.Stats.InProgress)
	assert.Equal(t, 5, collection.Stats.Resolved)
	assert.True(t, collection.Stats.Consistent())
	require.Len(t, collection.Tickets, 2)
	assert.Equal(t, "1", collection.Tickets[0].ID)
	assert.Equal(t, domain.TicketStatusPending, collection.Tickets[0].Status)
}

func TestFetchUserTicketsFailureModes(t *testing.T) {
	t.Run("non-success status", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusBadGateway)
		}))
		defer server.Close()

		cli := newTestClient(t, server.URL, 10)
		assert.Nil(t, cli.FetchUserTickets(context.Background(), "42"))
	})

	t.Run("malformed payload", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`{"success": true, "data": "not-an-object"}`))
		}))
		defer server.Close()

		cli := newTestClient(t, server.URL, 10)
		assert.Nil(t, cli.FetchUserTickets(context.Background(), "42"))
	})

	t.Run("user entry missing", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`{"success": true, "data": {"user99": {"userName": "Otro"}}}`))
		}))
		defer server.Close()

		cli := newTestClient(t, server.URL, 10)
		assert.Nil(t, cli.FetchUserTickets(context.Background(), "42"))
	})

	t.Run("timeout", func(t *testing.T) {
		release := make(chan struct{})
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			<-release
		}))
		defer server.Close()
		defer close(release)

		cli := newTestClient(t, server.URL, 10)
		cli.timeout = 50 * time.Millisecond
		assert.Nil(t, cli.FetchUserTickets(context.Background(), "42"))
	})
}

func TestFetchAllUsersTickets(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/tickets-grouped/users", r.URL.Path)
		w.Write([]byte(`{"success": true, "data": {
			"user1": {"userName": "Ana", "stats": {"openTickets": 1, "resolvedTickets": 0, "totalTickets": 1}},
			"user2": {"userName": "Luis", "stats": {"openTickets": 0, "resolvedTickets": 2, "totalTickets": 2}}
		}}`))
	}))
	defer server.Close()

	cli := newTestClient(t, server.URL, 10)
	collections := cli.FetchAllUsersTickets(context.Background())
	require.Len(t, collections, 2)
	assert.Equal(t, "Ana", collections["1"].UserName)
	assert.Equal(t, "Luis", collections["2"].UserName)
}

func TestFetchTicketDirect(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/tickets/7":
			w.Write([]byte(`{"success": true, "data": {"id": 7, "title": "VPN", "status": "En Progreso"}}`))
		case "/tickets/7/messages":
			w.Write([]byte(`{"success": true, "data": [
				{"id": 1, "content": "hola", "senderType": "Cliente", "senderName": "Laura"},
				{"id": 2, "text": "revisando", "type": "support", "senderName": "Carlos"}
			]}`))
		default:
			t.Errorf("unexpected path %s", r.URL.Path)
		}
	}))
	defer server.Close()

	cli := newTestClient(t, server.URL, 10)
	ticket := cli.FetchTicket(context.Background(), "42", "7")
	require.NotNil(t, ticket)
	assert.Equal(t, domain.TicketStatusInProgress, ticket.Status)
	require.NotNil(t, ticket.Messages)
	require.Len(t, ticket.Messages, 2)
	assert.Equal(t, "hola", ticket.Messages[0].Body)
	assert.Equal(t, domain.SenderKindClient, ticket.Messages[0].Kind)
	assert.Equal(t, "revisando", ticket.Messages[1].Body)
	assert.Equal(t, domain.SenderKindSupport, ticket.Messages[1].Kind)
}

func TestFetchTicketFallback(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/tickets/1":
			// The direct endpoint is flaky; force the fallback.
			w.WriteHeader(http.StatusInternalServerError)
		case "/tickets-grouped/usuario/42":
			w.Write([]byte(groupedBody))
		case "/tickets/1/messages":
			w.Write([]byte(`{"success": true, "data": [{"id": 1, "content": "primer mensaje", "senderName": "Laura"}]}`))
		default:
			t.Errorf("unexpected path %s", r.URL.Path)
		}
	}))
	defer server.Close()

	cli := newTestClient(t, server.URL, 10)
	ticket := cli.FetchTicket(context.Background(), "42", "1")
	require.NotNil(t, ticket)
	assert.Equal(t, "Web caida", ticket.Title)
	require.NotNil(t, ticket.Messages)
	require.Len(t, ticket.Messages, 1)
	assert.Equal(t, "primer mensaje", ticket.Messages[0].Body)
}

func TestFetchTicketFallbackMiss(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/tickets/999":
			w.WriteHeader(http.StatusNotFound)
		case "/tickets-grouped/usuario/42":
			w.Write([]byte(groupedBody))
		default:
			t.Errorf("unexpected path %s", r.URL.Path)
		}
	}))
	defer server.Close()

	cli := newTestClient(t, server.URL, 10)
	assert.Nil(t, cli.FetchTicket(context.Background(), "42", "999"))
}

func TestFetchTicketMessagesAlwaysNonNil(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	cli := newTestClient(t, server.URL, 10)
	messages := cli.FetchTicketMessages(context.Background(), "7")
	assert.NotNil(t, messages)
	assert.Empty(t, messages)
}

func TestSendMessage(t *testing.T) {
	var captured map[string]any
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/tickets/7/messages", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&captured))
		w.Write([]byte(`{"success": true}`))
	}))
	defer server.Close()

	cli := newTestClient(t, server.URL, 10)
	err := cli.SendMessage(context.Background(), "7", "necesito ayuda", []domain.AttachmentMeta{
		{Name: "shot.png", MimeType: "image/png", SizeBytes: 2048},
	})
	require.NoError(t, err)

	assert.Equal(t, "necesito ayuda", captured["content"])
	assert.Equal(t, "Cliente", captured["senderType"])
	assert.NotEmpty(t, captured["timestamp"])
	attachments, ok := captured["attachments"].([]any)
	require.True(t, ok)
	require.Len(t, attachments, 1)
}

func TestSendMessageRejected(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"success": false, "message": "ticket cerrado"}`))
	}))
	defer server.Close()

	cli := newTestClient(t, server.URL, 10)
	err := cli.SendMessage(context.Background(), "7", "hola", nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "ticket cerrado")
}

func TestCreateTicketMultipart(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/tickets", r.URL.Path)
		require.NoError(t, r.ParseMultipartForm(32<<20))

		assert.Equal(t, "Impresora rota", r.FormValue("title"))
		assert.Equal(t, "No imprime nada", r.FormValue("description"))
		assert.Equal(t, "Soporte Técnico", r.FormValue("category"))
		assert.Equal(t, "Alta", r.FormValue("priority"))
		assert.Equal(t, "42", r.FormValue("userId"))

		files := r.MultipartForm.File["archivos"]
		require.Len(t, files, 1)
		assert.Equal(t, "foto.jpg", files[0].Filename)
		handle, err := files[0].Open()
		require.NoError(t, err)
		defer handle.Close()
		content, err := io.ReadAll(handle)
		require.NoError(t, err)
		assert.Equal(t, "jpeg-bytes", string(content))

		w.Write([]byte(`{"success": true, "data": {"id": 31, "title": "Impresora rota", "status": "Pendiente"}}`))
	}))
	defer server.Close()

	cli := newTestClient(t, server.URL, 10)
	ticket, err := cli.CreateTicket(context.Background(), CreateTicketFields{
		Title:       "Impresora rota",
		Description: "No imprime nada",
		Category:    "Soporte Técnico",
		Priority:    domain.TicketPriorityHigh,
		UserID:      "42",
	}, []FilePart{{
		Meta:    domain.AttachmentMeta{Name: "foto.jpg", MimeType: "image/jpeg", SizeBytes: 9},
		Content: strings.NewReader("jpeg-bytes"),
	}})
	require.NoError(t, err)
	require.NotNil(t, ticket)
	assert.Equal(t, "31", ticket.ID)
	assert.NotNil(t, ticket.Messages)
}

func TestUpdateTicketStatusAndDelete(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.Method == http.MethodPut && r.URL.Path == "/tickets/7/status":
			var body map[string]any
			require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
			assert.Equal(t, "2", body["estado_id"])
			assert.Equal(t, "42", body["usuario_id"])
			w.Write([]byte(`{"success": true, "message": "ok"}`))
		case r.Method == http.MethodDelete && r.URL.Path == "/tickets/7":
			w.Write([]byte(`{"success": true, "message": "ok"}`))
		default:
			t.Errorf("unexpected %s %s", r.Method, r.URL.Path)
		}
	}))
	defer server.Close()

	cli := newTestClient(t, server.URL, 10)
	err := cli.UpdateTicketStatus(context.Background(), "7", dto.StatusUpdateRequest{
		EstadoID:  "2",
		UsuarioID: "42",
	})
	assert.NoError(t, err)
	assert.NoError(t, cli.DeleteTicket(context.Background(), "7"))
}

func TestFetchTicketHistory(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/tickets/7/history", r.URL.Path)
		w.Write([]byte(`{"success": true, "data": [
			{"id": 1, "estado": "Pendiente", "usuario": "Sistema", "created": "2025-06-01T10:00:00Z"},
			{"id": 2, "status": "En Progreso", "comment": "asignado", "user": "Carlos"}
		]}`))
	}))
	defer server.Close()

	cli := newTestClient(t, server.URL, 10)
	history := cli.FetchTicketHistory(context.Background(), "7")
	require.Len(t, history, 2)
	assert.Equal(t, domain.TicketStatusPending, history[0].Status)
	assert.Equal(t, "Sistema", history[0].Actor)
	assert.Equal(t, domain.TicketStatusInProgress, history[1].Status)
	assert.Equal(t, "asignado", history[1].Comment)
}
