package whatsapp

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"warelay/app/config"

	"github.com/gofiber/fiber/v2"
	"github.com/samber/do"
)

// MessageHandler receives every inbound chat event delivered by the gateway.
type MessageHandler func(senderID, body string)

type inboundEvent struct {
	From string `json:"from"`
	Body string `json:"body"`
}

type sendTextRequest struct {
	To      string `json:"to"`
	Message string `json:"message"`
}

var _ do.Shutdownable = (*Client)(nil)

// Client talks to a Baileys-style sidecar gateway: outbound messages go out
// over its HTTP API, inbound messages arrive on our webhook.
type Client struct {
	cfg        *config.Config
	httpClient *http.Client
	app        *fiber.App

	mutex   sync.RWMutex
	handler MessageHandler
}

func NewClient(di *do.Injector) (*Client, error) {
	cfg := do.MustInvoke[*config.Config](di)

	client := &Client{
		cfg: cfg,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}

	app := fiber.New(fiber.Config{
		DisableStartupMessage: true,
	})
	app.Post("/webhook/message", client.handleInbound)
	client.app = app

	return client, nil
}

func (c *Client) SetHandler(handler MessageHandler) {
	c.mutex.Lock()
	c.handler = handler
	c.mutex.Unlock()
}

func (c *Client) handleInbound(fc *fiber.Ctx) error {
	var event inboundEvent
	if err := fc.BodyParser(&event); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid payload")
	}

	if event.From == "" {
		return fiber.NewError(fiber.StatusBadRequest, "missing sender")
	}

	c.mutex.RLock()
	handler := c.handler
	c.mutex.RUnlock()

	if handler != nil {
		handler(event.From, event.Body)
	}

	return fc.SendStatus(fiber.StatusNoContent)
}

// Run blocks serving the inbound webhook until Shutdown.
func (c *Client) Run() error {
	return c.app.Listen(c.cfg.WhatsApp.ListenAddr)
}

func (c *Client) SendText(ctx context.Context, address, message string) error {
	payload, err := json.Marshal(sendTextRequest{
		To:      address,
		Message: message,
	})
	if err != nil {
		return fmt.Errorf("failed to marshal send request: %w", err)
	}

	url := strings.TrimSuffix(c.cfg.WhatsApp.GatewayURL, "/") + "/v1/send/text"

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("failed to create gateway request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to call gateway: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("gateway returned status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	return nil
}

func (c *Client) Shutdown() error {
	return c.app.Shutdown()
}
