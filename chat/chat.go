// Package chat provides the floating chat widget shown on every page.
// Two integrations exist: a self-contained popup and the hosted web-chat
// embed. Both expose the same readiness check and launch operation.
package chat

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/caremate/caremate-web/logging"
)

// Widget kinds
const (
	KindPopup = "popup"
	KindEmbed = "embed"
)

// Greeting is the first line shown by the popup widget
const Greeting = "Hello! How can I help you today?"

// NotReadyAlert is shown when the chat button is pressed before the widget is ready
const NotReadyAlert = "Chat is still loading, please try again in a moment."

// ErrNotReady is returned by Open when the widget cannot be launched yet
var ErrNotReady = errors.New("chat: widget not ready")

// Widget is a chat integration
type Widget interface {
	Kind() string
	Ready() bool
	Open() (Launch, error)
}

// EmbedOptions are the values passed to the hosted web-chat loader
type EmbedOptions struct {
	ScriptURL         string
	IntegrationID     string
	Region            string
	ServiceInstanceID string
}

// Launch describes what the page renders when the chat is opened
type Launch struct {
	Kind     string
	Greeting string
	Embed    *EmbedOptions
}

// New returns the widget for kind
func New(kind string, opts EmbedOptions) (Widget, error) {
	switch kind {
	case KindPopup:
		return NewPopup(), nil
	case KindEmbed:
		return NewEmbed(opts, nil), nil
	default:
		return nil, fmt.Errorf("unknown chat widget %q", kind)
	}
}

// Popup is the built-in widget. It never talks to anything so it is always ready.
type Popup struct{}

func NewPopup() *Popup { return &Popup{} }

func (*Popup) Kind() string { return KindPopup }
func (*Popup) Ready() bool  { return true }

func (*Popup) Open() (Launch, error) {
	return Launch{Kind: KindPopup, Greeting: Greeting}, nil
}

// Embed loads the hosted web-chat script. It becomes ready once the script
// URL has answered a probe.
type Embed struct {
	opts   EmbedOptions
	client *http.Client
	ready  atomic.Bool
}

// NewEmbed creates an embed widget. A nil client gets a 10 second timeout.
func NewEmbed(opts EmbedOptions, client *http.Client) *Embed {
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}
	return &Embed{opts: opts, client: client}
}

func (e *Embed) Kind() string { return KindEmbed }
func (e *Embed) Ready() bool  { return e.ready.Load() }

// Options returns the loader options rendered on every page
func (e *Embed) Options() EmbedOptions { return e.opts }

func (e *Embed) Open() (Launch, error) {
	if !e.Ready() {
		return Launch{}, ErrNotReady
	}
	opts := e.opts
	return Launch{Kind: KindEmbed, Embed: &opts}, nil
}

// Probe sends a HEAD request to the script URL and updates readiness.
// Any 2xx or 3xx answer counts as available.
func (e *Embed) Probe(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodHead, e.opts.ScriptURL, nil)
	if err != nil {
		e.setReady(false)
		return fmt.Errorf("failed to build probe request: %w", err)
	}

	resp, err := e.client.Do(req)
	if err != nil {
		e.setReady(false)
		return fmt.Errorf("failed to probe %s: %w", e.opts.ScriptURL, err)
	}
	defer func() {
		if err := resp.Body.Close(); err != nil {
			logging.Warn("Failed to close probe response body", "error", err)
		}
	}()

	if resp.StatusCode < 200 || resp.StatusCode >= 400 {
		e.setReady(false)
		return fmt.Errorf("chat script %s answered %d", e.opts.ScriptURL, resp.StatusCode)
	}

	e.setReady(true)
	return nil
}

func (e *Embed) setReady(ready bool) {
	if old := e.ready.Swap(ready); old != ready {
		logging.Info("Chat widget readiness changed", "kind", KindEmbed, "ready", ready)
	}
}
