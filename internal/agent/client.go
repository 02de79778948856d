// Package agent implements the client-side sync loop: poll the state
// snapshot, mirror it wholesale, predict the countdown between polls and
// issue intent requests.
package agent

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/mcdev12/awantura/internal/server"
)

// Client is a thin JSON client over the gateway's HTTP surface.
type Client struct {
	baseURL string
	client  *http.Client
}

func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: baseURL,
		client: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

// RegisterResult is the identity handed back on registration.
type RegisterResult struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	IsAdmin    bool   `json:"is_admin"`
	IsObserver bool   `json:"is_observer"`
}

func (c *Client) Register(name string) (RegisterResult, error) {
	var out RegisterResult
	err := c.post("/register", map[string]string{"name": name}, &out)
	return out, err
}

func (c *Client) State() (server.Snapshot, error) {
	var snap server.Snapshot
	resp, err := c.client.Get(c.baseURL + "/state")
	if err != nil {
		return snap, fmt.Errorf("failed to fetch state: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return snap, fmt.Errorf("state returned status %d: %s", resp.StatusCode, body)
	}
	if err := json.NewDecoder(resp.Body).Decode(&snap); err != nil {
		return snap, fmt.Errorf("failed to decode state: %w", err)
	}
	return snap, nil
}

// Bid places a bid and returns the authoritative pot after it.
func (c *Client) Bid(playerID, kind string) (int, error) {
	var out struct {
		Pot int `json:"pot"`
	}
	err := c.post("/bid", map[string]string{"player_id": playerID, "kind": kind}, &out)
	return out.Pot, err
}

func (c *Client) FinishBidding(playerID string) error {
	return c.post("/finish_bidding", map[string]string{"player_id": playerID}, nil)
}

func (c *Client) Answer(playerID, answer string) error {
	return c.post("/answer", map[string]string{"player_id": playerID, "answer": answer}, nil)
}

func (c *Client) Hint(playerID, kind string) error {
	return c.post("/hint", map[string]string{"player_id": playerID, "kind": kind}, nil)
}

func (c *Client) SelectSet(playerID string, set int) error {
	return c.post("/select_set", map[string]any{"player_id": playerID, "set": set}, nil)
}

func (c *Client) NextRound(playerID string) error {
	return c.post("/next_round", map[string]string{"player_id": playerID}, nil)
}

func (c *Client) Heartbeat(playerID string) error {
	return c.post("/heartbeat", map[string]string{"player_id": playerID}, nil)
}

// Chat posts a line under the player's registration name.
func (c *Client) Chat(playerName, message string) error {
	return c.post("/chat", map[string]string{"player": playerName, "message": message}, nil)
}

func (c *Client) post(endpoint string, body any, out any) error {
	data, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("failed to marshal request: %w", err)
	}
	resp, err := c.client.Post(c.baseURL+endpoint, "application/json", bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("failed to POST %s: %w", endpoint, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		respBody, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("%s returned status %d: %s", endpoint, resp.StatusCode, respBody)
	}
	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("failed to decode %s response: %w", endpoint, err)
		}
	}
	return nil
}
