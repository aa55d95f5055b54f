// Package transport is the glue between the viewer and the simulator backend:
// an HTTP client for the command/config endpoints and a websocket receiver for
// the snapshot stream. Decoded messages cross into the rest of the program
// only through a channel drained on the main thread.
package transport

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"simviewer/internal/logger"
	"simviewer/internal/wire"
)

const httpTimeout = 10 * time.Second

// ServerConfig is the backend's GET /api/config response.
type ServerConfig struct {
	WSPort int `json:"ws_port"`
}

// RobotDevice is one entry of the addable-device list.
type RobotDevice struct {
	Filename   string `json:"filename"`
	Name       string `json:"name"`
	JointCount int    `json:"joint_count"`
}

// Client talks to the backend's HTTP API.
type Client struct {
	base string
	http *http.Client
	log  *logger.Logger
}

// NewClient returns a client for the backend at baseURL (e.g. http://localhost:8080).
func NewClient(baseURL string, log *logger.Logger) *Client {
	return &Client{
		base: strings.TrimRight(baseURL, "/"),
		http: &http.Client{Timeout: httpTimeout},
		log:  log,
	}
}

// BaseURL returns the backend base URL.
func (c *Client) BaseURL() string { return c.base }

// FetchConfig fetches the backend configuration (websocket port).
func (c *Client) FetchConfig() (ServerConfig, error) {
	var cfg ServerConfig
	err := c.getJSON("/api/config", &cfg)
	return cfg, err
}

// FetchDefinition fetches the full static scene definition. The endpoint
// returns either the typed message or a bare component list depending on
// backend version; both are accepted.
func (c *Client) FetchDefinition() (*wire.Definition, error) {
	data, err := c.get("/api/scene/definition")
	if err != nil {
		return nil, err
	}
	var def wire.Definition
	if err := json.Unmarshal(data, &def); err == nil && len(def.Components) > 0 {
		return &def, nil
	}
	var comps []wire.Component
	if err := json.Unmarshal(data, &comps); err != nil {
		return nil, fmt.Errorf("transport: decode definition: %w", err)
	}
	return &wire.Definition{Type: wire.TypeDefinition, Components: comps}, nil
}

// ListRobotDevices fetches the addable robot device descriptors.
func (c *Client) ListRobotDevices() ([]RobotDevice, error) {
	var devices []RobotDevice
	err := c.getJSON("/api/devices/robots", &devices)
	return devices, err
}

// AddRobot asks the backend to instantiate a robot device. The caller follows
// up with FetchDefinition since the scene topology changed.
func (c *Client) AddRobot(filename string) error {
	return c.post("/api/scene/robots", map[string]string{"device": filename}, nil)
}

// Jog sends a jog command for one joint of a robot. Fire-and-forget: network
// errors are logged, never surfaced, so a flaky link cannot wedge the jog UI.
func (c *Client) Jog(id string, joint int, direction string) {
	go func() {
		body := map[string]any{"joint": joint, "direction": direction}
		if err := c.post("/api/scene/"+id+"/jog", body, nil); err != nil {
			c.log.Logf("transport: jog %s joint %d %s: %v", id, joint, direction, err)
		}
	}()
}

// SetJointAngles posts absolute joint angles for a robot. Entries that are nil
// leave that joint untouched.
func (c *Client) SetJointAngles(id string, angles []*float64) error {
	return c.post("/api/scene/"+id+"/joints", map[string]any{"joints": angles}, nil)
}

// SetTransform posts a transform edit and returns the backend's authoritative
// echo, which the reconciler applies in place of the optimistic local value.
func (c *Client) SetTransform(id string, t wire.Transform) (wire.Transform, error) {
	var resp struct {
		Name      string         `json:"name"`
		Transform wire.Transform `json:"transform"`
	}
	if err := c.post("/api/scene/"+id+"/transform", t, &resp); err != nil {
		return wire.Transform{}, err
	}
	return resp.Transform, nil
}

func (c *Client) get(path string) ([]byte, error) {
	resp, err := c.http.Get(c.base + path)
	if err != nil {
		return nil, fmt.Errorf("transport: GET %s: %w", path, err)
	}
	defer resp.Body.Close()
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("transport: GET %s: %w", path, err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("transport: GET %s: HTTP %d: %s", path, resp.StatusCode, strings.TrimSpace(string(data)))
	}
	return data, nil
}

func (c *Client) getJSON(path string, out any) error {
	data, err := c.get(path)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("transport: decode %s: %w", path, err)
	}
	return nil
}

func (c *Client) post(path string, body any, out any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("transport: encode %s: %w", path, err)
	}
	resp, err := c.http.Post(c.base+path, "application/json", bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("transport: POST %s: %w", path, err)
	}
	defer resp.Body.Close()
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("transport: POST %s: %w", path, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("transport: POST %s: HTTP %d: %s", path, resp.StatusCode, strings.TrimSpace(string(data)))
	}
	if out != nil {
		if err := json.Unmarshal(data, out); err != nil {
			return fmt.Errorf("transport: decode %s: %w", path, err)
		}
	}
	return nil
}
