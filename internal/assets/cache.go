// Package assets loads CAD files referenced by scene components. Each file is
// fetched from the backend's static directory at most once no matter how many
// components reference it; concurrent requests for the same file share one
// in-flight load. Fetching runs on goroutines, but parsing and mesh upload run
// on the main thread when Drain is called, because GPU work needs the GL
// context. Callers get per-instance appearance state so highlighting one clone
// never shows on another.
package assets

import (
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"
	"unsafe"

	rl "github.com/gen2brain/raylib-go/raylib"
	"github.com/jinzhu/copier"

	"simviewer/internal/logger"
	"simviewer/internal/scenegraph"
)

// CacheDir is where fetched CAD files are stored between runs.
const CacheDir = "cache/models"

const fetchTimeout = 60 * time.Second

// Body is a named fragment of a loaded asset: shared GPU meshes plus
// per-instance appearance.
type Body struct {
	Meshes     []rl.Mesh
	Appearance scenegraph.Appearance
}

// entry tracks one file's load state. waiters are attach requests queued while
// the fetch is in flight.
type entry struct {
	fetched bool
	path    string
	err     error
	bodies  map[string][]rl.Mesh
	parsed  bool
	waiters []request
}

type request struct {
	body   string
	attach func(Body, bool)
}

// Cache is the asset cache. Fetch and Parse are replaceable for tests; the
// defaults do an HTTP GET against the backend and a raylib model load.
type Cache struct {
	log     *logger.Logger
	baseURL string

	mu      sync.Mutex
	files   map[string]*entry
	pending chan string // files whose fetch finished, awaiting main-thread parse

	Fetch func(file string) (string, error)
	Parse func(path string) (map[string][]rl.Mesh, error)
}

// New returns a cache fetching from baseURL's /static/models/ directory.
func New(log *logger.Logger, baseURL string) *Cache {
	c := &Cache{
		log:     log,
		baseURL: strings.TrimRight(baseURL, "/"),
		files:   make(map[string]*entry),
		pending: make(chan string, 64),
	}
	c.Fetch = c.fetchHTTP
	c.Parse = parseModel
	return c
}

// LoadBody requests the named body of file and calls attach on a later Drain
// with the body and a placeholder flag. The attach callback runs on the main
// thread and must re-validate that its owner still exists; a stale attach is
// the callback's no-op, not an error. Missing bodies and failed fetches both
// deliver a placeholder, never an error to the caller.
func (c *Cache) LoadBody(file, body string, attach func(Body, bool)) {
	c.mu.Lock()
	e, ok := c.files[file]
	if !ok {
		e = &entry{}
		c.files[file] = e
		go c.fetch(file)
	}
	if e.parsed {
		c.mu.Unlock()
		// Already loaded: still deliver via the pending queue so attach always
		// runs from Drain on the main thread.
		c.enqueueDone(file, request{body: body, attach: attach})
		return
	}
	e.waiters = append(e.waiters, request{body: body, attach: attach})
	c.mu.Unlock()
}

func (c *Cache) enqueueDone(file string, req request) {
	c.mu.Lock()
	e := c.files[file]
	e.waiters = append(e.waiters, req)
	c.mu.Unlock()
	select {
	case c.pending <- file:
	default:
		c.log.Logf("assets: pending queue full, delaying %s", file)
	}
}

// fetch downloads the file on a goroutine and queues it for main-thread parsing.
func (c *Cache) fetch(file string) {
	path, err := c.Fetch(file)
	c.mu.Lock()
	e := c.files[file]
	e.fetched = true
	e.path = path
	e.err = err
	c.mu.Unlock()
	if err != nil {
		c.log.Logf("assets: fetch %s: %v", file, err)
	}
	c.pending <- file
}

// Drain completes ready loads: parses newly fetched files (GPU upload happens
// here, on the main thread) and runs queued attach callbacks. Call once per
// frame before drawing.
func (c *Cache) Drain() {
	for {
		select {
		case file := <-c.pending:
			c.finish(file)
		default:
			return
		}
	}
}

func (c *Cache) finish(file string) {
	c.mu.Lock()
	e := c.files[file]
	if !e.parsed {
		if e.err == nil {
			bodies, err := c.Parse(e.path)
			if err != nil {
				c.log.Logf("assets: parse %s: %v", file, err)
				e.err = err
			}
			e.bodies = bodies
		}
		e.parsed = true
	}
	waiters := e.waiters
	e.waiters = nil
	c.mu.Unlock()

	for _, req := range waiters {
		req.attach(c.resolve(e, file, req.body))
	}
}

// resolve looks up a body in a parsed entry, falling back to the unnamed body
// and then to a placeholder.
func (c *Cache) resolve(e *entry, file, body string) (Body, bool) {
	if e.err == nil {
		meshes, ok := e.bodies[body]
		if !ok && body != "" {
			meshes, ok = e.bodies[""]
		}
		if ok && len(meshes) > 0 {
			return clone(meshes), false
		}
		c.log.Logf("assets: body %q not found in %s, using placeholder", body, file)
	}
	return placeholder(), true
}

// clone returns a Body sharing GPU meshes but with its own appearance state,
// deep-copied so material edits on one instance never reach another.
func clone(meshes []rl.Mesh) Body {
	src := scenegraph.Appearance{
		Color:     rl.NewColor(200, 200, 205, 255),
		Highlight: scenegraph.DefaultHighlight,
	}
	var app scenegraph.Appearance
	_ = copier.CopyWithOption(&app, &src, copier.Option{DeepCopy: true})
	out := make([]rl.Mesh, len(meshes))
	copy(out, meshes)
	return Body{Meshes: out, Appearance: app}
}

// placeholder returns the fixed-size warning-colored substitute body.
func placeholder() Body {
	return Body{Appearance: scenegraph.Appearance{
		Color:     scenegraph.PlaceholderColor,
		Highlight: scenegraph.DefaultHighlight,
		Dims:      scenegraph.PlaceholderDims,
	}}
}

// fetchHTTP downloads baseURL/static/models/<file> into CacheDir and returns
// the local path. Reuses a previously cached copy when present.
func (c *Cache) fetchHTTP(file string) (string, error) {
	local := filepath.Join(CacheDir, filepath.Base(file))
	if _, err := os.Stat(local); err == nil {
		return local, nil
	}
	if err := os.MkdirAll(CacheDir, 0755); err != nil {
		return "", fmt.Errorf("assets: %w", err)
	}
	client := &http.Client{Timeout: fetchTimeout}
	url := c.baseURL + "/static/models/" + file
	resp, err := client.Get(url)
	if err != nil {
		return "", fmt.Errorf("assets: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("assets: HTTP %d for %s", resp.StatusCode, url)
	}
	out, err := os.Create(local)
	if err != nil {
		return "", fmt.Errorf("assets: %w", err)
	}
	defer out.Close()
	if _, err := io.Copy(out, resp.Body); err != nil {
		os.Remove(local)
		return "", fmt.Errorf("assets: %w", err)
	}
	return local, nil
}

// parseModel loads a model file with raylib and returns its meshes under the
// unnamed body key. raylib drops sub-mesh names for most formats, so named
// lookup falls back to the whole model (and the cache substitutes a
// placeholder when even that is empty).
func parseModel(path string) (map[string][]rl.Mesh, error) {
	model := rl.LoadModel(path)
	if model.MeshCount == 0 {
		return nil, fmt.Errorf("no meshes in %s", path)
	}
	meshes := unsafe.Slice(model.Meshes, model.MeshCount)
	out := make([]rl.Mesh, len(meshes))
	copy(out, meshes)
	return map[string][]rl.Mesh{"": out}, nil
}
