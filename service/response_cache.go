package service

import (
	"encoding/json"
	"fmt"
	"sort"
	"sync"
	"time"

	"myregistry/domain"
	"myregistry/interfaces"

	"github.com/go-kit/log"
	"github.com/go-kit/log/level"
)

// SnapshotFunc supplies a deep copy of the live registry for cache rebuilds.
// Wired to Registry.Snapshot in cmd/main.
type SnapshotFunc func() []domain.InstanceInfo

// ResponseCacheConfig carries the read-path knobs.
type ResponseCacheConfig struct {
	// CoalescingWindow bounds rebuild cost under bursty mutation storms: a
	// dirty cache is rebuilt at most once per window, readers in between get
	// the previous snapshot.
	CoalescingWindow time.Duration
	// DeltaRetention is how many recent mutations are kept for delta reads.
	// Clients further behind get full_resync_required.
	DeltaRetention int
}

// DefaultResponseCacheConfig returns the production defaults.
func DefaultResponseCacheConfig() ResponseCacheConfig {
	return ResponseCacheConfig{
		CoalescingWindow: 3 * time.Second,
		DeltaRetention:   1024,
	}
}

// appsPayload is the serialized shape of a full registry snapshot.
type appsPayload struct {
	Version      int64                `json:"version"`
	Applications []applicationPayload `json:"applications"`
}

// applicationPayload is one application inside a snapshot.
type applicationPayload struct {
	Name      string                `json:"name"`
	Instances []domain.InstanceInfo `json:"instances"`
}

// singleAppPayload is the serialized shape of a one-application snapshot.
type singleAppPayload struct {
	Version     int64              `json:"version"`
	Application applicationPayload `json:"application"`
}

// ResponseCache implements interfaces.ResponseCache and
// interfaces.MutationSink. Discovery reads are served from payloads built
// here, never from the live lease map, so read load cannot contend with the
// mutation path beyond the brief version check below.
//
// Two locks: ringMu guards the version counter and the mutation ring and is
// the only lock Record takes, so the registry can call Record while holding
// a shard lock without ever waiting on a rebuild. buildMu guards the built
// payloads; rebuilds hold it across the registry snapshot (which takes shard
// locks) and must therefore never be held by a caller of Record.
type ResponseCache struct {
	cfg          ResponseCacheConfig
	snapshot     SnapshotFunc
	timeProvider interfaces.TimeProvider
	logger       log.Logger

	ringMu    sync.Mutex
	version   int64
	mutations []domain.Mutation
	dirty     bool

	buildMu      sync.Mutex
	lastRebuild  time.Time
	builtVersion int64
	builtAll     []byte
	builtByApp   map[string][]byte
}

// NewResponseCache creates the cache. Panics on nil dependencies.
func NewResponseCache(cfg ResponseCacheConfig, snapshot SnapshotFunc, timeProvider interfaces.TimeProvider, logger log.Logger) *ResponseCache {
	if snapshot == nil {
		panic("service.response_cache.go: snapshot func is required")
	}
	if timeProvider == nil {
		panic("service.response_cache.go: time provider is required")
	}
	if logger == nil {
		panic("service.response_cache.go: logger is required")
	}
	if cfg.DeltaRetention <= 0 {
		cfg.DeltaRetention = DefaultResponseCacheConfig().DeltaRetention
	}
	return &ResponseCache{
		cfg:          cfg,
		snapshot:     snapshot,
		timeProvider: timeProvider,
		logger:       log.WithPrefix(logger, "component", "response_cache"),
		builtByApp:   make(map[string][]byte),
	}
}

// Record appends one applied mutation in local apply order, assigns it the
// next version and marks the payloads dirty. Never blocks on rebuilds.
func (c *ResponseCache) Record(action domain.Action, instance domain.InstanceInfo) int64 {
	c.ringMu.Lock()
	defer c.ringMu.Unlock()

	c.version++
	c.mutations = append(c.mutations, domain.Mutation{
		Version:  c.version,
		Action:   action,
		Instance: instance,
	})
	if len(c.mutations) > c.cfg.DeltaRetention {
		c.mutations = c.mutations[len(c.mutations)-c.cfg.DeltaRetention:]
	}
	c.dirty = true
	return c.version
}

// Version returns the current cache version.
func (c *ResponseCache) Version() int64 {
	c.ringMu.Lock()
	defer c.ringMu.Unlock()
	return c.version
}

// Full returns the serialized snapshot of the whole registry or of one
// application, rebuilding first when the cache is dirty and the coalescing
// window has elapsed.
func (c *ResponseCache) Full(appName string) ([]byte, int64, error) {
	c.buildMu.Lock()
	defer c.buildMu.Unlock()

	if err := c.rebuildLocked(); err != nil {
		return nil, 0, err
	}
	if appName == "" {
		return c.builtAll, c.builtVersion, nil
	}
	payload, ok := c.builtByApp[domain.NormalizeAppName(appName)]
	if !ok {
		return nil, 0, NewEntityNotFoundError("application not found", nil)
	}
	return payload, c.builtVersion, nil
}

// Delta returns the mutations applied after sinceVersion. When sinceVersion
// predates the retained window (or comes from a different node incarnation)
// the client must fall back to a full fetch.
func (c *ResponseCache) Delta(sinceVersion int64) ([]domain.Mutation, int64, error) {
	c.ringMu.Lock()
	defer c.ringMu.Unlock()

	if sinceVersion > c.version {
		return nil, c.version, NewFullResyncRequiredError("client version is ahead of this node", nil)
	}
	if sinceVersion == c.version {
		return []domain.Mutation{}, c.version, nil
	}
	if len(c.mutations) == 0 || sinceVersion < c.mutations[0].Version-1 {
		return nil, c.version, NewFullResyncRequiredError("requested delta is older than the retained window", nil)
	}

	// mutations is ordered by version; find the first entry past sinceVersion.
	idx := sort.Search(len(c.mutations), func(i int) bool {
		return c.mutations[i].Version > sinceVersion
	})
	out := make([]domain.Mutation, len(c.mutations)-idx)
	copy(out, c.mutations[idx:])
	return out, c.version, nil
}

// rebuildLocked rebuilds the payloads when dirty, at most once per
// coalescing window (unless nothing was ever built). Callers hold c.buildMu.
func (c *ResponseCache) rebuildLocked() error {
	c.ringMu.Lock()
	dirty := c.dirty
	c.ringMu.Unlock()

	if !dirty && c.builtAll != nil {
		return nil
	}
	now := c.timeProvider.Now()
	if c.builtAll != nil && now.Sub(c.lastRebuild) < c.cfg.CoalescingWindow {
		// Coalesce: serve the previous snapshot until the window elapses.
		return nil
	}

	// Version is read before the snapshot: a mutation landing in between is
	// included in the payload and delivered again by the next delta, which is
	// harmless because mutations carry full instance state. The opposite
	// order could stamp a payload newer than its content and lose a mutation
	// for delta clients.
	c.ringMu.Lock()
	version := c.version
	c.dirty = false
	c.ringMu.Unlock()

	instances := c.snapshot()
	byApp := make(map[string][]domain.InstanceInfo)
	for _, inst := range instances {
		byApp[inst.AppName] = append(byApp[inst.AppName], inst)
	}
	names := make([]string, 0, len(byApp))
	for name := range byApp {
		names = append(names, name)
	}
	sort.Strings(names)

	all := appsPayload{Version: version, Applications: make([]applicationPayload, 0, len(names))}
	perApp := make(map[string][]byte, len(names))
	for _, name := range names {
		insts := byApp[name]
		sort.Slice(insts, func(i, j int) bool { return insts[i].InstanceID < insts[j].InstanceID })
		app := applicationPayload{Name: name, Instances: insts}
		all.Applications = append(all.Applications, app)

		payload, err := json.Marshal(singleAppPayload{Version: version, Application: app})
		if err != nil {
			return NewInternalServerError("response cache rebuild error", fmt.Errorf("can't marshal application %s, err: %w", name, err))
		}
		perApp[name] = payload
	}
	payload, err := json.Marshal(all)
	if err != nil {
		return NewInternalServerError("response cache rebuild error", fmt.Errorf("can't marshal applications payload, err: %w", err))
	}

	c.builtAll = payload
	c.builtByApp = perApp
	c.builtVersion = version
	c.lastRebuild = now
	level.Debug(c.logger).Log("msg", "rebuilt response cache", "version", version, "applications", len(names))
	return nil
}
