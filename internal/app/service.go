// Package app provides the session service that turns selection events
// into cluster state, orchestrates remote aggregation and contribution
// requests, and assembles render cells for the court view.
package app

import (
	"context"
	"sync"

	"courtlens/internal/compute"
	"courtlens/internal/domain/grid"
	"courtlens/internal/domain/model"
	"courtlens/internal/domain/render"
	"courtlens/internal/domain/selection"
	"courtlens/internal/domain/tensor"
	"courtlens/pkg/logger"
)

// Default service configuration constants.
const (
	defaultNoticeCap = 32
)

// SelectionView is the read shape of the cluster state.
type SelectionView struct {
	State    string `json:"state"`
	ClusterA []int  `json:"cluster_a"`
	ClusterB []int  `json:"cluster_b"`
	Version  uint64 `json:"version"`
}

// Service owns all per-session state. State is replaced, never mutated in
// place, on each change; the mutex serializes the event handling the UI
// loop would otherwise provide.
type Service struct {
	mu sync.Mutex

	client compute.Client
	policy *render.Policy
	log    logger.Logger

	// Initialization data; zero grid means "not ready".
	ready    bool
	g        grid.Grid
	points   []model.Point
	groups   []string
	timeBins int

	machine *selection.Machine

	// Contribution fetch bookkeeping. fetchSeq identifies the newest
	// request; completions with an older seq are discarded.
	fetchSeq    uint64
	cancelFetch context.CancelFunc
	result      *tensor.ContributionResult
	timeSel     tensor.TimeSelector

	reduceChannels bool
	noticeCap      int
	notices        []Notice
}

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithClient sets the analytics backend client.
func WithClient(c compute.Client) Option {
	return func(s *Service) {
		if c != nil {
			s.client = c
		}
	}
}

// WithPolicy sets the render-scaling policy. The policy's size mode is
// fixed for the lifetime of the service so marks stay comparable.
func WithPolicy(p *render.Policy) Option {
	return func(s *Service) {
		if p != nil {
			s.policy = p
		}
	}
}

// WithLogger sets a custom logger for the service.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.log = l
		}
	}
}

// WithNoticeCap bounds the retained transient notices.
func WithNoticeCap(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.noticeCap = n
		}
	}
}

// WithChannelReduction controls whether the backend is asked to reduce
// the contribution tensor over the channel axis. On by default; the
// per-channel variant exists for category-specific displays.
func WithChannelReduction(enabled bool) Option {
	return func(s *Service) { s.reduceChannels = enabled }
}

// New constructs a Service. A client must be provided before use.
func New(opts ...Option) *Service {
	s := &Service{
		policy:         render.NewPolicy(),
		machine:        selection.New(),
		timeSel:        tensor.AllTime(),
		reduceChannels: true,
		noticeCap:      defaultNoticeCap,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.log == nil {
		s.log = logger.Get()
	}
	return s
}
