package edgebootsdk

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/osvaldoandrade/edgeboot/internal/domain"
)

type Profile string

const (
	ProfileApp        Profile = Profile(domain.ProfileApp)
	ProfileMiddleware Profile = Profile(domain.ProfileMiddleware)
)

// Config describes one bootstrap: where the code comes from, where it is
// checked out, where it runs and what is started.
type Config struct {
	RemoteURL   string
	CheckoutDir string
	// ExecRoot defaults to CheckoutDir, which skips staging.
	ExecRoot string
	// Depth limits the initial clone; zero means DefaultCloneDepth.
	Depth int
	// FullHistory clones every commit and ignores Depth.
	FullHistory bool
	Profile     Profile
	Command     []string
	Ports       []int
	PruneStale  bool
	Lock        bool
	Logger      *slog.Logger
}

// DefaultConfig returns the container layout: a shallow checkout in
// /tmp/repo staged into /app, running the app profile.
func DefaultConfig(remoteURL string) Config {
	return Config{
		RemoteURL:   remoteURL,
		CheckoutDir: "/tmp/repo",
		ExecRoot:    "/app",
		Depth:       domain.DefaultCloneDepth,
		Profile:     ProfileApp,
		Lock:        true,
	}
}

func normalizeConfig(cfg Config) (Config, error) {
	cfg.CheckoutDir = strings.TrimSpace(cfg.CheckoutDir)
	if cfg.CheckoutDir == "" {
		return cfg, ErrCheckoutDirRequired
	}
	if cfg.Depth < 0 {
		return cfg, ErrInvalidDepth
	}
	switch {
	case cfg.FullHistory:
		cfg.Depth = 0
	case cfg.Depth == 0:
		cfg.Depth = domain.DefaultCloneDepth
	}
	if strings.TrimSpace(cfg.ExecRoot) == "" {
		cfg.ExecRoot = cfg.CheckoutDir
	}
	profile, err := domain.ParseProfile(string(cfg.Profile))
	if err != nil {
		return cfg, fmt.Errorf("%w: %s", ErrInvalidProfile, cfg.Profile)
	}
	cfg.Profile = Profile(profile)
	if len(cfg.Command) == 0 {
		cfg.Command = profile.Command()
	}
	if len(cfg.Ports) == 0 {
		cfg.Ports = profile.Ports()
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	return cfg, nil
}
