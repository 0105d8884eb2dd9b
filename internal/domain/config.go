package domain

import (
	"fmt"
	"strings"
)

const DefaultCloneDepth = 1

// RepositoryRef identifies the remote to mirror and the local path that
// holds its checkout.
type RepositoryRef struct {
	RemoteURL    string
	CheckoutPath string
}

type Profile string

const (
	ProfileApp        Profile = "app"
	ProfileMiddleware Profile = "middleware"
)

const DefaultProfile = ProfileApp

func (p Profile) IsValid() bool {
	return p == ProfileApp || p == ProfileMiddleware
}

func ParseProfile(value string) (Profile, error) {
	parsed := Profile(strings.TrimSpace(strings.ToLower(value)))
	if parsed == "" {
		return DefaultProfile, nil
	}
	if !parsed.IsValid() {
		return "", fmt.Errorf("invalid profile: %s", value)
	}
	return parsed, nil
}

// Command is the entry point started in the execution root.
func (p Profile) Command() []string {
	switch p {
	case ProfileMiddleware:
		return []string{"uvicorn", "middleware:app", "--host", "0.0.0.0", "--port", "8080", "--reload"}
	default:
		return []string{"python", "main.py"}
	}
}

// Ports lists the ports the application declares. They are informational;
// nothing binds or validates them here.
func (p Profile) Ports() []int {
	switch p {
	case ProfileMiddleware:
		return []int{8080}
	default:
		return []int{8000, 8001}
	}
}

// ProcessSpec describes the application process handed off to by the
// launcher.
type ProcessSpec struct {
	Command []string
	Dir     string
	Env     []string
}

func (s ProcessSpec) String() string {
	return strings.Join(s.Command, " ")
}
