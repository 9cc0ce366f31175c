// Package pgtest starts a throwaway PostgreSQL for integration tests using
// docker compose.
package pgtest

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/go-faster/errors"
	tc "github.com/testcontainers/testcontainers-go/modules/compose"
	"github.com/testcontainers/testcontainers-go/wait"
)

const (
	composeFile = "docker-compose.test.yml"
	service     = "postgres"
)

// Postgres is a running compose stack.
type Postgres struct {
	URL string

	stack *tc.DockerCompose
}

// Start brings up the postgres service from docker-compose.test.yml, found by
// walking up from the working directory, and waits until it accepts
// connections.
func Start(ctx context.Context) (*Postgres, error) {
	file, err := findComposeFile()
	if err != nil {
		return nil, err
	}

	stack, err := tc.NewDockerCompose(file)
	if err != nil {
		return nil, errors.Wrap(err, "compose init")
	}

	err = stack.
		WaitForService(service, wait.ForLog("database system is ready to accept connections").
			WithOccurrence(2).
			WithStartupTimeout(2*time.Minute)).
		Up(ctx, tc.Wait(true))
	if err != nil {
		return nil, errors.Wrap(err, "compose up")
	}

	container, err := stack.ServiceContainer(ctx, service)
	if err != nil {
		return nil, errors.Wrap(err, "postgres container")
	}
	host, err := container.Host(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "host")
	}
	port, err := container.MappedPort(ctx, "5432/tcp")
	if err != nil {
		return nil, errors.Wrap(err, "mapped port")
	}

	return &Postgres{
		URL:   fmt.Sprintf("postgres://drinks:drinks@%s:%s/drinks?sslmode=disable", host, port.Port()),
		stack: stack,
	}, nil
}

// Stop tears the stack down.
func (p *Postgres) Stop(ctx context.Context) error {
	return p.stack.Down(ctx, tc.RemoveOrphans(true), tc.RemoveVolumes(true))
}

func findComposeFile() (string, error) {
	dir, err := os.Getwd()
	if err != nil {
		return "", errors.Wrap(err, "getwd")
	}
	for {
		p := filepath.Join(dir, composeFile)
		if _, err := os.Stat(p); err == nil {
			return p, nil
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", errors.Errorf("%s not found", composeFile)
		}
		dir = parent
	}
}
