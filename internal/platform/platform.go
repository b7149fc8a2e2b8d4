// Package platform answers architecture and distribution-version questions
// by shelling out to dpkg and parsing the lsb-release file. Successful
// answers are cached for the process lifetime; failures surface to the
// caller as *QueryError and are asked again next time.
package platform

import (
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"strings"
	"sync"

	"github.com/miamibc/ubuntu-make/internal/log"
	"github.com/miamibc/ubuntu-make/internal/registry"
)

// ReleaseFile is the default distribution release metadata path.
const ReleaseFile = "/etc/lsb-release"

// QueryError reports a failed platform query: the underlying command exited
// non-zero, or the version source was missing or malformed.
type QueryError struct {
	Op  string
	Err error
}

func (e *QueryError) Error() string {
	return fmt.Sprintf("platform query %s: %v", e.Op, e.Err)
}

func (e *QueryError) Unwrap() error {
	return e.Err
}

// Runner executes a system command and returns its stdout.
type Runner interface {
	Output(name string, args ...string) ([]byte, error)
}

type execRunner struct{}

func (execRunner) Output(name string, args ...string) ([]byte, error) {
	return exec.Command(name, args...).Output()
}

// FileReader reads the release metadata file.
type FileReader func(path string) ([]byte, error)

func defaultReadFile(path string) ([]byte, error) {
	return os.ReadFile(path)
}

// Query performs platform detection with per-process caching.
type Query struct {
	runner      Runner
	readFile    FileReader
	releaseFile string
	logger      *slog.Logger

	mu         sync.Mutex
	arch       string
	foreign    []string
	foreignSet bool
	version    string
}

// New creates a Query backed by real command execution and ReleaseFile.
func New() *Query {
	return NewWith(execRunner{}, nil, ReleaseFile)
}

// NewWith creates a Query with injected command runner and file reader.
// A nil readFile falls back to os.ReadFile.
func NewWith(r Runner, readFile FileReader, releaseFile string) *Query {
	if readFile == nil {
		readFile = defaultReadFile
	}
	return &Query{
		runner:      r,
		readFile:    readFile,
		releaseFile: releaseFile,
		logger:      log.WithComponent("platform"),
	}
}

// Default returns the one process-wide Query.
func Default() *Query {
	q, _ := registry.Get(registry.Default(), func() (*Query, error) {
		return New(), nil
	})
	return q
}

// CurrentArch returns the machine architecture as reported by dpkg.
func (q *Query) CurrentArch() (string, error) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.arch != "" {
		return q.arch, nil
	}

	out, err := q.runner.Output("dpkg", "--print-architecture")
	if err != nil {
		q.logger.Error("architecture query failed", "error", err)
		return "", &QueryError{Op: "current architecture", Err: err}
	}
	q.arch = strings.TrimSpace(string(out))
	return q.arch, nil
}

// ForeignArchs returns the foreign architectures enabled on this system, in
// dpkg's reported order. An empty list is a valid cached answer.
func (q *Query) ForeignArchs() ([]string, error) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.foreignSet {
		return q.foreign, nil
	}

	out, err := q.runner.Output("dpkg", "--print-foreign-architectures")
	if err != nil {
		q.logger.Error("foreign architecture query failed", "error", err)
		return nil, &QueryError{Op: "foreign architectures", Err: err}
	}

	var archs []string
	for _, line := range strings.Split(string(out), "\n") {
		line = strings.TrimSpace(line)
		if line != "" {
			archs = append(archs, line)
		}
	}
	q.foreign = archs
	q.foreignSet = true
	return q.foreign, nil
}

// CurrentVersion returns the distribution release (DISTRIB_RELEASE) from the
// lsb-release file.
func (q *Query) CurrentVersion() (string, error) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.version != "" {
		return q.version, nil
	}

	data, err := q.readFile(q.releaseFile)
	if err != nil {
		q.logger.Error("release file unreadable", "path", q.releaseFile, "error", err)
		return "", &QueryError{Op: "current version", Err: err}
	}

	for _, line := range strings.Split(string(data), "\n") {
		key, value, found := strings.Cut(strings.TrimSpace(line), "=")
		if found && key == "DISTRIB_RELEASE" {
			q.version = strings.Trim(value, `"`)
			return q.version, nil
		}
	}

	err = fmt.Errorf("no DISTRIB_RELEASE in %s", q.releaseFile)
	q.logger.Error("release file malformed", "path", q.releaseFile, "error", err)
	return "", &QueryError{Op: "current version", Err: err}
}
