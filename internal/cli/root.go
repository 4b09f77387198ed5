package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/julianstephens/ledger/internal/backup"
	"github.com/julianstephens/ledger/internal/blob"
	"github.com/julianstephens/ledger/internal/journal"
	"github.com/julianstephens/ledger/internal/logger"
	"github.com/julianstephens/ledger/internal/storage"
)

// Context is handed to every command's Run method.
type Context struct {
	Store   storage.Provider
	Journal *journal.Service
	// Blobs holds attachment content. Nil when no attachment store is configured.
	Blobs blob.Store

	Ctx context.Context
	Out io.Writer
	In  io.Reader
}

// Background returns the context for storage calls.
func (c *Context) Background() context.Context {
	if c.Ctx == nil {
		return context.Background()
	}
	return c.Ctx
}

// Stdout returns where command output goes.
func (c *Context) Stdout() io.Writer {
	if c.Out == nil {
		return os.Stdout
	}
	return c.Out
}

func (c *Context) Printf(format string, args ...any) {
	fmt.Fprintf(c.Stdout(), format, args...)
}

func (c *Context) Println(args ...any) {
	fmt.Fprintln(c.Stdout(), args...)
}

// Confirm asks a yes/no question on the input stream. Anything but y/yes is no.
func (c *Context) Confirm(prompt string) (bool, error) {
	c.Printf("%s [y/N]: ", prompt)

	in := c.In
	if in == nil {
		in = os.Stdin
	}
	response, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && err != io.EOF {
		return false, err
	}
	response = strings.TrimSpace(strings.ToLower(response))
	return response == "y" || response == "yes", nil
}

// PerformAutomaticBackup creates an automatic backup and silently handles errors
func (c *Context) PerformAutomaticBackup() {
	path := c.Store.GetConfigPath()
	if !backup.Supported(path) {
		return
	}
	mgr := backup.NewManager(path)
	if _, err := mgr.CreateBackup(); err != nil {
		// Log warning but don't interrupt user workflow
		logger.Warn("Automatic backup failed", "error", err)
	}
}

// ShortID is the display form of a record id.
func ShortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

// Resolve finds the record whose id equals ref or, failing that, the single record
// whose id starts with ref. kind names the record type in errors.
func Resolve[T any](items []T, id func(T) string, ref, kind string) (T, error) {
	var zero T
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return zero, fmt.Errorf("%s id is required", kind)
	}

	var matches []T
	for _, it := range items {
		switch {
		case id(it) == ref:
			return it, nil
		case strings.HasPrefix(id(it), ref):
			matches = append(matches, it)
		}
	}

	switch len(matches) {
	case 0:
		return zero, fmt.Errorf("%s not found: %s", kind, ref)
	case 1:
		return matches[0], nil
	default:
		return zero, fmt.Errorf("%s id %q is ambiguous (%d matches)", kind, ref, len(matches))
	}
}
