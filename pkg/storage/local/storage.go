package local

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"github.com/serviprohq/servipro-backend/pkg/config"
	"github.com/serviprohq/servipro-backend/pkg/logger"
)

// Client stores uploaded files on the local filesystem under a single root.
// Stored paths are relative (e.g. "services/<uuid>.jpg") so the root can move
// between environments.
type Client struct {
	root       string
	publicPath string
}

// New validates the configured root directory and returns a storage client.
func New(ctx context.Context, cfg config.StorageConfig, logg *logger.Logger) (*Client, error) {
	if cfg.Root == "" {
		return nil, errors.New("storage root is required")
	}
	if err := os.MkdirAll(cfg.Root, 0o755); err != nil {
		return nil, fmt.Errorf("creating storage root: %w", err)
	}

	publicPath := cfg.PublicPath
	if publicPath == "" {
		publicPath = "/uploads"
	}

	if logg != nil {
		logg.Info(ctx, "local storage initialized")
	}

	return &Client{
		root:       cfg.Root,
		publicPath: strings.TrimSuffix(publicPath, "/"),
	}, nil
}

// Root returns the filesystem directory backing the store.
func (c *Client) Root() string {
	return c.root
}

// Save writes the reader contents under <kind>/<uuid><ext> and returns the
// relative storage path.
func (c *Client) Save(ctx context.Context, r io.Reader, kind, ext string) (string, error) {
	kind = sanitizeSegment(kind)
	if kind == "" {
		return "", errors.New("storage kind is required")
	}
	ext = strings.ToLower(strings.TrimPrefix(ext, "."))
	if ext == "" {
		return "", errors.New("file extension is required")
	}

	dir := filepath.Join(c.root, kind)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("creating storage dir: %w", err)
	}

	name := fmt.Sprintf("%s.%s", uuid.NewString(), ext)
	full := filepath.Join(dir, name)

	f, err := os.OpenFile(full, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return "", fmt.Errorf("creating file: %w", err)
	}

	if _, err := io.Copy(f, r); err != nil {
		_ = f.Close()
		_ = os.Remove(full)
		return "", fmt.Errorf("writing file: %w", err)
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(full)
		return "", fmt.Errorf("closing file: %w", err)
	}

	return path.Join(kind, name), nil
}

// Delete removes a previously stored file. Missing files are not an error.
func (c *Client) Delete(ctx context.Context, relPath string) error {
	clean, err := c.resolve(relPath)
	if err != nil {
		return err
	}
	if err := os.Remove(clean); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("removing file: %w", err)
	}
	return nil
}

// Exists reports whether the relative path resolves to a stored file.
func (c *Client) Exists(relPath string) bool {
	clean, err := c.resolve(relPath)
	if err != nil {
		return false
	}
	info, err := os.Stat(clean)
	return err == nil && !info.IsDir()
}

// PublicURL maps a relative storage path onto the public serving prefix.
// Absolute http(s) URLs pass through untouched so seeded external images keep
// working.
func (c *Client) PublicURL(relPath string) string {
	if relPath == "" {
		return ""
	}
	if strings.HasPrefix(relPath, "http://") || strings.HasPrefix(relPath, "https://") {
		return relPath
	}
	return c.publicPath + "/" + strings.TrimPrefix(relPath, "/")
}

// IsLocal reports whether the stored path points at a file under the root
// rather than an external URL.
func IsLocal(storedPath string) bool {
	if storedPath == "" {
		return false
	}
	return !strings.HasPrefix(storedPath, "http://") && !strings.HasPrefix(storedPath, "https://")
}

func (c *Client) resolve(relPath string) (string, error) {
	if relPath == "" {
		return "", errors.New("path is required")
	}
	clean := filepath.Clean(filepath.Join(c.root, filepath.FromSlash(relPath)))
	rootAbs, err := filepath.Abs(c.root)
	if err != nil {
		return "", err
	}
	cleanAbs, err := filepath.Abs(clean)
	if err != nil {
		return "", err
	}
	if cleanAbs != rootAbs && !strings.HasPrefix(cleanAbs, rootAbs+string(os.PathSeparator)) {
		return "", fmt.Errorf("path %q escapes storage root", relPath)
	}
	return clean, nil
}

func sanitizeSegment(segment string) string {
	segment = strings.ToLower(strings.TrimSpace(segment))
	segment = strings.Trim(segment, "/.")
	if strings.ContainsAny(segment, `/\`) {
		return ""
	}
	return segment
}
