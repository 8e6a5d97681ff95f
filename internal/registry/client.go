// Package registry moves images between registries and provisions
// destination repositories through the registry's management API.
package registry

import (
	"context"

	"github.com/regclient/regclient"
	regcfg "github.com/regclient/regclient/config"
	"github.com/regclient/regclient/types/manifest"
	"github.com/regclient/regclient/types/ref"
	"go.uber.org/zap"
)

const userAgent = "ismigrate"

// Host holds the credentials for one registry.
type Host struct {
	Name     string
	Username string
	Password string
	Insecure bool
}

// Client copies images registry to registry without a local daemon.
type Client struct {
	rc     *regclient.RegClient
	logger *zap.Logger
}

// NewClient returns a client configured for the given hosts.
func NewClient(hosts []Host, logger *zap.Logger) *Client {
	opts := []regclient.Opt{regclient.WithUserAgent(userAgent)}
	for _, h := range hosts {
		cfg := regcfg.Host{
			Name: h.Name,
			User: h.Username,
			Pass: h.Password,
		}
		if h.Insecure {
			cfg.TLS = regcfg.TLSInsecure
		}
		opts = append(opts, regclient.WithConfigHost(cfg))
	}
	return &Client{rc: regclient.New(opts...), logger: logger}
}

// Copy transfers one tagged image from src to dst, manifest and layers.
func (c *Client) Copy(ctx context.Context, src, dst string) error {
	srcRef, err := ref.New(src)
	if err != nil {
		return wrapTransferError(ErrInvalidReference, err,
			"invalid source reference",
			map[string]any{"reference": src})
	}
	defer c.rc.Close(ctx, srcRef)

	dstRef, err := ref.New(dst)
	if err != nil {
		return wrapTransferError(ErrInvalidReference, err,
			"invalid destination reference",
			map[string]any{"reference": dst})
	}
	defer c.rc.Close(ctx, dstRef)

	if err := c.rc.ImageCopy(ctx, srcRef, dstRef); err != nil {
		return wrapTransferError(ErrCopyImage, err,
			"failed to copy image",
			map[string]any{"source": src, "target": dst})
	}
	c.logger.Debug("Copied image", zap.String("source", src), zap.String("target", dst))
	return nil
}

// EstimateSize returns the sum of an image's manifest layer sizes in bytes.
// Estimation is advisory only, so every failure collapses to zero.
func (c *Client) EstimateSize(ctx context.Context, image string) int64 {
	r, err := ref.New(image)
	if err != nil {
		return 0
	}
	defer c.rc.Close(ctx, r)

	m, err := c.rc.ManifestGet(ctx, r)
	if err != nil {
		c.logger.Debug("Size estimation failed", zap.String("image", image), zap.Error(err))
		return 0
	}
	img, ok := m.(manifest.Imager)
	if !ok {
		return 0
	}
	layers, err := img.GetLayers()
	if err != nil {
		return 0
	}
	var total int64
	for _, layer := range layers {
		total += layer.Size
	}
	return total
}
