package main

import (
	"context"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"monthcal/internal/capture"
	"monthcal/internal/config"
	"monthcal/internal/convert"
	appLog "monthcal/internal/log"
	"monthcal/internal/web"
	"monthcal/internal/widget"
)

// pipeline recomputes the complication and, when enabled, captures and
// packs a preview of the rendered page.
type pipeline struct {
	cfg      *config.Config
	provider widget.Provider
	server   *web.Server
	baseURL  string
	dump     bool
}

func (p *pipeline) run(ctx context.Context) error {
	start := time.Now()
	p.server.Invalidate()

	entry, err := p.provider.Snapshot(ctx)
	if err != nil {
		return fmt.Errorf("snapshot: %w", err)
	}

	today := 0
	if c, ok := entry.Grid.Today(); ok {
		today = c.Day
	}
	appLog.Info("complication refreshed",
		"title", entry.Title,
		"lead_offset", entry.Grid.LeadOffset,
		"days", entry.Grid.Days,
		"rows", entry.Grid.RowCount(),
		"today", today,
	)

	if !p.cfg.Capture.Enabled {
		return nil
	}

	previewPath := web.PreviewPath(p.cfg)
	err = capture.CapturePNG(ctx, capture.Options{
		URL:        p.complicationURL(),
		OutputPath: previewPath,
		Width:      p.cfg.Display.Width,
		Height:     p.cfg.Display.Height,
		Timeout:    time.Duration(p.cfg.Capture.TimeoutSec) * time.Second,
	})
	if err != nil {
		return err
	}

	img, err := convert.DecodePNG(previewPath)
	if err != nil {
		return err
	}
	ink, accent, err := convert.Pack(img, convert.Panel{Width: p.cfg.Display.Width, Height: p.cfg.Display.Height})
	if err != nil {
		return err
	}

	if p.dump {
		dir := p.cfg.Capture.OutputDir
		if err := os.WriteFile(filepath.Join(dir, "ink.bin"), ink, 0o644); err != nil {
			return fmt.Errorf("dump ink plane: %w", err)
		}
		if err := os.WriteFile(filepath.Join(dir, "accent.bin"), accent, 0o644); err != nil {
			return fmt.Errorf("dump accent plane: %w", err)
		}
	}

	appLog.Info("preview captured",
		"path", previewPath,
		"plane_bytes", len(ink),
		"dumped", p.dump,
		"elapsed", time.Since(start).Round(time.Millisecond),
	)
	return nil
}

// complicationURL points the capture at the local page, carrying basic
// auth credentials when the API is protected.
func (p *pipeline) complicationURL() string {
	u, err := url.Parse(p.baseURL)
	if err != nil {
		u = &url.URL{Scheme: "http", Host: p.cfg.Listen}
	}
	u.Path = "/complication"
	q := url.Values{}
	q.Set("width", strconv.Itoa(p.cfg.Display.Width))
	q.Set("height", strconv.Itoa(p.cfg.Display.Height))
	u.RawQuery = q.Encode()

	if ba := p.cfg.BasicAuth; ba != nil && ba.Username != "" && ba.Password != "" {
		u.User = url.UserPassword(ba.Username, ba.Password)
	}
	return u.String()
}
