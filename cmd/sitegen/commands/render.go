package commands

import (
	"fmt"
	"log/slog"

	"git.home.luguber.info/inful/sitegen/internal/logfields"
)

// RenderCmd implements the 'render' command.
type RenderCmd struct {
	DirFlags `embed:""`
}

func (r *RenderCmd) Run(g *Global, root *CLI) error {
	cfg, err := loadConfig(g, root)
	if err != nil {
		return err
	}
	req, err := ResolveRequest(r.DirFlags, cfg)
	if err != nil {
		return err
	}

	slog.Info("Starting render",
		slog.String("source", req.SourceDir),
		slog.String("target", req.TargetDir),
		logfields.URL(cfg.Feed.URI))

	ctx, cancel := signalContext()
	defer cancel()

	svc, reg := newService(cfg, r.Offline)
	res, err := svc.Run(ctx, req)
	writeMetrics(cfg, reg)
	if err != nil {
		return err
	}

	fmt.Println(summary(res))
	return nil
}
