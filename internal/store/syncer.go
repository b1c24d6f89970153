package store

import (
	"context"

	"go.uber.org/zap"
)

// Exporter is the store slice the syncer reads from.
type Exporter interface {
	ExportAll() ([]Export, error)
}

// Target receives the exported leagues; Mirror is the real one.
type Target interface {
	TrySync(ctx context.Context, leagues []Export)
}

// Syncer decouples durability from the backup mirror: lobbies kick it
// after each persisted write, kicks collapse into a single pending
// signal, and the mirror's own limiter bounds the remote write rate.
type Syncer struct {
	kick     chan struct{}
	exporter Exporter
	target   Target
	log      *zap.Logger
}

func NewSyncer(exporter Exporter, target Target, log *zap.Logger) *Syncer {
	if log == nil {
		log = zap.NewNop()
	}
	return &Syncer{
		kick:     make(chan struct{}, 1),
		exporter: exporter,
		target:   target,
		log:      log,
	}
}

// Kick never blocks; an already-pending kick absorbs new ones.
func (s *Syncer) Kick() {
	select {
	case s.kick <- struct{}{}:
	default:
	}
}

func (s *Syncer) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case <-s.kick:
			leagues, err := s.exporter.ExportAll()
			if err != nil {
				s.log.Warn("backup export failed", zap.Error(err))
				continue
			}
			s.target.TrySync(ctx, leagues)
		}
	}
}
