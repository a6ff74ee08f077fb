package tracing

import (
	"context"

	"github.com/ordishs/gocore"
)

type statsKey struct{}

var defaultStat = gocore.NewStat("coinview", true)

// NewStatFromContext creates a child of the stat stored in ctx, or of defaultParent when ctx has
// none, and returns a context carrying the new stat.
func NewStatFromContext(ctx context.Context, key string, defaultParent *gocore.Stat, options ...bool) (*gocore.Stat, context.Context) {
	parentStat, ok := ctx.Value(statsKey{}).(*gocore.Stat)
	if !ok {
		parentStat = defaultParent
	}

	if parentStat == nil {
		parentStat = defaultStat
	}

	ignoreChildren := true
	if len(options) > 0 {
		ignoreChildren = options[0]
	}

	stat := parentStat.NewStat(key, ignoreChildren)

	return stat, context.WithValue(ctx, statsKey{}, stat)
}

// StatFromContext returns the stat carried by ctx, if any.
func StatFromContext(ctx context.Context) *gocore.Stat {
	stat, _ := ctx.Value(statsKey{}).(*gocore.Stat)
	return stat
}
