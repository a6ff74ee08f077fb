package blockvalidation

import (
	"context"
)

// Rule is one consensus check of the pipeline. Run may read and change the working set of vctx.
// It returns nil when the block passes, a rejection (see errors.IsRejection) when the block is
// invalid, or any other error for an infrastructure fault.
type Rule interface {
	Name() string
	Run(ctx context.Context, vctx *Context) error
}
