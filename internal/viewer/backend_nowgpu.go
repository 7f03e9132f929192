//go:build !windows

package viewer

import (
	"errors"

	"github.com/Faultbox/hullview/internal/engine/framebuffer"
)

// errWGPUUnavailable is returned where the WebGPU loader cannot share a
// process with the cgo window stack.
var errWGPUUnavailable = errors.New("not available in the cgo viewer on this platform; use hullpick")

func newWGPUBackend(*framebuffer.Framebuffer) (pickBackend, error) {
	return nil, errWGPUUnavailable
}
