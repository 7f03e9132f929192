package viewer

import (
	"go.uber.org/zap"

	"github.com/Faultbox/hullview/internal/engine/capture"
	"github.com/Faultbox/hullview/internal/engine/picking"
	"github.com/Faultbox/hullview/internal/logger"
)

// RenderFunc draws the pick pass for t and schedules its copy into t.Readback.
type RenderFunc func(t capture.Target) error

// picker drives one capture at a time and resolves the cursor against the
// newest completed image.
type picker struct {
	machine      *capture.Machine
	trigger      *capture.Trigger
	resolver     *picking.Resolver
	rowAlignment int

	image    picking.Image
	hasImage bool
}

func newPicker(dev capture.Device, lookup picking.TriangleLookup, opts picking.Options, settleFrames, rowAlignment int) *picker {
	return &picker{
		machine:      capture.NewMachine(dev),
		trigger:      capture.NewTrigger(settleFrames),
		resolver:     picking.NewResolver(lookup, opts),
		rowAlignment: rowAlignment,
	}
}

// invalidate drops the current image and restarts the settle countdown.
// A capture already in flight still completes but is superseded.
func (p *picker) invalidate() {
	p.hasImage = false
	p.trigger.Touch()
}

// step runs once per frame: it consumes a completed map and, when the
// trigger fires and no capture is outstanding, starts the next one.
func (p *picker) step(width, height int, render RenderFunc) {
	if data, ok := p.machine.PollAndConsume(); ok {
		w, h, padded := p.machine.Dimensions()
		img, err := picking.NewImage(data, padded, w, h)
		if err != nil {
			logger.Warn("discarding pick image", zap.Error(err))
		} else if !p.trigger.Armed() {
			p.image, p.hasImage = img, true
		}
	}

	if !p.trigger.Tick() {
		return
	}
	if p.machine.InProgress() {
		p.trigger.Rearm()
		return
	}
	if err := p.capture(width, height, render); err != nil {
		logger.Warn("pick capture skipped", zap.Error(err))
		p.machine.Abort()
		p.trigger.Rearm()
	}
}

func (p *picker) capture(width, height int, render RenderFunc) error {
	t, err := p.machine.BeginCapture(width, height, p.rowAlignment)
	if err != nil {
		return err
	}
	if err := render(t); err != nil {
		return err
	}
	return p.machine.RequestAsyncMap()
}

// resolve reports what is under the cursor, NoResult until an image is ready.
func (p *picker) resolve(x, y int, mode picking.SnapMode, ray picking.Ray) picking.Result {
	if !p.hasImage {
		return picking.NoResult
	}
	return p.resolver.Resolve(p.image, x, y, mode, ray)
}

func (p *picker) close() {
	p.machine.Close()
}
