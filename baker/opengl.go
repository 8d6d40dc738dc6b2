package baker

import (
	"context"
	"fmt"
	"image"
	"sync"

	"github.com/auroralab/aurora/compute"
	"github.com/auroralab/aurora/lut"
	"github.com/auroralab/aurora/scatter"
	"github.com/go-gl/gl/v2.1/gl"
	"github.com/go-gl/glfw/v3.3/glfw"
	"golang.org/x/image/draw"
)

// Multiplier applied to the preview exposure per up/down keypress.
const exposureScaler float32 = 1.25

// An interactive opengl-based baker that previews the baked table.
type interactiveGLBaker struct {
	*defaultBaker

	// opengl handles
	window    *glfw.Window
	fbTexture uint32
	texFbo    uint32

	// Display dims (table dims times the upscale factor).
	displayW uint32
	displayH uint32

	// Display state. The baked table is re-tonemapped and uploaded to
	// the preview texture whenever dirty is set.
	exposure float32
	baked    *lut.Table
	dirty    bool

	// mutex for synchronizing updates
	sync.Mutex
}

// Create a new interactive opengl baker using the specified block scheduler
// and scattering kernel. The bake runs in the background while the window
// previews the tonemapped table; up/down keys adjust the exposure and ESC
// closes the window. glfw requires the caller to run on the main OS thread.
func NewInteractive(kernel *scatter.Kernel, scheduler compute.BlockScheduler, opts Options) (Baker, error) {
	opts = opts.withDefaults()

	base, err := NewDefault(kernel, scheduler, opts)
	if err != nil {
		return nil, err
	}

	b := &interactiveGLBaker{
		defaultBaker: base.(*defaultBaker),
		exposure:     opts.Exposure,
	}

	params := kernel.Params()
	b.displayW = uint32(params.Width) * opts.DisplayScale
	b.displayH = uint32(params.Height) * opts.DisplayScale

	if err = b.initGL(); err != nil {
		b.Close()
		return nil, err
	}

	return b, nil
}

func (b *interactiveGLBaker) Close() {
	if b.window != nil {
		b.window.SetShouldClose(true)
	}
	b.defaultBaker.Close()
}

func (b *interactiveGLBaker) initGL() error {
	var err error
	if err = glfw.Init(); err != nil {
		return fmt.Errorf("failed to initialize glfw: %s", err.Error())
	}

	glfw.WindowHint(glfw.Resizable, glfw.False)
	glfw.WindowHint(glfw.ContextVersionMajor, 2)
	glfw.WindowHint(glfw.ContextVersionMinor, 1)
	b.window, err = glfw.CreateWindow(int(b.displayW), int(b.displayH), "aurora", nil, nil)
	if err != nil {
		return fmt.Errorf("could not create opengl window: %s", err.Error())
	}
	b.window.MakeContextCurrent()

	if err = gl.Init(); err != nil {
		return fmt.Errorf("could not init opengl: %s", err.Error())
	}

	// Setup texture for the tonemapped table
	gl.GenTextures(1, &b.fbTexture)
	gl.ActiveTexture(gl.TEXTURE0)
	gl.BindTexture(gl.TEXTURE_2D, b.fbTexture)
	gl.TexImage2D(gl.TEXTURE_2D, 0, gl.RGBA8, int32(b.displayW), int32(b.displayH), 0, gl.RGBA, gl.UNSIGNED_BYTE, nil)

	// Attach texture to FBO
	gl.GenFramebuffers(1, &b.texFbo)
	gl.BindFramebuffer(gl.READ_FRAMEBUFFER, b.texFbo)
	gl.FramebufferTexture2D(gl.READ_FRAMEBUFFER, gl.COLOR_ATTACHMENT0, gl.TEXTURE_2D, b.fbTexture, 0)
	gl.BindFramebuffer(gl.READ_FRAMEBUFFER, 0)

	// Bind event callbacks
	b.window.SetInputMode(glfw.CursorMode, glfw.CursorNormal)
	b.window.SetKeyCallback(b.onKeyEvent)

	return nil
}

// Bake the lookup table while previewing it in the window. The bake itself
// runs in a background goroutine; the preview texture is uploaded once the
// pass completes and re-uploaded on exposure changes. The call returns when
// the window is closed.
func (b *interactiveGLBaker) Bake(ctx context.Context) (*lut.Table, error) {
	type bakeResult struct {
		table *lut.Table
		err   error
	}

	resChan := make(chan bakeResult, 1)
	go func() {
		table, err := b.defaultBaker.Bake(ctx)
		resChan <- bakeResult{table: table, err: err}
	}()

	var baked *lut.Table
	for !b.window.ShouldClose() {
		glfw.PollEvents()

		if baked == nil {
			select {
			case res := <-resChan:
				if res.err != nil {
					return nil, res.err
				}
				baked = res.table
				b.Lock()
				b.baked = baked
				b.dirty = true
				b.Unlock()
			default:
			}
		}

		b.Lock()
		if b.dirty && b.baked != nil {
			b.uploadTexture(b.baked)
			b.dirty = false
		}
		b.Unlock()

		// Copy texture data to framebuffer
		gl.BindFramebuffer(gl.READ_FRAMEBUFFER, b.texFbo)
		gl.BlitFramebuffer(0, 0, int32(b.displayW), int32(b.displayH), 0, 0, int32(b.displayW), int32(b.displayH), gl.COLOR_BUFFER_BIT, gl.NEAREST)
		gl.BindFramebuffer(gl.READ_FRAMEBUFFER, 0)

		b.window.SwapBuffers()
	}

	// Window closed while the pass was still running; wait for it to
	// wind down so the returned table is complete.
	if baked == nil {
		res := <-resChan
		if res.err != nil {
			return nil, res.err
		}
		baked = res.table
	}
	return baked, nil
}

// Tonemap the table, upscale it to the display dims and upload it to the
// preview texture. Must run on the window's context thread.
func (b *interactiveGLBaker) uploadTexture(table *lut.Table) {
	img := table.Image(b.exposure)
	if int(b.displayW) != table.Width || int(b.displayH) != table.Height {
		dst := image.NewRGBA(image.Rect(0, 0, int(b.displayW), int(b.displayH)))
		draw.NearestNeighbor.Scale(dst, dst.Bounds(), img, img.Bounds(), draw.Src, nil)
		img = dst
	}

	gl.BindTexture(gl.TEXTURE_2D, b.fbTexture)
	gl.TexSubImage2D(gl.TEXTURE_2D, 0, 0, 0, int32(b.displayW), int32(b.displayH), gl.RGBA, gl.UNSIGNED_BYTE, gl.Ptr(img.Pix))
}

func (b *interactiveGLBaker) onKeyEvent(w *glfw.Window, key glfw.Key, scancode int, action glfw.Action, mods glfw.ModifierKey) {
	if action != glfw.Press && action != glfw.Repeat {
		return
	}

	switch key {
	case glfw.KeyEscape:
		b.window.SetShouldClose(true)
	case glfw.KeyUp:
		b.scaleExposure(exposureScaler)
	case glfw.KeyDown:
		b.scaleExposure(1.0 / exposureScaler)
	}
}

// Scale the preview exposure and mark the texture for re-upload.
func (b *interactiveGLBaker) scaleExposure(scaler float32) {
	b.Lock()
	defer b.Unlock()

	b.exposure *= scaler
	b.dirty = true
	logger.Infof("preview exposure set to %.2f", b.exposure)
}
