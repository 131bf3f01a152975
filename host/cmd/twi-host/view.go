//go:build cgo

package main

import (
	"image"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/urfave/cli/v2"
	"go.uber.org/zap"

	"twibang/core"
	"twibang/host/usisim"
)

const (
	flagScale    = "scale"
	flagInterval = "interval"
)

var viewCommand = &cli.Command{
	Name:  "view",
	Usage: "animate the demo on a simulated display in a window",
	Flags: append([]cli.Flag{
		&cli.IntFlag{Name: flagScale, Value: 4, Usage: "window pixels per display pixel"},
		&cli.DurationFlag{Name: flagInterval, Value: 250 * time.Millisecond, Usage: "time between frames"},
	}, faultFlags...),
	Action: viewAction,
}

func viewAction(c *cli.Context) error {
	log, err := newLogger(c)
	if err != nil {
		return err
	}
	defer log.Sync()

	dep, err := loadDeployment(c)
	if err != nil {
		return err
	}
	_, display, bus, err := simBus(dep, faultsFromFlags(c))
	if err != nil {
		return err
	}
	defer bus.Release()

	st := setupDisplay(bus)
	if !st.OK() {
		return reportStatus(log, st)
	}

	g := &viewer{
		display:  display,
		scene:    newScene(bus),
		interval: c.Duration(flagInterval),
		log:      log,
	}
	scale := c.Int(flagScale)
	ebiten.SetWindowTitle("twibang - SSD1306 0x" + hexByte(dep.Address))
	ebiten.SetWindowSize(usisim.DisplayWidth*scale, usisim.DisplayHeight*scale)
	ebiten.SetTPS(60)
	if err := ebiten.RunGame(g); err != nil {
		return err
	}
	return reportStatus(log, g.status)
}

// viewer draws a frame of the scene every interval and shows the
// simulated display RAM
type viewer struct {
	display  *usisim.SSD1306
	scene    *scene
	interval time.Duration
	log      *zap.SugaredLogger

	next   time.Time
	status core.Status
	img    *image.RGBA
	fbImg  *ebiten.Image
}

func (v *viewer) Update() error {
	if !v.status.OK() || time.Now().Before(v.next) {
		return nil
	}
	v.next = time.Now().Add(v.interval)
	v.status = v.scene.draw()
	if !v.status.OK() {
		v.log.Warnw("frame faulted; display frozen", "status", v.status.String())
	}
	return nil
}

func (v *viewer) Draw(screen *ebiten.Image) {
	if v.img == nil {
		v.img = image.NewRGBA(image.Rect(0, 0, usisim.DisplayWidth, usisim.DisplayHeight))
		v.fbImg = ebiten.NewImage(usisim.DisplayWidth, usisim.DisplayHeight)
	}

	on := v.display.On()
	dst := v.img.Pix
	for y := 0; y < usisim.DisplayHeight; y++ {
		for x := 0; x < usisim.DisplayWidth; x++ {
			j := (y*usisim.DisplayWidth + x) * 4
			var lum uint8
			if on && v.display.Pixel(x, y) {
				lum = 0xEE
			}
			dst[j+0] = lum
			dst[j+1] = lum
			dst[j+2] = lum
			dst[j+3] = 0xFF
		}
	}

	v.fbImg.WritePixels(v.img.Pix)
	screen.DrawImage(v.fbImg, nil)
}

func (v *viewer) Layout(outsideWidth, outsideHeight int) (int, int) {
	return usisim.DisplayWidth, usisim.DisplayHeight
}

func hexByte(b uint8) string {
	const digits = "0123456789abcdef"
	return string([]byte{digits[b>>4], digits[b&0x0F]})
}
