package visualize

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/sourcegraph/conc/iter"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
	"gonum.org/v1/plot/vg/vgimg"

	"github.com/pgEdge/pgedge-bookdw/internal/logging"
	"github.com/pgEdge/pgedge-bookdw/internal/mart"
)

// Renderer writes charts as PNG files.
type Renderer struct {
	Dir    string
	Width  vg.Length
	Height vg.Length

	// MaxGoroutines bounds concurrent renders; zero means GOMAXPROCS.
	MaxGoroutines int
}

// Render builds and saves every chart concurrently. It returns the paths
// written, in chart order. Charts that fail are reported together and
// leave an empty path.
func (r *Renderer) Render(rows []mart.SalesRow, charts []Chart) ([]string, error) {
	if err := os.MkdirAll(r.Dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create chart directory: %w", err)
	}

	mapper := iter.Mapper[Chart, string]{
		MaxGoroutines: r.MaxGoroutines,
	}
	return mapper.MapErr(charts, func(c *Chart) (string, error) {
		plots, err := c.Build(rows)
		if err != nil {
			return "", fmt.Errorf("chart %s: %w", c.Name, err)
		}
		path := filepath.Join(r.Dir, c.FileName())
		if err := r.save(path, plots); err != nil {
			return "", fmt.Errorf("chart %s: %w", c.Name, err)
		}
		logging.Debug().Str("chart", c.Name).Str("file", path).Msg("Chart rendered")
		return path, nil
	})
}

func (r *Renderer) save(path string, plots []*plot.Plot) error {
	if len(plots) == 1 {
		return plots[0].Save(r.Width, r.Height, path)
	}
	return saveTiles(path, r.Width, r.Height, plots)
}

// saveTiles draws plots side by side on one PNG canvas.
func saveTiles(path string, w, h vg.Length, plots []*plot.Plot) (err error) {
	img := vgimg.New(w, h)
	dc := draw.New(img)

	tiles := draw.Tiles{
		Rows:      1,
		Cols:      len(plots),
		PadX:      vg.Millimeter * 6,
		PadTop:    vg.Millimeter * 2,
		PadBottom: vg.Millimeter * 2,
		PadLeft:   vg.Millimeter * 2,
		PadRight:  vg.Millimeter * 4,
	}
	canvases := plot.Align([][]*plot.Plot{plots}, tiles, dc)
	for i, p := range plots {
		p.Draw(canvases[0][i])
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := f.Close(); err == nil {
			err = cerr
		}
	}()

	_, err = vgimg.PngCanvas{Canvas: img}.WriteTo(f)
	return err
}
