// Package ui is the ebiten presentation layer: it renders the playfield,
// score and camera preview, maps the keyboard surface onto the engine
// and pipeline, and records finished matches.
package ui

import (
	"fmt"
	"image/color"
	"log"
	"strings"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/hajimehoshi/ebiten/v2/text" //nolint:staticcheck // TODO: migrate to text/v2
	"github.com/hajimehoshi/ebiten/v2/vector"
	"github.com/tanema/gween"
	"github.com/tanema/gween/ease"

	"github.com/ayusman/handpong/internal/app"
	"github.com/ayusman/handpong/internal/config"
	"github.com/ayusman/handpong/internal/control"
	"github.com/ayusman/handpong/internal/game"
	"github.com/ayusman/handpong/internal/store"
)

const (
	tickDelta     = 1.0 / 60.0
	flashDuration = 0.8
	previewScale  = 0.4
)

var (
	colBackground  = color.RGBA{R: 14, G: 16, B: 24, A: 255}
	colLine        = color.RGBA{R: 70, G: 72, B: 84, A: 255}
	colBall        = color.RGBA{R: 235, G: 235, B: 240, A: 255}
	colPaddleHuman = color.RGBA{R: 86, G: 205, B: 131, A: 255}
	colPaddleAI    = color.RGBA{R: 158, G: 160, B: 172, A: 255}
	colText        = color.RGBA{R: 220, G: 222, B: 230, A: 255}
	colDim         = color.RGBA{R: 130, G: 132, B: 144, A: 255}
	colFlash       = color.RGBA{R: 250, G: 214, B: 92, A: 255}
	colOverlay     = color.RGBA{A: 170}
)

// Game ties the engine, the capture pipeline and the renderer together
// as an ebiten.Game.
type Game struct {
	cfg      *config.Config
	engine   *game.Engine
	pipeline *app.App
	mapper   *control.Mapper
	matches  *store.MatchRepository

	fonts    *fontSet
	settings *settingsStore
	saved    SavedSettings

	prevScore    [2]int
	flash        [2]*gween.Tween
	sessionStart time.Time
	recorded     bool

	previewImg *ebiten.Image
	previewAt  time.Time
}

// NewGame builds the UI around an engine and pipeline. The store may be
// nil, which disables match recording.
func NewGame(cfg *config.Config, eng *game.Engine, pipeline *app.App, st *store.Store) (*Game, error) {
	fonts, err := newFontSet()
	if err != nil {
		return nil, fmt.Errorf("load fonts: %w", err)
	}

	g := &Game{
		cfg:          cfg,
		engine:       eng,
		pipeline:     pipeline,
		mapper:       control.NewMapper(control.FromConfig(cfg)),
		fonts:        fonts,
		settings:     newSettingsStore(),
		sessionStart: time.Now(),
	}
	if st != nil {
		g.matches = st.Matches()
	}

	if saved := g.settings.Load(); saved != nil {
		g.saved = *saved
		ebiten.SetFullscreen(saved.Fullscreen)
		pipeline.SetDebug(saved.Debug)
	}

	return g, nil
}

// Update advances one frame: keyboard, gesture commands, control mapping
// and one engine tick.
func (g *Game) Update() error {
	if err := g.handleKeys(); err != nil {
		return err
	}

drain:
	for {
		select {
		case cmd := <-g.pipeline.Smoother().Commands():
			g.mapper.HandleCommand(cmd, g.engine)
		default:
			break drain
		}
	}

	g.mapper.Apply(time.Now(), g.pipeline.Smoother().Latest(), g.engine)
	g.engine.Tick()

	g.updateScoreFlash()
	g.maybeRecordMatch()

	return nil
}

func (g *Game) handleKeys() error {
	if inpututil.IsKeyJustPressed(ebiten.KeyQ) {
		g.pipeline.Stop()
		return ebiten.Termination
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyF11) {
		g.saved.Fullscreen = !ebiten.IsFullscreen()
		ebiten.SetFullscreen(g.saved.Fullscreen)
		g.settings.Save(&g.saved)
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyEscape) && ebiten.IsFullscreen() {
		g.saved.Fullscreen = false
		ebiten.SetFullscreen(false)
		g.settings.Save(&g.saved)
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyD) {
		g.saved.Debug = !g.pipeline.Debug()
		g.pipeline.SetDebug(g.saved.Debug)
		g.settings.Save(&g.saved)
	}
	if inpututil.IsKeyJustPressed(ebiten.KeySpace) {
		g.engine.TogglePause()
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyS) {
		if g.pipeline.Running() {
			g.pipeline.Stop()
		} else if err := g.pipeline.Start(); err != nil {
			log.Printf("could not start capture: %v", err)
		}
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyR) && g.engine.State() == game.StateGameOver {
		g.engine.Reset()
		g.pipeline.Smoother().Reset()
		g.sessionStart = time.Now()
		g.recorded = false
	}
	return nil
}

func (g *Game) updateScoreFlash() {
	left, right := g.engine.Score()
	score := [2]int{left, right}
	for i := range score {
		if score[i] != g.prevScore[i] {
			g.flash[i] = gween.New(1, 0, flashDuration, ease.OutQuad)
		}
		if g.flash[i] != nil {
			if _, done := g.flash[i].Update(tickDelta); done {
				g.flash[i] = nil
			}
		}
	}
	g.prevScore = score
}

// maybeRecordMatch writes one row per finished session.
func (g *Game) maybeRecordMatch() {
	if g.recorded || g.matches == nil || g.engine.State() != game.StateGameOver {
		return
	}
	g.recorded = true

	winner, ok := g.engine.Winner()
	if !ok {
		return
	}
	left, right := g.engine.Score()
	m := &store.Match{
		LeftScore:  left,
		RightScore: right,
		Winner:     winner.String(),
		DurationMs: time.Since(g.sessionStart).Milliseconds(),
	}
	if err := g.matches.Record(m); err != nil {
		log.Printf("could not record match: %v", err)
	}
}

// Draw renders the playfield, HUD and overlays.
func (g *Game) Draw(screen *ebiten.Image) {
	screen.Fill(colBackground)

	snap := g.engine.Snapshot()
	w := float32(g.cfg.Canvas.Width)
	h := float32(g.cfg.Canvas.Height)

	// Dashed center line.
	for y := float32(0); y < h; y += 20 {
		vector.DrawFilledRect(screen, w/2-1, y, 2, 10, colLine, false)
	}

	for _, p := range snap.Paddles {
		col := colPaddleAI
		if p.Control == game.ControlHuman {
			col = colPaddleHuman
		}
		vector.DrawFilledRect(screen, float32(p.X), float32(p.Y), float32(p.Width), float32(p.Height), col, false)
	}

	vector.DrawFilledCircle(screen, float32(snap.Ball.X), float32(snap.Ball.Y), float32(snap.Ball.Radius), colBall, false)

	g.drawScore(screen, snap)
	g.drawPreview(screen)
	g.drawStatus(screen, snap)
	if g.pipeline.Debug() {
		g.drawDebugHUD(screen)
	}
}

func (g *Game) drawScore(screen *ebiten.Image, snap game.Snapshot) {
	w := g.cfg.Canvas.Width
	positions := [2]int{w / 4, 3 * w / 4}
	for i, score := range snap.Score {
		col := colText
		if g.flash[i] != nil {
			col = colFlash
		}
		s := fmt.Sprintf("%d", score)
		bounds := text.BoundString(g.fonts.score, s)
		text.Draw(screen, s, g.fonts.score, positions[i]-bounds.Dx()/2, 48, col)
	}
}

func (g *Game) drawPreview(screen *ebiten.Image) {
	preview := g.pipeline.Preview()
	if preview == nil {
		return
	}
	if g.previewImg == nil || preview.At.After(g.previewAt) {
		g.previewImg = ebiten.NewImageFromImage(preview.Img)
		g.previewAt = preview.At
	}

	op := &ebiten.DrawImageOptions{}
	op.GeoM.Scale(previewScale, previewScale)
	pw := float64(g.previewImg.Bounds().Dx()) * previewScale
	ph := float64(g.previewImg.Bounds().Dy()) * previewScale
	op.GeoM.Translate(float64(g.cfg.Canvas.Width)-pw-8, float64(g.cfg.Canvas.Height)-ph-8)
	op.ColorScale.ScaleAlpha(0.85)
	screen.DrawImage(g.previewImg, op)
}

func (g *Game) drawStatus(screen *ebiten.Image, snap game.Snapshot) {
	w := g.cfg.Canvas.Width
	h := g.cfg.Canvas.Height

	switch snap.State {
	case game.StatePaused:
		g.drawOverlay(screen, "PAUSED", "both fists or Space to resume")
	case game.StateGameOver:
		title := strings.ToUpper(snap.Winner) + " WINS"
		g.drawOverlay(screen, title, "press R for a rematch")
	}

	if !g.pipeline.Running() {
		hint := "S: camera  Space: pause  D: debug  F11: fullscreen  Q: quit"
		bounds := text.BoundString(g.fonts.small, hint)
		text.Draw(screen, hint, g.fonts.small, (w-bounds.Dx())/2, h-12, colDim)
	}
}

func (g *Game) drawOverlay(screen *ebiten.Image, title, subtitle string) {
	w := g.cfg.Canvas.Width
	h := g.cfg.Canvas.Height

	vector.DrawFilledRect(screen, 0, 0, float32(w), float32(h), colOverlay, false)

	bounds := text.BoundString(g.fonts.title, title)
	text.Draw(screen, title, g.fonts.title, (w-bounds.Dx())/2, h/2-10, colText)

	bounds = text.BoundString(g.fonts.small, subtitle)
	text.Draw(screen, subtitle, g.fonts.small, (w-bounds.Dx())/2, h/2+20, colDim)
}

func (g *Game) drawDebugHUD(screen *ebiten.Image) {
	lines := []string{
		fmt.Sprintf("pipeline %.1f fps  render %.0f tps", g.pipeline.FPS(), ebiten.ActualTPS()),
	}
	if snap := g.pipeline.Smoother().Latest(); snap != nil {
		for i, side := range snap.Sides {
			name := "left"
			if i == 1 {
				name = "right"
			}
			if !side.Present {
				lines = append(lines, fmt.Sprintf("%s: lost", name))
				continue
			}
			lines = append(lines, fmt.Sprintf("%s: %s y=%.2f closed=%d fist=%t",
				name, side.Label, side.SmoothedY, side.Metrics.ClosedFingers, side.FistConfirmed))
		}
	}

	for i, line := range lines {
		text.Draw(screen, line, g.fonts.small, 8, 16+i*14, colText)
	}
}

// Layout reports the fixed canvas size.
func (g *Game) Layout(outsideWidth, outsideHeight int) (int, int) {
	return g.cfg.Canvas.Width, g.cfg.Canvas.Height
}
