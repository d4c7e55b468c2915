package facestudio

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"facestudio/asset"
	"facestudio/codec"
	"facestudio/config"
	"facestudio/element"
	"facestudio/errs"
	"facestudio/eventloop"
	"facestudio/history"
	"facestudio/internal/logx"
	"facestudio/props"
	"facestudio/surface"
	"facestudio/ticker"
	"facestudio/typeface"
)

// Move is a z-order change.
type Move int

const (
	Forward Move = iota
	Backward
	ToFront
	ToBack
)

// Option configures a Studio.
type Option func(*Studio)

func WithLogger(l *slog.Logger) Option {
	return func(s *Studio) { s.logger = l }
}

// WithScheduler sets where deferred work such as the history settle delay
// and ticks runs. It must be the goroutine that owns the surface, and Studio
// methods must be called from it. Without a scheduler the studio runs its
// own event loop and its methods may be called from any goroutine.
func WithScheduler(sched surface.Scheduler) Option {
	return func(s *Studio) { s.sched = sched }
}

// WithClock overrides the time source of clock-driven elements.
func WithClock(now func() time.Time) Option {
	return func(s *Studio) { s.now = now }
}

// WithAssetSource replaces the HTTP fetcher used for artwork.
func WithAssetSource(src codec.AssetSource) Option {
	return func(s *Studio) { s.assets = src }
}

func WithHTTPClient(c *http.Client) Option {
	return func(s *Studio) { s.httpClient = c }
}

// WithTickSource replaces the interval behind time updates.
func WithTickSource(src ticker.Source) Option {
	return func(s *Studio) { s.tickSource = src }
}

// Studio composes the element engine: property registry, codecs, layer
// order, history and time updates over one attached surface. The surface is
// only touched from the goroutine of the scheduler.
type Studio struct {
	cfg        config.Config
	logger     *slog.Logger
	sched      surface.Scheduler
	loop       *eventloop.Loop
	now        func() time.Time
	httpClient *http.Client
	tickSource ticker.Source

	props   *props.Registry
	codecs  *element.Registry
	layers  *element.Layers
	holder  *codec.Holder
	fonts   *typeface.Registry
	assets  codec.AssetSource
	fetcher *asset.Fetcher
	ticker  *ticker.Ticker
	history *history.Controller

	meta element.Document
}

// New builds a detached studio from cfg.
func New(cfg config.Config, opts ...Option) (*Studio, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	s := &Studio{cfg: cfg, now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	s.logger = logx.Or(s.logger)

	s.fonts = typeface.NewRegistry()
	for family, m := range cfg.Fonts {
		if err := s.fonts.Register(family, m); err != nil {
			return nil, fmt.Errorf("font %s: %w", family, err)
		}
	}
	if s.assets == nil {
		f, err := asset.NewFetcher(asset.Options{
			Client:      s.httpClient,
			BaseURL:     cfg.Assets.BaseURL,
			Timeout:     cfg.Assets.Timeout,
			MaxRetries:  cfg.Assets.MaxRetries,
			Concurrency: cfg.Assets.Concurrency,
			Logger:      s.logger,
		})
		if err != nil {
			return nil, err
		}
		s.fetcher = f
		s.assets = f
	}

	s.holder = &codec.Holder{}
	s.layers = element.NewLayers()
	s.codecs = element.NewRegistry()
	env := &codec.Env{
		Surface: s.holder,
		Layers:  s.layers,
		Assets:  s.assets,
		Fonts:   s.fonts,
		Theme:   themeOf(cfg),
		Now:     s.now,
		Logger:  s.logger,
	}
	s.props = props.NewRegistry(s.logger, codec.Install(s.codecs, env)...)

	if s.sched == nil {
		s.loop = eventloop.New(0, s.logger)
		s.sched = s.loop
		go s.loop.Run(context.Background())
	}

	s.history = history.New(history.Options{
		MaxDepth:        cfg.History.MaxDepth,
		SettleDelay:     cfg.History.SettleDelay,
		Scheduler:       s.sched,
		BeforeSerialize: s.applyProps,
		OnRestored:      s.restored,
		Logger:          s.logger,
	})

	tickOpts := []ticker.Option{ticker.WithLogger(s.logger)}
	if s.sched != nil {
		tickOpts = append(tickOpts, ticker.WithScheduler(s.sched))
	}
	if s.tickSource != nil {
		tickOpts = append(tickOpts, ticker.WithSource(s.tickSource))
	}
	s.ticker = ticker.New(cfg.Ticker.Interval, tickOpts...)
	s.ticker.Subscribe(s.refresh)

	s.meta = element.Document{
		Canvas: &element.Canvas{
			Width:      cfg.Canvas.Width,
			Height:     cfg.Canvas.Height,
			Background: cfg.Canvas.Background,
		},
	}
	return s, nil
}

func themeOf(cfg config.Config) codec.Theme {
	t := codec.DefaultTheme()
	pick := func(dst *string, v string) {
		if v != "" {
			*dst = v
		}
	}
	pick(&t.TextColor, cfg.Text.Color)
	pick(&t.FontFamily, cfg.Text.FontFamily)
	if cfg.Text.FontSize > 0 {
		t.FontSize = cfg.Text.FontSize
	}
	pick(&t.Battery.Low, cfg.Battery.LowColor)
	pick(&t.Battery.Medium, cfg.Battery.MediumColor)
	pick(&t.Battery.High, cfg.Battery.HighColor)
	pick(&t.ActiveColor, cfg.MoveBar.ActiveColor)
	pick(&t.InactiveColor, cfg.MoveBar.InactiveColor)
	t.Hour24 = cfg.Clock.Hour24
	return t
}

// Attach binds the studio to sf, applies the property allow-list, records
// the initial history snapshot and reads the layer order.
func (s *Studio) Attach(sf surface.Surface) error {
	if sf == nil {
		return errs.New("studio.attach", errs.CodeInvalid, errs.WithMessage("nil surface"))
	}
	return s.call(context.Background(), "studio.attach", func() error {
		s.attach(sf)
		return nil
	})
}

func (s *Studio) attach(sf surface.Surface) {
	if s.holder.Surface() != nil {
		s.history.Dispose()
	}
	s.holder.Attach(sf)
	s.applyProps()
	s.layers.Rebuild(sf)
	s.history.Attach(sf)
	s.logger.Info("surface attached", slog.Int("objects", len(sf.Objects())))
}

// call runs fn on the studio's own loop and waits for it. When the host
// supplied the scheduler the caller is already on its goroutine and fn runs
// inline.
func (s *Studio) call(ctx context.Context, op string, fn func() error) error {
	if s.loop == nil {
		return fn()
	}
	err := s.loop.Do(ctx, fn)
	if errors.Is(err, eventloop.ErrClosed) {
		return errs.New(op, errs.CodeNotReady, errs.WithMessage("studio closed"), errs.WithCause(err))
	}
	return err
}

// exec is call for operations that cannot fail.
func (s *Studio) exec(fn func()) {
	_ = s.call(context.Background(), "studio.exec", func() error {
		fn()
		return nil
	})
}

// Surface returns the attached surface or nil.
func (s *Studio) Surface() surface.Surface { return s.holder.Surface() }

func (s *Studio) require(op string) (surface.Surface, error) {
	return s.holder.Require(op)
}

func (s *Studio) applyProps() {
	sf := s.holder.Surface()
	if sf == nil {
		return
	}
	s.props.Discover(sf.Objects())
	s.props.Apply(sf)
}

func (s *Studio) restored() {
	if sf := s.holder.Surface(); sf != nil {
		s.layers.Rebuild(sf)
	}
}

func (s *Studio) element(op, id string) (surface.Surface, *surface.Object, error) {
	sf, err := s.require(op)
	if err != nil {
		return nil, nil, err
	}
	for _, o := range sf.Objects() {
		if o.ID() == id && o.EleType() != "" {
			return sf, o, nil
		}
	}
	return nil, nil, errs.New(op, errs.CodeNotFound, errs.WithElement(id, ""), errs.WithMessage("no such element"))
}

// AddElement builds a new element and selects it. Artwork is fetched before
// the surface is touched, so a failed fetch adds nothing.
func (s *Studio) AddElement(ctx context.Context, p element.Params) (*element.Live, error) {
	var live *element.Live
	err := s.call(ctx, "studio.add", func() error {
		if _, err := s.require("studio.add"); err != nil {
			return err
		}
		l, err := s.codecs.Add(ctx, p)
		if err != nil {
			return err
		}
		s.applyProps()
		live = l
		return nil
	})
	if err != nil {
		return nil, err
	}
	return live, nil
}

// UpdateElement applies patch to the element with id. Fields the patch
// leaves out keep their current values.
func (s *Studio) UpdateElement(ctx context.Context, id string, patch element.Patch) error {
	return s.call(ctx, "studio.update", func() error {
		return s.updateElement(ctx, id, patch)
	})
}

func (s *Studio) updateElement(ctx context.Context, id string, patch element.Patch) error {
	const op = "studio.update"
	_, root, err := s.element(op, id)
	if err != nil {
		return err
	}
	if url, ok := patch.String("assetUrl"); ok && url != "" {
		if _, err := s.assets.Fetch(ctx, url); err != nil {
			return errs.New(op, errs.CodeAsset, errs.WithElement(id, root.EleType()), errs.WithCause(err))
		}
	}
	if err := s.codecs.Update(element.EleType(root.EleType()), id, patch); err != nil {
		return err
	}
	s.applyProps()
	return nil
}

// RemoveElement deletes the element with id.
func (s *Studio) RemoveElement(id string) error {
	return s.call(context.Background(), "studio.remove", func() error {
		return s.removeElement(id)
	})
}

func (s *Studio) removeElement(id string) error {
	sf, root, err := s.element("studio.remove", id)
	if err != nil {
		return err
	}
	sf.Remove(root)
	s.layers.Remove(id)
	sf.RequestRenderAll()
	return nil
}

// Select makes the element with id the only selection. An empty id clears
// the selection.
func (s *Studio) Select(id string) error {
	return s.call(context.Background(), "studio.select", func() error {
		return s.selectElement(id)
	})
}

func (s *Studio) selectElement(id string) error {
	if id == "" {
		sf, err := s.require("studio.select")
		if err != nil {
			return err
		}
		sf.DiscardActiveObject()
		return nil
	}
	sf, root, err := s.element("studio.select", id)
	if err != nil {
		return err
	}
	sf.SetActiveObject(root)
	return nil
}

// Selected returns the id of the selected element, or "".
func (s *Studio) Selected() string {
	var id string
	s.exec(func() {
		sf := s.holder.Surface()
		if sf == nil {
			return
		}
		if o := sf.ActiveObject(); o != nil {
			id = o.ID()
		}
	})
	return id
}

// Reorder moves the element with id in the layer order. A change is recorded
// in history.
func (s *Studio) Reorder(id string, m Move) error {
	return s.call(context.Background(), "studio.reorder", func() error {
		return s.reorder(id, m)
	})
}

func (s *Studio) reorder(id string, m Move) error {
	sf, root, err := s.element("studio.reorder", id)
	if err != nil {
		return err
	}
	var changed bool
	switch m {
	case Forward:
		changed = s.layers.BringForward(id)
	case Backward:
		changed = s.layers.SendBackward(id)
	case ToFront:
		changed = s.layers.BringToFront(id)
	case ToBack:
		changed = s.layers.SendToBack(id)
	default:
		return errs.New("studio.reorder", errs.CodeInvalid, errs.WithMessage(fmt.Sprintf("unknown move %d", m)))
	}
	if !changed {
		return nil
	}
	s.layers.Sync(sf)
	sf.Fire(surface.EventObjectModified, root)
	sf.RequestRenderAll()
	return nil
}

// Layers returns the element ids back to front.
func (s *Studio) Layers() []string {
	var ids []string
	s.exec(func() { ids = s.layers.IDs() })
	return ids
}

// Meta returns the document fields that do not come from elements.
func (s *Studio) Meta() element.Document {
	var m element.Document
	s.exec(func() { m = s.meta })
	m.Elements, m.OrderIDs, m.Properties = nil, nil, nil
	return m
}

// SetMeta replaces the document fields that do not come from elements.
func (s *Studio) SetMeta(m element.Document) {
	m.Elements, m.OrderIDs, m.Properties = nil, nil, nil
	s.exec(func() {
		s.meta = m
		s.history.InvalidateConfig()
	})
}

// EncodeDocument builds the configuration document of the current design.
func (s *Studio) EncodeDocument() (*element.Document, error) {
	var doc *element.Document
	err := s.call(context.Background(), "studio.encode", func() error {
		d, err := s.encodeDocument()
		doc = d
		return err
	})
	if err != nil {
		return nil, err
	}
	return doc, nil
}

func (s *Studio) encodeDocument() (*element.Document, error) {
	sf, err := s.require("studio.encode")
	if err != nil {
		return nil, err
	}
	return element.Encode(sf.Objects(), s.codecs, s.layers, s.meta, s.logger)
}

// DocumentJSON returns the encoded document, reusing the copy cached on the
// current history snapshot when there is one.
func (s *Studio) DocumentJSON() ([]byte, error) {
	var data []byte
	err := s.call(context.Background(), "studio.encode", func() error {
		if _, err := s.require("studio.encode"); err != nil {
			return err
		}
		d, err := s.history.ConfigJSON(func() ([]byte, error) {
			doc, err := s.encodeDocument()
			if err != nil {
				return nil, err
			}
			return doc.Marshal()
		})
		data = d
		return err
	})
	if err != nil {
		return nil, err
	}
	return data, nil
}

// LoadDocument replaces the design with the one in data. Unknown element
// types are skipped and reported; elements that fail to build are reported
// as failures. History restarts from the loaded design.
func (s *Studio) LoadDocument(ctx context.Context, data []byte) (element.LoadReport, error) {
	var report element.LoadReport
	err := s.call(ctx, "studio.load", func() error {
		r, err := s.loadDocument(ctx, data)
		report = r
		return err
	})
	if err != nil {
		return element.LoadReport{}, err
	}
	return report, nil
}

func (s *Studio) loadDocument(ctx context.Context, data []byte) (element.LoadReport, error) {
	sf, err := s.require("studio.load")
	if err != nil {
		return element.LoadReport{}, err
	}
	doc, err := element.ParseDocument(data)
	if err != nil {
		return element.LoadReport{}, err
	}
	plan, report := element.Plan(doc, s.codecs, s.logger)
	s.prefetch(ctx, plan)

	s.history.Clear()
	var old []*surface.Object
	for _, o := range sf.Objects() {
		if !o.IsGuideline() {
			old = append(old, o)
		}
	}
	sf.DiscardActiveObject()
	sf.Remove(old...)
	s.layers.Rebuild(sf)

	for _, p := range plan {
		live, err := s.codecs.Add(ctx, p)
		if err != nil {
			s.logger.Error("element failed to load", slog.String("id", p.ID), slog.String("eleType", string(p.Type)), slog.Any("error", err))
			report.Failed = append(report.Failed, element.Failed{ID: p.ID, EleType: p.Type, Err: err})
			continue
		}
		report.Loaded = append(report.Loaded, live.ID)
	}
	sf.DiscardActiveObject()
	s.layers.Sync(sf)

	meta := *doc
	meta.Elements, meta.OrderIDs, meta.Properties = nil, nil, nil
	s.meta = meta
	if doc.Canvas != nil && doc.Canvas.Background != "" {
		if bg, ok := sf.(interface{ SetBackground(string) }); ok {
			bg.SetBackground(doc.Canvas.Background)
		}
	}

	s.applyProps()
	s.history.SaveInitial()
	sf.RequestRenderAll()
	s.logger.Info("document loaded",
		slog.Int("loaded", len(report.Loaded)),
		slog.Int("skipped", len(report.Skipped)),
		slog.Int("failed", len(report.Failed)))
	return report, nil
}

func (s *Studio) prefetch(ctx context.Context, plan []element.Params) {
	if s.fetcher == nil {
		return
	}
	var urls []string
	seen := map[string]bool{}
	for _, p := range plan {
		if p.AssetURL != "" && !seen[p.AssetURL] {
			seen[p.AssetURL] = true
			urls = append(urls, p.AssetURL)
		}
	}
	if len(urls) == 0 {
		return
	}
	if err := s.fetcher.Prefetch(ctx, urls); err != nil {
		s.logger.Warn("asset prefetch incomplete", slog.Any("error", err))
	}
}

// Undo restores the previous history snapshot.
func (s *Studio) Undo() bool {
	var ok bool
	s.exec(func() { ok = s.history.Undo() })
	return ok
}

// Redo re-applies the last undone snapshot.
func (s *Studio) Redo() bool {
	var ok bool
	s.exec(func() { ok = s.history.Redo() })
	return ok
}

func (s *Studio) CanUndo() bool {
	var ok bool
	s.exec(func() { ok = s.history.CanUndo() })
	return ok
}

func (s *Studio) CanRedo() bool {
	var ok bool
	s.exec(func() { ok = s.history.CanRedo() })
	return ok
}

// History exposes the controller for inspection. Without WithScheduler it
// must only be read while the studio is idle.
func (s *Studio) History() *history.Controller { return s.history }

// ClearHistory drops all snapshots and restarts recording from the current
// design.
func (s *Studio) ClearHistory() {
	s.exec(func() {
		s.history.Clear()
		s.history.SaveInitial()
	})
}

// StartTimeUpdates begins refreshing clock-driven elements. Redundant calls
// keep a single interval.
func (s *Studio) StartTimeUpdates() bool { return s.ticker.Start() }

func (s *Studio) StopTimeUpdates() bool { return s.ticker.Stop() }

// TimeUpdatesRunning reports whether the shared interval is active.
func (s *Studio) TimeUpdatesRunning() bool { return s.ticker.Running() }

// RefreshTime applies the clock at now to every time-driven element.
// Refreshes do not count as design changes and are not recorded in history.
func (s *Studio) RefreshTime(now time.Time) {
	s.exec(func() { s.refresh(now) })
}

func (s *Studio) refresh(now time.Time) {
	sf := s.holder.Surface()
	if sf == nil || s.history.State() == history.Restoring {
		return
	}
	changed := false
	for _, o := range sf.Objects() {
		fn, ok := s.codecs.Refresher(element.EleType(o.EleType()))
		if ok && fn(o, now) {
			changed = true
		}
	}
	if changed {
		sf.RequestRenderAll()
	}
}

// Registry exposes the codec registry.
func (s *Studio) Registry() *element.Registry { return s.codecs }

// Properties exposes the custom property registry.
func (s *Studio) Properties() *props.Registry { return s.props }

// Fonts exposes the font registry.
func (s *Studio) Fonts() *typeface.Registry { return s.fonts }

// Assets exposes the artwork source.
func (s *Studio) Assets() codec.AssetSource { return s.assets }

// Fetcher returns the built-in fetcher, or nil when WithAssetSource replaced it.
func (s *Studio) Fetcher() *asset.Fetcher { return s.fetcher }

// Close stops time updates, disposes history, detaches the surface and stops
// the studio's own loop. Calls after Close return not-ready errors.
func (s *Studio) Close() {
	s.ticker.Stop()
	s.exec(func() {
		s.history.Dispose()
		s.holder.Detach()
	})
	if s.loop != nil {
		s.loop.Close()
	}
	s.logger.Info("studio closed")
}
