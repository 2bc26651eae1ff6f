package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"git.sr.ht/~rockorager/vaxis"
	"git.sr.ht/~rockorager/vaxis/vxfw"
	"github.com/deevus/transit-sign/board"
	"github.com/deevus/transit-sign/internal"
	"github.com/deevus/transit-sign/scheduler"
	"github.com/deevus/transit-sign/views"
	"github.com/deevus/transit-sign/widgets"
	"github.com/dustin/go-humanize"
)

const latencySamples = 60

// Controller is the part of the scheduler the UI drives.
type Controller interface {
	Start(ctx context.Context)
	Stop()
	Running() bool
	Refresh(ctx context.Context) error
}

// Params holds configuration for creating an App.
type Params struct {
	Scheduler Controller
	Store     *board.Store
	Labels    [2]string
	Title     string
	Logger    *slog.Logger
	// Context scopes the scheduler runs started from the UI.
	Context context.Context
	Now     func() time.Time
}

// App is the root vxfw widget for the sign.
type App struct {
	sched     Controller
	store     *board.Store
	title     string
	logger    *slog.Logger
	ctx       context.Context
	now       func() time.Time
	board     *views.BoardView
	tabBar    *widgets.TabBar
	latency   *widgets.Sparkline
	lastErr   error

	postMu    sync.Mutex
	postEvent func(vaxis.Event)
}

// New creates the root App widget.
func New(p Params) *App {
	ctx := p.Context
	if ctx == nil {
		ctx = context.Background()
	}
	now := p.Now
	if now == nil {
		now = time.Now
	}
	logger := p.Logger
	if logger == nil {
		logger = internal.Discard()
	}
	title := p.Title
	if title == "" {
		title = "Transit Sign"
	}
	return &App{
		sched:   p.Scheduler,
		store:   p.Store,
		title:   title,
		logger:  logger.With(slog.String("component", "app")),
		ctx:     ctx,
		now:     now,
		board:   views.NewBoardView(views.BoardViewParams{Store: p.Store, Labels: p.Labels}),
		tabBar:  widgets.NewTabBar(p.Labels[:]),
		latency: widgets.NewSparkline(latencySamples),
	}
}

// SetPostEvent sets the function used to post events to the vaxis event loop.
// Must be called before the scheduler starts. Setting nil detaches the app
// once the event loop has exited; no Notify posts after it returns.
func (a *App) SetPostEvent(fn func(vaxis.Event)) {
	a.postMu.Lock()
	defer a.postMu.Unlock()
	a.postEvent = fn
}

// Notify forwards a finished refresh cycle to the event loop. It is called
// from the scheduler goroutine.
func (a *App) Notify(c scheduler.Cycle) {
	a.postMu.Lock()
	defer a.postMu.Unlock()
	if a.postEvent == nil {
		return
	}
	a.postEvent(views.BoardUpdated{Duration: c.Duration, Err: c.Err, Committed: c.Committed})
}

// ActiveSide returns the side shown in narrow mode.
func (a *App) ActiveSide() int {
	return a.board.Side()
}

// SetSide switches the side shown in narrow mode.
func (a *App) SetSide(i int) {
	a.tabBar.SetActive(i)
	a.board.SetSide(a.tabBar.Active())
}

// LastError returns the error of the most recent failed cycle, or nil once a
// cycle succeeds again.
func (a *App) LastError() error {
	return a.lastErr
}

// Draw renders the header, the side selector in narrow mode, the board and
// the footer.
func (a *App) Draw(ctx vxfw.DrawContext) (vxfw.Surface, error) {
	s := vxfw.NewSurface(ctx.Max.Width, ctx.Max.Height, a)
	if ctx.Max.Height == 0 {
		return s, nil
	}
	a.drawHeader(&s, int(ctx.Max.Width))

	top := uint16(1)
	narrow := ctx.Max.Width < views.MinSplitWidth
	if narrow && ctx.Max.Height > top {
		ca, cb := a.board.Counts()
		a.tabBar.SetCount(0, ca)
		a.tabBar.SetCount(1, cb)
		tabSurf, err := a.tabBar.Draw(ctx.WithMax(vxfw.Size{Width: ctx.Max.Width, Height: 1}))
		if err != nil {
			return vxfw.Surface{}, err
		}
		s.AddChild(0, int(top), tabSurf)
		top++
	}

	footer := ctx.Max.Height - 1
	if footer > top {
		boardCtx := ctx.WithMax(vxfw.Size{Width: ctx.Max.Width, Height: footer - top})
		boardSurf, err := a.board.Draw(boardCtx)
		if err != nil {
			return vxfw.Surface{}, err
		}
		s.AddChild(0, int(top), boardSurf)
		if err := a.drawFooter(ctx, &s, footer); err != nil {
			return vxfw.Surface{}, err
		}
	}
	return s, nil
}

func (a *App) drawHeader(s *vxfw.Surface, width int) {
	bar := vaxis.Style{Attribute: vaxis.AttrReverse}
	widgets.Fill(s, 0, 0, width, bar)
	end := widgets.WriteText(s, 1, 0, width-1, a.title, vaxis.Style{Attribute: vaxis.AttrReverse | vaxis.AttrBold}, widgets.AlignLeft)

	state := " LIVE "
	stateStyle := vaxis.Style{Foreground: vaxis.IndexColor(0), Background: vaxis.IndexColor(2), Attribute: vaxis.AttrBold}
	if a.sched == nil || !a.sched.Running() {
		state = " PAUSED "
		stateStyle.Background = vaxis.IndexColor(3)
	}
	end = widgets.WriteText(s, end+2, 0, width-int(end)-2, state, stateStyle, widgets.AlignLeft)

	updated := "Not updated yet"
	if v := a.store.Snapshot(); v.Updated() {
		updated = fmt.Sprintf("Updated %s (%s)",
			v.LastUpdated.Format("15:04:05"),
			humanize.RelTime(v.LastUpdated, a.now(), "ago", "from now"))
	}
	widgets.WriteText(s, end+1, 0, width-int(end)-2, updated, bar, widgets.AlignRight)
}

func (a *App) drawFooter(ctx vxfw.DrawContext, s *vxfw.Surface, row uint16) error {
	width := int(ctx.Max.Width)
	dim := vaxis.Style{Attribute: vaxis.AttrDim}
	col := widgets.WriteText(s, 1, row, width-1, "Latency ", dim, widgets.AlignLeft)

	sparkWidth := min(latencySamples, width/4)
	if sparkWidth > 0 && int(col)+sparkWidth < width {
		sparkSurf, err := a.latency.Draw(ctx.WithMax(vxfw.Size{Width: uint16(sparkWidth), Height: 1}))
		if err != nil {
			return err
		}
		s.AddChild(int(col), int(row), sparkSurf)
		col += uint16(sparkSurf.Size.Width)
	}

	if d, failed, ok := a.latency.Last(); ok && !failed {
		col = widgets.WriteText(s, col+1, row, width-int(col)-1, d.Round(time.Millisecond).String(), dim, widgets.AlignLeft)
	}
	if commits := a.store.Commits(); commits > 0 {
		col = widgets.WriteText(s, col+2, row, width-int(col)-2, humanize.Comma(int64(commits))+" updates", dim, widgets.AlignLeft)
	}

	if a.lastErr != nil {
		errStyle := vaxis.Style{Foreground: vaxis.IndexColor(1)}
		widgets.WriteText(s, col+2, row, width-int(col)-3, a.lastErr.Error(), errStyle, widgets.AlignRight)
	} else {
		widgets.WriteText(s, col+2, row, width-int(col)-3, "q quit  r refresh  p pause", dim, widgets.AlignRight)
	}
	return nil
}

// CaptureEvent handles global keybindings before views process them.
func (a *App) CaptureEvent(ev vaxis.Event) (vxfw.Command, error) {
	key, ok := ev.(vaxis.Key)
	if !ok {
		return nil, nil
	}
	switch {
	case key.Matches('q'), key.Matches('c', vaxis.ModCtrl):
		if a.sched != nil {
			a.sched.Stop()
		}
		return vxfw.QuitCmd{}, nil
	case key.Matches('r'):
		a.refresh()
	case key.Matches('p'):
		a.togglePause()
	case key.Matches('1'):
		a.SetSide(0)
	case key.Matches('2'):
		a.SetSide(1)
	case key.Matches(vaxis.KeyTab):
		a.tabBar.Next()
		a.board.SetSide(a.tabBar.Active())
	case key.Matches(vaxis.KeyTab, vaxis.ModShift):
		a.tabBar.Prev()
		a.board.SetSide(a.tabBar.Active())
	default:
		return nil, nil
	}
	return vxfw.ConsumeAndRedraw(), nil
}

// refresh asks for a cycle now without blocking the event loop. The cycle's
// own notification triggers the redraw.
func (a *App) refresh() {
	if a.sched == nil {
		return
	}
	go func() {
		if err := a.sched.Refresh(a.ctx); err != nil && !errors.Is(err, scheduler.ErrStopped) {
			a.logger.Debug("manual refresh failed", slog.String("error", err.Error()))
		}
	}()
}

func (a *App) togglePause() {
	if a.sched == nil {
		return
	}
	if a.sched.Running() {
		a.sched.Stop()
		return
	}
	a.sched.Start(a.ctx)
}

// HandleEvent starts the scheduler once the event loop is up and records
// the outcome of each refresh cycle.
func (a *App) HandleEvent(ev vaxis.Event, phase vxfw.EventPhase) (vxfw.Command, error) {
	switch ev := ev.(type) {
	case vxfw.Init:
		if a.sched != nil {
			a.sched.Start(a.ctx)
		}
		return vxfw.RedrawCmd{}, nil
	case views.BoardUpdated:
		// Cycles cut short by a pause say nothing about the feed.
		if errors.Is(ev.Err, context.Canceled) {
			return vxfw.RedrawCmd{}, nil
		}
		a.latency.Push(ev.Duration, ev.Err != nil)
		a.lastErr = ev.Err
		return vxfw.RedrawCmd{}, nil
	}
	return nil, nil
}
