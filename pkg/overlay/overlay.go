// Package overlay tracks the navigation state of the wallet screen: which
// tab is active, whether a panel covers the tab content, and which of the
// panel chrome elements (back button, balances preview) are visible.
package overlay

// State describes whether a panel is covering the tab content.
type State int

const (
	Closed State = iota
	PanelOpen
	AuthRequired
)

// Tab identifies one of the main screens.
type Tab string

const (
	TabAssets   Tab = "assets"
	TabHistory  Tab = "history"
	TabSettings Tab = "settings"
)

// Panel identifies an overlay panel.
type Panel string

const (
	PanelDeposit  Panel = "deposit"
	PanelWithdraw Panel = "withdraw"
	PanelSwap     Panel = "swap"
	PanelTransfer Panel = "transfer"
	PanelSuccess  Panel = "success"
	PanelAuth     Panel = "auth"
)

// Option tweaks how a panel is opened.
type Option func(*Controller)

// WithoutBack opens the panel without the back affordance. Used by the
// success panel, which only offers "done".
func WithoutBack() Option {
	return func(c *Controller) { c.backVisible = false }
}

// Controller is the single source of truth for navigation state. It is not
// safe for concurrent use; the UI loop owns it.
type Controller struct {
	state          State
	activeTab      Tab
	panel          Panel
	backVisible    bool
	previewVisible bool
}

func NewController() *Controller {
	return &Controller{state: Closed, activeTab: TabAssets}
}

// Open shows a panel over the current tab. The back affordance is shown
// unless an option hides it; the balances preview is reset and must be
// requested explicitly by the panel.
func (c *Controller) Open(panel Panel, opts ...Option) {
	c.state = PanelOpen
	c.panel = panel
	c.backVisible = true
	c.previewVisible = false
	for _, opt := range opts {
		opt(c)
	}
}

// Close dismisses any open panel and lands on the assets tab. The assets
// tab is reactivated even when the panel was opened from another tab.
func (c *Controller) Close() {
	c.state = Closed
	c.panel = ""
	c.backVisible = false
	c.previewVisible = false
	c.activeTab = TabAssets
}

// RequireAuth replaces whatever is on screen with the auth panel. Closing
// it goes through Close like any other panel.
func (c *Controller) RequireAuth() {
	c.state = AuthRequired
	c.panel = PanelAuth
	c.backVisible = false
	c.previewVisible = false
}

// SwitchTab activates a tab. While a panel is open tab switches are
// ignored and false is returned; the panel must be closed first.
func (c *Controller) SwitchTab(tab Tab) bool {
	if c.state != Closed {
		return false
	}
	c.activeTab = tab
	return true
}

func (c *Controller) ShowPreview() { c.previewVisible = true }
func (c *Controller) HidePreview() { c.previewVisible = false }

func (c *Controller) State() State         { return c.state }
func (c *Controller) ActiveTab() Tab       { return c.activeTab }
func (c *Controller) Panel() Panel         { return c.panel }
func (c *Controller) BackVisible() bool    { return c.backVisible }
func (c *Controller) PreviewVisible() bool { return c.previewVisible }
