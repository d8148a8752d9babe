package wm

import (
	"github.com/1broseidon/stackwm/internal/platform"
)

// Status is a point-in-time view of the model for the control socket.
type Status struct {
	FocusedScreen int               `json:"focused_screen"`
	FocusedWindow uint32            `json:"focused_window,omitempty"`
	Screens       []ScreenStatus    `json:"screens"`
	Workspaces    []WorkspaceStatus `json:"workspaces"`
}

type ScreenStatus struct {
	Index     int           `json:"index"`
	Rect      platform.Rect `json:"rect"`
	Workspace string        `json:"workspace"`
}

type WorkspaceStatus struct {
	ID      int            `json:"id"`
	Name    string         `json:"name"`
	Layout  string         `json:"layout"`
	Visible bool           `json:"visible"`
	Clients []ClientStatus `json:"clients,omitempty"`
}

type ClientStatus struct {
	ID         uint32 `json:"id"`
	Class      string `json:"class,omitempty"`
	Floating   bool   `json:"floating,omitempty"`
	Fullscreen bool   `json:"fullscreen,omitempty"`
	Focused    bool   `json:"focused,omitempty"`
}

// Status snapshots the model. It must run on the loop.
func (c *Controller) Status() Status {
	st := Status{FocusedScreen: c.ws.FocusedScreenIndex()}
	focused, hasFocus := c.ws.FocusedClient()
	if hasFocus {
		st.FocusedWindow = uint32(focused.ID)
	}

	for i, s := range c.ws.Screens() {
		w, _ := c.ws.Workspace(s.Workspace)
		st.Screens = append(st.Screens, ScreenStatus{Index: i, Rect: s.Rect, Workspace: w.Name()})
	}
	for _, w := range c.ws.Workspaces() {
		_, visible := c.ws.ScreenOf(w.ID())
		ws := WorkspaceStatus{ID: w.ID(), Name: w.Name(), Layout: w.LayoutName(), Visible: visible}
		for _, id := range w.Clients() {
			cl, _ := c.ws.Client(id)
			ws.Clients = append(ws.Clients, ClientStatus{
				ID:         uint32(id),
				Class:      cl.Class,
				Floating:   cl.Floating,
				Fullscreen: cl.Fullscreen,
				Focused:    hasFocus && focused.ID == id,
			})
		}
		st.Workspaces = append(st.Workspaces, ws)
	}
	return st
}
