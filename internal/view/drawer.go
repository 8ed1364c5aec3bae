package view

// Drawer is the open/closed state of the cart summary panel. The zero value is closed.
type Drawer struct {
	open bool
}

// Open shows the drawer.
func (d *Drawer) Open() { d.open = true }

// Close hides the drawer.
func (d *Drawer) Close() { d.open = false }

// IsOpen reports whether the drawer is shown.
func (d *Drawer) IsOpen() bool { return d.open }
