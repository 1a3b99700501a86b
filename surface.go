package finsight

// Surface renders conversation entries into named containers. A container
// is one chat transcript; the inline widget and the full-screen overlay
// each own one.
//
// Append and Clear never fail. A container id the surface does not manage
// is a silent no-op, so a controller can keep writing after its container
// has been torn down. Text may span multiple lines; surfaces display line
// breaks as paragraph breaks.
type Surface interface {
	Append(container string, role Role, text string)
	Clear(container string)
}
