package autoclicker

// Binding is the key combination that toggles clicking.
type Binding struct {
	KeyCode   int
	Modifiers ModifierMask
	Display   string
}

func NewBinding(keyCode int, modifiers ModifierMask) Binding {
	modifiers = modifiers.DeviceIndependent()
	return Binding{
		KeyCode:   keyCode,
		Modifiers: modifiers,
		Display:   FormatBinding(keyCode, modifiers),
	}
}

// DefaultBinding is command+F9.
func DefaultBinding() Binding {
	return NewBinding(KeyF9, ModCommand)
}

func FormatBinding(keyCode int, modifiers ModifierMask) string {
	return modifiers.DeviceIndependent().Glyphs() + KeyName(keyCode)
}

// Matches requires the same key and exactly the same device-independent
// modifiers. Extra or missing modifiers never match.
func (b Binding) Matches(ev KeyEvent) bool {
	return ev.KeyCode == b.KeyCode &&
		ev.Modifiers.DeviceIndependent() == b.Modifiers.DeviceIndependent()
}
