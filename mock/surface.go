package mock

import "github.com/finsight/finsight"

// Interface compliance check.
var _ finsight.Surface = (*Surface)(nil)

// Surface is a test double for finsight.Surface.
// Set the function fields for the methods you need.
type Surface struct {
	AppendFn func(container string, role finsight.Role, text string)
	ClearFn  func(container string)
}

// Append delegates to AppendFn.
func (s *Surface) Append(container string, role finsight.Role, text string) {
	s.AppendFn(container, role, text)
}

// Clear delegates to ClearFn.
func (s *Surface) Clear(container string) {
	s.ClearFn(container)
}
