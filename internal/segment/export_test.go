package segment

// Internal functions exposed for black-box testing.
var (
	ChildBoundaries = childBoundaries
	ClipName        = clipName
	FormatSeconds   = formatSeconds
)
