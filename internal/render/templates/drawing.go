package templates

// Drawing is the geometry shared by every output format. Coordinates are in
// points with the y axis pointing up.
type Drawing struct {
	Title       string
	Algorithm   string
	Hyperperiod string
	Verdict     string
	Colors      []Color
	Boxes       []Box
	Lines       []Line
	Labels      []Label
}

type Color struct {
	Name string
	R    float64
	G    float64
	B    float64
}

// Box is one task instance.
type Box struct {
	Task  string
	Start string
	End   string
	Color string
	X     float64
	Y     float64
	W     float64
	H     float64
}

type Line struct {
	X1     float64
	Y1     float64
	X2     float64
	Y2     float64
	Color  string
	Dashed bool
}

// Label is a LaTeX text fragment anchored at X,Y. HAlign is left, center or
// right; VAlign is top, center or bottom.
type Label struct {
	Text   string
	X      float64
	Y      float64
	HAlign string
	VAlign string
}
