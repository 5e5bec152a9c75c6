package model

// TextFragment represents one OCR-recognized string with its position on the
// source image and the engine's confidence in the recognition. Fragments are
// produced by the OCR collaborator and treated as immutable input.
type TextFragment struct {
	// Text is the recognized string
	Text string

	// BBox is the fragment's bounding box in normalized image coordinates
	BBox BBox

	// Confidence is the OCR engine's confidence in this fragment (0-1)
	Confidence float64

	// SequenceIndex is the fragment's position in the OCR output stream
	SequenceIndex int
}

// FragmentsBBox returns the union bounding box of a set of fragments.
// Returns the zero BBox for an empty set.
func FragmentsBBox(fragments []TextFragment) BBox {
	if len(fragments) == 0 {
		return BBox{}
	}
	bbox := fragments[0].BBox
	for _, f := range fragments[1:] {
		bbox = bbox.Union(f.BBox)
	}
	return bbox
}
