package chunking

// Params controls chunk boundary arithmetic for all three strategies.
// All sizes and distances are in words.
type Params struct {
	// SemanticSize is the fixed window size of the semantic strategy.
	SemanticSize int
	// SemanticOverlap is the word overlap between consecutive windows.
	SemanticOverlap int
	// RefMaxWords caps a reference-anchored chunk.
	RefMaxWords int
	// RefMinWords is the minimum a reference-anchored chunk is expanded to.
	RefMinWords int
	// ClusterDistance groups references this close into one cluster.
	ClusterDistance int
}

// DefaultParams returns the production parameters.
func DefaultParams() Params {
	return Params{
		SemanticSize:    800,
		SemanticOverlap: 150,
		RefMaxWords:     1200,
		RefMinWords:     200,
		ClusterDistance: 100,
	}
}

// Valid reports whether the parameters are internally consistent.
func (p Params) Valid() bool {
	return p.SemanticSize > 0 &&
		p.SemanticOverlap >= 0 &&
		p.SemanticOverlap < p.SemanticSize &&
		p.RefMaxWords > 0 &&
		p.RefMinWords > 0 &&
		p.RefMinWords <= p.RefMaxWords &&
		p.ClusterDistance >= 0
}
