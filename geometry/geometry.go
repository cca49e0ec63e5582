package geometry

// This package holds the plain-data types exchanged with the external toric
// geometry engine, plus the canonical fingerprinting used to detect when two
// triangulations describe the same Calabi-Yau phase.
//
// The engine itself (polytope database, triangulation sampling, intersection
// numbers, cone-tip volumes) is an external collaborator reached over HTTP via
// Client. Nothing here computes geometry; everything that crosses the engine
// boundary is primitive numeric data so results can be passed freely between
// goroutines and serialized without caring about engine internals.

// Triangulation backends supported by the engine, in the order the sampling
// pipeline tries them.
const (
	BackendCGAL  = "cgal"
	BackendQhull = "qhull"
)

// Polytope describes one reflexive polytope from the engine's corpus. The
// pipeline fetches it once at startup and treats it as immutable for the
// lifetime of the run.
type Polytope struct {
	// ID is the engine's identifier for this polytope, passed back when
	// requesting triangulations.
	ID int `json:"id"`

	// Hodge numbers of the associated Calabi-Yau hypersurface.
	H11 int `json:"h11"`
	H21 int `json:"h21"`

	// Lattice convention the polytope is expressed in ("N" or "M").
	Lattice string `json:"lattice"`

	// Favorable reports whether divisor classes descend from the ambient
	// toric variety.
	Favorable bool `json:"favorable"`

	// Vertices is the vertex matrix, one lattice point per row.
	Vertices [][]int `json:"vertices"`

	// NRays is the number of rays of the face fan. The GKZ vector of any
	// fine triangulation of this polytope has exactly NRays coordinates.
	NRays int `json:"n_rays"`
}

// Triangulation is the plain-data result of sampling one random fine regular
// triangulation of a polytope. The engine resolves the triangulation to its
// Calabi-Yau hypersurface (with a fixed, deterministic Kähler basis choice)
// and reports the derived quantities directly, so callers never hold an
// opaque engine object.
type Triangulation struct {
	// GKZ is the full GKZ vector of the triangulation, origin coordinate
	// included. For a fixed polytope the origin coordinate is constant
	// across triangulations and carries no information.
	GKZ []float64 `json:"gkz"`

	// IntersectionNumbers holds the CY intersection tensor in basis, in
	// sparse COO layout: each row is (i, j, k, value). Row order is
	// whatever the engine produced; use Fingerprint to canonicalize.
	IntersectionNumbers [][]float64 `json:"intersection_numbers"`

	// CYVolume is the CY volume evaluated at the tip of the stretched
	// Kähler cone (stretch factor 1).
	CYVolume float64 `json:"cy_volume"`
}

// FetchOptions selects polytopes from the engine's corpus. The corpus is
// ordered, so with Limit 1 the engine returns its canonical first match.
type FetchOptions struct {
	H11       int
	H21       int
	Lattice   string
	Limit     int
	Favorable bool
}
